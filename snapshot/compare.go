package snapshot

// Compare reports the paths that differ between base and current: added
// (present only in current), modified (present in both with a differing
// identity), and deleted (present only in base). Each slice preserves the
// order the originating State discovered its paths in.
func Compare(base, current *State) (added, modified, deleted []string) {
	for _, rel := range current.Order {
		curFP, _ := current.Get(rel)
		baseFP, ok := base.Get(rel)
		switch {
		case !ok:
			added = append(added, rel)
		case !curFP.Equal(baseFP):
			modified = append(modified, rel)
		}
	}
	for _, rel := range base.Order {
		if _, ok := current.Get(rel); !ok {
			deleted = append(deleted, rel)
		}
	}
	return added, modified, deleted
}
