package index

// ErrUnresolvedRef is returned by Resolve when ref names no tag, no unique
// hash prefix, and no exact hash.
type ErrUnresolvedRef struct {
	Ref string
}

func (e *ErrUnresolvedRef) Error() string {
	return "unresolved ref: " + e.Ref
}

// ErrCorruptIndex is returned when the on-disk index document cannot be
// parsed or fails basic integrity checks.
type ErrCorruptIndex struct {
	Path  string
	Cause error
}

func (e *ErrCorruptIndex) Error() string {
	return "corrupt index at " + e.Path + ": " + e.Cause.Error()
}

func (e *ErrCorruptIndex) Unwrap() error {
	return e.Cause
}
