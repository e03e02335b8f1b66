package main

import (
	"context"
	"flag"

	"github.com/pkg/errors"
)

func (c maincmd) diff(ctx context.Context, fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}
	args = fs.Args()

	var from, to string
	switch len(args) {
	case 0:
	case 1:
		from = args[0]
	case 2:
		from, to = args[0], args[1]
	default:
		return errors.New("usage: statekit diff [from] [to]")
	}

	diff, err := c.e.Diff(ctx, from, to)
	if err != nil {
		return err
	}
	printPathDiff(diff)
	return nil
}
