package main

import (
	"context"
	"flag"

	"github.com/pkg/errors"
)

func (c maincmd) tag(_ context.Context, fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}
	args = fs.Args()
	if len(args) == 0 {
		return errors.New("usage: statekit tag <name> [ref]")
	}

	var ref string
	if len(args) > 1 {
		ref = args[1]
	}
	return c.e.Tag(args[0], ref)
}
