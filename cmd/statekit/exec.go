package main

import (
	"context"
	"flag"

	"github.com/pkg/errors"
)

func (c maincmd) exec(ctx context.Context, fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}
	args = fs.Args()
	if len(args) == 0 {
		return errors.New("usage: statekit exec <instruction>")
	}
	return c.e.Exec(ctx, args[0])
}
