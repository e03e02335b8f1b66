package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/pkg/errors"
)

func (c maincmd) run(ctx context.Context, fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}
	args = fs.Args()
	if len(args) == 0 {
		return errors.New("usage: statekit run <instruction>")
	}

	res, err := c.e.Run(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s %s\n", res.Kind, res.Hash.Short())
	return nil
}
