package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/pkg/errors"
)

func (c maincmd) checkout(ctx context.Context, fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}
	args = fs.Args()
	if len(args) == 0 {
		return errors.New("usage: statekit checkout <ref>")
	}

	hash, err := c.e.Checkout(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Println(hash.Short())
	return nil
}
