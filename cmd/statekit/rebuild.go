package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/pkg/errors"
)

func (c maincmd) rebuild(ctx context.Context, fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}

	count, err := c.e.Rebuild(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("rebuilt %d layer(s)\n", count)
	return nil
}
