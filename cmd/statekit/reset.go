package main

import (
	"context"
	"flag"

	"github.com/pkg/errors"
)

func (c maincmd) reset(_ context.Context, fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}
	return c.e.Reset()
}
