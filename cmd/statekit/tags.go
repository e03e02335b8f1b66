package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/pkg/errors"
)

func (c maincmd) tags(_ context.Context, fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}
	for _, t := range c.e.Tags() {
		fmt.Printf("%s\t%s\n", t.Name, t.Hash.Short())
	}
	return nil
}
