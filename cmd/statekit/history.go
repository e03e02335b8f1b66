package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/pkg/errors"
)

func (c maincmd) history(_ context.Context, fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}

	for _, l := range c.e.History() {
		parent := "(root)"
		if l.Parent != nil {
			parent = l.Parent.Short()
		}
		fmt.Printf("%s  parent=%s  %s\n", l.Hash.Short(), parent, l.Instruction)
	}
	return nil
}
