package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/pkg/errors"
)

func (c maincmd) head(_ context.Context, fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}

	h := c.e.Head()
	if h == nil {
		fmt.Println("(empty)")
		return nil
	}
	fmt.Println(h.Short())
	return nil
}
