package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/pkg/errors"
)

func (c maincmd) inspect(ctx context.Context, fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}
	args = fs.Args()
	if len(args) == 0 {
		return errors.New("usage: statekit inspect <ref>")
	}

	info, err := c.e.Inspect(ctx, args[0])
	if err != nil {
		return err
	}

	parent := "(root)"
	if info.Parent != nil {
		parent = info.Parent.Short()
	}
	fmt.Printf("hash:        %s\n", info.Hash)
	fmt.Printf("instruction: %s\n", info.Instruction)
	fmt.Printf("parent:      %s\n", parent)
	fmt.Printf("time:        %s\n", info.Time.Time())
	fmt.Printf("size:        %d\n", info.Size)
	return nil
}
