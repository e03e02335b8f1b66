package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/pkg/errors"

	"github.com/statekit/statekit/engine"
)

func (c maincmd) status(ctx context.Context, fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}

	result, err := c.e.Status(ctx)
	if err != nil {
		return err
	}
	fmt.Println(result.Summary)
	printPathDiff(result.PathDiff)
	return nil
}

func printPathDiff(diff engine.PathDiff) {
	if diff.Clean() {
		fmt.Println("clean")
		return
	}
	for _, p := range diff.Added {
		fmt.Printf("A %s\n", p)
	}
	for _, p := range diff.Modified {
		fmt.Printf("M %s\n", p)
	}
	for _, p := range diff.Deleted {
		fmt.Printf("D %s\n", p)
	}
}
