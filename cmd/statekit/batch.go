package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

func (c maincmd) batch(ctx context.Context, fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errors.Wrap(err, "parsing args")
	}
	args = fs.Args()
	if len(args) == 0 {
		return errors.New("usage: statekit batch <file.json>")
	}

	b, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrapf(err, "reading %s", args[0])
	}

	var instructions []string
	if err := json.Unmarshal(b, &instructions); err != nil {
		return errors.Wrapf(err, "decoding %s as a JSON array of instructions", args[0])
	}

	results, err := c.e.Batch(ctx, instructions)
	for _, res := range results {
		fmt.Printf("%s %s\n", res.Kind, res.Hash.Short())
	}
	return err
}
