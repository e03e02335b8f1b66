// Command statekit is a CLI for building up and navigating a chain of
// content-addressed filesystem layers, one per executed instruction.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/bobg/subcmd"
	"github.com/pkg/errors"

	"github.com/statekit/statekit/blobstore"
	_ "github.com/statekit/statekit/blobstore/fsstore"
	_ "github.com/statekit/statekit/blobstore/lrustore"
	_ "github.com/statekit/statekit/blobstore/memstore"
	"github.com/statekit/statekit/blobstore/registry"
	"github.com/statekit/statekit/engine"
)

type maincmd struct {
	e *engine.Engine
}

func main() {
	stateDir := flag.String("dir", "", "state directory (default: $STATEKIT_DIR, or .statekit)")
	workdir := flag.String("work", "", "working directory (default: $STATEKIT_WORK, or <dir>/work)")
	config := flag.String("config", "", "optional JSON config file selecting a blobstore backend")
	flag.Parse()

	ctx := context.Background()

	cfg := engine.Config{
		StateDir: firstNonEmpty(*stateDir, os.Getenv("STATEKIT_DIR"), os.Getenv("SEQUENTIAL_MACHINE_DIR")),
		Workdir:  firstNonEmpty(*workdir, os.Getenv("STATEKIT_WORK"), os.Getenv("SEQUENTIAL_MACHINE_WORK")),
	}

	var blobs blobstore.Store
	if *config != "" {
		var err error
		blobs, err = blobstoreFromConfig(ctx, *config)
		if err != nil {
			log.Fatal(err)
		}
	}

	e, err := engine.New(cfg, blobs, nil)
	if err != nil {
		log.Fatal(err)
	}

	if err := subcmd.Run(ctx, maincmd{e: e}, flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func (c maincmd) Subcmds() subcmd.Map {
	return subcmd.Map{
		"run":      subcmd.Subcmd{F: c.run},
		"exec":     subcmd.Subcmd{F: c.exec},
		"batch":    subcmd.Subcmd{F: c.batch},
		"history":  subcmd.Subcmd{F: c.history},
		"status":   subcmd.Subcmd{F: c.status},
		"diff":     subcmd.Subcmd{F: c.diff},
		"checkout": subcmd.Subcmd{F: c.checkout},
		"tag":      subcmd.Subcmd{F: c.tag},
		"tags":     subcmd.Subcmd{F: c.tags},
		"inspect":  subcmd.Subcmd{F: c.inspect},
		"rebuild":  subcmd.Subcmd{F: c.rebuild},
		"reset":    subcmd.Subcmd{F: c.reset},
		"head":     subcmd.Subcmd{F: c.head},
	}
}

func blobstoreFromConfig(ctx context.Context, filename string) (blobstore.Store, error) {
	var conf map[string]interface{}
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "opening config file %s", filename)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&conf); err != nil {
		return nil, errors.Wrapf(err, "decoding config file %s", filename)
	}

	typ, ok := conf["type"].(string)
	if !ok {
		return nil, errors.Errorf("config file %s missing `type` parameter", filename)
	}
	return registry.Create(ctx, typ, conf)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
