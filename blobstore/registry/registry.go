// Package registry lets blobstore backends register themselves under a
// short name, so the CLI can select one by name from a config file.
package registry

import (
	"context"
	"fmt"

	"github.com/statekit/statekit/blobstore"
)

// Factory builds a blobstore.Store from a JSON-decoded config map.
type Factory func(ctx context.Context, conf map[string]interface{}) (blobstore.Store, error)

var factories = make(map[string]Factory)

// Register adds a Factory under key. Backends call this from an init
// function.
func Register(key string, f Factory) {
	factories[key] = f
}

// Create builds a blobstore.Store using the Factory registered under key.
func Create(ctx context.Context, key string, conf map[string]interface{}) (blobstore.Store, error) {
	f, ok := factories[key]
	if !ok {
		return nil, fmt.Errorf("key %s not found in blobstore registry", key)
	}
	return f(ctx, conf)
}
