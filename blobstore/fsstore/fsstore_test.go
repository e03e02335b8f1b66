package fsstore

import (
	"context"
	"testing"

	"github.com/statekit/statekit/statekittest"
)

func TestStore(t *testing.T) {
	dir := t.TempDir()
	statekittest.BlobStore(context.Background(), t, New(dir))
}

func TestStoreProperty(t *testing.T) {
	dir := t.TempDir()
	statekittest.BlobStoreProperty(context.Background(), t, New(dir))
}
