package memstore

import (
	"context"
	"testing"

	"github.com/statekit/statekit/statekittest"
)

func TestStore(t *testing.T) {
	statekittest.BlobStore(context.Background(), t, New())
}

func TestStoreProperty(t *testing.T) {
	statekittest.BlobStoreProperty(context.Background(), t, New())
}
