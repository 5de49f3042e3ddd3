package ports

import (
	"context"
	"errors"
)

// ErrNoData is returned by KVStorage.Get when the key has never been
// written. Callers treat it as "empty store", never as a failure.
var ErrNoData = errors.New("no data under key")

// KVStorage is the durable key-value collaborator the path store persists
// into. Implementations are synchronous and origin-scoped by key prefix;
// the store always writes its full payload under a single fixed key.
type KVStorage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
