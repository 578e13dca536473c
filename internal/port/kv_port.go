package port

import (
	"context"
	"errors"
	"fmt"
)

// KVStore persists opaque values under string keys. Last write wins; there is
// no atomicity across keys. Get returns a nil slice and no error when the key
// has never been set or was cleared.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Clear(ctx context.Context, key string) error
}

// KVBatchClearer is implemented by stores that remove several keys in one
// atomic step.
type KVBatchClearer interface {
	ClearAll(ctx context.Context, keys ...string) (int64, error)
}

// ClearKeys removes keys in one step when store is a KVBatchClearer and one
// key at a time otherwise.
func ClearKeys(ctx context.Context, store KVStore, keys ...string) error {
	if batch, ok := store.(KVBatchClearer); ok {
		if _, err := batch.ClearAll(ctx, keys...); err != nil {
			return fmt.Errorf("store.ClearAll: %w", err)
		}
		return nil
	}

	var errs []error
	for _, key := range keys {
		if err := store.Clear(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("store.Clear %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
