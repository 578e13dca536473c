package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront/internal/db"
	"github.com/nikolayk812/storefront/internal/port"
)

// KVRepository stores entries in Postgres, one row per (owner, key). The owner
// is the device the state belongs to.
type KVRepository struct {
	q       *db.Queries
	pool    *pgxpool.Pool
	ownerID uuid.UUID
}

var (
	_ port.KVStore       = (*KVRepository)(nil)
	_ port.KVBatchClearer = (*KVRepository)(nil)
)

func NewKV(pool *pgxpool.Pool, ownerID uuid.UUID) (*KVRepository, error) {
	if ownerID == uuid.Nil {
		return nil, fmt.Errorf("ownerID is empty")
	}

	return &KVRepository{
		q:       db.New(pool),
		pool:    pool,
		ownerID: ownerID,
	}, nil
}

func (r *KVRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	value, err := r.q.GetEntry(ctx, db.GetEntryParams{
		OwnerID: r.ownerID,
		Key:     key,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("q.GetEntry: %w", err)
	}

	return value, nil
}

func (r *KVRepository) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}
	if value == nil {
		value = []byte{}
	}

	err := r.q.SetEntry(ctx, db.SetEntryParams{
		OwnerID: r.ownerID,
		Key:     key,
		Value:   value,
	})
	if err != nil {
		return fmt.Errorf("q.SetEntry: %w", err)
	}

	return nil
}

func (r *KVRepository) Clear(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	if _, err := r.q.DeleteEntry(ctx, db.DeleteEntryParams{
		OwnerID: r.ownerID,
		Key:     key,
	}); err != nil {
		return fmt.Errorf("q.DeleteEntry: %w", err)
	}

	return nil
}

// ClearAll removes every given key in a single transaction and reports how
// many entries existed.
func (r *KVRepository) ClearAll(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	for _, key := range keys {
		if key == "" {
			return 0, fmt.Errorf("key is empty")
		}
	}

	return withTx(ctx, r.pool, r.q, func(q *db.Queries) (int64, error) {
		deleted, err := q.DeleteEntries(ctx, db.DeleteEntriesParams{
			OwnerID: r.ownerID,
			Keys:    keys,
		})
		if err != nil {
			return 0, fmt.Errorf("q.DeleteEntries: %w", err)
		}
		return deleted, nil
	})
}
