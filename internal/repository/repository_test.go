package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/nikolayk812/storefront/internal/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func startPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	postgresContainer, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			"../migrations/01_kv_entries.up.sql"),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("pc.ConnectionString: %w", err)
	}

	return postgresContainer, connStr, nil
}

// kvContract checks the behaviour every port.KVStore must share.
func kvContract(t *testing.T, store port.KVStore) {
	t.Helper()
	ctx := t.Context()

	key := "@" + gofakeit.Word() + "_" + gofakeit.UUID()

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got, "absent key must read as nil")

	first := []byte(`[{"id":1,"quantity":1}]`)
	require.NoError(t, store.Set(ctx, key, first))

	got, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, first, got)

	second := []byte(`[{"id":1,"quantity":2},{"id":5,"quantity":1}]`)
	require.NoError(t, store.Set(ctx, key, second))

	got, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, second, got, "last write wins")

	require.NoError(t, store.Clear(ctx, key))
	got, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got)

	// clearing an absent key is not an error
	require.NoError(t, store.Clear(ctx, key))

	_, err = store.Get(ctx, "")
	require.EqualError(t, err, "key is empty")
	require.EqualError(t, store.Set(ctx, "", first), "key is empty")
	require.EqualError(t, store.Clear(ctx, ""), "key is empty")
}
