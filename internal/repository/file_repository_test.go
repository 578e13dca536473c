package repository_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nikolayk812/storefront/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRepository_Contract(t *testing.T) {
	repo, err := repository.NewFile(t.TempDir())
	require.NoError(t, err)

	kvContract(t, repo)
}

func TestFileRepository_PersistsAcrossInstances(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "store")
	ctx := t.Context()

	first, err := repository.NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "@cart_items", []byte(`[{"id":3,"quantity":2}]`)))

	second, err := repository.NewFile(dir)
	require.NoError(t, err)
	got, err := second.Get(ctx, "@cart_items")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":3,"quantity":2}]`, string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "@cart_items.json", entries[0].Name())
}

func TestFileRepository_EscapesKeys(t *testing.T) {
	dir := t.TempDir()
	repo, err := repository.NewFile(dir)
	require.NoError(t, err)

	require.NoError(t, repo.Set(t.Context(), "../escape/attempt", []byte(`1`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "..%2Fescape%2Fattempt.json", entries[0].Name())
}

func TestNewFile_EmptyDir(t *testing.T) {
	_, err := repository.NewFile("  ")
	require.EqualError(t, err, "dir is empty")
}
