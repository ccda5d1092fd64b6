package docscan

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/meghashyamc/pinpoint/config"
	"github.com/meghashyamc/pinpoint/db/documentdb"
	"github.com/meghashyamc/pinpoint/logger"
	"github.com/stretchr/testify/require"
)

func newTestLogger() logger.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestService(t *testing.T) (*Service, documentdb.DB) {
	t.Helper()
	assert := require.New(t)

	t.Setenv("DOCUMENT_DB_PATH", filepath.Join(t.TempDir(), "pinpoint.db"))

	cfg, err := config.Load()
	assert.NoError(err, "could not load config")

	store, err := documentdb.New(newTestLogger(), cfg)
	assert.NoError(err, "could not create document database")
	assert.NoError(store.Setup(), "could not set up document database")
	t.Cleanup(func() { store.Close() })

	return New(newTestLogger(), store), store
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
}

func TestScanIndexesDocuments(t *testing.T) {
	assert := require.New(t)
	service, store := newTestService(t)

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "tax-return.pdf"))
	writeFile(t, filepath.Join(root, "bills", "electricity.pdf"))
	writeFile(t, filepath.Join(root, "notes.txt"))

	result, err := service.Scan(root)
	assert.NoError(err)
	assert.Equal(2, result.Discovered)
	assert.Equal(2, result.Indexed)

	items, err := store.Search("tax-return")
	assert.NoError(err)
	assert.Len(items, 1)
	assert.Equal(documentdb.TypeDocument, items[0].Type)
	assert.Equal("tax-return", items[0].Title)
}

func TestScanSkipsAlreadyIndexed(t *testing.T) {
	assert := require.New(t)
	service, store := newTestService(t)

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "report.pdf"))

	_, err := service.Scan(root)
	assert.NoError(err)

	result, err := service.Scan(root)
	assert.NoError(err)
	assert.Equal(1, result.Discovered)
	assert.Zero(result.Indexed)

	count, err := store.Count()
	assert.NoError(err)
	assert.EqualValues(1, count)
}

func TestScanSkipsDotFoldersAndDeepTrees(t *testing.T) {
	assert := require.New(t)
	service, _ := newTestService(t)

	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".cache", "hidden.pdf"))
	writeFile(t, filepath.Join(root, "a", "b", "c", "d", "too-deep.pdf"))
	writeFile(t, filepath.Join(root, "a", "b", "reachable.pdf"))

	result, err := service.Scan(root)
	assert.NoError(err)
	assert.Equal(1, result.Discovered)
	assert.Equal(1, result.Indexed)
}
