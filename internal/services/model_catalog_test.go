package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quantfold/studio/internal/database/testutil"
	"github.com/quantfold/studio/internal/models"
)

func newCatalog(t *testing.T) *ModelCatalog {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	catalog, err := NewModelCatalog(db)
	require.NoError(t, err)
	return catalog
}

func TestCatalogSaveAndGet(t *testing.T) {
	catalog := newCatalog(t)

	err := catalog.Save(context.Background(), ModelInput{
		Name: "growth",
		Sources: []models.ModelSource{
			{Alias: "holdings", Contents: "key symbol string;"},
			{Alias: "prices", Contents: "key price float;"},
		},
	})
	require.NoError(t, err)

	model, ok, err := catalog.Get(context.Background(), "growth")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, model.Sources, 2)
	require.Equal(t, "holdings", model.Sources[0].Alias)
}

func TestCatalogGetMissing(t *testing.T) {
	catalog := newCatalog(t)

	_, ok, err := catalog.Get(context.Background(), "nope")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCatalogSaveReplaces(t *testing.T) {
	catalog := newCatalog(t)

	require.NoError(t, catalog.Save(context.Background(), ModelInput{Name: "growth"}))
	require.NoError(t, catalog.Save(context.Background(), ModelInput{
		Name:    "growth",
		Sources: []models.ModelSource{{Alias: "v2", Contents: "..."}},
	}))

	model, ok, err := catalog.Get(context.Background(), "growth")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, model.Sources, 1)
	require.Equal(t, "v2", model.Sources[0].Alias)

	summaries, err := catalog.List(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
}

func TestCatalogRequiresName(t *testing.T) {
	catalog := newCatalog(t)
	require.Error(t, catalog.Save(context.Background(), ModelInput{Name: "  "}))
}

func TestCatalogListSortsByName(t *testing.T) {
	catalog := newCatalog(t)

	require.NoError(t, catalog.Save(context.Background(), ModelInput{Name: "zeta"}))
	require.NoError(t, catalog.Save(context.Background(), ModelInput{Name: "alpha"}))

	summaries, err := catalog.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, "alpha", summaries[0].Name)
	require.Equal(t, "zeta", summaries[1].Name)
}

func TestCatalogLoadDir(t *testing.T) {
	catalog := newCatalog(t)

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "finance"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "finance", "holdings.sql"), []byte("key symbol string;"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "top.sql"), []byte("key id int;"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.md"), []byte("ignored"), 0o644))

	loaded, err := catalog.LoadDir(context.Background(), dir, ".sql")
	require.NoError(t, err)
	require.Equal(t, 2, loaded)

	model, ok, err := catalog.Get(context.Background(), "finance.holdings")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "holdings", model.Sources[0].Alias)
	require.Equal(t, "key symbol string;", model.Sources[0].Contents)

	_, ok, err = catalog.Get(context.Background(), "top")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCatalogLoadDirEmptyPathIsNoop(t *testing.T) {
	catalog := newCatalog(t)

	loaded, err := catalog.LoadDir(context.Background(), "", ".sql")
	require.NoError(t, err)
	require.Zero(t, loaded)
}
