package devseed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hay-kot/tabula/internal/core/item"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	items := Generate(100, NewRand(42))
	require.Len(t, items, 100)
	assert.Equal(t, "Item 1", items[0].Title)
	assert.Equal(t, "Item 100", items[99].Title)

	for _, it := range items {
		assert.Empty(t, it.ID, "ids are assigned by the store")
		assert.True(t, it.Type.Valid())
	}

	again := Generate(100, NewRand(42))
	assert.Equal(t, items, again, "same seed yields same data")
}

func TestNewRand_ZeroIsNil(t *testing.T) {
	assert.Nil(t, NewRand(0))
	assert.Len(t, Generate(3, nil), 3)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "seed.json")
		writeFile(t, path, `[{"id":"a","title":"Alpha","agreed":true,"type":"Type B"},{"title":"Beta"}]`)

		items, err := Load(path)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, item.Item{ID: "a", Title: "Alpha", Agreed: true, Type: item.TypeB}, items[0])
		assert.Equal(t, item.TypeA, items[1].Type, "missing type defaults")
	})

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "seed.yaml")
		writeFile(t, path, "- title: Gamma\n  type: Type C\n")

		items, err := Load(path)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, item.TypeC, items[0].Type)
	})

	t.Run("invalid entry", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		writeFile(t, path, `[{"title":""}]`)

		_, err := Load(path)
		assert.ErrorIs(t, err, item.ErrValidation)
	})

	t.Run("empty path", func(t *testing.T) {
		items, err := Load("")
		require.NoError(t, err)
		assert.Nil(t, items)
	})
}

func TestLoadGlob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a", "one.json"), `[{"title":"One"}]`)
	writeFile(t, filepath.Join(dir, "b", "c", "two.json"), `[{"title":"Two"}]`)

	items, err := LoadGlob(filepath.Join(dir, "**", "*.json"))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "One", items[0].Title)
	assert.Equal(t, "Two", items[1].Title)

	_, err = LoadGlob(filepath.Join(dir, "*.yaml"))
	assert.Error(t, err)
}
