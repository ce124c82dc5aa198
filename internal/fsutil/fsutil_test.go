package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindFilesByExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0755))
	for _, name := range []string{"a.json", "b.json", "nested/c.json", "ignore.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, filepath.FromSlash(name)), []byte("{}"), 0644))
	}

	files, err := FindFilesByExtension(dir, ".json")
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.json"),
		filepath.Join(dir, "nested", "c.json"),
	}, files)
}

func TestFindFilesByExtension_SingleFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "only.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	t.Run("matching file is returned", func(t *testing.T) {
		t.Parallel()

		files, err := FindFilesByExtension(path, ".json")
		require.NoError(t, err)
		require.Equal(t, []string{path}, files)
	})

	t.Run("non-matching file yields nothing", func(t *testing.T) {
		t.Parallel()

		files, err := FindFilesByExtension(path, ".hcl")
		require.NoError(t, err)
		require.Empty(t, files)
	})
}

func TestFindFilesByExtension_Errors(t *testing.T) {
	t.Parallel()

	t.Run("empty extension", func(t *testing.T) {
		t.Parallel()

		_, err := FindFilesByExtension(t.TempDir(), "")
		require.Error(t, err)
	})

	t.Run("missing root", func(t *testing.T) {
		t.Parallel()

		_, err := FindFilesByExtension(filepath.Join(t.TempDir(), "nope"), ".json")
		require.Error(t, err)
	})
}
