package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJavaFile(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("class "+name+" {}\n"), 0o600))

	return path
}

func TestDiscoverFiles_SingleFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeJavaFile(t, dir, "Main.java")

	files, err := discoverFiles([]string{path})
	require.NoError(t, err)
	require.Len(t, files, 1)

	abs, _ := filepath.Abs(path)
	assert.Equal(t, abs, files[0])
}

func TestDiscoverFiles_WalksDirectoryAndFiltersExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeJavaFile(t, dir, "Main.java")
	writeJavaFile(t, dir, "Helper.java")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# hi"), 0o600))

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o750))
	writeJavaFile(t, sub, "Nested.java")

	files, err := discoverFiles([]string{dir})
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestDiscoverFiles_DeduplicatesAcrossArgs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeJavaFile(t, dir, "Main.java")

	files, err := discoverFiles([]string{path, dir})
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestFilterSourceFiles_KeepsOnlyJavaExtension(t *testing.T) {
	t.Parallel()

	filtered := filterSourceFiles([]string{"a.java", "b.txt", "c.java"})
	assert.Equal(t, []string{"a.java", "c.java"}, filtered)
}

func TestRootsFromFiles_DedupesDirectories(t *testing.T) {
	t.Parallel()

	roots := rootsFromFiles([]string{"/a/b/X.java", "/a/b/Y.java", "/a/c/Z.java"})
	assert.ElementsMatch(t, []string{"/a/b", "/a/c"}, roots)
}
