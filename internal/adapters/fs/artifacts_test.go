package fs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/gimport/internal/adapters/fs"
)

func TestArtifacts_CopyPreservesModTime(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "m.so")
	dst := filepath.Join(dir, "m.so.reload1")
	writeFile(t, src, "elf-bytes")

	mtime := time.Now().Add(-time.Hour).Truncate(time.Second)
	setMTime(t, src, mtime)

	a := fs.NewArtifacts()
	require.NoError(t, a.Copy(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "elf-bytes", string(data))

	got, err := a.ModTime(dst)
	require.NoError(t, err)
	assert.True(t, got.Equal(mtime))

	matches, err := a.Glob(filepath.Join(dir, "m.so.reload1.tmp*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestArtifacts_CopyReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "m.so")
	dst := filepath.Join(dir, "m.so.reload1")
	writeFile(t, src, "new")
	writeFile(t, dst, "old")

	require.NoError(t, fs.NewArtifacts().Copy(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestArtifacts_CopyFailures(t *testing.T) {
	dir := t.TempDir()
	a := fs.NewArtifacts()

	err := a.Copy(filepath.Join(dir, "missing.so"), filepath.Join(dir, "x"))
	require.Error(t, err)

	src := filepath.Join(dir, "m.so")
	writeFile(t, src, "x")
	err = a.Copy(src, filepath.Join(dir, "no", "such", "dir", "m.so.reload1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create file")
}

func TestArtifacts_ExistsGlobRemove(t *testing.T) {
	dir := t.TempDir()
	a := fs.NewArtifacts()

	path := filepath.Join(dir, "m_old.so")
	writeFile(t, path, "x")

	assert.True(t, a.Exists(path))
	assert.False(t, a.Exists(dir))

	matches, err := a.Glob(filepath.Join(dir, "m_*.so"))
	require.NoError(t, err)
	assert.Equal(t, []string{path}, matches)

	require.NoError(t, a.Remove(path))
	assert.False(t, a.Exists(path))
	require.Error(t, a.Remove(path))

	_, err = a.ModTime(path)
	require.Error(t, err)
}
