package filesystem_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unixpariah/nh/pkg/filesystem"
)

func TestOSBackend(t *testing.T) {
	fsys := filesystem.NewOS()
	dir := t.TempDir()
	file := filepath.Join(dir, "system-1-link")

	require.NoError(t, fsys.WriteFile(file, []byte("x"), 0o644))

	info, err := fsys.Stat(file)
	require.NoError(t, err)
	assert.False(t, info.IsDir())

	link := filepath.Join(dir, "system")
	require.NoError(t, os.Symlink("system-1-link", link))

	dst, err := fsys.Readlink(link)
	require.NoError(t, err)
	assert.Equal(t, "system-1-link", dst)

	linfo, err := fsys.Lstat(link)
	require.NoError(t, err)
	assert.NotZero(t, linfo.ModTime())

	entries, err := fsys.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	require.NoError(t, fsys.Remove(link))
	_, err = fsys.Stat(link)
	assert.Error(t, err)
}

func TestMemBackend(t *testing.T) {
	fsys := filesystem.NewMem()

	// Readlink on the in-memory backend reads back what WriteFile
	// stored, standing in for a symlink target.
	require.NoError(t, fsys.WriteFile("/gcroots/auto/0", []byte("/work/proj/result"), 0o644))

	dst, err := fsys.Readlink("/gcroots/auto/0")
	require.NoError(t, err)
	assert.Equal(t, "/work/proj/result", dst)

	require.NoError(t, fsys.Remove("/gcroots/auto/0"))
	assert.Error(t, fsys.Remove("/gcroots/auto/0"))
}
