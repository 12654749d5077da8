package scratch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir_WriteFileAndClose(t *testing.T) {
	parent := t.TempDir()

	dir, err := New(parent)
	require.NoError(t, err)
	assert.DirExists(t, dir.Path())
	assert.Equal(t, parent, filepath.Dir(dir.Path()))

	path, err := dir.WriteFile("pg_service.conf", []byte("[benchload]\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir.Path(), "pg_service.conf"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	if os.PathSeparator == '/' {
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	require.NoError(t, dir.Close())
	assert.NoDirExists(t, dir.Path())

	entries, err := os.ReadDir(parent)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing may be left behind")
}

func TestDir_CloseIsIdempotent(t *testing.T) {
	dir, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, dir.Close())
	require.NoError(t, dir.Close())
}

func TestDir_WriteFileRejectsPaths(t *testing.T) {
	dir, err := New(t.TempDir())
	require.NoError(t, err)
	defer dir.Close()

	for _, name := range []string{"../escape", "sub/file", "..", "."} {
		_, err := dir.WriteFile(name, nil)
		assert.Error(t, err, name)
	}
}

func TestNew_FailsForMissingParent(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
