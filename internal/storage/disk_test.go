package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/reconcile"
)

func TestDiskSaveAndDelete(t *testing.T) {
	ctx := context.Background()
	d, err := NewDisk(t.TempDir(), "/media/")
	require.NoError(t, err)

	name, err := d.Save(ctx, "projects/1/renderings", &reconcile.Upload{Filename: "Front View.JPG", Data: []byte("img")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "projects/1/renderings/"))
	assert.True(t, strings.HasSuffix(name, ".jpg"))
	assert.True(t, d.Exists(name))
	assert.Equal(t, "/media/"+name, d.URL(name))

	data, err := os.ReadFile(filepath.Join(d.Root(), filepath.FromSlash(name)))
	require.NoError(t, err)
	assert.Equal(t, "img", string(data))

	require.NoError(t, d.Delete(ctx, name))
	assert.False(t, d.Exists(name))
	assert.NoError(t, d.Delete(ctx, name), "deleting twice is not an error")
}

func TestDiskStaysInsideRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	d, err := NewDisk(filepath.Join(root, "media"), "/media")
	require.NoError(t, err)

	name, err := d.Save(ctx, "../../escape", &reconcile.Upload{Filename: "x.pdf", Data: []byte("x")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "escape/"))
	assert.True(t, d.Exists(name))

	outside := filepath.Join(root, "outside.txt")
	require.NoError(t, os.WriteFile(outside, []byte("keep"), 0o644))
	require.NoError(t, d.Delete(ctx, "../outside.txt"))
	_, err = os.Stat(outside)
	assert.NoError(t, err)

	assert.Error(t, d.Delete(ctx, "/"))
}
