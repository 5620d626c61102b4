package library

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
	}
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "b.jpg", "a.PNG", "notes.txt", "sub/c.jpeg", "sub/deeper/d.gif")

	images, err := Scan(context.Background(), root, ScanOptions{})
	require.NoError(t, err)

	paths := make([]string, len(images))
	for i, im := range images {
		paths[i] = im.ServerPath
	}
	assert.Equal(t, []string{"imgs/a.PNG", "imgs/b.jpg", "imgs/sub/c.jpeg"}, paths)
	assert.Equal(t, "c.jpeg", images[2].Name())
	assert.True(t, filepath.IsAbs(images[0].AbsPath))
	assert.Equal(t, int64(1), images[0].Size)
}

func TestScan_NotDirectory(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.jpg")

	_, err := Scan(context.Background(), filepath.Join(root, "a.jpg"), ScanOptions{})
	assert.ErrorIs(t, err, ErrNotDirectory)

	_, err = Scan(context.Background(), filepath.Join(root, "missing"), ScanOptions{})
	assert.Error(t, err)
}

func TestScan_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.jpg")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Scan(ctx, root, ScanOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestShuffle_SeedIsDeterministic(t *testing.T) {
	mk := func() []Image {
		out := make([]Image, 20)
		for i := range out {
			out[i] = Image{ServerPath: ImagePrefix + string(rune('a'+i)) + ".jpg"}
		}
		return out
	}

	a, b := mk(), mk()
	Shuffle(a, 7)
	Shuffle(b, 7)

	assert.Equal(t, a, b)
	assert.NotEqual(t, mk(), a)
	assert.ElementsMatch(t, mk(), a)
}

func TestCatalog(t *testing.T) {
	c := NewCatalog([]Image{
		{ServerPath: "imgs/0.jpg"},
		{ServerPath: "imgs/1.jpg"},
		{ServerPath: "imgs/2.jpg"},
		{ServerPath: "imgs/3.jpg"},
	})

	assert.Equal(t, 4, c.Len())
	assert.Equal(t, 2, c.Rows(3))
	assert.Equal(t, 0, c.Rows(0))

	c.SetThumbnail(1, "thumbs/1.jpg")
	assert.Equal(t, []int{0, 2}, c.MissingThumbnails(-5, 3))

	im, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, "thumbs/1.jpg", im.DisplayPath())

	im, _ = c.Get(0)
	assert.Equal(t, "imgs/0.jpg", im.DisplayPath())

	_, ok = c.Get(9)
	assert.False(t, ok)

	assert.Len(t, c.Slice(2, 10), 2)
	assert.Nil(t, c.Slice(3, 1))

	s := c.Slice(0, 1)
	s[0].ThumbPath = "mutated"
	im, _ = c.Get(0)
	assert.Empty(t, im.ThumbPath, "slice is a copy")
}
