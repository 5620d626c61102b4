package cli

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/gogallery/internal/config"
	"github.com/rshade/gogallery/internal/scroll"
)

func TestApplyServeFlags_OnlyChanged(t *testing.T) {
	cmd := NewServeCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--rows", "5", "--num-workers", "2", "--layout", "mask"}))

	cfg := config.Default()
	var flags serveFlags
	flags.rows = 5
	flags.workers = 2
	flags.layout = "mask"
	flags.port = 9999 // not set on the command line
	applyServeFlags(cmd, cfg, flags)

	assert.Equal(t, 5, cfg.Gallery.Rows)
	assert.Equal(t, 3, cfg.Gallery.Cols)
	assert.Equal(t, 2, cfg.Thumbnails.Workers)
	assert.Equal(t, "mask", cfg.Gallery.Layout)
	assert.Equal(t, 3353, cfg.Server.Port)
}

func TestPrepareThumbnailStore(t *testing.T) {
	t.Run("temporary", func(t *testing.T) {
		store, err := prepareThumbnailStore(config.Default())
		require.NoError(t, err)
		assert.True(t, store.temp)
		assert.DirExists(t, store.dir)

		require.NoError(t, store.cleanup())
		assert.NoDirExists(t, store.dir)
	})

	t.Run("configured directory is kept", func(t *testing.T) {
		cfg := config.Default()
		cfg.Thumbnails.Dir = t.TempDir()

		store, err := prepareThumbnailStore(cfg)
		require.NoError(t, err)
		assert.Equal(t, cfg.Thumbnails.Dir, store.dir)
		assert.Nil(t, store.index)

		require.NoError(t, store.cleanup())
		assert.DirExists(t, cfg.Thumbnails.Dir)
	})

	t.Run("cache", func(t *testing.T) {
		cfg := config.Default()
		cfg.Cache.Enabled = true
		cfg.Cache.Dir = t.TempDir()

		store, err := prepareThumbnailStore(cfg)
		require.NoError(t, err)
		require.NotNil(t, store.index)
		assert.Equal(t, store.index.ThumbDir(), store.dir)
		assert.False(t, store.temp)
	})
}

func TestScrollConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Scroll.Policy = "renumber"
	cfg.Scroll.ScrollFactor = 15
	cfg.Scroll.DropStale = true
	cfg.Gallery.Rows = 4
	cfg.Gallery.Cols = 5

	sc, err := scrollConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, scroll.PolicyRenumber, sc.Policy)
	assert.InDelta(t, 15.0, sc.ScrollFactor, 1e-9)
	assert.True(t, sc.DropStale)
	assert.Equal(t, 4, sc.PageRows)
	assert.Equal(t, 5, sc.RenumberStep)

	cfg.Scroll.Policy = "teleport"
	_, err = scrollConfig(cfg)
	assert.ErrorIs(t, err, scroll.ErrUnknownPolicy)
}

func TestRunServe_ShutsDownWithContext(t *testing.T) {
	galleryDir := t.TempDir()
	f, err := os.Create(filepath.Join(galleryDir, "a.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	require.NoError(t, f.Close())

	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Gallery.Dir = galleryDir
	cfg.Thumbnails.Dir = t.TempDir()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, runServe(ctx, cfg))
}

func TestRunServe_MissingDir(t *testing.T) {
	cfg := config.Default()
	cfg.Gallery.Dir = filepath.Join(t.TempDir(), "missing")

	assert.Error(t, runServe(context.Background(), cfg))
}

func TestViewCmd_RequiresTerminal(t *testing.T) {
	// go test runs without a terminal on stdout.
	if isTerminal(os.Stdout) {
		t.Skip("stdout is a terminal")
	}
	cmd := NewViewCmd()
	cmd.SetArgs([]string{})
	assert.ErrorIs(t, cmd.Execute(), ErrNotTerminal)
}
