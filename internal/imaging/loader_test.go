package imaging

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestImage encodes img as a PNG in a temporary directory and returns
// its path.
func writeTestImage(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frame.png")

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, png.Encode(f, img))
	return path
}

func TestImageCache_Load(t *testing.T) {
	path := writeTestImage(t, createPatternImage(64, 48))
	cache := NewImageCache()

	frame, err := cache.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	img := frame.AsImage()
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())

	r, g, b, _ := img.At(5, 5).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Zero(t, g)
	assert.Zero(t, b)
}

func TestImageCache_LoadCached(t *testing.T) {
	path := writeTestImage(t, createInMemoryImage(8, 8, color.White))
	cache := NewImageCache()

	first, err := cache.Load(path)
	require.NoError(t, err)

	// Removing the file proves the second load is served from memory.
	require.NoError(t, os.Remove(path))

	second, err := cache.Load(path)
	require.NoError(t, err)
	assert.Same(t, first.AsImage(), second.AsImage())
}

func TestImageCache_LoadErrors(t *testing.T) {
	cache := NewImageCache()

	_, err := cache.Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	notImage := filepath.Join(t.TempDir(), "notes.png")
	require.NoError(t, os.WriteFile(notImage, []byte("not an image"), 0o600))
	_, err = cache.Load(notImage)
	assert.Error(t, err)

	assert.Zero(t, cache.Len())
}

func TestImageCache_EvictAndClear(t *testing.T) {
	cache := NewImageCache()
	a := writeTestImage(t, createInMemoryImage(4, 4, color.Black))
	b := writeTestImage(t, createInMemoryImage(4, 4, color.White))

	_, err := cache.Load(a)
	require.NoError(t, err)
	_, err = cache.Load(b)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())

	cache.Evict(a)
	cache.Evict("never-loaded")
	assert.Equal(t, 1, cache.Len())

	cache.Clear()
	assert.Zero(t, cache.Len())
}

func TestImageCache_ConcurrentLoad(t *testing.T) {
	path := writeTestImage(t, createPatternImage(32, 32))
	cache := NewImageCache()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(path); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent load failed: %v", err)
	}
	assert.Equal(t, 1, cache.Len())
}
