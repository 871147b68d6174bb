package imaging

import (
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"

	"github.com/cockroachdb/errors"
)

// ImageCache keeps decoded frames keyed by file path so that a tracker fed
// the same capture repeatedly, or a rectify call following a detect call,
// does not decode the file again.
//
// ImageCache is safe for concurrent use by multiple goroutines.
//
// # Memory Management
//
// Cached images remain in memory until explicitly removed via Evict() or
// Clear(). Long-running servers should evict frames once a session closes.
type ImageCache struct {
	mu     sync.RWMutex
	images map[string]image.Image
}

// NewImageCache creates and initializes a new empty image cache.
func NewImageCache() *ImageCache {
	return &ImageCache{
		images: make(map[string]image.Image),
	}
}

// Load retrieves a frame from the cache or decodes it from disk.
//
// Supported formats are PNG, JPEG and GIF. The image is cached under the
// exact path string provided; a relative and an absolute path to the same
// file are separate entries.
func (c *ImageCache) Load(path string) (Still, error) {
	c.mu.RLock()
	if img, ok := c.images[path]; ok {
		c.mu.RUnlock()
		return NewStill(img), nil
	}
	c.mu.RUnlock()

	f, err := os.Open(path)
	if err != nil {
		return Still{}, errors.Wrap(err, "failed to open image")
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return Still{}, errors.Wrapf(err, "failed to decode image %s", path)
	}

	c.mu.Lock()
	c.images[path] = img
	c.mu.Unlock()

	return NewStill(img), nil
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Clear removes all images from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.images = make(map[string]image.Image)
	c.mu.Unlock()
}

// Evict removes a specific image from the cache by its path. Unknown paths
// are ignored.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.images, path)
	c.mu.Unlock()
}
