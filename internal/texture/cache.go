package texture

import (
	"image"
	"path/filepath"
	"sync"
)

// Cache keeps decoded textures by file path so materials sharing a texture
// decode it once.
type Cache struct {
	images map[string]image.Image
	mu     sync.RWMutex

	hits   int
	misses int
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		images: make(map[string]image.Image),
	}
}

func cacheKey(path string) string {
	return filepath.Clean(path)
}

// Get returns the decoded image for path.
func (c *Cache) Get(path string) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	img, ok := c.images[cacheKey(path)]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return img, ok
}

// Set stores a decoded image.
func (c *Cache) Set(path string, img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images[cacheKey(path)] = img
}

// Len returns the number of cached images.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.images)
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
