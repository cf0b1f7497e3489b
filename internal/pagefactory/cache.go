package pagefactory

import (
	"sync"

	"ui-harness/internal/entity"
)

// Cache keeps parsed page definitions keyed by page name so repeated loads
// skip the parse and validation cost. Safe for concurrent factories.
type Cache struct {
	mu    sync.RWMutex
	pages map[string]*entity.PageDefinition
}

func NewCache() *Cache {
	return &Cache{pages: make(map[string]*entity.PageDefinition)}
}

func (c *Cache) Get(name string) (*entity.PageDefinition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	def, ok := c.pages[name]

	return def, ok
}

func (c *Cache) Put(def *entity.PageDefinition) {
	c.mu.Lock()
	c.pages[def.PageName] = def
	c.mu.Unlock()
}

func (c *Cache) Remove(name string) {
	c.mu.Lock()
	delete(c.pages, name)
	c.mu.Unlock()
}

// Clear drops every cached definition. Safe to call on an empty cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.pages = make(map[string]*entity.PageDefinition)
	c.mu.Unlock()
}

func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.pages)
}

func (c *Cache) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.pages))
	for name := range c.pages {
		names = append(names, name)
	}

	return names
}
