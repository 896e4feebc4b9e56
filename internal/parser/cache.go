package parser

import (
	"sync"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	"github.com/zeebo/xxh3"
)

// Cache memoizes parsed Ruby trees by content hash for the duration of one
// validator pass. The same fragment is queried once per controller and per
// declared name, so re-parsing dominates without this.
//
// The cache owns every tree it hands out; callers must not Close them.
// Close the cache itself when the pass completes.
type Cache struct {
	mu    sync.Mutex
	trees map[uint64]*cacheEntry
}

type cacheEntry struct {
	tree   *tree_sitter.Tree
	source []byte
	failed bool
}

// NewCache creates an empty tree cache.
func NewCache() *Cache {
	return &Cache{trees: make(map[uint64]*cacheEntry)}
}

// Parse returns the cached tree for code, parsing on first use.
// A nil tree with nil error means the code previously failed to parse;
// callers skip such fragments.
func (c *Cache) Parse(code string) (*tree_sitter.Tree, []byte, error) {
	key := xxh3.HashString(code)

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.trees[key]; ok {
		if e.failed {
			return nil, nil, nil
		}
		return e.tree, e.source, nil
	}

	source := []byte(code)
	tree, err := ParseRuby(source)
	if err != nil || tree == nil {
		c.trees[key] = &cacheEntry{failed: true}
		return nil, nil, nil
	}
	c.trees[key] = &cacheEntry{tree: tree, source: source}
	return tree, source, nil
}

// Close releases every cached tree.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.trees {
		if e.tree != nil {
			e.tree.Close()
		}
	}
	c.trees = nil
}
