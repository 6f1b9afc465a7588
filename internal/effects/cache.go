package effects

import (
	"encoding/json"
	"sync"
)

// PayloadCache caches encoded effect payloads keyed by definition, node and
// config version. Entries from an older config generation are evicted the
// first time a newer version is seen, so invalidation tracks reload
// deterministically instead of collector pressure.
type PayloadCache struct {
	mu      sync.Mutex
	version uint64
	entries map[string][]byte
}

// NewPayloadCache creates an empty cache
func NewPayloadCache() *PayloadCache {
	return &PayloadCache{entries: make(map[string][]byte)}
}

func cacheKey(definitionID, nodeID string) string {
	return definitionID + "/" + nodeID
}

// Encode returns the JSON encoding of a node's opaque payload, reusing the
// cached bytes while the config version is unchanged.
func (c *PayloadCache) Encode(definitionID, nodeID string, version uint64, payload map[string]any) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if version != c.version {
		c.entries = make(map[string][]byte)
		c.version = version
	}

	key := cacheKey(definitionID, nodeID)
	if data, ok := c.entries[key]; ok {
		return data, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	c.entries[key] = data
	return data, nil
}

// Len returns the number of cached entries in the current generation
func (c *PayloadCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Version returns the config generation the cache currently serves
func (c *PayloadCache) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}
