package world

import "sync"

// TagRegistry interns tag names as integer ids. Rule-set bypass resolution
// and entity tag sets both speak ids, never names, after load.
type TagRegistry struct {
	mu    sync.RWMutex
	ids   map[string]int
	names []string
}

// NewTagRegistry creates an empty registry
func NewTagRegistry() *TagRegistry {
	return &TagRegistry{ids: make(map[string]int)}
}

// Register interns a tag name and returns its id. Registering an existing
// name returns the original id.
func (r *TagRegistry) Register(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.ids[name]; ok {
		return id
	}
	id := len(r.names)
	r.ids[name] = id
	r.names = append(r.names, name)
	return id
}

// ResolveTag returns the id for a name, reporting whether it is registered
func (r *TagRegistry) ResolveTag(name string) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.ids[name]
	return id, ok
}

// Name returns the name for an id
func (r *TagRegistry) Name(id int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id < 0 || id >= len(r.names) {
		return "", false
	}
	return r.names[id], true
}

// Len returns the number of registered tags
func (r *TagRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}
