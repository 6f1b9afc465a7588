package world

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tidemark-games/worldcore/internal/interaction"
	"github.com/tidemark-games/worldcore/pkg/models"
)

// entity is one live entity record: an inventory and a set of tag ids
type entity struct {
	items map[string]int
	tags  map[int]struct{}
}

// InMemoryStore is the reference entity/world store. It satisfies
// interaction.Store; a production deployment substitutes the real
// entity/component layer behind the same interface.
type InMemoryStore struct {
	tags *TagRegistry

	mu       sync.RWMutex
	entities map[models.EntityID]*entity
}

// NewInMemoryStore creates an empty store over a tag registry
func NewInMemoryStore(tags *TagRegistry) *InMemoryStore {
	return &InMemoryStore{
		tags:     tags,
		entities: make(map[models.EntityID]*entity),
	}
}

// Tags returns the store's tag registry
func (s *InMemoryStore) Tags() *TagRegistry {
	return s.tags
}

// Spawn creates an entity with the given starting tags and items. Spawning
// an existing id resets it.
func (s *InMemoryStore) Spawn(id models.EntityID, tagNames []string, items map[string]int) {
	e := &entity{
		items: make(map[string]int, len(items)),
		tags:  make(map[int]struct{}, len(tagNames)),
	}
	for item, count := range items {
		e.items[item] = count
	}
	for _, name := range tagNames {
		e.tags[s.tags.Register(name)] = struct{}{}
	}

	s.mu.Lock()
	s.entities[id] = e
	s.mu.Unlock()
}

// Despawn removes an entity
func (s *InMemoryStore) Despawn(id models.EntityID) {
	s.mu.Lock()
	delete(s.entities, id)
	s.mu.Unlock()
}

// EntityExists reports whether an entity is live
func (s *InMemoryStore) EntityExists(id models.EntityID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entities[id]
	return ok
}

// EntityIDs returns all live entity ids in stable order
func (s *InMemoryStore) EntityIDs() []models.EntityID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.EntityID, 0, len(s.entities))
	for id := range s.entities {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// EntityTags returns a snapshot of an entity's resolved tag ids
func (s *InMemoryStore) EntityTags(id models.EntityID) interaction.TagSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	if !ok {
		return nil
	}
	tags := make(interaction.TagSet, len(e.tags))
	for tag := range e.tags {
		tags[tag] = struct{}{}
	}
	return tags
}

// HasItem reports whether an entity carries at least count of an item
func (s *InMemoryStore) HasItem(id models.EntityID, item string, count int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	if !ok {
		return false
	}
	return e.items[item] >= count
}

// HasTag reports whether an entity carries a named tag
func (s *InMemoryStore) HasTag(id models.EntityID, tag string) bool {
	tagID, ok := s.tags.ResolveTag(tag)
	if !ok {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	if !ok {
		return false
	}
	_, ok = e.tags[tagID]
	return ok
}

// GiveItem adds count of an item to an entity's inventory
func (s *InMemoryStore) GiveItem(id models.EntityID, item string, count int) error {
	if count <= 0 {
		return fmt.Errorf("count must be positive, got %d", count)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[id]
	if !ok {
		return fmt.Errorf("entity %s does not exist", id)
	}
	e.items[item] += count
	return nil
}

// TakeItem removes count of an item; it fails without mutating when the
// entity does not carry enough.
func (s *InMemoryStore) TakeItem(id models.EntityID, item string, count int) error {
	if count <= 0 {
		return fmt.Errorf("count must be positive, got %d", count)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[id]
	if !ok {
		return fmt.Errorf("entity %s does not exist", id)
	}
	if e.items[item] < count {
		return fmt.Errorf("entity %s has %d of %s, need %d", id, e.items[item], item, count)
	}
	e.items[item] -= count
	if e.items[item] == 0 {
		delete(e.items, item)
	}
	return nil
}

// SetTag adds a named tag to an entity, registering the name on first use
func (s *InMemoryStore) SetTag(id models.EntityID, tag string) error {
	tagID := s.tags.Register(tag)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[id]
	if !ok {
		return fmt.Errorf("entity %s does not exist", id)
	}
	e.tags[tagID] = struct{}{}
	return nil
}

// ClearTag removes a named tag from an entity
func (s *InMemoryStore) ClearTag(id models.EntityID, tag string) error {
	tagID, ok := s.tags.ResolveTag(tag)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, exists := s.entities[id]
	if !exists {
		return fmt.Errorf("entity %s does not exist", id)
	}
	delete(e.tags, tagID)
	return nil
}

// ItemCount returns how many of an item an entity carries
func (s *InMemoryStore) ItemCount(id models.EntityID, item string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	if !ok {
		return 0
	}
	return e.items[item]
}
