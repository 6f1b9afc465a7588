package interaction

import (
	"sync"

	"github.com/tidemark-games/worldcore/pkg/models"
)

// CooldownHandler tracks last-activation ticks per interaction type for a
// single entity. It is written exclusively by that entity's tick task and
// therefore carries no lock of its own.
type CooldownHandler struct {
	last map[models.InteractionType]uint64
}

// NewCooldownHandler creates an empty handler
func NewCooldownHandler() *CooldownHandler {
	return &CooldownHandler{last: make(map[models.InteractionType]uint64)}
}

// Ready reports whether the cooldown window for a type has elapsed. A type
// that never activated is always ready.
func (h *CooldownHandler) Ready(itype models.InteractionType, nowTick, cooldownTicks uint64) bool {
	if cooldownTicks == 0 {
		return true
	}
	last, ok := h.last[itype]
	if !ok {
		return true
	}
	return nowTick >= last+cooldownTicks
}

// Record stamps the last-activation tick for a type
func (h *CooldownHandler) Record(itype models.InteractionType, tick uint64) {
	h.last[itype] = tick
}

// CooldownTable holds the per-entity handlers. The outer map is the only
// shared mutable state in the engine; each handler stays single-writer.
type CooldownTable struct {
	mu       sync.RWMutex
	entities map[models.EntityID]*CooldownHandler
}

// NewCooldownTable creates an empty table
func NewCooldownTable() *CooldownTable {
	return &CooldownTable{entities: make(map[models.EntityID]*CooldownHandler)}
}

// ForEntity returns the handler for an entity, creating it on first use
func (t *CooldownTable) ForEntity(id models.EntityID) *CooldownHandler {
	t.mu.RLock()
	h, ok := t.entities[id]
	t.mu.RUnlock()
	if ok {
		return h
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if h, ok := t.entities[id]; ok {
		return h
	}
	h = NewCooldownHandler()
	t.entities[id] = h
	return h
}

// Drop discards the handler for a despawned entity
func (t *CooldownTable) Drop(id models.EntityID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entities, id)
}
