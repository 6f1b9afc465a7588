package interaction

import "github.com/tidemark-games/worldcore/pkg/models"

// Priority resolves per-slot integer priorities with a fallback chain:
// direct slot lookup, then the default slot, then 0. Immutable and safe
// for unsynchronized concurrent reads.
type Priority struct {
	values map[models.Slot]int
}

// NewPriority builds a priority table from configuration keys
func NewPriority(values map[string]int) *Priority {
	if len(values) == 0 {
		return &Priority{}
	}
	p := &Priority{values: make(map[models.Slot]int, len(values))}
	for slot, prio := range values {
		p.values[models.Slot(slot)] = prio
	}
	return p
}

// Get returns the priority for a slot. O(1).
func (p *Priority) Get(slot models.Slot) int {
	if p == nil || p.values == nil {
		return 0
	}
	if v, ok := p.values[slot]; ok {
		return v
	}
	if v, ok := p.values[models.SlotDefault]; ok {
		return v
	}
	return 0
}
