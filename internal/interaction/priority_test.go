package interaction

import (
	"testing"

	"github.com/tidemark-games/worldcore/pkg/models"
)

func TestPriorityFallbackChain(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]int
		slot   models.Slot
		want   int
	}{
		{"direct slot hit", map[string]int{"main_hand": 7, "default": 2}, models.SlotMainHand, 7},
		{"falls back to default", map[string]int{"main_hand": 7, "default": 2}, models.SlotOffHand, 2},
		{"no default falls back to zero", map[string]int{"main_hand": 7}, models.SlotBody, 0},
		{"empty table", nil, models.SlotMainHand, 0},
		{"default slot requested directly", map[string]int{"default": 4}, models.SlotDefault, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPriority(tt.values)
			if got := p.Get(tt.slot); got != tt.want {
				t.Errorf("Get(%s) = %d, want %d", tt.slot, got, tt.want)
			}
		})
	}
}

func TestPriorityNilReceiver(t *testing.T) {
	var p *Priority
	if got := p.Get(models.SlotMainHand); got != 0 {
		t.Errorf("nil priority Get = %d, want 0", got)
	}
}
