package interaction

import (
	"time"

	"github.com/tidemark-games/worldcore/pkg/models"
)

// Definition is a compiled root interaction: cooldown spec, rule set and
// the compiled Program. Loaded once at startup or reload and shared
// read-only across all activations.
type Definition struct {
	ID               string
	Type             models.InteractionType
	Cooldown         time.Duration
	Rules            *RuleSet
	Priority         *Priority
	Program          *Program
	NeedsNetworkSync bool

	nodeCount int
}

// Info returns a read-only summary for the ops surface
func (d *Definition) Info() models.DefinitionInfo {
	return models.DefinitionInfo{
		ID:               d.ID,
		Type:             d.Type,
		Nodes:            d.nodeCount,
		ProgramLen:       d.Program.Len(),
		NeedsNetworkSync: d.NeedsNetworkSync,
		Cooldown:         d.Cooldown,
	}
}
