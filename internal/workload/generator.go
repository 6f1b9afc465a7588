package workload

import (
	"fmt"
	"math"

	"github.com/tidemark-games/worldcore/internal/engine"
	"github.com/tidemark-games/worldcore/internal/interaction"
	"github.com/tidemark-games/worldcore/pkg/models"
	"github.com/tidemark-games/worldcore/pkg/utils"
)

// Target is one interaction the generator may request
type Target struct {
	RootID string
	Type   models.InteractionType
	Slot   models.Slot
}

// Spec describes the synthetic activation stream
type Spec struct {
	// Arrival is the per-tick arrival process: poisson, constant or
	// bernoulli.
	Arrival string
	// RatePerTick is the mean number of activation attempts per tick
	// across the whole population.
	RatePerTick float64
	Targets     []Target
}

// Generator produces synthetic activation attempts against the scheduler.
// It implements engine.Driver and runs on the tick goroutine, so it keeps
// no locks.
type Generator struct {
	scheduler *interaction.Scheduler
	entities  engine.EntitySource
	rng       *utils.RandSource
	spec      Spec

	attempts uint64
	results  map[models.ActivationStatus]uint64
}

// NewGenerator creates a generator with a deterministic seed
func NewGenerator(scheduler *interaction.Scheduler, entities engine.EntitySource, spec Spec, seed int64) (*Generator, error) {
	if spec.RatePerTick <= 0 {
		return nil, fmt.Errorf("rate per tick must be positive, got %f", spec.RatePerTick)
	}
	if len(spec.Targets) == 0 {
		return nil, fmt.Errorf("at least one target must be defined")
	}
	switch spec.Arrival {
	case "poisson", "constant", "bernoulli", "":
	default:
		return nil, fmt.Errorf("unknown arrival type: %s", spec.Arrival)
	}
	return &Generator{
		scheduler: scheduler,
		entities:  entities,
		rng:       utils.NewRandSource(seed),
		spec:      spec,
		results:   make(map[models.ActivationStatus]uint64),
	}, nil
}

// OnTick issues this tick's activation attempts
func (g *Generator) OnTick(tick uint64) {
	ids := g.entities.EntityIDs()
	if len(ids) == 0 {
		return
	}

	for i := 0; i < g.arrivals(); i++ {
		target := g.spec.Targets[g.rng.Intn(len(g.spec.Targets))]
		entity := ids[g.rng.Intn(len(ids))]

		res := g.scheduler.Activate(interaction.Request{
			Entity: entity,
			Type:   target.Type,
			RootID: target.RootID,
			Slot:   target.Slot,
		})
		g.attempts++
		g.results[res.Status]++
	}
}

// arrivals draws the number of attempts for one tick
func (g *Generator) arrivals() int {
	switch g.spec.Arrival {
	case "constant":
		base := int(math.Floor(g.spec.RatePerTick))
		frac := g.spec.RatePerTick - float64(base)
		if frac > 0 && g.rng.Float64() < frac {
			base++
		}
		return base
	case "bernoulli":
		if g.rng.BernoulliBool(math.Min(g.spec.RatePerTick, 1.0)) {
			return 1
		}
		return 0
	default: // poisson
		return g.rng.PoissonInt(g.spec.RatePerTick)
	}
}

// Attempts returns the number of attempts issued so far
func (g *Generator) Attempts() uint64 {
	return g.attempts
}

// Results returns attempt counts by activation status
func (g *Generator) Results() map[models.ActivationStatus]uint64 {
	out := make(map[models.ActivationStatus]uint64, len(g.results))
	for status, n := range g.results {
		out[status] = n
	}
	return out
}
