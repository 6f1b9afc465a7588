package engine

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/tidemark-games/worldcore/internal/interaction"
	"github.com/tidemark-games/worldcore/pkg/logger"
	"github.com/tidemark-games/worldcore/pkg/models"
	"github.com/tidemark-games/worldcore/pkg/utils"
)

// EntitySource supplies the set of live entities to tick
type EntitySource interface {
	EntityIDs() []models.EntityID
}

// Driver is an optional per-tick hook invoked before entities are ticked,
// on the tick goroutine. The workload generator hangs off this.
type Driver interface {
	OnTick(tick uint64)
}

// TickObserver receives tick-loop telemetry
type TickObserver interface {
	TickProcessed(d time.Duration, entities int)
}

type nopTickObserver struct{}

func (nopTickObserver) TickProcessed(time.Duration, int) {}

// Engine drives the server tick loop. Each tick the live entities are
// partitioned across workers; one entity is always processed by exactly
// one worker per tick, so per-entity state needs no locking.
type Engine struct {
	scheduler *interaction.Scheduler
	entities  EntitySource
	clock     *utils.TickClock
	workers   int
	driver    Driver
	observer  TickObserver
	logger    *slog.Logger
}

// NewEngine creates a tick engine over the scheduler and entity source
func NewEngine(scheduler *interaction.Scheduler, entities EntitySource, clock *utils.TickClock) *Engine {
	return &Engine{
		scheduler: scheduler,
		entities:  entities,
		clock:     clock,
		workers:   runtime.GOMAXPROCS(0),
		observer:  nopTickObserver{},
		logger:    logger.ForComponent("engine"),
	}
}

// SetLogger sets the engine's logger
func (e *Engine) SetLogger(l *slog.Logger) {
	e.logger = l
}

// SetWorkers sets the tick worker count
func (e *Engine) SetWorkers(n int) {
	if n > 0 {
		e.workers = n
	}
}

// SetDriver installs the per-tick hook
func (e *Engine) SetDriver(d Driver) {
	e.driver = d
}

// SetObserver installs tick-loop telemetry
func (e *Engine) SetObserver(o TickObserver) {
	if o != nil {
		e.observer = o
	}
}

// Clock returns the engine's tick clock
func (e *Engine) Clock() *utils.TickClock {
	return e.clock
}

// Run executes the tick loop at the clock's tick length until the context
// is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("tick loop starting",
		"tick_len", e.clock.TickLen(),
		"workers", e.workers)

	ticker := time.NewTicker(e.clock.TickLen())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("tick loop stopped", "tick", e.clock.Now())
			return ctx.Err()
		case <-ticker.C:
			e.Step()
		}
	}
}

// Step processes exactly one server tick. Exposed separately so tests and
// the workload driver can advance the world without wall-clock pacing.
func (e *Engine) Step() {
	started := time.Now()
	tick := e.clock.Advance()
	dt := e.clock.TickLen()

	if e.driver != nil {
		e.driver.OnTick(tick)
	}

	ids := e.entities.EntityIDs()
	e.tickEntities(ids, dt)

	e.observer.TickProcessed(time.Since(started), len(ids))
	if tick%600 == 0 {
		e.logger.Debug("tick processed",
			"tick", tick,
			"entities", len(ids),
			"elapsed", time.Since(started))
	}
}

// tickEntities fans the id list out across the worker pool in disjoint
// chunks.
func (e *Engine) tickEntities(ids []models.EntityID, dt time.Duration) {
	if len(ids) == 0 {
		return
	}

	workers := e.workers
	if workers > len(ids) {
		workers = len(ids)
	}
	if workers <= 1 {
		for _, id := range ids {
			e.scheduler.TickEntity(id, dt)
		}
		return
	}

	chunk := (len(ids) + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < len(ids); start += chunk {
		end := start + chunk
		if end > len(ids) {
			end = len(ids)
		}
		wg.Add(1)
		go func(part []models.EntityID) {
			defer wg.Done()
			for _, id := range part {
				e.scheduler.TickEntity(id, dt)
			}
		}(ids[start:end])
	}
	wg.Wait()
}
