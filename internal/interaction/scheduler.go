package interaction

import (
	"log/slog"
	"sync"
	"time"

	"github.com/tidemark-games/worldcore/pkg/logger"
	"github.com/tidemark-games/worldcore/pkg/models"
	"github.com/tidemark-games/worldcore/pkg/utils"
)

// Store is the entity/world collaborator. All queries and mutations are
// synchronous; a tick step never waits on it.
type Store interface {
	EntityExists(id models.EntityID) bool
	EntityTags(id models.EntityID) TagSet
	HasItem(id models.EntityID, item string, count int) bool
	HasTag(id models.EntityID, tag string) bool
	GiveItem(id models.EntityID, item string, count int) error
	TakeItem(id models.EntityID, item string, count int) error
	SetTag(id models.EntityID, tag string) error
	ClearTag(id models.EntityID, tag string) error
}

// EffectSink is the network/effects collaborator. It owns all wire-format
// concerns; leaf nodes only hand it the cosmetic data.
type EffectSink interface {
	Trigger(req *models.EffectRequest)
}

// Observer receives scheduler telemetry. Implementations must be cheap and
// non-blocking.
type Observer interface {
	ActivationResolved(status models.ActivationStatus)
	ContextTicked(status models.TickStatus)
	ExecutionFault()
}

type nopObserver struct{}

func (nopObserver) ActivationResolved(models.ActivationStatus) {}
func (nopObserver) ContextTicked(models.TickStatus)            {}
func (nopObserver) ExecutionFault()                            {}

// Request is one activation attempt
type Request struct {
	Entity    models.EntityID
	Type      models.InteractionType
	RootID    string
	Slot      models.Slot
	Target    models.EntityID
	Simulated bool
}

// entityState holds the live activations of one entity. Its mutex
// serializes the entity's tick task against external activation requests
// (HTTP handlers run off the tick goroutine); cooldown reads and writes for
// the entity happen under the same guard.
type entityState struct {
	mu       sync.Mutex
	contexts []*Context
}

// Scheduler creates, arbitrates, advances and retires activations. Entities
// tick in parallel; within one entity everything is serialized by the
// entity lock, including activation requests arriving off the tick
// goroutine.
type Scheduler struct {
	registry  *Registry
	store     Store
	effects   EffectSink
	cooldowns *CooldownTable
	clock     *utils.TickClock
	observer  Observer
	logger    *slog.Logger

	mu       sync.RWMutex
	entities map[models.EntityID]*entityState
}

// NewScheduler creates a scheduler over the given collaborators
func NewScheduler(registry *Registry, store Store, effects EffectSink, clock *utils.TickClock) *Scheduler {
	return &Scheduler{
		registry:  registry,
		store:     store,
		effects:   effects,
		cooldowns: NewCooldownTable(),
		clock:     clock,
		observer:  nopObserver{},
		logger:    logger.ForComponent("scheduler"),
		entities:  make(map[models.EntityID]*entityState),
	}
}

// SetObserver installs a telemetry observer
func (s *Scheduler) SetObserver(o Observer) {
	if o != nil {
		s.observer = o
	}
}

// SetLogger overrides the scheduler's logger
func (s *Scheduler) SetLogger(l *slog.Logger) {
	s.logger = l
}

// TryActivate requests activation of a root interaction for an entity in
// the default slot.
func (s *Scheduler) TryActivate(entity models.EntityID, itype models.InteractionType, rootID string) models.ActivationResult {
	return s.Activate(Request{Entity: entity, Type: itype, RootID: rootID, Slot: models.SlotDefault})
}

// Activate requests activation per the full request. Cooldowns are checked
// first as a cheap short-circuit, then the rule set arbitrates against
// every live activation of the entity. Interrupts are applied synchronously
// before the new activation starts.
func (s *Scheduler) Activate(req Request) models.ActivationResult {
	res := s.activate(req)
	s.observer.ActivationResolved(res.Status)
	return res
}

func (s *Scheduler) activate(req Request) models.ActivationResult {
	def, ok := s.registry.Lookup(req.RootID)
	if !ok {
		return models.ActivationResult{Status: models.ActivationUnknownInteraction}
	}
	if req.Type != "" && req.Type != def.Type {
		return models.ActivationResult{Status: models.ActivationUnknownInteraction}
	}
	if !s.store.EntityExists(req.Entity) {
		return models.ActivationResult{Status: models.ActivationUnknownInteraction}
	}

	st := s.stateFor(req.Entity)
	st.mu.Lock()
	defer st.mu.Unlock()

	nowTick := s.clock.Now()
	cooldownTicks := utils.DurationToTicks(def.Cooldown, s.clock.TickLen())
	handler := s.cooldowns.ForEntity(req.Entity)
	if !handler.Ready(def.Type, nowTick, cooldownTicks) {
		return models.ActivationResult{Status: models.ActivationCooldownActive}
	}

	candTags := s.store.EntityTags(req.Entity)
	candPrio := def.Priority.Get(req.Slot)

	// Blocking first: any live activation may refuse the candidate.
	for _, active := range st.contexts {
		if active.terminal() {
			continue
		}
		activePrio := active.def.Priority.Get(active.Slot)
		if ValidateBlocked(def, candTags, candPrio, active.def, active.tags, activePrio) {
			return models.ActivationResult{
				Status:    models.ActivationBlocked,
				BlockedBy: active.def.Type,
			}
		}
	}

	// Then interrupts, applied before the candidate begins.
	for _, active := range st.contexts {
		if active.terminal() {
			continue
		}
		activePrio := active.def.Priority.Get(active.Slot)
		if ValidateInterrupts(def, candTags, candPrio, active.def, active.tags, activePrio) {
			active.Interrupt()
			s.observer.ContextTicked(models.TickInterrupted)
			s.logger.Debug("activation interrupted",
				"entity", active.Entity,
				"activation_id", active.ID,
				"type", active.def.Type,
				"interrupted_by", def.Type)
		}
	}
	st.prune()

	ctx := newContext(def, req, candTags, nowTick)
	st.contexts = append(st.contexts, ctx)

	s.logger.Debug("activation started",
		"entity", req.Entity,
		"activation_id", ctx.ID,
		"definition", def.ID,
		"type", def.Type,
		"slot", req.Slot,
		"simulated", req.Simulated)

	return models.ActivationResult{Status: models.ActivationStarted, ActivationID: ctx.ID}
}

// Tick advances one activation by one tick. The caller owns the entity's
// serialization (TickEntity holds the entity lock). Execution faults are
// caught here: logged with full context, counted, and converted into an
// immediate interruption so one malformed activation cannot stall the tick
// loop.
func (s *Scheduler) Tick(ctx *Context, dt time.Duration) models.TickStatus {
	rt := &runtime{store: s.store, effects: s.effects, tick: s.clock.Now()}

	status, fault := ctx.tick(rt, dt)
	if fault != nil {
		s.observer.ExecutionFault()
		s.logger.Error("execution fault",
			"error", fault,
			"definition", fault.Definition,
			"activation_id", fault.ActivationID,
			"entity", fault.Entity,
			"index", fault.Index,
			"state", ctx.State().String())
		ctx.state = StateInterrupted
		status = models.TickInterrupted
	}

	if status == models.TickCompleted && ctx.state != StateCompleted {
		s.cooldowns.ForEntity(ctx.Entity).Record(ctx.def.Type, s.clock.Now())
		ctx.complete()
	}

	s.observer.ContextTicked(status)
	return status
}

// TickEntity advances every live activation of one entity and retires the
// finished ones. Called once per server tick by the entity's tick task; the
// entity lock keeps concurrent activation requests out while the contexts
// advance and prune.
func (s *Scheduler) TickEntity(id models.EntityID, dt time.Duration) {
	st := s.lookupState(id)
	if st == nil {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, ctx := range st.contexts {
		if ctx.State() == StateInterrupted {
			continue
		}
		s.Tick(ctx, dt)
	}
	st.prune()
}

// ActiveCount returns the number of live activations for an entity
func (s *Scheduler) ActiveCount(id models.EntityID) int {
	st := s.lookupState(id)
	if st == nil {
		return 0
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for _, ctx := range st.contexts {
		if !ctx.terminal() {
			n++
		}
	}
	return n
}

// DropEntity discards all per-entity scheduler state after despawn
func (s *Scheduler) DropEntity(id models.EntityID) {
	s.mu.Lock()
	delete(s.entities, id)
	s.mu.Unlock()
	s.cooldowns.Drop(id)
}

func (s *Scheduler) stateFor(id models.EntityID) *entityState {
	s.mu.RLock()
	st, ok := s.entities[id]
	s.mu.RUnlock()
	if ok {
		return st
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.entities[id]; ok {
		return st
	}
	st = &entityState{}
	s.entities[id] = st
	return st
}

func (s *Scheduler) lookupState(id models.EntityID) *entityState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entities[id]
}

// prune drops terminal contexts, keeping activation order stable
func (st *entityState) prune() {
	live := st.contexts[:0]
	for _, ctx := range st.contexts {
		if !ctx.terminal() {
			live = append(live, ctx)
		}
	}
	for i := len(live); i < len(st.contexts); i++ {
		st.contexts[i] = nil
	}
	st.contexts = live
}
