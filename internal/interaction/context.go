package interaction

import (
	"strings"
	"time"

	"github.com/tidemark-games/worldcore/pkg/config"
	"github.com/tidemark-games/worldcore/pkg/models"
	"github.com/tidemark-games/worldcore/pkg/utils"
)

// State is the lifecycle state of one activation
type State uint8

const (
	StateNotStarted State = iota
	StateRunning
	StateSucceeded
	StateFailed
	StateInterrupted
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateRunning:
		return "running"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateInterrupted:
		return "interrupted"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Context is the mutable per-activation execution state. It is exclusively
// owned by the tick task of its entity and never shared between entities.
type Context struct {
	ID     string
	Entity models.EntityID
	Target models.EntityID
	Slot   models.Slot

	def  *Definition
	tags TagSet

	state      State
	index      int
	rootCursor int
	elapsed    time.Duration
	startTick  uint64
	success    bool
	simulated  bool

	// fired guards each leaf's effect: one flag per program index, set on
	// first visit so re-entry cannot re-trigger the effect.
	fired []bool
}

func newContext(def *Definition, req Request, tags TagSet, startTick uint64) *Context {
	c := &Context{
		ID:         utils.GenerateActivationID(),
		Entity:     req.Entity,
		Target:     req.Target,
		Slot:       req.Slot,
		def:        def,
		tags:       tags,
		state:      StateNotStarted,
		index:      noTarget,
		rootCursor: 0,
		startTick:  startTick,
		success:    true,
		simulated:  req.Simulated,
	}
	c.fired = make([]bool, def.Program.Len())
	return c
}

// Definition returns the shared read-only definition backing this activation
func (c *Context) Definition() *Definition {
	return c.def
}

// State returns the current lifecycle state
func (c *Context) State() State {
	return c.state
}

// Succeeded reports whether the activation finished on its success path
func (c *Context) Succeeded() bool {
	return c.state == StateSucceeded || (c.state == StateCompleted && c.success)
}

// Elapsed returns the accumulated activation time
func (c *Context) Elapsed() time.Duration {
	return c.elapsed
}

// Interrupt terminates a running activation. Applied synchronously by the
// scheduler before the interrupting activation begins, never concurrently
// with this context's own tick step.
func (c *Context) Interrupt() {
	switch c.state {
	case StateNotStarted, StateRunning:
		c.state = StateInterrupted
	}
}

func (c *Context) terminal() bool {
	switch c.state {
	case StateSucceeded, StateFailed, StateInterrupted, StateCompleted:
		return true
	}
	return false
}

// runtime is the synchronous environment one tick step executes against.
// Nothing in it may block or suspend.
type runtime struct {
	store   Store
	effects EffectSink
	tick    uint64
}

// tick advances the activation by exactly one logical step. Branch nodes
// resolve within the tick they are reached; a leaf's effect fires once and
// consumes the tick. Returns an ExecutionFault for compiler defects such as
// out-of-range labels.
func (c *Context) tick(rt *runtime, dt time.Duration) (models.TickStatus, *ExecutionFault) {
	switch c.state {
	case StateInterrupted:
		return models.TickInterrupted, nil
	case StateSucceeded, StateFailed, StateCompleted:
		// Idempotent: ticking a finished context re-fires nothing.
		return models.TickCompleted, nil
	case StateNotStarted:
		c.state = StateRunning
		if !c.enterRoot() {
			return c.finish(), nil
		}
	}

	c.elapsed += dt

	// Bounded by program length: a tick resolves at most every branch once
	// before reaching a leaf. Exceeding the bound means the compiler let a
	// branch-only cycle through.
	for steps := 0; steps <= c.def.Program.Len(); steps++ {
		op, ok := c.def.Program.Op(c.index)
		if !ok {
			return models.TickInterrupted, c.faultf("program index out of range (len %d)", c.def.Program.Len())
		}

		switch op.Node.Kind {
		case KindBranch:
			success, fault := c.evalBranch(rt, op.Node)
			if fault != nil {
				return models.TickInterrupted, fault
			}
			c.success = success
			if !c.jump(op) {
				return c.finish(), nil
			}

		case KindLeafOnce:
			if !c.fired[c.index] {
				c.fired[c.index] = true
				c.success = c.handle(rt, op.Node)
			}
			if !c.jump(op) {
				return c.finish(), nil
			}
			return models.TickContinuing, nil

		default:
			return models.TickInterrupted, c.faultf("unknown compiled node kind %q", op.Node.Kind)
		}
	}

	return models.TickInterrupted, c.faultf("branch resolution exceeded program length")
}

// jump moves the program pointer along the success or failed edge. Returns
// false when the activation has no more work.
func (c *Context) jump(op CompiledOp) bool {
	target := op.Next
	if !c.success {
		target = op.Failed
	}
	if target != noTarget {
		c.index = target
		return true
	}
	c.rootCursor++
	return c.enterRoot()
}

// enterRoot positions the program pointer at the current root entry.
// Returns false when all roots are exhausted.
func (c *Context) enterRoot() bool {
	roots := c.def.Program.Roots()
	if c.rootCursor >= len(roots) {
		return false
	}
	c.index = roots[c.rootCursor]
	return true
}

func (c *Context) finish() models.TickStatus {
	if c.success {
		c.state = StateSucceeded
	} else {
		c.state = StateFailed
	}
	return models.TickCompleted
}

// complete moves a finished activation to its terminal state. Called by the
// scheduler after recording the cooldown.
func (c *Context) complete() {
	c.success = c.state == StateSucceeded
	c.state = StateCompleted
}

// evalBranch resolves a branch condition against the world store. An empty
// condition routes on the success flag left by the previous node.
func (c *Context) evalBranch(rt *runtime, n *Node) (bool, *ExecutionFault) {
	if n.Condition == "" {
		return c.success, nil
	}
	pred, arg, _ := strings.Cut(n.Condition, ":")
	switch pred {
	case condAlways:
		return true, nil
	case condNever:
		return false, nil
	case condHasItem:
		return rt.store.HasItem(c.Entity, arg, 1), nil
	case condHasTag:
		return rt.store.HasTag(c.Entity, arg), nil
	default:
		// Conditions are validated at decode time; reaching this is a
		// compiler defect.
		return false, c.faultf("unresolvable condition %q", n.Condition)
	}
}

// handle performs the leaf's external world mutation and requests the
// effects collaborator broadcast its cosmetic data. A simulated activation
// skips the mutation and broadcasts a visual-only effect.
func (c *Context) handle(rt *runtime, n *Node) bool {
	success := true
	if n.Mutate != nil && !c.simulated {
		success = c.applyMutation(rt, n.Mutate)
	}
	if success && n.Effect != "" {
		rt.effects.Trigger(&models.EffectRequest{
			ActivationID: c.ID,
			DefinitionID: c.def.ID,
			NodeID:       n.ID,
			Entity:       c.Entity,
			Target:       c.Target,
			Effect:       n.Effect,
			Tick:         rt.tick,
			Payload:      n.Payload,
			Type:         c.def.Type,
			Simulated:    c.simulated,
		})
	}
	return success
}

func (c *Context) applyMutation(rt *runtime, m *config.Mutation) bool {
	count := m.Count
	if count == 0 {
		count = 1
	}
	var err error
	switch m.Action {
	case config.MutateGiveItem:
		err = rt.store.GiveItem(c.Entity, m.Item, count)
	case config.MutateTakeItem:
		err = rt.store.TakeItem(c.Entity, m.Item, count)
	case config.MutateSetTag:
		err = rt.store.SetTag(c.Entity, m.Tag)
	case config.MutateClearTag:
		err = rt.store.ClearTag(c.Entity, m.Tag)
	}
	return err == nil
}
