package interaction

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tidemark-games/worldcore/pkg/config"
	"github.com/tidemark-games/worldcore/pkg/models"
	"github.com/tidemark-games/worldcore/pkg/utils"
)

// fakeTags is a fixed name-to-id tag resolver for tests
type fakeTags struct {
	ids map[string]int
}

func newFakeTags(names ...string) *fakeTags {
	ids := make(map[string]int, len(names))
	for i, name := range names {
		ids[name] = i
	}
	return &fakeTags{ids: ids}
}

func (f *fakeTags) ResolveTag(name string) (int, bool) {
	id, ok := f.ids[name]
	return id, ok
}

func (f *fakeTags) set(names ...string) TagSet {
	s := make(TagSet, len(names))
	for _, name := range names {
		id, ok := f.ids[name]
		if !ok {
			panic(fmt.Sprintf("fakeTags: unknown tag %q", name))
		}
		s[id] = struct{}{}
	}
	return s
}

type fakeEntity struct {
	items map[string]int
	tags  map[string]struct{}
}

// fakeStore is an in-memory Store for scheduler and context tests
type fakeStore struct {
	resolver *fakeTags
	entities map[models.EntityID]*fakeEntity
}

func newFakeStore(resolver *fakeTags) *fakeStore {
	if resolver == nil {
		resolver = newFakeTags()
	}
	return &fakeStore{
		resolver: resolver,
		entities: make(map[models.EntityID]*fakeEntity),
	}
}

func (s *fakeStore) spawn(id models.EntityID, tags []string, items map[string]int) {
	e := &fakeEntity{items: make(map[string]int), tags: make(map[string]struct{})}
	for item, count := range items {
		e.items[item] = count
	}
	for _, tag := range tags {
		e.tags[tag] = struct{}{}
	}
	s.entities[id] = e
}

func (s *fakeStore) EntityExists(id models.EntityID) bool {
	_, ok := s.entities[id]
	return ok
}

func (s *fakeStore) EntityTags(id models.EntityID) TagSet {
	e, ok := s.entities[id]
	if !ok {
		return nil
	}
	out := make(TagSet, len(e.tags))
	for tag := range e.tags {
		if tagID, ok := s.resolver.ResolveTag(tag); ok {
			out[tagID] = struct{}{}
		}
	}
	return out
}

func (s *fakeStore) HasItem(id models.EntityID, item string, count int) bool {
	e, ok := s.entities[id]
	return ok && e.items[item] >= count
}

func (s *fakeStore) HasTag(id models.EntityID, tag string) bool {
	e, ok := s.entities[id]
	if !ok {
		return false
	}
	_, ok = e.tags[tag]
	return ok
}

func (s *fakeStore) GiveItem(id models.EntityID, item string, count int) error {
	e, ok := s.entities[id]
	if !ok {
		return fmt.Errorf("no entity %s", id)
	}
	e.items[item] += count
	return nil
}

func (s *fakeStore) TakeItem(id models.EntityID, item string, count int) error {
	e, ok := s.entities[id]
	if !ok {
		return fmt.Errorf("no entity %s", id)
	}
	if e.items[item] < count {
		return fmt.Errorf("entity %s has %d of %s, need %d", id, e.items[item], item, count)
	}
	e.items[item] -= count
	return nil
}

func (s *fakeStore) SetTag(id models.EntityID, tag string) error {
	e, ok := s.entities[id]
	if !ok {
		return fmt.Errorf("no entity %s", id)
	}
	e.tags[tag] = struct{}{}
	return nil
}

func (s *fakeStore) ClearTag(id models.EntityID, tag string) error {
	e, ok := s.entities[id]
	if !ok {
		return fmt.Errorf("no entity %s", id)
	}
	delete(e.tags, tag)
	return nil
}

// recordSink collects triggered effect requests in order
type recordSink struct {
	mu       sync.Mutex
	requests []*models.EffectRequest
}

func (r *recordSink) Trigger(req *models.EffectRequest) {
	r.mu.Lock()
	r.requests = append(r.requests, req)
	r.mu.Unlock()
}

func (r *recordSink) countFor(nodeID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, req := range r.requests {
		if req.NodeID == nodeID {
			n++
		}
	}
	return n
}

// countObserver tallies scheduler telemetry
type countObserver struct {
	activations map[models.ActivationStatus]int
	ticks       map[models.TickStatus]int
	faults      int
}

func newCountObserver() *countObserver {
	return &countObserver{
		activations: make(map[models.ActivationStatus]int),
		ticks:       make(map[models.TickStatus]int),
	}
}

func (o *countObserver) ActivationResolved(status models.ActivationStatus) {
	o.activations[status]++
}

func (o *countObserver) ContextTicked(status models.TickStatus) {
	o.ticks[status]++
}

func (o *countObserver) ExecutionFault() {
	o.faults++
}

func mustCompile(t *testing.T, tags TagResolver, cfg *config.Definition) *Definition {
	t.Helper()
	if tags == nil {
		tags = newFakeTags()
	}
	def, err := NewCompiler(tags).CompileDefinition(cfg)
	if err != nil {
		t.Fatalf("CompileDefinition(%s) failed: %v", cfg.ID, err)
	}
	return def
}

// testWorld wires a scheduler over fakes with a 50ms tick
type testWorld struct {
	tags      *fakeTags
	store     *fakeStore
	sink      *recordSink
	clock     *utils.TickClock
	registry  *Registry
	scheduler *Scheduler
	observer  *countObserver
}

func newTestWorld(t *testing.T, tags *fakeTags, defs ...*Definition) *testWorld {
	t.Helper()
	if tags == nil {
		tags = newFakeTags()
	}
	w := &testWorld{
		tags:     tags,
		store:    newFakeStore(tags),
		sink:     &recordSink{},
		clock:    utils.NewTickClock(50 * time.Millisecond),
		registry: NewRegistry(),
		observer: newCountObserver(),
	}
	table := make(map[string]*Definition, len(defs))
	for _, def := range defs {
		table[def.ID] = def
	}
	w.registry.Swap(table)
	w.scheduler = NewScheduler(w.registry, w.store, w.sink, w.clock)
	w.scheduler.SetObserver(w.observer)
	return w
}

// step advances the clock and ticks one entity once
func (w *testWorld) step(id models.EntityID) {
	w.clock.Advance()
	w.scheduler.TickEntity(id, w.clock.TickLen())
}
