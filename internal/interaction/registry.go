package interaction

import (
	"sort"
	"sync/atomic"

	"github.com/tidemark-games/worldcore/pkg/models"
)

// Table is one immutable generation of compiled definitions. Reload builds
// a fresh Table and swaps it in atomically; in-flight activations keep the
// generation they started on.
type Table struct {
	version uint64
	defs    map[string]*Definition
}

// Version returns the monotonically increasing config version of this
// generation. Caches keyed by it invalidate deterministically on reload.
func (t *Table) Version() uint64 {
	return t.version
}

// Lookup returns a definition by id
func (t *Table) Lookup(id string) (*Definition, bool) {
	def, ok := t.defs[id]
	return def, ok
}

// Len returns the number of definitions
func (t *Table) Len() int {
	return len(t.defs)
}

// Infos returns summaries for all definitions, sorted by id
func (t *Table) Infos() []models.DefinitionInfo {
	out := make([]models.DefinitionInfo, 0, len(t.defs))
	for _, def := range t.defs {
		out = append(out, def.Info())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Registry publishes the current definition table. Swap replaces the whole
// table at once; there is no in-place mutation.
type Registry struct {
	current atomic.Pointer[Table]
	version atomic.Uint64
}

// NewRegistry creates a registry with an empty table at version 0
func NewRegistry() *Registry {
	r := &Registry{}
	r.current.Store(&Table{defs: make(map[string]*Definition)})
	return r
}

// Table returns the current generation
func (r *Registry) Table() *Table {
	return r.current.Load()
}

// Lookup returns a definition from the current generation
func (r *Registry) Lookup(id string) (*Definition, bool) {
	return r.Table().Lookup(id)
}

// Swap publishes a new generation built from the given definitions and
// returns it. The version counter only moves forward.
func (r *Registry) Swap(defs map[string]*Definition) *Table {
	t := &Table{
		version: r.version.Add(1),
		defs:    defs,
	}
	r.current.Store(t)
	return t
}
