package interaction

import (
	"github.com/tidemark-games/worldcore/pkg/config"
	"github.com/tidemark-games/worldcore/pkg/models"
)

// Compiler turns parsed definition documents into immutable Definitions.
// Compilation happens once at load time, never per tick.
type Compiler struct {
	tags TagResolver
}

// NewCompiler creates a compiler resolving bypass tags against the given
// registry
func NewCompiler(tags TagResolver) *Compiler {
	return &Compiler{tags: tags}
}

// CompilePacks compiles every definition of every pack. Any failure aborts
// the whole load; no partial table is returned.
func (c *Compiler) CompilePacks(packs []*config.Pack) (map[string]*Definition, error) {
	defs := make(map[string]*Definition)
	for _, pack := range packs {
		for i := range pack.Definitions {
			def, err := c.CompileDefinition(&pack.Definitions[i])
			if err != nil {
				return nil, err
			}
			defs[def.ID] = def
		}
	}
	return defs, nil
}

// CompileDefinition compiles one definition: decodes its nodes through the
// kind registry, lowers the graph to a linear Program, resolves the rule
// set against the tag registry, and derives the network-sync flag.
func (c *Compiler) CompileDefinition(cfg *config.Definition) (*Definition, error) {
	b := &builder{
		defID:  cfg.ID,
		nodes:  make(map[string]*Node, len(cfg.Nodes)),
		labels: make(map[string]int, len(cfg.Nodes)),
	}

	for i := range cfg.Nodes {
		node, err := decodeNode(cfg.ID, &cfg.Nodes[i])
		if err != nil {
			return nil, err
		}
		b.nodes[node.ID] = node
	}

	// An empty child list compiles to an empty Program; activation then
	// completes immediately as a no-op.
	roots := make([]int, 0, len(cfg.Children))
	for _, child := range cfg.Children {
		entry, err := b.compileNode(child)
		if err != nil {
			return nil, err
		}
		roots = append(roots, entry)
	}

	program := &Program{ops: b.ops, roots: roots}
	if err := program.validate(); err != nil {
		return nil, configErrorf(cfg.ID, "compiled program invalid: %v", err)
	}

	needsSync := false
	for _, op := range program.ops {
		if op.Node.NeedsSync {
			needsSync = true
			break
		}
	}

	rules := parseRuleSet(cfg.Rules)
	if err := rules.Resolve(c.tags); err != nil {
		return nil, configErrorf(cfg.ID, "rule set: %v", err)
	}

	return &Definition{
		ID:               cfg.ID,
		Type:             models.InteractionType(cfg.Type),
		Cooldown:         cfg.Cooldown(),
		Rules:            rules,
		Priority:         NewPriority(cfg.Priority),
		Program:          program,
		NeedsNetworkSync: needsSync,
		nodeCount:        len(cfg.Nodes),
	}, nil
}

// builder accumulates compiled ops during the depth-first walk
type builder struct {
	defID  string
	nodes  map[string]*Node
	labels map[string]int
	ops    []CompiledOp
}

// compileNode appends the ops for the subtree rooted at a node id and
// returns its entry label. A node reachable a second time (shared subtree
// or cycle) is referenced by its existing label, not recompiled; the label
// is registered before recursing so cyclic graphs terminate.
func (b *builder) compileNode(id string) (int, error) {
	if idx, ok := b.labels[id]; ok {
		return idx, nil
	}

	node, ok := b.nodes[id]
	if !ok {
		return noTarget, configErrorf(b.defID, "unknown node id %q", id)
	}

	idx := len(b.ops)
	b.labels[id] = idx
	b.ops = append(b.ops, CompiledOp{Node: node, Next: noTarget, Failed: noTarget})

	if node.Next != "" {
		next, err := b.compileNode(node.Next)
		if err != nil {
			return noTarget, err
		}
		b.ops[idx].Next = next
	}
	if node.Failed != "" {
		failed, err := b.compileNode(node.Failed)
		if err != nil {
			return noTarget, err
		}
		b.ops[idx].Failed = failed
	}

	return idx, nil
}
