package interaction

import (
	"fmt"
	"strings"

	"github.com/tidemark-games/worldcore/pkg/config"
)

// Kind tags a node variant. Dispatch is a closed switch on this tag; new
// variants register a decoder in the kind registry at load time.
type Kind string

const (
	// KindBranch is pure control flow: it evaluates a condition and routes
	// execution to the next or failed label. No side effect.
	KindBranch Kind = "branch"

	// KindLeafOnce performs its observable effect exactly once per
	// activation, guarded by a per-context first-run flag.
	KindLeafOnce Kind = "leaf_once"
)

// Node is one compiled-graph node. Shared fields (rules, priority,
// cooldown) live on the owning Definition, not here. Immutable after
// compile.
type Node struct {
	ID        string
	Kind      Kind
	Next      string
	Failed    string
	NeedsSync bool

	// Branch payload
	Condition string

	// LeafOnce payload
	Effect  string
	Mutate  *config.Mutation
	Payload map[string]any
}

// kindDecoder validates and fills the kind-specific payload of a node.
type kindDecoder func(defID string, cfg *config.Node, n *Node) error

var kindRegistry = map[Kind]kindDecoder{
	KindBranch:   decodeBranch,
	KindLeafOnce: decodeLeafOnce,
}

// RegisterKind installs a decoder for an additional node variant. Must be
// called before any packs are compiled.
func RegisterKind(kind Kind, decoder kindDecoder) {
	kindRegistry[kind] = decoder
}

// decodeNode turns a config node into a compiled Node. An unrecognized kind
// fails with ConfigurationError.
func decodeNode(defID string, cfg *config.Node) (*Node, error) {
	decoder, ok := kindRegistry[Kind(cfg.Kind)]
	if !ok {
		return nil, configErrorf(defID, "node %s: unrecognized node kind %q", cfg.ID, cfg.Kind)
	}

	n := &Node{
		ID:        cfg.ID,
		Kind:      Kind(cfg.Kind),
		Next:      cfg.Next,
		Failed:    cfg.Failed,
		NeedsSync: cfg.NeedsSync,
	}
	if err := decoder(defID, cfg, n); err != nil {
		return nil, err
	}
	return n, nil
}

func decodeBranch(defID string, cfg *config.Node, n *Node) error {
	if cfg.Effect != "" || cfg.Mutate != nil {
		return configErrorf(defID, "node %s: branch nodes cannot carry effects", cfg.ID)
	}
	if cfg.Condition != "" {
		if err := validateCondition(cfg.Condition); err != nil {
			return configErrorf(defID, "node %s: %v", cfg.ID, err)
		}
	}
	n.Condition = cfg.Condition
	return nil
}

func decodeLeafOnce(defID string, cfg *config.Node, n *Node) error {
	if cfg.Condition != "" {
		return configErrorf(defID, "node %s: leaf nodes cannot carry conditions", cfg.ID)
	}
	if cfg.Effect == "" && cfg.Mutate == nil {
		return configErrorf(defID, "node %s: leaf node needs an effect or a mutation", cfg.ID)
	}
	n.Effect = cfg.Effect
	n.Mutate = cfg.Mutate
	n.Payload = cfg.Payload
	return nil
}

// Branch condition predicates understood at run time
const (
	condAlways  = "always"
	condNever   = "never"
	condHasItem = "has_item"
	condHasTag  = "has_tag"
)

func validateCondition(cond string) error {
	pred, _, _ := strings.Cut(cond, ":")
	switch pred {
	case condAlways, condNever, condHasItem, condHasTag:
		return nil
	default:
		return fmt.Errorf("unknown condition %q", cond)
	}
}
