package config

import "time"

// Pack is one definition-pack document. A pack either loads completely or
// not at all.
type Pack struct {
	Pack        string       `yaml:"pack"`
	Definitions []Definition `yaml:"definitions"`
}

// Definition describes one root interaction before compilation
type Definition struct {
	ID              string         `yaml:"id"`
	Type            string         `yaml:"type"`
	CooldownSeconds float64        `yaml:"cooldown_seconds,omitempty"`
	Priority        map[string]int `yaml:"priority,omitempty"`
	Rules           *Rules         `yaml:"rules,omitempty"`
	Children        []string       `yaml:"children"`
	Nodes           []Node         `yaml:"nodes"`
}

// Rules holds the arbitration overrides for one definition. Bypass maps go
// from interaction type to the entity tags that invert the default decision.
type Rules struct {
	BlockedBy       []string            `yaml:"blocked_by,omitempty"`
	Interrupts      []string            `yaml:"interrupts,omitempty"`
	BlockBypass     map[string][]string `yaml:"block_bypass,omitempty"`
	InterruptBypass map[string][]string `yaml:"interrupt_bypass,omitempty"`
}

// Node is one node of the source graph. Kind-specific fields are optional;
// which ones are meaningful depends on the kind tag.
type Node struct {
	ID        string         `yaml:"id"`
	Kind      string         `yaml:"kind"`
	Next      string         `yaml:"next,omitempty"`
	Failed    string         `yaml:"failed,omitempty"`
	Condition string         `yaml:"condition,omitempty"`
	Effect    string         `yaml:"effect,omitempty"`
	NeedsSync bool           `yaml:"needs_sync,omitempty"`
	Mutate    *Mutation      `yaml:"mutate,omitempty"`
	Payload   map[string]any `yaml:"payload,omitempty"`
}

// Mutation describes the world-store side effect of a leaf node
type Mutation struct {
	Action string `yaml:"action"`
	Item   string `yaml:"item,omitempty"`
	Tag    string `yaml:"tag,omitempty"`
	Count  int    `yaml:"count,omitempty"`
}

// Mutation actions understood by the world store
const (
	MutateGiveItem = "give_item"
	MutateTakeItem = "take_item"
	MutateSetTag   = "set_tag"
	MutateClearTag = "clear_tag"
)

// Cooldown returns the configured cooldown as a duration
func (d *Definition) Cooldown() time.Duration {
	if d.CooldownSeconds <= 0 {
		return 0
	}
	return time.Duration(d.CooldownSeconds * float64(time.Second))
}
