package interaction

import (
	"fmt"

	"github.com/tidemark-games/worldcore/pkg/config"
	"github.com/tidemark-games/worldcore/pkg/models"
)

// TagSet is a resolved set of integer tag ids carried by an entity
type TagSet map[int]struct{}

// Contains reports membership
func (s TagSet) Contains(id int) bool {
	_, ok := s[id]
	return ok
}

// TagResolver maps tag names to their registry ids. Resolution happens once
// per load; unresolved names are load errors.
type TagResolver interface {
	ResolveTag(name string) (int, bool)
}

// RuleSet is the blocking/interrupting arbitration policy of one
// definition. It compiles in two phases: parse keeps tag names, Resolve
// converts them to integer ids against the tag registry. Bypass indices are
// only valid once Resolve has completed; the RuleSet is immutable
// afterwards.
type RuleSet struct {
	blockedBy  map[models.InteractionType]struct{}
	interrupts map[models.InteractionType]struct{}

	blockBypassNames     map[models.InteractionType][]string
	interruptBypassNames map[models.InteractionType][]string

	blockBypass     map[models.InteractionType][]int
	interruptBypass map[models.InteractionType][]int

	resolved bool
}

// parseRuleSet builds the unresolved phase-one form. A nil config yields an
// empty rule set that never blocks or interrupts.
func parseRuleSet(cfg *config.Rules) *RuleSet {
	rs := &RuleSet{
		blockedBy:            make(map[models.InteractionType]struct{}),
		interrupts:           make(map[models.InteractionType]struct{}),
		blockBypassNames:     make(map[models.InteractionType][]string),
		interruptBypassNames: make(map[models.InteractionType][]string),
	}
	if cfg == nil {
		return rs
	}
	for _, t := range cfg.BlockedBy {
		rs.blockedBy[models.InteractionType(t)] = struct{}{}
	}
	for _, t := range cfg.Interrupts {
		rs.interrupts[models.InteractionType(t)] = struct{}{}
	}
	for t, tags := range cfg.BlockBypass {
		rs.blockBypassNames[models.InteractionType(t)] = tags
	}
	for t, tags := range cfg.InterruptBypass {
		rs.interruptBypassNames[models.InteractionType(t)] = tags
	}
	return rs
}

// Resolve converts bypass tag names into integer ids. An unknown tag name
// fails resolution; the caller aborts the definition load.
func (rs *RuleSet) Resolve(tags TagResolver) error {
	resolve := func(names map[models.InteractionType][]string) (map[models.InteractionType][]int, error) {
		out := make(map[models.InteractionType][]int, len(names))
		for itype, tagNames := range names {
			ids := make([]int, 0, len(tagNames))
			for _, name := range tagNames {
				id, ok := tags.ResolveTag(name)
				if !ok {
					return nil, fmt.Errorf("unresolved bypass tag %q for type %s", name, itype)
				}
				ids = append(ids, id)
			}
			out[itype] = ids
		}
		return out, nil
	}

	blockBypass, err := resolve(rs.blockBypassNames)
	if err != nil {
		return err
	}
	interruptBypass, err := resolve(rs.interruptBypassNames)
	if err != nil {
		return err
	}

	rs.blockBypass = blockBypass
	rs.interruptBypass = interruptBypass
	rs.resolved = true
	return nil
}

// BlocksByDefault reports whether the default table blocks this candidate
// while an interaction of the given type is active.
func (rs *RuleSet) BlocksByDefault(active models.InteractionType) bool {
	_, ok := rs.blockedBy[active]
	return ok
}

// InterruptsByDefault reports whether the default table interrupts an
// active interaction of the given type.
func (rs *RuleSet) InterruptsByDefault(active models.InteractionType) bool {
	_, ok := rs.interrupts[active]
	return ok
}

// BlockBypassMatches reports whether the entity tags match a declared block
// bypass for the given opposing type. Only meaningful after Resolve.
func (rs *RuleSet) BlockBypassMatches(other models.InteractionType, tags TagSet) bool {
	if !rs.resolved {
		return false
	}
	for _, id := range rs.blockBypass[other] {
		if tags.Contains(id) {
			return true
		}
	}
	return false
}

// InterruptBypassMatches reports whether the entity tags match a declared
// interrupt bypass for the given opposing type. Only meaningful after
// Resolve.
func (rs *RuleSet) InterruptBypassMatches(other models.InteractionType, tags TagSet) bool {
	if !rs.resolved {
		return false
	}
	for _, id := range rs.interruptBypass[other] {
		if tags.Contains(id) {
			return true
		}
	}
	return false
}

// ValidateBlocked decides whether the candidate must be refused because of
// the currently active interaction. The default per-type decision comes
// from the candidate's blocked-by table; a matched bypass on exactly one
// side inverts it. When both sides match a bypass, the higher declared
// priority wins and equal priority resolves to blocked, keeping arbitration
// deterministic.
func ValidateBlocked(cand *Definition, candTags TagSet, candPrio int, active *Definition, activeTags TagSet, activePrio int) bool {
	blocked := cand.Rules.BlocksByDefault(active.Type)
	candBypass := cand.Rules.BlockBypassMatches(active.Type, candTags)
	activeBypass := active.Rules.BlockBypassMatches(cand.Type, activeTags)

	switch {
	case candBypass && activeBypass:
		if candPrio > activePrio {
			return !blocked
		}
		return true
	case candBypass != activeBypass:
		return !blocked
	default:
		return blocked
	}
}

// ValidateInterrupts decides whether starting the candidate must terminate
// the active interaction. Mirrors ValidateBlocked, except equal priority
// resolves to keeping the active interaction alive.
func ValidateInterrupts(cand *Definition, candTags TagSet, candPrio int, active *Definition, activeTags TagSet, activePrio int) bool {
	interrupts := cand.Rules.InterruptsByDefault(active.Type)
	candBypass := cand.Rules.InterruptBypassMatches(active.Type, candTags)
	activeBypass := active.Rules.InterruptBypassMatches(cand.Type, activeTags)

	switch {
	case candBypass && activeBypass:
		if candPrio > activePrio {
			return !interrupts
		}
		return false
	case candBypass != activeBypass:
		return !interrupts
	default:
		return interrupts
	}
}
