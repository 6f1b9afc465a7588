package models

import "time"

// EntityID identifies a live entity in the world store.
type EntityID string

// InteractionType classifies an interaction definition (e.g. "attack",
// "craft", "use_block"). Arbitration tables are keyed by this type.
type InteractionType string

// Slot identifies an equipment slot an activation was requested for.
type Slot string

const (
	SlotMainHand Slot = "main_hand"
	SlotOffHand  Slot = "off_hand"
	SlotBody     Slot = "body"
	// SlotDefault is the fallback slot consulted when a priority table has
	// no entry for the requested slot.
	SlotDefault Slot = "default"
)

// ActivationStatus is the outcome of an activation request. These are
// ordinary result values, never errors.
type ActivationStatus string

const (
	ActivationStarted            ActivationStatus = "started"
	ActivationBlocked            ActivationStatus = "blocked_by"
	ActivationCooldownActive     ActivationStatus = "cooldown_active"
	ActivationUnknownInteraction ActivationStatus = "unknown_interaction"
)

// ActivationResult is returned by the scheduler for every activation request.
type ActivationResult struct {
	Status       ActivationStatus `json:"status"`
	ActivationID string           `json:"activation_id,omitempty"`
	// BlockedBy names the active interaction type that refused the
	// candidate. Set only when Status is ActivationBlocked.
	BlockedBy InteractionType `json:"blocked_by,omitempty"`
}

// TickStatus is the outcome of advancing one activation by one tick.
type TickStatus string

const (
	TickContinuing  TickStatus = "continuing"
	TickCompleted   TickStatus = "completed"
	TickInterrupted TickStatus = "interrupted"
)

// EffectRequest is handed to the network/effects collaborator when a leaf
// node fires. The payload is opaque effect metadata forwarded unmodified
// from configuration.
type EffectRequest struct {
	ActivationID string          `json:"activation_id"`
	DefinitionID string          `json:"definition_id"`
	NodeID       string          `json:"node_id"`
	Entity       EntityID        `json:"entity"`
	Target       EntityID        `json:"target,omitempty"`
	Effect       string          `json:"effect"`
	Tick         uint64          `json:"tick"`
	Payload      map[string]any  `json:"payload,omitempty"`
	Type         InteractionType `json:"type"`
	// Simulated marks a predictive, visual-only replay of the effect. A
	// simulated effect never accompanies a store mutation.
	Simulated bool `json:"simulated,omitempty"`
}

// DefinitionInfo is a read-only summary of a loaded definition, exposed by
// the ops HTTP surface.
type DefinitionInfo struct {
	ID               string          `json:"id"`
	Type             InteractionType `json:"type"`
	Nodes            int             `json:"nodes"`
	ProgramLen       int             `json:"program_len"`
	NeedsNetworkSync bool            `json:"needs_network_sync"`
	Cooldown         time.Duration   `json:"cooldown"`
}
