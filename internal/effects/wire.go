package effects

import (
	"log/slog"

	"github.com/tidemark-games/worldcore/pkg/logger"
	"github.com/tidemark-games/worldcore/pkg/models"
)

// FrameSender delivers an encoded cosmetic frame to the observers of an
// entity. The transport owns framing and delivery; this package only
// prepares the bytes.
type FrameSender interface {
	Send(entity models.EntityID, frame []byte)
}

// WireBroadcaster encodes the opaque payload of each effect once per config
// generation and hands the bytes to the transport.
type WireBroadcaster struct {
	cache   *PayloadCache
	version func() uint64
	sender  FrameSender
	logger  *slog.Logger
}

// NewWireBroadcaster creates a broadcaster over a frame sender. version
// reports the current config generation, normally Registry.Table().Version.
func NewWireBroadcaster(sender FrameSender, version func() uint64) *WireBroadcaster {
	return &WireBroadcaster{
		cache:   NewPayloadCache(),
		version: version,
		sender:  sender,
		logger:  logger.ForComponent("effects"),
	}
}

// Cache exposes the payload cache for inspection
func (b *WireBroadcaster) Cache() *PayloadCache {
	return b.cache
}

// Trigger encodes and sends the cosmetic frame for an effect request
func (b *WireBroadcaster) Trigger(req *models.EffectRequest) {
	frame, err := b.cache.Encode(req.DefinitionID, req.NodeID, b.version(), req.Payload)
	if err != nil {
		b.logger.Error("failed to encode effect payload",
			"definition", req.DefinitionID,
			"node", req.NodeID,
			"error", err)
		return
	}
	b.sender.Send(req.Entity, frame)
}
