package effects

import (
	"log/slog"
	"sync"

	"github.com/tidemark-games/worldcore/pkg/logger"
	"github.com/tidemark-games/worldcore/pkg/models"
)

// Recorder is an in-memory effects collaborator. It keeps every trigger in
// order, which makes it the reference sink for tests and the local daemon.
type Recorder struct {
	mu       sync.Mutex
	requests []*models.EffectRequest
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Trigger records an effect request
func (r *Recorder) Trigger(req *models.EffectRequest) {
	r.mu.Lock()
	r.requests = append(r.requests, req)
	r.mu.Unlock()
}

// Requests returns a snapshot of all recorded requests in trigger order
func (r *Recorder) Requests() []*models.EffectRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.EffectRequest, len(r.requests))
	copy(out, r.requests)
	return out
}

// CountFor returns how often a node's effect fired during one activation
func (r *Recorder) CountFor(activationID, nodeID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, req := range r.requests {
		if req.ActivationID == activationID && req.NodeID == nodeID {
			n++
		}
	}
	return n
}

// Reset discards all recorded requests
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.requests = nil
	r.mu.Unlock()
}

// LogBroadcaster logs every effect trigger. Useful while running without a
// real network layer attached.
type LogBroadcaster struct {
	logger *slog.Logger
}

// NewLogBroadcaster creates a broadcaster over the given logger; nil uses
// the effects component logger.
func NewLogBroadcaster(l *slog.Logger) *LogBroadcaster {
	if l == nil {
		l = logger.ForComponent("effects")
	}
	return &LogBroadcaster{logger: l}
}

// Trigger logs the request
func (b *LogBroadcaster) Trigger(req *models.EffectRequest) {
	b.logger.Debug("effect triggered",
		"effect", req.Effect,
		"entity", req.Entity,
		"definition", req.DefinitionID,
		"node", req.NodeID,
		"tick", req.Tick,
		"simulated", req.Simulated)
}

// Sink receives effect trigger requests. It mirrors the scheduler's
// effects collaborator so any sink here can be wired in directly.
type Sink interface {
	Trigger(req *models.EffectRequest)
}

// Fanout forwards each trigger to several sinks in order
type Fanout []Sink

// Trigger forwards to every sink
func (f Fanout) Trigger(req *models.EffectRequest) {
	for _, sink := range f {
		sink.Trigger(req)
	}
}
