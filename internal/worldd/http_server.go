package worldd

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tidemark-games/worldcore/internal/interaction"
	"github.com/tidemark-games/worldcore/pkg/logger"
	"github.com/tidemark-games/worldcore/pkg/models"
)

// ReloadFunc re-reads the definition packs and swaps the registry table.
// It returns the number of definitions in the new generation.
type ReloadFunc func() (int, error)

// HTTPServer is the ops surface of the daemon: definition introspection,
// pack reload, manual activation and metrics.
type HTTPServer struct {
	router    chi.Router
	registry  *interaction.Registry
	scheduler *interaction.Scheduler
	reload    ReloadFunc
	metrics   http.Handler
	logger    *slog.Logger
}

// NewHTTPServer assembles the router
func NewHTTPServer(registry *interaction.Registry, scheduler *interaction.Scheduler, reload ReloadFunc, metricsHandler http.Handler) *HTTPServer {
	s := &HTTPServer{
		router:    chi.NewRouter(),
		registry:  registry,
		scheduler: scheduler,
		reload:    reload,
		metrics:   metricsHandler,
		logger:    logger.ForComponent("http"),
	}

	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/v1/definitions", s.handleListDefinitions)
	s.router.Get("/v1/definitions/{id}", s.handleGetDefinition)
	s.router.Post("/v1/reload", s.handleReload)
	s.router.Post("/v1/entities/{id}/activate", s.handleActivate)
	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics)
	}

	return s
}

// Handler returns the assembled handler
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *HTTPServer) handleListDefinitions(w http.ResponseWriter, r *http.Request) {
	table := s.registry.Table()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"version":     table.Version(),
		"definitions": table.Infos(),
	})
}

func (s *HTTPServer) handleGetDefinition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	def, ok := s.registry.Lookup(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "definition not found: "+id)
		return
	}
	s.writeJSON(w, http.StatusOK, def.Info())
}

func (s *HTTPServer) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.reload == nil {
		s.writeError(w, http.StatusNotImplemented, "reload not configured")
		return
	}

	count, err := s.reload()
	if err != nil {
		s.logger.Error("reload failed", "error", err)
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	table := s.registry.Table()
	s.logger.Info("definitions reloaded", "version", table.Version(), "definitions", count)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"version":     table.Version(),
		"definitions": count,
	})
}

type activateRequest struct {
	Type      string `json:"type,omitempty"`
	RootID    string `json:"root_id"`
	Slot      string `json:"slot,omitempty"`
	Target    string `json:"target,omitempty"`
	Simulated bool   `json:"simulated,omitempty"`
}

func (s *HTTPServer) handleActivate(w http.ResponseWriter, r *http.Request) {
	entity := models.EntityID(chi.URLParam(r, "id"))

	var req activateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.RootID == "" {
		s.writeError(w, http.StatusBadRequest, "root_id is required")
		return
	}

	slot := models.Slot(req.Slot)
	if slot == "" {
		slot = models.SlotDefault
	}

	res := s.scheduler.Activate(interaction.Request{
		Entity:    entity,
		Type:      models.InteractionType(req.Type),
		RootID:    req.RootID,
		Slot:      slot,
		Target:    models.EntityID(req.Target),
		Simulated: req.Simulated,
	})
	s.writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
