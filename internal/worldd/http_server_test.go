package worldd

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidemark-games/worldcore/internal/effects"
	"github.com/tidemark-games/worldcore/internal/interaction"
	"github.com/tidemark-games/worldcore/internal/metrics"
	"github.com/tidemark-games/worldcore/internal/world"
	"github.com/tidemark-games/worldcore/pkg/config"
	"github.com/tidemark-games/worldcore/pkg/utils"
)

func newTestServer(t *testing.T, reload ReloadFunc) (*HTTPServer, *interaction.Registry) {
	t.Helper()

	tags := world.NewTagRegistry()
	store := world.NewInMemoryStore(tags)
	registry := interaction.NewRegistry()

	defs, err := interaction.NewCompiler(tags).CompilePacks([]*config.Pack{{
		Pack: "test",
		Definitions: []config.Definition{{
			ID: "swing", Type: "attack", Children: []string{"fx"},
			Nodes: []config.Node{{ID: "fx", Kind: "leaf_once", Effect: "fx"}},
		}},
	}})
	require.NoError(t, err)
	registry.Swap(defs)

	store.Spawn("alice", nil, nil)
	clock := utils.NewTickClock(50 * time.Millisecond)
	scheduler := interaction.NewScheduler(registry, store, effects.NewRecorder(), clock)

	return NewHTTPServer(registry, scheduler, reload, metrics.NewSet().Handler()), registry
}

func get(t *testing.T, srv *HTTPServer, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func post(t *testing.T, srv *HTTPServer, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := get(t, srv, "/healthz")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestListDefinitions(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := get(t, srv, "/v1/definitions")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Version     uint64           `json:"version"`
		Definitions []map[string]any `json:"definitions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, uint64(1), body.Version)
	require.Len(t, body.Definitions, 1)
	assert.Equal(t, "swing", body.Definitions[0]["id"])
}

func TestGetDefinition(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := get(t, srv, "/v1/definitions/swing")
	require.Equal(t, http.StatusOK, rec.Code)
	var info map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, "attack", info["type"])

	rec = get(t, srv, "/v1/definitions/no-such")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReload(t *testing.T) {
	var srv *HTTPServer
	var registry *interaction.Registry
	srv, registry = newTestServer(t, func() (int, error) {
		registry.Swap(map[string]*interaction.Definition{})
		return 0, nil
	})

	rec := post(t, srv, "/v1/reload", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(2), body["version"])
}

func TestReloadFailure(t *testing.T) {
	srv, registry := newTestServer(t, func() (int, error) {
		return 0, errors.New("pack is broken")
	})

	before := registry.Table().Version()
	rec := post(t, srv, "/v1/reload", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "pack is broken")
	assert.Equal(t, before, registry.Table().Version(), "failed reload must keep the old generation")
}

func TestReloadNotConfigured(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := post(t, srv, "/v1/reload", "")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestActivate(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := post(t, srv, "/v1/entities/alice/activate", `{"type":"attack","root_id":"swing"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var res map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "started", res["status"])
	assert.NotEmpty(t, res["activation_id"])
}

func TestActivateValidation(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec := post(t, srv, "/v1/entities/alice/activate", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(t, srv, "/v1/entities/alice/activate", `{"type":"attack"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown interactions are result values, not transport errors.
	rec = post(t, srv, "/v1/entities/alice/activate", `{"root_id":"no-such"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown_interaction")
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	rec := get(t, srv, "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "worldcore_")
}
