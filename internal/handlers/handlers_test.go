package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/michosu/rl-camera-path-editor/internal/config"
	"github.com/michosu/rl-camera-path-editor/internal/db"
	"github.com/michosu/rl-camera-path-editor/internal/library"
	"github.com/michosu/rl-camera-path-editor/internal/link"
	"github.com/michosu/rl-camera-path-editor/internal/presets"
	"github.com/michosu/rl-camera-path-editor/internal/sse"
)

const sampleData = `{
  "0": {"FOV": 90, "Frame": 0, "Position": {"X": 100, "Y": 0, "Z": 0},
        "Rotation": {"Pitch": 0, "Roll": 0, "Yaw": 0}, "Timestamp": 0.0, "Weight": 1},
  "1": {"FOV": 110, "Frame": 60, "Position": {"X": 300, "Y": 0, "Z": 0},
        "Rotation": {"Pitch": 0, "Roll": 0, "Yaw": 0}, "Timestamp": 2.0, "Weight": 1}
}`

// openRecorder is a fake native-open strategy for the link dispatcher.
type openRecorder struct {
	mu   sync.Mutex
	urls []string
	err  error
}

func (o *openRecorder) open(url string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.urls = append(o.urls, url)
	return o.err
}

type testEnv struct {
	h      *Handlers
	hub    *sse.Hub
	opener *openRecorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.New(database)
	hub := sse.NewHub()
	go hub.Run()
	t.Cleanup(hub.Close)

	opener := &openRecorder{}
	links := link.NewWithOpener(opener.open, hub, nil)
	scanner := library.NewScanner(t.TempDir(), nil)
	store := presets.NewStore(database)

	return &testEnv{
		h:      New(cfg, hub, scanner, store, links),
		hub:    hub,
		opener: opener,
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

// ── open-url ────────────────────────────────────────────

func TestHandleOpenURL(t *testing.T) {
	env := newTestEnv(t)

	w := postJSON(t, env.h.HandleOpenURL, "/api/open-url", `{"url":"https://example.com"}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
	if len(env.opener.urls) != 1 || env.opener.urls[0] != "https://example.com" {
		t.Errorf("opened = %v", env.opener.urls)
	}
}

func TestHandleOpenURL_NativeFailureStillSucceeds(t *testing.T) {
	env := newTestEnv(t)
	env.opener.err = errors.New("no browser registered")

	w := postJSON(t, env.h.HandleOpenURL, "/api/open-url", `{"url":"https://example.com"}`)

	// The dispatcher absorbs the failure; the command never errors.
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204 despite native failure", w.Code)
	}
}

func TestHandleOpenURL_EmptyURLAccepted(t *testing.T) {
	env := newTestEnv(t)

	w := postJSON(t, env.h.HandleOpenURL, "/api/open-url", `{"url":""}`)
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, empty URL must be treated as any other", w.Code)
	}
	if len(env.opener.urls) != 1 || env.opener.urls[0] != "" {
		t.Errorf("opened = %q", env.opener.urls)
	}
}

func TestHandleOpenURL_BadBody(t *testing.T) {
	env := newTestEnv(t)

	w := postJSON(t, env.h.HandleOpenURL, "/api/open-url", `{`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
	if len(env.opener.urls) != 0 {
		t.Error("dispatcher invoked for malformed request")
	}
}

// ── transforms ──────────────────────────────────────────

func TestTransformEndpointRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	body, _ := json.Marshal(map[string]any{"data": sampleData, "value": 10.0})
	w := postJSON(t, env.h.HandleFOVAdd, "/api/transform/fov-add", string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var out map[string]struct {
		FOV float64 `json:"FOV"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("response not camera JSON: %v", err)
	}
	if out["0"].FOV != 100 || out["1"].FOV != 120 {
		t.Errorf("fov = %v, %v", out["0"].FOV, out["1"].FOV)
	}
}

func TestTransformEndpointRejectsBadData(t *testing.T) {
	env := newTestEnv(t)

	body, _ := json.Marshal(map[string]any{"data": "not camera json", "value": 1.0})
	w := postJSON(t, env.h.HandleFOVAdd, "/api/transform/fov-add", string(body))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}

func TestMirrorEndpointInvalidAxis(t *testing.T) {
	env := newTestEnv(t)

	body, _ := json.Marshal(map[string]any{"data": sampleData, "axis": "q"})
	w := postJSON(t, env.h.HandleMirror, "/api/transform/mirror", string(body))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d", w.Code)
	}
}

func TestPathStatsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	body, _ := json.Marshal(map[string]any{"data": sampleData})
	w := postJSON(t, env.h.HandlePathStats, "/api/path/stats", string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var stats struct {
		Keyframes int     `json:"keyframes"`
		Duration  float64 `json:"duration"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatal(err)
	}
	if stats.Keyframes != 2 || stats.Duration != 2 {
		t.Errorf("stats = %+v", stats)
	}
}

// ── presets over HTTP ───────────────────────────────────

func TestApplyPresetEndpoint(t *testing.T) {
	env := newTestEnv(t)

	created := postJSON(t, env.h.HandleCreatePreset, "/api/presets",
		`{"name":"Zoom","ops":[{"op":"fov-set","args":{"value":60}}]}`)
	if created.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", created.Code, created.Body.String())
	}
	var preset struct {
		ID int `json:"id"`
	}
	if err := json.Unmarshal(created.Body.Bytes(), &preset); err != nil {
		t.Fatal(err)
	}

	body, _ := json.Marshal(map[string]any{"data": sampleData})
	req := httptest.NewRequest(http.MethodPost, "/api/presets/apply", strings.NewReader(string(body)))
	req.SetPathValue("id", strconv.Itoa(preset.ID))
	w := httptest.NewRecorder()
	env.h.HandleApplyPreset(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("apply status = %d: %s", w.Code, w.Body.String())
	}

	var out map[string]struct {
		FOV float64 `json:"FOV"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out["0"].FOV != 60 || out["1"].FOV != 60 {
		t.Errorf("fov after preset = %v, %v", out["0"].FOV, out["1"].FOV)
	}
}

// ── config ──────────────────────────────────────────────

func TestConfigEndpoints(t *testing.T) {
	env := newTestEnv(t)

	w := postJSON(t, env.h.HandleSetConfig, "/api/config", `{"key":"autosave","value":"1"}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("set status = %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	get := httptest.NewRecorder()
	env.h.HandleGetConfig(get, req)
	var cfg map[string]string
	if err := json.Unmarshal(get.Body.Bytes(), &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg["autosave"] != "1" {
		t.Errorf("config = %v", cfg)
	}
}
