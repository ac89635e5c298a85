package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/michosu/rl-camera-path-editor/internal/config"
	"github.com/michosu/rl-camera-path-editor/internal/library"
	"github.com/michosu/rl-camera-path-editor/internal/link"
	"github.com/michosu/rl-camera-path-editor/internal/models"
	"github.com/michosu/rl-camera-path-editor/internal/presets"
	"github.com/michosu/rl-camera-path-editor/internal/sse"
	"github.com/michosu/rl-camera-path-editor/templates/pages"
)

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	cfg     *config.Config
	hub     *sse.Hub
	library *library.Scanner
	presets *presets.Store
	links   *link.Dispatcher

	// Cached SSE events replayed to newly connected clients so they
	// start from the current state. Keyed caches hold the latest event
	// per config key.
	cacheMu      sync.RWMutex
	configCache  map[string][]byte
	libraryCache []byte
}

// New creates a Handlers instance.
func New(cfg *config.Config, hub *sse.Hub, lib *library.Scanner, ps *presets.Store, links *link.Dispatcher) *Handlers {
	return &Handlers{
		cfg:         cfg,
		hub:         hub,
		library:     lib,
		presets:     ps,
		links:       links,
		configCache: make(map[string][]byte),
	}
}

// ── External links ──────────────────────────────────────

// HandleOpenURL is the host side of the front-end's open_url command:
// the page asks the privileged process to open a URL outside the editor.
// The dispatcher never fails, so the only error responses here are for
// requests that never reached it.
func (h *Handlers) HandleOpenURL(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	// The URL is opaque: an empty string is dispatched like any other.
	h.links.OpenExternal(r.Context(), req.URL)
	w.WriteHeader(http.StatusNoContent)
}

// ── Library ─────────────────────────────────────────────

// BroadcastLibraryUpdated tells all clients the camera path list changed.
func (h *Handlers) BroadcastLibraryUpdated() {
	data, _ := json.Marshal(map[string]int{"count": len(h.library.ListAll())})

	h.cacheMu.Lock()
	h.libraryCache = fmt.Appendf(nil, "event: library-updated\ndata: %s\n\n", data)
	h.cacheMu.Unlock()

	h.hub.Broadcast("library-updated", data)
	slog.Info("library updated broadcast")
}

// HandleListPaths returns the camera path library.
// Picks up a changed paths_dir setting before listing.
func (h *Handlers) HandleListPaths(w http.ResponseWriter, r *http.Request) {
	if dir := h.cfg.Get("paths_dir", ""); dir != "" && dir != h.library.Dir() {
		h.library.SetDir(dir)
		h.library.Scan()
	}
	files := h.library.ListAll()
	if files == nil {
		files = []models.PathFile{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(files)
}

// ── Config ──────────────────────────────────────────────

// HandleGetConfig returns all settings as JSON.
func (h *Handlers) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.cfg.All())
}

// HandleSetConfig saves a setting and broadcasts the change.
func (h *Handlers) HandleSetConfig(w http.ResponseWriter, r *http.Request) {
	var entry models.ConfigEntry
	if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&entry); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := h.cfg.Set(entry.Key, entry.Value); err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	payload, _ := json.Marshal(map[string]string{"key": entry.Key, "value": entry.Value})
	h.cacheMu.Lock()
	h.configCache[entry.Key] = fmt.Appendf(nil, "event: config-updated\ndata: %s\n\n", payload)
	h.cacheMu.Unlock()
	h.hub.Broadcast("config-updated", payload)

	w.WriteHeader(http.StatusNoContent)
}

// ── SSE ─────────────────────────────────────────────────

// HandleSSE streams server-sent events to editor pages.
func (h *Handlers) HandleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := &sse.Client{
		ID:     uuid.NewString(),
		Events: make(chan []byte, 256),
	}

	h.hub.Register(client)
	defer h.hub.Unregister(client)

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	// Replay cached state so new pages sync immediately.
	h.cacheMu.RLock()
	if h.libraryCache != nil {
		w.Write(h.libraryCache)
	}
	for _, msg := range h.configCache {
		w.Write(msg)
	}
	h.cacheMu.RUnlock()
	flusher.Flush()

	for {
		select {
		case msg, ok := <-client.Events:
			if !ok {
				return
			}
			w.Write(msg)
			// Drain queued events so bursts batch into one TCP write.
		drain:
			for {
				select {
				case extra, ok := <-client.Events:
					if !ok {
						flusher.Flush()
						return
					}
					w.Write(extra)
				default:
					break drain
				}
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

// ── Pages ───────────────────────────────────────────────

// HandleIndex redirects to the editor.
func (h *Handlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/editor", http.StatusFound)
}

// HandleEditor renders the editor page.
func (h *Handlers) HandleEditor(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	pages.Editor().Render(r.Context(), w)
}

// HandleLibrary renders the camera path library page.
func (h *Handlers) HandleLibrary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	pages.Library().Render(r.Context(), w)
}

// HandleSettings renders the settings page.
func (h *Handlers) HandleSettings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	pages.Settings().Render(r.Context(), w)
}
