package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/michosu/rl-camera-path-editor/internal/models"
	"github.com/michosu/rl-camera-path-editor/internal/presets"
)

// broadcastPresetsUpdated tells clients to refresh their preset list.
func (h *Handlers) broadcastPresetsUpdated() {
	h.hub.Broadcast("presets-updated", []byte(`{}`))
}

// HandleListPresets returns all transform presets as JSON.
func (h *Handlers) HandleListPresets(w http.ResponseWriter, r *http.Request) {
	list, err := h.presets.List()
	if err != nil {
		slog.Error("list presets", "error", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []models.Preset{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

// HandleCreatePreset creates a new transform preset.
func (h *Handlers) HandleCreatePreset(w http.ResponseWriter, r *http.Request) {
	var req models.Preset
	if err := json.NewDecoder(io.LimitReader(r.Body, 65536)).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Name == "" || len(req.Ops) == 0 {
		http.Error(w, "name and ops are required", http.StatusBadRequest)
		return
	}
	preset, err := h.presets.Create(req.Name, req.Ops)
	if err != nil {
		slog.Error("create preset", "error", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	h.broadcastPresetsUpdated()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(preset)
}

// HandleUpdatePreset updates an existing preset.
func (h *Handlers) HandleUpdatePreset(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var req models.Preset
	if err := json.NewDecoder(io.LimitReader(r.Body, 65536)).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Name == "" || len(req.Ops) == 0 {
		http.Error(w, "name and ops are required", http.StatusBadRequest)
		return
	}
	if err := h.presets.Update(id, req.Name, req.Ops); err != nil {
		slog.Error("update preset", "error", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	h.broadcastPresetsUpdated()
	w.WriteHeader(http.StatusNoContent)
}

// HandleTogglePreset toggles a preset's enabled state.
func (h *Handlers) HandleTogglePreset(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 256)).Decode(&body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := h.presets.SetEnabled(id, body.Enabled); err != nil {
		slog.Error("toggle preset", "error", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	h.broadcastPresetsUpdated()
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeletePreset deletes a preset. Built-ins return 403.
func (h *Handlers) HandleDeletePreset(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := h.presets.Delete(id); err != nil {
		if errors.Is(err, presets.ErrSeedProtected) {
			http.Error(w, "built-in presets cannot be deleted", http.StatusForbidden)
			return
		}
		slog.Error("delete preset", "error", err)
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	h.broadcastPresetsUpdated()
	w.WriteHeader(http.StatusNoContent)
}

// HandleApplyPreset runs a preset's pipeline over the posted camera data.
func (h *Handlers) HandleApplyPreset(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	preset, err := h.presets.Get(id)
	if err != nil {
		http.Error(w, "preset not found", http.StatusNotFound)
		return
	}

	_, p, ok := decodeTransform(w, r)
	if !ok {
		return
	}
	if err := presets.Apply(p, preset.Ops); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	slog.Info("preset applied", "id", id, "name", preset.Name)
	writePath(w, p)
}
