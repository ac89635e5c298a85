package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/michosu/rl-camera-path-editor/internal/camera"
	"github.com/michosu/rl-camera-path-editor/internal/media"
)

// Camera path payloads can hold thousands of keyframes; give transform
// bodies more headroom than the small control requests.
const maxPathBody = 16 << 20

// transformRequest is the shared body for all transform endpoints: the
// camera data plus the operation's numeric parameters. Unused fields are
// ignored per endpoint.
type transformRequest struct {
	Data string `json:"data"`

	Value      float64 `json:"value"`      // fov ops
	X          float64 `json:"x"`          // position ops
	Y          float64 `json:"y"`          //
	Z          float64 `json:"z"`          //
	Pitch      int     `json:"pitch"`      // rotation offset
	Yaw        int     `json:"yaw"`        //
	Roll       int     `json:"roll"`       //
	UseDegrees bool    `json:"useDegrees"` //
	Axis       string  `json:"axis"`       // mirror
	FlipPitch  bool    `json:"flipPitch"`  //
	FlipYaw    bool    `json:"flipYaw"`    //
	FlipRoll   bool    `json:"flipRoll"`   //
	Bounded    bool    `json:"bounded"`    //
	Multiplier float64 `json:"multiplier"` // speed
	Seconds    float64 `json:"seconds"`    // time offset
	Window     int     `json:"window"`     // smooth
	VideoPath  string  `json:"videoPath"`  // fit-to-video
}

// decodeTransform reads and decodes a transform request plus its camera
// data. On error the response has already been written.
func decodeTransform(w http.ResponseWriter, r *http.Request) (*transformRequest, camera.Path, bool) {
	defer r.Body.Close()
	var req transformRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxPathBody)).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return nil, nil, false
	}
	p, err := camera.Decode([]byte(req.Data))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, nil, false
	}
	return &req, p, true
}

// writePath encodes the transformed path back to the client.
func writePath(w http.ResponseWriter, p camera.Path) {
	out, err := camera.Encode(p)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(out)
}

// ── File operations ─────────────────────────────────────

// HandleLoadFile reads a camera path file from disk and returns its
// contents. The path comes from the front-end's file picker.
func (h *Handlers) HandleLoadFile(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req struct {
		Path string `json:"path"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 4096)).Decode(&req); err != nil || req.Path == "" {
		http.Error(w, "invalid json: path required", http.StatusBadRequest)
		return
	}
	data, err := os.ReadFile(req.Path)
	if err != nil {
		slog.Error("load camera file", "path", req.Path, "error", err)
		http.Error(w, "failed to read file", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"content": string(data)})
}

// HandleSaveFile writes camera path content to disk.
func (h *Handlers) HandleSaveFile(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxPathBody)).Decode(&req); err != nil || req.Path == "" {
		http.Error(w, "invalid json: path required", http.StatusBadRequest)
		return
	}
	if err := os.WriteFile(req.Path, []byte(req.Content), 0o644); err != nil {
		slog.Error("save camera file", "path", req.Path, "error", err)
		http.Error(w, "failed to write file", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Transforms ──────────────────────────────────────────

func (h *Handlers) HandleFOVAdd(w http.ResponseWriter, r *http.Request) {
	req, p, ok := decodeTransform(w, r)
	if !ok {
		return
	}
	camera.FOVAdd(p, req.Value)
	writePath(w, p)
}

func (h *Handlers) HandleFOVMultiply(w http.ResponseWriter, r *http.Request) {
	req, p, ok := decodeTransform(w, r)
	if !ok {
		return
	}
	camera.FOVMultiply(p, req.Value)
	writePath(w, p)
}

func (h *Handlers) HandleFOVSet(w http.ResponseWriter, r *http.Request) {
	req, p, ok := decodeTransform(w, r)
	if !ok {
		return
	}
	camera.FOVSet(p, req.Value)
	writePath(w, p)
}

func (h *Handlers) HandlePositionOffset(w http.ResponseWriter, r *http.Request) {
	req, p, ok := decodeTransform(w, r)
	if !ok {
		return
	}
	camera.PositionOffset(p, req.X, req.Y, req.Z)
	writePath(w, p)
}

func (h *Handlers) HandlePositionScale(w http.ResponseWriter, r *http.Request) {
	req, p, ok := decodeTransform(w, r)
	if !ok {
		return
	}
	camera.PositionScale(p, req.X, req.Y, req.Z)
	writePath(w, p)
}

func (h *Handlers) HandleRotationOffset(w http.ResponseWriter, r *http.Request) {
	req, p, ok := decodeTransform(w, r)
	if !ok {
		return
	}
	camera.RotationOffset(p, req.Pitch, req.Yaw, req.Roll, req.UseDegrees)
	writePath(w, p)
}

func (h *Handlers) HandleMirror(w http.ResponseWriter, r *http.Request) {
	req, p, ok := decodeTransform(w, r)
	if !ok {
		return
	}
	err := camera.Mirror(p, camera.MirrorOptions{
		Axis:      req.Axis,
		FlipPitch: req.FlipPitch,
		FlipYaw:   req.FlipYaw,
		FlipRoll:  req.FlipRoll,
		Bounded:   req.Bounded,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writePath(w, p)
}

func (h *Handlers) HandleSpeed(w http.ResponseWriter, r *http.Request) {
	req, p, ok := decodeTransform(w, r)
	if !ok {
		return
	}
	if err := camera.Speed(p, req.Multiplier); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writePath(w, p)
}

func (h *Handlers) HandleTimeOffset(w http.ResponseWriter, r *http.Request) {
	req, p, ok := decodeTransform(w, r)
	if !ok {
		return
	}
	camera.TimeOffset(p, req.Seconds)
	writePath(w, p)
}

func (h *Handlers) HandleReverse(w http.ResponseWriter, r *http.Request) {
	_, p, ok := decodeTransform(w, r)
	if !ok {
		return
	}
	camera.Reverse(p)
	writePath(w, p)
}

func (h *Handlers) HandleSmooth(w http.ResponseWriter, r *http.Request) {
	req, p, ok := decodeTransform(w, r)
	if !ok {
		return
	}
	camera.Smooth(p, req.Window)
	writePath(w, p)
}

// HandleFitToVideo re-times the path so its duration matches a rendered
// video clip, probed from the MP4 container.
func (h *Handlers) HandleFitToVideo(w http.ResponseWriter, r *http.Request) {
	req, p, ok := decodeTransform(w, r)
	if !ok {
		return
	}
	if req.VideoPath == "" {
		http.Error(w, "videoPath required", http.StatusBadRequest)
		return
	}
	duration, err := media.ProbeDuration(req.VideoPath)
	if err != nil {
		slog.Error("probe video", "path", req.VideoPath, "error", err)
		http.Error(w, "failed to probe video", http.StatusUnprocessableEntity)
		return
	}
	if err := camera.FitToDuration(p, duration); err != nil {
		if errors.Is(err, camera.ErrZeroMultiplier) {
			http.Error(w, "video has zero duration", http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writePath(w, p)
}

// HandlePathStats summarises a camera path.
func (h *Handlers) HandlePathStats(w http.ResponseWriter, r *http.Request) {
	_, p, ok := decodeTransform(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(camera.Stats(p))
}
