// Package camera implements the camera path data model and the transform
// operations the editor exposes. A path is the JSON object Rocket League
// exports: keyframes keyed by an opaque id, capitalised field names,
// timestamps in seconds with frame numbers locked to 30 FPS.
package camera

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/michosu/rl-camera-path-editor/internal/models"
)

// FPS is the frame rate camera paths are keyed to. Frame numbers are
// re-derived as round(timestamp * FPS) whenever a transform changes
// timestamps.
const FPS = 30.0

// UUPerDegree converts degrees to Unreal rotation units.
const UUPerDegree = 182.04

// Path is a decoded camera path: keyframes keyed by their file id.
type Path map[string]models.Keyframe

// Decode parses camera path JSON.
func Decode(data []byte) (Path, error) {
	var p Path
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse camera data: %w", err)
	}
	return p, nil
}

// Encode renders a path as pretty-printed JSON, the format the game and
// the original files use. Keys are emitted in sorted order.
func Encode(p Path) ([]byte, error) {
	out, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize camera data: %w", err)
	}
	return out, nil
}

// Stats summarises a path: keyframe count and the timestamp span.
func Stats(p Path) models.PathStats {
	s := models.PathStats{Keyframes: len(p)}
	if len(p) == 0 {
		return s
	}
	min, max := math.MaxFloat64, -math.MaxFloat64
	for _, kf := range p {
		if kf.Timestamp < min {
			min = kf.Timestamp
		}
		if kf.Timestamp > max {
			max = kf.Timestamp
		}
	}
	s.MinTime = min
	s.MaxTime = max
	s.Duration = max - min
	return s
}

// sortedKeys returns the path's keyframe ids ordered by timestamp.
// Used by transforms that need the path's temporal sequence.
func sortedKeys(p Path) []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return p[keys[i]].Timestamp < p[keys[j]].Timestamp
	})
	return keys
}

// resyncFrame recomputes a keyframe's frame number from its timestamp.
func resyncFrame(kf *models.Keyframe) {
	kf.Frame = int(math.Round(kf.Timestamp * FPS))
}
