package camera

import (
	"errors"
	"fmt"
	"math"

	"github.com/michosu/rl-camera-path-editor/internal/models"
)

// ErrZeroMultiplier is returned by Speed and FitToDuration when the
// requested scaling is degenerate.
var ErrZeroMultiplier = errors.New("multiplier must be non-zero")

// ── FOV ─────────────────────────────────────────────────

// FOVAdd shifts every keyframe's FOV by v.
func FOVAdd(p Path, v float64) {
	for k, kf := range p {
		kf.FOV += v
		p[k] = kf
	}
}

// FOVMultiply scales every keyframe's FOV by v.
func FOVMultiply(p Path, v float64) {
	for k, kf := range p {
		kf.FOV *= v
		p[k] = kf
	}
}

// FOVSet sets every keyframe's FOV to v.
func FOVSet(p Path, v float64) {
	for k, kf := range p {
		kf.FOV = v
		p[k] = kf
	}
}

// ── Position ────────────────────────────────────────────

// PositionOffset translates every keyframe by (x, y, z).
func PositionOffset(p Path, x, y, z float64) {
	for k, kf := range p {
		kf.Position.X += x
		kf.Position.Y += y
		kf.Position.Z += z
		p[k] = kf
	}
}

// PositionScale scales every keyframe's position component-wise.
func PositionScale(p Path, x, y, z float64) {
	for k, kf := range p {
		kf.Position.X *= x
		kf.Position.Y *= y
		kf.Position.Z *= z
		p[k] = kf
	}
}

// ── Rotation ────────────────────────────────────────────

// RotationOffset shifts every keyframe's rotation. With useDegrees the
// deltas are given in degrees and converted to Unreal units.
func RotationOffset(p Path, pitch, yaw, roll int, useDegrees bool) {
	if useDegrees {
		pitch = int(float64(pitch) * UUPerDegree)
		yaw = int(float64(yaw) * UUPerDegree)
		roll = int(float64(roll) * UUPerDegree)
	}
	for k, kf := range p {
		kf.Rotation.Pitch += pitch
		kf.Rotation.Yaw += yaw
		kf.Rotation.Roll += roll
		p[k] = kf
	}
}

// ── Mirror ──────────────────────────────────────────────

// MirrorOptions controls Mirror.
type MirrorOptions struct {
	Axis      string // "x", "y", or "z"
	FlipPitch bool
	FlipYaw   bool
	FlipRoll  bool
	// Bounded reflects positions about the centre of the path's bounding
	// box on the chosen axis instead of negating through the origin.
	Bounded bool
}

// Mirror reflects the path over the chosen axis, optionally flipping
// rotation components. Returns an error for an unknown axis; the path is
// untouched in that case.
func Mirror(p Path, opt MirrorOptions) error {
	if opt.Axis != "x" && opt.Axis != "y" && opt.Axis != "z" {
		return fmt.Errorf("invalid axis: %s", opt.Axis)
	}

	var center float64
	if opt.Bounded {
		min, max := math.MaxFloat64, -math.MaxFloat64
		for _, kf := range p {
			v := axisValue(kf.Position, opt.Axis)
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		center = (min + max) / 2
	}

	for k, kf := range p {
		v := axisValue(kf.Position, opt.Axis)
		if opt.Bounded {
			v = 2*center - v
		} else {
			v = -v
		}
		setAxisValue(&kf.Position, opt.Axis, v)

		if opt.FlipPitch {
			kf.Rotation.Pitch = -kf.Rotation.Pitch
		}
		if opt.FlipYaw {
			kf.Rotation.Yaw = -kf.Rotation.Yaw
		}
		if opt.FlipRoll {
			kf.Rotation.Roll = -kf.Rotation.Roll
		}
		p[k] = kf
	}
	return nil
}

func axisValue(pos models.Position, axis string) float64 {
	switch axis {
	case "x":
		return pos.X
	case "y":
		return pos.Y
	default:
		return pos.Z
	}
}

func setAxisValue(pos *models.Position, axis string, v float64) {
	switch axis {
	case "x":
		pos.X = v
	case "y":
		pos.Y = v
	default:
		pos.Z = v
	}
}

// ── Time ────────────────────────────────────────────────

// Speed divides every timestamp by multiplier (2.0 = twice as fast) and
// resyncs frame numbers.
func Speed(p Path, multiplier float64) error {
	if multiplier == 0 {
		return ErrZeroMultiplier
	}
	for k, kf := range p {
		kf.Timestamp /= multiplier
		resyncFrame(&kf)
		p[k] = kf
	}
	return nil
}

// TimeOffset shifts every timestamp by seconds and resyncs frame numbers.
func TimeOffset(p Path, seconds float64) {
	for k, kf := range p {
		kf.Timestamp += seconds
		resyncFrame(&kf)
		p[k] = kf
	}
}

// Reverse plays the path backwards: each timestamp t becomes
// max - t + min, so the span is preserved.
func Reverse(p Path) {
	s := Stats(p)
	if s.Keyframes == 0 {
		return
	}
	for k, kf := range p {
		kf.Timestamp = s.MaxTime - kf.Timestamp + s.MinTime
		resyncFrame(&kf)
		p[k] = kf
	}
}

// FitToDuration rescales the path, anchored at its first keyframe, so its
// total duration becomes target seconds. Used to re-time a path to a
// rendered video clip.
func FitToDuration(p Path, target float64) error {
	if target <= 0 {
		return ErrZeroMultiplier
	}
	s := Stats(p)
	if s.Keyframes == 0 || s.Duration == 0 {
		return nil
	}
	scale := target / s.Duration
	for k, kf := range p {
		kf.Timestamp = s.MinTime + (kf.Timestamp-s.MinTime)*scale
		resyncFrame(&kf)
		p[k] = kf
	}
	return nil
}

// ── Smoothing ───────────────────────────────────────────

// Smooth applies a centred moving average of window keyframes to position
// and FOV. Rotation and timing are left alone. The window is clamped at
// the ends of the path.
func Smooth(p Path, window int) {
	if window <= 1 || len(p) < 2 {
		return
	}
	keys := sortedKeys(p)

	// Average against a snapshot so later keyframes don't see already
	// smoothed neighbours.
	orig := make([]models.Keyframe, len(keys))
	for i, k := range keys {
		orig[i] = p[k]
	}

	half := window / 2
	for i, k := range keys {
		start := i - half
		if start < 0 {
			start = 0
		}
		end := i + half + 1
		if end > len(keys) {
			end = len(keys)
		}

		var pos models.Position
		var fov float64
		for j := start; j < end; j++ {
			pos.X += orig[j].Position.X
			pos.Y += orig[j].Position.Y
			pos.Z += orig[j].Position.Z
			fov += orig[j].FOV
		}
		n := float64(end - start)

		kf := p[k]
		kf.Position = models.Position{X: pos.X / n, Y: pos.Y / n, Z: pos.Z / n}
		kf.FOV = fov / n
		p[k] = kf
	}
}
