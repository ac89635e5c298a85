// Package presets stores named transform pipelines and runs them against
// camera paths.
package presets

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/michosu/rl-camera-path-editor/internal/camera"
	"github.com/michosu/rl-camera-path-editor/internal/models"
)

// ErrSeedProtected is returned when attempting to delete a built-in preset.
var ErrSeedProtected = errors.New("built-in presets cannot be deleted")

// Store provides CRUD operations for transform presets.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// List returns all presets, seeds first.
func (s *Store) List() ([]models.Preset, error) {
	rows, err := s.db.Query(
		"SELECT id, name, ops, enabled, is_seed FROM presets ORDER BY is_seed DESC, id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var presets []models.Preset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}
	return presets, rows.Err()
}

// Get returns a single preset by ID.
func (s *Store) Get(id int) (*models.Preset, error) {
	row := s.db.QueryRow(
		"SELECT id, name, ops, enabled, is_seed FROM presets WHERE id = ?", id,
	)
	p, err := scanPreset(row)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new preset and returns the created record.
func (s *Store) Create(name string, ops []models.PresetOp) (*models.Preset, error) {
	opsJSON, err := json.Marshal(ops)
	if err != nil {
		return nil, err
	}
	res, err := s.db.Exec(
		"INSERT INTO presets (name, ops, enabled, is_seed) VALUES (?, ?, 1, 0)",
		name, string(opsJSON),
	)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	return &models.Preset{ID: int(id), Name: name, Ops: ops, Enabled: true}, nil
}

// Update modifies an existing preset's name and pipeline.
func (s *Store) Update(id int, name string, ops []models.PresetOp) error {
	opsJSON, err := json.Marshal(ops)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		"UPDATE presets SET name = ?, ops = ? WHERE id = ?",
		name, string(opsJSON), id,
	)
	return err
}

// SetEnabled toggles a preset's enabled state.
func (s *Store) SetEnabled(id int, enabled bool) error {
	v := 0
	if enabled {
		v = 1
	}
	_, err := s.db.Exec("UPDATE presets SET enabled = ? WHERE id = ?", v, id)
	return err
}

// Delete removes a preset by ID. Returns ErrSeedProtected for built-ins.
func (s *Store) Delete(id int) error {
	var isSeed bool
	if err := s.db.QueryRow("SELECT is_seed FROM presets WHERE id = ?", id).Scan(&isSeed); err != nil {
		return err
	}
	if isSeed {
		return ErrSeedProtected
	}
	_, err := s.db.Exec("DELETE FROM presets WHERE id = ?", id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPreset(r rowScanner) (models.Preset, error) {
	var p models.Preset
	var opsJSON string
	if err := r.Scan(&p.ID, &p.Name, &opsJSON, &p.Enabled, &p.IsSeed); err != nil {
		return p, err
	}
	if err := json.Unmarshal([]byte(opsJSON), &p.Ops); err != nil {
		return p, fmt.Errorf("preset %d has invalid ops: %w", p.ID, err)
	}
	return p, nil
}

// ── Pipeline execution ──────────────────────────────────

// Apply runs a preset's pipeline over the path in order. An unknown or
// malformed step aborts with an error; earlier steps will already have
// been applied, so callers should re-decode on failure rather than keep
// the partial result.
func Apply(p camera.Path, ops []models.PresetOp) error {
	for i, op := range ops {
		if err := applyOne(p, op); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, op.Op, err)
		}
	}
	return nil
}

func applyOne(p camera.Path, op models.PresetOp) error {
	arg := func(name string) float64 { return op.Args[name] }

	switch op.Op {
	case "fov-add":
		camera.FOVAdd(p, arg("value"))
	case "fov-multiply":
		camera.FOVMultiply(p, arg("value"))
	case "fov-set":
		camera.FOVSet(p, arg("value"))
	case "position-offset":
		camera.PositionOffset(p, arg("x"), arg("y"), arg("z"))
	case "position-scale":
		camera.PositionScale(p, arg("x"), arg("y"), arg("z"))
	case "rotation-offset":
		camera.RotationOffset(p, int(arg("pitch")), int(arg("yaw")), int(arg("roll")), arg("useDegrees") != 0)
	case "mirror":
		return camera.Mirror(p, camera.MirrorOptions{
			Axis:      op.Axis,
			FlipPitch: arg("flipPitch") != 0,
			FlipYaw:   arg("flipYaw") != 0,
			FlipRoll:  arg("flipRoll") != 0,
			Bounded:   arg("bounded") != 0,
		})
	case "speed":
		return camera.Speed(p, arg("multiplier"))
	case "time-offset":
		camera.TimeOffset(p, arg("seconds"))
	case "reverse":
		camera.Reverse(p)
	case "smooth":
		camera.Smooth(p, int(arg("window")))
	default:
		return fmt.Errorf("unknown op %q", op.Op)
	}
	return nil
}
