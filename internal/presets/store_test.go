package presets

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/michosu/rl-camera-path-editor/internal/camera"
	"github.com/michosu/rl-camera-path-editor/internal/db"
	"github.com/michosu/rl-camera-path-editor/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestSeedsExistAndAreProtected(t *testing.T) {
	s := testStore(t)

	list, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(list) == 0 {
		t.Fatal("no seed presets after schema init")
	}
	for _, p := range list {
		if !p.IsSeed {
			t.Errorf("unexpected non-seed preset %q in fresh db", p.Name)
		}
		if len(p.Ops) == 0 {
			t.Errorf("seed %q has empty pipeline", p.Name)
		}
	}

	err = s.Delete(list[0].ID)
	if !errors.Is(err, ErrSeedProtected) {
		t.Errorf("deleting seed: got %v, want ErrSeedProtected", err)
	}
}

func TestCreateUpdateDelete(t *testing.T) {
	s := testStore(t)

	ops := []models.PresetOp{
		{Op: "fov-add", Args: map[string]float64{"value": 5}},
		{Op: "reverse"},
	}
	created, err := s.Create("My Pipeline", ops)
	if err != nil {
		t.Fatal(err)
	}
	if created.ID == 0 || !created.Enabled || created.IsSeed {
		t.Errorf("created = %+v", created)
	}

	got, err := s.Get(created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "My Pipeline" || len(got.Ops) != 2 || got.Ops[1].Op != "reverse" {
		t.Errorf("got = %+v", got)
	}

	if err := s.Update(created.ID, "Renamed", ops[:1]); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Get(created.ID)
	if got.Name != "Renamed" || len(got.Ops) != 1 {
		t.Errorf("after update: %+v", got)
	}

	if err := s.SetEnabled(created.ID, false); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Get(created.ID)
	if got.Enabled {
		t.Error("still enabled after SetEnabled(false)")
	}

	if err := s.Delete(created.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(created.ID); err == nil {
		t.Error("preset still readable after delete")
	}
}

func TestApplyPipeline(t *testing.T) {
	p := camera.Path{
		"0": {FOV: 90, Position: models.Position{X: 10}, Timestamp: 0},
		"1": {FOV: 90, Position: models.Position{X: 20}, Timestamp: 2},
	}
	ops := []models.PresetOp{
		{Op: "fov-add", Args: map[string]float64{"value": 10}},
		{Op: "mirror", Axis: "x"},
		{Op: "speed", Args: map[string]float64{"multiplier": 2}},
	}

	if err := Apply(p, ops); err != nil {
		t.Fatal(err)
	}
	if p["0"].FOV != 100 {
		t.Errorf("fov = %v", p["0"].FOV)
	}
	if p["1"].Position.X != -20 {
		t.Errorf("x = %v", p["1"].Position.X)
	}
	if p["1"].Timestamp != 1 {
		t.Errorf("timestamp = %v", p["1"].Timestamp)
	}
}

func TestApplyUnknownOp(t *testing.T) {
	err := Apply(camera.Path{}, []models.PresetOp{{Op: "teleport"}})
	if err == nil {
		t.Fatal("expected error for unknown op")
	}
}

func TestApplyReportsFailingStep(t *testing.T) {
	err := Apply(camera.Path{}, []models.PresetOp{
		{Op: "reverse"},
		{Op: "mirror", Axis: "nope"},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); !strings.HasPrefix(got, "step 2 (mirror)") {
		t.Errorf("error does not name the failing step: %q", got)
	}
}
