package config

import (
	"path/filepath"
	"testing"

	"github.com/michosu/rl-camera-path-editor/internal/db"
)

func TestConfigRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}

	cfg := New(database)

	// Schema seeds defaults.
	if got := cfg.Get("paths_dir", ""); got != "./camera-paths" {
		t.Errorf("seeded paths_dir = %q", got)
	}
	if got := cfg.Get("missing", "fallback"); got != "fallback" {
		t.Errorf("fallback = %q", got)
	}

	if err := cfg.Set("paths_dir", "/tmp/paths"); err != nil {
		t.Fatal(err)
	}
	if got := cfg.Get("paths_dir", ""); got != "/tmp/paths" {
		t.Errorf("after set = %q", got)
	}

	all := cfg.All()
	if all["paths_dir"] != "/tmp/paths" {
		t.Errorf("All() = %v", all)
	}
	// All returns a copy; mutating it must not affect the config.
	all["paths_dir"] = "clobbered"
	if cfg.Get("paths_dir", "") != "/tmp/paths" {
		t.Error("All() exposed internal cache")
	}
	database.Close()

	// Values survive a reopen.
	database2, err := db.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer database2.Close()
	cfg2 := New(database2)
	if got := cfg2.Get("paths_dir", ""); got != "/tmp/paths" {
		t.Errorf("after reopen = %q", got)
	}
}
