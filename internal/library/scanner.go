// Package library maintains the list of camera path files in the user's
// paths directory, enriched with parsed metadata (keyframe count,
// duration) and kept fresh by a polling watcher.
package library

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/michosu/rl-camera-path-editor/internal/camera"
	"github.com/michosu/rl-camera-path-editor/internal/models"
)

// Camera paths are plain JSON exports.
const pathExt = ".json"

// Scanner scans a directory for camera path files and caches their
// metadata. It starts empty; call Scan to populate it.
type Scanner struct {
	dir   string
	cache *MetaCache // optional; nil disables metadata caching
	mu    sync.RWMutex
	files []models.PathFile
}

// NewScanner creates a Scanner for the given directory.
func NewScanner(dir string, cache *MetaCache) *Scanner {
	return &Scanner{dir: dir, cache: cache}
}

// SetDir updates the directory to scan.
func (s *Scanner) SetDir(dir string) {
	s.mu.Lock()
	s.dir = dir
	s.mu.Unlock()
}

// Dir returns the current paths directory.
func (s *Scanner) Dir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dir
}

// Scan re-reads the paths directory and rebuilds the file list.
func (s *Scanner) Scan() {
	s.mu.RLock()
	dir := s.dir
	s.mu.RUnlock()

	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Warn("library scan failed", "dir", dir, "error", err)
		return
	}

	files := make([]models.PathFile, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), pathExt) {
			continue
		}
		files = append(files, s.describe(dir, e.Name()))
	}
	sortFiles(files)

	s.mu.Lock()
	s.files = files
	s.mu.Unlock()

	slog.Info("library scan complete", "dir", dir, "count", len(files))
}

// describe builds a PathFile for one entry, consulting the metadata cache
// before parsing the file. A file that fails to parse still appears in
// the library, with zero keyframes.
func (s *Scanner) describe(dir, name string) models.PathFile {
	pf := models.PathFile{
		Name: name,
		Path: filepath.Join(dir, name),
	}

	info, err := os.Stat(pf.Path)
	if err != nil {
		return pf
	}
	modTime := info.ModTime().Unix()

	if s.cache != nil {
		if kf, dur, ok := s.cache.Get(pf.Path, modTime); ok {
			pf.Keyframes = kf
			pf.Duration = dur
			return pf
		}
	}

	data, err := os.ReadFile(pf.Path)
	if err != nil {
		return pf
	}
	p, err := camera.Decode(data)
	if err != nil {
		slog.Debug("library file is not a camera path", "file", name, "error", err)
		return pf
	}
	st := camera.Stats(p)
	pf.Keyframes = st.Keyframes
	pf.Duration = st.Duration

	if s.cache != nil {
		if err := s.cache.Set(pf.Path, modTime, pf.Keyframes, pf.Duration); err != nil {
			slog.Warn("path meta cache write failed", "file", name, "error", err)
		}
	}
	return pf
}

// ListAll returns all discovered camera path files.
func (s *Scanner) ListAll() []models.PathFile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.PathFile, len(s.files))
	copy(out, s.files)
	return out
}

// GetByPath returns the library entry with the given absolute path.
func (s *Scanner) GetByPath(path string) (models.PathFile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, f := range s.files {
		if f.Path == path {
			return f, true
		}
	}
	return models.PathFile{}, false
}

// ── Directory watching ──────────────────────────────────

// dirSnapshot reads the paths directory and returns file names mapped to
// modification times. The directory is captured under lock and returned
// to avoid races with SetDir.
func (s *Scanner) dirSnapshot() (map[string]int64, string) {
	s.mu.RLock()
	dir := s.dir
	s.mu.RUnlock()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, dir
	}

	snap := make(map[string]int64, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), pathExt) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		snap[e.Name()] = info.ModTime().Unix()
	}
	return snap, dir
}

// Watch polls the paths directory at the given interval and calls
// onChange whenever files are added, modified, or deleted. Only changed
// files are re-parsed. Cancel the context to stop watching.
func (s *Scanner) Watch(ctx context.Context, interval time.Duration, onChange func()) {
	prev, _ := s.dirSnapshot()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			curr, dir := s.dirSnapshot()
			if curr == nil {
				continue
			}
			if !snapshotsEqual(prev, curr) {
				s.applyChanges(prev, curr, dir)
				if onChange != nil {
					onChange()
				}
				prev = curr
			}
		}
	}
}

// applyChanges incrementally updates the file list from the diff between
// two directory snapshots. Only new or modified files are re-described;
// deleted files are simply dropped.
func (s *Scanner) applyChanges(prev, curr map[string]int64, dir string) {
	var added, deleted []string

	for name, modTime := range curr {
		oldMod, existed := prev[name]
		if !existed {
			added = append(added, name)
			slog.Info("camera path added", "file", name)
		} else if modTime != oldMod {
			added = append(added, name)
			slog.Info("camera path modified", "file", name)
		}
	}
	for name := range prev {
		if _, exists := curr[name]; !exists {
			deleted = append(deleted, name)
			slog.Info("camera path deleted", "file", name)
		}
	}

	replaced := make(map[string]models.PathFile, len(added))
	for _, name := range added {
		replaced[name] = s.describe(dir, name)
	}
	deletedSet := make(map[string]bool, len(deleted))
	for _, name := range deleted {
		deletedSet[name] = true
	}

	s.mu.Lock()
	result := make([]models.PathFile, 0, len(s.files))
	for _, f := range s.files {
		if deletedSet[f.Name] {
			continue
		}
		if nf, ok := replaced[f.Name]; ok {
			result = append(result, nf)
			delete(replaced, f.Name)
		} else {
			result = append(result, f)
		}
	}
	for _, nf := range replaced {
		result = append(result, nf)
	}
	sortFiles(result)
	s.files = result
	s.mu.Unlock()

	slog.Info("incremental library scan",
		"added", len(added), "deleted", len(deleted), "total", len(result))
}

// snapshotsEqual reports whether both snapshots contain the same files
// with the same modification times.
func snapshotsEqual(a, b map[string]int64) bool {
	if len(a) != len(b) {
		return false
	}
	for name, modA := range a {
		if modB, ok := b[name]; !ok || modA != modB {
			return false
		}
	}
	return true
}

// sortFiles keeps the library ordered by name for stable display.
func sortFiles(files []models.PathFile) {
	sort.Slice(files, func(i, j int) bool {
		return strings.ToLower(files[i].Name) < strings.ToLower(files[j].Name)
	})
}
