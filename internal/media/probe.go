// Package media inspects rendered video files so camera paths can be
// re-timed against them.
package media

import (
	"fmt"
	"os"

	gomp4 "github.com/abema/go-mp4"
)

// ProbeDuration returns the duration in seconds of an MP4 file, read
// from the movie header. Only the container metadata is parsed; media
// data is never decoded.
func ProbeDuration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("media: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := gomp4.Probe(f)
	if err != nil {
		return 0, fmt.Errorf("media: probe %s: %w", path, err)
	}
	if info.Timescale == 0 {
		return 0, fmt.Errorf("media: %s has no movie timescale", path)
	}
	return float64(info.Duration) / float64(info.Timescale), nil
}
