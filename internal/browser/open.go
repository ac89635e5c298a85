// Package browser launches the user's default browser at a URL. Unlike a
// fire-and-forget helper, Open reports failure to the caller: the link
// dispatcher needs to know the launch did not happen so it can fall back
// to opening the URL inside an already-connected page.
package browser

import "errors"

// ErrNoDisplay is returned when no graphical session is detected, so
// spawning a browser would be pointless.
var ErrNoDisplay = errors.New("no display detected")

// Open attempts to launch the default browser at url. The browser process
// is started, not waited for; an error means the launch itself failed.
func Open(url string) error {
	if !hasDisplay() {
		return ErrNoDisplay
	}
	return open(url)
}
