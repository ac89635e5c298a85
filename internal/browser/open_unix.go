//go:build !windows && !darwin

package browser

import (
	"os"
	"os/exec"
)

func open(url string) error {
	return exec.Command("xdg-open", url).Start()
}

func hasDisplay() bool {
	// A graphical session on Linux / BSD sets $DISPLAY (X11) or
	// $WAYLAND_DISPLAY. Neither present means we're likely headless.
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}
