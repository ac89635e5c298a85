//go:build darwin

package browser

import "os/exec"

func open(url string) error {
	return exec.Command("open", url).Start()
}

func hasDisplay() bool {
	// Headless macOS is rare enough that we let open fail on its own.
	return true
}
