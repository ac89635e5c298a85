//go:build windows

package browser

import "os/exec"

func open(url string) error {
	return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
}

func hasDisplay() bool {
	// Even Server Core has a desktop; if no browser is registered the
	// launch fails and the caller falls back.
	return true
}
