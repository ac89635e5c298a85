// Package link opens URLs outside the editor's own view.
//
// The dispatcher tries two increasingly degraded strategies: launch the
// user's default browser from the host process, and — if that fails — tell
// every connected editor page over SSE to open the URL itself in a new
// browsing context. Neither failure is ever surfaced to the caller; the
// operation is best effort by contract, observable only through side
// effects and a single diagnostic log line on the failure branch.
package link

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/michosu/rl-camera-path-editor/internal/browser"
)

// EventOpenURL is the SSE event name connected pages subscribe to for the
// fallback path. The payload is {"url": "..."}.
const EventOpenURL = "open-url"

// OpenFunc launches a URL natively. It is the dispatcher's primary
// strategy; browser.Open satisfies it.
type OpenFunc func(url string) error

// Broadcaster delivers the fallback event to connected pages.
// sse.Hub satisfies it.
type Broadcaster interface {
	Broadcast(event string, data []byte)
}

// NativeOpenError reports that the native browser launch failed for a
// given URL. Callers can match it with errors.As and unwrap the launch
// error underneath.
type NativeOpenError struct {
	URL string
	Err error
}

func (e *NativeOpenError) Error() string {
	return fmt.Sprintf("native open of %q failed: %v", e.URL, e.Err)
}

func (e *NativeOpenError) Unwrap() error { return e.Err }

// Dispatcher is the external link service. Construct one with New at
// startup and hand it to whatever needs to open links; it is stateless
// and safe for concurrent use.
type Dispatcher struct {
	open OpenFunc
	hub  Broadcaster
	log  *slog.Logger
}

// New creates a Dispatcher that launches via browser.Open and falls back
// through hub. A nil logger means slog.Default().
func New(hub Broadcaster, logger *slog.Logger) *Dispatcher {
	return NewWithOpener(browser.Open, hub, logger)
}

// NewWithOpener is New with an explicit primary strategy.
func NewWithOpener(open OpenFunc, hub Broadcaster, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{open: open, hub: hub, log: logger}
}

// OpenExternal opens url in a context external to the editor view. The
// URL is an opaque token: no parsing, validation, or normalization is
// performed, and both strategies receive it unmodified.
//
// It returns once the attempt has completed, whichever branch ran. It
// never reports failure: if the native launch fails, the error and URL
// are logged once and the fallback broadcast is issued; if no page is
// connected (or the page's pop-up is blocked) the loss is silent.
// Concurrent calls are independent, with no ordering between them.
func (d *Dispatcher) OpenExternal(ctx context.Context, url string) {
	err := d.open(url)
	if err == nil {
		return
	}

	nerr := &NativeOpenError{URL: url, Err: err}
	d.log.ErrorContext(ctx, "failed to open url natively, falling back to page navigation",
		"url", url, "error", nerr)

	payload, _ := json.Marshal(map[string]string{"url": url})
	d.hub.Broadcast(EventOpenURL, payload)
}
