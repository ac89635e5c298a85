package link

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
)

// recordingHub captures Broadcast calls.
type recordingHub struct {
	mu     sync.Mutex
	events []string
	datas  [][]byte
}

func (h *recordingHub) Broadcast(event string, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	h.datas = append(h.datas, data)
}

func (h *recordingHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

// countingHandler counts log records at or above Error level.
type countingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (c *countingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (c *countingHandler) Handle(_ context.Context, r slog.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, r)
	return nil
}
func (c *countingHandler) WithAttrs([]slog.Attr) slog.Handler { return c }
func (c *countingHandler) WithGroup(string) slog.Handler      { return c }

func newTestDispatcher(open OpenFunc) (*Dispatcher, *recordingHub, *countingHandler) {
	hub := &recordingHub{}
	logs := &countingHandler{}
	return NewWithOpener(open, hub, slog.New(logs)), hub, logs
}

func TestOpenExternal_NativeSuccessSkipsFallback(t *testing.T) {
	var opened []string
	d, hub, logs := newTestDispatcher(func(url string) error {
		opened = append(opened, url)
		return nil
	})

	d.OpenExternal(context.Background(), "https://example.com")

	if len(opened) != 1 || opened[0] != "https://example.com" {
		t.Fatalf("native open calls = %v, want exactly one with the URL", opened)
	}
	if hub.count() != 0 {
		t.Errorf("fallback broadcast fired %d times on native success, want 0", hub.count())
	}
	if len(logs.records) != 0 {
		t.Errorf("got %d log records on success, want 0", len(logs.records))
	}
}

func TestOpenExternal_NativeFailureFallsBackOnce(t *testing.T) {
	cause := errors.New("command not found")
	d, hub, logs := newTestDispatcher(func(string) error { return cause })

	d.OpenExternal(context.Background(), "https://example.com")

	if hub.count() != 1 {
		t.Fatalf("fallback broadcast fired %d times, want exactly 1", hub.count())
	}
	if hub.events[0] != EventOpenURL {
		t.Errorf("fallback event = %q, want %q", hub.events[0], EventOpenURL)
	}

	var payload map[string]string
	if err := json.Unmarshal(hub.datas[0], &payload); err != nil {
		t.Fatalf("fallback payload is not JSON: %v", err)
	}
	if payload["url"] != "https://example.com" {
		t.Errorf("fallback url = %q, want the original URL unmodified", payload["url"])
	}

	if len(logs.records) != 1 {
		t.Fatalf("got %d log records on failure, want exactly 1", len(logs.records))
	}
	rec := logs.records[0]
	if rec.Level != slog.LevelError {
		t.Errorf("diagnostic level = %v, want error", rec.Level)
	}
	var haveURL, haveErr bool
	rec.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case "url":
			haveURL = a.Value.String() == "https://example.com"
		case "error":
			haveErr = true
		}
		return true
	})
	if !haveURL || !haveErr {
		t.Errorf("diagnostic missing url/error context: url=%v err=%v", haveURL, haveErr)
	}
}

func TestOpenExternal_NeverPanicsOrErrors(t *testing.T) {
	// Both strategies failing must be absorbed: the broadcaster here is
	// an empty hub analogue that accepts and discards, and the caller
	// observes nothing.
	d, _, _ := newTestDispatcher(func(string) error { return errors.New("no display") })

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("OpenExternal panicked: %v", r)
		}
	}()
	d.OpenExternal(context.Background(), "not even a url \x00")
}

func TestOpenExternal_EmptyURLIsOpaque(t *testing.T) {
	var got string
	called := false
	d, hub, _ := newTestDispatcher(func(url string) error {
		got = url
		called = true
		return nil
	})

	d.OpenExternal(context.Background(), "")

	if !called || got != "" {
		t.Errorf("empty URL not dispatched verbatim: called=%v url=%q", called, got)
	}
	if hub.count() != 0 {
		t.Errorf("fallback fired for accepted empty URL")
	}
}

func TestOpenExternal_ConcurrentCallsIndependent(t *testing.T) {
	var mu sync.Mutex
	opened := map[string]int{}
	d, hub, _ := newTestDispatcher(func(url string) error {
		mu.Lock()
		opened[url]++
		mu.Unlock()
		return nil
	})

	urls := []string{"https://a.example", "https://b.example", "https://c.example"}
	var wg sync.WaitGroup
	for _, u := range urls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.OpenExternal(context.Background(), u)
		}()
	}
	wg.Wait()

	for _, u := range urls {
		if opened[u] != 1 {
			t.Errorf("url %q opened %d times, want 1", u, opened[u])
		}
	}
	if hub.count() != 0 {
		t.Errorf("unexpected fallback broadcasts: %d", hub.count())
	}
}

func TestNativeOpenError_WrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := &NativeOpenError{URL: "https://example.com", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("NativeOpenError does not unwrap to its cause")
	}
}
