package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/michosu/rl-camera-path-editor/internal/config"
	"github.com/michosu/rl-camera-path-editor/internal/db"
	"github.com/michosu/rl-camera-path-editor/internal/handlers"
	"github.com/michosu/rl-camera-path-editor/internal/library"
	"github.com/michosu/rl-camera-path-editor/internal/link"
	"github.com/michosu/rl-camera-path-editor/internal/presets"
	"github.com/michosu/rl-camera-path-editor/internal/sse"
)

func main() {
	// ── Flags ───────────────────────────────────────────
	addr := flag.String("addr", ":8090", "HTTP listen address")
	dbPath := flag.String("db", "camera-path-editor.db", "SQLite database path")
	pathsDir := flag.String("paths", "./camera-paths", "Directory containing camera path files")
	debug := flag.Bool("debug", false, "Enable debug logging")
	noBrowser := flag.Bool("no-browser", false, "Do not open the editor in a browser on startup")
	flag.Parse()

	// ── Logger ──────────────────────────────────────────
	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	// ── Database ────────────────────────────────────────
	database, err := db.Open(*dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	// ── Config ──────────────────────────────────────────
	cfg := config.New(database)

	// ── SSE Hub ─────────────────────────────────────────
	hub := sse.NewHub()
	go hub.Run()

	// ── Link dispatcher ────────────────────────────────
	// Constructed once and injected everywhere external links are
	// opened; bound to its route below and never re-bound.
	links := link.New(hub, logger)

	// ── Library (deferred scan — runs after the server starts) ──
	metaCache := library.NewMetaCache(database)
	scanner := library.NewScanner(cfg.Get("paths_dir", *pathsDir), metaCache)

	// ── Presets ─────────────────────────────────────────
	presetStore := presets.NewStore(database)

	// ── Routes ──────────────────────────────────────────
	mux := http.NewServeMux()
	h := handlers.New(cfg, hub, scanner, presetStore, links)

	// External links — the front-end's open_url command
	mux.HandleFunc("POST /api/open-url", h.HandleOpenURL)

	// SSE – editor pages subscribe here
	mux.HandleFunc("GET /events", h.HandleSSE)

	// Pages
	mux.HandleFunc("GET /editor", h.HandleEditor)
	mux.HandleFunc("GET /library", h.HandleLibrary)
	mux.HandleFunc("GET /settings", h.HandleSettings)
	mux.HandleFunc("GET /", h.HandleIndex)

	// File operations
	mux.HandleFunc("POST /api/file/load", h.HandleLoadFile)
	mux.HandleFunc("POST /api/file/save", h.HandleSaveFile)

	// Transforms
	mux.HandleFunc("POST /api/transform/fov-add", h.HandleFOVAdd)
	mux.HandleFunc("POST /api/transform/fov-multiply", h.HandleFOVMultiply)
	mux.HandleFunc("POST /api/transform/fov-set", h.HandleFOVSet)
	mux.HandleFunc("POST /api/transform/position-offset", h.HandlePositionOffset)
	mux.HandleFunc("POST /api/transform/position-scale", h.HandlePositionScale)
	mux.HandleFunc("POST /api/transform/rotation-offset", h.HandleRotationOffset)
	mux.HandleFunc("POST /api/transform/mirror", h.HandleMirror)
	mux.HandleFunc("POST /api/transform/speed", h.HandleSpeed)
	mux.HandleFunc("POST /api/transform/time-offset", h.HandleTimeOffset)
	mux.HandleFunc("POST /api/transform/reverse", h.HandleReverse)
	mux.HandleFunc("POST /api/transform/smooth", h.HandleSmooth)
	mux.HandleFunc("POST /api/transform/fit-to-video", h.HandleFitToVideo)
	mux.HandleFunc("POST /api/path/stats", h.HandlePathStats)

	// Library / config
	mux.HandleFunc("GET /api/paths", h.HandleListPaths)
	mux.HandleFunc("GET /api/config", h.HandleGetConfig)
	mux.HandleFunc("POST /api/config", h.HandleSetConfig)

	// Presets
	mux.HandleFunc("GET /api/presets", h.HandleListPresets)
	mux.HandleFunc("POST /api/presets", h.HandleCreatePreset)
	mux.HandleFunc("PUT /api/presets/{id}", h.HandleUpdatePreset)
	mux.HandleFunc("POST /api/presets/{id}/toggle", h.HandleTogglePreset)
	mux.HandleFunc("DELETE /api/presets/{id}", h.HandleDeletePreset)
	mux.HandleFunc("POST /api/presets/{id}/apply", h.HandleApplyPreset)

	// Graceful shutdown channel (created early so /api/shutdown can use it)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	// Shutdown endpoint
	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"shutting down"}`))
		go func() {
			time.Sleep(500 * time.Millisecond)
			done <- os.Interrupt
		}()
	})

	// Static files (CSS, JS)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	// ── HTTP Server ────────────────────────────────────────
	srv := &http.Server{
		Addr:         *addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // SSE needs unlimited write time
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("HTTP server starting", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── Auto-open editor ────────────────────────────────
	// Resolve the listen address to an actual URL (handle ":port" form).
	// Goes through the link dispatcher like any other external link, so
	// a headless host degrades the same way.
	if !*noBrowser && !*debug {
		host, port, _ := net.SplitHostPort(*addr)
		if host == "" {
			host = "localhost"
		}
		editorURL := fmt.Sprintf("http://%s/editor", net.JoinHostPort(host, port))
		slog.Info("opening editor in browser", "url", editorURL)
		links.OpenExternal(context.Background(), editorURL)
	}

	// ── Background library scan + directory watcher ─────
	// The server is already accepting connections; the library page
	// refreshes itself when the scan broadcast arrives. watchCtx is
	// canceled on shutdown to stop the watcher.
	watchCtx, watchCancel := context.WithCancel(context.Background())

	go func() {
		scanner.Scan()
		metaCache.Cleanup()
		h.BroadcastLibraryUpdated()

		// Poll every 2 seconds for file changes
		go scanner.Watch(watchCtx, 2*time.Second, func() {
			h.BroadcastLibraryUpdated()
		})
	}()

	<-done
	slog.Info("shutting down...")

	watchCancel() // stop the directory watcher

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hub.Close()
	_ = srv.Shutdown(ctx)
}
