// Package ui provides the local HTTP bridge served by 'sqlpilot serve'.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/sqlpilot/internal/engine"
	"github.com/leapstack-labs/sqlpilot/internal/ui/router"
)

// debounceDelay coalesces bursts of config file events.
const debounceDelay = 100 * time.Millisecond

// ReloadFunc re-reads the backend location from configuration.
type ReloadFunc func() (engine.APIConfig, error)

// Server is the bridge server.
type Server struct {
	engine     *engine.Engine
	addr       string
	configPath string
	reload     ReloadFunc
	logger     *slog.Logger
	ready      chan net.Addr
}

// Config holds configuration for the bridge server.
type Config struct {
	Engine *engine.Engine
	// Addr is the listen address, e.g. 127.0.0.1:8766.
	Addr string
	// ConfigPath is watched when set; Reload is called after it changes.
	ConfigPath string
	Reload     ReloadFunc
	Logger     *slog.Logger
}

// NewServer creates a new bridge server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		engine:     cfg.Engine,
		addr:       cfg.Addr,
		configPath: cfg.ConfigPath,
		reload:     cfg.Reload,
		logger:     logger,
		ready:      make(chan net.Addr, 1),
	}
}

// Handler returns the bridge's HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
	)
	router.SetupRoutes(r, s.engine)
	return r
}

// Ready delivers the bound address once the server is listening.
func (s *Server) Ready() <-chan net.Addr {
	return s.ready
}

// Serve starts the engine and the server and blocks until the context is
// cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.logger.Info("starting bridge server", "addr", "http://"+ln.Addr().String())

	eg, egctx := errgroup.WithContext(ctx)

	s.engine.Start(egctx)

	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.configPath != "" && s.reload != nil {
		eg.Go(func() error {
			return s.watchConfig(egctx)
		})
	}

	eg.Go(func() error {
		s.ready <- ln.Addr()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down bridge server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// watchConfig watches the config file and reconfigures the engine after it
// changes. The parent directory is watched so editors that replace the file
// are still seen.
func (s *Server) watchConfig(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	abs, err := filepath.Abs(s.configPath)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		s.logger.Error("failed to watch config file", "path", abs, "error", err)
		// Don't fail - continue without watching
		<-ctx.Done()
		return nil
	}

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				s.applyConfig(abs)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

func (s *Server) applyConfig(path string) {
	api, err := s.reload()
	if err != nil {
		s.logger.Error("config reload failed, keeping current backend", "path", path, "error", err)
		return
	}
	s.logger.Debug("config file changed", "path", path)
	s.engine.Reconfigure(api)
}
