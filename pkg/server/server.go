package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/goliatone/go-formset/pkg/config"
	"github.com/goliatone/go-formset/pkg/formset"
	"github.com/goliatone/go-formset/pkg/model"
	"github.com/goliatone/go-formset/pkg/render"
)

const versionDefault = "dev"

var (
	// overridden during build with ldflags
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Option customises a Server.
type Option func(*Server)

// WithLogger replaces the JSON logger built from Config.LogLevel.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRenderer swaps the page renderer.
func WithRenderer(renderer *render.Renderer) Option {
	return func(s *Server) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

// WithPage serves page instead of render.DemoProfile.
func WithPage(page render.Page) Option {
	return func(s *Server) {
		s.page = &page
	}
}

// WithStore overlays file-based group configuration. Groups the page does
// not render are appended with their default fields.
func WithStore(store *config.Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// Server represents the HTTP server.
type Server struct {
	config      *Config
	httpServer  *http.Server
	router      chi.Router
	rateLimiter *rate.Limiter
	logger      *slog.Logger

	renderer *render.Renderer
	store    *config.Store
	page     *render.Page
	configs  []model.GroupConfig
	registry *formset.Registry

	mu    sync.RWMutex
	ready bool
}

// New builds a server from cfg, DefaultConfig when nil.
func New(cfg *Config, options ...Option) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	s := &Server{
		config:      cfg,
		rateLimiter: rate.NewLimiter(cfg.RateLimit, cfg.RateLimitBurst),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.logger == nil {
		s.logger = NewLogger(cfg.LogLevel)
	}

	if s.store == nil && cfg.ConfigPath != "" {
		store, err := loadStore(cfg.ConfigPath)
		if err != nil {
			return nil, err
		}
		s.store = store
	}
	if s.renderer == nil {
		renderer, err := render.New()
		if err != nil {
			return nil, err
		}
		s.renderer = renderer
	}
	if s.page == nil {
		page := render.DemoProfile()
		s.page = &page
	}
	merged := mergeStore(*s.page, s.store)
	s.page = &merged

	configs, err := s.renderer.Configs(*s.page)
	if err != nil {
		return nil, err
	}
	s.configs = configs
	s.registry = formset.NewPresetRegistry()
	for _, groupCfg := range configs {
		if err := s.registry.Replace(groupCfg); err != nil {
			return nil, err
		}
	}

	s.router = s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s, nil
}

// NewLogger returns the JSON logger used when WithLogger is not given.
func NewLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadStore(path string) (*config.Store, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("server: group config: %w", err)
	}
	if info.IsDir() {
		return config.LoadFS(os.DirFS(path))
	}
	return config.LoadFile(path)
}

func mergeStore(page render.Page, store *config.Store) render.Page {
	if store == nil || store.Empty() {
		return page
	}

	seen := make(map[string]struct{}, len(page.Groups))
	groups := make([]render.Group, 0, len(page.Groups))
	for _, group := range page.Groups {
		if cfg, ok := store.Group(group.Config.Tag); ok {
			group.Config = cfg
		}
		seen[group.Config.Tag] = struct{}{}
		groups = append(groups, group)
	}
	for _, cfg := range store.Groups() {
		if _, ok := seen[cfg.Tag]; ok {
			continue
		}
		groups = append(groups, render.Group{Config: cfg, Fields: render.DefaultFields(cfg.Tag)})
	}
	page.Groups = groups
	return page
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr is the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// SetReady marks the server as ready to serve traffic.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// Start listens on the configured address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.SetReady(true)
	s.logger.Info("server listening", "address", listener.Addr().String())

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down server")
	return s.httpServer.Shutdown(shutdownCtx)
}

// Run starts a server from cfg and stops it on SIGINT or SIGTERM.
func Run(ctx context.Context, cfg *Config, options ...Option) error {
	server, err := New(cfg, options...)
	if err != nil {
		return err
	}

	server.logger.Info("starting server",
		slog.String("version", version),
		slog.String("commit", commit),
		slog.String("date", date),
		slog.String("address", server.httpServer.Addr),
		slog.Any("rateLimit", server.config.RateLimit),
		slog.Int("rateLimitBurst", server.config.RateLimitBurst),
		slog.Duration("shutdownTimeout", server.config.ShutdownTimeout),
		slog.String("logLevel", server.config.LogLevel.String()),
		slog.Int("groups", len(server.configs)),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gctx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	server.logger.Info("server stopped gracefully")
	return nil
}
