// Package server собирает HTTP relay: маршруты, middleware и жизненный цикл.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/iudanet/devsync/internal/server/handlers"
	"github.com/iudanet/devsync/internal/server/middleware"
	"github.com/iudanet/devsync/internal/server/storage"
)

const readHeaderTimeout = 10 * time.Second

// Store хранилище relay
type Store interface {
	storage.RecordStorage
	handlers.Pinger
}

// Config параметры relay
type Config struct {
	Addr            string
	Version         string
	JWT             handlers.JWTConfig
	RateWindow      time.Duration
	ShutdownTimeout time.Duration
	RateLimit       int // 0 - без ограничения
}

// Server relay сервер
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	hub        *handlers.Hub
	limiter    *middleware.RateLimiter
	cfg        Config
}

// New создает relay поверх store
func New(logger *slog.Logger, cfg Config, store Store) *Server {
	hub := handlers.NewHub(logger)
	relay := handlers.NewRelay(logger, store, hub)
	syncHandler := handlers.NewSyncHandler(logger, relay, hub)
	healthHandler := handlers.NewHealthHandler(logger, store, cfg.Version)

	s := &Server{
		logger: logger,
		hub:    hub,
		cfg:    cfg,
	}

	var post http.Handler = http.HandlerFunc(syncHandler.HandlePost)
	if cfg.RateLimit > 0 {
		s.limiter = middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
		post = middleware.RateLimitMiddleware(logger, s.limiter)(post)
	}

	mux := http.NewServeMux()
	mux.Handle("POST /sync", post)
	mux.HandleFunc("GET /sync", syncHandler.ServeWS)
	mux.HandleFunc("GET /health", healthHandler.Health)

	// /health не требует токена
	routes := http.NewServeMux()
	routes.Handle("/", middleware.AuthMiddleware(logger, cfg.JWT)(mux))
	routes.Handle("GET /health", mux)

	s.httpServer = &http.Server{
		Addr: cfg.Addr,
		Handler: middleware.Chain(routes,
			middleware.RecoveryMiddleware(logger),
			middleware.LoggingWithSkip(logger, "/health"),
		),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s
}

// Handler возвращает корневой handler со всеми middleware
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run слушает cfg.Addr до отмены ctx, затем корректно завершает работу
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve обслуживает запросы на ln до отмены ctx
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.limiter != nil {
		limiterCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go s.limiter.Run(limiterCtx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Relay listening", slog.String("addr", ln.Addr().String()))
		errCh <- s.httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down relay", slog.Duration("timeout", s.cfg.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	// websocket соединения перехвачены и Shutdown их не ждет
	s.hub.CloseAll()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	<-errCh
	return nil
}
