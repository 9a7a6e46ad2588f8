package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/fernandokenjii/desafio-database-relations/internal/health"
)

const (
	defaultReadHeaderTimeout = 5 * time.Second
	defaultShutdownTimeout   = 10 * time.Second
)

// NewRouter собирает chi-роутер со стандартным middleware-стеком,
// служебными маршрутами и маршрутами API.
func NewRouter(api *Handler, healthHandler *health.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/healthz", health.LivenessHandler)
	if healthHandler != nil {
		r.Get("/health", healthHandler.ServeHTTP)
		r.Get("/readyz", healthHandler.ReadinessHandler)
	} else {
		r.Get("/readyz", health.LivenessHandler)
	}
	r.Handle("/metrics", promhttp.Handler())

	if api != nil {
		api.Register(r)
	}

	return r
}

// Server оборачивает http.Server с graceful shutdown.
type Server struct {
	srv    *http.Server
	logger *log.Entry
}

// NewServer создаёт HTTP-сервер на заданном адресе.
func NewServer(addr string, handler http.Handler, logger *log.Entry) *Server {
	if logger == nil {
		logger = log.New().WithField("component", "http-server")
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: defaultReadHeaderTimeout,
		},
		logger: logger,
	}
}

// Run запускает сервер и блокируется до отмены ctx или фатальной ошибки listen.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.srv.Addr).Info("http server listening")
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down http server")
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
