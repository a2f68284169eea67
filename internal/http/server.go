package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/yungbote/stoplight-backend/internal/config"
)

type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
}

func NewServer(cfg config.HTTPConfig, rc RouterConfig) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              cfg.Addr,
			Handler:           NewRouter(rc),
			ReadHeaderTimeout: cfg.ReadHeaderTimeout.Duration,
			IdleTimeout:       cfg.IdleTimeout.Duration,
		},
		shutdownTimeout: cfg.ShutdownTimeout.Duration,
	}
}

func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Run serves until ctx ends, then drains in-flight requests for up to the
// configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
