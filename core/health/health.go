// Package health serves the HTTP liveness endpoints used by the hosting
// platform to keep the bot process up.
package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/m3rciful/hallbot/core/buildinfo"
	"github.com/m3rciful/hallbot/core/logger"
)

const shutdownTimeout = 5 * time.Second

// PendingFunc reports the number of unanswered questions.
type PendingFunc func(ctx context.Context) (int, error)

// Options configure the liveness server.
type Options struct {
	Listen  string
	Banner  string
	Pending PendingFunc
}

type status struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Pending *int   `json:"pending,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Router builds the gin engine: GET / answers with the banner text and
// GET /healthz with a JSON status document.
func Router(opts Options) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	banner := opts.Banner
	if banner == "" {
		banner = "OK"
	}
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, banner)
	})
	router.HEAD("/", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/healthz", func(c *gin.Context) {
		st := status{Status: "ok", Version: buildinfo.Version}
		if opts.Pending != nil {
			n, err := opts.Pending(c.Request.Context())
			if err != nil {
				st.Status = "degraded"
				st.Error = err.Error()
				c.JSON(http.StatusServiceUnavailable, st)
				return
			}
			st.Pending = &n
		}
		c.JSON(http.StatusOK, st)
	})
	return router
}

// Server is a running liveness endpoint.
type Server struct {
	srv  *http.Server
	ln   net.Listener
	done chan error
}

// Start listens on opts.Listen and serves in the background.
func Start(ctx context.Context, opts Options) (*Server, error) {
	if opts.Listen == "" {
		return nil, fmt.Errorf("health: listen address is required")
	}
	ln, err := net.Listen("tcp", opts.Listen)
	if err != nil {
		return nil, fmt.Errorf("health: listen %s: %w", opts.Listen, err)
	}
	s := &Server{
		srv:  &http.Server{Handler: Router(opts), ReadHeaderTimeout: 5 * time.Second},
		ln:   ln,
		done: make(chan error, 1),
	}
	go func() {
		err := s.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()
	logger.Info(ctx, "health", "health.start",
		slog.String("status", "ok"),
		slog.String("listen", ln.Addr().String()),
	)
	return s, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string { return s.ln.Addr().String() }

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	err := errors.Join(s.srv.Shutdown(ctx), <-s.done)
	logger.Info(ctx, "health", "health.stop", slog.String("status", logger.Status(err)))
	return err
}
