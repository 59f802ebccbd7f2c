// Package server exposes editor sessions over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/user/hemostyle/pkg/catalog"
	"github.com/user/hemostyle/pkg/imagesource"
	"github.com/user/hemostyle/pkg/orchestrator"
	"github.com/user/hemostyle/pkg/pipeline"
	"github.com/user/hemostyle/pkg/ports"
	"github.com/user/hemostyle/pkg/session"
)

// Pipeline is the part of the orchestrator the server drives.
type Pipeline interface {
	DecodeDataURI(uri string) (imagesource.RasterImage, error)
	Style(ctx context.Context, src imagesource.RasterImage, style catalog.StylePreset, mode pipeline.TransformMode) (pipeline.TransformResult, error)
	Render(ctx context.Context, in pipeline.ComposeInput, format ports.ImageFormat) (orchestrator.RenderOutput, error)
}

// Options configures a Server.
type Options struct {
	Addr string
	// Mode is used when a style request does not name one.
	Mode pipeline.TransformMode
	// Overlay supplies defaults for fields omitted from render requests.
	Overlay     pipeline.TextOverlay
	AspectRatio catalog.AspectRatio
	Format      ports.ImageFormat
	// MaxBodyBytes limits request bodies; uploads arrive as data URIs.
	MaxBodyBytes int64
	// SessionTTL prunes sessions idle for longer; zero disables pruning.
	SessionTTL time.Duration
}

// DefaultOptions returns the editor defaults.
func DefaultOptions() Options {
	return Options{
		Addr:         ":8080",
		Mode:         pipeline.ModeLocal,
		Overlay:      pipeline.DefaultTextOverlay(),
		AspectRatio:  catalog.Aspect16x9,
		Format:       ports.FormatPNG,
		MaxBodyBytes: 32 << 20,
		SessionTTL:   time.Hour,
	}
}

// Server serves the editor API.
type Server struct {
	pipeline Pipeline
	sessions *session.Store
	logger   ports.Logger
	opts     Options
	router   chi.Router
}

// New creates a Server.
func New(p Pipeline, store *session.Store, logger ports.Logger, opts Options) *Server {
	s := &Server{
		pipeline: p,
		sessions: store,
		logger:   logger.WithComponent("server"),
		opts:     opts,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		requestLogger(s.logger),
	)
	if s.opts.MaxBodyBytes > 0 {
		r.Use(middleware.RequestSize(s.opts.MaxBodyBytes))
	}

	r.Get("/v1/healthz", s.health)
	r.Get("/v1/styles", s.listStyles)
	r.Get("/v1/aspect-ratios", s.listAspectRatios)
	r.Get("/v1/titles", s.listTitles)

	r.Route("/v1/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.deleteSession)
			r.Post("/image", s.uploadImage)
			r.Post("/style", s.applyStyle)
			r.Post("/retry", s.retry)
			r.Post("/render", s.render)
			r.Get("/canvas", s.download)
			r.Post("/reset", s.reset)
		})
	})

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if s.opts.SessionTTL > 0 {
		go s.pruneLoop(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening on %s", s.opts.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("Server stopped")
	return nil
}

func (s *Server) pruneLoop(ctx context.Context) {
	ticker := time.NewTicker(s.opts.SessionTTL / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.Prune(s.opts.SessionTTL); n > 0 {
				s.logger.Debug("Pruned %d idle sessions", n)
			}
		}
	}
}
