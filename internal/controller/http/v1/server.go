package v1

import (
	"context"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kurochkinivan/member_uploader/internal/config"
)

type Server struct {
	httpServer *http.Server
}

func NewServer(cfg config.HTTP, uploads *UploadsHandler, events *EventsHandler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
			Handler:      NewRouter(uploads, events),
		},
	}
}

func NewRouter(uploads *UploadsHandler, events *EventsHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/uploads", func(r chi.Router) {
			r.Post("/", uploads.Upload)
			r.Get("/", uploads.GetJobs)
			r.Route("/{job_id}", func(r chi.Router) {
				r.Get("/", uploads.GetJob)
				r.Get("/rows", uploads.GetRows)
				r.Post("/cancel", uploads.Cancel)
				r.Get("/report", uploads.GetReport)
				r.Get("/events", events.Stream)
			})
		})
		r.Get("/verification/rate-limit", uploads.GetRateLimit)
	})

	return r
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
