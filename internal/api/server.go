// Package api serves the persisted catalog and run history over HTTP. It
// reads from the store only and never runs a sync.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/dish-catalog/internal/store"
)

const (
	requestTimeout    = 15 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// Server wraps the chi router and the http.Server.
type Server struct {
	httpServer *http.Server
	log        *zap.Logger
}

// NewServer builds the router and binds it to port.
func NewServer(st store.Store, port int, allowedOrigins []string) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           NewRouter(st, allowedOrigins),
			ReadHeaderTimeout: readHeaderTimeout,
		},
		log: zap.L().With(zap.String("component", "api")),
	}
}

// NewRouter returns the HTTP handler for the API.
func NewRouter(st store.Store, allowedOrigins []string) http.Handler {
	log := zap.L().With(zap.String("component", "api"))
	h := &handler{store: st, log: log}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(log))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", h.health)
	r.Route("/catalog", func(r chi.Router) {
		r.Get("/", h.listDishes)
		r.Get("/{key}", h.getDish)
	})
	r.Route("/runs", func(r chi.Router) {
		r.Get("/", h.listRuns)
		r.Get("/{id}", h.getRun)
	})
	return r
}

// ListenAndServe blocks until the server stops. Cancelling ctx shuts it
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Warn("server shutdown", zap.Error(err))
		}
	}()

	s.log.Info("starting server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimw.GetReqID(r.Context())),
			)
		})
	}
}
