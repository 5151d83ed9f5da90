// internal/server/server.go

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"fitpair/internal/config"
	"fitpair/internal/server/handlers"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// Deps collects everything the HTTP surface needs.
type Deps struct {
	Profiles handlers.ProfileStore
	Reports  handlers.ReportIntake
	Matches  handlers.MatchFinder
	Sessions handlers.SessionManager
	NATS     *nats.Conn
	Log      *zap.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg config.ServerConfig, streamCfg config.StreamConfig, deps Deps) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(deps.Log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Create handler dependencies
	profileHandler := handlers.NewProfileHandler(deps.Profiles)
	reportHandler := handlers.NewReportHandler(deps.Reports)
	matchHandler := handlers.NewMatchHandler(deps.Matches)
	sessionHandler := handlers.NewSessionHandler(deps.Sessions)

	stream := handlers.DefaultStreamConfig()
	stream.MaxFixesPerSecond = streamCfg.MaxFixesPerSecond
	stream.FixBurst = streamCfg.FixBurst

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		r.Route("/v1", func(r chi.Router) {
			// Profiles API
			r.Route("/profiles", func(r chi.Router) {
				r.Get("/{id}", profileHandler.GetProfile)
				r.Put("/{id}", profileHandler.PutProfile)
			})

			// Live location reports API
			r.Route("/reports", func(r chi.Router) {
				r.Put("/{id}", reportHandler.PutReport)
				r.Delete("/{id}", reportHandler.DeleteReport)
			})

			// Matching API
			r.Get("/matches", matchHandler.GetMatches)

			// Workout sessions API
			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", sessionHandler.StartSession)
				r.Delete("/{id}", sessionHandler.EndSession)
				r.Post("/{id}/pause", sessionHandler.PauseSession)
				r.Post("/{id}/resume", sessionHandler.ResumeSession)
				r.Get("/{id}/state", sessionHandler.GetSessionState)
				r.Post("/{id}/positions", sessionHandler.PostPosition)
			})
		})
	})

	// WebSocket endpoint for the live position stream
	router.Get("/ws/sessions/{id}", handlers.SessionStreamHandler(deps.Sessions, deps.NATS, stream, deps.Log))

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// requestLogger logs one line per request.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
