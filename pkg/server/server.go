package server

import (
	"context"
	"net/http"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/burnsub/burnsub/pkg/config"
	"github.com/burnsub/burnsub/pkg/logger"
)

// Server wraps the HTTP server serving the captioning API
type Server struct {
	httpServer *http.Server
}

// New builds the router and HTTP server around the given handlers
func New(cfg config.ServerConfig, h *Handlers) *Server {
	router := mux.NewRouter()
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	router.HandleFunc("/upload", h.Upload).Methods(http.MethodPost)
	router.HandleFunc("/generate-captions", h.GenerateCaptions).Methods(http.MethodPost)
	router.HandleFunc("/generate-captioned-video", h.GenerateCaptionedVideo).Methods(http.MethodPost)
	router.HandleFunc("/download", h.Download).Methods(http.MethodGet)

	router.Use(requestLogger)

	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(cfg.CORSOrigins),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		gorillahandlers.AllowedHeaders([]string{
			"Content-Type", headerSessionID, headerVideoFilename, headerSubtitleFilename,
		}),
		gorillahandlers.AllowCredentials(),
	)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      cors(router),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
}

// Start serves requests until Shutdown is called
func (s *Server) Start() error {
	logger.WithComponent("server").Info().Str("addr", s.httpServer.Addr).Msg("HTTP server listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// requestLogger attaches a per-request logger and records each request
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.WithComponent("http").
			WithField("method", r.Method).
			WithField("path", r.URL.Path)

		log.Debug().Msg("Handling request")
		next.ServeHTTP(w, r.WithContext(logger.WithLogger(r.Context(), log)))
	})
}
