package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/poi-xref/internal/embeddings"
	"github.com/poi-xref/internal/web/handlers"
	"github.com/poi-xref/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	config     *Config
	encoder    embeddings.Encoder
	logger     zerolog.Logger
	httpServer *http.Server
	router     *mux.Router
}

// NewServer creates a new web server instance. A nil encoder disables
// category similarity for every request.
func NewServer(config *Config, encoder embeddings.Encoder, logger zerolog.Logger) (*Server, error) {
	if err := config.Match.Validate(); err != nil {
		return nil, fmt.Errorf("failed to configure server: %w", err)
	}

	server := &Server{
		config:  config,
		encoder: encoder,
		logger:  logger.With().Str("component", "web").Logger(),
	}

	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port),
		Handler:      server.router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return server, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Addr is the listen address.
func (s *Server) Addr() string { return s.httpServer.Addr }

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	// Convert config for handlers (to avoid import cycle)
	handlerConfig := &handlers.Config{Match: s.config.Match}
	handlerConfig.Features.ExportEnabled = s.config.Features.ExportEnabled
	handlerConfig.Features.MaxRecords = s.config.Features.MaxRecords

	apiHandler := &handlers.APIHandler{Config: handlerConfig, Encoder: s.encoder, Started: time.Now()}
	matchHandler := &handlers.MatchHandler{Config: handlerConfig, Encoder: s.encoder}
	normalizeHandler := &handlers.NormalizeHandler{Config: handlerConfig}
	scoreHandler := &handlers.ScoreHandler{Config: handlerConfig}
	exportHandler := &handlers.ExportHandler{Config: handlerConfig, Encoder: s.encoder}

	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", apiHandler.Health).Methods("GET")
	api.HandleFunc("/match", matchHandler.Match).Methods("POST", "OPTIONS")
	api.HandleFunc("/normalize", normalizeHandler.Normalize).Methods("POST", "OPTIONS")
	api.HandleFunc("/score", scoreHandler.Score).Methods("POST", "OPTIONS")

	if s.config.Features.ExportEnabled {
		api.HandleFunc("/export", exportHandler.ExportData).Methods("POST", "OPTIONS")
	}

	s.router.Use(middleware.RequestLogging(s.logger))
	s.router.Use(middleware.CORS(s.config.Server.AllowedOrigin))

	if s.config.Auth.Enabled {
		api.Use(middleware.Authentication(s.config.Auth.APIKey))
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("starting server")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down server")

	timeout := s.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.logger.Info().Msg("server stopped")
	return nil
}
