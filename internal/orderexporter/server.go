package orderexporter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"order-exporter/internal/orderexporter/handlers"
	"order-exporter/internal/orderexporter/middleware"
	"order-exporter/pkg/logging"
)

type Config struct {
	ServerAddress   string
	ShutdownTimeout time.Duration
}

type Service interface {
	handlers.CaptureService
	handlers.ProgressService
	handlers.ExportService
	handlers.ClearService
	handlers.NextPageService
}

type Server struct {
	logger     *logging.ZapLogger
	httpServer *http.Server
	cfg        Config
}

func NewServer(cfg Config, service Service, metricsHandler http.Handler, logger *logging.ZapLogger) *Server {
	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           createMux(service, metricsHandler, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{
		cfg:        cfg,
		logger:     logger,
		httpServer: srv,
	}
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Run() error {
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server ListenAndServe failed: %w", err)
	}
	return nil
}

func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

func createMux(service Service, metricsHandler http.Handler, logger *logging.ZapLogger) *chi.Mux {
	captureHandler := handlers.NewCaptureHandler(service, logger)
	progressHandler := handlers.NewProgressHandler(service, logger)
	exportHandler := handlers.NewExportHandler(service, logger)
	clearHandler := handlers.NewClearHandler(service, logger)
	nextPageHandler := handlers.NewNextPageHandler(service, logger)

	router := chi.NewRouter()
	router.Use(
		middleware.NewLoggerContext().CreateHandler,
		middleware.NewPanicRecover(logger).CreateHandler,
	)

	router.Route("/api", func(router chi.Router) {
		router.Post("/capture", captureHandler.ServeHTTP)
		router.Get("/progress", progressHandler.ServeHTTP)
		router.Get("/export/{format}", exportHandler.ServeHTTP)
		router.Delete("/state", clearHandler.ServeHTTP)
		router.Post("/next-page", nextPageHandler.ServeHTTP)
	})
	if metricsHandler != nil {
		router.Method(http.MethodGet, "/metrics", metricsHandler)
	}
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return router
}
