package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/haein/redfish-exporter/internal/collector"
	"github.com/haein/redfish-exporter/internal/credentials"
	"github.com/haein/redfish-exporter/internal/middleware"
)

// NewRouter creates and configures the exporter router
func NewRouter(creds *credentials.Service, settings collector.Settings, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))

	healthHandler := NewHealthHandler()
	scrapeHandler := NewScrapeHandler(creds, settings, logger)

	r.Get("/", healthHandler.Root)
	r.Get("/health", healthHandler.Health)

	// The path parameter names the metric family the scrape is
	// published under.
	r.Get("/{module}", scrapeHandler.Scrape)

	return r
}
