package api

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/haein/redfish-exporter/internal/collector"
	"github.com/haein/redfish-exporter/internal/credentials"
)

// metricNamePattern is the Prometheus metric name grammar; the family
// name comes from the request path and must be validated before it
// reaches a descriptor.
var metricNamePattern = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`)

// ScrapeHandler serves one poll cycle per request.
type ScrapeHandler struct {
	creds    *credentials.Service
	settings collector.Settings
	logger   *slog.Logger
}

// NewScrapeHandler creates a new scrape handler
func NewScrapeHandler(creds *credentials.Service, settings collector.Settings, logger *slog.Logger) *ScrapeHandler {
	return &ScrapeHandler{
		creds:    creds,
		settings: settings,
		logger:   logger,
	}
}

// Scrape handles GET /{module}?target=...&code=...
//
// The response is always a metrics exposition body: a target that
// cannot be probed, logged into, or walked still yields whatever
// samples were gathered plus the scrape duration. Only an unresolvable
// credential code is a request-level error.
func (h *ScrapeHandler) Scrape(w http.ResponseWriter, r *http.Request) {
	module := chi.URLParam(r, "module")
	target := r.URL.Query().Get("target")
	code := r.URL.Query().Get("code")

	if !metricNamePattern.MatchString(module) {
		http.Error(w, "invalid metric family name", http.StatusBadRequest)
		return
	}
	if target == "" {
		http.Error(w, "target parameter is required", http.StatusBadRequest)
		return
	}

	profile, err := h.creds.Resolve(code)
	if err != nil {
		if !errors.Is(err, credentials.ErrNotFound) {
			h.logger.Error("credential lookup failed", "code", code, "error", err)
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("Authentication credentials get failed"))
		return
	}

	tgt := collector.NewTarget(target, profile.Username, profile.Password, code)
	col := collector.New(module, tgt, h.settings, h.logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(col)

	promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	}).ServeHTTP(w, r)
}
