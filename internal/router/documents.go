package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BerylCAtieno/financial-analyzer/internal/handlers"
	"github.com/BerylCAtieno/financial-analyzer/internal/middleware"
	"github.com/BerylCAtieno/financial-analyzer/internal/services"
	"github.com/BerylCAtieno/financial-analyzer/internal/utils"
)

type Options struct {
	MaxFileSize        int64
	RenderHTML         bool
	CORSAllowedOrigins []string
	SessionStore       sessions.Store

	// Metrics is served on /metrics when set.
	Metrics prometheus.Gatherer
}

func NewRouter(docService services.DocumentService, opts Options, logger *utils.Logger) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))

	docHandler := handlers.NewDocumentHandler(docService, opts.MaxFileSize, logger)
	uiHandler := handlers.NewUIHandler(docService, opts.SessionStore, opts.RenderHTML, opts.MaxFileSize, logger)

	// Web UI
	r.HandleFunc("/", uiHandler.Index).Methods(http.MethodGet)
	r.HandleFunc("/upload", uiHandler.Upload).Methods(http.MethodPost)
	r.HandleFunc("/analyze", uiHandler.Analyze).Methods(http.MethodPost)
	r.HandleFunc("/compare", uiHandler.Compare).Methods(http.MethodPost)
	r.HandleFunc("/reset", uiHandler.Reset).Methods(http.MethodPost)

	if opts.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Metrics, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	// JSON API
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", docHandler.Health).Methods(http.MethodGet)
	api.HandleFunc("/analysis-types", docHandler.AnalysisTypes).Methods(http.MethodGet)

	api.HandleFunc("/documents/pages", docHandler.CountPages).Methods(http.MethodPost)
	api.HandleFunc("/documents/analyze", docHandler.AnalyzeDocument).Methods(http.MethodPost)
	api.HandleFunc("/documents/compare", docHandler.CompareDocuments).Methods(http.MethodPost)

	api.HandleFunc("/analyses", docHandler.ListAnalyses).Methods(http.MethodGet)
	api.HandleFunc("/analyses/{id}", docHandler.GetAnalysis).Methods(http.MethodGet)

	// CORS wraps the router so preflight requests never reach route matching
	return middleware.CORS(opts.CORSAllowedOrigins)(r)
}
