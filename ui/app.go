// Package ui serves the analyst session over HTTP.
package ui

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/semaphore"

	"marketintel/app"
	"marketintel/internal"
	"marketintel/internal/report"
	"marketintel/internal/session"
	"marketintel/ui/middleware"
)

//go:embed templates/*
var embeddedFiles embed.FS

// maxUploadBytes bounds the multipart form held in memory
const maxUploadBytes = 32 << 20

// App represents the UI application. It owns one analyst session.
type App struct {
	router    *chi.Mux
	pipeline  *app.Pipeline
	reports   *report.FileStore
	templates *template.Template
	logger    *internal.Logger

	sem     *semaphore.Weighted
	session *session.Session
}

// Config holds UI application configuration
type Config struct {
	Port string
}

// NewApp creates a new UI application
func NewApp(pipeline *app.Pipeline, reports *report.FileStore, logger *internal.Logger) (*App, error) {
	if pipeline == nil {
		return nil, fmt.Errorf("pipeline cannot be nil")
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}

	templates, err := template.New("").ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	a := &App{
		router:    chi.NewRouter(),
		pipeline:  pipeline,
		reports:   reports,
		templates: templates,
		logger:    logger,
		sem:       semaphore.NewWeighted(1),
		session:   session.New(),
	}

	a.setupMiddleware()
	a.setupRoutes()

	return a, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(chimw.Logger)
	a.router.Use(chimw.Recoverer)
	a.router.Use(middleware.Serialize(a.sem))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)

	a.router.Route("/api", func(r chi.Router) {
		r.Post("/android", a.handleAndroidUpload)
		r.Post("/ios/fetch", a.handleIOSFetch)
		r.Post("/combine", a.handleCombine)
		r.Post("/reset", a.handleReset)

		r.Get("/session", a.handleSession)
		r.Get("/dataset", a.handleDataset)
		r.Get("/dataset/export", a.handleDatasetExport)
		r.Get("/insights", a.handleInsights)
		r.Get("/report", a.handleReport)
	})
}

// Handler exposes the router, mainly for tests
func (a *App) Handler() http.Handler {
	return a.router
}

// Start serves on the given port until ctx is cancelled
func (a *App) Start(ctx context.Context, config Config) error {
	port := config.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("[UI] listening on :%s", port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		a.logger.Info("[UI] shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// Template helpers
func (a *App) renderTemplate(w http.ResponseWriter, templateName string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.templates.ExecuteTemplate(w, templateName, data); err != nil {
		a.logger.Error("[UI] template error: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}
