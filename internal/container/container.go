package container

import (
	"context"
	"fmt"

	"marketintel/adapters/appstore"
	"marketintel/adapters/llm"
	"marketintel/adapters/llm/heuristic"
	"marketintel/app"
	"marketintel/internal"
	"marketintel/internal/analysis"
	"marketintel/internal/config"
	"marketintel/internal/errors"
	"marketintel/internal/report"
	"marketintel/ports"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Collaborators
	Searcher ports.AppSearcher
	Narrator ports.NarrativeGenerator
	Engine   *analysis.Engine

	// Services
	Ingestion *app.IngestionService
	Insights  *app.InsightService
	Pipeline  *app.Pipeline

	Reports *report.FileStore
}

// New builds the container from configuration. Missing credentials do not
// fail construction; the affected collaborator runs degraded.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: internal.NewConfiguredLogger(cfg.Logging.Level, cfg.Logging.Format),
	}

	if err := c.initEngine(); err != nil {
		return nil, err
	}
	c.Searcher = appstore.NewClient(appstore.FromAppConfig(cfg.AppStore), c.Logger)
	if cfg.AppStore.APIKey == "" {
		c.Logger.Warn("[Container] RAPIDAPI_KEY is not set, live iOS fetches will report a missing key")
	}

	insightOpts := c.initNarrator(ctx)

	c.Ingestion = app.NewIngestionService(c.Searcher, c.Logger)
	c.Insights = app.NewInsightService(c.Engine, c.Logger, insightOpts...)
	c.Pipeline = app.NewPipeline(c.Ingestion, c.Insights, c.Logger)

	store, err := report.NewFileStore(cfg.Reports.OutputDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize report store")
	}
	c.Reports = store

	c.Logger.Info("[Container] initialized (narrative=%s, confidence=%.2f)", c.narratorName(), c.Engine.ConfidenceLevel())
	return c, nil
}

func (c *Container) initEngine() error {
	baselines, err := analysis.LoadBaselines(c.Config.Stats.BaselinesFile)
	if err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, errors.Wrap(err, "failed to load STATS_BASELINES_FILE"))
	}
	c.Engine = analysis.NewEngine(
		analysis.WithConfidence(c.Config.Stats.ConfidenceLevel),
		analysis.WithBaselines(baselines),
		analysis.WithLogger(c.Logger),
	)
	return nil
}

func (c *Container) initNarrator(ctx context.Context) []app.InsightOption {
	if c.Config.Narrative.Provider == config.ProviderHeuristic {
		c.Narrator = heuristic.NewNarrator()
		return []app.InsightOption{app.WithNarrator(c.Narrator)}
	}

	narrator, err := llm.NewFromConfig(ctx, c.Config.Narrative, c.Logger)
	if err != nil {
		c.Logger.Warn("[Container] narrative provider %s unavailable, running degraded: %v", c.Config.Narrative.Provider, err)
		return []app.InsightOption{app.WithNarratorUnavailable(err.Error())}
	}
	c.Narrator = narrator
	return []app.InsightOption{app.WithNarrator(narrator)}
}

func (c *Container) narratorName() string {
	if c.Narrator == nil {
		return "degraded"
	}
	return c.Narrator.Name()
}

// Close flushes the logger
func (c *Container) Close() error {
	if c.Logger != nil {
		_ = c.Logger.Sync()
	}
	return nil
}
