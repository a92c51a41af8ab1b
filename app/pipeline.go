package app

import (
	"context"
	"time"

	"marketintel/domain/apps"
	"marketintel/domain/insights"
	"marketintel/internal"
	"marketintel/internal/session"
)

// StageTiming records how long a pipeline stage took
type StageTiming struct {
	Stage    string        `json:"stage"`
	Duration time.Duration `json:"duration"`
}

// AnalysisResult is the output of joining and analysing a session
type AnalysisResult struct {
	Combined *apps.Frame      `json:"-"`
	Bundle   *insights.Bundle `json:"insights"`
	Stages   []StageTiming    `json:"stages"`
}

// Pipeline runs the join and insight stages in order, the way a combine
// request does.
type Pipeline struct {
	ingestion *IngestionService
	insights  *InsightService
	logger    *internal.Logger
}

// NewPipeline creates a pipeline over the two services
func NewPipeline(ingestion *IngestionService, insightSvc *InsightService, logger *internal.Logger) *Pipeline {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Pipeline{ingestion: ingestion, insights: insightSvc, logger: logger}
}

// Ingestion exposes the ingestion service
func (p *Pipeline) Ingestion() *IngestionService { return p.ingestion }

// Insights exposes the insight service
func (p *Pipeline) Insights() *InsightService { return p.insights }

// Analyze combines the session's tables and generates insights from the result
func (p *Pipeline) Analyze(ctx context.Context, sess *session.Session) (*AnalysisResult, error) {
	result := &AnalysisResult{}

	err := p.stage(result, "combine", func() error {
		frame, err := p.ingestion.Combine(sess)
		result.Combined = frame
		return err
	})
	if err != nil {
		return nil, err
	}

	err = p.stage(result, "insights", func() error {
		bundle, err := p.insights.Generate(ctx, sess)
		result.Bundle = bundle
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Pipeline) stage(result *AnalysisResult, name string, run func() error) error {
	start := time.Now()
	err := run()
	elapsed := time.Since(start)
	result.Stages = append(result.Stages, StageTiming{Stage: name, Duration: elapsed})
	if err != nil {
		p.logger.Warn("[Pipeline] stage %s failed after %v: %v", name, elapsed, err)
		return err
	}
	p.logger.Debug("[Pipeline] stage %s completed in %v", name, elapsed)
	return nil
}
