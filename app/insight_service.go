package app

import (
	"context"
	"fmt"
	"time"

	"marketintel/adapters/llm/heuristic"
	"marketintel/domain/insights"
	"marketintel/internal"
	"marketintel/internal/analysis"
	"marketintel/internal/errors"
	"marketintel/internal/session"
	"marketintel/ports"
)

// InsightService computes statistics over the combined dataset and asks a
// narrative generator for the executive summary.
type InsightService struct {
	engine      *analysis.Engine
	narrator    ports.NarrativeGenerator
	fallback    ports.NarrativeGenerator
	unavailable string
	logger      *internal.Logger
	now         func() time.Time
}

// InsightOption configures an InsightService
type InsightOption func(*InsightService)

// WithNarrator sets the primary narrative generator
func WithNarrator(n ports.NarrativeGenerator) InsightOption {
	return func(s *InsightService) { s.narrator = n }
}

// WithNarratorUnavailable records why no primary generator could be built.
// Every bundle is then produced in degraded mode.
func WithNarratorUnavailable(reason string) InsightOption {
	return func(s *InsightService) {
		s.narrator = nil
		s.unavailable = reason
	}
}

// WithFallback replaces the heuristic fallback generator
func WithFallback(n ports.NarrativeGenerator) InsightOption {
	return func(s *InsightService) { s.fallback = n }
}

// WithClock overrides the bundle timestamp source
func WithClock(now func() time.Time) InsightOption {
	return func(s *InsightService) { s.now = now }
}

// NewInsightService creates an insight service
func NewInsightService(engine *analysis.Engine, logger *internal.Logger, opts ...InsightOption) *InsightService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	s := &InsightService{
		engine:   engine,
		fallback: heuristic.NewNarrator(),
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.narrator == nil && s.unavailable == "" {
		s.unavailable = "no narrative provider configured"
	}
	return s
}

// Generate builds the insight bundle for the session's combined dataset
// and stores it on the session.
func (s *InsightService) Generate(ctx context.Context, sess *session.Session) (*insights.Bundle, error) {
	frame, err := sess.RequireCombined()
	if err != nil {
		return nil, errors.NoData("No combined dataset. Combine Android and iOS data first.", err)
	}

	rows := s.engine.Compute(frame)
	bundle := s.Assemble(ctx, rows)
	sess.SetInsights(bundle)
	return bundle, nil
}

// Assemble pairs a statistics table with its narrative. It never fails:
// when the primary generator is unavailable the fallback narrative is used
// behind a degraded-mode banner.
func (s *InsightService) Assemble(ctx context.Context, rows []insights.StatsRow) *insights.Bundle {
	now := s.now().UTC()
	bundle := &insights.Bundle{
		StatsTable:  rows,
		GeneratedAt: &now,
	}

	reason := s.unavailable
	if s.narrator != nil {
		summary, err := s.narrator.Summarize(ctx, rows)
		if err == nil {
			bundle.Summary = summary
			bundle.NarrativeSource = s.narrator.Name()
			return bundle
		}
		s.logger.Warn("[InsightService] narrative generation failed, using fallback: %v", err)
		reason = err.Error()
	}

	summary, err := s.fallback.Summarize(ctx, rows)
	if err != nil {
		s.logger.Error("[InsightService] fallback narrative failed: %v", err)
		summary = ""
	}
	bundle.Summary = DegradedBanner(reason) + summary
	bundle.NarrativeSource = s.fallback.Name()
	bundle.Degraded = true
	return bundle
}

// DegradedBanner prefixes summaries produced without the configured model
func DegradedBanner(reason string) string {
	return fmt.Sprintf("> [Degraded mode: AI narrative unavailable (%s). Showing a rule-based summary.]\n\n", reason)
}
