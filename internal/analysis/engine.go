package analysis

import (
	"math"
	"strconv"

	"github.com/montanaflynn/stats"

	"marketintel/domain/apps"
	"marketintel/domain/insights"
	"marketintel/internal"
)

// MinValidValues is the smallest sample a metric is reported for
const MinValidValues = 2

// DefaultConfidenceLevel is used when none is configured
const DefaultConfidenceLevel = 0.95

// Engine computes per-column summary statistics over a combined frame
type Engine struct {
	confidence float64
	baselines  Baselines
	dist       *Distributions
	logger     *internal.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithConfidence sets the confidence level of the reported interval
func WithConfidence(level float64) Option {
	return func(e *Engine) {
		if level > 0 && level < 1 {
			e.confidence = level
		}
	}
}

// WithBaselines sets the hypothesised means used by the t-test and effect size
func WithBaselines(b Baselines) Option {
	return func(e *Engine) { e.baselines = b }
}

// WithLogger sets the engine's logger
func WithLogger(l *internal.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates a statistics engine
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		confidence: DefaultConfidenceLevel,
		dist:       NewDistributions(),
		logger:     internal.DefaultLogger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ConfidenceLevel returns the configured confidence level
func (e *Engine) ConfidenceLevel() float64 {
	return e.confidence
}

// Compute returns one row per numeric column with at least two valid
// values, in column order. Ineligible columns are omitted.
func (e *Engine) Compute(frame *apps.Frame) []insights.StatsRow {
	rows := make([]insights.StatsRow, 0)
	for _, col := range frame.NumericColumns() {
		row, ok := e.Summarize(col.Name, col.Valid())
		if !ok {
			e.logger.Debug("[StatsEngine] skipping %s: fewer than %d valid values", col.Name, MinValidValues)
			continue
		}
		rows = append(rows, row)
	}
	e.logger.Info("[StatsEngine] computed %d metric rows from %d records", len(rows), frame.Len())
	return rows
}

// Summarize computes the statistics row for one sample. ok is false when
// the sample is too small.
func (e *Engine) Summarize(metric string, values []float64) (row insights.StatsRow, ok bool) {
	n := len(values)
	if n < MinValidValues {
		return insights.StatsRow{}, false
	}

	mean, err := stats.Mean(values)
	if err != nil {
		return insights.StatsRow{}, false
	}
	std, err := stats.StandardDeviationSample(values)
	if err != nil {
		return insights.StatsRow{}, false
	}
	baseline := e.baselines.For(metric)

	var low, high, p, effect float64
	if constant(values) {
		// a constant sample has no spread: the interval collapses and the
		// test is decided by whether the constant is the baseline
		mean, std = values[0], 0
		low, high = mean, mean
		p = 0
		if mean == baseline {
			p = 1
		}
	} else {
		low, high = e.dist.ConfidenceIntervalMean(mean, std, n, e.confidence)
		p = e.dist.TTestPValue(e.dist.OneSampleT(mean, std, n, baseline), n-1)
		effect = (mean - baseline) / std
	}

	return insights.StatsRow{
		Metric:     metric,
		Mean:       Round(mean, 2),
		StdDev:     Round(std, 2),
		CI:         insights.FormatCI(low, high),
		PValue:     Round(p, 4),
		EffectSize: Round(effect, 3),
	}, true
}

// constant reports whether every value equals the first. Small but non-zero
// spreads are real variation and still go through the t-test.
func constant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

// Round rounds v to the given number of decimals the same way fmt's %.Nf does
func Round(v float64, places int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}
	if r == 0 {
		return 0
	}
	return r
}
