package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketintel/domain/apps"
	"marketintel/domain/insights"
	"marketintel/internal"
)

func numbers(vals ...float64) []apps.Optional[float64] {
	out := make([]apps.Optional[float64], len(vals))
	for i, v := range vals {
		out[i] = apps.Some(v)
	}
	return out
}

func newTestEngine(opts ...Option) *Engine {
	return NewEngine(append([]Option{WithLogger(internal.NewNopLogger())}, opts...)...)
}

func TestSummarize_KnownSample(t *testing.T) {
	row, ok := newTestEngine().Summarize("metric", []float64{1, 2, 3, 4, 5})
	require.True(t, ok)

	assert.Equal(t, 3.0, row.Mean)
	assert.Equal(t, 1.58, row.StdDev)
	assert.Equal(t, "[1.04, 4.96]", row.CI)
	assert.InDelta(t, 0.0132, row.PValue, 0.0002)
	assert.Equal(t, 1.897, row.EffectSize)
}

func TestSummarize_TwoValues(t *testing.T) {
	row, ok := newTestEngine().Summarize("ios_rating", []float64{4.5, 3.5})
	require.True(t, ok)

	assert.Equal(t, 4.0, row.Mean)
	assert.Equal(t, 0.71, row.StdDev)
	assert.Equal(t, "[-2.35, 10.35]", row.CI)
}

func TestSummarize_TooSmall(t *testing.T) {
	_, ok := newTestEngine().Summarize("m", []float64{4.2})
	assert.False(t, ok)
	_, ok = newTestEngine().Summarize("m", nil)
	assert.False(t, ok)
}

func TestSummarize_ZeroVariance(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		wantP  float64
	}{
		{"constant non-zero", []float64{0.1, 0.1, 0.1}, 0},
		{"constant equal to baseline", []float64{0, 0, 0, 0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row, ok := newTestEngine().Summarize("m", tt.values)
			require.True(t, ok)

			assert.Equal(t, 0.0, row.EffectSize)
			assert.Equal(t, 0.0, row.StdDev)
			assert.Equal(t, tt.wantP, row.PValue)

			low, high, err := insights.ParseCI(row.CI)
			require.NoError(t, err)
			assert.Equal(t, low, high)
		})
	}
}

func TestSummarize_SmallMagnitudeSpread(t *testing.T) {
	row, ok := newTestEngine().Summarize("m", []float64{0, 1e-12, 2e-12})
	require.True(t, ok)

	// std and mean both round to zero but the spread is not treated as absent
	assert.InDelta(t, 1.0, row.EffectSize, 1e-9)
	assert.Less(t, row.PValue, 1.0)
	assert.Greater(t, row.PValue, 0.0)
}

func TestCompute_ColumnEligibility(t *testing.T) {
	frame := apps.NewFrame(
		apps.TextColumn("app_name", []string{"a", "b", "c"}),
		apps.NumericColumn("android_rating", numbers(4.1, 4.3, 3.9)),
		apps.NumericColumn("android_installs", []apps.Optional[float64]{apps.Some(1000.0), apps.None[float64](), apps.None[float64]()}),
		apps.NumericColumn("ios_price", []apps.Optional[float64]{apps.Some(0.0), apps.None[float64](), apps.Some(2.99)}),
	)

	rows := newTestEngine().Compute(frame)

	require.Len(t, rows, 2)
	assert.Equal(t, "android_rating", rows[0].Metric)
	assert.Equal(t, "ios_price", rows[1].Metric)
}

func TestCompute_EmptyFrame(t *testing.T) {
	rows := newTestEngine().Compute(apps.NewFrame())
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestCompute_IntervalContainsMean(t *testing.T) {
	samples := [][]float64{
		{4.1, 4.3, 3.9, 4.7, 4.4},
		{0, 0, 0.99, 1.99, 4.99, 0},
		{12, 15000, 2300000, 78, 91},
		{-3, 3},
	}

	engine := newTestEngine()
	for _, s := range samples {
		row, ok := engine.Summarize("m", s)
		require.True(t, ok)
		low, high, err := insights.ParseCI(row.CI)
		require.NoError(t, err)
		assert.LessOrEqual(t, low, row.Mean+0.005, "sample %v", s)
		assert.GreaterOrEqual(t, high, row.Mean-0.005, "sample %v", s)
		assert.GreaterOrEqual(t, row.PValue, 0.0)
		assert.LessOrEqual(t, row.PValue, 1.0)
	}
}

func TestConfidenceLevel_WidensInterval(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	narrow, _ := newTestEngine(WithConfidence(0.80)).Summarize("m", values)
	wide, _ := newTestEngine(WithConfidence(0.99)).Summarize("m", values)

	nl, nh, _ := insights.ParseCI(narrow.CI)
	wl, wh, _ := insights.ParseCI(wide.CI)
	assert.Less(t, wl, nl)
	assert.Greater(t, wh, nh)

	assert.Equal(t, DefaultConfidenceLevel, newTestEngine(WithConfidence(7)).ConfidenceLevel())
}

func TestBaselines_ShiftEffectSize(t *testing.T) {
	b, err := ParseBaselines([]byte("columns:\n  android_rating: 4.0\n"))
	require.NoError(t, err)

	values := []float64{4.1, 4.3, 3.9, 4.7, 4.4}
	plain, _ := newTestEngine().Summarize("android_rating", values)
	shifted, _ := newTestEngine(WithBaselines(b)).Summarize("android_rating", values)
	other, _ := newTestEngine(WithBaselines(b)).Summarize("ios_rating", values)

	assert.Less(t, shifted.EffectSize, plain.EffectSize)
	assert.Greater(t, shifted.PValue, plain.PValue)
	assert.Equal(t, plain.EffectSize, other.EffectSize, "unlisted metrics use the default")
	assert.Equal(t, plain.CI, shifted.CI, "the interval does not depend on the baseline")
}

func TestLoadBaselines(t *testing.T) {
	b, err := LoadBaselines("")
	require.NoError(t, err)
	assert.Equal(t, 0.0, b.For("anything"))

	path := filepath.Join(t.TempDir(), "baselines.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default: 1.5\ncolumns:\n  ios_price: 0.99\n"), 0o644))

	b, err = LoadBaselines(path)
	require.NoError(t, err)
	assert.Equal(t, 0.99, b.For("ios_price"))
	assert.Equal(t, 1.5, b.For("android_price"))

	_, err = LoadBaselines(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = ParseBaselines([]byte("columns: [1, 2"))
	assert.Error(t, err)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.23, Round(1.23456, 2))
	assert.Equal(t, 2.718, Round(2.71828, 3))
	assert.Equal(t, 0.0, Round(-0.0001, 2))
	assert.Equal(t, 2.5, Round(2.5, 3))
}
