package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketintel/internal/config"
	"marketintel/internal/errors"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Logging:   config.LoggingConfig{Level: "ERROR", Format: "json"},
		AppStore:  config.AppStoreConfig{BaseURL: "http://127.0.0.1:0", Host: "test", Timeout: time.Second, CacheSize: 4},
		Narrative: config.NarrativeConfig{Provider: config.ProviderHeuristic},
		Stats:     config.StatsConfig{ConfidenceLevel: 0.95},
		Reports:   config.ReportConfig{OutputDir: t.TempDir()},
	}
}

func TestNew_Heuristic(t *testing.T) {
	c, err := New(context.Background(), testConfig(t))
	require.NoError(t, err)
	defer c.Close()

	require.NotNil(t, c.Pipeline)
	assert.Same(t, c.Ingestion, c.Pipeline.Ingestion())
	assert.Same(t, c.Insights, c.Pipeline.Insights())
	assert.Equal(t, "heuristic", c.Narrator.Name())
	assert.NotNil(t, c.Reports)
}

func TestNew_MissingModelKeyDegrades(t *testing.T) {
	cfg := testConfig(t)
	cfg.Narrative = config.NarrativeConfig{Provider: config.ProviderOpenAI, OpenAIModel: "gpt-4o-mini"}

	c, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, c.Narrator)
	assert.Equal(t, "degraded", c.narratorName())
}

func TestNew_BaselinesFile(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "baselines.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default: 1\ncolumns:\n  android_rating: 4\n"), 0644))
	cfg.Stats.BaselinesFile = path

	_, err := New(context.Background(), cfg)
	require.NoError(t, err)

	cfg.Stats.BaselinesFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = New(context.Background(), cfg)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(context.Background(), nil)
	assert.Error(t, err)
}
