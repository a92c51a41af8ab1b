package testkit

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarketGenerator_Deterministic(t *testing.T) {
	cfg := DefaultMarketConfig()
	cfg.AppCount = 50

	a, err := NewMarketGenerator(cfg).AndroidCSV()
	require.NoError(t, err)
	b, err := NewMarketGenerator(cfg).AndroidCSV()
	require.NoError(t, err)
	assert.Equal(t, a, b, "same seed yields the same export")
}

func TestMarketGenerator_AndroidCSV(t *testing.T) {
	cfg := DefaultMarketConfig()
	cfg.AppCount = 30
	data, err := NewMarketGenerator(cfg).AndroidCSV()
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 31)
	assert.Equal(t, AndroidHeader, records[0])
	for _, r := range records[1:] {
		assert.Len(t, r, len(AndroidHeader))
		assert.True(t, strings.HasSuffix(r[5], "+"), r[5])
	}
}

func TestMarketGenerator_IOSJSON(t *testing.T) {
	cfg := DefaultMarketConfig()
	cfg.AppCount = 100
	g := NewMarketGenerator(cfg)

	data, err := g.IOSJSON()
	require.NoError(t, err)
	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &items))

	assert.Equal(t, g.OverlapCount(), len(items))
	assert.Greater(t, len(items), 0)
	assert.Less(t, len(items), cfg.AppCount)
	for _, it := range items {
		score := it["score"].(float64)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 5.0)
	}
}

func TestFormatInstalls(t *testing.T) {
	assert.Equal(t, "1,000+", formatInstalls(1000))
	assert.Equal(t, "100,000,000+", formatInstalls(100000000))
	assert.Equal(t, "10+", formatInstalls(10))
}
