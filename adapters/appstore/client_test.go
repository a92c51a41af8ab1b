package appstore

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketintel/domain/core"
	"marketintel/internal"
	"marketintel/internal/errors"
	"marketintel/ports"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate func(*Config)) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.APIKey = "test-key"
	cfg.BaseURL = srv.URL
	if mutate != nil {
		mutate(&cfg)
	}
	return NewClient(cfg, internal.NewNopLogger())
}

func TestSearch_SendsQueryAndHeaders(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, SearchPath, r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-rapidapi-key"))
		assert.Equal(t, "appstore-scrapper-api.p.rapidapi.com", r.Header.Get("x-rapidapi-host"))
		q := r.URL.Query()
		assert.Equal(t, "puzzle", q.Get("query"))
		assert.Equal(t, "200", q.Get("num"))
		assert.Equal(t, "gb", q.Get("country"))
		assert.Equal(t, "en", q.Get("lang"))
		w.Write([]byte(`[{"title":"Two Dots"}]`))
	}, nil)

	body, err := client.Search(context.Background(), ports.SearchRequest{Query: "puzzle", Num: 999, Country: "gb"})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"title":"Two Dots"}]`, string(body))
}

func TestSearch_MissingKey(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected without a key")
	}, func(c *Config) { c.APIKey = "" })

	_, err := client.Search(context.Background(), ports.SearchRequest{Query: "games"})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, core.ErrMissingCredential))
}

func TestSearch_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`},
		{"quota", http.StatusTooManyRequests, `{"message":"quota exceeded"}`},
		{"not a list", http.StatusOK, `{"message":"no results"}`},
		{"not json", http.StatusOK, `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, nil)

			_, err := client.Search(context.Background(), ports.SearchRequest{Query: "games"})
			require.Error(t, err)
			assert.Equal(t, errors.CodeExternalService, errors.GetCode(err))
		})
	}
}

func TestSearch_Timeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(time.Second):
		case <-r.Context().Done():
		}
		w.Write([]byte(`[]`))
	}, func(c *Config) { c.Timeout = 50 * time.Millisecond })

	_, err := client.Search(context.Background(), ports.SearchRequest{Query: "slow"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeExternalService, errors.GetCode(err))
}

func TestSearch_CachesSuccessfulResponses(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`[{"title":"Chess"}]`))
	}, nil)

	req := ports.SearchRequest{Query: "chess", Num: 10}
	for i := 0; i < 3; i++ {
		_, err := client.Search(context.Background(), req)
		require.NoError(t, err)
	}
	_, err := client.Search(context.Background(), ports.SearchRequest{Query: "chess", Num: 20})
	require.NoError(t, err)

	assert.Equal(t, int32(2), calls.Load())
}

func TestSearch_CacheDisabled(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`[]`))
	}, func(c *Config) { c.CacheSize = 0 })

	for i := 0; i < 2; i++ {
		_, err := client.Search(context.Background(), ports.SearchRequest{Query: "chess"})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(2), calls.Load())
}
