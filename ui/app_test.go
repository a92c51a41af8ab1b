package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketintel/adapters/llm/heuristic"
	"marketintel/app"
	"marketintel/domain/core"
	"marketintel/internal"
	"marketintel/internal/analysis"
	"marketintel/internal/errors"
	"marketintel/internal/report"
	"marketintel/ports"
)

const playCSV = `App,Category,Rating,Reviews,Size,Installs,Type,Price,Content Rating,Genres,Last Updated,Current Ver,Android Ver
Instagram,SOCIAL,4.5,66577313,Varies with device,"1,000,000,000+",Free,0,Teen,Social,"July 31, 2018",Varies with device,Varies with device
TikTok - Short Videos,SOCIAL,4.4,1000,20M,"100,000,000+",Free,0,Teen,Social,"August 1, 2018",1.0,4.1 and up
Minecraft,FAMILY,4.5,2376564,Varies with device,"10,000,000+",Paid,$6.99,Everyone 10+,Arcade,"July 24, 2018",1.5.2.1,Varies with device
`

const iosApps = `[
	{"title":"Instagram","primaryGenreName":"Photo & Video","score":4.7,"reviews":24000000,"free":true},
	{"title":"TikTok","primaryGenreName":"Entertainment","score":4.6,"reviews":17000000,"free":true},
	{"title":"Minecraft","primaryGenreName":"Games","score":4.5,"reviews":600000,"free":false,"price":6.99}
]`

type stubSearcher struct {
	body string
	err  error
}

func (s stubSearcher) Search(ctx context.Context, req ports.SearchRequest) ([]byte, error) {
	return []byte(s.body), s.err
}

func newTestApp(t *testing.T, searcher ports.AppSearcher) *App {
	t.Helper()
	logger := internal.NewNopLogger()
	ingestion := app.NewIngestionService(searcher, logger)
	insightSvc := app.NewInsightService(analysis.NewEngine(analysis.WithLogger(logger)), logger,
		app.WithNarrator(heuristic.NewNarrator()))
	store, err := report.NewFileStore(t.TempDir())
	require.NoError(t, err)

	a, err := NewApp(app.NewPipeline(ingestion, insightSvc, logger), store, logger)
	require.NoError(t, err)
	return a
}

func do(t *testing.T, a *App, method, target string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, a *App, name, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return do(t, a, http.MethodPost, "/api/android", &buf, mw.FormDataContentType())
}

func fetch(t *testing.T, a *App, query string) *httptest.ResponseRecorder {
	t.Helper()
	body := bytes.NewBufferString(`{"query":"` + query + `","num":50}`)
	return do(t, a, http.MethodPost, "/api/ios/fetch", body, "application/json")
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestEndToEnd(t *testing.T) {
	a := newTestApp(t, stubSearcher{body: iosApps})

	rec := upload(t, a, "play.csv", playCSV)
	require.Equal(t, http.StatusOK, rec.Code)
	var ingest app.IngestOutcome
	decode(t, rec, &ingest)
	assert.True(t, ingest.OK)
	assert.Equal(t, 3, ingest.Records)

	rec = fetch(t, a, "social")
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched app.FetchOutcome
	decode(t, rec, &fetched)
	assert.True(t, fetched.OK)
	assert.Equal(t, 3, fetched.Total)

	rec = do(t, a, http.MethodPost, "/api/combine", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var combined combineResponse
	decode(t, rec, &combined)
	assert.Equal(t, 3, combined.Records)
	require.NotNil(t, combined.Insights)
	assert.NotEmpty(t, combined.Insights.StatsTable)
	assert.Equal(t, "heuristic", combined.Insights.NarrativeSource)

	rec = do(t, a, http.MethodGet, "/api/session", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"combined_records":3`)
	assert.Contains(t, rec.Body.String(), `"has_insights":true`)

	rec = do(t, a, http.MethodGet, "/api/dataset?category=SOCIAL", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var ds struct {
		Categories []string                 `json:"categories"`
		Records    int                      `json:"records"`
		Rows       []map[string]interface{} `json:"rows"`
	}
	decode(t, rec, &ds)
	assert.Equal(t, []string{"FAMILY", "SOCIAL"}, ds.Categories)
	assert.Equal(t, 2, ds.Records)
	assert.Equal(t, "instagram", ds.Rows[0]["app_name"])

	rec = do(t, a, http.MethodGet, "/api/dataset/export?format=csv", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "combined_dataset.csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "app_name,Category,"))

	rec = do(t, a, http.MethodGet, "/api/insights?download=1", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "insights_report.json")
	assert.Contains(t, rec.Body.String(), `"stats_table"`)

	rec = do(t, a, http.MethodGet, "/api/report?format=md", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "# Insights Report"))

	rec = do(t, a, http.MethodGet, "/api/report?format=pdf", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))

	exists, err := a.reports.Exists(context.Background(), report.InsightsFileName)
	require.NoError(t, err)
	assert.True(t, exists, "combine saves the insight bundle")

	rec = do(t, a, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "android_rating")
}

func TestErrors(t *testing.T) {
	a := newTestApp(t, stubSearcher{body: iosApps})

	tests := []struct {
		name   string
		method string
		target string
		status int
		code   string
	}{
		{"combine before ingest", http.MethodPost, "/api/combine", http.StatusNotFound, errors.CodeNoData},
		{"dataset before combine", http.MethodGet, "/api/dataset", http.StatusNotFound, errors.CodeNoData},
		{"insights before combine", http.MethodGet, "/api/insights", http.StatusNotFound, errors.CodeNoData},
		{"unknown report format", http.MethodGet, "/api/report?format=docx", http.StatusBadRequest, errors.CodeInvalidInput},
		{"report without format", http.MethodGet, "/api/report", http.StatusBadRequest, errors.CodeInvalidInput},
		{"upload without multipart", http.MethodPost, "/api/android", http.StatusBadRequest, errors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, a, tt.method, tt.target, nil, "")
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			var body errorResponse
			decode(t, rec, &body)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestIOSFetch_Validation(t *testing.T) {
	a := newTestApp(t, stubSearcher{body: iosApps})

	rec := do(t, a, http.MethodPost, "/api/ios/fetch", bytes.NewBufferString(`{"query":"  "}`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, a, http.MethodPost, "/api/ios/fetch", bytes.NewBufferString(`not json`), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIOSFetch_MissingKeyIsAnOutcome(t *testing.T) {
	missing := errors.ConfigInvalid("RAPIDAPI_KEY is not set").WithCause(core.ErrMissingCredential)
	a := newTestApp(t, stubSearcher{err: missing})

	rec := fetch(t, a, "social")
	require.Equal(t, http.StatusOK, rec.Code)
	var out app.FetchOutcome
	decode(t, rec, &out)
	assert.False(t, out.OK)
	assert.Contains(t, out.Message, "RAPIDAPI_KEY")
}

func TestExport_UnknownFormat(t *testing.T) {
	a := newTestApp(t, stubSearcher{body: iosApps})
	upload(t, a, "play.csv", playCSV)
	fetch(t, a, "social")
	require.Equal(t, http.StatusOK, do(t, a, http.MethodPost, "/api/combine", nil, "").Code)

	rec := do(t, a, http.MethodGet, "/api/dataset/export?format=parquet", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, a, http.MethodGet, "/api/dataset/export?format=xlsx", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestReset(t *testing.T) {
	a := newTestApp(t, stubSearcher{body: iosApps})
	upload(t, a, "play.csv", playCSV)
	id := a.session.ID

	rec := do(t, a, http.MethodPost, "/api/reset", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, a.session.ID)
	assert.True(t, a.session.Android.IsEmpty())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadGateway, statusFor(errors.ExternalServiceError("appstore", nil)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
	assert.Equal(t, http.StatusBadRequest, statusFor(errors.ValidationError("x")))
}
