package ui

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"marketintel/app"
	"marketintel/domain/apps"
	"marketintel/domain/core"
	"marketintel/domain/insights"
	"marketintel/internal/dataset"
	"marketintel/internal/errors"
	"marketintel/internal/report"
	"marketintel/ports"
)

// combineResponse is returned by POST /api/combine
type combineResponse struct {
	Records  int               `json:"records"`
	Columns  []string          `json:"columns"`
	Insights *insights.Bundle  `json:"insights"`
	Stages   []app.StageTiming `json:"stages"`
	Message  string            `json:"message"`
}

// datasetResponse is returned by GET /api/dataset
type datasetResponse struct {
	Category   string      `json:"category"`
	Categories []string    `json:"categories"`
	Records    int         `json:"records"`
	Columns    []string    `json:"columns"`
	Rows       *apps.Frame `json:"rows"`
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, "index.html", map[string]interface{}{
		"Session":  a.session.Summary(),
		"Insights": a.session.Insights,
	})
}

// handleAndroidUpload ingests a multipart "file" field. An unreadable file
// still answers 200 with the outcome message and an emptied Android table.
func (a *App) handleAndroidUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.writeError(w, errors.InvalidInput("expected a multipart upload with a \"file\" field").WithCause(err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		a.writeError(w, errors.InvalidInput("missing \"file\" field").WithCause(err))
		return
	}
	defer file.Close()

	outcome := a.pipeline.Ingestion().IngestAndroid(a.session, file, header.Filename)
	a.writeJSON(w, http.StatusOK, outcome)
}

// handleIOSFetch runs one live search; results accumulate in the session
func (a *App) handleIOSFetch(w http.ResponseWriter, r *http.Request) {
	var req ports.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writeError(w, errors.InvalidInput("invalid fetch request body").WithCause(err))
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		a.writeError(w, errors.ValidationError("query is required"))
		return
	}

	outcome := a.pipeline.Ingestion().FetchIOS(r.Context(), a.session, req)
	a.writeJSON(w, http.StatusOK, outcome)
}

// handleCombine joins both tables and generates insights
func (a *App) handleCombine(w http.ResponseWriter, r *http.Request) {
	result, err := a.pipeline.Analyze(r.Context(), a.session)
	if err != nil {
		a.writeError(w, err)
		return
	}

	if a.reports != nil {
		if path, err := a.reports.SaveInsights(r.Context(), result.Bundle); err != nil {
			a.logger.Warn("[UI] could not save insights: %v", err)
		} else {
			a.logger.Info("[UI] insights saved to %s", path)
		}
	}

	msg := "Datasets combined successfully!"
	if result.Combined.IsEmpty() {
		msg = "No apps matched across platforms after name normalization."
	}
	a.writeJSON(w, http.StatusOK, combineResponse{
		Records:  result.Combined.Len(),
		Columns:  result.Combined.ColumnNames(),
		Insights: result.Bundle,
		Stages:   result.Stages,
		Message:  msg,
	})
}

func (a *App) handleReset(w http.ResponseWriter, r *http.Request) {
	a.session.Reset()
	a.writeJSON(w, http.StatusOK, a.session.Summary())
}

func (a *App) handleSession(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.session.Summary())
}

// handleDataset returns the combined rows, optionally filtered by ?category=
func (a *App) handleDataset(w http.ResponseWriter, r *http.Request) {
	frame, err := a.combined()
	if err != nil {
		a.writeError(w, err)
		return
	}

	category := r.URL.Query().Get("category")
	filtered := dataset.FilterCategory(frame, category)
	a.writeJSON(w, http.StatusOK, datasetResponse{
		Category:   category,
		Categories: dataset.Categories(frame),
		Records:    filtered.Len(),
		Columns:    filtered.ColumnNames(),
		Rows:       filtered,
	})
}

// handleDatasetExport downloads the combined dataset as csv or xlsx
func (a *App) handleDatasetExport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = dataset.ExportCSV
	}
	frame, err := a.combined()
	if err != nil {
		a.writeError(w, err)
		return
	}
	frame = dataset.FilterCategory(frame, r.URL.Query().Get("category"))

	var buf bytes.Buffer
	if err := dataset.Export(&buf, frame, format); err != nil {
		if core.IsUnsupportedFormat(err) {
			a.writeError(w, errors.InvalidInput("unknown export format").WithCause(err))
			return
		}
		a.writeError(w, errors.Wrap(err, "failed to export dataset"))
		return
	}
	attachment(w, dataset.ExportContentType(format), "combined_dataset."+format)
	_, _ = w.Write(buf.Bytes())
}

// handleInsights returns the insight bundle; ?download=1 serves it as a file
func (a *App) handleInsights(w http.ResponseWriter, r *http.Request) {
	bundle, err := a.insights()
	if err != nil {
		a.writeError(w, err)
		return
	}
	if r.URL.Query().Get("download") != "" {
		data, err := bundle.MarshalIndent()
		if err != nil {
			a.writeError(w, errors.Wrap(err, "failed to encode insights"))
			return
		}
		attachment(w, "application/json", report.InsightsFileName)
		_, _ = w.Write(data)
		return
	}
	a.writeJSON(w, http.StatusOK, bundle)
}

// handleReport renders the insight report as md, html or pdf
func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	bundle, err := a.insights()
	if err != nil {
		a.writeError(w, err)
		return
	}

	data, err := report.Render(bundle, format)
	if err != nil {
		a.writeError(w, err)
		return
	}
	attachment(w, format.ContentType(), format.FileName())
	_, _ = w.Write(data)
}

func (a *App) combined() (*apps.Frame, error) {
	frame, err := a.session.RequireCombined()
	if err != nil {
		return nil, errors.NoData("No combined dataset. Combine Android and iOS data first.", err)
	}
	return frame, nil
}

func (a *App) insights() (*insights.Bundle, error) {
	bundle, err := a.session.RequireInsights()
	if err != nil {
		return nil, errors.NoData("No insights yet. Combine the datasets to generate them.", err)
	}
	return bundle, nil
}
