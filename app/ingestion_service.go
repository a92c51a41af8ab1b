package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"marketintel/adapters/excel"
	"marketintel/domain/apps"
	"marketintel/domain/core"
	"marketintel/internal"
	"marketintel/internal/dataset"
	"marketintel/internal/errors"
	"marketintel/internal/normalize"
	"marketintel/internal/session"
	"marketintel/ports"
)

// IngestOutcome reports the result of an Android upload
type IngestOutcome struct {
	Records int    `json:"records"`
	Message string `json:"message"`
	OK      bool   `json:"ok"`
}

// FetchOutcome reports the result of one iOS fetch. A failed fetch is an
// outcome, not an error.
type FetchOutcome struct {
	Query   string `json:"query"`
	Fetched int    `json:"fetched"`
	Total   int    `json:"total"`
	Message string `json:"message"`
	Warning string `json:"warning,omitempty"`
	OK      bool   `json:"ok"`
}

// IngestionService loads both platforms into a session and joins them
type IngestionService struct {
	normalizer *normalize.Normalizer
	searcher   ports.AppSearcher
	logger     *internal.Logger
}

// NewIngestionService creates an ingestion service
func NewIngestionService(searcher ports.AppSearcher, logger *internal.Logger) *IngestionService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &IngestionService{
		normalizer: normalize.New(logger),
		searcher:   searcher,
		logger:     logger,
	}
}

// IngestAndroid reads an uploaded Google Play file and replaces the
// session's Android table. Unreadable input installs an empty table.
func (s *IngestionService) IngestAndroid(sess *session.Session, r io.Reader, name string) IngestOutcome {
	data, err := excel.NewStreamReader(r, name).WithLogger(s.logger).ReadData()
	return s.installAndroid(sess, data, err)
}

// IngestAndroidFile is IngestAndroid for a file on disk
func (s *IngestionService) IngestAndroidFile(sess *session.Session, path string) IngestOutcome {
	data, err := excel.NewDataReader(path).WithLogger(s.logger).ReadData()
	return s.installAndroid(sess, data, err)
}

func (s *IngestionService) installAndroid(sess *session.Session, data *excel.ExcelData, readErr error) IngestOutcome {
	if readErr != nil {
		s.logger.Warn("[IngestionService] android file unreadable: %v", readErr)
		sess.ReplaceAndroid(apps.NewTable(apps.PlatformAndroid))
		return IngestOutcome{Message: fmt.Sprintf("Could not read the uploaded file: %v", readErr)}
	}

	table := s.normalizer.Android(data)
	sess.ReplaceAndroid(table)
	if table.IsEmpty() {
		return IngestOutcome{Message: "The uploaded file produced no usable app records."}
	}
	return IngestOutcome{
		Records: table.Len(),
		Message: fmt.Sprintf("Data ingested successfully! %d Android apps loaded.", table.Len()),
		OK:      true,
	}
}

// FetchIOS runs one live App Store search and merges the result into the
// session. Missing credentials, transport failures and malformed replies
// leave the session unchanged and are reported in the outcome.
func (s *IngestionService) FetchIOS(ctx context.Context, sess *session.Session, req ports.SearchRequest) FetchOutcome {
	out := FetchOutcome{Query: req.Query, Total: sess.IOS.Len()}
	if sess.Android.IsEmpty() {
		out.Warning = "Upload and clean Android data first so both platforms are normalized the same way."
	}
	if s.searcher == nil {
		out.Message = "Live iOS search is not configured."
		return out
	}

	raw, err := s.searcher.Search(ctx, req)
	if err != nil {
		s.logger.Warn("[IngestionService] iOS fetch for %q failed: %v", req.Query, err)
		if stderrors.Is(err, core.ErrMissingCredential) {
			out.Message = "RAPIDAPI_KEY is not set. Cannot fetch live iOS data."
		} else {
			out.Message = fmt.Sprintf("Error fetching iOS data: %v", err)
		}
		return out
	}

	table := s.normalizer.IOS(raw)
	if table.IsEmpty() {
		out.Message = fmt.Sprintf("No iOS data was retrieved for query '%s'. Please check your query parameters or API key.", req.Query)
		return out
	}

	sess.MergeIOS(table)
	out.Fetched = table.Len()
	out.Total = sess.IOS.Len()
	out.OK = true
	out.Message = fmt.Sprintf("iOS data fetched successfully! Total unique iOS apps in session: %d", out.Total)
	return out
}

// Combine joins the session's tables and stores the result. Both tables
// must be non-empty; an empty join is stored and is not an error.
func (s *IngestionService) Combine(sess *session.Session) (*apps.Frame, error) {
	switch {
	case sess.Android.IsEmpty():
		return nil, errors.NoData("No data to combine. Please ingest Android data first.", core.ErrNoAndroidData)
	case sess.IOS.IsEmpty():
		return nil, errors.NoData("No data to combine. Please fetch iOS data first.", core.ErrNoIOSData)
	}

	frame := dataset.Join(sess.Android, sess.IOS)
	sess.SetCombined(frame)
	if frame.IsEmpty() {
		s.logger.Warn("[IngestionService] combined dataset is empty: no app names match after normalization")
	} else {
		s.logger.Info("[IngestionService] found %d cross-platform apps", frame.Len())
	}
	return frame, nil
}
