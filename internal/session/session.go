package session

import (
	"time"

	"marketintel/domain/apps"
	"marketintel/domain/core"
	"marketintel/domain/insights"
)

// Session holds the datasets of one analyst session. It is owned by the
// caller and is not safe for concurrent use.
type Session struct {
	ID        core.SessionID
	CreatedAt time.Time
	Android   apps.Table
	IOS       apps.Table
	Combined  *apps.Frame
	Insights  *insights.Bundle
}

// Summary describes the session state
type Summary struct {
	ID              string   `json:"id"`
	CreatedAt       string   `json:"created_at"`
	AndroidRecords  int      `json:"android_records"`
	IOSRecords      int      `json:"ios_records"`
	CombinedRecords int      `json:"combined_records"`
	CombinedColumns []string `json:"combined_columns,omitempty"`
	HasInsights     bool     `json:"has_insights"`
	Degraded        bool     `json:"degraded,omitempty"`
}

// New creates an empty session
func New() *Session {
	return &Session{
		ID:        core.SessionID(core.NewID()),
		CreatedAt: time.Now().UTC(),
		Android:   apps.NewTable(apps.PlatformAndroid),
		IOS:       apps.NewTable(apps.PlatformIOS),
	}
}

// ReplaceAndroid installs a freshly ingested Android table
func (s *Session) ReplaceAndroid(t apps.Table) {
	s.Android = t
}

// MergeIOS accumulates a fetched iOS table; a later record for the same
// app replaces the earlier one.
func (s *Session) MergeIOS(t apps.Table) {
	s.IOS = s.IOS.Merge(t)
}

// SetCombined stores a new joined frame and drops insights computed from
// the previous one.
func (s *Session) SetCombined(f *apps.Frame) {
	s.Combined = f
	s.Insights = nil
}

// SetInsights stores the latest insight bundle
func (s *Session) SetInsights(b *insights.Bundle) {
	s.Insights = b
}

// Reset clears every dataset but keeps the session identity
func (s *Session) Reset() {
	id, created := s.ID, s.CreatedAt
	*s = *New()
	s.ID, s.CreatedAt = id, created
}

// RequireCombined returns the combined frame or core.ErrNoCombinedData
func (s *Session) RequireCombined() (*apps.Frame, error) {
	if s.Combined == nil {
		return nil, core.ErrNoCombinedData
	}
	return s.Combined, nil
}

// RequireInsights returns the insight bundle or core.ErrNoInsights
func (s *Session) RequireInsights() (*insights.Bundle, error) {
	if s.Insights == nil {
		return nil, core.ErrNoInsights
	}
	return s.Insights, nil
}

// Summary reports record counts for each slot
func (s *Session) Summary() Summary {
	sum := Summary{
		ID:             core.ID(s.ID).String(),
		CreatedAt:      s.CreatedAt.Format(time.RFC3339),
		AndroidRecords: s.Android.Len(),
		IOSRecords:     s.IOS.Len(),
		HasInsights:    s.Insights != nil,
	}
	if s.Combined != nil {
		sum.CombinedRecords = s.Combined.Len()
		sum.CombinedColumns = s.Combined.ColumnNames()
	}
	if s.Insights != nil {
		sum.Degraded = s.Insights.Degraded
	}
	return sum
}
