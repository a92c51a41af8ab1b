package ports

import (
	"context"

	"marketintel/domain/insights"
)

// NarrativeGenerator turns a statistics table into an executive summary
type NarrativeGenerator interface {
	Summarize(ctx context.Context, rows []insights.StatsRow) (string, error)
	Name() string
}
