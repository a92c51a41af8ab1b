package ports

import "context"

// Search result cap bounds accepted by the App Store search API
const (
	MinSearchResults     = 1
	MaxSearchResults     = 200
	DefaultSearchResults = 50
)

// SearchRequest parameterizes a live App Store search
type SearchRequest struct {
	Query   string `json:"query"`
	Num     int    `json:"num"`
	Country string `json:"country"`
	Lang    string `json:"lang"`
}

// Normalized returns a copy with defaults applied and Num clamped to the
// accepted range. clamped reports whether Num had to be moved.
func (r SearchRequest) Normalized() (out SearchRequest, clamped bool) {
	out = r
	if out.Country == "" {
		out.Country = "us"
	}
	if out.Lang == "" {
		out.Lang = "en"
	}
	switch {
	case out.Num == 0:
		out.Num = DefaultSearchResults
	case out.Num < MinSearchResults:
		out.Num, clamped = MinSearchResults, true
	case out.Num > MaxSearchResults:
		out.Num, clamped = MaxSearchResults, true
	}
	return out, clamped
}

// AppSearcher fetches the raw JSON search response for a query
type AppSearcher interface {
	Search(ctx context.Context, req SearchRequest) ([]byte, error)
}
