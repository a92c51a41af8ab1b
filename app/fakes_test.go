package app

import (
	"context"
	"fmt"

	"marketintel/domain/core"
	"marketintel/domain/insights"
	"marketintel/internal/errors"
	"marketintel/ports"
)

type fakeSearcher struct {
	responses map[string]string
	err       error
	requests  []ports.SearchRequest
}

func (f *fakeSearcher) Search(ctx context.Context, req ports.SearchRequest) ([]byte, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.responses[req.Query]
	if !ok {
		return []byte(`[]`), nil
	}
	return []byte(body), nil
}

type fakeNarrator struct {
	summary string
	err     error
	calls   int
}

func (f *fakeNarrator) Name() string { return "fake" }

func (f *fakeNarrator) Summarize(ctx context.Context, rows []insights.StatsRow) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("%s (%d metrics)", f.summary, len(rows)), nil
}

var missingKey = errors.ConfigInvalid("RAPIDAPI_KEY is not set").WithCause(core.ErrMissingCredential)

const playCSV = `App,Category,Rating,Reviews,Size,Installs,Type,Price,Content Rating,Genres,Last Updated,Current Ver,Android Ver
Life is Strange,1.9,19,3.0M,1000+,Free,0,Everyone,,"February 11, 2018",1.0.19,4.0 and up
Instagram,SOCIAL,4.5,66577313,Varies with device,"1,000,000,000+",Free,0,Teen,Social,"July 31, 2018",Varies with device,Varies with device
TikTok - Short Videos,SOCIAL,4.4,1000,20M,"100,000,000+",Free,0,Teen,Social,"August 1, 2018",1.0,4.1 and up
Minecraft,FAMILY,4.5,2376564,Varies with device,"10,000,000+",Paid,$6.99,Everyone 10+,Arcade,"July 24, 2018",1.5.2.1,Varies with device
Waze,MAPS_AND_NAVIGATION,4.6,1000000,Varies with device,"100,000,000+",Free,0,Everyone,Maps,"July 25, 2018",Varies with device,Varies with device
`

const iosSocial = `[
	{"title":"Instagram","primaryGenreName":"Photo & Video","score":4.7,"reviews":24000000,"size":"250M","free":true,"updated":"2024-01-02T00:00:00Z","contentRating":"12+"},
	{"title":"TikTok: Videos, Music & LIVE","primaryGenreName":"Entertainment","score":4.6,"reviews":17000000,"size":524288000,"free":true,"contentRating":"12+"}
]`

const iosGames = `[
	{"title":"Minecraft: Dream it, Build it!","primaryGenreName":"Games","score":4.5,"reviews":600000,"free":false,"price":"$6.99","contentRating":"9+"},
	{"title":"Instagram","primaryGenreName":"Photo & Video","score":4.8,"reviews":24100000,"free":true,"contentRating":"12+"}
]`
