package pagination

import (
	"context"
	"errors"

	"github.com/Sternrassler/hepatodb-client/pkg/record"
	"github.com/Sternrassler/hepatodb-client/pkg/resource"
)

// ErrFetchFailed is the single failure reported to callers, whatever the
// underlying network, status or decoding problem was.
var ErrFetchFailed = errors.New("fetch failed")

// Page is one batch of records plus the page count the server reported.
type Page struct {
	Number     int
	Records    []record.Record
	TotalPages int
}

// PageFetcher is implemented by the HepatoDB client for single-page fetching.
type PageFetcher interface {
	// FetchPage fetches one page of res filtered by query. Unpaged collections
	// return their whole result as page 1 of 1.
	FetchPage(ctx context.Context, res resource.Resource, query resource.Query, page int) (Page, error)
}

// PageFetcherFunc adapts a function to PageFetcher.
type PageFetcherFunc func(ctx context.Context, res resource.Resource, query resource.Query, page int) (Page, error)

// FetchPage calls f.
func (f PageFetcherFunc) FetchPage(ctx context.Context, res resource.Resource, query resource.Query, page int) (Page, error) {
	return f(ctx, res, query, page)
}
