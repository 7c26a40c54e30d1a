package pagination

import (
	"context"
	"fmt"
	"iter"

	"github.com/Sternrassler/hepatodb-client/pkg/record"
	"github.com/Sternrassler/hepatodb-client/pkg/resource"
)

// Iterator steps through the pages of one query. The first call to Next
// always issues a request; later calls stop once the page counter exceeds the
// last reported total.
type Iterator struct {
	fetcher PageFetcher
	res     resource.Resource
	query   resource.Query

	next       int
	totalPages int
	started    bool
	done       bool
	page       Page
	err        error
}

// NewIterator returns an iterator positioned before page 1.
func NewIterator(fetcher PageFetcher, res resource.Resource, query resource.Query) *Iterator {
	it := &Iterator{
		fetcher: fetcher,
		res:     res,
		query:   query,
	}
	it.Reset()
	return it
}

// Reset rewinds the iterator so the next call to Next fetches page 1 again.
func (it *Iterator) Reset() {
	it.next = 1
	it.totalPages = 1
	it.started = false
	it.done = false
	it.page = Page{}
	it.err = nil
}

// Next fetches the next page. It returns false when the pages are exhausted
// or a fetch failed; check Err to tell the two apart.
func (it *Iterator) Next(ctx context.Context) bool {
	if it.done {
		return false
	}
	if it.started && it.next > it.totalPages {
		it.done = true
		return false
	}
	if err := ctx.Err(); err != nil {
		it.fail(err)
		return false
	}

	p, err := it.fetcher.FetchPage(ctx, it.res, it.query, it.next)
	if err != nil {
		it.fail(err)
		return false
	}
	pagesFetchedTotal.WithLabelValues(it.res.Name).Inc()

	p.Number = it.next
	it.page = p
	it.totalPages = p.TotalPages
	it.started = true
	it.next++
	return true
}

func (it *Iterator) fail(err error) {
	it.err = fmt.Errorf("%w: %s page %d: %w", ErrFetchFailed, it.res.Name, it.next, err)
	it.page = Page{}
	it.done = true
}

// Page returns the page fetched by the last successful Next.
func (it *Iterator) Page() Page {
	return it.page
}

// Records is shorthand for Page().Records.
func (it *Iterator) Records() []record.Record {
	return it.page.Records
}

// TotalPages returns the page count reported by the most recent response.
func (it *Iterator) TotalPages() int {
	return it.totalPages
}

// Err returns the failure that stopped iteration, if any. It always matches
// ErrFetchFailed.
func (it *Iterator) Err() error {
	return it.err
}

// All returns a lazy sequence over every record of the query. Each range over
// the sequence starts again from page 1. A failure is yielded once, as the
// final element, with a zero Record.
func All(ctx context.Context, fetcher PageFetcher, res resource.Resource, query resource.Query) iter.Seq2[record.Record, error] {
	return func(yield func(record.Record, error) bool) {
		it := NewIterator(fetcher, res, query)
		for it.Next(ctx) {
			for _, r := range it.Records() {
				if !yield(r, nil) {
					return
				}
			}
		}
		if err := it.Err(); err != nil {
			yield(record.Record{}, err)
		}
	}
}
