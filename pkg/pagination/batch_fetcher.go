package pagination

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/hepatodb-client/pkg/record"
	"github.com/Sternrassler/hepatodb-client/pkg/resource"
)

// Config holds batch fetcher configuration.
type Config struct {
	// MaxConcurrency is the number of workers requesting pages.
	MaxConcurrency int
	// Timeout bounds each page request.
	Timeout time.Duration
	// BufferSize is the capacity of the page queue.
	BufferSize int
}

// DefaultConfig returns a conservative configuration for the HepatoDB API.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        15 * time.Second,
		BufferSize:     100,
	}
}

// BatchFetcher fetches pages 2..N of a query in parallel once page 1 has
// reported the total.
type BatchFetcher struct {
	fetcher PageFetcher
	config  Config
}

// NewBatchFetcher creates a batch fetcher. Zero config fields take their
// DefaultConfig value.
func NewBatchFetcher(fetcher PageFetcher, config Config) *BatchFetcher {
	def := DefaultConfig()
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = def.MaxConcurrency
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	if config.BufferSize <= 0 {
		config.BufferSize = def.BufferSize
	}
	return &BatchFetcher{fetcher: fetcher, config: config}
}

// FetchAll returns the same records, in the same order, as Collect. The first
// failing page cancels the outstanding workers and nothing is returned.
func (bf *BatchFetcher) FetchAll(ctx context.Context, res resource.Resource, query resource.Query) ([]record.Record, error) {
	start := time.Now()
	fail := func(err error) ([]record.Record, error) {
		collectDuration.WithLabelValues(res.Name, "error").Observe(time.Since(start).Seconds())
		return nil, err
	}

	first, err := bf.fetcher.FetchPage(ctx, res, query, 1)
	if err != nil {
		return fail(fmt.Errorf("%w: %s page 1: %w", ErrFetchFailed, res.Name, err))
	}
	pagesFetchedTotal.WithLabelValues(res.Name).Inc()

	total := first.TotalPages
	if total <= 1 {
		collectDuration.WithLabelValues(res.Name, "ok").Observe(time.Since(start).Seconds())
		return append(make([]record.Record, 0, len(first.Records)), first.Records...), nil
	}

	log.Debug().
		Str("resource", res.Name).
		Int("total_pages", total).
		Int("workers", bf.config.MaxConcurrency).
		Msg("Starting parallel page fetch")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The reported total is not trusted for allocation; pages are kept as
	// they arrive.
	var (
		mu    sync.Mutex
		pages = map[int][]record.Record{1: first.Records}
		count = len(first.Records)
	)

	var (
		once     sync.Once
		firstErr error
	)
	abort := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	queue := make(chan int, bf.config.BufferSize)
	go func() {
		defer close(queue)
		for page := 2; page <= total; page++ {
			select {
			case queue <- page:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < min(bf.config.MaxConcurrency, total-1); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range queue {
				if ctx.Err() != nil {
					return
				}
				records, err := bf.fetchOne(ctx, res, query, page)
				if err != nil {
					log.Warn().Err(err).Str("resource", res.Name).Int("page", page).Msg("Page fetch failed")
					abort(fmt.Errorf("%w: %s page %d: %w", ErrFetchFailed, res.Name, page, err))
					return
				}
				mu.Lock()
				pages[page] = records
				count += len(records)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return fail(firstErr)
	}
	if err := ctx.Err(); err != nil {
		return fail(fmt.Errorf("%w: %s: %w", ErrFetchFailed, res.Name, err))
	}

	out := make([]record.Record, 0, count)
	for page := 1; page <= total; page++ {
		out = append(out, pages[page]...)
	}

	collectDuration.WithLabelValues(res.Name, "ok").Observe(time.Since(start).Seconds())
	log.Debug().
		Str("resource", res.Name).
		Int("pages", total).
		Int("records", len(out)).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return out, nil
}

func (bf *BatchFetcher) fetchOne(ctx context.Context, res resource.Resource, query resource.Query, page int) ([]record.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
	defer cancel()

	p, err := bf.fetcher.FetchPage(ctx, res, query, page)
	if err != nil {
		return nil, err
	}
	pagesFetchedTotal.WithLabelValues(res.Name).Inc()
	return p.Records, nil
}
