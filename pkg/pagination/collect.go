package pagination

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/hepatodb-client/pkg/record"
	"github.com/Sternrassler/hepatodb-client/pkg/resource"
)

// Collect fetches every page of the query in order and returns the
// concatenated records. On failure the records gathered so far are dropped
// and the error matches ErrFetchFailed.
func Collect(ctx context.Context, fetcher PageFetcher, res resource.Resource, query resource.Query) ([]record.Record, error) {
	start := time.Now()
	it := NewIterator(fetcher, res, query)

	accumulated := make([]record.Record, 0)
	pages := 0
	for it.Next(ctx) {
		accumulated = append(accumulated, it.Records()...)
		pages++
	}

	if err := it.Err(); err != nil {
		collectDuration.WithLabelValues(res.Name, "error").Observe(time.Since(start).Seconds())
		log.Warn().
			Err(err).
			Str("resource", res.Name).
			Str("query", query.String()).
			Int("pages_fetched", pages).
			Msg("Collection aborted")
		return nil, err
	}

	collectDuration.WithLabelValues(res.Name, "ok").Observe(time.Since(start).Seconds())
	log.Debug().
		Str("resource", res.Name).
		Str("query", query.String()).
		Int("pages", pages).
		Int("records", len(accumulated)).
		Dur("duration", time.Since(start)).
		Msg("Collection complete")

	return accumulated, nil
}
