// Package screen holds the per-screen search state of a dashboard session.
// Each Screen owns its state: a new search cancels the one in flight and only
// the latest search may write the result.
package screen

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Sternrassler/hepatodb-client/pkg/record"
	"github.com/Sternrassler/hepatodb-client/pkg/resource"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNoInput is returned when a required search term is blank. No
	// request is made.
	ErrNoInput = errors.New("no input provided")

	// ErrSuperseded is returned by a search whose result was discarded
	// because a newer search started.
	ErrSuperseded = errors.New("search superseded")
)

var searchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "hepato_screen_searches_total",
	Help: "Screen searches by resource and outcome",
}, []string{"resource", "outcome"})

// Source fetches records and autocomplete options.
type Source interface {
	Collect(ctx context.Context, res resource.Resource, query resource.Query) ([]record.Record, error)
	Options(ctx context.Context, res resource.Resource) (map[string][]string, error)
}

// Screen is the isolated state of one resource view. Safe for concurrent use.
type Screen struct {
	res    resource.Resource
	src    Source
	logger zerolog.Logger

	mu      sync.Mutex
	state   State
	options map[string][]string
	gen     uint64
	cancel  context.CancelFunc
}

// New creates an idle screen for res.
func New(res resource.Resource, src Source) *Screen {
	return &Screen{
		res:    res,
		src:    src,
		logger: log.With().Str("component", "screen").Str("resource", res.Name).Logger(),
		state: State{
			Resource:  res.Name,
			Status:    StatusIdle,
			UpdatedAt: time.Now(),
		},
		options: map[string][]string{},
	}
}

// Resource returns the resource the screen shows.
func (s *Screen) Resource() resource.Resource {
	return s.res
}

// State returns a copy of the current state.
func (s *Screen) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Options returns a copy of the loaded autocomplete options.
func (s *Screen) Options() map[string][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]string, len(s.options))
	for k, v := range s.options {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// LoadOptions fetches the autocomplete options. A failure leaves the previous
// options in place and does not touch the search state.
func (s *Screen) LoadOptions(ctx context.Context) error {
	opts, err := s.src.Options(ctx, s.res)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to load options")
		return err
	}

	s.mu.Lock()
	s.options = opts
	s.mu.Unlock()
	return nil
}

// Search runs query against the resource and records the outcome. A blank
// required term fails with ErrNoInput before any request. Starting a search
// cancels the previous one; a search overtaken this way returns ErrSuperseded
// and leaves the state alone.
func (s *Screen) Search(ctx context.Context, query resource.Query) (State, error) {
	query = query.Restrict(s.res)

	s.mu.Lock()
	s.gen++
	gen := s.gen
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	if s.res.Required != "" && query.IsBlank(s.res.Required) {
		s.state = State{
			Resource:   s.res.Name,
			Status:     StatusError,
			Query:      query,
			Message:    s.res.NoInputMessage,
			Generation: gen,
			UpdatedAt:  time.Now(),
		}
		out := s.state.clone()
		s.mu.Unlock()

		searchesTotal.WithLabelValues(s.res.Name, "no_input").Inc()
		return out, fmt.Errorf("%w: %s", ErrNoInput, s.res.Required)
	}

	searchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.cancel = cancel
	s.state = State{
		Resource:   s.res.Name,
		Status:     StatusLoading,
		Query:      query,
		Generation: gen,
		UpdatedAt:  time.Now(),
	}
	s.mu.Unlock()

	s.logger.Debug().
		Uint64("generation", gen).
		Str("query", query.String()).
		Msg("Search started")

	records, err := s.src.Collect(searchCtx, s.res, query)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		searchesTotal.WithLabelValues(s.res.Name, "superseded").Inc()
		s.logger.Debug().Uint64("generation", gen).Msg("Discarding superseded search")
		return s.state.clone(), ErrSuperseded
	}
	s.cancel = nil

	next := State{
		Resource:   s.res.Name,
		Query:      query,
		Generation: gen,
		UpdatedAt:  time.Now(),
	}

	switch {
	case err != nil:
		next.Status = StatusError
		next.Message = FailureMessage
		s.logger.Error().Err(err).Str("query", query.String()).Msg("Search failed")
	case len(records) == 0:
		next.Status = StatusEmpty
		next.Message = s.res.EmptyMessage
	default:
		next.Status = StatusResults
		next.Records = records
	}

	s.state = next
	searchesTotal.WithLabelValues(s.res.Name, string(next.Status)).Inc()

	return next.clone(), err
}

// Cancel aborts the search in flight, if any, and returns the screen to idle.
func (s *Screen) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.state = State{
		Resource:   s.res.Name,
		Status:     StatusIdle,
		Generation: s.gen,
		UpdatedAt:  time.Now(),
	}
}
