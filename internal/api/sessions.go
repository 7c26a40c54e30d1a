package api

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Sternrassler/hepatodb-client/pkg/screen"
)

// SessionResponse describes a new session.
type SessionResponse struct {
	ID        string    `json:"id" format:"uuid"`
	CreatedAt time.Time `json:"created_at"`
	Screens   []string  `json:"screens"`
}

type SessionOutput struct {
	Body SessionResponse
}

func (s *Server) createSession(ctx context.Context, input *struct{}) (*SessionOutput, error) {
	sess := s.sessions.Create()

	names := make([]string, 0, len(sess.Screens()))
	for name := range sess.Screens() {
		names = append(names, name)
	}
	sort.Strings(names)

	s.logger.Debug().Str("session", sess.ID).Int("sessions", s.sessions.Len()).Msg("Session created")
	return &SessionOutput{Body: SessionResponse{ID: sess.ID, CreatedAt: sess.CreatedAt, Screens: names}}, nil
}

type sessionInput struct {
	ID string `path:"id"`
}

func (s *Server) deleteSession(ctx context.Context, input *sessionInput) (*struct{}, error) {
	if _, err := s.sessions.Get(input.ID); err != nil {
		return nil, huma.Error404NotFound(err.Error())
	}
	s.sessions.Delete(input.ID)
	return nil, nil
}

type screenInput struct {
	ID       string `path:"id"`
	Resource string `path:"resource" example:"tpm"`
}

// ScreenResponse is the visible state of a screen. Status is one of idle,
// loading, error, empty or results; Message carries the validation, failure
// or no-data text.
type ScreenResponse struct {
	Resource   string              `json:"resource"`
	Status     screen.Status       `json:"status" enum:"idle,loading,error,empty,results"`
	Query      map[string]string   `json:"query,omitempty"`
	Message    string              `json:"message,omitempty"`
	Generation uint64              `json:"generation"`
	UpdatedAt  time.Time           `json:"updated_at"`
	Count      int                 `json:"count"`
	Rows       []map[string]string `json:"rows"`
	Options    map[string][]string `json:"options"`
}

type ScreenOutput struct {
	Body ScreenResponse
}

func screenResponse(sc *screen.Screen, st screen.State) ScreenResponse {
	rows := st.Rows()
	if rows == nil {
		rows = []map[string]string{}
	}
	return ScreenResponse{
		Resource:   st.Resource,
		Status:     st.Status,
		Query:      st.Query,
		Message:    st.Message,
		Generation: st.Generation,
		UpdatedAt:  st.UpdatedAt,
		Count:      st.Count(),
		Rows:       rows,
		Options:    sc.Options(),
	}
}

func (s *Server) lookupScreen(id, name string) (*screen.Screen, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, huma.Error404NotFound(err.Error())
	}
	sc, err := sess.Screen(name)
	if err != nil {
		return nil, huma.Error404NotFound(err.Error())
	}
	return sc, nil
}

func (s *Server) getScreen(ctx context.Context, input *screenInput) (*ScreenOutput, error) {
	sc, err := s.lookupScreen(input.ID, input.Resource)
	if err != nil {
		return nil, err
	}
	return &ScreenOutput{Body: screenResponse(sc, sc.State())}, nil
}

// SearchRequest carries the search terms. Terms the resource does not filter
// on are ignored.
type SearchRequest struct {
	Name     string `json:"name,omitempty" doc:"gene name (tpm)"`
	Disease  string `json:"disease,omitempty"`
	Protein1 string `json:"protein1,omitempty"`
	Protein2 string `json:"protein2,omitempty"`
}

type searchInput struct {
	ID       string `path:"id"`
	Resource string `path:"resource" example:"metabolites"`
	Body     SearchRequest
}

// searchScreen runs a search and answers with the resulting screen state.
// Validation and fetch failures are screen states, not HTTP errors; a search
// overtaken by a newer one on the same screen answers 409.
func (s *Server) searchScreen(ctx context.Context, input *searchInput) (*ScreenOutput, error) {
	sc, err := s.lookupScreen(input.ID, input.Resource)
	if err != nil {
		return nil, err
	}

	q := queryOf(input.Body.Name, input.Body.Disease, input.Body.Protein1, input.Body.Protein2)
	st, err := sc.Search(ctx, q)
	switch {
	case errors.Is(err, screen.ErrSuperseded):
		return nil, huma.Error409Conflict("search superseded by a newer search on this screen")
	case err != nil && ctx.Err() != nil:
		return nil, huma.Error503ServiceUnavailable("search cancelled")
	}
	return &ScreenOutput{Body: screenResponse(sc, st)}, nil
}

// loadScreenOptions refreshes the autocomplete options of a screen. A failed
// load keeps the previous options.
func (s *Server) loadScreenOptions(ctx context.Context, input *screenInput) (*ScreenOutput, error) {
	sc, err := s.lookupScreen(input.ID, input.Resource)
	if err != nil {
		return nil, err
	}
	if err := sc.LoadOptions(ctx); err != nil {
		return nil, huma.Error502BadGateway(screen.FailureMessage)
	}
	return &ScreenOutput{Body: screenResponse(sc, sc.State())}, nil
}
