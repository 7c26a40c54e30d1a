package screen

import (
	"time"

	"github.com/Sternrassler/hepatodb-client/pkg/record"
	"github.com/Sternrassler/hepatodb-client/pkg/resource"
)

// Status is what a screen currently shows. Error, Empty and Results are
// mutually exclusive.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusError   Status = "error"
	StatusEmpty   Status = "empty"
	StatusResults Status = "results"
)

// FailureMessage is shown for every failed fetch.
const FailureMessage = "Error fetching data. Please try again."

// State is a snapshot of a screen.
type State struct {
	Resource   string          `json:"resource"`
	Status     Status          `json:"status"`
	Query      resource.Query  `json:"query,omitempty"`
	Message    string          `json:"message,omitempty"`
	Records    []record.Record `json:"-"`
	Generation uint64          `json:"generation"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// Rows renders the records with absent fields as the "null" sentinel.
func (s State) Rows() []map[string]string {
	return record.Render(s.Records)
}

// Count returns the number of records shown.
func (s State) Count() int {
	return len(s.Records)
}

func (s State) clone() State {
	out := s
	if s.Query != nil {
		out.Query = make(resource.Query, len(s.Query))
		for k, v := range s.Query {
			out.Query[k] = v
		}
	}
	if s.Records != nil {
		out.Records = make([]record.Record, len(s.Records))
		copy(out.Records, s.Records)
	}
	return out
}
