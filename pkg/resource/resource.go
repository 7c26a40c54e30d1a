// Package resource describes the HepatoDB collections: where they live, how
// they page, which fields a row has and which filters they accept.
package resource

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// DefaultPageSize is the fixed page size sent as the limit parameter.
const DefaultPageSize = 10

// Filter parameter names accepted by the API.
const (
	FilterName     = "name"
	FilterDisease  = "disease"
	FilterProtein1 = "protein1"
	FilterProtein2 = "protein2"
)

// ErrUnknownResource is returned by Lookup for names outside the catalog.
var ErrUnknownResource = errors.New("unknown resource")

// Resource is a single collection endpoint.
type Resource struct {
	// Name is the catalog key (e.g. "protein-interaction").
	Name string

	// Title is a human readable label.
	Title string

	// Path is the collection path relative to the API base URL.
	Path string

	// Paged collections answer {data, totalPages} and are walked page by page.
	// Unpaged ones return the whole result in one response.
	Paged bool

	// Fields lists the row fields in display order.
	Fields []string

	// Filters lists the query parameters the collection understands.
	Filters []string

	// Required names a filter that must be non-blank before searching.
	Required string

	// OptionKeys are the keys read from the unique-values response.
	OptionKeys []string

	// NoInputMessage and EmptyMessage are the user-facing texts for
	// validation failures and empty results.
	NoInputMessage string
	EmptyMessage   string
}

// UniqueValuesPath returns the path of the autocomplete suggestions endpoint.
func (r Resource) UniqueValuesPath() string {
	return strings.TrimSuffix(r.Path, "/") + "/unique-values"
}

// HasOptions reports whether the collection exposes a unique-values endpoint.
func (r Resource) HasOptions() bool {
	return len(r.OptionKeys) > 0
}

// AcceptsFilter reports whether key is a known filter of this collection.
func (r Resource) AcceptsFilter(key string) bool {
	for _, f := range r.Filters {
		if f == key {
			return true
		}
	}
	return false
}

// Query is a set of optional filter parameters. Blank values mean unfiltered.
type Query map[string]string

// Values converts the query into URL parameters, dropping blank filters.
func (q Query) Values() url.Values {
	v := url.Values{}
	for key, val := range q {
		if strings.TrimSpace(val) == "" {
			continue
		}
		v.Set(key, val)
	}
	return v
}

// Get returns the value of a filter.
func (q Query) Get(key string) string {
	return q[key]
}

// IsBlank reports whether key has no usable value.
func (q Query) IsBlank(key string) bool {
	return strings.TrimSpace(q[key]) == ""
}

// Restrict returns a copy holding only the filters r accepts.
func (q Query) Restrict(r Resource) Query {
	out := make(Query, len(q))
	for key, val := range q {
		if r.AcceptsFilter(key) {
			out[key] = val
		}
	}
	return out
}

// String renders the query deterministically, for logs.
func (q Query) String() string {
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, q[k]))
	}
	return strings.Join(parts, "&")
}
