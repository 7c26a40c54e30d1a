// Package testutil provides a mock HepatoDB server for tests.
package testutil

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockResponse defines a canned response for a path.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// Collection is a dataset served by the mock.
type Collection struct {
	Items []map[string]any

	// Paged collections honor page/limit and answer {data, totalPages}.
	// Unpaged ones answer a bare array unless Envelope is set.
	Paged    bool
	Envelope bool

	// FilterFields maps a query parameter to the item field it matches.
	// Parameters not listed match the field of the same name.
	FilterFields map[string]string

	// TotalPages overrides the computed page count when non-nil.
	TotalPages *int

	// FailPages answers the given pages with the mapped status.
	FailPages map[int]int
}

// MockHepatoDB is a configurable mock HepatoDB server.
type MockHepatoDB struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	collections map[string]*Collection
	options     map[string]map[string][]any

	requestCount      int
	conditionalCount  int
	requests          []string
	lastRequestHeader http.Header
}

// NewMockHepatoDB starts a mock server.
func NewMockHepatoDB() *MockHepatoDB {
	mock := &MockHepatoDB{
		handlers:    make(map[string]http.HandlerFunc),
		collections: make(map[string]*Collection),
		options:     make(map[string]map[string][]any),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.requests = append(mock.requests, r.URL.RequestURI())
		mock.lastRequestHeader = r.Header.Clone()
		if r.Header.Get("If-None-Match") != "" || r.Header.Get("If-Modified-Since") != "" {
			mock.conditionalCount++
		}
		handler, custom := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		w.Header().Set("X-RateLimit-Remaining", "100")
		w.Header().Set("X-RateLimit-Reset", "60")

		if custom {
			handler(w, r)
			return
		}
		mock.serve(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockHepatoDB) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockHepatoDB) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockHepatoDB) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.conditionalCount = 0
	m.requests = nil
	m.lastRequestHeader = nil
}

// SetHandler overrides the handling of a path.
func (m *MockHepatoDB) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockHepatoDB) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetCollection serves c at path.
func (m *MockHepatoDB) SetCollection(path string, c Collection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[path] = &c
}

// SetOptions serves values at <path>/unique-values.
func (m *MockHepatoDB) SetOptions(path string, values map[string][]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.options[strings.TrimSuffix(path, "/")+"/unique-values"] = values
}

// RequestCount returns the number of requests made to the server.
func (m *MockHepatoDB) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// ConditionalCount returns the number of conditional requests.
func (m *MockHepatoDB) ConditionalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conditionalCount
}

// Requests returns the request URIs in arrival order.
func (m *MockHepatoDB) Requests() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.requests))
	copy(out, m.requests)
	return out
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockHepatoDB) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRequestHeader.Clone()
}

func (m *MockHepatoDB) serve(w http.ResponseWriter, r *http.Request) {
	m.mu.RLock()
	opts, isOptions := m.options[r.URL.Path]
	coll, isCollection := m.collections[r.URL.Path]
	m.mu.RUnlock()

	switch {
	case isOptions:
		writeJSON(w, r, opts)
	case isCollection:
		m.serveCollection(w, r, coll)
	default:
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	}
}

func (m *MockHepatoDB) serveCollection(w http.ResponseWriter, r *http.Request, c *Collection) {
	q := r.URL.Query()

	items := make([]map[string]any, 0, len(c.Items))
	for _, item := range c.Items {
		if matches(item, q, c.FilterFields) {
			items = append(items, item)
		}
	}

	if !c.Paged {
		if c.Envelope {
			writeJSON(w, r, map[string]any{"data": items})
			return
		}
		writeJSON(w, r, items)
		return
	}

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 10
	}

	if status, ok := c.FailPages[page]; ok {
		http.Error(w, `{"error":"injected failure"}`, status)
		return
	}

	total := (len(items) + limit - 1) / limit
	if c.TotalPages != nil {
		total = *c.TotalPages
	}

	start := min((page-1)*limit, len(items))
	end := min(start+limit, len(items))

	writeJSON(w, r, map[string]any{
		"data":       items[start:end],
		"totalPages": total,
	})
}

func matches(item map[string]any, q map[string][]string, fields map[string]string) bool {
	for param, values := range q {
		if param == "page" || param == "limit" || len(values) == 0 {
			continue
		}
		field := param
		if mapped, ok := fields[param]; ok {
			field = mapped
		}
		got, ok := item[field]
		if !ok {
			return false
		}
		s, _ := got.(string)
		if !strings.EqualFold(s, values[0]) {
			return false
		}
	}
	return true
}

// writeJSON writes v with a content ETag and answers matching
// If-None-Match requests with 304.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sum := sha1.Sum(body)
	etag := `"` + hex.EncodeToString(sum[:8]) + `"`

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "max-age=300")

	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// InteractionItems builds n protein-interaction rows P1..Pn for disease.
func InteractionItems(n int, disease string) []map[string]any {
	items := make([]map[string]any, 0, n)
	for i := 1; i <= n; i++ {
		items = append(items, map[string]any{
			"protein1": "P" + strconv.Itoa(i),
			"protein2": "Q" + strconv.Itoa(i),
			"score":    900 - i,
			"disease":  disease,
		})
	}
	return items
}
