package cache

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func pageResponse(body string, header http.Header) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestResponseToEntry_PageWithValidators(t *testing.T) {
	lastMod := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	body := `{"data":[{"protein1":"APOB","protein2":"MTTP"}],"totalPages":4}`
	resp := pageResponse(body, http.Header{
		"Etag":          []string{`"p1-v7"`},
		"Last-Modified": []string{lastMod.Format(http.TimeFormat)},
		"Cache-Control": []string{"max-age=300"},
		"Content-Type":  []string{"application/json"},
	})

	entry, err := ResponseToEntry(resp)
	if err != nil {
		t.Fatalf("ResponseToEntry() error = %v", err)
	}

	if string(entry.Data) != body {
		t.Errorf("Data = %s, want page body", entry.Data)
	}
	if entry.ETag != `"p1-v7"` {
		t.Errorf("ETag = %q", entry.ETag)
	}
	if !entry.LastModified.Equal(lastMod) {
		t.Errorf("LastModified = %v, want %v", entry.LastModified, lastMod)
	}
	if ttl := entry.TTL(); ttl < 295*time.Second || ttl > 300*time.Second {
		t.Errorf("TTL = %v, want about max-age=300", ttl)
	}

	// The caller still decodes the page after caching it.
	restored, _ := io.ReadAll(resp.Body)
	if string(restored) != body {
		t.Errorf("restored body = %s", restored)
	}
}

func TestResponseToEntry_UnpagedWithoutValidators(t *testing.T) {
	entry, err := ResponseToEntry(pageResponse(`[{"gene_name":"ALB","liver":"12000.5"}]`, http.Header{}))
	if err != nil {
		t.Fatalf("ResponseToEntry() error = %v", err)
	}
	if ShouldMakeConditionalRequest(entry) {
		t.Error("entry without ETag or Last-Modified should not revalidate")
	}
	if ttl := entry.TTL(); ttl < DefaultTTL-2*time.Second {
		t.Errorf("TTL = %v, want DefaultTTL", ttl)
	}
}

func TestResponseToEntry_Nil(t *testing.T) {
	if _, err := ResponseToEntry(nil); err == nil {
		t.Error("ResponseToEntry(nil) should fail")
	}
}

func TestParseExpires(t *testing.T) {
	now := time.Now()
	future := now.Add(1 * time.Hour)
	past := now.Add(-1 * time.Hour)

	tests := []struct {
		name    string
		headers http.Header
		want    time.Time
	}{
		{"expires header", http.Header{"Expires": []string{future.Format(http.TimeFormat)}}, future},
		{"no freshness info", http.Header{}, now.Add(DefaultTTL)},
		{"unparseable expires", http.Header{"Expires": []string{"not a valid date"}}, now.Add(DefaultTTL)},
		{"expires in the past", http.Header{"Expires": []string{past.Format(http.TimeFormat)}}, now},
		{"max-age wins over expires", http.Header{
			"Cache-Control": []string{"public, max-age=120"},
			"Expires":       []string{future.Format(http.TimeFormat)},
		}, now.Add(2 * time.Minute)},
		{"no-store", http.Header{"Cache-Control": []string{"no-store"}}, now},
		{"malformed max-age falls through", http.Header{"Cache-Control": []string{"max-age=abc"}}, now.Add(DefaultTTL)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FreshUntil(tt.headers)
			if diff := got.Sub(tt.want); diff < -2*time.Second || diff > 2*time.Second {
				t.Errorf("FreshUntil() = %v, want about %v (diff %v)", got, tt.want, diff)
			}
		})
	}
}

func TestEntryToResponse(t *testing.T) {
	entry := &CacheEntry{
		Data:    []byte(`{"data":[],"totalPages":0}`),
		Headers: http.Header{"Content-Type": []string{"application/json"}},
	}

	resp := EntryToResponse(entry)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200 for an entry without status", resp.StatusCode)
	}
	if resp.Header.Get("X-Cache") != "HIT" {
		t.Errorf("X-Cache = %q, want HIT", resp.Header.Get("X-Cache"))
	}
	if entry.Headers.Get("X-Cache") != "" {
		t.Error("EntryToResponse modified the cached headers")
	}

	body, _ := io.ReadAll(resp.Body)
	if string(body) != string(entry.Data) {
		t.Errorf("body = %s, want %s", body, entry.Data)
	}
	if resp.ContentLength != int64(len(entry.Data)) {
		t.Errorf("ContentLength = %d, want %d", resp.ContentLength, len(entry.Data))
	}
}

func TestConditionalHeaders(t *testing.T) {
	lastMod := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		entry       *CacheEntry
		conditional bool
		ifNoneMatch string
		ifModSince  string
	}{
		{"nil entry", nil, false, "", ""},
		{"no validators", &CacheEntry{Data: []byte("[]")}, false, "", ""},
		{"etag", &CacheEntry{ETag: `"abc123"`}, true, `"abc123"`, ""},
		{"last-modified", &CacheEntry{LastModified: lastMod}, true, "", "Wed, 01 Jan 2025 12:00:00 GMT"},
		{"etag preferred", &CacheEntry{ETag: `"abc123"`, LastModified: lastMod}, true, `"abc123"`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldMakeConditionalRequest(tt.entry); got != tt.conditional {
				t.Errorf("ShouldMakeConditionalRequest() = %v, want %v", got, tt.conditional)
			}

			req, _ := http.NewRequest(http.MethodGet, "http://hepatodb.test/api/drugs?disease=DILI", nil)
			AddConditionalHeaders(req, tt.entry)

			if got := req.Header.Get("If-None-Match"); got != tt.ifNoneMatch {
				t.Errorf("If-None-Match = %q, want %q", got, tt.ifNoneMatch)
			}
			if got := req.Header.Get("If-Modified-Since"); got != tt.ifModSince {
				t.Errorf("If-Modified-Since = %q, want %q", got, tt.ifModSince)
			}
		})
	}

	// Nil request or header map must not panic.
	AddConditionalHeaders(nil, &CacheEntry{ETag: `"x"`})
	AddConditionalHeaders(&http.Request{}, &CacheEntry{ETag: `"x"`})
}
