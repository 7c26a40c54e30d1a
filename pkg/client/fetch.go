package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/Sternrassler/hepatodb-client/pkg/pagination"
	"github.com/Sternrassler/hepatodb-client/pkg/record"
	"github.com/Sternrassler/hepatodb-client/pkg/resource"
)

// envelope is the paged response body.
type envelope struct {
	Data       []map[string]any `json:"data"`
	TotalPages int              `json:"totalPages"`
}

// FetchPage requests one page of a collection. Paged collections receive the
// page and limit parameters; unpaged ones are fetched once and report a
// single page. Any non-200 status, transport error or malformed body is an
// error.
func (c *Client) FetchPage(ctx context.Context, res resource.Resource, query resource.Query, page int) (pagination.Page, error) {
	params := query.Restrict(res).Values()
	if res.Paged {
		params.Set("page", strconv.Itoa(page))
		params.Set("limit", strconv.Itoa(resource.DefaultPageSize))
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	body, err := c.getBody(ctx, res.Path, params)
	if err != nil {
		return pagination.Page{}, err
	}

	items, totalPages, err := decodeCollection(body, res.Paged)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return pagination.Page{}, &APIError{
			StatusCode: http.StatusOK,
			ErrorClass: ErrorClassDecode,
			Endpoint:   res.Path,
			Message:    "decode body",
			Err:        err,
		}
	}

	return pagination.Page{
		Number:     page,
		Records:    record.NormalizeAll(res.Fields, items),
		TotalPages: totalPages,
	}, nil
}

// getBody GETs path and returns the body of a 200 response.
func (c *Client) getBody(ctx context.Context, path string, params url.Values) ([]byte, error) {
	resp, err := c.Get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: classifyStatus(resp.StatusCode),
			Endpoint:   path,
			Message:    resp.Status,
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Endpoint:   path,
			Message:    "read body",
			Err:        err,
		}
	}
	return body, nil
}

// decodeCollection accepts {data, totalPages}, {data} or a bare array. A bare
// array or an unpaged collection always counts as one page.
func decodeCollection(body []byte, paged bool) ([]map[string]any, int, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, 0, record.ErrUnexpectedShape
	}

	if trimmed[0] == '[' {
		items, err := record.DecodeItems(trimmed)
		if err != nil {
			return nil, 0, err
		}
		return items, 1, nil
	}

	var env envelope
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&env); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", record.ErrUnexpectedShape, err)
	}

	if !paged {
		return env.Data, 1, nil
	}
	return env.Data, env.TotalPages, nil
}

// Collect fetches every record of res matching query. Paged collections are
// fetched in parallel when MaxConcurrency > 1. All-or-nothing: any failure
// returns nil records and an error matching pagination.ErrFetchFailed.
func (c *Client) Collect(ctx context.Context, res resource.Resource, query resource.Query) ([]record.Record, error) {
	if res.Paged && c.config.MaxConcurrency > 1 {
		bf := pagination.NewBatchFetcher(c, pagination.Config{
			MaxConcurrency: c.config.MaxConcurrency,
			Timeout:        c.config.RequestTimeout,
		})
		return bf.FetchAll(ctx, res, query)
	}
	return pagination.Collect(ctx, c, res, query)
}

// Options fetches the autocomplete suggestions of res, keyed by option key.
// Values are de-duplicated and sorted. Collections without a unique-values
// endpoint yield an empty map.
func (c *Client) Options(ctx context.Context, res resource.Resource) (map[string][]string, error) {
	out := make(map[string][]string, len(res.OptionKeys))
	if !res.HasOptions() {
		return out, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	body, err := c.getBody(ctx, res.UniqueValuesPath(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s options: %w", pagination.ErrFetchFailed, res.Name, err)
	}

	var raw map[string][]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %s options: %w: %v", pagination.ErrFetchFailed, res.Name, record.ErrUnexpectedShape, err)
	}

	for _, key := range res.OptionKeys {
		out[key] = uniqueStrings(raw[key])
	}

	c.logger.Debug().
		Str("resource", res.Name).
		Int("keys", len(out)).
		Msg("Loaded options")

	return out, nil
}

func uniqueStrings(values []any) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		val := record.FromJSON(v)
		if !val.Present() {
			continue
		}
		s := val.String()
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
