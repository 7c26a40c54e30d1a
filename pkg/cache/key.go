package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// KeyPrefix namespaces every key written to Redis.
const KeyPrefix = "hepato"

// CacheKey identifies a cached API response.
type CacheKey struct {
	// Endpoint is the collection path (e.g. "/protein-interaction")
	Endpoint string

	// QueryParams are the request parameters, paging included
	QueryParams url.Values
}

// String generates a deterministic key. Parameter names and values are
// query-escaped so they cannot forge separators.
// Format: hepato:<endpoint>:<param>=<v1,v2>:...
//
// Example:
//
//	hepato:protein-interaction:disease=NAFLD:limit=10:page=2
func (k CacheKey) String() string {
	parts := []string{KeyPrefix}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	if len(k.QueryParams) > 0 {
		queryKeys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			values := make([]string, 0, len(k.QueryParams[key]))
			for _, v := range k.QueryParams[key] {
				values = append(values, url.QueryEscape(v))
			}
			sort.Strings(values)
			parts = append(parts, fmt.Sprintf("%s=%s", url.QueryEscape(key), strings.Join(values, ",")))
		}
	}

	return strings.Join(parts, ":")
}
