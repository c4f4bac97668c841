package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

// maxBodyBytes bounds request bodies; transaction payloads are tiny.
const maxBodyBytes = 1 << 20

// parseFilter builds filter criteria from list query parameters.
// Malformed values degrade to their defaults rather than erroring, so a
// bad page number never breaks the listing.
func parseFilter(r *http.Request) core.Filter {
	q := r.URL.Query()

	f := core.Filter{
		Type:     strings.TrimSpace(q.Get("type")),
		Category: strings.TrimSpace(q.Get("category")),
	}

	if v := strings.TrimSpace(q.Get("startDate")); v != "" {
		if t, err := time.Parse(core.DateLayout, v); err == nil {
			f.StartDate = t
		}
	}
	if v := strings.TrimSpace(q.Get("endDate")); v != "" {
		if t, err := time.Parse(core.DateLayout, v); err == nil {
			f.EndDate = t
		}
	}
	if v := strings.TrimSpace(q.Get("page")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Page = n
		}
	}
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Limit = n
		}
	}

	return f
}

// filterCacheKey produces a canonical key for a normalized filter so
// equivalent list requests share a cache entry.
func filterCacheKey(f core.Filter) string {
	v := url.Values{}
	if f.Type != "" {
		v.Set("type", strings.ToLower(f.Type))
	}
	if f.Category != "" {
		v.Set("category", strings.ToLower(f.Category))
	}
	if !f.StartDate.IsZero() {
		v.Set("startDate", f.StartDate.Format(time.RFC3339))
	}
	if !f.EndDate.IsZero() {
		v.Set("endDate", f.EndDate.Format(time.RFC3339))
	}
	v.Set("page", strconv.Itoa(f.Page))
	v.Set("limit", strconv.Itoa(f.Limit))
	return v.Encode()
}

// decodeInput reads a JSON transaction payload from the request body.
func decodeInput(r *http.Request) (core.Input, error) {
	var in core.Input

	body := http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	defer func() { _ = body.Close() }()

	dec := json.NewDecoder(body)
	if err := dec.Decode(&in); err != nil {
		return core.Input{}, fmt.Errorf("decode request body: %w", err)
	}
	// Reject trailing garbage after the JSON object.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return core.Input{}, errors.New("decode request body: unexpected trailing data")
	}

	return in, nil
}
