// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// the caller identity, path IDs, pagination and JSON bodies.

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

	"dompet/internal/core"
)

// UserIDHeader carries the authenticated user, set by the fronting gateway.
const UserIDHeader = "X-User-ID"

const (
	maxBodyBytes = 64 << 10
	maxPerPage   = 100
)

var (
	errMissingUser = errors.New("missing or invalid " + UserIDHeader + " header")
	errInvalidID   = errors.New("invalid id")
)

// ParseUserID returns the positive user ID from the X-User-ID header.
func ParseUserID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.Header.Get(UserIDHeader)), 10, 64)
	if err != nil || id <= 0 {
		return 0, errMissingUser
	}
	return id, nil
}

// ParsePathID returns the positive int64 path value called name.
func ParsePathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// PageParams holds the 1-based page and page size from the query string.
type PageParams struct {
	Page    int
	PerPage int
}

// ParsePageParams reads ?page and ?per_page. Invalid values fall back to the
// first page and the endpoint's default size.
func ParsePageParams(query url.Values, defaultPerPage int) PageParams {
	params := PageParams{Page: 1, PerPage: defaultPerPage}

	if v := strings.TrimSpace(query.Get("page")); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			params.Page = p
		}
	}
	if v := strings.TrimSpace(query.Get("per_page")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			params.PerPage = min(n, maxPerPage)
		}
	}

	return params
}

// CorePage converts the parameters to a storage page.
func (p PageParams) CorePage() core.Page {
	return core.Page{Limit: p.PerPage, Offset: (p.Page - 1) * p.PerPage}
}

// Meta returns the response pagination metadata.
func (p PageParams) Meta() PageMeta {
	return PageMeta{Page: p.Page, PerPage: p.PerPage}
}

// ErrEmptyBody is returned by DecodeJSON when the request has no body.
var ErrEmptyBody = errors.New("request body is empty")

// DecodeJSON reads a single JSON object from the body into v. Unknown fields
// and trailing data are rejected.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("malformed JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// sanitizeInput removes control characters other than tab and newlines and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
