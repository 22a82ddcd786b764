package httpx

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// =============================================================================
// PAGINATION STRATEGIES
// =============================================================================

// Paginator handles API pagination.
type Paginator interface {
	// FirstPage returns the initial page request.
	FirstPage() *Request

	// NextPage returns the request for the next page, or nil if done.
	NextPage(ctx context.Context, resp *Response) (*Request, error)
}

// =============================================================================
// PAGE-NUMBER PAGINATION
// =============================================================================

// PagePaginator walks numbered pages (page=1..total_pages). Used by the
// TMDB discover endpoint.
type PagePaginator struct {
	Path     string
	Query    url.Values
	Page     int    // next page to request (1-based)
	MaxPages int    // hard cap, 0 means no cap
	PageKey  string // query param name (default: "page")
	TotalKey string // JSON key holding total page count (default: "total_pages")
}

// NewPagePaginator creates a page-number paginator starting at page 1.
func NewPagePaginator(path string, query url.Values, maxPages int) *PagePaginator {
	return &PagePaginator{
		Path:     path,
		Query:    query,
		Page:     1,
		MaxPages: maxPages,
		PageKey:  "page",
		TotalKey: "total_pages",
	}
}

// FirstPage returns the request for the current page.
func (p *PagePaginator) FirstPage() *Request {
	query := url.Values{}
	for k, vs := range p.Query {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	query.Set(p.PageKey, strconv.Itoa(p.Page))
	return &Request{Method: "GET", Path: p.Path, Query: query}
}

// NextPage advances past the page just fetched.
func (p *PagePaginator) NextPage(ctx context.Context, resp *Response) (*Request, error) {
	var data map[string]any
	if err := json.Unmarshal(resp.Body, &data); err != nil {
		return nil, err
	}

	totalPages := 0
	if total, ok := data[p.TotalKey].(float64); ok {
		totalPages = int(total)
	}

	p.Page++
	if totalPages > 0 && p.Page > totalPages {
		return nil, nil
	}
	if p.MaxPages > 0 && p.Page > p.MaxPages {
		return nil, nil
	}
	return p.FirstPage(), nil
}

// =============================================================================
// TOKEN PAGINATION
// =============================================================================

// TokenPaginator follows an opaque continuation token returned in each
// response (YouTube style).
type TokenPaginator struct {
	Path     string
	Query    url.Values
	TokenKey string // query param name (default: "pageToken")
	NextKey  string // JSON key holding the next token (default: "nextPageToken")
	token    string
}

// NewTokenPaginator creates a continuation-token paginator.
func NewTokenPaginator(path string, query url.Values) *TokenPaginator {
	return &TokenPaginator{
		Path:     path,
		Query:    query,
		TokenKey: "pageToken",
		NextKey:  "nextPageToken",
	}
}

// FirstPage returns the request for the current token position.
func (p *TokenPaginator) FirstPage() *Request {
	query := url.Values{}
	for k, vs := range p.Query {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	if p.token != "" {
		query.Set(p.TokenKey, p.token)
	}
	return &Request{Method: "GET", Path: p.Path, Query: query}
}

// NextPage extracts the continuation token; an absent token ends the walk.
func (p *TokenPaginator) NextPage(ctx context.Context, resp *Response) (*Request, error) {
	var data map[string]any
	if err := json.Unmarshal(resp.Body, &data); err != nil {
		return nil, err
	}

	next, _ := data[p.NextKey].(string)
	if next == "" {
		return nil, nil
	}
	p.token = next
	return p.FirstPage(), nil
}

// =============================================================================
// OFFSET PAGINATION
// =============================================================================

// OffsetPaginator uses offset/limit pagination (Spotify style).
type OffsetPaginator struct {
	Path      string
	Query     url.Values
	Limit     int
	Offset    int
	OffsetKey string // query param name (default: "offset")
	LimitKey  string // query param name (default: "limit")
	TotalKey  string // JSON key holding the total count (default: "total")
	ItemsKey  string // JSON key holding the items array (default: "items")
	total     int
	fetched   int
}

// NewOffsetPaginator creates an offset-based paginator.
func NewOffsetPaginator(path string, query url.Values, limit int) *OffsetPaginator {
	return &OffsetPaginator{
		Path:      path,
		Query:     query,
		Limit:     limit,
		OffsetKey: "offset",
		LimitKey:  "limit",
		TotalKey:  "total",
		ItemsKey:  "items",
	}
}

// FirstPage returns the request for the current offset.
func (p *OffsetPaginator) FirstPage() *Request {
	query := url.Values{}
	for k, vs := range p.Query {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	query.Set(p.OffsetKey, strconv.Itoa(p.Offset))
	query.Set(p.LimitKey, strconv.Itoa(p.Limit))
	return &Request{Method: "GET", Path: p.Path, Query: query}
}

// NextPage advances the offset by the number of items just returned.
func (p *OffsetPaginator) NextPage(ctx context.Context, resp *Response) (*Request, error) {
	var data map[string]any
	if err := json.Unmarshal(resp.Body, &data); err != nil {
		return nil, err
	}

	if total, ok := data[p.TotalKey].(float64); ok {
		p.total = int(total)
	}
	if items, ok := data[p.ItemsKey].([]any); ok {
		p.fetched += len(items)
		if len(items) == 0 {
			return nil, nil
		}
	}

	if p.total > 0 && p.fetched >= p.total {
		return nil, nil
	}
	p.Offset = p.fetched
	return p.FirstPage(), nil
}
