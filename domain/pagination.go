package domain

import (
	"net/url"
	"strconv"
)

// PaginationConfig carries the default page size; handlers receive it
// explicitly instead of reading global state.
type PaginationConfig struct {
	DefaultLimit int
}

type PageEnvelope struct {
	Count    int         `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// NewPageEnvelope builds the {count,next,previous,results} envelope.
// Count reports the number of items in this page; next/previous links are
// derived from the full result total and keep every query parameter of the
// current request, so following a link never changes the active filters.
func NewPageEnvelope(results interface{}, resultCount, page, limit int, total int64, basePath string, query url.Values) PageEnvelope {
	envelope := PageEnvelope{
		Count:   resultCount,
		Results: results,
	}
	if int64(page*limit) < total {
		next := pageLink(basePath, query, page+1, limit)
		envelope.Next = &next
	}
	if page > 1 {
		previous := pageLink(basePath, query, page-1, limit)
		envelope.Previous = &previous
	}
	return envelope
}

func pageLink(basePath string, query url.Values, page, limit int) string {
	values := url.Values{}
	for key, vs := range query {
		values[key] = vs
	}
	values.Set("page", strconv.Itoa(page))
	values.Set("limit", strconv.Itoa(limit))
	return basePath + "?" + values.Encode()
}
