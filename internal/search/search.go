// Package search provides the quick-suggestion index over posts, tags and
// accounts. It is an acceleration layer only: the authoritative keyword
// search runs against the document store.
package search

import "context"

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultPost    ResultType = "post"
	ResultTag     ResultType = "tag"
	ResultAccount ResultType = "account"
)

// Result is a single suggestion hit returned to the caller.
type Result struct {
	Type    ResultType `json:"type"`
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Snippet string     `json:"snippet"`
}

// Query describes a suggestion request.
type Query struct {
	Text       string
	FilterType ResultType // empty = all types
	Limit      int
}

// Response is the envelope returned by the suggestion endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a suggestion query.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Result, int, error)
	Healthy() bool
}

// PostRecord is the data we index for a post. The slug is the index key.
type PostRecord struct {
	Slug   string `json:"slug"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// TagRecord is the data we index for a tag.
type TagRecord struct {
	Value string `json:"value"`
	Desc  string `json:"desc"`
}

// AccountRecord is the data we index for an account.
type AccountRecord struct {
	Username string `json:"username"`
	Name     string `json:"name"`
}
