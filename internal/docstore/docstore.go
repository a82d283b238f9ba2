// Package docstore defines the collection-scoped document store the
// platform runs against, plus two engines: an in-memory one used by tests
// and a Postgres JSONB one used in production.
//
// Each operation on a single document is atomic. Nothing here spans
// documents: protocols that touch two collections are sequences of
// independent writes with no all-or-nothing guarantee.
package docstore

import (
	"context"
	"errors"
)

// Document is a decoded JSON document. Values use the canonical JSON types
// (float64, string, bool, []any, map[string]any, nil).
type Document = map[string]any

// Filter selects documents. Plain values match by equality (an array field
// matches when it contains the value). Values may instead be operator maps:
//
//	Filter{"_id": 7}
//	Filter{"_id": In(1, 2, 3)}
//	Filter{"title": Regex("hello")}
//	Filter{"comment.userUserName": "alice"}
//	Filter{"$or": []Filter{{"title": Regex(kw)}, {"content": Regex(kw)}}}
//
// Dotted keys descend into nested documents and fan out across arrays.
type Filter map[string]any

// Update is a partial mutation keyed by operator: "$set", "$push",
// "$addToSet" and "$pull", each mapping field paths to values.
type Update map[string]any

// SortField orders results by one dotted field path.
type SortField struct {
	Key  string
	Desc bool
}

// FindOptions carries sort/skip/limit for Find. Zero Limit means no limit.
type FindOptions struct {
	Sort  []SortField
	Skip  int
	Limit int
}

// ErrNoDocuments is returned by FindOne, UpdateOne, ReplaceOne and
// DeleteOne when no document matches the filter.
var ErrNoDocuments = errors.New("docstore: no matching document")

// Collection is a handle on one named collection.
type Collection interface {
	FindOne(ctx context.Context, filter Filter) (Document, error)
	Find(ctx context.Context, filter Filter, opts *FindOptions) ([]Document, error)
	InsertOne(ctx context.Context, doc Document) error
	UpdateOne(ctx context.Context, filter Filter, update Update) error
	UpdateMany(ctx context.Context, filter Filter, update Update) (int, error)
	ReplaceOne(ctx context.Context, filter Filter, doc Document) error
	DeleteOne(ctx context.Context, filter Filter) error
}

// In matches when the field (or any element of an array field) equals one
// of the given values.
func In[T any](values ...T) map[string]any {
	list := make([]any, len(values))
	for i, v := range values {
		list[i] = v
	}
	return map[string]any{"$in": list}
}

// NotIn is the negation of In.
func NotIn[T any](values ...T) map[string]any {
	list := make([]any, len(values))
	for i, v := range values {
		list[i] = v
	}
	return map[string]any{"$nin": list}
}

// Regex matches string fields against the pattern. A pattern that fails to
// compile falls back to a literal substring match.
func Regex(pattern string) map[string]any {
	return map[string]any{"$regex": pattern}
}
