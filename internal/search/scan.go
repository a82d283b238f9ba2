package search

import (
	"context"
	"fmt"
	"regexp"

	"inkwell/api/internal/docstore"
)

// Scan is the fallback Searcher. It runs substring matches directly
// against the document store, so it is always available and always
// consistent with the data, just slower than the index.
type Scan struct {
	posts    docstore.Collection
	tags     docstore.Collection
	accounts docstore.Collection
}

func NewScan(posts, tags, accounts docstore.Collection) *Scan {
	return &Scan{posts: posts, tags: tags, accounts: accounts}
}

// Healthy always reports true; the store is the source of truth.
func (s *Scan) Healthy() bool {
	return true
}

// Search substring-matches the query against each entity kind.
func (s *Scan) Search(ctx context.Context, q Query) ([]Result, int, error) {
	limit := q.Limit
	if limit == 0 {
		limit = 20
	}
	pattern := "(?i)" + regexp.QuoteMeta(q.Text)
	opts := &docstore.FindOptions{Limit: limit}

	var results []Result

	if q.FilterType == "" || q.FilterType == ResultPost {
		docs, err := s.posts.Find(ctx, docstore.Filter{
			"$and": []docstore.Filter{
				{"$or": []docstore.Filter{
					{"title": docstore.Regex(pattern)},
					{"userUserName": docstore.Regex(pattern)},
				}},
				{"status": "Published"},
			},
		}, opts)
		if err != nil {
			return nil, 0, fmt.Errorf("scan posts: %w", err)
		}
		for _, doc := range docs {
			results = append(results, Result{
				Type:    ResultPost,
				ID:      docString(doc, "slug"),
				Title:   docString(doc, "title"),
				Snippet: docString(doc, "userUserName"),
			})
		}
	}

	if q.FilterType == "" || q.FilterType == ResultTag {
		docs, err := s.tags.Find(ctx, docstore.Filter{
			"$or": []docstore.Filter{
				{"value": docstore.Regex(pattern)},
				{"desc": docstore.Regex(pattern)},
			},
		}, opts)
		if err != nil {
			return nil, 0, fmt.Errorf("scan tags: %w", err)
		}
		for _, doc := range docs {
			results = append(results, Result{
				Type:    ResultTag,
				ID:      docString(doc, "value"),
				Title:   docString(doc, "value"),
				Snippet: docString(doc, "desc"),
			})
		}
	}

	if q.FilterType == "" || q.FilterType == ResultAccount {
		docs, err := s.accounts.Find(ctx, docstore.Filter{
			"$or": []docstore.Filter{
				{"username": docstore.Regex(pattern)},
				{"name": docstore.Regex(pattern)},
			},
		}, opts)
		if err != nil {
			return nil, 0, fmt.Errorf("scan accounts: %w", err)
		}
		for _, doc := range docs {
			results = append(results, Result{
				Type:    ResultAccount,
				ID:      docString(doc, "username"),
				Title:   docString(doc, "username"),
				Snippet: docString(doc, "name"),
			})
		}
	}

	return results, len(results), nil
}

// LoadAllRecords reads every indexable entity for a full reindex.
func (s *Scan) LoadAllRecords(ctx context.Context) ([]PostRecord, []TagRecord, []AccountRecord, error) {
	postDocs, err := s.posts.Find(ctx, docstore.Filter{"status": "Published"}, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load posts: %w", err)
	}
	posts := make([]PostRecord, 0, len(postDocs))
	for _, doc := range postDocs {
		posts = append(posts, PostRecord{
			Slug:   docString(doc, "slug"),
			Title:  docString(doc, "title"),
			Author: docString(doc, "userUserName"),
		})
	}

	tagDocs, err := s.tags.Find(ctx, docstore.Filter{}, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load tags: %w", err)
	}
	tags := make([]TagRecord, 0, len(tagDocs))
	for _, doc := range tagDocs {
		tags = append(tags, TagRecord{
			Value: docString(doc, "value"),
			Desc:  docString(doc, "desc"),
		})
	}

	accDocs, err := s.accounts.Find(ctx, docstore.Filter{}, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load accounts: %w", err)
	}
	accounts := make([]AccountRecord, 0, len(accDocs))
	for _, doc := range accDocs {
		accounts = append(accounts, AccountRecord{
			Username: docString(doc, "username"),
			Name:     docString(doc, "name"),
		})
	}

	return posts, tags, accounts, nil
}

func docString(doc docstore.Document, key string) string {
	s, _ := doc[key].(string)
	return s
}
