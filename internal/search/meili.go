package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	meili "github.com/meilisearch/meilisearch-go"
)

const (
	idxPosts    = "inkwell_posts"
	idxTags     = "inkwell_tags"
	idxAccounts = "inkwell_accounts"
)

// Meili implements Searcher via Meilisearch.
type Meili struct {
	client  meili.ServiceManager
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili creates a Meilisearch client and configures indexes. An
// unreachable server is tolerated; the health loop keeps probing and the
// facade falls back to the scan backend until it recovers.
func NewMeili(url, apiKey string) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Meili{
		client: client,
		done:   make(chan struct{}),
	}

	if _, err := client.Health(); err != nil {
		log.Printf("search: meilisearch unavailable at %s: %v", url, err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndexes()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndexes() {
	indexes := []struct {
		uid        string
		primaryKey string
		searchable []string
	}{
		{
			uid:        idxPosts,
			primaryKey: "slug",
			searchable: []string{"title", "author"},
		},
		{
			uid:        idxTags,
			primaryKey: "value",
			searchable: []string{"value", "desc"},
		},
		{
			uid:        idxAccounts,
			primaryKey: "username",
			searchable: []string{"username", "name"},
		},
	}

	for _, idx := range indexes {
		if _, err := m.client.CreateIndex(&meili.IndexConfig{
			Uid:        idx.uid,
			PrimaryKey: idx.primaryKey,
		}); err != nil {
			log.Printf("search: create index %s (may already exist): %v", idx.uid, err)
		}

		index := m.client.Index(idx.uid)
		if _, err := index.UpdateSearchableAttributes(&idx.searchable); err != nil {
			log.Printf("search: update searchable attrs for %s: %v", idx.uid, err)
		}
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				log.Println("search: meilisearch recovered, reconfiguring indexes")
				m.configureIndexes()
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

// Healthy reports whether Meilisearch is reachable.
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

// Search queries all three indexes (or a filtered subset) and merges results.
func (m *Meili) Search(ctx context.Context, q Query) ([]Result, int, error) {
	if !m.healthy.Load() {
		return nil, 0, fmt.Errorf("meilisearch unhealthy")
	}

	limit := int64(q.Limit)
	if limit == 0 {
		limit = 20
	}

	var queries []*meili.SearchRequest
	targetIndexes := []struct {
		uid  string
		rtyp ResultType
	}{
		{idxPosts, ResultPost},
		{idxTags, ResultTag},
		{idxAccounts, ResultAccount},
	}

	for _, ti := range targetIndexes {
		if q.FilterType != "" && q.FilterType != ti.rtyp {
			continue
		}
		queries = append(queries, &meili.SearchRequest{
			IndexUID:              ti.uid,
			Query:                 q.Text,
			Limit:                 limit,
			AttributesToHighlight: []string{"*"},
			HighlightPreTag:       "<mark>",
			HighlightPostTag:      "</mark>",
		})
	}

	if len(queries) == 0 {
		return nil, 0, nil
	}

	resp, err := m.client.MultiSearchWithContext(ctx, &meili.MultiSearchRequest{
		Queries: queries,
	})
	if err != nil {
		m.healthy.Store(false)
		return nil, 0, fmt.Errorf("meilisearch multi-search: %w", err)
	}

	var results []Result
	total := 0
	for _, sr := range resp.Results {
		total += int(sr.EstimatedTotalHits)
		rtyp := indexToResultType(sr.IndexUID)
		for _, hit := range sr.Hits {
			results = append(results, hitToResult(hit, rtyp))
		}
	}

	return results, total, nil
}

func indexToResultType(uid string) ResultType {
	switch uid {
	case idxPosts:
		return ResultPost
	case idxTags:
		return ResultTag
	case idxAccounts:
		return ResultAccount
	default:
		return ""
	}
}

func hitToResult(hit meili.Hit, rtyp ResultType) Result {
	r := Result{Type: rtyp}
	switch rtyp {
	case ResultPost:
		r.ID = decodeString(hit, "slug")
		r.Title = firstNonBlank(decodeFormattedString(hit, "title"), decodeString(hit, "title"))
		r.Snippet = decodeString(hit, "author")
	case ResultTag:
		r.ID = decodeString(hit, "value")
		r.Title = firstNonBlank(decodeFormattedString(hit, "value"), decodeString(hit, "value"))
		r.Snippet = firstNonBlank(decodeFormattedString(hit, "desc"), decodeString(hit, "desc"))
	case ResultAccount:
		r.ID = decodeString(hit, "username")
		r.Title = firstNonBlank(decodeFormattedString(hit, "username"), decodeString(hit, "username"))
		r.Snippet = decodeString(hit, "name")
	}
	return r
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func decodeFormattedString(hit meili.Hit, key string) string {
	raw, ok := hit["_formatted"]
	if !ok {
		return ""
	}
	var formatted map[string]string
	if err := json.Unmarshal(raw, &formatted); err != nil {
		return ""
	}
	return strings.TrimSpace(formatted[key])
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

// IndexPost adds or updates a post in the suggestion index.
func (m *Meili) IndexPost(rec PostRecord) error {
	_, err := m.client.Index(idxPosts).AddDocuments([]PostRecord{rec}, nil)
	return err
}

// IndexTag adds or updates a tag in the suggestion index.
func (m *Meili) IndexTag(rec TagRecord) error {
	_, err := m.client.Index(idxTags).AddDocuments([]TagRecord{rec}, nil)
	return err
}

// IndexAccount adds or updates an account in the suggestion index.
func (m *Meili) IndexAccount(rec AccountRecord) error {
	_, err := m.client.Index(idxAccounts).AddDocuments([]AccountRecord{rec}, nil)
	return err
}

// DeletePost removes a post from the suggestion index.
func (m *Meili) DeletePost(slug string) error {
	_, err := m.client.Index(idxPosts).DeleteDocument(slug, nil)
	return err
}

// IndexPosts bulk-indexes posts.
func (m *Meili) IndexPosts(records []PostRecord) error {
	if len(records) == 0 {
		return nil
	}
	_, err := m.client.Index(idxPosts).AddDocuments(records, nil)
	return err
}

// IndexTags bulk-indexes tags.
func (m *Meili) IndexTags(records []TagRecord) error {
	if len(records) == 0 {
		return nil
	}
	_, err := m.client.Index(idxTags).AddDocuments(records, nil)
	return err
}

// IndexAccounts bulk-indexes accounts.
func (m *Meili) IndexAccounts(records []AccountRecord) error {
	if len(records) == 0 {
		return nil
	}
	_, err := m.client.Index(idxAccounts).AddDocuments(records, nil)
	return err
}
