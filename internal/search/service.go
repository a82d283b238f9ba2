package search

import (
	"context"
	"log"
)

// Service is the facade that tries Meilisearch first and falls back to the
// store scan. It also implements the fire-and-forget index notifications
// the core service emits on writes.
type Service struct {
	meili *Meili
	scan  *Scan
}

// NewService creates a search service. meili may be nil if Meilisearch is
// not configured.
func NewService(meili *Meili, scan *Scan) *Service {
	return &Service{meili: meili, scan: scan}
}

// Search tries Meilisearch if healthy, otherwise falls back to the scan.
func (s *Service) Search(ctx context.Context, q Query) Response {
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(ctx, q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text}
		}
		log.Printf("search: meilisearch error, falling back to scan: %v", err)
	}

	results, total, err := s.scan.Search(ctx, q)
	if err != nil {
		log.Printf("search: scan error: %v", err)
		return Response{Results: []Result{}, Total: 0, Query: q.Text}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text}
}

// IndexPost indexes a post (fire-and-forget to Meilisearch).
func (s *Service) IndexPost(slug, title, author string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexPost(PostRecord{Slug: slug, Title: title, Author: author}); err != nil {
			log.Printf("search: index post %s: %v", slug, err)
		}
	}()
}

// RemovePost removes a post from the index (fire-and-forget).
func (s *Service) RemovePost(slug string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.DeletePost(slug); err != nil {
			log.Printf("search: delete post %s: %v", slug, err)
		}
	}()
}

// IndexTag indexes a tag (fire-and-forget to Meilisearch).
func (s *Service) IndexTag(value, desc string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexTag(TagRecord{Value: value, Desc: desc}); err != nil {
			log.Printf("search: index tag %s: %v", value, err)
		}
	}()
}

// IndexAccount indexes an account (fire-and-forget to Meilisearch).
func (s *Service) IndexAccount(username, name string) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexAccount(AccountRecord{Username: username, Name: name}); err != nil {
			log.Printf("search: index account %s: %v", username, err)
		}
	}()
}

// ReindexAll reads every entity from the store and pushes it to
// Meilisearch. Called at startup when Meilisearch is healthy.
func (s *Service) ReindexAll(ctx context.Context) {
	if s.meili == nil || !s.meili.Healthy() || s.scan == nil {
		return
	}
	posts, tags, accounts, err := s.scan.LoadAllRecords(ctx)
	if err != nil {
		log.Printf("search: reindex load failed: %v", err)
		return
	}
	if err := s.meili.IndexPosts(posts); err != nil {
		log.Printf("search: reindex posts: %v", err)
	}
	if err := s.meili.IndexTags(tags); err != nil {
		log.Printf("search: reindex tags: %v", err)
	}
	if err := s.meili.IndexAccounts(accounts); err != nil {
		log.Printf("search: reindex accounts: %v", err)
	}
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
