package search

import (
	"context"
	"testing"

	"inkwell/api/internal/docstore"
)

func setupScan(t *testing.T) *Scan {
	t.Helper()
	mem := docstore.NewMemory()
	posts := mem.Collection("posts")
	tags := mem.Collection("tags")
	accounts := mem.Collection("accounts")
	ctx := context.Background()

	seed := []struct {
		col docstore.Collection
		doc docstore.Document
	}{
		{posts, docstore.Document{"_id": 1, "slug": "go-tips-abc", "title": "Go tips", "userUserName": "alice", "status": "Published"}},
		{posts, docstore.Document{"_id": 2, "slug": "hidden-draft", "title": "Go secrets", "userUserName": "alice", "status": "Draft"}},
		{tags, docstore.Document{"_id": 1, "value": "golang", "desc": "the Go language"}},
		{accounts, docstore.Document{"_id": 1, "username": "gopher", "name": "Gopher Gal"}},
	}
	for _, s := range seed {
		if err := s.col.InsertOne(ctx, s.doc); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return NewScan(posts, tags, accounts)
}

func TestScanSearchAllTypes(t *testing.T) {
	scan := setupScan(t)
	results, total, err := scan.Search(context.Background(), Query{Text: "go"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if total != len(results) {
		t.Errorf("total = %d, want %d", total, len(results))
	}

	kinds := map[ResultType]int{}
	for _, r := range results {
		kinds[r.Type]++
		if r.Type == ResultPost && r.ID == "hidden-draft" {
			t.Error("draft post leaked into results")
		}
	}
	if kinds[ResultPost] != 1 || kinds[ResultTag] != 1 || kinds[ResultAccount] != 1 {
		t.Errorf("unexpected result mix: %v", kinds)
	}
}

func TestScanSearchFilterType(t *testing.T) {
	scan := setupScan(t)
	results, _, err := scan.Search(context.Background(), Query{Text: "go", FilterType: ResultTag})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 1 || results[0].Type != ResultTag || results[0].ID != "golang" {
		t.Errorf("unexpected results: %+v", results)
	}
}

func TestScanLoadAllRecords(t *testing.T) {
	scan := setupScan(t)
	posts, tags, accounts, err := scan.LoadAllRecords(context.Background())
	if err != nil {
		t.Fatalf("LoadAllRecords() error = %v", err)
	}
	if len(posts) != 1 {
		t.Errorf("posts = %d, want 1 (drafts excluded)", len(posts))
	}
	if len(tags) != 1 || len(accounts) != 1 {
		t.Errorf("tags = %d accounts = %d, want 1 each", len(tags), len(accounts))
	}
}
