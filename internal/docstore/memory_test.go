package docstore

import (
	"context"
	"errors"
	"testing"
)

func seedCollection(t *testing.T) Collection {
	t.Helper()
	col := NewMemory().Collection("posts")
	ctx := context.Background()
	docs := []Document{
		{
			"_id": 1, "slug": "go-basics", "title": "Go Basics", "status": "Published",
			"reactionList": []any{10, 20},
			"comment": []any{
				map[string]any{"_id": 1, "userUserName": "alice", "content": "nice"},
				map[string]any{"_id": 2, "userUserName": "bob", "content": "agreed"},
			},
		},
		{
			"_id": 2, "slug": "go-advanced", "title": "Go Advanced", "status": "Draft",
			"reactionList": []any{},
			"comment":      []any{},
		},
		{
			"_id": 3, "slug": "rust-intro", "title": "Rust Intro", "status": "Published",
			"reactionList": []any{20},
			"comment":      []any{},
		},
	}
	for _, doc := range docs {
		if err := col.InsertOne(ctx, doc); err != nil {
			t.Fatalf("seed insert: %v", err)
		}
	}
	return col
}

func TestFindOne(t *testing.T) {
	ctx := context.Background()
	col := seedCollection(t)

	// Native ints in filters compare equal to stored float64 values.
	doc, err := col.FindOne(ctx, Filter{"_id": 2})
	if err != nil {
		t.Fatalf("FindOne by id: %v", err)
	}
	if doc["slug"] != "go-advanced" {
		t.Errorf("slug = %v", doc["slug"])
	}

	if _, err := col.FindOne(ctx, Filter{"slug": "missing"}); !errors.Is(err, ErrNoDocuments) {
		t.Errorf("missing doc: got %v, want ErrNoDocuments", err)
	}
}

func TestArrayContainsMatch(t *testing.T) {
	ctx := context.Background()
	col := seedCollection(t)

	docs, err := col.Find(ctx, Filter{"reactionList": 20}, nil)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("array contains matched %d docs, want 2", len(docs))
	}
}

func TestDottedPathFanOut(t *testing.T) {
	ctx := context.Background()
	col := seedCollection(t)

	doc, err := col.FindOne(ctx, Filter{"comment.userUserName": "bob"})
	if err != nil {
		t.Fatalf("FindOne dotted: %v", err)
	}
	if doc["slug"] != "go-basics" {
		t.Errorf("slug = %v", doc["slug"])
	}
}

func TestOperators(t *testing.T) {
	ctx := context.Background()
	col := seedCollection(t)

	docs, err := col.Find(ctx, Filter{"_id": In(1, 3)}, nil)
	if err != nil {
		t.Fatalf("Find $in: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("$in matched %d, want 2", len(docs))
	}

	docs, err = col.Find(ctx, Filter{"slug": NotIn("go-basics", "rust-intro")}, nil)
	if err != nil {
		t.Fatalf("Find $nin: %v", err)
	}
	if len(docs) != 1 || docs[0]["slug"] != "go-advanced" {
		t.Errorf("$nin result = %v", docs)
	}

	docs, err = col.Find(ctx, Filter{"title": Regex("(?i)^go")}, nil)
	if err != nil {
		t.Fatalf("Find $regex: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("$regex matched %d, want 2", len(docs))
	}

	// An uncompilable pattern degrades to a literal substring match.
	docs, err = col.Find(ctx, Filter{"title": Regex("Rust In(")}, nil)
	if err != nil {
		t.Fatalf("Find bad regex: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("bad pattern matched %d docs", len(docs))
	}
}

func TestBooleanOperators(t *testing.T) {
	ctx := context.Background()
	col := seedCollection(t)

	docs, err := col.Find(ctx, Filter{
		"$and": []Filter{
			{"$or": []Filter{
				{"title": Regex("Go")},
				{"title": Regex("Rust")},
			}},
			{"status": "Published"},
		},
	}, nil)
	if err != nil {
		t.Fatalf("Find $and/$or: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("matched %d, want 2 (draft excluded)", len(docs))
	}
}

func TestFindOptions(t *testing.T) {
	ctx := context.Background()
	col := seedCollection(t)

	docs, err := col.Find(ctx, Filter{}, &FindOptions{
		Sort: []SortField{{Key: "_id", Desc: true}},
		Skip: 1, Limit: 1,
	})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(docs) != 1 || docs[0]["slug"] != "go-advanced" {
		t.Errorf("sorted page = %v", docs)
	}

	docs, err = col.Find(ctx, Filter{}, &FindOptions{Skip: 10})
	if err != nil {
		t.Fatalf("Find past the end: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("skip past end returned %d docs", len(docs))
	}
}

func TestSortTimestampsMixedPrecision(t *testing.T) {
	ctx := context.Background()
	col := NewMemory().Collection("posts")

	seed := []Document{
		{"_id": 1, "slug": "whole-second", "createdAt": "2025-08-01T10:00:00Z"},
		{"_id": 2, "slug": "sub-second", "createdAt": "2025-08-01T10:00:00.5Z"},
		{"_id": 3, "slug": "next-second", "createdAt": "2025-08-01T10:00:01Z"},
	}
	for _, doc := range seed {
		if err := col.InsertOne(ctx, doc); err != nil {
			t.Fatalf("InsertOne: %v", err)
		}
	}

	docs, err := col.Find(ctx, Filter{}, &FindOptions{
		Sort: []SortField{{Key: "createdAt", Desc: true}},
	})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	want := []string{"next-second", "sub-second", "whole-second"}
	for i, slug := range want {
		if docs[i]["slug"] != slug {
			t.Fatalf("position %d = %v, want %s", i, docs[i]["slug"], slug)
		}
	}
}

func TestUpdateOne(t *testing.T) {
	ctx := context.Background()
	col := seedCollection(t)

	err := col.UpdateOne(ctx, Filter{"slug": "go-basics"}, Update{
		"$set":      map[string]any{"title": "Go Basics v2"},
		"$addToSet": map[string]any{"reactionList": 30},
	})
	if err != nil {
		t.Fatalf("UpdateOne: %v", err)
	}
	doc, err := col.FindOne(ctx, Filter{"slug": "go-basics"})
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if doc["title"] != "Go Basics v2" {
		t.Errorf("title = %v", doc["title"])
	}
	if list := doc["reactionList"].([]any); len(list) != 3 {
		t.Errorf("reactionList = %v", list)
	}

	// $addToSet is a no-op for an existing member.
	if err := col.UpdateOne(ctx, Filter{"slug": "go-basics"},
		Update{"$addToSet": map[string]any{"reactionList": 30}}); err != nil {
		t.Fatalf("UpdateOne: %v", err)
	}
	doc, _ = col.FindOne(ctx, Filter{"slug": "go-basics"})
	if list := doc["reactionList"].([]any); len(list) != 3 {
		t.Errorf("after duplicate add: %v", list)
	}

	if err := col.UpdateOne(ctx, Filter{"slug": "go-basics"},
		Update{"$pull": map[string]any{"reactionList": 10}}); err != nil {
		t.Fatalf("UpdateOne: %v", err)
	}
	doc, _ = col.FindOne(ctx, Filter{"slug": "go-basics"})
	if list := doc["reactionList"].([]any); len(list) != 2 {
		t.Errorf("after pull: %v", list)
	}

	err = col.UpdateOne(ctx, Filter{"slug": "missing"}, Update{"$set": map[string]any{"x": 1}})
	if !errors.Is(err, ErrNoDocuments) {
		t.Errorf("update of missing doc: got %v, want ErrNoDocuments", err)
	}
}

func TestUpdateMany(t *testing.T) {
	ctx := context.Background()
	col := seedCollection(t)

	n, err := col.UpdateMany(ctx, Filter{"status": "Published"},
		Update{"$set": map[string]any{"status": "Draft"}})
	if err != nil {
		t.Fatalf("UpdateMany: %v", err)
	}
	if n != 2 {
		t.Errorf("updated %d docs, want 2", n)
	}

	n, err = col.UpdateMany(ctx, Filter{"status": "Published"},
		Update{"$set": map[string]any{"x": 1}})
	if err != nil {
		t.Fatalf("UpdateMany on empty match: %v", err)
	}
	if n != 0 {
		t.Errorf("updated %d docs, want 0", n)
	}
}

func TestReplaceAndDelete(t *testing.T) {
	ctx := context.Background()
	col := seedCollection(t)

	err := col.ReplaceOne(ctx, Filter{"_id": 3}, Document{"_id": 3, "slug": "rust-intro", "title": "Rewritten"})
	if err != nil {
		t.Fatalf("ReplaceOne: %v", err)
	}
	doc, err := col.FindOne(ctx, Filter{"_id": 3})
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if doc["title"] != "Rewritten" || doc["status"] != nil {
		t.Errorf("replaced doc = %v", doc)
	}

	if err := col.DeleteOne(ctx, Filter{"_id": 3}); err != nil {
		t.Fatalf("DeleteOne: %v", err)
	}
	if _, err := col.FindOne(ctx, Filter{"_id": 3}); !errors.Is(err, ErrNoDocuments) {
		t.Errorf("deleted doc still found: %v", err)
	}
	if err := col.DeleteOne(ctx, Filter{"_id": 3}); !errors.Is(err, ErrNoDocuments) {
		t.Errorf("double delete: got %v, want ErrNoDocuments", err)
	}
}

func TestResultsAreCopies(t *testing.T) {
	ctx := context.Background()
	col := seedCollection(t)

	doc, err := col.FindOne(ctx, Filter{"_id": 1})
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	doc["title"] = "mutated outside"

	fresh, err := col.FindOne(ctx, Filter{"_id": 1})
	if err != nil {
		t.Fatalf("FindOne: %v", err)
	}
	if fresh["title"] == "mutated outside" {
		t.Error("caller mutation leaked into the store")
	}
}
