package platform

import (
	"context"
	"testing"
)

func TestToggleSave(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	alice := seedAccount(t, s, "Alice Doe", "alice")
	bob := seedAccount(t, s, "Bob Roe", "bob")
	detail := seedPost(t, s, alice.ID, "Bookmarked", nil, StatusPublished)

	saved, state, err := s.ToggleSave(ctx, bob.ID, detail.Slug)
	if err != nil {
		t.Fatalf("ToggleSave: %v", err)
	}
	if state != ToggleAdded {
		t.Errorf("state = %v, want added", state)
	}
	if !saved.Saved {
		t.Error("viewer save flag not set")
	}

	// Both sides of the bookmark must agree after the toggle.
	post, err := s.postBySlug(ctx, detail.Slug)
	if err != nil {
		t.Fatalf("postBySlug: %v", err)
	}
	if !contains(post.SavedByUser, bob.ID) {
		t.Errorf("savedByUser = %v, missing %d", post.SavedByUser, bob.ID)
	}
	reader, err := s.accountByID(ctx, bob.ID)
	if err != nil {
		t.Fatalf("accountByID: %v", err)
	}
	if !contains(reader.ReadingList, post.ID) {
		t.Errorf("readingList = %v, missing %d", reader.ReadingList, post.ID)
	}

	_, state, err = s.ToggleSave(ctx, bob.ID, detail.Slug)
	if err != nil {
		t.Fatalf("ToggleSave: %v", err)
	}
	if state != ToggleRemoved {
		t.Errorf("state = %v, want removed", state)
	}
	post, _ = s.postBySlug(ctx, detail.Slug)
	reader, _ = s.accountByID(ctx, bob.ID)
	if contains(post.SavedByUser, bob.ID) || contains(reader.ReadingList, post.ID) {
		t.Error("bookmark still present on one side after removal")
	}
}

func TestToggleSaveMissingPost(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	bob := seedAccount(t, s, "Bob Roe", "bob")

	if _, _, err := s.ToggleSave(ctx, bob.ID, "missing"); KindOf(err) != KindNotFound {
		t.Errorf("save of missing post: got %v, want NotFound", err)
	}
}
