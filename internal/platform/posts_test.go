package platform

import (
	"context"
	"errors"
	"testing"

	"inkwell/api/internal/docstore"
)

func TestCreatePost(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	author := seedAccount(t, s, "Alice Doe", "alice")

	detail, err := s.CreatePost(ctx, author.ID, CreatePostInput{
		Banner:  "banner.png",
		Title:   "First Post",
		Content: "hello",
		Tags:    []string{"golang"},
		Status:  StatusPublished,
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if detail.ID != 1 {
		t.Errorf("post id = %d, want 1", detail.ID)
	}
	if detail.UserUsername != "alice" || detail.UserName != "Alice Doe" {
		t.Errorf("author snapshot = %s/%s", detail.UserUsername, detail.UserName)
	}
	if detail.Status != StatusPublished {
		t.Errorf("status = %v, want Published", detail.Status)
	}

	post, err := s.postBySlug(ctx, detail.Slug)
	if err != nil {
		t.Fatalf("postBySlug: %v", err)
	}
	if post.CommentCount != 0 || post.ReactionCount != 0 {
		t.Errorf("fresh post counters = %d/%d, want 0/0", post.CommentCount, post.ReactionCount)
	}
	if post.Comments == nil || post.ReactionList == nil || post.SavedByUser == nil {
		t.Error("fresh post lists must be empty, not absent")
	}
}

func TestCreatePostTagLimit(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	author := seedAccount(t, s, "Alice Doe", "alice")

	_, err := s.CreatePost(ctx, author.ID, CreatePostInput{
		Title: "Too Many",
		Tags:  []string{"a", "b", "c", "d"},
	})
	if KindOf(err) != KindBadRequest {
		t.Errorf("four tags: got %v, want BadRequest", err)
	}
}

func TestTagCounterLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	author := seedAccount(t, s, "Alice Doe", "alice")
	if _, err := s.CreateTag(ctx, CreateTagInput{Value: "golang"}); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	tagCount := func() int {
		t.Helper()
		tag, err := s.tagByValue(ctx, "golang")
		if err != nil {
			t.Fatalf("tagByValue: %v", err)
		}
		return tag.PostCount
	}

	detail := seedPost(t, s, author.ID, "Counted", []string{"golang"}, StatusPublished)
	if got := tagCount(); got != 1 {
		t.Errorf("count after create = %d, want 1", got)
	}

	// Editing the tag set must not move any counter.
	empty := []string{}
	if _, err := s.UpdatePost(ctx, author.ID, UpdatePostInput{Slug: detail.Slug, Tags: &empty}); err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}
	if got := tagCount(); got != 1 {
		t.Errorf("count after tag edit = %d, want 1", got)
	}

	// The post no longer carries the tag, so deleting it decrements
	// nothing. The counter keeps the drift; that is the documented
	// behavior of edit-then-delete.
	if err := s.DeletePost(ctx, author.ID, detail.Slug); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	if got := tagCount(); got != 1 {
		t.Errorf("count after deleting the edited post = %d, want 1", got)
	}
}

func TestTagCounterDecrementsOnDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	author := seedAccount(t, s, "Alice Doe", "alice")
	if _, err := s.CreateTag(ctx, CreateTagInput{Value: "golang"}); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	detail := seedPost(t, s, author.ID, "Counted", []string{"golang"}, StatusPublished)
	if err := s.DeletePost(ctx, author.ID, detail.Slug); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
	tag, err := s.tagByValue(ctx, "golang")
	if err != nil {
		t.Fatalf("tagByValue: %v", err)
	}
	if tag.PostCount != 0 {
		t.Errorf("count after delete = %d, want 0", tag.PostCount)
	}
}

func TestCreatePostUnknownTagSkipped(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	author := seedAccount(t, s, "Alice Doe", "alice")

	// Tag values on posts are loose references; no tag document exists.
	if _, err := s.CreatePost(ctx, author.ID, CreatePostInput{
		Title: "Loose",
		Tags:  []string{"no-such-tag"},
	}); err != nil {
		t.Fatalf("CreatePost with unknown tag value: %v", err)
	}
}

func TestUpdatePostOwnership(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	alice := seedAccount(t, s, "Alice Doe", "alice")
	bob := seedAccount(t, s, "Bob Roe", "bob")
	detail := seedPost(t, s, alice.ID, "Mine", nil, StatusPublished)

	title := "Stolen"
	_, err := s.UpdatePost(ctx, bob.ID, UpdatePostInput{Slug: detail.Slug, Title: &title})
	if KindOf(err) != KindNotOwned {
		t.Errorf("update by non-owner: got %v, want NotOwned", err)
	}

	_, err = s.UpdatePost(ctx, alice.ID, UpdatePostInput{Slug: "missing", Title: &title})
	if KindOf(err) != KindNotFound {
		t.Errorf("update of missing post: got %v, want NotFound", err)
	}
}

func TestTogglePostStatus(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	alice := seedAccount(t, s, "Alice Doe", "alice")
	bob := seedAccount(t, s, "Bob Roe", "bob")
	detail := seedPost(t, s, alice.ID, "Flip", nil, StatusPublished)

	next, err := s.TogglePostStatus(ctx, alice.ID, detail.Slug)
	if err != nil {
		t.Fatalf("TogglePostStatus: %v", err)
	}
	if next != StatusDraft {
		t.Errorf("first flip = %v, want Draft", next)
	}
	next, err = s.TogglePostStatus(ctx, alice.ID, detail.Slug)
	if err != nil {
		t.Fatalf("TogglePostStatus: %v", err)
	}
	if next != StatusPublished {
		t.Errorf("second flip = %v, want Published", next)
	}

	// The lookup is owner-scoped, so another account sees NotFound.
	_, err = s.TogglePostStatus(ctx, bob.ID, detail.Slug)
	if KindOf(err) != KindNotFound {
		t.Errorf("flip by non-owner: got %v, want NotFound", err)
	}
}

func TestDeletePostCascade(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	alice := seedAccount(t, s, "Alice Doe", "alice")
	bob := seedAccount(t, s, "Bob Roe", "bob")
	detail := seedPost(t, s, alice.ID, "Saved Later", nil, StatusPublished)

	if _, _, err := s.ToggleSave(ctx, bob.ID, detail.Slug); err != nil {
		t.Fatalf("ToggleSave: %v", err)
	}

	if err := s.DeletePost(ctx, alice.ID, detail.Slug); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}

	if _, err := s.postBySlug(ctx, detail.Slug); KindOf(err) != KindNotFound {
		t.Errorf("deleted post still resolvable: %v", err)
	}

	reader, err := s.accountByID(ctx, bob.ID)
	if err != nil {
		t.Fatalf("accountByID: %v", err)
	}
	if contains(reader.ReadingList, detail.ID) {
		t.Error("deleted post id still present in a reading list")
	}
}

func TestDeletePostNotOwned(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	alice := seedAccount(t, s, "Alice Doe", "alice")
	bob := seedAccount(t, s, "Bob Roe", "bob")
	detail := seedPost(t, s, alice.ID, "Keep Out", nil, StatusPublished)

	if err := s.DeletePost(ctx, bob.ID, detail.Slug); KindOf(err) != KindNotOwned {
		t.Errorf("delete by non-owner: got %v, want NotOwned", err)
	}
	if _, err := s.posts.FindOne(ctx, docstore.Filter{"slug": detail.Slug}); errors.Is(err, docstore.ErrNoDocuments) {
		t.Error("post was deleted despite NotOwned")
	}
}
