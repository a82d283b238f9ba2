package platform

import (
	"context"
	"testing"
)

func TestTogglePostReaction(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	alice := seedAccount(t, s, "Alice Doe", "alice")
	bob := seedAccount(t, s, "Bob Roe", "bob")
	detail := seedPost(t, s, alice.ID, "Reacted", nil, StatusPublished)

	page, state, err := s.TogglePostReaction(ctx, bob.ID, detail.Slug)
	if err != nil {
		t.Fatalf("TogglePostReaction: %v", err)
	}
	if state != ToggleAdded {
		t.Errorf("state = %v, want added", state)
	}
	if !page.PostDetail.Interacted {
		t.Error("viewer flag not set after react")
	}

	post, err := s.postBySlug(ctx, detail.Slug)
	if err != nil {
		t.Fatalf("postBySlug: %v", err)
	}
	if post.ReactionCount != 1 || len(post.ReactionList) != 1 {
		t.Errorf("after add: count=%d list=%v", post.ReactionCount, post.ReactionList)
	}

	// The toggle pair is idempotent: add then remove restores the state.
	_, state, err = s.TogglePostReaction(ctx, bob.ID, detail.Slug)
	if err != nil {
		t.Fatalf("TogglePostReaction: %v", err)
	}
	if state != ToggleRemoved {
		t.Errorf("state = %v, want removed", state)
	}
	post, err = s.postBySlug(ctx, detail.Slug)
	if err != nil {
		t.Fatalf("postBySlug: %v", err)
	}
	if post.ReactionCount != 0 || len(post.ReactionList) != 0 {
		t.Errorf("after remove: count=%d list=%v", post.ReactionCount, post.ReactionList)
	}
}

func TestReactToDraftRejected(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	alice := seedAccount(t, s, "Alice Doe", "alice")
	detail := seedPost(t, s, alice.ID, "Hidden", nil, StatusDraft)

	_, _, err := s.TogglePostReaction(ctx, alice.ID, detail.Slug)
	if KindOf(err) != KindBadRequest {
		t.Errorf("react to draft: got %v, want BadRequest", err)
	}
}

func TestUnreactPost(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	alice := seedAccount(t, s, "Alice Doe", "alice")
	bob := seedAccount(t, s, "Bob Roe", "bob")
	detail := seedPost(t, s, alice.ID, "Unreacted", nil, StatusPublished)

	// Un-reacting without a prior reaction is rejected and mutates nothing.
	if err := s.UnreactPost(ctx, bob.ID, detail.Slug); KindOf(err) != KindBadRequest {
		t.Errorf("unreact without reaction: got %v, want BadRequest", err)
	}

	if _, _, err := s.TogglePostReaction(ctx, bob.ID, detail.Slug); err != nil {
		t.Fatalf("TogglePostReaction: %v", err)
	}
	if err := s.UnreactPost(ctx, bob.ID, detail.Slug); err != nil {
		t.Fatalf("UnreactPost: %v", err)
	}

	post, err := s.postBySlug(ctx, detail.Slug)
	if err != nil {
		t.Fatalf("postBySlug: %v", err)
	}
	if post.ReactionCount != 0 || len(post.ReactionList) != 0 {
		t.Errorf("after unreact: count=%d list=%v", post.ReactionCount, post.ReactionList)
	}
}

func TestCommentReaction(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	alice := seedAccount(t, s, "Alice Doe", "alice")
	bob := seedAccount(t, s, "Bob Roe", "bob")
	detail := seedPost(t, s, alice.ID, "Comment Reactions", nil, StatusPublished)
	if _, err := s.AddComment(ctx, alice.ID, CreateCommentInput{Slug: detail.Slug, Content: "root"}); err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	page, state, err := s.ToggleCommentReaction(ctx, bob.ID, detail.Slug, 1)
	if err != nil {
		t.Fatalf("ToggleCommentReaction: %v", err)
	}
	if state != ToggleAdded {
		t.Errorf("state = %v, want added", state)
	}
	comment := page.PostDetail.Comments[0]
	if comment.Interact != 1 || !comment.Interacted {
		t.Errorf("comment after react: interact=%d interacted=%v", comment.Interact, comment.Interacted)
	}

	_, state, err = s.ToggleCommentReaction(ctx, bob.ID, detail.Slug, 1)
	if err != nil {
		t.Fatalf("ToggleCommentReaction: %v", err)
	}
	if state != ToggleRemoved {
		t.Errorf("state = %v, want removed", state)
	}

	if _, _, err := s.ToggleCommentReaction(ctx, bob.ID, detail.Slug, 42); KindOf(err) != KindNotFound {
		t.Errorf("react to missing comment: got %v, want NotFound", err)
	}
}

func TestUnreactComment(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	alice := seedAccount(t, s, "Alice Doe", "alice")
	bob := seedAccount(t, s, "Bob Roe", "bob")
	detail := seedPost(t, s, alice.ID, "Comment Unreact", nil, StatusPublished)
	if _, err := s.AddComment(ctx, alice.ID, CreateCommentInput{Slug: detail.Slug, Content: "root"}); err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	if err := s.UnreactComment(ctx, bob.ID, detail.Slug, 1); KindOf(err) != KindBadRequest {
		t.Errorf("unreact without reaction: got %v, want BadRequest", err)
	}
	if err := s.UnreactComment(ctx, bob.ID, detail.Slug, 42); KindOf(err) != KindNotFound {
		t.Errorf("unreact missing comment: got %v, want NotFound", err)
	}

	if _, _, err := s.ToggleCommentReaction(ctx, bob.ID, detail.Slug, 1); err != nil {
		t.Fatalf("ToggleCommentReaction: %v", err)
	}
	if err := s.UnreactComment(ctx, bob.ID, detail.Slug, 1); err != nil {
		t.Fatalf("UnreactComment: %v", err)
	}

	post, err := s.postBySlug(ctx, detail.Slug)
	if err != nil {
		t.Fatalf("postBySlug: %v", err)
	}
	if post.Comments[0].Interact != 0 || len(post.Comments[0].InteractList) != 0 {
		t.Errorf("after unreact: interact=%d list=%v", post.Comments[0].Interact, post.Comments[0].InteractList)
	}
}
