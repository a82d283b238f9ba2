package platform

import (
	"context"

	"inkwell/api/internal/docstore"
)

// The reaction ledger has two instances with the same toggle shape: one on
// the post itself and one on each embedded comment. Both are
// read-then-decide: membership is read, the decision is made in the
// application, and the write follows. Two near-simultaneous toggles from
// the same user can both read "not present"; the $addToSet write keeps the
// member list duplicate-free in that race, but the counter is still a
// read-copy and can drift by one. The toggle pair remains idempotent.

// TogglePostReaction flips the caller's membership in the post's reaction
// list and moves the counter with it. Draft posts reject reactions.
func (s *Service) TogglePostReaction(ctx context.Context, userID int, slug string) (*PostDetailPage, ToggleState, error) {
	post, err := s.postBySlug(ctx, slug)
	if err != nil {
		return nil, "", err
	}
	if post.Status == StatusDraft {
		return nil, "", badRequest("can not react to a draft post")
	}

	state := ToggleAdded
	update := docstore.Update{
		"$set":      map[string]any{"reactionCount": post.ReactionCount + 1},
		"$addToSet": map[string]any{"reactionList": userID},
	}
	if contains(post.ReactionList, userID) {
		state = ToggleRemoved
		update = docstore.Update{
			"$set":  map[string]any{"reactionCount": post.ReactionCount - 1},
			"$pull": map[string]any{"reactionList": userID},
		}
	}
	if err := s.posts.UpdateOne(ctx, docstore.Filter{"slug": slug}, update); err != nil {
		return nil, "", serverError(err)
	}

	page, err := s.GetPost(ctx, &userID, slug)
	if err != nil {
		return nil, "", err
	}
	return page, state, nil
}

// UnreactPost removes the caller's reaction explicitly. Un-reacting while
// never having reacted is a BadRequest and mutates nothing.
func (s *Service) UnreactPost(ctx context.Context, userID int, slug string) error {
	post, err := s.postBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if !contains(post.ReactionList, userID) {
		return badRequest("not reacted to this post")
	}
	err = s.posts.UpdateOne(ctx, docstore.Filter{"slug": slug}, docstore.Update{
		"$set":  map[string]any{"reactionCount": post.ReactionCount - 1},
		"$pull": map[string]any{"reactionList": userID},
	})
	if err != nil {
		return serverError(err)
	}
	return nil
}

// ToggleCommentReaction flips the caller's membership on a single embedded
// comment. The comment is mutated in memory and the whole post document is
// replaced, one atomic store write.
func (s *Service) ToggleCommentReaction(ctx context.Context, userID int, slug string, commentID int) (*PostDetailPage, ToggleState, error) {
	post, err := s.postBySlug(ctx, slug)
	if err != nil {
		return nil, "", err
	}

	state := ToggleState("")
	found := false
	for i := range post.Comments {
		if post.Comments[i].ID != commentID {
			continue
		}
		found = true
		if contains(post.Comments[i].InteractList, userID) {
			state = ToggleRemoved
			post.Comments[i].Interact--
			post.Comments[i].InteractList = remove(post.Comments[i].InteractList, userID)
		} else {
			state = ToggleAdded
			post.Comments[i].Interact++
			post.Comments[i].InteractList = append(post.Comments[i].InteractList, userID)
		}
		break
	}
	if !found {
		return nil, "", notFound("comment")
	}

	if err := s.replacePost(ctx, post); err != nil {
		return nil, "", err
	}
	page, err := s.GetPost(ctx, &userID, slug)
	if err != nil {
		return nil, "", err
	}
	return page, state, nil
}

// UnreactComment removes the caller's reaction from a comment, rejecting
// the call when no reaction exists.
func (s *Service) UnreactComment(ctx context.Context, userID int, slug string, commentID int) error {
	post, err := s.postBySlug(ctx, slug)
	if err != nil {
		return err
	}
	found := false
	for i := range post.Comments {
		if post.Comments[i].ID != commentID {
			continue
		}
		found = true
		if !contains(post.Comments[i].InteractList, userID) {
			return badRequest("not reacted to this comment")
		}
		post.Comments[i].Interact--
		post.Comments[i].InteractList = remove(post.Comments[i].InteractList, userID)
		break
	}
	if !found {
		return notFound("comment")
	}
	return s.replacePost(ctx, post)
}

func remove(list []int, v int) []int {
	kept := list[:0]
	for _, item := range list {
		if item != v {
			kept = append(kept, item)
		}
	}
	return kept
}
