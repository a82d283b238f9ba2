package platform

import (
	"context"

	"inkwell/api/internal/docstore"
)

// ToggleSave flips the bidirectional bookmark between a post's savedByUser
// list and the account's readingList. Membership is decided from the
// post's side, then the two sides are written one after the other: post
// document first, account document second, in both directions. There is no
// transaction across the two: a failure between the writes leaves the
// relationship one-sided until the next toggle for the same pair crosses
// it again.
func (s *Service) ToggleSave(ctx context.Context, userID int, slug string) (*PostDetail, ToggleState, error) {
	post, err := s.postBySlug(ctx, slug)
	if err != nil {
		return nil, "", err
	}
	if _, err := s.accountByID(ctx, userID); err != nil {
		return nil, "", err
	}

	var state ToggleState
	if contains(post.SavedByUser, userID) {
		state = ToggleRemoved
		if err := s.posts.UpdateOne(ctx, docstore.Filter{"_id": post.ID},
			docstore.Update{"$pull": map[string]any{"savedByUser": userID}}); err != nil {
			return nil, "", serverError(err)
		}
		if err := s.accounts.UpdateOne(ctx, docstore.Filter{"_id": userID},
			docstore.Update{"$pull": map[string]any{"readingList": post.ID}}); err != nil {
			return nil, "", serverError(err)
		}
	} else {
		state = ToggleAdded
		if err := s.posts.UpdateOne(ctx, docstore.Filter{"_id": post.ID},
			docstore.Update{"$addToSet": map[string]any{"savedByUser": userID}}); err != nil {
			return nil, "", serverError(err)
		}
		if err := s.accounts.UpdateOne(ctx, docstore.Filter{"_id": userID},
			docstore.Update{"$addToSet": map[string]any{"readingList": post.ID}}); err != nil {
			return nil, "", serverError(err)
		}
	}

	refreshed, err := s.postBySlug(ctx, slug)
	if err != nil {
		return nil, "", err
	}
	detail := newPostDetail(refreshed, &userID)
	return &detail, state, nil
}
