package platform

import (
	"context"

	"inkwell/api/internal/docstore"
)

type CreateCommentInput struct {
	Slug     string
	Content  string
	ParentID int
}

type UpdateCommentInput struct {
	Slug    string
	ID      int
	Content string
}

// nextCommentID assigns the next per-post comment id: max(existing)+1,
// starting at 1. Ids are never reused; comments cannot be deleted.
func nextCommentID(post Post) int {
	last := 0
	for _, c := range post.Comments {
		if c.ID > last {
			last = c.ID
		}
	}
	return last + 1
}

// AddComment appends a comment to the post's embedded thread. Threading is
// one level deep: a non-zero parent must reference an existing comment id
// in the same post. The whole post document is written back, which also
// carries the bumped commentCount and the commenters set in one atomic
// store write.
func (s *Service) AddComment(ctx context.Context, authorID int, in CreateCommentInput) (*PostDetail, error) {
	author, err := s.accountByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	post, err := s.postBySlug(ctx, in.Slug)
	if err != nil {
		return nil, err
	}

	if in.ParentID != 0 {
		parentExists := false
		for _, c := range post.Comments {
			if c.ID == in.ParentID {
				parentExists = true
				break
			}
		}
		if !parentExists {
			return nil, ErrParentCommentNotFound
		}
	}

	ts := now()
	comment := Comment{
		ID:           nextCommentID(post),
		Content:      in.Content,
		UserUsername: author.Username,
		UserAvatar:   author.Avatar,
		UserName:     author.Name,
		CreatedAt:    ts,
		UpdatedAt:    ts,
		ParentID:     in.ParentID,
		InteractList: []int{},
	}
	post.Comments = append(post.Comments, comment)
	post.CommentCount++
	if !contains(post.CommentList, author.ID) {
		post.CommentList = append(post.CommentList, author.ID)
	}

	if err := s.replacePost(ctx, post); err != nil {
		return nil, err
	}

	refreshed, err := s.postBySlug(ctx, in.Slug)
	if err != nil {
		return nil, err
	}
	detail := newPostDetail(refreshed, &authorID)
	return &detail, nil
}

// UpdateComment edits a comment's content in place. Only the comment's own
// author may edit it.
func (s *Service) UpdateComment(ctx context.Context, authorID int, in UpdateCommentInput) (*PostDetail, error) {
	author, err := s.accountByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	post, err := s.postBySlug(ctx, in.Slug)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range post.Comments {
		if post.Comments[i].ID != in.ID {
			continue
		}
		if post.Comments[i].UserUsername != author.Username {
			return nil, notOwned("comment")
		}
		post.Comments[i].Content = in.Content
		post.Comments[i].UpdatedAt = now()
		found = true
		break
	}
	if !found {
		return nil, notFound("comment")
	}

	if err := s.replacePost(ctx, post); err != nil {
		return nil, err
	}
	detail := newPostDetail(post, &authorID)
	return &detail, nil
}

// SearchCommentsByAuthor scans every post containing comments by the
// username and returns each comment with its parent (when threaded)
// resolved, newest comment activity first. Viewer interaction flags are
// filled when a viewer is present.
func (s *Service) SearchCommentsByAuthor(ctx context.Context, viewer *Account, username string) ([]CommentInfoPage, error) {
	docs, err := s.posts.Find(ctx,
		docstore.Filter{"comment.userUserName": username},
		&docstore.FindOptions{Sort: []docstore.SortField{{Key: "comment.createdAt", Desc: true}}})
	if err != nil {
		return nil, serverError(err)
	}

	var viewerID *int
	if viewer != nil {
		viewerID = &viewer.ID
	}

	var result []CommentInfoPage
	for _, doc := range docs {
		var post Post
		if err := decodeDoc(doc, &post); err != nil {
			return nil, serverError(err)
		}
		for _, comment := range post.Comments {
			if comment.UserUsername != username {
				continue
			}
			var parent *CommentDetail
			if comment.ParentID != 0 {
				for _, candidate := range post.Comments {
					if candidate.ID == comment.ParentID {
						detail := newCommentDetail(candidate, viewerID)
						parent = &detail
					}
				}
			}
			result = append(result, CommentInfoPage{
				PostSlug:      post.Slug,
				PostTitle:     post.Title,
				ParentComment: parent,
				ChildComment:  newCommentDetail(comment, viewerID),
			})
		}
	}
	return result, nil
}
