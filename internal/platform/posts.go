package platform

import (
	"context"
	"errors"

	"inkwell/api/internal/docstore"
)

// MaxPostTags caps how many tag values a post may carry.
const MaxPostTags = 3

// compositeSort is the feed ordering used everywhere posts are ranked.
var compositeSort = []docstore.SortField{
	{Key: "createdAt", Desc: true},
	{Key: "reactionCount", Desc: true},
	{Key: "commentCount", Desc: true},
}

type CreatePostInput struct {
	Banner  string
	Title   string
	Content string
	Tags    []string
	Status  PostStatus
}

type UpdatePostInput struct {
	Slug    string
	Banner  *string
	Title   *string
	Content *string
	Tags    *[]string
	Status  *PostStatus
}

// CreatePost inserts a new post with a fresh id and slug, then walks the
// new post's tag values incrementing each tag's usage counter with a
// read-then-write. The counter updates are sequential and independent of
// the insert; they are not rolled back if a later one fails.
func (s *Service) CreatePost(ctx context.Context, authorID int, in CreatePostInput) (*PostDetail, error) {
	author, err := s.accountByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if len(in.Tags) > MaxPostTags {
		return nil, badRequest("tag list must not be more than 3 tags")
	}

	id, err := nextID(ctx, s.posts)
	if err != nil {
		return nil, serverError(err)
	}
	slug, err := s.generateSlug(ctx, in.Title, author.Username)
	if err != nil {
		return nil, err
	}

	ts := now()
	post := Post{
		ID:           id,
		UserUsername: author.Username,
		UserAvatar:   author.Avatar,
		UserName:     author.Name,
		Slug:         slug,
		Banner:       in.Banner,
		Title:        in.Title,
		Content:      in.Content,
		CreatedAt:    ts,
		UpdatedAt:    ts,
		Status:       in.Status,
		Tags:         in.Tags,
		Comments:     []Comment{},
		ReactionList: []int{},
		CommentList:  []int{},
		SavedByUser:  []int{},
	}
	doc, err := encodeDoc(post)
	if err != nil {
		return nil, serverError(err)
	}
	if err := s.posts.InsertOne(ctx, doc); err != nil {
		return nil, serverError(err)
	}

	for _, value := range post.Tags {
		if err := s.adjustTagCount(ctx, value, 1); err != nil {
			return nil, err
		}
	}

	if s.index != nil {
		s.index.IndexPost(post.Slug, post.Title, post.UserUsername)
	}

	detail := newPostDetail(post, nil)
	return &detail, nil
}

// UpdatePost applies the author's partial edits and replaces the document.
// Changing the tag set does NOT adjust any tag's post counter; counters
// move only on create and delete.
func (s *Service) UpdatePost(ctx context.Context, authorID int, in UpdatePostInput) (*PostDetail, error) {
	author, err := s.accountByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	post, err := s.postBySlug(ctx, in.Slug)
	if err != nil {
		return nil, err
	}
	if post.UserUsername != author.Username {
		return nil, notOwned("post")
	}
	if in.Tags != nil && len(*in.Tags) > MaxPostTags {
		return nil, badRequest("tag list must not be more than 3 tags")
	}

	post.UpdatedAt = now()
	if in.Banner != nil {
		post.Banner = *in.Banner
	}
	if in.Title != nil {
		post.Title = *in.Title
	}
	if in.Content != nil {
		post.Content = *in.Content
	}
	if in.Tags != nil {
		post.Tags = *in.Tags
	}
	if in.Status != nil {
		post.Status = *in.Status
	}

	if err := s.replacePost(ctx, post); err != nil {
		return nil, err
	}
	if s.index != nil {
		s.index.IndexPost(post.Slug, post.Title, post.UserUsername)
	}
	detail := newPostDetail(post, nil)
	return &detail, nil
}

// TogglePostStatus flips Draft ⇄ Published. The lookup is scoped to the
// owner's username, so a non-owner simply does not find the post.
func (s *Service) TogglePostStatus(ctx context.Context, authorID int, slug string) (PostStatus, error) {
	author, err := s.accountByID(ctx, authorID)
	if err != nil {
		return StatusDraft, err
	}
	doc, err := s.posts.FindOne(ctx, docstore.Filter{"slug": slug, "userUserName": author.Username})
	if errors.Is(err, docstore.ErrNoDocuments) {
		return StatusDraft, notFound("post")
	}
	if err != nil {
		return StatusDraft, serverError(err)
	}
	var post Post
	if err := decodeDoc(doc, &post); err != nil {
		return StatusDraft, serverError(err)
	}

	next := StatusPublished
	if post.Status == StatusPublished {
		next = StatusDraft
	}
	err = s.posts.UpdateOne(ctx, docstore.Filter{"slug": slug},
		docstore.Update{"$set": map[string]any{"status": next.String()}})
	if err != nil {
		return StatusDraft, serverError(err)
	}
	return next, nil
}

// DeletePost removes a post and runs the cascade: every referenced tag's
// counter is decremented, the document is deleted, and the post id is
// pulled from every account's reading list. Three independent phases; a
// failure mid-way leaves the earlier phases committed.
func (s *Service) DeletePost(ctx context.Context, userID int, slug string) error {
	user, err := s.accountByID(ctx, userID)
	if err != nil {
		return err
	}
	post, err := s.postBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if post.UserUsername != user.Username {
		return notOwned("post")
	}

	for _, value := range post.Tags {
		if err := s.adjustTagCount(ctx, value, -1); err != nil {
			return err
		}
	}

	if err := s.posts.DeleteOne(ctx, docstore.Filter{"slug": slug}); err != nil {
		return serverError(err)
	}

	_, err = s.accounts.UpdateMany(ctx,
		docstore.Filter{"readingList": post.ID},
		docstore.Update{"$pull": map[string]any{"readingList": post.ID}})
	if err != nil {
		return serverError(err)
	}

	if s.index != nil {
		s.index.RemovePost(post.Slug)
	}
	return nil
}

// adjustTagCount moves a tag's usage counter by delta using a
// read-then-write, not an atomic increment. Tag values on posts are loose
// string references; a value with no matching tag document is skipped.
func (s *Service) adjustTagCount(ctx context.Context, value string, delta int) error {
	tag, err := s.tagByValue(ctx, value)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return nil
		}
		return err
	}
	err = s.tags.UpdateOne(ctx, docstore.Filter{"_id": tag.ID},
		docstore.Update{"$set": map[string]any{"post": tag.PostCount + delta}})
	if err != nil {
		return serverError(err)
	}
	return nil
}
