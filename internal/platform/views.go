package platform

import (
	"context"
	"regexp"

	"inkwell/api/internal/docstore"
)

// FeedPageSize is how many posts one feed page carries.
const FeedPageSize = 15

// morePostLimit caps the "more by this author" strip on a post page.
const morePostLimit = 5

// tagIndexLimit caps the tag landing list.
const tagIndexLimit = 10

func (s *Service) viewer(ctx context.Context, viewerID *int) (*Account, error) {
	if viewerID == nil {
		return nil, nil
	}
	acc, err := s.accountByID(ctx, *viewerID)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// FeedIndex returns one page of the public feed: published posts ordered
// by createdAt, then reactionCount, then commentCount, all descending.
// Pages start at 1; anything below that reads as the first page.
func (s *Service) FeedIndex(ctx context.Context, viewerID *int, page int) ([]IndexRow, error) {
	viewer, err := s.viewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	skip := 0
	if page > 1 {
		skip = (page - 1) * FeedPageSize
	}
	docs, err := s.posts.Find(ctx,
		docstore.Filter{"status": StatusPublished.String()},
		&docstore.FindOptions{Sort: compositeSort, Skip: skip, Limit: FeedPageSize})
	if err != nil {
		return nil, serverError(err)
	}
	rows := make([]IndexRow, 0, len(docs))
	for _, doc := range docs {
		var post Post
		if err := decodeDoc(doc, &post); err != nil {
			return nil, serverError(err)
		}
		rows = append(rows, newIndexRow(post, viewer))
	}
	return rows, nil
}

// GetPost assembles the full post page: the post with the viewer's
// reaction and save flags, the author card with the viewer's follow state,
// and up to five more published posts by the same author. The viewed post
// is not excluded from that strip. Three separate reads; the page is as
// consistent as the moment each read landed.
func (s *Service) GetPost(ctx context.Context, viewerID *int, slug string) (*PostDetailPage, error) {
	post, err := s.postBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	viewer, err := s.viewer(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	author, err := s.accountByUsername(ctx, post.UserUsername)
	if err != nil {
		return nil, err
	}
	userInfo := PostDetailUser{
		Username: author.Username,
		Name:     author.Name,
		Avatar:   author.Avatar,
		Bio:      author.Bio,
	}
	if viewer != nil {
		userInfo.Followed = contains(viewer.FollowedUser, author.ID)
	}

	moreDocs, err := s.posts.Find(ctx, docstore.Filter{
		"userUserName": post.UserUsername,
		"status":       StatusPublished.String(),
	}, &docstore.FindOptions{Sort: compositeSort, Limit: morePostLimit})
	if err != nil {
		return nil, serverError(err)
	}
	more := make([]MorePost, 0, len(moreDocs))
	for _, doc := range moreDocs {
		var p Post
		if err := decodeDoc(doc, &p); err != nil {
			return nil, serverError(err)
		}
		more = append(more, newMorePost(p))
	}

	return &PostDetailPage{
		PostDetail: newPostDetail(post, viewerID),
		UserInfo:   userInfo,
		MorePost:   more,
	}, nil
}

// Dashboard builds the signed-in home view: the account's own posts in
// feed order, the tags it follows, and the accounts it follows.
func (s *Service) Dashboard(ctx context.Context, userID int) (*Dashboard, error) {
	acc, err := s.accountByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	postDocs, err := s.posts.Find(ctx,
		docstore.Filter{"userUserName": acc.Username},
		&docstore.FindOptions{Sort: compositeSort})
	if err != nil {
		return nil, serverError(err)
	}
	posts := make([]ShortPost, 0, len(postDocs))
	for _, doc := range postDocs {
		var p Post
		if err := decodeDoc(doc, &p); err != nil {
			return nil, serverError(err)
		}
		posts = append(posts, ShortPost{Slug: p.Slug, Title: p.Title, Status: p.Status})
	}

	tags := []TagList{}
	if len(acc.FollowedTag) > 0 {
		tagDocs, err := s.tags.Find(ctx,
			docstore.Filter{"_id": docstore.In(acc.FollowedTag...)}, nil)
		if err != nil {
			return nil, serverError(err)
		}
		for _, doc := range tagDocs {
			var t Tag
			if err := decodeDoc(doc, &t); err != nil {
				return nil, serverError(err)
			}
			tags = append(tags, newTagList(t, &acc))
		}
	}

	following := []SmallAccount{}
	if len(acc.FollowedUser) > 0 {
		accDocs, err := s.accounts.Find(ctx,
			docstore.Filter{"_id": docstore.In(acc.FollowedUser...)}, nil)
		if err != nil {
			return nil, serverError(err)
		}
		for _, doc := range accDocs {
			var other Account
			if err := decodeDoc(doc, &other); err != nil {
				return nil, serverError(err)
			}
			small := newSmallAccount(other)
			small.Followed = true
			following = append(following, small)
		}
	}

	return &Dashboard{Post: posts, Tag: tags, Following: following}, nil
}

// UserProfilePage builds a public profile: the account card with the
// viewer's follow state, the account's published posts, its comments
// across all posts, and the activity summary counts.
func (s *Service) UserProfilePage(ctx context.Context, viewer *Account, username string) (*UserProfilePage, error) {
	acc, err := s.accountByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	postDocs, err := s.posts.Find(ctx, docstore.Filter{
		"userUserName": username,
		"status":       StatusPublished.String(),
	}, &docstore.FindOptions{Sort: compositeSort})
	if err != nil {
		return nil, serverError(err)
	}
	recent := make([]IndexRow, 0, len(postDocs))
	for _, doc := range postDocs {
		var p Post
		if err := decodeDoc(doc, &p); err != nil {
			return nil, serverError(err)
		}
		recent = append(recent, newIndexRow(p, viewer))
	}

	comments, err := s.SearchCommentsByAuthor(ctx, viewer, username)
	if err != nil {
		return nil, err
	}

	info := UserPage{
		Name:      acc.Name,
		Username:  acc.Username,
		Bio:       acc.Bio,
		Avatar:    acc.Avatar,
		Website:   acc.Website,
		CreatedAt: acc.CreatedAt,
	}
	if viewer != nil {
		info.Followed = contains(viewer.FollowedUser, acc.ID)
	}

	return &UserProfilePage{
		UserInfo:      info,
		RecentPost:    recent,
		RecentComment: comments,
		Summary: UserPageSummary{
			CountTag:     len(acc.FollowedTag),
			CountComment: len(comments),
			CountPost:    len(recent),
		},
	}, nil
}

// Search runs the three independent sub-queries of a keyword search and
// merges them: published posts matching on title or content, posts that
// contain a matching comment, and accounts matching on username. Each is
// its own read.
func (s *Service) Search(ctx context.Context, viewer *Account, keyword string) (*SearchResult, error) {
	pattern := "(?i)" + regexp.QuoteMeta(keyword)

	postDocs, err := s.posts.Find(ctx, docstore.Filter{
		"$and": []docstore.Filter{
			{"$or": []docstore.Filter{
				{"title": docstore.Regex(pattern)},
				{"content": docstore.Regex(pattern)},
			}},
			{"status": StatusPublished.String()},
		},
	}, &docstore.FindOptions{Sort: compositeSort})
	if err != nil {
		return nil, serverError(err)
	}
	posts := make([]IndexRow, 0, len(postDocs))
	for _, doc := range postDocs {
		var p Post
		if err := decodeDoc(doc, &p); err != nil {
			return nil, serverError(err)
		}
		posts = append(posts, newIndexRow(p, viewer))
	}

	commentDocs, err := s.posts.Find(ctx,
		docstore.Filter{"comment.content": docstore.Regex(pattern)},
		&docstore.FindOptions{Sort: compositeSort})
	if err != nil {
		return nil, serverError(err)
	}
	comments := make([]IndexRow, 0, len(commentDocs))
	for _, doc := range commentDocs {
		var p Post
		if err := decodeDoc(doc, &p); err != nil {
			return nil, serverError(err)
		}
		comments = append(comments, newIndexRow(p, viewer))
	}

	accDocs, err := s.accounts.Find(ctx,
		docstore.Filter{"username": docstore.Regex(pattern)}, nil)
	if err != nil {
		return nil, serverError(err)
	}
	users := make([]SmallAccount, 0, len(accDocs))
	for _, doc := range accDocs {
		var acc Account
		if err := decodeDoc(doc, &acc); err != nil {
			return nil, serverError(err)
		}
		small := newSmallAccount(acc)
		if viewer != nil {
			small.Followed = contains(viewer.FollowedUser, acc.ID)
		}
		users = append(users, small)
	}

	return &SearchResult{Post: posts, Comment: comments, User: users}, nil
}

// PostsByTag lists every post carrying the tag's value, drafts included,
// feed ordered. An unknown tag value is a NotFound, not an empty list.
func (s *Service) PostsByTag(ctx context.Context, viewer *Account, value string) ([]IndexRow, error) {
	if _, err := s.tagByValue(ctx, value); err != nil {
		return nil, err
	}
	docs, err := s.posts.Find(ctx, docstore.Filter{
		"tag": value,
	}, &docstore.FindOptions{Sort: compositeSort})
	if err != nil {
		return nil, serverError(err)
	}
	rows := make([]IndexRow, 0, len(docs))
	for _, doc := range docs {
		var p Post
		if err := decodeDoc(doc, &p); err != nil {
			return nil, serverError(err)
		}
		rows = append(rows, newIndexRow(p, viewer))
	}
	return rows, nil
}

// AdminPosts lists the published posts for the admin surface, feed
// ordered. Drafts stay private to their authors even here.
func (s *Service) AdminPosts(ctx context.Context) ([]AdminPostRow, error) {
	docs, err := s.posts.Find(ctx,
		docstore.Filter{"status": StatusPublished.String()},
		&docstore.FindOptions{Sort: compositeSort})
	if err != nil {
		return nil, serverError(err)
	}
	rows := make([]AdminPostRow, 0, len(docs))
	for _, doc := range docs {
		var p Post
		if err := decodeDoc(doc, &p); err != nil {
			return nil, serverError(err)
		}
		rows = append(rows, AdminPostRow{
			ID:            p.ID,
			Slug:          p.Slug,
			Title:         p.Title,
			UserUsername:  p.UserUsername,
			Status:        p.Status,
			CommentCount:  p.CommentCount,
			ReactionCount: p.ReactionCount,
			CreatedAt:     p.CreatedAt,
		})
	}
	return rows, nil
}

// ShortPostsByAuthor lists an account's own posts, drafts included, as the
// compact slug/title/status rows used by the editor sidebar.
func (s *Service) ShortPostsByAuthor(ctx context.Context, userID int) ([]ShortPost, error) {
	acc, err := s.accountByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	docs, err := s.posts.Find(ctx,
		docstore.Filter{"userUserName": acc.Username},
		&docstore.FindOptions{Sort: compositeSort})
	if err != nil {
		return nil, serverError(err)
	}
	rows := make([]ShortPost, 0, len(docs))
	for _, doc := range docs {
		var p Post
		if err := decodeDoc(doc, &p); err != nil {
			return nil, serverError(err)
		}
		rows = append(rows, ShortPost{Slug: p.Slug, Title: p.Title, Status: p.Status})
	}
	return rows, nil
}
