package platform

import (
	"context"
	"errors"

	"inkwell/api/internal/docstore"
)

type CreateTagInput struct {
	Value string
	Desc  string
	Color string
	Image string
	Type  TagType
}

type UpdateTagInput struct {
	Value string
	Desc  *string
	Color *string
	Image *string
	Type  *TagType
}

// CreateTag registers a tag or category. Values are unique by a
// read-then-insert check; the usage counter starts at zero and only
// post create and delete ever move it.
func (s *Service) CreateTag(ctx context.Context, in CreateTagInput) (*TagAdmin, error) {
	_, err := s.tags.FindOne(ctx, docstore.Filter{"value": in.Value})
	if err == nil {
		return nil, duplicate("tag value already exists")
	}
	if !errors.Is(err, docstore.ErrNoDocuments) {
		return nil, serverError(err)
	}

	id, err := nextID(ctx, s.tags)
	if err != nil {
		return nil, serverError(err)
	}
	ts := now()
	tag := Tag{
		ID:        id,
		Value:     in.Value,
		Desc:      in.Desc,
		Color:     in.Color,
		Image:     in.Image,
		Type:      in.Type,
		CreatedAt: ts,
		UpdatedAt: ts,
		Moderator: []int{},
	}
	doc, err := encodeDoc(tag)
	if err != nil {
		return nil, serverError(err)
	}
	if err := s.tags.InsertOne(ctx, doc); err != nil {
		return nil, serverError(err)
	}
	if s.index != nil {
		s.index.IndexTag(tag.Value, tag.Desc)
	}
	return &TagAdmin{ID: tag.ID, Value: tag.Value, Desc: tag.Desc,
		Color: tag.Color, Image: tag.Image}, nil
}

// UpdateTag applies partial edits to a tag. The value itself is the lookup
// key and cannot change; posts reference tags by value.
func (s *Service) UpdateTag(ctx context.Context, in UpdateTagInput) (*TagAdmin, error) {
	tag, err := s.tagByValue(ctx, in.Value)
	if err != nil {
		return nil, err
	}
	if in.Desc != nil {
		tag.Desc = *in.Desc
	}
	if in.Color != nil {
		tag.Color = *in.Color
	}
	if in.Image != nil {
		tag.Image = *in.Image
	}
	if in.Type != nil {
		tag.Type = *in.Type
	}
	tag.UpdatedAt = now()

	doc, err := encodeDoc(tag)
	if err != nil {
		return nil, serverError(err)
	}
	if err := s.tags.ReplaceOne(ctx, docstore.Filter{"_id": tag.ID}, doc); err != nil {
		return nil, serverError(err)
	}
	if s.index != nil {
		s.index.IndexTag(tag.Value, tag.Desc)
	}
	return &TagAdmin{ID: tag.ID, Value: tag.Value, Desc: tag.Desc,
		Color: tag.Color, Image: tag.Image, PostCount: tag.PostCount}, nil
}

// ListTagsAdmin is the admin listing: every tag and category with its
// usage counter as stored, drift included.
func (s *Service) ListTagsAdmin(ctx context.Context) ([]TagAdmin, error) {
	docs, err := s.tags.Find(ctx, docstore.Filter{},
		&docstore.FindOptions{Sort: []docstore.SortField{{Key: "_id"}}})
	if err != nil {
		return nil, serverError(err)
	}
	rows := make([]TagAdmin, 0, len(docs))
	for _, doc := range docs {
		var t Tag
		if err := decodeDoc(doc, &t); err != nil {
			return nil, serverError(err)
		}
		rows = append(rows, TagAdmin{ID: t.ID, Value: t.Value, Desc: t.Desc,
			Color: t.Color, Image: t.Image, PostCount: t.PostCount})
	}
	return rows, nil
}

// GetTags lists tags for pickers. Anonymous callers see only plain tags;
// a signed-in viewer sees categories too, with follow flags resolved.
func (s *Service) GetTags(ctx context.Context, viewer *Account) ([]TagList, error) {
	filter := docstore.Filter{"type": TypeTag.String()}
	if viewer != nil {
		filter = docstore.Filter{}
	}
	docs, err := s.tags.Find(ctx, filter,
		&docstore.FindOptions{Sort: []docstore.SortField{{Key: "post", Desc: true}}})
	if err != nil {
		return nil, serverError(err)
	}
	rows := make([]TagList, 0, len(docs))
	for _, doc := range docs {
		var t Tag
		if err := decodeDoc(doc, &t); err != nil {
			return nil, serverError(err)
		}
		rows = append(rows, newTagList(t, viewer))
	}
	return rows, nil
}

// FollowTagToggle flips the caller's membership in its followedTag list.
// The tag document itself is never written; the edge is single-sided.
func (s *Service) FollowTagToggle(ctx context.Context, userID int, value string) (ToggleState, error) {
	acc, err := s.accountByID(ctx, userID)
	if err != nil {
		return "", err
	}
	tag, err := s.tagByValue(ctx, value)
	if err != nil {
		return "", err
	}

	state := ToggleAdded
	update := docstore.Update{"$addToSet": map[string]any{"followedTag": tag.ID}}
	if contains(acc.FollowedTag, tag.ID) {
		state = ToggleRemoved
		update = docstore.Update{"$pull": map[string]any{"followedTag": tag.ID}}
	}
	if err := s.accounts.UpdateOne(ctx, docstore.Filter{"_id": acc.ID}, update); err != nil {
		return "", serverError(err)
	}
	return state, nil
}

// TagPage is a tag's landing card: its fields, the viewer's follow flag,
// and the moderator accounts resolved to small cards.
func (s *Service) TagPage(ctx context.Context, viewer *Account, value string) (*TagPage, error) {
	tag, err := s.tagByValue(ctx, value)
	if err != nil {
		return nil, err
	}

	moderators := []SmallAccount{}
	if len(tag.Moderator) > 0 {
		docs, err := s.accounts.Find(ctx,
			docstore.Filter{"_id": docstore.In(tag.Moderator...)}, nil)
		if err != nil {
			return nil, serverError(err)
		}
		for _, doc := range docs {
			var acc Account
			if err := decodeDoc(doc, &acc); err != nil {
				return nil, serverError(err)
			}
			small := newSmallAccount(acc)
			if viewer != nil {
				small.Followed = contains(viewer.FollowedUser, acc.ID)
			}
			moderators = append(moderators, small)
		}
	}

	page := &TagPage{
		Value:     tag.Value,
		Desc:      tag.Desc,
		Color:     tag.Color,
		Image:     tag.Image,
		Moderator: moderators,
	}
	if viewer != nil {
		page.Saved = contains(viewer.FollowedTag, tag.ID)
	}
	return page, nil
}

// TagIndex is the tag landing view: every category, plus up to ten tags
// with the viewer's followed tags listed first and the rest backfilled by
// usage count.
func (s *Service) TagIndex(ctx context.Context, viewer *Account) (*TagIndex, error) {
	byCount := []docstore.SortField{{Key: "post", Desc: true}}

	catDocs, err := s.tags.Find(ctx,
		docstore.Filter{"type": TypeCategory.String()},
		&docstore.FindOptions{Sort: byCount})
	if err != nil {
		return nil, serverError(err)
	}
	categories := make([]ShortTag, 0, len(catDocs))
	for _, doc := range catDocs {
		var t Tag
		if err := decodeDoc(doc, &t); err != nil {
			return nil, serverError(err)
		}
		categories = append(categories, newShortTag(t))
	}

	tags := []ShortTag{}
	followed := []int{}
	if viewer != nil {
		followed = viewer.FollowedTag
	}
	if len(followed) > 0 {
		docs, err := s.tags.Find(ctx, docstore.Filter{
			"type": TypeTag.String(),
			"_id":  docstore.In(followed...),
		}, &docstore.FindOptions{Sort: byCount, Limit: tagIndexLimit})
		if err != nil {
			return nil, serverError(err)
		}
		for _, doc := range docs {
			var t Tag
			if err := decodeDoc(doc, &t); err != nil {
				return nil, serverError(err)
			}
			tags = append(tags, newShortTag(t))
		}
	}
	if len(tags) < tagIndexLimit {
		filter := docstore.Filter{"type": TypeTag.String()}
		if len(followed) > 0 {
			filter["_id"] = docstore.NotIn(followed...)
		}
		docs, err := s.tags.Find(ctx, filter,
			&docstore.FindOptions{Sort: byCount, Limit: tagIndexLimit - len(tags)})
		if err != nil {
			return nil, serverError(err)
		}
		for _, doc := range docs {
			var t Tag
			if err := decodeDoc(doc, &t); err != nil {
				return nil, serverError(err)
			}
			tags = append(tags, newShortTag(t))
		}
	}

	return &TagIndex{Tag: tags, Category: categories}, nil
}
