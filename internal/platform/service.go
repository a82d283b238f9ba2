// Package platform implements the cross-collection consistency engine for
// the content platform: slug generation, the comment thread and reaction
// state machines embedded in post documents, the save/follow synchronizers,
// tag usage counters, and the read-side views that join the three
// collections in the application layer.
//
// There are no multi-document transactions anywhere. Every protocol that
// spans two documents is a sequence of independently atomic writes; a crash
// or concurrent interleaving between steps can leave a bidirectional
// relationship one-sided until the next toggle crosses it again. That
// window is a property of the design, not something this package detects or
// repairs.
package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"inkwell/api/internal/docstore"
)

// Collection names in the document store.
const (
	CollectionPosts    = "posts"
	CollectionTags     = "tags"
	CollectionAccounts = "accounts"
)

// Stores bundles the three collection handles the engine operates on.
type Stores struct {
	Posts    docstore.Collection
	Tags     docstore.Collection
	Accounts docstore.Collection
}

// Indexer receives fire-and-forget notifications for the quick-search
// index. All methods must be non-blocking; a nil Indexer disables indexing.
type Indexer interface {
	IndexPost(slug, title, author string)
	RemovePost(slug string)
	IndexTag(value, desc string)
	IndexAccount(username, name string)
}

type Service struct {
	posts    docstore.Collection
	tags     docstore.Collection
	accounts docstore.Collection
	index    Indexer
}

func New(st Stores) *Service {
	return &Service{
		posts:    st.Posts,
		tags:     st.Tags,
		accounts: st.Accounts,
	}
}

// SetIndexer attaches the optional quick-search indexer.
func (s *Service) SetIndexer(ix Indexer) {
	s.index = ix
}

func encodeDoc(v any) (docstore.Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var doc docstore.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return doc, nil
}

func decodeDoc(doc docstore.Document, v any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// nextID assigns monotonic integer ids the way the store always has:
// max(existing)+1, read just before the insert. Concurrent creators can
// collide; the insert then fails and surfaces as a ServerError.
func nextID(ctx context.Context, col docstore.Collection) (int, error) {
	docs, err := col.Find(ctx, docstore.Filter{}, &docstore.FindOptions{
		Sort:  []docstore.SortField{{Key: "_id", Desc: true}},
		Limit: 1,
	})
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		return 1, nil
	}
	var head struct {
		ID int `json:"_id"`
	}
	if err := decodeDoc(docs[0], &head); err != nil {
		return 0, err
	}
	return head.ID + 1, nil
}

func (s *Service) postBySlug(ctx context.Context, slug string) (Post, error) {
	doc, err := s.posts.FindOne(ctx, docstore.Filter{"slug": slug})
	if errors.Is(err, docstore.ErrNoDocuments) {
		return Post{}, notFound("post")
	}
	if err != nil {
		return Post{}, serverError(err)
	}
	var post Post
	if err := decodeDoc(doc, &post); err != nil {
		return Post{}, serverError(err)
	}
	return post, nil
}

func (s *Service) accountByID(ctx context.Context, id int) (Account, error) {
	doc, err := s.accounts.FindOne(ctx, docstore.Filter{"_id": id})
	if errors.Is(err, docstore.ErrNoDocuments) {
		return Account{}, notFound("account")
	}
	if err != nil {
		return Account{}, serverError(err)
	}
	var acc Account
	if err := decodeDoc(doc, &acc); err != nil {
		return Account{}, serverError(err)
	}
	return acc, nil
}

func (s *Service) accountByUsername(ctx context.Context, username string) (Account, error) {
	doc, err := s.accounts.FindOne(ctx, docstore.Filter{"username": username})
	if errors.Is(err, docstore.ErrNoDocuments) {
		return Account{}, notFound("account")
	}
	if err != nil {
		return Account{}, serverError(err)
	}
	var acc Account
	if err := decodeDoc(doc, &acc); err != nil {
		return Account{}, serverError(err)
	}
	return acc, nil
}

func (s *Service) tagByValue(ctx context.Context, value string) (Tag, error) {
	doc, err := s.tags.FindOne(ctx, docstore.Filter{"value": value})
	if errors.Is(err, docstore.ErrNoDocuments) {
		return Tag{}, notFound("tag")
	}
	if err != nil {
		return Tag{}, serverError(err)
	}
	var tag Tag
	if err := decodeDoc(doc, &tag); err != nil {
		return Tag{}, serverError(err)
	}
	return tag, nil
}

// replacePost writes the whole post document back under its id. The
// comment thread manager works read-modify-replace on purpose: comments
// are embedded, and the single-writer-per-post assumption makes a
// document-sized write simpler than positional array updates.
func (s *Service) replacePost(ctx context.Context, post Post) error {
	doc, err := encodeDoc(post)
	if err != nil {
		return serverError(err)
	}
	if err := s.posts.ReplaceOne(ctx, docstore.Filter{"_id": post.ID}, doc); err != nil {
		return serverError(err)
	}
	return nil
}

func now() time.Time {
	return time.Now().UTC()
}
