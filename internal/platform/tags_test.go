package platform

import (
	"context"
	"fmt"
	"testing"
)

func TestCreateTagDuplicate(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	tag, err := s.CreateTag(ctx, CreateTagInput{Value: "golang", Desc: "the language"})
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if tag.ID != 1 || tag.Value != "golang" {
		t.Errorf("tag = %+v", tag)
	}

	_, err = s.CreateTag(ctx, CreateTagInput{Value: "golang"})
	if KindOf(err) != KindDuplicate {
		t.Errorf("duplicate value: got %v, want Duplicate", err)
	}
}

func TestUpdateTag(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	if _, err := s.CreateTag(ctx, CreateTagInput{Value: "golang", Desc: "old", Color: "#000"}); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	desc := "new description"
	updated, err := s.UpdateTag(ctx, UpdateTagInput{Value: "golang", Desc: &desc})
	if err != nil {
		t.Fatalf("UpdateTag: %v", err)
	}
	if updated.Desc != "new description" || updated.Color != "#000" {
		t.Errorf("partial update result = %+v", updated)
	}

	if _, err := s.UpdateTag(ctx, UpdateTagInput{Value: "missing"}); KindOf(err) != KindNotFound {
		t.Errorf("update of missing tag: got %v, want NotFound", err)
	}
}

func TestGetTagsVisibility(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	if _, err := s.CreateTag(ctx, CreateTagInput{Value: "golang", Type: TypeTag}); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if _, err := s.CreateTag(ctx, CreateTagInput{Value: "engineering", Type: TypeCategory}); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	anon, err := s.GetTags(ctx, nil)
	if err != nil {
		t.Fatalf("GetTags anonymous: %v", err)
	}
	if len(anon) != 1 || anon[0].Value != "golang" {
		t.Errorf("anonymous listing = %+v, want only plain tags", anon)
	}

	viewer := Account{ID: 9, FollowedTag: []int{1}}
	all, err := s.GetTags(ctx, &viewer)
	if err != nil {
		t.Fatalf("GetTags viewer: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("viewer listing = %+v, want both", all)
	}
	for _, row := range all {
		if row.Value == "golang" && !row.Saved {
			t.Error("followed tag not flagged saved")
		}
		if row.Value == "engineering" && row.Saved {
			t.Error("unfollowed category flagged saved")
		}
	}
}

func TestFollowTagToggle(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	bob := seedAccount(t, s, "Bob Roe", "bob")
	if _, err := s.CreateTag(ctx, CreateTagInput{Value: "golang"}); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	state, err := s.FollowTagToggle(ctx, bob.ID, "golang")
	if err != nil {
		t.Fatalf("FollowTagToggle: %v", err)
	}
	if state != ToggleAdded {
		t.Errorf("state = %v, want added", state)
	}
	acc, err := s.accountByID(ctx, bob.ID)
	if err != nil {
		t.Fatalf("accountByID: %v", err)
	}
	if !contains(acc.FollowedTag, 1) {
		t.Errorf("followedTag = %v, missing tag id 1", acc.FollowedTag)
	}

	state, err = s.FollowTagToggle(ctx, bob.ID, "golang")
	if err != nil {
		t.Fatalf("FollowTagToggle: %v", err)
	}
	if state != ToggleRemoved {
		t.Errorf("state = %v, want removed", state)
	}

	if _, err := s.FollowTagToggle(ctx, bob.ID, "missing"); KindOf(err) != KindNotFound {
		t.Errorf("follow of missing tag: got %v, want NotFound", err)
	}
}

func TestTagPage(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	mod := seedAccount(t, s, "Mod Erator", "mod")
	viewer := seedAccount(t, s, "Bob Roe", "bob")
	if _, err := s.CreateTag(ctx, CreateTagInput{Value: "golang", Desc: "d"}); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	// Attach the moderator directly; there is no admin operation for it.
	tag, err := s.tagByValue(ctx, "golang")
	if err != nil {
		t.Fatalf("tagByValue: %v", err)
	}
	tag.Moderator = []int{mod.ID}
	doc, err := encodeDoc(tag)
	if err != nil {
		t.Fatalf("encodeDoc: %v", err)
	}
	if err := s.tags.ReplaceOne(ctx, map[string]any{"_id": tag.ID}, doc); err != nil {
		t.Fatalf("ReplaceOne: %v", err)
	}

	if _, err := s.FollowTagToggle(ctx, viewer.ID, "golang"); err != nil {
		t.Fatalf("FollowTagToggle: %v", err)
	}
	acc, err := s.accountByID(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("accountByID: %v", err)
	}

	page, err := s.TagPage(ctx, &acc, "golang")
	if err != nil {
		t.Fatalf("TagPage: %v", err)
	}
	if !page.Saved {
		t.Error("viewer follow flag not set")
	}
	if len(page.Moderator) != 1 || page.Moderator[0].Username != "mod" {
		t.Errorf("moderators = %+v", page.Moderator)
	}
}

func TestTagIndex(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	viewer := seedAccount(t, s, "Bob Roe", "bob")

	if _, err := s.CreateTag(ctx, CreateTagInput{Value: "engineering", Type: TypeCategory}); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	for i := 0; i < 12; i++ {
		if _, err := s.CreateTag(ctx, CreateTagInput{Value: fmt.Sprintf("tag-%02d", i)}); err != nil {
			t.Fatalf("CreateTag: %v", err)
		}
	}
	if _, err := s.FollowTagToggle(ctx, viewer.ID, "tag-11"); err != nil {
		t.Fatalf("FollowTagToggle: %v", err)
	}
	acc, err := s.accountByID(ctx, viewer.ID)
	if err != nil {
		t.Fatalf("accountByID: %v", err)
	}

	index, err := s.TagIndex(ctx, &acc)
	if err != nil {
		t.Fatalf("TagIndex: %v", err)
	}
	if len(index.Category) != 1 || index.Category[0].Value != "engineering" {
		t.Errorf("categories = %+v", index.Category)
	}
	if len(index.Tag) != tagIndexLimit {
		t.Fatalf("tag list has %d entries, want %d", len(index.Tag), tagIndexLimit)
	}
	// Followed tags come first, then the backfill.
	if index.Tag[0].Value != "tag-11" {
		t.Errorf("first tag = %q, want the followed tag", index.Tag[0].Value)
	}
	seen := map[string]bool{}
	for _, tag := range index.Tag {
		if seen[tag.Value] {
			t.Errorf("tag %q listed twice", tag.Value)
		}
		seen[tag.Value] = true
	}
}
