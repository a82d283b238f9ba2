package platform

import (
	"encoding/json"
	"fmt"
	"time"
)

// PostStatus is the post lifecycle: Draft ⇄ Published, nothing else. The
// store holds the string form; unknown strings are rejected at the
// serialization boundary so the domain never sees an open-ended value.
type PostStatus int

const (
	StatusPublished PostStatus = iota
	StatusDraft
)

func (s PostStatus) String() string {
	if s == StatusDraft {
		return "Draft"
	}
	return "Published"
}

func (s PostStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *PostStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw {
	case "Published":
		*s = StatusPublished
	case "Draft":
		*s = StatusDraft
	default:
		return fmt.Errorf("unknown post status %q", raw)
	}
	return nil
}

// AccountStatus: Activated, Banned or Pending.
type AccountStatus int

const (
	AccountActivated AccountStatus = iota
	AccountBanned
	AccountPending
)

func (s AccountStatus) String() string {
	switch s {
	case AccountBanned:
		return "Banned"
	case AccountPending:
		return "Pending"
	}
	return "Activated"
}

func (s AccountStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *AccountStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw {
	case "Activated":
		*s = AccountActivated
	case "Banned":
		*s = AccountBanned
	case "Pending":
		*s = AccountPending
	default:
		return fmt.Errorf("unknown account status %q", raw)
	}
	return nil
}

// TagType separates site-level categories from free tags.
type TagType int

const (
	TypeTag TagType = iota
	TypeCategory
)

func (t TagType) String() string {
	if t == TypeCategory {
		return "Category"
	}
	return "Tag"
}

func (t TagType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TagType) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw {
	case "Tag":
		*t = TypeTag
	case "Category":
		*t = TypeCategory
	default:
		return fmt.Errorf("unknown tag type %q", raw)
	}
	return nil
}

// Comment lives embedded in exactly one post. Its id is local to that post,
// assigned max+1 and never reused (comments cannot be deleted). The author
// fields are a snapshot taken at creation time.
type Comment struct {
	ID           int       `json:"_id"`
	Content      string    `json:"content"`
	UserUsername string    `json:"userUserName"`
	UserAvatar   string    `json:"userAvatar"`
	UserName     string    `json:"userName"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Interact     int       `json:"interact"`
	ParentID     int       `json:"parentId"`
	InteractList []int     `json:"interactList"`
}

// Post is the aggregate at the center of the system. Counters are
// denormalized next to their member lists: reactionCount mirrors
// len(reactionList) and commentCount mirrors len(comment) after every
// mutating operation.
type Post struct {
	ID            int        `json:"_id"`
	UserUsername  string     `json:"userUserName"`
	UserAvatar    string     `json:"userAvatar"`
	UserName      string     `json:"userName"`
	Slug          string     `json:"slug"`
	Banner        string     `json:"banner"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	Status        PostStatus `json:"status"`
	Tags          []string   `json:"tag"`
	Comments      []Comment  `json:"comment"`
	CommentCount  int        `json:"commentCount"`
	ReactionCount int        `json:"reactionCount"`
	ReactionList  []int      `json:"reactionList"`
	CommentList   []int      `json:"commentList"`
	SavedByUser   []int      `json:"savedByUser"`
}

// Tag references posts only by its value; posts carry tag values, not ids.
type Tag struct {
	ID        int       `json:"_id"`
	Value     string    `json:"value"`
	Desc      string    `json:"desc"`
	Color     string    `json:"color"`
	Image     string    `json:"image"`
	PostCount int       `json:"post"`
	Type      TagType   `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Moderator []int     `json:"moderator"`
}

// Account. readingList holds post ids the account bookmarked and is the
// mirror of each post's savedByUser; followedTag and followedUser are
// single-sided, no reverse list exists on the other entity.
type Account struct {
	ID           int           `json:"_id"`
	Name         string        `json:"name"`
	Username     string        `json:"username"`
	SchoolEmail  string        `json:"schoolEmail"`
	PrivateEmail string        `json:"privateEmail"`
	Bio          string        `json:"bio"`
	Password     string        `json:"password"`
	Avatar       string        `json:"avatar"`
	Admin        bool          `json:"admin"`
	Website      string        `json:"website"`
	LastAccess   time.Time     `json:"lastAccess"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	Status       AccountStatus `json:"status"`
	FollowedTag  []int         `json:"followedTag"`
	ReadingList  []int         `json:"readingList"`
	FollowedUser []int         `json:"followedUser"`
}

func contains(list []int, v int) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
