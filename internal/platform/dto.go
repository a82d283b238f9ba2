package platform

import "time"

// ToggleState reports which direction a membership toggle went.
type ToggleState string

const (
	ToggleAdded   ToggleState = "added"
	ToggleRemoved ToggleState = "removed"
)

// IndexRow is one feed/search row: a published post with its author
// snapshot and the viewer's save flag resolved.
type IndexRow struct {
	ID            int        `json:"id"`
	UserUsername  string     `json:"userUsername"`
	UserAvatar    string     `json:"userAvatar"`
	UserName      string     `json:"userName"`
	Slug          string     `json:"slug"`
	Banner        string     `json:"banner"`
	Title         string     `json:"title"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	Status        PostStatus `json:"status"`
	TagList       []string   `json:"tagList"`
	CommentCount  int        `json:"commentCount"`
	ReactionCount int        `json:"reactionCount"`
	Save          bool       `json:"save"`
}

type PostDetailComment struct {
	ID           int       `json:"id"`
	Content      string    `json:"content"`
	UserUsername string    `json:"userUserName"`
	UserAvatar   string    `json:"userAvatar"`
	UserName     string    `json:"userName"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Interact     int       `json:"interact"`
	ParentID     int       `json:"parentId"`
	Interacted   bool      `json:"interacted"`
}

type PostDetail struct {
	ID           int                 `json:"id"`
	UserUsername string              `json:"userUserName"`
	UserAvatar   string              `json:"userAvatar"`
	UserName     string              `json:"userName"`
	Slug         string              `json:"slug"`
	Banner       string              `json:"banner"`
	Title        string              `json:"title"`
	Content      string              `json:"content"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
	Status       PostStatus          `json:"status"`
	Tags         []string            `json:"tag"`
	Comments     []PostDetailComment `json:"comment"`
	Interacted   bool                `json:"interacted"`
	Saved        bool                `json:"saved"`
}

// PostDetailUser is the author card on a post page, with the viewer's
// follow state resolved.
type PostDetailUser struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	Followed bool   `json:"followed"`
	Bio      string `json:"bio"`
}

// MorePost is a compact "more by this author" row.
type MorePost struct {
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	Banner        string    `json:"banner"`
	CreatedAt     time.Time `json:"createdAt"`
	CommentCount  int       `json:"commentCount"`
	ReactionCount int       `json:"reactionCount"`
}

// PostDetailPage is the full post page: the post with viewer flags, the
// author profile, and up to five more posts by the same author.
type PostDetailPage struct {
	PostDetail PostDetail     `json:"postDetail"`
	UserInfo   PostDetailUser `json:"userInfo"`
	MorePost   []MorePost     `json:"morePost"`
}

type ShortPost struct {
	Slug   string     `json:"slug"`
	Title  string     `json:"title"`
	Status PostStatus `json:"status"`
}

// AdminPostRow is the admin listing shape.
type AdminPostRow struct {
	ID            int        `json:"id"`
	Slug          string     `json:"slug"`
	Title         string     `json:"title"`
	UserUsername  string     `json:"userUserName"`
	Status        PostStatus `json:"status"`
	CommentCount  int        `json:"commentCount"`
	ReactionCount int        `json:"reactionCount"`
	CreatedAt     time.Time  `json:"createdAt"`
}

type CommentDetail struct {
	ID           int       `json:"id"`
	Content      string    `json:"content"`
	UserUsername string    `json:"userUserName"`
	UserAvatar   string    `json:"userAvatar"`
	UserName     string    `json:"userName"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Interact     int       `json:"interact"`
	ParentID     int       `json:"parentId"`
	Interacted   bool      `json:"interacted"`
}

// CommentInfoPage is one authored comment with its resolved parent, as
// shown on a user's public page.
type CommentInfoPage struct {
	PostSlug      string         `json:"slug"`
	PostTitle     string         `json:"postTitle"`
	ParentComment *CommentDetail `json:"parentComment"`
	ChildComment  CommentDetail  `json:"childComment"`
}

type SmallAccount struct {
	Username string `json:"userUserName"`
	Avatar   string `json:"userAvatar"`
	Name     string `json:"userName"`
	Followed bool   `json:"followed"`
}

type TagList struct {
	Value string `json:"value"`
	Desc  string `json:"desc"`
	Color string `json:"color"`
	Image string `json:"image"`
	Saved bool   `json:"saved"`
}

type TagPage struct {
	Value     string         `json:"value"`
	Desc      string         `json:"desc"`
	Color     string         `json:"color"`
	Image     string         `json:"image"`
	Saved     bool           `json:"saved"`
	Moderator []SmallAccount `json:"moderator"`
}

type TagAdmin struct {
	ID        int    `json:"id"`
	Value     string `json:"value"`
	Desc      string `json:"desc"`
	Color     string `json:"color"`
	Image     string `json:"image"`
	PostCount int    `json:"postCount"`
}

type ShortTag struct {
	Value     string `json:"value"`
	Color     string `json:"color"`
	Image     string `json:"image"`
	PostCount int    `json:"postCount"`
}

// TagIndex is the tag landing view: all categories plus up to ten tags,
// the viewer's followed tags first.
type TagIndex struct {
	Tag      []ShortTag `json:"tag"`
	Category []ShortTag `json:"category"`
}

// Dashboard is the signed-in account's home view.
type Dashboard struct {
	Post      []ShortPost    `json:"post"`
	Tag       []TagList      `json:"tag"`
	Following []SmallAccount `json:"following"`
}

type UserPage struct {
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Bio       string    `json:"bio"`
	Avatar    string    `json:"avatar"`
	Website   string    `json:"website"`
	CreatedAt time.Time `json:"createdAt"`
	Followed  bool      `json:"followed"`
}

type UserPageSummary struct {
	CountTag     int `json:"countTag"`
	CountComment int `json:"countComment"`
	CountPost    int `json:"countPost"`
}

// UserProfilePage is a public profile with recent activity.
type UserProfilePage struct {
	UserInfo      UserPage          `json:"userInfo"`
	RecentPost    []IndexRow        `json:"recentPost"`
	RecentComment []CommentInfoPage `json:"recentComment"`
	Summary       UserPageSummary   `json:"summary"`
}

// SearchResult merges the three independent sub-queries of a keyword
// search. They are separate reads and are not consistent with each other.
type SearchResult struct {
	Post    []IndexRow     `json:"post"`
	Comment []IndexRow     `json:"comment"`
	User    []SmallAccount `json:"user"`
}

// AccountProfile is the owner's own account view (no password hash).
type AccountProfile struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Username     string `json:"username"`
	SchoolEmail  string `json:"schoolEmail"`
	PrivateEmail string `json:"privateEmail"`
	Bio          string `json:"bio"`
	Avatar       string `json:"avatar"`
	Admin        bool   `json:"admin"`
	Website      string `json:"website"`
}

// AdminAccountRow is the admin account listing shape.
type AdminAccountRow struct {
	Name        string        `json:"name"`
	Username    string        `json:"username"`
	SchoolEmail string        `json:"schoolEmail"`
	Email       string        `json:"email"`
	Avatar      string        `json:"avatar"`
	Status      AccountStatus `json:"status"`
	LastAccess  time.Time     `json:"lastAccess"`
	Admin       bool          `json:"admin"`
}

func newAccountProfile(acc Account) AccountProfile {
	return AccountProfile{
		ID:           acc.ID,
		Name:         acc.Name,
		Username:     acc.Username,
		SchoolEmail:  acc.SchoolEmail,
		PrivateEmail: acc.PrivateEmail,
		Bio:          acc.Bio,
		Avatar:       acc.Avatar,
		Admin:        acc.Admin,
		Website:      acc.Website,
	}
}

func newSmallAccount(acc Account) SmallAccount {
	return SmallAccount{
		Username: acc.Username,
		Avatar:   acc.Avatar,
		Name:     acc.Name,
	}
}

func newIndexRow(post Post, viewer *Account) IndexRow {
	row := IndexRow{
		ID:            post.ID,
		UserUsername:  post.UserUsername,
		UserAvatar:    post.UserAvatar,
		UserName:      post.UserName,
		Slug:          post.Slug,
		Banner:        post.Banner,
		Title:         post.Title,
		CreatedAt:     post.CreatedAt,
		UpdatedAt:     post.UpdatedAt,
		Status:        post.Status,
		TagList:       post.Tags,
		CommentCount:  post.CommentCount,
		ReactionCount: post.ReactionCount,
	}
	if viewer != nil {
		row.Save = contains(viewer.ReadingList, post.ID)
	}
	return row
}

func newPostDetailComment(c Comment, viewerID *int) PostDetailComment {
	detail := PostDetailComment{
		ID:           c.ID,
		Content:      c.Content,
		UserUsername: c.UserUsername,
		UserAvatar:   c.UserAvatar,
		UserName:     c.UserName,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		Interact:     c.Interact,
		ParentID:     c.ParentID,
	}
	if viewerID != nil {
		detail.Interacted = contains(c.InteractList, *viewerID)
	}
	return detail
}

func newPostDetail(post Post, viewerID *int) PostDetail {
	detail := PostDetail{
		ID:           post.ID,
		UserUsername: post.UserUsername,
		UserAvatar:   post.UserAvatar,
		UserName:     post.UserName,
		Slug:         post.Slug,
		Banner:       post.Banner,
		Title:        post.Title,
		Content:      post.Content,
		CreatedAt:    post.CreatedAt,
		UpdatedAt:    post.UpdatedAt,
		Status:       post.Status,
		Tags:         post.Tags,
	}
	for _, c := range post.Comments {
		detail.Comments = append(detail.Comments, newPostDetailComment(c, viewerID))
	}
	if viewerID != nil {
		detail.Interacted = contains(post.ReactionList, *viewerID)
		detail.Saved = contains(post.SavedByUser, *viewerID)
	}
	return detail
}

func newCommentDetail(c Comment, viewerID *int) CommentDetail {
	detail := CommentDetail{
		ID:           c.ID,
		Content:      c.Content,
		UserUsername: c.UserUsername,
		UserAvatar:   c.UserAvatar,
		UserName:     c.UserName,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
		Interact:     c.Interact,
		ParentID:     c.ParentID,
	}
	if viewerID != nil {
		detail.Interacted = contains(c.InteractList, *viewerID)
	}
	return detail
}

func newTagList(tag Tag, viewer *Account) TagList {
	list := TagList{
		Value: tag.Value,
		Desc:  tag.Desc,
		Color: tag.Color,
		Image: tag.Image,
	}
	if viewer != nil {
		list.Saved = contains(viewer.FollowedTag, tag.ID)
	}
	return list
}

func newShortTag(tag Tag) ShortTag {
	return ShortTag{
		Value:     tag.Value,
		Color:     tag.Color,
		Image:     tag.Image,
		PostCount: tag.PostCount,
	}
}

func newMorePost(post Post) MorePost {
	return MorePost{
		Slug:          post.Slug,
		Title:         post.Title,
		Banner:        post.Banner,
		CreatedAt:     post.CreatedAt,
		CommentCount:  post.CommentCount,
		ReactionCount: post.ReactionCount,
	}
}
