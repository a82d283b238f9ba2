package platform

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"inkwell/api/internal/docstore"
)

type CreateAccountInput struct {
	Name        string
	Username    string
	SchoolEmail string
	// Password is the already-hashed credential. Hashing happens in the
	// auth layer; this package never sees a plaintext password.
	Password string
	Admin    bool
}

type UpdateProfileInput struct {
	Name         *string
	Avatar       *string
	PrivateEmail *string
	Bio          *string
	Website      *string
	Password     *string
}

// CreateAccount registers a new account. Usernames are unique by a
// read-then-insert check; the fresh account starts Pending with a
// generated initials avatar and empty relationship lists.
func (s *Service) CreateAccount(ctx context.Context, in CreateAccountInput) (*AccountProfile, error) {
	_, err := s.accounts.FindOne(ctx, docstore.Filter{"username": in.Username})
	if err == nil {
		return nil, duplicate("username already taken")
	}
	if !errors.Is(err, docstore.ErrNoDocuments) {
		return nil, serverError(err)
	}

	id, err := nextID(ctx, s.accounts)
	if err != nil {
		return nil, serverError(err)
	}
	ts := now()
	acc := Account{
		ID:          id,
		Name:        in.Name,
		Username:    in.Username,
		SchoolEmail: in.SchoolEmail,
		Password:    in.Password,
		Avatar: fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=random",
			url.QueryEscape(in.Name)),
		Admin:        in.Admin,
		LastAccess:   ts,
		CreatedAt:    ts,
		UpdatedAt:    ts,
		Status:       AccountPending,
		FollowedTag:  []int{},
		ReadingList:  []int{},
		FollowedUser: []int{},
	}
	doc, err := encodeDoc(acc)
	if err != nil {
		return nil, serverError(err)
	}
	if err := s.accounts.InsertOne(ctx, doc); err != nil {
		return nil, serverError(err)
	}
	if s.index != nil {
		s.index.IndexAccount(acc.Username, acc.Name)
	}
	profile := newAccountProfile(acc)
	return &profile, nil
}

// AccountByUsername exposes the raw account record, password hash
// included. It exists for the credential layer; handlers should use the
// profile and page views instead.
func (s *Service) AccountByUsername(ctx context.Context, username string) (*Account, error) {
	acc, err := s.accountByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// AccountByID is the id-keyed twin of AccountByUsername.
func (s *Service) AccountByID(ctx context.Context, id int) (*Account, error) {
	acc, err := s.accountByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// Profile returns the owner's own account view.
func (s *Service) Profile(ctx context.Context, id int) (*AccountProfile, error) {
	acc, err := s.accountByID(ctx, id)
	if err != nil {
		return nil, err
	}
	profile := newAccountProfile(acc)
	return &profile, nil
}

// TouchLastAccess stamps the account's last sign-in time.
func (s *Service) TouchLastAccess(ctx context.Context, id int) error {
	err := s.accounts.UpdateOne(ctx, docstore.Filter{"_id": id},
		docstore.Update{"$set": map[string]any{"lastAccess": now()}})
	if err != nil && !errors.Is(err, docstore.ErrNoDocuments) {
		return serverError(err)
	}
	return nil
}

// UpdateProfile applies the owner's partial edits. A changed name or
// avatar cascades into the author snapshot on every post the account
// wrote; comment snapshots keep the values from when each comment was
// created. The cascade is a separate write after the account update.
func (s *Service) UpdateProfile(ctx context.Context, id int, in UpdateProfileInput) (*AccountProfile, error) {
	acc, err := s.accountByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cascade := in.Name != nil || in.Avatar != nil
	if in.Name != nil {
		acc.Name = *in.Name
	}
	if in.Avatar != nil {
		acc.Avatar = *in.Avatar
	}
	if in.PrivateEmail != nil {
		acc.PrivateEmail = *in.PrivateEmail
	}
	if in.Bio != nil {
		acc.Bio = *in.Bio
	}
	if in.Website != nil {
		acc.Website = *in.Website
	}
	if in.Password != nil {
		acc.Password = *in.Password
	}
	acc.UpdatedAt = now()

	doc, err := encodeDoc(acc)
	if err != nil {
		return nil, serverError(err)
	}
	if err := s.accounts.ReplaceOne(ctx, docstore.Filter{"_id": acc.ID}, doc); err != nil {
		return nil, serverError(err)
	}

	if cascade {
		_, err := s.posts.UpdateMany(ctx,
			docstore.Filter{"userUserName": acc.Username},
			docstore.Update{"$set": map[string]any{
				"userName":   acc.Name,
				"userAvatar": acc.Avatar,
			}})
		if err != nil {
			return nil, serverError(err)
		}
	}

	if s.index != nil {
		s.index.IndexAccount(acc.Username, acc.Name)
	}
	profile := newAccountProfile(acc)
	return &profile, nil
}

// UpdatePassword swaps the stored credential hash.
func (s *Service) UpdatePassword(ctx context.Context, id int, hash string) error {
	err := s.accounts.UpdateOne(ctx, docstore.Filter{"_id": id},
		docstore.Update{"$set": map[string]any{"password": hash, "updatedAt": now()}})
	if errors.Is(err, docstore.ErrNoDocuments) {
		return notFound("account")
	}
	if err != nil {
		return serverError(err)
	}
	return nil
}

// FollowUserToggle flips the follow edge from the caller to the named
// account. The edge lives only on the follower's followedUser list; the
// followee document is read to resolve the id but never written.
func (s *Service) FollowUserToggle(ctx context.Context, followerID int, username string) (ToggleState, error) {
	follower, err := s.accountByID(ctx, followerID)
	if err != nil {
		return "", err
	}
	followee, err := s.accountByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if followee.ID == follower.ID {
		return "", badRequest("can not follow yourself")
	}

	state := ToggleAdded
	update := docstore.Update{"$addToSet": map[string]any{"followedUser": followee.ID}}
	if contains(follower.FollowedUser, followee.ID) {
		state = ToggleRemoved
		update = docstore.Update{"$pull": map[string]any{"followedUser": followee.ID}}
	}
	if err := s.accounts.UpdateOne(ctx, docstore.Filter{"_id": follower.ID}, update); err != nil {
		return "", serverError(err)
	}
	return state, nil
}

// ListAccounts is the admin listing, every account with its status.
func (s *Service) ListAccounts(ctx context.Context) ([]AdminAccountRow, error) {
	docs, err := s.accounts.Find(ctx, docstore.Filter{},
		&docstore.FindOptions{Sort: []docstore.SortField{{Key: "_id"}}})
	if err != nil {
		return nil, serverError(err)
	}
	rows := make([]AdminAccountRow, 0, len(docs))
	for _, doc := range docs {
		var acc Account
		if err := decodeDoc(doc, &acc); err != nil {
			return nil, serverError(err)
		}
		rows = append(rows, AdminAccountRow{
			Name:        acc.Name,
			Username:    acc.Username,
			SchoolEmail: acc.SchoolEmail,
			Email:       acc.PrivateEmail,
			Avatar:      acc.Avatar,
			Status:      acc.Status,
			LastAccess:  acc.LastAccess,
			Admin:       acc.Admin,
		})
	}
	return rows, nil
}

// SetAccountStatus moves an account between Activated, Banned and Pending.
func (s *Service) SetAccountStatus(ctx context.Context, username string, status AccountStatus) error {
	acc, err := s.accountByUsername(ctx, username)
	if err != nil {
		return err
	}
	err = s.accounts.UpdateOne(ctx, docstore.Filter{"_id": acc.ID},
		docstore.Update{"$set": map[string]any{"status": status.String()}})
	if err != nil {
		return serverError(err)
	}
	return nil
}
