// Package authpw provides username/password authentication.
package authpw

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"inkwell/api/internal/platform"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountBanned      = errors.New("account is banned")
)

// AccountStore defines the account storage the credential layer needs.
type AccountStore interface {
	CreateAccount(ctx context.Context, in platform.CreateAccountInput) (*platform.AccountProfile, error)
	AccountByUsername(ctx context.Context, username string) (*platform.Account, error)
	AccountByID(ctx context.Context, id int) (*platform.Account, error)
	UpdatePassword(ctx context.Context, id int, hash string) error
	TouchLastAccess(ctx context.Context, id int) error
}

// Service provides username/password authentication
type Service struct {
	store AccountStore
}

func NewService(store AccountStore) *Service {
	return &Service{store: store}
}

// SignUpRequest contains sign-up parameters
type SignUpRequest struct {
	Name        string
	Username    string
	SchoolEmail string
	Password    string
}

// SignUp registers a new account with a bcrypt-hashed password.
func (s *Service) SignUp(ctx context.Context, req SignUpRequest) (*platform.AccountProfile, error) {
	if req.Name == "" || req.Username == "" || req.Password == "" {
		return nil, errors.New("name, username, and password are required")
	}
	if len(req.Password) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	return s.store.CreateAccount(ctx, platform.CreateAccountInput{
		Name:        req.Name,
		Username:    req.Username,
		SchoolEmail: req.SchoolEmail,
		Password:    hash,
	})
}

// SignInRequest contains sign-in parameters
type SignInRequest struct {
	Username string
	Password string
}

// SignIn authenticates an account. A missing account and a wrong password
// are indistinguishable to the caller; banned accounts are rejected
// outright. A successful sign-in stamps lastAccess.
func (s *Service) SignIn(ctx context.Context, req SignInRequest) (*platform.Account, error) {
	if req.Username == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	acc, err := s.store.AccountByUsername(ctx, req.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if acc.Status == platform.AccountBanned {
		return nil, ErrAccountBanned
	}

	if err := s.store.TouchLastAccess(ctx, acc.ID); err != nil {
		return nil, err
	}
	return acc, nil
}

// ChangePasswordRequest contains password change parameters
type ChangePasswordRequest struct {
	AccountID   int
	OldPassword string
	NewPassword string
}

// ChangePassword verifies the old credential before storing the new hash.
func (s *Service) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	if len(req.NewPassword) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	acc, err := s.store.AccountByID(ctx, req.AccountID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.Password), []byte(req.OldPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.store.UpdatePassword(ctx, acc.ID, hash)
}

// HashPassword produces the bcrypt hash stored on account documents.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
