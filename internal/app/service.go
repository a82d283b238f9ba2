package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"inkwell/api/internal/auth"
	"inkwell/api/internal/authpw"
	"inkwell/api/internal/config"
	"inkwell/api/internal/platform"
	"inkwell/api/internal/search"
	"inkwell/api/internal/session"
)

// Session is the resolved identity behind a request, plus the token pair
// handed out at login and refresh.
type Session struct {
	Token        string
	RefreshToken string
	AccountID    int
	Username     string
	Name         string
	Admin        bool
	ExpiresAt    time.Time
}

// Pinger reports backend reachability for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Service wires the HTTP layer to the core engine, the credential layer,
// the session store and the suggestion index.
type Service struct {
	cfg      config.Config
	core     *platform.Service
	authpw   *authpw.Service
	sessions session.Store
	search   *search.Service
	db       Pinger
}

func New(cfg config.Config, core *platform.Service, authSvc *authpw.Service, sessions session.Store, searchSvc *search.Service, db Pinger) *Service {
	return &Service{
		cfg:      cfg,
		core:     core,
		authpw:   authSvc,
		sessions: sessions,
		search:   searchSvc,
		db:       db,
	}
}

// Core exposes the content engine to handlers.
func (s *Service) Core() *platform.Service {
	return s.core
}

// Auth exposes the credential layer to handlers.
func (s *Service) Auth() *authpw.Service {
	return s.authpw
}

// Suggest runs a quick-suggestion query.
func (s *Service) Suggest(ctx context.Context, q search.Query) search.Response {
	return s.search.Search(ctx, q)
}

// Ping checks backend reachability.
func (s *Service) Ping(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.Ping(ctx)
}

// CreateSession issues a token pair for an authenticated account. The
// refresh token is stored by hash only.
func (s *Service) CreateSession(ctx context.Context, acc *platform.Account) (Session, error) {
	expiresAt := time.Now().Add(s.cfg.AccessTTL)
	accessToken, err := auth.IssueToken([]byte(s.cfg.JWTSecret), acc.ID, s.cfg.AccessTTL)
	if err != nil {
		return Session{}, err
	}

	refreshToken := uuid.NewString()
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refreshToken), acc.ID, s.cfg.RefreshTTL); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        accessToken,
		RefreshToken: refreshToken,
		AccountID:    acc.ID,
		Username:     acc.Username,
		Name:         acc.Name,
		Admin:        acc.Admin,
		ExpiresAt:    expiresAt,
	}, nil
}

// SessionFromToken resolves a bearer access token to a live session. The
// account is re-read on every call so bans and admin changes apply
// immediately.
func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	accountID, err := auth.ParseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return Session{}, err
	}
	acc, err := s.core.AccountByID(ctx, accountID)
	if err != nil {
		return Session{}, auth.ErrInvalidToken
	}
	if acc.Status == platform.AccountBanned {
		return Session{}, authpw.ErrAccountBanned
	}
	return Session{
		AccountID: acc.ID,
		Username:  acc.Username,
		Name:      acc.Name,
		Admin:     acc.Admin,
	}, nil
}

// Refresh rotates a refresh token: the old session is revoked and a fresh
// token pair is issued.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	hash := auth.HashToken(refreshToken)
	accountID, err := s.sessions.LookupRefreshSession(ctx, hash)
	if err != nil {
		return Session{}, auth.ErrInvalidToken
	}
	acc, err := s.core.AccountByID(ctx, accountID)
	if err != nil {
		return Session{}, auth.ErrInvalidToken
	}
	if acc.Status == platform.AccountBanned {
		return Session{}, authpw.ErrAccountBanned
	}
	if err := s.sessions.RevokeRefreshSession(ctx, hash); err != nil {
		return Session{}, err
	}
	return s.CreateSession(ctx, acc)
}

// Logout revokes the refresh session. Unknown tokens are a no-op.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
}
