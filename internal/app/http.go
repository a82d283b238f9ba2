package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"inkwell/api/internal/authpw"
	"inkwell/api/internal/platform"
	"inkwell/api/internal/search"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "ready"
		statusCode := http.StatusOK
		checks := map[string]any{
			"store": map[string]any{"status": "ok"},
		}
		if err := s.service.Ping(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["store"] = map[string]any{"status": "error", "error": err.Error()}
		}
		writeJSON(w, statusCode, map[string]any{
			"ok":     status == "ready",
			"status": status,
			"checks": checks,
		})
		return
	}

	// Auth routes (no session required)
	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/signup" {
		s.handleAuthSignUp(w, r)
		return
	}
	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/login" {
		s.handleAuthLogin(w, r)
		return
	}
	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/refresh" {
		s.handleAuthRefresh(w, r)
		return
	}
	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/logout" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		_ = decodeBody(r, &body)
		_ = s.service.Logout(r.Context(), body.RefreshToken)
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/session" {
		session := s.optionalSession(r)
		if session == nil {
			writeJSON(w, http.StatusOK, map[string]any{"authenticated": false, "username": nil})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"authenticated": true,
			"username":      session.Username,
			"name":          session.Name,
			"userId":        session.AccountID,
			"admin":         session.Admin,
		})
		return
	}

	parts := splitPath(r.URL.Path)
	if len(parts) < 2 || parts[0] != "api" {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}

	switch parts[1] {
	case "index":
		s.handleIndex(w, r, parts[2:])
	case "search":
		s.handleSearch(w, r, parts[2:])
	case "post":
		s.handlePost(w, r, parts[2:])
	case "user":
		s.handleUser(w, r, parts[2:])
	case "admin":
		s.handleAdmin(w, r, parts[2:])
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

// handleIndex serves GET /api/index/{page}. Anonymous callers get the feed
// without save flags.
func (s *HTTPServer) handleIndex(w http.ResponseWriter, r *http.Request, parts []string) {
	if r.Method != http.MethodGet || len(parts) > 1 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}
	page := 1
	if len(parts) == 1 {
		parsed, err := strconv.Atoi(parts[0])
		if err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "page must be an integer", nil)
			return
		}
		page = parsed
	}
	rows, err := s.service.Core().FeedIndex(r.Context(), s.viewerID(r), page)
	if err != nil {
		writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"post": rows})
}

// handleSearch serves the quick-suggestion endpoint and the merged
// keyword search.
func (s *HTTPServer) handleSearch(w http.ResponseWriter, r *http.Request, parts []string) {
	if r.Method != http.MethodGet || len(parts) != 1 {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
		return
	}

	if parts[0] == "quick" {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		limit := 0
		if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "BAD_REQUEST", "limit must be an integer", nil)
				return
			}
			limit = parsed
		}
		payload := s.service.Suggest(r.Context(), search.Query{
			Text:       q,
			FilterType: search.ResultType(strings.TrimSpace(r.URL.Query().Get("type"))),
			Limit:      limit,
		})
		writeJSON(w, http.StatusOK, payload)
		return
	}

	result, err := s.service.Core().Search(r.Context(), s.viewerAccount(r), parts[0])
	if err != nil {
		writeMapped(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *HTTPServer) handlePost(w http.ResponseWriter, r *http.Request, parts []string) {
	core := s.service.Core()
	ctx := r.Context()

	// Public post routes
	if r.Method == http.MethodGet && len(parts) == 2 && parts[0] == "detail" {
		page, err := core.GetPost(ctx, s.viewerID(r), parts[1])
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
		return
	}
	if r.Method == http.MethodGet && len(parts) == 1 && parts[0] == "tags" {
		tags, err := core.GetTags(ctx, s.viewerAccount(r))
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tag": tags})
		return
	}
	if r.Method == http.MethodGet && len(parts) == 1 && parts[0] == "tag-index" {
		index, err := core.TagIndex(ctx, s.viewerAccount(r))
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, index)
		return
	}
	if r.Method == http.MethodGet && len(parts) == 2 && parts[0] == "tag" {
		viewer := s.viewerAccount(r)
		page, err := core.TagPage(ctx, viewer, parts[1])
		if err != nil {
			writeMapped(w, err)
			return
		}
		posts, err := core.PostsByTag(ctx, viewer, parts[1])
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tag": page, "post": posts})
		return
	}

	// Everything below needs an identity.
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	switch {
	case r.Method == http.MethodPost && len(parts) == 1 && parts[0] == "create":
		var body struct {
			Banner  string              `json:"banner"`
			Title   string              `json:"title"`
			Content string              `json:"content"`
			Tags    []string            `json:"tag"`
			Status  platform.PostStatus `json:"status"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		detail, err := core.CreatePost(ctx, session.AccountID, platform.CreatePostInput{
			Banner:  body.Banner,
			Title:   body.Title,
			Content: body.Content,
			Tags:    body.Tags,
			Status:  body.Status,
		})
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, detail)

	case r.Method == http.MethodPost && len(parts) == 1 && parts[0] == "update":
		var body struct {
			Slug    string               `json:"slug"`
			Banner  *string              `json:"banner"`
			Title   *string              `json:"title"`
			Content *string              `json:"content"`
			Tags    *[]string            `json:"tag"`
			Status  *platform.PostStatus `json:"status"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		detail, err := core.UpdatePost(ctx, session.AccountID, platform.UpdatePostInput{
			Slug:    body.Slug,
			Banner:  body.Banner,
			Title:   body.Title,
			Content: body.Content,
			Tags:    body.Tags,
			Status:  body.Status,
		})
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)

	case r.Method == http.MethodDelete && len(parts) == 1:
		if err := core.DeletePost(ctx, session.AccountID, parts[0]); err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	case r.Method == http.MethodGet && len(parts) == 2 && parts[0] == "change-status":
		next, err := core.TogglePostStatus(ctx, session.AccountID, parts[1])
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": next})

	case r.Method == http.MethodPost && len(parts) == 1 && parts[0] == "comment":
		var body struct {
			Slug     string `json:"slug"`
			Content  string `json:"content"`
			ParentID int    `json:"parentId"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		detail, err := core.AddComment(ctx, session.AccountID, platform.CreateCommentInput{
			Slug:     body.Slug,
			Content:  body.Content,
			ParentID: body.ParentID,
		})
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, detail)

	case r.Method == http.MethodPost && len(parts) == 1 && parts[0] == "edit-comment":
		var body struct {
			Slug    string `json:"slug"`
			ID      int    `json:"id"`
			Content string `json:"content"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		detail, err := core.UpdateComment(ctx, session.AccountID, platform.UpdateCommentInput{
			Slug:    body.Slug,
			ID:      body.ID,
			Content: body.Content,
		})
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, detail)

	case r.Method == http.MethodGet && len(parts) == 2 && parts[0] == "interact":
		page, state, err := core.TogglePostReaction(ctx, session.AccountID, parts[1])
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"state": state, "post": page})

	case r.Method == http.MethodGet && len(parts) == 2 && parts[0] == "un-interact":
		if err := core.UnreactPost(ctx, session.AccountID, parts[1]); err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	case r.Method == http.MethodGet && len(parts) == 3 && parts[0] == "interact-comment":
		commentID, err := strconv.Atoi(parts[2])
		if err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "comment id must be an integer", nil)
			return
		}
		page, state, err := core.ToggleCommentReaction(ctx, session.AccountID, parts[1], commentID)
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"state": state, "post": page})

	case r.Method == http.MethodGet && len(parts) == 3 && parts[0] == "un-interact-comment":
		commentID, err := strconv.Atoi(parts[2])
		if err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "comment id must be an integer", nil)
			return
		}
		if err := core.UnreactComment(ctx, session.AccountID, parts[1], commentID); err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	case r.Method == http.MethodGet && len(parts) == 2 && parts[0] == "save":
		detail, state, err := core.ToggleSave(ctx, session.AccountID, parts[1])
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"state": state, "post": detail})

	case r.Method == http.MethodGet && len(parts) == 2 && parts[0] == "follow-tag":
		state, err := core.FollowTagToggle(ctx, session.AccountID, parts[1])
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"state": state})

	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

func (s *HTTPServer) handleUser(w http.ResponseWriter, r *http.Request, parts []string) {
	core := s.service.Core()
	ctx := r.Context()

	if r.Method == http.MethodGet && len(parts) == 2 && parts[0] == "info" {
		page, err := core.UserProfilePage(ctx, s.viewerAccount(r), parts[1])
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
		return
	}

	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	switch {
	case r.Method == http.MethodGet && len(parts) == 1 && parts[0] == "dashboard":
		dash, err := core.Dashboard(ctx, session.AccountID)
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, dash)

	case r.Method == http.MethodGet && len(parts) == 1 && parts[0] == "me":
		profile, err := core.Profile(ctx, session.AccountID)
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)

	case r.Method == http.MethodGet && len(parts) == 1 && parts[0] == "posts":
		rows, err := core.ShortPostsByAuthor(ctx, session.AccountID)
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"post": rows})

	case r.Method == http.MethodPost && len(parts) == 1 && parts[0] == "update":
		var body struct {
			Name         *string `json:"name"`
			Avatar       *string `json:"avatar"`
			PrivateEmail *string `json:"privateEmail"`
			Bio          *string `json:"bio"`
			Website      *string `json:"website"`
			Password     *string `json:"password"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		input := platform.UpdateProfileInput{
			Name:         body.Name,
			Avatar:       body.Avatar,
			PrivateEmail: body.PrivateEmail,
			Bio:          body.Bio,
			Website:      body.Website,
		}
		if body.Password != nil {
			hash, err := authpw.HashPassword(*body.Password)
			if err != nil {
				writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
				return
			}
			input.Password = &hash
		}
		profile, err := core.UpdateProfile(ctx, session.AccountID, input)
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)

	case r.Method == http.MethodGet && len(parts) == 2 && parts[0] == "follow":
		state, err := core.FollowUserToggle(ctx, session.AccountID, parts[1])
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"state": state})

	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

func (s *HTTPServer) handleAdmin(w http.ResponseWriter, r *http.Request, parts []string) {
	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}
	if !session.Admin {
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Forbidden", nil)
		return
	}

	core := s.service.Core()
	ctx := r.Context()

	switch {
	case r.Method == http.MethodGet && len(parts) == 1 && parts[0] == "users":
		rows, err := core.ListAccounts(ctx)
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": rows})

	case r.Method == http.MethodGet && len(parts) == 1 && parts[0] == "posts":
		rows, err := core.AdminPosts(ctx)
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"post": rows})

	case r.Method == http.MethodGet && len(parts) == 1 && parts[0] == "tags":
		rows, err := core.ListTagsAdmin(ctx)
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tag": rows})

	case r.Method == http.MethodPost && len(parts) == 1 && parts[0] == "tag":
		var body struct {
			Value string           `json:"value"`
			Desc  string           `json:"desc"`
			Color string           `json:"color"`
			Image string           `json:"image"`
			Type  platform.TagType `json:"type"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		tag, err := core.CreateTag(ctx, platform.CreateTagInput{
			Value: body.Value,
			Desc:  body.Desc,
			Color: body.Color,
			Image: body.Image,
			Type:  body.Type,
		})
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, tag)

	case r.Method == http.MethodPost && len(parts) == 2 && parts[0] == "tag" && parts[1] == "update":
		var body struct {
			Value string            `json:"value"`
			Desc  *string           `json:"desc"`
			Color *string           `json:"color"`
			Image *string           `json:"image"`
			Type  *platform.TagType `json:"type"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		tag, err := core.UpdateTag(ctx, platform.UpdateTagInput{
			Value: body.Value,
			Desc:  body.Desc,
			Color: body.Color,
			Image: body.Image,
			Type:  body.Type,
		})
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tag)

	case r.Method == http.MethodPost && len(parts) == 1 && parts[0] == "user":
		var body struct {
			Name        string `json:"name"`
			Username    string `json:"username"`
			SchoolEmail string `json:"schoolEmail"`
			Password    string `json:"password"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if len(body.Password) < 8 {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "password must be at least 8 characters", nil)
			return
		}
		hash, err := authpw.HashPassword(body.Password)
		if err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return
		}
		profile, err := core.CreateAccount(ctx, platform.CreateAccountInput{
			Name:        body.Name,
			Username:    body.Username,
			SchoolEmail: body.SchoolEmail,
			Password:    hash,
			Admin:       true,
		})
		if err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, profile)

	case r.Method == http.MethodPost && len(parts) == 2 && parts[0] == "user" && parts[1] == "status":
		var body struct {
			Username string                 `json:"username"`
			Status   platform.AccountStatus `json:"status"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if err := core.SetAccountStatus(ctx, body.Username, body.Status); err != nil {
			writeMapped(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})

	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
	}
}

// Auth handlers

func (s *HTTPServer) handleAuthSignUp(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string `json:"name"`
		Username    string `json:"username"`
		SchoolEmail string `json:"schoolEmail"`
		Password    string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	profile, err := s.service.Auth().SignUp(r.Context(), authpw.SignUpRequest{
		Name:        body.Name,
		Username:    body.Username,
		SchoolEmail: body.SchoolEmail,
		Password:    body.Password,
	})
	if err != nil {
		var domainErr *platform.DomainError
		if errors.As(err, &domainErr) {
			writeMapped(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, "SIGNUP_FAILED", err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

func (s *HTTPServer) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	acc, err := s.service.Auth().SignIn(r.Context(), authpw.SignInRequest{
		Username: body.Username,
		Password: body.Password,
	})
	if err != nil {
		writeMapped(w, err)
		return
	}
	session, err := s.service.CreateSession(r.Context(), acc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "SESSION_FAILED", "Failed to create session", nil)
		return
	}
	writeJSON(w, http.StatusOK, sessionPayload(session))
}

func (s *HTTPServer) handleAuthRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
		return
	}
	session, err := s.service.Refresh(r.Context(), body.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Refresh token invalid", nil)
		return
	}
	writeJSON(w, http.StatusOK, sessionPayload(session))
}

func sessionPayload(session Session) map[string]any {
	return map[string]any{
		"accessToken":  session.Token,
		"refreshToken": session.RefreshToken,
		"userId":       session.AccountID,
		"username":     session.Username,
		"name":         session.Name,
		"admin":        session.Admin,
		"expiresAt":    session.ExpiresAt.Unix(),
	}
}

// requireSession resolves the bearer token or ends the request with 401.
func (s *HTTPServer) requireSession(w http.ResponseWriter, r *http.Request) (Session, bool) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return Session{}, false
	}
	session, err := s.service.SessionFromToken(r.Context(), token)
	if err != nil {
		status, code, message := mapError(err)
		writeError(w, status, code, message, nil)
		return Session{}, false
	}
	return session, true
}

// optionalSession resolves the bearer token if present and valid, nil
// otherwise. Public pages use it to fill viewer flags.
func (s *HTTPServer) optionalSession(r *http.Request) *Session {
	token := bearerToken(r)
	if token == "" {
		return nil
	}
	session, err := s.service.SessionFromToken(r.Context(), token)
	if err != nil {
		return nil
	}
	return &session
}

func (s *HTTPServer) viewerID(r *http.Request) *int {
	if session := s.optionalSession(r); session != nil {
		return &session.AccountID
	}
	return nil
}

func (s *HTTPServer) viewerAccount(r *http.Request) *platform.Account {
	session := s.optionalSession(r)
	if session == nil {
		return nil
	}
	acc, err := s.service.Core().AccountByID(r.Context(), session.AccountID)
	if err != nil {
		return nil
	}
	return acc
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func writeMapped(w http.ResponseWriter, err error) {
	status, code, message := mapError(err)
	writeError(w, status, code, message, nil)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
