package app

import (
	"errors"
	"net/http"

	"inkwell/api/internal/auth"
	"inkwell/api/internal/authpw"
	"inkwell/api/internal/platform"
)

// mapError translates domain failures into HTTP responses. The taxonomy is
// fixed: NotFound 404, NotOwned 403, Unauthorized 401, Duplicate 409,
// BadRequest 400, everything else 500.
func mapError(err error) (status int, code, message string) {
	var domainErr *platform.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Kind {
		case platform.KindNotFound:
			return http.StatusNotFound, "NOT_FOUND", domainErr.Message
		case platform.KindNotOwned:
			return http.StatusForbidden, "NOT_OWNED", domainErr.Message
		case platform.KindUnauthorized:
			return http.StatusUnauthorized, "UNAUTHORIZED", domainErr.Message
		case platform.KindDuplicate:
			return http.StatusConflict, "DUPLICATE", domainErr.Message
		case platform.KindBadRequest:
			return http.StatusBadRequest, "BAD_REQUEST", domainErr.Message
		default:
			return http.StatusInternalServerError, "SERVER_ERROR", "Server error"
		}
	}
	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) {
		return http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized"
	}
	if errors.Is(err, authpw.ErrInvalidCredentials) {
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password"
	}
	if errors.Is(err, authpw.ErrAccountBanned) {
		return http.StatusUnauthorized, "ACCOUNT_BANNED", "Account is banned"
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error"
}
