package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aqilnasir/protek-api/internal/common"
)

var errNoToken = errors.New("auth: token missing")

// Middleware wires the identity gateway into HTTP handlers.
type Middleware struct {
	Service *Service
}

// RequireAuth enforces a valid bearer credential before the next handler
// runs. A missing credential yields 401; a present but invalid, expired,
// or revoked one yields 403. The two cases are never merged.
func (m Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, err := m.authenticateRequest(r)
		if err != nil {
			if errors.Is(err, errNoToken) {
				common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing credential", nil)
				return
			}
			if appErr, ok := common.AsAppError(err); ok && appErr.HTTPStatus != 0 {
				common.JSONError(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
				return
			}
			common.JSONError(w, http.StatusForbidden, "FORBIDDEN", "invalid credential", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m Middleware) authenticateRequest(r *http.Request) (context.Context, error) {
	if m.Service == nil {
		return r.Context(), errors.New("auth: service not configured")
	}
	token := bearerToken(r)
	if token == "" {
		return r.Context(), errNoToken
	}
	identity, err := m.Service.ParseAccessToken(r.Context(), token)
	if err != nil {
		return r.Context(), err
	}
	return common.WithIdentity(r.Context(), identity), nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
