package auth

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/aqilnasir/protek-api/internal/common"
	"github.com/aqilnasir/protek-api/internal/obs"
)

// Handler exposes the authentication endpoints consumed by the mobile
// client. Response shapes follow the existing client contract.
type Handler struct {
	Service  *Service
	Provider *GitHubProvider
	// MobileRedirectURL is the deep link the OAuth callback redirects to
	// with the issued token attached.
	MobileRedirectURL string
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "auth service not configured", nil)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request payload", nil)
		return
	}
	result, err := h.Service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		obs.RecordLogin(OriginLocal, "denied")
		common.WriteError(w, err)
		return
	}
	obs.RecordLogin(OriginLocal, "ok")
	common.JSON(w, http.StatusOK, map[string]any{
		"token": result.Token,
		"user":  result.User,
	})
}

// Logout handles POST /api/v1/auth/logout. The presented token is revoked
// for the remainder of its lifetime.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "auth service not configured", nil)
		return
	}
	if token := bearerToken(r); token != "" {
		if err := h.Service.Logout(r.Context(), token); err != nil {
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "logout failed", nil)
			return
		}
		obs.RecordTokenRevocation()
	}
	common.JSON(w, http.StatusOK, map[string]any{"message": "logged out"})
}

// Profile handles GET /api/v1/profile for authenticated callers.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "auth service not configured", nil)
		return
	}
	identity, ok := common.IdentityFrom(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing credential", nil)
		return
	}
	user, err := h.Service.Profile(r.Context(), identity.ID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"user": user})
}

// GitHubAuthorize handles GET /api/v1/oauth2/github/authorize by
// redirecting the client to GitHub's consent page.
func (h *Handler) GitHubAuthorize(w http.ResponseWriter, r *http.Request) {
	if h.Provider == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "oauth provider not configured", nil)
		return
	}
	http.Redirect(w, r, h.Provider.AuthorizeRedirectURL(), http.StatusFound)
}

// GitHubCallback handles GET /api/v1/oauth2/github/callback: it exchanges
// the code, upserts the federated identity, signs a token, and redirects
// back into the mobile app with the token attached.
func (h *Handler) GitHubCallback(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil || h.Provider == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "oauth provider not configured", nil)
		return
	}
	code := strings.TrimSpace(r.URL.Query().Get("code"))
	if code == "" {
		common.JSONError(w, http.StatusBadRequest, "INVALID_REQUEST", "code is required", nil)
		return
	}

	accessToken, err := h.Provider.Exchange(r.Context(), code)
	if err != nil {
		obs.RecordLogin(OriginFederated, "denied")
		common.JSONError(w, http.StatusBadGateway, "OAUTH_EXCHANGE_FAILED", "identity provider exchange failed", nil)
		return
	}
	ghUser, err := h.Provider.FetchUser(r.Context(), accessToken)
	if err != nil {
		obs.RecordLogin(OriginFederated, "denied")
		common.JSONError(w, http.StatusBadGateway, "OAUTH_PROFILE_FAILED", "identity provider profile fetch failed", nil)
		return
	}

	result, err := h.Service.FederatedLogin(r.Context(), ghUser.AsUser())
	if err != nil {
		obs.RecordLogin(OriginFederated, "denied")
		common.WriteError(w, err)
		return
	}
	obs.RecordLogin(OriginFederated, "ok")

	redirect := h.MobileRedirectURL
	if redirect == "" {
		common.JSON(w, http.StatusOK, map[string]any{"token": result.Token, "user": result.User})
		return
	}
	separator := "?"
	if strings.Contains(redirect, "?") {
		separator = "&"
	}
	http.Redirect(w, r, redirect+separator+"token="+url.QueryEscape(result.Token), http.StatusFound)
}
