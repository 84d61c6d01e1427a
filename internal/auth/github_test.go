package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func newFakeGitHub(t *testing.T, accessToken string, user GitHubUser) *GitHubProvider {
	t.Helper()
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("token endpoint expected POST, got %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("code") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": accessToken})
	}))
	t.Cleanup(tokenSrv.Close)

	userSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer "+accessToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(user)
	}))
	t.Cleanup(userSrv.Close)

	return &GitHubProvider{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost/callback",
		TokenURL:     tokenSrv.URL,
		UserURL:      userSrv.URL,
	}
}

func TestGitHubExchangeAndFetchUser(t *testing.T) {
	provider := newFakeGitHub(t, "gho_token", GitHubUser{
		ID:        42,
		Login:     "octocat",
		Name:      "Octo Cat",
		Email:     "octo@example.com",
		AvatarURL: "https://avatars.example/42",
	})

	token, err := provider.Exchange(context.Background(), "auth-code")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if token != "gho_token" {
		t.Fatalf("unexpected access token: %s", token)
	}

	user, err := provider.FetchUser(context.Background(), token)
	if err != nil {
		t.Fatalf("fetch user: %v", err)
	}
	if user.Login != "octocat" || user.ID != 42 {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestGitHubExchangeErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "bad_verification_code"})
	}))
	t.Cleanup(srv.Close)

	provider := GitHubProvider{ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL}
	if _, err := provider.Exchange(context.Background(), "stale"); err == nil {
		t.Fatal("expected error for provider-side rejection")
	}
}

func TestGitHubUserAsUser(t *testing.T) {
	user := GitHubUser{ID: 42, Login: "octocat", Email: "octo@example.com"}.AsUser()
	if user.ID != "github:42" {
		t.Fatalf("expected provider-scoped id, got %s", user.ID)
	}
	if user.Origin != OriginFederated {
		t.Fatalf("expected federated origin, got %s", user.Origin)
	}
	// Missing display name falls back to the login handle.
	if user.Name != "octocat" {
		t.Fatalf("expected name fallback to login, got %s", user.Name)
	}
}

func TestAuthorizeRedirectURL(t *testing.T) {
	provider := GitHubProvider{
		ClientID:     "client-id",
		RedirectURL:  "http://localhost/callback",
		AuthorizeURL: "https://github.example/login/oauth/authorize",
	}
	parsed, err := url.Parse(provider.AuthorizeRedirectURL())
	if err != nil {
		t.Fatalf("parse authorize URL: %v", err)
	}
	query := parsed.Query()
	if query.Get("client_id") != "client-id" {
		t.Fatalf("missing client_id: %s", parsed)
	}
	if query.Get("scope") != "user:email" {
		t.Fatalf("missing scope: %s", parsed)
	}
	if query.Get("redirect_uri") != "http://localhost/callback" {
		t.Fatalf("missing redirect_uri: %s", parsed)
	}
}

func TestGitHubCallbackIssuesTokenAndRedirects(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	provider := newFakeGitHub(t, "gho_token", GitHubUser{ID: 42, Login: "octocat"})
	handler := &Handler{
		Service:           svc,
		Provider:          provider,
		MobileRedirectURL: "exp://192.168.0.2:8081",
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/oauth2/github/callback?code=auth-code", nil)
	rec := httptest.NewRecorder()
	handler.GitHubCallback(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302 redirect, got %d", rec.Code)
	}
	location := rec.Header().Get("Location")
	if !strings.HasPrefix(location, "exp://192.168.0.2:8081?token=") {
		t.Fatalf("unexpected redirect location: %s", location)
	}

	token := strings.TrimPrefix(location, "exp://192.168.0.2:8081?token=")
	unescaped, err := url.QueryUnescape(token)
	if err != nil {
		t.Fatalf("unescape token: %v", err)
	}
	identity, err := svc.ParseAccessToken(context.Background(), unescaped)
	if err != nil {
		t.Fatalf("redirected token must verify: %v", err)
	}
	if identity.ID != "github:42" || identity.Origin != OriginFederated {
		t.Fatalf("unexpected identity: %+v", identity)
	}
}

func TestGitHubCallbackRequiresCode(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	handler := &Handler{Service: svc, Provider: &GitHubProvider{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/oauth2/github/callback", nil)
	rec := httptest.NewRecorder()
	handler.GitHubCallback(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without code, got %d", rec.Code)
	}
}

func TestGitHubCallbackExchangeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	svc, _, _ := newTestService(t, nil)
	handler := &Handler{
		Service:  svc,
		Provider: &GitHubProvider{ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/oauth2/github/callback?code=abc", nil)
	rec := httptest.NewRecorder()
	handler.GitHubCallback(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 when exchange fails, got %d", rec.Code)
	}
	assertErrorCode(t, rec, "OAUTH_EXCHANGE_FAILED")
}
