package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAuthorizeURL = "https://github.com/login/oauth/authorize"
	defaultTokenURL     = "https://github.com/login/oauth/access_token"
	defaultUserURL      = "https://api.github.com/user"
)

// GitHubUser is the subset of the GitHub profile the gateway cares about.
type GitHubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// GitHubProvider performs the OAuth2 code exchange against GitHub. The
// endpoint URLs are overridable so tests can point at httptest servers.
type GitHubProvider struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	AuthorizeURL string
	TokenURL     string
	UserURL      string
	Client       *http.Client
}

// AuthorizeRedirectURL builds the URL the client is redirected to for consent.
func (p GitHubProvider) AuthorizeRedirectURL() string {
	base := p.AuthorizeURL
	if base == "" {
		base = defaultAuthorizeURL
	}
	params := url.Values{}
	params.Set("client_id", p.ClientID)
	params.Set("scope", "user:email")
	if p.RedirectURL != "" {
		params.Set("redirect_uri", p.RedirectURL)
	}
	return base + "?" + params.Encode()
}

// Exchange swaps an authorization code for an access token.
func (p GitHubProvider) Exchange(ctx context.Context, code string) (string, error) {
	tokenURL := p.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	form := url.Values{}
	form.Set("client_id", p.ClientID)
	form.Set("client_secret", p.ClientSecret)
	form.Set("code", code)
	if p.RedirectURL != "" {
		form.Set("redirect_uri", p.RedirectURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("exchange code: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		Error       string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if payload.Error != "" {
		return "", fmt.Errorf("exchange code: %s", payload.Error)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("exchange code: empty access token")
	}
	return payload.AccessToken, nil
}

// FetchUser retrieves the authenticated GitHub profile.
func (p GitHubProvider) FetchUser(ctx context.Context, accessToken string) (GitHubUser, error) {
	userURL := p.UserURL
	if userURL == "" {
		userURL = defaultUserURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userURL, nil)
	if err != nil {
		return GitHubUser{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := p.httpClient().Do(req)
	if err != nil {
		return GitHubUser{}, fmt.Errorf("fetch profile: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return GitHubUser{}, fmt.Errorf("fetch profile: unexpected status %d", resp.StatusCode)
	}

	var user GitHubUser
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&user); err != nil {
		return GitHubUser{}, fmt.Errorf("decode profile: %w", err)
	}
	return user, nil
}

// AsUser converts the GitHub profile into a gateway User.
func (g GitHubUser) AsUser() User {
	name := strings.TrimSpace(g.Name)
	if name == "" {
		name = g.Login
	}
	return User{
		ID:        "github:" + strconv.FormatInt(g.ID, 10),
		Username:  g.Login,
		Name:      name,
		Email:     g.Email,
		AvatarURL: g.AvatarURL,
		Origin:    OriginFederated,
	}
}

func (p GitHubProvider) httpClient() *http.Client {
	if p.Client != nil {
		return p.Client
	}
	return &http.Client{Timeout: 10 * time.Second}
}
