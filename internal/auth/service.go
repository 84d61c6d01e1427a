package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/aqilnasir/protek-api/internal/common"
)

const defaultAccessTTL = 24 * time.Hour

const (
	claimUsername = "username"
	claimOrigin   = "origin"
)

// Service issues and verifies the signed, time-limited access tokens that
// gate the quoting endpoints. Pricing itself is identity-agnostic; this
// service only decides which requests get through.
type Service struct {
	store     *Store
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
	signer    jwa.SignatureAlgorithm
	validator TokenValidator
	issuer    string
	audience  string
	clockSkew time.Duration
	revoker   TokenRevoker
}

// Config configures the auth service.
type Config struct {
	Store          *Store
	Secret         string
	AccessTokenTTL time.Duration
	Issuer         string
	Audience       string
	ClockSkew      time.Duration
	Revoker        TokenRevoker
}

// LoginResult bundles the token material returned after a successful login.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// NewService constructs a Service with sane defaults.
func NewService(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("auth: store is required")
	}
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("auth: secret is required")
	}
	accessTTL := cfg.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = "protek-api"
	}
	audience := strings.TrimSpace(cfg.Audience)
	if audience == "" {
		audience = "protek-mobile"
	}
	clockSkew := cfg.ClockSkew
	if clockSkew < 0 {
		clockSkew = 0
	}

	return &Service{
		store:     cfg.Store,
		secret:    []byte(secret),
		accessTTL: accessTTL,
		now:       time.Now,
		signer:    jwa.HS256,
		validator: TokenValidator{
			Issuer:    issuer,
			Audience:  audience,
			ClockSkew: clockSkew,
			Algorithm: jwa.HS256,
		},
		issuer:    issuer,
		audience:  audience,
		clockSkew: clockSkew,
		revoker:   cfg.Revoker,
	}, nil
}

// WithNow allows tests to override the time provider.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Login verifies local credentials and issues an access token.
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	user, ok := s.store.FindByUsername(username)
	if !ok || user.Origin != OriginLocal || !user.VerifyPassword(password) {
		return LoginResult{}, common.NewAppError("INVALID_CREDENTIALS", "invalid credentials", http.StatusUnauthorized, nil)
	}
	return s.issue(user)
}

// FederatedLogin upserts a federated identity and issues an access token
// for it.
func (s *Service) FederatedLogin(ctx context.Context, user User) (LoginResult, error) {
	stored := s.store.UpsertFederated(user)
	return s.issue(stored)
}

// Logout revokes the presented token for the remainder of its lifetime.
// Unparseable tokens are ignored so logout stays idempotent.
func (s *Service) Logout(ctx context.Context, token string) error {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" || s.revoker == nil {
		return nil
	}
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(s.signer, s.secret))
	if err != nil {
		return nil
	}
	ttl := parsed.Expiration().Sub(s.now())
	if ttl <= 0 || parsed.JwtID() == "" {
		return nil
	}
	return s.revoker.Revoke(ctx, parsed.JwtID(), ttl)
}

// Profile returns the account behind the resolved identity.
func (s *Service) Profile(ctx context.Context, id string) (User, error) {
	user, ok := s.store.FindByID(id)
	if !ok {
		return User{}, common.NewAppError("FORBIDDEN", "unknown identity", http.StatusForbidden, nil)
	}
	return user, nil
}

// ParseAccessToken validates an access token and resolves the identity it
// carries. Revoked tokens fail even when otherwise valid.
func (s *Service) ParseAccessToken(ctx context.Context, token string) (common.Identity, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return common.Identity{}, common.NewAppError("UNAUTHORIZED", "missing token", http.StatusUnauthorized, nil)
	}
	algorithm, err := extractTokenAlgorithm(trimmed)
	if err != nil {
		return common.Identity{}, common.NewAppError("FORBIDDEN", "invalid token", http.StatusForbidden, err)
	}
	if s.validator.Algorithm != "" && algorithm != s.validator.Algorithm {
		return common.Identity{}, common.NewAppError("FORBIDDEN", "invalid token", http.StatusForbidden, fmt.Errorf("unexpected token algorithm %s", algorithm))
	}
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(algorithm, s.secret))
	if err != nil {
		return common.Identity{}, common.NewAppError("FORBIDDEN", "invalid token", http.StatusForbidden, err)
	}
	if err := s.validator.Validate(parsed, algorithm, s.now()); err != nil {
		return common.Identity{}, common.NewAppError("FORBIDDEN", "invalid token", http.StatusForbidden, err)
	}
	if s.revoker != nil && parsed.JwtID() != "" {
		revoked, err := s.revoker.IsRevoked(ctx, parsed.JwtID())
		if err != nil {
			return common.Identity{}, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return common.Identity{}, common.NewAppError("FORBIDDEN", "token revoked", http.StatusForbidden, nil)
		}
	}
	return identityFromToken(parsed), nil
}

func identityFromToken(tok jwt.Token) common.Identity {
	identity := common.Identity{ID: tok.Subject()}
	if v, ok := tok.Get(claimUsername); ok {
		if username, ok := v.(string); ok {
			identity.Username = username
		}
	}
	if v, ok := tok.Get(claimOrigin); ok {
		if origin, ok := v.(string); ok {
			identity.Origin = origin
		}
	}
	return identity
}

func (s *Service) issue(user User) (LoginResult, error) {
	now := s.now()
	expiresAt := now.Add(s.accessTTL)
	builder := jwt.NewBuilder().
		Subject(user.ID).
		JwtID(uuid.NewString()).
		Issuer(s.issuer).
		Audience([]string{s.audience}).
		IssuedAt(now).
		NotBefore(now.Add(-s.clockSkew)).
		Expiration(expiresAt).
		Claim(claimUsername, user.Username).
		Claim(claimOrigin, user.Origin)
	token, err := builder.Build()
	if err != nil {
		return LoginResult{}, err
	}
	signed, err := jwt.Sign(token, jwt.WithKey(s.signer, s.secret))
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: string(signed), ExpiresAt: expiresAt, User: user}, nil
}

func extractTokenAlgorithm(token string) (jwa.SignatureAlgorithm, error) {
	message, err := jws.ParseString(token)
	if err != nil {
		return "", err
	}
	signatures := message.Signatures()
	if len(signatures) == 0 {
		return "", errors.New("auth: token contains no signatures")
	}
	var algorithm jwa.SignatureAlgorithm
	for _, sig := range signatures {
		headers := sig.ProtectedHeaders()
		if headers == nil {
			return "", errors.New("auth: token missing protected headers")
		}
		alg := headers.Algorithm()
		if alg == "" {
			return "", errors.New("auth: token missing algorithm")
		}
		if alg == jwa.NoSignature {
			return "", errors.New("auth: token uses none algorithm")
		}
		if algorithm == "" {
			algorithm = alg
		} else if algorithm != alg {
			return "", errors.New("auth: mixed token algorithms detected")
		}
	}
	return algorithm, nil
}
