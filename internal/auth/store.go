package auth

import (
	"errors"
	"strings"
	"sync"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
)

// Identity origins. Local users authenticate with a password; federated
// users arrive through a third-party identity provider.
const (
	OriginLocal     = "local"
	OriginFederated = "federated"
)

// User is an account known to the identity gateway. The password hash is
// never serialised.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	AvatarURL string `json:"avatar,omitempty"`
	Origin    string `json:"type"`

	passwordHash string
}

// Store is an in-memory user registry. Accounts are seeded at startup and
// federated identities are upserted as they authenticate; nothing is
// persisted across restarts.
type Store struct {
	mu         sync.RWMutex
	byID       map[string]User
	byUsername map[string]User
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		byID:       make(map[string]User),
		byUsername: make(map[string]User),
	}
}

// SeedLocal registers a local account with an argon2id-hashed password.
func (s *Store) SeedLocal(name, username, password string) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return User{}, errors.New("auth: username is required")
	}
	if password == "" {
		return User{}, errors.New("auth: password is required")
	}
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return User{}, err
	}
	user := User{
		ID:           uuid.NewString(),
		Username:     username,
		Name:         strings.TrimSpace(name),
		Origin:       OriginLocal,
		passwordHash: hash,
	}
	s.mu.Lock()
	s.byID[user.ID] = user
	s.byUsername[user.Username] = user
	s.mu.Unlock()
	return user, nil
}

// UpsertFederated stores or refreshes a federated identity keyed by its
// provider-scoped ID.
func (s *Store) UpsertFederated(user User) User {
	user.Origin = OriginFederated
	s.mu.Lock()
	s.byID[user.ID] = user
	if user.Username != "" {
		s.byUsername[user.Username] = user
	}
	s.mu.Unlock()
	return user
}

// FindByUsername looks up an account by username.
func (s *Store) FindByUsername(username string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byUsername[strings.TrimSpace(username)]
	return user, ok
}

// FindByID looks up an account by identifier.
func (s *Store) FindByID(id string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	return user, ok
}

// VerifyPassword checks the supplied password against the stored hash.
func (u User) VerifyPassword(password string) bool {
	if u.passwordHash == "" {
		return false
	}
	ok, err := argon2id.ComparePasswordAndHash(password, u.passwordHash)
	return err == nil && ok
}
