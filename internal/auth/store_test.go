package auth

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSeedLocalAndVerifyPassword(t *testing.T) {
	store := NewStore()
	user, err := store.SeedLocal("Test User", "test", "123456")
	if err != nil {
		t.Fatalf("seed local user: %v", err)
	}
	if user.Origin != OriginLocal {
		t.Fatalf("expected local origin, got %s", user.Origin)
	}
	if !user.VerifyPassword("123456") {
		t.Fatal("correct password rejected")
	}
	if user.VerifyPassword("wrong") {
		t.Fatal("wrong password accepted")
	}

	found, ok := store.FindByUsername("test")
	if !ok || found.ID != user.ID {
		t.Fatalf("seeded user not found by username")
	}
}

func TestSeedLocalRequiresCredentials(t *testing.T) {
	store := NewStore()
	if _, err := store.SeedLocal("Name", "", "pw"); err == nil {
		t.Fatal("expected error for empty username")
	}
	if _, err := store.SeedLocal("Name", "user", ""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestUpsertFederatedRefreshesProfile(t *testing.T) {
	store := NewStore()
	store.UpsertFederated(User{ID: "github:42", Username: "octocat", Name: "Octo"})
	store.UpsertFederated(User{ID: "github:42", Username: "octocat", Name: "Octo Cat", AvatarURL: "https://avatars.example/42"})

	user, ok := store.FindByID("github:42")
	if !ok {
		t.Fatal("federated user not found")
	}
	if user.Name != "Octo Cat" || user.AvatarURL == "" {
		t.Fatalf("upsert did not refresh profile: %+v", user)
	}
	if user.Origin != OriginFederated {
		t.Fatalf("expected federated origin, got %s", user.Origin)
	}
	if user.VerifyPassword("anything") {
		t.Fatal("federated users must never verify a password")
	}
}

func TestUserSerialisationOmitsPasswordHash(t *testing.T) {
	store := NewStore()
	user, err := store.SeedLocal("Test User", "test", "123456")
	if err != nil {
		t.Fatalf("seed local user: %v", err)
	}
	raw, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("marshal user: %v", err)
	}
	if strings.Contains(string(raw), "argon2") {
		t.Fatal("password hash leaked into serialised user")
	}
	if !strings.Contains(string(raw), `"type":"local"`) {
		t.Fatalf("expected origin under the type key, got %s", raw)
	}
}
