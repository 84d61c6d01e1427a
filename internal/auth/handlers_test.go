package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"

	"github.com/aqilnasir/protek-api/internal/common"
)

func TestLoginHandler(t *testing.T) {
	svc, _, user := newTestService(t, nil)
	handler := &Handler{Service: svc}

	t.Run("success", func(t *testing.T) {
		body := bytes.NewBufferString(`{"username":"test","password":"123456"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
		rec := httptest.NewRecorder()
		handler.Login(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status: %d", rec.Code)
		}
		var payload struct {
			Token string `json:"token"`
			User  User   `json:"user"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode login payload: %v", err)
		}
		if payload.Token == "" {
			t.Fatal("expected a token in the response")
		}
		if payload.User.ID != user.ID || payload.User.Origin != OriginLocal {
			t.Fatalf("unexpected user payload: %+v", payload.User)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		body := bytes.NewBufferString(`{"username":"test","password":"nope"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
		rec := httptest.NewRecorder()
		handler.Login(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, rec, "INVALID_CREDENTIALS")
	})

	t.Run("malformed payload", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBufferString("{oops"))
		rec := httptest.NewRecorder()
		handler.Login(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestProfileHandler(t *testing.T) {
	svc, _, user := newTestService(t, nil)
	handler := &Handler{Service: svc}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	req = req.WithContext(common.WithIdentity(req.Context(), common.Identity{
		ID:       user.ID,
		Username: user.Username,
		Origin:   user.Origin,
	}))
	rec := httptest.NewRecorder()
	handler.Profile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var payload struct {
		User User `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode profile payload: %v", err)
	}
	if payload.User.Username != "test" {
		t.Fatalf("unexpected profile: %+v", payload.User)
	}
}

func TestProfileHandlerWithoutIdentity(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	handler := &Handler{Service: svc}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profile", nil)
	rec := httptest.NewRecorder()
	handler.Profile(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLogoutHandlerRevokesSession(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc, _, _ := newTestService(t, RedisDenylist{R: client})
	handler := &Handler{Service: svc}

	result, err := svc.Login(context.Background(), "test", "123456")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+result.Token)
	rec := httptest.NewRecorder()
	handler.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if _, err := svc.ParseAccessToken(context.Background(), result.Token); err == nil {
		t.Fatal("token must be revoked after logout")
	}
}

func TestLogoutHandlerWithoutToken(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	handler := &Handler{Service: svc}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	rec := httptest.NewRecorder()
	handler.Logout(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("logout without a token is still a 200, got %d", rec.Code)
	}
}
