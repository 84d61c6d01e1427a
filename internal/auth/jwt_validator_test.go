package auth

import (
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

func buildToken(t *testing.T, mutate func(*jwt.Builder) *jwt.Builder) jwt.Token {
	t.Helper()
	now := time.Now()
	builder := jwt.NewBuilder().
		Subject("user-1").
		JwtID("token-1").
		Issuer("protek-api").
		Audience([]string{"protek-mobile"}).
		IssuedAt(now).
		Expiration(now.Add(time.Hour))
	if mutate != nil {
		builder = mutate(builder)
	}
	tok, err := builder.Build()
	if err != nil {
		t.Fatalf("build token: %v", err)
	}
	return tok
}

func TestTokenValidatorAccepts(t *testing.T) {
	v := TokenValidator{Issuer: "protek-api", Audience: "protek-mobile", Algorithm: jwa.HS256}
	tok := buildToken(t, nil)
	if err := v.Validate(tok, jwa.HS256, time.Now()); err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
}

func TestTokenValidatorRejects(t *testing.T) {
	v := TokenValidator{Issuer: "protek-api", Audience: "protek-mobile", Algorithm: jwa.HS256}

	cases := []struct {
		name      string
		tok       jwt.Token
		algorithm jwa.SignatureAlgorithm
		at        time.Time
	}{
		{"nil token", nil, jwa.HS256, time.Now()},
		{"missing algorithm", buildToken(t, nil), "", time.Now()},
		{"algorithm mismatch", buildToken(t, nil), jwa.HS384, time.Now()},
		{
			"missing subject",
			buildToken(t, func(b *jwt.Builder) *jwt.Builder { return b.Subject("") }),
			jwa.HS256, time.Now(),
		},
		{
			"missing token id",
			buildToken(t, func(b *jwt.Builder) *jwt.Builder { return b.JwtID("") }),
			jwa.HS256, time.Now(),
		},
		{
			"wrong issuer",
			buildToken(t, func(b *jwt.Builder) *jwt.Builder { return b.Issuer("someone-else") }),
			jwa.HS256, time.Now(),
		},
		{
			"wrong audience",
			buildToken(t, func(b *jwt.Builder) *jwt.Builder { return b.Audience([]string{"other-app"}) }),
			jwa.HS256, time.Now(),
		},
		{"expired", buildToken(t, nil), jwa.HS256, time.Now().Add(2 * time.Hour)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := v.Validate(tc.tok, tc.algorithm, tc.at); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestTokenValidatorClockSkew(t *testing.T) {
	v := TokenValidator{Algorithm: jwa.HS256, ClockSkew: 5 * time.Minute}
	tok := buildToken(t, nil)
	// Two minutes past expiry is still inside the skew window.
	at := time.Now().Add(time.Hour + 2*time.Minute)
	if err := v.Validate(tok, jwa.HS256, at); err != nil {
		t.Fatalf("token inside skew window rejected: %v", err)
	}
}
