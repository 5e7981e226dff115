package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-at-least-16-chars!!"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService(testSecret, 0)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

func signWith(t *testing.T, secret string, c jwt.RegisteredClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{RegisteredClaims: c}).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("signing: %v", err)
	}
	return signed
}

// =========================================================================
// CONSTRUCTION TESTS
// =========================================================================

func TestNewTokenService(t *testing.T) {
	if _, err := NewTokenService("short", 0); err == nil {
		t.Error("secrets under 16 characters should be rejected")
	}

	ts := newTestTokenService(t)
	if ts.TTL() != DefaultTokenTTL {
		t.Errorf("TTL() = %v, want default %v", ts.TTL(), DefaultTokenTTL)
	}

	custom, err := NewTokenService(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	if custom.TTL() != time.Hour {
		t.Errorf("TTL() = %v, want 1h", custom.TTL())
	}
}

// =========================================================================
// ROUND TRIP TESTS
// =========================================================================

func TestGenerateValidate(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("d0c3l5u8n1u0a7o2pq1g")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if strings.Count(token, ".") != 2 {
		t.Errorf("token %q is not header.payload.signature", token)
	}

	got, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got != "d0c3l5u8n1u0a7o2pq1g" {
		t.Errorf("Validate() = %q, want the generated subject", got)
	}

	other, _ := ts.Generate("another-user")
	if other == token {
		t.Error("different users must get different tokens")
	}
}

func TestGenerateWithDuration(t *testing.T) {
	ts := newTestTokenService(t)

	live, err := ts.GenerateWithDuration("u1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateWithDuration() error = %v", err)
	}
	if _, err := ts.Validate(live); err != nil {
		t.Errorf("1h token rejected: %v", err)
	}

	expired, _ := ts.GenerateWithDuration("u1", -time.Second)
	_, err = ts.Validate(expired)
	if err == nil || !strings.Contains(err.Error(), "expired") {
		t.Errorf("expired token error = %v, want an expiry error", err)
	}
}

// =========================================================================
// REJECTION TESTS
// =========================================================================

func TestValidate_Rejects(t *testing.T) {
	ts := newTestTokenService(t)
	good, _ := ts.Generate("u1")
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))

	none := jwt.NewWithClaims(jwt.SigningMethodNone, claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: "u1", Issuer: Issuer, ExpiresAt: future,
	}})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing none token: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt.token"},
		{"tampered signature", good[:len(good)-3] + "xxx"},
		{"other secret", signWith(t, "another-secret-0123456789", jwt.RegisteredClaims{Subject: "u1", Issuer: Issuer, ExpiresAt: future})},
		{"alg none", unsigned},
		{"foreign issuer", signWith(t, testSecret, jwt.RegisteredClaims{Subject: "u1", Issuer: "someone-else", ExpiresAt: future})},
		{"no expiry", signWith(t, testSecret, jwt.RegisteredClaims{Subject: "u1", Issuer: Issuer})},
		{"empty subject", signWith(t, testSecret, jwt.RegisteredClaims{Issuer: Issuer, ExpiresAt: future})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if sub, err := ts.Validate(tt.token); err == nil {
				t.Errorf("Validate() accepted the token with subject %q", sub)
			}
		})
	}
}
