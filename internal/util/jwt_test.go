package util

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestJWTManagerGenerateAndParse(t *testing.T) {
	manager := NewJWTManager("top-secret", 7*24*time.Hour)

	userID := uuid.New()
	token, expiresAt, err := manager.Generate(userID, "hiker@example.com", "Hiker")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token to be non-empty")
	}
	if expiresAt.Before(time.Now().Add(6 * 24 * time.Hour)) {
		t.Fatalf("expected expiry about a week ahead, got %s", expiresAt)
	}

	claims, err := manager.Parse(token)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user id %s, got %s", userID, claims.UserID)
	}
	if claims.Email != "hiker@example.com" || claims.Name != "Hiker" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestJWTManagerParseExpiredToken(t *testing.T) {
	manager := NewJWTManager("secret", time.Minute)
	manager.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := manager.Generate(uuid.New(), "hiker@example.com", "")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	manager.now = time.Now
	if _, err := manager.Parse(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestJWTManagerRejectsForeignSecret(t *testing.T) {
	token, _, err := NewJWTManager("one", time.Hour).Generate(uuid.New(), "a@b.c", "")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if _, err := NewJWTManager("two", time.Hour).Parse(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestJWTManagerRejectsForeignIssuer(t *testing.T) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("shared"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewJWTManager("shared", time.Hour).Parse(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
