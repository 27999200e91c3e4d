package jwt

import (
	"testing"
	"time"

	"go-vaccination-booking/config"

	"github.com/google/uuid"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
	})
	userID := uuid.New()

	tests := []struct {
		name     string
		generate func() (string, string, error)
		want     TokenType
	}{
		{"access", func() (string, string, error) { return svc.GenerateAccessToken(userID, "p@example.com", "parent") }, AccessToken},
		{"refresh", func() (string, string, error) { return svc.GenerateRefreshToken(userID, "p@example.com", "parent") }, RefreshToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, tokenID, err := tt.generate()
			if err != nil {
				t.Fatalf("generate: %v", err)
			}

			claims, err := svc.ValidateToken(token)
			if err != nil {
				t.Fatalf("ValidateToken() error = %v", err)
			}
			if claims.UserID != userID || claims.Role != "parent" {
				t.Errorf("claims = %+v, want user %s with role parent", claims, userID)
			}
			if claims.TokenType != tt.want {
				t.Errorf("TokenType = %q, want %q", claims.TokenType, tt.want)
			}
			if claims.TokenID != tokenID {
				t.Errorf("TokenID = %q, want %q", claims.TokenID, tokenID)
			}
		})
	}
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	issuer := NewJWTService(config.JWTConfig{Secret: "one", AccessExpiry: time.Minute})
	verifier := NewJWTService(config.JWTConfig{Secret: "two", AccessExpiry: time.Minute})

	token, _, err := issuer.GenerateAccessToken(uuid.New(), "d@example.com", "doctor")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := verifier.ValidateToken(token); err == nil {
		t.Fatal("expected signature validation to fail")
	}
}
