package auth

import (
	"testing"
	"time"

	"github.com/SeakMengs/OpenSight/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

func newTestJWT(secret string) *JWT {
	return NewJwt(config.AuthConfig{JWT_SECRET: secret, TokenTTL: time.Hour}, zap.NewNop().Sugar())
}

// Perform token generation and verify the generated token to ensure VerifyJwtToken is correct
func TestJWT(t *testing.T) {
	jwtService := newTestJWT("test-secret")

	accessToken, err := jwtService.GenerateAccessToken(JWTPayload{Name: "labeler"}, 0)
	if err != nil {
		t.Fatalf("An error occurred during access token generation. Error: %v", err)
	}

	claims, err := jwtService.VerifyJwtToken(accessToken)
	if err != nil {
		t.Fatalf("An error occurred during access token verification. Error: %v", err)
	}

	if claims.Operator.Name != "labeler" {
		t.Errorf("Expected operator labeler, got %s", claims.Operator.Name)
	}

	if ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time); ttl != time.Hour {
		t.Errorf("Expected the configured ttl to be used, got %v", ttl)
	}
}

func TestJWTRejectsInvalidTokens(t *testing.T) {
	jwtService := newTestJWT("test-secret")

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		Operator: JWTPayload{Name: "labeler"},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "OpenSight",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}

	otherSecret, err := newTestJWT("other-secret").GenerateAccessToken(JWTPayload{Name: "labeler"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	anonymous, err := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "OpenSight",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"Expired", expired},
		{"Wrong secret", otherSecret},
		{"Missing operator", anonymous},
		{"Garbage", "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := jwtService.VerifyJwtToken(tt.token); err == nil {
				t.Error("Expected verification to fail")
			}
		})
	}
}

func TestGenerateWithoutSecret(t *testing.T) {
	if _, err := newTestJWT("").GenerateAccessToken(JWTPayload{Name: "labeler"}, time.Hour); err == nil {
		t.Error("Expected an error when no secret is configured")
	}
}
