package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/SeakMengs/OpenSight/internal/config"
	"github.com/SeakMengs/OpenSight/internal/util"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var ErrInvalidToken = errors.New("jwt token is not valid")

type JWT struct {
	logger    *zap.SugaredLogger
	jwtSecret string
	tokenTTL  time.Duration
}

type JWTInterface interface {
	GenerateAccessToken(payload JWTPayload, ttl time.Duration) (string, error)
	VerifyJwtToken(token string) (*JWTClaims, error)
}

func NewJwt(cfg config.AuthConfig, logger *zap.SugaredLogger) *JWT {
	// For unit test
	if logger == nil {
		logger = util.NewLogger("development")
	}

	return &JWT{
		jwtSecret: cfg.JWT_SECRET,
		tokenTTL:  cfg.TokenTTL,
		logger:    logger,
	}
}

// JWTPayload identifies the operator a token was minted for. The labeling tool has
// no user accounts, tokens are handed out to operators and integrations.
type JWTPayload struct {
	Name string `json:"name"`
}

type JWTClaims struct {
	Operator JWTPayload `json:"operator"`
	jwt.RegisteredClaims
}

// ttl <= 0 falls back to the configured token lifetime.
func (j JWT) GenerateAccessToken(payload JWTPayload, ttl time.Duration) (string, error) {
	j.logger.Debugf("Generate access token with payload: %v", payload)

	if j.jwtSecret == "" {
		return "", errors.New("jwt secret is not configured")
	}

	if ttl <= 0 {
		ttl = j.tokenTTL
	}

	now := time.Now()
	claims := JWTClaims{
		Operator: payload,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    util.GetAppName(),
			Subject:   payload.Name,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(j.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return token, nil
}

func (j JWT) VerifyJwtToken(token string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	parsedToken, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(j.jwtSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(util.GetAppName()),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		j.logger.Debugf("Failed to verify jwt token. Error: %v", err)
		return nil, err
	}

	if !parsedToken.Valid {
		j.logger.Debug("Jwt token is not valid")
		return nil, ErrInvalidToken
	}

	if claims.Operator.Name == "" {
		return nil, fmt.Errorf("%w: operator field is missing", ErrInvalidToken)
	}

	return claims, nil
}
