package service

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-content-retention/internal/model"
	"go-content-retention/pkg/apierror"
)

// TokenService validates bearer tokens issued by the surrounding platform.
// Tokens are HMAC-signed JWTs sharing a secret with the identity provider;
// this service never manages users itself.
type TokenService struct {
	jwtSecret []byte
	accessTTL time.Duration
}

func NewTokenService(jwtSecret string, accessTTL time.Duration) *TokenService {
	return &TokenService{jwtSecret: []byte(jwtSecret), accessTTL: accessTTL}
}

func (s *TokenService) ValidateToken(tokenString string, expectedType string) (*model.AuthClaims, error) {
	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apierror.New("UNAUTHORIZED", "invalid token signing method", "", http.StatusUnauthorized)
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apierror.New("UNAUTHORIZED", "invalid token", "", http.StatusUnauthorized)
	}

	claimsMap, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apierror.New("UNAUTHORIZED", "invalid token claims", "", http.StatusUnauthorized)
	}

	typ, _ := claimsMap["typ"].(string)
	if expectedType != "" && typ != expectedType {
		return nil, apierror.New("UNAUTHORIZED", "invalid token type", "", http.StatusUnauthorized)
	}

	claims := &model.AuthClaims{Type: typ}
	claims.UserID, _ = claimsMap["sub"].(string)
	claims.Username, _ = claimsMap["username"].(string)
	claims.Role, _ = claimsMap["role"].(string)
	claims.TokenID, _ = claimsMap["jti"].(string)

	if claims.UserID == "" {
		return nil, apierror.New("UNAUTHORIZED", "invalid token subject", "", http.StatusUnauthorized)
	}

	return claims, nil
}

// IssueToken signs a short-lived access token. Used by operator tooling and
// tests; production traffic normally arrives with platform-issued tokens.
func (s *TokenService) IssueToken(userID string, username string, role string) (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      userID,
		"username": username,
		"role":     role,
		"typ":      "access",
		"jti":      uuid.NewString(),
		"iat":      now.Unix(),
		"exp":      now.Add(s.accessTTL).Unix(),
	})
	return token.SignedString(s.jwtSecret)
}
