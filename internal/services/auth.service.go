package services

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const tokenIssuer = "diskwatch"

// AuthService issues and validates the tokens that guard the live cycle feed
type AuthService struct {
	secretKey   []byte
	tokenExpiry time.Duration
}

// ViewerClaims represents the JWT claims structure
type ViewerClaims struct {
	Viewer string `json:"viewer"`
	jwt.RegisteredClaims
}

// NewAuthService returns an HS256 token service. A zero tokenExpiry means 90 days.
func NewAuthService(secretKey string, tokenExpiry time.Duration) (*AuthService, error) {
	if secretKey == "" {
		return nil, errors.New("auth secret is empty")
	}
	if tokenExpiry == 0 {
		tokenExpiry = 90 * 24 * time.Hour
	}

	return &AuthService{
		secretKey:   []byte(secretKey),
		tokenExpiry: tokenExpiry,
	}, nil
}

// GenerateToken creates a signed token for viewer
func (a *AuthService) GenerateToken(viewer string) (string, error) {
	now := time.Now()

	claims := ViewerClaims{
		Viewer: viewer,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(a.secretKey)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return tokenString, nil
}

// ValidateToken verifies and parses a token
func (a *AuthService) ValidateToken(tokenString string) (*ViewerClaims, error) {
	claims := &ViewerClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secretKey, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
