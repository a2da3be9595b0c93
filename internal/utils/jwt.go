package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"backend/internal/config"
)

// Claims represents JWT claims. Subject is the user id and ID the jti shared
// by an access/refresh pair.
type Claims struct {
	UserType string `json:"user_type,omitempty"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	JTI          string
	RefreshTTL   time.Duration
}

// TokenIssuer signs and verifies HS256 tokens with the configured secrets.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenIssuer(cfg config.JWTConfig) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
	}
}

func (ti *TokenIssuer) sign(userID uuid.UUID, userType, jti string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserType: userType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// GenerateTokens creates an access/refresh pair sharing one jti.
func (ti *TokenIssuer) GenerateTokens(userID uuid.UUID, userType string) (*TokenPair, error) {
	jti := uuid.NewString()

	access, err := ti.sign(userID, userType, jti, ti.accessTTL, ti.accessSecret)
	if err != nil {
		return nil, err
	}
	refresh, err := ti.sign(userID, userType, jti, ti.refreshTTL, ti.refreshSecret)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh, JTI: jti, RefreshTTL: ti.refreshTTL}, nil
}

func (ti *TokenIssuer) VerifyAccess(token string) (*Claims, error) {
	return VerifyJWT(token, ti.accessSecret)
}

func (ti *TokenIssuer) VerifyRefresh(token string) (*Claims, error) {
	return VerifyJWT(token, ti.refreshSecret)
}

// VerifyJWT parses and validates a JWT string.
func VerifyJWT(tokenStr string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}

// UserID returns the subject as a UUID.
func (c *Claims) UserID() (uuid.UUID, error) {
	if c.Subject == "" {
		return uuid.Nil, errors.New("token has no subject")
	}
	return uuid.Parse(c.Subject)
}
