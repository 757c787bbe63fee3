package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every reason a token is rejected: malformed,
// wrong signature or algorithm, missing or past expiry.
var ErrInvalidToken = errors.New("invalid token")

// JWTClaims JWT claims carried by a session token.
type JWTClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies HS256 session tokens.
type JWTManager struct {
	secretKey  []byte
	algorithm  jwt.SigningMethod
	expireTime time.Duration
	now        func() time.Time
}

// NewJWTManager creates a JWTManager.
func NewJWTManager(secretKey string, expireTime time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:  []byte(secretKey),
		algorithm:  jwt.SigningMethodHS256,
		expireTime: expireTime,
		now:        time.Now,
	}
}

// GenerateToken signs a token for userID that expires after the configured window.
func (j *JWTManager) GenerateToken(userID uint) (string, error) {
	now := j.now()
	claims := JWTClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(j.expireTime)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(j.algorithm, claims)
	return token.SignedString(j.secretKey)
}

// ValidateToken verifies tokenString. It never panics; any failure is ErrInvalidToken.
func (j *JWTManager) ValidateToken(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return j.secretKey, nil
	},
		jwt.WithValidMethods([]string{j.algorithm.Alg()}),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.ExpiresAt == nil || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
