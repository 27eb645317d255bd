package lib

import (
	"errors"
	"fmt"
	"hms/src/types"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrMissingSecret = errors.New("JWT_SECRET is not set")

// JWTSigner signs and verifies invitation tokens with HS256.
type JWTSigner struct {
	key []byte
	now func() time.Time
}

func NewJWTSigner(key []byte) *JWTSigner {
	return &JWTSigner{key: key, now: time.Now}
}

// Sign stamps issue and expiry times and a unique jti so two tokens minted
// for the same link within one second never collide.
func (s *JWTSigner) Sign(claims *types.LinkClaims, ttl time.Duration) (string, error) {
	if len(s.key) == 0 {
		return "", ErrMissingSecret
	}
	now := s.now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   strconv.FormatUint(uint64(claims.ID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.key)
}

func (s *JWTSigner) Verify(tokenStr string) (*types.LinkClaims, error) {
	if len(s.key) == 0 {
		return nil, ErrMissingSecret
	}
	claims := &types.LinkClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return s.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("token is not valid")
	}
	return claims, nil
}

// GenerateJWT issues a staff session token.
func GenerateJWT(key []byte, username string, role string, ttl time.Duration) (string, error) {
	if len(key) == 0 {
		return "", ErrMissingSecret
	}
	now := time.Now()
	claims := &types.Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// ParseStaffToken verifies a staff session token and returns its claims.
func ParseStaffToken(key []byte, tokenStr string) (*types.Claims, error) {
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, fmt.Errorf("token for %s is not valid", claims.Username)
	}
	return claims, nil
}
