// Package auth signs short-lived tokens that grant read access to one media item.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultTTL = 24 * time.Hour
	issuer     = "linksense"
	mediaRole  = "media"
)

// ErrInvalidToken is returned for malformed, expired, or mismatched tokens.
var ErrInvalidToken = errors.New("invalid media token")

// MediaClaims represents the claims in a media token
type MediaClaims struct {
	MediaID string `json:"media_id"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// Signer issues and validates HS256 media tokens
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner creates a signer. A non-positive ttl falls back to 24 hours.
func NewSigner(secret string, ttl time.Duration) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Signer{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue generates a token bound to mediaID
func (s *Signer) Issue(mediaID string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := &MediaClaims{
		MediaID: mediaID,
		Role:    mediaRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   mediaID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign media token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate checks tokenString and that it grants access to mediaID
func (s *Signer) Validate(tokenString, mediaID string) (*MediaClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &MediaClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*MediaClaims)
	if !ok || !token.Valid || claims.Role != mediaRole {
		return nil, ErrInvalidToken
	}
	if claims.MediaID != mediaID {
		return nil, fmt.Errorf("%w: token is for another media item", ErrInvalidToken)
	}
	return claims, nil
}
