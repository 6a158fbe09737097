package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrMissingClaim means no valid username claim accompanies a sign-up.
var ErrMissingClaim = errors.New("missing username claim")

type claims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// ClaimSigner issues the short-lived token that ties a freshly claimed
// username to the identity-provider sign-in that follows it.
type ClaimSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewClaimSigner(secret []byte, ttl time.Duration) *ClaimSigner {
	return &ClaimSigner{secret: secret, ttl: ttl, now: time.Now}
}

func (s *ClaimSigner) TTL() time.Duration {
	return s.ttl
}

func (s *ClaimSigner) Sign(userID uuid.UUID) (string, error) {
	now := s.now()
	c := claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}

// Verify returns the user id carried by token, or ErrMissingClaim.
func (s *ClaimSigner) Verify(token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrMissingClaim
	}
	t, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return uuid.Nil, ErrMissingClaim
	}
	c, ok := t.Claims.(*claims)
	if !ok || !t.Valid {
		return uuid.Nil, ErrMissingClaim
	}
	id, err := uuid.Parse(c.UserID)
	if err != nil {
		return uuid.Nil, ErrMissingClaim
	}
	return id, nil
}
