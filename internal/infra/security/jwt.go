package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidSessionToken = errors.New("invalid session token")

// SessionTokenService signs the session id carried in the visitor's cookie.
type SessionTokenService struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

func NewSessionTokenService(secret string, expiration time.Duration) *SessionTokenService {
	return &SessionTokenService{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// WithClock replaces the clock used to issue and check tokens.
func (s *SessionTokenService) WithClock(now func() time.Time) *SessionTokenService {
	s.now = now
	return s
}

type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

func (s *SessionTokenService) Sign(sessionID string) (string, error) {
	now := s.now()
	claims := sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse returns the session id of a valid, unexpired token.
func (s *SessionTokenService) Parse(token string) (string, error) {
	id, _, err := s.ParseForRenewal(token)
	return id, err
}

// ParseForRenewal is Parse that also reports whether less than half of the
// token's lifetime is left, in which case the caller should sign a fresh one.
func (s *SessionTokenService) ParseForRenewal(token string) (string, bool, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrInvalidSessionToken, err)
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || claims.SessionID == "" {
		return "", false, ErrInvalidSessionToken
	}
	renew := claims.ExpiresAt == nil || claims.ExpiresAt.Sub(s.now()) < s.expiration/2
	return claims.SessionID, renew, nil
}
