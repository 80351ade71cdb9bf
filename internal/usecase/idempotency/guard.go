package idempotency

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"io"

	domsession "example.com/storefront/internal/domain/session"
)

const tokenBytes = 32

// Guard keeps exactly one live submission token per session.
type Guard struct {
	random io.Reader
}

func NewGuard() *Guard {
	return &Guard{random: rand.Reader}
}

// Issue returns the session's live token, creating one when there is none.
func (g *Guard) Issue(sess *domsession.Context) string {
	if sess.IdempotencyToken == "" {
		sess.IdempotencyToken = g.newToken()
	}
	return sess.IdempotencyToken
}

// Validate compares in constant time. It never rotates the token.
func (g *Guard) Validate(sess *domsession.Context, submitted string) bool {
	current := sess.IdempotencyToken
	if current == "" || submitted == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(current), []byte(submitted)) == 1
}

// Rotate replaces the live token; call it only after a successful submission.
func (g *Guard) Rotate(sess *domsession.Context) string {
	sess.IdempotencyToken = g.newToken()
	return sess.IdempotencyToken
}

func (g *Guard) newToken() string {
	buf := make([]byte, tokenBytes)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		// crypto/rand does not fail on supported platforms.
		panic("idempotency: read random: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
