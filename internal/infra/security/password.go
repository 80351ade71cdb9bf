package security

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

type BcryptService struct {
	cost int
}

func NewBcryptService(cost int) *BcryptService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptService{cost: cost}
}

func (s *BcryptService) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *BcryptService) Compare(hash string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// AdminCredentials checks HTTP basic auth against one configured admin account.
type AdminCredentials struct {
	user   string
	hash   string
	hasher *BcryptService
}

func NewAdminCredentials(user, passwordHash string, hasher *BcryptService) *AdminCredentials {
	return &AdminCredentials{user: user, hash: passwordHash, hasher: hasher}
}

// Enabled is false when no admin account is configured; admin routes then refuse everyone.
func (a *AdminCredentials) Enabled() bool {
	return a.user != "" && a.hash != ""
}

func (a *AdminCredentials) Verify(user, password string) bool {
	if !a.Enabled() {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(a.user)) == 1
	passOK := a.hasher.Compare(a.hash, password) == nil
	return userOK && passOK
}
