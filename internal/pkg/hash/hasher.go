// internal/pkg/hash/hasher.go
package hash

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// Hasher hashes and verifies password credentials. New credentials are always
// bcrypt; verification additionally accepts legacy 32-char hex MD5 digests that
// predate the bcrypt rollout. Callers should rehash legacy credentials on the
// next successful login (see IsLegacy).
type Hasher struct {
	cost int
}

func NewHasher() *Hasher {
	return &Hasher{cost: bcrypt.DefaultCost}
}

// Hash generates a bcrypt hash for the given plaintext.
func (h *Hasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether plain matches the stored credential hash.
func (h *Hasher) Verify(plain, stored string) bool {
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)); err == nil {
		return true
	}
	if IsLegacy(stored) {
		sum := md5.Sum([]byte(plain))
		digest := hex.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(digest), []byte(stored)) == 1
	}
	return false
}

// IsLegacy reports whether stored is a legacy MD5 hex digest rather than a
// bcrypt hash. Detection is by shape: 32 lowercase hex characters.
func IsLegacy(stored string) bool {
	if len(stored) != 32 {
		return false
	}
	_, err := hex.DecodeString(stored)
	return err == nil
}
