package auth

import "golang.org/x/crypto/bcrypt"

// BcryptCodeHasher hashes gift card codes with bcrypt. The salted hash makes
// stored codes non-recoverable and the comparison timing-safe.
type BcryptCodeHasher struct {
	cost int
}

// NewBcryptCodeHasher creates a hasher with the default bcrypt cost.
func NewBcryptCodeHasher() *BcryptCodeHasher {
	return &BcryptCodeHasher{cost: bcrypt.DefaultCost}
}

// Hash returns the bcrypt hash of the code.
func (h *BcryptCodeHasher) Hash(code string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether the code matches the stored hash.
func (h *BcryptCodeHasher) Verify(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
