package api_keys

import (
	"golang.org/x/crypto/bcrypt"
)

// bcrypt cost 12 puts a single verification in the tens of milliseconds,
// which is the point: brute-forcing leaked hashes has to be expensive.
const secretHashCost = 12

func HashSecret(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), secretHashCost)
	if err != nil {
		return "", err
	}

	return string(digest), nil
}

// VerifySecret compares in constant time relative to the plaintext; callers
// treat it as an opaque equality oracle.
func VerifySecret(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
