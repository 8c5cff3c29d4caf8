package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword bcrypt-hashes a dashboard account password.  The cost
// comes from configuration so deployments can tune it without a
// rebuild.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored hash.
// bcrypt's comparison is constant-time, so a mismatch reveals nothing
// about the hash.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
