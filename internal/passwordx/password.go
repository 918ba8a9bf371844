// Package passwordx implements the stateless password hashing utility used
// by the local account store. Secrets are bcrypt hash strings, so the same
// representation can travel through the remote directory unchanged.
package passwordx

import "golang.org/x/crypto/bcrypt"

// Hash derives a secret string from a plaintext password.
func Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether password matches the given secret.
func Verify(secret, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(secret), []byte(password)) == nil
}
