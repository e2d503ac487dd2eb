package helpers

import "golang.org/x/crypto/bcrypt"

// PasswordCost is the bcrypt work factor. It is fixed on purpose and not read from configuration.
const PasswordCost = 10

// MaxPasswordBytes is the longest input bcrypt uses. Longer passwords are cut to this length
// before hashing and comparing, so both sides always agree.
const MaxPasswordBytes = 72

func passwordBytes(plain string) []byte {
	b := []byte(plain)
	if len(b) > MaxPasswordBytes {
		b = b[:MaxPasswordBytes]
	}
	return b
}

// HashPassword hashes the plain text password using bcrypt
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword(passwordBytes(plain), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plain password
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), passwordBytes(plain)) == nil
}
