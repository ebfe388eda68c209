package auth

import "golang.org/x/crypto/bcrypt"

// Cost 10 matches the hashes already stored for existing accounts.
const passwordCost = 10

func HashPassword(p string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(p), passwordCost)
	return string(b), err
}

func VerifyPassword(plain, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
