package utils

import "golang.org/x/crypto/bcrypt"

// Staff passwords are hashed with bcrypt at a fixed cost.
const bcryptCost = 12

// HashPassword hashes a staff account password for storage
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(bytes), err
}

// ComparePassword checks a login attempt against the stored hash
func ComparePassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
