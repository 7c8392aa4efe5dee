//go:build race

package auth

import "golang.org/x/crypto/bcrypt"

// Race builds are slow enough already, keep hashing cheap there.
func passwordHashCost() int {
	return bcrypt.DefaultCost
}
