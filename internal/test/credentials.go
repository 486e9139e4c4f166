package test

import (
	"math/rand/v2"
	"strings"
)

const credentialAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Credentials is a throwaway customer identity for tests.
type Credentials struct {
	Name     string
	Email    string
	Password string
}

// RandomCredentials returns a unique-enough customer whose email passes format
// validation and whose password satisfies the minimum length.
func RandomCredentials() Credentials {
	local := randomString(6, 12)
	return Credentials{
		Name:     strings.ToUpper(local[:1]) + local[1:],
		Email:    local + "@" + randomString(4, 8) + ".test",
		Password: randomString(12, 24),
	}
}

func randomString(minLen, maxLen int) string {
	length := minLen + rand.IntN(maxLen-minLen+1)
	var b strings.Builder
	b.Grow(length)
	for range length {
		b.WriteByte(credentialAlphabet[rand.IntN(len(credentialAlphabet))])
	}
	return b.String()
}
