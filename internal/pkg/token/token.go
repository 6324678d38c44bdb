// Package token generates the opaque access tokens handed to applicants at
// submission time. Tokens are bearer credentials; they are stored as-is and
// compared with constant-time equality.
package token

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

// accessTokenBytes matches a 32-byte URL-safe token
const accessTokenBytes = 32

// NewAccessToken returns a fresh URL-safe random token.
func NewAccessToken() (string, error) {
	buf := make([]byte, accessTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Equal compares two tokens without leaking timing information.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
