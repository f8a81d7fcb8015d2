// Package auth holds the static token set that gates every agent operation.
//
// Tokens are opaque shared secrets with no per-operation scoping. The set is
// built once at startup and never mutated, so membership checks need no
// locking.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

// Authority answers token membership queries against the configured set.
type Authority struct {
	tokens map[string]struct{}
}

// NewAuthority builds an Authority from an already-split token list.
// Entries are used verbatim; membership is exact string match.
func NewAuthority(tokens []string) *Authority {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if t != "" {
			set[t] = struct{}{}
		}
	}
	return &Authority{tokens: set}
}

// IsAuthorized reports whether token is present in the configured set.
// A miss is a normal false result, not an error; the transport turns it
// into an opaque 404.
func (a *Authority) IsAuthorized(token string) bool {
	if token == "" {
		return false
	}
	_, ok := a.tokens[token]
	return ok
}

// Count returns the number of distinct tokens loaded.
func (a *Authority) Count() int {
	return len(a.tokens)
}

// GenerateToken returns a fresh URL-safe random token built from n bytes
// of entropy.
func GenerateToken(n int) (string, error) {
	if n < 16 {
		return "", fmt.Errorf("token entropy too low: %d bytes (minimum 16)", n)
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return strings.TrimRight(base64.URLEncoding.EncodeToString(buf), "="), nil
}
