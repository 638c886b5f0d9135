package core

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"gridbot/utils"
)

// NewID generates a new ULID with the given prefix.
// The format is: prefix_ULID
// Example: core.NewID("msg") returns "msg_01G0EZ1XTM37C5X11SQTDNCTM1"
func NewID(prefix string) string {
	utils.AssertInvariant(strings.TrimSpace(prefix) != "", "prefix cannot be empty")

	entropy := ulid.Monotonic(rand.Reader, 0)
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)

	return strings.ToLower(strings.TrimSpace(prefix)) + "_" + id.String()
}

// IsValidULID checks if the given string is a valid prefixed ULID
// (prefix_ULID where ULID is 26 base32 characters).
func IsValidULID(id string) bool {
	parts := strings.Split(id, "_")
	if len(parts) != 2 {
		return false
	}

	prefix := parts[0]
	ulidPart := parts[1]

	if prefix == "" {
		return false
	}
	for _, r := range prefix {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
			return false
		}
	}

	if len(ulidPart) != 26 {
		return false
	}

	_, err := ulid.Parse(ulidPart)
	return err == nil
}

// NewSecretToken generates a cryptographically secure token with the given
// prefix, used for the admin API bearer token.
func NewSecretToken(prefix string) (string, error) {
	utils.AssertInvariant(strings.TrimSpace(prefix) != "", "prefix cannot be empty")

	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	token := strings.ToLower(strings.TrimSpace(prefix)) + "_" + base64.URLEncoding.EncodeToString(secretBytes)
	return token, nil
}
