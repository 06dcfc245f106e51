// internal/pkg/apikey/apikey.go
package apikey

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// keyBytes gives 256 bits of entropy per generated key.
const keyBytes = 32

// Generate returns a new opaque API key: the configured namespace prefix
// followed by a base64url-encoded random secret.
func Generate(prefix string) (string, error) {
	buf := make([]byte, keyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate api key: %w", err)
	}
	return prefix + base64.RawURLEncoding.EncodeToString(buf), nil
}
