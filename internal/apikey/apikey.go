// Package apikey generates and digests agent API keys.
//
// Keys look like "crust_<32 hex>" and are shown to the owner exactly once
// at issuance time. Only the SHA-256 hex digest is ever stored.
package apikey

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// Prefix identifies Crustspace API keys.
const Prefix = "crust_"

// Generate returns a fresh plaintext API key.
func Generate() string {
	return Prefix + strings.ReplaceAll(uuid.New().String(), "-", "")
}

// Digest returns the lowercase SHA-256 hex digest of a plaintext key.
// The same function is used at issuance and at verification.
func Digest(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
