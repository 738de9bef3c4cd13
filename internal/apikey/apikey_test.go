package apikey

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate_Format(t *testing.T) {
	key := Generate()
	assert.True(t, strings.HasPrefix(key, "crust_"))
	assert.Len(t, key, len(Prefix)+32)
	assert.NotContains(t, key, "-")
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key := Generate()
		assert.False(t, seen[key], "duplicate key generated")
		seen[key] = true
	}
}

func TestDigest_Deterministic(t *testing.T) {
	key := Generate()
	assert.Equal(t, Digest(key), Digest(key))
}

func TestDigest_KnownValue(t *testing.T) {
	// sha256("crust_test") — pins the digest function across refactors
	assert.Equal(t,
		"ba3e913e375c3e698b693269971c57928a26396e1e5f32b5ed9503e0a84a8718",
		Digest("crust_test"))
}

func TestDigest_HexLength(t *testing.T) {
	assert.Len(t, Digest("anything"), 64)
}
