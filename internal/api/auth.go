package api

import (
	"strings"

	"github.com/soyeahso/crustspace/internal/apikey"
	"github.com/soyeahso/crustspace/internal/domain"
	"github.com/soyeahso/crustspace/internal/store"
)

// ExtractBearer pulls the token out of an Authorization header value.
// Returns false for an absent or malformed header.
func ExtractBearer(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := header[len(prefix):]
	if token == "" {
		return "", false
	}
	return token, true
}

// keyLookup is the slice of the agent store the verifier needs.
type keyLookup interface {
	GetByAPIKeyHash(hash string) (*domain.Agent, error)
}

// Verifier resolves bearer tokens to agents by digest lookup.
// It has no side effects: last_active_at bumps and activity rows are the
// caller's responsibility.
type Verifier struct {
	agents keyLookup
}

// NewVerifier creates a verifier backed by the given agent lookup.
func NewVerifier(agents keyLookup) *Verifier {
	return &Verifier{agents: agents}
}

// Verify digests the token and looks up the owning agent. It returns
// store.ErrNotFound uniformly whether the key never existed or its agent
// is gone — callers learn nothing about which.
func (v *Verifier) Verify(token string) (*domain.Agent, error) {
	return v.agents.GetByAPIKeyHash(apikey.Digest(token))
}

var _ keyLookup = (*store.AgentStore)(nil)
