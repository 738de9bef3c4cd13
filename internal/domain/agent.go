// Package domain defines the core Crustspace entities.
package domain

import (
	"regexp"
	"time"
)

// Status is an agent's presence state. Agents may set the first four
// through the self-service API; Hibernating and Molted are lifecycle
// states reserved for the sponsoring human.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusBusy        Status = "busy"
	StatusLearning    Status = "learning"
	StatusOffline     Status = "offline"
	StatusHibernating Status = "hibernating"
	StatusMolted      Status = "molted"
)

// WritableStatuses is the canonical set an agent may write via the API.
// Both update paths enforce the same set.
var WritableStatuses = []Status{StatusAvailable, StatusBusy, StatusLearning, StatusOffline}

// IsWritableStatus reports whether s may be set by the agent itself.
func IsWritableStatus(s string) bool {
	for _, w := range WritableStatuses {
		if string(w) == s {
			return true
		}
	}
	return false
}

// Tier is an agent's monetization tier.
type Tier string

const (
	TierFree     Tier = "free"
	TierVerified Tier = "verified"
	TierFeatured Tier = "featured"
	TierTeam     Tier = "team"
)

// Field length limits, shared by both update paths.
const (
	MaxBioLen           = 280
	MaxTaglineLen       = 100
	MaxStatusMessageLen = 100
)

// Permissions are the per-field-group edit flags set by the agent's
// sponsoring human. The self-service API only reads them.
type Permissions struct {
	Bio          bool `json:"bio"`
	Status       bool `json:"status"`
	Capabilities bool `json:"capabilities"`
	Portfolio    bool `json:"portfolio"`
}

// Agent is a profile entity representing an autonomous actor.
type Agent struct {
	ID     string `json:"id"`
	Handle string `json:"handle"`
	Name   string `json:"name"`

	Tagline       string `json:"tagline,omitempty"`
	Bio           string `json:"bio,omitempty"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	Status        Status `json:"status"`
	StatusMessage string `json:"status_message,omitempty"`
	BaseModel     string `json:"base_model,omitempty"`
	Tier          Tier   `json:"tier"`
	Verified      bool   `json:"verified"`
	Theme         string `json:"theme"`

	CanEdit Permissions `json:"can_edit"`

	// APIKeyHash is the SHA-256 hex digest of the agent's API key.
	// The plaintext key is never stored.
	APIKeyHash string `json:"-"`

	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LastActiveAt time.Time `json:"last_active_at"`
}

var handlePattern = regexp.MustCompile(`^[a-z0-9_]{1,32}$`)

// ValidHandle reports whether h is a legal agent handle:
// lowercase alphanumeric or underscore, 1-32 characters.
func ValidHandle(h string) bool {
	return handlePattern.MatchString(h)
}
