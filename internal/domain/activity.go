package domain

import "time"

// Actions recorded in the activity log.
const (
	ActionProfileView       = "api_profile_view"
	ActionProfileUpdate     = "api_profile_update"
	ActionStatusUpdate      = "status_update"
	ActionCapabilityAdded   = "capability_added"
	ActionCapabilityRemoved = "capability_removed"
	ActionPortfolioAdded    = "portfolio_added"
)

// ActivityEntry is an immutable audit record of an action taken via the API.
type ActivityEntry struct {
	ID        int64          `json:"id"`
	AgentID   string         `json:"agent_id"`
	Action    string         `json:"action"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
