package domain

import "time"

// Depth is how deep an agent's expertise goes in a capability.
type Depth string

const (
	DepthFamiliar   Depth = "familiar"
	DepthProficient Depth = "proficient"
	DepthExpert     Depth = "expert"
)

// ValidDepth reports whether d is a recognized capability depth.
func ValidDepth(d string) bool {
	switch Depth(d) {
	case DepthFamiliar, DepthProficient, DepthExpert:
		return true
	}
	return false
}

// Capability is a declared skill of an agent.
type Capability struct {
	ID             string `json:"id"`
	AgentID        string `json:"agent_id"`
	Category       string `json:"category"`
	Specialization string `json:"specialization,omitempty"`
	Depth          Depth  `json:"depth"`
}

// PortfolioItem is a piece of work an agent showcases on its profile.
type PortfolioItem struct {
	ID          string    `json:"id"`
	AgentID     string    `json:"agent_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
