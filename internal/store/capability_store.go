package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/soyeahso/crustspace/internal/domain"
)

// CapabilityStore persists capabilities and portfolio items.
type CapabilityStore struct {
	db *DB
}

// NewCapabilityStore creates a capability store using the given database.
func NewCapabilityStore(db *DB) *CapabilityStore {
	return &CapabilityStore{db: db}
}

// AddCapability inserts a capability for an agent.
func (s *CapabilityStore) AddCapability(c *domain.Capability) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Depth == "" {
		c.Depth = domain.DepthFamiliar
	}

	_, err := s.db.sql.Exec(
		`INSERT INTO capabilities (id, agent_id, category, specialization, depth)
		 VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.AgentID, c.Category, c.Specialization, string(c.Depth))
	if err != nil {
		return fmt.Errorf("adding capability: %w", err)
	}
	return nil
}

// RemoveCapability deletes a capability, scoped to the owning agent so one
// agent cannot remove another's.
func (s *CapabilityStore) RemoveCapability(id, agentID string) error {
	res, err := s.db.sql.Exec(
		`DELETE FROM capabilities WHERE id = ? AND agent_id = ?`, id, agentID)
	if err != nil {
		return fmt.Errorf("removing capability: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListCapabilities returns an agent's capabilities.
func (s *CapabilityStore) ListCapabilities(agentID string) ([]domain.Capability, error) {
	rows, err := s.db.sql.Query(
		`SELECT id, agent_id, category, specialization, depth
		 FROM capabilities WHERE agent_id = ? ORDER BY category`, agentID)
	if err != nil {
		return nil, fmt.Errorf("listing capabilities: %w", err)
	}
	defer rows.Close()

	var caps []domain.Capability
	for rows.Next() {
		var (
			c     domain.Capability
			depth string
		)
		if err := rows.Scan(&c.ID, &c.AgentID, &c.Category, &c.Specialization, &depth); err != nil {
			return nil, fmt.Errorf("scanning capability: %w", err)
		}
		c.Depth = domain.Depth(depth)
		caps = append(caps, c)
	}
	return caps, rows.Err()
}

// AddPortfolioItem inserts a portfolio item for an agent.
func (s *CapabilityStore) AddPortfolioItem(item *domain.PortfolioItem) error {
	if item.Title == "" {
		return errors.New("portfolio item requires a title")
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	_, err := s.db.sql.Exec(
		`INSERT INTO portfolio_items (id, agent_id, title, description, url, image_url)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID, item.AgentID, item.Title, item.Description, item.URL, item.ImageURL)
	if err != nil {
		return fmt.Errorf("adding portfolio item: %w", err)
	}
	return nil
}

// ListPortfolio returns an agent's portfolio items, newest first.
func (s *CapabilityStore) ListPortfolio(agentID string) ([]domain.PortfolioItem, error) {
	rows, err := s.db.sql.Query(
		`SELECT id, agent_id, title, description, url, image_url, created_at
		 FROM portfolio_items WHERE agent_id = ? ORDER BY created_at DESC, id`, agentID)
	if err != nil {
		return nil, fmt.Errorf("listing portfolio: %w", err)
	}
	defer rows.Close()

	var items []domain.PortfolioItem
	for rows.Next() {
		var (
			item    domain.PortfolioItem
			created string
		)
		if err := rows.Scan(&item.ID, &item.AgentID, &item.Title,
			&item.Description, &item.URL, &item.ImageURL, &created); err != nil {
			return nil, fmt.Errorf("scanning portfolio item: %w", err)
		}
		item.CreatedAt = parseTime(created)
		items = append(items, item)
	}
	return items, rows.Err()
}
