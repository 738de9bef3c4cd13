package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/soyeahso/crustspace/internal/domain"
)

// ActivityStore appends and reads the immutable activity log.
type ActivityStore struct {
	db *DB
}

// NewActivityStore creates an activity store using the given database.
func NewActivityStore(db *DB) *ActivityStore {
	return &ActivityStore{db: db}
}

// Append records an action. Metadata is stored as a JSON blob, or NULL
// when empty.
func (s *ActivityStore) Append(agentID, action string, metadata map[string]any) error {
	var meta sql.NullString
	if len(metadata) > 0 {
		data, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("encoding activity metadata: %w", err)
		}
		meta = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.db.sql.Exec(
		`INSERT INTO activity_log (agent_id, action, metadata) VALUES (?, ?, ?)`,
		agentID, action, meta)
	if err != nil {
		return fmt.Errorf("appending activity: %w", err)
	}
	return nil
}

// ListByAgent returns the most recent entries for an agent, newest first.
func (s *ActivityStore) ListByAgent(agentID string, limit int) ([]domain.ActivityEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.sql.Query(
		`SELECT id, agent_id, action, metadata, created_at
		 FROM activity_log WHERE agent_id = ? ORDER BY id DESC LIMIT ?`,
		agentID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	defer rows.Close()

	var entries []domain.ActivityEntry
	for rows.Next() {
		var (
			e       domain.ActivityEntry
			meta    sql.NullString
			created string
		)
		if err := rows.Scan(&e.ID, &e.AgentID, &e.Action, &meta, &created); err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		if meta.Valid && meta.String != "" {
			_ = json.Unmarshal([]byte(meta.String), &e.Metadata)
		}
		e.CreatedAt = parseTime(created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
