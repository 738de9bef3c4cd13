package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/soyeahso/crustspace/internal/domain"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// AgentStore persists agent profiles.
type AgentStore struct {
	db *DB
}

// NewAgentStore creates an agent store using the given database.
func NewAgentStore(db *DB) *AgentStore {
	return &AgentStore{db: db}
}

// updatableColumns is the closed set of profile columns the self-service
// API may write. Keys in an update map are checked against this before any
// SQL is built.
var updatableColumns = map[string]bool{
	"status":         true,
	"status_message": true,
	"bio":            true,
	"tagline":        true,
}

const agentColumns = `id, handle, name, tagline, bio, avatar_url, status, status_message,
	base_model, tier, verified, theme,
	can_edit_bio, can_edit_status, can_edit_capabilities, can_edit_portfolio,
	api_key_hash, created_at, updated_at, last_active_at`

// Create inserts a new agent. ID and timestamps are filled in when zero.
func (s *AgentStore) Create(a *domain.Agent) error {
	if !domain.ValidHandle(a.Handle) {
		return fmt.Errorf("invalid handle %q", a.Handle)
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.Status == "" {
		a.Status = domain.StatusOffline
	}
	if a.Tier == "" {
		a.Tier = domain.TierFree
	}
	if a.Theme == "" {
		a.Theme = "default"
	}

	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	a.LastActiveAt = now

	var keyHash sql.NullString
	if a.APIKeyHash != "" {
		keyHash = sql.NullString{String: a.APIKeyHash, Valid: true}
	}
	var statusMsg sql.NullString
	if a.StatusMessage != "" {
		statusMsg = sql.NullString{String: a.StatusMessage, Valid: true}
	}

	_, err := s.db.sql.Exec(
		`INSERT INTO agents (`+agentColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Handle, a.Name, a.Tagline, a.Bio, a.AvatarURL,
		string(a.Status), statusMsg, a.BaseModel, string(a.Tier),
		boolInt(a.Verified), a.Theme,
		boolInt(a.CanEdit.Bio), boolInt(a.CanEdit.Status),
		boolInt(a.CanEdit.Capabilities), boolInt(a.CanEdit.Portfolio),
		keyHash,
		formatTime(a.CreatedAt), formatTime(a.UpdatedAt), formatTime(a.LastActiveAt),
	)
	if err != nil {
		return fmt.Errorf("creating agent %s: %w", a.Handle, err)
	}
	return nil
}

// GetByID returns the agent with the given ID.
func (s *AgentStore) GetByID(id string) (*domain.Agent, error) {
	return s.getWhere("id = ?", id)
}

// GetByHandle returns the agent with the given handle.
func (s *AgentStore) GetByHandle(handle string) (*domain.Agent, error) {
	return s.getWhere("handle = ?", handle)
}

// GetByAPIKeyHash returns the agent whose stored key digest equals hash.
// The lookup is exact-match; ErrNotFound is returned uniformly whether the
// digest never existed or its agent is gone.
func (s *AgentStore) GetByAPIKeyHash(hash string) (*domain.Agent, error) {
	return s.getWhere("api_key_hash = ?", hash)
}

func (s *AgentStore) getWhere(where string, arg any) (*domain.Agent, error) {
	row := s.db.sql.QueryRow(`SELECT `+agentColumns+` FROM agents WHERE `+where, arg)
	a, err := scanAgent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading agent: %w", err)
	}
	return a, nil
}

// UpdateFields applies a validated field→value map in a single UPDATE,
// refreshing updated_at. A nil value clears a nullable column. Unknown
// columns are refused. Either the whole batch is written or nothing is.
func (s *AgentStore) UpdateFields(id string, fields map[string]any) (*domain.Agent, error) {
	if len(fields) == 0 {
		return nil, errors.New("empty update set")
	}

	setClauses := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+2)
	for col, val := range fields {
		if !updatableColumns[col] {
			return nil, fmt.Errorf("column %q is not updatable", col)
		}
		setClauses = append(setClauses, col+" = ?")
		args = append(args, val)
	}
	setClauses = append(setClauses, "updated_at = ?")
	args = append(args, formatTime(time.Now().UTC()), id)

	res, err := s.db.sql.Exec(
		"UPDATE agents SET "+strings.Join(setClauses, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("updating agent %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}

	return s.GetByID(id)
}

// SetAPIKeyHash stores a new key digest for the agent, replacing any
// previous one.
func (s *AgentStore) SetAPIKeyHash(id, hash string) error {
	res, err := s.db.sql.Exec(`UPDATE agents SET api_key_hash = ? WHERE id = ?`, hash, id)
	if err != nil {
		return fmt.Errorf("storing key hash: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPermissions writes the owner-controlled edit flags. This is the
// out-of-band path; the HTTP API never calls it.
func (s *AgentStore) SetPermissions(id string, p domain.Permissions) error {
	res, err := s.db.sql.Exec(
		`UPDATE agents SET can_edit_bio = ?, can_edit_status = ?,
		 can_edit_capabilities = ?, can_edit_portfolio = ? WHERE id = ?`,
		boolInt(p.Bio), boolInt(p.Status), boolInt(p.Capabilities), boolInt(p.Portfolio), id)
	if err != nil {
		return fmt.Errorf("storing permissions: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchLastActive bumps last_active_at to now.
func (s *AgentStore) TouchLastActive(id string) error {
	_, err := s.db.sql.Exec(
		`UPDATE agents SET last_active_at = ? WHERE id = ?`,
		formatTime(time.Now().UTC()), id)
	if err != nil {
		return fmt.Errorf("touching last_active_at: %w", err)
	}
	return nil
}

// List returns all agents ordered by handle.
func (s *AgentStore) List() ([]domain.Agent, error) {
	rows, err := s.db.sql.Query(`SELECT ` + agentColumns + ` FROM agents ORDER BY handle`)
	if err != nil {
		return nil, fmt.Errorf("listing agents: %w", err)
	}
	defer rows.Close()

	var agents []domain.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning agent: %w", err)
		}
		agents = append(agents, *a)
	}
	return agents, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanAgent(row scanner) (*domain.Agent, error) {
	var (
		a                            domain.Agent
		status, tier                 string
		statusMsg, keyHash           sql.NullString
		verified                     int
		bio, st, caps, portfolio     int
		created, updated, lastActive string
	)
	err := row.Scan(
		&a.ID, &a.Handle, &a.Name, &a.Tagline, &a.Bio, &a.AvatarURL,
		&status, &statusMsg, &a.BaseModel, &tier, &verified, &a.Theme,
		&bio, &st, &caps, &portfolio,
		&keyHash, &created, &updated, &lastActive,
	)
	if err != nil {
		return nil, err
	}

	a.Status = domain.Status(status)
	a.Tier = domain.Tier(tier)
	a.StatusMessage = statusMsg.String
	a.APIKeyHash = keyHash.String
	a.Verified = verified != 0
	a.CanEdit = domain.Permissions{
		Bio:          bio != 0,
		Status:       st != 0,
		Capabilities: caps != 0,
		Portfolio:    portfolio != 0,
	}
	a.CreatedAt = parseTime(created)
	a.UpdatedAt = parseTime(updated)
	a.LastActiveAt = parseTime(lastActive)
	return &a, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.Format(time.DateTime)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.DateTime, s)
	return t
}
