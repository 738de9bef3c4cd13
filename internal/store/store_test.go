package store

import (
	"testing"
	"time"

	"github.com/soyeahso/crustspace/internal/domain"
	"github.com/soyeahso/crustspace/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	log := logging.New(nil, "silent")
	db, err := Open(":memory:", log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testAgent(t *testing.T, db *DB, handle string) *domain.Agent {
	t.Helper()
	a := &domain.Agent{
		Handle: handle,
		Name:   "Test Agent",
		Status: domain.StatusAvailable,
		CanEdit: domain.Permissions{
			Bio:    true,
			Status: true,
		},
	}
	require.NoError(t, NewAgentStore(db).Create(a))
	return a
}

// --- DB/Migration tests ---

func TestOpen_InMemory(t *testing.T) {
	db := testDB(t)
	assert.NotNil(t, db)
	assert.NotNil(t, db.SQL())
}

func TestMigrations_Applied(t *testing.T) {
	db := testDB(t)

	var count int
	err := db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
}

func TestMigrations_Idempotent(t *testing.T) {
	db := testDB(t)

	// Running migrate again should be a no-op
	err := db.migrate()
	require.NoError(t, err)

	var count int
	err = db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), count)
}

func TestSchema_TablesExist(t *testing.T) {
	db := testDB(t)

	tables := []string{"agents", "activity_log", "capabilities", "portfolio_items"}
	for _, table := range tables {
		var name string
		err := db.sql.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

// --- Agent store tests ---

func TestAgentStore_CreateAndGet(t *testing.T) {
	db := testDB(t)
	as := NewAgentStore(db)

	a := testAgent(t, db, "crabby")
	assert.NotEmpty(t, a.ID)

	got, err := as.GetByID(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "crabby", got.Handle)
	assert.Equal(t, domain.StatusAvailable, got.Status)
	assert.True(t, got.CanEdit.Bio)
	assert.False(t, got.CanEdit.Portfolio)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestAgentStore_GetByHandle(t *testing.T) {
	db := testDB(t)
	as := NewAgentStore(db)

	a := testAgent(t, db, "crabby")

	got, err := as.GetByHandle("crabby")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = as.GetByHandle("nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAgentStore_Create_InvalidHandle(t *testing.T) {
	db := testDB(t)
	as := NewAgentStore(db)

	err := as.Create(&domain.Agent{Handle: "Not-Valid", Name: "X"})
	assert.Error(t, err)
}

func TestAgentStore_Create_DuplicateHandle(t *testing.T) {
	db := testDB(t)
	as := NewAgentStore(db)

	testAgent(t, db, "crabby")
	err := as.Create(&domain.Agent{Handle: "crabby", Name: "Imposter"})
	assert.Error(t, err)
}

func TestAgentStore_GetByAPIKeyHash(t *testing.T) {
	db := testDB(t)
	as := NewAgentStore(db)

	a := testAgent(t, db, "crabby")
	require.NoError(t, as.SetAPIKeyHash(a.ID, "abc123"))

	got, err := as.GetByAPIKeyHash("abc123")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = as.GetByAPIKeyHash("unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAgentStore_DuplicateKeyHashRejected(t *testing.T) {
	db := testDB(t)
	as := NewAgentStore(db)

	a := testAgent(t, db, "crabby")
	b := testAgent(t, db, "lobster")

	require.NoError(t, as.SetAPIKeyHash(a.ID, "samehash"))
	assert.Error(t, as.SetAPIKeyHash(b.ID, "samehash"))
}

func TestAgentStore_UpdateFields(t *testing.T) {
	db := testDB(t)
	as := NewAgentStore(db)

	a := testAgent(t, db, "crabby")

	got, err := as.UpdateFields(a.ID, map[string]any{
		"status": "busy",
		"bio":    "I pinch things.",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBusy, got.Status)
	assert.Equal(t, "I pinch things.", got.Bio)
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))
}

func TestAgentStore_UpdateFields_NullClears(t *testing.T) {
	db := testDB(t)
	as := NewAgentStore(db)

	a := testAgent(t, db, "crabby")
	_, err := as.UpdateFields(a.ID, map[string]any{"status_message": "molting"})
	require.NoError(t, err)

	got, err := as.UpdateFields(a.ID, map[string]any{"status_message": nil})
	require.NoError(t, err)
	assert.Empty(t, got.StatusMessage)
}

func TestAgentStore_UpdateFields_UnknownColumn(t *testing.T) {
	db := testDB(t)
	as := NewAgentStore(db)

	a := testAgent(t, db, "crabby")
	_, err := as.UpdateFields(a.ID, map[string]any{"api_key_hash": "evil"})
	assert.Error(t, err)

	// Nothing was written
	got, err := as.GetByID(a.ID)
	require.NoError(t, err)
	assert.Empty(t, got.APIKeyHash)
}

func TestAgentStore_UpdateFields_Empty(t *testing.T) {
	db := testDB(t)
	as := NewAgentStore(db)

	a := testAgent(t, db, "crabby")
	_, err := as.UpdateFields(a.ID, map[string]any{})
	assert.Error(t, err)
}

func TestAgentStore_UpdateFields_MissingAgent(t *testing.T) {
	db := testDB(t)
	as := NewAgentStore(db)

	_, err := as.UpdateFields("nonexistent", map[string]any{"status": "busy"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAgentStore_SetPermissions(t *testing.T) {
	db := testDB(t)
	as := NewAgentStore(db)

	a := testAgent(t, db, "crabby")
	require.NoError(t, as.SetPermissions(a.ID, domain.Permissions{Portfolio: true}))

	got, err := as.GetByID(a.ID)
	require.NoError(t, err)
	assert.False(t, got.CanEdit.Bio)
	assert.False(t, got.CanEdit.Status)
	assert.True(t, got.CanEdit.Portfolio)
}

func TestAgentStore_TouchLastActive(t *testing.T) {
	db := testDB(t)
	as := NewAgentStore(db)

	a := testAgent(t, db, "crabby")
	// Backdate last_active_at so the bump is observable at second precision
	_, err := db.sql.Exec(
		`UPDATE agents SET last_active_at = ? WHERE id = ?`,
		formatTime(time.Now().UTC().Add(-time.Hour)), a.ID)
	require.NoError(t, err)

	require.NoError(t, as.TouchLastActive(a.ID))

	got, err := as.GetByID(a.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), got.LastActiveAt, 5*time.Second)
}

func TestAgentStore_List(t *testing.T) {
	db := testDB(t)
	as := NewAgentStore(db)

	testAgent(t, db, "lobster")
	testAgent(t, db, "crabby")

	agents, err := as.List()
	require.NoError(t, err)
	require.Len(t, agents, 2)
	assert.Equal(t, "crabby", agents[0].Handle)
	assert.Equal(t, "lobster", agents[1].Handle)
}

// --- Activity store tests ---

func TestActivityStore_Append(t *testing.T) {
	db := testDB(t)
	acts := NewActivityStore(db)

	a := testAgent(t, db, "crabby")
	require.NoError(t, acts.Append(a.ID, domain.ActionStatusUpdate,
		map[string]any{"status": "busy"}))

	entries, err := acts.ListByAgent(a.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionStatusUpdate, entries[0].Action)
	assert.Equal(t, "busy", entries[0].Metadata["status"])
}

func TestActivityStore_Append_NoMetadata(t *testing.T) {
	db := testDB(t)
	acts := NewActivityStore(db)

	a := testAgent(t, db, "crabby")
	require.NoError(t, acts.Append(a.ID, domain.ActionProfileView, nil))

	entries, err := acts.ListByAgent(a.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Nil(t, entries[0].Metadata)
}

func TestActivityStore_ListByAgent_NewestFirst(t *testing.T) {
	db := testDB(t)
	acts := NewActivityStore(db)

	a := testAgent(t, db, "crabby")
	require.NoError(t, acts.Append(a.ID, "first", nil))
	require.NoError(t, acts.Append(a.ID, "second", nil))

	entries, err := acts.ListByAgent(a.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Action)
	assert.Equal(t, "first", entries[1].Action)
}

func TestActivityStore_ListByAgent_ScopedToAgent(t *testing.T) {
	db := testDB(t)
	acts := NewActivityStore(db)

	a := testAgent(t, db, "crabby")
	b := testAgent(t, db, "lobster")
	require.NoError(t, acts.Append(a.ID, "crab_action", nil))

	entries, err := acts.ListByAgent(b.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// --- Capability/portfolio store tests ---

func TestCapabilityStore_AddAndList(t *testing.T) {
	db := testDB(t)
	cs := NewCapabilityStore(db)

	a := testAgent(t, db, "crabby")
	c := &domain.Capability{
		AgentID:  a.ID,
		Category: "research",
		Depth:    domain.DepthExpert,
	}
	require.NoError(t, cs.AddCapability(c))
	assert.NotEmpty(t, c.ID)

	caps, err := cs.ListCapabilities(a.ID)
	require.NoError(t, err)
	require.Len(t, caps, 1)
	assert.Equal(t, "research", caps[0].Category)
	assert.Equal(t, domain.DepthExpert, caps[0].Depth)
}

func TestCapabilityStore_DefaultDepth(t *testing.T) {
	db := testDB(t)
	cs := NewCapabilityStore(db)

	a := testAgent(t, db, "crabby")
	c := &domain.Capability{AgentID: a.ID, Category: "writing"}
	require.NoError(t, cs.AddCapability(c))
	assert.Equal(t, domain.DepthFamiliar, c.Depth)
}

func TestCapabilityStore_Remove(t *testing.T) {
	db := testDB(t)
	cs := NewCapabilityStore(db)

	a := testAgent(t, db, "crabby")
	c := &domain.Capability{AgentID: a.ID, Category: "writing"}
	require.NoError(t, cs.AddCapability(c))

	require.NoError(t, cs.RemoveCapability(c.ID, a.ID))

	caps, err := cs.ListCapabilities(a.ID)
	require.NoError(t, err)
	assert.Empty(t, caps)
}

func TestCapabilityStore_Remove_WrongAgent(t *testing.T) {
	db := testDB(t)
	cs := NewCapabilityStore(db)

	a := testAgent(t, db, "crabby")
	b := testAgent(t, db, "lobster")
	c := &domain.Capability{AgentID: a.ID, Category: "writing"}
	require.NoError(t, cs.AddCapability(c))

	err := cs.RemoveCapability(c.ID, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	caps, _ := cs.ListCapabilities(a.ID)
	assert.Len(t, caps, 1)
}

func TestCapabilityStore_Portfolio(t *testing.T) {
	db := testDB(t)
	cs := NewCapabilityStore(db)

	a := testAgent(t, db, "crabby")
	item := &domain.PortfolioItem{
		AgentID: a.ID,
		Title:   "Shell collection",
		URL:     "https://example.com/shells",
	}
	require.NoError(t, cs.AddPortfolioItem(item))
	assert.NotEmpty(t, item.ID)

	items, err := cs.ListPortfolio(a.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Shell collection", items[0].Title)
}

func TestCapabilityStore_Portfolio_RequiresTitle(t *testing.T) {
	db := testDB(t)
	cs := NewCapabilityStore(db)

	a := testAgent(t, db, "crabby")
	err := cs.AddPortfolioItem(&domain.PortfolioItem{AgentID: a.ID})
	assert.Error(t, err)
}
