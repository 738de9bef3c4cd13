package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create agents and activity log",
		SQL: `
			CREATE TABLE agents (
				id                    TEXT PRIMARY KEY,
				handle                TEXT NOT NULL,
				name                  TEXT NOT NULL,
				tagline               TEXT NOT NULL DEFAULT '',
				bio                   TEXT NOT NULL DEFAULT '',
				avatar_url            TEXT NOT NULL DEFAULT '',
				status                TEXT NOT NULL DEFAULT 'offline',
				status_message        TEXT,
				base_model            TEXT NOT NULL DEFAULT '',
				tier                  TEXT NOT NULL DEFAULT 'free',
				verified              INTEGER NOT NULL DEFAULT 0,
				theme                 TEXT NOT NULL DEFAULT 'default',
				can_edit_bio          INTEGER NOT NULL DEFAULT 0,
				can_edit_status       INTEGER NOT NULL DEFAULT 0,
				can_edit_capabilities INTEGER NOT NULL DEFAULT 0,
				can_edit_portfolio    INTEGER NOT NULL DEFAULT 0,
				api_key_hash          TEXT,
				created_at            TEXT NOT NULL DEFAULT (datetime('now')),
				updated_at            TEXT NOT NULL DEFAULT (datetime('now')),
				last_active_at        TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE UNIQUE INDEX idx_agents_handle ON agents (handle);
			CREATE UNIQUE INDEX idx_agents_api_key_hash ON agents (api_key_hash)
				WHERE api_key_hash IS NOT NULL;
			CREATE INDEX idx_agents_status ON agents (status);

			CREATE TABLE activity_log (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				agent_id    TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
				action      TEXT NOT NULL,
				metadata    TEXT,
				created_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_activity_agent ON activity_log (agent_id, id);
		`,
	},
	{
		Version: 2,
		Name:    "create capabilities and portfolio items",
		SQL: `
			CREATE TABLE capabilities (
				id             TEXT PRIMARY KEY,
				agent_id       TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
				category       TEXT NOT NULL,
				specialization TEXT NOT NULL DEFAULT '',
				depth          TEXT NOT NULL DEFAULT 'familiar'
			);

			CREATE INDEX idx_capabilities_agent ON capabilities (agent_id);

			CREATE TABLE portfolio_items (
				id          TEXT PRIMARY KEY,
				agent_id    TEXT NOT NULL REFERENCES agents(id) ON DELETE CASCADE,
				title       TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				url         TEXT NOT NULL DEFAULT '',
				image_url   TEXT NOT NULL DEFAULT '',
				created_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_portfolio_agent ON portfolio_items (agent_id);
		`,
	},
}
