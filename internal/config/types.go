package config

// Config is the root configuration for Crustspace.
type Config struct {
	Server   ServerConfig   `yaml:"server,omitempty"`
	Database DatabaseConfig `yaml:"database,omitempty"`
	Agents   AgentsConfig   `yaml:"agents,omitempty"`
	Logging  LoggingConfig  `yaml:"logging,omitempty"`
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Port           int       `yaml:"port,omitempty"`
	Bind           string    `yaml:"bind,omitempty"` // "loopback" | "lan" | "custom"
	CustomBindHost string    `yaml:"customBindHost,omitempty"`
	AllowedOrigins []string  `yaml:"allowedOrigins,omitempty"`
	TLS            ServerTLS `yaml:"tls,omitempty"`
}

// ServerTLS configures TLS for the API server.
type ServerTLS struct {
	Enabled  bool   `yaml:"enabled,omitempty"`
	CertPath string `yaml:"certPath,omitempty"`
	KeyPath  string `yaml:"keyPath,omitempty"`
}

// DatabaseConfig controls the SQLite store.
type DatabaseConfig struct {
	Path string `yaml:"path,omitempty"` // defaults to <data dir>/crustspace.db
}

// AgentsConfig holds policy defaults applied when a sponsor registers an agent.
type AgentsConfig struct {
	DefaultTheme       string             `yaml:"defaultTheme,omitempty"`
	DefaultPermissions PermissionDefaults `yaml:"defaultPermissions,omitempty"`
}

// PermissionDefaults are the self-edit flags new agents start with.
type PermissionDefaults struct {
	Bio          bool `yaml:"bio"`
	Status       bool `yaml:"status"`
	Capabilities bool `yaml:"capabilities"`
	Portfolio    bool `yaml:"portfolio"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // silent|fatal|error|warn|info|debug|trace
}
