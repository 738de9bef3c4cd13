package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 8480,
			Bind: "loopback",
		},
		Agents: AgentsConfig{
			DefaultTheme: "default",
			DefaultPermissions: PermissionDefaults{
				Bio:          true,
				Status:       true,
				Capabilities: false,
				Portfolio:    false,
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// applyDefaults fills in zero values after unmarshalling a partial config.
func applyDefaults(cfg *Config) {
	def := Defaults()
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Server.Bind == "" {
		cfg.Server.Bind = def.Server.Bind
	}
	if cfg.Agents.DefaultTheme == "" {
		cfg.Agents.DefaultTheme = def.Agents.DefaultTheme
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
}
