package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// CompletedPolicy selects how Completed tasks are split between IQ and OQ.
type CompletedPolicy string

const (
	CompletedPolicyHash   CompletedPolicy = "hash"
	CompletedPolicyRandom CompletedPolicy = "random"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
	Board    BoardConfig    `toml:"board"`
	Server   ServerConfig   `toml:"server"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
	// SeedDemo fills the first project with the demo task set.
	SeedDemo bool `toml:"seed_demo"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type BoardConfig struct {
	MinColumnCells  int             `toml:"min_column_cells"` // TUI, terminal cells
	MinColumnWidth  int             `toml:"min_column_width"` // API default, client units
	CompletedPolicy CompletedPolicy `toml:"completed_policy"`
	ReorderModifier string          `toml:"reorder_modifier"` // alt | ctrl | shift
}

type ServerConfig struct {
	HTTPBind    string `toml:"http_bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path:     dbPath,
			SeedDemo: true,
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".phaseboard/log",
			},
		},
		Board: BoardConfig{
			MinColumnCells:  32,
			MinColumnWidth:  300,
			CompletedPolicy: CompletedPolicyHash,
			ReorderModifier: "alt",
		},
		Server: ServerConfig{
			HTTPBind:    "127.0.0.1:8080",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(strings.TrimSpace(string(content))) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) normalize() {
	c.Database.Path = strings.TrimSpace(c.Database.Path)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Board.CompletedPolicy = CompletedPolicy(strings.ToLower(strings.TrimSpace(string(c.Board.CompletedPolicy))))
	c.Board.ReorderModifier = strings.ToLower(strings.TrimSpace(c.Board.ReorderModifier))
	c.Server.HTTPBind = strings.TrimSpace(c.Server.HTTPBind)
	c.Server.APIEndpoint = strings.TrimSpace(c.Server.APIEndpoint)
	c.Server.MCPEndpoint = strings.TrimSpace(c.Server.MCPEndpoint)
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database path is required")
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	if c.Board.MinColumnCells <= 0 {
		return fmt.Errorf("board.min_column_cells must be > 0, got %d", c.Board.MinColumnCells)
	}
	if c.Board.MinColumnWidth <= 0 {
		return fmt.Errorf("board.min_column_width must be > 0, got %d", c.Board.MinColumnWidth)
	}
	switch c.Board.CompletedPolicy {
	case CompletedPolicyHash, CompletedPolicyRandom:
	default:
		return fmt.Errorf("invalid board.completed_policy: %q", c.Board.CompletedPolicy)
	}
	switch c.Board.ReorderModifier {
	case "alt", "ctrl", "shift":
	default:
		return fmt.Errorf("invalid board.reorder_modifier: %q", c.Board.ReorderModifier)
	}

	if c.Server.HTTPBind == "" {
		return errors.New("server.http_bind is required")
	}
	for name, endpoint := range map[string]string{
		"server.api_endpoint": c.Server.APIEndpoint,
		"server.mcp_endpoint": c.Server.MCPEndpoint,
	} {
		if !strings.HasPrefix(endpoint, "/") {
			return fmt.Errorf("%s must start with '/', got %q", name, endpoint)
		}
	}
	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
