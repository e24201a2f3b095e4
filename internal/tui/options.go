package tui

import "github.com/hylla/phaseboard/internal/board"

// defaultMinColumnCells is the terminal width one board column needs.
const defaultMinColumnCells = 32

// RuntimeConfig holds the board settings that can change while the TUI runs.
type RuntimeConfig struct {
	MinColumnCells  int
	Completed       board.CompletedPlacement
	ReorderModifier string
}

// RuntimeConfigMsg delivers a reloaded RuntimeConfig, or the error that prevented loading it.
type RuntimeConfigMsg struct {
	Config RuntimeConfig
	Err    error
}

// ClipboardFunc writes text to the system clipboard.
type ClipboardFunc func(string) error

type Option func(*Model)

// DefaultRuntimeConfig returns the built-in board settings.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		MinColumnCells:  defaultMinColumnCells,
		Completed:       board.StableCompletedPlacement,
		ReorderModifier: defaultReorderModifier,
	}
}

func WithRuntimeConfig(cfg RuntimeConfig) Option {
	return func(m *Model) {
		m.cfg = normalizeRuntimeConfig(cfg)
		m.keys.setReorderModifier(m.cfg.ReorderModifier)
	}
}

func WithClipboard(fn ClipboardFunc) Option {
	return func(m *Model) {
		if fn != nil {
			m.clipboard = fn
		}
	}
}

// WithProjectID selects the project shown first when it exists.
func WithProjectID(projectID string) Option {
	return func(m *Model) {
		m.pendingProjectID = projectID
	}
}

func normalizeRuntimeConfig(cfg RuntimeConfig) RuntimeConfig {
	if cfg.MinColumnCells <= 0 {
		cfg.MinColumnCells = defaultMinColumnCells
	}
	if cfg.Completed == nil {
		cfg.Completed = board.StableCompletedPlacement
	}
	if cfg.ReorderModifier == "" {
		cfg.ReorderModifier = defaultReorderModifier
	}
	return cfg
}
