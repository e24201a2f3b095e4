package app

import "errors"

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound                   = errors.New("not found")
	ErrInvalidReorder             = errors.New("invalid reorder")
	ErrUnsupportedSnapshotVersion = errors.New("unsupported snapshot version")
	ErrUnsupportedSnapshotFormat  = errors.New("unsupported snapshot format")
)
