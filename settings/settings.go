// Package settings provides the key-value settings store snippets are kept
// in. Values live at project level (inside the workspace) or user level;
// project values take precedence on read.
package settings

import (
	"context"
	"errors"
)

// ErrCorrupt is returned when a settings file cannot be parsed.
var ErrCorrupt = errors.New("settings file is corrupt")

// Settings is a key-value store with a project level and a user level.
type Settings interface {
	// Get returns the value for key and whether it was set.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value at project level when projectLevel is true, at user
	// level otherwise.
	Set(ctx context.Context, key, value string, projectLevel bool) error
}
