package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"code-inserter/filex"
)

// FileSettings keeps each level in a flat JSON object file.
type FileSettings struct {
	mu          sync.RWMutex
	projectPath string
	userPath    string
}

// NewFileSettings returns settings kept in two JSON files. An empty path
// disables that level.
func NewFileSettings(projectPath, userPath string) *FileSettings {
	return &FileSettings{projectPath: projectPath, userPath: userPath}
}

// Get returns the value for key, preferring the project level.
func (s *FileSettings) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, path := range []string{s.projectPath, s.userPath} {
		if path == "" {
			continue
		}
		values, err := readValues(path)
		if err != nil {
			return "", false, err
		}
		if v, ok := values[key]; ok {
			return v, true, nil
		}
	}
	return "", false, nil
}

// Set stores value for key at the project or user level.
func (s *FileSettings) Set(ctx context.Context, key, value string, projectLevel bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.userPath
	if projectLevel {
		path = s.projectPath
	}
	if path == "" {
		return errors.New("settings level has no file configured")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := readValues(path)
	if err != nil {
		return err
	}
	values[key] = value
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	return filex.WriteAtomic(path, data, 0o644)
}

// readValues loads a settings file; a missing file is an empty object.
func readValues(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	values := map[string]string{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", path, err, ErrCorrupt)
	}
	return values, nil
}
