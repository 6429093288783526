// Package snippet holds the snippet model and the store that persists the
// snippet list in the project settings.
package snippet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"code-inserter/logging"
	"code-inserter/settings"
)

// SettingsKey is the settings entry holding the JSON-encoded snippet list.
const SettingsKey = "code-inserter.snippets"

var (
	ErrPersistenceParse = errors.New("stored snippets are malformed")
	ErrPersistenceWrite = errors.New("failed to write snippets")
)

// Store loads and saves the whole snippet list. Every save replaces the
// stored list.
type Store struct {
	settings settings.Settings
	log      logging.Logger
}

// NewStore returns a Store that keeps the list in s.
func NewStore(s settings.Settings, log logging.Logger) *Store {
	return &Store{settings: s, log: log.With("component", "store")}
}

// Load returns the stored snippets. It never fails: a missing, unreadable or
// malformed value yields an empty list and is logged.
func (st *Store) Load(ctx context.Context) []Snippet {
	raw, ok, err := st.settings.Get(ctx, SettingsKey)
	if err != nil {
		st.log.Error(ctx, "read snippets", "err", err)
		return []Snippet{}
	}
	if !ok || raw == "" {
		st.log.Debug(ctx, "no saved snippets")
		return []Snippet{}
	}

	var list []Snippet
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		st.log.Error(ctx, "parse snippets", "err", fmt.Errorf("%v: %w", err, ErrPersistenceParse))
		return []Snippet{}
	}
	if list == nil {
		return []Snippet{}
	}
	for i := range list {
		if list[i].IsInserted && list[i].LastInsertedAt == nil {
			st.log.Warn(ctx, "inserted snippet without insert record, resetting", "snippet_id", list[i].ID)
			list[i].IsInserted = false
		}
	}
	st.log.Debug(ctx, "snippets loaded", "count", len(list))
	return list
}

// Save writes list at project level, replacing what was stored.
func (st *Store) Save(ctx context.Context, list []Snippet) error {
	if list == nil {
		list = []Snippet{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("%v: %w", err, ErrPersistenceWrite)
	}
	if err := st.settings.Set(ctx, SettingsKey, string(data), true); err != nil {
		return fmt.Errorf("%v: %w", err, ErrPersistenceWrite)
	}
	st.log.Debug(ctx, "snippets saved", "count", len(list))
	return nil
}
