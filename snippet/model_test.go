package snippet

import (
	"errors"
	"testing"
	"time"

	"code-inserter/marker"
)

func TestNewIDIsMarkerSafeAndUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewID()
		if !marker.ValidID(id) {
			t.Fatalf("id %q is not marker safe", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestValidate(t *testing.T) {
	rec := &InsertRecord{FilePath: "a.ts", Positions: []int{1}}
	cases := []struct {
		name string
		list []Snippet
		want error
	}{
		{"ok", []Snippet{{ID: "a", Name: "A", Code: "x"}, {ID: "b", Name: "B", Code: "y", IsInserted: true, LastInsertedAt: rec}}, nil},
		{"empty", nil, nil},
		{"blank name", []Snippet{{ID: "a", Name: "  ", Code: "x"}}, ErrEmptyName},
		{"blank code", []Snippet{{ID: "a", Name: "A", Code: "\n\t"}}, ErrEmptyCode},
		{"bad id", []Snippet{{ID: "a b", Name: "A", Code: "x"}}, ErrInvalidID},
		{"duplicate", []Snippet{{ID: "a", Name: "A", Code: "x"}, {ID: "a", Name: "B", Code: "y"}}, ErrDuplicateID},
		{"inserted without record", []Snippet{{ID: "a", Name: "A", Code: "x", IsInserted: true}}, ErrNoRecord},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.list)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := Snippet{ID: "a", Name: "A", Code: "x", IsInserted: true, LastInsertedAt: &InsertRecord{Positions: []int{1}}}
	c := s.Clone()
	c.LastInsertedAt.Positions[0] = 9
	c.LastInsertedAt.FilePath = "other"
	if s.LastInsertedAt.Positions[0] != 1 || s.LastInsertedAt.FilePath != "" {
		t.Fatal("Clone shares insert record with the original")
	}
}

func TestCloneAllNeverNil(t *testing.T) {
	if CloneAll(nil) == nil {
		t.Fatal("CloneAll(nil) returned nil")
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2026, 3, 4, 5, 6, 7, 8_000_000, time.FixedZone("X", 3600))
	if got := FormatTimestamp(ts); got != "2026-03-04T04:06:07.008Z" {
		t.Fatalf("unexpected timestamp %q", got)
	}
}
