package snippet

import (
	"errors"
	"fmt"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"

	"code-inserter/marker"
)

// Snippet is a named, reusable code fragment.
type Snippet struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Code           string        `json:"code"`
	IsInserted     bool          `json:"is_inserted,omitempty"`
	LastInsertedAt *InsertRecord `json:"lastInsertedAt,omitempty"`
}

// InsertRecord describes where a snippet was last inserted.
type InsertRecord struct {
	FilePath  string `json:"filePath"`
	FileName  string `json:"fileName,omitempty"`
	Positions []int  `json:"positions"` // 1-indexed lines
	Timestamp string `json:"timestamp"`
}

// TimestampLayout is ISO-8601 with milliseconds, always written in UTC.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t in UTC with millisecond precision.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

var (
	ErrEmptyName   = errors.New("snippet name is empty")
	ErrEmptyCode   = errors.New("snippet code is empty")
	ErrInvalidID   = errors.New("snippet id is not marker safe")
	ErrDuplicateID = errors.New("duplicate snippet id")
	ErrNoRecord    = errors.New("inserted snippet has no insert record")
)

// NewID returns a fresh random identifier that is safe to embed in marker
// lines.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Validate checks one snippet.
func (s Snippet) Validate() error {
	if !marker.ValidID(s.ID) {
		return fmt.Errorf("%q: %w", s.ID, ErrInvalidID)
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%s: %w", s.ID, ErrEmptyName)
	}
	if strings.TrimSpace(s.Code) == "" {
		return fmt.Errorf("%s: %w", s.ID, ErrEmptyCode)
	}
	if s.IsInserted && s.LastInsertedAt == nil {
		return fmt.Errorf("%s: %w", s.ID, ErrNoRecord)
	}
	return nil
}

// Validate checks every snippet in list and that ids are unique.
func Validate(list []Snippet) error {
	seen := mapset.NewThreadUnsafeSet[string]()
	for _, s := range list {
		if err := s.Validate(); err != nil {
			return err
		}
		if !seen.Add(s.ID) {
			return fmt.Errorf("%s: %w", s.ID, ErrDuplicateID)
		}
	}
	return nil
}

// Clone returns a deep copy of s.
func (s Snippet) Clone() Snippet {
	if s.LastInsertedAt != nil {
		rec := *s.LastInsertedAt
		rec.Positions = append([]int(nil), s.LastInsertedAt.Positions...)
		s.LastInsertedAt = &rec
	}
	return s
}

// CloneAll deep-copies list; the result is never nil.
func CloneAll(list []Snippet) []Snippet {
	out := make([]Snippet, len(list))
	for i, s := range list {
		out[i] = s.Clone()
	}
	return out
}
