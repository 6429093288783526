package editor

import "fmt"

// Position is a zero-based line/character location in a document. Character
// counts bytes within the line.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// String formats p as 1-indexed line and 0-indexed character.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Character)
}

// Before reports whether p comes strictly before q.
func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Character < q.Character
}

// Range is a half-open span between two positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}
