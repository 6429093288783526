// Package marker implements the textual format used to tag inserted snippet
// code inside a document, and the lookup that finds a tagged block again.
//
// A block looks like this (the leading and trailing newlines belong to it):
//
//	<newline>
//	/// code inserter snippetId=<id> START
//	<code>
//	/// code inserter snippetId=<id> END
//	<newline>
//
// The format is stored in user source files, so it must stay byte-for-byte
// stable.
package marker

import (
	"errors"
	"regexp"
	"strings"
)

const prefix = "/// code inserter snippetId="

var (
	ErrBlockNotFound = errors.New("code block not found")
	ErrInvalidID     = errors.New("invalid snippet id")
)

var (
	validID    = regexp.MustCompile(`^[0-9A-Za-z_-]+$`)
	startRegex = regexp.MustCompile(regexp.QuoteMeta(prefix) + `([0-9A-Za-z_-]+) START`)
)

// Span is a half-open byte range [Start, End) inside a document.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes in the span.
func (s Span) Len() int { return s.End - s.Start }

// Block is a marker block found in a document.
type Block struct {
	ID   string
	Span Span
}

// ValidID reports whether id can be embedded in a marker line.
func ValidID(id string) bool {
	return validID.MatchString(id)
}

// StartLine returns the marker line that opens the block for id.
func StartLine(id string) string { return prefix + id + " START" }

// EndLine returns the marker line that closes the block for id.
func EndLine(id string) string { return prefix + id + " END" }

// Wrap returns code wrapped in the START/END marker lines for id.
func Wrap(id, code string) string {
	var b strings.Builder
	b.Grow(len(code) + 2*len(prefix) + 2*len(id) + 16)
	b.WriteString("\n")
	b.WriteString(StartLine(id))
	b.WriteString("\n")
	b.WriteString(code)
	b.WriteString("\n")
	b.WriteString(EndLine(id))
	b.WriteString("\n")
	return b.String()
}

// Locate finds the first block tagged with id. The END marker is searched
// after the START marker; a later duplicate block is ignored. The span always
// takes the line break right before START, so if the blank line above a
// block was deleted, removing the block joins its neighbouring lines.
func Locate(text, id string) (Span, error) {
	if !ValidID(id) {
		return Span{}, ErrInvalidID
	}
	start := strings.Index(text, StartLine(id))
	if start < 0 {
		return Span{}, ErrBlockNotFound
	}
	return spanFrom(text, id, start)
}

// Blocks lists every well-formed block in text in document order.
func Blocks(text string) []Block {
	var blocks []Block
	offset := 0
	for offset < len(text) {
		m := startRegex.FindStringSubmatchIndex(text[offset:])
		if m == nil {
			break
		}
		id := text[offset+m[2] : offset+m[3]]
		span, err := spanFrom(text, id, offset+m[0])
		if err != nil {
			offset += m[1]
			continue
		}
		blocks = append(blocks, Block{ID: id, Span: span})
		offset = span.End
	}
	return blocks
}

// Remove returns text with span cut out.
func Remove(text string, span Span) string {
	return text[:span.Start] + text[span.End:]
}

func spanFrom(text, id string, start int) (Span, error) {
	bodyStart := start + len(StartLine(id))
	end := strings.Index(text[bodyStart:], EndLine(id))
	if end < 0 {
		return Span{}, ErrBlockNotFound
	}
	end += bodyStart + len(EndLine(id))

	// Newlines added by Wrap around the marker lines.
	if start > 0 && text[start-1] == '\n' {
		start--
	}
	switch {
	case strings.HasPrefix(text[end:], "\r\n"):
		end += 2
	case strings.HasPrefix(text[end:], "\n"):
		end++
	}
	return Span{Start: start, End: end}, nil
}
