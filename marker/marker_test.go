package marker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertAt(text string, offset int, s string) string {
	return text[:offset] + s + text[offset:]
}

func TestWrapFormat(t *testing.T) {
	got := Wrap("abc123", "console.log('hi')")
	want := "\n/// code inserter snippetId=abc123 START\nconsole.log('hi')\n/// code inserter snippetId=abc123 END\n"
	assert.Equal(t, want, got)
}

func TestWrapDeterministic(t *testing.T) {
	assert.Equal(t, Wrap("x", "y"), Wrap("x", "y"))
}

func TestLocateRoundTrip(t *testing.T) {
	docs := []string{
		"",
		"line one\nline two\nline three\n",
		"no trailing newline",
		"a\r\nb\r\n",
	}
	codes := []string{"x := 1", "multi\nline\ncode", "", "trailing newline\n"}

	for _, doc := range docs {
		for _, code := range codes {
			for offset := 0; offset <= len(doc); offset++ {
				inserted := insertAt(doc, offset, Wrap("k3j9a", code))

				span, err := Locate(inserted, "k3j9a")
				require.NoError(t, err)
				require.Equal(t, doc, Remove(inserted, span),
					"doc=%q code=%q offset=%d", doc, code, offset)
			}
		}
	}
}

func TestLocateNotFound(t *testing.T) {
	_, err := Locate("plain text\n", "abc")
	assert.ErrorIs(t, err, ErrBlockNotFound)
}

func TestLocateMissingEnd(t *testing.T) {
	text := "\n" + StartLine("abc") + "\ncode\n"
	_, err := Locate(text, "abc")
	assert.ErrorIs(t, err, ErrBlockNotFound)
}

func TestLocateEndBeforeStart(t *testing.T) {
	text := EndLine("abc") + "\nstuff\n" + StartLine("abc") + "\n"
	_, err := Locate(text, "abc")
	assert.ErrorIs(t, err, ErrBlockNotFound)
}

func TestLocateInvalidID(t *testing.T) {
	_, err := Locate(Wrap("a.b", "x"), "a.b")
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = Locate("anything", "")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestLocateFirstMatchWins(t *testing.T) {
	first := Wrap("dup", "first")
	second := Wrap("dup", "second")
	text := "head" + first + "middle" + second + "tail"

	span, err := Locate(text, "dup")
	require.NoError(t, err)
	assert.Equal(t, "head"+"middle"+second+"tail", Remove(text, span))
}

func TestLocateDoesNotMatchIDPrefix(t *testing.T) {
	text := Wrap("ab", "code")
	_, err := Locate(text, "b")
	assert.ErrorIs(t, err, ErrBlockNotFound)
	_, err = Locate(text, "a")
	assert.ErrorIs(t, err, ErrBlockNotFound)
}

func TestLocateOnlyTargetBlock(t *testing.T) {
	doc := "package main\n\nfunc main() {\n}\n"
	withA := insertAt(doc, 14, Wrap("A", "a()"))
	withBoth := insertAt(withA, len(withA), Wrap("B", "b()"))

	span, err := Locate(withBoth, "A")
	require.NoError(t, err)
	rest := Remove(withBoth, span)

	assert.Equal(t, doc+Wrap("B", "b()"), rest)
	assert.NotContains(t, rest, StartLine("A"))
}

func TestBlocks(t *testing.T) {
	text := "x" + Wrap("one", "1") + "y" + Wrap("two", "2") + "\n" + StartLine("broken") + "\nz"
	blocks := Blocks(text)
	require.Len(t, blocks, 2)
	assert.Equal(t, "one", blocks[0].ID)
	assert.Equal(t, "two", blocks[1].ID)
	assert.True(t, strings.HasPrefix(text[blocks[1].Span.Start:], "\n"+StartLine("two")))
	assert.Equal(t, len(Wrap("two", "2")), blocks[1].Span.Len())
}

func TestBlocksEmpty(t *testing.T) {
	assert.Empty(t, Blocks("nothing here"))
}

func TestValidID(t *testing.T) {
	assert.True(t, ValidID("abc123XYZ"))
	assert.True(t, ValidID("a-b_c"))
	assert.False(t, ValidID(""))
	assert.False(t, ValidID("a b"))
	assert.False(t, ValidID("a.*"))
	assert.False(t, ValidID("id\nSTART"))
}

func TestRemoveAfterBlankLineDeletedJoinsNeighbours(t *testing.T) {
	block := StartLine("a1") + "\nx()\n" + EndLine("a1") + "\n"
	text := "abc\n" + block + "xyz\n"

	span, err := Locate(text, "a1")
	require.NoError(t, err)
	assert.Equal(t, 3, span.Start)
	assert.Equal(t, "abcxyz\n", Remove(text, span))
}
