package panel

import "code-inserter/snippet"

// Inbound message types sent by the panel UI.
const (
	MsgReady          = "ready"
	MsgInsert         = "insert"
	MsgJumpToLocation = "jumpToLocation"
	MsgUpdateSnippets = "updateSnippets"
	MsgRemoveCode     = "removeCode"
	MsgAddSnippet     = "addSnippet"
	MsgDeleteSnippet  = "deleteSnippet"
	MsgRetract        = "retract"
)

// Outbound event types.
const (
	EventLoadSnippets = "loadSnippets"
	EventNotification = "notification"
)

const (
	LevelInfo  = "info"
	LevelError = "error"
)

// Message is an intent sent by the panel UI. Only the fields relevant to
// Type are set.
type Message struct {
	Type      string            `json:"type"`
	SnippetID string            `json:"snippetId,omitempty"`
	Name      string            `json:"name,omitempty"`
	Code      string            `json:"code,omitempty"`
	FilePath  string            `json:"filePath,omitempty"`
	FileName  string            `json:"fileName,omitempty"` // older panels send fileName for jumps
	Line      int               `json:"line,omitempty"`
	Snippets  []snippet.Snippet `json:"snippets,omitempty"`
}

// Event is pushed to the panel UI.
type Event struct {
	Type     string            `json:"type"`
	Snippets []snippet.Snippet `json:"snippets"`
	Level    string            `json:"level,omitempty"`
	Message  string            `json:"message,omitempty"`
}
