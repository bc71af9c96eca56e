package source

import "strings"

// Text is an immutable piece of source text shared by pointer. Tags address
// it by byte offset; nothing ever copies a substring out of it except at
// the moment a diagnostic is rendered.
type Text struct {
	s string
}

// NewText wraps a source string.
func NewText(s string) *Text {
	return &Text{s: s}
}

// String returns the full text.
func (t *Text) String() string {
	if t == nil {
		return ""
	}
	return t.s
}

// Len returns the text length in bytes.
func (t *Text) Len() int {
	if t == nil {
		return 0
	}
	return len(t.s)
}

// Slice returns the text covered by span, clamped to the text bounds so a
// stale span can never panic a diagnostic path.
func (t *Text) Slice(span Span) string {
	if t == nil {
		return ""
	}
	start, end := span.Start, span.End
	if start < 0 {
		start = 0
	}
	if end > len(t.s) {
		end = len(t.s)
	}
	if start >= end {
		return ""
	}
	return t.s[start:end]
}

// LineCol converts a byte offset into 1-based line and column numbers.
func (t *Text) LineCol(offset int) (line, col int) {
	line, col = 1, 1
	if t == nil {
		return line, col
	}
	if offset > len(t.s) {
		offset = len(t.s)
	}
	for _, r := range t.s[:offset] {
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// AnchorKind identifies where a span's source text came from.
type AnchorKind int

const (
	// AnchorFile marks text loaded from a file on disk.
	AnchorFile AnchorKind = iota
	// AnchorURL marks text fetched from a remote address.
	AnchorURL
	// AnchorInline marks text that exists only in memory, such as a line
	// typed at a prompt or a string evaluated programmatically.
	AnchorInline
)

// AnchorLocation identifies the origin of a piece of source text. Carried
// alongside a Span inside a Tag so diagnostics can reproduce the offending
// line even when the text never touched the filesystem.
type AnchorLocation struct {
	kind AnchorKind
	name string
	text *Text
}

// FileAnchor returns an anchor for text loaded from path.
func FileAnchor(path string) *AnchorLocation {
	return &AnchorLocation{kind: AnchorFile, name: path}
}

// URLAnchor returns an anchor for text fetched from address.
func URLAnchor(address string) *AnchorLocation {
	return &AnchorLocation{kind: AnchorURL, name: address}
}

// SourceAnchor returns an anchor for inline text. The text travels with the
// anchor, so diagnostics can always reproduce it.
func SourceAnchor(text *Text) *AnchorLocation {
	return &AnchorLocation{kind: AnchorInline, name: "<source>", text: text}
}

// NamedSourceAnchor is SourceAnchor with a display name, used by hosts that
// label interactive input ("<repl-3>") or generated snippets.
func NamedSourceAnchor(name string, text *Text) *AnchorLocation {
	return &AnchorLocation{kind: AnchorInline, name: name, text: text}
}

// Kind returns the anchor kind.
func (a *AnchorLocation) Kind() AnchorKind {
	return a.kind
}

// Name returns the display name: the file path, the url, or the inline
// label.
func (a *AnchorLocation) Name() string {
	if a == nil {
		return ""
	}
	return a.name
}

// SourceText returns the inline text for AnchorInline anchors. File and URL
// anchors report false; their text lives behind an engine-level registry.
func (a *AnchorLocation) SourceText() (*Text, bool) {
	if a == nil || a.kind != AnchorInline || a.text == nil {
		return nil, false
	}
	return a.text, true
}

// Key returns a stable string identity for registry maps.
func (a *AnchorLocation) Key() string {
	if a == nil {
		return ""
	}
	var prefix string
	switch a.kind {
	case AnchorFile:
		prefix = "file:"
	case AnchorURL:
		prefix = "url:"
	default:
		prefix = "inline:"
	}
	return prefix + a.name
}

// Same reports whether two anchors identify the same origin.
func Same(a, b *AnchorLocation) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.kind != b.kind || a.name != b.name {
		return false
	}
	if a.kind == AnchorInline {
		return a.text == b.text || strings.Compare(a.text.String(), b.text.String()) == 0
	}
	return true
}
