package source

import "testing"

func TestText_Slice(t *testing.T) {
	text := NewText("ls | get name")
	if got := text.Slice(NewSpan(5, 8)); got != "get" {
		t.Errorf("got %q, want %q", got, "get")
	}
	// Out-of-range spans clamp instead of panicking.
	if got := text.Slice(NewSpan(10, 99)); got != "ame" {
		t.Errorf("clamped slice: got %q, want %q", got, "ame")
	}
	if got := text.Slice(NewSpan(50, 60)); got != "" {
		t.Errorf("past-end slice: got %q, want empty", got)
	}
}

func TestText_LineCol(t *testing.T) {
	text := NewText("let x = 1\nlet y = 2\n$y + $x")
	cases := []struct {
		offset    int
		line, col int
	}{
		{0, 1, 1},
		{4, 1, 5},
		{10, 2, 1},
		{14, 2, 5},
		{20, 3, 1},
	}
	for _, c := range cases {
		line, col := text.LineCol(c.offset)
		if line != c.line || col != c.col {
			t.Errorf("LineCol(%d): got %d:%d, want %d:%d", c.offset, line, col, c.line, c.col)
		}
	}
}

func TestTag_Until(t *testing.T) {
	anchor := SourceAnchor(NewText(`"foo" + "bar"`))
	a := NewTag(NewSpan(0, 5), anchor)
	b := NewTag(NewSpan(8, 13), anchor)
	merged := a.Until(b)
	if merged.Span != (Span{0, 13}) {
		t.Errorf("span: got %v, want 0..13", merged.Span)
	}
	if merged.Anchor != anchor {
		t.Error("anchor should be preserved from the receiver")
	}
}

func TestTag_Until_AnchorFallback(t *testing.T) {
	anchor := FileAnchor("config.shale")
	a := FromSpan(NewSpan(1, 2))
	b := NewTag(NewSpan(4, 6), anchor)
	if got := a.Until(b); got.Anchor != anchor {
		t.Error("nil receiver anchor should fall back to the other tag's anchor")
	}
}

func TestUnknownTag(t *testing.T) {
	if !UnknownTag().IsUnknown() {
		t.Error("UnknownTag must report IsUnknown")
	}
	tagged := NewTag(NewSpan(3, 7), nil)
	if tagged.IsUnknown() {
		t.Error("a positioned tag is not unknown")
	}
}

func TestTagForList(t *testing.T) {
	anchor := SourceAnchor(NewText("[1 2 3]"))
	tags := []Tag{
		NewTag(NewSpan(1, 2), anchor),
		NewTag(NewSpan(3, 4), anchor),
		NewTag(NewSpan(5, 6), anchor),
	}
	got := TagForList(tags)
	if got.Span != (Span{1, 6}) {
		t.Errorf("span: got %v, want 1..6", got.Span)
	}
	if got.Anchor != anchor {
		t.Error("anchor lost in TagForList")
	}
	if !TagForList(nil).IsUnknown() {
		t.Error("empty list should yield the unknown tag")
	}
}

func TestAnchors(t *testing.T) {
	f := FileAnchor("/etc/hosts")
	u := URLAnchor("https://example.com/data.json")
	s := SourceAnchor(NewText("inline"))

	if f.Name() != "/etc/hosts" || f.Kind() != AnchorFile {
		t.Errorf("file anchor: got %q/%v", f.Name(), f.Kind())
	}
	if u.Name() != "https://example.com/data.json" || u.Kind() != AnchorURL {
		t.Errorf("url anchor: got %q/%v", u.Name(), u.Kind())
	}
	if s.Kind() != AnchorInline {
		t.Errorf("source anchor kind: got %v", s.Kind())
	}
	if text, ok := s.SourceText(); !ok || text.String() != "inline" {
		t.Errorf("source anchor text: got %q, ok=%v", text.String(), ok)
	}
	if _, ok := f.SourceText(); ok {
		t.Error("file anchors carry no inline text")
	}
	if f.Key() == u.Key() {
		t.Error("anchor keys must distinguish kinds")
	}
	if !Same(f, FileAnchor("/etc/hosts")) {
		t.Error("equal file anchors should compare the same")
	}
	if Same(f, u) {
		t.Error("different anchors should not compare the same")
	}
}
