package source

// Tag is the provenance attached to every runtime value: the span of the
// expression that produced it plus, when known, the anchor for the text the
// span indexes into. Tags copy cheaply; the anchor is shared by pointer.
type Tag struct {
	Span   Span
	Anchor *AnchorLocation
}

// NewTag creates a tag from a span and an optional anchor.
func NewTag(span Span, anchor *AnchorLocation) Tag {
	return Tag{Span: span, Anchor: anchor}
}

// UnknownTag returns the sentinel tag for synthetic values such as defaults
// and computed placeholders. Diagnostics must never blame it for anything.
func UnknownTag() Tag {
	return Tag{}
}

// FromSpan creates a tag with no anchor.
func FromSpan(span Span) Tag {
	return Tag{Span: span}
}

// IsUnknown reports whether the tag is the synthetic sentinel.
func (t Tag) IsUnknown() bool {
	return t.Span.IsUnknown() && t.Anchor == nil
}

// WithAnchor returns a copy of the tag bound to anchor.
func (t Tag) WithAnchor(anchor *AnchorLocation) Tag {
	return Tag{Span: t.Span, Anchor: anchor}
}

// Until merges the receiver with other, producing a tag whose span covers
// both. The receiver's anchor wins; merging values from two different
// sources keeps the blame on the first one.
func (t Tag) Until(other Tag) Tag {
	anchor := t.Anchor
	if anchor == nil {
		anchor = other.Anchor
	}
	return Tag{Span: t.Span.Merge(other.Span), Anchor: anchor}
}

// AnchorName returns the display name of the tag's anchor, if any.
func (t Tag) AnchorName() (string, bool) {
	if t.Anchor == nil {
		return "", false
	}
	return t.Anchor.Name(), true
}

// TagForList returns a tag covering every tag in the list: the first tag's
// anchor with the merged span. An empty list yields the unknown sentinel.
func TagForList(tags []Tag) Tag {
	out := UnknownTag()
	for _, t := range tags {
		out = out.Until(t)
	}
	return out
}
