package cellpath

import (
	"strconv"
	"strings"

	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/source"
)

// Parse reads a dotted cell path such as "name", "items.0", or
// "config.port?". Integer segments become index members; a trailing '?'
// marks a member optional. When tag carries a known span covering the
// text, each member's tag is narrowed to its own segment so access
// errors blame the segment, not the whole path.
func Parse(text string, tag source.Tag) (Path, error) {
	if text == "" {
		return Path{}, errors.ParseFailure("empty cell path", tag)
	}
	var members []Member
	offset := 0
	for i, seg := range strings.Split(text, ".") {
		if i > 0 {
			offset++ // the dot
		}
		segTag := memberTag(tag, offset, len(seg))
		offset += len(seg)

		body := seg
		optional := false
		if strings.HasSuffix(body, "?") {
			optional = true
			body = body[:len(body)-1]
		}
		if body == "" {
			return Path{}, errors.ParseFailure("empty cell path segment", segTag)
		}
		var m Member
		if idx, err := strconv.Atoi(body); err == nil {
			m = Index(idx, segTag)
		} else {
			m = Field(body, segTag)
		}
		if optional {
			m = m.AsOptional()
		}
		members = append(members, m)
	}
	return Path{Members: members}, nil
}

// memberTag narrows tag to the segment at offset when the tag's span is
// known and wide enough to cover it.
func memberTag(tag source.Tag, offset, length int) source.Tag {
	if tag.Span.IsUnknown() {
		return tag
	}
	start := tag.Span.Start + offset
	end := start + length
	if end > tag.Span.End {
		return tag
	}
	return source.NewTag(source.NewSpan(start, end), tag.Anchor)
}
