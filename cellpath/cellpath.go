package cellpath

import (
	"fmt"
	"strings"

	"github.com/shale-sh/shale/source"
)

// MemberKind identifies what a path member addresses.
type MemberKind int

const (
	// FieldMember addresses a record column by name.
	FieldMember MemberKind = iota
	// IndexMember addresses a list row or byte position.
	IndexMember
)

// Member is one step of a cell path.
type Member struct {
	kind  MemberKind
	field string
	index int

	// Tag locates the member in the source text that spelled it.
	Tag source.Tag
	// Optional suppresses access errors for this member: a miss yields
	// nothing instead of an error value.
	Optional bool
	// Insensitive makes field matching ignore case. Meaningless for
	// index members.
	Insensitive bool
}

// Field returns a member addressing a record column.
func Field(name string, tag source.Tag) Member {
	return Member{kind: FieldMember, field: name, Tag: tag}
}

// Index returns a member addressing a list row.
func Index(i int, tag source.Tag) Member {
	return Member{kind: IndexMember, index: i, Tag: tag}
}

// AsOptional returns a copy of the member marked optional.
func (m Member) AsOptional() Member {
	m.Optional = true
	return m
}

// AsInsensitive returns a copy of the member with case-insensitive
// field matching.
func (m Member) AsInsensitive() Member {
	m.Insensitive = true
	return m
}

// Kind returns the member kind.
func (m Member) Kind() MemberKind {
	return m.kind
}

// FieldName returns the column name for field members.
func (m Member) FieldName() (string, bool) {
	if m.kind != FieldMember {
		return "", false
	}
	return m.field, true
}

// IndexValue returns the row index for index members.
func (m Member) IndexValue() (int, bool) {
	if m.kind != IndexMember {
		return 0, false
	}
	return m.index, true
}

// MatchesField reports whether the member addresses the given column,
// honoring the Insensitive marker.
func (m Member) MatchesField(column string) bool {
	if m.kind != FieldMember {
		return false
	}
	if m.Insensitive {
		return strings.EqualFold(m.field, column)
	}
	return m.field == column
}

// String renders the member the way a script would spell it. Field names
// that would be ambiguous in dotted syntax are quoted.
func (m Member) String() string {
	var s string
	switch m.kind {
	case IndexMember:
		s = fmt.Sprintf("%d", m.index)
	default:
		s = m.field
		if strings.ContainsAny(s, ". ?") || s == "" {
			s = fmt.Sprintf("%q", s)
		}
	}
	if m.Optional {
		s += "?"
	}
	return s
}

// Path is a sequence of members leading into structured data. The zero
// Path addresses the value itself.
type Path struct {
	Members []Member
}

// New creates a path from members.
func New(members ...Member) Path {
	return Path{Members: members}
}

// IsEmpty reports whether the path has no members.
func (p Path) IsEmpty() bool {
	return len(p.Members) == 0
}

// Tag returns a tag covering every member of the path.
func (p Path) Tag() source.Tag {
	tags := make([]source.Tag, len(p.Members))
	for i, m := range p.Members {
		tags[i] = m.Tag
	}
	return source.TagForList(tags)
}

// Tail returns the path without its first member.
func (p Path) Tail() Path {
	if len(p.Members) == 0 {
		return p
	}
	return Path{Members: p.Members[1:]}
}

// String renders the path in dotted syntax.
func (p Path) String() string {
	parts := make([]string, len(p.Members))
	for i, m := range p.Members {
		parts[i] = m.String()
	}
	return strings.Join(parts, ".")
}
