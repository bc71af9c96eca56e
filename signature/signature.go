package signature

import (
	"strings"

	"github.com/shale-sh/shale/value"
)

// PositionalArg declares one positional parameter.
type PositionalArg struct {
	Name     string
	Type     value.Type
	Desc     string
	Optional bool
	Default  *value.Value
}

// Flag declares one named parameter. A nil Type makes it a switch:
// present means true, no value token follows it.
type Flag struct {
	Long     string
	Short    string
	Type     *value.Type
	Required bool
	Desc     string
	Default  *value.Value
}

// Signature is a command's declared contract for one input type. The
// zero InputType is any; commands that care register one Signature per
// accepted input type under the same name.
type Signature struct {
	Name       string
	Category   string
	Desc       string
	InputType  value.Type
	OutputType value.Type
	Positional []PositionalArg
	Rest       *PositionalArg
	Flags      []Flag
}

// New starts a signature for the named command, accepting any input and
// promising any output until narrowed.
func New(name string) *Signature {
	return &Signature{Name: name, InputType: value.AnyType, OutputType: value.AnyType}
}

// Input declares the input type this overload accepts.
func (s *Signature) Input(t value.Type) *Signature {
	s.InputType = t
	return s
}

// Output declares the output type, for documentation and tooling.
func (s *Signature) Output(t value.Type) *Signature {
	s.OutputType = t
	return s
}

// Required declares a mandatory positional parameter.
func (s *Signature) Required(name string, t value.Type, desc string) *Signature {
	s.Positional = append(s.Positional, PositionalArg{Name: name, Type: t, Desc: desc})
	return s
}

// Optional declares a positional parameter that may be omitted.
func (s *Signature) Optional(name string, t value.Type, desc string) *Signature {
	s.Positional = append(s.Positional, PositionalArg{Name: name, Type: t, Desc: desc, Optional: true})
	return s
}

// OptionalDefault declares an optional positional with a default value
// bound when the argument is omitted.
func (s *Signature) OptionalDefault(name string, t value.Type, desc string, def value.Value) *Signature {
	s.Positional = append(s.Positional, PositionalArg{Name: name, Type: t, Desc: desc, Optional: true, Default: &def})
	return s
}

// WithRest declares a trailing parameter that greedily consumes every
// remaining positional argument.
func (s *Signature) WithRest(name string, t value.Type, desc string) *Signature {
	s.Rest = &PositionalArg{Name: name, Type: t, Desc: desc}
	return s
}

// Named declares a flag taking a value of type t.
func (s *Signature) Named(long, short string, t value.Type, desc string) *Signature {
	s.Flags = append(s.Flags, Flag{Long: long, Short: short, Type: &t, Desc: desc})
	return s
}

// NamedDefault declares a value flag with a default bound when the flag
// is absent.
func (s *Signature) NamedDefault(long, short string, t value.Type, desc string, def value.Value) *Signature {
	s.Flags = append(s.Flags, Flag{Long: long, Short: short, Type: &t, Desc: desc, Default: &def})
	return s
}

// RequiredNamed declares a flag that every call must pass.
func (s *Signature) RequiredNamed(long, short string, t value.Type, desc string) *Signature {
	s.Flags = append(s.Flags, Flag{Long: long, Short: short, Type: &t, Required: true, Desc: desc})
	return s
}

// Switch declares a boolean flag with no value token.
func (s *Signature) Switch(long, short, desc string) *Signature {
	s.Flags = append(s.Flags, Flag{Long: long, Short: short, Desc: desc})
	return s
}

// WithCategory labels the command's help category.
func (s *Signature) WithCategory(category string) *Signature {
	s.Category = category
	return s
}

// WithDesc sets the one-line command description.
func (s *Signature) WithDesc(desc string) *Signature {
	s.Desc = desc
	return s
}

// findFlag resolves a flag name as written, without dashes, matching the
// long form first and then a single-letter short form.
func (s *Signature) findFlag(name string) *Flag {
	for i := range s.Flags {
		if s.Flags[i].Long == name {
			return &s.Flags[i]
		}
	}
	if len(name) == 1 {
		for i := range s.Flags {
			if s.Flags[i].Short == name {
				return &s.Flags[i]
			}
		}
	}
	return nil
}

// flagNames returns every declared long form with dashes, for
// did-you-mean suggestions.
func (s *Signature) flagNames() []string {
	out := make([]string, 0, len(s.Flags))
	for _, f := range s.Flags {
		out = append(out, "--"+f.Long)
	}
	return out
}

// String renders the calling shape, e.g.
// "get <path> ...rest --ignore-errors".
func (s *Signature) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	for _, p := range s.Positional {
		b.WriteByte(' ')
		if p.Optional {
			b.WriteString("[" + p.Name + "]")
		} else {
			b.WriteString("<" + p.Name + ">")
		}
	}
	if s.Rest != nil {
		b.WriteString(" ..." + s.Rest.Name)
	}
	for _, f := range s.Flags {
		b.WriteString(" --" + f.Long)
	}
	return b.String()
}
