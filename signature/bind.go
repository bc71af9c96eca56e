package signature

import (
	"github.com/shale-sh/shale/errors"
	"github.com/shale-sh/shale/source"
	"github.com/shale-sh/shale/value"
)

// NamedArg is one flag as written at the call site. Name carries no
// dashes; Value is nil when the flag was bare.
type NamedArg struct {
	Name  string
	Value *value.Value
	Tag   source.Tag
}

// Call is one evaluated invocation: the span of the command head, the
// positional values in written order, and the flags. Every value still
// carries the tag of the expression that produced it, so binding errors
// can point at the exact argument.
type Call struct {
	Head       source.Tag
	Positional []value.Value
	Named      []NamedArg
}

// BoundArgs is a call resolved against a signature: positionals by
// declared name, the rest slice, and flag values keyed by long form.
type BoundArgs struct {
	Sig  *Signature
	Head source.Tag

	positional map[string]value.Value
	rest       []value.Value
	flags      map[string]value.Value
}

// Bind matches a call against a signature. Positionals bind left to
// right and coerce to their declared types; arguments beyond the
// declared ones feed the rest parameter or fail; flags resolve by long
// or short form with switches defaulting to true on bare presence.
// Defaults fill whatever the call omitted. Every failure is blamed on a
// call-site span: the offending argument where there is one, the command
// head where something is missing.
func Bind(sig *Signature, call Call) (*BoundArgs, error) {
	bound := &BoundArgs{
		Sig:        sig,
		Head:       call.Head,
		positional: make(map[string]value.Value, len(sig.Positional)),
		flags:      make(map[string]value.Value, len(sig.Flags)),
	}

	for i, decl := range sig.Positional {
		if i < len(call.Positional) {
			coerced, err := value.Coerce(call.Positional[i], decl.Type)
			if err != nil {
				return nil, err
			}
			bound.positional[decl.Name] = coerced
			continue
		}
		if decl.Optional {
			if decl.Default != nil {
				bound.positional[decl.Name] = *decl.Default
			}
			continue
		}
		return nil, errors.MissingPositional(decl.Name, call.Head)
	}

	if len(call.Positional) > len(sig.Positional) {
		extra := call.Positional[len(sig.Positional):]
		if sig.Rest == nil {
			return nil, errors.ExtraPositional(sig.Name, extra[0].Tag())
		}
		for _, arg := range extra {
			coerced, err := value.Coerce(arg, sig.Rest.Type)
			if err != nil {
				return nil, err
			}
			bound.rest = append(bound.rest, coerced)
		}
	}

	for _, na := range call.Named {
		decl := sig.findFlag(na.Name)
		if decl == nil {
			return nil, errors.UnknownFlag(writtenFlag(na.Name), sig.flagNames(), na.Tag)
		}
		if decl.Type == nil {
			// Switch: bare presence means true; an explicit bool is legal.
			if na.Value == nil {
				bound.flags[decl.Long] = value.Bool(true, na.Tag)
				continue
			}
			if na.Value.Kind() != value.KindBool {
				return nil, errors.FlagTypeMismatch(writtenFlag(na.Name), "bool", value.TypeOf(*na.Value).String(), na.Tag)
			}
			bound.flags[decl.Long] = *na.Value
			continue
		}
		if na.Value == nil {
			return nil, errors.FlagTypeMismatch(writtenFlag(na.Name), decl.Type.String(), "nothing", na.Tag)
		}
		coerced, err := value.Coerce(*na.Value, *decl.Type)
		if err != nil {
			return nil, errors.FlagTypeMismatch(writtenFlag(na.Name), decl.Type.String(), value.TypeOf(*na.Value).String(), na.Tag)
		}
		bound.flags[decl.Long] = coerced
	}

	for _, decl := range sig.Flags {
		if _, ok := bound.flags[decl.Long]; ok {
			continue
		}
		if decl.Required {
			return nil, errors.MissingFlag("--"+decl.Long, call.Head)
		}
		if decl.Default != nil {
			bound.flags[decl.Long] = *decl.Default
		}
	}
	return bound, nil
}

func writtenFlag(name string) string {
	if len(name) == 1 {
		return "-" + name
	}
	return "--" + name
}

// Get returns the positional bound for the declared name.
func (b *BoundArgs) Get(name string) (value.Value, bool) {
	v, ok := b.positional[name]
	return v, ok
}

// GetOr returns the positional, or fallback when the call omitted it.
func (b *BoundArgs) GetOr(name string, fallback value.Value) value.Value {
	if v, ok := b.positional[name]; ok {
		return v
	}
	return fallback
}

// Rest returns the values consumed by the rest parameter, in call order.
func (b *BoundArgs) Rest() []value.Value {
	return b.rest
}

// GetFlag returns the value bound for the long flag name.
func (b *BoundArgs) GetFlag(long string) (value.Value, bool) {
	v, ok := b.flags[long]
	return v, ok
}

// FlagBool reports whether a switch is on. Unset switches are off.
func (b *BoundArgs) FlagBool(long string) bool {
	v, ok := b.flags[long]
	if !ok {
		return false
	}
	on, err := v.AsBool()
	return err == nil && on
}

// FlagInt returns an int flag's value.
func (b *BoundArgs) FlagInt(long string) (int64, bool) {
	v, ok := b.flags[long]
	if !ok {
		return 0, false
	}
	i, err := v.AsInt()
	if err != nil {
		return 0, false
	}
	return i, true
}

// FlagString returns a string flag's value.
func (b *BoundArgs) FlagString(long string) (string, bool) {
	v, ok := b.flags[long]
	if !ok {
		return "", false
	}
	s, err := v.AsString()
	if err != nil {
		return "", false
	}
	return s, true
}

// FlagClosure returns a closure flag's value.
func (b *BoundArgs) FlagClosure(long string) (*value.Closure, bool) {
	v, ok := b.flags[long]
	if !ok {
		return nil, false
	}
	c, err := v.AsClosure()
	if err != nil {
		return nil, false
	}
	return c, true
}
