package eval

import (
	"runtime"
	"sort"
	"strings"

	"github.com/shale-sh/shale/source"
	"github.com/shale-sh/shale/value"
)

// envCaseInsensitive selects folded environment lookups on platforms
// whose native environment ignores case.
var envCaseInsensitive = runtime.GOOS == "windows"

// frame is one scope level. Variable lookups stop at a barrier frame,
// so closures see only their captures; environment lookups walk the
// whole chain, so env stays dynamic across calls.
type frame struct {
	parent  *frame
	vars    map[string]value.Value
	env     map[string]string
	barrier bool
}

// Stack addresses the innermost frame of a scope chain. let writes the
// current frame; lookups walk outward.
type Stack struct {
	top *frame
}

// NewStack returns a stack with one empty root frame.
func NewStack() *Stack {
	return &Stack{top: &frame{
		vars: make(map[string]value.Value),
		env:  make(map[string]string),
	}}
}

// NewStackWithEnv returns a stack whose root frame holds the given
// environment entries. The map is copied.
func NewStackWithEnv(env map[string]string) *Stack {
	s := NewStack()
	for k, v := range env {
		s.top.env[k] = v
	}
	return s
}

// Child opens a nested scope over the same chain. Variables and env
// set in the child vanish when the child is dropped; everything outer
// stays visible.
func (s *Stack) Child() *Stack {
	return &Stack{top: &frame{
		parent: s.top,
		vars:   make(map[string]value.Value),
		env:    make(map[string]string),
	}}
}

// ClosureStack opens the scope a closure body runs in: a barrier frame
// seeded with the closure's captures, chained onto the receiver for
// dynamic env lookups. The caller's variables are not visible; the
// caller's environment is.
func (s *Stack) ClosureStack(cl *value.Closure) *Stack {
	vars := make(map[string]value.Value, len(cl.Captures))
	for _, c := range cl.Captures {
		vars[c.Name] = c.Value
	}
	return &Stack{top: &frame{
		parent:  s.top,
		vars:    vars,
		env:     make(map[string]string),
		barrier: true,
	}}
}

// Lookup resolves a variable, walking outward until a barrier.
func (s *Stack) Lookup(name string) (value.Value, bool) {
	for f := s.top; f != nil; f = f.parent {
		if v, ok := f.vars[name]; ok {
			return v, true
		}
		if f.barrier {
			break
		}
	}
	return value.Value{}, false
}

// Set binds a variable in the current frame, shadowing outer scopes.
func (s *Stack) Set(name string, v value.Value) {
	s.top.vars[name] = v
}

// VisibleNames returns every variable name in scope, sorted, for
// suggestions.
func (s *Stack) VisibleNames() []string {
	seen := make(map[string]bool)
	for f := s.top; f != nil; f = f.parent {
		for name := range f.vars {
			seen[name] = true
		}
		if f.barrier {
			break
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Captures snapshots the visible variables for a closure, innermost
// binding winning, sorted by name.
func (s *Stack) Captures() []value.Capture {
	seen := make(map[string]value.Value)
	for f := s.top; f != nil; f = f.parent {
		for name, v := range f.vars {
			if _, ok := seen[name]; !ok {
				seen[name] = v
			}
		}
		if f.barrier {
			break
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	caps := make([]value.Capture, len(names))
	for i, name := range names {
		caps[i] = value.Capture{Name: name, Value: seen[name]}
	}
	return caps
}

// LookupEnv resolves an environment entry by exact name. Env lookups
// ignore barriers; the environment is dynamic.
func (s *Stack) LookupEnv(name string) (string, bool) {
	for f := s.top; f != nil; f = f.parent {
		if v, ok := f.env[name]; ok {
			return v, true
		}
	}
	return "", false
}

// LookupEnvInsensitive resolves an environment entry ignoring case.
// An exact match in a frame wins over a folded one; among folded
// matches the alphabetically first name wins, so lookups are stable.
func (s *Stack) LookupEnvInsensitive(name string) (string, bool) {
	for f := s.top; f != nil; f = f.parent {
		if v, ok := f.env[name]; ok {
			return v, true
		}
		keys := make([]string, 0, len(f.env))
		for k := range f.env {
			if strings.EqualFold(k, name) {
				keys = append(keys, k)
			}
		}
		if len(keys) > 0 {
			sort.Strings(keys)
			return f.env[keys[0]], true
		}
	}
	return "", false
}

// SetEnv writes an environment entry into the current frame. The write
// is visible to callees and vanishes when the frame is dropped, unless
// a def --env command merges it outward.
func (s *Stack) SetEnv(name, val string) {
	s.top.env[name] = val
}

// LocalEnv returns a copy of the entries written into the current
// frame only.
func (s *Stack) LocalEnv() map[string]string {
	out := make(map[string]string, len(s.top.env))
	for k, v := range s.top.env {
		out[k] = v
	}
	return out
}

// EnvRecord returns the merged environment as a record value, columns
// sorted by name, inner frames shadowing outer ones.
func (s *Stack) EnvRecord(tag source.Tag) value.Value {
	merged := make(map[string]string)
	for f := s.top; f != nil; f = f.parent {
		for k, v := range f.env {
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
	}
	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	sort.Strings(names)
	rec := &value.Record{}
	for _, name := range names {
		rec.Upsert(name, value.String(merged[name], tag))
	}
	return value.NewRecord(rec, tag)
}
