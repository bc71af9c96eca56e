package errors

import (
	"fmt"
	"strings"

	"github.com/shale-sh/shale/source"
	"github.com/shale-sh/shale/util"
)

// ShellError is the unified runtime error type.
type ShellError struct {
	// Kind is a machine-readable error kind.
	Kind Kind
	// Message is a human-readable error message.
	Message string
	// Help is an optional hint appended to rendered diagnostics.
	Help string
	// Catchable indicates whether a try block may intercept the error.
	Catchable bool
	// Tag locates the value or call site responsible for the error.
	Tag source.Tag
	// Details contains additional context for the error.
	Details map[string]any
	// Cause is the underlying error that caused this error.
	Cause error
}

// Error returns the string representation of the error.
func (e *ShellError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *ShellError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *ShellError) WithCause(cause error) *ShellError {
	e.Cause = cause
	return e
}

// WithHelp sets the diagnostic hint and returns the receiver.
func (e *ShellError) WithHelp(help string) *ShellError {
	e.Help = help
	return e
}

// WithTag replaces the blamed source location and returns the receiver.
// Later stages use it when they know a more precise span than the site
// that produced the error.
func (e *ShellError) WithTag(tag source.Tag) *ShellError {
	e.Tag = tag
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *ShellError) WithDetails(details map[string]any) *ShellError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *ShellError) WithDetail(key string, value any) *ShellError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new ShellError with automatic catchability detection.
func New(kind Kind, message string, tag source.Tag) *ShellError {
	return &ShellError{
		Kind:      kind,
		Message:   message,
		Tag:       tag,
		Catchable: !IsControlKind(kind),
	}
}

// Wrap lifts an arbitrary Go error into a ShellError. A ShellError passes
// through unchanged, picking up the tag only if it had none.
func Wrap(err error, tag source.Tag) *ShellError {
	if se, ok := As(err); ok {
		if se.Tag.IsUnknown() {
			se.Tag = tag
		}
		return se
	}
	return &ShellError{
		Kind: KindCustom, Message: err.Error(),
		Tag: tag, Catchable: true, Cause: err,
	}
}

// As returns the first ShellError in err's chain.
func As(err error) (*ShellError, bool) {
	for err != nil {
		if se, ok := err.(*ShellError); ok {
			return se, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

// Is reports whether err carries a ShellError of the given kind.
func Is(err error, kind Kind) bool {
	se, ok := As(err)
	return ok && se.Kind == kind
}

// --- Common Error Constructors ---

// TypeMismatch creates a new ShellError for a value of the wrong type.
func TypeMismatch(expected, actual string, tag source.Tag) *ShellError {
	return &ShellError{
		Kind: KindTypeMismatch, Message: fmt.Sprintf("expected %s, found %s", expected, actual),
		Tag: tag, Catchable: true,
		Details: map[string]any{"expected": expected, "actual": actual},
	}
}

// CantConvert creates a new ShellError for a failed type conversion.
func CantConvert(from, to string, tag source.Tag) *ShellError {
	return &ShellError{
		Kind: KindTypeMismatch, Message: fmt.Sprintf("can't convert %s to %s", from, to),
		Tag: tag, Catchable: true,
		Details: map[string]any{"from": from, "to": to},
	}
}

// UnsupportedOperands creates a new ShellError for an operator applied to
// types it does not support.
func UnsupportedOperands(op, lhs, rhs string, tag source.Tag) *ShellError {
	return &ShellError{
		Kind: KindTypeMismatch, Message: fmt.Sprintf("'%s' is not supported between %s and %s", op, lhs, rhs),
		Tag: tag, Catchable: true,
		Details: map[string]any{"operator": op, "lhs": lhs, "rhs": rhs},
	}
}

// DivisionByZero creates a new ShellError for a zero divisor.
func DivisionByZero(tag source.Tag) *ShellError {
	return &ShellError{
		Kind: KindDivisionByZero, Message: "division by zero",
		Tag: tag, Catchable: true,
	}
}

// IndexOutOfRange creates a new ShellError for an index beyond the data.
func IndexOutOfRange(index, length int, tag source.Tag) *ShellError {
	return &ShellError{
		Kind: KindIndexOutOfRange, Message: fmt.Sprintf("index %d is out of range (data has %d rows)", index, length),
		Tag: tag, Catchable: true,
		Details: map[string]any{"index": index, "length": length},
	}
}

// EmptyData creates a new ShellError for an access into empty data.
func EmptyData(what string, tag source.Tag) *ShellError {
	return &ShellError{
		Kind: KindEmptyData, Message: fmt.Sprintf("cannot access %s: data is empty", what),
		Tag: tag, Catchable: true,
	}
}

// ColumnNotFound creates a new ShellError for a missing record column,
// suggesting the closest existing column when one is plausible.
func ColumnNotFound(column string, candidates []string, tag source.Tag) *ShellError {
	e := &ShellError{
		Kind: KindColumnNotFound, Message: fmt.Sprintf("cannot find column '%s'", column),
		Tag: tag, Catchable: true,
		Details: map[string]any{"column": column},
	}
	if s, ok := util.DidYouMean(candidates, column); ok {
		e.Help = fmt.Sprintf("did you mean '%s'?", s)
	}
	return e
}

// VariableNotFound creates a new ShellError for a variable no visible
// scope defines, suggesting the closest name in scope.
func VariableNotFound(name string, candidates []string, tag source.Tag) *ShellError {
	e := &ShellError{
		Kind: KindVariableNotFound, Message: fmt.Sprintf("variable '$%s' not found", name),
		Tag: tag, Catchable: true,
		Details: map[string]any{"name": name},
	}
	if s, ok := util.DidYouMean(candidates, name); ok {
		e.Help = fmt.Sprintf("did you mean '$%s'?", s)
	}
	return e
}

// EnvVarNotFound creates a new ShellError for a missing environment entry.
func EnvVarNotFound(name string, tag source.Tag) *ShellError {
	return &ShellError{
		Kind: KindEnvVarNotFound, Message: fmt.Sprintf("environment variable '%s' not found", name),
		Tag: tag, Catchable: true,
		Details: map[string]any{"name": name},
	}
}

// MissingPositional creates a new ShellError for an absent required argument.
func MissingPositional(name string, tag source.Tag) *ShellError {
	return &ShellError{
		Kind: KindMissingPositional, Message: fmt.Sprintf("missing required positional argument '%s'", name),
		Tag: tag, Catchable: true,
		Details: map[string]any{"name": name},
	}
}

// ExtraPositional creates a new ShellError for a positional argument the
// signature has no parameter for.
func ExtraPositional(command string, tag source.Tag) *ShellError {
	return &ShellError{
		Kind: KindExtraPositional, Message: fmt.Sprintf("command '%s' was given an extra positional argument", command),
		Tag: tag, Catchable: true,
		Details: map[string]any{"command": command},
	}
}

// UnknownFlag creates a new ShellError for a flag the signature does not
// declare. The flag is given as written, dashes included.
func UnknownFlag(flag string, candidates []string, tag source.Tag) *ShellError {
	e := &ShellError{
		Kind: KindUnknownFlag, Message: fmt.Sprintf("unknown flag '%s'", flag),
		Tag: tag, Catchable: true,
		Details: map[string]any{"flag": flag},
	}
	if s, ok := util.DidYouMean(candidates, flag); ok {
		e.Help = fmt.Sprintf("did you mean '%s'?", s)
	}
	return e
}

// MissingFlag creates a new ShellError for a required flag that was not
// given. The flag is named in long form, dashes included.
func MissingFlag(flag string, tag source.Tag) *ShellError {
	return &ShellError{
		Kind: KindMissingFlag, Message: fmt.Sprintf("missing required flag '%s'", flag),
		Tag: tag, Catchable: true,
		Details: map[string]any{"flag": flag},
	}
}

// FlagTypeMismatch creates a new ShellError for a flag argument of the
// wrong type.
func FlagTypeMismatch(flag, expected, actual string, tag source.Tag) *ShellError {
	return &ShellError{
		Kind: KindFlagTypeMismatch, Message: fmt.Sprintf("flag '%s' requires %s, found %s", flag, expected, actual),
		Tag: tag, Catchable: true,
		Details: map[string]any{"flag": flag, "expected": expected, "actual": actual},
	}
}

// CommandNotFound creates a new ShellError for an unregistered command name.
func CommandNotFound(name string, candidates []string, tag source.Tag) *ShellError {
	e := &ShellError{
		Kind: KindCommandNotFound, Message: fmt.Sprintf("command '%s' was not found", name),
		Tag: tag, Catchable: true,
		Details: map[string]any{"name": name},
	}
	if s, ok := util.DidYouMean(candidates, name); ok {
		e.Help = fmt.Sprintf("did you mean '%s'?", s)
	}
	return e
}

// InputTypeMismatch creates a new ShellError for pipeline input that no
// overload of the command accepts.
func InputTypeMismatch(command, input string, accepted []string, tag source.Tag) *ShellError {
	e := &ShellError{
		Kind: KindInputTypeMismatch, Message: fmt.Sprintf("command '%s' does not accept %s input", command, input),
		Tag: tag, Catchable: true,
		Details: map[string]any{"command": command, "input": input},
	}
	if len(accepted) > 0 {
		e.Help = "usable input types: " + strings.Join(accepted, ", ")
	}
	return e
}

// ExternalNonZeroExit creates a new ShellError for an external command
// that exited with a non-zero code.
func ExternalNonZeroExit(command string, exitCode int, tag source.Tag) *ShellError {
	return &ShellError{
		Kind: KindExternalNonZeroExit, Message: fmt.Sprintf("external command '%s' exited with code %d", command, exitCode),
		Tag: tag, Catchable: true,
		Details: map[string]any{"command": command, "exit_code": exitCode},
	}
}

// ExternalSpawnFailed creates a new ShellError for an external command
// that could not be started.
func ExternalSpawnFailed(command string, cause error, tag source.Tag) *ShellError {
	return &ShellError{
		Kind: KindExternalSpawnFailed, Message: fmt.Sprintf("external command '%s' failed to start", command),
		Tag: tag, Catchable: true, Cause: cause,
		Details: map[string]any{"command": command},
	}
}

// ParseFailure creates a new ShellError for source text that could not
// be parsed.
func ParseFailure(message string, tag source.Tag) *ShellError {
	return &ShellError{
		Kind: KindParseFailure, Message: message,
		Tag: tag, Catchable: true,
	}
}

// Interrupted creates a new ShellError for a cancelled evaluation.
// The error is a control error and cannot be caught.
func Interrupted(tag source.Tag) *ShellError {
	return &ShellError{
		Kind: KindInterrupted, Message: "operation interrupted",
		Tag: tag, Catchable: false,
	}
}

// Custom creates a new ShellError raised by script code.
func Custom(message string, tag source.Tag) *ShellError {
	return &ShellError{
		Kind: KindCustom, Message: message,
		Tag: tag, Catchable: true,
	}
}
