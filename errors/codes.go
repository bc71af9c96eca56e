package errors

// Kind represents a machine-readable error kind.
type Kind string

// Type errors
const (
	// KindTypeMismatch indicates a value had the wrong type for an operation.
	KindTypeMismatch Kind = "TYPE_MISMATCH"
	// KindDivisionByZero indicates a division or modulo with a zero divisor.
	KindDivisionByZero Kind = "DIVISION_BY_ZERO"
)

// Access errors
const (
	// KindIndexOutOfRange indicates a list or byte index beyond the data.
	KindIndexOutOfRange Kind = "INDEX_OUT_OF_RANGE"
	// KindColumnNotFound indicates a record column that does not exist.
	KindColumnNotFound Kind = "COLUMN_NOT_FOUND"
	// KindEmptyData indicates an access into data that has no content.
	KindEmptyData Kind = "EMPTY_DATA"
	// KindVariableNotFound indicates a variable no visible scope defines.
	KindVariableNotFound Kind = "VARIABLE_NOT_FOUND"
	// KindEnvVarNotFound indicates a missing environment entry.
	KindEnvVarNotFound Kind = "ENV_VAR_NOT_FOUND"
)

// Call binding errors
const (
	// KindMissingPositional indicates a required positional argument was absent.
	KindMissingPositional Kind = "MISSING_POSITIONAL"
	// KindExtraPositional indicates a positional argument the signature has
	// no parameter for.
	KindExtraPositional Kind = "EXTRA_POSITIONAL"
	// KindUnknownFlag indicates a flag the signature does not declare.
	KindUnknownFlag Kind = "UNKNOWN_FLAG"
	// KindMissingFlag indicates a required flag was absent.
	KindMissingFlag Kind = "MISSING_FLAG"
	// KindFlagTypeMismatch indicates a flag argument of the wrong type.
	KindFlagTypeMismatch Kind = "FLAG_TYPE_MISMATCH"
	// KindCommandNotFound indicates a command name with no registered decl.
	KindCommandNotFound Kind = "COMMAND_NOT_FOUND"
	// KindInputTypeMismatch indicates pipeline input no overload accepts.
	KindInputTypeMismatch Kind = "INPUT_TYPE_MISMATCH"
)

// External command errors
const (
	// KindExternalNonZeroExit indicates an external command exited non-zero.
	KindExternalNonZeroExit Kind = "EXTERNAL_NON_ZERO_EXIT"
	// KindExternalSpawnFailed indicates an external command could not start.
	KindExternalSpawnFailed Kind = "EXTERNAL_SPAWN_FAILED"
)

// Source and control errors
const (
	// KindParseFailure indicates source text that could not be parsed.
	KindParseFailure Kind = "PARSE_FAILURE"
	// KindInterrupted indicates evaluation was cancelled by an interrupt.
	KindInterrupted Kind = "INTERRUPTED"
	// KindCustom carries an error raised by script code itself.
	KindCustom Kind = "CUSTOM"
)

var bindingKinds = map[Kind]bool{
	KindMissingPositional: true,
	KindExtraPositional:   true,
	KindUnknownFlag:       true,
	KindMissingFlag:       true,
	KindFlagTypeMismatch:  true,
	KindCommandNotFound:   true,
	KindInputTypeMismatch: true,
}

// IsBindingKind returns true if the kind arises from matching a call
// against a command signature rather than from evaluating data.
func IsBindingKind(kind Kind) bool {
	return bindingKinds[kind]
}

// IsControlKind returns true if the kind unwinds evaluation directly
// instead of travelling through the pipeline as an error value.
// Control errors are not catchable by try blocks.
func IsControlKind(kind Kind) bool {
	return kind == KindInterrupted
}
