// Package errors defines the runtime's structured error model.
// Every failure is a ShellError: a closed kind, a human-readable message,
// and the provenance tag of the value or call site responsible, so
// diagnostics can point at the exact source token even many pipeline
// stages after the failure was produced.
//
// Errors travel as values. The evaluator wraps a ShellError into an error
// value that flows through pipelines like any other datum; only control
// errors (interruption) unwind directly to the top-level driver.
package errors
