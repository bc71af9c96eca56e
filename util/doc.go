// Package util provides small shared helpers for the runtime.
//
// It includes human byte-size parsing, zero-value coalescing for
// configuration defaults, and the Levenshtein distance behind
// did-you-mean suggestions.
package util
