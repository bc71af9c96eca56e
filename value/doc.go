// Package value implements the runtime's tagged value model.
//
// Every Value pairs a payload with the provenance tag of the expression
// that produced it. Tags survive every transformation: operators merge
// the tags of their operands, cell-path steps keep the tag of the data
// they extracted from, and errors are values too, carrying the blamed
// span with them through any number of pipeline stages.
//
// # Kinds
//
// Scalars: nothing, bool, int, float, string, binary, date, duration,
// filesize. Structures: record (insertion-ordered columns), list, range
// (lazy integer sequence). Code: closure (block id plus captured scope).
// Addressing: cell path. Failure: error.
//
// # Coercion
//
// The As* accessors convert with the shell's lenient rules — numeric
// strings parse to numbers, suffixed strings parse to filesizes ("10mb")
// and durations ("2sec"), ints and single strings lift to cell paths.
// A failed coercion returns a tagged TYPE_MISMATCH error, never a panic.
//
// # Ordering
//
// Compare implements the numeric tower: int, float, filesize, and
// duration compare against each other by magnitude. Non-numeric kinds
// compare only with themselves; incomparable pairs return an error from
// Compare but are simply unequal under Equal. SortCompare adds a total
// kind-rank fallback so heterogeneous lists sort deterministically.
package value
