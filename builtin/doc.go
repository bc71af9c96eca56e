// Package builtin provides the reference command set.
//
// Every command declares one signature per input type it accepts, so
// one name behaves correctly whether it receives a scalar, a list, or
// a stream: "str length" maps a single string to an int and broadcasts
// across list input, "bits and" does the same for ints, "select"
// projects a record directly and a table row by row. Overload
// resolution happens in the evaluator before Run is called; a command
// body can trust cc.Args.Sig to know which shape it was given.
//
// Transforms stay lazy wherever the operation allows it. "each",
// "where", "skip", "take", and the broadcast overloads pull one input
// item per output item, so slicing an endless "generate" or "seq"
// source does bounded work. Commands that genuinely need the whole
// input ("last", "sort-by", "uniq --count", "histogram") drain it and
// say so by materializing.
//
// Error values arriving as input pass through untouched; the evaluator
// only delivers them to commands that opt in. Failures raised inside a
// command flow onward as error values in the output stream, so a
// downstream try can still intercept them.
package builtin
