// Package signature declares command contracts and binds call sites to
// them.
//
// A command registers one Signature per input type it accepts; the same
// name can declare different parameter sets for table input, list input,
// and string input. At a call site the runtime selects the overload for
// the incoming data's type, then binds the written arguments against it.
//
// # Declaration
//
// Signatures build fluently:
//
//	sig := signature.New("first").
//		Input(value.ListOf(value.AnyType)).
//		Optional("count", value.IntType, "how many rows to keep").
//		WithCategory("filters")
//
// # Overload selection
//
// SelectOverload ranks candidates by specificity: an exact input type
// wins over a structural match (a table overload accepting list<record>),
// which wins over an any-typed catch-all. When nothing accepts the input,
// the error names the types that would.
//
// # Binding
//
// Bind matches positionals left to right, consumes a trailing rest
// parameter greedily, resolves flags by long or short form, validates
// every matched value against its declared type with the value coercion
// rules, and fills in defaults. Binding failures blame the call site
// span, never the declaration.
package signature
