// Package source provides the provenance primitives attached to every
// runtime value: byte-offset spans, anchor locations describing where a
// piece of source text came from, and tags combining the two.
//
// Tags are designed to be cheap to copy. The underlying source text is
// shared by pointer (Text); spans address it by offset and never carry a
// sub-copy of the text.
package source
