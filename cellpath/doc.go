// Package cellpath describes paths into structured data.
//
// A Path is a sequence of members, each either a record field name or a
// list index. Every member carries its own provenance tag, so an access
// failure three levels deep can point at the exact path segment that
// missed, and an Optional marker that turns the failure into nothing.
package cellpath
