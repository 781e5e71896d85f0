// Package tcllist implements the Tcl list grammar bidirectionally.
//
// It exposes Parse and ParseNested for splitting Tcl list text into
// elements, Serialize and Quote for rendering values back into list
// syntax with minimal-but-safe quoting, and the ParseError type for
// inputs that violate the grammar. The package is pure and performs
// no I/O; session handling lives in tclshell.
package tcllist
