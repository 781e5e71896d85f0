// Package tclcall builds well-formed Tcl command lines from names,
// positional arguments, and keyword flags, and offers Bridge as a
// convenience layer that executes built commands on a session and parses
// list-shaped results.
package tclcall
