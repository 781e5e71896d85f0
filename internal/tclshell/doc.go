// Package tclshell manages a long-lived interactive Tcl interpreter as a
// child process.
//
// It exposes Session for the sentinel-based request/response protocol over
// the interpreter's pipes, OSProcessLauncher for default process spawning,
// and typed errors distinguishing shell-side faults from transport
// failures. Sessions serialize callers onto a single in-flight command and
// become permanently unusable after any transport failure.
package tclshell
