// Package cli wires the quartustcl command hierarchy, configuration loading,
// and structured logging into a runnable application.
package cli
