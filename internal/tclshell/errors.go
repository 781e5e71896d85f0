package tclshell

import (
	"errors"
	"fmt"
)

const (
	loggerNotConfiguredMessageConstant   = "logger not configured"
	launcherNotConfiguredMessageConstant = "process launcher not configured"
	sessionClosedMessageConstant         = "session already closed"
	multilineCommandMessageConstant      = "command must not contain raw newlines"
	evalErrorTemplateConstant            = "tcl command %q failed: %s"
	transportErrorTemplateConstant       = "tcl shell transport failed during %s: %v"
	timeoutErrorTemplateConstant         = "tcl command %q abandoned before completion: %v"
)

// Configuration errors reported when a session is constructed.
var (
	ErrLoggerNotConfigured   = errors.New(loggerNotConfiguredMessageConstant)
	ErrLauncherNotConfigured = errors.New(launcherNotConfiguredMessageConstant)
)

// ErrSessionClosed reports Execute calls after Close.
var ErrSessionClosed = errors.New(sessionClosedMessageConstant)

// ErrMultilineCommand reports a command containing a raw newline, which the
// framing protocol would misread as command termination.
var ErrMultilineCommand = errors.New(multilineCommandMessageConstant)

// EvalError reports a fault the shell itself raised while executing a
// command. The session remains usable afterwards.
type EvalError struct {
	Command string
	Message string
	Output  string
}

// Error describes the shell-side fault.
func (evalError EvalError) Error() string {
	return fmt.Sprintf(evalErrorTemplateConstant, evalError.Command, evalError.Message)
}

// TransportError reports a dead child process or broken pipe. The session is
// permanently unusable afterwards; every later Execute returns the same error.
type TransportError struct {
	Operation string
	Cause     error
}

// Error describes the transport failure.
func (transportError TransportError) Error() string {
	return fmt.Sprintf(transportErrorTemplateConstant, transportError.Operation, transportError.Cause)
}

// Unwrap exposes the underlying pipe or process error.
func (transportError TransportError) Unwrap() error {
	return transportError.Cause
}

// TimeoutError reports a caller-imposed deadline elapsing before the
// sentinel was observed. The read position inside the byte stream can no
// longer be trusted, so the session is treated as transport-failed from
// then on.
type TimeoutError struct {
	Command string
	Cause   error
}

// Error describes the abandoned command.
func (timeoutError TimeoutError) Error() string {
	return fmt.Sprintf(timeoutErrorTemplateConstant, timeoutError.Command, timeoutError.Cause)
}

// Unwrap exposes the context error that tripped the deadline.
func (timeoutError TimeoutError) Unwrap() error {
	return timeoutError.Cause
}
