package tclcall

import (
	"context"
	"errors"
	"fmt"

	"github.com/agrif/quartustcl/internal/tcllist"
)

const sessionNotConfiguredMessageConstant = "session not configured"

// ErrSessionNotConfigured reports a Bridge built without a session.
var ErrSessionNotConfigured = errors.New(sessionNotConfiguredMessageConstant)

// CommandExecutor executes one command line against a live shell session.
// *tclshell.Session satisfies this interface.
type CommandExecutor interface {
	Execute(executionContext context.Context, command string) (string, error)
}

// Bridge is the convenience layer over one session. It owns no protocol
// state of its own; every method is a single Execute round-trip.
type Bridge struct {
	session CommandExecutor
}

// NewBridge wraps a session in the convenience layer.
func NewBridge(session CommandExecutor) (*Bridge, error) {
	if session == nil {
		return nil, ErrSessionNotConfigured
	}
	return &Bridge{session: session}, nil
}

// Eval substitutes quoted argument values into the %s placeholders of the
// format string and executes the resulting command line, returning the raw
// result text.
func (bridge *Bridge) Eval(executionContext context.Context, commandFormat string, argumentValues ...string) (string, error) {
	quotedValues := make([]any, 0, len(argumentValues))
	for _, argumentValue := range argumentValues {
		quotedValues = append(quotedValues, quoteArgument(argumentValue))
	}
	return bridge.session.Execute(executionContext, fmt.Sprintf(commandFormat, quotedValues...))
}

// Call executes a command built from a name and positional arguments,
// returning the raw result text.
func (bridge *Bridge) Call(executionContext context.Context, commandName string, argumentValues ...string) (string, error) {
	return bridge.session.Execute(executionContext, BuildCommand(commandName, argumentValues, nil))
}

// Invoke executes a command built from a name, positional arguments, and
// keyword flags, and parses the result's top level as a Tcl list.
func (bridge *Bridge) Invoke(executionContext context.Context, commandName string, positionalArguments []string, commandFlags []CommandFlag) ([]string, error) {
	rawResult, executionError := bridge.session.Execute(executionContext, BuildCommand(commandName, positionalArguments, commandFlags))
	if executionError != nil {
		return nil, executionError
	}
	return tcllist.Parse(rawResult)
}

func quoteArgument(argumentValue string) string {
	return tcllist.Quote(argumentValue)
}
