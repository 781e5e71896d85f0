// Package run implements the one-shot command execution subcommand.
package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agrif/quartustcl/internal/tcllist"
	"github.com/agrif/quartustcl/internal/tclshell"
)

const (
	commandUseConstant              = "run [tcl command...]"
	commandShortDescriptionConstant = "Execute a single Tcl command and print its result"
	commandLongDescriptionConstant  = "run spawns the configured interactive shell, executes the given Tcl command through the sentinel protocol, prints the result, and shuts the shell down."
	levelsFlagNameConstant          = "levels"
	levelsFlagDescriptionConstant   = "Interpret the result as a Tcl list nested this many levels and print it as a tree"
	timeoutFlagNameConstant         = "timeout"
	timeoutFlagDescriptionConstant  = "Per-command timeout in seconds, overriding the configuration"
	commandRequiredMessageConstant  = "tcl command required; pass it as positional arguments"
	spawnErrorTemplateConstant      = "unable to spawn shell: %w"
	commandWordSeparatorConstant    = " "
	treeIndentConstant              = "  "
	sessionClosedMessageConstant    = "session closed"
)

// CommandSession is the slice of the shell session the command drives.
type CommandSession interface {
	Execute(executionContext context.Context, command string) (string, error)
	Close() error
}

// SessionFactory spawns a session from resolved options.
type SessionFactory func(logger *zap.Logger, options tclshell.SessionOptions) (CommandSession, error)

// LoggerProvider supplies the logger configured by the root command.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the run command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() tclshell.SessionConfiguration
	SessionFactory        SessionFactory
}

// Build constructs the run command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().Int(levelsFlagNameConstant, 0, levelsFlagDescriptionConstant)
	command.Flags().Int(timeoutFlagNameConstant, 0, timeoutFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	if len(arguments) == 0 {
		return errors.New(commandRequiredMessageConstant)
	}

	logger := builder.resolveLogger()
	sessionOptions := builder.resolveConfiguration().Options()

	if command.Flags().Changed(timeoutFlagNameConstant) {
		timeoutSeconds, _ := command.Flags().GetInt(timeoutFlagNameConstant)
		sessionOptions.CommandTimeout = time.Duration(timeoutSeconds) * time.Second
	}

	session, spawnError := builder.spawnSession(logger, sessionOptions)
	if spawnError != nil {
		return fmt.Errorf(spawnErrorTemplateConstant, spawnError)
	}
	defer func() {
		if closeError := session.Close(); closeError != nil {
			logger.Warn(sessionClosedMessageConstant, zap.Error(closeError))
		}
	}()

	tclCommand := strings.Join(arguments, commandWordSeparatorConstant)

	result, executionError := session.Execute(command.Context(), tclCommand)
	if executionError != nil {
		return executionError
	}

	nestingLevels, _ := command.Flags().GetInt(levelsFlagNameConstant)
	if nestingLevels <= 0 {
		fmt.Fprintln(command.OutOrStdout(), result)
		return nil
	}

	parsedNodes, parseError := tcllist.ParseNested(result, nestingLevels)
	if parseError != nil {
		return parseError
	}

	printNodeTree(command.OutOrStdout(), parsedNodes, 0)
	return nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider != nil {
		if logger := builder.LoggerProvider(); logger != nil {
			return logger
		}
	}
	return zap.NewNop()
}

func (builder *CommandBuilder) resolveConfiguration() tclshell.SessionConfiguration {
	if builder.ConfigurationProvider != nil {
		return builder.ConfigurationProvider()
	}
	return tclshell.SessionConfiguration{}
}

func (builder *CommandBuilder) spawnSession(logger *zap.Logger, options tclshell.SessionOptions) (CommandSession, error) {
	if builder.SessionFactory != nil {
		return builder.SessionFactory(logger, options)
	}
	return tclshell.Spawn(logger, options)
}

func printNodeTree(output io.Writer, nodes []tcllist.ListNode, depth int) {
	indent := strings.Repeat(treeIndentConstant, depth)
	for _, node := range nodes {
		if node.IsList {
			printNodeTree(output, node.Children, depth+1)
			continue
		}
		fmt.Fprintf(output, "%s%s\n", indent, node.LeafValue)
	}
}
