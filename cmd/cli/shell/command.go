// Package shell implements the interactive REPL subcommand.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agrif/quartustcl/internal/tclshell"
)

const (
	commandUseConstant              = "shell"
	commandShortDescriptionConstant = "Open an interactive prompt bridged to the configured Tcl shell"
	commandLongDescriptionConstant  = "shell spawns the configured interactive shell and forwards each line typed at the prompt through the sentinel protocol, printing results and evaluation errors."
	promptConstant                  = "tcl> "
	historyLimitConstant            = 1000
	exitInputConstant               = "exit"
	quitInputConstant               = "quit"
	spawnErrorTemplateConstant      = "unable to spawn shell: %w"
	readlineErrorTemplateConstant   = "unable to open prompt: %w"
	errorOutputTemplateConstant     = "error: %v\n"
	sessionClosedMessageConstant    = "session closed"
)

// CommandSession is the slice of the shell session the REPL drives.
type CommandSession interface {
	Execute(executionContext context.Context, command string) (string, error)
	Close() error
}

// SessionFactory spawns a session from resolved options.
type SessionFactory func(logger *zap.Logger, options tclshell.SessionOptions) (CommandSession, error)

// LoggerProvider supplies the logger configured by the root command.
type LoggerProvider func() *zap.Logger

// LineReader yields one input line per call, returning io.EOF when exhausted.
type LineReader interface {
	Readline() (string, error)
	Close() error
}

// LineReaderFactory opens the interactive prompt.
type LineReaderFactory func() (LineReader, error)

// CommandBuilder assembles the shell command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() tclshell.SessionConfiguration
	SessionFactory        SessionFactory
	LineReaderFactory     LineReaderFactory
}

// Build constructs the shell command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	logger := builder.resolveLogger()
	sessionOptions := builder.resolveConfiguration().Options()

	session, spawnError := builder.spawnSession(logger, sessionOptions)
	if spawnError != nil {
		return fmt.Errorf(spawnErrorTemplateConstant, spawnError)
	}
	defer func() {
		if closeError := session.Close(); closeError != nil {
			logger.Warn(sessionClosedMessageConstant, zap.Error(closeError))
		}
	}()

	lineReader, readerError := builder.openLineReader()
	if readerError != nil {
		return fmt.Errorf(readlineErrorTemplateConstant, readerError)
	}
	defer lineReader.Close()

	return builder.replLoop(command, session, lineReader)
}

func (builder *CommandBuilder) replLoop(command *cobra.Command, session CommandSession, lineReader LineReader) error {
	for {
		line, readError := lineReader.Readline()
		if readError != nil {
			if errors.Is(readError, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(readError, io.EOF) {
				return nil
			}
			return readError
		}

		input := strings.TrimSpace(line)
		switch input {
		case "":
			continue
		case exitInputConstant, quitInputConstant:
			return nil
		}

		result, executionError := session.Execute(command.Context(), input)
		if executionError != nil {
			fmt.Fprintf(command.ErrOrStderr(), errorOutputTemplateConstant, executionError)
			if !sessionStillUsable(executionError) {
				return executionError
			}
			continue
		}

		fmt.Fprintln(command.OutOrStdout(), result)
	}
}

// sessionStillUsable reports whether the REPL can keep going after a failure.
// Evaluation errors leave the shell alive; transport and timeout failures do not.
func sessionStillUsable(executionError error) bool {
	var evalError tclshell.EvalError
	return errors.As(executionError, &evalError)
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

func (builder *CommandBuilder) openLineReader() (LineReader, error) {
	if builder.LineReaderFactory != nil {
		return builder.LineReaderFactory()
	}

	readlineInstance, readlineError := readline.NewEx(&readline.Config{
		Prompt:          promptConstant,
		HistoryLimit:    historyLimitConstant,
		InterruptPrompt: "^C",
		EOFPrompt:       exitInputConstant,
	})
	if readlineError != nil {
		return nil, readlineError
	}
	return readlineInstance, nil
}
