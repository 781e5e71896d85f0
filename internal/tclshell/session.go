package tclshell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	sentinelPrefixConstant              = "_QUARTUSTCL_SENTINEL"
	sentinelStartSuffixConstant         = "_START"
	sentinelEndSuffixConstant           = "_END"
	sentinelTemplateConstant            = "%s_%d%s"
	resultVariableNameConstant          = "_quartustcl_result"
	framedCommandTemplateConstant       = `puts "%s"; if {[catch {puts [%s]} %s]} { puts -nonewline "%s 1 "; puts $%s } else { puts "%s 0 ok" }`
	gracefulExitCommandConstant         = "exit"
	commandTerminatorConstant           = "\n"
	writeOperationNameConstant          = "command write"
	readOperationNameConstant           = "output read"
	startupCommandErrorTemplateConstant = "startup command failed: %w"
	successStatusTokenConstant          = "0"
	endSentinelFieldCountConstant       = 3
	endSentinelFieldSeparatorConstant   = " "
	lineChannelCapacityConstant         = 64
	initialLineBufferBytesConstant      = 64 * 1024
	maximumLineBufferBytesConstant      = 4 * 1024 * 1024
	newlineRuneConstant                 = '\n'
)

// Session owns one interpreter child process and frames commands over its
// pipes using per-command sentinel tokens. At most one command is in flight
// at a time; concurrent callers are serialized.
//
// The sentinel protocol is heuristic: a command could in principle emit a
// line identical to its sentinel. Deriving sentinels from a monotonically
// increasing counter under an unlikely prefix keeps the collision window
// negligible without attempting a cryptographic fix.
type Session struct {
	observer    CommandEventObserver
	options     SessionOptions
	process     ShellProcess
	inputWriter io.WriteCloser
	outputLines chan string

	executionMutex  sync.Mutex
	stateMutex      sync.Mutex
	sentinelCounter uint64
	stickyFailure   error
	closed          bool
}

// Spawn launches an interpreter with operating system facilities.
func Spawn(logger *zap.Logger, options SessionOptions) (*Session, error) {
	return NewSession(logger, NewOSProcessLauncher(), options)
}

// NewSession launches an interpreter through the supplied launcher and runs
// the configured startup command, if any, before returning.
func NewSession(logger *zap.Logger, launcher ProcessLauncher, options SessionOptions) (*Session, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if launcher == nil {
		return nil, ErrLauncherNotConfigured
	}

	options = options.withDefaults()

	process, launchError := launcher.Launch(options)
	if launchError != nil {
		return nil, launchError
	}

	session := &Session{
		observer:    NewLoggingCommandEventObserver(logger),
		options:     options,
		process:     process,
		inputWriter: process.InputWriter(),
		outputLines: make(chan string, lineChannelCapacityConstant),
	}

	go session.readOutputLines()

	if len(strings.TrimSpace(options.StartupCommand)) > 0 {
		if _, startupError := session.Execute(context.Background(), options.StartupCommand); startupError != nil {
			_ = session.Close()
			return nil, fmt.Errorf(startupCommandErrorTemplateConstant, startupError)
		}
	}

	return session, nil
}

// Execute writes one command line to the interpreter and blocks until its
// full output, delimited by a fresh sentinel pair, has been read back.
//
// A shell-side fault returns EvalError and leaves the session usable. A
// closed output stream or an expired context permanently invalidates the
// session; every later call fails fast with the same error. Results come
// back strictly in the order commands were issued.
func (session *Session) Execute(executionContext context.Context, command string) (string, error) {
	session.executionMutex.Lock()
	defer session.executionMutex.Unlock()

	if usabilityError := session.usabilityError(); usabilityError != nil {
		return "", usabilityError
	}
	if strings.ContainsRune(command, newlineRuneConstant) {
		return "", ErrMultilineCommand
	}

	if executionContext == nil {
		executionContext = context.Background()
	}
	if session.options.CommandTimeout > 0 {
		var cancelTimeout context.CancelFunc
		executionContext, cancelTimeout = context.WithTimeout(executionContext, session.options.CommandTimeout)
		defer cancelTimeout()
	}

	session.sentinelCounter++
	startSentinel := fmt.Sprintf(sentinelTemplateConstant, sentinelPrefixConstant, session.sentinelCounter, sentinelStartSuffixConstant)
	endSentinel := fmt.Sprintf(sentinelTemplateConstant, sentinelPrefixConstant, session.sentinelCounter, sentinelEndSuffixConstant)
	framedCommand := fmt.Sprintf(
		framedCommandTemplateConstant,
		startSentinel,
		command,
		resultVariableNameConstant,
		endSentinel,
		resultVariableNameConstant,
		endSentinel,
	)

	session.observer.CommandStarted(command, startSentinel)
	startedAt := time.Now()

	if _, writeError := io.WriteString(session.inputWriter, framedCommand+commandTerminatorConstant); writeError != nil {
		transportFailure := TransportError{Operation: writeOperationNameConstant, Cause: writeError}
		session.recordStickyFailure(transportFailure)
		session.observer.CommandFailed(command, transportFailure, time.Since(startedAt))
		return "", transportFailure
	}

	result, collectionError := session.collectResult(executionContext, command, startSentinel, endSentinel)
	if collectionError != nil {
		session.observer.CommandFailed(command, collectionError, time.Since(startedAt))
		return "", collectionError
	}

	session.observer.CommandCompleted(command, result, time.Since(startedAt))
	return result, nil
}

// Close shuts the interpreter down, waiting out the shutdown grace period
// before force-terminating, and always releases the pipe handles. Closing
// an already-closed session is a no-op.
func (session *Session) Close() error {
	session.stateMutex.Lock()
	if session.closed {
		session.stateMutex.Unlock()
		return nil
	}
	session.closed = true
	transportBroken := session.stickyFailure != nil
	session.stateMutex.Unlock()

	if !transportBroken {
		_, _ = io.WriteString(session.inputWriter, gracefulExitCommandConstant+commandTerminatorConstant)
	}
	_ = session.inputWriter.Close()

	go session.drainOutputLines()

	exitResult := make(chan error, 1)
	go func() {
		exitResult <- session.process.WaitForExit()
	}()

	select {
	case <-exitResult:
	case <-time.After(session.options.ShutdownGracePeriod):
		_ = session.process.Terminate()
		<-exitResult
	}

	return nil
}

func (session *Session) collectResult(executionContext context.Context, command string, startSentinel string, endSentinel string) (string, error) {
	var accumulated strings.Builder
	sawStartSentinel := false

	for {
		select {
		case line, streamOpen := <-session.outputLines:
			if !streamOpen {
				transportFailure := TransportError{Operation: readOperationNameConstant, Cause: io.EOF}
				session.recordStickyFailure(transportFailure)
				return "", transportFailure
			}
			if !sawStartSentinel {
				// The interpreter echoes prompts before the start marker, so
				// the marker may share a line with prompt text.
				if strings.HasSuffix(strings.TrimSpace(line), startSentinel) {
					sawStartSentinel = true
				}
				continue
			}
			if strings.HasPrefix(line, endSentinel) {
				return session.interpretEndSentinel(command, line, accumulated.String())
			}
			accumulated.WriteString(line)
			accumulated.WriteString(commandTerminatorConstant)
		case <-executionContext.Done():
			timeoutFailure := TimeoutError{Command: command, Cause: executionContext.Err()}
			session.recordStickyFailure(timeoutFailure)
			return "", timeoutFailure
		}
	}
}

func (session *Session) interpretEndSentinel(command string, endLine string, accumulatedOutput string) (string, error) {
	statusFields := strings.SplitN(endLine, endSentinelFieldSeparatorConstant, endSentinelFieldCountConstant)
	if len(statusFields) >= 2 && statusFields[1] == successStatusTokenConstant {
		return strings.TrimSpace(accumulatedOutput), nil
	}

	message := ""
	if len(statusFields) == endSentinelFieldCountConstant {
		message = statusFields[2]
	}
	return "", EvalError{
		Command: command,
		Message: message,
		Output:  strings.TrimSpace(accumulatedOutput),
	}
}

func (session *Session) readOutputLines() {
	lineScanner := bufio.NewScanner(session.process.OutputReader())
	lineScanner.Buffer(make([]byte, initialLineBufferBytesConstant), maximumLineBufferBytesConstant)
	for lineScanner.Scan() {
		session.outputLines <- lineScanner.Text()
	}
	close(session.outputLines)
}

func (session *Session) drainOutputLines() {
	for range session.outputLines {
	}
}

func (session *Session) usabilityError() error {
	session.stateMutex.Lock()
	defer session.stateMutex.Unlock()
	if session.stickyFailure != nil {
		return session.stickyFailure
	}
	if session.closed {
		return ErrSessionClosed
	}
	return nil
}

func (session *Session) recordStickyFailure(failure error) {
	session.stateMutex.Lock()
	defer session.stateMutex.Unlock()
	if session.stickyFailure == nil {
		session.stickyFailure = failure
	}
}
