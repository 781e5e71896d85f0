package tclshell

import (
	"time"

	"go.uber.org/zap"
)

const (
	commandDispatchedMessageConstant = "tcl command dispatched"
	commandCompletedMessageConstant  = "tcl command completed"
	commandFailedMessageConstant     = "tcl command failed"
	logFieldCommandConstant          = "command"
	logFieldSentinelConstant         = "sentinel"
	logFieldDurationConstant         = "duration"
	logFieldResultBytesConstant      = "result_bytes"
)

// CommandEventObserver receives lifecycle notifications for protocol round-trips.
type CommandEventObserver interface {
	// CommandStarted notifies observers that a framed command was written.
	CommandStarted(command string, sentinel string)
	// CommandCompleted notifies observers that the sentinel was observed and
	// supplies the raw result.
	CommandCompleted(command string, result string, duration time.Duration)
	// CommandFailed reports shell-side faults and transport failures alike.
	CommandFailed(command string, failure error, duration time.Duration)
}

// NewLoggingCommandEventObserver logs round-trip events through zap.
func NewLoggingCommandEventObserver(logger *zap.Logger) CommandEventObserver {
	return &loggingCommandEventObserver{logger: logger}
}

type loggingCommandEventObserver struct {
	logger *zap.Logger
}

// CommandStarted implements CommandEventObserver for the logging observer.
func (observer *loggingCommandEventObserver) CommandStarted(command string, sentinel string) {
	observer.logger.Debug(
		commandDispatchedMessageConstant,
		zap.String(logFieldCommandConstant, command),
		zap.String(logFieldSentinelConstant, sentinel),
	)
}

// CommandCompleted implements CommandEventObserver for the logging observer.
func (observer *loggingCommandEventObserver) CommandCompleted(command string, result string, duration time.Duration) {
	observer.logger.Debug(
		commandCompletedMessageConstant,
		zap.String(logFieldCommandConstant, command),
		zap.Duration(logFieldDurationConstant, duration),
		zap.Int(logFieldResultBytesConstant, len(result)),
	)
}

// CommandFailed implements CommandEventObserver for the logging observer.
func (observer *loggingCommandEventObserver) CommandFailed(command string, failure error, duration time.Duration) {
	observer.logger.Warn(
		commandFailedMessageConstant,
		zap.String(logFieldCommandConstant, command),
		zap.Duration(logFieldDurationConstant, duration),
		zap.Error(failure),
	)
}
