package run_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	runcmd "github.com/agrif/quartustcl/cmd/cli/run"
	"github.com/agrif/quartustcl/internal/tclshell"
)

const (
	testCommandResultConstant            = "{Device A} {Device B}"
	testConfiguredTimeoutSecondsConstant = 7
)

type fakeCommandSession struct {
	executedCommands []string
	scriptedResult   string
	scriptedError    error
	closed           bool
}

func (session *fakeCommandSession) Execute(executionContext context.Context, command string) (string, error) {
	session.executedCommands = append(session.executedCommands, command)
	if session.scriptedError != nil {
		return "", session.scriptedError
	}
	return session.scriptedResult, nil
}

func (session *fakeCommandSession) Close() error {
	session.closed = true
	return nil
}

func buildTestCommand(testInstance *testing.T, session *fakeCommandSession, capturedOptions *tclshell.SessionOptions) (*runcmd.CommandBuilder, *bytes.Buffer) {
	testInstance.Helper()

	builder := &runcmd.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return zap.NewNop()
		},
		ConfigurationProvider: func() tclshell.SessionConfiguration {
			return tclshell.SessionConfiguration{Executable: "tclsh", TimeoutSeconds: testConfiguredTimeoutSecondsConstant}
		},
		SessionFactory: func(logger *zap.Logger, options tclshell.SessionOptions) (runcmd.CommandSession, error) {
			if capturedOptions != nil {
				*capturedOptions = options
			}
			return session, nil
		},
	}

	return builder, &bytes.Buffer{}
}

func TestRunCommandPrintsRawResult(testInstance *testing.T) {
	session := &fakeCommandSession{scriptedResult: testCommandResultConstant}
	builder, outputBuffer := buildTestCommand(testInstance, session, nil)

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetOut(outputBuffer)
	command.SetArgs([]string{"get_device_names", "-hardware_name", "Foo"})

	require.NoError(testInstance, command.Execute())
	require.Equal(testInstance, []string{"get_device_names -hardware_name Foo"}, session.executedCommands)
	require.Equal(testInstance, testCommandResultConstant+"\n", outputBuffer.String())
	require.True(testInstance, session.closed)
}

func TestRunCommandPrintsNestedTree(testInstance *testing.T) {
	session := &fakeCommandSession{scriptedResult: testCommandResultConstant}
	builder, outputBuffer := buildTestCommand(testInstance, session, nil)

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetOut(outputBuffer)
	command.SetArgs([]string{"--levels", "1", "get_device_names"})

	require.NoError(testInstance, command.Execute())
	require.Equal(testInstance, "Device A\nDevice B\n", outputBuffer.String())
}

func TestRunCommandRequiresArguments(testInstance *testing.T) {
	session := &fakeCommandSession{}
	builder, outputBuffer := buildTestCommand(testInstance, session, nil)

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)
	command.SetArgs([]string{})

	require.Error(testInstance, command.Execute())
	require.Empty(testInstance, session.executedCommands)
}

func TestRunCommandPropagatesEvaluationErrors(testInstance *testing.T) {
	session := &fakeCommandSession{scriptedError: tclshell.EvalError{Command: "boom", Message: "invalid command name \"boom\""}}
	builder, outputBuffer := buildTestCommand(testInstance, session, nil)

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetOut(outputBuffer)
	command.SetErr(outputBuffer)
	command.SetArgs([]string{"boom"})

	executionError := command.Execute()
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "invalid command name")
	require.True(testInstance, session.closed)
}

func TestRunCommandTimeoutFlagOverridesConfiguration(testInstance *testing.T) {
	session := &fakeCommandSession{scriptedResult: "ok"}
	capturedOptions := tclshell.SessionOptions{}
	builder, outputBuffer := buildTestCommand(testInstance, session, &capturedOptions)

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetOut(outputBuffer)
	command.SetArgs([]string{"--timeout", "3", "puts", "hi"})

	require.NoError(testInstance, command.Execute())
	require.Equal(testInstance, "3s", capturedOptions.CommandTimeout.String())
}
