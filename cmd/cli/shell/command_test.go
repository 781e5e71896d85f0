package shell_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	shellcmd "github.com/agrif/quartustcl/cmd/cli/shell"
	"github.com/agrif/quartustcl/internal/tclshell"
)

type scriptedResponse struct {
	result  string
	failure error
}

type fakeReplSession struct {
	executedCommands []string
	responses        []scriptedResponse
	closed           bool
}

func (session *fakeReplSession) Execute(executionContext context.Context, command string) (string, error) {
	session.executedCommands = append(session.executedCommands, command)
	if len(session.responses) == 0 {
		return "", nil
	}
	response := session.responses[0]
	session.responses = session.responses[1:]
	return response.result, response.failure
}

func (session *fakeReplSession) Close() error {
	session.closed = true
	return nil
}

type scriptedLineReader struct {
	lines  []string
	closed bool
}

func (reader *scriptedLineReader) Readline() (string, error) {
	if len(reader.lines) == 0 {
		return "", io.EOF
	}
	line := reader.lines[0]
	reader.lines = reader.lines[1:]
	return line, nil
}

func (reader *scriptedLineReader) Close() error {
	reader.closed = true
	return nil
}

func buildReplCommand(testInstance *testing.T, session *fakeReplSession, reader *scriptedLineReader) (*shellcmd.CommandBuilder, *bytes.Buffer, *bytes.Buffer) {
	testInstance.Helper()

	builder := &shellcmd.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return zap.NewNop()
		},
		ConfigurationProvider: func() tclshell.SessionConfiguration {
			return tclshell.SessionConfiguration{Executable: "tclsh"}
		},
		SessionFactory: func(logger *zap.Logger, options tclshell.SessionOptions) (shellcmd.CommandSession, error) {
			return session, nil
		},
		LineReaderFactory: func() (shellcmd.LineReader, error) {
			return reader, nil
		},
	}

	return builder, &bytes.Buffer{}, &bytes.Buffer{}
}

func TestShellCommandForwardsLinesAndPrintsResults(testInstance *testing.T) {
	session := &fakeReplSession{responses: []scriptedResponse{{result: "4"}, {result: "hello world"}}}
	reader := &scriptedLineReader{lines: []string{"expr {2 + 2}", "  ", "puts hello"}}
	builder, outputBuffer, errorBuffer := buildReplCommand(testInstance, session, reader)

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetOut(outputBuffer)
	command.SetErr(errorBuffer)

	require.NoError(testInstance, command.Execute())
	require.Equal(testInstance, []string{"expr {2 + 2}", "puts hello"}, session.executedCommands)
	require.Equal(testInstance, "4\nhello world\n", outputBuffer.String())
	require.Empty(testInstance, errorBuffer.String())
	require.True(testInstance, session.closed)
	require.True(testInstance, reader.closed)
}

func TestShellCommandKeepsGoingAfterEvaluationError(testInstance *testing.T) {
	session := &fakeReplSession{responses: []scriptedResponse{
		{failure: tclshell.EvalError{Command: "boom", Message: "invalid command name \"boom\""}},
		{result: "recovered"},
	}}
	reader := &scriptedLineReader{lines: []string{"boom", "puts recovered"}}
	builder, outputBuffer, errorBuffer := buildReplCommand(testInstance, session, reader)

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetOut(outputBuffer)
	command.SetErr(errorBuffer)

	require.NoError(testInstance, command.Execute())
	require.Equal(testInstance, []string{"boom", "puts recovered"}, session.executedCommands)
	require.Contains(testInstance, errorBuffer.String(), "invalid command name")
	require.Equal(testInstance, "recovered\n", outputBuffer.String())
}

func TestShellCommandStopsOnTransportFailure(testInstance *testing.T) {
	session := &fakeReplSession{responses: []scriptedResponse{
		{failure: tclshell.TransportError{Operation: "read", Cause: io.EOF}},
	}}
	reader := &scriptedLineReader{lines: []string{"puts hi", "puts never"}}
	builder, outputBuffer, errorBuffer := buildReplCommand(testInstance, session, reader)

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetOut(outputBuffer)
	command.SetErr(errorBuffer)

	require.Error(testInstance, command.Execute())
	require.Equal(testInstance, []string{"puts hi"}, session.executedCommands)
	require.True(testInstance, session.closed)
}

func TestShellCommandExitsOnRequest(testInstance *testing.T) {
	session := &fakeReplSession{}
	reader := &scriptedLineReader{lines: []string{"exit", "puts never"}}
	builder, outputBuffer, errorBuffer := buildReplCommand(testInstance, session, reader)

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetOut(outputBuffer)
	command.SetErr(errorBuffer)

	require.NoError(testInstance, command.Execute())
	require.Empty(testInstance, session.executedCommands)
	require.True(testInstance, session.closed)
}
