package tclshell

import (
	"fmt"
	"io"
	"os"
	"os/exec"
)

const (
	spawnErrorTemplateConstant     = "unable to spawn shell %s: %w"
	pipeSetupErrorTemplateConstant = "unable to prepare shell pipes: %w"
)

// ShellProcess is a running interpreter as seen by a session. The session
// owns both pipes exclusively; no other component may touch them.
type ShellProcess interface {
	// InputWriter accepts command lines terminated by newlines.
	InputWriter() io.WriteCloser
	// OutputReader yields the merged standard output and standard error
	// streams of the interpreter.
	OutputReader() io.Reader
	// WaitForExit blocks until the process leaves the process table and
	// releases its handles.
	WaitForExit() error
	// Terminate force-kills a process that ignored a graceful shutdown.
	Terminate() error
}

// ProcessLauncher starts interpreter processes.
type ProcessLauncher interface {
	Launch(options SessionOptions) (ShellProcess, error)
}

// OSProcessLauncher spawns interpreters using operating system facilities.
type OSProcessLauncher struct{}

// NewOSProcessLauncher constructs a launcher backed by os/exec.
func NewOSProcessLauncher() *OSProcessLauncher {
	return &OSProcessLauncher{}
}

// Launch starts the interpreter with stdin piped and stderr merged into
// stdout, so shell diagnostics surface in error details rather than
// vanishing.
func (launcher *OSProcessLauncher) Launch(options SessionOptions) (ShellProcess, error) {
	executable := exec.Command(options.Executable, options.Arguments...)
	if len(options.WorkingDirectory) > 0 {
		executable.Dir = options.WorkingDirectory
	}

	inputWriter, inputPipeError := executable.StdinPipe()
	if inputPipeError != nil {
		return nil, fmt.Errorf(pipeSetupErrorTemplateConstant, inputPipeError)
	}

	outputReadSide, outputWriteSide, outputPipeError := os.Pipe()
	if outputPipeError != nil {
		return nil, fmt.Errorf(pipeSetupErrorTemplateConstant, outputPipeError)
	}
	executable.Stdout = outputWriteSide
	executable.Stderr = outputWriteSide

	if startError := executable.Start(); startError != nil {
		_ = outputReadSide.Close()
		_ = outputWriteSide.Close()
		return nil, fmt.Errorf(spawnErrorTemplateConstant, options.Executable, startError)
	}

	// The child holds its own copy of the write side; dropping ours lets
	// the read side observe EOF when the child exits.
	_ = outputWriteSide.Close()

	return &osShellProcess{executable: executable, inputWriter: inputWriter, outputReader: outputReadSide}, nil
}

type osShellProcess struct {
	executable   *exec.Cmd
	inputWriter  io.WriteCloser
	outputReader *os.File
}

func (process *osShellProcess) InputWriter() io.WriteCloser {
	return process.inputWriter
}

func (process *osShellProcess) OutputReader() io.Reader {
	return process.outputReader
}

func (process *osShellProcess) WaitForExit() error {
	waitError := process.executable.Wait()
	_ = process.outputReader.Close()
	return waitError
}

func (process *osShellProcess) Terminate() error {
	if process.executable.Process == nil {
		return nil
	}
	return process.executable.Process.Kill()
}
