package tclshell

import (
	"strings"
	"time"
)

const (
	defaultExecutableNameConstant      = "quartus_stp"
	defaultShellArgumentConstant       = "-s"
	defaultShutdownGracePeriodConstant = 5 * time.Second
	executableConfigurationKeyConstant = "executable"
	argumentsConfigurationKeyConstant  = "arguments"
	configurationKeySeparatorConstant  = "."
	secondsPerTimeoutUnitConstant      = time.Second
)

// SessionOptions describes how the interpreter process is spawned and driven.
type SessionOptions struct {
	// Executable is the shell binary to launch; defaults to quartus_stp.
	Executable string
	// Arguments are extra startup arguments; defaults to the -s subshell flag.
	Arguments []string
	// WorkingDirectory is the child's working directory when non-empty.
	WorkingDirectory string
	// StartupCommand, when non-empty, is executed through the normal
	// protocol immediately after spawn. Some shells host multiple named
	// contexts and need a default one entered before commands are valid.
	StartupCommand string
	// CommandTimeout bounds each Execute call when positive. Tripping it
	// permanently invalidates the session.
	CommandTimeout time.Duration
	// ShutdownGracePeriod bounds how long Close waits for a voluntary exit
	// before force-terminating the process.
	ShutdownGracePeriod time.Duration
}

func (options SessionOptions) withDefaults() SessionOptions {
	if len(strings.TrimSpace(options.Executable)) == 0 {
		options.Executable = defaultExecutableNameConstant
		if options.Arguments == nil {
			options.Arguments = []string{defaultShellArgumentConstant}
		}
	}
	if options.ShutdownGracePeriod <= 0 {
		options.ShutdownGracePeriod = defaultShutdownGracePeriodConstant
	}
	return options
}

// SessionConfiguration is the persisted form of SessionOptions.
type SessionConfiguration struct {
	Executable           string   `mapstructure:"executable"`
	Arguments            []string `mapstructure:"arguments"`
	WorkingDirectory     string   `mapstructure:"working_directory"`
	StartupCommand       string   `mapstructure:"startup_command"`
	TimeoutSeconds       int      `mapstructure:"timeout_seconds"`
	ShutdownGraceSeconds int      `mapstructure:"shutdown_grace_seconds"`
}

// Options converts the persisted configuration into spawn options.
func (configuration SessionConfiguration) Options() SessionOptions {
	return SessionOptions{
		Executable:          configuration.Executable,
		Arguments:           configuration.Arguments,
		WorkingDirectory:    configuration.WorkingDirectory,
		StartupCommand:      configuration.StartupCommand,
		CommandTimeout:      time.Duration(configuration.TimeoutSeconds) * secondsPerTimeoutUnitConstant,
		ShutdownGracePeriod: time.Duration(configuration.ShutdownGraceSeconds) * secondsPerTimeoutUnitConstant,
	}
}

// DefaultConfigurationValues exposes spawn defaults for configuration loaders.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		configurationKeyPrefix + configurationKeySeparatorConstant + executableConfigurationKeyConstant: defaultExecutableNameConstant,
		configurationKeyPrefix + configurationKeySeparatorConstant + argumentsConfigurationKeyConstant:  []string{defaultShellArgumentConstant},
	}
}
