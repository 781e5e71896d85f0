package tclcall

import (
	"strings"

	"github.com/agrif/quartustcl/internal/tcllist"
)

const (
	commandWordSeparatorConstant = " "
	flagNamePrefixConstant       = "-"
)

// CommandFlag is one keyword argument of a command. A flag without a value
// is omitted from the command line entirely; an explicitly empty value is
// emitted as an empty brace group.
type CommandFlag struct {
	Name     string
	Value    string
	HasValue bool
}

// NewCommandFlag builds a flag carrying a value.
func NewCommandFlag(name string, value string) CommandFlag {
	return CommandFlag{Name: name, Value: value, HasValue: true}
}

// BuildCommand assembles a command line from a name, positional arguments,
// and keyword flags. Every argument value is quoted so the shell's lexer
// reads it back verbatim; flags keep the order they were supplied in.
func BuildCommand(commandName string, positionalArguments []string, commandFlags []CommandFlag) string {
	commandWords := make([]string, 0, 1+len(positionalArguments)+2*len(commandFlags))
	commandWords = append(commandWords, commandName)
	for _, positionalArgument := range positionalArguments {
		commandWords = append(commandWords, tcllist.Quote(positionalArgument))
	}
	for _, commandFlag := range commandFlags {
		if !commandFlag.HasValue {
			continue
		}
		commandWords = append(commandWords, flagNamePrefixConstant+commandFlag.Name, tcllist.Quote(commandFlag.Value))
	}
	return strings.Join(commandWords, commandWordSeparatorConstant)
}
