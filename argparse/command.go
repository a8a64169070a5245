package argparse

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/osper-os/precognise/pkg/suggest"
)

// NoExecError is returned when the selected command has no execution function.
type NoExecError struct {
	Command *Command
}

func (e *NoExecError) Error() string {
	return fmt.Sprintf("command %q has no execution function", e.Command.FullName())
}

// Command represents a node in the command tree: the root program, a group of commands, or a
// single invocable command.
type Command struct {
	// Name is always a single word representing the command's name. It is used to identify the
	// command in the command hierarchy and in help text.
	Name string

	// Usage provides the command's full usage pattern. When empty, one is derived from the
	// command path, its flags and its positional arguments.
	//
	// Example: "demo api status [flags]"
	Usage string

	// ShortHelp is a brief description of the command's purpose. It is displayed in the help text
	// of the command itself and in the command listing of its parent.
	ShortHelp string

	// UsageFunc is an optional function that can be used to generate a custom usage string for the
	// command.
	UsageFunc func(*Command) string

	// Flags holds the command-specific flag definitions. Flags of every command on the selected
	// path are accepted anywhere after the command tokens.
	Flags *flag.FlagSet
	// FlagsMetadata is an optional list of flag information to extend the FlagSet with additional
	// metadata: required flags, allowed values and alternative spellings.
	FlagsMetadata []FlagMetadata

	// Args declares the command's positional arguments, bound in order.
	Args []ArgDef

	// Strict rejects positional arguments beyond those declared in Args. When false, the extra
	// arguments are left in [State.Args].
	Strict bool

	// SubCommands is a list of nested commands that exist under this command. A command with
	// subcommands and no Exec requires one of them to be named.
	SubCommands []*Command

	// Exec defines the command's execution logic. It receives the current application [State] and
	// returns an error if execution fails.
	Exec func(ctx context.Context, s *State) error

	state *State
}

// FlagMetadata holds additional metadata for a flag.
type FlagMetadata struct {
	// Name is the flag's name. Must match the flag name in the flag set.
	Name string

	// Aliases are other names registered in the same flag set for the same value, e.g. "o" for
	// "output". They are listed next to Name in help text.
	Aliases []string

	// Required indicates whether the flag must be given on the command line.
	Required bool

	// Choices restricts the values the flag accepts. Empty means anything goes.
	Choices []string
}

// names returns the flag name followed by its aliases.
func (m FlagMetadata) names() []string {
	return append([]string{m.Name}, m.Aliases...)
}

// ArgDef defines a positional argument.
type ArgDef struct {
	// Name identifies the argument in help text and in [State] lookups.
	Name string
	// Usage is the help text shown in the arguments section.
	Usage string
	// Kind controls how the raw token is converted. Defaults to [KindString].
	Kind Kind
	// Optional arguments may be omitted, in which case Default is used.
	Optional bool
	// Default is the raw value used for an omitted optional argument.
	Default string
	// Choices restricts the values the argument accepts.
	Choices []string
}

// FlagsFunc is a helper function that creates a new [flag.FlagSet] and applies the given function
// to it. Example usage:
//
//	cmd.Flags = argparse.FlagsFunc(func(f *flag.FlagSet) {
//	    f.Bool("verbose", false, "enable verbose output")
//	    f.String("output", "", "output file")
//	})
func FlagsFunc(fn func(*flag.FlagSet)) *flag.FlagSet {
	fset := flag.NewFlagSet("", flag.ContinueOnError)
	fn(fset)
	return fset
}

// State returns the result of the last parse that went through c, or nil.
func (c *Command) State() *State {
	return c.state
}

// FullName returns the space separated command path from the root to c, as seen by the last
// parse. Before parsing it is just the command's name.
func (c *Command) FullName() string {
	return getCommandPath(c.path())
}

// path returns the commands from the root down to c.
func (c *Command) path() []*Command {
	if c.state == nil {
		return []*Command{c}
	}
	for i, cmd := range c.state.commandPath {
		if cmd == c {
			return c.state.commandPath[:i+1]
		}
	}
	return []*Command{c}
}

// findSubCommand searches for a subcommand by name and returns it if found. Returns nil if no
// subcommand with the given name exists.
func (c *Command) findSubCommand(name string) *Command {
	for _, sub := range c.SubCommands {
		if strings.EqualFold(sub.Name, name) {
			return sub
		}
	}
	return nil
}

func (c *Command) unknownCommandError(unknownCmd string) error {
	known := make([]string, 0, len(c.SubCommands))
	for _, sub := range c.SubCommands {
		known = append(known, sub.Name)
	}
	if suggestions := suggest.FindSimilar(unknownCmd, known, 3); len(suggestions) > 0 {
		return c.errorf(ErrUnknownCommand, "unknown command %q. Did you mean one of these?\n\t%s",
			unknownCmd,
			strings.Join(suggestions, "\n\t"))
	}
	return c.errorf(ErrUnknownCommand, "unknown command %q (choose from %s)",
		unknownCmd, strings.Join(known, ", "))
}

// showHelp writes the command's usage to its flag set output and returns [flag.ErrHelp].
func (c *Command) showHelp() error {
	out := c.Flags.Output()
	fmt.Fprintln(out, DefaultUsage(c))
	return flag.ErrHelp
}

func getCommandPath(commands []*Command) string {
	names := make([]string, 0, len(commands))
	for _, c := range commands {
		names = append(names, c.Name)
	}
	return strings.Join(names, " ")
}
