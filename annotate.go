package precognise

import (
	"context"
	"slices"
	"strings"

	"github.com/osper-os/precognise/argparse"
)

// Handler runs a command. It receives the invocation record built from the parsed input and
// returns the command's result.
type Handler func(ctx context.Context, call *Call) (any, error)

// Command describes an invocable command of a [CommandGroup]. Build one with [NewCommand] and the
// chainable setters; arguments are registered in the order they are added.
type Command struct {
	name    string
	help    string
	doc     string
	args    []*Arg
	handler Handler
}

// NewCommand returns a command invoked as name that runs h.
func NewCommand(name string, h Handler) *Command {
	return &Command{name: name, handler: h}
}

// Help sets the help text shown for the command. It takes precedence over [Command.Doc].
func (c *Command) Help(text string) *Command {
	c.help = text
	return c
}

// Doc sets the handler's documentation text. It is used as help text when no explicit help is
// set.
func (c *Command) Doc(text string) *Command {
	c.doc = text
	return c
}

// Args appends argument descriptors, in command-line order.
func (c *Command) Args(args ...*Arg) *Command {
	c.args = append(c.args, args...)
	return c
}

// Name returns the command token.
func (c *Command) Name() string { return c.name }

// HelpText resolves the command's help: explicit help, else the documentation text, else empty.
func (c *Command) HelpText() string {
	if c.help != "" {
		return c.help
	}
	return strings.TrimSpace(c.doc)
}

// Arguments returns the command's argument descriptors in declared order.
func (c *Command) Arguments() []*Arg {
	return slices.Clone(c.args)
}

// Action is what the parser does with an option when it is given.
type Action int

const (
	// Store keeps the option's value, converted to the argument's kind.
	Store Action = iota
	// StoreTrue sets a boolean to true. The option takes no value.
	StoreTrue
	// StoreFalse sets a boolean to false. The option takes no value.
	StoreFalse
	// Append collects every occurrence of a repeated option into a []string.
	Append
)

func (a Action) String() string {
	switch a {
	case Store:
		return "store"
	case StoreTrue:
		return "store_true"
	case StoreFalse:
		return "store_false"
	case Append:
		return "append"
	default:
		return "unknown"
	}
}

// Arg describes one argument of a command: its flag tokens and how the parser treats it.
//
// A single token without a leading dash declares a positional argument, which is required unless
// Required(false) is set. One or more dash-prefixed tokens declare an option, e.g.
// NewArg("-o", "--output").
type Arg struct {
	flags       []string
	help        string
	def         string
	hasDefault  bool
	required    bool
	requiredSet bool
	choices     []string
	action      Action
	kind        argparse.Kind
}

// NewArg returns an argument descriptor for the given flag tokens.
func NewArg(flags ...string) *Arg {
	return &Arg{flags: flags}
}

// Help sets the argument's help text.
func (a *Arg) Help(text string) *Arg {
	a.help = text
	return a
}

// Default sets the raw value used when the argument is omitted. It is converted like input.
func (a *Arg) Default(v string) *Arg {
	a.def = v
	a.hasDefault = true
	return a
}

// Required marks the argument as mandatory (options) or optional (positionals).
func (a *Arg) Required(required bool) *Arg {
	a.required = required
	a.requiredSet = true
	return a
}

// Choices restricts the accepted values.
func (a *Arg) Choices(choices ...string) *Arg {
	a.choices = choices
	return a
}

// Action sets what the parser does with the option.
func (a *Arg) Action(action Action) *Arg {
	a.action = action
	return a
}

// StoreTrue is shorthand for Action(StoreTrue).
func (a *Arg) StoreTrue() *Arg {
	return a.Action(StoreTrue)
}

// Kind sets the type the value is converted to. The default is a string.
func (a *Arg) Kind(k argparse.Kind) *Arg {
	a.kind = k
	return a
}

// Flags returns the argument's flag tokens.
func (a *Arg) Flags() []string {
	return slices.Clone(a.flags)
}

// Positional reports whether the argument is positional rather than an option.
func (a *Arg) Positional() bool {
	return len(a.flags) == 1 && !strings.HasPrefix(a.flags[0], "-")
}

// Dest returns the canonical name the parsed value is stored under: the primary flag token (the
// first "--" token, else the first token) with leading dashes removed and inner dashes turned into
// underscores. "--opt-arg" becomes "opt_arg".
func (a *Arg) Dest() string {
	return strings.ReplaceAll(a.key(), "-", "_")
}

// key is the name the argument is registered under in the parser.
func (a *Arg) key() string {
	if len(a.flags) == 0 {
		return ""
	}
	primary := a.flags[0]
	for _, f := range a.flags {
		if strings.HasPrefix(f, "--") {
			primary = f
			break
		}
	}
	return strings.TrimLeft(primary, "-")
}
