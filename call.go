package precognise

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/osper-os/precognise/argparse"
)

// Call is the invocation record handed to a [Handler]: which command was selected, the values of
// its arguments keyed by canonical name, and access to application-wide options.
type Call struct {
	// App is the application that parsed the input.
	App *App
	// Group is the group that owns the selected command.
	Group *CommandGroup
	// Command is the selected command.
	Command *Command
	// State is the raw parse result.
	State *argparse.State

	// Standard I/O streams.
	Stdin          io.Reader
	Stdout, Stderr io.Writer

	names    []string
	values   map[string]any
	rootKeys map[string]string
}

// newCall collects the values of b's parameters from the parse result, in declared order.
func newCall(app *App, b *binding, state *argparse.State, rootKeys map[string]string) *Call {
	c := &Call{
		App:      app,
		Group:    b.group,
		Command:  b.command,
		State:    state,
		names:    make([]string, 0, len(b.params)),
		values:   make(map[string]any, len(b.params)),
		rootKeys: rootKeys,
	}
	for _, p := range b.params {
		v, _ := state.Lookup(p.key)
		c.names = append(c.names, p.dest)
		c.values[p.dest] = v
	}
	return c
}

// Names returns the canonical argument names of the command, in declared order.
func (c *Call) Names() []string {
	return slices.Clone(c.names)
}

// Values returns the argument values keyed by canonical name.
func (c *Call) Values() map[string]any {
	return maps.Clone(c.values)
}

// Lookup returns the value of the named argument.
func (c *Call) Lookup(name string) (any, bool) {
	v, ok := c.values[name]
	return v, ok
}

// String returns the named argument as a string. See [Value].
func (c *Call) String(name string) string { return Value[string](c, name) }

// Bool returns the named argument as a bool. See [Value].
func (c *Call) Bool(name string) bool { return Value[bool](c, name) }

// Int returns the named argument as an int. See [Value].
func (c *Call) Int(name string) int { return Value[int](c, name) }

// Strings returns the named repeated argument. See [Value].
func (c *Call) Strings(name string) []string { return Value[[]string](c, name) }

// Global returns the value of an application-wide option, by canonical name ("api_version") or
// flag name ("api-version").
func (c *Call) Global(name string) (any, bool) {
	key, ok := c.rootKeys[name]
	if !ok {
		return nil, false
	}
	return c.State.Lookup(key)
}

// Value returns the named argument of the call as T. It panics if the command declares no such
// argument or it holds another type: the handler and its declaration disagree.
func Value[T any](c *Call, name string) T {
	v, ok := c.values[name]
	if !ok {
		panic(fmt.Errorf("internal error: command %q has no argument %q", c.Command.name, name))
	}
	t, ok := v.(T)
	if !ok {
		panic(fmt.Errorf("internal error: type mismatch for argument %q of command %q: registered %T, requested %T",
			name, c.Command.name, v, *new(T)))
	}
	return t
}

// Global returns an application-wide option as T. It panics like [Value].
func Global[T any](c *Call, name string) T {
	v, ok := c.Global(name)
	if !ok {
		panic(fmt.Errorf("internal error: no application option %q", name))
	}
	t, ok := v.(T)
	if !ok {
		panic(fmt.Errorf("internal error: type mismatch for application option %q: registered %T, requested %T",
			name, v, *new(T)))
	}
	return t
}
