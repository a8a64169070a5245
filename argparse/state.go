package argparse

import (
	"flag"
	"fmt"
	"io"
)

// State represents the result of parsing: the selected command path, the values of every flag
// and positional argument on that path, and the I/O streams used when running it. Use [Get] to
// retrieve values by name.
type State struct {
	// Args contains the positional arguments left after the declared ones were bound.
	Args []string

	// Standard I/O streams.
	Stdin          io.Reader
	Stdout, Stderr io.Writer

	commandPath []*Command
	flags       *flag.FlagSet
	values      map[string]any
}

// Selected returns the deepest command resolved by the last parse.
func (s *State) Selected() *Command {
	if s == nil || len(s.commandPath) == 0 {
		return nil
	}
	return s.commandPath[len(s.commandPath)-1]
}

// Path returns the resolved commands from the root to the selected one.
func (s *State) Path() []*Command {
	return s.commandPath
}

// Lookup returns the value of a positional argument or flag by name. Positional arguments win
// over flags of the same name.
func (s *State) Lookup(name string) (any, bool) {
	if v, ok := s.values[name]; ok {
		return v, true
	}
	if s.flags == nil {
		return nil, false
	}
	f := s.flags.Lookup(name)
	if f == nil {
		return nil, false
	}
	if getter, ok := f.Value.(flag.Getter); ok {
		return getter.Get(), true
	}
	return f.Value.String(), true
}

// Get retrieves a value by name, with type inference. Example usage:
//
//	verbose := argparse.Get[bool](state, "verbose")
//	count := argparse.Get[int](state, "count")
//	path := argparse.Get[string](state, "path")
//
// If the name isn't registered on the selected command path, or the registered type differs from
// T, Get panics. Both mean the command definition and the code reading it disagree, which is a
// programming error and should fail loudly.
func Get[T any](s *State, name string) T {
	value, ok := s.Lookup(name)
	if !ok {
		panic(fmt.Errorf("internal error: %q not found in command %q", name, getCommandPath(s.commandPath)))
	}
	v, ok := value.(T)
	if !ok {
		panic(fmt.Errorf("internal error: type mismatch for %q in command %q: registered %T, requested %T",
			name, getCommandPath(s.commandPath), value, *new(T)))
	}
	return v
}
