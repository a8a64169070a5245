package argparse

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	t.Parallel()

	newState := func() *State {
		cmd := &Command{
			Name:  "root",
			Flags: FlagsFunc(func(f *flag.FlagSet) { f.String("version", "1.0.0", "show version") }),
		}
		return &State{
			commandPath: []*Command{cmd},
			flags:       cmd.Flags,
			values:      map[string]any{"arg1": "yay"},
		}
	}

	t.Run("flag not found", func(t *testing.T) {
		t.Parallel()
		defer func() {
			r := recover()
			require.NotNil(t, r)
			err, ok := r.(error)
			require.True(t, ok)
			assert.ErrorContains(t, err, `"verbose" not found in command "root"`)
		}()
		// Panic because author tried to access a flag that doesn't exist in any of the commands
		_ = Get[bool](newState(), "verbose")
	})
	t.Run("flag type mismatch", func(t *testing.T) {
		t.Parallel()
		defer func() {
			r := recover()
			require.NotNil(t, r)
			err, ok := r.(error)
			require.True(t, ok)
			assert.ErrorContains(t, err, `type mismatch for "version" in command "root": registered string, requested int`)
		}()
		// Panic because author tried to access a registered flag with the wrong type
		_ = Get[int](newState(), "version")
	})
	t.Run("positional and flag lookup", func(t *testing.T) {
		t.Parallel()
		s := newState()
		assert.Equal(t, "yay", Get[string](s, "arg1"))
		assert.Equal(t, "1.0.0", Get[string](s, "version"))
		_, ok := s.Lookup("missing")
		assert.False(t, ok)
	})
	t.Run("selected", func(t *testing.T) {
		t.Parallel()
		var s *State
		assert.Nil(t, s.Selected())
		assert.Equal(t, "root", newState().Selected().Name)
	})
}
