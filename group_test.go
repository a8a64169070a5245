package precognise

import (
	"context"
	"flag"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osper-os/precognise/argparse"
)

// justOne is a group with a single command that reports a fixed value.
type justOne struct {
	retval string
}

func (j *justOne) maybe(context.Context, *Call) (any, error) {
	return j.retval, nil
}

func newJustOneGroup() *CommandGroup {
	j := &justOne{retval: "success"}
	return &CommandGroup{
		Name: "demo",
		Help: "Demo command group",
		Commands: []*Command{
			NewCommand("callme", j.maybe).Doc(`Calls me, maybe.

This is the documentation for the command; an explicit help text overrides it.`),
		},
	}
}

func newParent() *argparse.Command {
	return &argparse.Command{
		Name:  "prog",
		Flags: argparse.FlagsFunc(func(fset *flag.FlagSet) { fset.SetOutput(io.Discard) }),
	}
}

// parseGroup builds g under a fresh root and parses args, returning the parse state and the
// binding of the selected command.
func parseGroup(t *testing.T, g *CommandGroup, args ...string) (*argparse.State, *binding, error) {
	t.Helper()
	root := newParent()
	_, err := g.Build(root)
	require.NoError(t, err)
	setOutput(root, io.Discard)
	if err := argparse.Parse(root, args); err != nil {
		return nil, nil, err
	}
	state := root.State()
	return state, g.bindings[state.Selected()], nil
}

func TestBuild(t *testing.T) {
	t.Parallel()

	t.Run("registers declared command name", func(t *testing.T) {
		t.Parallel()
		g := newJustOneGroup()
		root := newParent()

		built, err := g.Build(root)
		require.NoError(t, err)
		require.Same(t, g, built)
		require.Len(t, root.SubCommands, 1)
		node := root.SubCommands[0]
		assert.Same(t, node, g.Node())
		assert.Equal(t, "demo", node.Name)
		assert.Equal(t, "Demo command group", node.ShortHelp)
		require.Len(t, node.SubCommands, 1)
		assert.Equal(t, "callme", node.SubCommands[0].Name)
		assert.Contains(t, node.SubCommands[0].ShortHelp, "Calls me, maybe.")

		cmd, ok := g.Lookup("callme")
		require.True(t, ok)
		assert.Equal(t, "callme", cmd.Name())
		_, ok = g.Lookup("maybe")
		assert.False(t, ok)
	})
	t.Run("finds command", func(t *testing.T) {
		t.Parallel()

		_, b, err := parseGroup(t, newJustOneGroup(), "demo", "callme")
		require.NoError(t, err)
		require.NotNil(t, b)
		assert.Empty(t, b.params)
		result, err := b.command.handler(context.Background(), &Call{})
		require.NoError(t, err)
		assert.Equal(t, "success", result)
	})
	t.Run("bad command name", func(t *testing.T) {
		t.Parallel()

		_, _, err := parseGroup(t, newJustOneGroup(), "demo", "nosuchcommand")
		var perr *argparse.Error
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, argparse.ErrUnknownCommand, perr.Code)
	})
	t.Run("missing argument", func(t *testing.T) {
		t.Parallel()
		g := &CommandGroup{
			Name:     "demo",
			Commands: []*Command{NewCommand("callme", noop).Args(NewArg("arg1"))},
		}

		_, _, err := parseGroup(t, g, "demo", "callme")
		var perr *argparse.Error
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, argparse.ErrMissingArgument, perr.Code)
	})
	t.Run("positional args", func(t *testing.T) {
		t.Parallel()
		g := &CommandGroup{
			Name: "demo",
			Commands: []*Command{
				NewCommand("callme", noop).Args(NewArg("arg1"), NewArg("arg2")),
			},
		}

		state, b, err := parseGroup(t, g, "demo", "callme", "yay", "works")
		require.NoError(t, err)
		assert.Equal(t, "yay", argparse.Get[string](state, "arg1"))
		assert.Equal(t, "works", argparse.Get[string](state, "arg2"))
		assert.Equal(t, []param{{dest: "arg1", key: "arg1"}, {dest: "arg2", key: "arg2"}}, b.params)
	})
	t.Run("extra positional rejected", func(t *testing.T) {
		t.Parallel()
		g := &CommandGroup{
			Name:     "demo",
			Commands: []*Command{NewCommand("callme", noop)},
		}

		_, _, err := parseGroup(t, g, "demo", "callme", "extra")
		var perr *argparse.Error
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, argparse.ErrUnrecognizedArgs, perr.Code)
	})
}

func TestBuildArgumentOrder(t *testing.T) {
	t.Parallel()

	positionalFirst := func() *CommandGroup {
		return &CommandGroup{
			Name: "demo",
			Commands: []*Command{
				NewCommand("callme", noop).Args(
					NewArg("arg1"),
					NewArg("--opt-arg").Required(false).Default("1"),
				),
			},
		}
	}
	optionalFirst := func() *CommandGroup {
		return &CommandGroup{
			Name: "demo",
			Commands: []*Command{
				NewCommand("callme", noop).Args(
					NewArg("--opt-arg").Required(false).Default("1"),
					NewArg("arg1"),
				),
			},
		}
	}

	tests := []struct {
		name    string
		group   func() *CommandGroup
		args    []string
		arg1    string
		optArg  string
		ordered []string
	}{
		{
			name:    "positional then optional, default",
			group:   positionalFirst,
			args:    []string{"demo", "callme", "yay"},
			arg1:    "yay",
			optArg:  "1",
			ordered: []string{"arg1", "opt_arg"},
		},
		{
			name:    "positional then optional, given",
			group:   positionalFirst,
			args:    []string{"demo", "callme", "yay", "--opt-arg", "2"},
			arg1:    "yay",
			optArg:  "2",
			ordered: []string{"arg1", "opt_arg"},
		},
		{
			name:    "optional then positional, default",
			group:   optionalFirst,
			args:    []string{"demo", "callme", "yay"},
			arg1:    "yay",
			optArg:  "1",
			ordered: []string{"opt_arg", "arg1"},
		},
		{
			name:    "optional then positional, given",
			group:   optionalFirst,
			args:    []string{"demo", "callme", "--opt-arg", "2", "yay"},
			arg1:    "yay",
			optArg:  "2",
			ordered: []string{"opt_arg", "arg1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			state, b, err := parseGroup(t, tt.group(), tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.arg1, argparse.Get[string](state, "arg1"))
			assert.Equal(t, tt.optArg, argparse.Get[string](state, "opt-arg"))

			call := newCall(nil, b, state, nil)
			assert.Equal(t, tt.ordered, call.Names())
			assert.Equal(t, map[string]any{"arg1": tt.arg1, "opt_arg": tt.optArg}, call.Values())
		})
	}
}

func TestBuildOptions(t *testing.T) {
	t.Parallel()

	newGroup := func() *CommandGroup {
		return &CommandGroup{
			Name: "files",
			Commands: []*Command{
				NewCommand("copy", noop).Args(
					NewArg("source"),
					NewArg("dest").Required(false).Default("."),
					NewArg("-f", "--force").StoreTrue().Help("overwrite existing files"),
					NewArg("--retries").Kind(argparse.KindInt).Default("3"),
					NewArg("--mode").Choices("copy", "link").Default("copy"),
					NewArg("--exclude").Action(Append),
					NewArg("--token").Required(true),
				),
			},
		}
	}

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		state, b, err := parseGroup(t, newGroup(), "files", "copy", "a.txt", "--token", "t")
		require.NoError(t, err)
		call := newCall(nil, b, state, nil)
		assert.Equal(t, []string{"source", "dest", "force", "retries", "mode", "exclude", "token"}, call.Names())
		assert.Equal(t, "a.txt", call.String("source"))
		assert.Equal(t, ".", call.String("dest"))
		assert.False(t, call.Bool("force"))
		assert.Equal(t, 3, call.Int("retries"))
		assert.Equal(t, "copy", call.String("mode"))
		assert.Empty(t, call.Strings("exclude"))
		assert.Equal(t, "t", call.String("token"))
	})
	t.Run("given", func(t *testing.T) {
		t.Parallel()

		state, b, err := parseGroup(t, newGroup(), "files", "copy",
			"-f", "a.txt", "b.txt", "--retries=5", "--mode", "link",
			"--exclude", "*.tmp", "--exclude", "*.bak", "--token", "t")
		require.NoError(t, err)
		call := newCall(nil, b, state, nil)
		assert.Equal(t, "b.txt", call.String("dest"))
		assert.True(t, call.Bool("force"))
		assert.Equal(t, 5, call.Int("retries"))
		assert.Equal(t, "link", call.String("mode"))
		assert.Equal(t, []string{"*.tmp", "*.bak"}, call.Strings("exclude"))
	})
	t.Run("validation", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			args []string
			code argparse.ErrorCode
		}{
			{args: []string{"files", "copy", "a.txt"}, code: argparse.ErrMissingArgument},
			{args: []string{"files", "copy", "a.txt", "--token", "t", "--mode", "move"}, code: argparse.ErrInvalidChoice},
			{args: []string{"files", "copy", "a.txt", "--token", "t", "--retries", "many"}, code: argparse.ErrInvalidValue},
			{args: []string{"files", "copy", "a.txt", "--token", "t", "--bogus"}, code: argparse.ErrUnrecognizedArgs},
		}
		for _, tt := range tests {
			_, _, err := parseGroup(t, newGroup(), tt.args...)
			var perr *argparse.Error
			require.ErrorAs(t, err, &perr, "args %q", tt.args)
			assert.Equal(t, tt.code, perr.Code, "args %q: %v", tt.args, err)
		}
	})
}

func TestBuildConfigErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		group   *CommandGroup
		message string
	}{
		{
			name:    "missing group name",
			group:   &CommandGroup{Commands: []*Command{NewCommand("callme", noop)}},
			message: "command group name must be set",
		},
		{
			name: "duplicate command",
			group: &CommandGroup{Name: "demo", Commands: []*Command{
				NewCommand("callme", noop),
				NewCommand("callme", noop),
			}},
			message: `group "demo": duplicate command "callme"`,
		},
		{
			name:    "missing handler",
			group:   &CommandGroup{Name: "demo", Commands: []*Command{NewCommand("callme", nil)}},
			message: `command "callme" has no handler`,
		},
		{
			name: "duplicate argument name",
			group: &CommandGroup{Name: "demo", Commands: []*Command{
				NewCommand("callme", noop).Args(NewArg("--opt-arg"), NewArg("--opt_arg")),
			}},
			message: `duplicate argument "opt_arg"`,
		},
		{
			name: "no flag tokens",
			group: &CommandGroup{Name: "demo", Commands: []*Command{
				NewCommand("callme", noop).Args(NewArg()),
			}},
			message: "argument with no flag tokens",
		},
		{
			name: "invalid default",
			group: &CommandGroup{Name: "demo", Commands: []*Command{
				NewCommand("callme", noop).Args(NewArg("--count").Kind(argparse.KindInt).Default("many")),
			}},
			message: `invalid int value: "many"`,
		},
		{
			name: "store true on positional",
			group: &CommandGroup{Name: "demo", Commands: []*Command{
				NewCommand("callme", noop).Args(NewArg("arg1").StoreTrue()),
			}},
			message: `positional argument "arg1": action store_true needs an option`,
		},
		{
			name: "mixed tokens",
			group: &CommandGroup{Name: "demo", Commands: []*Command{
				NewCommand("callme", noop).Args(NewArg("--out", "out")),
			}},
			message: `invalid flag token "out"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root := newParent()

			_, err := tt.group.Build(root)
			var cerr *ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.ErrorContains(t, err, tt.message)
			assert.Empty(t, root.SubCommands, "nothing registered on failure")
		})
	}

	t.Run("duplicate group", func(t *testing.T) {
		t.Parallel()
		root := newParent()

		_, err := newJustOneGroup().Build(root)
		require.NoError(t, err)
		_, err = newJustOneGroup().Build(root)
		assert.ErrorContains(t, err, `duplicate command group "demo"`)
		assert.Len(t, root.SubCommands, 1)
	})
}
