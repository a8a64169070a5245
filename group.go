package precognise

import (
	"errors"
	"flag"
	"fmt"
	"slices"
	"strings"

	"github.com/osper-os/precognise/argparse"
)

// CommandGroup is a named bundle of related commands, invoked as "<group> <command> [args]".
//
// Groups are usually returned by a factory that closes over the state their handlers share, so
// that every [App.Run] starts from a fresh instance:
//
//	func newDemoGroup() *precognise.CommandGroup {
//		d := &demo{retval: "success"}
//		return &precognise.CommandGroup{
//			Name:     "demo",
//			Commands: []*precognise.Command{precognise.NewCommand("callme", d.callMe)},
//		}
//	}
type CommandGroup struct {
	// Name is the group token on the command line. Required.
	Name string
	// Help is shown next to the group in the root command listing.
	Help string
	// Commands are registered in order.
	Commands []*Command

	commands map[string]*Command
	bindings map[*argparse.Command]*binding
	node     *argparse.Command
}

// binding ties a parser node back to the command it was built from.
type binding struct {
	group   *CommandGroup
	command *Command
	params  []param
}

// param maps a canonical argument name to the parser key holding its value.
type param struct {
	dest string
	key  string
}

// Build registers the group and its commands under parent. Nothing is added to parent unless the
// whole group is valid. It returns the group to allow chaining.
func (g *CommandGroup) Build(parent *argparse.Command) (*CommandGroup, error) {
	if g.Name == "" {
		return nil, configErrorf("command group name must be set")
	}
	if parent == nil {
		return nil, configErrorf("group %q: nil parent command", g.Name)
	}
	for _, sub := range parent.SubCommands {
		if strings.EqualFold(sub.Name, g.Name) {
			return nil, configErrorf("duplicate command group %q", g.Name)
		}
	}

	node := &argparse.Command{
		Name:      g.Name,
		ShortHelp: g.Help,
		Flags:     flag.NewFlagSet(g.Name, flag.ContinueOnError),
	}
	commands := make(map[string]*Command, len(g.Commands))
	bindings := make(map[*argparse.Command]*binding, len(g.Commands))

	for _, cmd := range g.Commands {
		if cmd == nil || cmd.name == "" {
			return nil, configErrorf("group %q: command with no name", g.Name)
		}
		if cmd.handler == nil {
			return nil, configErrorf("group %q: command %q has no handler", g.Name, cmd.name)
		}
		if _, ok := commands[cmd.name]; ok {
			return nil, configErrorf("group %q: duplicate command %q", g.Name, cmd.name)
		}

		sub := &argparse.Command{
			Name:      cmd.name,
			ShortHelp: cmd.HelpText(),
			Flags:     flag.NewFlagSet(cmd.name, flag.ContinueOnError),
			Strict:    true,
		}
		b := &binding{group: g, command: cmd}
		for _, arg := range cmd.args {
			dest := arg.Dest()
			if slices.ContainsFunc(b.params, func(p param) bool { return p.dest == dest }) {
				return nil, configErrorf("group %q: command %q: duplicate argument %q", g.Name, cmd.name, dest)
			}
			key, err := register(sub, arg)
			if err != nil {
				return nil, configErrorf("group %q: command %q: %v", g.Name, cmd.name, err)
			}
			b.params = append(b.params, param{dest: dest, key: key})
		}

		commands[cmd.name] = cmd
		bindings[sub] = b
		node.SubCommands = append(node.SubCommands, sub)
	}

	parent.SubCommands = append(parent.SubCommands, node)
	g.commands = commands
	g.bindings = bindings
	g.node = node
	return g, nil
}

// Lookup returns the registered command with the given name. It only finds commands after
// [CommandGroup.Build].
func (g *CommandGroup) Lookup(name string) (*Command, bool) {
	cmd, ok := g.commands[name]
	return cmd, ok
}

// Node returns the parser node the group's commands are registered under, or nil before Build.
func (g *CommandGroup) Node() *argparse.Command {
	return g.node
}

// register translates a into a positional or flag definition of cmd and returns the key the
// parsed value is stored under.
func register(cmd *argparse.Command, a *Arg) (string, error) {
	if len(a.flags) == 0 {
		return "", errors.New("argument with no flag tokens")
	}
	key := a.key()
	if key == "" {
		return "", fmt.Errorf("argument %q has an empty name", strings.Join(a.flags, ", "))
	}

	if a.Positional() {
		if a.action != Store {
			return "", fmt.Errorf("positional argument %q: action %s needs an option", key, a.action)
		}
		if a.hasDefault {
			if _, err := a.kind.Convert(a.def); err != nil {
				return "", fmt.Errorf("positional argument %q: default: %v", key, err)
			}
		}
		cmd.Args = append(cmd.Args, argparse.ArgDef{
			Name:     key,
			Usage:    a.help,
			Kind:     a.kind,
			Optional: a.requiredSet && !a.required,
			Default:  a.def,
			Choices:  a.choices,
		})
		return key, nil
	}

	names := make([]string, 0, len(a.flags))
	for _, f := range a.flags {
		if !strings.HasPrefix(f, "-") || strings.Trim(f, "-") == "" {
			return "", fmt.Errorf("option %q: invalid flag token %q", key, f)
		}
		name := strings.TrimLeft(f, "-")
		if cmd.Flags.Lookup(name) != nil || slices.Contains(names, name) {
			return "", fmt.Errorf("flag %q defined twice", f)
		}
		names = append(names, name)
	}

	var (
		value flag.Value
		err   error
	)
	switch a.action {
	case Store:
		value, err = a.kind.Define(cmd.Flags, key, a.def, a.help)
	case StoreTrue, StoreFalse:
		def := a.action == StoreFalse
		if a.hasDefault {
			v, cerr := argparse.KindBool.Convert(a.def)
			if cerr != nil {
				return "", fmt.Errorf("option %q: default: %v", key, cerr)
			}
			def = v.(bool)
		}
		cmd.Flags.Bool(key, def, a.help)
		value = cmd.Flags.Lookup(key).Value
	case Append:
		if a.kind != argparse.KindString {
			return "", fmt.Errorf("option %q: append collects strings, not %s", key, a.kind)
		}
		ss := &argparse.StringSlice{}
		if a.hasDefault {
			_ = ss.Set(a.def)
		}
		cmd.Flags.Var(ss, key, a.help)
		value = ss
	default:
		err = fmt.Errorf("option %q: unknown action %d", key, int(a.action))
	}
	if err != nil {
		return "", err
	}

	var aliases []string
	for _, name := range names {
		if name == key {
			continue
		}
		cmd.Flags.Var(value, name, a.help)
		aliases = append(aliases, name)
	}
	cmd.FlagsMetadata = append(cmd.FlagsMetadata, argparse.FlagMetadata{
		Name:     key,
		Aliases:  aliases,
		Required: a.required,
		Choices:  a.choices,
	})
	return key, nil
}
