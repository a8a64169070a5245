package argparse

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/mfridman/xflag"
)

// Parse traverses the command hierarchy and parses arguments. It returns an error if parsing fails
// at any point.
//
// Input errors are reported as [*Error]. A help request (-h, --help) prints the usage of the
// deepest command named so far to its flag set output and returns [flag.ErrHelp]. Once parsing is
// complete, the root command is ready to be executed with [Run].
func Parse(root *Command, args []string) error {
	if root == nil {
		return errors.New("failed to parse: root command is nil")
	}
	if err := validateCommands(root, nil); err != nil {
		return fmt.Errorf("failed to parse: %w", err)
	}

	state := &State{}
	root.state = state
	ensureFlags(root)

	// Everything after -- is positional.
	argsToParse, remainingArgs := args, []string(nil)
	if i := slices.Index(args, "--"); i >= 0 {
		argsToParse, remainingArgs = args[:i], args[i+1:]
	}

	current := root
	commandChain := []*Command{root}
	state.commandPath = commandChain

	// First pass: resolve the command path. Help requests are honored anywhere before --, before
	// any flag parsing errors.
	traversing := true
	skipValue := false
	for _, arg := range argsToParse {
		if skipValue {
			skipValue = false
			continue
		}
		if isHelpFlag(arg) {
			return current.showHelp()
		}
		if strings.HasPrefix(arg, "-") && arg != "-" {
			skipValue = takesValue(commandChain, arg)
			continue
		}
		if !traversing || len(current.SubCommands) == 0 {
			traversing = false
			continue
		}
		sub := current.findSubCommand(arg)
		if sub == nil {
			return current.unknownCommandError(arg)
		}
		ensureFlags(sub)
		sub.state = state
		current = sub
		commandChain = append(commandChain, sub)
		state.commandPath = commandChain
	}

	if len(current.SubCommands) > 0 && current.Exec == nil {
		return current.errorf(ErrMissingCommand, "%s: a command is required (choose from %s)",
			current.FullName(), strings.Join(subCommandNames(current), ", "))
	}

	combinedFlags := flag.NewFlagSet(root.Name, flag.ContinueOnError)
	combinedFlags.SetOutput(io.Discard)
	combinedFlags.Usage = func() {}

	// Add flags in reverse order for proper precedence
	for i := len(commandChain) - 1; i >= 0; i-- {
		commandChain[i].Flags.VisitAll(func(f *flag.Flag) {
			if combinedFlags.Lookup(f.Name) == nil {
				combinedFlags.Var(f.Value, f.Name, f.Usage)
			}
		})
	}
	state.flags = combinedFlags

	if err := xflag.ParseToEnd(combinedFlags, argsToParse); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return current.showHelp()
		}
		code := ErrInvalidValue
		if strings.Contains(err.Error(), "provided but not defined") {
			code = ErrUnrecognizedArgs
		}
		return current.errorf(code, "command %q: %w", current.Name, err)
	}

	if err := checkFlags(commandChain, combinedFlags); err != nil {
		return err
	}

	// The leading positionals are the command tokens resolved above.
	parsed := combinedFlags.Args()
	skip := min(len(commandChain)-1, len(parsed))
	rest := make([]string, 0, len(parsed)-skip+len(remainingArgs))
	rest = append(rest, parsed[skip:]...)
	rest = append(rest, remainingArgs...)

	values, rest, err := bindArgs(current, rest)
	if err != nil {
		return err
	}
	if current.Strict && len(rest) > 0 {
		return current.errorf(ErrUnrecognizedArgs, "unrecognized arguments: %s", strings.Join(rest, " "))
	}
	state.values = values
	state.Args = rest
	return nil
}

// checkFlags enforces required flags and choices for every command on the path.
func checkFlags(commandChain []*Command, fset *flag.FlagSet) error {
	set := make(map[string]bool)
	fset.Visit(func(f *flag.Flag) { set[f.Name] = true })

	current := commandChain[len(commandChain)-1]
	var missingFlags []string
	for _, cmd := range commandChain {
		for _, meta := range cmd.FlagsMetadata {
			f := fset.Lookup(meta.Name)
			if f == nil {
				return current.errorf(ErrInvalidValue, "command %q: internal error: flag %s not found in flag set",
					cmd.Name, formatFlagName(meta.Name))
			}
			given := slices.ContainsFunc(meta.names(), func(n string) bool { return set[n] })
			if meta.Required && !given {
				missingFlags = append(missingFlags, formatFlagName(meta.Name))
				continue
			}
			if !given || len(meta.Choices) == 0 {
				continue
			}
			if err := checkChoice(current, formatFlagName(meta.Name), f.Value, meta.Choices); err != nil {
				return err
			}
		}
	}
	if len(missingFlags) > 0 {
		return current.errorf(ErrMissingArgument, "command %q: required flag(s) %q not set",
			current.FullName(), strings.Join(missingFlags, ", "))
	}
	return nil
}

func checkChoice(cmd *Command, name string, value flag.Value, choices []string) error {
	given := []string{value.String()}
	if ss, ok := value.(*StringSlice); ok {
		given = *ss
	}
	for _, v := range given {
		if !slices.Contains(choices, v) {
			return cmd.errorf(ErrInvalidChoice, "argument %s: invalid choice: %q (choose from %s)",
				name, v, strings.Join(choices, ", "))
		}
	}
	return nil
}

// bindArgs assigns positional tokens to the command's declared arguments in order and returns
// the tokens left over.
func bindArgs(cmd *Command, tokens []string) (map[string]any, []string, error) {
	values := make(map[string]any, len(cmd.Args))
	var missing []string
	for i, def := range cmd.Args {
		raw := def.Default
		switch {
		case i < len(tokens):
			raw = tokens[i]
			if len(def.Choices) > 0 && !slices.Contains(def.Choices, raw) {
				return nil, nil, cmd.errorf(ErrInvalidChoice, "argument %s: invalid choice: %q (choose from %s)",
					def.Name, raw, strings.Join(def.Choices, ", "))
			}
		case !def.Optional:
			missing = append(missing, def.Name)
			continue
		case raw == "":
			values[def.Name] = def.Kind.zero()
			continue
		}
		v, err := def.Kind.Convert(raw)
		if err != nil {
			return nil, nil, cmd.errorf(ErrInvalidValue, "argument %s: %w", def.Name, err)
		}
		values[def.Name] = v
	}
	if len(missing) > 0 {
		return nil, nil, cmd.errorf(ErrMissingArgument, "%s: the following arguments are required: %s",
			cmd.FullName(), strings.Join(missing, ", "))
	}
	if len(tokens) <= len(cmd.Args) {
		return values, nil, nil
	}
	return values, tokens[len(cmd.Args):], nil
}

// takesValue reports whether arg is a flag that consumes the following token as its value.
func takesValue(commandChain []*Command, arg string) bool {
	name := strings.TrimLeft(arg, "-")
	if name == "" || strings.Contains(name, "=") {
		return false
	}
	for _, cmd := range commandChain {
		f := cmd.Flags.Lookup(name)
		if f == nil {
			continue
		}
		if bf, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && bf.IsBoolFlag() {
			return false
		}
		return true
	}
	return false
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--h" || arg == "-help" || arg == "--help"
}

func ensureFlags(c *Command) {
	if c.Flags == nil {
		c.Flags = flag.NewFlagSet(c.Name, flag.ContinueOnError)
	}
}

func subCommandNames(c *Command) []string {
	names := make([]string, 0, len(c.SubCommands))
	for _, sub := range c.SubCommands {
		names = append(names, sub.Name)
	}
	return names
}

func validateCommands(root *Command, path []string) error {
	if root.Name == "" {
		if len(path) == 0 {
			return errors.New("root command has no name")
		}
		return fmt.Errorf("subcommand in path %q has no name", strings.Join(path, " "))
	}
	if strings.Contains(root.Name, " ") {
		return fmt.Errorf("command name %q contains spaces, must be a single word", root.Name)
	}
	for _, def := range root.Args {
		if def.Name == "" {
			return fmt.Errorf("command %q has a positional argument with no name", root.Name)
		}
	}

	currentPath := append(slices.Clone(path), root.Name)

	seen := make(map[string]bool, len(root.SubCommands))
	for _, sub := range root.SubCommands {
		key := strings.ToLower(sub.Name)
		if sub.Name != "" && seen[key] {
			return fmt.Errorf("duplicate command %q in path %q", sub.Name, strings.Join(currentPath, " "))
		}
		seen[key] = true
		if err := validateCommands(sub, currentPath); err != nil {
			return err
		}
	}
	return nil
}

func formatFlagName(name string) string {
	if len(name) == 1 {
		return "-" + name
	}
	return "--" + name
}
