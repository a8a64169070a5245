package precognise

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/osper-os/precognise/argparse"
)

// App is a command-line application made of command groups.
//
// Each run assembles the tree "<root options> <group> <command> <command args>", parses the input
// against it and calls the selected command's handler between the BeforeRun and AfterRun hooks.
type App struct {
	// Name is the program name used in usage and error messages.
	Name string
	// Help is the description shown in the root help text.
	Help string

	// Groups holds one factory per command group. Each run calls every factory to get a fresh
	// group. At least one is required.
	Groups []func() *CommandGroup

	// RootArgs returns the application-wide options, registered on the root before any group.
	// Handlers read them with [Call.Global]. Optional.
	RootArgs func() []*Arg

	// BeforeRun is called after parsing, right before the handler. It may return a derived context
	// for the handler, e.g. one carrying a connection. If it fails, the handler and AfterRun are
	// skipped.
	BeforeRun func(ctx context.Context, call *Call) (context.Context, error)

	// AfterRun is called after the handler on every exit path, including a panic, with the
	// handler's error.
	AfterRun func(ctx context.Context, call *Call, err error)

	// Logger receives build and dispatch diagnostics. Defaults to warnings and errors on Stderr.
	Logger *log.Logger

	// Standard I/O streams. Nil means the process streams.
	Stdin          io.Reader
	Stdout, Stderr io.Writer
}

// Run parses args and calls the selected command's handler, returning its result. args does not
// include the program name, typically os.Args[1:].
//
// Input errors are returned as [*argparse.Error], help requests as [flag.ErrHelp], definition
// problems as [*ConfigError]. The handler's error is returned unchanged after AfterRun; a handler
// may return an [*argparse.Error] made with [argparse.NewError] to report a usage problem, which
// is attributed to the selected command.
func (a *App) Run(ctx context.Context, args []string) (any, error) {
	call, err := a.Parse(args)
	if err != nil {
		return nil, err
	}
	result, err := a.dispatch(ctx, call)
	var perr *argparse.Error
	if errors.As(err, &perr) && perr.Command == nil {
		perr.Command = call.State.Selected()
	}
	return result, err
}

// Parse builds a fresh parser tree, parses args against it and returns the resolved invocation
// without running it.
func (a *App) Parse(args []string) (*Call, error) {
	logger := a.logger()
	if len(a.Groups) == 0 {
		return nil, configErrorf("app %q: no command groups set", a.Name)
	}

	root, rootKeys, err := a.buildRoot()
	if err != nil {
		return nil, err
	}
	groups := make([]*CommandGroup, 0, len(a.Groups))
	for _, newGroup := range a.Groups {
		g, err := newGroup().Build(root)
		if err != nil {
			return nil, err
		}
		logger.Debug("registered command group", "group", g.Name, "commands", len(g.Commands))
		groups = append(groups, g)
	}
	setOutput(root, a.stdout())

	if err := argparse.Parse(root, args); err != nil {
		return nil, err
	}

	state := root.State()
	selected := state.Selected()
	for _, g := range groups {
		if b, ok := g.bindings[selected]; ok {
			call := newCall(a, b, state, rootKeys)
			call.Stdin, call.Stdout, call.Stderr = a.stdin(), a.stdout(), a.stderr()
			return call, nil
		}
	}
	return nil, fmt.Errorf("no command bound to %q", selected.FullName())
}

func (a *App) dispatch(ctx context.Context, call *Call) (result any, err error) {
	logger := a.logger().With("group", call.Group.Name, "command", call.Command.name)
	if a.BeforeRun != nil {
		derived, err := a.BeforeRun(ctx, call)
		if err != nil {
			return nil, fmt.Errorf("before run: %w", err)
		}
		if derived != nil {
			ctx = derived
		}
	}
	if a.AfterRun != nil {
		defer func() { a.AfterRun(ctx, call, err) }()
	}
	logger.Debug("dispatching command", "args", call.values)
	return call.Command.handler(ctx, call)
}

// Execute runs the application the way a main function would and returns the process exit
// status: 0 on success or help, 2 on a usage error, 1 on any other failure. A non-nil result is
// printed to Stdout.
//
//	func main() {
//		os.Exit(app.Execute(context.Background(), os.Args[1:]))
//	}
func (a *App) Execute(ctx context.Context, args []string) int {
	result, err := a.Run(ctx, args)
	var perr *argparse.Error
	switch {
	case err == nil:
		if result != nil {
			fmt.Fprintln(a.stdout(), result)
		}
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.As(err, &perr):
		switch {
		case perr.Command == nil:
		case perr.Code == argparse.ErrShowHelp:
			fmt.Fprintln(a.stderr(), argparse.DefaultUsage(perr.Command))
		default:
			fmt.Fprintf(a.stderr(), "usage: %s\n", argparse.Synopsis(perr.Command))
		}
		fmt.Fprintf(a.stderr(), "%s: error: %v\n", a.name(), err)
		return 2
	default:
		a.logger().Error("command failed", "err", err)
		return 1
	}
}

// buildRoot creates the root parser node with the application-wide options.
func (a *App) buildRoot() (*argparse.Command, map[string]string, error) {
	root := &argparse.Command{
		Name:      a.name(),
		ShortHelp: a.Help,
		Flags:     flag.NewFlagSet(a.name(), flag.ContinueOnError),
	}
	rootKeys := make(map[string]string)
	if a.RootArgs == nil {
		return root, rootKeys, nil
	}
	for _, arg := range a.RootArgs() {
		if arg.Positional() {
			return nil, nil, configErrorf("app %q: root argument %q must be an option", a.Name, arg.key())
		}
		key, err := register(root, arg)
		if err != nil {
			return nil, nil, configErrorf("app %q: %v", a.Name, err)
		}
		rootKeys[key] = key
		rootKeys[arg.Dest()] = key
	}
	return root, rootKeys, nil
}

func setOutput(c *argparse.Command, w io.Writer) {
	if c.Flags != nil {
		c.Flags.SetOutput(w)
	}
	for _, sub := range c.SubCommands {
		setOutput(sub, w)
	}
}

func (a *App) name() string {
	if a.Name != "" {
		return a.Name
	}
	return "app"
}

func (a *App) logger() *log.Logger {
	if a.Logger == nil {
		a.Logger = log.NewWithOptions(a.stderr(), log.Options{
			Level:  log.WarnLevel,
			Prefix: a.name(),
		})
	}
	return a.Logger
}

func (a *App) stdin() io.Reader {
	if a.Stdin != nil {
		return a.Stdin
	}
	return os.Stdin
}

func (a *App) stdout() io.Writer {
	if a.Stdout != nil {
		return a.Stdout
	}
	return os.Stdout
}

func (a *App) stderr() io.Writer {
	if a.Stderr != nil {
		return a.Stderr
	}
	return os.Stderr
}
