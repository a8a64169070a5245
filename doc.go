// Package precognise builds command-line applications out of declared command groups.
//
// A [CommandGroup] bundles related commands under one name. Each [Command] names a [Handler] and
// lists its arguments in the order they appear on the command line:
//
//	group := &precognise.CommandGroup{
//		Name: "demo",
//		Help: "Demo command group",
//		Commands: []*precognise.Command{
//			precognise.NewCommand("callme", callMe).
//				Doc("Calls me, maybe.").
//				Args(
//					precognise.NewArg("arg1"),
//					precognise.NewArg("--opt-arg").Default("1"),
//				),
//		},
//	}
//
// An [App] owns the group factories. Every call to [App.Run] builds a fresh parser tree with the
// argparse package, parses the input, and calls the selected handler with a [Call] holding the
// parsed values, keyed by each argument's canonical name (see [Arg.Dest]).
package precognise
