package argparse

import (
	"cmp"
	"flag"
	"fmt"
	"slices"
	"strings"

	"github.com/osper-os/precognise/pkg/textutil"
)

// DefaultUsage renders the help text of c: its short help, usage line, positional arguments,
// subcommands, and the flags of c (local) and of its ancestors (global) on the last parsed path.
func DefaultUsage(c *Command) string {
	if c == nil {
		return ""
	}
	if c.UsageFunc != nil {
		return c.UsageFunc(c)
	}

	var b strings.Builder
	path := c.path()

	if c.ShortHelp != "" {
		for _, line := range textutil.Wrap(c.ShortHelp, textutil.Width) {
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Usage:\n  ")
	if c.Usage != "" {
		b.WriteString(c.Usage)
	} else {
		b.WriteString(usageLine(c, path))
	}
	b.WriteString("\n\n")

	if len(c.Args) > 0 {
		rows := make([]textutil.Row, 0, len(c.Args))
		for _, def := range c.Args {
			help := def.Usage
			if len(def.Choices) > 0 {
				help = strings.TrimSpace(help + " (choices: " + strings.Join(def.Choices, ", ") + ")")
			}
			if def.Optional && def.Default != "" {
				help = strings.TrimSpace(help + " (default: " + def.Default + ")")
			}
			rows = append(rows, textutil.Row{Name: def.Name, Help: help})
		}
		b.WriteString("Arguments:\n")
		textutil.WriteRows(&b, rows)
		b.WriteString("\n")
	}

	if len(c.SubCommands) > 0 {
		sorted := slices.Clone(c.SubCommands)
		slices.SortFunc(sorted, func(a, b *Command) int {
			return cmp.Compare(a.Name, b.Name)
		})
		rows := make([]textutil.Row, 0, len(sorted))
		for _, sub := range sorted {
			rows = append(rows, textutil.Row{Name: sub.Name, Help: sub.ShortHelp})
		}
		b.WriteString("Available Commands:\n")
		textutil.WriteRows(&b, rows)
		b.WriteString("\n")
	}

	var local, global []textutil.Row
	for i, cmd := range path {
		rows := flagRows(cmd)
		if i < len(path)-1 {
			global = append(global, rows...)
		} else {
			local = append(local, rows...)
		}
	}
	if len(local) > 0 {
		b.WriteString("Flags:\n")
		textutil.WriteRows(&b, local)
		b.WriteString("\n")
	}
	if len(global) > 0 {
		b.WriteString("Global Flags:\n")
		textutil.WriteRows(&b, global)
		b.WriteString("\n")
	}

	if len(c.SubCommands) > 0 {
		fmt.Fprintf(&b, "Use \"%s [command] --help\" for more information about a command.\n",
			getCommandPath(path))
	}

	return strings.TrimRight(b.String(), "\n")
}

// Synopsis returns the one line usage of c, e.g. "demo api status [flags] <id>".
func Synopsis(c *Command) string {
	if c.Usage != "" {
		return c.Usage
	}
	return usageLine(c, c.path())
}

func usageLine(c *Command, path []*Command) string {
	parts := []string{getCommandPath(path)}
	for _, cmd := range path {
		if hasFlags(cmd) {
			parts = append(parts, "[flags]")
			break
		}
	}
	for _, def := range c.Args {
		if def.Optional {
			parts = append(parts, "["+def.Name+"]")
		} else {
			parts = append(parts, "<"+def.Name+">")
		}
	}
	if len(c.SubCommands) > 0 {
		parts = append(parts, "<command>")
	}
	return strings.Join(parts, " ")
}

func hasFlags(c *Command) bool {
	n := 0
	if c.Flags != nil {
		c.Flags.VisitAll(func(*flag.Flag) { n++ })
	}
	return n > 0
}

// flagRows lists the flags of c sorted by name, with aliases folded into their primary flag.
func flagRows(c *Command) []textutil.Row {
	if c.Flags == nil {
		return nil
	}
	meta := make(map[string]FlagMetadata, len(c.FlagsMetadata))
	aliases := make(map[string]bool)
	for _, m := range c.FlagsMetadata {
		meta[m.Name] = m
		for _, a := range m.Aliases {
			aliases[a] = true
		}
	}

	var rows []textutil.Row
	c.Flags.VisitAll(func(f *flag.Flag) {
		if aliases[f.Name] {
			return
		}
		m := meta[f.Name]
		names := make([]string, 0, len(m.Aliases)+1)
		for _, n := range m.names() {
			if n == "" {
				n = f.Name
			}
			names = append(names, formatFlagName(n))
		}
		slices.SortStableFunc(names, func(a, b string) int { return cmp.Compare(len(a), len(b)) })

		help := f.Usage
		if len(m.Choices) > 0 {
			help += " (choices: " + strings.Join(m.Choices, ", ") + ")"
		}
		if m.Required {
			help += " (required)"
		} else if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" {
			help += fmt.Sprintf(" (default: %s)", f.DefValue)
		}
		rows = append(rows, textutil.Row{Name: strings.Join(names, ", "), Help: strings.TrimSpace(help)})
	})
	return rows
}
