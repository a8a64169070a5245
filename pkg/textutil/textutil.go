// Package textutil lays out help text for a fixed-width terminal.
package textutil

import (
	"fmt"
	"io"
	"strings"
)

// Width is the line width help text is wrapped to.
const Width = 80

// Wrap splits text into lines no longer than width, breaking on whitespace. Words longer than
// width get a line of their own. Runs of whitespace collapse to a single space.
func Wrap(text string, width int) []string {
	var (
		lines []string
		line  strings.Builder
	)
	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && line.Len()+1+len(word) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return lines
}

// Row is one entry of a two column listing, e.g. a command name and its help.
type Row struct {
	Name string
	Help string
}

// WriteRows writes rows as an indented two column listing. The help column starts four spaces
// after the longest name and wraps within [Width]; continuation lines align with it.
func WriteRows(w io.Writer, rows []Row) {
	maxLen := 0
	for _, r := range rows {
		maxLen = max(maxLen, len(r.Name))
	}
	nameWidth := maxLen + 4
	indent := strings.Repeat(" ", nameWidth+2)

	for _, r := range rows {
		lines := Wrap(r.Help, Width-nameWidth)
		if len(lines) == 0 {
			fmt.Fprintf(w, "  %s\n", r.Name)
			continue
		}
		fmt.Fprintf(w, "  %-*s%s\n", nameWidth, r.Name, lines[0])
		for _, line := range lines[1:] {
			fmt.Fprintf(w, "%s%s\n", indent, line)
		}
	}
}
