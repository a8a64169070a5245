// Package argparse is the parsing engine behind precognise. It builds a tree of named commands,
// each with its own flag set and ordered positional arguments, parses an argument vector against
// that tree and hands back a [State] describing the selected command and its values.
//
// The engine owns tokenizing, type coercion, validation (required values, choices, unknown
// commands) and help rendering. Callers register what they need and read the result; they never
// look at raw tokens.
package argparse
