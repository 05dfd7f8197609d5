// Package testutil provides helpers shared by the tests of several packages:
// ANSI stripping for CLI output and deterministic matrix fixtures.
package testutil

import "regexp"

// ansiRegex matches CSI sequences: ESC [ parameters, then a final letter.
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripAnsiCodes removes ANSI escape codes so CLI output can be compared
// regardless of the active theme.
func StripAnsiCodes(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}
