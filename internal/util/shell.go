// Package util holds small string helpers shared by the CLI and the dashboard.
package util

import "strings"

// shellSafe is the set of bytes that never need quoting.
const shellSafe = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789@%_-+=:,./"

// ShellQuote wraps a string in single quotes, escaping any existing single quotes.
// This is safe for use in shell commands where the string should be treated literally.
func ShellQuote(s string) string {
	// Replace ' with '\'' (end quote, escaped quote, start quote)
	escaped := strings.ReplaceAll(s, "'", "'\\''")
	return "'" + escaped + "'"
}

// ShellJoin renders args as one shell command line, quoting only the
// arguments that need it.
func ShellJoin(args ...string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a != "" && strings.Trim(a, shellSafe) == "" {
			quoted[i] = a
			continue
		}
		quoted[i] = ShellQuote(a)
	}
	return strings.Join(quoted, " ")
}
