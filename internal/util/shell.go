// Package util provides small helpers shared across the codebase.
package util

import "strings"

// ShellQuote wraps a string in single quotes, escaping any existing single
// quotes, so the string is treated literally by a shell.
func ShellQuote(s string) string {
	// Replace ' with '\'' (end quote, escaped quote, start quote)
	escaped := strings.ReplaceAll(s, "'", "'\\''")
	return "'" + escaped + "'"
}

// needsQuoting reports whether an argument must be quoted to survive a shell
// round trip unchanged.
func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	return strings.ContainsAny(s, " \t\n'\"\\$`!*?[]{}()<>|&;#~")
}

// ShellJoin reconstructs a shell-safe command line from an argument vector.
// Plain arguments are left bare for readability; anything containing shell
// metacharacters is single-quoted. Used for the audit log, where the line
// must be both readable and copy-pasteable.
func ShellJoin(argv []string) string {
	parts := make([]string, len(argv))
	for i, arg := range argv {
		if needsQuoting(arg) {
			parts[i] = ShellQuote(arg)
		} else {
			parts[i] = arg
		}
	}
	return strings.Join(parts, " ")
}
