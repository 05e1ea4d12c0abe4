package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShellQuote(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple string",
			input: "hello",
			want:  "'hello'",
		},
		{
			name:  "string with spaces",
			input: "hello world",
			want:  "'hello world'",
		},
		{
			name:  "string with single quote",
			input: "it's",
			want:  "'it'\\''s'",
		},
		{
			name:  "empty string",
			input: "",
			want:  "''",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShellQuote(tt.input))
		})
	}
}

func TestShellJoin(t *testing.T) {
	tests := []struct {
		name string
		argv []string
		want string
	}{
		{
			name: "plain arguments stay bare",
			argv: []string{"git", "config", "--global", "user.name", "alice"},
			want: "git config --global user.name alice",
		},
		{
			name: "argument with space is quoted",
			argv: []string{"hostnamectl", "set-hostname", "my box"},
			want: "hostnamectl set-hostname 'my box'",
		},
		{
			name: "shell metacharacters are quoted",
			argv: []string{"bash", "-lc", "curl -fsSL https://example.com | bash"},
			want: "bash -lc 'curl -fsSL https://example.com | bash'",
		},
		{
			name: "empty argument is visible",
			argv: []string{"cmd", ""},
			want: "cmd ''",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShellJoin(tt.argv))
		})
	}
}
