// Package task defines the fixed registry of provisioning tasks, the
// per-context default selections, and the rules that turn an arbitrary
// selection back into canonical execution order.
package task

import (
	"fmt"
	"strings"

	"github.com/paperl/serverinit/internal/errors"
)

// Context is the deployment scenario that gates default tasks and
// applicability rules.
type Context string

const (
	// ContextRoot is a fresh server being set up as root.
	ContextRoot Context = "root"
	// ContextUser is a server where an account already exists.
	ContextUser Context = "user"
	// ContextLocal is a local workstation.
	ContextLocal Context = "local"
)

// ContextTitles maps each context to its menu label, in menu order.
var ContextTitles = []struct {
	Value Context
	Title string
}{
	{ContextRoot, "Server setup in root"},
	{ContextUser, "Server setup in existing user"},
	{ContextLocal, "Local setup"},
}

// ParseContext validates a context flag value.
func ParseContext(s string) (Context, error) {
	switch Context(s) {
	case ContextRoot, ContextUser, ContextLocal:
		return Context(s), nil
	}
	return "", errors.New(errors.ErrValidate,
		fmt.Sprintf("Unknown context '%s'", s),
		"Valid contexts: root, user, local")
}

// Definition describes one provisioning task. The Key is the stable
// identifier used in flags, markers, and the journal.
type Definition struct {
	Key         string
	Title       string
	Description string
}

// registry is the canonical ordered task table. Execution order always
// follows this order, never selection order.
var registry = []Definition{
	{"os", "OS settings (hostname + user)", "Manage hostname and users"},
	{"ssh", "SSH setup", "Populate authorised keys and secure SSH"},
	{"zsh", "Customized zsh", "Install zsh, plugins, and dotfiles"},
	{"conda", "Miniconda", "Install Miniconda and base environment"},
	{"git", "Git setup", "Configure git identity"},
}

// indexByKey is derived from the registry once at init.
var indexByKey = func() map[string]int {
	m := make(map[string]int, len(registry))
	for i, def := range registry {
		m[def.Key] = i
	}
	return m
}()

// All returns the canonical ordered task table.
func All() []Definition {
	out := make([]Definition, len(registry))
	copy(out, registry)
	return out
}

// IndexByKey returns the registry position of a task key.
func IndexByKey(key string) (int, bool) {
	i, ok := indexByKey[key]
	return i, ok
}

// defaultsByContext encodes the policy that some tasks are meaningless or
// dangerous outside their intended context: root gets the broadest set,
// local the narrowest.
var defaultsByContext = map[Context][]string{
	ContextRoot:  {"os", "ssh", "zsh", "conda"},
	ContextUser:  {"ssh", "zsh", "conda"},
	ContextLocal: {"zsh", "conda"},
}

// DefaultsFor returns the default task indices for a context.
func DefaultsFor(ctx Context) []int {
	keys := defaultsByContext[ctx]
	indices := make([]int, 0, len(keys))
	for _, key := range keys {
		indices = append(indices, indexByKey[key])
	}
	return indices
}

// ParseKeys validates a comma-separated list of task keys and returns their
// registry indices. Validation is batched: every invalid token is collected
// and reported together, and nothing is executed when any token is unknown.
func ParseKeys(list string) ([]int, error) {
	var indices []int
	var invalid []string
	for _, token := range strings.Split(list, ",") {
		token = strings.ToLower(strings.TrimSpace(token))
		if token == "" {
			continue
		}
		idx, ok := indexByKey[token]
		if !ok {
			invalid = append(invalid, token)
			continue
		}
		indices = append(indices, idx)
	}
	if len(invalid) > 0 {
		return nil, errors.New(errors.ErrValidate,
			"Invalid task identifiers: "+strings.Join(invalid, ", "),
			"Valid tasks: "+strings.Join(Keys(), ", "))
	}
	return indices, nil
}

// Keys returns all task keys in registry order.
func Keys() []string {
	keys := make([]string, len(registry))
	for i, def := range registry {
		keys[i] = def.Key
	}
	return keys
}

// OrderFromIndices reconciles an arbitrary index set back to registry order.
// Duplicates collapse to one entry; a selection is logically a set.
func OrderFromIndices(indices []int) []Definition {
	selected := make(map[int]bool, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(registry) {
			selected[i] = true
		}
	}
	ordered := make([]Definition, 0, len(selected))
	for i, def := range registry {
		if selected[i] {
			ordered = append(ordered, def)
		}
	}
	return ordered
}

// ShouldSkip reports whether a task is force-skipped under a context,
// regardless of selection or completion state. You do not recreate the user
// you are already running as, and a local machine has no remote access
// concern.
func ShouldSkip(key string, ctx Context) bool {
	if ctx == ContextUser && key == "os" {
		return true
	}
	if ctx == ContextLocal && key == "ssh" {
		return true
	}
	return false
}
