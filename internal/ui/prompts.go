// Package ui implements the interactive widgets the workflow driver calls:
// a context picker, a task multi-select, and line prompts. Every widget has
// exactly two outcomes — a value or a cancellation — and cancellation is
// surfaced uniformly as a CANCELLED error.
package ui

import (
	stderrors "errors"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/paperl/serverinit/internal/errors"
	"github.com/paperl/serverinit/internal/task"
)

// IsInteractive reports whether stdin is a terminal, i.e. whether menus and
// prompts can be shown at all.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// mapAbort converts huh's abort sentinel into our cancellation error.
func mapAbort(err error, what string) error {
	if stderrors.Is(err, huh.ErrUserAborted) {
		return errors.NewCancelled(what)
	}
	return errors.WrapWithCode(err, errors.ErrConfig,
		"Failed to read input", "")
}

// PickTasks shows a toggle multi-select over the registry with the given
// indices pre-checked. The operator's final toggle state is returned
// verbatim; it may add to or remove from the preselection.
func PickTasks(preselected []int) ([]int, error) {
	pre := make(map[int]bool, len(preselected))
	for _, i := range preselected {
		pre[i] = true
	}

	defs := task.All()
	options := make([]huh.Option[int], len(defs))
	for i, def := range defs {
		options[i] = huh.NewOption(def.Title, i).Selected(pre[i])
	}

	var picked []int
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[int]().
				Title("Select tasks").
				Description("SPACE to toggle, ENTER to confirm").
				Options(options...).
				Value(&picked),
		),
	)
	if err := form.Run(); err != nil {
		return nil, mapAbort(err, "task menu")
	}
	return picked, nil
}

// Prompter answers yes/no and free-form questions. Under auto-confirm every
// confirm answers yes and every ask keeps its default, so a --yes run never
// blocks on input.
type Prompter struct {
	AutoConfirm bool
}

// Confirm asks a yes/no question with a default answer.
func (p *Prompter) Confirm(title string, def bool) (bool, error) {
	if p.AutoConfirm {
		return true, nil
	}
	answer := def
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Value(&answer),
		),
	)
	if err := form.Run(); err != nil {
		return def, mapAbort(err, title)
	}
	return answer, nil
}

// Ask prompts for a single line with a visible default; an empty answer
// keeps the default.
func (p *Prompter) Ask(label, def string) (string, error) {
	if p.AutoConfirm {
		return def, nil
	}
	value := ""
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(label).
				Placeholder(def).
				Value(&value),
		),
	)
	if err := form.Run(); err != nil {
		return def, mapAbort(err, label)
	}
	if value == "" {
		return def, nil
	}
	return value, nil
}
