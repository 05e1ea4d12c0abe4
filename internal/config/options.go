// Package config resolves the run-wide execution options, filesystem
// targets, and operator-identity defaults before any task executes. All of
// these are computed once and shared read-only for the rest of the run.
package config

import "fmt"

// Options are the execution safety settings for a run, immutable once
// resolved. Invariant: DryRun is true whenever Force is false — real command
// execution requires an explicit, affirmative --force.
type Options struct {
	DryRun      bool
	SudoAllowed bool
	Force       bool
	AutoConfirm bool
}

// ConfirmFunc asks the operator a yes/no question with a default answer.
type ConfirmFunc func(title string, def bool) (bool, error)

// ResolveOptions computes the execution options from the safety flags.
// Elevation permission is resolved exactly once here, by prompt; the default
// answer is no because sudo gates destructive privileged operations.
func ResolveOptions(force, dryRun, yes bool, confirm ConfirmFunc) (Options, error) {
	resolved := dryRun || !force
	if force && dryRun {
		fmt.Println("--force provided together with --dry-run; commands will still not execute.")
	}
	if !force && !dryRun {
		fmt.Println("Commands will run in dry-run mode until --force is supplied.")
	}

	sudoAllowed := false
	if yes {
		sudoAllowed = true
	} else if confirm != nil {
		answer, err := confirm("Use elevated privileges for privileged operations?", false)
		if err != nil {
			return Options{}, err
		}
		sudoAllowed = answer
	}

	return Options{
		DryRun:      resolved,
		SudoAllowed: sudoAllowed,
		Force:       force,
		AutoConfirm: yes,
	}, nil
}
