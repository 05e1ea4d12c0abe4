package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/paperl/serverinit/internal/errors"
	"github.com/paperl/serverinit/internal/task"
)

// Paths holds the resolved filesystem targets for the active run. Immutable
// once confirmed; shared read-only by every task body.
type Paths struct {
	HomeDir           string
	SSHAuthorizedKeys string
	Zshrc             string
	P10k              string
	DataDirs          []string
}

// derive fills in the per-home targets from a home directory.
func derive(home string) Paths {
	return Paths{
		HomeDir:           home,
		SSHAuthorizedKeys: filepath.Join(home, ".ssh", "authorized_keys"),
		Zshrc:             filepath.Join(home, ".zshrc"),
		P10k:              filepath.Join(home, ".p10k.zsh"),
		DataDirs: []string{
			filepath.Join(home, "toolchain"),
			filepath.Join(home, "temp"),
			filepath.Join(home, "workspace"),
		},
	}
}

// DetectDefaults resolves the default paths for a context. Under the root
// context the target home is /root, unless targetUser points at a fresh
// account created during the OS task, in which case /home/<user> is used.
// Other contexts target the current user's home.
func DetectDefaults(ctx task.Context, targetUser string) (Paths, error) {
	var home string
	if ctx == task.ContextRoot {
		home = "/root"
		if targetUser != "" && targetUser != "root" {
			home = filepath.Join("/home", targetUser)
		}
	} else {
		detected, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot determine home directory",
				"Set the HOME environment variable")
		}
		home = detected
	}
	return derive(home), nil
}

// AskFunc prompts for a single value with a default shown; ENTER keeps the
// default.
type AskFunc func(label, def string) (string, error)

// ConfirmPaths lets the operator review and override each target path.
// Callers skip this entirely under auto-confirm.
func ConfirmPaths(defaults Paths, ask AskFunc) (Paths, error) {
	fmt.Println("\nReview target paths (press ENTER to keep defaults):")

	home, err := ask("Home directory", defaults.HomeDir)
	if err != nil {
		return Paths{}, err
	}
	sshKeys, err := ask("authorized_keys path", defaults.SSHAuthorizedKeys)
	if err != nil {
		return Paths{}, err
	}
	zshrc, err := ask(".zshrc path", defaults.Zshrc)
	if err != nil {
		return Paths{}, err
	}
	p10k, err := ask(".p10k.zsh path", defaults.P10k)
	if err != nil {
		return Paths{}, err
	}

	dataDirs := make([]string, 0, len(defaults.DataDirs))
	for i, dir := range defaults.DataDirs {
		value, err := ask(fmt.Sprintf("Data dir #%d", i+1), dir)
		if err != nil {
			return Paths{}, err
		}
		dataDirs = append(dataDirs, value)
	}

	return Paths{
		HomeDir:           home,
		SSHAuthorizedKeys: sshKeys,
		Zshrc:             zshrc,
		P10k:              p10k,
		DataDirs:          dataDirs,
	}, nil
}
