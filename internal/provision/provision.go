// Package provision holds the task bodies. Each body receives the shared
// runner, options, and paths; completion marking stays with the workflow
// driver so bodies can't corrupt the journal. Body-local recoverable
// conditions (missing theme file, failed key fetch) are printed and
// swallowed; command failures propagate.
package provision

import (
	"fmt"

	"github.com/paperl/serverinit/internal/config"
	"github.com/paperl/serverinit/internal/runner"
	"github.com/paperl/serverinit/internal/ui"
)

// Prompter is the interactive capability bodies use for confirmations and
// line input. ui.Prompter satisfies it; tests supply a scripted fake.
type Prompter interface {
	Confirm(title string, def bool) (bool, error)
	Ask(label, def string) (string, error)
}

// Deps bundles what every task body needs.
type Deps struct {
	Runner  *runner.Runner
	Options config.Options
	Paths   config.Paths
	Prompt  Prompter
	// Identity defaults used when auto-confirm suppresses prompting.
	Identity config.Identity
}

// Body is the standard task signature.
type Body func(d Deps) error

// ArchBody additionally takes the detected machine architecture. Only the
// Miniconda task needs it; modeling it as a separate variant keeps each
// body's inputs explicit.
type ArchBody func(d Deps, arch string) error

type binding struct {
	run     Body
	runArch ArchBody
}

// bodies maps task keys to their implementation variant.
var bodies = map[string]binding{
	"os":    {run: OSSettings},
	"ssh":   {run: SSHSetup},
	"zsh":   {run: CustomZsh},
	"conda": {runArch: Miniconda},
	"git":   {run: GitSetup},
}

// Invoke dispatches a task body by key. A key with no implementation is a
// printed notice, not an error; the registry is the source of truth for
// which keys exist.
func Invoke(key string, d Deps, arch string) error {
	b, ok := bodies[key]
	if !ok {
		fmt.Printf("No implementation for task '%s'.\n", key)
		return nil
	}
	if b.runArch != nil {
		return b.runArch(d, arch)
	}
	return b.run(d)
}

// header prints the styled section line that opens each task's output.
func header(text string) {
	fmt.Println()
	fmt.Println(ui.HeaderStyle.Render(text))
}
