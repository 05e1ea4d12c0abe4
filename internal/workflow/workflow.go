// Package workflow ties the orchestrator together: it resolves the context,
// task selection, safety options, and paths, then walks the ordered task
// list applying the skip rules and recording completions. Resolution is
// strictly linear; nothing loops back once resolved.
package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/paperl/serverinit/internal/config"
	"github.com/paperl/serverinit/internal/logger"
	"github.com/paperl/serverinit/internal/provision"
	"github.com/paperl/serverinit/internal/runner"
	"github.com/paperl/serverinit/internal/state"
	"github.com/paperl/serverinit/internal/sysinfo"
	"github.com/paperl/serverinit/internal/task"
	"github.com/paperl/serverinit/internal/ui"
)

// DefaultStatePath is where the run journal lives unless overridden.
const DefaultStatePath = ".server_init_state.yaml"

// RunConfig carries the CLI flags into the driver.
type RunConfig struct {
	Context     string
	Tasks       string
	Yes         bool
	DryRun      bool
	Force       bool
	NoMenu      bool
	LogFile     string
	ResumeState string
	WriteState  string
}

// Run executes the whole provisioning workflow. The journal is persisted
// unconditionally at the end so the operator can always see what completed,
// even after a failure.
func Run(cfg RunConfig) (err error) {
	log := logger.NewEnvLogger("[workflow]")

	statePath := cfg.ResumeState
	if statePath == "" {
		statePath = DefaultStatePath
	}
	journal := state.LoadJournal(statePath, log)

	info := sysinfo.Detect()
	fmt.Printf("Detected OS: %s %s\n", info.OS, info.Version)
	fmt.Printf("Detected architecture: %s\n", info.Arch)

	useMenu := !cfg.NoMenu && ui.IsInteractive()

	ctx, err := resolveContext(cfg, useMenu)
	if err != nil {
		return err
	}
	indices, err := resolveTasks(cfg, ctx, useMenu)
	if err != nil {
		return err
	}

	prompter := &ui.Prompter{AutoConfirm: cfg.Yes}
	sudoConfirm := prompter.Confirm
	if !useMenu {
		// No prompt without a menu; elevation stays at its conservative default.
		sudoConfirm = nil
	}
	opts, err := config.ResolveOptions(cfg.Force, cfg.DryRun, cfg.Yes, sudoConfirm)
	if err != nil {
		return err
	}

	targetUser := ""
	if ctx != task.ContextRoot {
		targetUser = sysinfo.CurrentUser()
	}
	paths, err := config.DetectDefaults(ctx, targetUser)
	if err != nil {
		return err
	}
	if !opts.AutoConfirm && useMenu {
		paths, err = config.ConfirmPaths(paths, prompter.Ask)
		if err != nil {
			return err
		}
	}

	logPath, err := prepareLogPath(cfg.LogFile)
	if err != nil {
		return err
	}
	fmt.Printf("Logging commands to %s\n", logPath)

	run, err := runner.New(logPath, opts.DryRun, opts.SudoAllowed)
	if err != nil {
		return err
	}
	defer run.Close()

	writePath := cfg.WriteState
	if writePath == "" {
		writePath = statePath
	}
	// Partial-run durability: persist whatever completed even when a task
	// body fails mid-run.
	defer func() {
		if saveErr := journal.SaveTo(writePath); saveErr != nil {
			log.Warn("failed to persist journal: %v", saveErr)
		}
	}()

	ordered := task.OrderFromIndices(indices)
	deps := provision.Deps{
		Runner:   run,
		Options:  opts,
		Paths:    paths,
		Prompt:   prompter,
		Identity: config.LoadIdentity(),
	}
	invoke := func(key string) error {
		return provision.Invoke(key, deps, info.Arch)
	}

	err = executeTasks(ordered, ctx, opts, paths, journal, invoke)

	printSummary(ctx, indices, journal, logPath, opts.DryRun)
	return err
}

// executeTasks walks the ordered task list. Precedence per task: context
// skip (nothing recorded) → completion skip via marker or journal (unless
// force) → execute and record. Each task runs at most once; the ordered
// list is already deduplicated.
func executeTasks(
	ordered []task.Definition,
	ctx task.Context,
	opts config.Options,
	paths config.Paths,
	journal state.Journal,
	invoke func(key string) error,
) error {
	for _, def := range ordered {
		if task.ShouldSkip(def.Key, ctx) {
			fmt.Printf("%s Skipping %s due to context rules.\n", ui.SymbolSkipped, def.Title)
			continue
		}
		if !opts.Force && state.IsComplete(paths, def.Key) {
			fmt.Printf("%s Skipping %s (already completed at %s).\n",
				ui.SymbolSkipped, def.Title, state.MarkerPath(paths, def.Key))
			journal[def.Key] = true
			continue
		}
		if !opts.Force && journal[def.Key] {
			fmt.Printf("%s Skipping %s (already completed; use --force to rerun).\n",
				ui.SymbolSkipped, def.Title)
			continue
		}

		fmt.Printf("\n=== Running task: %s ===\n", def.Title)
		if err := invoke(def.Key); err != nil {
			return err
		}
		if err := state.MarkComplete(paths, def.Key, opts.DryRun); err != nil {
			return err
		}
		journal[def.Key] = true
	}
	return nil
}

// resolveContext settles the deployment context from the flag and, when
// menus are in play, the interactive picker seeded with the flag value.
func resolveContext(cfg RunConfig, useMenu bool) (task.Context, error) {
	value := task.ContextRoot
	if cfg.Context != "" {
		parsed, err := task.ParseContext(cfg.Context)
		if err != nil {
			return "", err
		}
		value = parsed
	}

	if cfg.NoMenu || !useMenu || (cfg.Context != "" && cfg.Yes) {
		return value, nil
	}
	return ui.PickContext(value)
}

// resolveTasks computes the selected task indices. An explicit list is
// batch-validated; otherwise the context defaults seed the selection. The
// multi-select is offered unless menus are bypassed or the explicit list is
// auto-confirmed.
func resolveTasks(cfg RunConfig, ctx task.Context, useMenu bool) ([]int, error) {
	var indices []int
	if cfg.Tasks != "" {
		parsed, err := task.ParseKeys(cfg.Tasks)
		if err != nil {
			return nil, err
		}
		indices = parsed
	} else {
		indices = task.DefaultsFor(ctx)
	}

	if cfg.NoMenu || !useMenu || (cfg.Tasks != "" && cfg.Yes) {
		return indices, nil
	}
	return ui.PickTasks(indices)
}

// prepareLogPath resolves the audit log location: an explicit override, or
// logs/server_init_<timestamp>.log under the working directory.
func prepareLogPath(override string) (string, error) {
	logPath := override
	if logPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		logsDir := filepath.Join(cwd, "logs")
		if err := os.MkdirAll(logsDir, 0o755); err != nil {
			return "", err
		}
		logPath = filepath.Join(logsDir,
			fmt.Sprintf("server_init_%s.log", time.Now().Format("20060102_150405")))
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return "", err
	}
	return logPath, nil
}
