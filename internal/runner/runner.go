// Package runner executes or simulates shell commands with an append-only
// audit log. Every invocation is logged before anything is spawned; dry-run
// and sudo policy are enforced here so task bodies cannot escalate on their
// own.
package runner

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"time"

	"github.com/paperl/serverinit/internal/errors"
	"github.com/paperl/serverinit/internal/util"
)

// Command describes one invocation. Argv is the raw argument vector; the
// sudo prefix is added by the runner, never by callers.
type Command struct {
	Argv []string
	Sudo bool
	Dir  string
	Env  map[string]string
	// AllowFailure suppresses the non-zero-exit error so callers can
	// implement best-effort steps (e.g., account creation that may already
	// have happened).
	AllowFailure bool
}

// Result is the captured outcome of a live execution. Dry-run invocations
// return no result; callers cannot branch on output they never produced.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner logs and optionally executes commands. The log destination is
// opened once per run and must be closed by the owner when the workflow
// ends, success or failure.
type Runner struct {
	log         io.Writer
	logFile     *os.File
	dryRun      bool
	sudoAllowed bool
	now         func() time.Time
}

// New opens the audit log at logPath (append-only, created if missing) and
// returns a runner bound to it.
func New(logPath string, dryRun, sudoAllowed bool) (*Runner, error) {
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot open log file at "+logPath,
			"Check the directory exists and is writable, or pass --log-file")
	}
	r := NewWithWriter(f, dryRun, sudoAllowed)
	r.logFile = f
	return r, nil
}

// NewWithWriter returns a runner logging to an arbitrary writer. Used by
// tests to capture the audit stream.
func NewWithWriter(w io.Writer, dryRun, sudoAllowed bool) *Runner {
	return &Runner{
		log:         w,
		dryRun:      dryRun,
		sudoAllowed: sudoAllowed,
		now:         time.Now,
	}
}

// Close releases the log destination. Safe to call when the runner was
// constructed with a plain writer.
func (r *Runner) Close() error {
	if r.logFile != nil {
		return r.logFile.Close()
	}
	return nil
}

// DryRun reports whether the runner simulates execution.
func (r *Runner) DryRun() bool {
	return r.dryRun
}

func (r *Runner) write(text string) {
	fmt.Fprint(r.log, text)
	if r.logFile != nil {
		// Keep the audit trail durable even if the process dies mid-task.
		_ = r.logFile.Sync()
	}
}

// Run logs and then executes (or simulates) a command.
//
// The log record always carries the timestamp, the shell-safe reconstructed
// command line, the working directory, the sudo flag, and the sorted names
// (never values) of overridden environment variables. In live mode stdout
// and stderr are fully captured and appended verbatim, followed by the exit
// status. A non-zero exit fails with an EXEC error unless AllowFailure is
// set; the captured result is returned either way.
func (r *Runner) Run(cmd Command) (*Result, error) {
	argv := cmd.Argv
	if cmd.Sudo {
		if !r.sudoAllowed {
			return nil, errors.New(errors.ErrConfig,
				"Attempted to use sudo without permission",
				"Elevation must be granted when the run starts; rerun and answer yes, or pass --yes")
		}
		argv = append([]string{"sudo", "--"}, argv...)
	}

	joined := util.ShellJoin(argv)
	cwd := cmd.Dir
	if cwd == "" {
		if wd, err := os.Getwd(); err == nil {
			cwd = wd
		}
	}
	envKeys := make([]string, 0, len(cmd.Env))
	for k := range cmd.Env {
		envKeys = append(envKeys, k)
	}
	sort.Strings(envKeys)

	timestamp := r.now().Format("2006-01-02 15:04:05")
	r.write(fmt.Sprintf("\n[%s] CMD: %s\n", timestamp, joined))
	r.write(fmt.Sprintf("cwd=%s sudo=%t env_overrides=%v\n", cwd, cmd.Sudo, envKeys))

	if r.dryRun {
		r.write("(dry-run) Command not executed.\n")
		return nil, nil
	}

	proc := exec.Command(argv[0], argv[1:]...)
	if cmd.Dir != "" {
		proc.Dir = cmd.Dir
	}
	if len(cmd.Env) > 0 {
		env := os.Environ()
		for _, k := range envKeys {
			env = append(env, k+"="+cmd.Env[k])
		}
		proc.Env = env
	}

	var stdout, stderr bytes.Buffer
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	runErr := proc.Run()
	exitCode := 0
	if runErr != nil {
		exitErr, ok := runErr.(*exec.ExitError)
		if !ok {
			r.write(fmt.Sprintf("spawn failed: %v\n", runErr))
			return nil, errors.WrapWithCode(runErr, errors.ErrExec,
				"Couldn't run the command: "+joined,
				"Make sure the command exists and is executable.")
		}
		exitCode = exitErr.ExitCode()
	}

	r.write(fmt.Sprintf("exit_code=%d\n", exitCode))
	if stdout.Len() > 0 {
		r.write("--- stdout ---\n" + stdout.String())
	}
	if stderr.Len() > 0 {
		r.write("--- stderr ---\n" + stderr.String())
	}

	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
	if exitCode != 0 && !cmd.AllowFailure {
		return result, errors.New(errors.ErrExec,
			fmt.Sprintf("Command failed with exit code %d: %s", exitCode, joined),
			"See the run log for captured output")
	}
	return result, nil
}
