package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paperl/serverinit/internal/workflow"
)

// Root command flags
var (
	contextFlag     string
	tasksFlag       string
	yesFlag         bool
	dryRunFlag      bool
	forceFlag       bool
	logFileFlag     string
	noMenuFlag      bool
	resumeStateFlag string
	writeStateFlag  string
)

// rootCmd runs the provisioning workflow directly; there are no
// subcommands beyond version and completion.
var rootCmd = &cobra.Command{
	Use:   "serverinit",
	Short: "Interactive machine provisioning orchestrator",
	Long: `serverinit provisions a machine by running a small fixed set of
idempotent setup tasks: OS/user configuration, SSH key population, zsh
customization, a Miniconda install, and git identity configuration.

Commands run in dry-run mode until --force is supplied, every command is
logged to an append-only audit file, and completed tasks are skipped on
rerun via per-task markers and a resumable state journal.

Examples:
  serverinit
  serverinit --context local --tasks zsh,conda --yes --no-menu
  serverinit --context root --force
  serverinit --resume-state .server_init_state.yaml --dry-run`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return workflow.Run(workflow.RunConfig{
			Context:     contextFlag,
			Tasks:       tasksFlag,
			Yes:         yesFlag,
			DryRun:      dryRunFlag,
			Force:       forceFlag,
			NoMenu:      noMenuFlag,
			LogFile:     logFileFlag,
			ResumeState: resumeStateFlag,
			WriteState:  writeStateFlag,
		})
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&contextFlag, "context", "", "preset the context (root, user, local)")
	flags.StringVar(&tasksFlag, "tasks", "", "comma-separated task keys to preselect (os,ssh,zsh,conda,git)")
	flags.BoolVarP(&yesFlag, "yes", "y", false, "assume yes for confirmation prompts")
	flags.BoolVar(&dryRunFlag, "dry-run", false, "print and log commands without executing them")
	flags.BoolVar(&forceFlag, "force", false, "rerun completed tasks; required to execute commands outside dry-run")
	flags.StringVar(&logFileFlag, "log-file", "", "override the default log file path")
	flags.BoolVar(&noMenuFlag, "no-menu", false, "skip menus when context/tasks are fully specified via flags")
	flags.StringVar(&resumeStateFlag, "resume-state", "", "path to a state file to resume a previous run")
	flags.StringVar(&writeStateFlag, "write-state", "", "save the execution journal to this path")
}

// Execute runs the root command, printing structured errors and exiting
// non-zero on any failure, including operator cancellation.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
