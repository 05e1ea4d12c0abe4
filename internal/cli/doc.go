// Package cli implements the serverinit command-line interface.
//
// The root command maps flags onto workflow.RunConfig and delegates to the
// workflow driver; it carries no provisioning logic itself. Flag handling
// follows the one-shot nature of the tool: there are no subcommands beyond
// "version", and every run flows through the same linear resolution
// sequence (context, tasks, safety options, paths) before anything
// executes.
//
// # Safety flags
//
// --force is the single switch that permits real command execution; without
// it every run is a dry-run regardless of --dry-run. --yes auto-answers
// confirmation prompts (including the sudo grant) and suppresses the path
// review. --no-menu bypasses the interactive pickers entirely, which is the
// mode intended for scripted runs where --context and --tasks are fully
// specified.
package cli
