package workflow

import (
	"fmt"
	"sort"
	"strings"

	"github.com/paperl/serverinit/internal/state"
	"github.com/paperl/serverinit/internal/task"
	"github.com/paperl/serverinit/internal/ui"
)

// printSummary reports requested vs. completed tasks at the end of a run.
// Completed includes carryover from prior runs loaded via the journal.
func printSummary(ctx task.Context, requested []int, journal state.Journal, logPath string, dryRun bool) {
	requestedKeys := make([]string, 0, len(requested))
	for _, def := range task.OrderFromIndices(requested) {
		requestedKeys = append(requestedKeys, def.Key)
	}
	completed := journal.CompletedKeys()
	sort.Strings(completed)

	fmt.Println()
	fmt.Println(ui.HeaderStyle.Render("Run summary:"))
	fmt.Printf("  Context: %s\n", ctx)
	fmt.Printf("  Tasks requested: [%s]\n", strings.Join(requestedKeys, " "))
	fmt.Printf("  Tasks completed: [%s]\n", strings.Join(completed, " "))
	fmt.Printf("  Log file: %s\n", logPath)

	if dryRun {
		fmt.Println(ui.MutedStyle.Render(
			"Next steps: review the log, then re-run with --force to execute commands."))
	} else {
		fmt.Println(ui.MutedStyle.Render(
			"Next steps: review the log and rerun tasks if further adjustments are needed."))
	}
}
