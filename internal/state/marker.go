// Package state tracks task completion across runs: per-task marker files
// under the target home directory, and a run-wide journal that can be
// persisted and resumed.
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/paperl/serverinit/internal/config"
	"github.com/paperl/serverinit/internal/errors"
)

// MarkerDirName is the hidden subdirectory of the target home that holds one
// marker file per completed task.
const MarkerDirName = ".server_init_markers"

// MarkerPath returns the marker file for a (home, task key) pair.
func MarkerPath(paths config.Paths, key string) string {
	return filepath.Join(paths.HomeDir, MarkerDirName, key+".done")
}

// IsComplete reports whether a task has a completion marker. Existence alone
// is the signal; the content is never parsed.
func IsComplete(paths config.Paths, key string) bool {
	_, err := os.Stat(MarkerPath(paths, key))
	return err == nil
}

// MarkComplete records a completion marker containing an informational
// timestamp. In dry-run mode the marking is simulated: a message is printed
// and nothing durable is written.
func MarkComplete(paths config.Paths, key string, dryRun bool) error {
	marker := MarkerPath(paths, key)
	if dryRun {
		fmt.Printf("(dry-run) Would record completion marker at %s.\n", marker)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(marker), 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrState,
			"Failed to create marker directory",
			"Check permissions on "+paths.HomeDir)
	}
	if err := os.WriteFile(marker, []byte(time.Now().Format(time.RFC3339)), 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrState,
			"Failed to write completion marker",
			"Check permissions on "+filepath.Dir(marker))
	}
	fmt.Printf("Recorded completion marker at %s.\n", marker)
	return nil
}
