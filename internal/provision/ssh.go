package provision

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/paperl/serverinit/internal/github"
	"github.com/paperl/serverinit/internal/runner"
)

// keyFetcher is swappable in tests.
var keyFetcher = func() *github.Fetcher { return github.NewFetcher() }

// SSHSetup prepares ~/.ssh/authorized_keys and populates it with the
// operator's published GitHub keys. Fetch failures, missing usernames, and
// already-present keys all degrade gracefully; only command failures abort.
func SSHSetup(d Deps) error {
	header("[SSH setup] Preparing ~/.ssh/authorized_keys flow.")

	keysFile := d.Paths.SSHAuthorizedKeys
	if !d.Options.DryRun {
		if err := os.MkdirAll(filepath.Dir(keysFile), 0o700); err != nil {
			return err
		}
		f, err := os.OpenFile(keysFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return err
		}
		f.Close()
	}
	if _, err := d.Runner.Run(runner.Command{
		Argv: []string{"chmod", "700", filepath.Dir(keysFile)},
	}); err != nil {
		return err
	}
	if _, err := d.Runner.Run(runner.Command{
		Argv: []string{"chmod", "600", keysFile},
	}); err != nil {
		return err
	}

	username := d.Identity.GitHubUser
	if !d.Options.AutoConfirm {
		answered, err := d.Prompt.Ask("GitHub username for SSH keys", username)
		if err != nil {
			return err
		}
		username = answered
	} else if username == "" {
		fmt.Println("Auto-confirm enabled but no GitHub username provided via environment; skipping key download.")
	}

	if username == "" {
		fmt.Println("No GitHub username provided; skipping public key download.")
		return nil
	}

	keys := keyFetcher().FetchKeys(username)
	if len(keys) == 0 {
		return nil
	}

	existing := ""
	if data, err := os.ReadFile(keysFile); err == nil {
		existing = string(data)
	}
	newKeys := MissingKeys(existing, keys)
	if len(newKeys) == 0 {
		fmt.Printf("All keys for GitHub user '%s' are already present in %s.\n", username, keysFile)
		return nil
	}

	if d.Options.DryRun {
		fmt.Printf("(dry-run) Would append %d keys for '%s' to %s.\n", len(newKeys), username, keysFile)
		return nil
	}

	f, err := os.OpenFile(keysFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(f, "\n# GitHub keys for %s added %s\n", username, timestamp)
	for _, key := range newKeys {
		fmt.Fprintln(f, key)
	}
	fmt.Printf("Added %d keys for GitHub user '%s'.\n", len(newKeys), username)
	return nil
}

// MissingKeys returns the fetched keys not already present in the
// authorized_keys content. Comment lines in the existing file are ignored.
func MissingKeys(existing string, fetched []string) []string {
	present := make(map[string]bool)
	for _, line := range strings.Split(existing, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		present[line] = true
	}
	var missing []string
	for _, key := range fetched {
		if !present[key] {
			missing = append(missing, key)
		}
	}
	return missing
}
