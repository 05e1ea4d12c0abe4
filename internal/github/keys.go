// Package github fetches an operator's public SSH keys from GitHub's
// .keys convention. The fetch is bounded and soft: any failure is logged and
// treated as zero keys, never as a fatal error.
package github

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/paperl/serverinit/internal/logger"
)

// FetchTimeout is the hard upper bound on the key fetch. After this the
// fetch is abandoned and treated as "no keys found".
const FetchTimeout = 10 * time.Second

const userAgent = "serverinit/1.0"

// Fetcher retrieves public keys for a GitHub username. BaseURL and Client
// are overridable for tests.
type Fetcher struct {
	BaseURL string
	Client  *http.Client
	Log     logger.Logger
}

// NewFetcher returns a Fetcher with the production endpoint and timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{
		BaseURL: "https://github.com",
		Client:  &http.Client{Timeout: FetchTimeout},
		Log:     logger.Default(),
	}
}

// FetchKeys downloads and validates the public keys published for username.
// Lines that do not parse as authorized_keys entries are dropped with a
// notice. All failure modes return an empty slice.
func (f *Fetcher) FetchKeys(username string) []string {
	url := fmt.Sprintf("%s/%s.keys", f.BaseURL, username)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		fmt.Printf("Failed to fetch keys for GitHub user '%s': %v\n", username, err)
		return nil
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.Client.Do(req)
	if err != nil {
		fmt.Printf("Failed to fetch keys for GitHub user '%s': %v\n", username, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Failed to fetch keys for GitHub user '%s' (HTTP %d).\n", username, resp.StatusCode)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("Failed to read keys for GitHub user '%s': %v\n", username, err)
		return nil
	}

	keys := ValidKeys(string(data))
	if len(keys) == 0 {
		fmt.Printf("No public keys found for GitHub user '%s'.\n", username)
	}
	return keys
}

// ValidKeys extracts the lines of data that parse as authorized_keys
// entries. Invalid lines are reported and skipped; they must never be
// appended to the target file.
func ValidKeys(data string) []string {
	var keys []string
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(line)); err != nil {
			fmt.Printf("Skipping unparseable key line: %.40s...\n", line)
			continue
		}
		keys = append(keys, line)
	}
	return keys
}
