package provision

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/paperl/serverinit/internal/config"
	"github.com/paperl/serverinit/internal/github"
	"github.com/paperl/serverinit/internal/logger"
	"github.com/paperl/serverinit/internal/runner"
)

// fakePrompt answers prompts by substring match on the title; anything
// unmatched keeps the default.
type fakePrompt struct {
	confirms map[string]bool
	asks     map[string]string
}

func (f *fakePrompt) Confirm(title string, def bool) (bool, error) {
	for k, v := range f.confirms {
		if strings.Contains(title, k) {
			return v, nil
		}
	}
	return def, nil
}

func (f *fakePrompt) Ask(label, def string) (string, error) {
	for k, v := range f.asks {
		if strings.Contains(label, k) {
			return v, nil
		}
	}
	return def, nil
}

func testDeps(t *testing.T, log *bytes.Buffer, dryRun bool) Deps {
	t.Helper()
	home := t.TempDir()
	paths := config.Paths{
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
	return Deps{
		Runner:  runner.NewWithWriter(log, dryRun, true),
		Options: config.Options{DryRun: dryRun, SudoAllowed: true},
		Paths:   paths,
		Prompt:  &fakePrompt{},
	}
}

func genTestKey(t *testing.T) string {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	sshPub, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)
	return strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub)))
}

func overrideKeyFetcher(t *testing.T, baseURL string) {
	t.Helper()
	old := keyFetcher
	keyFetcher = func() *github.Fetcher {
		return &github.Fetcher{BaseURL: baseURL, Client: &http.Client{}, Log: logger.Noop()}
	}
	t.Cleanup(func() { keyFetcher = old })
}

func TestMissingKeys(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		fetched  []string
		want     []string
	}{
		{
			name:     "empty file gets everything",
			existing: "",
			fetched:  []string{"key-a", "key-b"},
			want:     []string{"key-a", "key-b"},
		},
		{
			name:     "present keys are not repeated",
			existing: "key-a\n",
			fetched:  []string{"key-a", "key-b"},
			want:     []string{"key-b"},
		},
		{
			name:     "comment lines do not count as keys",
			existing: "# key-a\n",
			fetched:  []string{"key-a"},
			want:     []string{"key-a"},
		},
		{
			name:     "all present yields nothing",
			existing: "key-a\nkey-b\n",
			fetched:  []string{"key-a", "key-b"},
			want:     nil,
		},
		{
			name:     "whitespace around existing lines is ignored",
			existing: "  key-a  \n",
			fetched:  []string{"key-a"},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MissingKeys(tt.existing, tt.fetched))
		})
	}
}

func TestSSHSetupAppendsOnlyNewKeys(t *testing.T) {
	key1 := genTestKey(t)
	key2 := genTestKey(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(key1 + "\n" + key2 + "\n"))
	}))
	defer srv.Close()
	overrideKeyFetcher(t, srv.URL)

	var log bytes.Buffer
	d := testDeps(t, &log, false)
	d.Options.AutoConfirm = true
	d.Identity = config.Identity{GitHubUser: "octocat"}

	require.NoError(t, os.MkdirAll(filepath.Dir(d.Paths.SSHAuthorizedKeys), 0o700))
	require.NoError(t, os.WriteFile(d.Paths.SSHAuthorizedKeys, []byte(key1+"\n"), 0o600))

	require.NoError(t, SSHSetup(d))

	data, err := os.ReadFile(d.Paths.SSHAuthorizedKeys)
	require.NoError(t, err)
	content := string(data)
	assert.Equal(t, 1, strings.Count(content, key1), "existing key must not be duplicated")
	assert.Equal(t, 1, strings.Count(content, key2))
	assert.Contains(t, content, "# GitHub keys for octocat added")

	// Permission tightening goes through the audited runner.
	assert.Contains(t, log.String(), "CMD: chmod 700 ")
	assert.Contains(t, log.String(), "CMD: chmod 600 ")
}

func TestSSHSetupNoUsernameSkipsDownload(t *testing.T) {
	// The fetcher points at a dead endpoint; reaching it would fail loudly.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	overrideKeyFetcher(t, srv.URL)

	var log bytes.Buffer
	d := testDeps(t, &log, false)
	d.Options.AutoConfirm = true

	require.NoError(t, SSHSetup(d))

	data, err := os.ReadFile(d.Paths.SSHAuthorizedKeys)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestSSHSetupDryRunWritesNothing(t *testing.T) {
	key := genTestKey(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(key + "\n"))
	}))
	defer srv.Close()
	overrideKeyFetcher(t, srv.URL)

	var log bytes.Buffer
	d := testDeps(t, &log, true)
	d.Options.AutoConfirm = true
	d.Identity = config.Identity{GitHubUser: "octocat"}

	require.NoError(t, SSHSetup(d))

	_, err := os.Stat(d.Paths.SSHAuthorizedKeys)
	assert.True(t, os.IsNotExist(err), "dry run must not create the keys file")
	assert.Contains(t, log.String(), "(dry-run) Command not executed.")
}

func TestGitSetupConfiguresIdentity(t *testing.T) {
	var log bytes.Buffer
	d := testDeps(t, &log, true)
	d.Prompt = &fakePrompt{asks: map[string]string{
		"user.name":  "Jane Doe",
		"user.email": "jane@example.com",
	}}

	require.NoError(t, GitSetup(d))

	assert.Contains(t, log.String(), "CMD: git config --global user.name 'Jane Doe'")
	assert.Contains(t, log.String(), "CMD: git config --global user.email jane@example.com")
}

func TestGitSetupBlankAnswersSkip(t *testing.T) {
	var log bytes.Buffer
	d := testDeps(t, &log, true)

	require.NoError(t, GitSetup(d))
	assert.NotContains(t, log.String(), "CMD:")
}

func TestGitSetupAutoConfirmUsesEnvironmentIdentity(t *testing.T) {
	var log bytes.Buffer
	d := testDeps(t, &log, true)
	d.Options.AutoConfirm = true
	d.Identity = config.Identity{GitName: "Env Name", GitEmail: "env@example.com"}

	require.NoError(t, GitSetup(d))

	assert.Contains(t, log.String(), "user.name 'Env Name'")
	assert.Contains(t, log.String(), "user.email env@example.com")
}

func TestInstallerURL(t *testing.T) {
	tests := []struct {
		goos string
		arch string
		want string
		ok   bool
	}{
		{"linux", "x86_64", "https://repo.anaconda.com/miniconda/Miniconda3-latest-Linux-x86_64.sh", true},
		{"linux", "amd64", "https://repo.anaconda.com/miniconda/Miniconda3-latest-Linux-x86_64.sh", true},
		{"linux", "aarch64", "https://repo.anaconda.com/miniconda/Miniconda3-latest-Linux-aarch64.sh", true},
		{"linux", "arm64", "https://repo.anaconda.com/miniconda/Miniconda3-latest-Linux-aarch64.sh", true},
		{"darwin", "arm64", "https://repo.anaconda.com/miniconda/Miniconda3-latest-MacOSX-arm64.sh", true},
		{"darwin", "aarch64", "https://repo.anaconda.com/miniconda/Miniconda3-latest-MacOSX-arm64.sh", true},
		{"darwin", "x86_64", "https://repo.anaconda.com/miniconda/Miniconda3-latest-MacOSX-x86_64.sh", true},
		{"windows", "x86_64", "", false},
		{"linux", "riscv64", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.arch, func(t *testing.T) {
			url, ok := InstallerURL(tt.goos, tt.arch)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, url)
		})
	}
}

func TestMinicondaDryRunLogsPlannedCommands(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skip("no installer URL for this OS")
	}

	var log bytes.Buffer
	d := testDeps(t, &log, true)

	require.NoError(t, Miniconda(d, "x86_64"))

	logged := log.String()
	url, _ := InstallerURL(runtime.GOOS, "x86_64")
	assert.Contains(t, logged, url)
	assert.Contains(t, logged, "config --set auto_activate_base false")
	assert.Contains(t, logged, "tos accept --override-channels")
	assert.Contains(t, logged, "create -y -n py12 python=3.12")
	assert.Contains(t, logged, "init zsh")
}

func TestMinicondaUnsupportedArchIsSoftSkip(t *testing.T) {
	var log bytes.Buffer
	d := testDeps(t, &log, true)

	require.NoError(t, Miniconda(d, "riscv64"))
	assert.NotContains(t, log.String(), "wget")
}

func TestMinicondaDecliningTermsSkipsEnvCreation(t *testing.T) {
	var log bytes.Buffer
	d := testDeps(t, &log, true)
	d.Prompt = &fakePrompt{confirms: map[string]bool{"Terms of Service": false}}

	require.NoError(t, Miniconda(d, "x86_64"))
	assert.NotContains(t, log.String(), "create -y -n py12")
}

func TestUpsertIconColor(t *testing.T) {
	tests := []struct {
		name    string
		content string
		color   int
		want    string
	}{
		{
			name:    "replaces existing assignment",
			content: "typeset -g POWERLEVEL9K_OS_ICON_FOREGROUND=255\n",
			color:   38,
			want:    "typeset -g POWERLEVEL9K_OS_ICON_FOREGROUND=38\n",
		},
		{
			name:    "replaces indented assignment",
			content: "  typeset -g POWERLEVEL9K_OS_ICON_FOREGROUND=7\nother line\n",
			color:   42,
			want:    "typeset -g POWERLEVEL9K_OS_ICON_FOREGROUND=42\nother line\n",
		},
		{
			name:    "appends when absent",
			content: "# theme\n",
			color:   38,
			want:    "# theme\ntypeset -g POWERLEVEL9K_OS_ICON_FOREGROUND=38\n",
		},
		{
			name:    "appends with newline repair",
			content: "# theme",
			color:   38,
			want:    "# theme\ntypeset -g POWERLEVEL9K_OS_ICON_FOREGROUND=38\n",
		},
		{
			name:    "empty content",
			content: "",
			color:   10,
			want:    "typeset -g POWERLEVEL9K_OS_ICON_FOREGROUND=10\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UpsertIconColor(tt.content, tt.color))
		})
	}
}

func TestCustomZshDryRunLogsInstallPlan(t *testing.T) {
	var log bytes.Buffer
	d := testDeps(t, &log, true)

	require.NoError(t, CustomZsh(d))

	logged := log.String()
	assert.Contains(t, logged, "CMD: sudo -- apt update")
	assert.Contains(t, logged, "CMD: sudo -- apt install -y zsh")
	assert.Contains(t, logged, "powerlevel10k.git")
	assert.Contains(t, logged, "zsh-autosuggestions")
	assert.Contains(t, logged, "zsh-syntax-highlighting")
	assert.Contains(t, logged, "fzf")
	assert.Contains(t, logged, "atuin")
	assert.Contains(t, logged, "chsh -s ")

	// Nothing on disk in dry-run mode.
	_, err := os.Stat(filepath.Join(d.Paths.HomeDir, ".zsh"))
	assert.True(t, os.IsNotExist(err))
}

func TestInvokeUnknownKeyIsNotice(t *testing.T) {
	var log bytes.Buffer
	d := testDeps(t, &log, true)
	assert.NoError(t, Invoke("bogus", d, "x86_64"))
	assert.Empty(t, log.String())
}
