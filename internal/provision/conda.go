package provision

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/paperl/serverinit/internal/runner"
)

// condaEnvName is the base environment created after install.
const condaEnvName = "py12"

// tosChannels are the repo.anaconda.com channels whose Terms of Service must
// be accepted before environments can be created.
var tosChannels = []string{
	"https://repo.anaconda.com/pkgs/main",
	"https://repo.anaconda.com/pkgs/r",
}

// Miniconda installs Miniconda under <home>/toolchain/miniconda3 and creates
// the base Python environment. The task is idempotent at the sub-step level:
// an existing install skips the installer, an existing environment skips
// creation.
func Miniconda(d Deps, arch string) error {
	header("[Miniconda] Checking/installing under ~/toolchain/miniconda3.")

	prefix := filepath.Join(d.Paths.HomeDir, "toolchain", "miniconda3")
	condaBin := filepath.Join(prefix, "bin", "conda")

	if _, err := os.Stat(condaBin); err == nil {
		fmt.Printf("Miniconda already present at %s. Skipping installer.\n", prefix)
	} else {
		url, ok := InstallerURL(runtime.GOOS, arch)
		if !ok {
			fmt.Printf("Unsupported OS/architecture '%s/%s' for automated Miniconda install.\n", runtime.GOOS, arch)
			return nil
		}

		installer := filepath.Join(d.Paths.HomeDir, "miniconda-installer.sh")
		if _, err := d.Runner.Run(runner.Command{
			Argv: []string{"wget", "-O", installer, url},
		}); err != nil {
			return err
		}
		if !d.Options.DryRun {
			if err := os.MkdirAll(filepath.Join(d.Paths.HomeDir, "toolchain"), 0o755); err != nil {
				return err
			}
		}
		if _, err := d.Runner.Run(runner.Command{
			Argv: []string{"bash", installer, "-b", "-p", prefix},
		}); err != nil {
			return err
		}
	}

	if _, err := d.Runner.Run(runner.Command{
		Argv: []string{condaBin, "config", "--set", "auto_activate_base", "false"},
	}); err != nil {
		return err
	}

	envDir := filepath.Join(prefix, "envs", condaEnvName)
	if _, err := os.Stat(envDir); err == nil {
		fmt.Printf("Conda environment '%s' already exists at %s. Skipping creation.\n", condaEnvName, envDir)
	} else {
		accept, err := d.Prompt.Confirm(
			"Accept Anaconda Terms of Service for repo.anaconda.com channels?", true)
		if err != nil {
			return err
		}
		if !accept {
			fmt.Println("Cannot proceed with Miniconda environment creation without accepting the Terms of Service.")
			return nil
		}
		for _, channel := range tosChannels {
			if _, err := d.Runner.Run(runner.Command{
				Argv: []string{condaBin, "tos", "accept", "--override-channels", "--channel", channel},
			}); err != nil {
				return err
			}
		}
		if _, err := d.Runner.Run(runner.Command{
			Argv: []string{condaBin, "create", "-y", "-n", condaEnvName, "python=3.12"},
		}); err != nil {
			return err
		}
	}

	if _, err := d.Runner.Run(runner.Command{
		Argv: []string{condaBin, "init", "zsh"},
	}); err != nil {
		return err
	}

	return ensureActivationLine(d)
}

// minicondaURLs maps (GOOS, machine arch) to the latest-installer URL.
var minicondaURLs = map[string]string{
	"darwin/arm64":  "https://repo.anaconda.com/miniconda/Miniconda3-latest-MacOSX-arm64.sh",
	"darwin/x86_64": "https://repo.anaconda.com/miniconda/Miniconda3-latest-MacOSX-x86_64.sh",
	"linux/x86_64":  "https://repo.anaconda.com/miniconda/Miniconda3-latest-Linux-x86_64.sh",
	"linux/aarch64": "https://repo.anaconda.com/miniconda/Miniconda3-latest-Linux-aarch64.sh",
}

// archAliases folds equivalent machine names together before URL lookup.
var archAliases = map[string]string{
	"amd64":   "x86_64",
	"arm64":   "arm64",
	"aarch64": "aarch64",
}

// InstallerURL resolves the Miniconda installer for an OS/arch pair. On
// linux, arm64 and aarch64 are the same installer.
func InstallerURL(goos, arch string) (string, bool) {
	if alias, ok := archAliases[arch]; ok {
		arch = alias
	}
	if goos == "linux" && arch == "arm64" {
		arch = "aarch64"
	}
	if goos == "darwin" && arch == "aarch64" {
		arch = "arm64"
	}
	url, ok := minicondaURLs[goos+"/"+arch]
	return url, ok
}

// ensureActivationLine appends "conda activate py12" to the zshrc when it's
// not already there, creating the file if needed.
func ensureActivationLine(d Deps) error {
	activation := "conda activate " + condaEnvName
	zshrc := d.Paths.Zshrc

	data, err := os.ReadFile(zshrc)
	if err != nil {
		if d.Options.DryRun {
			fmt.Printf("(dry-run) Would create %s with '%s'.\n", zshrc, activation)
			return nil
		}
		if mkErr := os.MkdirAll(filepath.Dir(zshrc), 0o755); mkErr != nil {
			return mkErr
		}
		if wErr := os.WriteFile(zshrc, []byte(activation+"\n"), 0o644); wErr != nil {
			return wErr
		}
		fmt.Printf("Created %s with '%s'.\n", zshrc, activation)
		return nil
	}

	content := string(data)
	if strings.Contains(content, activation) {
		return nil
	}
	if d.Options.DryRun {
		fmt.Printf("(dry-run) Would append '%s' to %s.\n", activation, zshrc)
		return nil
	}
	f, err := os.OpenFile(zshrc, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if !strings.HasSuffix(content, "\n") {
		fmt.Fprintln(f)
	}
	fmt.Fprintln(f, activation)
	return nil
}
