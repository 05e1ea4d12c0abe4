package provision

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/paperl/serverinit/internal/runner"
	"github.com/paperl/serverinit/internal/sysinfo"
)

// defaultIconColor is the p10k OS-icon foreground used when the operator
// doesn't pick one.
const defaultIconColor = 38

// paletteCmd renders the 256-color palette inside zsh so the operator can
// pick an icon color by number.
const paletteCmd = `for i in {0..255}; do print -Pn "%K{$i}  %k%F{$i}${(l:3::0:)i}%f " ${${(M)$((i%6)):#3}:+$'\n'}; done`

var iconColorPattern = regexp.MustCompile(`(?m)^\s*typeset\s+-g\s+POWERLEVEL9K_OS_ICON_FOREGROUND\s*=\s*\d+\s*$`)

// CustomZsh installs zsh with plugins, switches the default shell, copies
// the bundled dotfiles, and customizes the prompt theme color. Missing
// optional sources (bundled .zshrc, theme file) are soft skips.
func CustomZsh(d Deps) error {
	header("[Customized zsh] Installing zsh and plugins (logged only by default).")

	home := d.Paths.HomeDir
	installs := []runner.Command{
		{Argv: []string{"apt", "update"}, Sudo: true},
		{Argv: []string{"apt", "install", "-y", "zsh"}, Sudo: true},
		{Argv: []string{"git", "clone", "--depth=1",
			"https://github.com/romkatv/powerlevel10k.git",
			filepath.Join(home, ".zsh", "powerlevel10k")}},
		{Argv: []string{"git", "clone",
			"https://github.com/zsh-users/zsh-autosuggestions",
			filepath.Join(home, ".zsh", "zsh-autosuggestions")}},
		{Argv: []string{"git", "clone",
			"https://github.com/zsh-users/zsh-syntax-highlighting.git",
			filepath.Join(home, ".zsh", "zsh-syntax-highlighting")}},
		{Argv: []string{"git", "clone", "--depth", "1",
			"https://github.com/junegunn/fzf.git",
			filepath.Join(home, "toolchain", "fzf")}},
		{Argv: []string{"bash",
			filepath.Join(home, "toolchain", "fzf", "install"),
			"--all", "--no-update-rc"}},
		{Argv: []string{"bash", "-lc",
			"curl -fsSL https://raw.githubusercontent.com/atuinsh/atuin/main/install.sh | bash"}},
	}
	for _, cmd := range installs {
		if _, err := d.Runner.Run(cmd); err != nil {
			return err
		}
	}

	if err := switchDefaultShell(d); err != nil {
		return err
	}

	if !d.Options.DryRun {
		if err := os.MkdirAll(filepath.Join(home, ".zsh"), 0o755); err != nil {
			return err
		}
		for _, dir := range d.Paths.DataDirs {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
		}
		copyBundledDotfiles(d)
	}

	if err := customizeIconColor(d); err != nil {
		return err
	}

	fmt.Printf("Atuin reminder: set sync_address in %s and run 'atuin login' to use the self-hosted sync server.\n",
		filepath.Join(home, ".config", "atuin", "config.toml"))
	return nil
}

// switchDefaultShell runs chsh unless zsh is already the target user's
// shell. Changing another user's shell requires elevation.
func switchDefaultShell(d Deps) error {
	currentShell := os.Getenv("SHELL")
	zshPath, err := exec.LookPath("zsh")
	if err != nil {
		zshPath = "/usr/bin/zsh"
	}

	targetUser := filepath.Base(d.Paths.HomeDir)
	currentUser := sysinfo.CurrentUser()
	if strings.HasSuffix(currentShell, "zsh") && targetUser == currentUser {
		fmt.Println("Default shell already set to zsh; skipping chsh.")
		return nil
	}

	cmd := runner.Command{Argv: []string{"chsh", "-s", zshPath}}
	if targetUser != "" && targetUser != currentUser {
		cmd.Argv = append(cmd.Argv, targetUser)
		cmd.Sudo = true
	}
	_, err = d.Runner.Run(cmd)
	return err
}

// copyBundledDotfiles installs the .zshrc and theme templates shipped next
// to the binary. Missing sources are reported and skipped.
func copyBundledDotfiles(d Deps) {
	exe, err := os.Executable()
	if err != nil {
		fmt.Println("Cannot locate bundled dotfiles; skipping copy.")
		return
	}
	bundleDir := filepath.Dir(exe)
	copies := []struct{ src, dst string }{
		{filepath.Join(bundleDir, ".zshrc"), d.Paths.Zshrc},
		{filepath.Join(bundleDir, ".p10k_simplified_cmt.zsh"), d.Paths.P10k},
	}
	for _, c := range copies {
		if err := copyFile(c.src, c.dst); err != nil {
			if !os.IsNotExist(err) {
				fmt.Printf("Could not copy %s: %v\n", c.src, err)
			}
			continue
		}
	}
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, in)
	return err
}

// customizeIconColor shows the 256-color palette when possible, asks for a
// color id, and upserts the POWERLEVEL9K_OS_ICON_FOREGROUND line in the
// theme file, keeping a timestamped backup of the prior content.
func customizeIconColor(d Deps) error {
	header("[Customized zsh] Theme color customization for POWERLEVEL9K_OS_ICON_FOREGROUND")

	if _, err := exec.LookPath("zsh"); err == nil && !d.Options.DryRun {
		// Palette display is best-effort; a broken interactive zsh must not
		// abort the task.
		if res, err := d.Runner.Run(runner.Command{
			Argv:         []string{"zsh", "-ic", paletteCmd},
			AllowFailure: true,
		}); err == nil && res != nil && res.Stdout != "" {
			fmt.Print(res.Stdout)
		}
	} else {
		fmt.Println("(dry-run or zsh not available) Skipping palette display. Preview later with:")
		fmt.Printf("  zsh -ic '%s'\n", paletteCmd)
	}

	colorID := defaultIconColor
	if !d.Options.AutoConfirm {
		raw, err := d.Prompt.Ask(
			fmt.Sprintf("Enter color id for OS icon foreground [0-255] (default %d)", defaultIconColor), "")
		if err != nil {
			return err
		}
		if raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 || parsed > 255 {
				fmt.Printf("Invalid color id '%s'; using default %d.\n", raw, defaultIconColor)
			} else {
				colorID = parsed
			}
		}
	}

	newLine := fmt.Sprintf("typeset -g POWERLEVEL9K_OS_ICON_FOREGROUND=%d", colorID)
	p10k := d.Paths.P10k
	if _, err := os.Stat(p10k); err != nil {
		if d.Options.DryRun {
			fmt.Printf("(dry-run) Would create %s with: %s\n", p10k, newLine)
			return nil
		}
		if err := os.WriteFile(p10k, []byte(newLine+"\n"), 0o644); err != nil {
			return err
		}
		fmt.Printf("Created %s with OS icon color %d.\n", p10k, colorID)
		return nil
	}

	if d.Options.DryRun {
		fmt.Printf("(dry-run) Would update %s with: %s\n", p10k, newLine)
		return nil
	}

	backup := p10k + ".bak." + time.Now().Format("20060102_150405")
	if err := copyFile(p10k, backup); err != nil {
		fmt.Printf("Warning: failed to create backup %s: %v\n", backup, err)
	}

	data, err := os.ReadFile(p10k)
	if err != nil {
		return err
	}
	updated := UpsertIconColor(string(data), colorID)
	if err := os.WriteFile(p10k, []byte(updated), 0o644); err != nil {
		return err
	}
	fmt.Printf("Updated %s (backup at %s).\n", p10k, backup)
	return nil
}

// UpsertIconColor replaces the OS-icon foreground line in theme content, or
// appends one when no such line exists.
func UpsertIconColor(content string, colorID int) string {
	newLine := fmt.Sprintf("typeset -g POWERLEVEL9K_OS_ICON_FOREGROUND=%d", colorID)
	if iconColorPattern.MatchString(content) {
		return iconColorPattern.ReplaceAllString(content, newLine)
	}
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + newLine + "\n"
}
