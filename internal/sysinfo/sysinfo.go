// Package sysinfo detects the host facts the workflow needs up front: OS,
// kernel version, machine architecture, hostname, and the current user.
package sysinfo

import (
	"os"
	"os/exec"
	"os/user"
	"runtime"
	"strings"
)

// Info describes the host the workflow runs on.
type Info struct {
	OS       string
	Version  string
	Arch     string
	Hostname string
}

// archNames maps Go architecture names to the machine names used by
// installer download URLs (uname -m convention).
var archNames = map[string]string{
	"amd64": "x86_64",
	"arm64": "arm64",
	"386":   "i686",
}

// Detect gathers host facts. The kernel version is best-effort; an
// undetectable version is reported as "unknown" rather than failing the run.
func Detect() Info {
	version := "unknown"
	if out, err := exec.Command("uname", "-r").Output(); err == nil {
		version = strings.TrimSpace(string(out))
	}
	hostname, _ := os.Hostname()
	return Info{
		OS:       runtime.GOOS,
		Version:  version,
		Arch:     Arch(),
		Hostname: hostname,
	}
}

// Arch returns the machine architecture in uname -m convention.
func Arch() string {
	if name, ok := archNames[runtime.GOARCH]; ok {
		return name
	}
	return runtime.GOARCH
}

// IsRoot reports whether the process runs with root privileges.
func IsRoot() bool {
	return os.Geteuid() == 0
}

// CurrentUser returns the current username, falling back to the USER
// environment variable.
func CurrentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}
