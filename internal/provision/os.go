package provision

import (
	"fmt"
	"os"

	"github.com/paperl/serverinit/internal/runner"
	"github.com/paperl/serverinit/internal/sysinfo"
)

// OSSettings manages the hostname and, when running as root, offers to
// create a fresh user account. Account creation is best-effort: adduser may
// fail when the account already exists, which is fine on reruns.
func OSSettings(d Deps) error {
	hostname, _ := os.Hostname()
	header(fmt.Sprintf("[OS settings] Current hostname: %s", hostname))

	change, err := d.Prompt.Confirm("Change hostname?", false)
	if err != nil {
		return err
	}
	if change {
		newHostname, err := d.Prompt.Ask("New hostname", "")
		if err != nil {
			return err
		}
		if newHostname != "" {
			if _, err := d.Runner.Run(runner.Command{
				Argv: []string{"hostnamectl", "set-hostname", newHostname},
				Sudo: true,
			}); err != nil {
				return err
			}
		} else {
			fmt.Println("Hostname unchanged (empty value).")
		}
	}

	if sysinfo.IsRoot() {
		create, err := d.Prompt.Confirm("Create a new user account?", true)
		if err != nil {
			return err
		}
		if create {
			username, err := d.Prompt.Ask("Username for the new account", "")
			if err != nil {
				return err
			}
			if username == "" {
				fmt.Println("No username provided; skipping user creation.")
			} else {
				grantSudo, err := d.Prompt.Confirm("Grant sudo privileges to the new user?", true)
				if err != nil {
					return err
				}
				if _, err := d.Runner.Run(runner.Command{
					Argv:         []string{"adduser", username},
					Sudo:         true,
					AllowFailure: true,
				}); err != nil {
					return err
				}
				if grantSudo {
					if _, err := d.Runner.Run(runner.Command{
						Argv: []string{"usermod", "-aG", "sudo", username},
						Sudo: true,
					}); err != nil {
						return err
					}
				}
			}
		}
	} else {
		current := sysinfo.CurrentUser()
		cont, err := d.Prompt.Confirm(
			fmt.Sprintf("Continue with current user '%s'?", current), true)
		if err != nil {
			return err
		}
		if !cont {
			fmt.Println("Manual switch to another user is required before rerunning.")
		}
	}

	return nil
}
