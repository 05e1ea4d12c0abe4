package provision

import (
	"github.com/paperl/serverinit/internal/runner"
)

// GitSetup configures the global git identity. Blank answers skip the
// corresponding setting; under auto-confirm the identity comes from the
// GIT_AUTHOR_NAME/GIT_AUTHOR_EMAIL environment.
func GitSetup(d Deps) error {
	header("[Git setup] Capture git identity.")

	var username, email string
	if d.Options.AutoConfirm {
		username = d.Identity.GitName
		email = d.Identity.GitEmail
	} else {
		var err error
		username, err = d.Prompt.Ask("Git user.name (leave blank to skip)", "")
		if err != nil {
			return err
		}
		email, err = d.Prompt.Ask("Git user.email (leave blank to skip)", "")
		if err != nil {
			return err
		}
	}

	if username != "" {
		if _, err := d.Runner.Run(runner.Command{
			Argv: []string{"git", "config", "--global", "user.name", username},
		}); err != nil {
			return err
		}
	}
	if email != "" {
		if _, err := d.Runner.Run(runner.Command{
			Argv: []string{"git", "config", "--global", "user.email", email},
		}); err != nil {
			return err
		}
	}
	return nil
}
