package config

import "github.com/spf13/viper"

// Identity carries the operator-identity defaults consumed by the SSH and
// git tasks when auto-confirm suppresses prompting.
type Identity struct {
	GitHubUser string
	GitName    string
	GitEmail   string
}

// LoadIdentity reads the identity defaults from the environment. The GitHub
// username honors three historical spellings, first match wins.
func LoadIdentity() Identity {
	v := viper.New()
	_ = v.BindEnv("github_user", "GITHUB_USERNAME", "GH_USERNAME", "GH_USER")
	_ = v.BindEnv("git_name", "GIT_AUTHOR_NAME")
	_ = v.BindEnv("git_email", "GIT_AUTHOR_EMAIL")

	return Identity{
		GitHubUser: v.GetString("github_user"),
		GitName:    v.GetString("git_name"),
		GitEmail:   v.GetString("git_email"),
	}
}
