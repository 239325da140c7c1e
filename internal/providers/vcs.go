package providers

import (
	"github.com/thomas-vilte/matetest/internal/config"
	domainErrors "github.com/thomas-vilte/matetest/internal/errors"
	"github.com/thomas-vilte/matetest/internal/vcs"
	"github.com/thomas-vilte/matetest/internal/vcs/github"
)

// NewVCSClient creates a vcs.Client for the configured provider.
func NewVCSClient(cfg config.VCSConfig) (vcs.Client, error) {
	switch cfg.Provider {
	case "github":
		client, err := github.NewGitHubClient(cfg.Token, cfg.BaseURL)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, domainErrors.ErrProviderNotSupported.
			WithContext("vcs_provider", cfg.Provider)
	}
}
