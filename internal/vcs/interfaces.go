package vcs

import (
	"context"

	"github.com/thomas-vilte/matetest/internal/models"
)

// Client fetches pull request data from a version control provider.
type Client interface {
	// GetPullRequest returns metadata, per-category file lists and per-file
	// diffs for a pull request. repo is "owner/name".
	GetPullRequest(ctx context.Context, repo string, number int) (models.PullRequestInfo, error)
}
