package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/go-github/v80/github"
	"github.com/sourcegraph/go-diff/diff"
	domainErrors "github.com/thomas-vilte/matetest/internal/errors"
	"github.com/thomas-vilte/matetest/internal/logger"
	"github.com/thomas-vilte/matetest/internal/models"
	"github.com/thomas-vilte/matetest/internal/regex"
	"github.com/thomas-vilte/matetest/internal/vcs"
	"golang.org/x/oauth2"
)

var _ vcs.Client = (*GitHubClient)(nil)

const filesPerPage = 100

type PullRequestsService interface {
	Get(ctx context.Context, owner, repo string, number int) (*github.PullRequest, *github.Response, error)
	ListFiles(ctx context.Context, owner, repo string, number int, opts *github.ListOptions) ([]*github.CommitFile, *github.Response, error)
	GetRaw(ctx context.Context, owner, repo string, number int, opts github.RawOptions) (string, *github.Response, error)
}

type GitHubClient struct {
	prService PullRequestsService
}

// NewGitHubClient builds a client authenticated with token. An empty token
// gives anonymous access. baseURL selects a GitHub Enterprise API endpoint.
func NewGitHubClient(token, baseURL string) (*GitHubClient, error) {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	client := github.NewClient(httpClient)
	if baseURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(baseURL, baseURL)
		if err != nil {
			return nil, domainErrors.ErrConfigInvalid.
				WithContext("field", "vcs.base_url").
				WithError(err)
		}
	}

	return NewGitHubClientWithServices(client.PullRequests), nil
}

func NewGitHubClientWithServices(prService PullRequestsService) *GitHubClient {
	return &GitHubClient{
		prService: prService,
	}
}

// ParseRepo splits an "owner/name" identifier.
func ParseRepo(repo string) (owner, name string, err error) {
	matches := regex.RepoSlug.FindStringSubmatch(strings.TrimSpace(repo))
	if matches == nil {
		return "", "", domainErrors.ErrInvalidRepo.WithContext("repo", repo)
	}
	return matches[1], matches[2], nil
}

func (ghc *GitHubClient) GetPullRequest(ctx context.Context, repo string, number int) (models.PullRequestInfo, error) {
	log := logger.FromContext(ctx)

	owner, name, err := ParseRepo(repo)
	if err != nil {
		return models.PullRequestInfo{}, err
	}
	if number <= 0 {
		return models.PullRequestInfo{}, domainErrors.ErrFetchPR.
			WithContext("reason", "pull request number must be positive").
			WithContext("pr_number", number)
	}

	log.Debug("fetching github pull request",
		"owner", owner,
		"repo", name,
		"pr_number", number)

	pr, resp, err := ghc.prService.Get(ctx, owner, name, number)
	if err != nil {
		log.Error("failed to fetch github PR",
			"error", err,
			"owner", owner,
			"repo", name,
			"pr_number", number)
		return models.PullRequestInfo{}, mapError(resp, err, "get PR", repo, number)
	}

	files, err := ghc.listFiles(ctx, owner, name, number)
	if err != nil {
		log.Error("failed to list github PR files",
			"error", err,
			"pr_number", number)
		return models.PullRequestInfo{}, err
	}

	changes := models.ChangeSet{
		models.ChangeAdded:    []string{},
		models.ChangeModified: []string{},
		models.ChangeRemoved:  []string{},
	}
	diffs := models.DiffSet{}
	var missingPatches []string

	for _, f := range files {
		filename := f.GetFilename()
		switch status := f.GetStatus(); status {
		case models.ChangeAdded, models.ChangeModified, models.ChangeRemoved:
			changes[status] = append(changes[status], filename)
		default:
			log.Debug("ignoring file with unsupported status",
				"file", filename,
				"status", status)
		}

		diffs[filename] = f.GetPatch()
		if f.GetPatch() == "" && f.GetChanges() > 0 {
			missingPatches = append(missingPatches, filename)
		}
	}

	if len(missingPatches) > 0 {
		ghc.fillMissingPatches(ctx, owner, name, number, missingPatches, diffs)
	}

	info := models.PullRequestInfo{
		Number:      number,
		Title:       pr.GetTitle(),
		Description: pr.GetBody(),
		BaseBranch:  pr.GetBase().GetRef(),
		HeadBranch:  pr.GetHead().GetRef(),
		Changes:     changes,
		Diffs:       diffs,
	}

	log.Debug("github PR fetched successfully",
		"pr_number", number,
		"title", info.Title,
		"files_count", len(files),
		"missing_patches", len(missingPatches))

	return info, nil
}

func (ghc *GitHubClient) listFiles(ctx context.Context, owner, name string, number int) ([]*github.CommitFile, error) {
	var all []*github.CommitFile
	opts := &github.ListOptions{PerPage: filesPerPage}

	for {
		files, resp, err := ghc.prService.ListFiles(ctx, owner, name, number, opts)
		if err != nil {
			return nil, mapError(resp, err, "list PR files", owner+"/"+name, number)
		}
		all = append(all, files...)

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// fillMissingPatches recovers patches GitHub omitted from the file listing
// (large or generated files) from the raw PR diff. Failures only cost the
// missing patches, so they are logged and swallowed.
func (ghc *GitHubClient) fillMissingPatches(ctx context.Context, owner, name string, number int, missing []string, diffs models.DiffSet) {
	log := logger.FromContext(ctx)

	raw, _, err := ghc.prService.GetRaw(ctx, owner, name, number, github.RawOptions{Type: github.Diff})
	if err != nil {
		log.Warn("could not fetch raw PR diff, continuing without some patches",
			"error", err,
			"pr_number", number,
			"missing_count", len(missing))
		return
	}

	patches, err := SplitRawDiff(raw)
	if err != nil {
		log.Warn("could not parse raw PR diff, continuing without some patches",
			"error", err,
			"pr_number", number)
		return
	}

	recovered := 0
	for _, path := range missing {
		if patch, ok := patches[path]; ok && patch != "" {
			diffs[path] = patch
			recovered++
		}
	}

	log.Debug("recovered patches from raw diff",
		"missing_count", len(missing),
		"recovered_count", recovered)
}

// SplitRawDiff parses a unified multi-file diff into per-file hunk text,
// keyed by the file's path in the head revision (the base path for deletions).
func SplitRawDiff(raw string) (map[string]string, error) {
	fileDiffs, err := diff.ParseMultiFileDiff([]byte(raw))
	if err != nil {
		return nil, fmt.Errorf("error parsing multi-file diff: %w", err)
	}

	patches := make(map[string]string, len(fileDiffs))
	for _, fd := range fileDiffs {
		path := diffPath(fd)
		if path == "" {
			continue
		}
		hunks, err := diff.PrintHunks(fd.Hunks)
		if err != nil {
			return nil, fmt.Errorf("error printing hunks for %s: %w", path, err)
		}
		patches[path] = strings.TrimRight(string(hunks), "\n")
	}
	return patches, nil
}

// diffPath strips the git side prefix of whichever name is used: b/ for the
// new name, a/ for the original name on deletions.
func diffPath(fd *diff.FileDiff) string {
	if fd.NewName != "" && fd.NewName != "/dev/null" {
		return strings.TrimPrefix(fd.NewName, "b/")
	}
	if fd.OrigName == "" || fd.OrigName == "/dev/null" {
		return ""
	}
	return strings.TrimPrefix(fd.OrigName, "a/")
}

func mapError(resp *github.Response, err error, operation, repo string, number int) error {
	var rateErr *github.RateLimitError
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return domainErrors.ErrGitHubRateLimit.
			WithContext("operation", operation).
			WithError(err)
	}

	if resp != nil {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return domainErrors.ErrGitHubTokenInvalid.
				WithContext("operation", operation).
				WithContext("pr_number", number)
		case http.StatusNotFound:
			return domainErrors.ErrRepositoryNotFound.
				WithContext("operation", operation).
				WithContext("pr_number", number).
				WithContext("repo", repo)
		case http.StatusTooManyRequests:
			return domainErrors.ErrGitHubRateLimit.
				WithContext("retry_after", resp.Header.Get("Retry-After")).
				WithContext("operation", operation)
		}
	}

	return domainErrors.ErrFetchPR.
		WithContext("operation", operation).
		WithContext("repo", repo).
		WithContext("pr_number", number).
		WithError(err)
}
