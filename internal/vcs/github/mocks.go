package github

import (
	"context"

	"github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/mock"
)

type MockPRService struct {
	mock.Mock
}

func (m *MockPRService) Get(ctx context.Context, owner, repo string, number int) (*github.PullRequest, *github.Response, error) {
	args := m.Called(ctx, owner, repo, number)
	var pr *github.PullRequest
	if args.Get(0) != nil {
		pr = args.Get(0).(*github.PullRequest)
	}
	return pr, response(args.Get(1)), args.Error(2)
}

func (m *MockPRService) ListFiles(ctx context.Context, owner, repo string, number int, opts *github.ListOptions) ([]*github.CommitFile, *github.Response, error) {
	args := m.Called(ctx, owner, repo, number, opts)
	var files []*github.CommitFile
	if args.Get(0) != nil {
		files = args.Get(0).([]*github.CommitFile)
	}
	return files, response(args.Get(1)), args.Error(2)
}

func (m *MockPRService) GetRaw(ctx context.Context, owner, repo string, number int, opts github.RawOptions) (string, *github.Response, error) {
	args := m.Called(ctx, owner, repo, number, opts)
	return args.String(0), response(args.Get(1)), args.Error(2)
}

func response(v interface{}) *github.Response {
	if v == nil {
		return nil
	}
	return v.(*github.Response)
}
