package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/thomas-vilte/matetest/internal/models"
)

type (
	MockVCSClient struct {
		mock.Mock
	}

	MockGenerator struct {
		mock.Mock
	}

	MockWriter struct {
		mock.Mock
	}

	MockAnalyzer struct {
		mock.Mock
	}

	MockParser struct {
		mock.Mock
	}
)

func (m *MockVCSClient) GetPullRequest(ctx context.Context, repo string, number int) (models.PullRequestInfo, error) {
	args := m.Called(ctx, repo, number)
	return args.Get(0).(models.PullRequestInfo), args.Error(1)
}

func (m *MockGenerator) Generate(ctx context.Context, promptTemplate string, promptContext models.PromptContext) (string, error) {
	args := m.Called(ctx, promptTemplate, promptContext)
	return args.String(0), args.Error(1)
}

func (m *MockWriter) Write(result models.GenerationResult, path string) error {
	args := m.Called(result, path)
	return args.Error(0)
}

func (m *MockWriter) Format() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockAnalyzer) Analyze(changes models.ChangeSet, diffs models.DiffSet) (models.RiskVerdict, error) {
	args := m.Called(changes, diffs)
	return args.Get(0).(models.RiskVerdict), args.Error(1)
}

func (m *MockParser) Parse(ctx context.Context, text string) ([]models.TestCaseRecord, error) {
	args := m.Called(ctx, text)
	var records []models.TestCaseRecord
	if args.Get(0) != nil {
		records = args.Get(0).([]models.TestCaseRecord)
	}
	return records, args.Error(1)
}
