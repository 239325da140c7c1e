package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/thomas-vilte/matetest/internal/errors"
	"github.com/thomas-vilte/matetest/internal/models"
)

const modelOutput = `TC-1: Title: Reject wrong password
Priority: High
Description: Login with a bad password fails
Steps:
- open the login page
- submit a wrong password
Expected Results: an error is shown

TC-2: Title: Accept valid password
Steps:
- submit valid credentials
Expected Results: dashboard is shown`

func samplePR() models.PullRequestInfo {
	return models.PullRequestInfo{
		Number:      42,
		Title:       "Harden login",
		Description: "Adds password checks",
		BaseBranch:  "main",
		HeadBranch:  "feature/login",
		Changes: models.ChangeSet{
			models.ChangeModified: {"auth/login.go"},
		},
		Diffs: models.DiffSet{
			"auth/login.go": "+if !checkPassword(p) { return ErrDenied }",
		},
	}
}

type recorder struct {
	events []models.ProgressEvent
}

func (r *recorder) record(e models.ProgressEvent) {
	r.events = append(r.events, e)
}

func (r *recorder) types() []models.ProgressEventType {
	out := make([]models.ProgressEventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type usageGenerator struct {
	MockGenerator
	usage *models.TokenUsage
}

func (g *usageGenerator) LastUsage() *models.TokenUsage {
	return g.usage
}

func newWriter(format string) *MockWriter {
	w := new(MockWriter)
	w.On("Format").Return(format).Maybe()
	return w
}

func TestGenerationService_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("successful run writes the parsed result once", func(t *testing.T) {
		vcsClient := new(MockVCSClient)
		generator := new(MockGenerator)
		writer := newWriter("yaml")

		vcsClient.On("GetPullRequest", mock.Anything, "octocat/app", 42).Return(samplePR(), nil)
		generator.On("Generate", mock.Anything, mock.AnythingOfType("string"), mock.MatchedBy(func(pc models.PromptContext) bool {
			return pc["pr_title"] == "Harden login" &&
				pc["risk_level"] == "Medium" &&
				pc["pr_number"] == "42"
		})).Return(modelOutput, nil)
		writer.On("Write", mock.MatchedBy(func(r models.GenerationResult) bool {
			return r.PRNumber == 42 && len(r.TestCases) == 2
		}), "out.yaml").Return(nil).Once()

		rec := &recorder{}
		service := NewGenerationService(
			WithVCSClient(vcsClient),
			WithGenerator(generator),
			WithWriter(writer),
		)

		result, err := service.Run(ctx, "octocat/app", 42, "out.yaml", rec.record)

		require.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, 42, result.PRNumber)
		assert.Equal(t, "Harden login", result.PRTitle)
		assert.Equal(t, models.RiskMedium, result.RiskAnalysis.Level)
		assert.Equal(t, []string{"Security Risk"}, result.RiskAnalysis.Factors)
		require.Len(t, result.TestCases, 2)
		assert.Equal(t, "TC-001", result.TestCases[0].ID)
		assert.Equal(t, "Reject wrong password", result.TestCases[0].Title)
		assert.Equal(t, []string{"open the login page", "submit a wrong password"}, result.TestCases[0].Steps)
		assert.Equal(t, "TC-002", result.TestCases[1].ID)
		assert.Equal(t, "Medium", result.TestCases[1].Priority)

		assert.Equal(t, []models.ProgressEventType{
			models.ProgressPRFetched,
			models.ProgressRiskAnalyzed,
			models.ProgressPromptBuilt,
			models.ProgressResponseReceived,
			models.ProgressTestCasesParsed,
			models.ProgressResultSaved,
		}, rec.types())
		assert.Equal(t, samplePR().Changes, rec.events[0].Data["changes"])
		assert.Equal(t, 1, rec.events[0].Data["modified"])

		vcsClient.AssertExpectations(t)
		generator.AssertExpectations(t)
		writer.AssertExpectations(t)
	})

	t.Run("nil progress callback is allowed", func(t *testing.T) {
		vcsClient := new(MockVCSClient)
		generator := new(MockGenerator)
		writer := newWriter("json")

		vcsClient.On("GetPullRequest", mock.Anything, "octocat/app", 42).Return(samplePR(), nil)
		generator.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(modelOutput, nil)
		writer.On("Write", mock.Anything, "out.json").Return(nil)

		service := NewGenerationService(WithVCSClient(vcsClient), WithGenerator(generator), WithWriter(writer))

		_, err := service.Run(ctx, "octocat/app", 42, "out.json", nil)

		assert.NoError(t, err)
	})

	t.Run("custom prompt template reaches the generator", func(t *testing.T) {
		vcsClient := new(MockVCSClient)
		generator := new(MockGenerator)
		writer := newWriter("yaml")

		vcsClient.On("GetPullRequest", mock.Anything, "octocat/app", 42).Return(samplePR(), nil)
		generator.On("Generate", mock.Anything, "Only {{.pr_title}}", mock.Anything).Return(modelOutput, nil)
		writer.On("Write", mock.Anything, "out.yaml").Return(nil)

		service := NewGenerationService(
			WithVCSClient(vcsClient),
			WithGenerator(generator),
			WithWriter(writer),
			WithPromptTemplate("Only {{.pr_title}}"),
		)

		_, err := service.Run(ctx, "octocat/app", 42, "out.yaml", nil)

		require.NoError(t, err)
		generator.AssertExpectations(t)
	})

	t.Run("fetch failure stops before generation and writing", func(t *testing.T) {
		vcsClient := new(MockVCSClient)
		generator := new(MockGenerator)
		writer := newWriter("yaml")

		vcsClient.On("GetPullRequest", mock.Anything, "octocat/app", 42).
			Return(models.PullRequestInfo{}, domainErrors.ErrRepositoryNotFound)

		rec := &recorder{}
		service := NewGenerationService(WithVCSClient(vcsClient), WithGenerator(generator), WithWriter(writer))

		result, err := service.Run(ctx, "octocat/app", 42, "out.yaml", rec.record)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, domainErrors.ErrFetchPR)
		assert.ErrorIs(t, err, domainErrors.ErrRepositoryNotFound)
		assert.Equal(t, []models.ProgressEventType{models.ProgressFailed}, rec.types())
		generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
		writer.AssertNotCalled(t, "Write", mock.Anything, mock.Anything)
	})

	t.Run("generation failure does not write", func(t *testing.T) {
		vcsClient := new(MockVCSClient)
		generator := new(MockGenerator)
		writer := newWriter("yaml")

		vcsClient.On("GetPullRequest", mock.Anything, "octocat/app", 42).Return(samplePR(), nil)
		generator.On("Generate", mock.Anything, mock.Anything, mock.Anything).
			Return("", domainErrors.ErrQuotaExceeded.WithError(errors.New("429")))

		rec := &recorder{}
		service := NewGenerationService(WithVCSClient(vcsClient), WithGenerator(generator), WithWriter(writer))

		result, err := service.Run(ctx, "octocat/app", 42, "out.yaml", rec.record)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, domainErrors.ErrAIGeneration)
		assert.ErrorIs(t, err, domainErrors.ErrQuotaExceeded)
		assert.Equal(t, models.ProgressFailed, rec.events[len(rec.events)-1].Type)
		writer.AssertNotCalled(t, "Write", mock.Anything, mock.Anything)
	})

	t.Run("generation sentinel is not wrapped twice", func(t *testing.T) {
		vcsClient := new(MockVCSClient)
		generator := new(MockGenerator)
		writer := newWriter("yaml")

		original := domainErrors.ErrAIGeneration.WithError(errors.New("boom"))
		vcsClient.On("GetPullRequest", mock.Anything, "octocat/app", 42).Return(samplePR(), nil)
		generator.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("", original)

		service := NewGenerationService(WithVCSClient(vcsClient), WithGenerator(generator), WithWriter(writer))

		_, err := service.Run(ctx, "octocat/app", 42, "out.yaml", nil)

		assert.Same(t, original, err)
	})

	t.Run("output without markers becomes a single default record", func(t *testing.T) {
		vcsClient := new(MockVCSClient)
		generator := new(MockGenerator)
		writer := newWriter("yaml")

		vcsClient.On("GetPullRequest", mock.Anything, "octocat/app", 42).Return(samplePR(), nil)
		generator.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("I could not think of any tests.", nil)
		writer.On("Write", mock.Anything, "out.yaml").Return(nil).Once()

		rec := &recorder{}
		service := NewGenerationService(WithVCSClient(vcsClient), WithGenerator(generator), WithWriter(writer))

		result, err := service.Run(ctx, "octocat/app", 42, "out.yaml", rec.record)

		require.NoError(t, err)
		require.Len(t, result.TestCases, 1)
		assert.Equal(t, "No title", result.TestCases[0].Title)
		writer.AssertExpectations(t)
	})

	t.Run("empty model output writes an empty result", func(t *testing.T) {
		vcsClient := new(MockVCSClient)
		generator := new(MockGenerator)
		writer := newWriter("yaml")
		parser := new(MockParser)

		vcsClient.On("GetPullRequest", mock.Anything, "octocat/app", 42).Return(samplePR(), nil)
		generator.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("   ", nil)
		parser.On("Parse", mock.Anything, "   ").Return([]models.TestCaseRecord{}, nil)
		writer.On("Write", mock.MatchedBy(func(r models.GenerationResult) bool {
			return r.TestCases != nil && len(r.TestCases) == 0
		}), "out.yaml").Return(nil).Once()

		rec := &recorder{}
		service := NewGenerationService(
			WithVCSClient(vcsClient),
			WithGenerator(generator),
			WithWriter(writer),
			WithParser(parser),
		)

		result, err := service.Run(ctx, "octocat/app", 42, "out.yaml", rec.record)

		require.NoError(t, err)
		assert.Empty(t, result.TestCases)
		assert.Contains(t, rec.types(), models.ProgressNoTestCases)
		assert.NotContains(t, rec.types(), models.ProgressTestCasesParsed)
		writer.AssertExpectations(t)
	})

	t.Run("parse failure degrades to an empty result", func(t *testing.T) {
		vcsClient := new(MockVCSClient)
		generator := new(MockGenerator)
		writer := newWriter("yaml")
		parser := new(MockParser)

		vcsClient.On("GetPullRequest", mock.Anything, "octocat/app", 42).Return(samplePR(), nil)
		generator.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("TC-1: ...", nil)
		parser.On("Parse", mock.Anything, "TC-1: ...").Return(nil, domainErrors.ErrParseResponse)
		writer.On("Write", mock.Anything, "out.yaml").Return(nil).Once()

		rec := &recorder{}
		service := NewGenerationService(
			WithVCSClient(vcsClient),
			WithGenerator(generator),
			WithWriter(writer),
			WithParser(parser),
		)

		result, err := service.Run(ctx, "octocat/app", 42, "out.yaml", rec.record)

		require.NoError(t, err)
		assert.NotNil(t, result.TestCases)
		assert.Empty(t, result.TestCases)
		assert.Contains(t, rec.types(), models.ProgressParseDegraded)
		assert.Contains(t, rec.types(), models.ProgressNoTestCases)
	})

	t.Run("analysis failure continues with the degraded verdict", func(t *testing.T) {
		vcsClient := new(MockVCSClient)
		generator := new(MockGenerator)
		writer := newWriter("yaml")
		analyzer := new(MockAnalyzer)

		degraded := models.RiskVerdict{
			Level:   models.RiskHigh,
			Factors: []string{"Analysis Error"},
			Details: []string{"boom"},
		}
		pr := samplePR()
		vcsClient.On("GetPullRequest", mock.Anything, "octocat/app", 42).Return(pr, nil)
		analyzer.On("Analyze", pr.Changes, pr.Diffs).Return(degraded, domainErrors.ErrRiskAnalysis)
		generator.On("Generate", mock.Anything, mock.Anything, mock.MatchedBy(func(pc models.PromptContext) bool {
			return pc["risk_level"] == "High" && pc["risk_factors"] == "- Analysis Error: boom"
		})).Return(modelOutput, nil)
		writer.On("Write", mock.Anything, "out.yaml").Return(nil)

		rec := &recorder{}
		service := NewGenerationService(
			WithVCSClient(vcsClient),
			WithGenerator(generator),
			WithWriter(writer),
			WithAnalyzer(analyzer),
		)

		result, err := service.Run(ctx, "octocat/app", 42, "out.yaml", rec.record)

		require.NoError(t, err)
		assert.Equal(t, degraded, result.RiskAnalysis)
		assert.Contains(t, rec.types(), models.ProgressAnalysisDegraded)
		generator.AssertExpectations(t)
	})

	t.Run("write failure is reported", func(t *testing.T) {
		vcsClient := new(MockVCSClient)
		generator := new(MockGenerator)
		writer := newWriter("yaml")

		vcsClient.On("GetPullRequest", mock.Anything, "octocat/app", 42).Return(samplePR(), nil)
		generator.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(modelOutput, nil)
		writer.On("Write", mock.Anything, "/nope/out.yaml").Return(errors.New("permission denied")).Once()

		rec := &recorder{}
		service := NewGenerationService(WithVCSClient(vcsClient), WithGenerator(generator), WithWriter(writer))

		result, err := service.Run(ctx, "octocat/app", 42, "/nope/out.yaml", rec.record)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, domainErrors.ErrWriteOutput)
		assert.Equal(t, models.ProgressFailed, rec.events[len(rec.events)-1].Type)
		assert.NotContains(t, rec.types(), models.ProgressResultSaved)
	})

	t.Run("usage is reported when the generator tracks it", func(t *testing.T) {
		vcsClient := new(MockVCSClient)
		generator := &usageGenerator{usage: &models.TokenUsage{TotalTokens: 321, Model: "gemini-2.5-flash"}}
		writer := newWriter("yaml")

		vcsClient.On("GetPullRequest", mock.Anything, "octocat/app", 42).Return(samplePR(), nil)
		generator.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(modelOutput, nil)
		writer.On("Write", mock.Anything, "out.yaml").Return(nil)

		rec := &recorder{}
		service := NewGenerationService(WithVCSClient(vcsClient), WithGenerator(generator), WithWriter(writer))

		_, err := service.Run(ctx, "octocat/app", 42, "out.yaml", rec.record)

		require.NoError(t, err)
		var usage models.TokenUsage
		for _, e := range rec.events {
			if e.Type == models.ProgressResponseReceived {
				usage = e.Data["usage"].(models.TokenUsage)
			}
		}
		assert.Equal(t, 321, usage.TotalTokens)
	})

	t.Run("missing collaborators", func(t *testing.T) {
		service := NewGenerationService(WithVCSClient(new(MockVCSClient)))

		_, err := service.Run(ctx, "octocat/app", 42, "out.yaml", nil)

		require.Error(t, err)
		var appErr *domainErrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, domainErrors.TypeInternal, appErr.Type)
		assert.Equal(t, "generator", appErr.Context["missing"])
	})
}
