package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/thomas-vilte/matetest/internal/ai"
	domainErrors "github.com/thomas-vilte/matetest/internal/errors"
	"github.com/thomas-vilte/matetest/internal/logger"
	"github.com/thomas-vilte/matetest/internal/models"
	"github.com/thomas-vilte/matetest/internal/parser"
	"github.com/thomas-vilte/matetest/internal/prompt"
	"github.com/thomas-vilte/matetest/internal/risk"
)

// genVCSClient defines the methods needed by GenerationService from a VCS provider.
type genVCSClient interface {
	GetPullRequest(ctx context.Context, repo string, number int) (models.PullRequestInfo, error)
}

// genGenerator defines the methods needed by GenerationService from an LLM provider.
type genGenerator interface {
	Generate(ctx context.Context, promptTemplate string, promptContext models.PromptContext) (string, error)
}

// genWriter defines the methods needed by GenerationService to persist results.
type genWriter interface {
	Write(result models.GenerationResult, path string) error
	Format() string
}

type riskAnalyzer interface {
	Analyze(changes models.ChangeSet, diffs models.DiffSet) (models.RiskVerdict, error)
}

type responseParser interface {
	Parse(ctx context.Context, text string) ([]models.TestCaseRecord, error)
}

type contextBuilder interface {
	Build(pr models.PullRequestInfo, risk models.RiskVerdict) models.PromptContext
}

// usageReporter is implemented by generators that track token usage.
type usageReporter interface {
	LastUsage() *models.TokenUsage
}

type GenerationService struct {
	vcsClient      genVCSClient
	generator      genGenerator
	writer         genWriter
	analyzer       riskAnalyzer
	parser         responseParser
	contextBuilder contextBuilder
	promptTemplate string
	newRunID       func() string
}

type GenerationOption func(*GenerationService)

func WithVCSClient(vcs genVCSClient) GenerationOption {
	return func(s *GenerationService) {
		s.vcsClient = vcs
	}
}

func WithGenerator(g genGenerator) GenerationOption {
	return func(s *GenerationService) {
		s.generator = g
	}
}

func WithWriter(w genWriter) GenerationOption {
	return func(s *GenerationService) {
		s.writer = w
	}
}

func WithAnalyzer(a riskAnalyzer) GenerationOption {
	return func(s *GenerationService) {
		s.analyzer = a
	}
}

func WithParser(p responseParser) GenerationOption {
	return func(s *GenerationService) {
		s.parser = p
	}
}

func WithContextBuilder(b contextBuilder) GenerationOption {
	return func(s *GenerationService) {
		s.contextBuilder = b
	}
}

func WithPromptTemplate(tmpl string) GenerationOption {
	return func(s *GenerationService) {
		if tmpl != "" {
			s.promptTemplate = tmpl
		}
	}
}

// NewGenerationService wires the pipeline. The analyzer, parser, context
// builder and prompt template default to the built-in implementations; the
// VCS client, generator and writer must be supplied.
func NewGenerationService(opts ...GenerationOption) *GenerationService {
	s := &GenerationService{
		analyzer:       risk.NewAnalyzer(),
		parser:         parser.NewParser(),
		contextBuilder: prompt.NewBuilder(),
		promptTemplate: ai.GetTestCasePromptTemplate("en"),
		newRunID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one generation: fetch, analyze, build context, generate, parse
// and write. The result is written exactly once, and only when fetching and
// generation succeed. progress may be nil.
func (s *GenerationService) Run(ctx context.Context, repo string, number int, outputPath string, progress func(models.ProgressEvent)) (*models.GenerationResult, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	runID := s.newRunID()
	ctx = logger.With(ctx, "run_id", runID, "repo", repo, "pr_number", number)
	if info, ok := s.generator.(ai.ModelInfo); ok {
		ctx = logger.With(ctx, "llm_provider", info.GetProviderName(), "model", info.GetModelName())
	}
	log := logger.FromContext(ctx)

	log.Info("starting test case generation",
		"output_path", outputPath,
		"output_format", s.writer.Format())

	pr, err := s.vcsClient.GetPullRequest(ctx, repo, number)
	if err != nil {
		return nil, s.fail(ctx, progress, "fetch pull request", wrap(domainErrors.ErrFetchPR, err))
	}

	notify(progress, models.ProgressEvent{
		Type:    models.ProgressPRFetched,
		Message: pr.Title,
		Data: map[string]interface{}{
			"pr_number": pr.Number,
			"title":     pr.Title,
			"added":     len(pr.Changes.Files(models.ChangeAdded)),
			"modified":  len(pr.Changes.Files(models.ChangeModified)),
			"removed":   len(pr.Changes.Files(models.ChangeRemoved)),
			"changes":   pr.Changes,
		},
	})

	verdict, err := s.analyzer.Analyze(pr.Changes, pr.Diffs)
	if err != nil {
		log.Warn("risk analysis degraded",
			"error", err,
			"risk_level", verdict.Level)
		notify(progress, models.ProgressEvent{
			Type:    models.ProgressAnalysisDegraded,
			Message: err.Error(),
		})
	}

	log.Debug("risk analyzed",
		"risk_level", verdict.Level,
		"factors_count", len(verdict.Factors))

	notify(progress, models.ProgressEvent{
		Type:    models.ProgressRiskAnalyzed,
		Message: string(verdict.Level),
		Data: map[string]interface{}{
			"verdict": verdict,
		},
	})

	promptContext := s.contextBuilder.Build(pr, verdict)
	notify(progress, models.ProgressEvent{
		Type: models.ProgressPromptBuilt,
		Data: map[string]interface{}{
			"keys_count": len(promptContext),
		},
	})

	start := time.Now()
	text, err := s.generator.Generate(ctx, s.promptTemplate, promptContext)
	if err != nil {
		return nil, s.fail(ctx, progress, "generate test cases", wrap(domainErrors.ErrAIGeneration, err))
	}

	responseData := map[string]interface{}{
		"response_length": len(text),
		"duration_ms":     time.Since(start).Milliseconds(),
	}
	if reporter, ok := s.generator.(usageReporter); ok {
		if usage := reporter.LastUsage(); usage != nil {
			responseData["usage"] = *usage
			log.Debug("llm usage",
				"model", usage.Model,
				"total_tokens", usage.TotalTokens)
		}
	}
	notify(progress, models.ProgressEvent{
		Type: models.ProgressResponseReceived,
		Data: responseData,
	})

	records, err := s.parser.Parse(ctx, text)
	if err != nil {
		log.Warn("could not parse model output, saving without test cases",
			"error", err)
		notify(progress, models.ProgressEvent{
			Type:    models.ProgressParseDegraded,
			Message: err.Error(),
		})
	}
	if records == nil {
		records = []models.TestCaseRecord{}
	}

	if len(records) == 0 {
		log.Warn("no test cases were generated")
		notify(progress, models.ProgressEvent{Type: models.ProgressNoTestCases})
	} else {
		notify(progress, models.ProgressEvent{
			Type: models.ProgressTestCasesParsed,
			Data: map[string]interface{}{
				"count": len(records),
			},
		})
	}

	result := &models.GenerationResult{
		PRNumber:     pr.Number,
		PRTitle:      pr.Title,
		RiskAnalysis: verdict,
		TestCases:    records,
	}

	if err := s.writer.Write(*result, outputPath); err != nil {
		return nil, s.fail(ctx, progress, "write output", wrap(domainErrors.ErrWriteOutput, err))
	}

	log.Info("test cases saved",
		"output_path", outputPath,
		"test_cases_count", len(records),
		"risk_level", verdict.Level)

	notify(progress, models.ProgressEvent{
		Type:    models.ProgressResultSaved,
		Message: outputPath,
		Data: map[string]interface{}{
			"path":   outputPath,
			"format": s.writer.Format(),
			"count":  len(records),
		},
	})

	return result, nil
}

func (s *GenerationService) validate() error {
	missing := ""
	switch {
	case s.vcsClient == nil:
		missing = "vcs client"
	case s.generator == nil:
		missing = "generator"
	case s.writer == nil:
		missing = "writer"
	}
	if missing == "" {
		return nil
	}
	return domainErrors.NewAppError(domainErrors.TypeInternal, "generation service is not fully configured", nil).
		WithContext("missing", missing)
}

func (s *GenerationService) fail(ctx context.Context, progress func(models.ProgressEvent), stage string, err error) error {
	logger.Error(ctx, "test case generation failed", err, "stage", stage)
	notify(progress, models.ProgressEvent{
		Type:    models.ProgressFailed,
		Message: err.Error(),
		Data: map[string]interface{}{
			"stage": stage,
			"error": err,
		},
	})
	return err
}

// wrap attaches err to the stage sentinel unless it already is one.
func wrap(sentinel *domainErrors.AppError, err error) error {
	if errors.Is(err, sentinel) {
		return err
	}
	return sentinel.WithError(err)
}

func notify(progress func(models.ProgressEvent), event models.ProgressEvent) {
	if progress != nil {
		progress(event)
	}
}
