package errors

import "fmt"

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeAI            ErrorType = "AI"
	TypeVCS           ErrorType = "VCS"
	TypeOutput        ErrorType = "OUTPUT"
	TypeAnalysis      ErrorType = "ANALYSIS"
	TypeParse         ErrorType = "PARSE"
	TypeInternal      ErrorType = "INTERNAL"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError derived from the same sentinel, so callers can use
// errors.Is(err, ErrFetchPR) after WithError/WithContext copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        err,
		Suggestion: e.Suggestion,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{})
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    ctx,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: suggestion,
	}
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// Configuration errors
var (
	ErrConfigInvalid = NewAppError(TypeConfiguration, "Configuration is invalid", nil).
				WithSuggestion("Review your config file: matetest generate --config <path>")

	ErrConfigRead = NewAppError(TypeConfiguration, "Failed to read configuration file", nil)

	ErrEnvVarMissing = NewAppError(TypeConfiguration, "Environment variable referenced in config is not set", nil).
				WithSuggestion("Export the variable before running, e.g.: export GITHUB_TOKEN=<token>")

	ErrAPIKeyMissing = NewAppError(TypeConfiguration, "AI API key is missing", nil).
				WithSuggestion("Set llm.api_key in the config file or export GEMINI_API_KEY / OPENAI_API_KEY")

	ErrProviderNotSupported = NewAppError(TypeConfiguration, "Provider not supported", nil).
				WithSuggestion("Supported providers: vcs=github, llm=gemini|openai, output=yaml|json")

	ErrPromptTemplate = NewAppError(TypeConfiguration, "Failed to load prompt template", nil).
				WithSuggestion("Check prompt_template_path points to a readable file")
)

// VCS errors
var (
	ErrFetchPR = NewAppError(TypeVCS, "failed to fetch pull request", nil).
			WithSuggestion("Check the repository name and PR number")

	ErrInvalidRepo = NewAppError(TypeVCS, "repository must be in owner/name format", nil).
			WithSuggestion("Example: matetest generate octocat/hello-world 42")

	ErrRepositoryNotFound = NewAppError(TypeVCS, "repository or pull request not found", nil).
				WithSuggestion("Check repository URL and access permissions")

	ErrGitHubTokenInvalid = NewAppError(TypeVCS, "GitHub token is invalid or expired", nil).
				WithSuggestion("Generate a new token at: https://github.com/settings/tokens")

	ErrGitHubRateLimit = NewAppError(TypeVCS, "GitHub API rate limit exceeded", nil).
				WithSuggestion("Wait a few minutes or use a personal access token for higher limits")
)

// AI errors
var (
	ErrAIGeneration = NewAppError(TypeAI, "AI generation failed", nil).
			WithSuggestion("Try again or check your API key configuration")

	ErrQuotaExceeded = NewAppError(TypeAI, "AI quota exceeded or rate limited", nil).
				WithSuggestion("Wait a few minutes and try again, or check your API quota")

	ErrAPIKeyInvalid = NewAppError(TypeAI, "AI API key is invalid", nil).
				WithSuggestion("Verify llm.api_key in your configuration")

	ErrEmptyAIOutput = NewAppError(TypeAI, "AI returned an empty response", nil).
				WithSuggestion("This is likely a temporary issue, please try again")

	ErrRenderPrompt = NewAppError(TypeAI, "failed to render prompt template", nil)
)

// Pipeline stage errors. These are recovered locally: the stage returns a
// degraded value together with the error.
var (
	ErrRiskAnalysis = NewAppError(TypeAnalysis, "risk analysis failed", nil)

	ErrParseResponse = NewAppError(TypeParse, "failed to parse AI response", nil)
)

// Output errors
var (
	ErrWriteOutput = NewAppError(TypeOutput, "failed to write output file", nil).
			WithSuggestion("Check the output directory exists and is writable")

	ErrEncodeOutput = NewAppError(TypeOutput, "failed to encode generation result", nil)
)
