package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	domainErrors "github.com/thomas-vilte/matetest/internal/errors"
	"github.com/thomas-vilte/matetest/internal/regex"
	"gopkg.in/yaml.v3"
)

type (
	Config struct {
		Language           string       `yaml:"language" validate:"required,oneof=en es"`
		VCS                VCSConfig    `yaml:"vcs"`
		LLM                LLMConfig    `yaml:"llm"`
		Output             OutputConfig `yaml:"output"`
		PromptTemplatePath string       `yaml:"prompt_template_path"`
	}

	VCSConfig struct {
		Provider string `yaml:"provider" validate:"required,oneof=github"`
		Token    string `yaml:"token"`
		BaseURL  string `yaml:"base_url" validate:"omitempty,url"`
	}

	LLMConfig struct {
		Provider    AI      `yaml:"provider" validate:"required,oneof=gemini openai"`
		Model       Model   `yaml:"model" validate:"required"`
		Temperature float32 `yaml:"temperature" validate:"gte=0,lte=2"`
		APIKey      string  `yaml:"api_key"`
		BaseURL     string  `yaml:"base_url" validate:"omitempty,url"`
	}

	OutputConfig struct {
		Format string `yaml:"format" validate:"required,oneof=yaml json"`
		Path   string `yaml:"path"`
	}
)

const (
	DefaultConfigPath  = "config.yaml"
	DefaultOutputStem  = "pr_test_cases"
	defaultLang        = LangEN
	defaultVCS         = "github"
	defaultAI          = AIGemini
	defaultTemperature = 0.3
	defaultFormat      = "yaml"
)

var validate = validator.New()

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Language: defaultLang,
		VCS: VCSConfig{
			Provider: defaultVCS,
		},
		LLM: LLMConfig{
			Provider:    defaultAI,
			Temperature: defaultTemperature,
		},
		Output: OutputConfig{
			Format: defaultFormat,
		},
	}
}

// LoadConfig reads a YAML config file, replaces ${VAR} references with
// environment values, fills defaults and environment fallbacks and validates
// the result. A missing file at DefaultConfigPath is not an error; a missing
// file anywhere else is.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultConfigPath
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && path == DefaultConfigPath:
		// no config file, defaults plus environment only
	case err != nil:
		return nil, domainErrors.ErrConfigRead.
			WithContext("path", path).
			WithError(err)
	default:
		if err := decode(data, cfg); err != nil {
			return nil, err
		}
	}

	applyDefaults(cfg)
	applyEnvFallbacks(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return domainErrors.ErrConfigInvalid.
			WithContext("reason", "invalid YAML").
			WithError(err)
	}
	if len(root.Content) == 0 {
		return domainErrors.ErrConfigInvalid.
			WithContext("reason", "empty config file")
	}

	if err := expandEnv(&root); err != nil {
		return err
	}

	if err := root.Decode(cfg); err != nil {
		return domainErrors.ErrConfigInvalid.
			WithContext("reason", "unexpected value types").
			WithError(err)
	}
	return nil
}

// expandEnv replaces every ${VAR} in scalar values. Keys and comments are
// left untouched. A referenced variable that is unset or empty is an error.
func expandEnv(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		expanded, err := ExpandEnvString(node.Value)
		if err != nil {
			return err
		}
		node.Value = expanded
		return nil
	}

	for i, child := range node.Content {
		if node.Kind == yaml.MappingNode && i%2 == 0 {
			continue
		}
		if err := expandEnv(child); err != nil {
			return err
		}
	}
	return nil
}

// ExpandEnvString substitutes ${VAR} references in s.
func ExpandEnvString(s string) (string, error) {
	var missing string
	expanded := regex.EnvReference.ReplaceAllStringFunc(s, func(ref string) string {
		name := regex.EnvReference.FindStringSubmatch(ref)[1]
		value := os.Getenv(name)
		if value == "" && missing == "" {
			missing = name
		}
		return value
	})

	if missing != "" {
		return "", domainErrors.ErrEnvVarMissing.
			WithContext("variable", missing).
			WithSuggestion(fmt.Sprintf("Export the variable before running, e.g.: export %s=<value>", missing))
	}
	return expanded, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Language == "" {
		cfg.Language = defaultLang
	}
	if cfg.VCS.Provider == "" {
		cfg.VCS.Provider = defaultVCS
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = defaultAI
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = DefaultModelForAI(cfg.LLM.Provider)
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = defaultFormat
	}
	cfg.Output.Format = strings.ToLower(cfg.Output.Format)
}

func applyEnvFallbacks(cfg *Config) {
	if cfg.VCS.Token == "" {
		cfg.VCS.Token = os.Getenv("GITHUB_TOKEN")
	}
	if cfg.LLM.APIKey == "" {
		if name := APIKeyEnvVar(cfg.LLM.Provider); name != "" {
			cfg.LLM.APIKey = os.Getenv(name)
		}
	}
}

// Validate checks the struct tags and reports the first offending field.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		first := validationErrs[0]
		return domainErrors.ErrConfigInvalid.
			WithContext("field", first.Namespace()).
			WithContext("rule", first.Tag()).
			WithContext("value", fmt.Sprint(first.Value())).
			WithError(err)
	}
	return domainErrors.ErrConfigInvalid.WithError(err)
}

// ResolveOutputPath returns path when set, otherwise output.path from the
// config, otherwise pr_test_cases.<format>.
func (c *Config) ResolveOutputPath(path string) string {
	if path != "" {
		return path
	}
	if c.Output.Path != "" {
		return c.Output.Path
	}
	return DefaultOutputStem + "." + c.Output.Format
}
