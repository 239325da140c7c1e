package regex

import "regexp"

var (
	// Test case output patterns
	TestCaseMarker       = regexp.MustCompile(`TC-\d+:`)
	TitleLabel           = regexp.MustCompile(`Title:[ \t]*([^\n]*)`)
	PriorityLabel        = regexp.MustCompile(`Priority:[ \t]*([^\n]*)`)
	DescriptionLabel     = regexp.MustCompile(`Description:[ \t]*([^\n]*)`)
	StepsLabel           = regexp.MustCompile(`Steps:`)
	ExpectedResultsLabel = regexp.MustCompile(`Expected Results:`)

	// Risk analysis patterns
	SecurityKeywords = []*regexp.Regexp{
		regexp.MustCompile(`(?i)auth\w*`),
		regexp.MustCompile(`(?i)password`),
		regexp.MustCompile(`(?i)secret`),
		regexp.MustCompile(`(?i)token`),
		regexp.MustCompile(`(?i)crypt\w*`),
	}
	BreakingKeywords = []*regexp.Regexp{
		regexp.MustCompile(`(?i)break.*change`),
		regexp.MustCompile(`(?i)deprecat\w*`),
		regexp.MustCompile(`(?i)remov\w+\s+\w+`),
		regexp.MustCompile(`(?i)delet\w+\s+\w+`),
	}

	// Repo identifier
	RepoSlug = regexp.MustCompile(`^([A-Za-z0-9_.-]+)/([A-Za-z0-9_.-]+)$`)

	// Config environment references, e.g. ${GITHUB_TOKEN}
	EnvReference = regexp.MustCompile(`\$\{([^}]+)\}`)
)
