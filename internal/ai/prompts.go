package ai

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	domainErrors "github.com/thomas-vilte/matetest/internal/errors"
	"github.com/thomas-vilte/matetest/internal/models"
)

const (
	testCasePromptTemplateEN = `# Task
Act as a Senior QA Engineer and write manual test cases for the Pull Request below.

# Pull Request #{{.pr_number}}: {{.pr_title}}
Base branch: {{.base_branch}}
Head branch: {{.head_branch}}

## Description
{{.pr_description}}

## Risk Assessment
Level: {{.risk_level}}
{{.risk_factors}}

## Changed Files
{{.changes}}

## Code Changes
{{.diffs}}

# Rules
1. Only cover behavior visible in the changes. Do not invent features.
2. Cover every risk factor listed above with at least one test case.
3. Use plain text. No markdown headings, no tables, no JSON.

# STRICT OUTPUT FORMAT
Start every test case with a marker "TC-<n>:" where n starts at 1, followed by these labels, each on its own line:

TC-1:
Title: <short title>
Priority: <High|Medium|Low>
Description: <one line describing what is verified>
Steps:
- <step one>
- <step two>
Expected Results: <observable outcome>

Leave one blank line between test cases.`

	testCasePromptTemplateES = `# Tarea
Actuá como un QA Engineer Senior y escribí casos de prueba manuales para el Pull Request de abajo.

# Pull Request #{{.pr_number}}: {{.pr_title}}
Rama base: {{.base_branch}}
Rama head: {{.head_branch}}

## Descripción
{{.pr_description}}

## Evaluación de riesgo
Nivel: {{.risk_level}}
{{.risk_factors}}

## Archivos modificados
{{.changes}}

## Cambios de código
{{.diffs}}

# Reglas
1. Cubrí solo el comportamiento visible en los cambios. No inventes funcionalidades.
2. Cubrí cada factor de riesgo listado con al menos un caso de prueba.
3. Texto plano. Sin encabezados markdown, sin tablas, sin JSON.

# FORMATO DE SALIDA ESTRICTO
Las etiquetas van SIEMPRE en inglés, exactamente como se muestran, aunque el contenido esté en español.
Cada caso empieza con un marcador "TC-<n>:" donde n arranca en 1, seguido de estas etiquetas, cada una en su propia línea:

TC-1:
Title: <título corto>
Priority: <High|Medium|Low>
Description: <una línea describiendo qué se verifica>
Steps:
- <paso uno>
- <paso dos>
Expected Results: <resultado observable>

Dejá una línea en blanco entre casos.`
)

// RenderPrompt renders a prompt template with the provided data
func RenderPrompt(name, tmplStr string, data interface{}) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("error parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("error executing template %s: %w", name, err)
	}

	return buf.String(), nil
}

// BuildPrompt renders a test case prompt template against the prompt context.
// Placeholders use the context keys, e.g. {{.pr_title}}. A placeholder naming
// a key that is not in the context is an error.
func BuildPrompt(promptTemplate string, promptContext models.PromptContext) (string, error) {
	data := make(map[string]string, len(promptContext))
	for k, v := range promptContext {
		data[k] = v
	}

	rendered, err := RenderPrompt("testCasePrompt", promptTemplate, data)
	if err != nil {
		return "", domainErrors.ErrRenderPrompt.WithError(err)
	}
	return rendered, nil
}

// GetTestCasePromptTemplate returns the built-in template for the language,
// falling back to English.
func GetTestCasePromptTemplate(lang string) string {
	switch lang {
	case "es":
		return testCasePromptTemplateES
	default:
		return testCasePromptTemplateEN
	}
}

// LoadPromptTemplate reads a user supplied template. An empty path selects the
// built-in template for lang.
func LoadPromptTemplate(path, lang string) (string, error) {
	if path == "" {
		return GetTestCasePromptTemplate(lang), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", domainErrors.ErrPromptTemplate.
			WithContext("path", path).
			WithError(err)
	}
	if strings.TrimSpace(string(content)) == "" {
		return "", domainErrors.ErrPromptTemplate.
			WithContext("path", path).
			WithContext("reason", "template file is empty")
	}

	if _, err := template.New("check").Parse(string(content)); err != nil {
		return "", domainErrors.ErrPromptTemplate.
			WithContext("path", path).
			WithError(err)
	}

	return string(content), nil
}
