package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/matetest/internal/i18n"
)

func TestNewApp(t *testing.T) {
	translations, err := i18n.NewTranslations("en")
	require.NoError(t, err)

	app := newApp(translations)

	names := make([]string, 0, len(app.Commands))
	for _, c := range app.Commands {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"generate", "version"}, names)

	var out bytes.Buffer
	app.Writer = &out
	require.NoError(t, app.Run(context.Background(), []string{"matetest", "version"}))
	assert.Equal(t, "matetest version v0.1.0\n", out.String())
}

func TestDefaultLanguage(t *testing.T) {
	t.Setenv("MATETEST_LANG", "")
	assert.Equal(t, "en", defaultLanguage())

	t.Setenv("MATETEST_LANG", "es")
	assert.Equal(t, "es", defaultLanguage())

	t.Setenv("MATETEST_LANG", "fr")
	assert.Equal(t, "en", defaultLanguage())
}
