package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/financial-analyzer/internal/prompts"
)

func TestRenderHTMLSanitized(t *testing.T) {
	result := `<table><tr><td>Revenue</td><td>$10M</td></tr></table><script>alert(1)</script>`

	r := Render(result, prompts.FormatHTML, true)

	require.True(t, r.IsHTML)
	assert.Contains(t, string(r.HTML), "<table>")
	assert.Contains(t, string(r.HTML), "<td>Revenue</td>")
	assert.NotContains(t, string(r.HTML), "<script>")
	assert.Empty(t, r.Text)
}

func TestRenderHTMLDisabled(t *testing.T) {
	result := `<table><tr><td>Revenue</td></tr></table>`

	r := Render(result, prompts.FormatHTML, false)

	assert.False(t, r.IsHTML)
	assert.Equal(t, result, r.Text)
	assert.Empty(t, r.HTML)
}

func TestRenderTextNeverHTML(t *testing.T) {
	result := "1. Financial Risks: <b>high</b>"

	r := Render(result, prompts.FormatText, true)

	assert.False(t, r.IsHTML)
	assert.Equal(t, result, r.Text)
}

func TestSanitizeDropsHandlers(t *testing.T) {
	out := Sanitize(`<td onclick="steal()">1</td>`)
	assert.NotContains(t, out, "onclick")
}

func TestWriteMarkdown(t *testing.T) {
	var buf bytes.Buffer

	err := WriteMarkdown(&buf, &Report{
		Title:       "Financial Analysis",
		Operation:   "analyze",
		Analysis:    "Risk Factors",
		Files:       []string{"annual-report.pdf"},
		Pages:       "2-5",
		Model:       "gpt-3.5-turbo",
		GeneratedAt: time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC),
		Duration:    1500 * time.Millisecond,
		Body:        "1. Financial Risks: currency exposure",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "# Financial Analysis")
	assert.Contains(t, out, "## Result")
	assert.Contains(t, out, "Risk Factors")
	assert.Contains(t, out, "`annual-report.pdf`")
	assert.Contains(t, out, "2-5")
	assert.Contains(t, out, "1.5s")
	assert.Contains(t, out, "1. Financial Risks: currency exposure")
}

func TestWriteMarkdownComparisonFiles(t *testing.T) {
	var buf bytes.Buffer

	err := WriteMarkdown(&buf, &Report{
		Title:     "Statement Comparison",
		Operation: "compare",
		Files:     []string{"2024.pdf", "2023.pdf"},
		Body:      "",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "File 1")
	assert.Contains(t, out, "File 2")
	assert.Contains(t, out, "empty response")
}
