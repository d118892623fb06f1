// Package render turns model output into something a page or a terminal can
// show.
package render

import (
	"html/template"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/nao1215/markdown"

	"github.com/BerylCAtieno/financial-analyzer/internal/prompts"
)

var policy = bluemonday.UGCPolicy()

// Rendered is a model result ready for html/template. When IsHTML is set,
// HTML holds sanitized markup; otherwise Text is shown escaped.
type Rendered struct {
	Text   string
	HTML   template.HTML
	IsHTML bool
}

// Render prepares result for the web UI. Markup is only passed through for
// FormatHTML results and only after sanitizing.
func Render(result string, format prompts.Format, allowHTML bool) Rendered {
	if format == prompts.FormatHTML && allowHTML {
		return Rendered{
			HTML:   template.HTML(policy.Sanitize(result)),
			IsHTML: true,
		}
	}
	return Rendered{Text: result}
}

// Sanitize strips everything outside the UGC allow-list from markup.
func Sanitize(markup string) string {
	return policy.Sanitize(markup)
}

// Report is one analysis or comparison written out by the CLI.
type Report struct {
	Title       string
	Operation   string
	Analysis    string
	Files       []string
	Pages       string
	Model       string
	GeneratedAt time.Time
	Duration    time.Duration
	Body        string
}

// WriteMarkdown writes r as a Markdown document.
func WriteMarkdown(w io.Writer, r *Report) error {
	md := markdown.NewMarkdown(w)

	md.H1(r.Title)
	md.PlainText("")

	rows := [][]string{
		{"Operation", r.Operation},
	}
	if r.Analysis != "" {
		rows = append(rows, []string{"Analysis", r.Analysis})
	}
	for i, f := range r.Files {
		label := "File"
		if len(r.Files) > 1 {
			label = "File " + strconv.Itoa(i+1)
		}
		rows = append(rows, []string{label, "`" + f + "`"})
	}
	if r.Pages != "" {
		rows = append(rows, []string{"Pages", r.Pages})
	}
	if r.Model != "" {
		rows = append(rows, []string{"Model", r.Model})
	}
	rows = append(rows,
		[]string{"Generated", r.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		[]string{"Duration", r.Duration.Round(time.Millisecond).String()},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	md.H2("Result")
	md.PlainText("")
	body := strings.TrimSpace(r.Body)
	if body == "" {
		md.Note("The model returned an empty response.")
	} else {
		md.PlainText(body)
	}
	md.PlainText("")

	return md.Build()
}
