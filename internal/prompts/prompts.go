// Package prompts turns extracted document text into LLM prompts.
//
// The set of analysis types is closed: the only way to obtain an
// AnalysisType from user input is ParseAnalysisType, and every valid type
// carries its own template.
package prompts

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownAnalysisType = errors.New("unknown analysis type")

// Format is the shape of the output a template asks the model for.
type Format string

const (
	FormatText Format = "text"
	FormatHTML Format = "html"
)

type AnalysisType uint8

const (
	FinancialStatementsOnly AnalysisType = iota + 1
	ManagementCommentary
	RiskFactors
	CommentaryVsPerformance
)

type template struct {
	before string
	after  string
}

func mustTemplate(s string) template {
	before, after, ok := strings.Cut(s, placeholder)
	if !ok || strings.Contains(after, placeholder) {
		panic("prompts: template must contain exactly one document placeholder")
	}
	return template{before: before, after: after}
}

type definition struct {
	slug   string
	label  string
	format Format
	tmpl   template
}

var definitions = [...]definition{
	FinancialStatementsOnly: {
		slug:   "financial-statements",
		label:  "Financial Statements Only",
		format: FormatHTML,
		tmpl:   mustTemplate(financialStatementsTemplate),
	},
	ManagementCommentary: {
		slug:   "management-commentary",
		label:  "Management Commentary",
		format: FormatText,
		tmpl:   mustTemplate(managementCommentaryTemplate),
	},
	RiskFactors: {
		slug:   "risk-factors",
		label:  "Risk Factors",
		format: FormatText,
		tmpl:   mustTemplate(riskFactorsTemplate),
	},
	CommentaryVsPerformance: {
		slug:   "commentary-vs-performance",
		label:  "Commentary vs. Performance",
		format: FormatText,
		tmpl:   mustTemplate(commentaryVsPerformanceTemplate),
	},
}

// AnalysisTypes lists every analysis type in display order.
func AnalysisTypes() []AnalysisType {
	return []AnalysisType{
		FinancialStatementsOnly,
		ManagementCommentary,
		RiskFactors,
		CommentaryVsPerformance,
	}
}

func ParseAnalysisType(slug string) (AnalysisType, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	for _, t := range AnalysisTypes() {
		if definitions[t].slug == slug {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAnalysisType, slug)
}

func (t AnalysisType) Valid() bool {
	return t >= FinancialStatementsOnly && t <= CommentaryVsPerformance
}

func (t AnalysisType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("AnalysisType(%d)", uint8(t))
	}
	return definitions[t].slug
}

func (t AnalysisType) Label() string {
	return t.definition().label
}

func (t AnalysisType) Format() Format {
	return t.definition().format
}

func (t AnalysisType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAnalysisType, uint8(t))
	}
	return []byte(t.String()), nil
}

func (t *AnalysisType) UnmarshalText(b []byte) error {
	parsed, err := ParseAnalysisType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t AnalysisType) definition() definition {
	if !t.Valid() {
		panic(fmt.Sprintf("prompts: invalid analysis type %d", uint8(t)))
	}
	return definitions[t]
}

// Build splices text into the template for t. The text is inserted as is.
func Build(text string, t AnalysisType) string {
	tmpl := t.definition().tmpl

	var b strings.Builder
	b.Grow(len(tmpl.before) + len(text) + len(tmpl.after))
	b.WriteString(tmpl.before)
	b.WriteString(text)
	b.WriteString(tmpl.after)
	return b.String()
}

// BuildComparison returns the prompt comparing two statements labelled with
// their periods.
func BuildComparison(text1, text2, period1, period2 string) string {
	r := strings.NewReplacer(
		"{{period1}}", period1,
		"{{period2}}", period2,
		"{{text1}}", text1,
		"{{text2}}", text2,
	)
	return r.Replace(comparisonTemplate)
}
