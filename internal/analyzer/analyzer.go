package analyzer

import (
	"context"

	"github.com/BerylCAtieno/financial-analyzer/internal/prompts"
	"github.com/BerylCAtieno/financial-analyzer/internal/utils"
)

const (
	DefaultCurrentPeriod  = "Current"
	DefaultPreviousPeriod = "Previous"
)

// Completer sends one prompt to the model. *llm.Session implements it.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Analyzer interface {
	AnalyzeDocument(ctx context.Context, text string, analysisType prompts.AnalysisType) (string, error)
	CompareStatements(ctx context.Context, text1, text2, period1, period2 string) (string, error)
}

type financialAnalyzer struct {
	client Completer
	logger *utils.Logger
}

func New(client Completer, logger *utils.Logger) Analyzer {
	return &financialAnalyzer{
		client: client,
		logger: logger,
	}
}

func (a *financialAnalyzer) AnalyzeDocument(ctx context.Context, text string, analysisType prompts.AnalysisType) (string, error) {
	prompt := prompts.Build(text, analysisType)

	a.logger.Debug("Sending analysis prompt",
		"analysis_type", analysisType.String(),
		"prompt_length", len(prompt))

	result, err := a.client.Complete(ctx, prompt)
	if err != nil {
		return "", classify(OpAnalyze, err)
	}

	return result, nil
}

func (a *financialAnalyzer) CompareStatements(ctx context.Context, text1, text2, period1, period2 string) (string, error) {
	if period1 == "" {
		period1 = DefaultCurrentPeriod
	}
	if period2 == "" {
		period2 = DefaultPreviousPeriod
	}

	prompt := prompts.BuildComparison(text1, text2, period1, period2)

	a.logger.Debug("Sending comparison prompt",
		"period1", period1,
		"period2", period2,
		"prompt_length", len(prompt))

	result, err := a.client.Complete(ctx, prompt)
	if err != nil {
		return "", classify(OpCompare, err)
	}

	return result, nil
}
