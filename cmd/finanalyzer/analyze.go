package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BerylCAtieno/financial-analyzer/internal/extractor"
	"github.com/BerylCAtieno/financial-analyzer/internal/models"
	"github.com/BerylCAtieno/financial-analyzer/internal/prompts"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd(factory serviceFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <file.pdf>",
		Short: "Run one analysis on a PDF financial report",
		Long: `Analyze extracts the text of the selected pages and asks the model for
one analysis. Run 'finanalyzer types' to list the analysis types.

Examples:
  # Tables of the primary statements on pages 40 to 52
  finanalyzer analyze --type financial-statements --start 40 --end 52 annual-report.pdf

  # Risk factors as a Markdown report
  finanalyzer analyze --type risk-factors --format markdown --output risks.md annual-report.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, factory)
		},
	}

	cmd.Flags().StringP("type", "t", "", "Analysis type (required)")
	cmd.Flags().IntP("start", "s", 1, "First page to analyze (1-based)")
	cmd.Flags().IntP("end", "e", 0, "Last page to analyze, 0 for the last page of the document")
	cmd.Flags().StringP("format", "f", formatText, "Output format: text or markdown")
	cmd.Flags().StringP("output", "o", "", "Write the result to this file instead of stdout")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, factory serviceFactory) error {
	slug, _ := cmd.Flags().GetString("type")
	analysisType, err := prompts.ParseAnalysisType(slug)
	if err != nil {
		return fmt.Errorf("%w: %q (run 'finanalyzer types')", prompts.ErrUnknownAnalysisType, slug)
	}

	start, _ := cmd.Flags().GetInt("start")
	end, _ := cmd.Flags().GetInt("end")
	pages := extractor.PageRange{Start: start, End: end}
	if err := pages.Validate(); err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	if err := validateFormat(format); err != nil {
		return err
	}

	file, err := readPDF(args[0])
	if err != nil {
		return err
	}

	logger := commandLogger(cmd)
	svc, cleanup, err := factory(cmd.Context(), logger)
	if err != nil {
		return err
	}
	defer cleanup()

	resp, err := svc.AnalyzeDocument(cmd.Context(), &models.AnalyzeRequest{
		File:         file,
		AnalysisType: analysisType,
		PageRange:    pages,
	})
	if err != nil {
		return err
	}

	return writeResult(cmd, "Financial Analysis", analysisType.Label(), resp)
}
