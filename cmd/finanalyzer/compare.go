package main

import (
	"github.com/spf13/cobra"

	"github.com/BerylCAtieno/financial-analyzer/internal/analyzer"
	"github.com/BerylCAtieno/financial-analyzer/internal/models"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd(factory serviceFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <current.pdf> <previous.pdf>",
		Short: "Compare the financial statements of two periods",
		Long: `Compare sends the text of both reports to the model in one request and
prints its comparison of revenue, expenses, profits, assets and liabilities.

Examples:
  finanalyzer compare --period1 FY2024 --period2 FY2023 2024.pdf 2023.pdf`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompare(cmd, args, factory)
		},
	}

	cmd.Flags().String("period1", analyzer.DefaultCurrentPeriod, "Label of the first (current) period")
	cmd.Flags().String("period2", analyzer.DefaultPreviousPeriod, "Label of the second (previous) period")
	cmd.Flags().StringP("format", "f", formatText, "Output format: text or markdown")
	cmd.Flags().StringP("output", "o", "", "Write the result to this file instead of stdout")

	return cmd
}

func runCompare(cmd *cobra.Command, args []string, factory serviceFactory) error {
	format, _ := cmd.Flags().GetString("format")
	if err := validateFormat(format); err != nil {
		return err
	}

	current, err := readPDF(args[0])
	if err != nil {
		return err
	}
	previous, err := readPDF(args[1])
	if err != nil {
		return err
	}

	period1, _ := cmd.Flags().GetString("period1")
	period2, _ := cmd.Flags().GetString("period2")

	logger := commandLogger(cmd)
	svc, cleanup, err := factory(cmd.Context(), logger)
	if err != nil {
		return err
	}
	defer cleanup()

	resp, err := svc.CompareDocuments(cmd.Context(), &models.CompareRequest{
		Current:        current,
		Previous:       previous,
		CurrentPeriod:  period1,
		PreviousPeriod: period2,
	})
	if err != nil {
		return err
	}

	return writeResult(cmd, "Statement Comparison", period1+" vs "+period2, resp)
}
