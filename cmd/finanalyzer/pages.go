package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BerylCAtieno/financial-analyzer/internal/prompts"
	"github.com/BerylCAtieno/financial-analyzer/internal/services"
)

// NewPagesCmd creates the pages command. It needs no API key.
func NewPagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pages <file.pdf>",
		Short: "Print the number of pages in a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := readPDF(args[0])
			if err != nil {
				return err
			}

			svc := services.NewService(services.Deps{Logger: commandLogger(cmd)})
			resp, err := svc.CountPages(cmd.Context(), file)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d pages\n", resp.Filename, resp.PageCount)
			return nil
		},
	}
}

// NewTypesCmd creates the types command.
func NewTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the analysis types",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, t := range prompts.AnalysisTypes() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-27s %-28s %s\n", t.String(), t.Label(), t.Format())
			}
		},
	}
}
