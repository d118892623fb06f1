package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command with the production service factory.
func NewRootCmd() *cobra.Command {
	return newRootCmd(newDocumentService)
}

func newRootCmd(factory serviceFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finanalyzer",
		Short: "Analyze financial statements with a language model",
		Long: `finanalyzer extracts text from PDF financial reports and asks an
OpenAI-compatible model for one of four analyses, or compares the statements
of two periods.

The API key is read from OPENAI_API_KEY, a .env file in the working
directory, or the openai entry of the YAML file named by SECRETS_FILE.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewAnalyzeCmd(factory))
	cmd.AddCommand(NewCompareCmd(factory))
	cmd.AddCommand(NewPagesCmd())
	cmd.AddCommand(NewTypesCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
