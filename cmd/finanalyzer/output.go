package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/BerylCAtieno/financial-analyzer/internal/models"
	"github.com/BerylCAtieno/financial-analyzer/internal/render"
)

const (
	formatText     = "text"
	formatMarkdown = "markdown"
)

func validateFormat(format string) error {
	switch format {
	case formatText, formatMarkdown:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want %s or %s)", format, formatText, formatMarkdown)
	}
}

// writeResult prints resp to --output, or stdout when it is empty.
func writeResult(cmd *cobra.Command, title, analysis string, resp *models.AnalysisResponse) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		if dir := filepath.Dir(output); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if format == formatMarkdown {
		report := &render.Report{
			Title:       title,
			Operation:   resp.Operation,
			Analysis:    analysis,
			Files:       []string{resp.Filename},
			Model:       resp.Model,
			GeneratedAt: resp.CreatedAt,
			Duration:    time.Duration(resp.DurationMs) * time.Millisecond,
			Body:        resp.Result,
		}
		if resp.Filename2 != "" {
			report.Files = append(report.Files, resp.Filename2)
		}
		if resp.PageRange != nil {
			report.Pages = resp.PageRange.String()
		}
		return render.WriteMarkdown(w, report)
	}

	_, err := fmt.Fprintln(w, strings.TrimRight(resp.Result, "\n"))
	return err
}

func readPDF(path string) (models.UploadedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.UploadedFile{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return models.UploadedFile{Data: data, Filename: filepath.Base(path)}, nil
}
