package models

import (
	"time"

	"github.com/BerylCAtieno/financial-analyzer/internal/extractor"
	"github.com/BerylCAtieno/financial-analyzer/internal/prompts"
)

const (
	OperationAnalyze = "analyze"
	OperationCompare = "compare"

	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// AnalysisRequest is the text and analysis type handed to the analyzer.
type AnalysisRequest struct {
	DocumentText string
	AnalysisType prompts.AnalysisType
}

// UploadedFile is a validated PDF upload.
type UploadedFile struct {
	Data     []byte
	Filename string
}

type AnalyzeRequest struct {
	File         UploadedFile
	AnalysisType prompts.AnalysisType
	PageRange    extractor.PageRange
}

type CompareRequest struct {
	Current        UploadedFile
	Previous       UploadedFile
	CurrentPeriod  string
	PreviousPeriod string
	CurrentPages   extractor.PageRange
	PreviousPages  extractor.PageRange
}

// StagedDocument is an upload held between the upload and analyze steps of
// the web UI.
type StagedDocument struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	PageCount int    `json:"page_count"`
}

type PageCountResponse struct {
	Filename  string `json:"filename"`
	PageCount int    `json:"page_count"`
}

type AnalysisTypeInfo struct {
	Slug   string         `json:"slug"`
	Label  string         `json:"label"`
	Format prompts.Format `json:"format"`
}

type AnalysisResponse struct {
	ID           string               `json:"id"`
	Operation    string               `json:"operation"`
	AnalysisType string               `json:"analysis_type,omitempty"`
	Format       prompts.Format       `json:"format"`
	Result       string               `json:"result"`
	Filename     string               `json:"filename"`
	Filename2    string               `json:"filename2,omitempty"`
	PageRange    *extractor.PageRange `json:"page_range,omitempty"`
	Model        string               `json:"model,omitempty"`
	DurationMs   int64                `json:"duration_ms"`
	CreatedAt    time.Time            `json:"created_at"`
}

// AnalysisRecord is one row of the analysis history.
type AnalysisRecord struct {
	ID           string    `json:"id" db:"id"`
	Operation    string    `json:"operation" db:"operation"`
	AnalysisType string    `json:"analysis_type,omitempty" db:"analysis_type"`
	Filename     string    `json:"filename" db:"filename"`
	Filename2    string    `json:"filename2,omitempty" db:"filename2"`
	StartPage    int       `json:"start_page" db:"start_page"`
	EndPage      int       `json:"end_page" db:"end_page"`
	Status       string    `json:"status" db:"status"`
	ErrorKind    string    `json:"error_kind,omitempty" db:"error_kind"`
	ErrorMessage string    `json:"error_message,omitempty" db:"error_message"`
	Result       string    `json:"result,omitempty" db:"result"`
	Model        string    `json:"model,omitempty" db:"model"`
	DurationMs   int64     `json:"duration_ms" db:"duration_ms"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
