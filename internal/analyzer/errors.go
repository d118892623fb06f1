package analyzer

import (
	"errors"
	"fmt"

	"github.com/BerylCAtieno/financial-analyzer/internal/llm"
)

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindExtraction
	KindAuthentication
	KindRemote
)

func (k ErrorKind) String() string {
	switch k {
	case KindExtraction:
		return "extraction"
	case KindAuthentication:
		return "authentication"
	case KindRemote:
		return "remote"
	default:
		return "unknown"
	}
}

const (
	OpExtract = "extract"
	OpAnalyze = "analyze"
	OpCompare = "compare"
)

// Error is the failure result of an analysis step.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch e.Op {
	case OpExtract:
		return fmt.Sprintf("Error extracting PDF text: %v", e.Err)
	case OpCompare:
		return fmt.Sprintf("Error in comparison: %v", e.Err)
	default:
		return fmt.Sprintf("Error in analysis: %v", e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExtractionError marks err as a failure to read the uploaded document.
func ExtractionError(err error) *Error {
	return &Error{Kind: KindExtraction, Op: OpExtract, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func classify(op string, err error) *Error {
	kind := KindRemote
	if errors.Is(err, llm.ErrNotAuthenticated) || errors.Is(err, llm.ErrMissingAPIKey) {
		kind = KindAuthentication
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
