package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/BerylCAtieno/financial-analyzer/internal/analyzer"
	"github.com/BerylCAtieno/financial-analyzer/internal/extractor"
	"github.com/BerylCAtieno/financial-analyzer/internal/metrics"
	"github.com/BerylCAtieno/financial-analyzer/internal/models"
	"github.com/BerylCAtieno/financial-analyzer/internal/prompts"
	"github.com/BerylCAtieno/financial-analyzer/internal/repository"
	"github.com/BerylCAtieno/financial-analyzer/internal/storage"
	"github.com/BerylCAtieno/financial-analyzer/internal/utils"
)

const pdfContentType = "application/pdf"

var errNoText = errors.New("no text could be extracted from the selected pages")

type DocumentService interface {
	AnalysisTypes() []models.AnalysisTypeInfo
	CountPages(ctx context.Context, file models.UploadedFile) (*models.PageCountResponse, error)
	AnalyzeDocument(ctx context.Context, req *models.AnalyzeRequest) (*models.AnalysisResponse, error)
	CompareDocuments(ctx context.Context, req *models.CompareRequest) (*models.AnalysisResponse, error)

	// Two-step flow used by the web UI.
	StageUpload(ctx context.Context, file models.UploadedFile) (*models.StagedDocument, error)
	AnalyzeStaged(ctx context.Context, doc models.StagedDocument, analysisType prompts.AnalysisType, pages extractor.PageRange) (*models.AnalysisResponse, error)
	DiscardUpload(ctx context.Context, id string) error

	ListAnalyses(ctx context.Context, limit int) ([]models.AnalysisRecord, error)
	GetAnalysis(ctx context.Context, id string) (*models.AnalysisRecord, error)
}

// Deps are the collaborators of the document service. Storage, Repo and
// Metrics may be nil: staging is then unavailable, history is not recorded
// and nothing is measured.
type Deps struct {
	Analyzer analyzer.Analyzer
	Storage  storage.Storage
	Repo     repository.Repository
	Metrics  *metrics.Metrics
	Model    string
	Logger   *utils.Logger
}

type documentService struct {
	analyzer analyzer.Analyzer
	storage  storage.Storage
	repo     repository.Repository
	metrics  *metrics.Metrics
	model    string
	logger   *utils.Logger
	now      func() time.Time
}

func NewService(deps Deps) DocumentService {
	logger := deps.Logger
	if logger == nil {
		logger = utils.NopLogger()
	}

	return &documentService{
		analyzer: deps.Analyzer,
		storage:  deps.Storage,
		repo:     deps.Repo,
		metrics:  deps.Metrics,
		model:    deps.Model,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *documentService) AnalysisTypes() []models.AnalysisTypeInfo {
	types := prompts.AnalysisTypes()
	infos := make([]models.AnalysisTypeInfo, 0, len(types))
	for _, t := range types {
		infos = append(infos, models.AnalysisTypeInfo{
			Slug:   t.String(),
			Label:  t.Label(),
			Format: t.Format(),
		})
	}
	return infos
}

func (s *documentService) CountPages(ctx context.Context, file models.UploadedFile) (*models.PageCountResponse, error) {
	if err := validateFile(file); err != nil {
		return nil, err
	}

	pages, err := extractor.CountPages(file.Data)
	if err != nil {
		s.logger.Warn("Failed to read PDF", "error", err, "filename", file.Filename)
		return nil, toAppError(analyzer.ExtractionError(err))
	}

	return &models.PageCountResponse{
		Filename:  file.Filename,
		PageCount: pages,
	}, nil
}

func (s *documentService) AnalyzeDocument(ctx context.Context, req *models.AnalyzeRequest) (*models.AnalysisResponse, error) {
	if err := validateFile(req.File); err != nil {
		return nil, err
	}
	if !req.AnalysisType.Valid() {
		return nil, utils.NewBadRequestError("Unknown analysis type")
	}
	if err := req.PageRange.Validate(); err != nil {
		return nil, utils.NewBadRequestError(err.Error())
	}

	start := s.now()
	rec := &models.AnalysisRecord{
		ID:           utils.GenerateID(),
		Operation:    models.OperationAnalyze,
		AnalysisType: req.AnalysisType.String(),
		Filename:     req.File.Filename,
		StartPage:    req.PageRange.Start,
		EndPage:      req.PageRange.End,
		Model:        s.model,
		CreatedAt:    start,
	}

	text, err := s.extract(req.File, req.PageRange)
	if err != nil {
		return nil, s.fail(ctx, rec, err)
	}

	s.logger.Info("Starting document analysis",
		"id", rec.ID,
		"analysis_type", rec.AnalysisType,
		"pages", req.PageRange.String(),
		"text_length", len(text))

	llmStart := time.Now()
	result, err := s.analyzer.AnalyzeDocument(ctx, text, req.AnalysisType)
	s.metrics.ObserveLLM(time.Since(llmStart))
	if err != nil {
		return nil, s.fail(ctx, rec, err)
	}

	s.succeed(ctx, rec, result)

	s.logger.Info("Document analyzed successfully",
		"id", rec.ID,
		"analysis_type", rec.AnalysisType,
		"result_length", len(result),
		"duration_ms", rec.DurationMs)

	pages := req.PageRange
	return &models.AnalysisResponse{
		ID:           rec.ID,
		Operation:    rec.Operation,
		AnalysisType: rec.AnalysisType,
		Format:       req.AnalysisType.Format(),
		Result:       result,
		Filename:     rec.Filename,
		PageRange:    &pages,
		Model:        s.model,
		DurationMs:   rec.DurationMs,
		CreatedAt:    rec.CreatedAt,
	}, nil
}

func (s *documentService) CompareDocuments(ctx context.Context, req *models.CompareRequest) (*models.AnalysisResponse, error) {
	if err := validateFile(req.Current); err != nil {
		return nil, err
	}
	if err := validateFile(req.Previous); err != nil {
		return nil, err
	}

	currentPages := req.CurrentPages
	if currentPages.Start == 0 {
		currentPages = extractor.AllPages()
	}
	previousPages := req.PreviousPages
	if previousPages.Start == 0 {
		previousPages = extractor.AllPages()
	}
	for _, r := range []extractor.PageRange{currentPages, previousPages} {
		if err := r.Validate(); err != nil {
			return nil, utils.NewBadRequestError(err.Error())
		}
	}

	start := s.now()
	rec := &models.AnalysisRecord{
		ID:        utils.GenerateID(),
		Operation: models.OperationCompare,
		Filename:  req.Current.Filename,
		Filename2: req.Previous.Filename,
		StartPage: currentPages.Start,
		EndPage:   currentPages.End,
		Model:     s.model,
		CreatedAt: start,
	}

	var (
		g                 errgroup.Group
		current, previous string
	)
	g.Go(func() error {
		var err error
		current, err = s.extract(req.Current, currentPages)
		return err
	})
	g.Go(func() error {
		var err error
		previous, err = s.extract(req.Previous, previousPages)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, s.fail(ctx, rec, err)
	}

	s.logger.Info("Starting statement comparison",
		"id", rec.ID,
		"period1", req.CurrentPeriod,
		"period2", req.PreviousPeriod,
		"text1_length", len(current),
		"text2_length", len(previous))

	llmStart := time.Now()
	result, err := s.analyzer.CompareStatements(ctx, current, previous, req.CurrentPeriod, req.PreviousPeriod)
	s.metrics.ObserveLLM(time.Since(llmStart))
	if err != nil {
		return nil, s.fail(ctx, rec, err)
	}

	s.succeed(ctx, rec, result)

	s.logger.Info("Statements compared successfully",
		"id", rec.ID,
		"result_length", len(result),
		"duration_ms", rec.DurationMs)

	return &models.AnalysisResponse{
		ID:         rec.ID,
		Operation:  rec.Operation,
		Format:     prompts.FormatText,
		Result:     result,
		Filename:   rec.Filename,
		Filename2:  rec.Filename2,
		Model:      s.model,
		DurationMs: rec.DurationMs,
		CreatedAt:  rec.CreatedAt,
	}, nil
}

func (s *documentService) StageUpload(ctx context.Context, file models.UploadedFile) (*models.StagedDocument, error) {
	if s.storage == nil {
		return nil, utils.NewInternalError("Upload staging is not configured")
	}

	count, err := s.CountPages(ctx, file)
	if err != nil {
		return nil, err
	}
	if count.PageCount == 0 {
		return nil, toAppError(analyzer.ExtractionError(fmt.Errorf("%w: document has no pages", extractor.ErrUnreadableDocument)))
	}

	id := utils.GenerateID()
	if err := s.storage.Upload(ctx, id, file.Data, pdfContentType); err != nil {
		s.logger.Error("Failed to stage upload", "error", err, "id", id)
		return nil, utils.NewInternalError("Failed to store document")
	}

	s.logger.Info("Document staged",
		"id", id,
		"filename", file.Filename,
		"page_count", count.PageCount,
		"size", len(file.Data))

	return &models.StagedDocument{
		ID:        id,
		Filename:  file.Filename,
		PageCount: count.PageCount,
	}, nil
}

func (s *documentService) AnalyzeStaged(ctx context.Context, doc models.StagedDocument, analysisType prompts.AnalysisType, pages extractor.PageRange) (*models.AnalysisResponse, error) {
	if s.storage == nil {
		return nil, utils.NewInternalError("Upload staging is not configured")
	}

	data, err := s.storage.Download(ctx, doc.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, utils.NewNotFoundError("The uploaded document has expired. Please upload it again")
	}
	if err != nil {
		s.logger.Error("Failed to load staged upload", "error", err, "id", doc.ID)
		return nil, utils.NewInternalError("Failed to retrieve document")
	}

	return s.AnalyzeDocument(ctx, &models.AnalyzeRequest{
		File:         models.UploadedFile{Data: data, Filename: doc.Filename},
		AnalysisType: analysisType,
		PageRange:    pages,
	})
}

func (s *documentService) DiscardUpload(ctx context.Context, id string) error {
	if s.storage == nil || id == "" {
		return nil
	}

	if err := s.storage.Delete(ctx, id); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Error("Failed to discard staged upload", "error", err, "id", id)
		return utils.NewInternalError("Failed to discard document")
	}
	return nil
}

func (s *documentService) ListAnalyses(ctx context.Context, limit int) ([]models.AnalysisRecord, error) {
	if s.repo == nil {
		return nil, utils.NewNotFoundError("Analysis history is disabled")
	}

	records, err := s.repo.List(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to list analyses", "error", err)
		return nil, utils.NewInternalError("Failed to retrieve analyses")
	}
	return records, nil
}

func (s *documentService) GetAnalysis(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	if s.repo == nil {
		return nil, utils.NewNotFoundError("Analysis history is disabled")
	}

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get analysis", "error", err, "id", id)
		return nil, utils.NewInternalError("Failed to retrieve analysis")
	}
	if rec == nil {
		return nil, utils.NewNotFoundError("Analysis not found")
	}
	return rec, nil
}

// extract returns the text of pages in file. Every failure is an extraction
// error, including a selection that yields no text at all.
func (s *documentService) extract(file models.UploadedFile, pages extractor.PageRange) (string, error) {
	start := time.Now()

	doc, err := extractor.Open(file.Data)
	if err != nil {
		return "", analyzer.ExtractionError(err)
	}

	text, err := doc.Text(pages)
	if err != nil {
		return "", analyzer.ExtractionError(err)
	}

	s.metrics.ObserveExtraction(time.Since(start), pageCount(doc.NumPages(), pages))

	if strings.TrimSpace(text) == "" {
		return "", analyzer.ExtractionError(errNoText)
	}

	return text, nil
}

func (s *documentService) succeed(ctx context.Context, rec *models.AnalysisRecord, result string) {
	rec.Status = models.StatusSuccess
	rec.Result = result
	rec.DurationMs = s.now().Sub(rec.CreatedAt).Milliseconds()

	s.metrics.ObserveAnalysis(rec.Operation, rec.AnalysisType, models.StatusSuccess)
	s.record(ctx, rec)
}

func (s *documentService) fail(ctx context.Context, rec *models.AnalysisRecord, err error) error {
	kind := analyzer.KindOf(err)

	rec.Status = models.StatusFailed
	rec.ErrorKind = kind.String()
	rec.ErrorMessage = err.Error()
	rec.DurationMs = s.now().Sub(rec.CreatedAt).Milliseconds()

	s.logger.Error("Analysis failed",
		"id", rec.ID,
		"operation", rec.Operation,
		"kind", rec.ErrorKind,
		"error", err)

	s.metrics.ObserveAnalysis(rec.Operation, rec.AnalysisType, kind.String())
	s.record(ctx, rec)

	return toAppError(err)
}

// record appends rec to the history. A history failure never fails the
// request.
func (s *documentService) record(ctx context.Context, rec *models.AnalysisRecord) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Create(context.WithoutCancel(ctx), rec); err != nil {
		s.logger.Warn("Failed to record analysis", "error", err, "id", rec.ID)
	}
}

func validateFile(file models.UploadedFile) error {
	if len(file.Data) == 0 {
		return utils.NewBadRequestError("Uploaded file is empty")
	}
	if !extractor.LooksLikePDF(file.Data) {
		return utils.NewBadRequestError("Only PDF files are allowed")
	}
	return nil
}

// toAppError maps analysis failures onto HTTP statuses. The message is the
// analyzer's own so the UI shows the same text the JSON API returns.
func toAppError(err error) error {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch analyzer.KindOf(err) {
	case analyzer.KindExtraction:
		return utils.NewUnprocessableError(err.Error(), err)
	case analyzer.KindAuthentication:
		return utils.NewServiceUnavailableError(err.Error(), err)
	case analyzer.KindRemote:
		return utils.NewBadGatewayError(err.Error(), err)
	default:
		return &utils.AppError{StatusCode: http.StatusInternalServerError, Message: "Internal server error", Err: err}
	}
}

func pageCount(total int, r extractor.PageRange) int {
	last := total
	if r.End != 0 && r.End < last {
		last = r.End
	}
	if last < r.Start {
		return 0
	}
	return last - r.Start + 1
}
