package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/BerylCAtieno/financial-analyzer/internal/extractor"
	"github.com/BerylCAtieno/financial-analyzer/internal/models"
	"github.com/BerylCAtieno/financial-analyzer/internal/prompts"
	"github.com/BerylCAtieno/financial-analyzer/internal/services"
	"github.com/BerylCAtieno/financial-analyzer/internal/utils"
)

const (
	DefaultMaxFileSize = 20 << 20 // 20MB

	// room for the non-file form fields
	formOverhead = 1 << 20
)

type DocumentHandler struct {
	service     services.DocumentService
	maxFileSize int64
	logger      *utils.Logger
}

func NewDocumentHandler(service services.DocumentService, maxFileSize int64, logger *utils.Logger) *DocumentHandler {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &DocumentHandler{
		service:     service,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

func (h *DocumentHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *DocumentHandler) AnalysisTypes(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.service.AnalysisTypes())
}

func (h *DocumentHandler) CountPages(w http.ResponseWriter, r *http.Request) {
	if err := parseUploadForm(w, r, h.maxFileSize, 1); err != nil {
		h.respondError(w, err)
		return
	}

	file, err := readUpload(r, "file", h.maxFileSize)
	if err != nil {
		h.respondError(w, err)
		return
	}

	resp, err := h.service.CountPages(r.Context(), file)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *DocumentHandler) AnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	if err := parseUploadForm(w, r, h.maxFileSize, 1); err != nil {
		h.respondError(w, err)
		return
	}

	analysisType, err := prompts.ParseAnalysisType(r.FormValue("analysis_type"))
	if err != nil {
		h.respondError(w, utils.NewBadRequestError(fmt.Sprintf("Unknown analysis type %q", r.FormValue("analysis_type"))))
		return
	}

	pages, err := parsePageRange(r, "start_page", "end_page")
	if err != nil {
		h.respondError(w, err)
		return
	}

	file, err := readUpload(r, "file", h.maxFileSize)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.logger.Info("Analysis requested",
		"filename", file.Filename,
		"analysis_type", analysisType.String(),
		"pages", pages.String())

	resp, err := h.service.AnalyzeDocument(r.Context(), &models.AnalyzeRequest{
		File:         file,
		AnalysisType: analysisType,
		PageRange:    pages,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *DocumentHandler) CompareDocuments(w http.ResponseWriter, r *http.Request) {
	if err := parseUploadForm(w, r, h.maxFileSize, 2); err != nil {
		h.respondError(w, err)
		return
	}

	current, err := readUpload(r, "file1", h.maxFileSize)
	if err != nil {
		h.respondError(w, err)
		return
	}
	previous, err := readUpload(r, "file2", h.maxFileSize)
	if err != nil {
		h.respondError(w, err)
		return
	}

	currentPages, err := parsePageRange(r, "start_page1", "end_page1")
	if err != nil {
		h.respondError(w, err)
		return
	}
	previousPages, err := parsePageRange(r, "start_page2", "end_page2")
	if err != nil {
		h.respondError(w, err)
		return
	}

	resp, err := h.service.CompareDocuments(r.Context(), &models.CompareRequest{
		Current:        current,
		Previous:       previous,
		CurrentPeriod:  strings.TrimSpace(r.FormValue("period1")),
		PreviousPeriod: strings.TrimSpace(r.FormValue("period2")),
		CurrentPages:   currentPages,
		PreviousPages:  previousPages,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *DocumentHandler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			h.respondError(w, utils.NewBadRequestError("limit must be a positive integer"))
			return
		}
		limit = n
	}

	records, err := h.service.ListAnalyses(r.Context(), limit)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, records)
}

func (h *DocumentHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	if id == "" {
		h.respondError(w, utils.NewBadRequestError("Analysis ID is required"))
		return
	}

	rec, err := h.service.GetAnalysis(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, rec)
}

// parseUploadForm parses a multipart body holding up to files uploads of at
// most maxFileSize each.
func parseUploadForm(w http.ResponseWriter, r *http.Request, maxFileSize int64, files int) error {
	limit := int64(files)*maxFileSize + formOverhead

	// Reject oversized requests before reading the body
	if r.ContentLength > limit {
		return fileTooLarge(maxFileSize)
	}

	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fileTooLarge(maxFileSize)
		}
		return utils.NewBadRequestError("Invalid form data")
	}
	return nil
}

// readUpload reads the PDF sent in field.
func readUpload(r *http.Request, field string, maxFileSize int64) (models.UploadedFile, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return models.UploadedFile{}, utils.NewBadRequestError(fmt.Sprintf("No file provided in field %q", field))
	}
	defer file.Close()

	if !isPDF(header) {
		return models.UploadedFile{}, utils.NewBadRequestError("Only PDF files are allowed")
	}

	data, err := io.ReadAll(io.LimitReader(file, maxFileSize+1))
	if err != nil {
		return models.UploadedFile{}, utils.NewInternalError("Failed to read file")
	}

	if int64(len(data)) > maxFileSize {
		return models.UploadedFile{}, fileTooLarge(maxFileSize)
	}

	if len(data) == 0 {
		return models.UploadedFile{}, utils.NewBadRequestError("Uploaded file is empty")
	}

	return models.UploadedFile{
		Data:     data,
		Filename: filepath.Base(header.Filename),
	}, nil
}

// isPDF accepts a .pdf extension or an application/pdf part. The content
// itself is checked by the service.
func isPDF(header *multipart.FileHeader) bool {
	if strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		return true
	}
	return header.Header.Get("Content-Type") == "application/pdf"
}

// parsePageRange reads an optional 1-based page range. A missing start means
// the first page and a missing or zero end means the last page.
func parsePageRange(r *http.Request, startKey, endKey string) (extractor.PageRange, error) {
	pages := extractor.AllPages()

	if v := strings.TrimSpace(r.FormValue(startKey)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return pages, utils.NewBadRequestError(fmt.Sprintf("%s must be an integer", startKey))
		}
		pages.Start = n
	}

	if v := strings.TrimSpace(r.FormValue(endKey)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return pages, utils.NewBadRequestError(fmt.Sprintf("%s must be an integer", endKey))
		}
		pages.End = n
	}

	if err := pages.Validate(); err != nil {
		return pages, utils.NewBadRequestError(err.Error())
	}

	return pages, nil
}

func fileTooLarge(maxFileSize int64) error {
	return utils.NewBadRequestError(fmt.Sprintf("File size exceeds %dMB limit", maxFileSize>>20))
}

func (h *DocumentHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", "error", err)
	}
}

func (h *DocumentHandler) respondError(w http.ResponseWriter, err error) {
	status, message := errorStatus(err)

	h.logger.Error("Request error", "status", status, "error", message)

	h.respondJSON(w, status, map[string]string{"error": message})
}

func errorStatus(err error) (int, string) {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode, appErr.Message
	}
	return http.StatusInternalServerError, "Internal server error"
}
