package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"github.com/BerylCAtieno/financial-analyzer/internal/extractor"
	"github.com/BerylCAtieno/financial-analyzer/internal/models"
	"github.com/BerylCAtieno/financial-analyzer/internal/prompts"
	"github.com/BerylCAtieno/financial-analyzer/internal/render"
	"github.com/BerylCAtieno/financial-analyzer/internal/services"
	"github.com/BerylCAtieno/financial-analyzer/internal/utils"
)

//go:embed templates/*.html
var templates embed.FS

const (
	sessionName = "finanalyzer"

	keyStagedID     = "staged_id"
	keyFilename     = "filename"
	keyPageCount    = "page_count"
	keyAnalysisType = "analysis_type"
	keyStartPage    = "start_page"
	keyEndPage      = "end_page"
)

// NewSessionStore returns a cookie store keyed by secret. An empty secret
// gets a random key, so sessions do not survive a restart.
func NewSessionStore(secret string, maxAge time.Duration) *sessions.CookieStore {
	key := []byte(secret)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

type UIHandler struct {
	service     services.DocumentService
	store       sessions.Store
	tmpl        *template.Template
	renderHTML  bool
	maxFileSize int64
	logger      *utils.Logger
}

func NewUIHandler(service services.DocumentService, store sessions.Store, renderHTML bool, maxFileSize int64, logger *utils.Logger) *UIHandler {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &UIHandler{
		service:     service,
		store:       store,
		tmpl:        template.Must(template.ParseFS(templates, "templates/*.html")),
		renderHTML:  renderHTML,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

type stagedView struct {
	Filename  string
	PageCount int
	Pages     []int
}

type pageData struct {
	Types         []models.AnalysisTypeInfo
	Staged        *stagedView
	SelectedType  string
	StartPage     int
	EndPage       int
	Result        *render.Rendered
	ResultTitle   string
	Error         string
	MaxFileSizeMB int64
	Period1       string
	Period2       string
}

// Index shows the upload form, or the analysis controls once a document is
// staged.
func (h *UIHandler) Index(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	h.renderPage(w, http.StatusOK, h.newPageData(session))
}

func (h *UIHandler) Upload(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	data := h.newPageData(session)

	if err := parseUploadForm(w, r, h.maxFileSize, 1); err != nil {
		h.renderError(w, data, err)
		return
	}

	file, err := readUpload(r, "file", h.maxFileSize)
	if err != nil {
		h.renderError(w, data, err)
		return
	}

	staged, err := h.service.StageUpload(r.Context(), file)
	if err != nil {
		h.renderError(w, data, err)
		return
	}

	if previous, ok := session.Values[keyStagedID].(string); ok && previous != staged.ID {
		_ = h.service.DiscardUpload(r.Context(), previous)
	}

	session.Values[keyStagedID] = staged.ID
	session.Values[keyFilename] = staged.Filename
	session.Values[keyPageCount] = staged.PageCount
	session.Values[keyStartPage] = 1
	session.Values[keyEndPage] = staged.PageCount
	if err := session.Save(r, w); err != nil {
		h.logger.Error("Failed to save session", "error", err)
		h.renderError(w, data, utils.NewInternalError("Failed to save session"))
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *UIHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)

	if err := r.ParseForm(); err != nil {
		h.renderError(w, h.newPageData(session), utils.NewBadRequestError("Invalid form data"))
		return
	}

	staged, ok := stagedFromSession(session)
	if !ok {
		h.renderError(w, h.newPageData(session), utils.NewBadRequestError("Please upload a PDF first"))
		return
	}

	analysisType, err := prompts.ParseAnalysisType(r.FormValue("analysis_type"))
	if err != nil {
		h.renderError(w, h.newPageData(session), utils.NewBadRequestError("Please choose an analysis type"))
		return
	}

	pages, err := parsePageRange(r, "start_page", "end_page")
	if err != nil {
		h.renderError(w, h.newPageData(session), err)
		return
	}

	session.Values[keyAnalysisType] = analysisType.String()
	session.Values[keyStartPage] = pages.Start
	session.Values[keyEndPage] = pages.End
	if err := session.Save(r, w); err != nil {
		h.logger.Warn("Failed to save session", "error", err)
	}

	data := h.newPageData(session)

	resp, err := h.service.AnalyzeStaged(r.Context(), staged, analysisType, pages)
	if err != nil {
		h.renderError(w, data, err)
		return
	}

	rendered := render.Render(resp.Result, resp.Format, h.renderHTML)
	data.Result = &rendered
	data.ResultTitle = analysisType.Label()

	h.renderPage(w, http.StatusOK, data)
}

func (h *UIHandler) Compare(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	data := h.newPageData(session)

	if err := parseUploadForm(w, r, h.maxFileSize, 2); err != nil {
		h.renderError(w, data, err)
		return
	}

	data.Period1 = strings.TrimSpace(r.FormValue("period1"))
	data.Period2 = strings.TrimSpace(r.FormValue("period2"))

	current, err := readUpload(r, "file1", h.maxFileSize)
	if err != nil {
		h.renderError(w, data, err)
		return
	}
	previous, err := readUpload(r, "file2", h.maxFileSize)
	if err != nil {
		h.renderError(w, data, err)
		return
	}

	resp, err := h.service.CompareDocuments(r.Context(), &models.CompareRequest{
		Current:        current,
		Previous:       previous,
		CurrentPeriod:  data.Period1,
		PreviousPeriod: data.Period2,
	})
	if err != nil {
		h.renderError(w, data, err)
		return
	}

	rendered := render.Render(resp.Result, resp.Format, h.renderHTML)
	data.Result = &rendered
	data.ResultTitle = fmt.Sprintf("Comparison: %s vs %s", resp.Filename, resp.Filename2)

	h.renderPage(w, http.StatusOK, data)
}

// Reset discards the staged document and the selections.
func (h *UIHandler) Reset(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)

	if id, ok := session.Values[keyStagedID].(string); ok {
		_ = h.service.DiscardUpload(r.Context(), id)
	}

	for _, key := range []string{keyStagedID, keyFilename, keyPageCount, keyAnalysisType, keyStartPage, keyEndPage} {
		delete(session.Values, key)
	}
	if err := session.Save(r, w); err != nil {
		h.logger.Warn("Failed to save session", "error", err)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// session returns the visitor's session. A cookie that no longer decodes,
// for example after a key change, yields a fresh session.
func (h *UIHandler) session(r *http.Request) *sessions.Session {
	session, err := h.store.Get(r, sessionName)
	if err != nil {
		h.logger.Debug("Discarding unreadable session", "error", err)
	}
	return session
}

func stagedFromSession(session *sessions.Session) (models.StagedDocument, bool) {
	id, ok := session.Values[keyStagedID].(string)
	if !ok || id == "" {
		return models.StagedDocument{}, false
	}
	filename, _ := session.Values[keyFilename].(string)
	pageCount, _ := session.Values[keyPageCount].(int)

	return models.StagedDocument{
		ID:        id,
		Filename:  filename,
		PageCount: pageCount,
	}, true
}

func (h *UIHandler) newPageData(session *sessions.Session) *pageData {
	data := &pageData{
		Types:         h.service.AnalysisTypes(),
		MaxFileSizeMB: h.maxFileSize >> 20,
	}

	staged, ok := stagedFromSession(session)
	if !ok {
		return data
	}

	view := &stagedView{
		Filename:  staged.Filename,
		PageCount: staged.PageCount,
		Pages:     make([]int, staged.PageCount),
	}
	for i := range view.Pages {
		view.Pages[i] = i + 1
	}
	data.Staged = view

	data.SelectedType, _ = session.Values[keyAnalysisType].(string)
	data.StartPage, _ = session.Values[keyStartPage].(int)
	data.EndPage, _ = session.Values[keyEndPage].(int)
	if data.StartPage < 1 {
		data.StartPage = extractor.AllPages().Start
	}
	if data.EndPage < data.StartPage || data.EndPage > staged.PageCount {
		data.EndPage = staged.PageCount
	}

	return data
}

func (h *UIHandler) renderError(w http.ResponseWriter, data *pageData, err error) {
	status, message := errorStatus(err)

	h.logger.Error("UI request error", "status", status, "error", message)

	data.Error = message
	h.renderPage(w, status, data)
}

func (h *UIHandler) renderPage(w http.ResponseWriter, status int, data *pageData) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "index.html", data); err != nil {
		h.logger.Error("Failed to render page", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
