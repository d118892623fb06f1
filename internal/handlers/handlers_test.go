package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/financial-analyzer/internal/analyzer"
	"github.com/BerylCAtieno/financial-analyzer/internal/extractor/extractortest"
	"github.com/BerylCAtieno/financial-analyzer/internal/llm"
	"github.com/BerylCAtieno/financial-analyzer/internal/models"
	"github.com/BerylCAtieno/financial-analyzer/internal/prompts"
	"github.com/BerylCAtieno/financial-analyzer/internal/services"
	"github.com/BerylCAtieno/financial-analyzer/internal/storage"
	"github.com/BerylCAtieno/financial-analyzer/internal/utils"
)

type fakeAnalyzer struct {
	calls    int
	lastText string
	lastType prompts.AnalysisType
	periods  [2]string
	response string
	err      error
}

func (f *fakeAnalyzer) AnalyzeDocument(_ context.Context, text string, t prompts.AnalysisType) (string, error) {
	f.calls++
	f.lastText = text
	f.lastType = t
	return f.response, f.err
}

func (f *fakeAnalyzer) CompareStatements(_ context.Context, text1, text2, period1, period2 string) (string, error) {
	f.calls++
	f.lastText = text1 + text2
	f.periods = [2]string{period1, period2}
	return f.response, f.err
}

func newService(fa *fakeAnalyzer) services.DocumentService {
	return services.NewService(services.Deps{
		Analyzer: fa,
		Storage:  storage.NewMemoryStorage(time.Minute),
		Model:    "gpt-test",
		Logger:   utils.NopLogger(),
	})
}

type part struct {
	field    string
	filename string
	data     []byte
}

// multipartBody encodes files and fields as multipart/form-data.
func multipartBody(t *testing.T, files []part, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		if strings.HasSuffix(f.filename, ".pdf") {
			h.Set("Content-Type", "application/pdf")
		} else {
			h.Set("Content-Type", "application/octet-stream")
		}
		pw, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = pw.Write(f.data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	return &buf, w.FormDataContentType()
}

func postMultipart(t *testing.T, h http.HandlerFunc, files []part, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartBody(t, files, fields)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)

	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body["error"]
}

func TestAnalyzeDocumentHandler(t *testing.T) {
	fa := &fakeAnalyzer{response: "<table><tr><td>Revenue</td></tr></table>"}
	h := NewDocumentHandler(newService(fa), 0, utils.NopLogger())

	pdf := extractortest.BuildPDF("Cover page", "Revenue 100", "Notes")
	rr := postMultipart(t, h.AnalyzeDocument,
		[]part{{field: "file", filename: "report.pdf", data: pdf}},
		map[string]string{"analysis_type": "financial-statements", "start_page": "2", "end_page": "2"})

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp models.AnalysisResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "financial-statements", resp.AnalysisType)
	assert.Equal(t, prompts.FormatHTML, resp.Format)
	assert.Equal(t, "report.pdf", resp.Filename)
	assert.Equal(t, fa.response, resp.Result)

	assert.Equal(t, 1, fa.calls)
	assert.Equal(t, prompts.FinancialStatementsOnly, fa.lastType)
	assert.Contains(t, fa.lastText, "Revenue 100")
	assert.NotContains(t, fa.lastText, "Cover page")
}

func TestAnalyzeDocumentHandlerBadInput(t *testing.T) {
	pdf := extractortest.BuildPDF("Revenue")

	tests := []struct {
		name    string
		files   []part
		fields  map[string]string
		message string
	}{
		{
			name:    "unknown type",
			files:   []part{{field: "file", filename: "a.pdf", data: pdf}},
			fields:  map[string]string{"analysis_type": "cash-flow"},
			message: `Unknown analysis type "cash-flow"`,
		},
		{
			name:    "missing file",
			fields:  map[string]string{"analysis_type": "risk-factors"},
			message: `No file provided in field "file"`,
		},
		{
			name:    "not a pdf name",
			files:   []part{{field: "file", filename: "a.docx", data: pdf}},
			fields:  map[string]string{"analysis_type": "risk-factors"},
			message: "Only PDF files are allowed",
		},
		{
			name:    "bad page number",
			files:   []part{{field: "file", filename: "a.pdf", data: pdf}},
			fields:  map[string]string{"analysis_type": "risk-factors", "start_page": "two"},
			message: "start_page must be an integer",
		},
		{
			name:   "end before start",
			files:  []part{{field: "file", filename: "a.pdf", data: pdf}},
			fields: map[string]string{"analysis_type": "risk-factors", "start_page": "3", "end_page": "1"},
		},
		{
			name:    "empty file",
			files:   []part{{field: "file", filename: "a.pdf", data: nil}},
			fields:  map[string]string{"analysis_type": "risk-factors"},
			message: "Uploaded file is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa := &fakeAnalyzer{}
			h := NewDocumentHandler(newService(fa), 0, utils.NopLogger())

			rr := postMultipart(t, h.AnalyzeDocument, tt.files, tt.fields)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, decodeError(t, rr))
			}
			assert.Zero(t, fa.calls)
		})
	}
}

func TestAnalyzeDocumentHandlerFileTooLarge(t *testing.T) {
	fa := &fakeAnalyzer{}
	h := NewDocumentHandler(newService(fa), 1<<20, utils.NopLogger())

	big := append([]byte("%PDF-1.4\n"), make([]byte, 3<<20)...)
	rr := postMultipart(t, h.AnalyzeDocument,
		[]part{{field: "file", filename: "big.pdf", data: big}},
		map[string]string{"analysis_type": "risk-factors"})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "File size exceeds 1MB limit", decodeError(t, rr))
}

func TestAnalyzeDocumentHandlerErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		err    error
		status int
		prefix string
	}{
		{
			name:   "unreadable pdf",
			data:   []byte("%PDF-1.4 broken"),
			status: http.StatusUnprocessableEntity,
			prefix: "Error extracting PDF text:",
		},
		{
			name:   "not authenticated",
			data:   extractortest.BuildPDF("Revenue"),
			err:    &analyzer.Error{Kind: analyzer.KindAuthentication, Op: analyzer.OpAnalyze, Err: llm.ErrNotAuthenticated},
			status: http.StatusServiceUnavailable,
			prefix: "Error in analysis: please authenticate first",
		},
		{
			name:   "remote failure",
			data:   extractortest.BuildPDF("Revenue"),
			err:    &analyzer.Error{Kind: analyzer.KindRemote, Op: analyzer.OpAnalyze, Err: &llm.RemoteError{Err: errors.New("429 too many requests")}},
			status: http.StatusBadGateway,
			prefix: "Error in analysis:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewDocumentHandler(newService(&fakeAnalyzer{err: tt.err}), 0, utils.NopLogger())

			rr := postMultipart(t, h.AnalyzeDocument,
				[]part{{field: "file", filename: "a.pdf", data: tt.data}},
				map[string]string{"analysis_type": "management-commentary"})

			assert.Equal(t, tt.status, rr.Code)
			assert.Contains(t, decodeError(t, rr), tt.prefix)
		})
	}
}

func TestCompareDocumentsHandler(t *testing.T) {
	fa := &fakeAnalyzer{response: "Revenue up 20%"}
	h := NewDocumentHandler(newService(fa), 0, utils.NopLogger())

	rr := postMultipart(t, h.CompareDocuments,
		[]part{
			{field: "file1", filename: "2024.pdf", data: extractortest.BuildPDF("Revenue 120")},
			{field: "file2", filename: "2023.pdf", data: extractortest.BuildPDF("Revenue 100")},
		},
		map[string]string{"period1": "2024", "period2": ""})

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp models.AnalysisResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Revenue up 20%", resp.Result)
	assert.Equal(t, "2023.pdf", resp.Filename2)
	assert.Equal(t, [2]string{"2024", ""}, fa.periods)
}

func TestCountPagesHandler(t *testing.T) {
	h := NewDocumentHandler(newService(&fakeAnalyzer{}), 0, utils.NopLogger())

	rr := postMultipart(t, h.CountPages,
		[]part{{field: "file", filename: "a.pdf", data: extractortest.BuildPDF("1", "2", "3", "4")}}, nil)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"filename":"a.pdf","page_count":4}`, rr.Body.String())
}

func TestAnalysisTypesHandler(t *testing.T) {
	h := NewDocumentHandler(newService(&fakeAnalyzer{}), 0, utils.NopLogger())

	rr := httptest.NewRecorder()
	h.AnalysisTypes(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	var types []models.AnalysisTypeInfo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &types))
	require.Len(t, types, 4)
	assert.Equal(t, "commentary-vs-performance", types[3].Slug)
}

func TestHistoryHandlersDisabled(t *testing.T) {
	h := NewDocumentHandler(newService(&fakeAnalyzer{}), 0, utils.NopLogger())

	rr := httptest.NewRecorder()
	h.ListAnalyses(rr, httptest.NewRequest(http.MethodGet, "/?limit=5", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	h.ListAnalyses(rr, httptest.NewRequest(http.MethodGet, "/?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "x"})
	rr = httptest.NewRecorder()
	h.GetAnalysis(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
