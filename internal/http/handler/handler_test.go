package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"projdocs/internal/classification"
	"projdocs/internal/model"
	"projdocs/internal/provision"
	"projdocs/internal/service"
	serviceMocks "projdocs/internal/service/mocks"
	"projdocs/internal/store"
)

func testCatalog() *classification.Catalog {
	return classification.NewCatalog([]classification.Group{
		{Code: "PM_10", Title: "Project information", Subgroups: []classification.Subgroup{
			{Code: "PM_10_20", Title: "Client requirements", Sections: []classification.Section{
				{Code: "PM_10_20_30", Title: "Brief"},
			}},
		}},
	})
}

func multipartBody(t *testing.T, fileName, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if fileName != "" {
		part, err := writer.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func decodeError(t *testing.T, r io.Reader) errorPayload {
	t.Helper()
	var res errorPayload
	require.NoError(t, json.NewDecoder(r).Decode(&res))
	return res
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, resp.Body).Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "projdocs_test_total", Help: "test"})
	reg.MustRegister(counter)
	counter.Inc()

	app := fiber.New()
	app.Get("/metrics", Metrics(reg))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "projdocs_test_total 1")
}

func TestListDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/projects/:project/documents", ListDocuments(mockSvc))

	t.Run("success", func(t *testing.T) {
		docs := []model.Document{
			{Name: "Drawings", Path: "/ProjectDocuments/P-1/Drawings", IsFolder: true},
			{ID: 3, Name: "a.pdf", Path: "/ProjectDocuments/P-1/a.pdf"},
		}
		mockSvc.On("ListDocuments", mock.Anything, "P-1").Return(docs, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/projects/P-1/documents", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result []model.Document
		json.NewDecoder(resp.Body).Decode(&result)
		require.Len(t, result, 2)
		assert.True(t, result[0].IsFolder)
		assert.Equal(t, 3, result[1].ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("listing failure", func(t *testing.T) {
		mockSvc.On("ListDocuments", mock.Anything, "P-2").
			Return(nil, &service.ListDocumentsError{ProjectID: "P-2", Err: errors.New("timeout")}).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/projects/P-2/documents", nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "INTERNAL_ERROR", decodeError(t, resp.Body).Error.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("provisioning failure", func(t *testing.T) {
		mockSvc.On("ListDocuments", mock.Anything, "P-3").
			Return(nil, &service.FolderProvisioningError{ProjectID: "P-3", Err: errors.New("denied")}).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/projects/P-3/documents", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "PROVISIONING_FAILED", decodeError(t, resp.Body).Error.Code)
	})
}

func TestUploadDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Post("/projects/:project/documents", UploadDocument(mockSvc, testCatalog()))

	t.Run("success with classification", func(t *testing.T) {
		body, ct := multipartBody(t, "brief.pdf", "hello world", map[string]string{
			"document_type": "Report",
			"status":        "Draft",
			"code":          "PM_10_20_30",
		})
		expected := &model.Document{ID: 7, Name: "brief.pdf"}
		mockSvc.On("UploadDocument", mock.Anything, "P-1",
			mock.MatchedBy(func(f service.UploadFile) bool { return f.Name == "brief.pdf" && f.Size == 11 }),
			mock.MatchedBy(func(m model.DocumentMetadata) bool {
				return m.DocumentType == "Report" && m.Status == "Draft" &&
					m.Classification != nil && m.Classification.Subgroup.Code == "PM_10_20" &&
					m.Classification.Section.Title == "Brief"
			}),
			mock.Anything,
		).Return(expected, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/projects/P-1/documents", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var result model.Document
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, 7, result.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/projects/P-1/documents", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("unknown classification", func(t *testing.T) {
		body, ct := multipartBody(t, "a.pdf", "x", map[string]string{"code": "ZZ_99"})
		req := httptest.NewRequest(http.MethodPost, "/projects/P-1/documents", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "UNKNOWN_CLASSIFICATION", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("upload failure names the stage", func(t *testing.T) {
		body, ct := multipartBody(t, "a.pdf", "hello", nil)
		mockSvc.On("UploadDocument", mock.Anything, "P-1", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &service.UploadError{FileName: "a.pdf", Stage: "single upload", Err: errors.New("quota")}).Once()

		req := httptest.NewRequest(http.MethodPost, "/projects/P-1/documents", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		res := decodeError(t, resp.Body)
		assert.Equal(t, "UPLOAD_FAILED", res.Error.Code)
		assert.Equal(t, "upload failed at single upload", res.Error.Message)
		mockSvc.AssertExpectations(t)
	})
}

func TestFolders(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/folders", ListFolderContents(mockSvc))
	app.Post("/folders", CreateFolder(mockSvc))
	app.Post("/projects/:project/folder", EnsureProjectFolder(mockSvc))

	t.Run("create", func(t *testing.T) {
		info := &model.FolderInfo{Name: "B", Path: "/ProjectDocuments/P-1/A/B"}
		mockSvc.On("CreateFolder", mock.Anything, "/ProjectDocuments/P-1/A/B").Return(info, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/folders", strings.NewReader(`{"path":"/ProjectDocuments/P-1/A/B"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("create without path", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/folders", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "PATH_REQUIRED", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("list missing folder", func(t *testing.T) {
		mockSvc.On("ListFolderContents", mock.Anything, "/ProjectDocuments/nope").
			Return(nil, &service.RepositoryError{Op: "list folder", Target: "/ProjectDocuments/nope", Err: store.ErrNotFound}).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/folders?path=/ProjectDocuments/nope", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("ensure project folder", func(t *testing.T) {
		mockSvc.On("EnsureProjectFolder", mock.Anything, "P-1").Return("/ProjectDocuments/P-1", nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/projects/P-1/folder", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "/ProjectDocuments/P-1", body["path"])
	})

	t.Run("ensure provisioning failure", func(t *testing.T) {
		mockSvc.On("EnsureProjectFolder", mock.Anything, "P-9").
			Return("", &provision.ProvisioningError{Library: "ProjectDocuments", Err: errors.New("denied")}).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/projects/P-9/folder", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestDocumentLifecycle(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Delete("/documents/:id", DeleteDocument(mockSvc))
	app.Post("/documents/:id/checkout", CheckoutDocument(mockSvc))
	app.Post("/documents/:id/checkin", CheckinDocument(mockSvc))
	app.Get("/documents/:id/versions", DocumentVersions(mockSvc))

	t.Run("delete", func(t *testing.T) {
		mockSvc.On("DeleteDocument", mock.Anything, 4).Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/documents/4", nil))

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("delete not found", func(t *testing.T) {
		mockSvc.On("DeleteDocument", mock.Anything, 5).
			Return(&service.RepositoryError{Op: "delete", Target: "item 5", Err: store.ErrNotFound}).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/documents/5", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/documents/abc", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("checkout conflict", func(t *testing.T) {
		mockSvc.On("CheckoutDocument", mock.Anything, 4).Return(store.ErrCheckedOut).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/documents/4/checkout", nil))

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "CHECKED_OUT", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("checkin with comment", func(t *testing.T) {
		mockSvc.On("CheckinDocument", mock.Anything, 4, "reviewed").Return(nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/documents/4/checkin", strings.NewReader(`{"comment":"reviewed"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("checkin without body", func(t *testing.T) {
		mockSvc.On("CheckinDocument", mock.Anything, 6, "").Return(store.ErrNotCheckedOut).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/documents/6/checkin", nil))

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "NOT_CHECKED_OUT", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("versions", func(t *testing.T) {
		versions := []store.FileVersion{{Label: "1.0"}, {Label: "2.0", Current: true}}
		mockSvc.On("GetDocumentVersions", mock.Anything, 4).Return(versions, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/documents/4/versions", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var got []store.FileVersion
		json.NewDecoder(resp.Body).Decode(&got)
		require.Len(t, got, 2)
		assert.True(t, got[1].Current)
	})

	mockSvc.AssertExpectations(t)
}

func TestStandards(t *testing.T) {
	mockSvc := new(serviceMocks.MockStandardsService)
	app := fiber.New()
	app.Get("/standards", ListStandards(mockSvc))
	app.Get("/standards/next-version", NextVersion(mockSvc))
	app.Post("/standards", UploadStandard(mockSvc))
	app.Post("/projects/:project/standards", PromoteStandards(mockSvc))
	app.Post("/projects/:project/templates", CopyTemplates(mockSvc))

	t.Run("list", func(t *testing.T) {
		mockSvc.On("ListExistingStandards", mock.Anything).
			Return([]model.Standard{{ID: 1, FileName: "a.pdf", Client: "Acme", Version: "V1"}}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/standards", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var got []model.Standard
		json.NewDecoder(resp.Body).Decode(&got)
		require.Len(t, got, 1)
		assert.Equal(t, "Acme", got[0].Client)
	})

	t.Run("next version", func(t *testing.T) {
		mockSvc.On("GetNextVersion", mock.Anything, "Acme").Return("V3", nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/standards/next-version?client=Acme", nil))

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "V3", body["version"])
	})

	t.Run("next version without client", func(t *testing.T) {
		mockSvc.On("GetNextVersion", mock.Anything, "").Return("", service.ErrClientRequired).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/standards/next-version", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "client is required", decodeError(t, resp.Body).Error.Message)
	})

	t.Run("upload", func(t *testing.T) {
		body, ct := multipartBody(t, "brief.docx", "content", map[string]string{
			"client": "Acme", "version": "V2", "project_number": "P-1",
			"code": "PM_10", "title": "Project information",
		})
		mockSvc.On("UploadNativeFile", mock.Anything,
			mock.MatchedBy(func(f service.UploadFile) bool { return f.Name == "brief.docx" && f.Size == 7 }),
			"V2", "Acme", "P-1",
			model.StandardMetadata{Code: "PM_10", Title: "Project information"},
		).Return(&model.Standard{ID: 2, FileName: "brief.docx"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/standards", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("promote reports progress", func(t *testing.T) {
		items := []model.PromotionItem{
			{FileName: "a.pdf", Code: "PM_10", Client: "Acme", Version: "V1"},
			{FileName: "b.pdf", Code: "PM_10", Client: "Acme", Version: "V1"},
		}
		results := []model.PromotionResult{
			{FileName: "a.pdf", TargetPath: "/ProjectDocuments/P-1/Project information/a.pdf"},
			{FileName: "b.pdf", TargetPath: "/ProjectDocuments/P-1/Project information/b.pdf"},
		}
		mockSvc.On("AddStandardsToProjectWithProgress", mock.Anything, items, "P-1", mock.Anything).
			Run(func(args mock.Arguments) {
				progress := args.Get(3).(service.PromotionProgressFunc)
				progress(0.5, results[:1])
				progress(1, results)
			}).
			Return(results, nil).Once()

		payload, _ := json.Marshal(promoteRequest{Items: items})
		req := httptest.NewRequest(http.MethodPost, "/projects/P-1/standards", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var got promoteResponse
		json.NewDecoder(resp.Body).Decode(&got)
		assert.Equal(t, []float64{0.5, 1}, got.Progress)
		assert.Len(t, got.Results, 2)
	})

	t.Run("promote failure", func(t *testing.T) {
		mockSvc.On("AddStandardsToProjectWithProgress", mock.Anything, mock.Anything, "P-2", mock.Anything).
			Return(nil, &service.CopyError{Index: 1, FileName: "b.pdf", Source: "/Standards/Acme/V1/b.pdf", Target: "/ProjectDocuments/P-2", Err: store.ErrAlreadyExists}).Once()

		req := httptest.NewRequest(http.MethodPost, "/projects/P-2/standards", strings.NewReader(`{"items":[{"file_name":"a.pdf"},{"file_name":"b.pdf"}]}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("promote missing source", func(t *testing.T) {
		mockSvc.On("AddStandardsToProjectWithProgress", mock.Anything, mock.Anything, "P-3", mock.Anything).
			Return(nil, &service.CopyError{Index: 0, FileName: "a.pdf", Err: errors.New("copy rejected")}).Once()

		req := httptest.NewRequest(http.MethodPost, "/projects/P-3/standards", strings.NewReader(`{"items":[{"file_name":"a.pdf"}]}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		res := decodeError(t, resp.Body)
		assert.Equal(t, "COPY_FAILED", res.Error.Code)
		assert.Contains(t, res.Error.Message, "copy item 1")
	})

	t.Run("templates", func(t *testing.T) {
		mockSvc.On("CopyTemplates", mock.Anything, "P-1", "PM_70").
			Return([]model.PromotionResult{{FileName: "t.docx", TargetPath: "/ProjectDocuments/P-1/Operations/t.docx"}}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/projects/P-1/templates", strings.NewReader(`{"code":"PM_70"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	mockSvc.AssertExpectations(t)
}

func TestClassification(t *testing.T) {
	app := fiber.New()
	app.Get("/classification/options", ClassificationOptions(testCatalog()))
	app.Get("/classification/folder", ClassificationFolder(testCatalog()))

	tests := []struct {
		name  string
		query string
		want  []classification.Option
	}{
		{"groups", "level=1", []classification.Option{{Key: "PM_10", Text: "PM_10 - Project information"}}},
		{"subgroups", "level=2&parent=PM_10", []classification.Option{{Key: "PM_10_20", Text: "PM_10_20 - Client requirements"}}},
		{"sections", "level=3&parent=PM_10_20&grandparent=PM_10", []classification.Option{{Key: "PM_10_20_30", Text: "PM_10_20_30 - Brief"}}},
		{"unknown parent", "level=2&parent=XX", []classification.Option{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/classification/options?"+tt.query, nil))
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			var got []classification.Option
			json.NewDecoder(resp.Body).Decode(&got)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("invalid level", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/classification/options?level=4", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("folder path", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/classification/folder?code=PM_10_20_30", nil))
		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "Project information/Client requirements", body["path"])
	})

	t.Run("unknown code", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/classification/folder?code=ZZ", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	RegisterRoutes(app, Deps{
		Documents: new(serviceMocks.MockDocumentService),
		Standards: new(serviceMocks.MockStandardsService),
		Catalog:   classification.Empty(),
	})

	t.Run("not found route", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/non-existent", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/health", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("health without pinger", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
