package mocks

import (
	"context"

	"projdocs/internal/model"
	"projdocs/internal/service"
	"projdocs/internal/store"

	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

var _ service.DocumentService = (*MockDocumentService)(nil)

func (m *MockDocumentService) ProjectFolder(projectID string) string {
	args := m.Called(projectID)
	return args.String(0)
}

func (m *MockDocumentService) EnsureProjectFolder(ctx context.Context, projectID string) (string, error) {
	args := m.Called(ctx, projectID)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentService) ListDocuments(ctx context.Context, projectID string) ([]model.Document, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentService) ListFolderContents(ctx context.Context, folderPath string) ([]model.Document, error) {
	args := m.Called(ctx, folderPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Document), args.Error(1)
}

func (m *MockDocumentService) UploadDocument(ctx context.Context, projectID string, file service.UploadFile, meta model.DocumentMetadata, progress service.ProgressFunc) (*model.Document, error) {
	args := m.Called(ctx, projectID, file, meta, progress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) CreateFolder(ctx context.Context, folderPath string) (*model.FolderInfo, error) {
	args := m.Called(ctx, folderPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FolderInfo), args.Error(1)
}

func (m *MockDocumentService) DeleteDocument(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentService) CheckoutDocument(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentService) CheckinDocument(ctx context.Context, id int, comment string) error {
	args := m.Called(ctx, id, comment)
	return args.Error(0)
}

func (m *MockDocumentService) GetDocumentVersions(ctx context.Context, id int) ([]store.FileVersion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.FileVersion), args.Error(1)
}

func (m *MockDocumentService) InvalidateProject(projectID string) {
	m.Called(projectID)
}
