package mocks

import (
	"context"

	"projdocs/internal/model"
	"projdocs/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockStandardsService struct {
	mock.Mock
}

var _ service.StandardsService = (*MockStandardsService)(nil)

func (m *MockStandardsService) ListExistingStandards(ctx context.Context) ([]model.Standard, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Standard), args.Error(1)
}

func (m *MockStandardsService) GetNextVersion(ctx context.Context, client string) (string, error) {
	args := m.Called(ctx, client)
	return args.String(0), args.Error(1)
}

func (m *MockStandardsService) UploadNativeFile(ctx context.Context, file service.UploadFile, version, client, projectNumber string, meta model.StandardMetadata) (*model.Standard, error) {
	args := m.Called(ctx, file, version, client, projectNumber, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Standard), args.Error(1)
}

func (m *MockStandardsService) CopyExistingStandard(ctx context.Context, std model.Standard, projectNumber string) (*model.PromotionResult, error) {
	args := m.Called(ctx, std, projectNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PromotionResult), args.Error(1)
}

func (m *MockStandardsService) CopyTemplates(ctx context.Context, projectNumber, code string) ([]model.PromotionResult, error) {
	args := m.Called(ctx, projectNumber, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PromotionResult), args.Error(1)
}

func (m *MockStandardsService) AddStandardsToProjectWithProgress(ctx context.Context, items []model.PromotionItem, projectNumber string, progress service.PromotionProgressFunc) ([]model.PromotionResult, error) {
	args := m.Called(ctx, items, projectNumber, progress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PromotionResult), args.Error(1)
}

func (m *MockStandardsService) TargetFolder(projectNumber, code string) string {
	args := m.Called(projectNumber, code)
	return args.String(0)
}
