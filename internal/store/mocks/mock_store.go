package mocks

import (
	"context"
	"io"

	"projdocs/internal/store"

	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

var _ store.Store = (*MockStore)(nil)

func (m *MockStore) Add(ctx context.Context, library string, fields store.Fields) (store.Record, error) {
	args := m.Called(ctx, library, fields)
	return args.Get(0).(store.Record), args.Error(1)
}

func (m *MockStore) Update(ctx context.Context, library string, id int, fields store.Fields) error {
	args := m.Called(ctx, library, id, fields)
	return args.Error(0)
}

func (m *MockStore) Delete(ctx context.Context, library string, id int) error {
	args := m.Called(ctx, library, id)
	return args.Error(0)
}

func (m *MockStore) Get(ctx context.Context, library string, id int) (store.Record, error) {
	args := m.Called(ctx, library, id)
	return args.Get(0).(store.Record), args.Error(1)
}

func (m *MockStore) Query(ctx context.Context, library string, q store.Query) ([]store.Record, error) {
	args := m.Called(ctx, library, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Record), args.Error(1)
}

func (m *MockStore) FolderExists(ctx context.Context, path string) (bool, error) {
	args := m.Called(ctx, path)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) CreateFolder(ctx context.Context, parentPath, name string) (store.FolderEntry, error) {
	args := m.Called(ctx, parentPath, name)
	return args.Get(0).(store.FolderEntry), args.Error(1)
}

func (m *MockStore) ListFolders(ctx context.Context, path string) ([]store.FolderEntry, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.FolderEntry), args.Error(1)
}

func (m *MockStore) ListFiles(ctx context.Context, path string) ([]store.FileEntry, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.FileEntry), args.Error(1)
}

func (m *MockStore) UploadSmall(ctx context.Context, folderPath, fileName string, r io.Reader, size int64, overwrite bool) (string, error) {
	args := m.Called(ctx, folderPath, fileName, r, size, overwrite)
	return args.String(0), args.Error(1)
}

func (m *MockStore) UploadChunked(ctx context.Context, folderPath, fileName string, r io.Reader, size int64, onChunk store.ChunkFunc) (string, error) {
	args := m.Called(ctx, folderPath, fileName, r, size, onChunk)
	return args.String(0), args.Error(1)
}

func (m *MockStore) CopyFile(ctx context.Context, sourceRef, destPath string, overwrite bool) error {
	args := m.Called(ctx, sourceRef, destPath, overwrite)
	return args.Error(0)
}

func (m *MockStore) GetItemForFile(ctx context.Context, fileRef string) (store.Record, error) {
	args := m.Called(ctx, fileRef)
	return args.Get(0).(store.Record), args.Error(1)
}

func (m *MockStore) Checkout(ctx context.Context, fileRef string) error {
	args := m.Called(ctx, fileRef)
	return args.Error(0)
}

func (m *MockStore) Checkin(ctx context.Context, fileRef, comment string) error {
	args := m.Called(ctx, fileRef, comment)
	return args.Error(0)
}

func (m *MockStore) ListVersions(ctx context.Context, fileRef string) ([]store.FileVersion, error) {
	args := m.Called(ctx, fileRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.FileVersion), args.Error(1)
}

func (m *MockStore) LibraryExists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) CreateLibrary(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockStore) ListFields(ctx context.Context, library string) ([]store.Field, error) {
	args := m.Called(ctx, library)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Field), args.Error(1)
}

func (m *MockStore) AddTextField(ctx context.Context, library, name string, required bool) error {
	args := m.Called(ctx, library, name, required)
	return args.Error(0)
}
