package backend

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"projdocs/internal/config"
	"projdocs/internal/provision"
	"projdocs/internal/retry"
	"projdocs/internal/store"
)

type mockRecords struct{ mock.Mock }

var _ recordBackend = (*mockRecords)(nil)

func (m *mockRecords) Add(ctx context.Context, library string, fields store.Fields) (store.Record, error) {
	args := m.Called(ctx, library, fields)
	return args.Get(0).(store.Record), args.Error(1)
}

func (m *mockRecords) Update(ctx context.Context, library string, id int, fields store.Fields) error {
	return m.Called(ctx, library, id, fields).Error(0)
}

func (m *mockRecords) Delete(ctx context.Context, library string, id int) error {
	return m.Called(ctx, library, id).Error(0)
}

func (m *mockRecords) Get(ctx context.Context, library string, id int) (store.Record, error) {
	args := m.Called(ctx, library, id)
	return args.Get(0).(store.Record), args.Error(1)
}

func (m *mockRecords) Query(ctx context.Context, library string, q store.Query) ([]store.Record, error) {
	args := m.Called(ctx, library, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Record), args.Error(1)
}

func (m *mockRecords) LibraryExists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *mockRecords) CreateLibrary(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

func (m *mockRecords) ListFields(ctx context.Context, library string) ([]store.Field, error) {
	args := m.Called(ctx, library)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.Field), args.Error(1)
}

func (m *mockRecords) AddTextField(ctx context.Context, library, name string, required bool) error {
	return m.Called(ctx, library, name, required).Error(0)
}

func (m *mockRecords) UpsertFileItem(ctx context.Context, fileRef string) (store.Record, error) {
	args := m.Called(ctx, fileRef)
	return args.Get(0).(store.Record), args.Error(1)
}

func (m *mockRecords) ItemForFile(ctx context.Context, fileRef string) (store.Record, error) {
	args := m.Called(ctx, fileRef)
	return args.Get(0).(store.Record), args.Error(1)
}

func (m *mockRecords) CopyFields(ctx context.Context, sourceRef, destRef string) error {
	return m.Called(ctx, sourceRef, destRef).Error(0)
}

func (m *mockRecords) IsCheckedOut(ctx context.Context, fileRef string) (bool, error) {
	args := m.Called(ctx, fileRef)
	return args.Bool(0), args.Error(1)
}

func (m *mockRecords) Checkout(ctx context.Context, fileRef string) error {
	return m.Called(ctx, fileRef).Error(0)
}

func (m *mockRecords) Checkin(ctx context.Context, fileRef, comment string, size int64) error {
	return m.Called(ctx, fileRef, comment, size).Error(0)
}

func (m *mockRecords) AddVersion(ctx context.Context, fileRef string, size int64) error {
	return m.Called(ctx, fileRef, size).Error(0)
}

func (m *mockRecords) ListVersions(ctx context.Context, fileRef string) ([]store.FileVersion, error) {
	args := m.Called(ctx, fileRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.FileVersion), args.Error(1)
}

type mockFiles struct{ mock.Mock }

var _ fileBackend = (*mockFiles)(nil)

func (m *mockFiles) FolderExists(ctx context.Context, p string) (bool, error) {
	args := m.Called(ctx, p)
	return args.Bool(0), args.Error(1)
}

func (m *mockFiles) CreateFolder(ctx context.Context, parentPath, name string) (store.FolderEntry, error) {
	args := m.Called(ctx, parentPath, name)
	return args.Get(0).(store.FolderEntry), args.Error(1)
}

func (m *mockFiles) ListFolders(ctx context.Context, p string) ([]store.FolderEntry, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.FolderEntry), args.Error(1)
}

func (m *mockFiles) ListFiles(ctx context.Context, p string) ([]store.FileEntry, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]store.FileEntry), args.Error(1)
}

func (m *mockFiles) CreateRoot(ctx context.Context, library string) error {
	return m.Called(ctx, library).Error(0)
}

func (m *mockFiles) Put(ctx context.Context, ref string, r io.Reader, size int64, overwrite bool) error {
	return m.Called(ctx, ref, r, size, overwrite).Error(0)
}

func (m *mockFiles) PutChunked(ctx context.Context, ref string, r io.Reader, size int64, onChunk store.ChunkFunc) error {
	return m.Called(ctx, ref, r, size, onChunk).Error(0)
}

func (m *mockFiles) Copy(ctx context.Context, sourceRef, destRef string, overwrite bool) error {
	return m.Called(ctx, sourceRef, destRef, overwrite).Error(0)
}

func (m *mockFiles) Size(ctx context.Context, ref string) (int64, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockFiles) Remove(ctx context.Context, ref string) error {
	return m.Called(ctx, ref).Error(0)
}

const ref = "/Docs/P-1/a.pdf"

func newRemote() (*Remote, *mockRecords, *mockFiles) {
	rec := new(mockRecords)
	files := new(mockFiles)
	return NewRemote(rec, files), rec, files
}

func TestRemote_UploadSmall(t *testing.T) {
	ctx := context.Background()

	t.Run("writes content then item and version", func(t *testing.T) {
		r, rec, files := newRemote()
		body := strings.NewReader("abc")
		rec.On("LibraryExists", ctx, "Docs").Return(true, nil)
		rec.On("IsCheckedOut", ctx, ref).Return(false, nil)
		files.On("Put", ctx, ref, body, int64(3), true).Return(nil)
		rec.On("UpsertFileItem", ctx, ref).Return(store.Record{ID: 1, FileRef: ref}, nil)
		rec.On("AddVersion", ctx, ref, int64(3)).Return(nil)

		got, err := r.UploadSmall(ctx, "/Docs/P-1", "a.pdf", body, 3, true)
		require.NoError(t, err)
		assert.Equal(t, ref, got)
		rec.AssertExpectations(t)
		files.AssertExpectations(t)
	})

	t.Run("missing library", func(t *testing.T) {
		r, rec, files := newRemote()
		rec.On("LibraryExists", ctx, "Docs").Return(false, nil)

		_, err := r.UploadSmall(ctx, "/Docs/P-1", "a.pdf", strings.NewReader("abc"), 3, true)
		assert.ErrorIs(t, err, store.ErrLibraryNotFound)
		files.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("checked out file is not overwritten", func(t *testing.T) {
		r, rec, files := newRemote()
		rec.On("LibraryExists", ctx, "Docs").Return(true, nil)
		rec.On("IsCheckedOut", ctx, ref).Return(true, nil)

		_, err := r.UploadSmall(ctx, "/Docs/P-1", "a.pdf", strings.NewReader("abc"), 3, true)
		assert.ErrorIs(t, err, store.ErrCheckedOut)
		files.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("content failure leaves no record", func(t *testing.T) {
		r, rec, files := newRemote()
		body := strings.NewReader("abc")
		rec.On("LibraryExists", ctx, "Docs").Return(true, nil)
		rec.On("IsCheckedOut", ctx, ref).Return(false, nil)
		files.On("Put", ctx, ref, body, int64(3), false).Return(store.ErrAlreadyExists)

		_, err := r.UploadSmall(ctx, "/Docs/P-1", "a.pdf", body, 3, false)
		assert.ErrorIs(t, err, store.ErrAlreadyExists)
		rec.AssertNotCalled(t, "UpsertFileItem", mock.Anything, mock.Anything)
	})
}

func TestRemote_UploadChunked(t *testing.T) {
	ctx := context.Background()
	r, rec, files := newRemote()
	body := strings.NewReader("abcdef")
	rec.On("LibraryExists", ctx, "Docs").Return(true, nil)
	rec.On("IsCheckedOut", ctx, ref).Return(false, nil)
	files.On("PutChunked", ctx, ref, body, int64(6), mock.Anything).Return(nil)
	rec.On("UpsertFileItem", ctx, ref).Return(store.Record{ID: 1, FileRef: ref}, nil)
	rec.On("AddVersion", ctx, ref, int64(6)).Return(nil)

	got, err := r.UploadChunked(ctx, "/Docs/P-1", "a.pdf", body, 6, func(int64) {})
	require.NoError(t, err)
	assert.Equal(t, ref, got)
	rec.AssertExpectations(t)
	files.AssertExpectations(t)
}

func TestRemote_CopyFile(t *testing.T) {
	ctx := context.Background()
	src := "/Standards/Acme/V1/brief.docx"
	dst := "/Docs/P-1/Brief/brief.docx"

	t.Run("copies content and fields", func(t *testing.T) {
		r, rec, files := newRemote()
		rec.On("LibraryExists", ctx, "Docs").Return(true, nil)
		rec.On("IsCheckedOut", ctx, dst).Return(false, nil)
		files.On("Copy", ctx, src, dst, true).Return(nil)
		files.On("Size", ctx, dst).Return(int64(42), nil)
		rec.On("UpsertFileItem", ctx, dst).Return(store.Record{ID: 9, FileRef: dst}, nil)
		rec.On("AddVersion", ctx, dst, int64(42)).Return(nil)
		rec.On("CopyFields", ctx, src, dst).Return(nil)

		require.NoError(t, r.CopyFile(ctx, src, dst, true))
		rec.AssertExpectations(t)
		files.AssertExpectations(t)
	})

	t.Run("missing source", func(t *testing.T) {
		r, rec, files := newRemote()
		rec.On("LibraryExists", ctx, "Docs").Return(true, nil)
		rec.On("IsCheckedOut", ctx, dst).Return(false, nil)
		files.On("Copy", ctx, src, dst, true).Return(store.ErrNotFound)

		assert.ErrorIs(t, r.CopyFile(ctx, src, dst, true), store.ErrNotFound)
		rec.AssertNotCalled(t, "CopyFields", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRemote_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("file record removes content", func(t *testing.T) {
		r, rec, files := newRemote()
		rec.On("Get", ctx, "Docs", 4).Return(store.Record{ID: 4, FileRef: ref}, nil)
		rec.On("Delete", ctx, "Docs", 4).Return(nil)
		files.On("Remove", ctx, ref).Return(nil)

		require.NoError(t, r.Delete(ctx, "Docs", 4))
		files.AssertExpectations(t)
	})

	t.Run("plain record", func(t *testing.T) {
		r, rec, files := newRemote()
		rec.On("Get", ctx, "Docs", 5).Return(store.Record{ID: 5}, nil)
		rec.On("Delete", ctx, "Docs", 5).Return(nil)

		require.NoError(t, r.Delete(ctx, "Docs", 5))
		files.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything)
	})

	t.Run("missing record", func(t *testing.T) {
		r, rec, _ := newRemote()
		rec.On("Get", ctx, "Docs", 6).Return(store.Record{}, store.ErrNotFound)

		assert.ErrorIs(t, r.Delete(ctx, "Docs", 6), store.ErrNotFound)
		rec.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRemote_Checkin(t *testing.T) {
	ctx := context.Background()
	r, rec, files := newRemote()
	files.On("Size", ctx, ref).Return(int64(12), nil)
	rec.On("Checkin", ctx, ref, "done", int64(12)).Return(nil)

	require.NoError(t, r.Checkin(ctx, ref, "done"))
	rec.AssertExpectations(t)
}

func TestRemote_CreateLibrary(t *testing.T) {
	ctx := context.Background()

	t.Run("registers and creates root", func(t *testing.T) {
		r, rec, files := newRemote()
		rec.On("CreateLibrary", ctx, "Docs").Return(nil)
		files.On("CreateRoot", ctx, "Docs").Return(nil)

		require.NoError(t, r.CreateLibrary(ctx, "Docs"))
		files.AssertExpectations(t)
	})

	t.Run("existing library still gets its root", func(t *testing.T) {
		r, rec, files := newRemote()
		rec.On("CreateLibrary", ctx, "Docs").Return(store.ErrAlreadyExists)
		files.On("CreateRoot", ctx, "Docs").Return(nil)

		assert.ErrorIs(t, r.CreateLibrary(ctx, "Docs"), store.ErrAlreadyExists)
		files.AssertExpectations(t)
	})

	t.Run("root failure", func(t *testing.T) {
		r, rec, files := newRemote()
		rec.On("CreateLibrary", ctx, "Docs").Return(nil)
		files.On("CreateRoot", ctx, "Docs").Return(errors.New("minio: 503"))

		err := r.CreateLibrary(ctx, "Docs")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "create root of Docs")
	})

	t.Run("registration failure skips root", func(t *testing.T) {
		r, rec, files := newRemote()
		rec.On("CreateLibrary", ctx, "Docs").Return(errors.New("tx aborted"))

		assert.EqualError(t, r.CreateLibrary(ctx, "Docs"), "tx aborted")
		files.AssertNotCalled(t, "CreateRoot", mock.Anything, mock.Anything)
	})
}

func TestRemote_LibraryExists(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		registered bool
		root       bool
		want       bool
	}{
		{"registered with root", true, true, true},
		{"registered without root", true, false, false},
		{"unregistered", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, rec, files := newRemote()
			rec.On("LibraryExists", ctx, "Docs").Return(tt.registered, nil)
			files.On("FolderExists", ctx, "/Docs").Return(tt.root, nil).Maybe()

			got, err := r.LibraryExists(ctx, "Docs")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if !tt.registered {
				files.AssertNotCalled(t, "FolderExists", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestRemote_ProvisioningRecoversMissingRoot(t *testing.T) {
	ctx := context.Background()
	r, rec, files := newRemote()

	// First attempt registers the library but the root write fails.
	rec.On("LibraryExists", mock.Anything, "Docs").Return(false, nil).Once()
	rec.On("CreateLibrary", mock.Anything, "Docs").Return(nil).Once()
	files.On("CreateRoot", mock.Anything, "Docs").Return(errors.New("minio: 503")).Once()

	// Second attempt sees the registration but no root and writes it.
	rec.On("LibraryExists", mock.Anything, "Docs").Return(true, nil).Once()
	files.On("FolderExists", mock.Anything, "/Docs").Return(false, nil).Once()
	rec.On("CreateLibrary", mock.Anything, "Docs").Return(store.ErrAlreadyExists).Once()
	files.On("CreateRoot", mock.Anything, "Docs").Return(nil).Once()
	rec.On("ListFields", mock.Anything, "Docs").Return([]store.Field{}, nil).Once()

	p := provision.NewProvisioner(r, retry.Policy{Attempts: 3, BaseDelay: time.Millisecond, Multiplier: 2}, nil, nil)
	require.NoError(t, p.EnsureLibrary(ctx, "Docs", nil))
	assert.True(t, p.Verified("Docs"))
	files.AssertNumberOfCalls(t, "CreateRoot", 2)
	rec.AssertExpectations(t)
	files.AssertExpectations(t)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		cfg := &config.AppConfig{Store: config.StoreConfig{Backend: " Memory ", ChunkSize: 1 << 20}}
		b, err := Open(ctx, cfg, nil)
		require.NoError(t, err)
		assert.Equal(t, "memory", b.Kind)
		assert.NoError(t, b.PingContext(ctx))
		assert.NoError(t, b.Close())

		require.NoError(t, b.CreateLibrary(ctx, "Docs"))
		ok, err := b.LibraryExists(ctx, "Docs")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("unsupported", func(t *testing.T) {
		cfg := &config.AppConfig{Store: config.StoreConfig{Backend: "ftp"}}
		_, err := Open(ctx, cfg, nil)
		assert.EqualError(t, err, "unsupported store backend: ftp")
	})

	t.Run("remote without database settings", func(t *testing.T) {
		cfg := &config.AppConfig{Store: config.StoreConfig{Backend: "remote"}}
		_, err := Open(ctx, cfg, nil)
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(err.Error(), "open record database"))
	})
}

