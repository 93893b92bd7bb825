package backend

import (
	"context"
	"errors"
	"fmt"
	"io"

	"projdocs/internal/store"
)

// recordBackend keeps list records, schemas, checkouts and versions.
type recordBackend interface {
	store.RecordStore
	store.SchemaStore
	UpsertFileItem(ctx context.Context, fileRef string) (store.Record, error)
	ItemForFile(ctx context.Context, fileRef string) (store.Record, error)
	CopyFields(ctx context.Context, sourceRef, destRef string) error
	IsCheckedOut(ctx context.Context, fileRef string) (bool, error)
	Checkout(ctx context.Context, fileRef string) error
	Checkin(ctx context.Context, fileRef, comment string, size int64) error
	AddVersion(ctx context.Context, fileRef string, size int64) error
	ListVersions(ctx context.Context, fileRef string) ([]store.FileVersion, error)
}

// fileBackend keeps the folder tree and file content.
type fileBackend interface {
	store.FolderStore
	CreateRoot(ctx context.Context, library string) error
	Put(ctx context.Context, ref string, r io.Reader, size int64, overwrite bool) error
	PutChunked(ctx context.Context, ref string, r io.Reader, size int64, onChunk store.ChunkFunc) error
	Copy(ctx context.Context, sourceRef, destRef string, overwrite bool) error
	Size(ctx context.Context, ref string) (int64, error)
	Remove(ctx context.Context, ref string) error
}

// Remote joins a record backend and a file backend into one store.Store.
// Every file write keeps the file's list record and version history in step.
type Remote struct {
	records recordBackend
	files   fileBackend
}

var _ store.Store = (*Remote)(nil)

// NewRemote combines records and files.
func NewRemote(records recordBackend, files fileBackend) *Remote {
	return &Remote{records: records, files: files}
}

func (r *Remote) Add(ctx context.Context, library string, fields store.Fields) (store.Record, error) {
	return r.records.Add(ctx, library, fields)
}

func (r *Remote) Update(ctx context.Context, library string, id int, fields store.Fields) error {
	return r.records.Update(ctx, library, id, fields)
}

// Delete removes the record and then its file.
func (r *Remote) Delete(ctx context.Context, library string, id int) error {
	rec, err := r.records.Get(ctx, library, id)
	if err != nil {
		return err
	}
	if err := r.records.Delete(ctx, library, id); err != nil {
		return err
	}
	if rec.FileRef == "" {
		return nil
	}
	if err := r.files.Remove(ctx, rec.FileRef); err != nil {
		return fmt.Errorf("remove file %s: %w", rec.FileRef, err)
	}
	return nil
}

func (r *Remote) Get(ctx context.Context, library string, id int) (store.Record, error) {
	return r.records.Get(ctx, library, id)
}

func (r *Remote) Query(ctx context.Context, library string, q store.Query) ([]store.Record, error) {
	return r.records.Query(ctx, library, q)
}

func (r *Remote) FolderExists(ctx context.Context, p string) (bool, error) {
	return r.files.FolderExists(ctx, p)
}

func (r *Remote) CreateFolder(ctx context.Context, parentPath, name string) (store.FolderEntry, error) {
	return r.files.CreateFolder(ctx, parentPath, name)
}

func (r *Remote) ListFolders(ctx context.Context, p string) ([]store.FolderEntry, error) {
	return r.files.ListFolders(ctx, p)
}

func (r *Remote) ListFiles(ctx context.Context, p string) ([]store.FileEntry, error) {
	return r.files.ListFiles(ctx, p)
}

// prepareWrite checks that ref's library exists and that the file is not locked.
func (r *Remote) prepareWrite(ctx context.Context, ref string) error {
	lib := store.Library(ref)
	ok, err := r.records.LibraryExists(ctx, lib)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrLibraryNotFound, lib)
	}
	locked, err := r.records.IsCheckedOut(ctx, ref)
	if err != nil {
		return err
	}
	if locked {
		return fmt.Errorf("%w: %s", store.ErrCheckedOut, ref)
	}
	return nil
}

// recordWrite creates or refreshes the file's record and appends a version.
func (r *Remote) recordWrite(ctx context.Context, ref string, size int64) error {
	if _, err := r.records.UpsertFileItem(ctx, ref); err != nil {
		return fmt.Errorf("record item for %s: %w", ref, err)
	}
	if err := r.records.AddVersion(ctx, ref, size); err != nil {
		return fmt.Errorf("record version of %s: %w", ref, err)
	}
	return nil
}

func (r *Remote) UploadSmall(ctx context.Context, folderPath, fileName string, rd io.Reader, size int64, overwrite bool) (string, error) {
	ref := store.Join(folderPath, fileName)
	if err := r.prepareWrite(ctx, ref); err != nil {
		return "", err
	}
	if err := r.files.Put(ctx, ref, rd, size, overwrite); err != nil {
		return "", err
	}
	return ref, r.recordWrite(ctx, ref, size)
}

func (r *Remote) UploadChunked(ctx context.Context, folderPath, fileName string, rd io.Reader, size int64, onChunk store.ChunkFunc) (string, error) {
	ref := store.Join(folderPath, fileName)
	if err := r.prepareWrite(ctx, ref); err != nil {
		return "", err
	}
	if err := r.files.PutChunked(ctx, ref, rd, size, onChunk); err != nil {
		return "", err
	}
	return ref, r.recordWrite(ctx, ref, size)
}

// CopyFile copies content server-side and carries the source record's fields over.
func (r *Remote) CopyFile(ctx context.Context, sourceRef, destPath string, overwrite bool) error {
	destPath = store.Clean(destPath)
	if err := r.prepareWrite(ctx, destPath); err != nil {
		return err
	}
	if err := r.files.Copy(ctx, sourceRef, destPath, overwrite); err != nil {
		return err
	}
	size, err := r.files.Size(ctx, destPath)
	if err != nil {
		return err
	}
	if err := r.recordWrite(ctx, destPath, size); err != nil {
		return err
	}
	return r.records.CopyFields(ctx, sourceRef, destPath)
}

func (r *Remote) GetItemForFile(ctx context.Context, fileRef string) (store.Record, error) {
	return r.records.ItemForFile(ctx, fileRef)
}

func (r *Remote) Checkout(ctx context.Context, fileRef string) error {
	return r.records.Checkout(ctx, fileRef)
}

func (r *Remote) Checkin(ctx context.Context, fileRef, comment string) error {
	size, err := r.files.Size(ctx, fileRef)
	if err != nil {
		return err
	}
	return r.records.Checkin(ctx, fileRef, comment, size)
}

func (r *Remote) ListVersions(ctx context.Context, fileRef string) ([]store.FileVersion, error) {
	return r.records.ListVersions(ctx, fileRef)
}

// LibraryExists reports true only when the library is registered and its root
// folder is present.
func (r *Remote) LibraryExists(ctx context.Context, name string) (bool, error) {
	ok, err := r.records.LibraryExists(ctx, name)
	if err != nil || !ok {
		return false, err
	}
	return r.files.FolderExists(ctx, store.Join(name))
}

// CreateLibrary registers the library and writes its root folder. A library that
// is already registered still gets its root written, then ErrAlreadyExists is returned.
func (r *Remote) CreateLibrary(ctx context.Context, name string) error {
	regErr := r.records.CreateLibrary(ctx, name)
	if regErr != nil && !errors.Is(regErr, store.ErrAlreadyExists) {
		return regErr
	}
	if err := r.files.CreateRoot(ctx, name); err != nil {
		return fmt.Errorf("create root of %s: %w", name, err)
	}
	return regErr
}

func (r *Remote) ListFields(ctx context.Context, library string) ([]store.Field, error) {
	return r.records.ListFields(ctx, library)
}

func (r *Remote) AddTextField(ctx context.Context, library, name string, required bool) error {
	return r.records.AddTextField(ctx, library, name, required)
}
