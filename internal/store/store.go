package store

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"
)

// Package store describes the backing store the document repository is layered on:
// schema-less list records, a folder/file tree addressed by path, server-side copy,
// chunked upload and a per-library field schema.
// Paths are slash separated; the first segment names the library.

var (
	ErrNotFound        = errors.New("store: item not found")
	ErrAlreadyExists   = errors.New("store: item already exists")
	ErrLibraryNotFound = errors.New("store: library not found")
	ErrCheckedOut      = errors.New("store: file is checked out")
	ErrNotCheckedOut   = errors.New("store: file is not checked out")
	ErrInvalidPath     = errors.New("store: invalid path")
	ErrFieldExists     = errors.New("store: field already exists")
	ErrNotImplemented  = errors.New("store: not implemented")
)

// Fields is the column/value bag of a list record.
type Fields map[string]any

// String returns the value of key as a string, or "" when absent or not a string.
func (f Fields) String(key string) string {
	if f == nil {
		return ""
	}
	if v, ok := f[key].(string); ok {
		return v
	}
	return ""
}

// UserRef is a lookup to the account that last modified an item.
type UserRef struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// Record is a single list item.
// FileRef is set when the record belongs to a file in the library's folder tree.
type Record struct {
	ID       int
	Fields   Fields
	FileRef  string
	Modified time.Time
	// Editor is only populated when the query expands "Editor".
	Editor *UserRef
}

// Filter selects records whose Field equals Value. A zero Filter matches everything.
type Filter struct {
	Field string
	Value string
}

// Eq builds an equality filter.
func Eq(field, value string) Filter { return Filter{Field: field, Value: value} }

// IsZero reports whether the filter matches every record.
func (f Filter) IsZero() bool { return f.Field == "" }

// Matches reports whether the record satisfies the filter.
func (f Filter) Matches(r Record) bool {
	if f.IsZero() {
		return true
	}
	switch v := r.Fields[f.Field].(type) {
	case string:
		return v == f.Value
	case nil:
		return f.Value == ""
	default:
		return false
	}
}

// Query describes a record lookup.
// Select restricts the returned fields (empty returns all); Expand names lookup
// columns to resolve, currently only "Editor".
type Query struct {
	Filter Filter
	Select []string
	Expand []string
}

// Expands reports whether name is listed in q.Expand.
func (q Query) Expands(name string) bool {
	for _, e := range q.Expand {
		if strings.EqualFold(e, name) {
			return true
		}
	}
	return false
}

// Project returns a copy of fields restricted to q.Select.
func (q Query) Project(fields Fields) Fields {
	out := make(Fields, len(fields))
	if len(q.Select) == 0 {
		for k, v := range fields {
			out[k] = v
		}
		return out
	}
	for _, k := range q.Select {
		if v, ok := fields[k]; ok {
			out[k] = v
		}
	}
	return out
}

// FolderEntry describes a folder in the tree.
type FolderEntry struct {
	Name      string
	Path      string
	Created   time.Time
	Modified  time.Time
	ItemCount int
}

// FileEntry describes a file in the tree.
type FileEntry struct {
	Name     string
	Path     string
	Size     int64
	Modified time.Time
}

// FileVersion is a single entry of a file's version history.
type FileVersion struct {
	Label     string    `json:"label"`
	Size      int64     `json:"size"`
	Created   time.Time `json:"created"`
	CreatedBy string    `json:"created_by"`
	Comment   string    `json:"comment,omitempty"`
	Current   bool      `json:"current"`
}

// Field is a column of a library schema.
type Field struct {
	Name     string
	Type     string
	Required bool
}

// ChunkFunc is invoked after each acknowledged chunk with the running byte total.
type ChunkFunc func(sent int64)

// RecordStore manages list records.
type RecordStore interface {
	Add(ctx context.Context, library string, fields Fields) (Record, error)
	Update(ctx context.Context, library string, id int, fields Fields) error
	// Delete removes the record and, when it belongs to a file, the file.
	Delete(ctx context.Context, library string, id int) error
	Get(ctx context.Context, library string, id int) (Record, error)
	Query(ctx context.Context, library string, q Query) ([]Record, error)
}

// FolderStore manages the folder tree.
type FolderStore interface {
	FolderExists(ctx context.Context, path string) (bool, error)
	// CreateFolder fails with ErrAlreadyExists when the folder is present.
	CreateFolder(ctx context.Context, parentPath, name string) (FolderEntry, error)
	ListFolders(ctx context.Context, path string) ([]FolderEntry, error)
	ListFiles(ctx context.Context, path string) ([]FileEntry, error)
}

// FileStore manages file content, locks and versions.
type FileStore interface {
	UploadSmall(ctx context.Context, folderPath, fileName string, r io.Reader, size int64, overwrite bool) (string, error)
	UploadChunked(ctx context.Context, folderPath, fileName string, r io.Reader, size int64, onChunk ChunkFunc) (string, error)
	CopyFile(ctx context.Context, sourceRef, destPath string, overwrite bool) error
	GetItemForFile(ctx context.Context, fileRef string) (Record, error)
	Checkout(ctx context.Context, fileRef string) error
	Checkin(ctx context.Context, fileRef, comment string) error
	ListVersions(ctx context.Context, fileRef string) ([]FileVersion, error)
}

// SchemaStore manages libraries and their fields.
type SchemaStore interface {
	LibraryExists(ctx context.Context, name string) (bool, error)
	CreateLibrary(ctx context.Context, name string) error
	ListFields(ctx context.Context, library string) ([]Field, error)
	AddTextField(ctx context.Context, library, name string, required bool) error
}

// Store is the full backing store surface.
type Store interface {
	RecordStore
	FolderStore
	FileStore
	SchemaStore
}

// Clean normalizes p to a rooted, slash separated path without a trailing slash.
func Clean(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	if p == "" {
		return "/"
	}
	return path.Clean("/" + p)
}

// Join joins path segments and cleans the result.
func Join(elem ...string) string {
	return Clean(path.Join(elem...))
}

// Library returns the library name of a path (its first segment).
func Library(p string) string {
	p = strings.TrimPrefix(Clean(p), "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return p
}

// Split returns the parent folder and leaf name of p.
func Split(p string) (dir, name string) {
	p = Clean(p)
	dir, name = path.Split(p)
	return Clean(dir), name
}

// Segments returns the non-empty segments of p.
func Segments(p string) []string {
	p = strings.Trim(Clean(p), "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

type actorKey struct{}

// WithActor attaches the name of the acting user to ctx; stores stamp it as the editor.
func WithActor(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, actorKey{}, name)
}

// Actor returns the acting user carried by ctx, or "system".
func Actor(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey{}).(string); ok && v != "" {
		return v
	}
	return "system"
}
