// Package memory is an in-process implementation of store.Store.
// It backs local development and the repository tests.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"projdocs/internal/store"
)

// DefaultChunkSize is the chunk size used by UploadChunked when none is configured.
const DefaultChunkSize int64 = 10 << 20

type record struct {
	id       int
	fields   store.Fields
	fileRef  string
	modified time.Time
	editor   string
}

type library struct {
	fields  []store.Field
	records map[int]*record
	nextID  int
}

type folder struct {
	created  time.Time
	modified time.Time
}

type file struct {
	content    []byte
	modified   time.Time
	recordID   int
	checkedOut bool
	versions   []store.FileVersion
}

type fault struct {
	match func(arg string) bool
	err   error
}

// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	mu        sync.Mutex
	now       func() time.Time
	chunkSize int64
	libraries map[string]*library
	folders   map[string]*folder
	files     map[string]*file
	users     map[string]int
	calls     map[string]int
	faults    map[string][]fault
}

var _ store.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithChunkSize sets the chunk size used by UploadChunked.
func WithChunkSize(n int64) Option {
	return func(s *Store) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// New returns an empty store. The root folder always exists.
func New(opts ...Option) *Store {
	s := &Store{
		now:       time.Now,
		chunkSize: DefaultChunkSize,
		libraries: make(map[string]*library),
		folders:   make(map[string]*folder),
		files:     make(map[string]*file),
		users:     make(map[string]int),
		calls:     make(map[string]int),
		faults:    make(map[string][]fault),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.folders["/"] = &folder{created: s.now(), modified: s.now()}
	return s
}

// FailWhen makes every call of op whose primary argument satisfies match fail with err.
// A nil match applies to every call. Faults stay installed until ClearFaults.
func (s *Store) FailWhen(op string, match func(arg string) bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = append(s.faults[op], fault{match: match, err: err})
}

// FailTimes makes the next n calls of op fail with err.
func (s *Store) FailTimes(op string, n int, err error) {
	remaining := n
	s.FailWhen(op, func(string) bool {
		if remaining <= 0 {
			return false
		}
		remaining--
		return true
	}, err)
}

// ClearFaults removes every installed fault.
func (s *Store) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = make(map[string][]fault)
}

// Calls returns how many times op has been invoked.
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// enter records the call and returns an injected fault, if any. Callers hold s.mu.
func (s *Store) enter(ctx context.Context, op, arg string) error {
	s.calls[op]++
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, f := range s.faults[op] {
		if f.match == nil || f.match(arg) {
			return f.err
		}
	}
	return nil
}

func (s *Store) userID(name string) int {
	id, ok := s.users[name]
	if !ok {
		id = len(s.users) + 1
		s.users[name] = id
	}
	return id
}

func (s *Store) lib(name string) (*library, error) {
	l, ok := s.libraries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrLibraryNotFound, name)
	}
	return l, nil
}

func (s *Store) toRecord(r *record, q store.Query) store.Record {
	out := store.Record{
		ID:       r.id,
		Fields:   q.Project(r.fields),
		FileRef:  r.fileRef,
		Modified: r.modified,
	}
	if q.Expands("Editor") {
		out.Editor = &store.UserRef{ID: s.userID(r.editor), Title: r.editor}
	}
	return out
}

func (s *Store) Add(ctx context.Context, libName string, fields store.Fields) (store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "Add", libName); err != nil {
		return store.Record{}, err
	}
	l, err := s.lib(libName)
	if err != nil {
		return store.Record{}, err
	}
	r := s.insert(l, fields, "", store.Actor(ctx))
	return s.toRecord(r, store.Query{Expand: []string{"Editor"}}), nil
}

func (s *Store) insert(l *library, fields store.Fields, fileRef, actor string) *record {
	l.nextID++
	r := &record{
		id:       l.nextID,
		fields:   store.Fields{},
		fileRef:  fileRef,
		modified: s.now(),
		editor:   actor,
	}
	for k, v := range fields {
		r.fields[k] = v
	}
	l.records[r.id] = r
	return r
}

func (s *Store) Update(ctx context.Context, libName string, id int, fields store.Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "Update", libName); err != nil {
		return err
	}
	l, err := s.lib(libName)
	if err != nil {
		return err
	}
	r, ok := l.records[id]
	if !ok {
		return fmt.Errorf("%w: %s item %d", store.ErrNotFound, libName, id)
	}
	for k, v := range fields {
		r.fields[k] = v
	}
	r.modified = s.now()
	r.editor = store.Actor(ctx)
	return nil
}

func (s *Store) Delete(ctx context.Context, libName string, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "Delete", libName); err != nil {
		return err
	}
	l, err := s.lib(libName)
	if err != nil {
		return err
	}
	r, ok := l.records[id]
	if !ok {
		return fmt.Errorf("%w: %s item %d", store.ErrNotFound, libName, id)
	}
	delete(l.records, id)
	if r.fileRef != "" {
		delete(s.files, r.fileRef)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, libName string, id int) (store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "Get", libName); err != nil {
		return store.Record{}, err
	}
	l, err := s.lib(libName)
	if err != nil {
		return store.Record{}, err
	}
	r, ok := l.records[id]
	if !ok {
		return store.Record{}, fmt.Errorf("%w: %s item %d", store.ErrNotFound, libName, id)
	}
	return s.toRecord(r, store.Query{Expand: []string{"Editor"}}), nil
}

func (s *Store) Query(ctx context.Context, libName string, q store.Query) ([]store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "Query", libName); err != nil {
		return nil, err
	}
	l, err := s.lib(libName)
	if err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(l.records))
	for id, r := range l.records {
		if q.Filter.Matches(store.Record{Fields: r.fields}) {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	out := make([]store.Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.toRecord(l.records[id], q))
	}
	return out, nil
}

func (s *Store) FolderExists(ctx context.Context, p string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p = store.Clean(p)
	if err := s.enter(ctx, "FolderExists", p); err != nil {
		return false, err
	}
	_, ok := s.folders[p]
	return ok, nil
}

func (s *Store) CreateFolder(ctx context.Context, parentPath, name string) (store.FolderEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	parentPath = store.Clean(parentPath)
	full := store.Join(parentPath, name)
	if err := s.enter(ctx, "CreateFolder", full); err != nil {
		return store.FolderEntry{}, err
	}
	if name == "" || strings.Contains(name, "/") {
		return store.FolderEntry{}, fmt.Errorf("%w: folder name %q", store.ErrInvalidPath, name)
	}
	parent, ok := s.folders[parentPath]
	if !ok {
		return store.FolderEntry{}, fmt.Errorf("%w: folder %s", store.ErrNotFound, parentPath)
	}
	if _, exists := s.folders[full]; exists {
		return store.FolderEntry{}, fmt.Errorf("%w: folder %s", store.ErrAlreadyExists, full)
	}
	now := s.now()
	s.folders[full] = &folder{created: now, modified: now}
	parent.modified = now
	return store.FolderEntry{Name: name, Path: full, Created: now, Modified: now}, nil
}

func (s *Store) ListFolders(ctx context.Context, p string) ([]store.FolderEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p = store.Clean(p)
	if err := s.enter(ctx, "ListFolders", p); err != nil {
		return nil, err
	}
	if _, ok := s.folders[p]; !ok {
		return nil, fmt.Errorf("%w: folder %s", store.ErrNotFound, p)
	}
	out := make([]store.FolderEntry, 0)
	for fp, f := range s.folders {
		if fp == p {
			continue
		}
		if dir, name := store.Split(fp); dir == p {
			out = append(out, store.FolderEntry{
				Name:      name,
				Path:      fp,
				Created:   f.created,
				Modified:  f.modified,
				ItemCount: s.childCount(fp),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) childCount(p string) int {
	n := 0
	for fp := range s.folders {
		if fp != p {
			if dir, _ := store.Split(fp); dir == p {
				n++
			}
		}
	}
	for fp := range s.files {
		if dir, _ := store.Split(fp); dir == p {
			n++
		}
	}
	return n
}

func (s *Store) ListFiles(ctx context.Context, p string) ([]store.FileEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p = store.Clean(p)
	if err := s.enter(ctx, "ListFiles", p); err != nil {
		return nil, err
	}
	if _, ok := s.folders[p]; !ok {
		return nil, fmt.Errorf("%w: folder %s", store.ErrNotFound, p)
	}
	out := make([]store.FileEntry, 0)
	for fp, f := range s.files {
		if dir, name := store.Split(fp); dir == p {
			out = append(out, store.FileEntry{Name: name, Path: fp, Size: int64(len(f.content)), Modified: f.modified})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) UploadSmall(ctx context.Context, folderPath, fileName string, r io.Reader, size int64, overwrite bool) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ref := store.Join(folderPath, fileName)
	if err := s.enter(ctx, "UploadSmall", ref); err != nil {
		return "", err
	}
	return ref, s.put(ctx, ref, data, overwrite)
}

func (s *Store) UploadChunked(ctx context.Context, folderPath, fileName string, r io.Reader, size int64, onChunk store.ChunkFunc) (string, error) {
	ref := store.Join(folderPath, fileName)
	s.mu.Lock()
	err := s.enter(ctx, "UploadChunked", ref)
	chunk := s.chunkSize
	s.mu.Unlock()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	var sent int64
	for {
		n, err := io.CopyN(&buf, r, chunk)
		sent += n
		if n > 0 && onChunk != nil {
			onChunk(sent)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read chunk at offset %d: %w", sent, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return ref, s.put(ctx, ref, buf.Bytes(), true)
}

// put stores content at ref and keeps the file's list record in step. Callers hold s.mu.
func (s *Store) put(ctx context.Context, ref string, data []byte, overwrite bool) error {
	dir, name := store.Split(ref)
	if _, ok := s.folders[dir]; !ok {
		return fmt.Errorf("%w: folder %s", store.ErrNotFound, dir)
	}
	l, err := s.lib(store.Library(ref))
	if err != nil {
		return err
	}
	now := s.now()
	actor := store.Actor(ctx)
	f, exists := s.files[ref]
	if exists {
		if !overwrite {
			return fmt.Errorf("%w: file %s", store.ErrAlreadyExists, ref)
		}
		if f.checkedOut {
			return fmt.Errorf("%w: %s", store.ErrCheckedOut, ref)
		}
	} else {
		f = &file{}
		s.files[ref] = f
	}
	f.content = data
	f.modified = now
	f.versions = append(f.versions, store.FileVersion{
		Label:     fmt.Sprintf("%d.0", len(f.versions)+1),
		Size:      int64(len(data)),
		Created:   now,
		CreatedBy: actor,
	})

	if r, ok := l.records[f.recordID]; ok && exists {
		r.modified = now
		r.editor = actor
		return nil
	}
	r := s.insert(l, store.Fields{"FileLeafRef": name}, ref, actor)
	f.recordID = r.id
	return nil
}

func (s *Store) CopyFile(ctx context.Context, sourceRef, destPath string, overwrite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sourceRef, destPath = store.Clean(sourceRef), store.Clean(destPath)
	if err := s.enter(ctx, "CopyFile", sourceRef); err != nil {
		return err
	}
	src, ok := s.files[sourceRef]
	if !ok {
		return fmt.Errorf("%w: file %s", store.ErrNotFound, sourceRef)
	}
	content := append([]byte(nil), src.content...)
	if err := s.put(ctx, destPath, content, overwrite); err != nil {
		return err
	}
	// The copy carries the source item's metadata.
	srcLib, err := s.lib(store.Library(sourceRef))
	if err != nil {
		return err
	}
	srcRec, ok := srcLib.records[src.recordID]
	if !ok {
		return nil
	}
	dstLib, _ := s.lib(store.Library(destPath))
	dst := dstLib.records[s.files[destPath].recordID]
	for k, v := range srcRec.fields {
		if k == "FileLeafRef" {
			continue
		}
		dst.fields[k] = v
	}
	return nil
}

func (s *Store) GetItemForFile(ctx context.Context, fileRef string) (store.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fileRef = store.Clean(fileRef)
	if err := s.enter(ctx, "GetItemForFile", fileRef); err != nil {
		return store.Record{}, err
	}
	f, ok := s.files[fileRef]
	if !ok {
		return store.Record{}, fmt.Errorf("%w: file %s", store.ErrNotFound, fileRef)
	}
	l, err := s.lib(store.Library(fileRef))
	if err != nil {
		return store.Record{}, err
	}
	r, ok := l.records[f.recordID]
	if !ok {
		return store.Record{}, fmt.Errorf("%w: item for %s", store.ErrNotFound, fileRef)
	}
	return s.toRecord(r, store.Query{Expand: []string{"Editor"}}), nil
}

func (s *Store) Checkout(ctx context.Context, fileRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fileRef = store.Clean(fileRef)
	if err := s.enter(ctx, "Checkout", fileRef); err != nil {
		return err
	}
	f, ok := s.files[fileRef]
	if !ok {
		return fmt.Errorf("%w: file %s", store.ErrNotFound, fileRef)
	}
	if f.checkedOut {
		return fmt.Errorf("%w: %s", store.ErrCheckedOut, fileRef)
	}
	f.checkedOut = true
	return nil
}

func (s *Store) Checkin(ctx context.Context, fileRef, comment string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fileRef = store.Clean(fileRef)
	if err := s.enter(ctx, "Checkin", fileRef); err != nil {
		return err
	}
	f, ok := s.files[fileRef]
	if !ok {
		return fmt.Errorf("%w: file %s", store.ErrNotFound, fileRef)
	}
	if !f.checkedOut {
		return fmt.Errorf("%w: %s", store.ErrNotCheckedOut, fileRef)
	}
	f.checkedOut = false
	f.versions = append(f.versions, store.FileVersion{
		Label:     fmt.Sprintf("%d.0", len(f.versions)+1),
		Size:      int64(len(f.content)),
		Created:   s.now(),
		CreatedBy: store.Actor(ctx),
		Comment:   comment,
	})
	return nil
}

func (s *Store) ListVersions(ctx context.Context, fileRef string) ([]store.FileVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fileRef = store.Clean(fileRef)
	if err := s.enter(ctx, "ListVersions", fileRef); err != nil {
		return nil, err
	}
	f, ok := s.files[fileRef]
	if !ok {
		return nil, fmt.Errorf("%w: file %s", store.ErrNotFound, fileRef)
	}
	out := make([]store.FileVersion, len(f.versions))
	copy(out, f.versions)
	if n := len(out); n > 0 {
		out[n-1].Current = true
	}
	return out, nil
}

// Content returns a copy of the stored bytes of a file.
func (s *Store) Content(fileRef string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[store.Clean(fileRef)]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), f.content...), true
}

func (s *Store) LibraryExists(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "LibraryExists", name); err != nil {
		return false, err
	}
	_, ok := s.libraries[name]
	return ok, nil
}

func (s *Store) CreateLibrary(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "CreateLibrary", name); err != nil {
		return err
	}
	if name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("%w: library name %q", store.ErrInvalidPath, name)
	}
	if _, ok := s.libraries[name]; ok {
		return fmt.Errorf("%w: library %s", store.ErrAlreadyExists, name)
	}
	s.libraries[name] = &library{
		fields: []store.Field{
			{Name: "Title", Type: "Text"},
			{Name: "FileLeafRef", Type: "File", Required: true},
		},
		records: make(map[int]*record),
	}
	now := s.now()
	s.folders[store.Join(name)] = &folder{created: now, modified: now}
	return nil
}

func (s *Store) ListFields(ctx context.Context, libName string) ([]store.Field, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "ListFields", libName); err != nil {
		return nil, err
	}
	l, err := s.lib(libName)
	if err != nil {
		return nil, err
	}
	out := make([]store.Field, len(l.fields))
	copy(out, l.fields)
	return out, nil
}

func (s *Store) AddTextField(ctx context.Context, libName, name string, required bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter(ctx, "AddTextField", name); err != nil {
		return err
	}
	l, err := s.lib(libName)
	if err != nil {
		return err
	}
	for _, f := range l.fields {
		if strings.EqualFold(f.Name, name) {
			return fmt.Errorf("%w: %s.%s", store.ErrFieldExists, libName, name)
		}
	}
	l.fields = append(l.fields, store.Field{Name: name, Type: "Text", Required: required})
	return nil
}
