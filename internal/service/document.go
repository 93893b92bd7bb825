package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"projdocs/internal/cache"
	"projdocs/internal/logging"
	"projdocs/internal/metrics"
	"projdocs/internal/model"
	"projdocs/internal/provision"
	"projdocs/internal/retry"
	"projdocs/internal/store"
)

// DefaultChunkThreshold is the largest file sent in a single upload call.
const DefaultChunkThreshold int64 = 10 << 20

// DefaultCacheTTL is how long a project listing is served from memory.
const DefaultCacheTTL = 30 * time.Second

var tracer = otel.Tracer("projdocs/service")

// ProgressFunc receives the completed fraction of an upload, in [0,1].
// It runs on the uploading goroutine and must return quickly.
type ProgressFunc func(fraction float64)

// UploadFile is the content handed to UploadDocument. Size must be exact.
type UploadFile struct {
	Name    string
	Size    int64
	Content io.Reader
}

// DocumentService is the project-scoped view over the document library.
type DocumentService interface {
	// ProjectFolder returns the folder path that holds a project's documents.
	ProjectFolder(projectID string) string

	// EnsureProjectFolder creates the project folder if needed and returns its path.
	// It reaches the store at most once per project for the service's lifetime.
	EnsureProjectFolder(ctx context.Context, projectID string) (string, error)

	// ListDocuments returns the project's documents, served from cache while fresh.
	ListDocuments(ctx context.Context, projectID string) ([]model.Document, error)

	// ListFolderContents lists a folder's immediate subfolders, then its files. Never cached.
	ListFolderContents(ctx context.Context, folderPath string) ([]model.Document, error)

	// UploadDocument stores a file in the project folder and stamps its metadata.
	// Files above the chunk threshold are streamed in chunks and report incremental progress.
	UploadDocument(ctx context.Context, projectID string, file UploadFile, meta model.DocumentMetadata, progress ProgressFunc) (*model.Document, error)

	// CreateFolder creates a library-rooted folder path, including missing parents.
	CreateFolder(ctx context.Context, folderPath string) (*model.FolderInfo, error)

	// DeleteDocument removes a document's record and file.
	DeleteDocument(ctx context.Context, id int) error

	CheckoutDocument(ctx context.Context, id int) error
	CheckinDocument(ctx context.Context, id int, comment string) error
	GetDocumentVersions(ctx context.Context, id int) ([]store.FileVersion, error)

	// InvalidateProject drops the cached listing of a project.
	InvalidateProject(projectID string)
}

// Options tunes a DocumentService. Zero values take the documented defaults.
type Options struct {
	Library        string
	Fields         []provision.FieldSpec
	CacheTTL       time.Duration
	ChunkThreshold int64
	Retry          retry.Policy
	Clock          func() time.Time
	Logger         *zap.Logger
	Metrics        *metrics.Repository
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store     store.Store
	prov      *provision.Provisioner
	library   string
	fields    []provision.FieldSpec
	threshold int64
	policy    retry.Policy
	cache     *cache.TTL[[]model.Document]
	log       *zap.Logger
	metrics   *metrics.Repository

	mu      sync.Mutex
	folders map[string]bool
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(st store.Store, prov *provision.Provisioner, opts Options) DocumentService {
	if opts.Library == "" {
		opts.Library = "ProjectDocuments"
	}
	if opts.Fields == nil {
		opts.Fields = provision.DefaultFieldSets().Documents
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.ChunkThreshold <= 0 {
		opts.ChunkThreshold = DefaultChunkThreshold
	}
	if opts.Retry.Attempts == 0 {
		opts.Retry = retry.Default()
	}
	return &documentService{
		store:     st,
		prov:      prov,
		library:   opts.Library,
		fields:    opts.Fields,
		threshold: opts.ChunkThreshold,
		policy:    opts.Retry,
		cache:     cache.New[[]model.Document](opts.CacheTTL, opts.Clock),
		log:       logging.OrNop(opts.Logger).Named("repository"),
		metrics:   opts.Metrics,
		folders:   make(map[string]bool),
	}
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *documentService) notifyRetry(op string) retry.NotifyFunc {
	return func(attempt int, err error, wait time.Duration) {
		s.metrics.StoreRetry(op)
		s.log.Warn("store_call_retry",
			zap.String("event", op),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
	}
}

func (s *documentService) ProjectFolder(projectID string) string {
	return store.Join(s.library, projectID)
}

func validProjectID(projectID string) error {
	if strings.TrimSpace(projectID) == "" {
		return ErrProjectRequired
	}
	if strings.ContainsAny(projectID, "/\\") {
		return fmt.Errorf("%w: project id %q", ErrInvalidArgument, projectID)
	}
	return nil
}

func (s *documentService) ensureLibrary(ctx context.Context) error {
	return s.prov.EnsureLibrary(ctx, s.library, s.fields)
}

func (s *documentService) EnsureProjectFolder(ctx context.Context, projectID string) (folder string, err error) {
	if err := validProjectID(projectID); err != nil {
		return "", err
	}
	folder = s.ProjectFolder(projectID)

	s.mu.Lock()
	done := s.folders[projectID]
	s.mu.Unlock()
	if done {
		return folder, nil
	}

	ctx, span := startSpan(ctx, "DocumentService.EnsureProjectFolder", attribute.String("project.id", projectID))
	defer func() { endSpan(span, err) }()

	if err := s.ensureLibrary(ctx); err != nil {
		return "", err
	}

	err = retry.Run(ctx, s.policy, func(ctx context.Context) error {
		exists, err := s.store.FolderExists(ctx, folder)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		_, err = s.store.CreateFolder(ctx, store.Join(s.library), projectID)
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil
		}
		return err
	}, s.notifyRetry("ensure_project_folder"))
	if err != nil {
		return "", &FolderProvisioningError{ProjectID: projectID, Path: folder, Err: err}
	}

	s.mu.Lock()
	s.folders[projectID] = true
	s.mu.Unlock()

	s.log.Info("project_folder_ensured",
		zap.String("event", "ensure_project_folder"),
		zap.String("status", "success"),
		zap.String("project_id", projectID),
		zap.String("path", folder),
	)
	return folder, nil
}

// documentSelect lists the columns projected into a Document.
var documentSelect = []string{
	provision.FieldTitle, provision.FieldFileLeafRef, provision.FieldProjectID,
	provision.FieldDocumentType, provision.FieldStatus,
	provision.FieldLevel1Code, provision.FieldLevel1Title,
	provision.FieldLevel2Code, provision.FieldLevel2Title,
	provision.FieldLevel3Code, provision.FieldLevel3Title,
}

func (s *documentService) ListDocuments(ctx context.Context, projectID string) (docs []model.Document, err error) {
	if err := validProjectID(projectID); err != nil {
		return nil, err
	}
	ctx, span := startSpan(ctx, "DocumentService.ListDocuments", attribute.String("project.id", projectID))
	defer func() { endSpan(span, err) }()

	docs, hit, err := s.cache.GetOrLoad(ctx, projectID, func(ctx context.Context) ([]model.Document, error) {
		return s.loadDocuments(ctx, projectID)
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Bool("cache.hit", hit))
	if hit {
		s.metrics.CacheHit()
	} else {
		s.metrics.CacheMiss()
	}
	return slices.Clone(docs), nil
}

func (s *documentService) loadDocuments(ctx context.Context, projectID string) ([]model.Document, error) {
	if err := s.ensureLibrary(ctx); err != nil {
		return nil, err
	}
	if _, err := s.EnsureProjectFolder(ctx, projectID); err != nil {
		return nil, err
	}

	q := store.Query{
		Filter: store.Eq(provision.FieldProjectID, projectID),
		Select: documentSelect,
		Expand: []string{"Editor"},
	}
	records, err := retry.Do(ctx, s.policy, func(ctx context.Context) ([]store.Record, error) {
		return s.store.Query(ctx, s.library, q)
	}, s.notifyRetry("list_documents"))
	if err != nil {
		return nil, &ListDocumentsError{ProjectID: projectID, Err: err}
	}

	docs := make([]model.Document, 0, len(records))
	for _, r := range records {
		docs = append(docs, toDocument(r))
	}
	return docs, nil
}

func (s *documentService) ListFolderContents(ctx context.Context, folderPath string) (docs []model.Document, err error) {
	if strings.TrimSpace(folderPath) == "" {
		return nil, ErrPathRequired
	}
	folderPath = store.Clean(folderPath)
	ctx, span := startSpan(ctx, "DocumentService.ListFolderContents", attribute.String("folder.path", folderPath))
	defer func() { endSpan(span, err) }()

	folders, err := s.store.ListFolders(ctx, folderPath)
	if err != nil {
		return nil, &RepositoryError{Op: "list folders", Target: folderPath, Err: err}
	}
	files, err := s.store.ListFiles(ctx, folderPath)
	if err != nil {
		return nil, &RepositoryError{Op: "list files", Target: folderPath, Err: err}
	}

	docs = make([]model.Document, 0, len(folders)+len(files))
	for _, f := range folders {
		docs = append(docs, model.Document{
			Title:    f.Name,
			Name:     f.Name,
			Path:     f.Path,
			Modified: f.Modified,
			IsFolder: true,
		})
	}
	for _, f := range files {
		item, err := s.store.GetItemForFile(ctx, f.Path)
		if err != nil {
			s.log.Warn("file_item_unavailable",
				zap.String("event", "list_folder_contents"),
				zap.String("path", f.Path),
				zap.Error(err),
			)
			docs = append(docs, model.Document{
				Title:    titleFromName(f.Name),
				Name:     f.Name,
				Path:     f.Path,
				Modified: f.Modified,
			})
			continue
		}
		if item.FileRef == "" {
			item.FileRef = f.Path
		}
		docs = append(docs, toDocument(item))
	}
	return docs, nil
}

func (s *documentService) UploadDocument(ctx context.Context, projectID string, file UploadFile, meta model.DocumentMetadata, progress ProgressFunc) (doc *model.Document, err error) {
	if err := validProjectID(projectID); err != nil {
		return nil, err
	}
	if file.Content == nil {
		return nil, ErrReaderNil
	}
	if file.Name == "" || strings.ContainsAny(file.Name, "/\\") {
		return nil, fmt.Errorf("%w: file name %q", ErrInvalidArgument, file.Name)
	}
	if file.Size < 0 {
		return nil, fmt.Errorf("%w: size %d for %q", ErrInvalidArgument, file.Size, file.Name)
	}
	if progress == nil {
		progress = func(float64) {}
	}

	ctx, span := startSpan(ctx, "DocumentService.UploadDocument",
		attribute.String("project.id", projectID),
		attribute.String("file.name", file.Name),
		attribute.Int64("file.size", file.Size),
	)
	defer func() { endSpan(span, err) }()

	fail := func(stage string, err error) (*model.Document, error) {
		s.log.Error("upload_failed",
			zap.String("event", "upload_document"),
			zap.String("status", "error"),
			zap.String("project_id", projectID),
			zap.String("file", file.Name),
			zap.String("stage", stage),
			zap.Error(err),
		)
		return nil, &UploadError{FileName: file.Name, Stage: stage, Err: err}
	}

	folder, err := s.EnsureProjectFolder(ctx, projectID)
	if err != nil {
		return fail("ensure folder", err)
	}
	if sub := strings.Trim(meta.SubFolder, "/"); sub != "" {
		folder = store.Join(folder, sub)
		if _, err := s.ensurePath(ctx, folder); err != nil {
			return fail("ensure sub folder", err)
		}
	}

	start := time.Now()
	ref, strategy, err := uploadContent(ctx, s.store, folder, file, s.threshold, progress)
	if err != nil {
		return fail(strategy+" upload", err)
	}

	item, err := s.store.GetItemForFile(ctx, ref)
	if err != nil {
		return fail("read item", err)
	}
	fields := store.Fields{
		provision.FieldTitle:        titleFromName(file.Name),
		provision.FieldProjectID:    projectID,
		provision.FieldDocumentType: meta.DocumentType,
		provision.FieldStatus:       meta.Status,
	}
	// Every upload overwrites the classification; none clears it.
	var class model.Classification
	if meta.Classification != nil {
		class = *meta.Classification
	}
	for k, v := range classificationFields(class) {
		fields[k] = v
	}
	if err := s.store.Update(ctx, s.library, item.ID, fields); err != nil {
		return fail("update metadata", err)
	}
	rec, err := s.store.Get(ctx, s.library, item.ID)
	if err != nil {
		return fail("read item", err)
	}
	if rec.FileRef == "" {
		rec.FileRef = ref
	}
	s.cache.Invalidate(projectID)
	s.metrics.Upload(strategy, file.Size)

	s.log.Info("document_uploaded",
		zap.String("event", "upload_document"),
		zap.String("status", "success"),
		zap.String("project_id", projectID),
		zap.String("path", ref),
		zap.String("strategy", strategy),
		zap.Int64("size", file.Size),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	out := toDocument(rec)
	return &out, nil
}

// uploadContent sends file to folder in one call when it fits under threshold,
// otherwise in chunks. It returns the file reference and the strategy used.
func uploadContent(ctx context.Context, st store.FileStore, folder string, file UploadFile, threshold int64, progress ProgressFunc) (string, string, error) {
	if file.Size <= threshold {
		progress(0)
		ref, err := st.UploadSmall(ctx, folder, file.Name, file.Content, file.Size, true)
		if err != nil {
			return "", "single", err
		}
		progress(1)
		return ref, "single", nil
	}
	total := float64(file.Size)
	ref, err := st.UploadChunked(ctx, folder, file.Name, file.Content, file.Size, func(sent int64) {
		progress(min(1, float64(sent)/total))
	})
	if err != nil {
		return "", "chunked", err
	}
	return ref, "chunked", nil
}

// ensurePath creates every missing folder of a library-rooted path from the root down.
// A segment that already exists counts as created.
func (s *documentService) ensurePath(ctx context.Context, folderPath string) (store.FolderEntry, error) {
	return ensurePath(ctx, s.store, s.log, folderPath)
}

func ensurePath(ctx context.Context, st store.FolderStore, log *zap.Logger, folderPath string) (store.FolderEntry, error) {
	segs := store.Segments(folderPath)
	if len(segs) < 2 {
		return store.FolderEntry{}, fmt.Errorf("%w: %q is not below a library", store.ErrInvalidPath, folderPath)
	}
	var entry store.FolderEntry
	parent := store.Join(segs[0])
	for _, seg := range segs[1:] {
		created, err := st.CreateFolder(ctx, parent, seg)
		switch {
		case err == nil:
			entry = created
		case errors.Is(err, store.ErrAlreadyExists):
			log.Debug("folder_exists", zap.String("event", "ensure_path"), zap.String("path", store.Join(parent, seg)))
			entry = store.FolderEntry{Name: seg, Path: store.Join(parent, seg)}
		default:
			return store.FolderEntry{}, fmt.Errorf("create folder %s: %w", store.Join(parent, seg), err)
		}
		parent = store.Join(parent, seg)
	}
	return entry, nil
}

func (s *documentService) CreateFolder(ctx context.Context, folderPath string) (info *model.FolderInfo, err error) {
	if strings.TrimSpace(folderPath) == "" {
		return nil, ErrPathRequired
	}
	folderPath = store.Clean(folderPath)
	ctx, span := startSpan(ctx, "DocumentService.CreateFolder", attribute.String("folder.path", folderPath))
	defer func() { endSpan(span, err) }()

	if store.Library(folderPath) == s.library {
		if err := s.ensureLibrary(ctx); err != nil {
			return nil, err
		}
	}
	entry, err := s.ensurePath(ctx, folderPath)
	if err != nil {
		return nil, &RepositoryError{Op: "create folder", Target: folderPath, Err: err}
	}
	if entry.Created.IsZero() {
		// The folder already existed; read its timestamps back.
		dir, _ := store.Split(folderPath)
		if siblings, err := s.store.ListFolders(ctx, dir); err == nil {
			for _, f := range siblings {
				if f.Path == entry.Path {
					entry = f
					break
				}
			}
		}
	}
	return &model.FolderInfo{
		Name:     entry.Name,
		Path:     entry.Path,
		Created:  entry.Created,
		Modified: entry.Modified,
	}, nil
}

func (s *documentService) record(ctx context.Context, op string, id int) (store.Record, error) {
	if id <= 0 {
		return store.Record{}, ErrIDRequired
	}
	rec, err := s.store.Get(ctx, s.library, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Record{}, ErrNotFound
		}
		return store.Record{}, &RepositoryError{Op: op, Target: fmt.Sprintf("item %d", id), Err: err}
	}
	return rec, nil
}

func (s *documentService) fileRef(ctx context.Context, op string, id int) (string, error) {
	rec, err := s.record(ctx, op, id)
	if err != nil {
		return "", err
	}
	if rec.FileRef == "" {
		return "", &RepositoryError{Op: op, Target: fmt.Sprintf("item %d", id), Err: errors.New("item has no file")}
	}
	return rec.FileRef, nil
}

func (s *documentService) DeleteDocument(ctx context.Context, id int) (err error) {
	ctx, span := startSpan(ctx, "DocumentService.DeleteDocument", attribute.Int("document.id", id))
	defer func() { endSpan(span, err) }()

	rec, err := s.record(ctx, "delete", id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, s.library, id); err != nil {
		return &RepositoryError{Op: "delete", Target: fmt.Sprintf("item %d", id), Err: err}
	}
	if project := rec.Fields.String(provision.FieldProjectID); project != "" {
		s.cache.Invalidate(project)
	} else {
		s.cache.InvalidateAll()
	}
	s.log.Info("document_deleted",
		zap.String("event", "delete_document"),
		zap.String("status", "success"),
		zap.Int("id", id),
		zap.String("path", rec.FileRef),
	)
	return nil
}

func (s *documentService) CheckoutDocument(ctx context.Context, id int) (err error) {
	ctx, span := startSpan(ctx, "DocumentService.CheckoutDocument", attribute.Int("document.id", id))
	defer func() { endSpan(span, err) }()

	ref, err := s.fileRef(ctx, "checkout", id)
	if err != nil {
		return err
	}
	if err := s.store.Checkout(ctx, ref); err != nil {
		return &RepositoryError{Op: "checkout", Target: ref, Err: err}
	}
	return nil
}

func (s *documentService) CheckinDocument(ctx context.Context, id int, comment string) (err error) {
	ctx, span := startSpan(ctx, "DocumentService.CheckinDocument", attribute.Int("document.id", id))
	defer func() { endSpan(span, err) }()

	ref, err := s.fileRef(ctx, "checkin", id)
	if err != nil {
		return err
	}
	if err := s.store.Checkin(ctx, ref, comment); err != nil {
		return &RepositoryError{Op: "checkin", Target: ref, Err: err}
	}
	return nil
}

func (s *documentService) GetDocumentVersions(ctx context.Context, id int) (versions []store.FileVersion, err error) {
	ctx, span := startSpan(ctx, "DocumentService.GetDocumentVersions", attribute.Int("document.id", id))
	defer func() { endSpan(span, err) }()

	ref, err := s.fileRef(ctx, "list versions", id)
	if err != nil {
		return nil, err
	}
	versions, err = s.store.ListVersions(ctx, ref)
	if err != nil {
		return nil, &RepositoryError{Op: "list versions", Target: ref, Err: err}
	}
	return versions, nil
}

func (s *documentService) InvalidateProject(projectID string) {
	s.cache.Invalidate(projectID)
}

func titleFromName(name string) string {
	return strings.TrimSuffix(name, path.Ext(name))
}

func toDocument(r store.Record) model.Document {
	name := r.Fields.String(provision.FieldFileLeafRef)
	if name == "" && r.FileRef != "" {
		_, name = store.Split(r.FileRef)
	}
	title := r.Fields.String(provision.FieldTitle)
	if title == "" {
		title = titleFromName(name)
	}
	doc := model.Document{
		ID:           r.ID,
		Title:        title,
		Name:         name,
		Path:         r.FileRef,
		ProjectID:    r.Fields.String(provision.FieldProjectID),
		DocumentType: r.Fields.String(provision.FieldDocumentType),
		Status:       r.Fields.String(provision.FieldStatus),
		Modified:     r.Modified,
	}
	if r.Editor != nil {
		doc.ModifiedBy = r.Editor.Title
	}
	if cl := classificationFromFields(r.Fields); !cl.IsZero() {
		doc.Classification = &cl
	}
	return doc
}

func classificationFromFields(f store.Fields) model.Classification {
	return model.Classification{
		Group:    model.ClassificationLevel{Code: f.String(provision.FieldLevel1Code), Title: f.String(provision.FieldLevel1Title)},
		Subgroup: model.ClassificationLevel{Code: f.String(provision.FieldLevel2Code), Title: f.String(provision.FieldLevel2Title)},
		Section:  model.ClassificationLevel{Code: f.String(provision.FieldLevel3Code), Title: f.String(provision.FieldLevel3Title)},
	}
}

func classificationFields(c model.Classification) store.Fields {
	return store.Fields{
		provision.FieldLevel1Code:  c.Group.Code,
		provision.FieldLevel1Title: c.Group.Title,
		provision.FieldLevel2Code:  c.Subgroup.Code,
		provision.FieldLevel2Title: c.Subgroup.Title,
		provision.FieldLevel3Code:  c.Section.Code,
		provision.FieldLevel3Title: c.Section.Title,
	}
}
