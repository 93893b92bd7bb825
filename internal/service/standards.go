package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"projdocs/internal/classification"
	"projdocs/internal/logging"
	"projdocs/internal/metrics"
	"projdocs/internal/model"
	"projdocs/internal/provision"
	"projdocs/internal/retry"
	"projdocs/internal/store"
)

// Document types stamped on promoted copies.
const (
	DocumentTypeStandard = "Standard"
	DocumentTypeTemplate = "Template"
	promotedStatus       = "New"
	fallbackFolder       = "Standards"
)

// PromotionProgressFunc receives the completed fraction of a batch and every result so far.
type PromotionProgressFunc func(fraction float64, completed []model.PromotionResult)

// StandardsService promotes documents from the shared standards and templates
// libraries into project folders.
type StandardsService interface {
	// ListExistingStandards returns every catalogued standard.
	ListExistingStandards(ctx context.Context) ([]model.Standard, error)

	// GetNextVersion returns the version label for a client's next upload batch.
	GetNextVersion(ctx context.Context, client string) (string, error)

	// UploadNativeFile stores a file in the standards library under client/version.
	UploadNativeFile(ctx context.Context, file UploadFile, version, client, projectNumber string, meta model.StandardMetadata) (*model.Standard, error)

	// CopyExistingStandard copies one standard into the project's classification folder.
	CopyExistingStandard(ctx context.Context, std model.Standard, projectNumber string) (*model.PromotionResult, error)

	// CopyTemplates copies every template carrying code into the project.
	CopyTemplates(ctx context.Context, projectNumber, code string) ([]model.PromotionResult, error)

	// AddStandardsToProjectWithProgress promotes items one at a time, in order, and
	// reports after each. The first failure aborts the batch.
	AddStandardsToProjectWithProgress(ctx context.Context, items []model.PromotionItem, projectNumber string, progress PromotionProgressFunc) ([]model.PromotionResult, error)

	// TargetFolder returns the folder a file classified under code lands in.
	TargetFolder(projectNumber, code string) string
}

type StandardsOptions struct {
	StandardsLibrary string
	TemplatesLibrary string
	Fields           provision.FieldSets
	ChunkThreshold   int64
	Retry            retry.Policy
	Logger           *zap.Logger
	Metrics          *metrics.Repository
}

type standardsService struct {
	store     store.Store
	prov      *provision.Provisioner
	docs      DocumentService
	catalog   *classification.Catalog
	standards string
	templates string
	fields    provision.FieldSets
	threshold int64
	policy    retry.Policy
	log       *zap.Logger
	metrics   *metrics.Repository
}

// NewStandardsService constructs a new StandardsService. Promoted files land in
// the folders of docs, whose cached listings are invalidated after each copy.
func NewStandardsService(st store.Store, prov *provision.Provisioner, docs DocumentService, catalog *classification.Catalog, opts StandardsOptions) StandardsService {
	if opts.StandardsLibrary == "" {
		opts.StandardsLibrary = "Standards"
	}
	if opts.TemplatesLibrary == "" {
		opts.TemplatesLibrary = "Templates"
	}
	if opts.Fields.Standards == nil && opts.Fields.Templates == nil {
		opts.Fields = provision.DefaultFieldSets()
	}
	if opts.ChunkThreshold <= 0 {
		opts.ChunkThreshold = DefaultChunkThreshold
	}
	if opts.Retry.Attempts == 0 {
		opts.Retry = retry.Default()
	}
	if catalog == nil {
		catalog = classification.Empty()
	}
	return &standardsService{
		store:     st,
		prov:      prov,
		docs:      docs,
		catalog:   catalog,
		standards: opts.StandardsLibrary,
		templates: opts.TemplatesLibrary,
		fields:    opts.Fields,
		threshold: opts.ChunkThreshold,
		policy:    opts.Retry,
		log:       logging.OrNop(opts.Logger).Named("promotion"),
		metrics:   opts.Metrics,
	}
}

func (s *standardsService) notifyRetry(op string) retry.NotifyFunc {
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

func (s *standardsService) query(ctx context.Context, library, op string, q store.Query) ([]store.Record, error) {
	records, err := retry.Do(ctx, s.policy, func(ctx context.Context) ([]store.Record, error) {
		return s.store.Query(ctx, library, q)
	}, s.notifyRetry(op))
	if err != nil {
		return nil, &RepositoryError{Op: strings.ReplaceAll(op, "_", " "), Target: library, Err: err}
	}
	return records, nil
}

func (s *standardsService) ListExistingStandards(ctx context.Context) (out []model.Standard, err error) {
	ctx, span := startSpan(ctx, "StandardsService.ListExistingStandards")
	defer func() { endSpan(span, err) }()

	if err := s.prov.EnsureLibrary(ctx, s.standards, s.fields.Standards); err != nil {
		return nil, err
	}
	records, err := s.query(ctx, s.standards, "list_standards", store.Query{})
	if err != nil {
		return nil, err
	}
	out = make([]model.Standard, 0, len(records))
	for _, r := range records {
		out = append(out, toStandard(r))
	}
	return out, nil
}

func (s *standardsService) GetNextVersion(ctx context.Context, client string) (version string, err error) {
	if strings.TrimSpace(client) == "" {
		return "", ErrClientRequired
	}
	ctx, span := startSpan(ctx, "StandardsService.GetNextVersion", attribute.String("standard.client", client))
	defer func() { endSpan(span, err) }()

	if err := s.prov.EnsureLibrary(ctx, s.standards, s.fields.Standards); err != nil {
		return "", err
	}
	records, err := s.query(ctx, s.standards, "list_versions", store.Query{
		Filter: store.Eq(provision.FieldClient, client),
		Select: []string{provision.FieldVersion},
	})
	if err != nil {
		return "", err
	}
	labels := make([]string, 0, len(records))
	for _, r := range records {
		labels = append(labels, r.Fields.String(provision.FieldVersion))
	}
	return NextVersion(labels), nil
}

func validSegment(kind, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidArgument, kind)
	}
	if strings.ContainsAny(v, "/\\") {
		return fmt.Errorf("%w: %s %q", ErrInvalidArgument, kind, v)
	}
	return nil
}

func (s *standardsService) UploadNativeFile(ctx context.Context, file UploadFile, version, client, projectNumber string, meta model.StandardMetadata) (std *model.Standard, err error) {
	if strings.TrimSpace(client) == "" {
		return nil, ErrClientRequired
	}
	for _, v := range [][2]string{{"client", client}, {"version", version}, {"file name", file.Name}} {
		if err := validSegment(v[0], v[1]); err != nil {
			return nil, err
		}
	}
	if file.Content == nil {
		return nil, ErrReaderNil
	}
	if file.Size < 0 {
		return nil, fmt.Errorf("%w: size %d for %q", ErrInvalidArgument, file.Size, file.Name)
	}

	ctx, span := startSpan(ctx, "StandardsService.UploadNativeFile",
		attribute.String("standard.client", client),
		attribute.String("standard.version", version),
		attribute.String("file.name", file.Name),
	)
	defer func() { endSpan(span, err) }()

	fail := func(stage string, err error) (*model.Standard, error) {
		s.log.Error("standard_upload_failed",
			zap.String("event", "upload_standard"),
			zap.String("status", "error"),
			zap.String("client", client),
			zap.String("version", version),
			zap.String("file", file.Name),
			zap.String("stage", stage),
			zap.Error(err),
		)
		return nil, &UploadError{FileName: file.Name, Stage: stage, Err: err}
	}

	if err := s.prov.EnsureLibrary(ctx, s.standards, s.fields.Standards); err != nil {
		return fail("provision", err)
	}
	folder := store.Join(s.standards, client, version)
	if _, err := ensurePath(ctx, s.store, s.log, folder); err != nil {
		return fail("ensure folder", err)
	}
	ref, strategy, err := uploadContent(ctx, s.store, folder, file, s.threshold, func(float64) {})
	if err != nil {
		return fail(strategy+" upload", err)
	}
	item, err := s.store.GetItemForFile(ctx, ref)
	if err != nil {
		return fail("read item", err)
	}
	fields := store.Fields{
		provision.FieldTitle:         titleFromName(file.Name),
		provision.FieldClient:        client,
		provision.FieldVersion:       version,
		provision.FieldUniclassCode:  meta.Code,
		provision.FieldUniclassTitle: meta.Title,
		provision.FieldDescription:   meta.Description,
	}
	if projectNumber != "" {
		fields[provision.FieldProjectNumber] = projectNumber
	}
	if err := s.store.Update(ctx, s.standards, item.ID, fields); err != nil {
		return fail("update metadata", err)
	}
	rec, err := s.store.Get(ctx, s.standards, item.ID)
	if err != nil {
		return fail("read item", err)
	}
	if rec.FileRef == "" {
		rec.FileRef = ref
	}
	s.metrics.Upload(strategy, file.Size)

	s.log.Info("standard_uploaded",
		zap.String("event", "upload_standard"),
		zap.String("status", "success"),
		zap.String("client", client),
		zap.String("version", version),
		zap.String("path", ref),
	)
	out := toStandard(rec)
	return &out, nil
}

func (s *standardsService) TargetFolder(projectNumber, code string) string {
	base := s.docs.ProjectFolder(projectNumber)
	if p, ok := s.catalog.FolderPathFor(code); ok && p != "" {
		return store.Join(base, p)
	}
	return store.Join(base, fallbackFolder)
}

// copyRequest describes one server-side copy into a project.
type copyRequest struct {
	fileName     string
	source       string
	code         string
	codeTitle    string
	client       string
	version      string
	documentType string
}

// copyInto copies one file into the project's folder for its code and re-stamps the copy.
// Copies are not retried.
func (s *standardsService) copyInto(ctx context.Context, projectNumber string, req copyRequest) (model.PromotionResult, error) {
	folder := s.TargetFolder(projectNumber, req.code)
	target := store.Join(folder, req.fileName)
	fail := func(err error) (model.PromotionResult, error) {
		s.metrics.Promotion("error")
		s.log.Error("promotion_failed",
			zap.String("event", "copy_document"),
			zap.String("status", "error"),
			zap.String("source", req.source),
			zap.String("target", target),
			zap.Error(err),
		)
		return model.PromotionResult{}, &CopyError{Index: -1, FileName: req.fileName, Source: req.source, Target: target, Err: err}
	}

	if _, err := s.docs.EnsureProjectFolder(ctx, projectNumber); err != nil {
		return fail(err)
	}
	if _, err := ensurePath(ctx, s.store, s.log, folder); err != nil {
		return fail(err)
	}
	if err := s.store.CopyFile(ctx, req.source, target, true); err != nil {
		return fail(err)
	}
	item, err := s.store.GetItemForFile(ctx, target)
	if err != nil {
		return fail(err)
	}

	fields := store.Fields{
		provision.FieldProjectID:    projectNumber,
		provision.FieldDocumentType: req.documentType,
		provision.FieldStatus:       promotedStatus,
	}
	if req.client != "" {
		fields[provision.FieldClient] = req.client
	}
	if req.version != "" {
		fields[provision.FieldVersion] = req.version
	}
	if req.code != "" {
		fields[provision.FieldUniclassCode] = req.code
		title := req.codeTitle
		if cl, ok := s.catalog.Resolve(req.code); ok {
			for k, v := range classificationFields(cl) {
				fields[k] = v
			}
			if title == "" {
				title = deepestTitle(cl)
			}
		}
		if title != "" {
			fields[provision.FieldUniclassTitle] = title
		}
	}
	if err := s.store.Update(ctx, store.Library(target), item.ID, fields); err != nil {
		return fail(err)
	}
	s.docs.InvalidateProject(projectNumber)
	s.metrics.Promotion("success")

	s.log.Info("document_promoted",
		zap.String("event", "copy_document"),
		zap.String("status", "success"),
		zap.String("project_id", projectNumber),
		zap.String("source", req.source),
		zap.String("target", target),
	)
	return model.PromotionResult{FileName: req.fileName, TargetPath: target}, nil
}

func deepestTitle(c model.Classification) string {
	switch {
	case c.Section.Code != "":
		return c.Section.Title
	case c.Subgroup.Code != "":
		return c.Subgroup.Title
	default:
		return c.Group.Title
	}
}

func (s *standardsService) standardSource(std model.Standard) string {
	if std.FileRef != "" {
		return store.Clean(std.FileRef)
	}
	return store.Join(s.standards, std.Client, std.Version, std.FileName)
}

func (s *standardsService) copyStandard(ctx context.Context, std model.Standard, projectNumber string) (model.PromotionResult, error) {
	if std.FileName == "" && std.FileRef != "" {
		_, std.FileName = store.Split(std.FileRef)
	}
	if err := validSegment("file name", std.FileName); err != nil {
		return model.PromotionResult{}, err
	}
	if std.FileRef == "" {
		for _, v := range [][2]string{{"client", std.Client}, {"version", std.Version}} {
			if err := validSegment(v[0], v[1]); err != nil {
				return model.PromotionResult{}, err
			}
		}
	}
	return s.copyInto(ctx, projectNumber, copyRequest{
		fileName:     std.FileName,
		source:       s.standardSource(std),
		code:         std.Code,
		codeTitle:    std.CodeTitle,
		client:       std.Client,
		version:      std.Version,
		documentType: DocumentTypeStandard,
	})
}

func (s *standardsService) CopyExistingStandard(ctx context.Context, std model.Standard, projectNumber string) (res *model.PromotionResult, err error) {
	if err := validProjectID(projectNumber); err != nil {
		return nil, err
	}
	ctx, span := startSpan(ctx, "StandardsService.CopyExistingStandard",
		attribute.String("project.id", projectNumber),
		attribute.String("file.name", std.FileName),
	)
	defer func() { endSpan(span, err) }()

	out, err := s.copyStandard(ctx, std, projectNumber)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *standardsService) copyTemplates(ctx context.Context, projectNumber, code string) ([]model.PromotionResult, error) {
	if err := s.prov.EnsureLibrary(ctx, s.templates, s.fields.Templates); err != nil {
		return nil, err
	}
	records, err := s.query(ctx, s.templates, "list_templates", store.Query{
		Filter: store.Eq(provision.FieldUniclassCode, code),
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.PromotionResult, 0, len(records))
	for _, r := range records {
		if r.FileRef == "" {
			continue
		}
		_, name := store.Split(r.FileRef)
		res, err := s.copyInto(ctx, projectNumber, copyRequest{
			fileName:     name,
			source:       r.FileRef,
			code:         code,
			codeTitle:    r.Fields.String(provision.FieldUniclassTitle),
			documentType: DocumentTypeTemplate,
		})
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (s *standardsService) CopyTemplates(ctx context.Context, projectNumber, code string) (out []model.PromotionResult, err error) {
	if err := validProjectID(projectNumber); err != nil {
		return nil, err
	}
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: classification code is required", ErrInvalidArgument)
	}
	ctx, span := startSpan(ctx, "StandardsService.CopyTemplates",
		attribute.String("project.id", projectNumber),
		attribute.String("classification.code", code),
	)
	defer func() { endSpan(span, err) }()

	return s.copyTemplates(ctx, projectNumber, code)
}

func (s *standardsService) AddStandardsToProjectWithProgress(ctx context.Context, items []model.PromotionItem, projectNumber string, progress PromotionProgressFunc) (results []model.PromotionResult, err error) {
	if err := validProjectID(projectNumber); err != nil {
		return nil, err
	}
	if progress == nil {
		progress = func(float64, []model.PromotionResult) {}
	}
	ctx, span := startSpan(ctx, "StandardsService.AddStandardsToProjectWithProgress",
		attribute.String("project.id", projectNumber),
		attribute.Int("batch.size", len(items)),
	)
	defer func() { endSpan(span, err) }()

	start := time.Now()
	results = make([]model.PromotionResult, 0, len(items))
	for i, item := range items {
		res, err := s.copyStandard(ctx, model.Standard{
			FileName: item.FileName,
			Client:   item.Client,
			Version:  item.Version,
			Code:     item.Code,
		}, projectNumber)
		if err == nil && item.IncludeTemplates && item.Code != "" {
			_, err = s.copyTemplates(ctx, projectNumber, item.Code)
		}
		if err != nil {
			return results, batchError(i, item, err)
		}
		results = append(results, res)
		progress(float64(i+1)/float64(len(items)), slices.Clone(results))
	}

	s.log.Info("promotion_completed",
		zap.String("event", "add_standards"),
		zap.String("status", "success"),
		zap.String("project_id", projectNumber),
		zap.Int("items", len(results)),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return results, nil
}

// batchError tags err with the position and file name of the failing item. A
// failed template copy keeps the template ref as its source.
func batchError(i int, item model.PromotionItem, err error) error {
	var cerr *CopyError
	if errors.As(err, &cerr) {
		tagged := *cerr
		tagged.Index = i
		tagged.FileName = item.FileName
		return &tagged
	}
	return &CopyError{Index: i, FileName: item.FileName, Err: err}
}

func toStandard(r store.Record) model.Standard {
	name := r.Fields.String(provision.FieldFileLeafRef)
	if name == "" && r.FileRef != "" {
		_, name = store.Split(r.FileRef)
	}
	title := r.Fields.String(provision.FieldTitle)
	if title == "" {
		title = titleFromName(name)
	}
	return model.Standard{
		ID:            r.ID,
		Title:         title,
		FileName:      name,
		Client:        r.Fields.String(provision.FieldClient),
		Version:       r.Fields.String(provision.FieldVersion),
		Code:          r.Fields.String(provision.FieldUniclassCode),
		CodeTitle:     r.Fields.String(provision.FieldUniclassTitle),
		Description:   r.Fields.String(provision.FieldDescription),
		ProjectNumber: r.Fields.String(provision.FieldProjectNumber),
		FileRef:       r.FileRef,
		Modified:      r.Modified,
	}
}
