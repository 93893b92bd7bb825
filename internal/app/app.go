// Package app assembles the document repository from configuration.
package app

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"projdocs/internal/classification"
	"projdocs/internal/config"
	"projdocs/internal/logging"
	"projdocs/internal/metrics"
	"projdocs/internal/provision"
	"projdocs/internal/retry"
	"projdocs/internal/service"
	"projdocs/internal/store/backend"
)

// App holds the wired services and the resources they share.
type App struct {
	Config      *config.AppConfig
	Log         *zap.Logger
	Backend     *backend.Backend
	Registry    *prometheus.Registry
	Metrics     *metrics.Repository
	Fields      provision.FieldSets
	Provisioner *provision.Provisioner
	Documents   service.DocumentService
	Standards   service.StandardsService
	Catalog     *classification.Catalog
}

// RetryPolicy derives the store retry policy from cfg.
func RetryPolicy(cfg config.RepositoryConfig) retry.Policy {
	return retry.Policy{
		Attempts:   cfg.RetryAttempts,
		BaseDelay:  cfg.RetryBaseDelay,
		Multiplier: 2,
	}
}

// Build opens the configured store, loads the classification catalog and wires
// the document and standards services on top.
func Build(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (*App, error) {
	log = logging.OrNop(log)

	fields, err := provision.LoadFieldSets(cfg.Repository.SchemaFile)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.NewRepository(reg)
	if err != nil {
		return nil, err
	}

	be, err := backend.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	policy := RetryPolicy(cfg.Repository)
	prov := provision.NewProvisioner(be, policy, log, m)
	docs := service.NewDocumentService(be, prov, service.Options{
		Library:        cfg.Repository.DocumentLibrary,
		Fields:         fields.Documents,
		CacheTTL:       cfg.Repository.CacheTTL,
		ChunkThreshold: cfg.Repository.ChunkThreshold,
		Retry:          policy,
		Logger:         log,
		Metrics:        m,
	})
	catalog := classification.NewLoader(cfg.Classification, nil, log).Load(ctx)
	standards := service.NewStandardsService(be, prov, docs, catalog, service.StandardsOptions{
		StandardsLibrary: cfg.Repository.StandardsLibrary,
		TemplatesLibrary: cfg.Repository.TemplatesLibrary,
		Fields:           fields,
		ChunkThreshold:   cfg.Repository.ChunkThreshold,
		Retry:            policy,
		Logger:           log,
		Metrics:          m,
	})

	return &App{
		Config:      cfg,
		Log:         log,
		Backend:     be,
		Registry:    reg,
		Metrics:     m,
		Fields:      fields,
		Provisioner: prov,
		Documents:   docs,
		Standards:   standards,
		Catalog:     catalog,
	}, nil
}

// EnsureLibraries provisions the document, standards and templates libraries.
func (a *App) EnsureLibraries(ctx context.Context) error {
	r := a.Config.Repository
	return errors.Join(
		a.Provisioner.EnsureLibrary(ctx, r.DocumentLibrary, a.Fields.Documents),
		a.Provisioner.EnsureLibrary(ctx, r.StandardsLibrary, a.Fields.Standards),
		a.Provisioner.EnsureLibrary(ctx, r.TemplatesLibrary, a.Fields.Templates),
	)
}

// Close releases the backing store.
func (a *App) Close() error {
	return a.Backend.Close()
}
