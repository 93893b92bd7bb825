// Package metrics holds the Prometheus collectors of the document repository.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Repository counts cache use, retried store calls, uploads and promotions.
// A nil *Repository is valid and records nothing.
type Repository struct {
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
	storeRetries *prometheus.CounterVec
	uploads      *prometheus.CounterVec
	uploadBytes  prometheus.Counter
	promotions   *prometheus.CounterVec
}

// NewRepository creates the collectors and registers them with reg.
func NewRepository(reg prometheus.Registerer) (*Repository, error) {
	m := &Repository{
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "projdocs_cache_hits_total",
			Help: "Document listings served from the per-project cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "projdocs_cache_misses_total",
			Help: "Document listings that had to query the store.",
		}),
		storeRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "projdocs_store_retries_total",
			Help: "Failed store attempts that were retried, by operation.",
		}, []string{"operation"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "projdocs_uploads_total",
			Help: "Completed uploads by strategy (single, chunked).",
		}, []string{"strategy"}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "projdocs_upload_bytes_total",
			Help: "Bytes uploaded to the store.",
		}),
		promotions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "projdocs_promotions_total",
			Help: "Standards and templates copied into projects, by result.",
		}, []string{"result"}),
	}

	for _, c := range []prometheus.Collector{m.cacheHits, m.cacheMisses, m.storeRetries, m.uploads, m.uploadBytes, m.promotions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Repository) CacheHit() {
	if m != nil {
		m.cacheHits.Inc()
	}
}

func (m *Repository) CacheMiss() {
	if m != nil {
		m.cacheMisses.Inc()
	}
}

func (m *Repository) StoreRetry(operation string) {
	if m != nil {
		m.storeRetries.WithLabelValues(operation).Inc()
	}
}

func (m *Repository) Upload(strategy string, size int64) {
	if m != nil {
		m.uploads.WithLabelValues(strategy).Inc()
		m.uploadBytes.Add(float64(size))
	}
}

func (m *Repository) Promotion(result string) {
	if m != nil {
		m.promotions.WithLabelValues(result).Inc()
	}
}
