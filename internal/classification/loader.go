package classification

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"projdocs/internal/config"
	"projdocs/internal/logging"
)

// maxCatalogBytes caps the asset size read from the site.
const maxCatalogBytes = 8 << 20

// Loader fetches the catalog asset relative to the site root.
type Loader struct {
	client  *http.Client
	siteURL string
	path    string
	log     *zap.Logger
}

// NewLoader builds a loader. A nil client gets an instrumented default.
func NewLoader(cfg config.ClassificationConfig, client *http.Client, log *zap.Logger) *Loader {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Loader{
		client:  client,
		siteURL: cfg.SiteURL,
		path:    cfg.Path,
		log:     logging.OrNop(log).Named("classification"),
	}
}

// Location returns the resolved asset URL, or a filesystem path when no site is configured.
func (l *Loader) Location() (string, error) {
	if u, err := url.Parse(l.path); err == nil && u.IsAbs() {
		return l.path, nil
	}
	if l.siteURL == "" {
		return l.path, nil
	}
	base, err := url.Parse(strings.TrimRight(l.siteURL, "/") + "/")
	if err != nil {
		return "", fmt.Errorf("parse site url: %w", err)
	}
	ref, err := url.Parse(strings.TrimLeft(l.path, "/"))
	if err != nil {
		return "", fmt.Errorf("parse catalog path: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}

// Load fetches and parses the catalog. Any failure is logged and yields an empty
// catalog so callers stay usable without classification.
func (l *Loader) Load(ctx context.Context) *Catalog {
	start := time.Now()
	loc, err := l.Location()
	if err == nil {
		var data []byte
		data, err = l.read(ctx, loc)
		if err == nil {
			var c *Catalog
			c, err = Parse(data)
			if err == nil {
				l.log.Info("catalog_loaded",
					zap.String("event", "classification_load"),
					zap.String("status", "success"),
					zap.String("location", loc),
					zap.Int("groups", c.Len()),
					zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				)
				return c
			}
		}
	}
	l.log.Warn("catalog_unavailable",
		zap.String("event", "classification_load"),
		zap.String("status", "degraded"),
		zap.String("location", loc),
		zap.Error(err),
	)
	return Empty()
}

func (l *Loader) read(ctx context.Context, loc string) ([]byte, error) {
	u, err := url.Parse(loc)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		if err == nil && u.Scheme == "file" {
			loc = u.Path
		}
		return os.ReadFile(loc)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog: unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
}
