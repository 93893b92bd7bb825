// Package provision makes sure a library and its expected columns exist before
// the repository touches it.
package provision

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"projdocs/internal/logging"
	"projdocs/internal/metrics"
	"projdocs/internal/retry"
	"projdocs/internal/store"
)

// ProvisioningError reports a library that could not be set up within the retry budget.
type ProvisioningError struct {
	Library  string
	Attempts int
	Err      error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provision library %q failed after %d attempts: %v", e.Library, e.Attempts, e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

// Provisioner remembers which libraries it has verified for its own lifetime.
// It is safe for concurrent use by multiple goroutines.
type Provisioner struct {
	schema  store.SchemaStore
	policy  retry.Policy
	log     *zap.Logger
	metrics *metrics.Repository

	mu       sync.Mutex
	verified map[string]bool
	group    singleflight.Group
}

// NewProvisioner constructs a Provisioner. log and m may be nil.
func NewProvisioner(schema store.SchemaStore, policy retry.Policy, log *zap.Logger, m *metrics.Repository) *Provisioner {
	return &Provisioner{
		schema:   schema,
		policy:   policy,
		log:      logging.OrNop(log).Named("provisioner"),
		metrics:  m,
		verified: make(map[string]bool),
	}
}

// Verified reports whether EnsureLibrary has succeeded for name.
func (p *Provisioner) Verified(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.verified[name]
}

// EnsureLibrary creates the library when missing and adds any expected field it
// lacks. After the first success it returns without calling the store.
// Concurrent callers share one provisioning run, which is not cancelled when a
// single caller gives up.
func (p *Provisioner) EnsureLibrary(ctx context.Context, name string, fields []FieldSpec) error {
	if p.Verified(name) {
		return nil
	}
	runCtx := context.WithoutCancel(ctx)
	ch := p.group.DoChan(name, func() (any, error) {
		if p.Verified(name) {
			return nil, nil
		}
		start := time.Now()
		attempts := 0
		err := retry.Run(runCtx, p.policy, func(ctx context.Context) error {
			attempts++
			return p.provision(ctx, name, fields)
		}, func(attempt int, err error, wait time.Duration) {
			p.metrics.StoreRetry("ensure_library")
			p.log.Warn("library_provision_retry",
				zap.String("event", "ensure_library"),
				zap.String("library", name),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", wait),
				zap.Error(err),
			)
		})
		if err != nil {
			p.log.Error("library_provision_failed",
				zap.String("event", "ensure_library"),
				zap.String("status", "error"),
				zap.String("library", name),
				zap.Error(err),
			)
			return nil, &ProvisioningError{Library: name, Attempts: attempts, Err: err}
		}

		p.mu.Lock()
		p.verified[name] = true
		p.mu.Unlock()

		p.log.Info("library_verified",
			zap.String("event", "ensure_library"),
			zap.String("status", "success"),
			zap.String("library", name),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

func (p *Provisioner) provision(ctx context.Context, name string, fields []FieldSpec) error {
	exists, err := p.schema.LibraryExists(ctx, name)
	if err != nil {
		return fmt.Errorf("probe library: %w", err)
	}
	if !exists {
		if err := p.schema.CreateLibrary(ctx, name); err != nil && !errors.Is(err, store.ErrAlreadyExists) {
			return fmt.Errorf("create library: %w", err)
		}
		p.log.Info("library_created", zap.String("event", "create_library"), zap.String("library", name))
	}

	current, err := p.schema.ListFields(ctx, name)
	if err != nil {
		return fmt.Errorf("list fields: %w", err)
	}
	have := make(map[string]bool, len(current))
	for _, f := range current {
		have[strings.ToLower(f.Name)] = true
	}

	for _, f := range fields {
		if have[strings.ToLower(f.Name)] {
			continue
		}
		// A missing optional column must not block the others.
		if err := p.schema.AddTextField(ctx, name, f.Name, f.Required); err != nil && !errors.Is(err, store.ErrFieldExists) {
			p.log.Warn("field_add_failed",
				zap.String("event", "add_field"),
				zap.String("status", "error"),
				zap.String("library", name),
				zap.String("field", f.Name),
				zap.Error(err),
			)
			continue
		}
		have[strings.ToLower(f.Name)] = true
	}
	return nil
}
