package cache

import (
	"context"
	"sync"
	"time"

	"github.com/flowcredit/backend/internal/domain/workflow"
	"go.uber.org/zap"
)

const defaultCostCacheTTL = 5 * time.Minute

// CachedCostProvider implements workflow.CostProvider with a TTL cache in
// front of the cost repository. The cost table is tiny and read on every paid
// workflow submission, so the whole table is cached as one snapshot; a price
// served within the TTL window may be stale, which is acceptable.
type CachedCostProvider struct {
	repo   workflow.CostRepository
	ttl    time.Duration
	logger *zap.Logger

	mu        sync.RWMutex
	snapshot  map[string]*workflow.Cost
	ordered   []*workflow.Cost
	expiresAt time.Time
}

// CachedCostProviderOption is a functional option for configuring the provider
type CachedCostProviderOption func(*CachedCostProvider)

// WithCostCacheTTL sets the snapshot TTL
func WithCostCacheTTL(ttl time.Duration) CachedCostProviderOption {
	return func(p *CachedCostProvider) {
		if ttl > 0 {
			p.ttl = ttl
		}
	}
}

// WithCostCacheLogger sets the logger for the provider
func WithCostCacheLogger(logger *zap.Logger) CachedCostProviderOption {
	return func(p *CachedCostProvider) {
		p.logger = logger
	}
}

// NewCachedCostProvider creates a cost provider backed by the given repository
func NewCachedCostProvider(repo workflow.CostRepository, opts ...CachedCostProviderOption) *CachedCostProvider {
	p := &CachedCostProvider{
		repo:   repo,
		ttl:    defaultCostCacheTTL,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ workflow.CostProvider = (*CachedCostProvider)(nil)

// Resolve returns the cost for a workflow type, or UNKNOWN_WORKFLOW_TYPE
func (p *CachedCostProvider) Resolve(ctx context.Context, workflowType string) (*workflow.Cost, error) {
	normalized := workflow.NormalizeType(workflowType)

	snapshot, _, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	cost, ok := snapshot[normalized]
	if !ok {
		return nil, workflow.ErrUnknownWorkflowType
	}
	return cost, nil
}

// ListAll returns the full (possibly cached) cost table
func (p *CachedCostProvider) ListAll(ctx context.Context) ([]*workflow.Cost, error) {
	_, ordered, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	return ordered, nil
}

// Invalidate drops the snapshot so the next read hits the repository.
// Called after admin cost edits to shorten the stale window.
func (p *CachedCostProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshot = nil
	p.ordered = nil
	p.expiresAt = time.Time{}
	p.logger.Debug("workflow cost cache invalidated")
}

// load returns the current snapshot, refreshing it from the repository when
// missing or expired. A refresh failure with no snapshot to fall back on is
// surfaced to the caller.
func (p *CachedCostProvider) load(ctx context.Context) (map[string]*workflow.Cost, []*workflow.Cost, error) {
	p.mu.RLock()
	if p.snapshot != nil && time.Now().Before(p.expiresAt) {
		snapshot, ordered := p.snapshot, p.ordered
		p.mu.RUnlock()
		return snapshot, ordered, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	// Another goroutine may have refreshed while we waited for the lock.
	if p.snapshot != nil && time.Now().Before(p.expiresAt) {
		return p.snapshot, p.ordered, nil
	}

	costs, err := p.repo.ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	snapshot := make(map[string]*workflow.Cost, len(costs))
	for _, c := range costs {
		snapshot[c.WorkflowType] = c
	}
	p.snapshot = snapshot
	p.ordered = costs
	p.expiresAt = time.Now().Add(p.ttl)
	p.logger.Debug("workflow cost cache refreshed", zap.Int("entries", len(costs)))

	return p.snapshot, p.ordered, nil
}
