package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/flowcredit/backend/internal/domain/shared"
)

// ErrUnknownWorkflowType is returned when no cost is configured for a
// workflow type. Unpriced workflows are never started for free.
var ErrUnknownWorkflowType = shared.NewDomainError("UNKNOWN_WORKFLOW_TYPE", "No cost configured for this workflow type")

// Cost maps a workflow type to its credit price and a display label.
// Read far more often than written; admin-editable.
type Cost struct {
	WorkflowType string
	Credits      int64
	Label        string
	UpdatedAt    time.Time
}

// NormalizeType canonicalizes a workflow type key.
func NormalizeType(workflowType string) string {
	return strings.ToLower(strings.TrimSpace(workflowType))
}

// NewCost creates a workflow cost entry.
func NewCost(workflowType string, credits int64, label string) (*Cost, error) {
	normalized := NormalizeType(workflowType)
	if normalized == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Workflow type cannot be empty")
	}
	if credits < 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Workflow cost cannot be negative")
	}
	return &Cost{
		WorkflowType: normalized,
		Credits:      credits,
		Label:        label,
		UpdatedAt:    time.Now(),
	}, nil
}

// CostRepository provides access to the workflow cost configuration table.
type CostRepository interface {
	// ListAll returns the full cost table.
	ListAll(ctx context.Context) ([]*Cost, error)
	// Upsert inserts or replaces cost entries by workflow type.
	Upsert(ctx context.Context, costs []*Cost) error
}

// CostProvider resolves workflow costs, typically through a TTL cache in
// front of the repository. A stale price within the TTL window is acceptable.
type CostProvider interface {
	// Resolve returns the cost for a workflow type, or UNKNOWN_WORKFLOW_TYPE.
	Resolve(ctx context.Context, workflowType string) (*Cost, error)
	// ListAll returns the full (possibly cached) cost table.
	ListAll(ctx context.Context) ([]*Cost, error)
	// Invalidate drops any cached state so the next read hits the repository.
	Invalidate()
}
