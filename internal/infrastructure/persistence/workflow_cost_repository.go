package persistence

import (
	"context"
	"fmt"

	"github.com/flowcredit/backend/internal/domain/workflow"
	"github.com/flowcredit/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormWorkflowCostRepository implements workflow.CostRepository using GORM
type GormWorkflowCostRepository struct {
	db *gorm.DB
}

// NewGormWorkflowCostRepository creates a new GORM-based workflow cost repository
func NewGormWorkflowCostRepository(db *gorm.DB) *GormWorkflowCostRepository {
	return &GormWorkflowCostRepository{db: db}
}

var _ workflow.CostRepository = (*GormWorkflowCostRepository)(nil)

// ListAll returns the full workflow cost table
func (r *GormWorkflowCostRepository) ListAll(ctx context.Context) ([]*workflow.Cost, error) {
	var rows []models.WorkflowCostModel
	if err := r.db.WithContext(ctx).Order("workflow_type ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list workflow costs: %w", err)
	}
	costs := make([]*workflow.Cost, len(rows))
	for i := range rows {
		costs[i] = rows[i].ToDomain()
	}
	return costs, nil
}

// Upsert inserts or replaces cost entries by workflow type
func (r *GormWorkflowCostRepository) Upsert(ctx context.Context, costs []*workflow.Cost) error {
	if len(costs) == 0 {
		return nil
	}
	rows := make([]models.WorkflowCostModel, len(costs))
	for i, c := range costs {
		rows[i].FromDomain(c)
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "workflow_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"credits", "label", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to upsert workflow costs: %w", err)
	}
	return nil
}
