package models

import (
	"time"

	"github.com/flowcredit/backend/internal/domain/workflow"
)

// WorkflowCostModel is the persistence model for workflow cost configuration.
type WorkflowCostModel struct {
	WorkflowType string    `gorm:"type:varchar(64);primary_key"`
	Credits      int64     `gorm:"not null"`
	Label        string    `gorm:"type:varchar(200)"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WorkflowCostModel) TableName() string {
	return "workflow_costs"
}

// ToDomain converts the persistence model to a domain Cost entry.
func (m *WorkflowCostModel) ToDomain() *workflow.Cost {
	return &workflow.Cost{
		WorkflowType: m.WorkflowType,
		Credits:      m.Credits,
		Label:        m.Label,
		UpdatedAt:    m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain Cost entry.
func (m *WorkflowCostModel) FromDomain(c *workflow.Cost) {
	m.WorkflowType = c.WorkflowType
	m.Credits = c.Credits
	m.Label = c.Label
	m.UpdatedAt = c.UpdatedAt
}
