package persistence

import (
	"testing"

	"github.com/flowcredit/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB opens an in-memory SQLite database migrated with the real
// persistence models. SQLite is loose enough about column types that the
// postgres-oriented tags migrate cleanly, and the unique and check
// constraints the stores depend on behave the same.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.CreditAccountModel{},
		&models.CreditTransactionModel{},
		&models.VoucherModel{},
		&models.VoucherRedemptionModel{},
		&models.TopUpOrderModel{},
		&models.WorkflowCostModel{},
	)
	require.NoError(t, err)

	return db
}
