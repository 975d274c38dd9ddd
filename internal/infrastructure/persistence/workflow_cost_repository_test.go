package persistence

import (
	"context"
	"testing"

	"github.com/flowcredit/backend/internal/domain/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormWorkflowCostRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts and lists cost entries", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewGormWorkflowCostRepository(db)

		imageGen, err := workflow.NewCost("image_generation", 10, "Image generation")
		require.NoError(t, err)
		videoGen, err := workflow.NewCost("video_generation", 50, "Video generation")
		require.NoError(t, err)

		require.NoError(t, repo.Upsert(ctx, []*workflow.Cost{imageGen, videoGen}))

		costs, err := repo.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, costs, 2)
		assert.Equal(t, "image_generation", costs[0].WorkflowType)
		assert.Equal(t, int64(10), costs[0].Credits)
		assert.Equal(t, "video_generation", costs[1].WorkflowType)
	})

	t.Run("upsert replaces the price of an existing type", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewGormWorkflowCostRepository(db)

		initial, err := workflow.NewCost("image_generation", 10, "Image generation")
		require.NoError(t, err)
		require.NoError(t, repo.Upsert(ctx, []*workflow.Cost{initial}))

		updated, err := workflow.NewCost("image_generation", 15, "Image generation v2")
		require.NoError(t, err)
		require.NoError(t, repo.Upsert(ctx, []*workflow.Cost{updated}))

		costs, err := repo.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, costs, 1)
		assert.Equal(t, int64(15), costs[0].Credits)
		assert.Equal(t, "Image generation v2", costs[0].Label)
	})

	t.Run("upsert of an empty batch is a no-op", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewGormWorkflowCostRepository(db)

		require.NoError(t, repo.Upsert(ctx, nil))

		costs, err := repo.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, costs)
	})
}
