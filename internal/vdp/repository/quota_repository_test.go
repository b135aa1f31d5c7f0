package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jimyag/vdp/internal/vdp/repository/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotaRepository(t *testing.T) {
	t.Parallel()

	repo := setupTestDB(t)

	quotaRepo := NewQuotaRepository(repo.DB())
	ctx := context.Background()

	t.Run("Upsert creates then overwrites", func(t *testing.T) {
		quota := &model.Quota{
			UserID:      "user-q",
			MaxVMs:      5,
			MaxVCPUs:    16,
			MaxMemoryMB: 32768,
			MaxDiskGB:   500,
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
		require.NoError(t, quotaRepo.Upsert(ctx, quota))

		got, err := quotaRepo.GetByUserID(ctx, "user-q")
		require.NoError(t, err)
		assert.Equal(t, uint64(5), got.MaxVMs)

		quota.MaxVMs = 10
		quota.MaxDiskGB = 1000
		require.NoError(t, quotaRepo.Upsert(ctx, quota))

		got, err = quotaRepo.GetByUserID(ctx, "user-q")
		require.NoError(t, err)
		assert.Equal(t, uint64(10), got.MaxVMs)
		assert.Equal(t, uint64(1000), got.MaxDiskGB)
	})

	t.Run("GetByUserID missing user", func(t *testing.T) {
		_, err := quotaRepo.GetByUserID(ctx, "no-such-user")
		assert.Error(t, err)
	})
}
