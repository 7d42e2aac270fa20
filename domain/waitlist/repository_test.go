package waitlist

import (
	"context"
	"testing"
	"time"

	"github.com/videoscale/waitlist-api/internal/models"
	apperrors "github.com/videoscale/waitlist-api/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestRepository(t *testing.T) WaitlistRepository {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.WaitlistEntry{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return NewWaitlistRepository(db)
}

func TestWaitlistRepository_UniqueEmail(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first, err := repo.CreateEntry(ctx, &models.WaitlistEntry{Email: "user@example.com", Timestamp: "t", Source: "unknown"})
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	_, err = repo.CreateEntry(ctx, &models.WaitlistEntry{Email: "user@example.com", Timestamp: "t", Source: "unknown"})
	require.Error(t, err)
	require.Equal(t, apperrors.ErrorTypeConflict, apperrors.GetErrorType(err))

	count, err := repo.CountEntries(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestWaitlistRepository_FindEntryByEmail(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.FindEntryByEmail(ctx, "absent@example.com")
	require.Error(t, err)
	require.Equal(t, apperrors.ErrorTypeNotFound, apperrors.GetErrorType(err))

	// Lookups are exact and case-sensitive; no normalization is applied.
	_, err = repo.CreateEntry(ctx, &models.WaitlistEntry{Email: "Case@Example.com", Timestamp: "t", Source: "unknown"})
	require.NoError(t, err)

	found, err := repo.FindEntryByEmail(ctx, "Case@Example.com")
	require.NoError(t, err)
	require.Equal(t, "Case@Example.com", found.Email)
}

func TestWaitlistRepository_OrderingAndCounts(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	now := time.Now()
	seed := []*models.WaitlistEntry{
		{Email: "oldest@example.com", Timestamp: "t", Source: "unknown", CreatedAt: now.Add(-48 * time.Hour)},
		{Email: "middle@example.com", Timestamp: "t", Source: "unknown", CreatedAt: now.Add(-24 * time.Hour)},
		{Email: "newest@example.com", Timestamp: "t", Source: "unknown", CreatedAt: now},
	}
	for _, entry := range seed {
		_, err := repo.CreateEntry(ctx, entry)
		require.NoError(t, err)
	}

	entries, err := repo.GetAllEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "newest@example.com", entries[0].Email)
	require.Equal(t, "oldest@example.com", entries[2].Email)

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today, err := repo.CountEntriesSince(ctx, midnight)
	require.NoError(t, err)
	require.Equal(t, int64(1), today)

	recent, err := repo.GetRecentEntries(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, "newest@example.com", recent[0].Email)
	require.Equal(t, "middle@example.com", recent[1].Email)
}
