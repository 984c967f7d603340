package repository

import (
	"testing"
	"time"

	"github.com/autopulse/backend/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&domain.Feedback{}, &domain.Issue{})
	require.NoError(t, err)

	return db
}

func newFeedback(ts time.Time, email string, rating int) *domain.Feedback {
	return &domain.Feedback{
		Timestamp:      ts,
		Email:          email,
		Rating:         rating,
		PackageDamaged: domain.No,
		OnTime:         domain.Yes,
	}
}

func TestFeedbackList_OrderedByTimestampDescending(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFeedbackRepository(db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(newFeedback(base, "oldest@example.com", 3)))
	require.NoError(t, repo.Create(newFeedback(base.Add(2*time.Hour), "newest@example.com", 5)))
	require.NoError(t, repo.Create(newFeedback(base.Add(time.Hour), "middle@example.com", 4)))

	feedback, err := repo.List()
	require.NoError(t, err)
	require.Len(t, feedback, 3)

	assert.Equal(t, "newest@example.com", feedback[0].Email)
	assert.Equal(t, "middle@example.com", feedback[1].Email)
	assert.Equal(t, "oldest@example.com", feedback[2].Email)
}

func TestFeedbackCreate_AssignsID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFeedbackRepository(db)

	f := newFeedback(time.Now().UTC(), "a@b.com", 4)
	require.NoError(t, repo.Create(f))
	assert.NotEqual(t, uuid.Nil, f.ID, "BeforeCreate hook should assign a UUID")
}

func TestFeedbackStats_EmptyStoreIsZero(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFeedbackRepository(db)

	total, avg, err := repo.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Equal(t, 0.0, avg)
}

func TestFeedbackStats_AverageRoundedToOneDecimal(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFeedbackRepository(db)

	now := time.Now().UTC()
	// 5 + 4 + 4 = 13 / 3 = 4.333... -> 4.3
	require.NoError(t, repo.Create(newFeedback(now, "a@b.com", 5)))
	require.NoError(t, repo.Create(newFeedback(now.Add(time.Second), "c@d.com", 4)))
	require.NoError(t, repo.Create(newFeedback(now.Add(2*time.Second), "e@f.com", 4)))

	total, avg, err := repo.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, 4.3, avg)
}

func TestFeedbackList_RepeatedReadsAreIdentical(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFeedbackRepository(db)

	now := time.Now().UTC()
	require.NoError(t, repo.Create(newFeedback(now, "a@b.com", 2)))
	require.NoError(t, repo.Create(newFeedback(now.Add(time.Second), "c@d.com", 5)))

	first, err := repo.List()
	require.NoError(t, err)
	second, err := repo.List()
	require.NoError(t, err)

	assert.Equal(t, first, second, "reads without intervening writes must match")
}
