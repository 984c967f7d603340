package repository

import (
	"math"

	"github.com/autopulse/backend/internal/domain"
	"gorm.io/gorm"
)

// FeedbackRepository persists feedback records. The model is
// append-only, so no update or delete methods exist.
type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Create(feedback *domain.Feedback) error {
	return r.db.Create(feedback).Error
}

// List returns all feedback ordered by timestamp descending.
func (r *FeedbackRepository) List() ([]domain.Feedback, error) {
	var feedback []domain.Feedback
	err := r.db.Order("timestamp DESC").Find(&feedback).Error
	if err != nil {
		return nil, err
	}
	return feedback, nil
}

// Stats returns the total record count and the average rating rounded
// to one decimal. An empty store yields (0, 0).
func (r *FeedbackRepository) Stats() (total int64, avgRating float64, err error) {
	err = r.db.Model(&domain.Feedback{}).Count(&total).Error
	if err != nil {
		return
	}
	if total == 0 {
		return
	}

	var avg float64
	err = r.db.Model(&domain.Feedback{}).Select("AVG(rating)").Scan(&avg).Error
	if err != nil {
		return
	}
	avgRating = math.Round(avg*10) / 10
	return
}
