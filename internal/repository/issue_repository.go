package repository

import (
	"github.com/autopulse/backend/internal/domain"
	"gorm.io/gorm"
)

type IssueRepository struct {
	db *gorm.DB
}

func NewIssueRepository(db *gorm.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

func (r *IssueRepository) Create(issue *domain.Issue) error {
	return r.db.Create(issue).Error
}

// List returns all issues ordered by timestamp descending.
func (r *IssueRepository) List() ([]domain.Issue, error) {
	var issues []domain.Issue
	err := r.db.Order("timestamp DESC").Find(&issues).Error
	if err != nil {
		return nil, err
	}
	return issues, nil
}

func (r *IssueRepository) CountByPriority(priority domain.IssuePriority) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Issue{}).Where("priority = ?", priority).Count(&count).Error
	return count, err
}
