package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// YesNo is the wire representation of delivery booleans ("Yes"/"No")
type YesNo string

const (
	Yes YesNo = "Yes"
	No  YesNo = "No"
)

// NormalizeYesNo maps any casing of "yes" to Yes and everything else to No
func NormalizeYesNo(s string) YesNo {
	if strings.EqualFold(strings.TrimSpace(s), "yes") {
		return Yes
	}
	return No
}

type IssueType string

const (
	IssueLowRating      IssueType = "Low Rating"
	IssuePackageDamaged IssueType = "Package Damaged"
)

type IssuePriority string

const (
	PriorityCritical IssuePriority = "Critical"
	PriorityHigh     IssuePriority = "High"
)

type IssueStatus string

const (
	IssueStatusOpen IssueStatus = "Open"
)

// Feedback is one customer-originated rating event. Append-only: the
// repository exposes no update or delete.
type Feedback struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Timestamp      time.Time `gorm:"not null;index" json:"timestamp"`
	Email          string    `gorm:"type:varchar(255);not null" json:"email"`
	Rating         int       `gorm:"not null" json:"rating"`
	PackageDamaged YesNo     `gorm:"type:varchar(3);not null" json:"package_damaged"`
	OnTime         YesNo     `gorm:"type:varchar(3);not null" json:"on_time"`
	Comment        string    `gorm:"type:text" json:"feedback"`
}

func (Feedback) TableName() string { return "feedback" }

// Issue is a follow-up item derived from a feedback submission.
// Status is always Open at creation; no transition operation exists.
type Issue struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	Timestamp time.Time     `gorm:"not null;index" json:"timestamp"`
	Email     string        `gorm:"type:varchar(255);not null" json:"email"`
	Rating    int           `gorm:"not null" json:"rating"`
	Type      IssueType     `gorm:"type:varchar(32);not null" json:"issue_type"`
	Priority  IssuePriority `gorm:"type:varchar(16);not null" json:"priority"`
	Status    IssueStatus   `gorm:"type:varchar(16);not null;default:'Open'" json:"status"`
	Notes     string        `gorm:"type:text" json:"notes"`
}

func (Issue) TableName() string { return "issues" }

// setUUIDIfEmpty checks if ID is nil and sets it to a new UUID
func setUUIDIfEmpty(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&f.ID)
	return nil
}

func (i *Issue) BeforeCreate(tx *gorm.DB) error {
	setUUIDIfEmpty(&i.ID)
	return nil
}
