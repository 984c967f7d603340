package dto

import (
	"fmt"
	"strconv"
	"strings"
)

// FlexInt accepts both 4 and "4" for the rating field, matching the
// original clients which submit either form.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		return fmt.Errorf("rating must be a number")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("rating must be a number")
	}
	*f = FlexInt(n)
	return nil
}

// SubmitFeedbackRequest - POST /api/feedback body. Pointer fields
// distinguish absent from zero-valued input.
type SubmitFeedbackRequest struct {
	Email          *string  `json:"email"`
	Rating         *FlexInt `json:"rating"`
	PackageDamaged *string  `json:"packageDamaged"`
	OnTime         *string  `json:"onTime"`
	Comment        string   `json:"feedback"`
}

// MissingField returns the name of the first absent required field,
// checked in the order the original validated them, or "".
func (r *SubmitFeedbackRequest) MissingField() string {
	if r.Email == nil {
		return "email"
	}
	if r.Rating == nil {
		return "rating"
	}
	if r.PackageDamaged == nil {
		return "packageDamaged"
	}
	if r.OnTime == nil {
		return "onTime"
	}
	return ""
}

// StatsResponse - GET /api/stats body (dashboard counters)
type StatsResponse struct {
	TotalFeedback  int64   `json:"total_feedback"`
	AvgRating      float64 `json:"avg_rating"`
	CriticalIssues int64   `json:"critical_issues"`
	HighPriority   int64   `json:"high_priority"`
}

// HealthResponse - GET /api/health body
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
