package handler

import (
	"fmt"
	"time"

	"github.com/autopulse/backend/internal/domain"
	"github.com/autopulse/backend/internal/dto"
	"github.com/autopulse/backend/internal/repository"
	"github.com/autopulse/backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

type FeedbackHandler struct {
	feedbackRepo *repository.FeedbackRepository
	issueRepo    *repository.IssueRepository
	feedbackSvc  *service.FeedbackService
	events       service.ActivityPublisher
}

func NewFeedbackHandler(
	feedbackRepo *repository.FeedbackRepository,
	issueRepo *repository.IssueRepository,
	feedbackSvc *service.FeedbackService,
	events service.ActivityPublisher,
) *FeedbackHandler {
	return &FeedbackHandler{
		feedbackRepo: feedbackRepo,
		issueRepo:    issueRepo,
		feedbackSvc:  feedbackSvc,
		events:       events,
	}
}

// SubmitFeedback - POST /api/feedback
func (h *FeedbackHandler) SubmitFeedback(c *fiber.Ctx) error {
	var req dto.SubmitFeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.NewError("Invalid request body"))
	}

	if missing := req.MissingField(); missing != "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.NewError("Missing field: " + missing))
	}

	rating := int(*req.Rating)
	if rating < 1 || rating > 5 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.NewError("Rating must be between 1 and 5"))
	}

	feedback := &domain.Feedback{
		Timestamp:      time.Now().UTC(),
		Email:          *req.Email,
		Rating:         rating,
		PackageDamaged: domain.NormalizeYesNo(*req.PackageDamaged),
		OnTime:         domain.NormalizeYesNo(*req.OnTime),
		Comment:        req.Comment,
	}

	if err := h.feedbackRepo.Create(feedback); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.NewError("Failed to save feedback"))
	}

	if h.events != nil {
		h.events.PublishFeedback(feedback)
	}

	// Notification dispatch and issue logging run synchronously within
	// the request but never affect its outcome.
	h.feedbackSvc.Process(c.UserContext(), feedback)

	return c.Status(fiber.StatusCreated).JSON(dto.NewSuccess("Feedback submitted successfully"))
}

// ListFeedback - GET /api/feedback
func (h *FeedbackHandler) ListFeedback(c *fiber.Ctx) error {
	feedback, err := h.feedbackRepo.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.NewError("Failed to fetch feedback"))
	}
	if feedback == nil {
		feedback = []domain.Feedback{}
	}
	return c.JSON(feedback)
}

// ListIssues - GET /api/issues
func (h *FeedbackHandler) ListIssues(c *fiber.Ctx) error {
	issues, err := h.issueRepo.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.NewError("Failed to fetch issues"))
	}
	if issues == nil {
		issues = []domain.Issue{}
	}
	return c.JSON(issues)
}

// GetStats - GET /api/stats
func (h *FeedbackHandler) GetStats(c *fiber.Ctx) error {
	total, avgRating, err := h.feedbackRepo.Stats()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.NewError("Failed to fetch statistics"))
	}

	critical, err := h.issueRepo.CountByPriority(domain.PriorityCritical)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.NewError("Failed to fetch statistics"))
	}

	high, err := h.issueRepo.CountByPriority(domain.PriorityHigh)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.NewError("Failed to fetch statistics"))
	}

	return c.JSON(dto.StatsResponse{
		TotalFeedback:  total,
		AvgRating:      avgRating,
		CriticalIssues: critical,
		HighPriority:   high,
	})
}

// Health - GET /api/health
func (h *FeedbackHandler) Health(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{
		Status:  "OK",
		Message: "AutoPulse API is running",
	})
}

// ExportFeedback - GET /api/feedback/export
// Streams the dashboard tables as an .xlsx workbook.
func (h *FeedbackHandler) ExportFeedback(c *fiber.Ctx) error {
	feedback, err := h.feedbackRepo.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.NewError("Failed to fetch feedback"))
	}
	issues, err := h.issueRepo.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.NewError("Failed to fetch issues"))
	}

	xlsx := excelize.NewFile()
	defer xlsx.Close()

	const feedbackSheet = "Feedback"
	if err := xlsx.SetSheetName("Sheet1", feedbackSheet); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.NewError("Failed to build export"))
	}
	_ = xlsx.SetSheetRow(feedbackSheet, "A1", &[]interface{}{
		"Timestamp", "Email", "Rating", "Package Damaged", "On Time", "Feedback",
	})
	for i, f := range feedback {
		cell := fmt.Sprintf("A%d", i+2)
		_ = xlsx.SetSheetRow(feedbackSheet, cell, &[]interface{}{
			f.Timestamp.Format(time.RFC3339), f.Email, f.Rating,
			string(f.PackageDamaged), string(f.OnTime), f.Comment,
		})
	}

	const issuesSheet = "Issues"
	if _, err := xlsx.NewSheet(issuesSheet); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.NewError("Failed to build export"))
	}
	_ = xlsx.SetSheetRow(issuesSheet, "A1", &[]interface{}{
		"Timestamp", "Email", "Rating", "Issue Type", "Priority", "Status", "Notes",
	})
	for i, issue := range issues {
		cell := fmt.Sprintf("A%d", i+2)
		_ = xlsx.SetSheetRow(issuesSheet, cell, &[]interface{}{
			issue.Timestamp.Format(time.RFC3339), issue.Email, issue.Rating,
			string(issue.Type), string(issue.Priority), string(issue.Status), issue.Notes,
		})
	}

	buf, err := xlsx.WriteToBuffer()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.NewError("Failed to build export"))
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="autopulse_feedback.xlsx"`)
	return c.Send(buf.Bytes())
}
