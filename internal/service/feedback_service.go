package service

import (
	"context"
	"log"
	"time"

	"github.com/autopulse/backend/internal/config"
	"github.com/autopulse/backend/internal/domain"
	"github.com/autopulse/backend/internal/mailer"
	"github.com/autopulse/backend/internal/repository"
)

// ActivityPublisher pushes events to connected dashboard clients.
// May be nil when no live dashboard is wired up.
type ActivityPublisher interface {
	PublishFeedback(feedback *domain.Feedback)
	PublishIssue(issue *domain.Issue)
}

// FeedbackService evaluates a persisted feedback record against the
// notification rules and dispatches the resulting emails and issue
// records. Every email send and issue insert is an independent failure
// domain: errors are logged and the remaining effects still run.
type FeedbackService struct {
	issueRepo    *repository.IssueRepository
	mail         mailer.Mailer
	composer     Composer
	managerEmail string
	supportEmail string
	mailTimeout  time.Duration
	events       ActivityPublisher
}

func NewFeedbackService(
	issueRepo *repository.IssueRepository,
	mail mailer.Mailer,
	composer Composer,
	emailCfg config.EmailConfig,
	events ActivityPublisher,
) *FeedbackService {
	return &FeedbackService{
		issueRepo:    issueRepo,
		mail:         mail,
		composer:     composer,
		managerEmail: emailCfg.ManagerEmail,
		supportEmail: emailCfg.SupportEmail,
		mailTimeout:  emailCfg.Timeout,
		events:       events,
	}
}

// Process runs the three trigger rules in fixed order against one
// feedback record. The rules are not mutually exclusive: a damaged
// package co-fires with either the low-rating or the high-rating rule.
// Rating 3 with no damage triggers nothing.
func (s *FeedbackService) Process(ctx context.Context, feedback *domain.Feedback) {
	mc := MessageContext{
		Email:          feedback.Email,
		Rating:         feedback.Rating,
		PackageDamaged: feedback.PackageDamaged,
		OnTime:         feedback.OnTime,
		Comment:        feedback.Comment,
		Timestamp:      feedback.Timestamp,
	}

	// Rule 1: low rating (1-2) - apologize, alert the manager, open an issue
	if feedback.Rating <= 2 {
		s.dispatch(ctx, KindApology, feedback.Email, mc)
		s.dispatch(ctx, KindManagerAlert, s.managerEmail, mc)

		priority := domain.PriorityHigh
		if feedback.PackageDamaged == domain.Yes {
			priority = domain.PriorityCritical
		}
		s.logIssue(feedback, domain.IssueLowRating, priority, "Feedback: "+feedback.Comment)
	}

	// Rule 2: damaged package - alert support, open a critical issue
	if feedback.PackageDamaged == domain.Yes {
		s.dispatch(ctx, KindDamageAlert, s.supportEmail, mc)
		s.logIssue(feedback, domain.IssuePackageDamaged, domain.PriorityCritical,
			"Suggested action: Replacement or Refund. Feedback: "+feedback.Comment)
	}

	// Rule 3: high rating (4-5) - thank the customer with a coupon
	if feedback.Rating >= 4 {
		s.dispatch(ctx, KindThankYou, feedback.Email, mc)
	}
}

// dispatch composes and sends one notification. Failures are logged,
// never propagated: a broken email path must not fail the submission.
func (s *FeedbackService) dispatch(ctx context.Context, kind MessageKind, to string, mc MessageContext) {
	msg := s.composer.Compose(ctx, kind, mc)

	sendCtx, cancel := context.WithTimeout(ctx, s.mailTimeout)
	defer cancel()

	if err := s.mail.Send(sendCtx, to, msg.Subject, msg.Body); err != nil {
		log.Printf("Failed to dispatch %s notification to %s: %v", kind, to, err)
	}
}

// logIssue persists one issue record derived from the feedback. Each
// insert is atomic in isolation; there is no transaction spanning the
// feedback row and its issues.
func (s *FeedbackService) logIssue(feedback *domain.Feedback, issueType domain.IssueType, priority domain.IssuePriority, notes string) {
	issue := &domain.Issue{
		Timestamp: feedback.Timestamp,
		Email:     feedback.Email,
		Rating:    feedback.Rating,
		Type:      issueType,
		Priority:  priority,
		Status:    domain.IssueStatusOpen,
		Notes:     notes,
	}

	if err := s.issueRepo.Create(issue); err != nil {
		log.Printf("Failed to log %s issue for %s: %v", issueType, feedback.Email, err)
		return
	}

	if s.events != nil {
		s.events.PublishIssue(issue)
	}
}
