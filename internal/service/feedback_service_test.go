package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/autopulse/backend/internal/config"
	"github.com/autopulse/backend/internal/domain"
	"github.com/autopulse/backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

// recordingMailer captures dispatched messages instead of sending them
type recordingMailer struct {
	mu    sync.Mutex
	sends []sentEmail
	// when set, every Send fails with this error
	failWith error
}

func (m *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.sends = append(m.sends, sentEmail{To: to, Subject: subject, Body: body})
	return nil
}

const (
	testManagerEmail = "manager@example.com"
	testSupportEmail = "support@example.com"
)

func setupService(t *testing.T, mail *recordingMailer) (*FeedbackService, *repository.IssueRepository) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Issue{}))

	issueRepo := repository.NewIssueRepository(db)
	svc := NewFeedbackService(issueRepo, mail, NewTemplateComposer(), config.EmailConfig{
		ManagerEmail: testManagerEmail,
		SupportEmail: testSupportEmail,
		Timeout:      time.Second,
	}, nil)
	return svc, issueRepo
}

func testFeedback(rating int, damaged domain.YesNo, comment string) *domain.Feedback {
	return &domain.Feedback{
		Timestamp:      time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC),
		Email:          "customer@example.com",
		Rating:         rating,
		PackageDamaged: damaged,
		OnTime:         domain.Yes,
		Comment:        comment,
	}
}

// ============================================================================
// Property: ratings 1-2 yield exactly one Low Rating issue, Critical iff
// the package was damaged, else High
// ============================================================================

func TestLowRating_CreatesOneLowRatingIssue(t *testing.T) {
	for _, rating := range []int{1, 2} {
		t.Run(fmt.Sprintf("rating_%d", rating), func(t *testing.T) {
			mail := &recordingMailer{}
			svc, issueRepo := setupService(t, mail)

			svc.Process(context.Background(), testFeedback(rating, domain.No, "late and cold"))

			issues, err := issueRepo.List()
			require.NoError(t, err)
			require.Len(t, issues, 1)
			assert.Equal(t, domain.IssueLowRating, issues[0].Type)
			assert.Equal(t, domain.PriorityHigh, issues[0].Priority)
			assert.Equal(t, domain.IssueStatusOpen, issues[0].Status)
		})
	}
}

func TestLowRatingWithDamage_IssueIsCritical(t *testing.T) {
	mail := &recordingMailer{}
	svc, issueRepo := setupService(t, mail)

	svc.Process(context.Background(), testFeedback(1, domain.Yes, "broken box"))

	issues, err := issueRepo.List()
	require.NoError(t, err)
	require.Len(t, issues, 2, "low rating plus damage co-fire")

	byType := map[domain.IssueType]domain.Issue{}
	for _, i := range issues {
		byType[i.Type] = i
	}
	assert.Equal(t, domain.PriorityCritical, byType[domain.IssueLowRating].Priority)
	assert.Equal(t, domain.PriorityCritical, byType[domain.IssuePackageDamaged].Priority)
}

// ============================================================================
// Property: damaged packages always yield one Critical Package Damaged
// issue, regardless of rating
// ============================================================================

func TestDamagedPackage_CriticalIssueAtAnyRating(t *testing.T) {
	for rating := 1; rating <= 5; rating++ {
		t.Run(fmt.Sprintf("rating_%d", rating), func(t *testing.T) {
			mail := &recordingMailer{}
			svc, issueRepo := setupService(t, mail)

			svc.Process(context.Background(), testFeedback(rating, domain.Yes, "dented corner"))

			issues, err := issueRepo.List()
			require.NoError(t, err)

			var damaged []domain.Issue
			for _, i := range issues {
				if i.Type == domain.IssuePackageDamaged {
					damaged = append(damaged, i)
				}
			}
			require.Len(t, damaged, 1)
			assert.Equal(t, domain.PriorityCritical, damaged[0].Priority)
			assert.Contains(t, damaged[0].Notes, "Replacement or Refund")
		})
	}
}

// ============================================================================
// Property: rating 3 with no damage triggers nothing
// ============================================================================

func TestNeutralRatingNoDamage_TriggersNothing(t *testing.T) {
	mail := &recordingMailer{}
	svc, issueRepo := setupService(t, mail)

	svc.Process(context.Background(), testFeedback(3, domain.No, "it was fine"))

	issues, err := issueRepo.List()
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Empty(t, mail.sends)
}

// ============================================================================
// Property: ratings >= 4 dispatch one thank-you with the coupon code and
// validity note, and no apology or manager alert
// ============================================================================

func TestHighRating_DispatchesThankYouWithCoupon(t *testing.T) {
	for _, rating := range []int{4, 5} {
		t.Run(fmt.Sprintf("rating_%d", rating), func(t *testing.T) {
			mail := &recordingMailer{}
			svc, issueRepo := setupService(t, mail)

			svc.Process(context.Background(), testFeedback(rating, domain.No, "great!"))

			require.Len(t, mail.sends, 1)
			sent := mail.sends[0]
			assert.Equal(t, "customer@example.com", sent.To)
			assert.Contains(t, sent.Body, CouponCode)
			assert.Contains(t, sent.Body, "Coupon valid for 30 days")

			for _, s := range mail.sends {
				assert.NotEqual(t, testManagerEmail, s.To, "no manager alert for high ratings")
			}

			issues, err := issueRepo.List()
			require.NoError(t, err)
			assert.Empty(t, issues)
		})
	}
}

// ============================================================================
// End-to-end rule matrix for the worst case: rating 1, damaged package
// ============================================================================

func TestLowRatingDamaged_ThreeNotificationsTwoIssues(t *testing.T) {
	mail := &recordingMailer{}
	svc, issueRepo := setupService(t, mail)

	svc.Process(context.Background(), testFeedback(1, domain.Yes, "broken box"))

	require.Len(t, mail.sends, 3)
	recipients := []string{mail.sends[0].To, mail.sends[1].To, mail.sends[2].To}
	assert.Equal(t, []string{"customer@example.com", testManagerEmail, testSupportEmail}, recipients,
		"rules dispatch in fixed order: apology, manager alert, damage alert")

	issues, err := issueRepo.List()
	require.NoError(t, err)
	assert.Len(t, issues, 2)
}

// ============================================================================
// Independent failure domains: a broken email path must not stop issue
// logging or remaining rule evaluation
// ============================================================================

func TestMailerFailure_DoesNotPreventIssueLogging(t *testing.T) {
	mail := &recordingMailer{failWith: fmt.Errorf("smtp unreachable")}
	svc, issueRepo := setupService(t, mail)

	svc.Process(context.Background(), testFeedback(1, domain.Yes, "broken box"))

	issues, err := issueRepo.List()
	require.NoError(t, err)
	assert.Len(t, issues, 2, "both issues logged despite every send failing")
}
