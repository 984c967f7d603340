package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/autopulse/backend/internal/domain"
	"github.com/autopulse/backend/internal/llm"
)

// MessageKind selects which email a composer builds.
type MessageKind string

const (
	KindApology      MessageKind = "apology"
	KindThankYou     MessageKind = "thankyou"
	KindManagerAlert MessageKind = "manager_alert"
	KindDamageAlert  MessageKind = "damage_alert"
)

const (
	CouponCode     = "SAVE10"
	CouponValidity = "Coupon valid for 30 days"
)

// MessageContext carries the feedback fields a message may reference.
type MessageContext struct {
	Email          string
	Rating         int
	PackageDamaged domain.YesNo
	OnTime         domain.YesNo
	Comment        string
	Timestamp      time.Time
}

type Message struct {
	Subject string
	Body    string
}

// Composer builds a subject/body pair for one message kind. Compose
// never fails: implementations degrade to template text instead.
type Composer interface {
	Compose(ctx context.Context, kind MessageKind, mc MessageContext) Message
}

// TemplateComposer renders fixed templates. It makes no external calls,
// so identical input always yields identical output.
type TemplateComposer struct{}

func NewTemplateComposer() *TemplateComposer {
	return &TemplateComposer{}
}

func (c *TemplateComposer) Compose(_ context.Context, kind MessageKind, mc MessageContext) Message {
	return Message{
		Subject: c.Subject(kind, mc),
		Body:    c.Body(kind, mc),
	}
}

// Subject renders the subject line for a kind. Subjects are always
// template-built, even when bodies are AI-generated, so downstream
// ticketing filters see stable text.
func (c *TemplateComposer) Subject(kind MessageKind, mc MessageContext) string {
	switch kind {
	case KindApology:
		return "We're Sorry – Let's Make It Right"
	case KindThankYou:
		return "Thank You! 🎉 Here's a Special Offer"
	case KindManagerAlert:
		return fmt.Sprintf("🚨 ALERT: Low Rating (%d/5) - Immediate Action Required", mc.Rating)
	case KindDamageAlert:
		return "🔴 CRITICAL: Damaged Package Report"
	}
	return ""
}

func (c *TemplateComposer) Body(kind MessageKind, mc MessageContext) string {
	switch kind {
	case KindApology:
		return c.apologyBody(mc)
	case KindThankYou:
		return c.thankYouBody(mc)
	case KindManagerAlert:
		return c.managerAlertBody(mc)
	case KindDamageAlert:
		return c.damageAlertBody(mc)
	}
	return ""
}

func (c *TemplateComposer) apologyBody(mc MessageContext) string {
	var b strings.Builder
	b.WriteString("Dear Valued Customer,\n\n")
	b.WriteString("We sincerely apologize for the experience you had with your recent delivery.\n\n")
	fmt.Fprintf(&b, "Your %d-star rating is extremely important to us, and we understand we fell short of your expectations.\n\n", mc.Rating)
	if mc.PackageDamaged == domain.Yes {
		b.WriteString("We're especially concerned that your package was damaged.\n\n")
	}
	b.WriteString("Our team is reviewing your case immediately, and a customer service representative will contact you within 24 hours.\n\n")
	fmt.Fprintf(&b, "Your feedback: %q\n\n", mc.Comment)
	b.WriteString("We value your business and hope to regain your trust.\n\n")
	b.WriteString("Best regards,\nThe AutoPulse Team\n")
	return b.String()
}

func (c *TemplateComposer) thankYouBody(mc MessageContext) string {
	var b strings.Builder
	b.WriteString("Dear Valued Customer,\n\n")
	fmt.Fprintf(&b, "Thank you so much for your %d-star rating! We're thrilled that you had a great delivery experience.\n\n", mc.Rating)
	b.WriteString("As a token of our appreciation, here's an exclusive coupon code for your next order:\n\n")
	fmt.Fprintf(&b, "🎁 Coupon Code: %s\n", CouponCode)
	b.WriteString("💰 Discount: 10% off your next purchase\n\n")
	if mc.Comment != "" {
		fmt.Fprintf(&b, "Your comment: %q\n\n", mc.Comment)
	}
	b.WriteString("We look forward to serving you again soon!\n\n")
	b.WriteString("Best regards,\nThe AutoPulse Team\n\n")
	b.WriteString("---\n")
	b.WriteString(CouponValidity + "\n")
	return b.String()
}

func (c *TemplateComposer) managerAlertBody(mc MessageContext) string {
	var b strings.Builder
	b.WriteString("LOGISTICS MANAGER ALERT\n\n")
	fmt.Fprintf(&b, "Customer Email: %s\n", mc.Email)
	fmt.Fprintf(&b, "Rating: %d/5\n", mc.Rating)
	fmt.Fprintf(&b, "Package Damaged: %s\n", mc.PackageDamaged)
	fmt.Fprintf(&b, "On Time: %s\n", mc.OnTime)
	fmt.Fprintf(&b, "Timestamp: %s\n\n", mc.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "Customer Feedback:\n%q\n\n", mc.Comment)
	b.WriteString("ACTION REQUIRED: Contact customer within 24 hours.\n")
	return b.String()
}

func (c *TemplateComposer) damageAlertBody(mc MessageContext) string {
	var b strings.Builder
	b.WriteString("WAREHOUSE/SUPPORT TEAM ALERT\n\n")
	b.WriteString("CRITICAL ISSUE: Customer reported damaged package\n\n")
	fmt.Fprintf(&b, "Customer Email: %s\n", mc.Email)
	fmt.Fprintf(&b, "Rating: %d/5\n", mc.Rating)
	fmt.Fprintf(&b, "Timestamp: %s\n\n", mc.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "Customer Feedback: %q\n\n", mc.Comment)
	b.WriteString("SUGGESTED ACTION: Replacement or Refund\n\n")
	b.WriteString("Please coordinate with logistics manager and contact customer immediately.\n")
	return b.String()
}

// TextGenerator is the AI collaborator contract. *llm.Client satisfies it.
type TextGenerator interface {
	Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error)
}

var _ TextGenerator = (*llm.Client)(nil)

// AIComposer asks a text generator for richer email bodies and falls
// back to template text when generation is unavailable or fails.
// Subjects always come from the template path.
type AIComposer struct {
	generator TextGenerator
	fallback  *TemplateComposer
	timeout   time.Duration
}

func NewAIComposer(generator TextGenerator, timeout time.Duration) *AIComposer {
	return &AIComposer{
		generator: generator,
		fallback:  NewTemplateComposer(),
		timeout:   timeout,
	}
}

const generatorSystemPrompt = "You write short customer-service emails for AutoPulse, a delivery service. " +
	"Respond with the plain-text email body only: no subject line, no markdown."

func (c *AIComposer) Compose(ctx context.Context, kind MessageKind, mc MessageContext) Message {
	subject := c.fallback.Subject(kind, mc)

	genCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := c.generator.Complete(genCtx, generatorSystemPrompt, c.instruction(kind, mc), 400)
	if err != nil {
		log.Printf("Text generation unavailable for %s, using template: %v", kind, err)
		body = c.fallback.Body(kind, mc)
	}

	return Message{Subject: subject, Body: body}
}

// instruction builds the kind-specific generation prompt: tone, the
// facts the body must state, and required literal tokens.
func (c *AIComposer) instruction(kind MessageKind, mc MessageContext) string {
	var b strings.Builder
	switch kind {
	case KindApology:
		fmt.Fprintf(&b, "Write an apology email to a customer who rated their delivery %d out of 5 stars.\n", mc.Rating)
		if mc.PackageDamaged == domain.Yes {
			b.WriteString("Their package arrived damaged; acknowledge that explicitly.\n")
		}
		fmt.Fprintf(&b, "Quote their feedback: %q.\n", mc.Comment)
		b.WriteString("Promise that a customer service representative will contact them within 24 hours. Warm, sincere tone.")
	case KindThankYou:
		fmt.Fprintf(&b, "Write a thank-you email to a customer who rated their delivery %d out of 5 stars.\n", mc.Rating)
		fmt.Fprintf(&b, "Include the literal coupon code %s for 10%% off their next order and state that the coupon is valid for 30 days.\n", CouponCode)
		if mc.Comment != "" {
			fmt.Fprintf(&b, "Reference their comment: %q.\n", mc.Comment)
		}
		b.WriteString("Cheerful tone.")
	case KindManagerAlert:
		b.WriteString("Write an internal alert to the logistics manager about a low delivery rating.\n")
		fmt.Fprintf(&b, "Facts to state: customer email %s, rating %d/5, package damaged: %s, on time: %s, submitted at %s, customer feedback %q.\n",
			mc.Email, mc.Rating, mc.PackageDamaged, mc.OnTime, mc.Timestamp.Format(time.RFC3339), mc.Comment)
		b.WriteString("End with the action required: contact the customer within 24 hours. Urgent, factual tone.")
	case KindDamageAlert:
		b.WriteString("Write an internal alert to the warehouse/support team about a damaged package report.\n")
		fmt.Fprintf(&b, "Facts to state: customer email %s, rating %d/5, submitted at %s, customer feedback %q.\n",
			mc.Email, mc.Rating, mc.Timestamp.Format(time.RFC3339), mc.Comment)
		b.WriteString("Suggest replacement or refund and tell them to coordinate with the logistics manager. Urgent, factual tone.")
	}
	b.WriteString(" Keep it under 150 words.")
	return b.String()
}
