// Package email delivers gift card notifications through SendGrid.
package email

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/slimbahael/beautycenter/internal/domain"
	"github.com/slimbahael/beautycenter/internal/infrastructure/metrics"
)

// Notifier sends transactional emails for gift card lifecycle events.
// Delivery is best-effort; callers decide how to handle errors.
type Notifier struct {
	apiKey    string
	fromEmail string
	fromName  string
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

// NewNotifier creates a SendGrid-backed notifier.
func NewNotifier(apiKey, fromEmail, fromName string, m *metrics.Metrics, logger zerolog.Logger) *Notifier {
	return &Notifier{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		metrics:   m,
		logger:    logger.With().Str("component", "email").Logger(),
	}
}

// NotifyPurchase confirms the purchase to the buyer. The raw code is included
// so the buyer has a copy; it is never persisted server-side.
func (n *Notifier) NotifyPurchase(ctx context.Context, card *domain.GiftCard, code string) error {
	subject := "Your gift card purchase confirmation"
	plain := fmt.Sprintf(
		"Hi %s,\n\nThank you for your purchase. Your gift card for %s has been sent to %s.\n\nGift card code: %s\nValid until: %s\n",
		card.PurchaserName, card.RecipientName, card.RecipientEmail, code, card.ExpirationDate.Format("January 2, 2006"),
	)
	html := fmt.Sprintf(
		`<html><body><h2>Thank you for your purchase</h2><p>Your gift card for <strong>%s</strong> has been sent to %s.</p><p>Gift card code: <strong>%s</strong></p><p>Valid until %s.</p></body></html>`,
		card.RecipientName, card.RecipientEmail, code, card.ExpirationDate.Format("January 2, 2006"),
	)
	return n.send(ctx, "purchase", card.PurchaserEmail, card.PurchaserName, subject, plain, html)
}

// NotifyReceived delivers the gift card to the recipient.
func (n *Notifier) NotifyReceived(ctx context.Context, card *domain.GiftCard, code string) error {
	subject := fmt.Sprintf("%s sent you a gift card!", card.PurchaserName)
	plain := fmt.Sprintf(
		"Hi %s,\n\n%s sent you a gift card.\n\n%s\n\nGift card code: %s\nValid until: %s\n",
		card.RecipientName, card.PurchaserName, card.Message, code, card.ExpirationDate.Format("January 2, 2006"),
	)
	html := fmt.Sprintf(
		`<html><body><h2>You received a gift card</h2><p><strong>%s</strong> sent you a gift card.</p><p>%s</p><p>Gift card code: <strong>%s</strong></p><p>Valid until %s.</p></body></html>`,
		card.PurchaserName, card.Message, code, card.ExpirationDate.Format("January 2, 2006"),
	)
	return n.send(ctx, "received", card.RecipientEmail, card.RecipientName, subject, plain, html)
}

// NotifyRedeemed confirms a successful redemption to the redeemer.
func (n *Notifier) NotifyRedeemed(ctx context.Context, card *domain.GiftCard, redeemerEmail string) error {
	subject := "Gift card redeemed"
	plain := fmt.Sprintf(
		"Your gift card has been redeemed. %s has been added to your account balance.\n",
		card.Amount.StringFixed(2),
	)
	html := fmt.Sprintf(
		`<html><body><h2>Gift card redeemed</h2><p><strong>%s</strong> has been added to your account balance.</p></body></html>`,
		card.Amount.StringFixed(2),
	)
	return n.send(ctx, "redeemed", redeemerEmail, "", subject, plain, html)
}

// NotifyRedeemedToPurchaser tells the buyer their gift was used.
func (n *Notifier) NotifyRedeemedToPurchaser(ctx context.Context, card *domain.GiftCard) error {
	subject := "Your gift card was redeemed"
	plain := fmt.Sprintf(
		"Hi %s,\n\nThe gift card you purchased for %s has been redeemed.\n",
		card.PurchaserName, card.RecipientName,
	)
	html := fmt.Sprintf(
		`<html><body><p>The gift card you purchased for <strong>%s</strong> has been redeemed.</p></body></html>`,
		card.RecipientName,
	)
	return n.send(ctx, "redeemed_purchaser", card.PurchaserEmail, card.PurchaserName, subject, plain, html)
}

// NotifyServiceUsed tells the given address that a service voucher was used
// in the salon.
func (n *Notifier) NotifyServiceUsed(ctx context.Context, card *domain.GiftCard, to string) error {
	subject := "Service gift card used"
	plain := "Your service gift card has been used. We hope you enjoyed your visit.\n"
	html := `<html><body><p>Your service gift card has been used. We hope you enjoyed your visit.</p></body></html>`
	return n.send(ctx, "service_used", to, "", subject, plain, html)
}

// NotifyExpired tells the given address that a gift card expired unused.
func (n *Notifier) NotifyExpired(ctx context.Context, card *domain.GiftCard, to string) error {
	subject := "Gift card expired"
	plain := fmt.Sprintf(
		"A gift card for %s expired on %s without being redeemed.\n",
		card.Amount.StringFixed(2), card.ExpirationDate.Format("January 2, 2006"),
	)
	html := fmt.Sprintf(
		`<html><body><p>A gift card for <strong>%s</strong> expired on %s without being redeemed.</p></body></html>`,
		card.Amount.StringFixed(2), card.ExpirationDate.Format("January 2, 2006"),
	)
	return n.send(ctx, "expired", to, "", subject, plain, html)
}

func (n *Notifier) send(ctx context.Context, kind, to, toName, subject, plainText, htmlContent string) error {
	from := mail.NewEmail(n.fromName, n.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, htmlContent)

	client := sendgrid.NewSendClient(n.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		if n.metrics != nil {
			n.metrics.NotificationsFailed.WithLabelValues(kind).Inc()
		}
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		if n.metrics != nil {
			n.metrics.NotificationsFailed.WithLabelValues(kind).Inc()
		}
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}

	if n.metrics != nil {
		n.metrics.NotificationsSent.WithLabelValues(kind).Inc()
	}
	n.logger.Debug().Str("kind", kind).Str("to", to).Msg("notification sent")
	return nil
}
