package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/imrishuroy/landing-checkout/internal/config"
	"github.com/imrishuroy/landing-checkout/internal/money"
	"github.com/imrishuroy/landing-checkout/internal/orders"
)

// Mailer sends the buyer a confirmation for a committed order.
type Mailer interface {
	SendConfirmation(ctx context.Context, o orders.Order) error
}

// sender is the part of *mail.Client the SMTP mailer uses.
type sender interface {
	DialAndSendWithContext(ctx context.Context, msgs ...*mail.Msg) error
}

// SMTPMailer delivers confirmations through an SMTP relay.
type SMTPMailer struct {
	from   string
	client sender
	logger *zap.Logger
}

// NewSMTPMailer returns a mailer for the configured relay. Authentication is
// only enabled when a username is set.
func NewSMTPMailer(cfg config.SMTPConfig, logger *zap.Logger) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{from: cfg.From, client: client, logger: logger}, nil
}

func (m *SMTPMailer) SendConfirmation(ctx context.Context, o orders.Order) error {
	msg, err := NewConfirmation(m.from, o)
	if err != nil {
		return err
	}
	m.logger.Info("sending confirmation", zap.String("order_id", o.ID), zap.String("to", o.Email))
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send confirmation %s: %w", o.ID, err)
	}
	return nil
}

// NewConfirmation builds the confirmation message for o.
func NewConfirmation(from string, o orders.Order) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", from, err)
	}
	if err := msg.To(o.Email); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", o.Email, err)
	}
	msg.Subject("Your order " + shortID(o.ID) + " is confirmed")
	msg.SetBodyString(mail.TypeTextPlain, ConfirmationBody(o))
	return msg, nil
}

// ConfirmationBody renders the plain text body of a confirmation.
func ConfirmationBody(o orders.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", o.Name)
	fmt.Fprintf(&b, "Thanks for your order. We received it on %s.\n\n", o.CreatedAt.UTC().Format("2 Jan 2006 15:04 MST"))
	fmt.Fprintf(&b, "Order:    %s\n", o.ID)
	fmt.Fprintf(&b, "Quantity: %d x %s\n", o.Qty, money.Format(o.UnitPriceCents))
	fmt.Fprintf(&b, "Total:    %s\n\n", money.Format(o.TotalCents))
	b.WriteString("Shipping to:\n")
	for _, line := range []string{o.Address1, o.Address2, o.City + ", " + o.State + " " + o.Pin, o.Country} {
		if strings.TrimSpace(line) != "" {
			b.WriteString("  " + line + "\n")
		}
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// LogMailer only logs. It is used when no SMTP relay is configured.
type LogMailer struct {
	Logger *zap.Logger
}

func (m LogMailer) SendConfirmation(ctx context.Context, o orders.Order) error {
	m.Logger.Info("confirmation (smtp disabled)",
		zap.String("order_id", o.ID),
		zap.String("to", o.Email),
		zap.Int("total_cents", o.TotalCents),
	)
	return nil
}

// New picks the SMTP mailer when a relay is configured, else a LogMailer.
func New(cfg config.SMTPConfig, logger *zap.Logger) (Mailer, error) {
	if !cfg.Enabled() {
		return LogMailer{Logger: logger}, nil
	}
	return NewSMTPMailer(cfg, logger)
}
