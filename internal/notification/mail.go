package notification

import (
	"context"
	"fmt"
	"time"

	"poorito-booking/pkg/utils"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// MailSender renders confirmations and delivers them over SMTP.
type MailSender struct {
	config   utils.EmailConfig
	renderer *Renderer
	log      *zap.Logger

	// deliver sends a built message; replaced in tests.
	deliver func(ctx context.Context, msg *mail.Msg) error
}

func NewMailSender(config utils.EmailConfig, log *zap.Logger) *MailSender {
	s := &MailSender{
		config:   config,
		renderer: NewRenderer(config.FrontendURL),
		log:      log.With(zap.String("sender", "smtp")),
	}
	s.deliver = s.dialAndSend
	return s
}

// Configured reports whether SMTP credentials are present.
func (s *MailSender) Configured() bool {
	return s.config.User != "" && s.config.Password != ""
}

// SendBookingConfirmation skips delivery, without error, when SMTP credentials are not set.
func (s *MailSender) SendBookingConfirmation(ctx context.Context, msg BookingConfirmation) error {
	if !s.Configured() {
		s.log.Warn("Email not configured, skipping booking confirmation",
			zap.Int64("booking_id", msg.Booking.ID))
		return nil
	}

	rendered, err := s.renderer.Render(msg)
	if err != nil {
		return err
	}

	m, err := s.buildMessage(msg, rendered)
	if err != nil {
		return err
	}

	if err := s.deliver(ctx, m); err != nil {
		return fmt.Errorf("send booking confirmation %d: %w", msg.Booking.ID, err)
	}

	s.log.Info("Booking confirmation email sent",
		zap.Int64("booking_id", msg.Booking.ID),
		zap.String("recipient", msg.RecipientAddress))
	return nil
}

func (s *MailSender) buildMessage(msg BookingConfirmation, rendered *Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(s.config.FromName, s.config.User); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := m.AddToFormat(msg.RecipientName, msg.RecipientAddress); err != nil {
		return nil, fmt.Errorf("set recipient %q: %w", msg.RecipientAddress, err)
	}
	m.Subject(rendered.Subject)
	m.SetDate()
	m.SetBodyString(mail.TypeTextPlain, rendered.Text)
	m.AddAlternativeString(mail.TypeTextHTML, rendered.HTML)
	return m, nil
}

func (s *MailSender) dialAndSend(ctx context.Context, m *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(s.config.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.config.User),
		mail.WithPassword(s.config.Password),
		mail.WithTimeout(15 * time.Second),
	}
	if s.config.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(s.config.Host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	return client.DialAndSendWithContext(ctx, m)
}
