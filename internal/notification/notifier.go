// Package notification renders and delivers booking confirmations over SMTP, directly or through RabbitMQ.
package notification

import (
	"context"

	"go.uber.org/zap"
)

// BookingConfirmation is everything needed to render a confirmation; it is also the queue message body.
type BookingConfirmation struct {
	MessageID        string          `json:"message_id"`
	RecipientAddress string          `json:"recipient_address"`
	RecipientName    string          `json:"recipient_name"`
	Booking          BookingDetails  `json:"booking"`
	Mountain         MountainDetails `json:"mountain"`
}

type BookingDetails struct {
	ID                   int64  `json:"id"`
	BookingDate          string `json:"booking_date"`
	Status               string `json:"status"`
	NumberOfParticipants int    `json:"number_of_participants"`
}

type MountainDetails struct {
	Name       string `json:"name"`
	Location   string `json:"location"`
	Difficulty string `json:"difficulty"`
	Elevation  int    `json:"elevation"`
}

type Sender interface {
	SendBookingConfirmation(ctx context.Context, msg BookingConfirmation) error
}

// LogSender only records that a confirmation would have been sent.
type LogSender struct {
	log *zap.Logger
}

func NewLogSender(log *zap.Logger) *LogSender {
	return &LogSender{log: log.With(zap.String("sender", "log"))}
}

func (s *LogSender) SendBookingConfirmation(_ context.Context, msg BookingConfirmation) error {
	s.log.Info("Booking confirmation",
		zap.Int64("booking_id", msg.Booking.ID),
		zap.String("recipient", msg.RecipientAddress),
		zap.String("mountain", msg.Mountain.Name),
	)
	return nil
}
