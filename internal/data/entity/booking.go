package entity

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// allowedTransitions lists, per status, the statuses a booking may move to.
var allowedTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusConfirmed: {BookingStatusCancelled, BookingStatusCompleted},
	BookingStatusCancelled: {},
	BookingStatusCompleted: {},
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}

const (
	MinParticipants     = 1
	MaxParticipants     = 20
	DefaultParticipants = 1
)

type Booking struct {
	Base
	UserID               int64         `db:"user_id"`
	MountainID           int64         `db:"mountain_id"`
	BookingDate          time.Time     `db:"booking_date"`
	Status               BookingStatus `db:"status"`
	NumberOfParticipants int           `db:"number_of_participants"`
	CancelledAt          *time.Time    `db:"cancelled_at"`

	// Mountain is filled by store queries that join the mountains table.
	Mountain *MountainSummary
}

// ReceiptNumber is POOR- followed by the id zero-padded to six digits; longer ids are not truncated.
func ReceiptNumber(bookingID int64) string {
	return fmt.Sprintf("POOR-%06d", bookingID)
}
