package response

import (
	"time"

	"poorito-booking/internal/data/entity"
)

type ReceiptUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type ReceiptBooking struct {
	BookingDate          string               `json:"booking_date"`
	Status               entity.BookingStatus `json:"status"`
	NumberOfParticipants int                  `json:"number_of_participants"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

type ReceiptResponse struct {
	ReceiptNumber string           `json:"receipt_number"`
	BookingID     int64            `json:"booking_id"`
	IssuedDate    time.Time        `json:"issued_date"`
	User          ReceiptUser      `json:"user"`
	Booking       ReceiptBooking   `json:"booking"`
	Mountain      *MountainSummary `json:"mountain"`
}

type ReceiptEnvelope struct {
	Receipt ReceiptResponse `json:"receipt"`
}

// BuildReceipt derives the receipt view; nothing is stored.
func BuildReceipt(b *entity.Booking, u *entity.User, issued time.Time) ReceiptResponse {
	return ReceiptResponse{
		ReceiptNumber: entity.ReceiptNumber(b.ID),
		BookingID:     b.ID,
		IssuedDate:    issued,
		User: ReceiptUser{
			Username: u.Username,
			Email:    u.Email,
		},
		Booking: ReceiptBooking{
			BookingDate:          b.BookingDate.Format(DateLayout),
			Status:               b.Status,
			NumberOfParticipants: b.NumberOfParticipants,
			CreatedAt:            b.CreatedAt,
			UpdatedAt:            b.UpdatedAt,
		},
		Mountain: MountainSummaryToResponse(b.Mountain),
	}
}
