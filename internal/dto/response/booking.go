package response

import (
	"time"

	"poorito-booking/internal/data/entity"
)

const DateLayout = "2006-01-02"

type BookingResponse struct {
	ID                   int64                `json:"id"`
	UserID               int64                `json:"user_id"`
	MountainID           int64                `json:"mountain_id"`
	BookingDate          string               `json:"booking_date"`
	Status               entity.BookingStatus `json:"status"`
	NumberOfParticipants int                  `json:"number_of_participants"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
	CancelledAt          *time.Time           `json:"cancelled_at"`
	Mountain             *MountainSummary     `json:"mountain"`
}

// BookingEnvelope and BookingListResponse are the data payloads of the booking endpoints.
type BookingEnvelope struct {
	Booking BookingResponse `json:"booking"`
}

type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

func BookingToResponse(b *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:                   b.ID,
		UserID:               b.UserID,
		MountainID:           b.MountainID,
		BookingDate:          b.BookingDate.Format(DateLayout),
		Status:               b.Status,
		NumberOfParticipants: b.NumberOfParticipants,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
		CancelledAt:          b.CancelledAt,
		Mountain:             MountainSummaryToResponse(b.Mountain),
	}
}

func BookingsToResponse(bookings []*entity.Booking) BookingListResponse {
	list := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		list = append(list, BookingToResponse(b))
	}
	return BookingListResponse{Bookings: list}
}
