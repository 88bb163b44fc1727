package request

type CreateBookingRequest struct {
	MountainID           int64  `json:"mountain_id" validate:"required,gt=0"`
	BookingDate          string `json:"booking_date" validate:"required,datetime=2006-01-02"`
	NumberOfParticipants *int   `json:"number_of_participants,omitempty" validate:"omitempty,min=1,max=20"`
}

// Participants returns the requested head count, defaulting to one.
func (r *CreateBookingRequest) Participants() int {
	if r.NumberOfParticipants == nil {
		return 1
	}
	return *r.NumberOfParticipants
}
