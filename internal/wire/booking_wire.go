package wire

import (
	"poorito-booking/internal/adaptor"
	"poorito-booking/pkg/middleware"
	"poorito-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// Every booking route requires a bearer token; reads and cancel are scoped to the caller.
	r.Route("/api/bookings", func(r chi.Router) {
		r.Use(middleware.Auth(config.JWT.Secret, log))

		r.Post("/", bookingHandler.CreateBooking)
		r.Get("/my-bookings", bookingHandler.GetUserBookings)
		r.Get("/{id}/receipt", bookingHandler.GetReceipt)
		r.Get("/{id}", bookingHandler.GetBookingByID)
		r.Put("/{id}/cancel", bookingHandler.CancelBooking)
	})
}
