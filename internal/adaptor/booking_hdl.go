package adaptor

import (
	"encoding/json"
	"net/http"

	"poorito-booking/internal/dto/request"
	"poorito-booking/internal/dto/response"
	"poorito-booking/internal/usecase"
	"poorito-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service      usecase.BookingService
	exposeErrors bool
	log          *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, exposeErrors bool, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service:      service,
		exposeErrors: exposeErrors,
		log:          log.With(zap.String("handler", "booking")),
	}
}

// CreateBooking handles POST /api/bookings (protected)
func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(w, err, "create booking")
		return
	}

	utils.ResponseCreated(w, "Booking created successfully", response.BookingEnvelope{Booking: *booking})
}

// GetUserBookings handles GET /api/bookings/my-bookings (protected)
func (h *BookingHandler) GetUserBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookings, err := h.service.GetUserBookings(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err, "fetch bookings")
		return
	}

	utils.ResponseSuccess(w, "success", bookings)
}

// GetBookingByID handles GET /api/bookings/{id} (protected, owner only)
func (h *BookingHandler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	userID, bookingID, ok := h.ownerAndID(w, r)
	if !ok {
		return
	}

	booking, err := h.service.GetBookingByID(r.Context(), userID, bookingID)
	if err != nil {
		h.handleServiceError(w, err, "fetch booking")
		return
	}

	utils.ResponseSuccess(w, "success", response.BookingEnvelope{Booking: *booking})
}

// GetReceipt handles GET /api/bookings/{id}/receipt (protected, owner only)
func (h *BookingHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	userID, bookingID, ok := h.ownerAndID(w, r)
	if !ok {
		return
	}

	receipt, err := h.service.GetReceipt(r.Context(), userID, bookingID)
	if err != nil {
		h.handleServiceError(w, err, "fetch receipt")
		return
	}

	utils.ResponseSuccess(w, "success", response.ReceiptEnvelope{Receipt: *receipt})
}

// CancelBooking handles PUT /api/bookings/{id}/cancel (protected, owner only)
func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	userID, bookingID, ok := h.ownerAndID(w, r)
	if !ok {
		return
	}

	booking, err := h.service.CancelBooking(r.Context(), userID, bookingID)
	if err != nil {
		h.handleServiceError(w, err, "cancel booking")
		return
	}

	utils.ResponseSuccess(w, "Booking cancelled successfully", response.BookingEnvelope{Booking: *booking})
}

// ownerAndID reads the caller and the {id} path parameter, writing the error response itself when either is missing.
func (h *BookingHandler) ownerAndID(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return 0, 0, false
	}

	bookingID, ok := utils.ParseID(chi.URLParam(r, "id"))
	if !ok {
		utils.ResponseBadRequest(w, "Invalid booking ID", nil)
		return 0, 0, false
	}

	return userID, bookingID, true
}

func (h *BookingHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	writeServiceError(w, h.log, err, operation, h.exposeErrors)
}
