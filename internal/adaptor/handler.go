package adaptor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"poorito-booking/internal/usecase"
	"poorito-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Booking  *BookingHandler
	Mountain *MountainHandler
	Health   *HealthHandler
}

// NewHandler builds the handlers. exposeErrors adds internal error text to 500 responses.
func NewHandler(service *usecase.Service, db Pinger, exposeErrors bool, log *zap.Logger) *Handler {
	return &Handler{
		Booking:  NewBookingHandler(service.Booking, exposeErrors, log),
		Mountain: NewMountainHandler(service.Mountain, exposeErrors, log),
		Health:   NewHealthHandler(db, log),
	}
}

// writeServiceError maps usecase error kinds to status codes; anything unclassified is a 500.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string, exposeErrors bool) {
	var validationErr *usecase.ValidationError

	switch {
	case errors.As(err, &validationErr):
		log.Warn(operation+" validation failed", zap.Any("errors", validationErr.Fields))
		utils.ResponseBadRequest(w, "Validation failed", validationErr.Fields)

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrConflict):
		log.Warn(operation+" failed - conflict", zap.Error(err))
		utils.ResponseConflict(w, err.Error())

	default:
		log.Error(operation+" failed - internal error", zap.Error(err))
		var details any
		if exposeErrors {
			details = err.Error()
		}
		utils.ResponseInternalError(w, "Failed to "+operation, details)
	}
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db  Pinger
	log *zap.Logger
}

func NewHealthHandler(db Pinger, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:  db,
		log: log.With(zap.String("handler", "health")),
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.log.Error("Health check failed", zap.Error(err))
		utils.ResponseServiceUnavailable(w, "Database unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
