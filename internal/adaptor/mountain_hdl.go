package adaptor

import (
	"net/http"

	"poorito-booking/internal/dto/response"
	"poorito-booking/internal/usecase"
	"poorito-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type MountainHandler struct {
	service      usecase.MountainService
	exposeErrors bool
	log          *zap.Logger
}

func NewMountainHandler(service usecase.MountainService, exposeErrors bool, log *zap.Logger) *MountainHandler {
	return &MountainHandler{
		service:      service,
		exposeErrors: exposeErrors,
		log:          log.With(zap.String("handler", "mountain")),
	}
}

// GetAllMountains handles GET /api/mountains (public)
func (h *MountainHandler) GetAllMountains(w http.ResponseWriter, r *http.Request) {
	mountains, err := h.service.GetAllMountains(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "fetch mountains", h.exposeErrors)
		return
	}

	utils.ResponseSuccess(w, "success", mountains)
}

// GetMountainByID handles GET /api/mountains/{id} (public)
func (h *MountainHandler) GetMountainByID(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.ParseID(chi.URLParam(r, "id"))
	if !ok {
		utils.ResponseBadRequest(w, "Invalid mountain ID", nil)
		return
	}

	mountain, err := h.service.GetMountainByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.log, err, "fetch mountain", h.exposeErrors)
		return
	}

	utils.ResponseSuccess(w, "success", response.MountainEnvelope{Mountain: *mountain})
}

// GetMountainsByDifficulty handles GET /api/mountains/difficulty/{level} (public)
func (h *MountainHandler) GetMountainsByDifficulty(w http.ResponseWriter, r *http.Request) {
	mountains, err := h.service.GetMountainsByDifficulty(r.Context(), chi.URLParam(r, "level"))
	if err != nil {
		writeServiceError(w, h.log, err, "fetch mountains", h.exposeErrors)
		return
	}

	utils.ResponseSuccess(w, "success", mountains)
}
