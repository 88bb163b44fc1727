package wire

import (
	"poorito-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireMountain(r chi.Router, mountainHandler *adaptor.MountainHandler) {
	// Public catalog
	r.Route("/api/mountains", func(r chi.Router) {
		r.Get("/", mountainHandler.GetAllMountains)
		r.Get("/difficulty/{level}", mountainHandler.GetMountainsByDifficulty)
		r.Get("/{id}", mountainHandler.GetMountainByID)
	})
}
