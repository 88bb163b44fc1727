package response

import (
	"time"

	"poorito-booking/internal/data/entity"
)

// MountainSummary is the mountain projection embedded in bookings and receipts.
type MountainSummary struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Location   string  `json:"location"`
	Difficulty string  `json:"difficulty"`
	Elevation  int     `json:"elevation"`
	ImageURL   *string `json:"image_url"`
}

type MountainResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Elevation   int       `json:"elevation"`
	Location    string    `json:"location"`
	Difficulty  string    `json:"difficulty"`
	Description *string   `json:"description"`
	ImageURL    *string   `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type MountainEnvelope struct {
	Mountain MountainResponse `json:"mountain"`
}

type MountainListResponse struct {
	Mountains []MountainResponse `json:"mountains"`
}

func MountainSummaryToResponse(m *entity.MountainSummary) *MountainSummary {
	if m == nil {
		return nil
	}
	return &MountainSummary{
		ID:         m.ID,
		Name:       m.Name,
		Location:   m.Location,
		Difficulty: m.Difficulty,
		Elevation:  m.Elevation,
		ImageURL:   m.ImageURL,
	}
}

func MountainToResponse(m *entity.Mountain) MountainResponse {
	return MountainResponse{
		ID:          m.ID,
		Name:        m.Name,
		Elevation:   m.Elevation,
		Location:    m.Location,
		Difficulty:  m.Difficulty,
		Description: m.Description,
		ImageURL:    m.ImageURL,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func MountainsToResponse(mountains []*entity.Mountain) MountainListResponse {
	list := make([]MountainResponse, 0, len(mountains))
	for _, m := range mountains {
		list = append(list, MountainToResponse(m))
	}
	return MountainListResponse{Mountains: list}
}
