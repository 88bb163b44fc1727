package entity

type Mountain struct {
	Base
	Name        string  `db:"name"`
	Elevation   int     `db:"elevation"`
	Location    string  `db:"location"`
	Difficulty  string  `db:"difficulty"`
	Description *string `db:"description"`
	ImageURL    *string `db:"image_url"`
}

// MountainSummary is the projection attached to bookings, receipts and notifications.
type MountainSummary struct {
	ID         int64
	Name       string
	Location   string
	Difficulty string
	Elevation  int
	ImageURL   *string
}

func (m *Mountain) Summary() *MountainSummary {
	return &MountainSummary{
		ID:         m.ID,
		Name:       m.Name,
		Location:   m.Location,
		Difficulty: m.Difficulty,
		Elevation:  m.Elevation,
		ImageURL:   m.ImageURL,
	}
}
