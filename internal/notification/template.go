package notification

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"poorito-booking/internal/data/entity"
)

//go:embed templates/*
var templateFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt"))
)

const (
	bookingDateLayout = "2006-01-02"
	longDateLayout    = "Monday, January 2, 2006"
)

// Message is a rendered email.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

type confirmationView struct {
	RecipientName   string
	ReceiptNumber   string
	BookingDate     string
	Status          string
	Participants    string
	Countdown       string
	MountainName    string
	Location        string
	Difficulty      string
	DifficultyClass string
	Elevation       int
	DashboardURL    string
}

// Renderer turns a BookingConfirmation into subject, text and HTML bodies.
type Renderer struct {
	frontendURL string
	now         func() time.Time
}

func NewRenderer(frontendURL string) *Renderer {
	return &Renderer{
		frontendURL: strings.TrimRight(frontendURL, "/"),
		now:         time.Now,
	}
}

func (r *Renderer) Render(msg BookingConfirmation) (*Message, error) {
	view, err := r.view(msg)
	if err != nil {
		return nil, err
	}

	var text, html bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&text, "booking_confirmation.txt", view); err != nil {
		return nil, fmt.Errorf("render text body: %w", err)
	}
	if err := htmlTemplates.ExecuteTemplate(&html, "booking_confirmation.html", view); err != nil {
		return nil, fmt.Errorf("render html body: %w", err)
	}

	return &Message{
		Subject: "Booking Confirmed: " + msg.Mountain.Name,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

func (r *Renderer) view(msg BookingConfirmation) (confirmationView, error) {
	date, err := time.Parse(bookingDateLayout, msg.Booking.BookingDate)
	if err != nil {
		return confirmationView{}, fmt.Errorf("parse booking date %q: %w", msg.Booking.BookingDate, err)
	}

	participants := msg.Booking.NumberOfParticipants
	if participants < 1 {
		participants = 1
	}

	return confirmationView{
		RecipientName:   msg.RecipientName,
		ReceiptNumber:   entity.ReceiptNumber(msg.Booking.ID),
		BookingDate:     date.Format(longDateLayout),
		Status:          strings.ToUpper(msg.Booking.Status),
		Participants:    ParticipantsText(participants),
		Countdown:       countdownText(DaysUntil(date, r.now())),
		MountainName:    msg.Mountain.Name,
		Location:        msg.Mountain.Location,
		Difficulty:      msg.Mountain.Difficulty,
		DifficultyClass: strings.ToLower(msg.Mountain.Difficulty),
		Elevation:       msg.Mountain.Elevation,
		DashboardURL:    r.frontendURL + "/dashboard",
	}, nil
}

// ParticipantsText renders a head count as "1 person" or "N people".
func ParticipantsText(n int) string {
	if n == 1 {
		return "1 person"
	}
	return fmt.Sprintf("%d people", n)
}

// DaysUntil counts calendar days from now's date to the booking date; past dates are negative.
func DaysUntil(bookingDate, now time.Time) int {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(bookingDate.Year(), bookingDate.Month(), bookingDate.Day(), 0, 0, 0, 0, time.UTC)
	return int(day.Sub(today).Hours() / 24)
}

func countdownText(days int) string {
	switch {
	case days <= 0:
		return ""
	case days == 1:
		return "1 day until your adventure!"
	default:
		return fmt.Sprintf("%d days until your adventure!", days)
	}
}
