package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"poorito-booking/internal/data/entity"
	"poorito-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingRepository interface {
	Insert(ctx context.Context, booking *entity.Booking) (*entity.Booking, error)
	FindByID(ctx context.Context, id int64) (*entity.Booking, error)
	FindByOwnerAndID(ctx context.Context, userID, id int64) (*entity.Booking, error)
	FindConflicting(ctx context.Context, userID, mountainID int64, date time.Time) (*entity.Booking, error)
	ListByOwner(ctx context.Context, userID int64) ([]*entity.Booking, error)
	UpdateStatus(ctx context.Context, id int64, from, to entity.BookingStatus, at time.Time) (*entity.Booking, error)
	DeleteWhere(ctx context.Context, status entity.BookingStatus, cancelledBefore time.Time) (int64, error)
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

// bookingSelect reads a booking row aliased b joined with its mountain m; scanBooking matches the column order.
const bookingSelect = `
	SELECT b.id, b.user_id, b.mountain_id, b.booking_date, b.status, b.number_of_participants,
	       b.created_at, b.updated_at, b.cancelled_at,
	       m.id, m.name, m.location, m.difficulty, m.elevation, m.image_url
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*entity.Booking, error) {
	var b entity.Booking
	var m entity.MountainSummary

	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.MountainID,
		&b.BookingDate,
		&b.Status,
		&b.NumberOfParticipants,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.CancelledAt,
		&m.ID,
		&m.Name,
		&m.Location,
		&m.Difficulty,
		&m.Elevation,
		&m.ImageURL,
	)
	if err != nil {
		return nil, err
	}

	b.Mountain = &m
	return &b, nil
}

// Insert stores a booking and returns it with generated fields and the mountain projection in one round trip.
func (r *bookingRepository) Insert(ctx context.Context, booking *entity.Booking) (*entity.Booking, error) {
	query := `
		WITH b AS (
			INSERT INTO bookings (user_id, mountain_id, booking_date, status, number_of_participants)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING *
		)` + bookingSelect + `
		FROM b
		JOIN mountains m ON m.id = b.mountain_id
	`

	created, err := scanBooking(r.db.QueryRow(ctx, query,
		booking.UserID,
		booking.MountainID,
		booking.BookingDate,
		booking.Status,
		booking.NumberOfParticipants,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("insert booking for mountain %d: %w", booking.MountainID, ErrForeignKey)
		}
		r.log.Error("Failed to insert booking",
			zap.Error(err),
			zap.Int64("user_id", booking.UserID),
			zap.Int64("mountain_id", booking.MountainID),
		)
		return nil, fmt.Errorf("insert booking for user %d: %w", booking.UserID, err)
	}

	return created, nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id int64) (*entity.Booking, error) {
	query := bookingSelect + `
		FROM bookings b
		JOIN mountains m ON m.id = b.mountain_id
		WHERE b.id = $1
	`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID", zap.Error(err), zap.Int64("booking_id", id))
		return nil, fmt.Errorf("find booking by ID %d: %w", id, err)
	}

	return booking, nil
}

// FindByOwnerAndID returns nil when the booking does not exist or belongs to someone else.
func (r *bookingRepository) FindByOwnerAndID(ctx context.Context, userID, id int64) (*entity.Booking, error) {
	query := bookingSelect + `
		FROM bookings b
		JOIN mountains m ON m.id = b.mountain_id
		WHERE b.id = $1 AND b.user_id = $2
	`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by owner",
			zap.Error(err),
			zap.Int64("booking_id", id),
			zap.Int64("user_id", userID),
		)
		return nil, fmt.Errorf("find booking %d for user %d: %w", id, userID, err)
	}

	return booking, nil
}

// FindConflicting returns any booking for the triple, whatever its status.
func (r *bookingRepository) FindConflicting(ctx context.Context, userID, mountainID int64, date time.Time) (*entity.Booking, error) {
	query := bookingSelect + `
		FROM bookings b
		JOIN mountains m ON m.id = b.mountain_id
		WHERE b.user_id = $1 AND b.mountain_id = $2 AND b.booking_date = $3
		ORDER BY b.id DESC
		LIMIT 1
	`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, userID, mountainID, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to check conflicting booking",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.Int64("mountain_id", mountainID),
		)
		return nil, fmt.Errorf("find conflicting booking for user %d mountain %d: %w", userID, mountainID, err)
	}

	return booking, nil
}

func (r *bookingRepository) ListByOwner(ctx context.Context, userID int64) ([]*entity.Booking, error) {
	query := bookingSelect + `
		FROM bookings b
		JOIN mountains m ON m.id = b.mountain_id
		WHERE b.user_id = $1
		ORDER BY b.booking_date ASC, b.id ASC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to list bookings", zap.Error(err), zap.Int64("user_id", userID))
		return nil, fmt.Errorf("list bookings for user %d: %w", userID, err)
	}
	defer rows.Close()

	bookings := make([]*entity.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings: %w", err)
	}

	return bookings, nil
}

// UpdateStatus moves a booking from one status to another only if it is still in from.
// cancelled_at is set together with the cancelled status and cleared otherwise.
// Returns (nil, nil) when no row matched.
func (r *bookingRepository) UpdateStatus(ctx context.Context, id int64, from, to entity.BookingStatus, at time.Time) (*entity.Booking, error) {
	query := `
		WITH b AS (
			UPDATE bookings
			SET status = $3::text,
			    updated_at = $4,
			    cancelled_at = CASE WHEN $3::text = 'cancelled' THEN $4::timestamptz ELSE NULL END
			WHERE id = $1 AND status = $2
			RETURNING *
		)` + bookingSelect + `
		FROM b
		JOIN mountains m ON m.id = b.mountain_id
	`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id, from, to, at))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.Int64("booking_id", id),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		return nil, fmt.Errorf("update booking status %d: %w", id, err)
	}

	return booking, nil
}

// DeleteWhere removes every booking in status whose cancellation is older than cancelledBefore.
func (r *bookingRepository) DeleteWhere(ctx context.Context, status entity.BookingStatus, cancelledBefore time.Time) (int64, error) {
	query := `
		DELETE FROM bookings
		WHERE status = $1 AND cancelled_at < $2
	`

	result, err := r.db.Exec(ctx, query, status, cancelledBefore)
	if err != nil {
		r.log.Error("Failed to delete bookings",
			zap.Error(err),
			zap.String("status", string(status)),
			zap.Time("cancelled_before", cancelledBefore),
		)
		return 0, fmt.Errorf("delete %s bookings: %w", status, err)
	}

	return result.RowsAffected(), nil
}
