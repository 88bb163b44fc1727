package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"poorito-booking/internal/data/entity"
	"poorito-booking/internal/data/repository"
	"poorito-booking/internal/dto/request"
	"poorito-booking/internal/notification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2025, 10, 1, 9, 30, 0, 0, time.UTC)

func newBookingService(f *fixture) *bookingService {
	svc := NewBookingService(f.repo, f.sender, time.Second, zap.NewNop()).(*bookingService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func intPtr(n int) *int { return &n }

func createReq(mountainID int64, date string, participants *int) *request.CreateBookingRequest {
	return &request.CreateBookingRequest{MountainID: mountainID, BookingDate: date, NumberOfParticipants: participants}
}

func waitForConfirmation(t *testing.T, s *chanSender) notification.BookingConfirmation {
	t.Helper()
	select {
	case msg := <-s.sent:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("no booking confirmation sent")
		return notification.BookingConfirmation{}
	}
}

func TestCreateBooking(t *testing.T) {
	f := newFixture()
	svc := newBookingService(f)

	booking, err := svc.CreateBooking(context.Background(), 10, createReq(1, "2025-10-20", nil))
	require.NoError(t, err)

	assert.Positive(t, booking.ID)
	assert.Equal(t, int64(10), booking.UserID)
	assert.Equal(t, "2025-10-20", booking.BookingDate)
	assert.Equal(t, entity.BookingStatusConfirmed, booking.Status)
	assert.Equal(t, 1, booking.NumberOfParticipants)
	assert.Nil(t, booking.CancelledAt)
	require.NotNil(t, booking.Mountain)
	assert.Equal(t, "Rinjani", booking.Mountain.Name)
	assert.Equal(t, 3726, booking.Mountain.Elevation)

	msg := waitForConfirmation(t, f.sender)
	assert.Equal(t, "rani@example.com", msg.RecipientAddress)
	assert.Equal(t, "rani", msg.RecipientName)
	assert.Equal(t, booking.ID, msg.Booking.ID)
	assert.Equal(t, "2025-10-20", msg.Booking.BookingDate)
	assert.Equal(t, "confirmed", msg.Booking.Status)
	assert.Equal(t, "Lombok", msg.Mountain.Location)
}

func TestCreateBookingValidation(t *testing.T) {
	tests := []struct {
		description string
		req         *request.CreateBookingRequest
		field       string
	}{
		{"missing mountain", createReq(0, "2025-10-20", nil), "mountain_id"},
		{"missing date", createReq(1, "", nil), "booking_date"},
		{"malformed date", createReq(1, "20-10-2025", nil), "booking_date"},
		{"impossible date", createReq(1, "2025-02-30", nil), "booking_date"},
		{"zero participants", createReq(1, "2025-10-20", intPtr(0)), "number_of_participants"},
		{"too many participants", createReq(1, "2025-10-20", intPtr(21)), "number_of_participants"},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			f := newFixture()
			_, err := newBookingService(f).CreateBooking(context.Background(), 10, test.req)

			require.ErrorIs(t, err, ErrValidation)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Fields, test.field)

			list, _ := f.bookings.ListByOwner(context.Background(), 10)
			assert.Empty(t, list)
		})
	}
}

func TestCreateBookingParticipantBounds(t *testing.T) {
	f := newFixture()
	svc := newBookingService(f)

	low, err := svc.CreateBooking(context.Background(), 10, createReq(1, "2025-10-20", intPtr(1)))
	require.NoError(t, err)
	assert.Equal(t, 1, low.NumberOfParticipants)

	high, err := svc.CreateBooking(context.Background(), 10, createReq(2, "2025-10-20", intPtr(20)))
	require.NoError(t, err)
	assert.Equal(t, 20, high.NumberOfParticipants)
}

func TestCreateBookingMountainNotFound(t *testing.T) {
	f := newFixture()

	_, err := newBookingService(f).CreateBooking(context.Background(), 10, createReq(99, "2025-10-20", nil))
	require.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "Mountain not found")
}

func TestCreateBookingDuplicate(t *testing.T) {
	f := newFixture()
	svc := newBookingService(f)
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, 10, createReq(1, "2025-10-20", nil))
	require.NoError(t, err)

	_, err = svc.CreateBooking(ctx, 10, createReq(1, "2025-10-20", intPtr(4)))
	require.ErrorIs(t, err, ErrConflict)
	assert.EqualError(t, err, "You already have a booking for this mountain on this date")

	// a different user, mountain or date is not a conflict
	_, err = svc.CreateBooking(ctx, 20, createReq(1, "2025-10-20", nil))
	assert.NoError(t, err)
	_, err = svc.CreateBooking(ctx, 10, createReq(2, "2025-10-20", nil))
	assert.NoError(t, err)
	_, err = svc.CreateBooking(ctx, 10, createReq(1, "2025-10-21", nil))
	assert.NoError(t, err)
}

func TestCreateBookingUniqueViolationIsConflict(t *testing.T) {
	f := newFixture()
	svc := newBookingService(f)
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, 10, createReq(1, "2025-10-20", nil))
	require.NoError(t, err)

	f.bookings.ignoreConflicts = true
	_, err = svc.CreateBooking(ctx, 10, createReq(1, "2025-10-20", nil))
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, ErrDuplicateBooking, err)
}

func TestCreateBookingAfterCancelRejected(t *testing.T) {
	f := newFixture()
	svc := newBookingService(f)
	ctx := context.Background()

	first, err := svc.CreateBooking(ctx, 10, createReq(1, "2025-10-20", nil))
	require.NoError(t, err)
	_, err = svc.CancelBooking(ctx, 10, first.ID)
	require.NoError(t, err)

	_, err = svc.CreateBooking(ctx, 10, createReq(1, "2025-10-20", nil))
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, ErrDuplicateBooking, err)

	// another date is still free
	_, err = svc.CreateBooking(ctx, 10, createReq(1, "2025-10-21", nil))
	assert.NoError(t, err)
}

func TestCreateBookingMountainRemovedBeforeInsert(t *testing.T) {
	f := newFixture()
	f.bookings.insertErr = fmt.Errorf("insert booking for mountain 1: %w", repository.ErrForeignKey)
	svc := newBookingService(f)

	_, err := svc.CreateBooking(context.Background(), 10, createReq(1, "2025-10-20", nil))
	require.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "Mountain not found")
}

func TestCreateBookingSurvivesNotificationFailure(t *testing.T) {
	for _, mode := range []string{"error", "panic"} {
		t.Run(mode, func(t *testing.T) {
			f := newFixture()
			if mode == "error" {
				f.sender.err = errors.New("smtp unavailable")
			} else {
				f.sender.panicWith = "template exploded"
			}

			booking, err := newBookingService(f).CreateBooking(context.Background(), 10, createReq(1, "2025-10-20", nil))
			require.NoError(t, err)
			assert.Equal(t, entity.BookingStatusConfirmed, booking.Status)

			waitForConfirmation(t, f.sender)
		})
	}
}

func TestCreateBookingWithoutUserSkipsNotification(t *testing.T) {
	f := newFixture()

	_, err := newBookingService(f).CreateBooking(context.Background(), 77, createReq(1, "2025-10-20", nil))
	require.NoError(t, err)

	select {
	case <-f.sender.sent:
		t.Fatal("confirmation sent for unknown user")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCancelBooking(t *testing.T) {
	f := newFixture()
	svc := newBookingService(f)
	ctx := context.Background()

	created, err := svc.CreateBooking(ctx, 10, createReq(1, "2025-10-20", intPtr(2)))
	require.NoError(t, err)

	t.Run("not owner", func(t *testing.T) {
		_, err := svc.CancelBooking(ctx, 20, created.ID)
		require.ErrorIs(t, err, ErrNotFound)
		assert.EqualError(t, err, "Booking not found")
	})

	t.Run("missing", func(t *testing.T) {
		_, err := svc.CancelBooking(ctx, 10, 9999)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("cancels", func(t *testing.T) {
		cancelled, err := svc.CancelBooking(ctx, 10, created.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.BookingStatusCancelled, cancelled.Status)
		require.NotNil(t, cancelled.CancelledAt)
		assert.Equal(t, fixedNow, *cancelled.CancelledAt)
		assert.Equal(t, fixedNow, cancelled.UpdatedAt)
		assert.Equal(t, 2, cancelled.NumberOfParticipants)
		require.NotNil(t, cancelled.Mountain)
		assert.Equal(t, "Rinjani", cancelled.Mountain.Name)
	})

	t.Run("already cancelled", func(t *testing.T) {
		_, err := svc.CancelBooking(ctx, 10, created.ID)
		require.ErrorIs(t, err, ErrConflict)
		assert.EqualError(t, err, "Booking is already cancelled")
	})
}

func TestCancelCompletedBookingIsConflict(t *testing.T) {
	f := newFixture()
	svc := newBookingService(f)
	ctx := context.Background()

	created, err := svc.CreateBooking(ctx, 10, createReq(1, "2025-10-20", nil))
	require.NoError(t, err)
	f.bookings.set(created.ID, func(b *entity.Booking) { b.Status = entity.BookingStatusCompleted })

	_, err = svc.CancelBooking(ctx, 10, created.ID)
	require.ErrorIs(t, err, ErrConflict)

	stored, _ := f.bookings.FindByID(ctx, created.ID)
	assert.Equal(t, entity.BookingStatusCompleted, stored.Status)
	assert.Nil(t, stored.CancelledAt)
}

func TestGetUserBookings(t *testing.T) {
	f := newFixture()
	svc := newBookingService(f)
	ctx := context.Background()

	empty, err := svc.GetUserBookings(ctx, 10)
	require.NoError(t, err)
	assert.NotNil(t, empty.Bookings)
	assert.Empty(t, empty.Bookings)

	for _, req := range []*request.CreateBookingRequest{
		createReq(1, "2025-12-01", nil),
		createReq(2, "2025-10-20", nil),
		createReq(1, "2025-10-20", nil),
	} {
		_, err := svc.CreateBooking(ctx, 10, req)
		require.NoError(t, err)
	}
	_, err = svc.CreateBooking(ctx, 20, createReq(1, "2025-01-01", nil))
	require.NoError(t, err)

	list, err := svc.GetUserBookings(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list.Bookings, 3)

	assert.Equal(t, "2025-10-20", list.Bookings[0].BookingDate)
	assert.Equal(t, "2025-10-20", list.Bookings[1].BookingDate)
	assert.Less(t, list.Bookings[0].ID, list.Bookings[1].ID)
	assert.Equal(t, "2025-12-01", list.Bookings[2].BookingDate)
	for _, b := range list.Bookings {
		assert.Equal(t, int64(10), b.UserID)
		assert.NotNil(t, b.Mountain)
	}
}

func TestGetBookingByID(t *testing.T) {
	f := newFixture()
	svc := newBookingService(f)
	ctx := context.Background()

	created, err := svc.CreateBooking(ctx, 10, createReq(1, "2025-10-20", nil))
	require.NoError(t, err)

	got, err := svc.GetBookingByID(ctx, 10, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Rinjani", got.Mountain.Name)

	_, err = svc.GetBookingByID(ctx, 20, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetReceipt(t *testing.T) {
	f := newFixture()
	svc := newBookingService(f)
	ctx := context.Background()

	created, err := svc.CreateBooking(ctx, 10, createReq(1, "2025-10-20", intPtr(3)))
	require.NoError(t, err)

	receipt, err := svc.GetReceipt(ctx, 10, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReceiptNumber(created.ID), receipt.ReceiptNumber)
	assert.Equal(t, "POOR-000001", receipt.ReceiptNumber)
	assert.Equal(t, created.ID, receipt.BookingID)
	assert.Equal(t, fixedNow, receipt.IssuedDate)
	assert.Equal(t, "rani", receipt.User.Username)
	assert.Equal(t, "rani@example.com", receipt.User.Email)
	assert.Equal(t, "2025-10-20", receipt.Booking.BookingDate)
	assert.Equal(t, 3, receipt.Booking.NumberOfParticipants)
	assert.Equal(t, entity.BookingStatusConfirmed, receipt.Booking.Status)
	assert.Equal(t, "Lombok", receipt.Mountain.Location)

	_, err = svc.GetReceipt(ctx, 20, created.ID)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetReceiptMissingUser(t *testing.T) {
	f := newFixture()
	svc := newBookingService(f)
	ctx := context.Background()

	created, err := svc.CreateBooking(ctx, 77, createReq(1, "2025-10-20", nil))
	require.NoError(t, err)

	_, err = svc.GetReceipt(ctx, 77, created.ID)
	require.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "User not found")
}

// A user books, sees it listed, cancels, cannot cancel twice, and can rebook only after the purge.
func TestBookingLifecycle(t *testing.T) {
	f := newFixture()
	svc := newBookingService(f)
	ctx := context.Background()

	created, err := svc.CreateBooking(ctx, 10, createReq(1, "2025-10-20", intPtr(2)))
	require.NoError(t, err)
	waitForConfirmation(t, f.sender)

	list, err := svc.GetUserBookings(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list.Bookings, 1)

	_, err = svc.CancelBooking(ctx, 10, created.ID)
	require.NoError(t, err)
	_, err = svc.CancelBooking(ctx, 10, created.ID)
	require.ErrorIs(t, err, ErrConflict)

	cleanup := NewCleanupService(f.bookings, cleanupConfig(true), zap.NewNop()).(*cleanupService)

	cleanup.now = func() time.Time { return fixedNow.Add(6 * 24 * time.Hour) }
	deleted, err := cleanup.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	cleanup.now = func() time.Time { return fixedNow.Add(8 * 24 * time.Hour) }
	deleted, err = cleanup.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	list, err = svc.GetUserBookings(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, list.Bookings)

	_, err = svc.GetBookingByID(ctx, 10, created.ID)
	require.ErrorIs(t, err, ErrNotFound)

	// once purged the date can be booked again
	rebooked, err := svc.CreateBooking(ctx, 10, createReq(1, "2025-10-20", nil))
	require.NoError(t, err)
	assert.Greater(t, rebooked.ID, created.ID)
}
