package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"poorito-booking/internal/data/entity"
	"poorito-booking/internal/data/repository"
	"poorito-booking/internal/dto/request"
	"poorito-booking/internal/dto/response"
	"poorito-booking/internal/notification"
	"poorito-booking/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type BookingService interface {
	CreateBooking(ctx context.Context, userID int64, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, userID, bookingID int64) (*response.BookingResponse, error)
	GetUserBookings(ctx context.Context, userID int64) (*response.BookingListResponse, error)
	GetBookingByID(ctx context.Context, userID, bookingID int64) (*response.BookingResponse, error)
	GetReceipt(ctx context.Context, userID, bookingID int64) (*response.ReceiptResponse, error)
}

type bookingService struct {
	repo          *repository.Repository
	notifier      notification.Sender
	notifyTimeout time.Duration
	log           *zap.Logger
	now           func() time.Time
}

func NewBookingService(repo *repository.Repository, notifier notification.Sender, notifyTimeout time.Duration, log *zap.Logger) BookingService {
	if notifyTimeout <= 0 {
		notifyTimeout = 30 * time.Second
	}
	return &bookingService{
		repo:          repo,
		notifier:      notifier,
		notifyTimeout: notifyTimeout,
		log:           log.With(zap.String("service", "booking")),
		now:           time.Now,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, userID int64, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	// 1. Validate
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, &ValidationError{Fields: errs}
	}

	bookingDate, err := time.Parse(response.DateLayout, req.BookingDate)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"booking_date": "Must be a date in YYYY-MM-DD format"}}
	}

	// 2. Mountain lookup and duplicate check run together; both finish before the insert
	var (
		mountain *entity.Mountain
		existing *entity.Booking
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.repo.Mountain.FindByID(gctx, req.MountainID)
		mountain = m
		return err
	})
	g.Go(func() error {
		b, err := s.repo.Booking.FindConflicting(gctx, userID, req.MountainID, bookingDate)
		existing = b
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("prepare booking for user %d: %w", userID, err)
	}

	if mountain == nil {
		return nil, ErrMountainNotFound
	}
	if existing != nil {
		s.log.Info("Duplicate booking rejected",
			zap.Int64("user_id", userID),
			zap.Int64("mountain_id", req.MountainID),
			zap.Int64("existing_booking_id", existing.ID))
		return nil, ErrDuplicateBooking
	}

	// 3. Insert
	created, err := s.repo.Booking.Insert(ctx, &entity.Booking{
		UserID:               userID,
		MountainID:           req.MountainID,
		BookingDate:          bookingDate,
		Status:               entity.BookingStatusConfirmed,
		NumberOfParticipants: req.Participants(),
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrDuplicateBooking
	}
	if errors.Is(err, repository.ErrForeignKey) {
		// the lookup may have been served from cache after the mountain was removed
		s.log.Warn("Mountain vanished before insert", zap.Int64("mountain_id", req.MountainID))
		return nil, ErrMountainNotFound
	}
	if err != nil {
		return nil, err
	}
	if created.Mountain == nil {
		created.Mountain = mountain.Summary()
	}

	s.log.Info("Booking created",
		zap.Int64("booking_id", created.ID),
		zap.Int64("user_id", userID),
		zap.Int64("mountain_id", created.MountainID))

	// 4. Confirmation is detached from the request
	go s.sendConfirmation(created)

	resp := response.BookingToResponse(created)
	return &resp, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, userID, bookingID int64) (*response.BookingResponse, error) {
	booking, err := s.repo.Booking.FindByOwnerAndID(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	if booking.Status == entity.BookingStatusCancelled {
		return nil, ErrAlreadyCancelled
	}
	if !booking.Status.CanTransitionTo(entity.BookingStatusCancelled) {
		return nil, ErrBookingNotActive
	}

	updated, err := s.repo.Booking.UpdateStatus(ctx, booking.ID, booking.Status, entity.BookingStatusCancelled, s.now())
	if err != nil {
		return nil, err
	}
	if updated == nil {
		// status changed between the read and the guarded update
		s.log.Warn("Cancel lost race", zap.Int64("booking_id", bookingID))
		return nil, ErrBookingNotActive
	}

	s.log.Info("Booking cancelled", zap.Int64("booking_id", bookingID), zap.Int64("user_id", userID))

	resp := response.BookingToResponse(updated)
	return &resp, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID int64) (*response.BookingListResponse, error) {
	bookings, err := s.repo.Booking.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := response.BookingsToResponse(bookings)
	return &resp, nil
}

func (s *bookingService) GetBookingByID(ctx context.Context, userID, bookingID int64) (*response.BookingResponse, error) {
	booking, err := s.repo.Booking.FindByOwnerAndID(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) GetReceipt(ctx context.Context, userID, bookingID int64) (*response.ReceiptResponse, error) {
	booking, err := s.repo.Booking.FindByOwnerAndID(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}

	user, err := s.repo.User.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	receipt := response.BuildReceipt(booking, user, s.now())
	return &receipt, nil
}

// sendConfirmation runs outside the request; every failure stops here.
func (s *bookingService) sendConfirmation(booking *entity.Booking) {
	log := s.log.With(zap.Int64("booking_id", booking.ID))
	defer func() {
		if r := recover(); r != nil {
			log.Error("Booking confirmation panicked", zap.Any("panic", r), zap.Stack("stack"))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
	defer cancel()

	user, err := s.repo.User.FindByID(ctx, booking.UserID)
	if err != nil {
		log.Error("Failed to load user for booking confirmation", zap.Error(err))
		return
	}
	if user == nil || booking.Mountain == nil {
		log.Warn("Skipping booking confirmation, user or mountain missing")
		return
	}

	msg := notification.BookingConfirmation{
		RecipientAddress: user.Email,
		RecipientName:    user.Username,
		Booking: notification.BookingDetails{
			ID:                   booking.ID,
			BookingDate:          booking.BookingDate.Format(response.DateLayout),
			Status:               string(booking.Status),
			NumberOfParticipants: booking.NumberOfParticipants,
		},
		Mountain: notification.MountainDetails{
			Name:       booking.Mountain.Name,
			Location:   booking.Mountain.Location,
			Difficulty: booking.Mountain.Difficulty,
			Elevation:  booking.Mountain.Elevation,
		},
	}

	if err := s.notifier.SendBookingConfirmation(ctx, msg); err != nil {
		log.Error("Failed to send booking confirmation", zap.Error(err), zap.String("recipient", user.Email))
	}
}
