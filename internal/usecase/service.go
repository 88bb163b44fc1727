package usecase

import (
	"poorito-booking/internal/data/repository"
	"poorito-booking/internal/notification"
	"poorito-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Booking  BookingService
	Mountain MountainService
	Cleanup  CleanupService
}

func NewService(repo *repository.Repository, notifier notification.Sender, config *utils.Config, log *zap.Logger) *Service {
	return &Service{
		Booking:  NewBookingService(repo, notifier, config.Notification.Timeout, log),
		Mountain: NewMountainService(repo.Mountain, log),
		Cleanup:  NewCleanupService(repo.Booking, config.Booking, log),
	}
}
