package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"poorito-booking/internal/data/entity"
	"poorito-booking/internal/data/repository"
	"poorito-booking/pkg/utils"

	"go.uber.org/zap"
)

// CleanupService purges cancelled bookings older than the retention window.
type CleanupService interface {
	RunOnce(ctx context.Context) (int64, error)
	Start(ctx context.Context)
	Stop()
}

type cleanupService struct {
	repo   repository.BookingRepository
	config utils.BookingConfig
	log    *zap.Logger
	now    func() time.Time

	running atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewCleanupService(repo repository.BookingRepository, config utils.BookingConfig, log *zap.Logger) CleanupService {
	return &cleanupService{
		repo:   repo,
		config: config,
		log:    log.With(zap.String("service", "booking_cleanup")),
		now:    time.Now,
	}
}

// RunOnce deletes cancelled bookings whose cancellation is older than the retention window.
// A call made while another run is in progress does nothing.
func (s *cleanupService) RunOnce(ctx context.Context) (int64, error) {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Info("Cleanup already running, skipping")
		return 0, nil
	}
	defer s.running.Store(false)

	retention := time.Duration(s.config.RetentionDays) * 24 * time.Hour
	cutoff := s.now().Add(-retention)

	deleted, err := s.repo.DeleteWhere(ctx, entity.BookingStatusCancelled, cutoff)
	if err != nil {
		return 0, err
	}

	if deleted == 0 {
		s.log.Info("No old cancelled bookings to clean up", zap.Time("cutoff", cutoff))
	} else {
		s.log.Info("Cleaned up old cancelled bookings",
			zap.Int64("deleted", deleted),
			zap.Int("retention_days", s.config.RetentionDays),
			zap.Time("cutoff", cutoff))
	}

	return deleted, nil
}

// Start runs the first cleanup after the startup delay, then on every interval, until ctx ends or Stop is called.
func (s *cleanupService) Start(ctx context.Context) {
	if !s.config.CleanupEnabled {
		s.log.Info("Booking cleanup disabled")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	s.log.Info("Booking cleanup scheduled",
		zap.Duration("startup_delay", s.config.StartupDelay),
		zap.Duration("interval", s.config.CleanupEvery),
		zap.Int("retention_days", s.config.RetentionDays))

	go s.loop(loopCtx, s.done)
}

func (s *cleanupService) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	timer := time.NewTimer(s.config.StartupDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
		s.tick(ctx)
	}

	interval := s.config.CleanupEvery
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *cleanupService) tick(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
		s.log.Error("Booking cleanup failed", zap.Error(err))
	}
}

// Stop cancels the schedule and waits for an in-flight run to return.
func (s *cleanupService) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.log.Info("Booking cleanup stopped")
}
