package repository

import (
	"time"

	"poorito-booking/pkg/database"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Repository struct {
	Booking  BookingRepository
	Mountain MountainRepository
	User     UserRepository
}

// NewRepository builds the stores. A nil rdb leaves mountain lookups uncached.
func NewRepository(db database.PgxIface, rdb *redis.Client, mountainTTL time.Duration, log *zap.Logger) *Repository {
	var mountains MountainRepository = NewMountainRepository(db, log)
	if rdb != nil {
		mountains = NewCachedMountainRepository(mountains, rdb, mountainTTL, log)
	}

	return &Repository{
		Booking:  NewBookingRepository(db, log),
		Mountain: mountains,
		User:     NewUserRepository(db, log),
	}
}
