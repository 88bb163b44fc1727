package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"poorito-booking/internal/data/entity"
	"poorito-booking/internal/data/repository"
	"poorito-booking/internal/notification"
)

// memBookingStore mirrors the Postgres store, including the partial unique index on live bookings.
type memBookingStore struct {
	mu        sync.Mutex
	nextID    int64
	rows      map[int64]*entity.Booking
	mountains *memMountainStore

	// ignoreConflicts makes FindConflicting report nothing, as a racing request would see.
	ignoreConflicts bool
	insertErr       error
	deleteErr       error
	deleteCalls     int
	lastCutoff      time.Time
}

func newMemBookingStore(mountains *memMountainStore) *memBookingStore {
	return &memBookingStore{rows: map[int64]*entity.Booking{}, mountains: mountains}
}

func cloneBooking(b *entity.Booking) *entity.Booking {
	c := *b
	if b.CancelledAt != nil {
		at := *b.CancelledAt
		c.CancelledAt = &at
	}
	if b.Mountain != nil {
		m := *b.Mountain
		c.Mountain = &m
	}
	return &c
}

func (s *memBookingStore) Insert(_ context.Context, booking *entity.Booking) (*entity.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return nil, s.insertErr
	}

	for _, b := range s.rows {
		if b.UserID == booking.UserID && b.MountainID == booking.MountainID &&
			b.BookingDate.Equal(booking.BookingDate) && b.Status != entity.BookingStatusCancelled {
			return nil, repository.ErrDuplicate
		}
	}

	s.nextID++
	row := cloneBooking(booking)
	row.ID = s.nextID
	row.CreatedAt = time.Now()
	row.UpdatedAt = row.CreatedAt
	if m := s.mountains.get(booking.MountainID); m != nil {
		row.Mountain = m.Summary()
	}
	s.rows[row.ID] = row
	return cloneBooking(row), nil
}

func (s *memBookingStore) FindByID(_ context.Context, id int64) (*entity.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.rows[id]; ok {
		return cloneBooking(b), nil
	}
	return nil, nil
}

func (s *memBookingStore) FindByOwnerAndID(_ context.Context, userID, id int64) (*entity.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.rows[id]; ok && b.UserID == userID {
		return cloneBooking(b), nil
	}
	return nil, nil
}

func (s *memBookingStore) FindConflicting(_ context.Context, userID, mountainID int64, date time.Time) (*entity.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ignoreConflicts {
		return nil, nil
	}
	for _, b := range s.rows {
		if b.UserID == userID && b.MountainID == mountainID && b.BookingDate.Equal(date) {
			return cloneBooking(b), nil
		}
	}
	return nil, nil
}

func (s *memBookingStore) ListByOwner(_ context.Context, userID int64) ([]*entity.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*entity.Booking, 0)
	for _, b := range s.rows {
		if b.UserID == userID {
			list = append(list, cloneBooking(b))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].BookingDate.Equal(list[j].BookingDate) {
			return list[i].BookingDate.Before(list[j].BookingDate)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (s *memBookingStore) UpdateStatus(_ context.Context, id int64, from, to entity.BookingStatus, at time.Time) (*entity.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.rows[id]
	if !ok || b.Status != from {
		return nil, nil
	}
	b.Status = to
	b.UpdatedAt = at
	b.CancelledAt = nil
	if to == entity.BookingStatusCancelled {
		cancelledAt := at
		b.CancelledAt = &cancelledAt
	}
	return cloneBooking(b), nil
}

func (s *memBookingStore) DeleteWhere(_ context.Context, status entity.BookingStatus, cancelledBefore time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls++
	s.lastCutoff = cancelledBefore
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	var n int64
	for id, b := range s.rows {
		if b.Status == status && b.CancelledAt != nil && b.CancelledAt.Before(cancelledBefore) {
			delete(s.rows, id)
			n++
		}
	}
	return n, nil
}

func (s *memBookingStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deleteCalls
}

// set overwrites a stored row, for arranging states the service cannot produce.
func (s *memBookingStore) set(id int64, mutate func(*entity.Booking)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutate(s.rows[id])
}

type memMountainStore struct {
	mountains map[int64]*entity.Mountain
}

func (s *memMountainStore) get(id int64) *entity.Mountain {
	if m, ok := s.mountains[id]; ok {
		c := *m
		return &c
	}
	return nil
}

func (s *memMountainStore) FindByID(_ context.Context, id int64) (*entity.Mountain, error) {
	return s.get(id), nil
}

func (s *memMountainStore) FindAll(context.Context) ([]*entity.Mountain, error) {
	list := make([]*entity.Mountain, 0, len(s.mountains))
	for id := range s.mountains {
		list = append(list, s.get(id))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

func (s *memMountainStore) FindByDifficulty(ctx context.Context, difficulty string) ([]*entity.Mountain, error) {
	all, _ := s.FindAll(ctx)
	list := make([]*entity.Mountain, 0)
	for _, m := range all {
		if strings.EqualFold(m.Difficulty, difficulty) {
			list = append(list, m)
		}
	}
	return list, nil
}

type memUserStore struct {
	users map[int64]*entity.User
}

func (s *memUserStore) FindByID(_ context.Context, id int64) (*entity.User, error) {
	if u, ok := s.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

// chanSender reports every confirmation on sent; err and panicWith control the outcome.
type chanSender struct {
	sent      chan notification.BookingConfirmation
	err       error
	panicWith any
}

func newChanSender() *chanSender {
	return &chanSender{sent: make(chan notification.BookingConfirmation, 8)}
}

func (s *chanSender) SendBookingConfirmation(_ context.Context, msg notification.BookingConfirmation) error {
	s.sent <- msg
	if s.panicWith != nil {
		panic(s.panicWith)
	}
	return s.err
}

type fixture struct {
	bookings  *memBookingStore
	mountains *memMountainStore
	users     *memUserStore
	sender    *chanSender
	repo      *repository.Repository
}

func newFixture() *fixture {
	image := "https://img.example/rinjani.jpg"
	mountains := &memMountainStore{mountains: map[int64]*entity.Mountain{
		1: {Base: entity.Base{ID: 1}, Name: "Rinjani", Elevation: 3726, Location: "Lombok", Difficulty: "Hard", ImageURL: &image},
		2: {Base: entity.Base{ID: 2}, Name: "Papandayan", Elevation: 2665, Location: "Garut", Difficulty: "Easy"},
	}}
	users := &memUserStore{users: map[int64]*entity.User{
		10: {Base: entity.Base{ID: 10}, Username: "rani", Email: "rani@example.com"},
		20: {Base: entity.Base{ID: 20}, Username: "budi", Email: "budi@example.com"},
	}}
	bookings := newMemBookingStore(mountains)

	return &fixture{
		bookings:  bookings,
		mountains: mountains,
		users:     users,
		sender:    newChanSender(),
		repo: &repository.Repository{
			Booking:  bookings,
			Mountain: mountains,
			User:     users,
		},
	}
}
