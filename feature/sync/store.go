package sync

import (
	"context"

	"rentalsync-bridge/feature/booking"
	"rentalsync-bridge/feature/fields"
	"rentalsync-bridge/feature/property"

	"gorm.io/gorm"
)

// Store is the persistence boundary of the reconciliation engine. The
// production implementation wraps the repositories inside one transaction;
// tests substitute an in-memory fake.
type Store interface {
	ListBookings(ctx context.Context, propertyID uint) ([]booking.Booking, error)
	UpsertBooking(ctx context.Context, b *booking.Booking) (wasInserted bool, err error)
	CancelBooking(ctx context.Context, b *booking.Booking) error
	ResolveRoom(ctx context.Context, propertyID uint, remoteRoomID string) (*property.Room, error)
	DiscoverFields(ctx context.Context, propertyID uint, reservation map[string]any) error
}

type gormStore struct {
	bookings   *booking.Repository
	properties *property.Repository
	fields     *fields.Repository
	seenFields map[string]struct{}
}

func newGormStore(tx *gorm.DB) *gormStore {
	return &gormStore{
		bookings:   booking.NewRepository(tx),
		properties: property.NewRepository(tx),
		fields:     fields.NewRepository(tx),
		seenFields: make(map[string]struct{}),
	}
}

func (s *gormStore) ListBookings(ctx context.Context, propertyID uint) ([]booking.Booking, error) {
	return s.bookings.ListForProperty(ctx, propertyID)
}

func (s *gormStore) UpsertBooking(ctx context.Context, b *booking.Booking) (bool, error) {
	return s.bookings.Upsert(ctx, b)
}

func (s *gormStore) CancelBooking(ctx context.Context, b *booking.Booking) error {
	return s.bookings.MarkCancelled(ctx, b)
}

func (s *gormStore) ResolveRoom(ctx context.Context, propertyID uint, remoteRoomID string) (*property.Room, error) {
	return s.properties.GetRoomByRemoteID(ctx, propertyID, remoteRoomID)
}

func (s *gormStore) DiscoverFields(ctx context.Context, propertyID uint, reservation map[string]any) error {
	_, err := s.fields.DiscoverFromReservation(ctx, propertyID, reservation, s.seenFields)
	return err
}
