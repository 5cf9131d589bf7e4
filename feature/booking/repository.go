package booking

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// FeedWindowDays is how many days after checkout a booking still appears in
// calendar feeds, to cover recently departed guests.
const FeedWindowDays = 7

// Repository provides database access for bookings.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository bound to the given database handle,
// which may be a transaction.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByKey returns the booking with the given key within a property, or nil.
func (r *Repository) GetByKey(ctx context.Context, propertyID uint, bookingKey string) (*Booking, error) {
	var b Booking
	err := r.db.WithContext(ctx).
		Where("property_id = ? AND booking_key = ?", propertyID, bookingKey).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListForProperty returns every booking of a property ordered by check-in.
func (r *Repository) ListForProperty(ctx context.Context, propertyID uint) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("check_in_date").
		Find(&bookings).Error
	return bookings, err
}

// ListForFeed returns the bookings that belong in a calendar feed: active
// statuses only, with checkout in the future or within the feed window.
// A non-nil roomID restricts the result to one room's bookings.
func (r *Repository) ListForFeed(ctx context.Context, propertyID uint, roomID *uint) ([]Booking, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -FeedWindowDays)
	q := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Where("status IN ?", []string{StatusConfirmed, StatusCheckedIn, StatusCheckedOut}).
		Where("check_out_date >= ?", cutoff)
	if roomID != nil {
		q = q.Where("room_id = ?", *roomID)
	}

	var bookings []Booking
	err := q.Order("check_in_date").Find(&bookings).Error
	return bookings, err
}

// Upsert inserts the booking if no booking shares its (property, key) pair,
// otherwise updates all mutable fields of the existing row. It reports
// whether a new row was inserted.
func (r *Repository) Upsert(ctx context.Context, b *Booking) (bool, error) {
	existing, err := r.GetByKey(ctx, b.PropertyID, b.BookingKey)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	if existing == nil {
		b.LastFetchedAt = &now
		if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
			return false, err
		}
		return true, nil
	}

	existing.RoomID = b.RoomID
	existing.GuestName = b.GuestName
	existing.GuestPhoneLast4 = b.GuestPhoneLast4
	existing.CheckInDate = b.CheckInDate
	existing.CheckOutDate = b.CheckOutDate
	existing.Status = b.Status
	existing.CustomData = b.CustomData
	existing.LastFetchedAt = &now

	if err := r.db.WithContext(ctx).Save(existing).Error; err != nil {
		return false, err
	}
	*b = *existing
	return false, nil
}

// MarkCancelled soft-retires a booking.
func (r *Repository) MarkCancelled(ctx context.Context, b *Booking) error {
	b.Status = StatusCancelled
	return r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ?", b.ID).
		Update("status", StatusCancelled).Error
}

// PurgeCheckedOut hard-deletes bookings whose checkout is more than the
// given number of days in the past, regardless of status.
func (r *Repository) PurgeCheckedOut(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	res := r.db.WithContext(ctx).
		Where("check_out_date < ?", cutoff).
		Delete(&Booking{})
	return res.RowsAffected, res.Error
}

// PurgeCancelled hard-deletes cancelled bookings that have not been touched
// for the given number of days.
func (r *Repository) PurgeCancelled(ctx context.Context, days int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	res := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", StatusCancelled, cutoff).
		Delete(&Booking{})
	return res.RowsAffected, res.Error
}
