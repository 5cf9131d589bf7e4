package property

import (
	"context"
	"errors"
	"time"

	"rentalsync-bridge/feature/booking"

	"gorm.io/gorm"
)

// Repository provides database access for properties and rooms.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository bound to the given database handle,
// which may be a transaction.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all properties with their rooms.
func (r *Repository) List(ctx context.Context) ([]Property, error) {
	var props []Property
	err := r.db.WithContext(ctx).Preload("Rooms").Order("name").Find(&props).Error
	return props, err
}

// ListSyncEligible returns properties that are enabled and have sync enabled.
func (r *Repository) ListSyncEligible(ctx context.Context) ([]Property, error) {
	var props []Property
	err := r.db.WithContext(ctx).
		Where("enabled = ? AND sync_enabled = ?", true, true).
		Order("id").
		Find(&props).Error
	return props, err
}

// GetByID returns the property with the given primary key, or nil.
func (r *Repository) GetByID(ctx context.Context, id uint) (*Property, error) {
	var prop Property
	err := r.db.WithContext(ctx).Preload("Rooms").First(&prop, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &prop, nil
}

// GetBySlug returns the property with the given slug, or nil.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (*Property, error) {
	var prop Property
	err := r.db.WithContext(ctx).Preload("Rooms").Where("slug = ?", slug).First(&prop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &prop, nil
}

// Create inserts a new property.
func (r *Repository) Create(ctx context.Context, prop *Property) error {
	return r.db.WithContext(ctx).Create(prop).Error
}

// Save persists all fields of an existing property.
func (r *Repository) Save(ctx context.Context, prop *Property) error {
	return r.db.WithContext(ctx).Save(prop).Error
}

// Delete removes a property and, via foreign keys, its rooms.
func (r *Repository) Delete(ctx context.Context, prop *Property) error {
	return r.db.WithContext(ctx).Delete(prop).Error
}

// GetRoomByRemoteID returns the room with the given remote identifier
// within a property, or nil if the room is not locally known.
func (r *Repository) GetRoomByRemoteID(ctx context.Context, propertyID uint, remoteID string) (*Room, error) {
	var room Room
	err := r.db.WithContext(ctx).
		Where("property_id = ? AND remote_id = ?", propertyID, remoteID).
		First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetRoomBySlug returns the room with the given slug within a property, or nil.
func (r *Repository) GetRoomBySlug(ctx context.Context, propertyID uint, slug string) (*Room, error) {
	var room Room
	err := r.db.WithContext(ctx).
		Where("property_id = ? AND slug = ?", propertyID, slug).
		First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// CreateRoom inserts a new room.
func (r *Repository) CreateRoom(ctx context.Context, room *Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

// DeleteRoom removes a room. Bookings referencing it keep existing with a
// null room reference; they are never deleted alongside their room.
func (r *Repository) DeleteRoom(ctx context.Context, room *Room) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// UpdateColumn so clearing the reference does not reset the
		// bookings' staleness clock used by retention purges.
		if err := tx.Model(&booking.Booking{}).
			Where("room_id = ?", room.ID).
			UpdateColumn("room_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(room).Error
	})
}

// RecordSyncOutcome persists the result of a sync run. A nil errMsg marks
// the run successful and clears any previous error.
func (r *Repository) RecordSyncOutcome(ctx context.Context, propertyID uint, errMsg *string) error {
	return r.db.WithContext(ctx).
		Model(&Property{}).
		Where("id = ?", propertyID).
		Updates(map[string]any{
			"last_sync_at":    time.Now().UTC(),
			"last_sync_error": errMsg,
		}).Error
}
