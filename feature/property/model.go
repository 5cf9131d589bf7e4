package property

import "time"

// Property is a bookable property synced from the remote PMS. It owns the
// rooms, bookings, and discovered fields attached to it.
type Property struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// RemoteID is the property identifier in the remote PMS.
	RemoteID string `gorm:"size:64;uniqueIndex;not null" json:"remote_id"`

	// Name is the display name used for the calendar feed title.
	Name string `gorm:"size:255;not null" json:"name"`

	// Slug is the URL-safe identifier for the property's feed and the
	// cache-invalidation prefix for all of its room feeds.
	Slug string `gorm:"size:100;uniqueIndex;not null" json:"slug"`

	// Timezone is the IANA timezone used to localize event times.
	Timezone string `gorm:"size:64;not null;default:UTC" json:"timezone"`

	Enabled     bool `gorm:"not null;default:true" json:"enabled"`
	SyncEnabled bool `gorm:"not null;default:true" json:"sync_enabled"`

	// LastSyncAt and LastSyncError record the outcome of the most recent
	// reconciliation run. A non-empty error marks the property unhealthy
	// in every status surface.
	LastSyncAt    *time.Time `json:"last_sync_at"`
	LastSyncError *string    `gorm:"type:text" json:"last_sync_error"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Rooms []Room `gorm:"constraint:OnDelete:CASCADE" json:"rooms,omitempty"`
}

// Room is a sub-unit of a property eligible for its own calendar feed.
type Room struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	PropertyID uint `gorm:"not null;index;uniqueIndex:uq_room_property_remote;uniqueIndex:uq_room_property_slug" json:"property_id"`

	// RemoteID is the room identifier in the remote PMS, unique per property.
	RemoteID string `gorm:"size:64;not null;uniqueIndex:uq_room_property_remote" json:"remote_id"`

	Name string `gorm:"size:255;not null" json:"name"`

	// Slug is the URL-safe identifier, unique per property.
	Slug string `gorm:"size:100;not null;uniqueIndex:uq_room_property_slug" json:"slug"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Healthy reports whether the property's last sync completed without error.
func (p *Property) Healthy() bool {
	return p.LastSyncError == nil || *p.LastSyncError == ""
}
