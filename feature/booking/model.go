package booking

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Booking status values. Anything else coming from upstream normalizes to
// StatusConfirmed during sync.
const (
	StatusConfirmed  = "confirmed"
	StatusCheckedIn  = "checked_in"
	StatusCheckedOut = "checked_out"
	StatusCancelled  = "cancelled"
)

// KeyDelimiter separates the reservation ID from the room ID in composite
// booking keys. It is reserved and never appears inside either half.
const KeyDelimiter = "::"

// StringMap is a JSON-encoded string map stored in a text column. It holds
// the booking's descriptive field values keyed by the upstream field name.
type StringMap map[string]string

// Value implements driver.Valuer.
func (m StringMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *StringMap) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("unsupported type %T for StringMap", value)
	}
}

// Booking is a locally cached reservation, or one room's share of a
// multi-room reservation.
type Booking struct {
	ID         uint  `gorm:"primaryKey" json:"id"`
	PropertyID uint  `gorm:"not null;index;uniqueIndex:uq_booking_property_key" json:"property_id"`
	RoomID     *uint `gorm:"index" json:"room_id"`

	// BookingKey is the bare remote reservation ID, or
	// "{reservationID}::{roomID}" when the reservation spans rooms.
	// Unique per property.
	BookingKey string `gorm:"size:128;not null;uniqueIndex:uq_booking_property_key" json:"booking_key"`

	GuestName       *string `gorm:"size:255" json:"guest_name"`
	GuestPhoneLast4 *string `gorm:"size:4" json:"guest_phone_last4"`

	CheckInDate  time.Time `gorm:"not null" json:"check_in_date"`
	CheckOutDate time.Time `gorm:"not null" json:"check_out_date"`

	Status string `gorm:"size:16;not null;default:confirmed" json:"status"`

	// CustomData holds the descriptive field values extracted from the
	// upstream reservation, room-level values merged over reservation-level.
	CustomData StringMap `gorm:"type:text" json:"custom_data"`

	LastFetchedAt *time.Time `json:"last_fetched_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// BaseReservationID returns the remote reservation ID portion of a booking
// key: the part before the last delimiter, or the whole key if there is none.
func BaseReservationID(bookingKey string) string {
	if i := strings.LastIndex(bookingKey, KeyDelimiter); i >= 0 {
		return bookingKey[:i]
	}
	return bookingKey
}

// CompositeKey builds the booking key for one room of a multi-room
// reservation.
func CompositeKey(reservationID, roomID string) string {
	return reservationID + KeyDelimiter + roomID
}

// EventTitle returns the guest name, falling back to the booking key when no
// name is known.
func (b *Booking) EventTitle() string {
	if b.GuestName != nil && *b.GuestName != "" {
		return *b.GuestName
	}
	return b.BookingKey
}
