package calendar

import (
	"context"
	"errors"
	"fmt"

	"rentalsync-bridge/feature/booking"
	"rentalsync-bridge/feature/fields"
	"rentalsync-bridge/feature/property"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotFound marks a feed request for an unknown or disabled property or
// room.
var ErrNotFound = errors.New("calendar feed not found")

// Service resolves feed requests: slug lookup, booking selection, and
// rendering through the generator.
type Service struct {
	db        *gorm.DB
	generator *Generator
	logger    *zap.Logger
}

// NewService wires the feed service.
func NewService(db *gorm.DB, generator *Generator, logger *zap.Logger) *Service {
	return &Service{db: db, generator: generator, logger: logger}
}

// Feed renders the calendar for a property slug, scoped to one room when
// roomSlug is non-empty. Disabled properties are indistinguishable from
// missing ones.
func (s *Service) Feed(ctx context.Context, slug, roomSlug string) (string, error) {
	props := property.NewRepository(s.db)

	prop, err := props.GetBySlug(ctx, slug)
	if err != nil {
		return "", fmt.Errorf("lookup property %s: %w", slug, err)
	}
	if prop == nil || !prop.Enabled {
		return "", ErrNotFound
	}

	var roomID *uint
	if roomSlug != "" {
		room, err := props.GetRoomBySlug(ctx, prop.ID, roomSlug)
		if err != nil {
			return "", fmt.Errorf("lookup room %s/%s: %w", slug, roomSlug, err)
		}
		if room == nil {
			return "", ErrNotFound
		}
		roomID = &room.ID
	}

	bookings, err := booking.NewRepository(s.db).ListForFeed(ctx, prop.ID, roomID)
	if err != nil {
		return "", fmt.Errorf("list feed bookings: %w", err)
	}

	customFields, err := fields.NewRepository(s.db).ListEnabledCustomFields(ctx, prop.ID)
	if err != nil {
		return "", fmt.Errorf("list custom fields: %w", err)
	}

	return s.generator.Generate(ctx, prop, bookings, customFields, roomSlug)
}
