package calendar

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"rentalsync-bridge/core/cache"
	"rentalsync-bridge/feature/booking"
	"rentalsync-bridge/feature/fields"
	"rentalsync-bridge/feature/property"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	prodID        = "-//RentalSync Bridge//rentalsync-bridge//EN"
	uidDomain     = "rentalsync-bridge"
	summaryMaxLen = 255
)

// Generator renders iCalendar feeds for properties and rooms, backed by the
// TTL cache. Concurrent misses for the same key collapse into one render via
// singleflight.
type Generator struct {
	cache  *cache.Cache
	group  singleflight.Group
	logger *zap.Logger
}

// NewGenerator wires the generator.
func NewGenerator(feedCache *cache.Cache, logger *zap.Logger) *Generator {
	return &Generator{cache: feedCache, logger: logger}
}

// Generate returns the iCalendar feed for a property, or for one of its
// rooms when roomSlug is non-empty. Cached output is returned verbatim;
// bookings and customFields only matter on a miss.
func (g *Generator) Generate(ctx context.Context, prop *property.Property, bookings []booking.Booking, customFields []fields.CustomField, roomSlug string) (string, error) {
	key := prop.Slug
	if roomSlug != "" {
		key = prop.Slug + "/" + roomSlug
	}

	if cached, ok := g.cache.Get(key); ok {
		return cached, nil
	}

	rendered, err, _ := g.group.Do(key, func() (any, error) {
		if cached, ok := g.cache.Get(key); ok {
			return cached, nil
		}
		feed := g.render(prop, bookings, customFields)
		g.cache.Set(key, feed)
		g.logger.Debug("rendered calendar feed", zap.String("cache_key", key))
		return feed, nil
	})
	if err != nil {
		return "", err
	}
	return rendered.(string), nil
}

func (g *Generator) render(prop *property.Property, bookings []booking.Booking, customFields []fields.CustomField) string {
	cal := ics.NewCalendar()
	cal.SetProductId(prodID)
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")
	cal.SetMethod(ics.MethodPublish)
	cal.SetXWRCalName(prop.Name)
	cal.SetXWRTimezone(prop.Timezone)

	loc := g.location(prop.Timezone)
	now := time.Now().UTC()

	for i := range bookings {
		g.addEvent(cal, &bookings[i], loc, customFields, now)
	}
	return cal.Serialize()
}

func (g *Generator) addEvent(cal *ics.Calendar, b *booking.Booking, loc *time.Location, customFields []fields.CustomField, now time.Time) {
	event := cal.AddEvent(eventUID(b))
	event.SetSummary(truncateSummary(b.EventTitle()))
	event.SetStartAt(inLocation(b.CheckInDate, loc))
	event.SetEndAt(inLocation(b.CheckOutDate, loc))

	if description := buildDescription(b, customFields); description != "" {
		event.SetDescription(description)
	}

	event.SetDtStampTime(now)
	event.SetCreatedTime(now)
	event.SetStatus(ics.ObjectStatusConfirmed)
	event.SetTimeTransparency(ics.TransparencyOpaque)
}

// buildDescription assembles the event body: the guest's phone tail, the
// property's enabled descriptive fields in sort order (skipping fields the
// booking has no value for), and the booking key for reference.
func buildDescription(b *booking.Booking, customFields []fields.CustomField) string {
	var lines []string

	if b.GuestPhoneLast4 != nil && *b.GuestPhoneLast4 != "" {
		lines = append(lines, fmt.Sprintf("Phone (last 4): %s", *b.GuestPhoneLast4))
	}

	for _, field := range customFields {
		if !field.Enabled {
			continue
		}
		if value := b.CustomData[field.FieldKey]; value != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", field.DisplayLabel, value))
		}
	}

	lines = append(lines, fmt.Sprintf("Booking ID: %s", b.BookingKey))
	return strings.Join(lines, "\n")
}

// eventUID derives a stable event UID from the booking's identity, so feed
// consumers see updates rather than duplicate events.
func eventUID(b *booking.Booking) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d-%s", b.PropertyID, b.BookingKey)))
	return hex.EncodeToString(sum[:])[:16] + "@" + uidDomain
}

func truncateSummary(summary string) string {
	runes := []rune(summary)
	if len(runes) <= summaryMaxLen {
		return summary
	}
	return string(runes[:summaryMaxLen-3]) + "..."
}

// location resolves the property's IANA timezone, falling back to UTC when
// it does not resolve.
func (g *Generator) location(tz string) *time.Location {
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		g.logger.Warn("invalid property timezone, using UTC", zap.String("timezone", tz))
		return time.UTC
	}
	return loc
}

// inLocation reinterprets a UTC-parsed stay boundary as local wall time in
// the property's timezone.
func inLocation(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}
