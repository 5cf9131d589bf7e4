package calendar

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"rentalsync-bridge/core/cache"
	"rentalsync-bridge/feature/booking"
	"rentalsync-bridge/feature/fields"
	"rentalsync-bridge/feature/property"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testGenerator() *Generator {
	return NewGenerator(cache.New(time.Minute), zap.NewNop())
}

func feedProperty() *property.Property {
	return &property.Property{
		ID:       1,
		Name:     "Seaside Cottage",
		Slug:     "seaside-cottage",
		Timezone: "America/Denver",
		Enabled:  true,
	}
}

func feedBooking(key string) booking.Booking {
	name := "Ada Byron"
	last4 := "4567"
	return booking.Booking{
		PropertyID:      1,
		BookingKey:      key,
		GuestName:       &name,
		GuestPhoneLast4: &last4,
		CheckInDate:     time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		CheckOutDate:    time.Date(2026, 3, 18, 0, 0, 0, 0, time.UTC),
		Status:          booking.StatusConfirmed,
		CustomData:      booking.StringMap{"roomTypeName": "Suite", "total": "350.00"},
	}
}

func TestGenerate_CalendarStructure(t *testing.T) {
	g := testGenerator()
	feed, err := g.Generate(context.Background(), feedProperty(), []booking.Booking{feedBooking("R1")}, nil, "")
	require.NoError(t, err)

	assert.Contains(t, feed, "BEGIN:VCALENDAR")
	assert.Contains(t, feed, "VERSION:2.0")
	assert.Contains(t, feed, "PRODID:-//RentalSync Bridge//rentalsync-bridge//EN")
	assert.Contains(t, feed, "CALSCALE:GREGORIAN")
	assert.Contains(t, feed, "METHOD:PUBLISH")
	assert.Contains(t, feed, "X-WR-CALNAME:Seaside Cottage")
	assert.Contains(t, feed, "X-WR-TIMEZONE:America/Denver")
	assert.Contains(t, feed, "BEGIN:VEVENT")
	assert.Contains(t, feed, "STATUS:CONFIRMED")
	assert.Contains(t, feed, "TRANSP:OPAQUE")
	assert.Contains(t, feed, "SUMMARY:Ada Byron")
	assert.Contains(t, feed, "END:VCALENDAR")
}

func TestGenerate_EventPerBooking(t *testing.T) {
	g := testGenerator()
	feed, err := g.Generate(context.Background(), feedProperty(),
		[]booking.Booking{feedBooking("R1"), feedBooking("R2::A")}, nil, "")
	require.NoError(t, err)

	assert.Equal(t, 2, strings.Count(feed, "BEGIN:VEVENT"))
}

func TestGenerate_StableUID(t *testing.T) {
	g := testGenerator()
	feed, err := g.Generate(context.Background(), feedProperty(), []booking.Booking{feedBooking("R1::A")}, nil, "")
	require.NoError(t, err)

	sum := sha256.Sum256([]byte("1-R1::A"))
	wantUID := hex.EncodeToString(sum[:])[:16] + "@rentalsync-bridge"
	assert.Contains(t, feed, "UID:"+wantUID)
}

func TestGenerate_Description(t *testing.T) {
	g := testGenerator()
	customFields := []fields.CustomField{
		{FieldKey: "roomTypeName", DisplayLabel: "Room Type", Enabled: true, SortOrder: 1},
		{FieldKey: "total", DisplayLabel: "Total", Enabled: false, SortOrder: 2},
		{FieldKey: "notes", DisplayLabel: "Notes", Enabled: true, SortOrder: 3},
	}

	feed, err := g.Generate(context.Background(), feedProperty(), []booking.Booking{feedBooking("R1")}, customFields, "")
	require.NoError(t, err)

	assert.Contains(t, feed, "Phone (last 4): 4567")
	assert.Contains(t, feed, "Room Type: Suite")
	assert.Contains(t, feed, "Booking ID: R1")
	// Disabled field and field without a booking value stay out.
	assert.NotContains(t, feed, "Total: 350.00")
	assert.NotContains(t, feed, "Notes:")
}

func TestBuildDescription_Order(t *testing.T) {
	b := feedBooking("R1")
	customFields := []fields.CustomField{
		{FieldKey: "roomTypeName", DisplayLabel: "Room Type", Enabled: true},
	}

	description := buildDescription(&b, customFields)
	lines := strings.Split(description, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Phone (last 4): 4567", lines[0])
	assert.Equal(t, "Room Type: Suite", lines[1])
	assert.Equal(t, "Booking ID: R1", lines[2])
}

func TestTruncateSummary(t *testing.T) {
	long := strings.Repeat("x", 300)
	truncated := truncateSummary(long)
	assert.Len(t, truncated, summaryMaxLen)
	assert.True(t, strings.HasSuffix(truncated, "..."))

	assert.Equal(t, "short", truncateSummary("short"))

	// Limits count characters, not bytes: a 200-character multibyte name
	// is well under the cap and must survive intact.
	multibyte := strings.Repeat("é", 200)
	assert.Equal(t, multibyte, truncateSummary(multibyte))

	clipped := truncateSummary(strings.Repeat("é", 300))
	assert.Equal(t, summaryMaxLen, len([]rune(clipped)))
	assert.True(t, utf8.ValidString(clipped))
	assert.True(t, strings.HasSuffix(clipped, "..."))
}

func TestGenerate_SummaryFallsBackToBookingKey(t *testing.T) {
	g := testGenerator()
	b := feedBooking("R9")
	b.GuestName = nil

	feed, err := g.Generate(context.Background(), feedProperty(), []booking.Booking{b}, nil, "")
	require.NoError(t, err)
	assert.Contains(t, feed, "SUMMARY:R9")
}

func TestGenerate_CacheHitReturnsVerbatim(t *testing.T) {
	feedCache := cache.New(time.Minute)
	g := NewGenerator(feedCache, zap.NewNop())
	prop := feedProperty()

	feedCache.Set("seaside-cottage", "CACHED FEED")
	feed, err := g.Generate(context.Background(), prop, []booking.Booking{feedBooking("R1")}, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "CACHED FEED", feed)

	// Room-scoped requests use their own key.
	feedCache.Set("seaside-cottage/room-a", "ROOM FEED")
	feed, err = g.Generate(context.Background(), prop, nil, nil, "room-a")
	require.NoError(t, err)
	assert.Equal(t, "ROOM FEED", feed)
}

func TestGenerate_CachesRenderedFeed(t *testing.T) {
	feedCache := cache.New(time.Minute)
	g := NewGenerator(feedCache, zap.NewNop())
	prop := feedProperty()

	first, err := g.Generate(context.Background(), prop, []booking.Booking{feedBooking("R1")}, nil, "")
	require.NoError(t, err)

	// A second call with different bookings still serves the cached feed.
	second, err := g.Generate(context.Background(), prop, nil, nil, "")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerate_InvalidTimezoneFallsBack(t *testing.T) {
	g := testGenerator()
	prop := feedProperty()
	prop.Timezone = "Not/AZone"

	feed, err := g.Generate(context.Background(), prop, []booking.Booking{feedBooking("R1")}, nil, "")
	require.NoError(t, err)
	assert.Contains(t, feed, "BEGIN:VEVENT")
}
