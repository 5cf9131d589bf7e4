package sync

import (
	"testing"
	"time"

	"rentalsync-bridge/feature/booking"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Time
		ok    bool
	}{
		{"Date Only", "2026-03-15", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"T Separator", "2026-03-15T14:30:00", time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC), true},
		{"Space Separator", "2026-03-15 14:30:00", time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC), true},
		{"Garbage", "not-a-date", time.Time{}, false},
		{"Empty", "", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseDate(tt.value)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, got.Equal(tt.want))
			}
		})
	}
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, booking.StatusCheckedIn, normalizeStatus("Checked_In"))
	assert.Equal(t, booking.StatusCancelled, normalizeStatus("cancelled"))
	assert.Equal(t, booking.StatusConfirmed, normalizeStatus("not_a_status"))
	assert.Equal(t, booking.StatusConfirmed, normalizeStatus(""))
}

func TestExtractRoomIDs(t *testing.T) {
	t.Run("Nested Rooms Deduplicated In Order", func(t *testing.T) {
		ids := extractRoomIDs(map[string]any{
			"roomID": "top", // ignored when the array yields rooms
			"rooms": []any{
				map[string]any{"roomID": "R2"},
				map[string]any{"roomId": "R1"},
				map[string]any{"roomID": "R2"},
			},
		})
		assert.Equal(t, []string{"R2", "R1"}, ids)
	})

	t.Run("Top Level Fallback", func(t *testing.T) {
		ids := extractRoomIDs(map[string]any{"roomId": "R9"})
		assert.Equal(t, []string{"R9"}, ids)
	})

	t.Run("No Rooms", func(t *testing.T) {
		assert.Empty(t, extractRoomIDs(map[string]any{"guestName": "Ada"}))
	})
}

func TestExtractCustomData(t *testing.T) {
	last4 := "4567"
	data := extractCustomData(map[string]any{
		"guestName":     "Ada",
		"paid":          true,
		"reservationId": "R1",
		"id":            "1",
		"_internal":     "x",
		"balance":       12.5,
		"nested":        map[string]any{"a": 1},
		"empty":         "",
	}, &last4)

	assert.Equal(t, booking.StringMap{
		"guestName":         "Ada",
		"paid":              "true",
		"balance":           "12.5",
		"guest_phone_last4": "4567",
	}, data)
}

func TestMergeRoomData_RoomWins(t *testing.T) {
	base := booking.StringMap{"roomTypeName": "Standard", "guestName": "Ada"}
	merged := mergeRoomData(base, map[string]any{
		"roomTypeName": "Suite",
		"roomID":       "R1", // excluded key never merged
	})

	assert.Equal(t, "Suite", merged["roomTypeName"])
	assert.Equal(t, "Ada", merged["guestName"])
	assert.NotContains(t, merged, "roomID")
	// Base map untouched.
	assert.Equal(t, "Standard", base["roomTypeName"])
}

func TestExtractReservation_GuestName(t *testing.T) {
	t.Run("Direct Name", func(t *testing.T) {
		data := extractReservation(map[string]any{"guestName": "Ada Byron"})
		require.NotNil(t, data.guestName)
		assert.Equal(t, "Ada Byron", *data.guestName)
	})

	t.Run("First Last Fallback", func(t *testing.T) {
		data := extractReservation(map[string]any{
			"guestFirstName": "Ada",
			"guestLastName":  "Byron",
		})
		require.NotNil(t, data.guestName)
		assert.Equal(t, "Ada Byron", *data.guestName)
	})

	t.Run("No Name", func(t *testing.T) {
		data := extractReservation(map[string]any{})
		assert.Nil(t, data.guestName)
	})
}

func TestExtractReservation_PhoneFromGuestList(t *testing.T) {
	t.Run("Primary Guest Preferred", func(t *testing.T) {
		data := extractReservation(map[string]any{
			"guestID": "G1",
			"guestList": map[string]any{
				"G1": map[string]any{"guestCellPhone": "555-111-2222"},
				"G2": map[string]any{"guestPhone": "555-999-8888"},
			},
		})
		require.NotNil(t, data.phoneLast4)
		assert.Equal(t, "2222", *data.phoneLast4)
	})

	t.Run("Cell Phone Wins Over Generic", func(t *testing.T) {
		data := extractReservation(map[string]any{
			"guestID": "G1",
			"guestList": map[string]any{
				"G1": map[string]any{
					"guestPhone":     "555-000-1111",
					"guestCellPhone": "555-000-2222",
				},
			},
		})
		require.NotNil(t, data.phoneLast4)
		assert.Equal(t, "2222", *data.phoneLast4)
	})

	t.Run("No Guest List", func(t *testing.T) {
		data := extractReservation(map[string]any{"guestName": "Ada"})
		assert.Nil(t, data.phoneLast4)
	})
}

func TestExtractReservation_Dates(t *testing.T) {
	valid := extractReservation(map[string]any{
		"startDate": "2026-03-15",
		"endDate":   "2026-03-18",
	})
	assert.True(t, valid.datesValid)

	invalid := extractReservation(map[string]any{
		"startDate": "2026-03-15",
		"endDate":   "whenever",
	})
	assert.False(t, invalid.datesValid)
}
