package sync

import (
	"strings"
	"time"

	"rentalsync-bridge/core/utils"
	"rentalsync-bridge/feature/booking"
	"rentalsync-bridge/feature/cloudbeds"
	"rentalsync-bridge/feature/fields"
)

// dateLayouts are tried in order. All values are treated as UTC; the
// upstream API sends naive timestamps.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// reservationData is the interpreted form of one raw reservation record.
type reservationData struct {
	guestName  *string
	phoneLast4 *string
	checkIn    time.Time
	checkOut   time.Time
	datesValid bool
	status     string

	// roomIDs in first-seen order; empty when the reservation carries no
	// room association at all.
	roomIDs []string
	// roomData maps remote room ID to that room's raw record.
	roomData map[string]map[string]any

	// baseCustomData holds reservation-level descriptive fields; room-level
	// values are merged over it per booking.
	baseCustomData booking.StringMap
}

// remoteReservationID returns the reservation's remote ID, preferring "id"
// over "reservationID". Empty means the record is unusable.
func remoteReservationID(reservation map[string]any) string {
	for _, key := range []string{"id", "reservationID"} {
		if v, ok := reservation[key]; ok && v != nil {
			if s := utils.ToString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// extractReservation interprets a raw reservation record. It never fails;
// unusable parts degrade to zero values and datesValid reports whether the
// stay window parsed.
func extractReservation(reservation map[string]any) reservationData {
	data := reservationData{
		status:   normalizeStatus(utils.ToString(reservation["status"])),
		roomIDs:  extractRoomIDs(reservation),
		roomData: roomDataByID(reservation),
	}

	if name := extractGuestName(reservation); name != "" {
		data.guestName = &name
	}
	if last4 := extractPhoneLast4(reservation); last4 != "" {
		data.phoneLast4 = &last4
	}

	checkIn, inOK := parseDate(stringValue(reservation["startDate"]))
	checkOut, outOK := parseDate(stringValue(reservation["endDate"]))
	data.checkIn, data.checkOut = checkIn, checkOut
	data.datesValid = inOK && outOK

	data.baseCustomData = extractCustomData(reservation, data.phoneLast4)
	return data
}

// parseDate tries the known layouts and reports whether one matched.
func parseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeStatus maps unknown upstream statuses to confirmed so a renamed
// remote status never hides a stay.
func normalizeStatus(status string) string {
	switch s := strings.ToLower(status); s {
	case booking.StatusConfirmed, booking.StatusCheckedIn, booking.StatusCheckedOut, booking.StatusCancelled:
		return s
	default:
		return booking.StatusConfirmed
	}
}

func extractGuestName(reservation map[string]any) string {
	if name := stringValue(reservation["guestName"]); name != "" {
		return name
	}
	first := stringValue(reservation["guestFirstName"])
	last := stringValue(reservation["guestLastName"])
	return strings.TrimSpace(first + " " + last)
}

// extractPhoneLast4 reads the primary guest's phone from the guest detail
// map, which is keyed by guest ID. Falls back to any guest when the primary
// is absent. Mobile number wins over the generic one.
func extractPhoneLast4(reservation map[string]any) string {
	guestList, ok := reservation["guestList"].(map[string]any)
	if !ok || len(guestList) == 0 {
		return ""
	}

	var guest map[string]any
	if primaryID := stringValue(reservation["guestID"]); primaryID != "" {
		guest, _ = guestList[primaryID].(map[string]any)
	}
	if guest == nil {
		for _, v := range guestList {
			if g, ok := v.(map[string]any); ok {
				guest = g
				break
			}
		}
	}
	if guest == nil {
		return ""
	}

	phone := stringValue(guest["guestCellPhone"])
	if phone == "" {
		phone = stringValue(guest["guestPhone"])
	}
	return cloudbeds.ExtractPhoneLast4(phone)
}

// extractRoomIDs returns the reservation's room IDs. The nested rooms array
// is authoritative; duplicates keep their first position. Only when the
// array yields nothing does the top-level roomID/roomId fallback apply.
func extractRoomIDs(reservation map[string]any) []string {
	var ids []string
	seen := make(map[string]struct{})

	if rooms, ok := reservation["rooms"].([]any); ok {
		for _, entry := range rooms {
			room, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			id := roomRecordID(room)
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	if len(ids) == 0 {
		if id := roomRecordID(reservation); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// roomDataByID indexes the nested rooms array by remote room ID for
// per-booking merging.
func roomDataByID(reservation map[string]any) map[string]map[string]any {
	byID := make(map[string]map[string]any)
	rooms, ok := reservation["rooms"].([]any)
	if !ok {
		return byID
	}
	for _, entry := range rooms {
		room, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if id := roomRecordID(room); id != "" {
			byID[id] = room
		}
	}
	return byID
}

func roomRecordID(record map[string]any) string {
	for _, key := range []string{"roomID", "roomId"} {
		if v, ok := record[key]; ok && v != nil {
			if s := utils.ToString(v); s != "" {
				return s
			}
		}
	}
	return ""
}

// extractCustomData collects scalar descriptive fields from a reservation
// record, stringified, minus excluded keys. The computed phone field is
// appended when available.
func extractCustomData(reservation map[string]any, phoneLast4 *string) booking.StringMap {
	data := make(booking.StringMap)
	for key, value := range reservation {
		if !keepCustomValue(key, value) {
			continue
		}
		data[key] = utils.ToString(value)
	}
	if phoneLast4 != nil && *phoneLast4 != "" {
		data["guest_phone_last4"] = *phoneLast4
	}
	return data
}

// mergeRoomData overlays room-level descriptive fields on the reservation's
// base data. Room values win on conflict.
func mergeRoomData(base booking.StringMap, roomData map[string]any) booking.StringMap {
	merged := make(booking.StringMap, len(base)+len(roomData))
	for k, v := range base {
		merged[k] = v
	}
	for key, value := range roomData {
		if !keepCustomValue(key, value) {
			continue
		}
		merged[key] = utils.ToString(value)
	}
	return merged
}

// keepCustomValue applies the descriptive-field filter: scalar, non-empty,
// and not an excluded identifier key. The key policy is shared with field
// discovery so configuration and booking data always agree.
func keepCustomValue(key string, value any) bool {
	if value == nil {
		return false
	}
	switch value.(type) {
	case map[string]any, []any, []map[string]any:
		return false
	}
	if fields.ShouldExclude(key) {
		return false
	}
	return utils.ToString(value) != ""
}

func stringValue(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return utils.ToString(v)
}
