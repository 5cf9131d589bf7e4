package sync

import (
	"context"

	"rentalsync-bridge/feature/booking"
	"rentalsync-bridge/feature/property"

	"go.uber.org/zap"
)

// Counts summarizes one reconciliation run.
type Counts struct {
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Cancelled int `json:"cancelled"`
}

// Total returns the number of bookings a run changed.
func (c Counts) Total() int {
	return c.Inserted + c.Updated + c.Cancelled
}

type engine struct {
	store  Store
	logger *zap.Logger
}

// reconcile applies one remote reservation batch to the property's local
// bookings: upserts present reservations (one booking per room) and cancels
// bookings that disappeared from the batch. It mutates persistent state only
// through the store, so the caller decides the transaction boundary.
func (e *engine) reconcile(ctx context.Context, prop *property.Property, reservations []map[string]any) (Counts, error) {
	var counts Counts

	seenReservationIDs := make(map[string]struct{})
	seenBookingKeys := make(map[string]struct{})
	fieldsDiscovered := false

	for _, reservation := range reservations {
		remoteID := remoteReservationID(reservation)
		if remoteID == "" {
			e.logger.Warn("skipping reservation with no ID",
				zap.String("property_slug", prop.Slug))
			continue
		}
		seenReservationIDs[remoteID] = struct{}{}

		// Sibling reservations share a schema; one record is enough to learn
		// the property's fields.
		if !fieldsDiscovered {
			if err := e.store.DiscoverFields(ctx, prop.ID, reservation); err != nil {
				return counts, err
			}
			fieldsDiscovered = true
		}

		data := extractReservation(reservation)
		if !data.datesValid {
			e.logger.Warn("skipping reservation with invalid dates",
				zap.String("property_slug", prop.Slug),
				zap.String("reservation_id", remoteID))
			continue
		}

		if err := e.applyReservation(ctx, prop, remoteID, data, seenBookingKeys, &counts); err != nil {
			return counts, err
		}
	}

	if err := e.cancelDisappeared(ctx, prop, seenReservationIDs, seenBookingKeys, &counts); err != nil {
		return counts, err
	}
	return counts, nil
}

// applyReservation upserts the bookings for one reservation. A reservation
// without rooms yields a single booking keyed by the bare reservation ID;
// one with rooms yields a booking per room under a composite key, whose
// descriptive data is the room record merged over the reservation's.
func (e *engine) applyReservation(ctx context.Context, prop *property.Property, remoteID string, data reservationData, seenBookingKeys map[string]struct{}, counts *Counts) error {
	if len(data.roomIDs) == 0 {
		seenBookingKeys[remoteID] = struct{}{}
		return e.upsert(ctx, prop, remoteID, nil, data, data.baseCustomData, counts)
	}

	for _, remoteRoomID := range data.roomIDs {
		key := booking.CompositeKey(remoteID, remoteRoomID)
		seenBookingKeys[key] = struct{}{}

		room, err := e.store.ResolveRoom(ctx, prop.ID, remoteRoomID)
		if err != nil {
			return err
		}
		var roomID *uint
		if room != nil {
			roomID = &room.ID
		} else {
			// The booking still syncs; it just cannot appear in a per-room
			// feed until the room is registered.
			e.logger.Warn("room not registered for booking",
				zap.String("property_slug", prop.Slug),
				zap.String("reservation_id", remoteID),
				zap.String("remote_room_id", remoteRoomID))
		}

		customData := mergeRoomData(data.baseCustomData, data.roomData[remoteRoomID])
		if err := e.upsert(ctx, prop, key, roomID, data, customData, counts); err != nil {
			return err
		}
	}
	return nil
}

func (e *engine) upsert(ctx context.Context, prop *property.Property, key string, roomID *uint, data reservationData, customData booking.StringMap, counts *Counts) error {
	if len(customData) == 0 {
		customData = nil
	}
	b := &booking.Booking{
		PropertyID:      prop.ID,
		RoomID:          roomID,
		BookingKey:      key,
		GuestName:       data.guestName,
		GuestPhoneLast4: data.phoneLast4,
		CheckInDate:     data.checkIn,
		CheckOutDate:    data.checkOut,
		Status:          data.status,
		CustomData:      customData,
	}

	wasInserted, err := e.store.UpsertBooking(ctx, b)
	if err != nil {
		return err
	}
	if wasInserted {
		counts.Inserted++
	} else {
		counts.Updated++
	}
	return nil
}

// cancelDisappeared marks bookings cancelled when the batch no longer
// contains them. A booking survives on an exact key match; a base-ID match
// alone means the reservation still exists but its room shape changed, so
// the stale booking is cancelled and its replacement was upserted above.
func (e *engine) cancelDisappeared(ctx context.Context, prop *property.Property, seenReservationIDs, seenBookingKeys map[string]struct{}, counts *Counts) error {
	existing, err := e.store.ListBookings(ctx, prop.ID)
	if err != nil {
		return err
	}

	for i := range existing {
		b := &existing[i]
		if b.Status == booking.StatusCancelled {
			continue
		}
		if _, ok := seenBookingKeys[b.BookingKey]; ok {
			continue
		}

		if _, ok := seenReservationIDs[booking.BaseReservationID(b.BookingKey)]; ok {
			e.logger.Debug("cancelling booking after room shape change",
				zap.String("property_slug", prop.Slug),
				zap.String("booking_key", b.BookingKey))
		}
		if err := e.store.CancelBooking(ctx, b); err != nil {
			return err
		}
		counts.Cancelled++
	}
	return nil
}
