package scheduler

import (
	"context"
	"testing"
	"time"

	"rentalsync-bridge/feature/booking"
	"rentalsync-bridge/feature/sync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeSyncer struct{}

func (fakeSyncer) SyncAll(_ context.Context) (sync.Counts, error) {
	return sync.Counts{}, nil
}

func testScheduler(t *testing.T, intervalMinutes int) *Scheduler {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&booking.Booking{}))

	s := New(db, fakeSyncer{}, Config{SyncIntervalMinutes: intervalMinutes}, zap.NewNop())
	t.Cleanup(s.Stop)
	return s
}

func TestNew_ClampsInterval(t *testing.T) {
	assert.Equal(t, MinSyncIntervalMinutes, testScheduler(t, 0).SyncIntervalMinutes())
	assert.Equal(t, MaxSyncIntervalMinutes, testScheduler(t, 1000).SyncIntervalMinutes())
	assert.Equal(t, 5, testScheduler(t, 5).SyncIntervalMinutes())
}

func TestStartStop(t *testing.T) {
	s := testScheduler(t, 5)
	assert.False(t, s.IsRunning())

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())

	// Start is idempotent.
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())

	s.Stop()
	assert.False(t, s.IsRunning())
}

func TestUpdateSyncInterval(t *testing.T) {
	s := testScheduler(t, 5)

	// Rejected while stopped.
	assert.False(t, s.UpdateSyncInterval(10))

	require.NoError(t, s.Start())

	assert.False(t, s.UpdateSyncInterval(0), "below minimum")
	assert.False(t, s.UpdateSyncInterval(61), "above maximum")
	assert.False(t, s.UpdateSyncInterval(5), "unchanged")
	assert.Equal(t, 5, s.SyncIntervalMinutes())

	assert.True(t, s.UpdateSyncInterval(10))
	assert.Equal(t, 10, s.SyncIntervalMinutes())
	assert.True(t, s.IsRunning(), "reschedule must not restart the scheduler")
}

func TestRunPurge(t *testing.T) {
	s := testScheduler(t, 5)

	old := time.Now().UTC().AddDate(0, 0, -120)
	recent := time.Now().UTC().AddDate(0, 0, -2)

	seed := []booking.Booking{
		{PropertyID: 1, BookingKey: "old-out", Status: booking.StatusCheckedOut, CheckInDate: old, CheckOutDate: old},
		{PropertyID: 1, BookingKey: "new-out", Status: booking.StatusCheckedOut, CheckInDate: recent, CheckOutDate: recent},
		{PropertyID: 1, BookingKey: "old-cxl", Status: booking.StatusCancelled, CheckInDate: recent, CheckOutDate: recent},
		{PropertyID: 1, BookingKey: "new-cxl", Status: booking.StatusCancelled, CheckInDate: recent, CheckOutDate: recent},
	}
	for i := range seed {
		require.NoError(t, s.db.Create(&seed[i]).Error)
	}
	// Backdate the stale cancellation; Create stamps updated_at with now.
	require.NoError(t, s.db.Model(&booking.Booking{}).
		Where("booking_key = ?", "old-cxl").
		UpdateColumn("updated_at", old).Error)

	s.runPurge()

	var remaining []booking.Booking
	require.NoError(t, s.db.Find(&remaining).Error)
	keys := make([]string, 0, len(remaining))
	for _, b := range remaining {
		keys = append(keys, b.BookingKey)
	}
	assert.ElementsMatch(t, []string{"new-out", "new-cxl"}, keys)
}
