package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"rentalsync-bridge/core/cache"
	"rentalsync-bridge/feature/booking"
	"rentalsync-bridge/feature/credential"
	"rentalsync-bridge/feature/fields"
	"rentalsync-bridge/feature/property"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeFetcher struct {
	reservations []map[string]any
	err          error
	calls        int
}

func (f *fakeFetcher) FetchReservations(_ context.Context, _, _ string) ([]map[string]any, error) {
	f.calls++
	return f.reservations, f.err
}

type fakeTokens struct {
	token string
	err   error
}

func (f *fakeTokens) EnsureFresh(_ context.Context, _ *credential.Credential) (string, error) {
	return f.token, f.err
}

func serviceDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&property.Property{}, &property.Room{},
		&booking.Booking{},
		&fields.AvailableField{}, &fields.CustomField{},
	))
	return db
}

func seedProperty(t *testing.T, db *gorm.DB) *property.Property {
	t.Helper()
	prop := &property.Property{
		RemoteID:    "P1",
		Name:        "Seaside Cottage",
		Slug:        "seaside-cottage",
		Timezone:    "UTC",
		Enabled:     true,
		SyncEnabled: true,
	}
	require.NoError(t, db.Create(prop).Error)
	return prop
}

func TestSyncProperty_Success(t *testing.T) {
	db := serviceDB(t)
	prop := seedProperty(t, db)
	feedCache := cache.New(time.Minute)
	feedCache.Set("seaside-cottage", "stale calendar")
	feedCache.Set("other-prop", "unrelated")

	fetcher := &fakeFetcher{reservations: []map[string]any{{
		"reservationID": "R1",
		"guestName":     "Ada Byron",
		"startDate":     "2026-03-15",
		"endDate":       "2026-03-18",
		"status":        "confirmed",
	}}}

	svc := NewService(db, feedCache, fetcher, &fakeTokens{token: "tok"}, zap.NewNop())
	counts, err := svc.SyncProperty(context.Background(), prop, &credential.Credential{})
	require.NoError(t, err)
	assert.Equal(t, Counts{Inserted: 1}, counts)

	stored, err := booking.NewRepository(db).GetByKey(context.Background(), prop.ID, "R1")
	require.NoError(t, err)
	require.NotNil(t, stored)

	// Discovery ran alongside the reconcile.
	discovered, err := fields.NewRepository(db).ListForProperty(context.Background(), prop.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, discovered)

	// Sync status recorded, stale cache dropped, unrelated entry kept.
	refreshed, err := property.NewRepository(db).GetByID(context.Background(), prop.ID)
	require.NoError(t, err)
	assert.NotNil(t, refreshed.LastSyncAt)
	assert.Nil(t, refreshed.LastSyncError)

	_, hit := feedCache.Get("seaside-cottage")
	assert.False(t, hit)
	_, hit = feedCache.Get("other-prop")
	assert.True(t, hit)
}

func TestSyncProperty_NoChangesKeepsCache(t *testing.T) {
	db := serviceDB(t)
	prop := seedProperty(t, db)
	feedCache := cache.New(time.Minute)

	fetcher := &fakeFetcher{}
	svc := NewService(db, feedCache, fetcher, &fakeTokens{token: "tok"}, zap.NewNop())

	// An empty remote batch against an empty local table changes nothing.
	feedCache.Set("seaside-cottage", "calendar")
	counts, err := svc.SyncProperty(context.Background(), prop, &credential.Credential{})
	require.NoError(t, err)
	assert.Equal(t, Counts{}, counts)

	_, hit := feedCache.Get("seaside-cottage")
	assert.True(t, hit)
}

func TestSyncProperty_DisabledSkips(t *testing.T) {
	db := serviceDB(t)
	prop := seedProperty(t, db)
	prop.SyncEnabled = false
	require.NoError(t, db.Save(prop).Error)

	fetcher := &fakeFetcher{}
	svc := NewService(db, cache.New(time.Minute), fetcher, &fakeTokens{token: "tok"}, zap.NewNop())

	counts, err := svc.SyncProperty(context.Background(), prop, &credential.Credential{})
	require.NoError(t, err)
	assert.Equal(t, Counts{}, counts)
	assert.Zero(t, fetcher.calls)
}

func TestSyncProperty_RemoteFailurePersistsError(t *testing.T) {
	db := serviceDB(t)
	prop := seedProperty(t, db)

	fetcher := &fakeFetcher{err: errors.New("remote down")}
	svc := NewService(db, cache.New(time.Minute), fetcher, &fakeTokens{token: "tok"}, zap.NewNop())

	_, err := svc.SyncProperty(context.Background(), prop, &credential.Credential{})
	var syncErr *SyncError
	require.ErrorAs(t, err, &syncErr)

	refreshed, err := property.NewRepository(db).GetByID(context.Background(), prop.ID)
	require.NoError(t, err)
	require.NotNil(t, refreshed.LastSyncError)
	assert.Contains(t, *refreshed.LastSyncError, "remote down")
	assert.NotNil(t, refreshed.LastSyncAt)
}

func TestSyncProperty_CredentialFailure(t *testing.T) {
	db := serviceDB(t)
	prop := seedProperty(t, db)

	svc := NewService(db, cache.New(time.Minute), &fakeFetcher{},
		&fakeTokens{err: &credential.CredentialError{Reason: "no credential configured"}}, zap.NewNop())

	_, err := svc.SyncProperty(context.Background(), prop, nil)
	var syncErr *SyncError
	require.ErrorAs(t, err, &syncErr)
	var credErr *credential.CredentialError
	assert.ErrorAs(t, err, &credErr)
}

func TestSyncAll(t *testing.T) {
	db := serviceDB(t)
	seedProperty(t, db)
	require.NoError(t, db.AutoMigrate(&credential.Credential{}))

	t.Run("No Credential Skips Run", func(t *testing.T) {
		fetcher := &fakeFetcher{}
		svc := NewService(db, cache.New(time.Minute), fetcher, &fakeTokens{token: "tok"}, zap.NewNop())
		counts, err := svc.SyncAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, Counts{}, counts)
		assert.Zero(t, fetcher.calls)
	})

	t.Run("Syncs Eligible Properties", func(t *testing.T) {
		require.NoError(t, db.Create(&credential.Credential{ClientID: "c"}).Error)

		fetcher := &fakeFetcher{reservations: []map[string]any{{
			"reservationID": "R1",
			"startDate":     "2026-03-15",
			"endDate":       "2026-03-18",
		}}}
		svc := NewService(db, cache.New(time.Minute), fetcher, &fakeTokens{token: "tok"}, zap.NewNop())

		counts, err := svc.SyncAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, Counts{Inserted: 1}, counts)
		assert.Equal(t, 1, fetcher.calls)
	})
}
