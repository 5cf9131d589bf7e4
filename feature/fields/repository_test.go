package fields

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&AvailableField{}, &CustomField{}))
	return db
}

func TestDiscoverFromReservation_FiltersCandidates(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	reservation := map[string]any{
		"reservationId": "R1",        // identifier suffix
		"roomID":        "RM1",       // identifier suffix
		"id":            "42",        // exact id
		"_source":       "api",       // internal
		"guestName":     "Ada Byron", // kept
		"paid":          true,        // kept, lowercase suffix
		"empty":         "",          // empty value
		"nested":        map[string]any{"a": 1},
		"list":          []any{"a"},
	}

	seen := make(map[string]struct{})
	discovered, err := repo.DiscoverFromReservation(ctx, 1, reservation, seen)
	require.NoError(t, err)

	keys := make([]string, 0, len(discovered))
	for _, f := range discovered {
		keys = append(keys, f.FieldKey)
	}
	assert.ElementsMatch(t, []string{"guestName", "paid"}, keys)
	assert.Contains(t, seen, "guestName")
	assert.Contains(t, seen, "paid")
	assert.NotContains(t, seen, "reservationId")
}

func TestDiscoverFromReservation_InspectsFirstRoomOnly(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	reservation := map[string]any{
		"guestName": "Ada",
		"rooms": []any{
			map[string]any{"roomTypeName": "Suite"},
			map[string]any{"secondRoomField": "ignored"},
		},
	}

	discovered, err := repo.DiscoverFromReservation(ctx, 1, reservation, nil)
	require.NoError(t, err)

	keys := make([]string, 0, len(discovered))
	for _, f := range discovered {
		keys = append(keys, f.FieldKey)
	}
	assert.ElementsMatch(t, []string{"guestName", "roomTypeName"}, keys)
}

func TestDiscoverFromReservation_SamplePreserved(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	_, err := repo.DiscoverFromReservation(ctx, 1, map[string]any{"cancelled": "false"}, nil)
	require.NoError(t, err)

	// A later, different value must not overwrite the recorded sample.
	_, err = repo.DiscoverFromReservation(ctx, 1, map[string]any{"cancelled": "true"}, nil)
	require.NoError(t, err)

	all, err := repo.ListForProperty(ctx, 1)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].SampleValue)
	assert.Equal(t, "false", *all[0].SampleValue)
}

func TestDiscoverFromReservation_SampleBackfill(t *testing.T) {
	db := testDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Create(&AvailableField{
		PropertyID:  1,
		FieldKey:    "notes",
		DisplayName: "Notes",
	}).Error)

	_, err := repo.DiscoverFromReservation(ctx, 1, map[string]any{"notes": "late arrival"}, nil)
	require.NoError(t, err)

	all, err := repo.ListForProperty(ctx, 1)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].SampleValue)
	assert.Equal(t, "late arrival", *all[0].SampleValue)
}

func TestDiscoverFromReservation_SeenSkipsWork(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	seen := map[string]struct{}{"guestName": {}}
	discovered, err := repo.DiscoverFromReservation(ctx, 1, map[string]any{"guestName": "Ada"}, seen)
	require.NoError(t, err)
	assert.Empty(t, discovered)
}

func TestAllFieldKeys(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	_, err := repo.DiscoverFromReservation(ctx, 1, map[string]any{"customTag": "vip"}, nil)
	require.NoError(t, err)

	keys, err := repo.AllFieldKeys(ctx, 1)
	require.NoError(t, err)

	assert.Contains(t, keys, "customTag")
	assert.Contains(t, keys, "guestName")         // default
	assert.Contains(t, keys, "guest_phone_last4") // builtin
}

func TestCreateCustomField_Validation(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	err := repo.CreateCustomField(ctx, &CustomField{
		PropertyID: 1,
		FieldKey:   "noSuchField",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "noSuchField", verr.FieldKey)

	cf := &CustomField{PropertyID: 1, FieldKey: "guestName", Enabled: true}
	require.NoError(t, repo.CreateCustomField(ctx, cf))
	assert.Equal(t, "Guest Name", cf.DisplayLabel)
}

func TestListEnabledCustomFields_Order(t *testing.T) {
	repo := NewRepository(testDB(t))
	ctx := context.Background()

	require.NoError(t, repo.CreateCustomField(ctx, &CustomField{PropertyID: 1, FieldKey: "total", Enabled: true, SortOrder: 2}))
	require.NoError(t, repo.CreateCustomField(ctx, &CustomField{PropertyID: 1, FieldKey: "guestName", Enabled: true, SortOrder: 1}))
	require.NoError(t, repo.CreateCustomField(ctx, &CustomField{PropertyID: 1, FieldKey: "notes", Enabled: false, SortOrder: 0}))

	enabled, err := repo.ListEnabledCustomFields(ctx, 1)
	require.NoError(t, err)
	require.Len(t, enabled, 2)
	assert.Equal(t, "guestName", enabled[0].FieldKey)
	assert.Equal(t, "total", enabled[1].FieldKey)
}
