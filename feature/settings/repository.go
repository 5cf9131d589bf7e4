package settings

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository persists the settings row.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository bound to the given database handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the stored settings, or defaults when none were saved yet.
func (r *Repository) Get(ctx context.Context, defaultIntervalMinutes int) (*SystemSettings, error) {
	var s SystemSettings
	err := r.db.WithContext(ctx).First(&s, settingsRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &SystemSettings{ID: settingsRowID, SyncIntervalMinutes: defaultIntervalMinutes}, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Save upserts the single settings row.
func (r *Repository) Save(ctx context.Context, s *SystemSettings) error {
	s.ID = settingsRowID
	return r.db.WithContext(ctx).Save(s).Error
}
