package settings

import "time"

// settingsRowID pins SystemSettings to a single row.
const settingsRowID = 1

// SystemSettings holds runtime-adjustable settings that survive restarts.
type SystemSettings struct {
	ID                  uint      `gorm:"primaryKey" json:"-"`
	SyncIntervalMinutes int       `gorm:"not null" json:"sync_interval_minutes"`
	UpdatedAt           time.Time `json:"updated_at"`
}
