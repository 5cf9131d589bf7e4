package scheduler

// Interval bounds for the sync job, in minutes.
const (
	MinSyncIntervalMinutes = 1
	MaxSyncIntervalMinutes = 60
)

// Config holds the scheduler settings.
type Config struct {
	SyncIntervalMinutes int `mapstructure:"sync_interval_minutes" default:"5"`
}
