package cache

// Config holds configuration for the calendar feed cache.
type Config struct {
	// TTLSeconds is how long a rendered feed stays valid after write.
	TTLSeconds int `mapstructure:"ttl_seconds" default:"300"`
}
