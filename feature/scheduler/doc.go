// Package scheduler runs the background jobs: periodic reservation sync at
// a configurable interval and a daily retention purge. The sync interval can
// be changed at runtime without restarting the scheduler.
package scheduler
