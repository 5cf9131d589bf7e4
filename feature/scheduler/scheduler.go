package scheduler

import (
	"context"
	stdsync "sync"
	"time"

	"rentalsync-bridge/feature/booking"
	"rentalsync-bridge/feature/sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// purgeSpec fires the retention job daily at 02:00 UTC.
	purgeSpec = "0 2 * * *"

	purgeCheckedOutAfterDays = 90
	purgeCancelledAfterDays  = 30
)

// Syncer runs one full reconciliation pass over all properties.
type Syncer interface {
	SyncAll(ctx context.Context) (sync.Counts, error)
}

// Scheduler drives the periodic sync and the daily retention purge. Both
// jobs run in UTC and skip a firing while the previous one is still going.
type Scheduler struct {
	db     *gorm.DB
	syncer Syncer
	logger *zap.Logger

	mu              stdsync.Mutex
	cron            *cron.Cron
	syncEntry       cron.EntryID
	intervalMinutes int
	running         bool
}

// New builds a stopped scheduler. An out-of-bounds configured interval is
// clamped into [MinSyncIntervalMinutes, MaxSyncIntervalMinutes].
func New(db *gorm.DB, syncer Syncer, cfg Config, logger *zap.Logger) *Scheduler {
	interval := cfg.SyncIntervalMinutes
	if interval < MinSyncIntervalMinutes {
		interval = MinSyncIntervalMinutes
	}
	if interval > MaxSyncIntervalMinutes {
		interval = MaxSyncIntervalMinutes
	}
	return &Scheduler{db: db, syncer: syncer, logger: logger, intervalMinutes: interval}
}

// Start registers both jobs and begins firing them. Calling Start on a
// running scheduler is a no-op.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger: s.logger})),
	)

	s.syncEntry = c.Schedule(
		cron.Every(time.Duration(s.intervalMinutes)*time.Minute),
		cron.FuncJob(s.runSync),
	)
	if _, err := c.AddFunc(purgeSpec, s.runPurge); err != nil {
		return err
	}

	c.Start()
	s.cron = c
	s.running = true

	s.logger.Info("scheduler started",
		zap.Int("sync_interval_minutes", s.intervalMinutes))
	return nil
}

// Stop halts job firing. Jobs already in flight finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.cron.Stop()
	s.cron = nil
	s.running = false
	s.logger.Info("scheduler stopped")
}

// IsRunning reports whether the scheduler is firing jobs.
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// SyncIntervalMinutes returns the current sync interval.
func (s *Scheduler) SyncIntervalMinutes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intervalMinutes
}

// UpdateSyncInterval reschedules the sync job at the new interval without a
// restart. It reports whether anything changed: requests are rejected while
// stopped, outside the allowed bounds, or equal to the current interval.
func (s *Scheduler) UpdateSyncInterval(minutes int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return false
	}
	if minutes < MinSyncIntervalMinutes || minutes > MaxSyncIntervalMinutes {
		s.logger.Warn("rejected sync interval outside bounds", zap.Int("minutes", minutes))
		return false
	}
	if minutes == s.intervalMinutes {
		return false
	}

	s.cron.Remove(s.syncEntry)
	s.syncEntry = s.cron.Schedule(
		cron.Every(time.Duration(minutes)*time.Minute),
		cron.FuncJob(s.runSync),
	)
	s.intervalMinutes = minutes

	s.logger.Info("sync interval updated", zap.Int("minutes", minutes))
	return true
}

func (s *Scheduler) runSync() {
	if _, err := s.syncer.SyncAll(context.Background()); err != nil {
		s.logger.Error("scheduled sync run failed", zap.Error(err))
	}
}

// runPurge hard-deletes bookings past their retention window: checked-out
// stays after 90 days, cancelled ones after 30.
func (s *Scheduler) runPurge() {
	ctx := context.Background()
	repo := booking.NewRepository(s.db)

	checkedOut, err := repo.PurgeCheckedOut(ctx, purgeCheckedOutAfterDays)
	if err != nil {
		s.logger.Error("checked-out purge failed", zap.Error(err))
	}
	cancelled, err := repo.PurgeCancelled(ctx, purgeCancelledAfterDays)
	if err != nil {
		s.logger.Error("cancelled purge failed", zap.Error(err))
	}

	if checkedOut > 0 || cancelled > 0 {
		s.logger.Info("purged expired bookings",
			zap.Int64("checked_out", checkedOut),
			zap.Int64("cancelled", cancelled))
	}
}
