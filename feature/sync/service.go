package sync

import (
	"context"
	"fmt"

	"rentalsync-bridge/core/cache"
	"rentalsync-bridge/feature/credential"
	"rentalsync-bridge/feature/property"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Fetcher pulls raw reservation batches from the remote API.
type Fetcher interface {
	FetchReservations(ctx context.Context, token, propertyID string) ([]map[string]any, error)
}

// TokenSource yields a usable bearer token for a credential, refreshing it
// first when needed.
type TokenSource interface {
	EnsureFresh(ctx context.Context, cred *credential.Credential) (string, error)
}

// Service runs reservation syncs: fetch, reconcile inside one transaction,
// then invalidate the property's calendar cache.
type Service struct {
	db     *gorm.DB
	cache  *cache.Cache
	client Fetcher
	tokens TokenSource
	logger *zap.Logger
}

// NewService wires the sync service.
func NewService(db *gorm.DB, feedCache *cache.Cache, client Fetcher, tokens TokenSource, logger *zap.Logger) *Service {
	return &Service{db: db, cache: feedCache, client: client, tokens: tokens, logger: logger}
}

// SyncProperty reconciles one property against the remote source. All local
// writes commit atomically; a failed run leaves prior bookings intact and
// records the failure on the property via an independent session. Remote and
// credential failures come back as a SyncError.
func (s *Service) SyncProperty(ctx context.Context, prop *property.Property, cred *credential.Credential) (Counts, error) {
	if !prop.SyncEnabled {
		s.logger.Debug("sync disabled for property", zap.String("property_slug", prop.Slug))
		return Counts{}, nil
	}

	token, err := s.tokens.EnsureFresh(ctx, cred)
	if err != nil {
		s.recordFailure(prop, err)
		return Counts{}, &SyncError{PropertyRemoteID: prop.RemoteID, Err: err}
	}

	reservations, err := s.client.FetchReservations(ctx, token, prop.RemoteID)
	if err != nil {
		s.recordFailure(prop, err)
		return Counts{}, &SyncError{PropertyRemoteID: prop.RemoteID, Err: err}
	}

	var counts Counts
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		eng := &engine{store: newGormStore(tx), logger: s.logger}
		c, err := eng.reconcile(ctx, prop, reservations)
		if err != nil {
			return err
		}
		counts = c
		return property.NewRepository(tx).RecordSyncOutcome(ctx, prop.ID, nil)
	})
	if err != nil {
		return Counts{}, fmt.Errorf("reconcile property %s: %w", prop.Slug, err)
	}

	// Invalidation happens strictly after commit so no reader re-caches
	// pre-commit state, and only when something actually changed.
	if counts.Total() > 0 {
		s.cache.InvalidatePrefix(prop.Slug)
	}

	s.logger.Info("synced property",
		zap.String("property_slug", prop.Slug),
		zap.Int("inserted", counts.Inserted),
		zap.Int("updated", counts.Updated),
		zap.Int("cancelled", counts.Cancelled),
	)
	return counts, nil
}

// SyncAll reconciles every sync-eligible property sequentially. A property
// failure is logged and the run continues; the returned counts aggregate the
// successful properties.
func (s *Service) SyncAll(ctx context.Context) (Counts, error) {
	props, err := property.NewRepository(s.db).ListSyncEligible(ctx)
	if err != nil {
		return Counts{}, fmt.Errorf("list properties: %w", err)
	}
	if len(props) == 0 {
		return Counts{}, nil
	}

	cred, err := credential.NewRepository(s.db).Get(ctx)
	if err != nil {
		return Counts{}, fmt.Errorf("load credential: %w", err)
	}
	if cred == nil {
		s.logger.Warn("skipping sync run, no credential configured")
		return Counts{}, nil
	}

	var total Counts
	var failed int
	for i := range props {
		counts, err := s.SyncProperty(ctx, &props[i], cred)
		if err != nil {
			failed++
			s.logger.Error("property sync failed",
				zap.String("property_slug", props[i].Slug),
				zap.Error(err))
			continue
		}
		total.Inserted += counts.Inserted
		total.Updated += counts.Updated
		total.Cancelled += counts.Cancelled
	}

	s.logger.Info("sync run complete",
		zap.Int("properties", len(props)),
		zap.Int("failed", failed),
		zap.Int("inserted", total.Inserted),
		zap.Int("updated", total.Updated),
		zap.Int("cancelled", total.Cancelled),
	)
	return total, nil
}

// recordFailure persists the sync error on its own session so it survives
// any rollback of the caller's transaction. Best effort.
func (s *Service) recordFailure(prop *property.Property, cause error) {
	msg := cause.Error()
	sess := s.db.Session(&gorm.Session{NewDB: true})
	if err := property.NewRepository(sess).RecordSyncOutcome(context.Background(), prop.ID, &msg); err != nil {
		s.logger.Error("failed to persist sync error",
			zap.String("property_slug", prop.Slug),
			zap.Error(err))
	}
}
