// Package cache provides the shared in-memory cache for rendered calendar feeds.
//
// Entries expire a fixed TTL after they are written. Besides single-key
// invalidation the cache supports prefix invalidation, which the sync engine
// uses to drop every room-level feed of a property in one call after a
// reconciliation commits.
//
// Prefix matching is a plain string prefix. Callers are responsible for
// choosing non-colliding key shapes; feeds are always keyed as "slug" or
// "slug/roomslug".
//
// # Usage
//
//	c := cache.New(5 * time.Minute)
//	c.Set("beach-house/suite", ical)
//	c.InvalidatePrefix("beach-house")
package cache
