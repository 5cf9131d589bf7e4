// Package calendar renders RFC 5545 feeds from synced bookings and serves
// them publicly per property and per room. Rendered feeds live in the TTL
// cache; sync invalidates them by property slug prefix.
package calendar
