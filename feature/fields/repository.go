package fields

import (
	"context"
	"errors"
	"time"

	"rentalsync-bridge/core/utils"

	"gorm.io/gorm"
)

// Repository provides database access for discovered fields and custom
// field configuration.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository bound to the given database handle,
// which may be a transaction.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListForProperty returns all discovered fields of a property ordered by
// display name.
func (r *Repository) ListForProperty(ctx context.Context, propertyID uint) ([]AvailableField, error) {
	var fields []AvailableField
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("display_name").
		Find(&fields).Error
	return fields, err
}

type candidate struct {
	key    string
	sample string
}

// collectCandidates filters one level of raw record data down to the scalar
// fields eligible for discovery. Exclusion happens here so excluded keys
// never reach the database.
func collectCandidates(data map[string]any, seen map[string]struct{}, collected map[string]struct{}) []candidate {
	var out []candidate
	for key, value := range data {
		if _, ok := seen[key]; ok {
			continue
		}
		if _, ok := collected[key]; ok {
			continue
		}
		if value == nil {
			continue
		}
		switch value.(type) {
		case map[string]any, []any, []map[string]any:
			continue
		}
		if ShouldExclude(key) {
			continue
		}
		s := utils.ToString(value)
		if s == "" {
			continue
		}
		out = append(out, candidate{key: key, sample: TruncateSample(s)})
	}
	return out
}

// DiscoverFromReservation learns previously unseen scalar fields from a raw
// reservation record and upserts them into the property's catalog.
//
// Both the top-level record and the first entry of its nested rooms array
// are inspected; sibling rooms share the same schema, so one is enough.
// Keys already in seen are skipped, and seen is extended with every key
// processed, so repeated calls within one sync run do no redundant work.
func (r *Repository) DiscoverFromReservation(ctx context.Context, propertyID uint, reservation map[string]any, seen map[string]struct{}) ([]AvailableField, error) {
	if seen == nil {
		seen = make(map[string]struct{})
	}

	collected := make(map[string]struct{})
	candidates := collectCandidates(reservation, seen, collected)
	for _, c := range candidates {
		collected[c.key] = struct{}{}
	}

	if rooms, ok := reservation["rooms"].([]any); ok && len(rooms) > 0 {
		if firstRoom, ok := rooms[0].(map[string]any); ok {
			candidates = append(candidates, collectCandidates(firstRoom, seen, collected)...)
		}
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	// Bulk-fetch the existing catalog once instead of a query per key.
	existing, err := r.ListForProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]*AvailableField, len(existing))
	for i := range existing {
		byKey[existing[i].FieldKey] = &existing[i]
	}

	now := time.Now().UTC()
	var discovered []AvailableField
	for _, c := range candidates {
		field, err := r.upsertField(ctx, propertyID, c, byKey, now)
		if err != nil {
			return discovered, err
		}
		discovered = append(discovered, *field)
		seen[c.key] = struct{}{}
	}
	return discovered, nil
}

// upsertField records one candidate. A new key stores the derived display
// name and its sample; a known key refreshes last-seen and backfills the
// sample only while it is empty. A sample once set is never overwritten, so
// falsy strings like "0" or "false" survive later non-empty values.
func (r *Repository) upsertField(ctx context.Context, propertyID uint, c candidate, byKey map[string]*AvailableField, now time.Time) (*AvailableField, error) {
	if existing, ok := byKey[c.key]; ok {
		existing.LastSeenAt = now
		if c.sample != "" && (existing.SampleValue == nil || *existing.SampleValue == "") {
			sample := c.sample
			existing.SampleValue = &sample
		}
		if err := r.db.WithContext(ctx).Save(existing).Error; err != nil {
			return nil, err
		}
		return existing, nil
	}

	field := &AvailableField{
		PropertyID:   propertyID,
		FieldKey:     c.key,
		DisplayName:  DisplayName(c.key),
		DiscoveredAt: now,
		LastSeenAt:   now,
	}
	if c.sample != "" {
		sample := c.sample
		field.SampleValue = &sample
	}
	if err := r.db.WithContext(ctx).Create(field).Error; err != nil {
		return nil, err
	}
	byKey[c.key] = field
	return field, nil
}

// AllFieldKeys returns every configurable field key for a property mapped to
// its display name: defaults, overridden by discovered fields, plus
// built-ins.
func (r *Repository) AllFieldKeys(ctx context.Context, propertyID uint) (map[string]string, error) {
	result := make(map[string]string, len(DefaultFields)+len(BuiltinFields))
	for k, v := range DefaultFields {
		result[k] = v
	}

	discovered, err := r.ListForProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	for _, f := range discovered {
		result[f.FieldKey] = f.DisplayName
	}

	for k, v := range BuiltinFields {
		result[k] = v
	}
	return result, nil
}

// ListCustomFields returns a property's custom field configuration in sort
// order.
func (r *Repository) ListCustomFields(ctx context.Context, propertyID uint) ([]CustomField, error) {
	var fields []CustomField
	err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("sort_order, id").
		Find(&fields).Error
	return fields, err
}

// ListEnabledCustomFields returns only the enabled custom fields in sort
// order, for feed rendering.
func (r *Repository) ListEnabledCustomFields(ctx context.Context, propertyID uint) ([]CustomField, error) {
	var fields []CustomField
	err := r.db.WithContext(ctx).
		Where("property_id = ? AND enabled = ?", propertyID, true).
		Order("sort_order, id").
		Find(&fields).Error
	return fields, err
}

// CreateCustomField validates the referenced field key against the
// property's catalog and inserts the configuration. An unknown key yields a
// ValidationError.
func (r *Repository) CreateCustomField(ctx context.Context, cf *CustomField) error {
	allowed, err := r.AllFieldKeys(ctx, cf.PropertyID)
	if err != nil {
		return err
	}
	if _, ok := allowed[cf.FieldKey]; !ok {
		keys := make([]string, 0, len(allowed))
		for k := range allowed {
			keys = append(keys, k)
		}
		return &ValidationError{FieldKey: cf.FieldKey, Allowed: keys}
	}
	if cf.DisplayLabel == "" {
		cf.DisplayLabel = allowed[cf.FieldKey]
	}
	return r.db.WithContext(ctx).Create(cf).Error
}

// SaveCustomField persists changes to an existing configuration.
func (r *Repository) SaveCustomField(ctx context.Context, cf *CustomField) error {
	return r.db.WithContext(ctx).Save(cf).Error
}

// GetCustomField returns a configuration by ID, or nil.
func (r *Repository) GetCustomField(ctx context.Context, id uint) (*CustomField, error) {
	var cf CustomField
	err := r.db.WithContext(ctx).First(&cf, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cf, nil
}

// DeleteCustomField removes a configuration.
func (r *Repository) DeleteCustomField(ctx context.Context, cf *CustomField) error {
	return r.db.WithContext(ctx).Delete(cf).Error
}
