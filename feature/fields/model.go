package fields

import "time"

// SampleMaxLen is the longest sample value retained for a discovered field.
const SampleMaxLen = 500

// AvailableField is a scalar field discovered in upstream reservation data.
// Discovery runs incrementally during sync; the catalog grows as new keys
// appear and is never pruned automatically.
type AvailableField struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	PropertyID uint `gorm:"not null;index;uniqueIndex:uq_field_property_key" json:"property_id"`

	// FieldKey is the raw field name as seen upstream.
	FieldKey string `gorm:"size:100;not null;uniqueIndex:uq_field_property_key" json:"field_key"`

	// DisplayName is derived from the key by camel-case word splitting.
	DisplayName string `gorm:"size:255;not null" json:"display_name"`

	// SampleValue is a truncated example of the field's value, captured at
	// first sight and only backfilled while empty.
	SampleValue *string `gorm:"size:500" json:"sample_value"`

	DiscoveredAt time.Time `gorm:"not null" json:"discovered_at"`
	LastSeenAt   time.Time `gorm:"not null" json:"last_seen_at"`
}

// CustomField selects a field to surface in a property's calendar feed
// descriptions.
type CustomField struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	PropertyID uint `gorm:"not null;index;uniqueIndex:uq_custom_property_key" json:"property_id"`

	// FieldKey references a discovered, default, or built-in field key.
	FieldKey string `gorm:"size:100;not null;uniqueIndex:uq_custom_property_key" json:"field_key"`

	// DisplayLabel is the label shown before the value in feed descriptions.
	DisplayLabel string `gorm:"size:255;not null" json:"display_label"`

	Enabled   bool `gorm:"not null;default:true" json:"enabled"`
	SortOrder int  `gorm:"not null;default:0" json:"sort_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
