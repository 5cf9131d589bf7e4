package credential

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository persists the credential row. The system holds at most one
// credential; Get returns the newest when several exist.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository bound to the given database handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Get returns the current credential, or nil when none is configured.
func (r *Repository) Get(ctx context.Context) (*Credential, error) {
	var cred Credential
	err := r.db.WithContext(ctx).Order("id DESC").First(&cred).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cred, nil
}

// Save persists the credential, inserting when new.
func (r *Repository) Save(ctx context.Context, cred *Credential) error {
	return r.db.WithContext(ctx).Save(cred).Error
}
