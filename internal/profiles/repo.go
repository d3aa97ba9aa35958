package profiles

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/partshub/autospares-backend/pkg/db/models"
)

// Repository exposes customer profile persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a profiles repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetByUserID returns the profile for a user, or nil when none exists yet.
func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.CustomerProfile, error) {
	var profile models.CustomerProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// Defaults describes the profile fields refreshed from a checkout submission.
// Empty values leave the stored value untouched.
type Defaults struct {
	Phone        string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	PostalCode   string
	Country      string
}

// UpsertDefaults creates or updates the user's profile, overwriting only the
// fields with non-empty submitted values.
func (r *Repository) UpsertDefaults(ctx context.Context, userID uuid.UUID, defaults Defaults) error {
	profile, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}

	if profile == nil {
		profile = &models.CustomerProfile{UserID: userID}
	}

	apply(&profile.Phone, defaults.Phone)
	apply(&profile.AddressLine1, defaults.AddressLine1)
	apply(&profile.AddressLine2, defaults.AddressLine2)
	apply(&profile.City, defaults.City)
	apply(&profile.State, defaults.State)
	apply(&profile.PostalCode, defaults.PostalCode)
	apply(&profile.Country, defaults.Country)

	return r.db.WithContext(ctx).Save(profile).Error
}

func apply(target *string, value string) {
	if value != "" {
		*target = value
	}
}
