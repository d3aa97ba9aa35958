package models

import (
	"time"

	"github.com/google/uuid"
)

// CustomerProfile holds the default shipping details for a customer. Fields are
// refreshed opportunistically from each checkout submission.
type CustomerProfile struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Phone        string    `gorm:"column:phone;not null;default:''"`
	AddressLine1 string    `gorm:"column:address_line_1;not null;default:''"`
	AddressLine2 string    `gorm:"column:address_line_2;not null;default:''"`
	City         string    `gorm:"column:city;not null;default:''"`
	State        string    `gorm:"column:state;not null;default:''"`
	PostalCode   string    `gorm:"column:postal_code;not null;default:''"`
	Country      string    `gorm:"column:country;not null;default:''"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
