package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is a persistent per-identity cart. Exactly one of UserID or SessionKey
// is set; the row survives checkout with its items cleared.
type Cart struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     *uuid.UUID `gorm:"column:user_id;type:uuid;uniqueIndex"`
	SessionKey *string    `gorm:"column:session_key;type:varchar(40);uniqueIndex"`
	Items      []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
