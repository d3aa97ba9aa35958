package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductImage is a gallery entry for a product. At most one image per product
// is primary; the catalog service enforces that on save.
type ProductImage struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID  uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	StorageKey string    `gorm:"column:storage_key;not null"`
	IsPrimary  bool      `gorm:"column:is_primary;not null;default:false"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
