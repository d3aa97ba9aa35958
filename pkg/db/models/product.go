package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/partshub/autospares-backend/pkg/enums"
)

// Product represents a spare part listing.
type Product struct {
	ID             uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID     uuid.UUID              `gorm:"column:category_id;type:uuid;not null"`
	Name           string                 `gorm:"column:name;not null"`
	Slug           string                 `gorm:"column:slug;not null;uniqueIndex"`
	Description    string                 `gorm:"column:description;not null;default:''"`
	Price          decimal.Decimal        `gorm:"column:price;type:numeric(10,2);not null"`
	CompareAtPrice *decimal.Decimal       `gorm:"column:compare_at_price;type:numeric(10,2)"`
	StockQuantity  int                    `gorm:"column:stock_quantity;not null;default:0"`
	Condition      enums.ProductCondition `gorm:"column:condition;not null;default:'new'"`
	Make           string                 `gorm:"column:make;not null;default:''"`
	Model          string                 `gorm:"column:model;not null;default:''"`
	YearFrom       *int                   `gorm:"column:year_from"`
	YearTo         *int                   `gorm:"column:year_to"`
	ImageKey       *string                `gorm:"column:image_key"`
	Image2Key      *string                `gorm:"column:image_2_key"`
	Image3Key      *string                `gorm:"column:image_3_key"`
	ItemImage1Key  *string                `gorm:"column:item_image_1_key"`
	ItemImage2Key  *string                `gorm:"column:item_image_2_key"`
	IsActive       bool                   `gorm:"column:is_active;not null;default:true"`
	IsFeatured     bool                   `gorm:"column:is_featured;not null;default:false"`
	Category       *Category              `gorm:"foreignKey:CategoryID"`
	Images         []ProductImage         `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

// ImageSlotKeys returns the fixed image slots in display order, skipping empties.
func (p Product) ImageSlotKeys() []string {
	slots := []*string{p.ImageKey, p.Image2Key, p.Image3Key, p.ItemImage1Key, p.ItemImage2Key}
	keys := make([]string, 0, len(slots))
	for _, slot := range slots {
		if slot != nil && *slot != "" {
			keys = append(keys, *slot)
		}
	}
	return keys
}
