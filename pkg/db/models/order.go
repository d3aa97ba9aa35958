package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/partshub/autospares-backend/pkg/enums"
)

// Order is an immutable record of a completed checkout. Customer and shipping
// fields are denormalized so the order survives account deletion.
type Order struct {
	ID                   uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber          string              `gorm:"column:order_number;type:varchar(20);not null;uniqueIndex"`
	UserID               *uuid.UUID          `gorm:"column:user_id;type:uuid;index"`
	CustomerName         string              `gorm:"column:customer_name;not null"`
	CustomerEmail        string              `gorm:"column:customer_email;not null"`
	CustomerPhone        string              `gorm:"column:customer_phone;not null;default:''"`
	ShippingAddressLine1 string              `gorm:"column:shipping_address_line_1;not null"`
	ShippingAddressLine2 string              `gorm:"column:shipping_address_line_2;not null;default:''"`
	ShippingCity         string              `gorm:"column:shipping_city;not null"`
	ShippingState        string              `gorm:"column:shipping_state;not null;default:''"`
	ShippingPostalCode   string              `gorm:"column:shipping_postal_code;not null;default:''"`
	ShippingCountry      string              `gorm:"column:shipping_country;not null"`
	Subtotal             decimal.Decimal     `gorm:"column:subtotal;type:numeric(10,2);not null"`
	Tax                  decimal.Decimal     `gorm:"column:tax;type:numeric(10,2);not null"`
	ShippingCost         decimal.Decimal     `gorm:"column:shipping_cost;type:numeric(10,2);not null"`
	Total                decimal.Decimal     `gorm:"column:total;type:numeric(10,2);not null"`
	Status               enums.OrderStatus   `gorm:"column:status;not null;default:'pending'"`
	PaymentStatus        enums.PaymentStatus `gorm:"column:payment_status;not null;default:'pending'"`
	Notes                string              `gorm:"column:notes;not null;default:''"`
	Items                []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt            time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
