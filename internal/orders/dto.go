package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/partshub/autospares-backend/pkg/db/models"
	"github.com/partshub/autospares-backend/pkg/enums"
)

// Actor identifies who is asking for an order.
type Actor struct {
	UserID uuid.UUID
	Role   enums.ActorRole
}

// OrderDTO is the customer-facing projection of an order.
type OrderDTO struct {
	OrderNumber          string              `json:"order_number"`
	CustomerName         string              `json:"customer_name"`
	CustomerEmail        string              `json:"customer_email"`
	CustomerPhone        string              `json:"customer_phone"`
	ShippingAddressLine1 string              `json:"shipping_address_line_1"`
	ShippingAddressLine2 string              `json:"shipping_address_line_2,omitempty"`
	ShippingCity         string              `json:"shipping_city"`
	ShippingState        string              `json:"shipping_state,omitempty"`
	ShippingPostalCode   string              `json:"shipping_postal_code,omitempty"`
	ShippingCountry      string              `json:"shipping_country"`
	Subtotal             decimal.Decimal     `json:"subtotal"`
	Tax                  decimal.Decimal     `json:"tax"`
	ShippingCost         decimal.Decimal     `json:"shipping_cost"`
	Total                decimal.Decimal     `json:"total"`
	Status               enums.OrderStatus   `json:"status"`
	PaymentStatus        enums.PaymentStatus `json:"payment_status"`
	Notes                string              `json:"notes,omitempty"`
	Items                []OrderItemDTO      `json:"items"`
	CreatedAt            time.Time           `json:"created_at"`
}

// OrderItemDTO is one snapshotted line of an order.
type OrderItemDTO struct {
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// FromModel maps a persisted order onto its DTO.
func FromModel(order models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price,
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal,
		})
	}
	return OrderDTO{
		OrderNumber:          order.OrderNumber,
		CustomerName:         order.CustomerName,
		CustomerEmail:        order.CustomerEmail,
		CustomerPhone:        order.CustomerPhone,
		ShippingAddressLine1: order.ShippingAddressLine1,
		ShippingAddressLine2: order.ShippingAddressLine2,
		ShippingCity:         order.ShippingCity,
		ShippingState:        order.ShippingState,
		ShippingPostalCode:   order.ShippingPostalCode,
		ShippingCountry:      order.ShippingCountry,
		Subtotal:             order.Subtotal,
		Tax:                  order.Tax,
		ShippingCost:         order.ShippingCost,
		Total:                order.Total,
		Status:               order.Status,
		PaymentStatus:        order.PaymentStatus,
		Notes:                order.Notes,
		Items:                items,
		CreatedAt:            order.CreatedAt,
	}
}
