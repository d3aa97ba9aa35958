package cart

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/partshub/autospares-backend/pkg/errors"
)

const maxSessionKeyLen = 40

// Identity names the owner of a cart: an authenticated user or an anonymous
// session key, never both.
type Identity struct {
	UserID     *uuid.UUID
	SessionKey string
}

// UserIdentity builds the identity for an authenticated customer.
func UserIdentity(userID uuid.UUID) Identity {
	return Identity{UserID: &userID}
}

// SessionIdentity builds the identity for an anonymous session key.
func SessionIdentity(sessionKey string) Identity {
	return Identity{SessionKey: strings.TrimSpace(sessionKey)}
}

// Validate checks the identity invariant: exactly one owner reference.
func (i Identity) Validate() error {
	hasUser := i.UserID != nil && *i.UserID != uuid.Nil
	hasSession := i.SessionKey != ""

	switch {
	case hasUser && hasSession:
		return pkgerrors.New(pkgerrors.CodeValidation, "cart identity must not carry both user and session key")
	case !hasUser && !hasSession:
		return pkgerrors.New(pkgerrors.CodeValidation, "cart identity is required")
	case hasSession && len(i.SessionKey) > maxSessionKeyLen:
		return pkgerrors.New(pkgerrors.CodeValidation, "session key too long")
	}
	return nil
}

// ItemDTO is one cart line with its product snapshot.
type ItemDTO struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductSlug  string          `json:"product_slug"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
	LineSubtotal decimal.Decimal `json:"line_subtotal"`
	InStock      int             `json:"in_stock"`
	ImageKey     *string         `json:"image_key,omitempty"`
}

// PrunedItemDTO describes a line removed during viewing because its product
// became unavailable.
type PrunedItemDTO struct {
	ProductName string `json:"product_name"`
	Reason      string `json:"reason"`
}

// CartDTO is the full cart view with totals.
type CartDTO struct {
	ID        uuid.UUID       `json:"id"`
	Items     []ItemDTO       `json:"items"`
	Pruned    []PrunedItemDTO `json:"pruned,omitempty"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Shipping  decimal.Decimal `json:"shipping"`
	Total     decimal.Decimal `json:"total"`
}

// AddItemRequest is the payload for adding a product to the cart.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required"`
}

// UpdateItemRequest is the payload for changing a line quantity.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}
