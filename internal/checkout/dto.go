package checkout

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PlaceOrderInput carries the checkout form fields. Missing shipping and
// contact values fall back to the customer's stored profile.
type PlaceOrderInput struct {
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line_1"`
	AddressLine2 string `json:"address_line_2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	Notes        string `json:"notes"`
}

func (in PlaceOrderInput) trimmed() PlaceOrderInput {
	return PlaceOrderInput{
		FullName:     strings.TrimSpace(in.FullName),
		Email:        strings.TrimSpace(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		AddressLine1: strings.TrimSpace(in.AddressLine1),
		AddressLine2: strings.TrimSpace(in.AddressLine2),
		City:         strings.TrimSpace(in.City),
		State:        strings.TrimSpace(in.State),
		PostalCode:   strings.TrimSpace(in.PostalCode),
		Country:      strings.TrimSpace(in.Country),
		Notes:        strings.TrimSpace(in.Notes),
	}
}

// PrefillDTO is the checkout form prefill assembled from the user's profile.
type PrefillDTO struct {
	FullName     string          `json:"full_name"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	AddressLine1 string          `json:"address_line_1"`
	AddressLine2 string          `json:"address_line_2"`
	City         string          `json:"city"`
	State        string          `json:"state"`
	PostalCode   string          `json:"postal_code"`
	Country      string          `json:"country"`
	ItemCount    int             `json:"item_count"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	Shipping     decimal.Decimal `json:"shipping"`
	Total        decimal.Decimal `json:"total"`
}
