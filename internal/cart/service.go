package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/partshub/autospares-backend/pkg/config"
	"github.com/partshub/autospares-backend/pkg/db"
	"github.com/partshub/autospares-backend/pkg/db/models"
	pkgerrors "github.com/partshub/autospares-backend/pkg/errors"
)

const (
	minQuantity = 1
	maxQuantity = 999
)

// Service exposes cart resolution and mutation.
type Service interface {
	Resolve(ctx context.Context, identity Identity) (*models.Cart, error)
	Get(ctx context.Context, cartID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, cartID uuid.UUID, productID uuid.UUID, quantity int) error
	UpdateItem(ctx context.Context, cartID, itemID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error
}

type service struct {
	db          *db.Client
	checkoutCfg config.CheckoutConfig
}

// ServiceParams bundles the dependencies for the cart service.
type ServiceParams struct {
	DB             *db.Client
	CheckoutConfig config.CheckoutConfig
}

// NewService constructs the cart service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	return &service{
		db:          params.DB,
		checkoutCfg: params.CheckoutConfig,
	}, nil
}

// Resolve returns the cart for the identity, creating it on first use.
// Resolution is idempotent: one cart per identity.
func (s *service) Resolve(ctx context.Context, identity Identity) (*models.Cart, error) {
	if err := identity.Validate(); err != nil {
		return nil, err
	}

	repo := NewRepository(s.db.DB())

	var cart *models.Cart
	var err error
	if identity.UserID != nil {
		cart, err = repo.FindByUser(ctx, *identity.UserID)
	} else {
		cart, err = repo.FindBySessionKey(ctx, identity.SessionKey)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if cart != nil {
		return cart, nil
	}

	created := &models.Cart{UserID: identity.UserID}
	if identity.UserID == nil {
		sessionKey := identity.SessionKey
		created.SessionKey = &sessionKey
	}
	if err := repo.Create(ctx, created); err != nil {
		// A concurrent request may have created the row; re-read before failing.
		if existing := s.reresolve(ctx, repo, identity); existing != nil {
			return existing, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart")
	}
	return created, nil
}

func (s *service) reresolve(ctx context.Context, repo *Repository, identity Identity) *models.Cart {
	var cart *models.Cart
	if identity.UserID != nil {
		cart, _ = repo.FindByUser(ctx, *identity.UserID)
	} else {
		cart, _ = repo.FindBySessionKey(ctx, identity.SessionKey)
	}
	return cart
}

// Get loads the cart view, pruning lines whose product is gone, inactive, or
// understocked, and pricing the remainder.
func (s *service) Get(ctx context.Context, cartID uuid.UUID) (*CartDTO, error) {
	repo := NewRepository(s.db.DB())

	items, err := repo.LoadItems(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart items")
	}

	kept := make([]models.CartItem, 0, len(items))
	var pruned []PrunedItemDTO
	var prunedIDs []uuid.UUID
	for _, item := range items {
		switch {
		case item.Product == nil || !item.Product.IsActive:
			name := "unavailable product"
			if item.Product != nil {
				name = item.Product.Name
			}
			pruned = append(pruned, PrunedItemDTO{ProductName: name, Reason: "no_longer_available"})
			prunedIDs = append(prunedIDs, item.ID)
		case item.Product.StockQuantity < item.Quantity:
			pruned = append(pruned, PrunedItemDTO{ProductName: item.Product.Name, Reason: "insufficient_stock"})
			prunedIDs = append(prunedIDs, item.ID)
		default:
			kept = append(kept, item)
		}
	}

	if len(prunedIDs) > 0 {
		if err := repo.DeleteItems(ctx, prunedIDs); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "prune cart items")
		}
	}

	totals := ComputeTotals(kept, s.checkoutCfg)

	dtoItems := make([]ItemDTO, 0, len(kept))
	for _, item := range kept {
		line := item.Product.Price.Mul(decimalFromInt(item.Quantity)).Round(2)
		dtoItems = append(dtoItems, ItemDTO{
			ID:           item.ID,
			ProductID:    item.ProductID,
			ProductName:  item.Product.Name,
			ProductSlug:  item.Product.Slug,
			UnitPrice:    item.Product.Price,
			Quantity:     item.Quantity,
			LineSubtotal: line,
			InStock:      item.Product.StockQuantity,
			ImageKey:     item.Product.ImageKey,
		})
	}

	return &CartDTO{
		ID:        cartID,
		Items:     dtoItems,
		Pruned:    pruned,
		ItemCount: totals.ItemCount,
		Subtotal:  totals.Subtotal,
		Tax:       totals.Tax,
		Shipping:  totals.Shipping,
		Total:     totals.Total,
	}, nil
}

// AddItem merges quantity into the (cart, product) line. The merged quantity
// must stay within bounds and not exceed live stock.
func (s *service) AddItem(ctx context.Context, cartID uuid.UUID, productID uuid.UUID, quantity int) error {
	if quantity < minQuantity || quantity > maxQuantity {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be between 1 and 999")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		var product models.Product
		err := tx.WithContext(ctx).
			Where("id = ? AND is_active = ?", productID, true).
			First(&product).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}

		existing, err := repo.FindItemByProduct(ctx, cartID, productID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart line")
		}

		merged := quantity
		if existing != nil {
			merged += existing.Quantity
		}
		if merged > maxQuantity {
			merged = maxQuantity
		}
		if merged > product.StockQuantity {
			return insufficientStock(product)
		}

		item := &models.CartItem{
			CartID:    cartID,
			ProductID: productID,
			Quantity:  merged,
		}
		if err := repo.UpsertItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert cart line")
		}
		return nil
	})
}

// UpdateItem sets a line quantity. Zero or negative removes the line.
func (s *service) UpdateItem(ctx context.Context, cartID, itemID uuid.UUID, quantity int) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		item, err := repo.FindItem(ctx, cartID, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart line")
		}

		if quantity <= 0 {
			if err := repo.DeleteItem(ctx, itemID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart line")
			}
			return nil
		}

		if quantity > maxQuantity {
			return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be between 1 and 999")
		}
		if item.Product != nil && quantity > item.Product.StockQuantity {
			return insufficientStock(*item.Product)
		}

		if err := repo.UpdateItemQuantity(ctx, itemID, quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart line")
		}
		return nil
	})
}

// RemoveItem deletes a line from the cart.
func (s *service) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	repo := NewRepository(s.db.DB())

	if _, err := repo.FindItem(ctx, cartID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart line")
	}
	if err := repo.DeleteItem(ctx, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart line")
	}
	return nil
}

func insufficientStock(product models.Product) error {
	return pkgerrors.New(pkgerrors.CodeStockConflict, "insufficient stock").
		WithDetails(map[string]any{
			"product_id":   product.ID,
			"product_name": product.Name,
			"available":    product.StockQuantity,
		})
}
