package checkout

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/partshub/autospares-backend/internal/cart"
	"github.com/partshub/autospares-backend/internal/profiles"
	"github.com/partshub/autospares-backend/internal/users"
	"github.com/partshub/autospares-backend/pkg/config"
	"github.com/partshub/autospares-backend/pkg/db"
	"github.com/partshub/autospares-backend/pkg/db/models"
	"github.com/partshub/autospares-backend/pkg/enums"
	pkgerrors "github.com/partshub/autospares-backend/pkg/errors"
	"github.com/partshub/autospares-backend/pkg/logger"
	"github.com/partshub/autospares-backend/pkg/metrics"
)

const orderNumberDigits = 4

// Service converts a customer's cart into an order.
type Service interface {
	// PlaceOrder runs the checkout for the user's cart. On success the cart
	// is emptied and stock has been decremented; on any failure nothing is
	// persisted and the cart is untouched.
	PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*models.Order, error)
	// Prefill assembles the checkout form defaults from the user's account
	// and stored profile, plus the current cart totals.
	Prefill(ctx context.Context, userID uuid.UUID) (*PrefillDTO, error)
}

type service struct {
	db          *db.Client
	checkoutCfg config.CheckoutConfig
	metrics     *metrics.CheckoutMetrics
	logg        *logger.Logger
	// numberFn generates candidate order numbers; swapped in tests to force
	// collisions.
	numberFn func() string
}

// ServiceParams bundles the dependencies for the checkout service.
type ServiceParams struct {
	DB             *db.Client
	CheckoutConfig config.CheckoutConfig
	Metrics        *metrics.CheckoutMetrics
	Logger         *logger.Logger
}

// NewService constructs the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	return &service{
		db:          params.DB,
		checkoutCfg: params.CheckoutConfig,
		metrics:     params.Metrics,
		logg:        params.Logger,
		numberFn:    newOrderNumber,
	}, nil
}

func (s *service) PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*models.Order, error) {
	input = input.trimmed()

	cartRepo := cart.NewRepository(s.db.DB())
	existing, err := cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if existing == nil {
		return nil, emptyCart()
	}

	// Cheap precheck outside the transaction so obviously doomed checkouts
	// fail before touching stock.
	items, err := cartRepo.LoadItems(ctx, existing.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart lines")
	}
	if len(items) == 0 {
		return nil, emptyCart()
	}
	for _, item := range items {
		if item.Product == nil || !item.Product.IsActive {
			return nil, unavailableProduct(item)
		}
		if item.Quantity > item.Product.StockQuantity {
			s.metrics.IncStockConflict("precheck")
			return nil, insufficientStock(*item.Product)
		}
	}

	fallback, err := s.loadFallback(ctx, userID)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	txErr := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		txCart := cart.NewRepository(tx)
		repo := NewRepository(tx)

		lines, err := txCart.LoadItems(ctx, existing.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart lines")
		}
		if len(lines) == 0 {
			return emptyCart()
		}

		totals := cart.ComputeTotals(lines, s.checkoutCfg)

		header, err := buildOrder(userID, input, fallback, totals)
		if err != nil {
			return err
		}
		if err := s.insertWithFreshNumber(ctx, repo, header); err != nil {
			return err
		}

		orderItems := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			if line.Product == nil || !line.Product.IsActive {
				return unavailableProduct(line)
			}
			ok, err := repo.DecrementStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
			}
			if !ok {
				available, readErr := repo.StockQuantity(ctx, line.ProductID)
				if readErr != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, readErr, "read stock")
				}
				s.metrics.IncStockConflict("decrement")
				conflicted := *line.Product
				conflicted.StockQuantity = available
				return insufficientStock(conflicted)
			}
			productID := line.ProductID
			orderItems = append(orderItems, models.OrderItem{
				OrderID:     header.ID,
				ProductID:   &productID,
				ProductName: line.Product.Name,
				Price:       line.Product.Price,
				Quantity:    line.Quantity,
				Subtotal:    line.Product.Price.Mul(decimalFromInt(line.Quantity)).Round(2),
			})
		}
		if err := repo.CreateOrderItems(ctx, orderItems); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order lines")
		}
		header.Items = orderItems

		profileRepo := profiles.NewRepository(tx)
		if err := profileRepo.UpsertDefaults(ctx, userID, profiles.Defaults{
			Phone:        input.Phone,
			AddressLine1: input.AddressLine1,
			AddressLine2: input.AddressLine2,
			City:         input.City,
			State:        input.State,
			PostalCode:   input.PostalCode,
			Country:      input.Country,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update profile defaults")
		}

		if err := txCart.ClearItems(ctx, existing.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
		}

		order = header
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.metrics.IncOrderPlaced(len(order.Items))
	if s.logg != nil {
		lctx := s.logg.WithFields(ctx, map[string]any{
			"order_number": order.OrderNumber,
			"line_items":   len(order.Items),
			"total":        order.Total.StringFixed(2),
		})
		s.logg.Info(lctx, "order placed")
	}
	return order, nil
}

func (s *service) Prefill(ctx context.Context, userID uuid.UUID) (*PrefillDTO, error) {
	fallback, err := s.loadFallback(ctx, userID)
	if err != nil {
		return nil, err
	}

	prefill := &PrefillDTO{
		FullName:     fallback.FullName,
		Email:        fallback.Email,
		Phone:        fallback.Phone,
		AddressLine1: fallback.AddressLine1,
		AddressLine2: fallback.AddressLine2,
		City:         fallback.City,
		State:        fallback.State,
		PostalCode:   fallback.PostalCode,
		Country:      fallback.Country,
	}

	cartRepo := cart.NewRepository(s.db.DB())
	existing, err := cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	totals := cart.Totals{}
	if existing != nil {
		items, err := cartRepo.LoadItems(ctx, existing.ID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart lines")
		}
		totals = cart.ComputeTotals(items, s.checkoutCfg)
	}
	prefill.ItemCount = totals.ItemCount
	prefill.Subtotal = totals.Subtotal
	prefill.Tax = totals.Tax
	prefill.Shipping = totals.Shipping
	prefill.Total = totals.Total
	return prefill, nil
}

// fallbackValues holds the stored account and profile fields that fill blanks
// in the submitted checkout form.
type fallbackValues struct {
	FullName     string
	Email        string
	Phone        string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	PostalCode   string
	Country      string
}

func (s *service) loadFallback(ctx context.Context, userID uuid.UUID) (fallbackValues, error) {
	var out fallbackValues

	user, err := users.NewRepository(s.db.DB()).FindByID(ctx, userID)
	if err != nil {
		return out, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if user == nil {
		return out, pkgerrors.New(pkgerrors.CodeUnauthorized, "account not found")
	}
	out.FullName = user.FullName()
	out.Email = user.Email

	profile, err := profiles.NewRepository(s.db.DB()).GetByUserID(ctx, userID)
	if err != nil {
		return out, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}
	if profile != nil {
		out.Phone = profile.Phone
		out.AddressLine1 = profile.AddressLine1
		out.AddressLine2 = profile.AddressLine2
		out.City = profile.City
		out.State = profile.State
		out.PostalCode = profile.PostalCode
		out.Country = profile.Country
	}
	return out, nil
}

// buildOrder resolves each header field as form value first, stored value
// second, then rejects checkouts whose shipping destination is still blank.
func buildOrder(userID uuid.UUID, input PlaceOrderInput, fallback fallbackValues, totals cart.Totals) (*models.Order, error) {
	pick := func(submitted, stored string) string {
		if submitted != "" {
			return submitted
		}
		return stored
	}

	order := &models.Order{
		ID:                   uuid.New(),
		UserID:               &userID,
		CustomerName:         pick(input.FullName, fallback.FullName),
		CustomerEmail:        pick(input.Email, fallback.Email),
		CustomerPhone:        pick(input.Phone, fallback.Phone),
		ShippingAddressLine1: pick(input.AddressLine1, fallback.AddressLine1),
		ShippingAddressLine2: pick(input.AddressLine2, fallback.AddressLine2),
		ShippingCity:         pick(input.City, fallback.City),
		ShippingState:        pick(input.State, fallback.State),
		ShippingPostalCode:   pick(input.PostalCode, fallback.PostalCode),
		ShippingCountry:      pick(input.Country, fallback.Country),
		Subtotal:             totals.Subtotal,
		Tax:                  totals.Tax,
		ShippingCost:         totals.Shipping,
		Total:                totals.Total,
		Status:               enums.OrderStatusPending,
		PaymentStatus:        enums.PaymentStatusPending,
		Notes:                input.Notes,
	}

	missing := make([]string, 0, 4)
	if order.ShippingAddressLine1 == "" {
		missing = append(missing, "address_line_1")
	}
	if order.ShippingCity == "" {
		missing = append(missing, "city")
	}
	if order.ShippingCountry == "" {
		missing = append(missing, "country")
	}
	if order.CustomerPhone == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping details are incomplete").
			WithDetails(map[string]any{"missing_fields": missing})
	}
	return order, nil
}

// insertWithFreshNumber creates the order, regenerating the order number and
// retrying when the unique index rejects a duplicate.
func (s *service) insertWithFreshNumber(ctx context.Context, repo *Repository, order *models.Order) error {
	attempts := s.checkoutCfg.MaxOrderRetries
	if attempts == 0 {
		attempts = 1
	}
	backoff := retry.WithMaxRetries(attempts, retry.NewConstant(5*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		order.OrderNumber = s.numberFn()
		if err := repo.CreateOrder(ctx, order); err != nil {
			if db.IsUniqueViolation(err, "order_number") {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}
	return nil
}

func newOrderNumber() string {
	id := uuid.New()
	return "ORD-" + strings.ToUpper(hex.EncodeToString(id[:orderNumberDigits]))
}

func emptyCart() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
}

func unavailableProduct(item models.CartItem) error {
	details := map[string]any{"product_id": item.ProductID}
	if item.Product != nil {
		details["product_name"] = item.Product.Name
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "product is no longer available").
		WithDetails(details)
}

func insufficientStock(product models.Product) error {
	return pkgerrors.New(pkgerrors.CodeStockConflict, "insufficient stock").
		WithDetails(map[string]any{
			"product_id":   product.ID,
			"product_name": product.Name,
			"available":    product.StockQuantity,
		})
}

func decimalFromInt(v int) decimal.Decimal {
	return decimal.NewFromInt(int64(v))
}
