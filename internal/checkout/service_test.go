package checkout

import (
	"context"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/partshub/autospares-backend/pkg/db/models"
	pkgerrors "github.com/partshub/autospares-backend/pkg/errors"
)

var orderNumberPattern = regexp.MustCompile(`^ORD-[0-9A-F]{8}$`)

func TestPlaceOrderHappyPath(t *testing.T) {
	client := setupTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()

	user := seedUser(t, client, "buyer@example.com")
	pads := seedProduct(t, client, "Brake Pads", "100.00", 10)
	filter := seedProduct(t, client, "Oil Filter", "50.00", 5)
	cart := seedCartWithItems(t, client, user.ID,
		cartLine{productID: pads.ID, quantity: 2},
		cartLine{productID: filter.ID, quantity: 1},
	)

	order, err := svc.PlaceOrder(ctx, user.ID, PlaceOrderInput{
		Phone:        "+1-555-0100",
		AddressLine1: "12 Main St",
		City:         "Springfield",
		Country:      "US",
		Notes:        "leave at the gate",
	})
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.Regexp(t, orderNumberPattern, order.OrderNumber)
	assert.Equal(t, "250.00", order.Subtotal.StringFixed(2))
	assert.Equal(t, "25.00", order.Tax.StringFixed(2))
	assert.Equal(t, "10.00", order.ShippingCost.StringFixed(2))
	assert.Equal(t, "285.00", order.Total.StringFixed(2))
	assert.Equal(t, "Test Customer", order.CustomerName)
	assert.Equal(t, "buyer@example.com", order.CustomerEmail)
	assert.Equal(t, "leave at the gate", order.Notes)

	require.Len(t, order.Items, 2)
	assert.Equal(t, "Brake Pads", order.Items[0].ProductName)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, "200.00", order.Items[0].Subtotal.StringFixed(2))
	assert.Equal(t, "Oil Filter", order.Items[1].ProductName)

	assert.Equal(t, 8, stockOf(t, client, pads.ID))
	assert.Equal(t, 4, stockOf(t, client, filter.ID))
	assert.Zero(t, cartItemCount(t, client, cart.ID))

	// The cart row itself survives checkout.
	var cartRows int64
	require.NoError(t, client.DB().Model(&models.Cart{}).Where("id = ?", cart.ID).Count(&cartRows).Error)
	assert.EqualValues(t, 1, cartRows)

	// Submitted shipping details become the stored profile defaults.
	var profile models.CustomerProfile
	require.NoError(t, client.DB().Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, "12 Main St", profile.AddressLine1)
	assert.Equal(t, "+1-555-0100", profile.Phone)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	client := setupTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()

	user := seedUser(t, client, "empty@example.com")

	_, err := svc.PlaceOrder(ctx, user.ID, PlaceOrderInput{})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
	assert.Equal(t, "cart is empty", coded.Message())

	// Same result when the cart row exists but holds no lines.
	seedCartWithItems(t, client, user.ID)
	_, err = svc.PlaceOrder(ctx, user.ID, PlaceOrderInput{})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	client := setupTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()

	user := seedUser(t, client, "greedy@example.com")
	pads := seedProduct(t, client, "Brake Pads", "100.00", 3)
	cart := seedCartWithItems(t, client, user.ID, cartLine{productID: pads.ID, quantity: 5})

	_, err := svc.PlaceOrder(ctx, user.ID, PlaceOrderInput{
		Phone: "+1-555-0100", AddressLine1: "12 Main St", City: "Springfield", Country: "US",
	})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeStockConflict, coded.Code())

	details, ok := coded.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, pads.ID, details["product_id"])
	assert.Equal(t, "Brake Pads", details["product_name"])
	assert.Equal(t, 3, details["available"])

	// Nothing was persisted or mutated.
	assert.Equal(t, 3, stockOf(t, client, pads.ID))
	assert.EqualValues(t, 1, cartItemCount(t, client, cart.ID))
	var orders int64
	require.NoError(t, client.DB().Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
}

func TestPlaceOrderLastUnit(t *testing.T) {
	client := setupTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()

	pads := seedProduct(t, client, "Brake Pads", "100.00", 1)
	first := seedUser(t, client, "first@example.com")
	second := seedUser(t, client, "second@example.com")
	seedCartWithItems(t, client, first.ID, cartLine{productID: pads.ID, quantity: 1})
	seedCartWithItems(t, client, second.ID, cartLine{productID: pads.ID, quantity: 1})

	input := PlaceOrderInput{
		Phone: "+1-555-0100", AddressLine1: "12 Main St", City: "Springfield", Country: "US",
	}

	won, err := svc.PlaceOrder(ctx, first.ID, input)
	require.NoError(t, err)
	require.NotNil(t, won)

	_, err = svc.PlaceOrder(ctx, second.ID, input)
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeStockConflict, coded.Code())

	assert.Equal(t, 0, stockOf(t, client, pads.ID))
	var orders int64
	require.NoError(t, client.DB().Model(&models.Order{}).Count(&orders).Error)
	assert.EqualValues(t, 1, orders)
}

func TestPlaceOrderFallsBackToProfile(t *testing.T) {
	client := setupTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()

	user := seedUser(t, client, "returning@example.com")
	require.NoError(t, client.DB().Create(&models.CustomerProfile{
		ID:           uuid.New(),
		UserID:       user.ID,
		Phone:        "+44 20 7946 0000",
		AddressLine1: "221B Baker Street",
		City:         "London",
		PostalCode:   "NW1 6XE",
		Country:      "GB",
	}).Error)
	pads := seedProduct(t, client, "Brake Pads", "100.00", 10)
	seedCartWithItems(t, client, user.ID, cartLine{productID: pads.ID, quantity: 1})

	order, err := svc.PlaceOrder(ctx, user.ID, PlaceOrderInput{City: "Manchester"})
	require.NoError(t, err)

	assert.Equal(t, "Manchester", order.ShippingCity)
	assert.Equal(t, "221B Baker Street", order.ShippingAddressLine1)
	assert.Equal(t, "GB", order.ShippingCountry)
	assert.Equal(t, "+44 20 7946 0000", order.CustomerPhone)
	assert.Equal(t, "NW1 6XE", order.ShippingPostalCode)
}

func TestPlaceOrderRejectsIncompleteShipping(t *testing.T) {
	client := setupTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()

	user := seedUser(t, client, "anonymous@example.com")
	pads := seedProduct(t, client, "Brake Pads", "100.00", 10)
	cart := seedCartWithItems(t, client, user.ID, cartLine{productID: pads.ID, quantity: 1})

	_, err := svc.PlaceOrder(ctx, user.ID, PlaceOrderInput{AddressLine1: "12 Main St"})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())

	details, ok := coded.Details().(map[string]any)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"city", "country", "phone"}, details["missing_fields"])

	assert.Equal(t, 10, stockOf(t, client, pads.ID))
	assert.EqualValues(t, 1, cartItemCount(t, client, cart.ID))
}

func TestDecrementStockIsConditional(t *testing.T) {
	client := setupTestClient(t)
	ctx := context.Background()

	pads := seedProduct(t, client, "Brake Pads", "100.00", 1)
	repo := NewRepository(client.DB())

	ok, err := repo.DecrementStock(ctx, pads.ID, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DecrementStock(ctx, pads.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, 0, stockOf(t, client, pads.ID))
}

func TestPrefill(t *testing.T) {
	client := setupTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()

	user := seedUser(t, client, "prefill@example.com")
	require.NoError(t, client.DB().Create(&models.CustomerProfile{
		ID:           uuid.New(),
		UserID:       user.ID,
		Phone:        "+1-555-0100",
		AddressLine1: "12 Main St",
		City:         "Springfield",
		Country:      "US",
	}).Error)
	pads := seedProduct(t, client, "Brake Pads", "100.00", 10)
	seedCartWithItems(t, client, user.ID, cartLine{productID: pads.ID, quantity: 2})

	prefill, err := svc.Prefill(ctx, user.ID)
	require.NoError(t, err)

	assert.Equal(t, "Test Customer", prefill.FullName)
	assert.Equal(t, "prefill@example.com", prefill.Email)
	assert.Equal(t, "12 Main St", prefill.AddressLine1)
	assert.Equal(t, 2, prefill.ItemCount)
	assert.Equal(t, "200.00", prefill.Subtotal.StringFixed(2))
	assert.Equal(t, "230.00", prefill.Total.StringFixed(2))
}

func TestPlaceOrderRegeneratesCollidingOrderNumber(t *testing.T) {
	client := setupTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()

	owner := seedUser(t, client, "earlier@example.com")
	ownerID := owner.ID
	require.NoError(t, client.DB().Create(&models.Order{
		ID:                   uuid.New(),
		OrderNumber:          "ORD-DEADBEEF",
		UserID:               &ownerID,
		CustomerName:         "Earlier Buyer",
		CustomerEmail:        "earlier@example.com",
		CustomerPhone:        "+1-555-0199",
		ShippingAddressLine1: "1 First St",
		ShippingCity:         "Springfield",
		ShippingCountry:      "US",
	}).Error)

	user := seedUser(t, client, "collider@example.com")
	pads := seedProduct(t, client, "Brake Pads", "100.00", 10)
	cart := seedCartWithItems(t, client, user.ID, cartLine{productID: pads.ID, quantity: 1})

	// First candidate collides with the seeded order, the second is fresh.
	calls := 0
	svc.(*service).numberFn = func() string {
		calls++
		if calls == 1 {
			return "ORD-DEADBEEF"
		}
		return newOrderNumber()
	}

	order, err := svc.PlaceOrder(ctx, user.ID, PlaceOrderInput{
		Phone: "+1-555-0100", AddressLine1: "12 Main St", City: "Springfield", Country: "US",
	})
	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Equal(t, 2, calls)
	assert.NotEqual(t, "ORD-DEADBEEF", order.OrderNumber)
	assert.Regexp(t, orderNumberPattern, order.OrderNumber)

	// The colliding attempt left the transaction usable: the order committed
	// with its items, stock moved, the cart emptied.
	assert.Equal(t, 9, stockOf(t, client, pads.ID))
	assert.Zero(t, cartItemCount(t, client, cart.ID))
	var orders int64
	require.NoError(t, client.DB().Model(&models.Order{}).Count(&orders).Error)
	assert.EqualValues(t, 2, orders)
}

func TestPlaceOrderExhaustsOrderNumberRetries(t *testing.T) {
	client := setupTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()

	user := seedUser(t, client, "unlucky@example.com")
	pads := seedProduct(t, client, "Brake Pads", "100.00", 10)
	cart := seedCartWithItems(t, client, user.ID, cartLine{productID: pads.ID, quantity: 1})
	svc.(*service).numberFn = func() string { return "ORD-11111111" }

	won, err := svc.PlaceOrder(ctx, user.ID, PlaceOrderInput{
		Phone: "+1-555-0100", AddressLine1: "12 Main St", City: "Springfield", Country: "US",
	})
	require.NoError(t, err)
	require.NotNil(t, won)

	assert.Zero(t, cartItemCount(t, client, cart.ID))

	second := seedUser(t, client, "unlucky2@example.com")
	secondCart := seedCartWithItems(t, client, second.ID, cartLine{productID: pads.ID, quantity: 1})

	_, err = svc.PlaceOrder(ctx, second.ID, PlaceOrderInput{
		Phone: "+1-555-0100", AddressLine1: "12 Main St", City: "Springfield", Country: "US",
	})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeInternal, coded.Code())

	// The failed checkout rolled back completely.
	assert.Equal(t, 9, stockOf(t, client, pads.ID))
	assert.EqualValues(t, 1, cartItemCount(t, client, secondCart.ID))
	var orders int64
	require.NoError(t, client.DB().Model(&models.Order{}).Count(&orders).Error)
	assert.EqualValues(t, 1, orders)
}

func TestPlaceOrderRollsBackWhenStockDrainsMidCheckout(t *testing.T) {
	client := setupTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()

	user := seedUser(t, client, "latecomer@example.com")
	pads := seedProduct(t, client, "Brake Pads", "100.00", 1)
	cart := seedCartWithItems(t, client, user.ID, cartLine{productID: pads.ID, quantity: 1})

	// Drain the stock inside the checkout transaction, after the precheck
	// passed but before the order header insert.
	fired := false
	require.NoError(t, client.DB().Callback().Create().Before("gorm:create").
		Register("drain_stock_before_order", func(tx *gorm.DB) {
			if fired {
				return
			}
			if _, ok := tx.Statement.Dest.(*models.Order); !ok {
				return
			}
			fired = true
			err := tx.Session(&gorm.Session{NewDB: true}).
				Model(&models.Product{}).
				Where("id = ?", pads.ID).
				UpdateColumn("stock_quantity", 0).Error
			if err != nil {
				tx.AddError(err)
			}
		}))

	_, err := svc.PlaceOrder(ctx, user.ID, PlaceOrderInput{
		Phone: "+1-555-0100", AddressLine1: "12 Main St", City: "Springfield", Country: "US",
	})
	require.True(t, fired)
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeStockConflict, coded.Code())

	details, ok := coded.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 0, details["available"])

	// The already-inserted order header rolled back with the rest of the
	// transaction; stock and cart are untouched.
	var orders int64
	require.NoError(t, client.DB().Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
	assert.Equal(t, 1, stockOf(t, client, pads.ID))
	assert.EqualValues(t, 1, cartItemCount(t, client, cart.ID))
}

func TestOrderNumberFormat(t *testing.T) {
	for i := 0; i < 20; i++ {
		assert.Regexp(t, orderNumberPattern, newOrderNumber())
	}
}

