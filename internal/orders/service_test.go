package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partshub/autospares-backend/pkg/config"
	"github.com/partshub/autospares-backend/pkg/db"
	"github.com/partshub/autospares-backend/pkg/db/models"
	"github.com/partshub/autospares-backend/pkg/enums"
	pkgerrors "github.com/partshub/autospares-backend/pkg/errors"
)

var testSchema = []string{
	`CREATE TABLE orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  user_id TEXT,
  customer_name TEXT NOT NULL,
  customer_email TEXT NOT NULL,
  customer_phone TEXT NOT NULL DEFAULT '',
  shipping_address_line_1 TEXT NOT NULL,
  shipping_address_line_2 TEXT NOT NULL DEFAULT '',
  shipping_city TEXT NOT NULL,
  shipping_state TEXT NOT NULL DEFAULT '',
  shipping_postal_code TEXT NOT NULL DEFAULT '',
  shipping_country TEXT NOT NULL,
  subtotal TEXT NOT NULL,
  tax TEXT NOT NULL,
  shipping_cost TEXT NOT NULL,
  total TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_status TEXT NOT NULL DEFAULT 'pending',
  notes TEXT NOT NULL DEFAULT '',
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT,
  product_name TEXT NOT NULL,
  price TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  subtotal TEXT NOT NULL,
  created_at DATETIME
);`,
}

func setupTestClient(t *testing.T) *db.Client {
	t.Helper()

	cfg := config.DBConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:orders_%s?mode=memory&cache=shared", uuid.NewString()),
	}
	client, err := db.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	for _, stmt := range testSchema {
		require.NoError(t, client.DB().Exec(stmt).Error)
	}
	return client
}

func seedOrder(t *testing.T, client *db.Client, userID *uuid.UUID, number string, placedAt time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:                   uuid.New(),
		OrderNumber:          number,
		UserID:               userID,
		CustomerName:         "Test Customer",
		CustomerEmail:        "customer@example.com",
		CustomerPhone:        "+1-555-0100",
		ShippingAddressLine1: "12 Main St",
		ShippingCity:         "Springfield",
		ShippingCountry:      "US",
		Subtotal:             decimal.RequireFromString("100.00"),
		Tax:                  decimal.RequireFromString("10.00"),
		ShippingCost:         decimal.RequireFromString("10.00"),
		Total:                decimal.RequireFromString("120.00"),
		Status:               enums.OrderStatusPending,
		PaymentStatus:        enums.PaymentStatusPending,
		CreatedAt:            placedAt,
	}
	require.NoError(t, client.DB().Create(order).Error)

	item := &models.OrderItem{
		ID:          uuid.New(),
		OrderID:     order.ID,
		ProductName: "Brake Pads",
		Price:       decimal.RequireFromString("100.00"),
		Quantity:    1,
		Subtotal:    decimal.RequireFromString("100.00"),
	}
	require.NoError(t, client.DB().Create(item).Error)
	return order
}

func newTestService(t *testing.T, client *db.Client) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{DB: client})
	require.NoError(t, err)
	return svc
}

func TestListByUserNewestFirst(t *testing.T) {
	client := setupTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()

	userID := uuid.New()
	otherID := uuid.New()
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	seedOrder(t, client, &userID, "ORD-AAAA0001", base)
	seedOrder(t, client, &userID, "ORD-AAAA0002", base.Add(time.Hour))
	seedOrder(t, client, &otherID, "ORD-BBBB0001", base.Add(2*time.Hour))

	got, err := svc.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ORD-AAAA0002", got[0].OrderNumber)
	assert.Equal(t, "ORD-AAAA0001", got[1].OrderNumber)
	require.Len(t, got[0].Items, 1)
	assert.Equal(t, "Brake Pads", got[0].Items[0].ProductName)
}

func TestGetByNumberOwner(t *testing.T) {
	client := setupTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()

	userID := uuid.New()
	seedOrder(t, client, &userID, "ORD-AAAA0001", time.Now())

	got, err := svc.GetByNumber(ctx, "ORD-AAAA0001", Actor{UserID: userID, Role: enums.ActorRoleCustomer})
	require.NoError(t, err)
	assert.Equal(t, "ORD-AAAA0001", got.OrderNumber)
	assert.Equal(t, "120.00", got.Total.StringFixed(2))
}

func TestGetByNumberForbiddenForStranger(t *testing.T) {
	client := setupTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()

	ownerID := uuid.New()
	seedOrder(t, client, &ownerID, "ORD-AAAA0001", time.Now())

	_, err := svc.GetByNumber(ctx, "ORD-AAAA0001", Actor{UserID: uuid.New(), Role: enums.ActorRoleCustomer})
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeForbidden, coded.Code())
}

func TestGetByNumberStaffMayReadAny(t *testing.T) {
	client := setupTestClient(t)
	svc := newTestService(t, client)
	ctx := context.Background()

	ownerID := uuid.New()
	seedOrder(t, client, &ownerID, "ORD-AAAA0001", time.Now())

	for _, role := range []enums.ActorRole{enums.ActorRoleStoreAdmin, enums.ActorRoleSuperAdmin} {
		got, err := svc.GetByNumber(ctx, "ORD-AAAA0001", Actor{UserID: uuid.New(), Role: role})
		require.NoError(t, err, role)
		assert.Equal(t, "ORD-AAAA0001", got.OrderNumber)
	}
}

func TestGetByNumberUnknown(t *testing.T) {
	client := setupTestClient(t)
	svc := newTestService(t, client)

	_, err := svc.GetByNumber(context.Background(), "ORD-DEADBEEF", Actor{UserID: uuid.New(), Role: enums.ActorRoleSuperAdmin})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
