package checkout

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/partshub/autospares-backend/pkg/config"
	"github.com/partshub/autospares-backend/pkg/db"
	"github.com/partshub/autospares-backend/pkg/db/models"
)

var testSchema = []string{
	`CREATE TABLE users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  username TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL DEFAULT '',
  last_name TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT 'customer',
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE customer_profiles (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  phone TEXT NOT NULL DEFAULT '',
  address_line_1 TEXT NOT NULL DEFAULT '',
  address_line_2 TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL DEFAULT '',
  state TEXT NOT NULL DEFAULT '',
  postal_code TEXT NOT NULL DEFAULT '',
  country TEXT NOT NULL DEFAULT '',
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  slug TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT '',
  image_key TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE products (
  id TEXT PRIMARY KEY,
  category_id TEXT NOT NULL,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT NOT NULL DEFAULT '',
  price TEXT NOT NULL,
  compare_at_price TEXT,
  stock_quantity INTEGER NOT NULL DEFAULT 0,
  condition TEXT NOT NULL DEFAULT 'new',
  make TEXT NOT NULL DEFAULT '',
  model TEXT NOT NULL DEFAULT '',
  year_from INTEGER,
  year_to INTEGER,
  image_key TEXT,
  image_2_key TEXT,
  image_3_key TEXT,
  item_image_1_key TEXT,
  item_image_2_key TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  is_featured INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE carts (
  id TEXT PRIMARY KEY,
  user_id TEXT UNIQUE,
  session_key TEXT UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (cart_id, product_id)
);`,
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
		DSN:    fmt.Sprintf("file:checkout_%s?mode=memory&cache=shared", uuid.NewString()),
	}
	client, err := db.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	for _, stmt := range testSchema {
		require.NoError(t, client.DB().Exec(stmt).Error)
	}
	return client
}

func testCheckoutConfig() config.CheckoutConfig {
	return config.CheckoutConfig{
		TaxRatePercent:  10,
		ShippingFlatFee: "10.00",
		MaxOrderRetries: 3,
	}
}

func newTestService(t *testing.T, client *db.Client) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{DB: client, CheckoutConfig: testCheckoutConfig()})
	require.NoError(t, err)
	return svc
}

func seedUser(t *testing.T, client *db.Client, email string) *models.User {
	t.Helper()

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     email,
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     "Customer",
		IsActive:     true,
	}
	require.NoError(t, client.DB().Create(user).Error)
	return user
}

func seedProduct(t *testing.T, client *db.Client, name, price string, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:            uuid.New(),
		CategoryID:    uuid.New(),
		Name:          name,
		Slug:          fmt.Sprintf("%s-%s", name, uuid.NewString()[:8]),
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		IsActive:      true,
	}
	require.NoError(t, client.DB().Create(product).Error)
	return product
}

type cartLine struct {
	productID uuid.UUID
	quantity  int
}

func seedCartWithItems(t *testing.T, client *db.Client, userID uuid.UUID, lines ...cartLine) *models.Cart {
	t.Helper()

	cart := &models.Cart{ID: uuid.New(), UserID: &userID}
	require.NoError(t, client.DB().Create(cart).Error)
	for i, line := range lines {
		item := &models.CartItem{
			ID:        uuid.New(),
			CartID:    cart.ID,
			ProductID: line.productID,
			Quantity:  line.quantity,
			CreatedAt: time.Unix(int64(1700000000+i), 0),
		}
		require.NoError(t, client.DB().Create(item).Error)
	}
	return cart
}

func stockOf(t *testing.T, client *db.Client, productID uuid.UUID) int {
	t.Helper()

	var qty int
	require.NoError(t, client.DB().
		Model(&models.Product{}).
		Where("id = ?", productID).
		Pluck("stock_quantity", &qty).Error)
	return qty
}

func cartItemCount(t *testing.T, client *db.Client, cartID uuid.UUID) int64 {
	t.Helper()

	var count int64
	require.NoError(t, client.DB().
		Model(&models.CartItem{}).
		Where("cart_id = ?", cartID).
		Count(&count).Error)
	return count
}
