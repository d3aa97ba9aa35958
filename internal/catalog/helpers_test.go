package catalog

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
	"github.com/partshub/autospares-backend/pkg/enums"
)

var catalogTestSchema = []string{
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
  price NUMERIC NOT NULL,
  compare_at_price NUMERIC,
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
	`CREATE TABLE product_images (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  storage_key TEXT NOT NULL,
  is_primary INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
}

func setupCatalogTestClient(t *testing.T) *db.Client {
	t.Helper()

	cfg := config.DBConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:catalog_%s?mode=memory&cache=shared", uuid.NewString()),
	}
	client, err := db.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	for _, stmt := range catalogTestSchema {
		require.NoError(t, client.DB().Exec(stmt).Error)
	}
	return client
}

func seedCategory(t *testing.T, client *db.Client, name, slug string) *models.Category {
	t.Helper()

	category := &models.Category{
		ID:       uuid.New(),
		Name:     name,
		Slug:     slug,
		IsActive: true,
	}
	require.NoError(t, client.DB().Create(category).Error)
	return category
}

type productSeed struct {
	name       string
	price      string
	stock      int
	make_      string
	condition  string
	featured   bool
	active     bool
	categoryID uuid.UUID
	createdAt  time.Time
}

func seedCatalogProduct(t *testing.T, client *db.Client, seed productSeed) *models.Product {
	t.Helper()

	if seed.price == "" {
		seed.price = "10.00"
	}
	if seed.condition == "" {
		seed.condition = "new"
	}
	product := &models.Product{
		ID:            uuid.New(),
		CategoryID:    seed.categoryID,
		Name:          seed.name,
		Slug:          Slugify(seed.name) + "-" + uuid.NewString()[:8],
		Price:         decimal.RequireFromString(seed.price),
		StockQuantity: seed.stock,
		Condition:     enumsCondition(t, seed.condition),
		Make:          seed.make_,
		IsActive:      seed.active,
		IsFeatured:    seed.featured,
	}
	if !seed.createdAt.IsZero() {
		product.CreatedAt = seed.createdAt
	}
	require.NoError(t, client.DB().Create(product).Error)
	return product
}

func enumsCondition(t *testing.T, value string) enums.ProductCondition {
	t.Helper()

	condition, err := enums.ParseProductCondition(value)
	require.NoError(t, err)
	return condition
}
