package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/partshub/autospares-backend/pkg/db/models"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateOrder inserts the order header inside a savepoint. A duplicate order
// number on Postgres aborts the statement's transaction scope, so the
// savepoint is rolled back on failure to keep the surrounding transaction
// usable for a retry with a fresh number.
func (r *Repository) CreateOrder(ctx context.Context, order *models.Order) error {
	tx := r.db.WithContext(ctx)
	if err := tx.SavePoint("order_header").Error; err != nil {
		return err
	}
	if err := tx.Create(order).Error; err != nil {
		if rbErr := tx.RollbackTo("order_header").Error; rbErr != nil {
			return rbErr
		}
		return err
	}
	return nil
}

func (r *Repository) CreateOrderItems(ctx context.Context, items []models.OrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// DecrementStock subtracts quantity from the product's stock only when enough
// units remain. It reports whether the decrement was applied.
func (r *Repository) DecrementStock(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", productID, quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// StockQuantity re-reads the current stock level, used to report how many
// units remain after a failed decrement.
func (r *Repository) StockQuantity(ctx context.Context, productID uuid.UUID) (int, error) {
	var qty int
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Pluck("stock_quantity", &qty).Error
	return qty, err
}
