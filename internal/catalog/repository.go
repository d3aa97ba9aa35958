package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/partshub/autospares-backend/pkg/db/models"
	"github.com/partshub/autospares-backend/pkg/enums"
	"github.com/partshub/autospares-backend/pkg/pagination"
)

// Repository encapsulates catalog persistence for products, categories, and
// gallery images.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) productQuery(ctx context.Context, filters ListFilters) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if filters.ActiveOnly {
		query = query.Where("products.is_active = ?", true)
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		query = query.Where(
			"LOWER(products.name) LIKE ? OR LOWER(products.description) LIKE ? OR LOWER(products.make) LIKE ? OR LOWER(products.model) LIKE ?",
			like, like, like, like,
		)
	}
	if filters.CategoryID != uuid.Nil {
		query = query.Where("products.category_id = ?", filters.CategoryID)
	}
	if filters.Make != "" {
		query = query.Where("products.make = ?", filters.Make)
	}
	if filters.Condition != "" {
		query = query.Where("products.condition = ?", filters.Condition)
	}
	if filters.MinPrice != nil {
		query = query.Where("products.price >= ?", *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		query = query.Where("products.price <= ?", *filters.MaxPrice)
	}

	switch filters.Sort {
	case enums.SortPriceLow:
		query = query.Order("products.price ASC")
	case enums.SortPriceHigh:
		query = query.Order("products.price DESC")
	case enums.SortName:
		query = query.Order("products.name ASC")
	default:
		query = query.Order("products.created_at DESC")
	}

	return query
}

// ListProducts applies the filters and returns one page plus the total row count.
func (r *Repository) ListProducts(ctx context.Context, filters ListFilters, page pagination.Params) ([]models.Product, int64, error) {
	query := r.productQuery(ctx, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var found []models.Product
	err := query.
		Preload("Category").
		Offset(page.Offset()).
		Limit(page.PerPage).
		Find(&found).Error
	if err != nil {
		return nil, 0, err
	}
	return found, total, nil
}

// DistinctMakes returns the sorted distinct non-empty makes of active products.
func (r *Repository) DistinctMakes(ctx context.Context) ([]string, error) {
	var makes []string
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = ? AND make <> ''", true).
		Distinct("make").
		Order("make ASC").
		Pluck("make", &makes).Error
	if err != nil {
		return nil, err
	}
	return makes, nil
}

// FindProductBySlug loads an active product with its category and gallery.
func (r *Repository) FindProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, created_at ASC")
		}).
		Where("slug = ? AND is_active = ?", slug, true).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindProductByID loads a product regardless of active state.
func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_primary DESC, created_at ASC")
		}).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// RelatedProducts returns active products sharing the category, featured first
// then newest, excluding the product itself.
func (r *Repository) RelatedProducts(ctx context.Context, categoryID, excludeID uuid.UUID, limit int) ([]models.Product, error) {
	var found []models.Product
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND id <> ? AND is_active = ?", categoryID, excludeID, true).
		Order("is_featured DESC, created_at DESC").
		Limit(limit).
		Find(&found).Error
	if err != nil {
		return nil, err
	}
	return found, nil
}

// FeaturedProducts returns the newest active featured products.
func (r *Repository) FeaturedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	var found []models.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND is_featured = ?", true, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&found).Error
	if err != nil {
		return nil, err
	}
	return found, nil
}

// LatestProducts returns the newest active products.
func (r *Repository) LatestProducts(ctx context.Context, limit int) ([]models.Product, error) {
	var found []models.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&found).Error
	if err != nil {
		return nil, err
	}
	return found, nil
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// SaveProduct persists all fields of an existing product.
func (r *Repository) SaveProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// FindProductsByIDs loads the products matching the given ids.
func (r *Repository) FindProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var found []models.Product
	err := r.db.WithContext(ctx).
		Preload("Images").
		Where("id IN ?", ids).
		Find(&found).Error
	if err != nil {
		return nil, err
	}
	return found, nil
}

// DeleteProductsByIDs removes the given products. Gallery rows cascade.
func (r *Repository) DeleteProductsByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Product{})
	return result.RowsAffected, result.Error
}

// ProductSlugExists reports whether another product already claims the slug.
func (r *Repository) ProductSlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Product{}).Where("slug = ?", slug)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListCategories returns categories with product counts, name order.
func (r *Repository) ListCategories(ctx context.Context, activeOnly bool) ([]CategoryWithCount, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Select("categories.*, (SELECT COUNT(*) FROM products p WHERE p.category_id = categories.id) AS product_count").
		Order("categories.name ASC")
	if activeOnly {
		query = query.Where("categories.is_active = ?", true)
	}

	var found []CategoryWithCount
	if err := query.Find(&found).Error; err != nil {
		return nil, err
	}
	return found, nil
}

// ActiveCategories returns up to limit active categories, name order.
func (r *Repository) ActiveCategories(ctx context.Context, limit int) ([]models.Category, error) {
	var found []models.Category
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Limit(limit).
		Find(&found).Error
	if err != nil {
		return nil, err
	}
	return found, nil
}

// FindCategoryByID loads a category by id.
func (r *Repository) FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// FindCategoryBySlug loads a category by slug.
func (r *Repository) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// CategoryNameExists reports whether another category uses the name,
// compared case-insensitively.
func (r *Repository) CategoryNameExists(ctx context.Context, name string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.Category{}).
		Where("LOWER(name) = LOWER(?)", name)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CategorySlugExists reports whether another category already claims the slug.
func (r *Repository) CategorySlugExists(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Category{}).Where("slug = ?", slug)
	if excludeID != uuid.Nil {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateCategory inserts a new category row.
func (r *Repository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// SaveCategory persists all fields of an existing category.
func (r *Repository) SaveCategory(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

// DeleteCategory removes the category row.
func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Category{}, "id = ?", id).Error
}

// CountProductsInCategory returns how many products reference the category.
func (r *Repository) CountProductsInCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}

// CreateImage inserts a gallery image. When the image is primary, any previous
// primary for the product is demoted first.
func (r *Repository) CreateImage(ctx context.Context, image *models.ProductImage) error {
	if image.IsPrimary {
		err := r.db.WithContext(ctx).
			Model(&models.ProductImage{}).
			Where("product_id = ? AND is_primary = ?", image.ProductID, true).
			UpdateColumn("is_primary", false).Error
		if err != nil {
			return err
		}
	}
	return r.db.WithContext(ctx).Create(image).Error
}

// FindImageByID loads a gallery image by id.
func (r *Repository) FindImageByID(ctx context.Context, id uuid.UUID) (*models.ProductImage, error) {
	var image models.ProductImage
	if err := r.db.WithContext(ctx).First(&image, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &image, nil
}

// DeleteImage removes a gallery image row.
func (r *Repository) DeleteImage(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ProductImage{}, "id = ?", id).Error
}
