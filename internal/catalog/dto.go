package catalog

import (
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/partshub/autospares-backend/pkg/db/models"
	"github.com/partshub/autospares-backend/pkg/enums"
	"github.com/partshub/autospares-backend/pkg/pagination"
)

// RawListFilters carries unvalidated query-string filter inputs. Non-numeric
// price bounds and unknown conditions are ignored rather than rejected.
type RawListFilters struct {
	Query        string
	CategorySlug string
	Make         string
	Condition    string
	MinPrice     string
	MaxPrice     string
	Sort         string
}

// ListFilters is the validated filter set applied by the repository.
type ListFilters struct {
	Query      string
	CategoryID uuid.UUID
	Make       string
	Condition  enums.ProductCondition
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Sort       enums.SortOption
	ActiveOnly bool
}

// Normalize drops unparseable filter values and resolves the sort option.
func (raw RawListFilters) Normalize() ListFilters {
	filters := ListFilters{
		Query: strings.TrimSpace(raw.Query),
		Make:  strings.TrimSpace(raw.Make),
		Sort:  enums.ParseSortOption(raw.Sort),
	}
	if condition, err := enums.ParseProductCondition(raw.Condition); err == nil {
		filters.Condition = condition
	}
	if price, err := decimal.NewFromString(strings.TrimSpace(raw.MinPrice)); err == nil {
		filters.MinPrice = &price
	}
	if price, err := decimal.NewFromString(strings.TrimSpace(raw.MaxPrice)); err == nil {
		filters.MaxPrice = &price
	}
	return filters
}

// CategoryWithCount pairs a category row with its product count.
type CategoryWithCount struct {
	models.Category
	ProductCount int64 `gorm:"column:product_count"`
}

// CategoryDTO is the transport shape for a category.
type CategoryDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Description  string    `json:"description"`
	ImageKey     *string   `json:"image_key,omitempty"`
	IsActive     bool      `json:"is_active"`
	ProductCount *int64    `json:"product_count,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProductDTO is the transport shape for a product listing entry.
type ProductDTO struct {
	ID             uuid.UUID              `json:"id"`
	Name           string                 `json:"name"`
	Slug           string                 `json:"slug"`
	Description    string                 `json:"description"`
	Price          decimal.Decimal        `json:"price"`
	CompareAtPrice *decimal.Decimal       `json:"compare_at_price,omitempty"`
	StockQuantity  int                    `json:"stock_quantity"`
	Condition      enums.ProductCondition `json:"condition"`
	Make           string                 `json:"make"`
	Model          string                 `json:"model"`
	YearFrom       *int                   `json:"year_from,omitempty"`
	YearTo         *int                   `json:"year_to,omitempty"`
	ImageKeys      []string               `json:"image_keys"`
	IsActive       bool                   `json:"is_active"`
	IsFeatured     bool                   `json:"is_featured"`
	Category       *CategoryDTO           `json:"category,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}

// GalleryImageDTO is the transport shape for a gallery entry. URL is only
// populated on upload responses.
type GalleryImageDTO struct {
	ID         uuid.UUID `json:"id"`
	StorageKey string    `json:"storage_key"`
	IsPrimary  bool      `json:"is_primary"`
	URL        string    `json:"url,omitempty"`
}

// ProductDetailDTO extends ProductDTO with the gallery and related products.
type ProductDetailDTO struct {
	ProductDTO
	Gallery []GalleryImageDTO `json:"gallery"`
	Related []ProductDTO      `json:"related"`
}

// ProductPageDTO is one page of listing results plus the filter vocabulary.
type ProductPageDTO struct {
	Products []ProductDTO    `json:"products"`
	Page     pagination.Page `json:"page"`
	Makes    []string        `json:"makes,omitempty"`
}

// HomeDTO is the storefront landing feed.
type HomeDTO struct {
	Featured   []ProductDTO  `json:"featured"`
	Categories []CategoryDTO `json:"categories"`
	Latest     []ProductDTO  `json:"latest"`
}

// CategoryInput is the admin payload for creating or updating a category.
type CategoryInput struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	ImageKey    *string `json:"image_key,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// ProductInput is the admin payload for creating or updating a product.
type ProductInput struct {
	Name           string  `json:"name" validate:"required"`
	CategoryID     string  `json:"category_id" validate:"required,uuid"`
	Description    string  `json:"description" validate:"required"`
	Price          string  `json:"price" validate:"required"`
	CompareAtPrice *string `json:"compare_at_price,omitempty"`
	StockQuantity  *int    `json:"stock_quantity" validate:"required"`
	Condition      string  `json:"condition,omitempty"`
	Make           string  `json:"make,omitempty"`
	Model          string  `json:"model,omitempty"`
	YearFrom       *int    `json:"year_from,omitempty"`
	YearTo         *int    `json:"year_to,omitempty"`
	ImageKey       *string `json:"image_key,omitempty"`
	Image2Key      *string `json:"image_2_key,omitempty"`
	Image3Key      *string `json:"image_3_key,omitempty"`
	ItemImage1Key  *string `json:"item_image_1_key,omitempty"`
	ItemImage2Key  *string `json:"item_image_2_key,omitempty"`
	IsActive       *bool   `json:"is_active,omitempty"`
	IsFeatured     *bool   `json:"is_featured,omitempty"`
}

// ImageUploadInput carries a gallery image upload.
type ImageUploadInput struct {
	Filename    string
	ContentType string
	Body        io.Reader
	IsPrimary   bool
}

// BulkDeleteResult reports the outcome of a bulk product delete.
type BulkDeleteResult struct {
	Deleted int64 `json:"deleted"`
}

func categoryDTO(c models.Category) CategoryDTO {
	return CategoryDTO{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		ImageKey:    c.ImageKey,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
	}
}

func categoryWithCountDTO(c CategoryWithCount) CategoryDTO {
	dto := categoryDTO(c.Category)
	count := c.ProductCount
	dto.ProductCount = &count
	return dto
}

func productDTO(p models.Product) ProductDTO {
	dto := ProductDTO{
		ID:             p.ID,
		Name:           p.Name,
		Slug:           p.Slug,
		Description:    p.Description,
		Price:          p.Price,
		CompareAtPrice: p.CompareAtPrice,
		StockQuantity:  p.StockQuantity,
		Condition:      p.Condition,
		Make:           p.Make,
		Model:          p.Model,
		YearFrom:       p.YearFrom,
		YearTo:         p.YearTo,
		ImageKeys:      p.ImageSlotKeys(),
		IsActive:       p.IsActive,
		IsFeatured:     p.IsFeatured,
		CreatedAt:      p.CreatedAt,
	}
	if p.Category != nil {
		category := categoryDTO(*p.Category)
		dto.Category = &category
	}
	return dto
}

func productDTOs(products []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		out = append(out, productDTO(p))
	}
	return out
}

func galleryDTOs(images []models.ProductImage) []GalleryImageDTO {
	out := make([]GalleryImageDTO, 0, len(images))
	for _, img := range images {
		out = append(out, GalleryImageDTO{
			ID:         img.ID,
			StorageKey: img.StorageKey,
			IsPrimary:  img.IsPrimary,
		})
	}
	return out
}
