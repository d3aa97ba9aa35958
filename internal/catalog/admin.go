package catalog

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/partshub/autospares-backend/pkg/db"
	"github.com/partshub/autospares-backend/pkg/db/models"
	"github.com/partshub/autospares-backend/pkg/enums"
	pkgerrors "github.com/partshub/autospares-backend/pkg/errors"
	"github.com/partshub/autospares-backend/pkg/logger"
	"github.com/partshub/autospares-backend/pkg/pagination"
	"github.com/partshub/autospares-backend/pkg/storage"
)

// AdminService exposes the staff-facing catalog mutations.
type AdminService interface {
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	CreateCategory(ctx context.Context, input CategoryInput) (*CategoryDTO, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*CategoryDTO, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListProducts(ctx context.Context, raw RawListFilters, page pagination.Params) (*ProductPageDTO, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDetailDTO, error)
	CreateProduct(ctx context.Context, input ProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductDTO, error)
	BulkDeleteProducts(ctx context.Context, ids []uuid.UUID) (*BulkDeleteResult, error)
	UploadGalleryImage(ctx context.Context, productID uuid.UUID, input ImageUploadInput) (*GalleryImageDTO, error)
	DeleteGalleryImage(ctx context.Context, imageID uuid.UUID) error
}

type adminService struct {
	db    *db.Client
	blobs storage.BlobStore
	logg  *logger.Logger
}

// AdminServiceParams bundles the dependencies for the admin catalog service.
type AdminServiceParams struct {
	DB     *db.Client
	Blobs  storage.BlobStore
	Logger *logger.Logger
}

// NewAdminService constructs the admin catalog service.
func NewAdminService(params AdminServiceParams) (AdminService, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Blobs == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	return &adminService{
		db:    params.DB,
		blobs: params.Blobs,
		logg:  params.Logger,
	}, nil
}

func (s *adminService) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	found, err := NewRepository(s.db.DB()).ListCategories(ctx, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	out := make([]CategoryDTO, 0, len(found))
	for _, c := range found {
		out = append(out, categoryWithCountDTO(c))
	}
	return out, nil
}

func (s *adminService) CreateCategory(ctx context.Context, input CategoryInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	var created models.Category
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		taken, err := repo.CategoryNameExists(ctx, name, uuid.Nil)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check category name")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeConflict, "category name already in use")
		}

		slug, err := allocateSlug(ctx, Slugify(name), uuid.Nil, repo.CategorySlugExists)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "allocate slug")
		}

		created = models.Category{
			Name:        name,
			Slug:        slug,
			Description: strings.TrimSpace(input.Description),
			ImageKey:    input.ImageKey,
			IsActive:    true,
		}
		if input.IsActive != nil {
			created.IsActive = *input.IsActive
		}
		if err := repo.CreateCategory(ctx, &created); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create category")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := categoryDTO(created)
	return &dto, nil
}

func (s *adminService) UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	var updated models.Category
	var removedImage string
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		category, err := repo.FindCategoryByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
		}

		taken, err := repo.CategoryNameExists(ctx, name, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check category name")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeConflict, "category name already in use")
		}

		if !strings.EqualFold(category.Name, name) {
			slug, err := allocateSlug(ctx, Slugify(name), id, repo.CategorySlugExists)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "allocate slug")
			}
			category.Slug = slug
		}

		if replaced := replacedKey(category.ImageKey, input.ImageKey); replaced != "" {
			removedImage = replaced
		}

		category.Name = name
		category.Description = strings.TrimSpace(input.Description)
		category.ImageKey = input.ImageKey
		if input.IsActive != nil {
			category.IsActive = *input.IsActive
		}

		if err := repo.SaveCategory(ctx, category); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save category")
		}
		updated = *category
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deleteBlobs(ctx, removedImage)

	dto := categoryDTO(updated)
	return &dto, nil
}

func (s *adminService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	var removedImage string
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		category, err := repo.FindCategoryByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
		}

		count, err := repo.CountProductsInCategory(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count products")
		}
		if count > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "category still has products").
				WithDetails(map[string]any{"product_count": count})
		}

		if category.ImageKey != nil {
			removedImage = *category.ImageKey
		}
		if err := repo.DeleteCategory(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete category")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.deleteBlobs(ctx, removedImage)
	return nil
}

func (s *adminService) ListProducts(ctx context.Context, raw RawListFilters, page pagination.Params) (*ProductPageDTO, error) {
	repo := NewRepository(s.db.DB())

	filters := raw.Normalize()
	if raw.CategorySlug != "" {
		category, err := repo.FindCategoryBySlug(ctx, raw.CategorySlug)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolve category")
		}
		filters.CategoryID = category.ID
	}

	page = page.Normalize(pagination.AdminPerPage)
	products, total, err := repo.ListProducts(ctx, filters, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	return &ProductPageDTO{
		Products: productDTOs(products),
		Page:     page.Resolve(total),
	}, nil
}

func (s *adminService) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDetailDTO, error) {
	product, err := NewRepository(s.db.DB()).FindProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	return &ProductDetailDTO{
		ProductDTO: productDTO(*product),
		Gallery:    galleryDTOs(product.Images),
	}, nil
}

func (s *adminService) CreateProduct(ctx context.Context, input ProductInput) (*ProductDTO, error) {
	parsed, err := parseProductInput(input)
	if err != nil {
		return nil, err
	}

	var created models.Product
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		if _, err := repo.FindCategoryByID(ctx, parsed.categoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
		}

		slug, err := allocateSlug(ctx, Slugify(parsed.name), uuid.Nil, repo.ProductSlugExists)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "allocate slug")
		}

		created = models.Product{
			CategoryID:     parsed.categoryID,
			Name:           parsed.name,
			Slug:           slug,
			Description:    strings.TrimSpace(input.Description),
			Price:          parsed.price,
			CompareAtPrice: parsed.compareAtPrice,
			StockQuantity:  *input.StockQuantity,
			Condition:      parsed.condition,
			Make:           strings.TrimSpace(input.Make),
			Model:          strings.TrimSpace(input.Model),
			YearFrom:       input.YearFrom,
			YearTo:         input.YearTo,
			ImageKey:       input.ImageKey,
			Image2Key:      input.Image2Key,
			Image3Key:      input.Image3Key,
			ItemImage1Key:  input.ItemImage1Key,
			ItemImage2Key:  input.ItemImage2Key,
			IsActive:       true,
		}
		if input.IsActive != nil {
			created.IsActive = *input.IsActive
		}
		if input.IsFeatured != nil {
			created.IsFeatured = *input.IsFeatured
		}

		if err := repo.CreateProduct(ctx, &created); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := productDTO(created)
	return &dto, nil
}

func (s *adminService) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*ProductDTO, error) {
	parsed, err := parseProductInput(input)
	if err != nil {
		return nil, err
	}

	var updated models.Product
	var removedKeys []string
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		product, err := repo.FindProductByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
		}

		if product.CategoryID != parsed.categoryID {
			if _, err := repo.FindCategoryByID(ctx, parsed.categoryID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeValidation, "category does not exist")
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load category")
			}
		}

		if product.Name != parsed.name {
			slug, err := allocateSlug(ctx, Slugify(parsed.name), id, repo.ProductSlugExists)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "allocate slug")
			}
			product.Slug = slug
		}

		slots := []struct {
			current *string
			next    *string
		}{
			{product.ImageKey, input.ImageKey},
			{product.Image2Key, input.Image2Key},
			{product.Image3Key, input.Image3Key},
			{product.ItemImage1Key, input.ItemImage1Key},
			{product.ItemImage2Key, input.ItemImage2Key},
		}
		for _, slot := range slots {
			if replaced := replacedKey(slot.current, slot.next); replaced != "" {
				removedKeys = append(removedKeys, replaced)
			}
		}

		product.CategoryID = parsed.categoryID
		product.Name = parsed.name
		product.Description = strings.TrimSpace(input.Description)
		product.Price = parsed.price
		product.CompareAtPrice = parsed.compareAtPrice
		product.StockQuantity = *input.StockQuantity
		product.Condition = parsed.condition
		product.Make = strings.TrimSpace(input.Make)
		product.Model = strings.TrimSpace(input.Model)
		product.YearFrom = input.YearFrom
		product.YearTo = input.YearTo
		product.ImageKey = input.ImageKey
		product.Image2Key = input.Image2Key
		product.Image3Key = input.Image3Key
		product.ItemImage1Key = input.ItemImage1Key
		product.ItemImage2Key = input.ItemImage2Key
		if input.IsActive != nil {
			product.IsActive = *input.IsActive
		}
		if input.IsFeatured != nil {
			product.IsFeatured = *input.IsFeatured
		}

		product.Category = nil
		product.Images = nil
		if err := repo.SaveProduct(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save product")
		}
		updated = *product
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deleteBlobs(ctx, removedKeys...)

	dto := productDTO(updated)
	return &dto, nil
}

func (s *adminService) BulkDeleteProducts(ctx context.Context, ids []uuid.UUID) (*BulkDeleteResult, error) {
	if len(ids) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ids are required")
	}

	var removedKeys []string
	var deleted int64
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		products, err := repo.FindProductsByIDs(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load products")
		}
		for _, product := range products {
			removedKeys = append(removedKeys, product.ImageSlotKeys()...)
			for _, img := range product.Images {
				removedKeys = append(removedKeys, img.StorageKey)
			}
		}

		deleted, err = repo.DeleteProductsByIDs(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete products")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deleteBlobs(ctx, removedKeys...)
	return &BulkDeleteResult{Deleted: deleted}, nil
}

// UploadGalleryImage stores the image bytes and appends a gallery row. The
// blob goes out before the row so a failed insert leaves at worst an orphaned
// object, never a key without content.
func (s *adminService) UploadGalleryImage(ctx context.Context, productID uuid.UUID, input ImageUploadInput) (*GalleryImageDTO, error) {
	if input.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image file is required")
	}

	repo := NewRepository(s.db.DB())
	product, err := repo.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	key := galleryKey(product.ID, input.Filename)
	if err := s.blobs.Upload(ctx, key, input.ContentType, input.Body); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store image")
	}

	image := &models.ProductImage{
		ID:         uuid.New(),
		ProductID:  product.ID,
		StorageKey: key,
		IsPrimary:  input.IsPrimary,
	}
	if err := repo.CreateImage(ctx, image); err != nil {
		s.deleteBlobs(ctx, key)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create image")
	}

	return &GalleryImageDTO{
		ID:         image.ID,
		StorageKey: image.StorageKey,
		IsPrimary:  image.IsPrimary,
		URL:        s.blobs.PublicURL(key),
	}, nil
}

// galleryKey namespaces uploads per product and keeps a sanitized trace of the
// original filename. A random prefix prevents overwrites on repeated names.
func galleryKey(productID uuid.UUID, filename string) string {
	base := Slugify(strings.TrimSuffix(filename, filepath.Ext(filename)))
	if base == "" {
		base = "image"
	}
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("products/%s/%s-%s%s", productID, uuid.NewString()[:8], base, ext)
}

func (s *adminService) DeleteGalleryImage(ctx context.Context, imageID uuid.UUID) error {
	var removedKey string
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)

		image, err := repo.FindImageByID(ctx, imageID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "image not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load image")
		}

		removedKey = image.StorageKey
		if err := repo.DeleteImage(ctx, imageID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete image")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.deleteBlobs(ctx, removedKey)
	return nil
}

// deleteBlobs removes storage objects after the owning rows are gone. Failures
// are logged, not surfaced: the database is already consistent and orphaned
// blobs are harmless.
func (s *adminService) deleteBlobs(ctx context.Context, keys ...string) {
	var combined error
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, key); err != nil {
			combined = multierr.Append(combined, err)
		}
	}
	if combined != nil && s.logg != nil {
		s.logg.Error(ctx, "deleting storage objects", combined)
	}
}

func replacedKey(current, next *string) string {
	if current == nil || *current == "" {
		return ""
	}
	if next == nil || *next != *current {
		return *current
	}
	return ""
}

type parsedProductInput struct {
	name           string
	categoryID     uuid.UUID
	price          decimal.Decimal
	compareAtPrice *decimal.Decimal
	condition      enums.ProductCondition
}

func parseProductInput(input ProductInput) (parsedProductInput, error) {
	var parsed parsedProductInput

	parsed.name = strings.TrimSpace(input.Name)
	if parsed.name == "" {
		return parsed, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	categoryID, err := uuid.Parse(input.CategoryID)
	if err != nil {
		return parsed, pkgerrors.New(pkgerrors.CodeValidation, "category_id must be a valid uuid")
	}
	parsed.categoryID = categoryID

	price, err := decimal.NewFromString(strings.TrimSpace(input.Price))
	if err != nil || !price.IsPositive() {
		return parsed, pkgerrors.New(pkgerrors.CodeValidation, "price must be a positive number")
	}
	parsed.price = price

	if input.CompareAtPrice != nil && strings.TrimSpace(*input.CompareAtPrice) != "" {
		compareAt, err := decimal.NewFromString(strings.TrimSpace(*input.CompareAtPrice))
		if err != nil || !compareAt.IsPositive() {
			return parsed, pkgerrors.New(pkgerrors.CodeValidation, "compare_at_price must be a positive number")
		}
		parsed.compareAtPrice = &compareAt
	}

	if input.StockQuantity == nil || *input.StockQuantity < 0 {
		return parsed, pkgerrors.New(pkgerrors.CodeValidation, "stock_quantity must be zero or greater")
	}

	parsed.condition = enums.ProductConditionNew
	if input.Condition != "" {
		condition, err := enums.ParseProductCondition(input.Condition)
		if err != nil {
			return parsed, pkgerrors.New(pkgerrors.CodeValidation, "invalid condition")
		}
		parsed.condition = condition
	}

	if input.YearFrom != nil && input.YearTo != nil && *input.YearFrom > *input.YearTo {
		return parsed, pkgerrors.New(pkgerrors.CodeValidation, "year_from cannot exceed year_to")
	}

	return parsed, nil
}
