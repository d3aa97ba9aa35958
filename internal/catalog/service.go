package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/partshub/autospares-backend/pkg/db"
	pkgerrors "github.com/partshub/autospares-backend/pkg/errors"
	"github.com/partshub/autospares-backend/pkg/pagination"
)

const (
	homeFeaturedLimit   = 8
	homeCategoriesLimit = 6
	homeLatestLimit     = 8
	relatedLimit        = 12
)

// Service exposes the storefront catalog read surface.
type Service interface {
	Home(ctx context.Context) (*HomeDTO, error)
	ListProducts(ctx context.Context, raw RawListFilters, page pagination.Params) (*ProductPageDTO, error)
	GetProduct(ctx context.Context, slug string) (*ProductDetailDTO, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
}

type service struct {
	db *db.Client
}

// ServiceParams bundles the dependencies for the storefront catalog service.
type ServiceParams struct {
	DB *db.Client
}

// NewService constructs the storefront catalog service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	return &service{db: params.DB}, nil
}

func (s *service) repo() *Repository {
	return NewRepository(s.db.DB())
}

func (s *service) Home(ctx context.Context) (*HomeDTO, error) {
	repo := s.repo()

	featured, err := repo.FeaturedProducts(ctx, homeFeaturedLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load featured products")
	}
	categories, err := repo.ActiveCategories(ctx, homeCategoriesLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load categories")
	}
	latest, err := repo.LatestProducts(ctx, homeLatestLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load latest products")
	}

	categoryDTOs := make([]CategoryDTO, 0, len(categories))
	for _, c := range categories {
		categoryDTOs = append(categoryDTOs, categoryDTO(c))
	}

	return &HomeDTO{
		Featured:   productDTOs(featured),
		Categories: categoryDTOs,
		Latest:     productDTOs(latest),
	}, nil
}

func (s *service) ListProducts(ctx context.Context, raw RawListFilters, page pagination.Params) (*ProductPageDTO, error) {
	repo := s.repo()

	filters := raw.Normalize()
	filters.ActiveOnly = true

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

	page = page.Normalize(pagination.StorefrontPerPage)
	products, total, err := repo.ListProducts(ctx, filters, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	makes, err := repo.DistinctMakes(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list makes")
	}

	return &ProductPageDTO{
		Products: productDTOs(products),
		Page:     page.Resolve(total),
		Makes:    makes,
	}, nil
}

func (s *service) GetProduct(ctx context.Context, slug string) (*ProductDetailDTO, error) {
	repo := s.repo()

	product, err := repo.FindProductBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}

	related, err := repo.RelatedProducts(ctx, product.CategoryID, product.ID, relatedLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load related products")
	}

	return &ProductDetailDTO{
		ProductDTO: productDTO(*product),
		Gallery:    galleryDTOs(product.Images),
		Related:    productDTOs(related),
	}, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	found, err := s.repo().ListCategories(ctx, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}

	out := make([]CategoryDTO, 0, len(found))
	for _, c := range found {
		out = append(out, categoryWithCountDTO(c))
	}
	return out, nil
}
