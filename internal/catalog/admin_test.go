package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partshub/autospares-backend/pkg/db"
	"github.com/partshub/autospares-backend/pkg/db/models"
	pkgerrors "github.com/partshub/autospares-backend/pkg/errors"
	"github.com/partshub/autospares-backend/pkg/pagination"
)

type stubBlobStore struct {
	mu        sync.Mutex
	deleted   []string
	uploaded  []string
	uploadErr error
}

func (s *stubBlobStore) Upload(ctx context.Context, key, contentType string, body io.Reader) error {
	if s.uploadErr != nil {
		return s.uploadErr
	}
	if _, err := io.Copy(io.Discard, body); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploaded = append(s.uploaded, key)
	return nil
}

func (s *stubBlobStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *stubBlobStore) PublicURL(key string) string {
	return "https://storage.example.com/" + key
}

func (s *stubBlobStore) deletedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

func (s *stubBlobStore) uploadedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.uploaded...)
}

func newAdminTestService(t *testing.T, client *db.Client) (AdminService, *stubBlobStore) {
	t.Helper()

	blobs := &stubBlobStore{}
	svc, err := NewAdminService(AdminServiceParams{DB: client, Blobs: blobs})
	require.NoError(t, err)
	return svc, blobs
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func validProductInput(categoryID uuid.UUID) ProductInput {
	return ProductInput{
		Name:          "Brake Pads",
		CategoryID:    categoryID.String(),
		Description:   "Ceramic front brake pads",
		Price:         "49.99",
		StockQuantity: intPtr(10),
		Condition:     "new",
		Make:          "Toyota",
	}
}

func TestCreateCategoryAllocatesSlugSequence(t *testing.T) {
	client := setupCatalogTestClient(t)
	svc, _ := newAdminTestService(t, client)
	ctx := context.Background()

	first, err := svc.CreateCategory(ctx, CategoryInput{Name: "Brake Pads"})
	require.NoError(t, err)
	assert.Equal(t, "brake-pads", first.Slug)

	// Same slug base from a different name keeps the names unique but the
	// slug suffixed.
	second, err := svc.CreateCategory(ctx, CategoryInput{Name: "Brake  Pads!"})
	require.NoError(t, err)
	assert.Equal(t, "brake-pads-1", second.Slug)

	third, err := svc.CreateCategory(ctx, CategoryInput{Name: "Brake-Pads?"})
	require.NoError(t, err)
	assert.Equal(t, "brake-pads-2", third.Slug)
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	client := setupCatalogTestClient(t)
	svc, _ := newAdminTestService(t, client)
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, CategoryInput{Name: "Brakes"})
	require.NoError(t, err)

	_, err = svc.CreateCategory(ctx, CategoryInput{Name: "  brakes "})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestUpdateCategoryKeepsSlugWhenNameUnchanged(t *testing.T) {
	client := setupCatalogTestClient(t)
	svc, _ := newAdminTestService(t, client)
	ctx := context.Background()

	created, err := svc.CreateCategory(ctx, CategoryInput{Name: "Brakes"})
	require.NoError(t, err)

	updated, err := svc.UpdateCategory(ctx, created.ID, CategoryInput{
		Name:        "Brakes",
		Description: "Stopping power",
	})
	require.NoError(t, err)
	assert.Equal(t, "brakes", updated.Slug)
	assert.Equal(t, "Stopping power", updated.Description)

	renamed, err := svc.UpdateCategory(ctx, created.ID, CategoryInput{Name: "Suspension"})
	require.NoError(t, err)
	assert.Equal(t, "suspension", renamed.Slug)
}

func TestUpdateCategoryReplacedImageIsDeleted(t *testing.T) {
	client := setupCatalogTestClient(t)
	svc, blobs := newAdminTestService(t, client)
	ctx := context.Background()

	created, err := svc.CreateCategory(ctx, CategoryInput{
		Name:     "Brakes",
		ImageKey: strPtr("categories/old.jpg"),
	})
	require.NoError(t, err)

	_, err = svc.UpdateCategory(ctx, created.ID, CategoryInput{
		Name:     "Brakes",
		ImageKey: strPtr("categories/new.jpg"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"categories/old.jpg"}, blobs.deletedKeys())
}

func TestDeleteCategoryRefusedWhileProductsRemain(t *testing.T) {
	client := setupCatalogTestClient(t)
	svc, _ := newAdminTestService(t, client)
	ctx := context.Background()

	category := seedCategory(t, client, "Brakes", "brakes")
	seedCatalogProduct(t, client, productSeed{name: "Brake Pads", categoryID: category.ID, stock: 5, active: true})

	err := svc.DeleteCategory(ctx, category.ID)
	require.Error(t, err)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeConflict, coded.Code())
	details, ok := coded.Details().(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, details["product_count"])
}

func TestDeleteEmptyCategory(t *testing.T) {
	client := setupCatalogTestClient(t)
	svc, blobs := newAdminTestService(t, client)
	ctx := context.Background()

	created, err := svc.CreateCategory(ctx, CategoryInput{
		Name:     "Brakes",
		ImageKey: strPtr("categories/brakes.jpg"),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory(ctx, created.ID))
	assert.Equal(t, []string{"categories/brakes.jpg"}, blobs.deletedKeys())

	err = svc.DeleteCategory(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestCreateProductValidation(t *testing.T) {
	client := setupCatalogTestClient(t)
	svc, _ := newAdminTestService(t, client)
	ctx := context.Background()

	category := seedCategory(t, client, "Brakes", "brakes")

	cases := map[string]func(*ProductInput){
		"bad category id":  func(in *ProductInput) { in.CategoryID = "not-a-uuid" },
		"missing category": func(in *ProductInput) { in.CategoryID = uuid.NewString() },
		"bad price":        func(in *ProductInput) { in.Price = "cheap" },
		"negative price":   func(in *ProductInput) { in.Price = "-5.00" },
		"nil stock":        func(in *ProductInput) { in.StockQuantity = nil },
		"negative stock":   func(in *ProductInput) { in.StockQuantity = intPtr(-1) },
		"bad condition":    func(in *ProductInput) { in.Condition = "mint" },
		"year range":       func(in *ProductInput) { in.YearFrom = intPtr(2020); in.YearTo = intPtr(2010) },
	}
	for name, mutate := range cases {
		input := validProductInput(category.ID)
		mutate(&input)
		_, err := svc.CreateProduct(ctx, input)
		require.Error(t, err, name)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code(), name)
	}
}

func TestCreateAndUpdateProduct(t *testing.T) {
	client := setupCatalogTestClient(t)
	svc, blobs := newAdminTestService(t, client)
	ctx := context.Background()

	category := seedCategory(t, client, "Brakes", "brakes")

	input := validProductInput(category.ID)
	input.ImageKey = strPtr("products/pads-main.jpg")
	created, err := svc.CreateProduct(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "brake-pads", created.Slug)
	assert.Equal(t, "49.99", created.Price.StringFixed(2))
	assert.True(t, created.IsActive)

	// Unchanged name keeps the slug; a replaced image slot deletes the blob.
	update := validProductInput(category.ID)
	update.Price = "59.99"
	update.ImageKey = strPtr("products/pads-new.jpg")
	updated, err := svc.UpdateProduct(ctx, created.ID, update)
	require.NoError(t, err)
	assert.Equal(t, "brake-pads", updated.Slug)
	assert.Equal(t, "59.99", updated.Price.StringFixed(2))
	assert.Equal(t, []string{"products/pads-main.jpg"}, blobs.deletedKeys())

	// Renaming reallocates the slug.
	rename := validProductInput(category.ID)
	rename.Name = "Sport Brake Pads"
	renamed, err := svc.UpdateProduct(ctx, created.ID, rename)
	require.NoError(t, err)
	assert.Equal(t, "sport-brake-pads", renamed.Slug)
}

func TestBulkDeleteProducts(t *testing.T) {
	client := setupCatalogTestClient(t)
	svc, blobs := newAdminTestService(t, client)
	ctx := context.Background()

	category := seedCategory(t, client, "Brakes", "brakes")
	seedCatalogProduct(t, client, productSeed{name: "Keep Me", categoryID: category.ID, stock: 5, active: true})

	input := validProductInput(category.ID)
	input.ImageKey = strPtr("products/pads-main.jpg")
	doomed, err := svc.CreateProduct(ctx, input)
	require.NoError(t, err)

	require.NoError(t, client.DB().Create(&models.ProductImage{
		ID:         uuid.New(),
		ProductID:  doomed.ID,
		StorageKey: "products/pads-angle.jpg",
	}).Error)

	result, err := svc.BulkDeleteProducts(ctx, []uuid.UUID{doomed.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, result.Deleted)
	assert.ElementsMatch(t,
		[]string{"products/pads-main.jpg", "products/pads-angle.jpg"},
		blobs.deletedKeys())

	var remaining int64
	require.NoError(t, client.DB().Model(&models.Product{}).Count(&remaining).Error)
	assert.EqualValues(t, 1, remaining)

	_, err = svc.BulkDeleteProducts(ctx, nil)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestDeleteGalleryImage(t *testing.T) {
	client := setupCatalogTestClient(t)
	svc, blobs := newAdminTestService(t, client)
	ctx := context.Background()

	category := seedCategory(t, client, "Brakes", "brakes")
	product := seedCatalogProduct(t, client, productSeed{name: "Brake Pads", categoryID: category.ID, stock: 5, active: true})

	image := &models.ProductImage{
		ID:         uuid.New(),
		ProductID:  product.ID,
		StorageKey: "products/gallery-1.jpg",
	}
	require.NoError(t, client.DB().Create(image).Error)

	require.NoError(t, svc.DeleteGalleryImage(ctx, image.ID))
	assert.Equal(t, []string{"products/gallery-1.jpg"}, blobs.deletedKeys())

	err := svc.DeleteGalleryImage(ctx, image.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestUploadGalleryImage(t *testing.T) {
	client := setupCatalogTestClient(t)
	svc, blobs := newAdminTestService(t, client)
	ctx := context.Background()

	category := seedCategory(t, client, "Brakes", "brakes")
	product := seedCatalogProduct(t, client, productSeed{name: "Brake Pads", categoryID: category.ID, stock: 5, active: true})

	first, err := svc.UploadGalleryImage(ctx, product.ID, ImageUploadInput{
		Filename:    "Front Pads.JPG",
		ContentType: "image/jpeg",
		Body:        strings.NewReader("jpeg-bytes"),
		IsPrimary:   true,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.StorageKey, "products/"+product.ID.String()+"/"))
	assert.True(t, strings.HasSuffix(first.StorageKey, "-front-pads.jpg"))
	assert.True(t, first.IsPrimary)
	assert.Equal(t, "https://storage.example.com/"+first.StorageKey, first.URL)
	assert.Equal(t, []string{first.StorageKey}, blobs.uploadedKeys())

	// A second primary upload demotes the first.
	second, err := svc.UploadGalleryImage(ctx, product.ID, ImageUploadInput{
		Filename:    "rear-pads.jpg",
		ContentType: "image/jpeg",
		Body:        strings.NewReader("jpeg-bytes"),
		IsPrimary:   true,
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.StorageKey, second.StorageKey)

	var primaries int64
	require.NoError(t, client.DB().
		Model(&models.ProductImage{}).
		Where("product_id = ? AND is_primary = ?", product.ID, true).
		Count(&primaries).Error)
	assert.EqualValues(t, 1, primaries)

	_, err = svc.UploadGalleryImage(ctx, uuid.New(), ImageUploadInput{
		Filename: "orphan.jpg",
		Body:     strings.NewReader("jpeg-bytes"),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	_, err = svc.UploadGalleryImage(ctx, product.ID, ImageUploadInput{Filename: "no-body.jpg"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestUploadGalleryImageStoreFailure(t *testing.T) {
	client := setupCatalogTestClient(t)
	svc, blobs := newAdminTestService(t, client)
	ctx := context.Background()

	category := seedCategory(t, client, "Brakes", "brakes")
	product := seedCatalogProduct(t, client, productSeed{name: "Brake Pads", categoryID: category.ID, stock: 5, active: true})
	blobs.uploadErr = fmt.Errorf("bucket unavailable")

	_, err := svc.UploadGalleryImage(ctx, product.ID, ImageUploadInput{
		Filename: "pads.jpg",
		Body:     strings.NewReader("jpeg-bytes"),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeDependency, pkgerrors.As(err).Code())

	var rows int64
	require.NoError(t, client.DB().
		Model(&models.ProductImage{}).
		Where("product_id = ?", product.ID).
		Count(&rows).Error)
	assert.Zero(t, rows)
}

func TestAdminListProductsIncludesInactive(t *testing.T) {
	client := setupCatalogTestClient(t)
	svc, _ := newAdminTestService(t, client)
	ctx := context.Background()

	category := seedCategory(t, client, "Brakes", "brakes")
	seedCatalogProduct(t, client, productSeed{name: "Visible", categoryID: category.ID, stock: 5, active: true})
	seedCatalogProduct(t, client, productSeed{name: "Hidden", categoryID: category.ID, stock: 5, active: false})

	page, err := svc.ListProducts(ctx, RawListFilters{}, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, page.Products, 2)
	assert.Equal(t, pagination.AdminPerPage, page.Page.PerPage)
}
