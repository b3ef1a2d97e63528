package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/MazenMohamed-0/product-management-api/internal/apperrors"
	"github.com/MazenMohamed-0/product-management-api/internal/models"
	"github.com/MazenMohamed-0/product-management-api/internal/repositories"
	"github.com/MazenMohamed-0/product-management-api/internal/services"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetBySku(sku string) (*models.Product, error) {
	args := m.Called(sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) List(filter repositories.ProductFilter) ([]models.Product, int64, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) GetAll() ([]models.Product, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockEventPublisher records published product events.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishProductEvent(event string, payload interface{}) error {
	args := m.Called(event, payload)
	return args.Error(0)
}

func ptrFloat(v float64) *float64 { return &v }
func ptrInt(v int) *int           { return &v }
func ptrString(v string) *string  { return &v }

// assertKind asserts that err is an application error of the given kind.
func assertKind(t *testing.T, err error, kind apperrors.Kind) *apperrors.Error {
	t.Helper()
	var appErr *apperrors.Error
	assert.True(t, errors.As(err, &appErr), "expected an application error, got %v", err)
	assert.Equal(t, kind, appErr.Kind)
	return appErr
}

func validCreateRequest() *models.CreateProductRequest {
	return &models.CreateProductRequest{
		Sku:      "X-1",
		Name:     "Widget",
		Category: "Tools",
		Type:     models.TypePublic,
		Price:    10.00,
		Quantity: ptrInt(5),
	}
}

func TestProductService_CreateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	req := validCreateRequest()

	mockRepo.On("GetBySku", "X-1").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.Product")).Return(nil).Once()

	product, err := service.CreateProduct(req)

	assert.NoError(t, err)
	assert.Equal(t, "X-1", product.Sku)
	assert.Equal(t, "Widget", product.Name)
	assert.Equal(t, "Tools", product.Category)
	assert.Equal(t, models.TypePublic, product.Type)
	assert.Equal(t, 10.00, product.Price)
	assert.Equal(t, 5, product.Quantity)
	assert.Nil(t, product.DiscountPrice)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_DuplicateSku(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	existing := &models.Product{ID: "1", Sku: "X-1"}
	mockRepo.On("GetBySku", "X-1").Return(existing, nil).Once()

	product, err := service.CreateProduct(validCreateRequest())

	assert.Nil(t, product)
	assertKind(t, err, apperrors.KindConflict)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_DuplicateSkuAtInsert(t *testing.T) {
	// A concurrent create can slip past the existence check; the unique
	// index violation must still come back as a conflict.
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("GetBySku", "X-1").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.Product")).Return(repositories.ErrDuplicateSku).Once()

	product, err := service.CreateProduct(validCreateRequest())

	assert.Nil(t, product)
	assertKind(t, err, apperrors.KindConflict)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_DiscountNotBelowPrice(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("GetBySku", "X-1").Return(nil, repositories.ErrNotFound).Once()

	req := validCreateRequest()
	req.DiscountPrice = ptrFloat(10.00) // equal to price, must be strictly less

	product, err := service.CreateProduct(req)

	assert.Nil(t, product)
	appErr := assertKind(t, err, apperrors.KindValidation)
	assert.Len(t, appErr.Fields, 1)
	assert.Equal(t, "discountPrice", appErr.Fields[0].Field)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestProductService_CreateProduct_TooManyDecimalPlaces(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("GetBySku", "X-1").Return(nil, repositories.ErrNotFound).Once()

	req := validCreateRequest()
	req.Price = 10.005

	product, err := service.CreateProduct(req)

	assert.Nil(t, product)
	appErr := assertKind(t, err, apperrors.KindValidation)
	assert.Equal(t, "price", appErr.Fields[0].Field)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestProductService_CreateProduct_PublishesEvent(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPublisher := new(MockEventPublisher)
	service := services.NewProductService(mockRepo, mockPublisher)

	mockRepo.On("GetBySku", "X-1").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.Product")).Return(nil).Once()
	mockPublisher.On("PublishProductEvent", services.EventProductCreated, mock.Anything).Return(nil).Once()

	_, err := service.CreateProduct(validCreateRequest())

	assert.NoError(t, err)
	mockPublisher.AssertExpectations(t)
}

func TestProductService_GetAllProducts_ForcesPublicForNonAdmin(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	// A user explicitly asking for private products still only sees public.
	mockRepo.On("List", mock.MatchedBy(func(f repositories.ProductFilter) bool {
		return f.Type == models.TypePublic
	})).Return([]models.Product{}, int64(0), nil).Once()

	_, _, err := service.GetAllProducts(models.ListProductsQuery{Type: models.TypePrivate}, models.RoleUser)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetAllProducts_AdminKeepsRequestedType(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("List", mock.MatchedBy(func(f repositories.ProductFilter) bool {
		return f.Type == models.TypePrivate
	})).Return([]models.Product{}, int64(0), nil).Once()

	_, _, err := service.GetAllProducts(models.ListProductsQuery{Type: models.TypePrivate}, models.RoleAdmin)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetAllProducts_NormalizesQuery(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("List", mock.MatchedBy(func(f repositories.ProductFilter) bool {
		return f.Offset == 0 && f.Limit == 10 && f.Sort == "createdAt" && f.Order == "desc"
	})).Return([]models.Product{}, int64(0), nil).Once()

	// Zero values and a bogus sort field fall back to the defaults.
	_, pagination, err := service.GetAllProducts(models.ListProductsQuery{Sort: "sku"}, models.RoleAdmin)

	assert.NoError(t, err)
	assert.Equal(t, 1, pagination.CurrentPage)
	assert.Equal(t, 10, pagination.ItemsPerPage)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetAllProducts_PaginationMetadata(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("List", mock.MatchedBy(func(f repositories.ProductFilter) bool {
		return f.Offset == 10 && f.Limit == 10
	})).Return([]models.Product{{ID: "a"}}, int64(25), nil).Once()

	_, pagination, err := service.GetAllProducts(models.ListProductsQuery{Page: 2, Limit: 10}, models.RoleAdmin)

	assert.NoError(t, err)
	assert.Equal(t, 2, pagination.CurrentPage)
	assert.Equal(t, 3, pagination.TotalPages)
	assert.Equal(t, int64(25), pagination.TotalItems)
	assert.Equal(t, 10, pagination.ItemsPerPage)
	assert.True(t, pagination.HasNextPage)
	assert.True(t, pagination.HasPreviousPage)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductByID(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	expected := &models.Product{ID: "1", Sku: "X-1", Type: models.TypePublic}

	mockRepo.On("GetByID", "1").Return(expected, nil).Once()
	product, err := service.GetProductByID("1", models.RoleUser)
	assert.NoError(t, err)
	assert.Equal(t, expected, product)

	mockRepo.On("GetByID", "99").Return(nil, repositories.ErrNotFound).Once()
	product, err = service.GetProductByID("99", models.RoleUser)
	assert.Nil(t, product)
	assertKind(t, err, apperrors.KindNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductByID_PrivateHiddenFromUser(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	private := &models.Product{ID: "1", Sku: "X-1", Type: models.TypePrivate}

	// Denial must be indistinguishable from absence for non-admins.
	mockRepo.On("GetByID", "1").Return(private, nil).Twice()

	product, err := service.GetProductByID("1", models.RoleUser)
	assert.Nil(t, product)
	assertKind(t, err, apperrors.KindNotFound)

	product, err = service.GetProductByID("1", models.RoleAdmin)
	assert.NoError(t, err)
	assert.Equal(t, private, product)
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct_RejectsSku(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	// Rejected even when the value matches the stored SKU.
	req := &models.UpdateProductRequest{Sku: ptrString("X-1")}
	product, err := service.UpdateProduct("1", req)

	assert.Nil(t, product)
	assertKind(t, err, apperrors.KindValidation)
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything)
}

func TestProductService_UpdateProduct_EmptyPayload(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	product, err := service.UpdateProduct("1", &models.UpdateProductRequest{})

	assert.Nil(t, product)
	assertKind(t, err, apperrors.KindValidation)
	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything)
}

func TestProductService_UpdateProduct_MergesWhitelistedFields(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	existing := &models.Product{
		ID:       "1",
		Sku:      "X-1",
		Name:     "Widget",
		Category: "Tools",
		Type:     models.TypePublic,
		Price:    10.00,
		Quantity: 5,
	}
	mockRepo.On("GetByID", "1").Return(existing, nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.Product")).Return(nil).Once()

	req := &models.UpdateProductRequest{Price: ptrFloat(8.00)}
	product, err := service.UpdateProduct("1", req)

	assert.NoError(t, err)
	assert.Equal(t, 8.00, product.Price)
	assert.Equal(t, "Widget", product.Name)
	assert.Equal(t, "X-1", product.Sku)
	assert.Equal(t, 5, product.Quantity)
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct_RevalidatesMergedRecord(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	existing := &models.Product{ID: "1", Sku: "X-1", Name: "Widget", Price: 10.00}
	mockRepo.On("GetByID", "1").Return(existing, nil).Once()

	// Lowering the price below an existing discount violates the invariant
	// on the merged record, not on the payload alone.
	existing.DiscountPrice = ptrFloat(9.00)
	req := &models.UpdateProductRequest{Price: ptrFloat(8.50)}
	product, err := service.UpdateProduct("1", req)

	assert.Nil(t, product)
	assertKind(t, err, apperrors.KindValidation)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything)
}

func TestProductService_UpdateProduct_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("GetByID", "99").Return(nil, repositories.ErrNotFound).Once()

	product, err := service.UpdateProduct("99", &models.UpdateProductRequest{Price: ptrFloat(8.00)})

	assert.Nil(t, product)
	assertKind(t, err, apperrors.KindNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_DeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	existing := &models.Product{ID: "1", Sku: "X-1"}
	mockRepo.On("GetByID", "1").Return(existing, nil).Once()
	mockRepo.On("Delete", "1").Return(nil).Once()

	receipt, err := service.DeleteProduct("1")

	assert.NoError(t, err)
	assert.Equal(t, &models.DeleteReceipt{ID: "1", Sku: "X-1"}, receipt)
	mockRepo.AssertExpectations(t)
}

func TestProductService_DeleteProduct_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("GetByID", "99").Return(nil, repositories.ErrNotFound).Once()

	receipt, err := service.DeleteProduct("99")

	assert.Nil(t, receipt)
	assertKind(t, err, apperrors.KindNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductStats_EmptyStore(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("GetAll").Return([]models.Product{}, nil).Once()

	stats, err := service.GetProductStats()

	assert.NoError(t, err)
	assert.Equal(t, 0, stats.TotalProducts)
	assert.Equal(t, 0.0, stats.TotalInventoryValue)
	assert.Equal(t, 0.0, stats.TotalDiscountedValue)
	assert.Equal(t, 0.0, stats.AveragePrice)
	assert.Equal(t, 0, stats.OutOfStockCount)
	assert.Empty(t, stats.ProductsByCategory)
	assert.Empty(t, stats.ProductsByType)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductStats(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	now := time.Now()
	products := []models.Product{
		{ID: "1", Sku: "A-1", Category: "Tools", Type: models.TypePublic, Price: 10.00, Quantity: 5, CreatedAt: now},
		{ID: "2", Sku: "A-2", Category: "Tools", Type: models.TypePrivate, Price: 20.00, DiscountPrice: ptrFloat(15.00), Quantity: 2, CreatedAt: now},
		{ID: "3", Sku: "B-1", Category: "Garden", Type: models.TypePublic, Price: 7.50, Quantity: 0, CreatedAt: now},
	}
	mockRepo.On("GetAll").Return(products, nil).Once()

	stats, err := service.GetProductStats()

	assert.NoError(t, err)
	assert.Equal(t, 3, stats.TotalProducts)
	assert.Equal(t, 90.00, stats.TotalInventoryValue) // 50 + 40 + 0
	assert.Equal(t, 30.00, stats.TotalDiscountedValue)
	assert.Equal(t, 30.00, stats.AveragePrice)
	assert.Equal(t, 1, stats.OutOfStockCount)

	// Breakdowns keep first-seen order.
	assert.Equal(t, []models.CategoryStats{
		{Category: "Tools", Count: 2, TotalValue: 90.00},
		{Category: "Garden", Count: 1, TotalValue: 0.00},
	}, stats.ProductsByCategory)
	assert.Equal(t, []models.TypeStats{
		{Type: models.TypePublic, Count: 2, TotalValue: 50.00},
		{Type: models.TypePrivate, Count: 1, TotalValue: 40.00},
	}, stats.ProductsByType)
	mockRepo.AssertExpectations(t)
}
