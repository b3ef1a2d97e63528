package repositories

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MazenMohamed-0/product-management-api/internal/models"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
// It mirrors the filtering, sorting and paging semantics of the GORM
// implementation so it can back the service in tests and local runs without
// a database.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// Create adds a new product, enforcing SKU uniqueness.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.products {
		if p.Sku == product.Sku {
			return ErrDuplicateSku
		}
	}
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	r.products[product.ID] = *product
	return nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &product, nil
}

// GetBySku returns a product by its SKU.
func (r *MockProductRepository) GetBySku(sku string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.Sku == sku {
			product := p
			return &product, nil
		}
	}
	return nil, ErrNotFound
}

// List applies the filter, sorts, and returns the requested page along with
// the total match count.
func (r *MockProductRepository) List(filter ProductFilter) ([]models.Product, int64, error) {
	r.mu.RLock()
	matched := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if matchesFilter(p, filter) {
			matched = append(matched, p)
		}
	}
	r.mu.RUnlock()

	sortProducts(matched, filter.Sort, filter.Order)

	total := int64(len(matched))
	start := filter.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Limit
	if filter.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func matchesFilter(p models.Product, filter ProductFilter) bool {
	if filter.Category != "" && p.Category != filter.Category {
		return false
	}
	if filter.Type != "" && p.Type != filter.Type {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		inName := strings.Contains(strings.ToLower(p.Name), needle)
		inDesc := p.Description != nil && strings.Contains(strings.ToLower(*p.Description), needle)
		if !inName && !inDesc {
			return false
		}
	}
	if filter.MinPrice != nil && p.Price < *filter.MinPrice {
		return false
	}
	if filter.MaxPrice != nil && p.Price > *filter.MaxPrice {
		return false
	}
	return true
}

func sortProducts(products []models.Product, field, order string) {
	asc := order == "asc"
	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		if !asc {
			a, b = b, a
		}
		switch field {
		case "name":
			return a.Name < b.Name
		case "price":
			return a.Price < b.Price
		case "quantity":
			return a.Quantity < b.Quantity
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})
}

// GetAll returns all products in creation order.
func (r *MockProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	sort.SliceStable(productList, func(i, j int) bool {
		return productList[i].CreatedAt.Before(productList[j].CreatedAt)
	})
	return productList, nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[product.ID]
	if !ok {
		return ErrNotFound
	}
	product.UpdatedAt = time.Now()
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[id]
	if !ok {
		return ErrNotFound
	}
	delete(r.products, id)
	return nil
}
