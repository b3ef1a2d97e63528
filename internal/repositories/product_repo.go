package repositories

import (
	"errors"

	"github.com/MazenMohamed-0/product-management-api/internal/models"
)

// Sentinel errors returned by repository implementations. The service layer
// translates these into its own error taxonomy.
var (
	ErrNotFound     = errors.New("product not found")
	ErrDuplicateSku = errors.New("duplicate sku")
)

// ProductFilter is the composed predicate plus ordering and paging for a
// List call. Empty string / nil fields mean "no constraint". The visibility
// rule is already applied by the caller: for non-admin callers Type arrives
// forced to "public".
type ProductFilter struct {
	Category string
	Type     string
	Search   string // case-insensitive substring match on name OR description
	MinPrice *float64
	MaxPrice *float64

	Sort   string // one of: name, price, quantity, createdAt
	Order  string // asc or desc
	Offset int
	Limit  int
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	Create(product *models.Product) error
	GetByID(id string) (*models.Product, error)
	GetBySku(sku string) (*models.Product, error)
	List(filter ProductFilter) ([]models.Product, int64, error)
	GetAll() ([]models.Product, error)
	Update(product *models.Product) error
	Delete(id string) error
}
