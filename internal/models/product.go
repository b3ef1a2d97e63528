package models

import "time"

// Product visibility types. Private products are hidden from non-admin callers.
const (
	TypePublic  = "public"
	TypePrivate = "private"
)

// Caller roles resolved from the X-User-Role header.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Product represents a catalog product record.
//
// SKU is globally unique and immutable after creation. DiscountPrice, when
// set, must be strictly less than Price. Both money fields carry at most two
// fractional digits.
type Product struct {
	ID            string   `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Sku           string   `json:"sku" gorm:"type:varchar(50);uniqueIndex;not null"`
	Name          string   `json:"name" gorm:"type:varchar(200);not null"`
	Description   *string  `json:"description" gorm:"type:varchar(1000)"`
	Category      string   `json:"category" gorm:"type:varchar(100);not null"`
	Type          string   `json:"type" gorm:"type:varchar(10);not null;index"`
	Price         float64  `json:"price" gorm:"not null"`
	DiscountPrice *float64 `json:"discountPrice"`
	Quantity      int      `json:"quantity" gorm:"not null"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// CreateProductRequest is the validated body for POST /products.
// Quantity is a pointer so that a missing field can be told apart from an
// explicit zero (zero stock is a valid value).
type CreateProductRequest struct {
	Sku           string   `json:"sku" validate:"required,max=50"`
	Name          string   `json:"name" validate:"required,min=3,max=200"`
	Description   *string  `json:"description" validate:"omitempty,max=1000"`
	Category      string   `json:"category" validate:"required,min=2,max=100"`
	Type          string   `json:"type" validate:"required,oneof=public private"`
	Price         float64  `json:"price" validate:"required,gt=0"`
	DiscountPrice *float64 `json:"discountPrice" validate:"omitempty,gt=0"`
	Quantity      *int     `json:"quantity" validate:"required,gte=0"`
}

// UpdateProductRequest is the partial body for PUT /products/:id. All fields
// are pointers; only fields present in the payload are applied. Sku is parsed
// solely so its presence can be rejected, since SKU never changes after
// creation.
type UpdateProductRequest struct {
	Sku           *string  `json:"sku"`
	Name          *string  `json:"name" validate:"omitempty,min=3,max=200"`
	Description   *string  `json:"description" validate:"omitempty,max=1000"`
	Category      *string  `json:"category" validate:"omitempty,min=2,max=100"`
	Type          *string  `json:"type" validate:"omitempty,oneof=public private"`
	Price         *float64 `json:"price" validate:"omitempty,gt=0"`
	DiscountPrice *float64 `json:"discountPrice" validate:"omitempty,gt=0"`
	Quantity      *int     `json:"quantity" validate:"omitempty,gte=0"`
}

// IsEmpty reports whether the payload carries no updatable field.
func (r *UpdateProductRequest) IsEmpty() bool {
	return r.Name == nil && r.Description == nil && r.Category == nil &&
		r.Type == nil && r.Price == nil && r.DiscountPrice == nil && r.Quantity == nil
}

// ListProductsQuery carries the query parameters for GET /products after
// normalization.
type ListProductsQuery struct {
	Page     int      `query:"page"`
	Limit    int      `query:"limit"`
	Category string   `query:"category"`
	Type     string   `query:"type"`
	Search   string   `query:"search"`
	MinPrice *float64 `query:"minPrice"`
	MaxPrice *float64 `query:"maxPrice"`
	Sort     string   `query:"sort"`
	Order    string   `query:"order"`
}

// Normalize applies the documented defaults and bounds: page >= 1, limit in
// [1, 100], sort restricted to the allowed field set, order asc or desc.
func (q *ListProductsQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	switch q.Sort {
	case "name", "price", "quantity", "createdAt":
	default:
		q.Sort = "createdAt"
	}
	if q.Order != "asc" {
		q.Order = "desc"
	}
}

// Pagination is the metadata block returned alongside a product page.
type Pagination struct {
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	TotalItems      int64 `json:"totalItems"`
	ItemsPerPage    int   `json:"itemsPerPage"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// NewPagination derives the full metadata block from the page position and
// the total match count.
func NewPagination(page, limit int, totalItems int64) Pagination {
	totalPages := int((totalItems + int64(limit) - 1) / int64(limit))
	return Pagination{
		CurrentPage:     page,
		TotalPages:      totalPages,
		TotalItems:      totalItems,
		ItemsPerPage:    limit,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}

// DeleteReceipt is the minimal record of a completed deletion.
type DeleteReceipt struct {
	ID  string `json:"id"`
	Sku string `json:"sku"`
}

// CategoryStats is one entry of the per-category breakdown.
type CategoryStats struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	TotalValue float64 `json:"totalValue"`
}

// TypeStats is one entry of the per-type breakdown.
type TypeStats struct {
	Type       string  `json:"type"`
	Count      int     `json:"count"`
	TotalValue float64 `json:"totalValue"`
}

// ProductStats aggregates the whole catalog. Breakdowns keep first-seen
// order; currency totals are rounded to two decimal places.
type ProductStats struct {
	TotalProducts        int             `json:"totalProducts"`
	TotalInventoryValue  float64         `json:"totalInventoryValue"`
	TotalDiscountedValue float64         `json:"totalDiscountedValue"`
	AveragePrice         float64         `json:"averagePrice"`
	OutOfStockCount      int             `json:"outOfStockCount"`
	ProductsByCategory   []CategoryStats `json:"productsByCategory"`
	ProductsByType       []TypeStats     `json:"productsByType"`
}
