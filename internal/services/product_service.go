package services

import (
	"errors"
	"log"
	"math"
	"strings"

	"github.com/MazenMohamed-0/product-management-api/internal/apperrors"
	"github.com/MazenMohamed-0/product-management-api/internal/models"
	"github.com/MazenMohamed-0/product-management-api/internal/repositories"
)

// Product event names published to the message queue on successful writes.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// EventPublisher publishes product lifecycle events. A nil publisher
// disables eventing; publish failures are logged and never fail the request.
type EventPublisher interface {
	PublishProductEvent(event string, payload interface{}) error
}

// ProductService handles business logic related to products: the visibility
// rule, SKU uniqueness, price invariants, the list pipeline, and statistics.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher
}

// NewProductService creates a new ProductService. publisher may be nil.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
	}
}

// CreateProduct persists a new product after checking SKU uniqueness and the
// price invariants. Returns Conflict when the SKU is already taken.
func (s *ProductService) CreateProduct(req *models.CreateProductRequest) (*models.Product, error) {
	sku := strings.TrimSpace(req.Sku)

	// A taken SKU wins over any other problem with the payload.
	if _, err := s.repo.GetBySku(sku); err == nil {
		return nil, apperrors.Conflict("SKU already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.Internal("Could not create product")
	}

	if fields := checkPriceInvariants(req.Price, req.DiscountPrice); len(fields) > 0 {
		return nil, apperrors.Validation("Validation error", fields)
	}

	product := &models.Product{
		Sku:           sku,
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Category:      strings.TrimSpace(req.Category),
		Type:          req.Type,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		Quantity:      *req.Quantity,
	}

	if err := s.repo.Create(product); err != nil {
		// The unique index is the authoritative check; a concurrent create
		// with the same SKU lands here.
		if errors.Is(err, repositories.ErrDuplicateSku) {
			return nil, apperrors.Conflict("SKU already exists")
		}
		log.Printf("Error creating product: %v", err)
		return nil, apperrors.Internal("Could not create product")
	}

	s.publish(EventProductCreated, product)
	return product, nil
}

// GetAllProducts runs the list pipeline: defaults and bounds, the role-based
// visibility rule, filter composition, count, and page fetch.
func (s *ProductService) GetAllProducts(query models.ListProductsQuery, role string) ([]models.Product, models.Pagination, error) {
	query.Normalize()

	filter := repositories.ProductFilter{
		Category: query.Category,
		Type:     query.Type,
		Search:   query.Search,
		MinPrice: query.MinPrice,
		MaxPrice: query.MaxPrice,
		Sort:     query.Sort,
		Order:    query.Order,
		Offset:   (query.Page - 1) * query.Limit,
		Limit:    query.Limit,
	}

	// Non-admins only ever see public products, whatever type they asked for.
	if role != models.RoleAdmin {
		filter.Type = models.TypePublic
	}

	products, total, err := s.repo.List(filter)
	if err != nil {
		log.Printf("Error listing products: %v", err)
		return nil, models.Pagination{}, apperrors.Internal("Could not retrieve products")
	}
	if products == nil {
		products = []models.Product{}
	}

	return products, models.NewPagination(query.Page, query.Limit, total), nil
}

// GetProductByID retrieves a single product, applying the visibility rule.
// A private product requested by a non-admin yields NotFound rather than
// Forbidden so its existence is not leaked.
func (s *ProductService) GetProductByID(id string, role string) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound("Product not found")
		}
		log.Printf("Error getting product by ID %s: %v", id, err)
		return nil, apperrors.Internal("Could not retrieve product")
	}

	if role != models.RoleAdmin && product.Type == models.TypePrivate {
		return nil, apperrors.NotFound("Product not found")
	}

	return product, nil
}

// UpdateProduct applies a partial update restricted to the mutable field
// set, re-validating the merged record against the price invariants.
func (s *ProductService) UpdateProduct(id string, req *models.UpdateProductRequest) (*models.Product, error) {
	if req.Sku != nil {
		return nil, apperrors.BadRequest("SKU cannot be updated")
	}
	if req.IsEmpty() {
		return nil, apperrors.BadRequest("At least one field must be provided for update")
	}

	product, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound("Product not found")
		}
		log.Printf("Error getting product by ID %s: %v", id, err)
		return nil, apperrors.Internal("Could not update product")
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.Category != nil {
		product.Category = strings.TrimSpace(*req.Category)
	}
	if req.Type != nil {
		product.Type = *req.Type
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.DiscountPrice != nil {
		product.DiscountPrice = req.DiscountPrice
	}
	if req.Quantity != nil {
		product.Quantity = *req.Quantity
	}

	if fields := checkPriceInvariants(product.Price, product.DiscountPrice); len(fields) > 0 {
		return nil, apperrors.Validation("Validation error", fields)
	}

	if err := s.repo.Update(product); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound("Product not found")
		}
		log.Printf("Error updating product %s: %v", id, err)
		return nil, apperrors.Internal("Could not update product")
	}

	s.publish(EventProductUpdated, product)
	return product, nil
}

// DeleteProduct permanently removes a product and returns a minimal receipt
// of what was deleted.
func (s *ProductService) DeleteProduct(id string) (*models.DeleteReceipt, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound("Product not found")
		}
		log.Printf("Error getting product by ID %s: %v", id, err)
		return nil, apperrors.Internal("Could not delete product")
	}

	if err := s.repo.Delete(id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound("Product not found")
		}
		log.Printf("Error deleting product %s: %v", id, err)
		return nil, apperrors.Internal("Could not delete product")
	}

	receipt := &models.DeleteReceipt{ID: product.ID, Sku: product.Sku}
	s.publish(EventProductDeleted, receipt)
	return receipt, nil
}

// GetProductStats scans the whole catalog and computes the aggregate
// statistics. An empty catalog yields zero totals and empty breakdowns.
func (s *ProductService) GetProductStats() (*models.ProductStats, error) {
	products, err := s.repo.GetAll()
	if err != nil {
		log.Printf("Error scanning products for stats: %v", err)
		return nil, apperrors.Internal("Could not compute statistics")
	}

	stats := &models.ProductStats{
		ProductsByCategory: []models.CategoryStats{},
		ProductsByType:     []models.TypeStats{},
	}
	if len(products) == 0 {
		return stats, nil
	}

	categoryIndex := make(map[string]int)
	typeIndex := make(map[string]int)

	for _, p := range products {
		value := p.Price * float64(p.Quantity)
		stats.TotalInventoryValue += value
		if p.DiscountPrice != nil {
			stats.TotalDiscountedValue += *p.DiscountPrice * float64(p.Quantity)
		}
		if p.Quantity == 0 {
			stats.OutOfStockCount++
		}

		idx, ok := categoryIndex[p.Category]
		if !ok {
			idx = len(stats.ProductsByCategory)
			categoryIndex[p.Category] = idx
			stats.ProductsByCategory = append(stats.ProductsByCategory, models.CategoryStats{Category: p.Category})
		}
		stats.ProductsByCategory[idx].Count++
		stats.ProductsByCategory[idx].TotalValue += value

		idx, ok = typeIndex[p.Type]
		if !ok {
			idx = len(stats.ProductsByType)
			typeIndex[p.Type] = idx
			stats.ProductsByType = append(stats.ProductsByType, models.TypeStats{Type: p.Type})
		}
		stats.ProductsByType[idx].Count++
		stats.ProductsByType[idx].TotalValue += value
	}

	stats.TotalProducts = len(products)
	stats.AveragePrice = round2(stats.TotalInventoryValue / float64(stats.TotalProducts))
	stats.TotalInventoryValue = round2(stats.TotalInventoryValue)
	stats.TotalDiscountedValue = round2(stats.TotalDiscountedValue)
	for i := range stats.ProductsByCategory {
		stats.ProductsByCategory[i].TotalValue = round2(stats.ProductsByCategory[i].TotalValue)
	}
	for i := range stats.ProductsByType {
		stats.ProductsByType[i].TotalValue = round2(stats.ProductsByType[i].TotalValue)
	}

	return stats, nil
}

// checkPriceInvariants validates the currency rules that must hold after
// every write: positive prices with at most two fractional digits, and a
// discount strictly below the price.
func checkPriceInvariants(price float64, discountPrice *float64) []apperrors.FieldError {
	var fields []apperrors.FieldError
	if !hasTwoDecimalPlaces(price) {
		fields = append(fields, apperrors.FieldError{
			Field:   "price",
			Message: "Price must have at most 2 decimal places",
			Code:    "decimal",
		})
	}
	if discountPrice != nil {
		if !hasTwoDecimalPlaces(*discountPrice) {
			fields = append(fields, apperrors.FieldError{
				Field:   "discountPrice",
				Message: "Discount price must have at most 2 decimal places",
				Code:    "decimal",
			})
		}
		if *discountPrice >= price {
			fields = append(fields, apperrors.FieldError{
				Field:   "discountPrice",
				Message: "Discount price must be less than original price",
				Code:    "ltfield",
			})
		}
	}
	return fields
}

// hasTwoDecimalPlaces reports whether v is a whole number of cents, within
// float tolerance.
func hasTwoDecimalPlaces(v float64) bool {
	cents := v * 100
	return math.Abs(cents-math.Round(cents)) < 1e-6
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *ProductService) publish(event string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishProductEvent(event, payload); err != nil {
		log.Printf("Warning: Failed to publish %s event: %v", event, err)
	} else {
		log.Printf("Published %s event", event)
	}
}
