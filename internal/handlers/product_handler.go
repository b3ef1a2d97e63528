package handlers

import (
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/MazenMohamed-0/product-management-api/internal/apperrors"
	"github.com/MazenMohamed-0/product-management-api/internal/middleware"
	"github.com/MazenMohamed-0/product-management-api/internal/models"
	"github.com/MazenMohamed-0/product-management-api/internal/services"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes with the Fiber app. The stats
// route is registered before /:id so it is not captured as an id.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Post("/", middleware.AdminOnly(), h.HandleCreateProduct)
	productRoutes.Get("/stats", middleware.AdminOnly(), h.HandleGetProductStats)
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Put("/:id", middleware.AdminOnly(), h.HandleUpdateProduct)
	productRoutes.Delete("/:id", middleware.AdminOnly(), h.HandleDeleteProduct)
}

// HandleCreateProduct handles POST /products.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req models.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create product request body: %v", err)
		return apperrors.BadRequest("Invalid request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return validationError(err)
	}

	product, err := h.service.CreateProduct(&req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Product created successfully",
		"data":    product,
	})
}

// HandleGetProducts handles GET /products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	var query models.ListProductsQuery
	if err := c.QueryParser(&query); err != nil {
		log.Printf("Error parsing list products query: %v", err)
		return apperrors.BadRequest("Invalid query parameters")
	}

	if query.MinPrice != nil && query.MaxPrice != nil && *query.MinPrice > *query.MaxPrice {
		return apperrors.Validation("Validation error", []apperrors.FieldError{{
			Field:   "minPrice",
			Message: "minPrice must be less than or equal to maxPrice",
			Code:    "lte",
		}})
	}

	products, pagination, err := h.service.GetAllProducts(query, middleware.RoleFrom(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "Products retrieved successfully",
		"data":       products,
		"pagination": pagination,
	})
}

// HandleGetProductByID handles GET /products/:id.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}

	product, err := h.service.GetProductByID(id, middleware.RoleFrom(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product retrieved successfully",
		"data":    product,
	})
}

// HandleUpdateProduct handles PUT /products/:id.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}

	var req models.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing update product request body: %v", err)
		return apperrors.BadRequest("Invalid request body")
	}

	if err := h.validate.Struct(req); err != nil {
		return validationError(err)
	}

	product, err := h.service.UpdateProduct(id, &req)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product updated successfully",
		"data":    product,
	})
}

// HandleDeleteProduct handles DELETE /products/:id.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}

	receipt, err := h.service.DeleteProduct(id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product deleted successfully",
		"data":    receipt,
	})
}

// HandleGetProductStats handles GET /products/stats.
func (h *ProductHandler) HandleGetProductStats(c *fiber.Ctx) error {
	stats, err := h.service.GetProductStats()
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Statistics retrieved successfully",
		"data":    stats,
	})
}

// parseID checks that a path id is a well-formed UUID.
func parseID(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", apperrors.BadRequest("Invalid ID format")
	}
	return id, nil
}

// validationError converts validator output into the structured per-field
// error shape.
func validationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.BadRequest("Invalid request body")
	}

	fields := make([]apperrors.FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		fields = append(fields, apperrors.FieldError{
			Field:   e.Field(),
			Message: fmt.Sprintf("Field '%s' failed on the '%s' rule", e.Field(), e.Tag()),
			Code:    e.Tag(),
		})
	}
	return apperrors.Validation("Validation error", fields)
}
