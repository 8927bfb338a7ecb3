package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/shopspring/decimal"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type ProductRequest struct {
	CategoryID    *uuid.UUID       `json:"categoryId"`
	SKU           string           `json:"sku" binding:"required,max=64"`
	Name          string           `json:"name" binding:"required,max=255"`
	Description   string           `json:"description" binding:"max=5000"`
	Price         *decimal.Decimal `json:"price" binding:"required"`
	StockQuantity int              `json:"stockQuantity"`
	Active        *bool            `json:"active"`
	Images        []string         `json:"images" binding:"omitempty,max=20,dive,url"`
}

func (r ProductRequest) input() service.ProductInput {
	return service.ProductInput{
		CategoryID:    r.CategoryID,
		SKU:           r.SKU,
		Name:          r.Name,
		Description:   r.Description,
		Price:         *r.Price,
		StockQuantity: r.StockQuantity,
		Active:        r.Active,
		Images:        r.Images,
	}
}

type StockRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// ListProducts
// GET /api/products?categoryId=&active=&search=&sort=&order=&limit=&offset=
func (ctrl *ProductController) ListProducts(c *gin.Context) {
	filter := repository.ProductFilter{
		Search: strings.TrimSpace(c.Query("search")),
	}

	if raw := c.Query("categoryId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			apperrors.RespondWithValidationError(c, map[string]string{"categoryId": "must be a valid UUID"})
			return
		}
		filter.CategoryID = &id
	}

	active, ok := queryBool(c, "active")
	if !ok {
		return
	}
	filter.Active = active

	switch sort := repository.ProductSort(c.DefaultQuery("sort", string(repository.ProductSortCreatedAt))); sort {
	case repository.ProductSortName, repository.ProductSortPrice, repository.ProductSortCreatedAt:
		filter.SortBy = sort
	default:
		apperrors.RespondWithValidationError(c, map[string]string{"sort": "must be one of: name price created_at"})
		return
	}
	filter.SortAscending = strings.EqualFold(c.Query("order"), "asc")

	if filter.Limit, ok = queryInt(c, "limit", repository.DefaultProductLimit); !ok {
		return
	}
	if filter.Offset, ok = queryInt(c, "offset", 0); !ok {
		return
	}

	page, err := ctrl.productService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err, "list products")
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetProduct returns a product with its images.
// GET /api/products/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	product, err := ctrl.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "fetch product")
		return
	}
	c.JSON(http.StatusOK, product)
}

// CreateProduct
// POST /api/products
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := ctrl.productService.CreateProduct(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err, "create product")
		return
	}
	middleware.GetLoggerFromContext(c).Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"sku":        product.SKU,
	})
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct replaces the product's fields. Omitting images keeps the
// current ones; an empty list removes them.
// PUT /api/products/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := ctrl.productService.UpdateProduct(c.Request.Context(), id, req.input())
	if err != nil {
		respondError(c, err, "update product")
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct
// DELETE /api/products/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete product")
		return
	}
	c.Status(http.StatusNoContent)
}

// SetStock overwrites the stock level.
// PUT /api/products/:id/stock
func (ctrl *ProductController) SetStock(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req StockRequest
	if !bindJSON(c, &req) {
		return
	}
	product, err := ctrl.productService.SetStock(c.Request.Context(), id, *req.Quantity)
	if err != nil {
		respondError(c, err, "update stock")
		return
	}
	middleware.GetLoggerFromContext(c).Info("Product stock set", map[string]interface{}{
		"product_id": id,
		"quantity":   product.StockQuantity,
	})
	c.JSON(http.StatusOK, product)
}
