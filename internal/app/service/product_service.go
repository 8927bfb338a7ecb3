package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/cache"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound   = apperrors.NotFoundError(apperrors.ProductNotFound, "product not found")
	ErrProductSKUExists  = apperrors.Duplicate(apperrors.ProductSKUExists, "product sku already exists")
	ErrProductInactive   = apperrors.Validation(apperrors.ProductInactive, "product is not available")
	ErrInsufficientStock = apperrors.Validation(apperrors.InsufficientStock, "insufficient stock")
)

type ProductInput struct {
	CategoryID    *uuid.UUID
	SKU           string
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	Active        *bool
	Images        []string
}

// ProductPage is one page of a filtered listing.
type ProductPage struct {
	Items  []model.Product `json:"items"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

type ProductService interface {
	ListProducts(ctx context.Context, filter repository.ProductFilter) (*ProductPage, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*model.ProductDetail, error)
	CreateProduct(ctx context.Context, input ProductInput) (*model.ProductDetail, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*model.ProductDetail, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	SetStock(ctx context.Context, id uuid.UUID, quantity int) (*model.ProductDetail, error)
	// Invalidate drops cached copies after stock moved elsewhere (orders).
	Invalidate(ctx context.Context, ids ...uuid.UUID)
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	loader       *cache.Loader
	db           *gorm.DB
}

func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	loader *cache.Loader,
	db *gorm.DB,
) ProductService {
	if loader == nil {
		loader = cache.NewLoader(nil, 0)
	}
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		loader:       loader,
		db:           db,
	}
}

func (s *productService) ListProducts(ctx context.Context, filter repository.ProductFilter) (*ProductPage, error) {
	if filter.Limit <= 0 {
		filter.Limit = repository.DefaultProductLimit
	}
	if filter.Limit > repository.MaxProductLimit {
		filter.Limit = repository.MaxProductLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	products, total, err := s.productRepo.FindWithFilter(ctx, filter)
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, err
	}
	return &ProductPage{Items: products, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*model.ProductDetail, error) {
	detail, err := cache.Fetch(ctx, s.loader, cache.ProductKey(id), func(ctx context.Context) (*model.ProductDetail, error) {
		return s.loadDetail(ctx, s.productRepo, id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return detail, nil
}

func (s *productService) CreateProduct(ctx context.Context, input ProductInput) (*model.ProductDetail, error) {
	if err := validateProductInput(&input); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}
	logger.Info("Creating product", map[string]interface{}{
		"sku":  input.SKU,
		"name": input.Name,
	})

	product := &model.Product{
		Entity:        model.NewEntity(),
		CategoryID:    input.CategoryID,
		SKU:           input.SKU,
		Name:          input.Name,
		Description:   input.Description,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
		Active:        input.Active == nil || *input.Active,
	}

	var detail *model.ProductDetail
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.productRepo.WithTx(tx)
		if err := repo.Create(ctx, product); err != nil {
			return err
		}
		if err := repo.ReplaceImages(ctx, product.ID, input.Images); err != nil {
			return err
		}
		var err error
		detail, err = s.loadDetail(ctx, repo, product.ID)
		return err
	})
	if err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, ErrProductSKUExists
		}
		logger.Error("Failed to create product", err, map[string]interface{}{
			"sku": input.SKU,
		})
		return nil, err
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
	})
	return detail, nil
}

// UpdateProduct replaces every mutable field. Images are replaced only
// when the input carries a list.
func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*model.ProductDetail, error) {
	if err := validateProductInput(&input); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}
	logger.Info("Updating product", map[string]interface{}{
		"product_id": id,
	})

	var detail *model.ProductDetail
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.productRepo.WithTx(tx)
		product, err := repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		product.CategoryID = input.CategoryID
		product.SKU = input.SKU
		product.Name = input.Name
		product.Description = input.Description
		product.Price = input.Price
		product.StockQuantity = input.StockQuantity
		if input.Active != nil {
			product.Active = *input.Active
		}
		product.Touch()

		if err := repo.Update(ctx, product); err != nil {
			return err
		}
		if input.Images != nil {
			if err := repo.ReplaceImages(ctx, id, input.Images); err != nil {
				return err
			}
		}
		detail, err = s.loadDetail(ctx, repo, id)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrProductNotFound
		case apperrors.IsUniqueViolation(err):
			return nil, ErrProductSKUExists
		}
		logger.Error("Failed to update product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	s.Invalidate(ctx, id)
	return detail, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	logger.Info("Deleting product", map[string]interface{}{
		"product_id": id,
	})
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		logger.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}
	s.Invalidate(ctx, id)
	return nil
}

func (s *productService) SetStock(ctx context.Context, id uuid.UUID, quantity int) (*model.ProductDetail, error) {
	if quantity < 0 {
		return nil, fieldErrors{"stockQuantity": "must be at least 0"}.err()
	}
	logger.Info("Setting product stock", map[string]interface{}{
		"product_id": id,
		"quantity":   quantity,
	})
	if err := s.productRepo.UpdateStock(ctx, id, quantity); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to set product stock", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	s.Invalidate(ctx, id)
	return s.GetProduct(ctx, id)
}

func (s *productService) Invalidate(ctx context.Context, ids ...uuid.UUID) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, cache.ProductKey(id))
	}
	s.loader.Invalidate(ctx, keys...)
}

func (s *productService) loadDetail(ctx context.Context, repo repository.ProductRepository, id uuid.UUID) (*model.ProductDetail, error) {
	product, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	images, err := repo.FindImages(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.ProductDetail{Product: *product, Images: images}, nil
}

func (s *productService) checkCategory(ctx context.Context, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categoryRepo.FindByID(ctx, *categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fieldErrors{"categoryId": "category does not exist"}.err()
		}
		return err
	}
	return nil
}

func validateProductInput(input *ProductInput) error {
	input.SKU = strings.TrimSpace(input.SKU)
	input.Name = strings.TrimSpace(input.Name)

	fields := fieldErrors{}
	if input.SKU == "" {
		fields.add("sku", "is required")
	}
	if input.Name == "" {
		fields.add("name", "is required")
	}
	if input.Price.IsNegative() {
		fields.add("price", "must be at least 0")
	}
	if input.StockQuantity < 0 {
		fields.add("stockQuantity", "must be at least 0")
	}
	for _, url := range input.Images {
		if strings.TrimSpace(url) == "" {
			fields.add("images", "must not contain empty URLs")
		}
	}
	return fields.err()
}
