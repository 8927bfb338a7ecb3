package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductSort string

const (
	ProductSortName      ProductSort = "name"
	ProductSortPrice     ProductSort = "price"
	ProductSortCreatedAt ProductSort = "created_at"
)

const (
	DefaultProductLimit = 20
	MaxProductLimit     = 100
)

// ProductFilter narrows product listings. Zero values mean "no filter".
type ProductFilter struct {
	CategoryID    *uuid.UUID
	Active        *bool
	Search        string
	SortBy        ProductSort
	SortAscending bool
	Limit         int
	Offset        int
}

type ProductRepository interface {
	WithTx(tx *gorm.DB) ProductRepository
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	FindWithFilter(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)
	FindImages(ctx context.Context, productID uuid.UUID) ([]string, error)
	ReplaceImages(ctx context.Context, productID uuid.UUID, urls []string) error
	Update(ctx context.Context, product *model.Product) error
	UpdateStock(ctx context.Context, id uuid.UUID, quantity int) error
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error
	IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepository{db: tx}
}

const productColumns = `id, category_id, sku, name, description, price, stock_quantity, active,
	created_at, updated_at`

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"sku":         product.SKU,
		"category_id": product.CategoryID,
	})

	_, err := exec(ctx, r.db, `INSERT INTO products
		(id, category_id, sku, name, description, price, stock_quantity, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID, nullableUUID(product.CategoryID), product.SKU, product.Name, product.Description,
		product.Price, product.StockQuantity, product.Active, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"sku": product.SKU,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"sku":        product.SKU,
	})
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	logger.Debug("Finding product by ID in database", map[string]interface{}{
		"product_id": id,
	})

	var product model.Product
	if err := queryOne(ctx, r.db, &product, "SELECT "+productColumns+" FROM products WHERE id = ?", id); err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
				"product_id": id,
			})
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var product model.Product
	if err := queryOne(ctx, r.db, &product, "SELECT "+productColumns+" FROM products WHERE sku = ?", sku); err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find product by SKU in database", err, map[string]interface{}{
				"sku": sku,
			})
		}
		return nil, err
	}
	return &product, nil
}

// FindWithFilter returns one page of products plus the unpaged total.
func (r *productRepository) FindWithFilter(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"category_id": filter.CategoryID,
		"active":      filter.Active,
		"search":      filter.Search,
		"sort_by":     filter.SortBy,
		"limit":       filter.Limit,
		"offset":      filter.Offset,
	})

	var (
		where []string
		args  []interface{}
	)
	if filter.CategoryID != nil {
		where = append(where, "category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if filter.Active != nil {
		where = append(where, "active = ?")
		args = append(args, *filter.Active)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(sku) LIKE ?)")
		args = append(args, pattern, pattern)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := query(ctx, r.db, &total, "SELECT COUNT(*) FROM products"+clause, args...); err != nil {
		logger.Error("Failed to count products", err)
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultProductLimit
	}
	if limit > MaxProductLimit {
		limit = MaxProductLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	products := []model.Product{}
	stmt := "SELECT " + productColumns + " FROM products" + clause +
		" ORDER BY " + orderByClause(filter) + " LIMIT ? OFFSET ?"
	if err := query(ctx, r.db, &products, stmt, append(args, limit, offset)...); err != nil {
		logger.Error("Failed to find products with filter", err)
		return nil, 0, err
	}

	logger.Debug("Products found with filter", map[string]interface{}{
		"count": len(products),
		"total": total,
	})
	return products, total, nil
}

// orderByClause whitelists sort columns; id breaks ties so pages are stable.
func orderByClause(filter ProductFilter) string {
	column := "created_at"
	switch filter.SortBy {
	case ProductSortName:
		column = "name"
	case ProductSortPrice:
		column = "price"
	}
	direction := "DESC"
	if filter.SortAscending {
		direction = "ASC"
	}
	return column + " " + direction + ", id ASC"
}

func (r *productRepository) FindImages(ctx context.Context, productID uuid.UUID) ([]string, error) {
	urls := []string{}
	err := query(ctx, r.db, &urls,
		"SELECT url FROM product_images WHERE product_id = ? ORDER BY sort_order, created_at", productID)
	if err != nil {
		logger.Error("Failed to find product images", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return urls, nil
}

// ReplaceImages swaps the product's image list. Callers run it inside the
// same transaction as the product write.
func (r *productRepository) ReplaceImages(ctx context.Context, productID uuid.UUID, urls []string) error {
	if _, err := exec(ctx, r.db, "DELETE FROM product_images WHERE product_id = ?", productID); err != nil {
		logger.Error("Failed to clear product images", err, map[string]interface{}{
			"product_id": productID,
		})
		return err
	}
	for i, url := range urls {
		img := model.ProductImage{Entity: model.NewEntity(), ProductID: productID, URL: url, SortOrder: i}
		_, err := exec(ctx, r.db,
			"INSERT INTO product_images (id, product_id, url, sort_order, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			img.ID, img.ProductID, img.URL, img.SortOrder, img.CreatedAt, img.UpdatedAt,
		)
		if err != nil {
			logger.Error("Failed to insert product image", err, map[string]interface{}{
				"product_id": productID,
			})
			return err
		}
	}
	return nil
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
	})

	err := execOne(ctx, r.db, `UPDATE products SET category_id = ?, sku = ?, name = ?, description = ?,
		price = ?, stock_quantity = ?, active = ?, updated_at = ? WHERE id = ?`,
		nullableUUID(product.CategoryID), product.SKU, product.Name, product.Description,
		product.Price, product.StockQuantity, product.Active, product.UpdatedAt, product.ID,
	)
	if err != nil && err != gorm.ErrRecordNotFound {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
	}
	return err
}

func (r *productRepository) UpdateStock(ctx context.Context, id uuid.UUID, quantity int) error {
	logger.Debug("Setting product stock", map[string]interface{}{
		"product_id": id,
		"quantity":   quantity,
	})

	err := execOne(ctx, r.db, "UPDATE products SET stock_quantity = ?, updated_at = ? WHERE id = ?", quantity, now(), id)
	if err != nil && err != gorm.ErrRecordNotFound {
		logger.Error("Failed to set product stock", err, map[string]interface{}{
			"product_id": id,
		})
	}
	return err
}

// DecrementStock takes quantity units from an active product. The WHERE
// clause is the stock check, so two concurrent orders can never drive
// stock negative; ErrConditionNotMet means nothing was taken.
func (r *productRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	logger.Debug("Decrementing product stock", map[string]interface{}{
		"product_id": id,
		"quantity":   quantity,
	})

	n, err := exec(ctx, r.db, `UPDATE products SET stock_quantity = stock_quantity - ?, updated_at = ?
		WHERE id = ? AND active = ? AND stock_quantity >= ?`,
		quantity, now(), id, true, quantity,
	)
	if err != nil {
		logger.Error("Failed to decrement product stock", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}
	if n != 1 {
		logger.Warn("Stock decrement matched no row", map[string]interface{}{
			"product_id": id,
			"quantity":   quantity,
		})
		return ErrConditionNotMet
	}
	return nil
}

func (r *productRepository) IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	logger.Debug("Restocking product", map[string]interface{}{
		"product_id": id,
		"quantity":   quantity,
	})

	err := execOne(ctx, r.db,
		"UPDATE products SET stock_quantity = stock_quantity + ?, updated_at = ? WHERE id = ?", quantity, now(), id)
	if err != nil && err != gorm.ErrRecordNotFound {
		logger.Error("Failed to restock product", err, map[string]interface{}{
			"product_id": id,
		})
	}
	return err
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": id,
	})

	err := execOne(ctx, r.db, "DELETE FROM products WHERE id = ?", id)
	if err != nil && err != gorm.ErrRecordNotFound {
		logger.Error("Failed to delete product from database", err, map[string]interface{}{
			"product_id": id,
		})
	}
	return err
}
