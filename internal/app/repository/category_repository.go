package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	WithTx(tx *gorm.DB) CategoryRepository
	Create(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	FindByName(ctx context.Context, name string) (*model.Category, error)
	FindAll(ctx context.Context) ([]model.Category, error)
	FindChildren(ctx context.Context, parentID uuid.UUID) ([]model.Category, error)
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) WithTx(tx *gorm.DB) CategoryRepository {
	return &categoryRepository{db: tx}
}

const categoryColumns = "id, parent_id, name, description, created_at, updated_at"

func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	logger.Debug("Creating category in database", map[string]interface{}{
		"name":      category.Name,
		"parent_id": category.ParentID,
	})

	_, err := exec(ctx, r.db,
		"INSERT INTO categories (id, parent_id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		category.ID, nullableUUID(category.ParentID), category.Name, category.Description,
		category.CreatedAt, category.UpdatedAt,
	)
	if err != nil {
		logger.Error("Failed to create category in database", err, map[string]interface{}{
			"name": category.Name,
		})
		return err
	}

	logger.Debug("Category created in database", map[string]interface{}{
		"category_id": category.ID,
	})
	return nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	logger.Debug("Finding category by ID in database", map[string]interface{}{
		"category_id": id,
	})

	var category model.Category
	err := queryOne(ctx, r.db, &category, "SELECT "+categoryColumns+" FROM categories WHERE id = ?", id)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find category by ID in database", err, map[string]interface{}{
				"category_id": id,
			})
		}
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindByName(ctx context.Context, name string) (*model.Category, error) {
	var category model.Category
	err := queryOne(ctx, r.db, &category, "SELECT "+categoryColumns+" FROM categories WHERE name = ?", name)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find category by name in database", err, map[string]interface{}{
				"name": name,
			})
		}
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindAll(ctx context.Context) ([]model.Category, error) {
	logger.Debug("Finding all categories in database")

	categories := []model.Category{}
	if err := query(ctx, r.db, &categories, "SELECT "+categoryColumns+" FROM categories ORDER BY name"); err != nil {
		logger.Error("Failed to find categories in database", err)
		return nil, err
	}

	logger.Debug("Categories found in database", map[string]interface{}{
		"count": len(categories),
	})
	return categories, nil
}

func (r *categoryRepository) FindChildren(ctx context.Context, parentID uuid.UUID) ([]model.Category, error) {
	logger.Debug("Finding child categories in database", map[string]interface{}{
		"parent_id": parentID,
	})

	children := []model.Category{}
	err := query(ctx, r.db, &children,
		"SELECT "+categoryColumns+" FROM categories WHERE parent_id = ? ORDER BY name", parentID)
	if err != nil {
		logger.Error("Failed to find child categories in database", err, map[string]interface{}{
			"parent_id": parentID,
		})
		return nil, err
	}
	return children, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *model.Category) error {
	logger.Debug("Updating category in database", map[string]interface{}{
		"category_id": category.ID,
	})

	err := execOne(ctx, r.db,
		"UPDATE categories SET parent_id = ?, name = ?, description = ?, updated_at = ? WHERE id = ?",
		nullableUUID(category.ParentID), category.Name, category.Description, category.UpdatedAt, category.ID,
	)
	if err != nil && err != gorm.ErrRecordNotFound {
		logger.Error("Failed to update category in database", err, map[string]interface{}{
			"category_id": category.ID,
		})
	}
	return err
}

// Delete removes the category. Children and products keep existing with
// their reference cleared by ON DELETE SET NULL.
func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	logger.Debug("Deleting category from database", map[string]interface{}{
		"category_id": id,
	})

	err := execOne(ctx, r.db, "DELETE FROM categories WHERE id = ?", id)
	if err != nil && err != gorm.ErrRecordNotFound {
		logger.Error("Failed to delete category from database", err, map[string]interface{}{
			"category_id": id,
		})
	}
	return err
}
