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
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound      = apperrors.NotFoundError(apperrors.CategoryNotFound, "category not found")
	ErrCategoryNameExists    = apperrors.Duplicate(apperrors.CategoryNameExists, "category name already exists")
	ErrInvalidParentCategory = apperrors.Validation(apperrors.CategoryInvalidParent, "parent category is invalid")
	ErrCategoryNameRequired  = apperrors.Validation(apperrors.ValidationRequired, "category name is required").
					WithField("name", "is required")
)

type CategoryInput struct {
	Name        string
	Description string
	ParentID    *uuid.UUID
}

type CategoryService interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error)
	ListChildren(ctx context.Context, id uuid.UUID) ([]model.Category, error)
	CreateCategory(ctx context.Context, input CategoryInput) (*model.Category, error)
	UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*model.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	loader       *cache.Loader
	db           *gorm.DB
}

func NewCategoryService(categoryRepo repository.CategoryRepository, loader *cache.Loader, db *gorm.DB) CategoryService {
	if loader == nil {
		loader = cache.NewLoader(nil, 0)
	}
	return &categoryService{categoryRepo: categoryRepo, loader: loader, db: db}
}

func (s *categoryService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.FindAll(ctx)
	if err != nil {
		logger.Error("Failed to list categories", err)
		return nil, err
	}
	return categories, nil
}

func (s *categoryService) GetCategory(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	category, err := cache.Fetch(ctx, s.loader, cache.CategoryKey(id), func(ctx context.Context) (*model.Category, error) {
		return s.categoryRepo.FindByID(ctx, id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		logger.Error("Failed to fetch category", err, map[string]interface{}{
			"category_id": id,
		})
		return nil, err
	}
	return category, nil
}

func (s *categoryService) ListChildren(ctx context.Context, id uuid.UUID) ([]model.Category, error) {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return nil, err
	}
	children, err := s.categoryRepo.FindChildren(ctx, id)
	if err != nil {
		logger.Error("Failed to list child categories", err, map[string]interface{}{
			"category_id": id,
		})
		return nil, err
	}
	return children, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, input CategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCategoryNameRequired
	}
	logger.Info("Creating category", map[string]interface{}{
		"name":      name,
		"parent_id": input.ParentID,
	})

	category := &model.Category{
		Entity:      model.NewEntity(),
		Name:        name,
		Description: input.Description,
		ParentID:    input.ParentID,
	}
	if err := s.validateParent(ctx, category.ID, input.ParentID); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, ErrCategoryNameExists
		}
		logger.Error("Failed to create category", err, map[string]interface{}{
			"name": name,
		})
		return nil, err
	}
	return category, nil
}

func (s *categoryService) UpdateCategory(ctx context.Context, id uuid.UUID, input CategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCategoryNameRequired
	}

	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	if err := s.validateParent(ctx, id, input.ParentID); err != nil {
		return nil, err
	}

	category.Name = name
	category.Description = input.Description
	category.ParentID = input.ParentID
	category.Touch()

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, ErrCategoryNameExists
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		logger.Error("Failed to update category", err, map[string]interface{}{
			"category_id": id,
		})
		return nil, err
	}
	s.loader.Invalidate(ctx, cache.CategoryKey(id))

	logger.Info("Category updated", map[string]interface{}{
		"category_id": id,
	})
	return category, nil
}

// DeleteCategory detaches children and products before removing the row.
func (s *categoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	logger.Info("Deleting category", map[string]interface{}{
		"category_id": id,
	})

	var products, children []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Raw("SELECT id FROM products WHERE category_id = ?", id).Scan(&products).Error; err != nil {
			return err
		}
		if err := tx.Raw("SELECT id FROM categories WHERE parent_id = ?", id).Scan(&children).Error; err != nil {
			return err
		}
		return s.categoryRepo.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		logger.Error("Failed to delete category", err, map[string]interface{}{
			"category_id": id,
		})
		return err
	}

	keys := []string{cache.CategoryKey(id)}
	for _, raw := range products {
		if productID, err := uuid.Parse(raw); err == nil {
			keys = append(keys, cache.ProductKey(productID))
		}
	}
	for _, raw := range children {
		if childID, err := uuid.Parse(raw); err == nil {
			keys = append(keys, cache.CategoryKey(childID))
		}
	}
	s.loader.Invalidate(ctx, keys...)
	return nil
}

// validateParent rejects a missing parent, the category itself and any of
// its descendants, so the hierarchy stays a forest.
func (s *categoryService) validateParent(ctx context.Context, id uuid.UUID, parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	if *parentID == id {
		return ErrInvalidParentCategory.WithMessage("a category cannot be its own parent")
	}

	seen := map[uuid.UUID]bool{id: true}
	current := *parentID
	for {
		parent, err := s.categoryRepo.FindByID(ctx, current)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if current == *parentID {
					return ErrInvalidParentCategory.WithMessage("parent category does not exist")
				}
				return nil
			}
			return err
		}
		if parent.ParentID == nil {
			return nil
		}
		if seen[*parent.ParentID] {
			return ErrInvalidParentCategory.WithMessage("parent category is a descendant of this category")
		}
		seen[parent.ID] = true
		current = *parent.ParentID
	}
}
