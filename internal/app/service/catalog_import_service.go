package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/internal/report"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

// ImportResult summarizes one catalog import run.
type ImportResult struct {
	Created           int
	Updated           int
	CategoriesCreated int
	Skipped           []report.RowError
}

// CatalogImportService upserts products from a parsed import sheet.
type CatalogImportService interface {
	ImportProducts(ctx context.Context, rows []report.ProductRow) (*ImportResult, error)
}

type catalogImportService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	products     ProductService
	categories   CategoryService
}

func NewCatalogImportService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	products ProductService,
	categories CategoryService,
) CatalogImportService {
	return &catalogImportService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		products:     products,
		categories:   categories,
	}
}

// ImportProducts creates products with unknown SKUs and updates the rest.
// Category names that do not exist yet are created as root categories.
// A row rejected by business rules is skipped; storage failures abort.
func (s *catalogImportService) ImportProducts(ctx context.Context, rows []report.ProductRow) (*ImportResult, error) {
	logger.Info("Starting catalog import", map[string]interface{}{
		"rows": len(rows),
	})

	result := &ImportResult{}
	categoryIDs := make(map[string]uuid.UUID)

	for _, row := range rows {
		input := ProductInput{
			SKU:           row.SKU,
			Name:          row.Name,
			Description:   row.Description,
			Price:         row.Price,
			StockQuantity: row.StockQuantity,
			Active:        boolPtr(row.Active),
			Images:        row.Images,
		}

		if name := strings.TrimSpace(row.Category); name != "" {
			id, created, err := s.resolveCategory(ctx, name, categoryIDs)
			if err != nil {
				if skip, ok := skippable(row.Line, err); ok {
					result.Skipped = append(result.Skipped, skip)
					continue
				}
				return result, err
			}
			if created {
				result.CategoriesCreated++
			}
			input.CategoryID = &id
		}

		existing, err := s.productRepo.FindBySKU(ctx, row.SKU)
		switch {
		case err == nil:
			_, err = s.products.UpdateProduct(ctx, existing.ID, input)
			if err == nil {
				result.Updated++
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			_, err = s.products.CreateProduct(ctx, input)
			if err == nil {
				result.Created++
			}
		}
		if err != nil {
			if skip, ok := skippable(row.Line, err); ok {
				result.Skipped = append(result.Skipped, skip)
				continue
			}
			logger.Error("Catalog import aborted", err, map[string]interface{}{
				"line": row.Line,
				"sku":  row.SKU,
			})
			return result, err
		}
	}

	logger.Info("Catalog import finished", map[string]interface{}{
		"created":            result.Created,
		"updated":            result.Updated,
		"categories_created": result.CategoriesCreated,
		"skipped":            len(result.Skipped),
	})
	return result, nil
}

func (s *catalogImportService) resolveCategory(ctx context.Context, name string, seen map[string]uuid.UUID) (uuid.UUID, bool, error) {
	if id, ok := seen[name]; ok {
		return id, false, nil
	}
	category, err := s.categoryRepo.FindByName(ctx, name)
	if err == nil {
		seen[name] = category.ID
		return category.ID, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, false, err
	}
	category, err = s.categories.CreateCategory(ctx, CategoryInput{Name: name})
	if err != nil {
		return uuid.Nil, false, err
	}
	seen[name] = category.ID
	return category.ID, true, nil
}

// skippable turns a client-facing rejection into a per-line report.
func skippable(line int, err error) (report.RowError, bool) {
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Kind == apperrors.KindInternal {
		return report.RowError{}, false
	}
	return report.RowError{Line: line, Reason: appErr.Message}, true
}

func boolPtr(b bool) *bool {
	return &b
}
