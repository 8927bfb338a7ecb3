package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_Hierarchy(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	root, err := e.categories.CreateCategory(ctx, CategoryInput{Name: "Home"})
	require.NoError(t, err)
	child, err := e.categories.CreateCategory(ctx, CategoryInput{Name: "Kitchen", ParentID: &root.ID})
	require.NoError(t, err)
	grandchild, err := e.categories.CreateCategory(ctx, CategoryInput{Name: "Cookware", ParentID: &child.ID})
	require.NoError(t, err)

	children, err := e.categories.ListChildren(ctx, root.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, child.ID, children[0].ID)

	missing := uuid.New()
	_, err = e.categories.CreateCategory(ctx, CategoryInput{Name: "Orphan", ParentID: &missing})
	assert.ErrorIs(t, err, ErrInvalidParentCategory)

	_, err = e.categories.UpdateCategory(ctx, root.ID, CategoryInput{Name: "Home", ParentID: &root.ID})
	assert.ErrorIs(t, err, ErrInvalidParentCategory, "self parent")

	_, err = e.categories.UpdateCategory(ctx, root.ID, CategoryInput{Name: "Home", ParentID: &grandchild.ID})
	assert.ErrorIs(t, err, ErrInvalidParentCategory, "descendant parent")

	moved, err := e.categories.UpdateCategory(ctx, grandchild.ID, CategoryInput{Name: "Cookware", ParentID: &root.ID})
	require.NoError(t, err)
	assert.Equal(t, root.ID, *moved.ParentID)
}

func TestCategoryService_NameRules(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	_, err := e.categories.CreateCategory(ctx, CategoryInput{Name: "  "})
	assert.ErrorIs(t, err, ErrCategoryNameRequired)

	_, err = e.categories.CreateCategory(ctx, CategoryInput{Name: "Toys"})
	require.NoError(t, err)
	_, err = e.categories.CreateCategory(ctx, CategoryInput{Name: "Toys"})
	assert.ErrorIs(t, err, ErrCategoryNameExists)
}

func TestCategoryService_DeleteDetaches(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	root, err := e.categories.CreateCategory(ctx, CategoryInput{Name: "Garden"})
	require.NoError(t, err)
	child, err := e.categories.CreateCategory(ctx, CategoryInput{Name: "Tools", ParentID: &root.ID})
	require.NoError(t, err)
	product, err := e.products.CreateProduct(ctx, ProductInput{CategoryID: &root.ID, SKU: "RAKE", Name: "Rake", Price: dec("9")})
	require.NoError(t, err)

	// Prime caches so stale parent/category references would show.
	_, err = e.categories.GetCategory(ctx, child.ID)
	require.NoError(t, err)
	_, err = e.products.GetProduct(ctx, product.ID)
	require.NoError(t, err)

	require.NoError(t, e.categories.DeleteCategory(ctx, root.ID))

	detached, err := e.categories.GetCategory(ctx, child.ID)
	require.NoError(t, err)
	assert.Nil(t, detached.ParentID)

	uncategorised, err := e.products.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, uncategorised.CategoryID)

	_, err = e.categories.GetCategory(ctx, root.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.ErrorIs(t, e.categories.DeleteCategory(ctx, root.ID), ErrCategoryNotFound)
}
