package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/auth"
	"github.com/ikkim/storefront-backend/internal/cache"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// testEnv wires every service against one isolated in-memory database.
type testEnv struct {
	db     *gorm.DB
	loader *cache.Loader

	userRepo     repository.UserRepository
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	cartRepo     repository.CartRepository
	orderRepo    repository.OrderRepository
	reviewRepo   repository.ReviewRepository
	wishlistRepo repository.WishlistRepository

	users      UserService
	auth       AuthService
	categories CategoryService
	products   ProductService
	carts      CartService
	orders     OrderService
	reviews    ReviewService
	wishlist   WishlistService
}

const testJWTSecret = "service-test-secret"

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	e := &testEnv{
		db:           testDB,
		loader:       cache.NewLoader(cache.NewMemoryCache(100, time.Minute), time.Minute),
		userRepo:     repository.NewUserRepository(testDB),
		categoryRepo: repository.NewCategoryRepository(testDB),
		productRepo:  repository.NewProductRepository(testDB),
		cartRepo:     repository.NewCartRepository(testDB),
		orderRepo:    repository.NewOrderRepository(testDB),
		reviewRepo:   repository.NewReviewRepository(testDB),
		wishlistRepo: repository.NewWishlistRepository(testDB),
	}
	e.users = NewUserService(e.userRepo, e.loader)
	e.auth = NewAuthService(e.userRepo, e.users, testJWTSecret, time.Hour)
	e.categories = NewCategoryService(e.categoryRepo, e.loader, testDB)
	e.products = NewProductService(e.productRepo, e.categoryRepo, e.loader, testDB)
	e.carts = NewCartService(e.cartRepo, e.productRepo, e.userRepo, testDB)
	e.orders = NewOrderService(e.orderRepo, e.cartRepo, e.productRepo, e.userRepo, e.products, testDB)
	e.reviews = NewReviewService(e.reviewRepo, e.orderRepo, e.productRepo, true)
	e.wishlist = NewWishlistService(e.wishlistRepo, e.productRepo, e.userRepo)
	return e
}

func (e *testEnv) seedUser(t *testing.T, email string, role model.Role) *model.User {
	t.Helper()
	user := &model.User{
		Entity:       model.NewEntity(),
		Email:        email,
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		Active:       true,
	}
	require.NoError(t, e.userRepo.Create(context.Background(), user))
	return user
}

func (e *testEnv) seedProduct(t *testing.T, sku, price string, stock int) *model.Product {
	t.Helper()
	product := &model.Product{
		Entity:        model.NewEntity(),
		SKU:           sku,
		Name:          "Product " + sku,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Active:        true,
	}
	require.NoError(t, e.productRepo.Create(context.Background(), product))
	return product
}

func (e *testEnv) stockOf(t *testing.T, id uuid.UUID) int {
	t.Helper()
	product, err := e.productRepo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return product.StockQuantity
}

func asUser(user *model.User) context.Context {
	return auth.WithIdentity(context.Background(), model.Identity{UserID: user.ID, Role: user.EffectiveRole()})
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
