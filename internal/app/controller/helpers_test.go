package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/cache"
	"github.com/ikkim/storefront-backend/internal/db"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/ikkim/storefront-backend/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "controller-test-secret"

type fakeUploader struct{}

func (fakeUploader) PresignProductImage(_ context.Context, filename, contentType string) (*storage.PresignedUpload, error) {
	if err := storage.ValidateImageContentType(contentType); err != nil {
		return nil, err
	}
	return &storage.PresignedUpload{
		UploadURL: "https://bucket.example.com/products/" + filename + "?sig=x",
		FileURL:   "https://cdn.example.com/products/" + filename,
		Key:       "products/" + filename,
	}, nil
}

type testEnv struct {
	db     *gorm.DB
	engine *gin.Engine

	userRepo    repository.UserRepository
	productRepo repository.ProductRepository

	auth     service.AuthService
	users    service.UserService
	products service.ProductService
	orders   service.OrderService
}

func setupControllerTest(t *testing.T) *testEnv {
	t.Helper()
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	loader := cache.NewLoader(cache.NewMemoryCache(100, time.Minute), time.Minute)
	userRepo := repository.NewUserRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	reviewRepo := repository.NewReviewRepository(testDB)
	wishlistRepo := repository.NewWishlistRepository(testDB)

	users := service.NewUserService(userRepo, loader)
	authService := service.NewAuthService(userRepo, users, testJWTSecret, time.Hour)
	categories := service.NewCategoryService(categoryRepo, loader, testDB)
	products := service.NewProductService(productRepo, categoryRepo, loader, testDB)
	carts := service.NewCartService(cartRepo, productRepo, userRepo, testDB)
	orders := service.NewOrderService(orderRepo, cartRepo, productRepo, userRepo, products, testDB)
	reviews := service.NewReviewService(reviewRepo, orderRepo, productRepo, true)
	wishlist := service.NewWishlistService(wishlistRepo, productRepo, userRepo)

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(middleware.LoggingMiddleware())
	engine.Use(middleware.NewIdentityMiddleware(authService, users).Resolve())
	registerRoutes(engine,
		NewAuthController(authService, users),
		NewUserController(users),
		NewCategoryController(categories),
		NewProductController(products),
		NewReviewController(reviews),
		NewCartController(carts),
		NewOrderController(orders),
		NewWishlistController(wishlist),
		NewUploadController(fakeUploader{}),
	)

	return &testEnv{
		db:          testDB,
		engine:      engine,
		userRepo:    userRepo,
		productRepo: productRepo,
		auth:        authService,
		users:       users,
		products:    products,
		orders:      orders,
	}
}

// registerRoutes mirrors the production route table closely enough for
// controller tests; the router package has its own end-to-end test.
func registerRoutes(
	r *gin.Engine,
	authCtrl *AuthController,
	userCtrl *UserController,
	categoryCtrl *CategoryController,
	productCtrl *ProductController,
	reviewCtrl *ReviewController,
	cartCtrl *CartController,
	orderCtrl *OrderController,
	wishlistCtrl *WishlistController,
	uploadCtrl *UploadController,
) {
	admin := middleware.RequireRole(model.RoleAdmin)
	signedIn := middleware.RequireIdentity()
	self := middleware.RequireSelfOrAdmin("userId")

	api := r.Group("/api")
	api.POST("/auth/register", authCtrl.Register)
	api.POST("/auth/authenticate", authCtrl.Authenticate)
	api.GET("/auth/me", signedIn, authCtrl.GetMe)

	api.GET("/users/:id", signedIn, userCtrl.GetUser)
	api.PUT("/users/:id/active", admin, userCtrl.SetActive)

	api.GET("/categories", categoryCtrl.ListCategories)
	api.GET("/categories/:id", categoryCtrl.GetCategory)
	api.GET("/categories/:id/children", categoryCtrl.ListChildren)
	api.POST("/categories", admin, categoryCtrl.CreateCategory)
	api.PUT("/categories/:id", admin, categoryCtrl.UpdateCategory)
	api.DELETE("/categories/:id", admin, categoryCtrl.DeleteCategory)

	api.GET("/products", productCtrl.ListProducts)
	api.GET("/products/:id", productCtrl.GetProduct)
	api.POST("/products", admin, productCtrl.CreateProduct)
	api.PUT("/products/:id", admin, productCtrl.UpdateProduct)
	api.DELETE("/products/:id", admin, productCtrl.DeleteProduct)
	api.PUT("/products/:id/stock", admin, productCtrl.SetStock)
	api.GET("/products/:id/reviews", reviewCtrl.ListProductReviews)
	api.POST("/products/:id/reviews", signedIn, reviewCtrl.CreateReview)
	api.GET("/products/:id/rating", reviewCtrl.GetRatingSummary)
	api.PUT("/reviews/:id", signedIn, reviewCtrl.UpdateReview)
	api.DELETE("/reviews/:id", signedIn, reviewCtrl.DeleteReview)
	api.PUT("/reviews/:id/approval", admin, reviewCtrl.SetApproval)

	api.GET("/cart/count", cartCtrl.CountItemsByQuery)
	api.GET("/cart/user/:userId", self, cartCtrl.GetCart)
	api.DELETE("/cart/user/:userId", self, cartCtrl.ClearCart)
	api.GET("/cart/user/:userId/count", self, cartCtrl.CountItems)
	api.POST("/cart/user/:userId/items", self, cartCtrl.AddItem)
	api.PUT("/cart/user/:userId/items/:itemId", self, cartCtrl.UpdateItem)
	api.DELETE("/cart/user/:userId/items/:itemId", self, cartCtrl.RemoveItem)

	api.GET("/orders/export", admin, orderCtrl.Export)
	api.GET("/orders/:orderId", orderCtrl.GetOrder)
	api.POST("/orders/:orderId/cancel", orderCtrl.Cancel)
	api.PUT("/orders/:orderId/status", admin, orderCtrl.UpdateStatus)
	api.PUT("/orders/:orderId/payment-status", admin, orderCtrl.UpdatePaymentStatus)
	api.GET("/orders/user/:userId", self, orderCtrl.ListUserOrders)
	api.POST("/orders/user/:userId", self, orderCtrl.PlaceDirect)
	api.POST("/orders/user/:userId/checkout", self, orderCtrl.Checkout)

	api.GET("/wishlist/user/:userId", self, wishlistCtrl.GetWishlist)
	api.POST("/wishlist/user/:userId/items", self, wishlistCtrl.AddItem)
	api.DELETE("/wishlist/user/:userId/items/:productId", self, wishlistCtrl.RemoveItem)

	api.POST("/uploads/product-images", admin, uploadCtrl.PresignProductImage)
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

// do sends a JSON request, acting as user when it is non-nil.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}, user *model.User) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set(middleware.UserIDHeader, user.ID.String())
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	decodeBody(t, w, &body)
	return body
}

func requireStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
}

