package app

import (
	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app/controller"
	"github.com/ikkim/storefront-backend/internal/app/repository"
	"github.com/ikkim/storefront-backend/internal/app/service"
	"github.com/ikkim/storefront-backend/internal/cache"
	"github.com/ikkim/storefront-backend/internal/middleware"
	"github.com/ikkim/storefront-backend/internal/router"
	"github.com/ikkim/storefront-backend/internal/storage"
	"gorm.io/gorm"
)

// Services is the business layer shared by the HTTP server and shopctl.
type Services struct {
	Users      service.UserService
	Auth       service.AuthService
	Categories service.CategoryService
	Products   service.ProductService
	Carts      service.CartService
	Orders     service.OrderService
	Reviews    service.ReviewService
	Wishlist   service.WishlistService
	Import     service.CatalogImportService
}

// NewServices wires repositories and services over conn.
func NewServices(cfg *config.Config, conn *gorm.DB, c cache.Cache) *Services {
	loader := cache.NewLoader(c, cfg.Cache.TTL)

	userRepo := repository.NewUserRepository(conn)
	categoryRepo := repository.NewCategoryRepository(conn)
	productRepo := repository.NewProductRepository(conn)
	cartRepo := repository.NewCartRepository(conn)
	orderRepo := repository.NewOrderRepository(conn)
	reviewRepo := repository.NewReviewRepository(conn)
	wishlistRepo := repository.NewWishlistRepository(conn)

	users := service.NewUserService(userRepo, loader)
	products := service.NewProductService(productRepo, categoryRepo, loader, conn)
	categories := service.NewCategoryService(categoryRepo, loader, conn)

	return &Services{
		Users:      users,
		Auth:       service.NewAuthService(userRepo, users, cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry),
		Categories: categories,
		Products:   products,
		Carts:      service.NewCartService(cartRepo, productRepo, userRepo, conn),
		Orders:     service.NewOrderService(orderRepo, cartRepo, productRepo, userRepo, products, conn),
		Reviews:    service.NewReviewService(reviewRepo, orderRepo, productRepo, cfg.Review.AutoApprove),
		Wishlist:   service.NewWishlistService(wishlistRepo, productRepo, userRepo),
		Import:     service.NewCatalogImportService(productRepo, categoryRepo, products, categories),
	}
}

// NewEngine builds the HTTP handler tree for svc.
func NewEngine(cfg *config.Config, svc *Services, uploader storage.ImageUploader) *gin.Engine {
	r := router.NewRouter(
		controller.NewAuthController(svc.Auth, svc.Users),
		controller.NewUserController(svc.Users),
		controller.NewCategoryController(svc.Categories),
		controller.NewProductController(svc.Products),
		controller.NewReviewController(svc.Reviews),
		controller.NewCartController(svc.Carts),
		controller.NewOrderController(svc.Orders),
		controller.NewWishlistController(svc.Wishlist),
		controller.NewUploadController(uploader),
		middleware.NewIdentityMiddleware(svc.Auth, svc.Users),
		cfg,
	)
	return r.Setup()
}
