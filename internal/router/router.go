package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/storefront-backend/config"
	"github.com/ikkim/storefront-backend/internal/app/controller"
	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/internal/middleware"
)

type Router struct {
	authController     *controller.AuthController
	userController     *controller.UserController
	categoryController *controller.CategoryController
	productController  *controller.ProductController
	reviewController   *controller.ReviewController
	cartController     *controller.CartController
	orderController    *controller.OrderController
	wishlistController *controller.WishlistController
	uploadController   *controller.UploadController
	identity           *middleware.IdentityMiddleware
	config             *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	userController *controller.UserController,
	categoryController *controller.CategoryController,
	productController *controller.ProductController,
	reviewController *controller.ReviewController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	wishlistController *controller.WishlistController,
	uploadController *controller.UploadController,
	identity *middleware.IdentityMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		userController:     userController,
		categoryController: categoryController,
		productController:  productController,
		reviewController:   reviewController,
		cartController:     cartController,
		orderController:    orderController,
		wishlistController: wishlistController,
		uploadController:   uploadController,
		identity:           identity,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(r.config.CORS.AllowedOrigins))
	router.Use(r.identity.Resolve())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "storefront API is running",
		})
	})

	admin := middleware.RequireRole(model.RoleAdmin)
	signedIn := middleware.RequireIdentity()

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/authenticate", r.authController.Authenticate)
			auth.GET("/me", signedIn, r.authController.GetMe)
		}

		users := api.Group("/users")
		{
			users.GET("/:id", signedIn, r.userController.GetUser)
			users.PUT("/:id/active", admin, r.userController.SetActive)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", r.categoryController.ListCategories)
			categories.GET("/:id", r.categoryController.GetCategory)
			categories.GET("/:id/children", r.categoryController.ListChildren)
			categories.POST("", admin, r.categoryController.CreateCategory)
			categories.PUT("/:id", admin, r.categoryController.UpdateCategory)
			categories.DELETE("/:id", admin, r.categoryController.DeleteCategory)
		}

		products := api.Group("/products")
		{
			products.GET("", r.productController.ListProducts)
			products.GET("/:id", r.productController.GetProduct)
			products.POST("", admin, r.productController.CreateProduct)
			products.PUT("/:id", admin, r.productController.UpdateProduct)
			products.DELETE("/:id", admin, r.productController.DeleteProduct)
			products.PUT("/:id/stock", admin, r.productController.SetStock)

			products.GET("/:id/reviews", r.reviewController.ListProductReviews)
			products.POST("/:id/reviews", signedIn, r.reviewController.CreateReview)
			products.GET("/:id/rating", r.reviewController.GetRatingSummary)
		}

		reviews := api.Group("/reviews")
		{
			reviews.PUT("/:id", signedIn, r.reviewController.UpdateReview)
			reviews.DELETE("/:id", signedIn, r.reviewController.DeleteReview)
			reviews.PUT("/:id/approval", admin, r.reviewController.SetApproval)
		}

		cart := api.Group("/cart")
		{
			cart.GET("/count", r.cartController.CountItemsByQuery)

			userCart := cart.Group("/user/:userId", middleware.RequireSelfOrAdmin("userId"))
			{
				userCart.GET("", r.cartController.GetCart)
				userCart.DELETE("", r.cartController.ClearCart)
				userCart.GET("/count", r.cartController.CountItems)
				userCart.POST("/items", r.cartController.AddItem)
				userCart.PUT("/items/:itemId", r.cartController.UpdateItem)
				userCart.DELETE("/items/:itemId", r.cartController.RemoveItem)
			}
		}

		orders := api.Group("/orders")
		{
			orders.GET("/export", admin, r.orderController.Export)
			orders.GET("/:orderId", signedIn, r.orderController.GetOrder)
			orders.POST("/:orderId/cancel", signedIn, r.orderController.Cancel)
			orders.PUT("/:orderId/status", admin, r.orderController.UpdateStatus)
			orders.PUT("/:orderId/payment-status", admin, r.orderController.UpdatePaymentStatus)

			userOrders := orders.Group("/user/:userId", middleware.RequireSelfOrAdmin("userId"))
			{
				userOrders.GET("", r.orderController.ListUserOrders)
				userOrders.POST("", r.orderController.PlaceDirect)
				userOrders.POST("/checkout", r.orderController.Checkout)
			}
		}

		wishlist := api.Group("/wishlist/user/:userId", middleware.RequireSelfOrAdmin("userId"))
		{
			wishlist.GET("", r.wishlistController.GetWishlist)
			wishlist.POST("/items", r.wishlistController.AddItem)
			wishlist.DELETE("/items/:productId", r.wishlistController.RemoveItem)
		}

		api.POST("/uploads/product-images", admin, r.uploadController.PresignProductImage)
	}

	return router
}
