package router

import (
	"database/sql"

	"bar_pos_backend/internal/cache"
	"bar_pos_backend/internal/handlers"
	"bar_pos_backend/internal/middleware"
	"bar_pos_backend/internal/repositories"
	"bar_pos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup wires repositories, services and handlers and registers all routes.
func Setup(engine *gin.Engine, db *sql.DB, productCache cache.ProductCache) {
	// Repositories
	authRepo := repositories.NewAuthRepository(db)
	productRepo := repositories.NewProductRepository(db)
	saleRepo := repositories.NewSaleRepository(db)
	barRepo := repositories.NewBarRepository(db)
	bookingRepo := repositories.NewBookingRepository(db)

	// The cart store is in-memory server state shared by the sales flow.
	carts := services.NewCartStore(productRepo)

	// Services
	authService := services.NewAuthService(authRepo, db)
	productService := services.NewProductService(productRepo, productCache, db)
	barService := services.NewBarService(barRepo, carts, db)
	saleService := services.NewSaleService(saleRepo, productRepo, carts, db)
	reportService := services.NewReportService(saleRepo, productRepo, carts)
	bookingService := services.NewBookingService(bookingRepo, db)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(carts)
	barHandler := handlers.NewBarHandler(barService)
	saleHandler := handlers.NewSaleHandler(saleService)
	reportHandler := handlers.NewReportHandler(reportService)
	bookingHandler := handlers.NewBookingHandler(bookingService)

	apiV1 := engine.Group("/api/v1")

	SetupPublicAuthRoutes(apiV1, authHandler)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		SetupAuthenticatedAuthRoutes(authenticated, authHandler)
		SetupProductRoutes(authenticated, productHandler)
		SetupTableRoutes(authenticated, cartHandler, barHandler, saleHandler)
		SetupBarRoutes(authenticated, barHandler)
		SetupSaleRoutes(authenticated, saleHandler)
		SetupReportRoutes(authenticated, reportHandler)
		SetupBookingRoutes(authenticated, bookingHandler)
	}
}
