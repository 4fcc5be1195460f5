package router

import (
	"bar_pos_backend/internal/handlers"
	"bar_pos_backend/internal/middleware"
	"bar_pos_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// SetupPublicAuthRoutes sets up the unauthenticated auth routes.
func SetupPublicAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}
}

// SetupAuthenticatedAuthRoutes sets up profile and user administration routes.
// User administration is Admin-only.
func SetupAuthenticatedAuthRoutes(authenticatedGroup *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	authRoutes := authenticatedGroup.Group("/auth")
	{
		authRoutes.GET("/me", authHandler.GetProfile)
	}

	userRoutes := authenticatedGroup.Group("/users")
	userRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		userRoutes.GET("", authHandler.GetUsers)
		userRoutes.DELETE("/:id", authHandler.DeleteUser)
	}
}

// SetupProductRoutes sets up the catalog routes. Reads are open to both
// roles; catalog writes are Admin-only.
func SetupProductRoutes(authenticatedGroup *gin.RouterGroup, productHandler *handlers.ProductHandler) {
	productRoutes := authenticatedGroup.Group("/products")
	productRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleSalesRep))
	{
		productRoutes.GET("", productHandler.GetProducts)
		productRoutes.GET("/low-stock", productHandler.GetLowStockProducts)
		productRoutes.GET("/:id", productHandler.GetProductByID)
	}

	productAdminRoutes := authenticatedGroup.Group("/products")
	productAdminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		productAdminRoutes.POST("", productHandler.CreateProduct)
		productAdminRoutes.PUT("/:id", productHandler.UpdateProduct)
		productAdminRoutes.PATCH("/:id/stock", productHandler.AdjustStock)
		productAdminRoutes.DELETE("/:id", productHandler.DeleteProduct)
	}
}

// SetupTableRoutes sets up the per-table sales flow: cart editing, the bar
// hand-off and checkout.
func SetupTableRoutes(authenticatedGroup *gin.RouterGroup, cartHandler *handlers.CartHandler, barHandler *handlers.BarHandler, saleHandler *handlers.SaleHandler) {
	tableRoutes := authenticatedGroup.Group("/tables")
	tableRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleSalesRep))
	{
		tableRoutes.GET("/active", cartHandler.GetActiveTables)
		tableRoutes.GET("/:table_no/cart", cartHandler.GetTableCart)
		tableRoutes.POST("/:table_no/cart/items", cartHandler.AddItem)
		tableRoutes.PATCH("/:table_no/cart/items", cartHandler.UpdateItemQuantity)
		tableRoutes.DELETE("/:table_no/cart/items", cartHandler.RemoveItem)
		tableRoutes.POST("/:table_no/expenses", cartHandler.AddExpense)
		tableRoutes.DELETE("/:table_no/expenses/:expense_id", cartHandler.RemoveExpense)
		tableRoutes.PATCH("/:table_no/pending-customer", cartHandler.SetPendingCustomer)

		tableRoutes.POST("/:table_no/bar", barHandler.SendTableToBar)
		tableRoutes.POST("/:table_no/bar/given", barHandler.MarkTableGiven)
		tableRoutes.POST("/:table_no/bar/cancel", barHandler.CancelTableRequests)

		tableRoutes.POST("/:table_no/finalize", saleHandler.FinalizeTableSale)
	}
}

// SetupBarRoutes sets up the bartender-side routes.
func SetupBarRoutes(authenticatedGroup *gin.RouterGroup, barHandler *handlers.BarHandler) {
	barRoutes := authenticatedGroup.Group("/bar")
	barRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleSalesRep))
	{
		barRoutes.GET("/requests", barHandler.GetBarRequests)
		barRoutes.GET("/fulfillments", barHandler.GetFulfillments)
		barRoutes.PATCH("/fulfillments/:id", barHandler.UpdateFulfillment)
		barRoutes.POST("/fulfillments/:id/modification", barHandler.ProposeModification)
		barRoutes.POST("/fulfillments/:id/modification/approve", barHandler.ApproveModification)
		barRoutes.POST("/fulfillments/:id/modification/reject", barHandler.RejectModification)
	}
}

// SetupSaleRoutes sets up the sale history and pending payment routes.
func SetupSaleRoutes(authenticatedGroup *gin.RouterGroup, saleHandler *handlers.SaleHandler) {
	saleRoutes := authenticatedGroup.Group("/sales")
	saleRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleSalesRep))
	{
		saleRoutes.GET("", saleHandler.GetSales)
		saleRoutes.GET("/pending", saleHandler.GetPendingSales)
		saleRoutes.GET("/:id", saleHandler.GetSaleByID)
		saleRoutes.POST("/:id/payments", saleHandler.RecordPendingPayment)
	}
}

// SetupReportRoutes sets up the back-office reporting routes, Admin-only.
func SetupReportRoutes(authenticatedGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	reportRoutes := authenticatedGroup.Group("/reports")
	reportRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
	{
		reportRoutes.GET("/sales", reportHandler.GetSalesOverTime)
		reportRoutes.GET("/categories", reportHandler.GetCategorySales)
		reportRoutes.GET("/top-items", reportHandler.GetTopItems)
		reportRoutes.GET("/dashboard", reportHandler.GetDashboardSummary)
	}
}

// SetupBookingRoutes sets up the room booking routes.
func SetupBookingRoutes(authenticatedGroup *gin.RouterGroup, bookingHandler *handlers.BookingHandler) {
	bookingRoutes := authenticatedGroup.Group("/room-bookings")
	bookingRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleSalesRep))
	{
		bookingRoutes.POST("", bookingHandler.CreateRoomBooking)
		bookingRoutes.GET("", bookingHandler.GetRoomBookings)
		bookingRoutes.GET("/:id", bookingHandler.GetRoomBookingByID)
		bookingRoutes.DELETE("/:id", bookingHandler.DeleteRoomBooking)
	}
}
