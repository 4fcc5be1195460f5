package models

// SalesBucket is one time bucket of aggregated sales.
// Key is YYYY-MM-DD for daily grouping, "Jan 2006" for monthly grouping.
type SalesBucket struct {
	Key         string  `json:"key"`
	TotalAmount float64 `json:"total_amount"`
	SalesCount  int     `json:"sales_count"`
}

// CategoryBucket aggregates sold items by product category.
// Items whose product carries no category land in the "Unknown" bucket.
type CategoryBucket struct {
	Category      string  `json:"category"`
	TotalQuantity int     `json:"total_quantity"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalProfit   float64 `json:"total_profit"`
}

// TopItemStat aggregates sold items by product name for top-N views.
type TopItemStat struct {
	ProductName   string  `json:"product_name"`
	TotalQuantity int     `json:"total_quantity"`
	TotalRevenue  float64 `json:"total_revenue"`
}

// DashboardSummary holds key metrics for the back-office dashboard.
type DashboardSummary struct {
	TotalSalesToday     float64 `json:"total_sales_today"`
	TotalSalesThisWeek  float64 `json:"total_sales_this_week"`
	TotalSalesThisMonth float64 `json:"total_sales_this_month"`
	PendingSalesCount   int     `json:"pending_sales_count"`
	LowStockCount       int     `json:"low_stock_count"`
	ActiveTablesCount   int     `json:"active_tables_count"`
}

// ReportRequestParams holds common parameters for requesting reports.
type ReportRequestParams struct {
	StartDate   string `form:"start_date"`  // YYYY-MM-DD
	EndDate     string `form:"end_date"`    // YYYY-MM-DD
	Granularity string `form:"granularity"` // "day" or "month"
	Metric      string `form:"metric"`      // "quantity" or "revenue" for top items
	Limit       int    `form:"limit"`
}
