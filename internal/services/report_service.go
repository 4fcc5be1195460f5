package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"bar_pos_backend/internal/models"
	"bar_pos_backend/internal/repositories"
)

// Reporting errors.
var (
	ErrInvalidDateRange   = errors.New("invalid date range")
	ErrInvalidGranularity = errors.New("granularity must be day or month")
	ErrInvalidMetric      = errors.New("metric must be quantity or revenue")
)

const (
	GranularityDay   = "day"
	GranularityMonth = "month"

	MetricQuantity = "quantity"
	MetricRevenue  = "revenue"

	defaultTopLimit   = 5
	defaultRangeDays  = 30
	reportDateLayout  = "2006-01-02"
	monthBucketLayout = "Jan 2006"
)

// ReportService produces back-office aggregations over persisted sales.
// Money sums go through decimal arithmetic and are converted to float64 only
// at the response boundary.
type ReportService interface {
	SalesOverTime(params models.ReportRequestParams) ([]models.SalesBucket, error)
	CategorySales(params models.ReportRequestParams) ([]models.CategoryBucket, error)
	TopItems(params models.ReportRequestParams) ([]models.TopItemStat, error)
	DashboardSummary() (*models.DashboardSummary, error)
}

type reportService struct {
	saleRepo    repositories.SaleRepository
	productRepo repositories.ProductRepository
	carts       *CartStore
	now         func() time.Time
}

// NewReportService creates a new instance of ReportService.
func NewReportService(saleRepo repositories.SaleRepository, productRepo repositories.ProductRepository, carts *CartStore) ReportService {
	return &reportService{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		carts:       carts,
		now:         time.Now,
	}
}

// resolveRange parses the requested date range, defaulting to the trailing
// thirty days. The end bound is exclusive at the following midnight.
func (s *reportService) resolveRange(params models.ReportRequestParams) (time.Time, time.Time, error) {
	now := s.now()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -defaultRangeDays)

	if params.StartDate != "" {
		parsed, err := time.Parse(reportDateLayout, params.StartDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: bad start_date %q", ErrInvalidDateRange, params.StartDate)
		}
		start = parsed
	}
	if params.EndDate != "" {
		parsed, err := time.Parse(reportDateLayout, params.EndDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: bad end_date %q", ErrInvalidDateRange, params.EndDate)
		}
		end = parsed.AddDate(0, 0, 1)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start %s is not before end", ErrInvalidDateRange, start.Format(reportDateLayout))
	}
	return start, end, nil
}

// GroupSalesByBucket buckets sales by their sale date, daily or monthly.
// Buckets appear in first-encounter order of the input.
func GroupSalesByBucket(sales []models.Sale, granularity string) []models.SalesBucket {
	layout := reportDateLayout
	if granularity == GranularityMonth {
		layout = monthBucketLayout
	}

	index := make(map[string]int)
	buckets := make([]models.SalesBucket, 0)
	totals := make([]decimal.Decimal, 0)

	for _, sale := range sales {
		key := sale.SaleDate.Format(layout)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, models.SalesBucket{Key: key})
			totals = append(totals, decimal.Zero)
		}
		totals[i] = totals[i].Add(decimal.NewFromFloat(sale.TotalAmount))
		buckets[i].SalesCount++
	}

	for i := range buckets {
		buckets[i].TotalAmount = totals[i].InexactFloat64()
	}
	return buckets
}

// GroupItemsByCategory buckets sold items by product category. Items without
// a category land in the "Unknown" bucket.
func GroupItemsByCategory(items []models.SaleItem) []models.CategoryBucket {
	type sums struct {
		revenue decimal.Decimal
		profit  decimal.Decimal
	}

	index := make(map[string]int)
	buckets := make([]models.CategoryBucket, 0)
	totals := make([]sums, 0)

	for _, item := range items {
		category := "Unknown"
		if item.Category != nil && *item.Category != "" {
			category = *item.Category
		}
		i, ok := index[category]
		if !ok {
			i = len(buckets)
			index[category] = i
			buckets = append(buckets, models.CategoryBucket{Category: category})
			totals = append(totals, sums{revenue: decimal.Zero, profit: decimal.Zero})
		}
		buckets[i].TotalQuantity += item.Quantity
		totals[i].revenue = totals[i].revenue.Add(decimal.NewFromFloat(item.TotalPrice))
		totals[i].profit = totals[i].profit.Add(decimal.NewFromFloat(item.ProfitAmount))
	}

	for i := range buckets {
		buckets[i].TotalRevenue = totals[i].revenue.InexactFloat64()
		buckets[i].TotalProfit = totals[i].profit.InexactFloat64()
	}
	return buckets
}

// TopItemStats aggregates sold items by product name and returns the top
// limit entries by the chosen metric. The sort is stable, so ties keep the
// first-encounter order of the input.
func TopItemStats(items []models.SaleItem, metric string, limit int) []models.TopItemStat {
	index := make(map[string]int)
	stats := make([]models.TopItemStat, 0)
	revenues := make([]decimal.Decimal, 0)

	for _, item := range items {
		i, ok := index[item.ProductName]
		if !ok {
			i = len(stats)
			index[item.ProductName] = i
			stats = append(stats, models.TopItemStat{ProductName: item.ProductName})
			revenues = append(revenues, decimal.Zero)
		}
		stats[i].TotalQuantity += item.Quantity
		revenues[i] = revenues[i].Add(decimal.NewFromFloat(item.TotalPrice))
	}

	for i := range stats {
		stats[i].TotalRevenue = revenues[i].InexactFloat64()
	}

	if metric == MetricRevenue {
		sort.SliceStable(stats, func(a, b int) bool {
			return stats[a].TotalRevenue > stats[b].TotalRevenue
		})
	} else {
		sort.SliceStable(stats, func(a, b int) bool {
			return stats[a].TotalQuantity > stats[b].TotalQuantity
		})
	}

	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}

func (s *reportService) SalesOverTime(params models.ReportRequestParams) ([]models.SalesBucket, error) {
	granularity := params.Granularity
	if granularity == "" {
		granularity = GranularityDay
	}
	if granularity != GranularityDay && granularity != GranularityMonth {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGranularity, params.Granularity)
	}

	start, end, err := s.resolveRange(params)
	if err != nil {
		return nil, err
	}
	sales, err := s.saleRepo.GetSalesBetween(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sales for report: %w", err)
	}
	return GroupSalesByBucket(sales, granularity), nil
}

func (s *reportService) CategorySales(params models.ReportRequestParams) ([]models.CategoryBucket, error) {
	start, end, err := s.resolveRange(params)
	if err != nil {
		return nil, err
	}
	items, err := s.saleRepo.GetSaleItemsBetween(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sale items for report: %w", err)
	}
	return GroupItemsByCategory(items), nil
}

func (s *reportService) TopItems(params models.ReportRequestParams) ([]models.TopItemStat, error) {
	metric := params.Metric
	if metric == "" {
		metric = MetricQuantity
	}
	if metric != MetricQuantity && metric != MetricRevenue {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMetric, params.Metric)
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultTopLimit
	}

	start, end, err := s.resolveRange(params)
	if err != nil {
		return nil, err
	}
	items, err := s.saleRepo.GetSaleItemsBetween(start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sale items for report: %w", err)
	}
	return TopItemStats(items, metric, limit), nil
}

func (s *reportService) DashboardSummary() (*models.DashboardSummary, error) {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := today.AddDate(0, 0, -int(today.Weekday()))
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := today.AddDate(0, 0, 1)

	sumBetween := func(start time.Time) (float64, error) {
		sales, err := s.saleRepo.GetSalesBetween(start, end)
		if err != nil {
			return 0, fmt.Errorf("failed to fetch sales for dashboard: %w", err)
		}
		total := decimal.Zero
		for _, sale := range sales {
			total = total.Add(decimal.NewFromFloat(sale.TotalAmount))
		}
		return total.InexactFloat64(), nil
	}

	summary := &models.DashboardSummary{}

	var err error
	if summary.TotalSalesToday, err = sumBetween(today); err != nil {
		return nil, err
	}
	if summary.TotalSalesThisWeek, err = sumBetween(weekStart); err != nil {
		return nil, err
	}
	if summary.TotalSalesThisMonth, err = sumBetween(monthStart); err != nil {
		return nil, err
	}

	pending := true
	_, pendingCount, err := s.saleRepo.GetSales(models.SaleFilters{IsPending: &pending})
	if err != nil {
		return nil, fmt.Errorf("failed to count pending sales: %w", err)
	}
	summary.PendingSalesCount = pendingCount

	lowStock, err := s.productRepo.GetLowStockProducts()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch low stock products: %w", err)
	}
	summary.LowStockCount = len(lowStock)
	summary.ActiveTablesCount = len(s.carts.ActiveTables())

	return summary, nil
}
