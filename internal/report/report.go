// Package report derives read-only views over the catalog and transaction
// history: dashboard stats, per-day sales reports, and the transaction CSV
// export. Everything here is a pure function of its inputs.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"pos-terminal-service/internal/domain"
)

const topProductsLimit = 5

// DailySales is one day's sales total.
type DailySales struct {
	Date  string          `json:"date"` // yyyy-mm-dd
	Sales decimal.Decimal `json:"sales"`
}

// ProductSales aggregates sold quantity and revenue for one product.
type ProductSales struct {
	Product  domain.Product  `json:"product"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// DashboardStats is the summary shown on the dashboard page.
type DashboardStats struct {
	TotalSales         decimal.Decimal `json:"total_sales"`
	TotalTransactions  int             `json:"total_transactions"`
	TotalProducts      int             `json:"total_products"`
	LowStockProducts   int             `json:"low_stock_products"`
	DailySales         []DailySales    `json:"daily_sales"`
	TopSellingProducts []ProductSales  `json:"top_selling_products"`
}

// SalesReport is the per-day breakdown used by the analytics page.
type SalesReport struct {
	Date              string          `json:"date"`
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalTransactions int             `json:"total_transactions"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	TopProducts       []ProductSales  `json:"top_products"`
}

// Dashboard computes the dashboard summary. Products with stock below
// lowStockThreshold count as low-stock.
func Dashboard(products []domain.Product, transactions []domain.Transaction, lowStockThreshold int) DashboardStats {
	stats := DashboardStats{
		TotalSales:        decimal.Zero,
		TotalTransactions: len(transactions),
		TotalProducts:     len(products),
	}
	for _, p := range products {
		if p.Stock < lowStockThreshold {
			stats.LowStockProducts++
		}
	}
	for _, tx := range transactions {
		stats.TotalSales = stats.TotalSales.Add(tx.Total)
	}
	stats.DailySales = dailySales(transactions)
	stats.TopSellingProducts = topProducts(transactions, byQuantity)
	return stats
}

// Daily computes the sales report for one calendar day (yyyy-mm-dd, UTC).
func Daily(transactions []domain.Transaction, date string) SalesReport {
	rep := SalesReport{
		Date:              date,
		TotalSales:        decimal.Zero,
		AverageOrderValue: decimal.Zero,
	}
	var dayTxs []domain.Transaction
	for _, tx := range transactions {
		if tx.CreatedAt.UTC().Format("2006-01-02") == date {
			dayTxs = append(dayTxs, tx)
			rep.TotalSales = rep.TotalSales.Add(tx.Total)
		}
	}
	rep.TotalTransactions = len(dayTxs)
	if len(dayTxs) > 0 {
		rep.AverageOrderValue = rep.TotalSales.Div(decimal.NewFromInt(int64(len(dayTxs)))).Round(2)
	}
	rep.TopProducts = topProducts(dayTxs, byRevenue)
	return rep
}

func dailySales(transactions []domain.Transaction) []DailySales {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range transactions {
		day := tx.CreatedAt.UTC().Format("2006-01-02")
		totals[day] = totals[day].Add(tx.Total)
	}
	days := make([]DailySales, 0, len(totals))
	for day, sales := range totals {
		days = append(days, DailySales{Date: day, Sales: sales})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

type sortOrder int

const (
	byQuantity sortOrder = iota
	byRevenue
)

// topProducts aggregates line items across transactions by product ID,
// keeping the most recent product snapshot seen for each.
func topProducts(transactions []domain.Transaction, order sortOrder) []ProductSales {
	agg := make(map[string]*ProductSales)
	for _, tx := range transactions {
		for _, item := range tx.Items {
			entry, ok := agg[item.Product.ID]
			if !ok {
				entry = &ProductSales{Product: item.Product, Revenue: decimal.Zero}
				agg[item.Product.ID] = entry
			}
			entry.Quantity += item.Quantity
			entry.Revenue = entry.Revenue.Add(item.LineTotal())
		}
	}
	top := make([]ProductSales, 0, len(agg))
	for _, entry := range agg {
		top = append(top, *entry)
	}
	sort.Slice(top, func(i, j int) bool {
		if order == byRevenue {
			return top[i].Revenue.GreaterThan(top[j].Revenue)
		}
		return top[i].Quantity > top[j].Quantity
	})
	if len(top) > topProductsLimit {
		top = top[:topProductsLimit]
	}
	return top
}
