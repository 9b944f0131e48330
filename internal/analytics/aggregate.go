package analytics

import (
	"time"

	"github.com/kasirku/kasirku-backend/pkg/database"
	"github.com/kasirku/kasirku-backend/pkg/period"
)

// Trend flags for period-over-period comparison
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

// Summary holds the headline numbers for a date range
type Summary struct {
	TotalSales       float64 `json:"total_sales"`
	TotalProfit      float64 `json:"total_profit"`
	TransactionCount int     `json:"transaction_count"`
	AveragePerTx     float64 `json:"average_per_tx"`
	MaxSale          float64 `json:"max_sale"`
	MinSale          float64 `json:"min_sale"`
}

// Summarize computes totals over the fetched sales
func Summarize(sales []database.Sale) Summary {
	var s Summary
	for i, sale := range sales {
		s.TotalSales += sale.Total
		s.TotalProfit += sale.Profit
		s.TransactionCount++
		if i == 0 || sale.Total > s.MaxSale {
			s.MaxSale = sale.Total
		}
		if i == 0 || sale.Total < s.MinSale {
			s.MinSale = sale.Total
		}
	}
	if s.TransactionCount > 0 {
		s.AveragePerTx = s.TotalSales / float64(s.TransactionCount)
	}
	return s
}

// DayPoint is one day in a performance series
type DayPoint struct {
	Date         string  `json:"date"`
	Sales        float64 `json:"sales"`
	Profit       float64 `json:"profit"`
	Transactions int     `json:"transactions"`
	Growth       float64 `json:"growth"` // percent vs previous day
	Trend        string  `json:"trend"`  // up, down, stable
}

// PerformanceSeries buckets sales per calendar day between start and end,
// zero-filling empty days, and computes day-over-day growth. A day
// following a zero-sales day with nonzero sales reports +100 and up.
func PerformanceSeries(sales []database.Sale, start, end time.Time) []DayPoint {
	type bucket struct {
		sales        float64
		profit       float64
		transactions int
	}
	buckets := make(map[string]*bucket)
	for _, sale := range sales {
		key := period.DayKey(sale.CreatedAt)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.sales += sale.Total
		b.profit += sale.Profit
		b.transactions++
	}

	days := period.DaySequence(start, end)
	series := make([]DayPoint, 0, len(days))
	for i, day := range days {
		key := period.DayKey(day)
		point := DayPoint{Date: key, Trend: TrendStable}
		if b, ok := buckets[key]; ok {
			point.Sales = b.sales
			point.Profit = b.profit
			point.Transactions = b.transactions
		}

		if i > 0 {
			prev := series[i-1].Sales
			switch {
			case prev == 0 && point.Sales > 0:
				point.Growth = 100
				point.Trend = TrendUp
			case prev == 0:
				// two empty days in a row
			case point.Sales > prev:
				point.Growth = (point.Sales - prev) / prev * 100
				point.Trend = TrendUp
			case point.Sales < prev:
				point.Growth = (point.Sales - prev) / prev * 100
				point.Trend = TrendDown
			}
		}

		series = append(series, point)
	}
	return series
}

// MonthlyProfit groups a year's sales into 12 calendar month buckets,
// returned as parallel label/value arrays for chart rendering
func MonthlyProfit(sales []database.Sale, year int) ([]string, []float64) {
	labels := monthLabels()
	values := make([]float64, 12)
	for _, sale := range sales {
		if sale.CreatedAt.Year() != year {
			continue
		}
		values[int(sale.CreatedAt.Month())-1] += sale.Profit
	}
	return labels, values
}

// MonthlyTransactions counts a year's sales per calendar month
func MonthlyTransactions(sales []database.Sale, year int) ([]string, []int) {
	labels := monthLabels()
	values := make([]int, 12)
	for _, sale := range sales {
		if sale.CreatedAt.Year() != year {
			continue
		}
		values[int(sale.CreatedAt.Month())-1]++
	}
	return labels, values
}

func monthLabels() []string {
	labels := make([]string, 12)
	for i := 0; i < 12; i++ {
		labels[i] = time.Month(i + 1).String()[:3]
	}
	return labels
}

// YearlyProfit sums profit per calendar year, oldest first
func YearlyProfit(sales []database.Sale) ([]string, []float64) {
	if len(sales) == 0 {
		return nil, nil
	}

	minYear, maxYear := sales[0].CreatedAt.Year(), sales[0].CreatedAt.Year()
	totals := make(map[int]float64)
	for _, sale := range sales {
		year := sale.CreatedAt.Year()
		totals[year] += sale.Profit
		if year < minYear {
			minYear = year
		}
		if year > maxYear {
			maxYear = year
		}
	}

	var labels []string
	var values []float64
	for year := minYear; year <= maxYear; year++ {
		labels = append(labels, time.Date(year, 1, 1, 0, 0, 0, 0, time.Local).Format("2006"))
		values = append(values, totals[year])
	}
	return labels, values
}

// MonthRangeProfit generates one bucket per calendar month between start
// and end, including months with zero activity, so chart x-axes stay
// contiguous
func MonthRangeProfit(sales []database.Sale, start, end time.Time) ([]string, []float64) {
	totals := make(map[string]float64)
	for _, sale := range sales {
		totals[period.MonthKey(sale.CreatedAt)] += sale.Profit
	}

	months := period.MonthSequence(start, end)
	labels := make([]string, 0, len(months))
	values := make([]float64, 0, len(months))
	for _, m := range months {
		labels = append(labels, m.Format("Jan 2006"))
		values = append(values, totals[period.MonthKey(m)])
	}
	return labels, values
}

// ItemRow is one sold line joined with its sale date, the input for
// product-level metrics
type ItemRow struct {
	Date     time.Time
	Quantity int
	Subtotal float64
}

// ProductDaySales is one day in a product's sales series
type ProductDaySales struct {
	Date     string  `json:"date"`
	Sales    float64 `json:"sales"`
	Quantity int     `json:"quantity"`
}

// ProductMetrics aggregates one product's sold lines over a range
type ProductMetrics struct {
	TotalSales float64           `json:"total_sales"`
	TotalQty   int               `json:"total_qty"`
	Series     []ProductDaySales `json:"series"`
	BestDay    *ProductDaySales  `json:"best_day"` // highest quantity sold
}

// ProductSalesMetrics buckets a product's sold lines by day and finds
// the single day with the highest quantity sold
func ProductSalesMetrics(rows []ItemRow, start, end time.Time) ProductMetrics {
	type bucket struct {
		sales    float64
		quantity int
	}
	buckets := make(map[string]*bucket)

	var metrics ProductMetrics
	for _, row := range rows {
		metrics.TotalSales += row.Subtotal
		metrics.TotalQty += row.Quantity

		key := period.DayKey(row.Date)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.sales += row.Subtotal
		b.quantity += row.Quantity
	}

	for _, day := range period.DaySequence(start, end) {
		key := period.DayKey(day)
		point := ProductDaySales{Date: key}
		if b, ok := buckets[key]; ok {
			point.Sales = b.sales
			point.Quantity = b.quantity
		}
		metrics.Series = append(metrics.Series, point)
	}

	for i := range metrics.Series {
		if metrics.Series[i].Quantity == 0 {
			continue
		}
		if metrics.BestDay == nil || metrics.Series[i].Quantity > metrics.BestDay.Quantity {
			metrics.BestDay = &metrics.Series[i]
		}
	}

	return metrics
}
