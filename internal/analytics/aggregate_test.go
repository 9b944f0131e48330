package analytics

import (
	"testing"
	"time"

	"github.com/kasirku/kasirku-backend/pkg/database"
)

func saleAt(t time.Time, total, profit float64) database.Sale {
	s := database.Sale{Total: total, Profit: profit}
	s.CreatedAt = t
	return s
}

func TestSummarize(t *testing.T) {
	now := time.Now()
	sales := []database.Sale{
		saleAt(now, 15000, 5000),
		saleAt(now, 40000, 10000),
		saleAt(now, 5000, 1000),
	}

	s := Summarize(sales)
	if s.TotalSales != 60000 {
		t.Fatalf("expected total 60000, got %v", s.TotalSales)
	}
	if s.TotalProfit != 16000 {
		t.Fatalf("expected profit 16000, got %v", s.TotalProfit)
	}
	if s.TransactionCount != 3 {
		t.Fatalf("expected 3 transactions, got %d", s.TransactionCount)
	}
	if s.AveragePerTx != 20000 {
		t.Fatalf("expected average 20000, got %v", s.AveragePerTx)
	}
	if s.MaxSale != 40000 || s.MinSale != 5000 {
		t.Fatalf("expected max 40000 min 5000, got %v / %v", s.MaxSale, s.MinSale)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.TransactionCount != 0 || s.AveragePerTx != 0 || s.MaxSale != 0 || s.MinSale != 0 {
		t.Fatalf("expected zero summary, got %+v", s)
	}
}

func TestPerformanceSeriesGrowthFromZeroBaseline(t *testing.T) {
	day1 := time.Date(2026, 5, 1, 10, 0, 0, 0, time.Local)
	day3 := time.Date(2026, 5, 3, 10, 0, 0, 0, time.Local)

	// Day 2 has no sales, day 3 does: growth from a zero baseline is +100
	sales := []database.Sale{
		saleAt(day1, 20000, 4000),
		saleAt(day3, 10000, 2000),
	}

	series := PerformanceSeries(sales,
		time.Date(2026, 5, 1, 0, 0, 0, 0, time.Local),
		time.Date(2026, 5, 3, 0, 0, 0, 0, time.Local))

	if len(series) != 3 {
		t.Fatalf("expected 3 days, got %d", len(series))
	}
	if series[1].Sales != 0 || series[1].Trend != TrendDown {
		t.Fatalf("expected empty day 2 trending down, got %+v", series[1])
	}
	if series[2].Growth != 100 || series[2].Trend != TrendUp {
		t.Fatalf("expected +100 up after zero-sales day, got growth %v trend %s", series[2].Growth, series[2].Trend)
	}
}

func TestPerformanceSeriesGrowthPercent(t *testing.T) {
	day1 := time.Date(2026, 5, 1, 9, 0, 0, 0, time.Local)
	day2 := time.Date(2026, 5, 2, 9, 0, 0, 0, time.Local)

	sales := []database.Sale{
		saleAt(day1, 20000, 4000),
		saleAt(day2, 15000, 3000),
	}

	series := PerformanceSeries(sales,
		time.Date(2026, 5, 1, 0, 0, 0, 0, time.Local),
		time.Date(2026, 5, 2, 0, 0, 0, 0, time.Local))

	if series[0].Growth != 0 || series[0].Trend != TrendStable {
		t.Fatalf("first day has no baseline, got %+v", series[0])
	}
	if series[1].Growth != -25 || series[1].Trend != TrendDown {
		t.Fatalf("expected -25%% down, got growth %v trend %s", series[1].Growth, series[1].Trend)
	}
}

func TestPerformanceSeriesTwoEmptyDaysStable(t *testing.T) {
	series := PerformanceSeries(nil,
		time.Date(2026, 5, 1, 0, 0, 0, 0, time.Local),
		time.Date(2026, 5, 2, 0, 0, 0, 0, time.Local))

	for _, p := range series {
		if p.Growth != 0 || p.Trend != TrendStable {
			t.Fatalf("expected stable zero day, got %+v", p)
		}
	}
}

func TestMonthlyProfitTwelveBuckets(t *testing.T) {
	var sales []database.Sale
	for month := 1; month <= 12; month++ {
		sales = append(sales, saleAt(
			time.Date(2026, time.Month(month), 15, 12, 0, 0, 0, time.Local),
			10000, float64(month)*1000))
	}
	// A sale from another year must not leak into the buckets
	sales = append(sales, saleAt(time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local), 9999, 9999))

	labels, values := MonthlyProfit(sales, 2026)
	if len(labels) != 12 || len(values) != 12 {
		t.Fatalf("expected 12 buckets, got %d labels %d values", len(labels), len(values))
	}
	if labels[0] != "Jan" || labels[11] != "Dec" {
		t.Fatalf("unexpected labels %v", labels)
	}
	for i, v := range values {
		want := float64(i+1) * 1000
		if v != want {
			t.Fatalf("month %d: expected %v, got %v", i, want, v)
		}
	}
}

func TestMonthlyTransactions(t *testing.T) {
	sales := []database.Sale{
		saleAt(time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local), 1000, 100),
		saleAt(time.Date(2026, 3, 20, 0, 0, 0, 0, time.Local), 1000, 100),
		saleAt(time.Date(2026, 7, 5, 0, 0, 0, 0, time.Local), 1000, 100),
	}

	_, values := MonthlyTransactions(sales, 2026)
	if values[2] != 2 {
		t.Fatalf("expected 2 transactions in March, got %d", values[2])
	}
	if values[6] != 1 {
		t.Fatalf("expected 1 transaction in July, got %d", values[6])
	}
	if values[0] != 0 {
		t.Fatalf("expected 0 transactions in January, got %d", values[0])
	}
}

func TestYearlyProfitFillsGapYears(t *testing.T) {
	sales := []database.Sale{
		saleAt(time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local), 1000, 500),
		saleAt(time.Date(2026, 6, 1, 0, 0, 0, 0, time.Local), 1000, 700),
	}

	labels, values := YearlyProfit(sales)
	if len(labels) != 3 {
		t.Fatalf("expected 3 year buckets, got %v", labels)
	}
	if labels[1] != "2025" || values[1] != 0 {
		t.Fatalf("expected empty 2025 bucket, got %s=%v", labels[1], values[1])
	}
	if values[0] != 500 || values[2] != 700 {
		t.Fatalf("unexpected values %v", values)
	}
}

func TestMonthRangeProfitContiguous(t *testing.T) {
	sales := []database.Sale{
		saleAt(time.Date(2025, 11, 10, 0, 0, 0, 0, time.Local), 1000, 300),
		saleAt(time.Date(2026, 1, 10, 0, 0, 0, 0, time.Local), 1000, 400),
	}

	labels, values := MonthRangeProfit(sales,
		time.Date(2025, 11, 1, 0, 0, 0, 0, time.Local),
		time.Date(2026, 1, 31, 0, 0, 0, 0, time.Local))

	if len(labels) != 3 {
		t.Fatalf("expected Nov, Dec, Jan buckets, got %v", labels)
	}
	if values[0] != 300 || values[1] != 0 || values[2] != 400 {
		t.Fatalf("unexpected values %v", values)
	}
}

func TestProductSalesMetricsBestDay(t *testing.T) {
	rows := []ItemRow{
		{Date: time.Date(2026, 5, 1, 9, 0, 0, 0, time.Local), Quantity: 2, Subtotal: 7000},
		{Date: time.Date(2026, 5, 1, 17, 0, 0, 0, time.Local), Quantity: 3, Subtotal: 10500},
		{Date: time.Date(2026, 5, 3, 12, 0, 0, 0, time.Local), Quantity: 4, Subtotal: 14000},
	}

	metrics := ProductSalesMetrics(rows,
		time.Date(2026, 5, 1, 0, 0, 0, 0, time.Local),
		time.Date(2026, 5, 3, 0, 0, 0, 0, time.Local))

	if metrics.TotalQty != 9 {
		t.Fatalf("expected total qty 9, got %d", metrics.TotalQty)
	}
	if metrics.TotalSales != 31500 {
		t.Fatalf("expected total sales 31500, got %v", metrics.TotalSales)
	}
	if len(metrics.Series) != 3 {
		t.Fatalf("expected 3 day buckets, got %d", len(metrics.Series))
	}
	if metrics.Series[1].Quantity != 0 {
		t.Fatalf("expected empty middle day, got %+v", metrics.Series[1])
	}
	if metrics.BestDay == nil || metrics.BestDay.Date != "2026-05-01" || metrics.BestDay.Quantity != 5 {
		t.Fatalf("expected best day 2026-05-01 with qty 5, got %+v", metrics.BestDay)
	}
}

func TestProductSalesMetricsNoSales(t *testing.T) {
	metrics := ProductSalesMetrics(nil,
		time.Date(2026, 5, 1, 0, 0, 0, 0, time.Local),
		time.Date(2026, 5, 2, 0, 0, 0, 0, time.Local))
	if metrics.BestDay != nil {
		t.Fatalf("expected no best day without sales, got %+v", metrics.BestDay)
	}
	if metrics.TotalQty != 0 || metrics.TotalSales != 0 {
		t.Fatalf("expected zero totals, got %+v", metrics)
	}
}
