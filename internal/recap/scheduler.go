package recap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/kasirku/kasirku-backend/pkg/database"
	"github.com/kasirku/kasirku-backend/pkg/email"
	"github.com/kasirku/kasirku-backend/pkg/period"
	"gorm.io/gorm"
)

// Scheduler runs the end-of-day recap and low-stock alert jobs
type Scheduler struct {
	db        *gorm.DB
	recapHour int
	lastRecap string
}

// NewScheduler creates a new recap scheduler. RECAP_HOUR sets the local
// hour the daily summary goes out (default 21, after most warungs close).
func NewScheduler(db *gorm.DB) *Scheduler {
	recapHour := 21
	if h := os.Getenv("RECAP_HOUR"); h != "" {
		if parsed, err := strconv.Atoi(h); err == nil && parsed >= 0 && parsed <= 23 {
			recapHour = parsed
		}
	}
	return &Scheduler{db: db, recapHour: recapHour}
}

// Start begins the scheduler loop (runs every hour)
func (s *Scheduler) Start() {
	ticker := time.NewTicker(1 * time.Hour)
	go func() {
		s.Run()

		for range ticker.C {
			s.Run()
		}
	}()
	fmt.Println("Recap scheduler started (runs every 1 hour)")
}

// Run sends the daily recap once per day after the configured hour
func (s *Scheduler) Run() {
	now := time.Now()
	today := period.DayKey(now)

	if now.Hour() < s.recapHour || s.lastRecap == today {
		return
	}

	fmt.Println("Running daily recap...")
	s.SendDailyRecaps(now)
	s.lastRecap = today
	fmt.Println("Daily recap completed")
}

// SendDailyRecaps emails each store owner today's sales summary plus a
// low-stock list when anything is running out
func (s *Scheduler) SendDailyRecaps(now time.Time) {
	emailService := email.NewEmailService()
	if !emailService.IsConfigured() {
		fmt.Println("Recap: Email service not configured, skipping")
		return
	}

	today, _ := period.Resolve(period.Today, now)

	var tenants []database.Tenant
	s.db.Where("is_active = ?", true).Find(&tenants)

	for _, tenant := range tenants {
		var user database.User
		if err := s.db.Where("tenant_id = ? AND role = ?", tenant.ID, "owner").First(&user).Error; err != nil {
			continue
		}
		if user.Email == "" {
			continue
		}

		recap, hasSales := s.buildRecap(tenant.ID.String(), today)
		if !hasSales {
			continue
		}

		if err := emailService.SendDailyRecap(user.Email, user.Name, tenant.Name, recap); err != nil {
			fmt.Printf("Recap: Failed to send recap to %s: %v\n", user.Email, err)
			continue
		}
		fmt.Printf("Recap: Sent daily recap to %s\n", user.Email)

		var lowStock []database.Product
		s.db.Where("tenant_id = ? AND is_active = ? AND stock_qty < ?", tenant.ID, true, 10).
			Order("stock_qty ASC").
			Limit(20).
			Find(&lowStock)

		if len(lowStock) > 0 {
			names := make([]string, 0, len(lowStock))
			for _, p := range lowStock {
				names = append(names, fmt.Sprintf("%s (sisa %d)", p.Name, p.StockQty))
			}
			if err := emailService.SendLowStockAlert(user.Email, user.Name, tenant.Name, names); err != nil {
				fmt.Printf("Recap: Failed to send low stock alert to %s: %v\n", user.Email, err)
			}
		}
	}
}

func (s *Scheduler) buildRecap(tenantID string, r period.Range) (email.DailyRecap, bool) {
	var agg struct {
		Total  float64
		Profit float64
		Count  int
	}
	s.db.Model(&database.Sale{}).
		Select("COALESCE(SUM(total), 0) as total, COALESCE(SUM(profit), 0) as profit, COUNT(*) as count").
		Where("tenant_id = ? AND status = ? AND created_at >= ? AND created_at < ?",
			tenantID, "completed", r.Start, r.End).
		Scan(&agg)

	if agg.Count == 0 {
		return email.DailyRecap{}, false
	}

	var items struct{ Qty int }
	s.db.Model(&database.SaleItem{}).
		Select("COALESCE(SUM(sale_items.quantity), 0) as qty").
		Joins("JOIN sales ON sale_items.sale_id = sales.id").
		Where("sales.tenant_id = ? AND sales.status = ? AND sales.created_at >= ? AND sales.created_at < ?",
			tenantID, "completed", r.Start, r.End).
		Scan(&items)

	var top struct{ ProductName string }
	s.db.Model(&database.SaleItem{}).
		Select("MAX(sale_items.product_name) as product_name").
		Joins("JOIN sales ON sale_items.sale_id = sales.id").
		Where("sales.tenant_id = ? AND sales.status = ? AND sales.created_at >= ? AND sales.created_at < ?",
			tenantID, "completed", r.Start, r.End).
		Group("sale_items.product_id").
		Order("SUM(sale_items.quantity) DESC").
		Limit(1).
		Scan(&top)

	return email.DailyRecap{
		Date:         r.Start.Format("2 January 2006"),
		TotalSales:   agg.Total,
		TotalProfit:  agg.Profit,
		Transactions: agg.Count,
		ItemsSold:    items.Qty,
		TopProduct:   top.ProductName,
	}, true
}
