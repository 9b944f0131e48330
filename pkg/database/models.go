package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Stock entry types. Every stock mutation writes exactly one entry.
const (
	StockAddition   = "addition"
	StockReduction  = "reduction"
	StockAdjustment = "adjustment"
)

// Payment methods accepted at checkout
const (
	PaymentCash    = "cash"
	PaymentDigital = "digital"
	PaymentBank    = "bank"
)

// Base model for all entities
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Tenant represents a store/business
type Tenant struct {
	BaseModel
	Name               string         `gorm:"not null" json:"name"`
	Phone              string         `json:"phone"`
	Email              string         `gorm:"uniqueIndex" json:"email"`
	Address            string         `json:"address"`
	NotificationPhones pq.StringArray `gorm:"type:text[]" json:"notification_phones"`
	IsActive           bool           `gorm:"default:true" json:"is_active"`
}

// User represents a system user
type User struct {
	BaseModel
	TenantID     uuid.UUID `gorm:"type:uuid;not null" json:"tenant_id"`
	Tenant       Tenant    `gorm:"foreignKey:TenantID" json:"-"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	GoogleID     string    `gorm:"index" json:"-"`
	PasswordHash string    `json:"-"` // Optional for OAuth users
	Name         string    `gorm:"not null" json:"name"`
	Role         string    `gorm:"default:'owner'" json:"role"` // owner, cashier
	IsActive     bool      `gorm:"default:true" json:"is_active"`
}

// Category for products
type Category struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null" json:"tenant_id"`
	Tenant   Tenant    `gorm:"foreignKey:TenantID" json:"-"`
	Name     string    `gorm:"not null" json:"name"`
}

// Brand for products
type Brand struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null" json:"tenant_id"`
	Tenant   Tenant    `gorm:"foreignKey:TenantID" json:"-"`
	Name     string    `gorm:"not null" json:"name"`
}

// PaymentChannel represents a non-cash payment destination (e-wallet, bank account)
type PaymentChannel struct {
	BaseModel
	TenantID      uuid.UUID `gorm:"type:uuid;not null" json:"tenant_id"`
	Tenant        Tenant    `gorm:"foreignKey:TenantID" json:"-"`
	Name          string    `gorm:"not null" json:"name"`          // e.g., "BCA", "GoPay"
	Type          string    `gorm:"default:'digital'" json:"type"` // digital, bank
	AccountNumber string    `json:"account_number"`
	AccountName   string    `json:"account_name"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
}

// Product represents a sellable item
type Product struct {
	BaseModel
	TenantID   uuid.UUID      `gorm:"type:uuid;not null" json:"tenant_id"`
	Tenant     Tenant         `gorm:"foreignKey:TenantID" json:"-"`
	CategoryID *uuid.UUID     `gorm:"type:uuid" json:"category_id"`
	Category   *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	BrandID    *uuid.UUID     `gorm:"type:uuid" json:"brand_id"`
	Brand      *Brand         `gorm:"foreignKey:BrandID" json:"brand,omitempty"`
	Name       string         `gorm:"not null" json:"name"`
	Barcodes   string         `json:"barcodes"` // comma-joined, a product can carry several
	Price      float64        `gorm:"not null" json:"price"`
	Cost       float64        `json:"cost"`
	StockQty   int            `gorm:"default:0" json:"stock_qty"`    // never negative
	ImageURLs  pq.StringArray `gorm:"type:text[]" json:"image_urls"` // max 5
	IsActive   bool           `gorm:"default:true" json:"is_active"`
}

// StockEntry is one immutable record of a stock change (append-only ledger).
// Invariant: new_stock = previous_stock + quantity for addition,
// previous_stock - quantity for reduction, and quantity = 0 for adjustment.
type StockEntry struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TenantID      uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ProductID     uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Product       Product   `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	UserID        uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	User          User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Type          string    `gorm:"not null" json:"type"`     // addition, reduction, adjustment
	Quantity      int       `gorm:"not null" json:"quantity"` // absolute delta
	PreviousStock int       `gorm:"not null" json:"previous_stock"`
	NewStock      int       `gorm:"not null" json:"new_stock"`
	Reason        string    `gorm:"not null" json:"reason"`
	Notes         string    `json:"notes"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// Sale represents a completed checkout
type Sale struct {
	BaseModel
	TenantID         uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_sale_tenant_invoice" json:"tenant_id"`
	Tenant           Tenant          `gorm:"foreignKey:TenantID" json:"-"`
	InvoiceNumber    string          `gorm:"not null;uniqueIndex:idx_sale_tenant_invoice" json:"invoice_number"`
	UserID           uuid.UUID       `gorm:"type:uuid;not null" json:"user_id"`
	User             User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items            []SaleItem      `gorm:"foreignKey:SaleID" json:"items"`
	Total            float64         `gorm:"not null" json:"total"`                // sum of item subtotals
	Profit           float64         `gorm:"not null" json:"profit"`               // sum of item profits
	PaymentMethod    string          `gorm:"default:'cash'" json:"payment_method"` // cash, digital, bank
	PaymentChannelID *uuid.UUID      `gorm:"type:uuid" json:"payment_channel_id"`
	PaymentChannel   *PaymentChannel `gorm:"foreignKey:PaymentChannelID" json:"payment_channel,omitempty"`
	CashReceived     float64         `json:"cash_received"`
	ChangeDue        float64         `json:"change_due"`
	CustomerName     string          `json:"customer_name"`
	Notes            string          `json:"notes"`
	Status           string          `gorm:"default:'completed'" json:"status"` // completed, voided
}

// SaleItem represents one line in a sale. Name and barcode are snapshots
// taken at sale time; aggregation keys on ProductID.
type SaleItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SaleID      uuid.UUID `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string    `gorm:"not null" json:"product_name"`
	Barcode     string    `json:"barcode"`
	UnitPrice   float64   `gorm:"not null" json:"unit_price"`
	UnitCost    float64   `json:"unit_cost"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	Subtotal    float64   `gorm:"not null" json:"subtotal"` // unit_price * quantity
	Profit      float64   `json:"profit"`                   // (unit_price - unit_cost) * quantity
	TokenCode   string    `json:"token_code"`               // for virtual goods (electricity tokens)
}

// InvoiceSettings holds per-tenant receipt/printer configuration
type InvoiceSettings struct {
	BaseModel
	TenantID     uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"tenant_id"`
	StoreName    string    `json:"store_name"`
	StoreAddress string    `json:"store_address"`
	StorePhone   string    `json:"store_phone"`
	FooterText   string    `json:"footer_text"`
	LogoURL      string    `json:"logo_url"`
	ShowLogo     bool      `gorm:"default:false" json:"show_logo"`
	PaperWidth   int       `gorm:"default:58" json:"paper_width"` // thermal paper mm: 58 or 80
}

// CustomInvoice is a free-form transaction record outside the sales flow
type CustomInvoice struct {
	BaseModel
	TenantID      uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	InvoiceNumber string    `gorm:"not null" json:"invoice_number"`
	Title         string    `gorm:"not null" json:"title"`
	CustomerName  string    `json:"customer_name"`
	Amount        float64   `gorm:"not null" json:"amount"`
	Items         string    `gorm:"type:jsonb;default:'[]'" json:"items"` // JSON array of free-form lines
	Notes         string    `json:"notes"`
	Status        string    `gorm:"default:'unpaid'" json:"status"` // unpaid, paid
}

// ActivityLog tracks user actions for audit trail
type ActivityLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TenantID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"tenant_id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"`
	User       User       `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"not null" json:"action"` // create, update, delete, sale, void, stock_adjust
	EntityType string     `json:"entity_type"`            // product, sale, stock_entry, etc.
	EntityID   *uuid.UUID `gorm:"type:uuid" json:"entity_id"`
	Details    string     `gorm:"type:text" json:"details"` // JSON details
	IPAddress  string     `json:"ip_address"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Tenant{},
		&User{},
		&Category{},
		&Brand{},
		&PaymentChannel{},
		&Product{},
		&StockEntry{},
		&Sale{},
		&SaleItem{},
		&InvoiceSettings{},
		&CustomInvoice{},
		&ActivityLog{},
	)
}
