package data

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// JSONMap stores arbitrary key/value metadata as JSONB.
type JSONMap map[string]interface{}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("jsonb column is not a byte slice")
	}
	return json.Unmarshal(bytes, m)
}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return json.Marshal(map[string]interface{}{})
	}
	return json.Marshal(m)
}

// StockItemPO is the inventory record a search hit is built from.
type StockItemPO struct {
	ID          string          `gorm:"type:uuid;primarykey"`
	SKU         string          `gorm:"size:64;not null;uniqueIndex"`
	Name        string          `gorm:"size:255;not null;index"`
	Description string          `gorm:"type:text"`
	CategoryID  *string         `gorm:"type:uuid;index"`
	Tags        StringArrayJSON `gorm:"type:jsonb;not null;default:'[]'"`
	Attributes  JSONMap         `gorm:"type:jsonb;not null;default:'{}'"`
	Price       float64         `gorm:"type:numeric(14,2);not null;default:0"`
	ImageURL    string          `gorm:"size:512"`
	Active      bool            `gorm:"not null;default:true;index"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (StockItemPO) TableName() string { return "stock_items" }

// InvoicePO is an invoice record.
type InvoicePO struct {
	ID            string    `gorm:"type:uuid;primarykey"`
	Number        string    `gorm:"size:64;not null;uniqueIndex"`
	CustomerID    *string   `gorm:"type:uuid;index"`
	CustomerName  string    `gorm:"size:255"`
	Status        string    `gorm:"size:32;not null;index"`
	PaymentStatus string    `gorm:"size:32;not null;index"`
	TotalAmount   float64   `gorm:"type:numeric(14,2);not null;default:0"`
	IssuedAt      time.Time `gorm:"not null;index"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (InvoicePO) TableName() string { return "invoices" }

// CustomerPO is a customer record.
type CustomerPO struct {
	ID          string    `gorm:"type:uuid;primarykey"`
	Name        string    `gorm:"size:255;not null;index"`
	Email       string    `gorm:"size:255"`
	Phone       string    `gorm:"size:64"`
	Debt        float64   `gorm:"type:numeric(14,2);not null;default:0"`
	Active      bool      `gorm:"not null;default:true"`
	Blacklisted bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CustomerPO) TableName() string { return "customers" }

// LedgerEntryPO is an accounting ledger record.
type LedgerEntryPO struct {
	ID          string    `gorm:"type:uuid;primarykey"`
	Description string    `gorm:"type:text;not null"`
	EntryType   string    `gorm:"size:32;not null;index"`
	AccountType string    `gorm:"size:32;not null;index"`
	AccountCode string    `gorm:"size:64;index"`
	Amount      float64   `gorm:"type:numeric(14,2);not null;default:0"`
	FiscalYear  int       `gorm:"not null;index"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (LedgerEntryPO) TableName() string { return "ledger_entries" }

// CategoryPO is one node of the inventory category tree.
type CategoryPO struct {
	ID        string    `gorm:"type:uuid;primarykey"`
	Name      string    `gorm:"size:255;not null"`
	ParentID  *string   `gorm:"type:uuid;index"`
	ItemCount int64     `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CategoryPO) TableName() string { return "stock_categories" }

// AllModels lists every model the data layer migrates.
func AllModels() []interface{} {
	return []interface{}{
		&PresetPO{},
		&StockItemPO{},
		&InvoicePO{},
		&CustomerPO{},
		&LedgerEntryPO{},
		&CategoryPO{},
	}
}
