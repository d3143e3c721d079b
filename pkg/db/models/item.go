package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a merchant listing. Price is the live price; order line items
// snapshot their own unit price at purchase time.
type Item struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	MerchantID  int64           `gorm:"column:merchant_id;not null;index"`
	Name        string          `gorm:"column:name;not null"`
	Description string          `gorm:"column:description;not null;default:''"`
	Image       string          `gorm:"column:image;not null;default:''"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Inventory   int             `gorm:"column:inventory;not null;default:0"`
	Active      bool            `gorm:"column:active;not null;default:true"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
