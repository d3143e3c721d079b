package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Discount is a merchant-owned volume tier: carts holding at least
// MinimumQuantity of one of the merchant's items unlock DiscountAmount
// percent off that item.
type Discount struct {
	ID              int64           `gorm:"column:id;primaryKey;autoIncrement"`
	MerchantID      int64           `gorm:"column:merchant_id;not null;index"`
	Description     string          `gorm:"column:description;not null"`
	MinimumQuantity int             `gorm:"column:minimum_quantity;not null"`
	DiscountAmount  decimal.Decimal `gorm:"column:discount_amount;type:numeric(5,2);not null"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
