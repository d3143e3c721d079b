package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem snapshots one cart line at checkout. UnitPrice already reflects
// any volume tier that applied; FulfilledAt is set when the merchant
// fulfills the line and is the timestamp fulfillment-speed rankings use.
type OrderItem struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID     int64           `gorm:"column:order_id;not null;index"`
	ItemID      int64           `gorm:"column:item_id;not null;index"`
	Quantity    int             `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Fulfilled   bool            `gorm:"column:fulfilled;not null;default:false"`
	FulfilledAt *time.Time      `gorm:"column:fulfilled_at"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
