package analytics

import (
	"context"
	"time"

	"github.com/mercantile-app/mercantile-backend/pkg/db/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderLineRow is the denormalized fact row every report aggregates over: one
// row per order line with its order, buyer, merchant, and shipping address.
type OrderLineRow struct {
	OrderID        int64           `gorm:"column:order_id"`
	OrderStatus    string          `gorm:"column:order_status"`
	OrderCreatedAt time.Time       `gorm:"column:order_created_at"`
	UserID         int64           `gorm:"column:user_id"`
	UserName       string          `gorm:"column:user_name"`
	ItemID         int64           `gorm:"column:item_id"`
	ItemName       string          `gorm:"column:item_name"`
	MerchantID     int64           `gorm:"column:merchant_id"`
	MerchantName   string          `gorm:"column:merchant_name"`
	Quantity       int             `gorm:"column:quantity"`
	UnitPrice      decimal.Decimal `gorm:"column:unit_price"`
	Fulfilled      bool            `gorm:"column:fulfilled"`
	FulfilledAt    *time.Time      `gorm:"column:fulfilled_at"`
	City           string          `gorm:"column:city"`
	State          string          `gorm:"column:state"`
}

// Repository reads the immutable order history the reports are computed from.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an analytics repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListOrderLines fetches the full fact set, ordered by line id so downstream
// stable sorts preserve creation order on ties.
func (r *Repository) ListOrderLines(ctx context.Context) ([]OrderLineRow, error) {
	var rows []OrderLineRow
	err := r.db.WithContext(ctx).
		Table("order_items oi").
		Select(`oi.order_id,
o.status AS order_status,
o.created_at AS order_created_at,
o.user_id,
u.name AS user_name,
oi.item_id,
i.name AS item_name,
i.merchant_id,
m.name AS merchant_name,
oi.quantity,
oi.unit_price,
oi.fulfilled,
oi.fulfilled_at,
a.city,
a.state`).
		Joins("JOIN orders o ON o.id = oi.order_id").
		Joins("JOIN users u ON u.id = o.user_id").
		Joins("JOIN items i ON i.id = oi.item_id").
		Joins("JOIN users m ON m.id = i.merchant_id").
		Joins("JOIN addresses a ON a.id = o.address_id").
		Order("oi.id ASC").
		Scan(&rows).
		Error
	return rows, err
}

// SumInventoryByMerchant totals the merchant's remaining stock across all
// listings, including items that have never sold.
func (r *Repository) SumInventoryByMerchant(ctx context.Context, merchantID int64) (int, error) {
	var total struct {
		Sum int `gorm:"column:sum"`
	}
	err := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Select("COALESCE(SUM(inventory), 0) AS sum").
		Where("merchant_id = ?", merchantID).
		Scan(&total).
		Error
	return total.Sum, err
}
