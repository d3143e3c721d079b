package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// MerchantRevenue is one row of the revenue leaderboard.
type MerchantRevenue struct {
	MerchantID   int64           `json:"merchant_id"`
	MerchantName string          `json:"merchant_name"`
	Revenue      decimal.Decimal `json:"revenue"`
	Rendered     string          `json:"rendered"`
}

// MerchantFulfillment is one row of the fulfillment-speed leaderboards.
type MerchantFulfillment struct {
	MerchantID   int64         `json:"merchant_id"`
	MerchantName string        `json:"merchant_name"`
	Duration     time.Duration `json:"-"`
	Rendered     string        `json:"rendered"`
}

// StateOrders is one row of the per-state shipped order rollup.
type StateOrders struct {
	State    string `json:"state"`
	Orders   int    `json:"orders"`
	Rendered string `json:"rendered"`
}

// CityOrders is one row of the per-city shipped order rollup.
type CityOrders struct {
	City     string `json:"city"`
	State    string `json:"state"`
	Orders   int    `json:"orders"`
	Rendered string `json:"rendered"`
}

// OrderVolume is one row of the biggest-shipped-orders leaderboard.
type OrderVolume struct {
	OrderID  int64  `json:"order_id"`
	Quantity int    `json:"quantity"`
	Rendered string `json:"rendered"`
}

// ItemVelocity is one row of a merchant's best-selling-items leaderboard.
type ItemVelocity struct {
	ItemID   int64  `json:"item_id"`
	ItemName string `json:"item_name"`
	Quantity int    `json:"quantity"`
}

// UserStat names a customer together with an order or item tally.
type UserStat struct {
	UserID   int64  `json:"user_id"`
	UserName string `json:"user_name"`
	Count    int    `json:"count"`
}

// UserSpend names a customer together with their fulfilled spend.
type UserSpend struct {
	UserID   int64           `json:"user_id"`
	UserName string          `json:"user_name"`
	Total    decimal.Decimal `json:"total"`
	Rendered string          `json:"rendered"`
}

// StateItems counts units shipped into one state for a merchant.
type StateItems struct {
	State    string `json:"state"`
	Quantity int    `json:"quantity"`
	Rendered string `json:"rendered"`
}

// CityItems counts units shipped into one city for a merchant.
type CityItems struct {
	City     string `json:"city"`
	State    string `json:"state"`
	Quantity int    `json:"quantity"`
	Rendered string `json:"rendered"`
}

// MerchantSummary aggregates one merchant's dashboard headline numbers.
// PercentOfItemsSold is the unrounded ratio; views round at render time.
type MerchantSummary struct {
	MerchantID              int64     `json:"merchant_id"`
	TotalItemsSold          int       `json:"total_items_sold"`
	PercentOfItemsSold      float64   `json:"percent_of_items_sold"`
	TotalInventoryRemaining int       `json:"total_inventory_remaining"`
	TopUserByOrderCount     *UserStat `json:"top_user_by_order_count,omitempty"`
	TopUserByItemCount      *UserStat `json:"top_user_by_item_count,omitempty"`
}
