package models

import (
	"time"

	"github.com/mercantile-app/mercantile-backend/pkg/enums"
)

// Order is a checked-out cart. Line items keep their own fulfillment state;
// the order status advances as merchants fulfill them.
type Order struct {
	ID        int64             `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64             `gorm:"column:user_id;not null;index"`
	AddressID int64             `gorm:"column:address_id;not null"`
	Status    enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Items     []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
