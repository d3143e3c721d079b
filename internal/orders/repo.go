package orders

import (
	"context"

	"github.com/mercantile-app/mercantile-backend/pkg/db/models"
	"github.com/mercantile-app/mercantile-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository encapsulates order and order item persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an order repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the order together with its line items.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// GetByID loads an order with its line items.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, id).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetByIDAndUser loads an order scoped to its owner.
func (r *Repository) GetByIDAndUser(ctx context.Context, id, userID int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).
		Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ListByUser returns the user's orders, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&orders).
		Error
	return orders, err
}

// GetItemByID loads a single order line.
func (r *Repository) GetItemByID(ctx context.Context, id int64) (*models.OrderItem, error) {
	var item models.OrderItem
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateStatus moves the order to the given status.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status).
		Error
}

// UpdateItem persists changes to an order line.
func (r *Repository) UpdateItem(ctx context.Context, item *models.OrderItem) (*models.OrderItem, error) {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// CountUnfulfilledItems reports how many of the order's lines are still open.
func (r *Repository) CountUnfulfilledItems(ctx context.Context, orderID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Where("order_id = ? AND fulfilled = ?", orderID, false).
		Count(&count).
		Error
	return count, err
}

// ItemOwnedByMerchant reports whether the order line's catalog item belongs to
// the merchant.
func (r *Repository) ItemOwnedByMerchant(ctx context.Context, orderItemID, merchantID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("order_items oi").
		Joins("JOIN items i ON i.id = oi.item_id").
		Where("oi.id = ? AND i.merchant_id = ?", orderItemID, merchantID).
		Count(&count).
		Error
	return count > 0, err
}
