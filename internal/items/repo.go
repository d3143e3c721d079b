package items

import (
	"context"

	"github.com/mercantile-app/mercantile-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository encapsulates item catalog persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an item repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// GetByID loads a single item.
func (r *Repository) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByIDs loads the items matching the provided ids.
func (r *Repository) ListByIDs(ctx context.Context, ids []int64) ([]models.Item, error) {
	if len(ids) == 0 {
		return []models.Item{}, nil
	}
	var items []models.Item
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&items).
		Error
	return items, err
}

// ListActive returns the browsable catalog, oldest listings first.
func (r *Repository) ListActive(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("id ASC").
		Find(&items).
		Error
	return items, err
}

// ListByMerchant returns everything a merchant has listed.
func (r *Repository) ListByMerchant(ctx context.Context, merchantID int64) ([]models.Item, error) {
	var items []models.Item
	err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("id ASC").
		Find(&items).
		Error
	return items, err
}

// Create inserts a new listing.
func (r *Repository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Update persists changes to a listing.
func (r *Repository) Update(ctx context.Context, item *models.Item) (*models.Item, error) {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// AdjustInventory applies a delta to an item's inventory, refusing to go
// negative. Returns gorm.ErrRecordNotFound when the guard rejects the change.
func (r *Repository) AdjustInventory(ctx context.Context, id int64, delta int) error {
	result := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ? AND inventory + ? >= 0", id, delta).
		Update("inventory", gorm.Expr("inventory + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
