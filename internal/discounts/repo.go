package discounts

import (
	"context"

	"github.com/mercantile-app/mercantile-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository encapsulates discount tier persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a discount repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListByMerchant returns all tiers a merchant has defined, oldest first.
func (r *Repository) ListByMerchant(ctx context.Context, merchantID int64) ([]models.Discount, error) {
	var tiers []models.Discount
	err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("id ASC").
		Find(&tiers).
		Error
	return tiers, err
}

// ListByMerchants returns tiers for a set of merchants in one round trip.
func (r *Repository) ListByMerchants(ctx context.Context, merchantIDs []int64) ([]models.Discount, error) {
	if len(merchantIDs) == 0 {
		return []models.Discount{}, nil
	}
	var tiers []models.Discount
	err := r.db.WithContext(ctx).
		Where("merchant_id IN ?", merchantIDs).
		Order("id ASC").
		Find(&tiers).
		Error
	return tiers, err
}

// GetByIDAndMerchant loads a single tier scoped to its owner.
func (r *Repository) GetByIDAndMerchant(ctx context.Context, id, merchantID int64) (*models.Discount, error) {
	var tier models.Discount
	err := r.db.WithContext(ctx).
		Where("id = ? AND merchant_id = ?", id, merchantID).
		First(&tier).
		Error
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

// Create inserts a new tier.
func (r *Repository) Create(ctx context.Context, tier *models.Discount) (*models.Discount, error) {
	if err := r.db.WithContext(ctx).Create(tier).Error; err != nil {
		return nil, err
	}
	return tier, nil
}

// Update persists changes to an existing tier.
func (r *Repository) Update(ctx context.Context, tier *models.Discount) (*models.Discount, error) {
	if err := r.db.WithContext(ctx).Save(tier).Error; err != nil {
		return nil, err
	}
	return tier, nil
}

// Delete removes a tier scoped to its owner.
func (r *Repository) Delete(ctx context.Context, id, merchantID int64) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND merchant_id = ?", id, merchantID).
		Delete(&models.Discount{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
