package users

import (
	"context"

	"github.com/mercantile-app/mercantile-backend/pkg/db/models"
	"gorm.io/gorm"
)

// AddressRepository encapsulates shipping address persistence.
type AddressRepository struct {
	db *gorm.DB
}

// NewAddressRepository constructs an address repository bound to the provided gorm DB.
func NewAddressRepository(db *gorm.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *AddressRepository) WithTx(tx *gorm.DB) *AddressRepository {
	return &AddressRepository{db: tx}
}

// GetByIDAndUser loads an address scoped to its owner.
func (r *AddressRepository) GetByIDAndUser(ctx context.Context, id, userID int64) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&address).
		Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// ListByUser returns the user's saved addresses.
func (r *AddressRepository) ListByUser(ctx context.Context, userID int64) ([]models.Address, error) {
	var addresses []models.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&addresses).
		Error
	return addresses, err
}

// Create inserts a new address.
func (r *AddressRepository) Create(ctx context.Context, address *models.Address) (*models.Address, error) {
	if err := r.db.WithContext(ctx).Create(address).Error; err != nil {
		return nil, err
	}
	return address, nil
}
