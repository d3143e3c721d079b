package discounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mercantile-app/mercantile-backend/internal/cart"
	"github.com/mercantile-app/mercantile-backend/pkg/db/models"
	pkgerrors "github.com/mercantile-app/mercantile-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var maxDiscountPercent = decimal.NewFromInt(100)

type tierRepository interface {
	ListByMerchant(ctx context.Context, merchantID int64) ([]models.Discount, error)
	ListByMerchants(ctx context.Context, merchantIDs []int64) ([]models.Discount, error)
	GetByIDAndMerchant(ctx context.Context, id, merchantID int64) (*models.Discount, error)
	Create(ctx context.Context, tier *models.Discount) (*models.Discount, error)
	Update(ctx context.Context, tier *models.Discount) (*models.Discount, error)
	Delete(ctx context.Context, id, merchantID int64) error
}

// Service exposes tier resolution for carts plus merchant tier management.
type Service interface {
	ForItem(ctx context.Context, c *cart.Cart, item models.Item) (*models.Discount, error)
	ForLines(ctx context.Context, c *cart.Cart, items []models.Item) (map[int64]*models.Discount, error)
	ListTiers(ctx context.Context, merchantID int64) ([]models.Discount, error)
	CreateTier(ctx context.Context, merchantID int64, input TierInput) (*models.Discount, error)
	UpdateTier(ctx context.Context, merchantID, tierID int64, input TierInput) (*models.Discount, error)
	DeleteTier(ctx context.Context, merchantID, tierID int64) error
}

// TierInput captures the payload for creating or updating a tier.
type TierInput struct {
	Description     string
	MinimumQuantity int
	DiscountAmount  decimal.Decimal
}

type service struct {
	repo tierRepository
}

// NewService builds a discount service backed by the tier repository.
func NewService(repo tierRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tier repository required")
	}
	return &service{repo: repo}, nil
}

// ForItem resolves the tier the cart unlocks for one item. Only the item's
// own merchant's tiers and the item's own cart quantity participate.
func (s *service) ForItem(ctx context.Context, c *cart.Cart, item models.Item) (*models.Discount, error) {
	qty := 0
	if c != nil {
		qty = c.CountOf(item.ID)
	}
	if qty == 0 {
		return nil, nil
	}

	tiers, err := s.repo.ListByMerchant(ctx, item.MerchantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load discount tiers")
	}
	return Resolve(qty, tiers), nil
}

// ForLines resolves tiers for a whole cart in one tier fetch, returning a
// mapping from item id to its unlocked tier. Items with no unlocked tier are
// absent from the result.
func (s *service) ForLines(ctx context.Context, c *cart.Cart, items []models.Item) (map[int64]*models.Discount, error) {
	result := map[int64]*models.Discount{}
	if c == nil || c.IsEmpty() || len(items) == 0 {
		return result, nil
	}

	merchantSet := map[int64]struct{}{}
	merchantIDs := []int64{}
	for _, item := range items {
		if _, seen := merchantSet[item.MerchantID]; !seen {
			merchantSet[item.MerchantID] = struct{}{}
			merchantIDs = append(merchantIDs, item.MerchantID)
		}
	}

	tiers, err := s.repo.ListByMerchants(ctx, merchantIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load discount tiers")
	}

	byMerchant := map[int64][]models.Discount{}
	for _, tier := range tiers {
		byMerchant[tier.MerchantID] = append(byMerchant[tier.MerchantID], tier)
	}

	for _, item := range items {
		if tier := Resolve(c.CountOf(item.ID), byMerchant[item.MerchantID]); tier != nil {
			result[item.ID] = tier
		}
	}
	return result, nil
}

// ListTiers returns the merchant's tiers.
func (s *service) ListTiers(ctx context.Context, merchantID int64) ([]models.Discount, error) {
	tiers, err := s.repo.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load discount tiers")
	}
	return tiers, nil
}

// CreateTier validates and inserts a new tier for the merchant.
func (s *service) CreateTier(ctx context.Context, merchantID int64, input TierInput) (*models.Discount, error) {
	if err := validateTierInput(input); err != nil {
		return nil, err
	}

	tier := &models.Discount{
		MerchantID:      merchantID,
		Description:     strings.TrimSpace(input.Description),
		MinimumQuantity: input.MinimumQuantity,
		DiscountAmount:  input.DiscountAmount,
	}
	created, err := s.repo.Create(ctx, tier)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create discount tier")
	}
	return created, nil
}

// UpdateTier validates and persists changes to one of the merchant's tiers.
func (s *service) UpdateTier(ctx context.Context, merchantID, tierID int64, input TierInput) (*models.Discount, error) {
	if err := validateTierInput(input); err != nil {
		return nil, err
	}

	tier, err := s.repo.GetByIDAndMerchant(ctx, tierID, merchantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "discount tier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load discount tier")
	}

	tier.Description = strings.TrimSpace(input.Description)
	tier.MinimumQuantity = input.MinimumQuantity
	tier.DiscountAmount = input.DiscountAmount

	updated, err := s.repo.Update(ctx, tier)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update discount tier")
	}
	return updated, nil
}

// DeleteTier removes one of the merchant's tiers.
func (s *service) DeleteTier(ctx context.Context, merchantID, tierID int64) error {
	if err := s.repo.Delete(ctx, tierID, merchantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "discount tier not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete discount tier")
	}
	return nil
}

func validateTierInput(input TierInput) error {
	if strings.TrimSpace(input.Description) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}
	if input.MinimumQuantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "minimum quantity cannot be negative")
	}
	if !input.DiscountAmount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount amount must be positive")
	}
	if input.DiscountAmount.GreaterThan(maxDiscountPercent) {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount amount cannot exceed 100 percent")
	}
	return nil
}
