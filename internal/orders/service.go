package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mercantile-app/mercantile-backend/internal/cart"
	"github.com/mercantile-app/mercantile-backend/internal/items"
	"github.com/mercantile-app/mercantile-backend/internal/users"
	"github.com/mercantile-app/mercantile-backend/pkg/db/models"
	"github.com/mercantile-app/mercantile-backend/pkg/enums"
	pkgerrors "github.com/mercantile-app/mercantile-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var oneHundred = decimal.NewFromInt(100)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartSessionStore interface {
	Load(ctx context.Context, sessionID string) (*cart.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}

type discountAnnotator interface {
	ForLines(ctx context.Context, c *cart.Cart, catalog []models.Item) (map[int64]*models.Discount, error)
}

// Service drives checkout and the order fulfillment lifecycle.
type Service interface {
	Checkout(ctx context.Context, userID int64, sessionID string, addressID int64) (*models.Order, error)
	FulfillItem(ctx context.Context, merchantID, orderItemID int64, now time.Time) (*models.OrderItem, error)
	Ship(ctx context.Context, orderID int64) (*models.Order, error)
	Cancel(ctx context.Context, userID, orderID int64) (*models.Order, error)
	GetForUser(ctx context.Context, userID, orderID int64) (*models.Order, error)
	ListForUser(ctx context.Context, userID int64) ([]models.Order, error)
}

type service struct {
	repo      *Repository
	items     *items.Repository
	addresses *users.AddressRepository
	carts     cartSessionStore
	discounts discountAnnotator
	tx        txRunner
}

// NewService builds an order service backed by the provided stack.
func NewService(repo *Repository, itemsRepo *items.Repository, addresses *users.AddressRepository, carts cartSessionStore, discounts discountAnnotator, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if itemsRepo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if addresses == nil {
		return nil, fmt.Errorf("address repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart session store required")
	}
	if discounts == nil {
		return nil, fmt.Errorf("discount annotator required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:      repo,
		items:     itemsRepo,
		addresses: addresses,
		carts:     carts,
		discounts: discounts,
		tx:        tx,
	}, nil
}

// Checkout turns the session cart into a pending order. Line items snapshot
// the unit price after any unlocked volume tier, inventory is deducted
// atomically, and the cart blob is cleared once the order commits.
func (s *service) Checkout(ctx context.Context, userID int64, sessionID string, addressID int64) (*models.Order, error) {
	shopperCart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if shopperCart.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	if _, err := s.addresses.GetByIDAndUser(ctx, addressID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
	}

	ids := shopperCart.ItemIDs()
	catalog, err := s.items.ListByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load items")
	}
	if len(catalog) != len(ids) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart references unknown item")
	}
	for _, item := range catalog {
		if !item.Active {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("item %d is no longer available", item.ID))
		}
	}

	resolved, err := s.discounts.ForLines(ctx, shopperCart, catalog)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		UserID:    userID,
		AddressID: addressID,
		Status:    enums.OrderStatusPending,
		Items:     make([]models.OrderItem, 0, len(catalog)),
	}
	for _, item := range catalog {
		qty := shopperCart.CountOf(item.ID)
		order.Items = append(order.Items, models.OrderItem{
			ItemID:    item.ID,
			Quantity:  qty,
			UnitPrice: discountedUnitPrice(item.Price, resolved[item.ID]),
		})
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txItems := s.items.WithTx(tx)
		for _, item := range catalog {
			qty := shopperCart.CountOf(item.ID)
			if err := txItems.AdjustInventory(ctx, item.ID, -qty); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("insufficient inventory for item %d", item.ID))
				}
				return err
			}
		}

		_, err := s.repo.WithTx(tx).Create(ctx, order)
		return err
	}); err != nil {
		if coded := pkgerrors.As(err); coded != nil {
			return nil, coded
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return order, nil
}

// FulfillItem marks one order line as fulfilled by its merchant. Once every
// line is fulfilled the order advances to packaged.
func (s *service) FulfillItem(ctx context.Context, merchantID, orderItemID int64, now time.Time) (*models.OrderItem, error) {
	owned, err := s.repo.ItemOwnedByMerchant(ctx, orderItemID, merchantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check line ownership")
	}
	if !owned {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
	}

	line, err := s.repo.GetItemByID(ctx, orderItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order item")
	}
	if line.Fulfilled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order item already fulfilled")
	}

	order, err := s.repo.GetByID(ctx, line.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order is %s, not pending", order.Status))
	}

	fulfilledAt := now
	line.Fulfilled = true
	line.FulfilledAt = &fulfilledAt

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.UpdateItem(ctx, line); err != nil {
			return err
		}
		open, err := txRepo.CountUnfulfilledItems(ctx, line.OrderID)
		if err != nil {
			return err
		}
		if open == 0 {
			return txRepo.UpdateStatus(ctx, line.OrderID, enums.OrderStatusPackaged)
		}
		return nil
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fulfill order item")
	}
	return line, nil
}

// Ship advances a fully packaged order to shipped.
func (s *service) Ship(ctx context.Context, orderID int64) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.Status != enums.OrderStatusPackaged {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order is %s, not packaged", order.Status))
	}

	if err := s.repo.UpdateStatus(ctx, orderID, enums.OrderStatusShipped); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ship order")
	}
	order.Status = enums.OrderStatusShipped
	return order, nil
}

// Cancel voids a still-pending order, restocks its lines, and clears any
// fulfillment state they carry.
func (s *service) Cancel(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	order, err := s.repo.GetByIDAndUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order is %s, not pending", order.Status))
	}

	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txItems := s.items.WithTx(tx)
		txRepo := s.repo.WithTx(tx)
		for i := range order.Items {
			line := &order.Items[i]
			if err := txItems.AdjustInventory(ctx, line.ItemID, line.Quantity); err != nil {
				return err
			}
			if line.Fulfilled {
				line.Fulfilled = false
				line.FulfilledAt = nil
				if _, err := txRepo.UpdateItem(ctx, line); err != nil {
					return err
				}
			}
		}
		return txRepo.UpdateStatus(ctx, orderID, enums.OrderStatusCancelled)
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}
	order.Status = enums.OrderStatusCancelled
	return order, nil
}

// GetForUser loads one of the user's orders.
func (s *service) GetForUser(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	order, err := s.repo.GetByIDAndUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// ListForUser returns the user's order history.
func (s *service) ListForUser(ctx context.Context, userID int64) ([]models.Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return orders, nil
}

func discountedUnitPrice(price decimal.Decimal, tier *models.Discount) decimal.Decimal {
	if tier == nil {
		return price
	}
	factor := oneHundred.Sub(tier.DiscountAmount).Div(oneHundred)
	return price.Mul(factor).Round(2)
}
