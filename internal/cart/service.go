package cart

import (
	"context"
	"fmt"

	"github.com/mercantile-app/mercantile-backend/pkg/db/models"
	pkgerrors "github.com/mercantile-app/mercantile-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

type itemLoader interface {
	ListByIDs(ctx context.Context, ids []int64) ([]models.Item, error)
}

// Line pairs a resolved item with its cart quantity.
type Line struct {
	Item     models.Item
	Quantity int
}

// Service resolves cart contents against the item catalog and computes totals.
type Service interface {
	Lines(ctx context.Context, c *Cart) ([]Line, error)
	Total(ctx context.Context, c *Cart) (decimal.Decimal, error)
}

type service struct {
	items itemLoader
}

// NewService builds a cart service backed by the item catalog.
func NewService(items itemLoader) (Service, error) {
	if items == nil {
		return nil, fmt.Errorf("item loader required")
	}
	return &service{items: items}, nil
}

// Lines resolves each cart entry to its item, preserving the same cardinality
// as the cart contents. A cart entry pointing at an unknown item is an error;
// the session blob has drifted from the catalog.
func (s *service) Lines(ctx context.Context, c *Cart) ([]Line, error) {
	if c == nil || c.IsEmpty() {
		return []Line{}, nil
	}

	ids := c.ItemIDs()
	items, err := s.items.ListByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart items")
	}

	byID := make(map[int64]models.Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	lines := make([]Line, 0, len(ids))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("cart references unknown item %d", id))
		}
		lines = append(lines, Line{Item: item, Quantity: c.CountOf(id)})
	}
	return lines, nil
}

// Total sums item price times quantity across the whole cart.
func (s *service) Total(ctx context.Context, c *Cart) (decimal.Decimal, error) {
	lines, err := s.Lines(ctx, c)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(Subtotal(line.Item, c))
	}
	return total, nil
}

// Subtotal is the item's price times its cart quantity.
func Subtotal(item models.Item, c *Cart) decimal.Decimal {
	if c == nil {
		return decimal.Zero
	}
	return item.Price.Mul(decimal.NewFromInt(int64(c.CountOf(item.ID))))
}
