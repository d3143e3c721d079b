package cart

import (
	"context"
	"testing"

	"github.com/mercantile-app/mercantile-backend/pkg/db/models"
	pkgerrors "github.com/mercantile-app/mercantile-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

type fakeItemLoader struct {
	items map[int64]models.Item
}

func (f *fakeItemLoader) ListByIDs(_ context.Context, ids []int64) ([]models.Item, error) {
	out := []models.Item{}
	for _, id := range ids {
		if item, ok := f.items[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func catalogWith(items ...models.Item) *fakeItemLoader {
	byID := map[int64]models.Item{}
	for _, item := range items {
		byID[item.ID] = item
	}
	return &fakeItemLoader{items: byID}
}

func mustPrice(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("bad price %q: %v", value, err)
	}
	return d
}

func TestLinesMatchesCartCardinality(t *testing.T) {
	svc, err := NewService(catalogWith(
		models.Item{ID: 1, Price: mustPrice(t, "10.00")},
		models.Item{ID: 2, Price: mustPrice(t, "4.50")},
	))
	if err != nil {
		t.Fatalf("service ctor failed: %v", err)
	}

	c := New(map[int64]int{1: 3, 2: 1})
	lines, err := svc.Lines(context.Background(), c)
	if err != nil {
		t.Fatalf("lines failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Item.ID != 1 || lines[0].Quantity != 3 {
		t.Fatalf("unexpected first line: %+v", lines[0])
	}
}

func TestLinesUnknownItemFails(t *testing.T) {
	svc, _ := NewService(catalogWith(models.Item{ID: 1, Price: mustPrice(t, "10.00")}))

	c := New(map[int64]int{1: 1, 99: 2})
	_, err := svc.Lines(context.Background(), c)
	if err == nil {
		t.Fatal("expected error for unknown item")
	}
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestTotalSumsSubtotals(t *testing.T) {
	itemA := models.Item{ID: 1, Price: mustPrice(t, "10.00")}
	itemB := models.Item{ID: 2, Price: mustPrice(t, "4.50")}
	svc, _ := NewService(catalogWith(itemA, itemB))

	c := New(map[int64]int{1: 3, 2: 2})
	total, err := svc.Total(context.Background(), c)
	if err != nil {
		t.Fatalf("total failed: %v", err)
	}
	if !total.Equal(mustPrice(t, "39.00")) {
		t.Fatalf("expected 39.00, got %s", total)
	}

	if got := Subtotal(itemA, c); !got.Equal(mustPrice(t, "30.00")) {
		t.Fatalf("expected subtotal 30.00, got %s", got)
	}
	if got := Subtotal(itemB, c); !got.Equal(mustPrice(t, "9.00")) {
		t.Fatalf("expected subtotal 9.00, got %s", got)
	}
}

func TestTotalEmptyCartIsZero(t *testing.T) {
	svc, _ := NewService(catalogWith())

	total, err := svc.Total(context.Background(), New(nil))
	if err != nil {
		t.Fatalf("total failed: %v", err)
	}
	if !total.IsZero() {
		t.Fatalf("expected zero total, got %s", total)
	}
}
