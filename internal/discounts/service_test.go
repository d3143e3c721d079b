package discounts

import (
	"context"
	"testing"

	"github.com/mercantile-app/mercantile-backend/internal/cart"
	"github.com/mercantile-app/mercantile-backend/pkg/db/models"
	pkgerrors "github.com/mercantile-app/mercantile-backend/pkg/errors"
	"gorm.io/gorm"
)

type fakeTierRepo struct {
	tiers  []models.Discount
	nextID int64
}

func (f *fakeTierRepo) ListByMerchant(_ context.Context, merchantID int64) ([]models.Discount, error) {
	out := []models.Discount{}
	for _, tier := range f.tiers {
		if tier.MerchantID == merchantID {
			out = append(out, tier)
		}
	}
	return out, nil
}

func (f *fakeTierRepo) ListByMerchants(ctx context.Context, merchantIDs []int64) ([]models.Discount, error) {
	out := []models.Discount{}
	for _, id := range merchantIDs {
		tiers, _ := f.ListByMerchant(ctx, id)
		out = append(out, tiers...)
	}
	return out, nil
}

func (f *fakeTierRepo) GetByIDAndMerchant(_ context.Context, id, merchantID int64) (*models.Discount, error) {
	for _, tier := range f.tiers {
		if tier.ID == id && tier.MerchantID == merchantID {
			copy := tier
			return &copy, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTierRepo) Create(_ context.Context, tier *models.Discount) (*models.Discount, error) {
	f.nextID++
	tier.ID = f.nextID
	f.tiers = append(f.tiers, *tier)
	return tier, nil
}

func (f *fakeTierRepo) Update(_ context.Context, tier *models.Discount) (*models.Discount, error) {
	for i := range f.tiers {
		if f.tiers[i].ID == tier.ID {
			f.tiers[i] = *tier
			return tier, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTierRepo) Delete(_ context.Context, id, merchantID int64) error {
	for i := range f.tiers {
		if f.tiers[i].ID == id && f.tiers[i].MerchantID == merchantID {
			f.tiers = append(f.tiers[:i], f.tiers[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func seededRepo() *fakeTierRepo {
	return &fakeTierRepo{
		tiers: []models.Discount{
			{ID: 1, MerchantID: 10, Description: "2 plus", MinimumQuantity: 2, DiscountAmount: pct(10)},
			{ID: 2, MerchantID: 10, Description: "4 plus", MinimumQuantity: 4, DiscountAmount: pct(20)},
			{ID: 3, MerchantID: 10, Description: "6 plus", MinimumQuantity: 6, DiscountAmount: pct(30)},
			{ID: 4, MerchantID: 20, Description: "bulk", MinimumQuantity: 1, DiscountAmount: pct(50)},
		},
		nextID: 4,
	}
}

func TestForItemUsesOwnMerchantAndOwnQuantityOnly(t *testing.T) {
	svc, err := NewService(seededRepo())
	if err != nil {
		t.Fatalf("service ctor failed: %v", err)
	}

	item := models.Item{ID: 100, MerchantID: 10}
	other := models.Item{ID: 200, MerchantID: 10}

	// heavy quantity of a different item must not influence resolution
	c := cart.New(map[int64]int{100: 4, 200: 50})

	tier, err := svc.ForItem(context.Background(), c, item)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if tier == nil || !tier.DiscountAmount.Equal(pct(20)) {
		t.Fatalf("expected 20%% tier, got %+v", tier)
	}

	tier, err = svc.ForItem(context.Background(), c, other)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if tier == nil || !tier.DiscountAmount.Equal(pct(30)) {
		t.Fatalf("expected 30%% tier, got %+v", tier)
	}
}

func TestForItemZeroQuantityNoDiscount(t *testing.T) {
	svc, _ := NewService(seededRepo())

	item := models.Item{ID: 100, MerchantID: 10}
	tier, err := svc.ForItem(context.Background(), cart.New(nil), item)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if tier != nil {
		t.Fatalf("expected no discount for empty cart, got %+v", tier)
	}
}

func TestForLinesAnnotatesPerItem(t *testing.T) {
	svc, _ := NewService(seededRepo())

	items := []models.Item{
		{ID: 100, MerchantID: 10},
		{ID: 200, MerchantID: 20},
		{ID: 300, MerchantID: 10},
	}
	c := cart.New(map[int64]int{100: 6, 200: 1, 300: 1})

	resolved, err := svc.ForLines(context.Background(), c, items)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if tier := resolved[100]; tier == nil || !tier.DiscountAmount.Equal(pct(30)) {
		t.Fatalf("item 100: expected 30%% tier, got %+v", tier)
	}
	if tier := resolved[200]; tier == nil || !tier.DiscountAmount.Equal(pct(50)) {
		t.Fatalf("item 200: expected 50%% tier, got %+v", tier)
	}
	if _, present := resolved[300]; present {
		t.Fatal("item 300 does not meet any minimum and must be absent")
	}
}

func TestCreateTierValidation(t *testing.T) {
	svc, _ := NewService(seededRepo())
	ctx := context.Background()

	cases := []TierInput{
		{Description: "", MinimumQuantity: 2, DiscountAmount: pct(10)},
		{Description: "neg", MinimumQuantity: -1, DiscountAmount: pct(10)},
		{Description: "zero", MinimumQuantity: 2, DiscountAmount: pct(0)},
		{Description: "over", MinimumQuantity: 2, DiscountAmount: pct(150)},
	}
	for _, input := range cases {
		_, err := svc.CreateTier(ctx, 10, input)
		coded := pkgerrors.As(err)
		if coded == nil || coded.Code() != pkgerrors.CodeValidation {
			t.Fatalf("input %+v: expected validation error, got %v", input, err)
		}
	}

	created, err := svc.CreateTier(ctx, 10, TierInput{Description: "  8 plus  ", MinimumQuantity: 8, DiscountAmount: pct(35)})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Description != "8 plus" {
		t.Fatalf("expected trimmed description, got %q", created.Description)
	}
}

func TestUpdateTierScopedToOwner(t *testing.T) {
	svc, _ := NewService(seededRepo())
	ctx := context.Background()

	_, err := svc.UpdateTier(ctx, 20, 1, TierInput{Description: "steal", MinimumQuantity: 1, DiscountAmount: pct(99)})
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found for foreign tier, got %v", err)
	}

	updated, err := svc.UpdateTier(ctx, 10, 1, TierInput{Description: "2 plus v2", MinimumQuantity: 3, DiscountAmount: pct(12)})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.MinimumQuantity != 3 || !updated.DiscountAmount.Equal(pct(12)) {
		t.Fatalf("unexpected tier after update: %+v", updated)
	}
}

func TestDeleteTier(t *testing.T) {
	repo := seededRepo()
	svc, _ := NewService(repo)
	ctx := context.Background()

	if err := svc.DeleteTier(ctx, 10, 2); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if len(repo.tiers) != 3 {
		t.Fatalf("expected 3 tiers remaining, got %d", len(repo.tiers))
	}

	err := svc.DeleteTier(ctx, 10, 2)
	coded := pkgerrors.As(err)
	if coded == nil || coded.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found for repeated delete, got %v", err)
	}
}
