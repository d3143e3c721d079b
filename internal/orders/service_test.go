package orders

import (
	"context"
	"testing"
	"time"

	"github.com/mercantile-app/mercantile-backend/internal/cart"
	"github.com/mercantile-app/mercantile-backend/internal/discounts"
	"github.com/mercantile-app/mercantile-backend/internal/items"
	"github.com/mercantile-app/mercantile-backend/internal/users"
	"github.com/mercantile-app/mercantile-backend/pkg/db/models"
	"github.com/mercantile-app/mercantile-backend/pkg/enums"
	pkgerrors "github.com/mercantile-app/mercantile-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type fakeCartStore struct {
	carts map[string]*cart.Cart
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: map[string]*cart.Cart{}}
}

func (f *fakeCartStore) Load(_ context.Context, sessionID string) (*cart.Cart, error) {
	if c, ok := f.carts[sessionID]; ok {
		return c, nil
	}
	return cart.New(nil), nil
}

func (f *fakeCartStore) Clear(_ context.Context, sessionID string) error {
	delete(f.carts, sessionID)
	return nil
}

func newTestService(t *testing.T, db *gorm.DB, carts *fakeCartStore) Service {
	t.Helper()

	discountSvc, err := discounts.NewService(discounts.NewRepository(db))
	require.NoError(t, err)

	svc, err := NewService(
		NewRepository(db),
		items.NewRepository(db),
		users.NewAddressRepository(db),
		carts,
		discountSvc,
		gormTxRunner{db: db},
	)
	require.NoError(t, err)
	return svc
}

func newTier(t *testing.T, db *gorm.DB, merchantID int64, minQty int, amount string) {
	t.Helper()

	require.NoError(t, db.Create(&models.Discount{
		MerchantID:      merchantID,
		Description:     "volume",
		MinimumQuantity: minQty,
		DiscountAmount:  decimal.RequireFromString(amount),
	}).Error)
}

func TestCheckoutSnapshotsDiscountedPrices(t *testing.T) {
	db := setupOrdersTestDB(t)
	carts := newFakeCartStore()
	svc := newTestService(t, db, carts)
	ctx := context.Background()

	merchant := newUser(t, db, "merchant", enums.UserRoleMerchant)
	shopper := newUser(t, db, "shopper", enums.UserRoleShopper)
	address := newAddress(t, db, shopper.ID, "Fairfield", "IA")
	itemA := newItem(t, db, merchant.ID, "Mug", "12.00", 10)
	itemB := newItem(t, db, merchant.ID, "Hat", "20.00", 10)
	newTier(t, db, merchant.ID, 6, "30")

	carts.carts["sess-1"] = cart.New(map[int64]int{itemA.ID: 6, itemB.ID: 1})

	order, err := svc.Checkout(ctx, shopper.ID, "sess-1", address.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 2)

	byItem := map[int64]models.OrderItem{}
	for _, line := range order.Items {
		byItem[line.ItemID] = line
	}
	// 6 mugs unlock the 30% tier, 1 hat does not
	assert.True(t, byItem[itemA.ID].UnitPrice.Equal(decimal.RequireFromString("8.40")),
		"got %s", byItem[itemA.ID].UnitPrice)
	assert.True(t, byItem[itemB.ID].UnitPrice.Equal(decimal.RequireFromString("20.00")))

	var reloadedA models.Item
	require.NoError(t, db.First(&reloadedA, itemA.ID).Error)
	assert.Equal(t, 4, reloadedA.Inventory)

	if _, exists := carts.carts["sess-1"]; exists {
		t.Fatal("cart must be cleared after checkout")
	}
}

func TestCheckoutEmptyCartRejected(t *testing.T) {
	db := setupOrdersTestDB(t)
	svc := newTestService(t, db, newFakeCartStore())

	shopper := newUser(t, db, "shopper", enums.UserRoleShopper)
	address := newAddress(t, db, shopper.ID, "Fairfield", "IA")

	_, err := svc.Checkout(context.Background(), shopper.ID, "sess-1", address.ID)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeValidation, coded.Code())
}

func TestCheckoutInsufficientInventoryRollsBack(t *testing.T) {
	db := setupOrdersTestDB(t)
	carts := newFakeCartStore()
	svc := newTestService(t, db, carts)
	ctx := context.Background()

	merchant := newUser(t, db, "merchant", enums.UserRoleMerchant)
	shopper := newUser(t, db, "shopper", enums.UserRoleShopper)
	address := newAddress(t, db, shopper.ID, "Fairfield", "IA")
	itemA := newItem(t, db, merchant.ID, "Mug", "12.00", 10)
	itemB := newItem(t, db, merchant.ID, "Hat", "20.00", 1)

	carts.carts["sess-1"] = cart.New(map[int64]int{itemA.ID: 2, itemB.ID: 5})

	_, err := svc.Checkout(ctx, shopper.ID, "sess-1", address.ID)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeConflict, coded.Code())

	var reloadedA models.Item
	require.NoError(t, db.First(&reloadedA, itemA.ID).Error)
	assert.Equal(t, 10, reloadedA.Inventory, "rollback must restore inventory")

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)

	if _, exists := carts.carts["sess-1"]; !exists {
		t.Fatal("cart must survive a failed checkout")
	}
}

func TestFulfillItemAdvancesOrderToPackaged(t *testing.T) {
	db := setupOrdersTestDB(t)
	carts := newFakeCartStore()
	svc := newTestService(t, db, carts)
	ctx := context.Background()

	merchant := newUser(t, db, "merchant", enums.UserRoleMerchant)
	shopper := newUser(t, db, "shopper", enums.UserRoleShopper)
	address := newAddress(t, db, shopper.ID, "Fairfield", "IA")
	itemA := newItem(t, db, merchant.ID, "Mug", "12.00", 10)
	itemB := newItem(t, db, merchant.ID, "Hat", "20.00", 10)

	carts.carts["sess-1"] = cart.New(map[int64]int{itemA.ID: 1, itemB.ID: 1})
	order, err := svc.Checkout(ctx, shopper.ID, "sess-1", address.ID)
	require.NoError(t, err)

	now := time.Now()
	line, err := svc.FulfillItem(ctx, merchant.ID, order.Items[0].ID, now)
	require.NoError(t, err)
	assert.True(t, line.Fulfilled)
	require.NotNil(t, line.FulfilledAt)

	loaded, err := NewRepository(db).GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPending, loaded.Status, "one open line keeps the order pending")

	_, err = svc.FulfillItem(ctx, merchant.ID, order.Items[1].ID, now)
	require.NoError(t, err)

	loaded, err = NewRepository(db).GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPackaged, loaded.Status)
}

func TestFulfillItemRejectsForeignMerchantAndDoubleFulfill(t *testing.T) {
	db := setupOrdersTestDB(t)
	carts := newFakeCartStore()
	svc := newTestService(t, db, carts)
	ctx := context.Background()

	merchant := newUser(t, db, "merchant", enums.UserRoleMerchant)
	other := newUser(t, db, "other", enums.UserRoleMerchant)
	shopper := newUser(t, db, "shopper", enums.UserRoleShopper)
	address := newAddress(t, db, shopper.ID, "Fairfield", "IA")
	item := newItem(t, db, merchant.ID, "Mug", "12.00", 10)

	carts.carts["sess-1"] = cart.New(map[int64]int{item.ID: 1})
	order, err := svc.Checkout(ctx, shopper.ID, "sess-1", address.ID)
	require.NoError(t, err)

	_, err = svc.FulfillItem(ctx, other.ID, order.Items[0].ID, time.Now())
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeNotFound, coded.Code())

	_, err = svc.FulfillItem(ctx, merchant.ID, order.Items[0].ID, time.Now())
	require.NoError(t, err)

	_, err = svc.FulfillItem(ctx, merchant.ID, order.Items[0].ID, time.Now())
	coded = pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeStateConflict, coded.Code())
}

func TestShipRequiresPackagedOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	carts := newFakeCartStore()
	svc := newTestService(t, db, carts)
	ctx := context.Background()

	merchant := newUser(t, db, "merchant", enums.UserRoleMerchant)
	shopper := newUser(t, db, "shopper", enums.UserRoleShopper)
	address := newAddress(t, db, shopper.ID, "Fairfield", "IA")
	item := newItem(t, db, merchant.ID, "Mug", "12.00", 10)

	carts.carts["sess-1"] = cart.New(map[int64]int{item.ID: 1})
	order, err := svc.Checkout(ctx, shopper.ID, "sess-1", address.ID)
	require.NoError(t, err)

	_, err = svc.Ship(ctx, order.ID)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeStateConflict, coded.Code())

	_, err = svc.FulfillItem(ctx, merchant.ID, order.Items[0].ID, time.Now())
	require.NoError(t, err)

	shipped, err := svc.Ship(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, shipped.Status)
}

func TestCancelRestocksInventory(t *testing.T) {
	db := setupOrdersTestDB(t)
	carts := newFakeCartStore()
	svc := newTestService(t, db, carts)
	ctx := context.Background()

	merchant := newUser(t, db, "merchant", enums.UserRoleMerchant)
	shopper := newUser(t, db, "shopper", enums.UserRoleShopper)
	address := newAddress(t, db, shopper.ID, "Fairfield", "IA")
	item := newItem(t, db, merchant.ID, "Mug", "12.00", 10)
	other := newItem(t, db, merchant.ID, "Hat", "20.00", 10)

	carts.carts["sess-1"] = cart.New(map[int64]int{item.ID: 4, other.ID: 1})
	order, err := svc.Checkout(ctx, shopper.ID, "sess-1", address.ID)
	require.NoError(t, err)

	var reloaded models.Item
	require.NoError(t, db.First(&reloaded, item.ID).Error)
	assert.Equal(t, 6, reloaded.Inventory)

	// fulfill one line; the order stays pending and remains cancellable
	var mugLine models.OrderItem
	for _, line := range order.Items {
		if line.ItemID == item.ID {
			mugLine = line
		}
	}
	_, err = svc.FulfillItem(ctx, merchant.ID, mugLine.ID, time.Now())
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, shopper.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, cancelled.Status)

	require.NoError(t, db.First(&reloaded, item.ID).Error)
	assert.Equal(t, 10, reloaded.Inventory)

	var reloadedLine models.OrderItem
	require.NoError(t, db.First(&reloadedLine, mugLine.ID).Error)
	assert.False(t, reloadedLine.Fulfilled, "cancelled lines must not stay fulfilled")
	assert.Nil(t, reloadedLine.FulfilledAt)

	_, err = svc.Cancel(ctx, shopper.ID, order.ID)
	coded := pkgerrors.As(err)
	require.NotNil(t, coded)
	assert.Equal(t, pkgerrors.CodeStateConflict, coded.Code())
}
