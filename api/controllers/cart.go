package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/mercantile-app/mercantile-backend/api/middleware"
	"github.com/mercantile-app/mercantile-backend/api/responses"
	"github.com/mercantile-app/mercantile-backend/api/validators"
	cartsvc "github.com/mercantile-app/mercantile-backend/internal/cart"
	discountsvc "github.com/mercantile-app/mercantile-backend/internal/discounts"
	"github.com/mercantile-app/mercantile-backend/internal/items"
	"github.com/mercantile-app/mercantile-backend/pkg/db/models"
	pkgerrors "github.com/mercantile-app/mercantile-backend/pkg/errors"
	"github.com/mercantile-app/mercantile-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var percentBase = decimal.NewFromInt(100)

type cartLineResponse struct {
	Item               itemResponse  `json:"item"`
	Quantity           int           `json:"quantity"`
	UnitPrice          string        `json:"unit_price"`
	Subtotal           string        `json:"subtotal"`
	Discount           *tierResponse `json:"discount,omitempty"`
	DiscountedPrice    string        `json:"discounted_unit_price,omitempty"`
	DiscountedSubtotal string        `json:"discounted_subtotal,omitempty"`
}

type cartResponse struct {
	Lines           []cartLineResponse `json:"lines"`
	TotalItemCount  int                `json:"total_item_count"`
	Total           string             `json:"total"`
	DiscountedTotal string             `json:"discounted_total"`
}

type cartSummaryResponse struct {
	Contents       map[string]int `json:"contents"`
	TotalItemCount int            `json:"total_item_count"`
}

func newCartSummary(c *cartsvc.Cart) cartSummaryResponse {
	contents := map[string]int{}
	for id, qty := range c.Contents() {
		contents[strconv.FormatInt(id, 10)] = qty
	}
	return cartSummaryResponse{
		Contents:       contents,
		TotalItemCount: c.TotalItemCount(),
	}
}

// CartFetch resolves the session cart against the catalog and annotates each
// line with the volume tier its quantity unlocks.
func CartFetch(store *cartsvc.SessionStore, svc cartsvc.Service, discounts discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())

		shopperCart, err := store.Load(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart"))
			return
		}

		lines, err := svc.Lines(r.Context(), shopperCart)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		catalog := make([]models.Item, 0, len(lines))
		for _, line := range lines {
			catalog = append(catalog, line.Item)
		}
		resolved, err := discounts.ForLines(r.Context(), shopperCart, catalog)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := cartResponse{
			Lines:          make([]cartLineResponse, 0, len(lines)),
			TotalItemCount: shopperCart.TotalItemCount(),
		}
		total := decimal.Zero
		discountedTotal := decimal.Zero
		for _, line := range lines {
			subtotal := cartsvc.Subtotal(line.Item, shopperCart)
			total = total.Add(subtotal)

			entry := cartLineResponse{
				Item:      newItemResponse(line.Item),
				Quantity:  line.Quantity,
				UnitPrice: line.Item.Price.StringFixed(2),
				Subtotal:  subtotal.StringFixed(2),
			}
			if tier := resolved[line.Item.ID]; tier != nil {
				discounted := discountedUnitPrice(line.Item.Price, tier)
				discountedSubtotal := discounted.Mul(decimal.NewFromInt(int64(line.Quantity)))
				discountedTotal = discountedTotal.Add(discountedSubtotal)

				tr := newTierResponse(*tier)
				entry.Discount = &tr
				entry.DiscountedPrice = discounted.StringFixed(2)
				entry.DiscountedSubtotal = discountedSubtotal.StringFixed(2)
			} else {
				discountedTotal = discountedTotal.Add(subtotal)
			}
			payload.Lines = append(payload.Lines, entry)
		}
		payload.Total = total.StringFixed(2)
		payload.DiscountedTotal = discountedTotal.StringFixed(2)

		responses.WriteSuccess(w, payload)
	}
}

// CartAddItem puts one more unit of the item into the session cart.
func CartAddItem(store *cartsvc.SessionStore, repo *items.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := validators.PathID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := repo.GetByID(r.Context(), itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "item not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item"))
			return
		}
		if !item.Active {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "item is no longer available"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		shopperCart, err := store.Load(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart"))
			return
		}

		shopperCart.AddItem(itemID)
		if err := store.Save(r.Context(), sessionID, shopperCart); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart"))
			return
		}
		responses.WriteSuccess(w, newCartSummary(shopperCart))
	}
}

// CartRemoveItem takes one unit of the item out of the session cart. Removing
// an item the cart does not hold is a no-op.
func CartRemoveItem(store *cartsvc.SessionStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := validators.PathID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		shopperCart, err := store.Load(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart"))
			return
		}

		shopperCart.RemoveItem(itemID)
		if err := store.Save(r.Context(), sessionID, shopperCart); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart"))
			return
		}
		responses.WriteSuccess(w, newCartSummary(shopperCart))
	}
}

// CartClear drops the whole session cart.
func CartClear(store *cartsvc.SessionStore, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.SessionIDFromContext(r.Context())
		if err := store.Clear(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart"))
			return
		}
		responses.WriteSuccess(w, cartSummaryResponse{Contents: map[string]int{}})
	}
}

func discountedUnitPrice(price decimal.Decimal, tier *models.Discount) decimal.Decimal {
	factor := percentBase.Sub(tier.DiscountAmount).Div(percentBase)
	return price.Mul(factor).Round(2)
}
