package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/mercantile-app/mercantile-backend/api/middleware"
	"github.com/mercantile-app/mercantile-backend/api/responses"
	"github.com/mercantile-app/mercantile-backend/api/validators"
	"github.com/mercantile-app/mercantile-backend/internal/items"
	"github.com/mercantile-app/mercantile-backend/pkg/db/models"
	pkgerrors "github.com/mercantile-app/mercantile-backend/pkg/errors"
	"github.com/mercantile-app/mercantile-backend/pkg/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type itemPayload struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Price       string `json:"price" validate:"required"`
	Inventory   int    `json:"inventory" validate:"min=0"`
	Active      *bool  `json:"active"`
}

type itemResponse struct {
	ID          int64     `json:"id"`
	MerchantID  int64     `json:"merchant_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	Price       string    `json:"price"`
	Inventory   int       `json:"inventory"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

func newItemResponse(item models.Item) itemResponse {
	return itemResponse{
		ID:          item.ID,
		MerchantID:  item.MerchantID,
		Name:        item.Name,
		Description: item.Description,
		Image:       item.Image,
		Price:       item.Price.StringFixed(2),
		Inventory:   item.Inventory,
		Active:      item.Active,
		CreatedAt:   item.CreatedAt,
	}
}

func newItemResponses(list []models.Item) []itemResponse {
	out := make([]itemResponse, 0, len(list))
	for _, item := range list {
		out = append(out, newItemResponse(item))
	}
	return out
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price")
	}
	if !price.IsPositive() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	return price, nil
}

// ItemList serves the browsable catalog of active listings.
func ItemList(repo *items.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := repo.ListActive(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items"))
			return
		}
		responses.WriteSuccess(w, newItemResponses(list))
	}
}

// ItemDetail serves one listing.
func ItemDetail(repo *items.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := repo.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "item not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item"))
			return
		}
		responses.WriteSuccess(w, newItemResponse(*item))
	}
}

// MerchantItemList returns everything the authenticated merchant has listed.
func MerchantItemList(repo *items.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID := middleware.UserIDFromContext(r.Context())
		list, err := repo.ListByMerchant(r.Context(), merchantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items"))
			return
		}
		responses.WriteSuccess(w, newItemResponses(list))
	}
}

// MerchantItemCreate adds a new listing for the authenticated merchant.
func MerchantItemCreate(repo *items.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload itemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := parsePrice(payload.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		active := true
		if payload.Active != nil {
			active = *payload.Active
		}

		item := &models.Item{
			MerchantID:  middleware.UserIDFromContext(r.Context()),
			Name:        payload.Name,
			Description: payload.Description,
			Image:       payload.Image,
			Price:       price,
			Inventory:   payload.Inventory,
			Active:      active,
		}
		created, err := repo.Create(r.Context(), item)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item"))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newItemResponse(*created))
	}
}

// MerchantItemUpdate edits one of the authenticated merchant's listings.
func MerchantItemUpdate(repo *items.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload itemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		price, err := parsePrice(payload.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := repo.GetByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "item not found"))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item"))
			return
		}
		if item.MerchantID != middleware.UserIDFromContext(r.Context()) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "item not found"))
			return
		}

		item.Name = payload.Name
		item.Description = payload.Description
		item.Image = payload.Image
		item.Price = price
		item.Inventory = payload.Inventory
		if payload.Active != nil {
			item.Active = *payload.Active
		}

		updated, err := repo.Update(r.Context(), item)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item"))
			return
		}
		responses.WriteSuccess(w, newItemResponse(*updated))
	}
}
