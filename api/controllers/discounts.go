package controllers

import (
	"net/http"
	"time"

	"github.com/mercantile-app/mercantile-backend/api/middleware"
	"github.com/mercantile-app/mercantile-backend/api/responses"
	"github.com/mercantile-app/mercantile-backend/api/validators"
	discountsvc "github.com/mercantile-app/mercantile-backend/internal/discounts"
	"github.com/mercantile-app/mercantile-backend/pkg/db/models"
	pkgerrors "github.com/mercantile-app/mercantile-backend/pkg/errors"
	"github.com/mercantile-app/mercantile-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

type tierPayload struct {
	Description     string `json:"description" validate:"required"`
	MinimumQuantity int    `json:"minimum_quantity" validate:"min=0"`
	DiscountAmount  string `json:"discount_amount" validate:"required"`
}

type tierResponse struct {
	ID              int64     `json:"id"`
	MerchantID      int64     `json:"merchant_id"`
	Description     string    `json:"description"`
	MinimumQuantity int       `json:"minimum_quantity"`
	DiscountAmount  string    `json:"discount_amount"`
	CreatedAt       time.Time `json:"created_at"`
}

func newTierResponse(tier models.Discount) tierResponse {
	return tierResponse{
		ID:              tier.ID,
		MerchantID:      tier.MerchantID,
		Description:     tier.Description,
		MinimumQuantity: tier.MinimumQuantity,
		DiscountAmount:  tier.DiscountAmount.StringFixed(2),
		CreatedAt:       tier.CreatedAt,
	}
}

func (p tierPayload) toInput() (discountsvc.TierInput, error) {
	amount, err := decimal.NewFromString(p.DiscountAmount)
	if err != nil {
		return discountsvc.TierInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid discount amount")
	}
	return discountsvc.TierInput{
		Description:     p.Description,
		MinimumQuantity: p.MinimumQuantity,
		DiscountAmount:  amount,
	}, nil
}

// DiscountTierList returns the authenticated merchant's volume tiers.
func DiscountTierList(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		merchantID := middleware.UserIDFromContext(r.Context())
		tiers, err := svc.ListTiers(r.Context(), merchantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]tierResponse, 0, len(tiers))
		for _, tier := range tiers {
			out = append(out, newTierResponse(tier))
		}
		responses.WriteSuccess(w, out)
	}
}

// DiscountTierCreate adds a volume tier for the authenticated merchant.
func DiscountTierCreate(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload tierPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tier, err := svc.CreateTier(r.Context(), middleware.UserIDFromContext(r.Context()), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newTierResponse(*tier))
	}
}

// DiscountTierUpdate edits one of the authenticated merchant's tiers.
func DiscountTierUpdate(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tierID, err := validators.PathID(r, "tierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload tierPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tier, err := svc.UpdateTier(r.Context(), middleware.UserIDFromContext(r.Context()), tierID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newTierResponse(*tier))
	}
}

// DiscountTierDelete removes one of the authenticated merchant's tiers.
func DiscountTierDelete(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tierID, err := validators.PathID(r, "tierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteTier(r.Context(), middleware.UserIDFromContext(r.Context()), tierID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
