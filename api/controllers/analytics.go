package controllers

import (
	"net/http"

	"github.com/mercantile-app/mercantile-backend/api/middleware"
	"github.com/mercantile-app/mercantile-backend/api/responses"
	"github.com/mercantile-app/mercantile-backend/api/validators"
	"github.com/mercantile-app/mercantile-backend/internal/analytics"
	"github.com/mercantile-app/mercantile-backend/pkg/logger"
)

type marketplaceReportsResponse struct {
	TopMerchantsByRevenue            []analytics.MerchantRevenue     `json:"top_merchants_by_revenue"`
	TopMerchantsByFulfillmentTime    []analytics.MerchantFulfillment `json:"top_merchants_by_fulfillment_time"`
	BottomMerchantsByFulfillmentTime []analytics.MerchantFulfillment `json:"bottom_merchants_by_fulfillment_time"`
	TopStatesByOrderCount            []analytics.StateOrders         `json:"top_states_by_order_count"`
	TopCitiesByOrderCount            []analytics.CityOrders          `json:"top_cities_by_order_count"`
	TopOrdersByItemsShipped          []analytics.OrderVolume         `json:"top_orders_by_items_shipped"`
}

type merchantDashboardResponse struct {
	Summary                 *analytics.MerchantSummary `json:"summary"`
	TopItemsSoldByQuantity  []analytics.ItemVelocity   `json:"top_items_sold_by_quantity"`
	TopStatesByItemsShipped []analytics.StateItems     `json:"top_states_by_items_shipped"`
	TopCitiesByItemsShipped []analytics.CityItems      `json:"top_cities_by_items_shipped"`
	TopUsersByMoneySpent    []analytics.UserSpend      `json:"top_users_by_money_spent"`
}

// MarketplaceReports bundles the storewide leaderboards the index page shows.
func MarketplaceReports(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.LimitParam(r, validators.DefaultReportLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()

		payload := marketplaceReportsResponse{}
		if payload.TopMerchantsByRevenue, err = svc.TopMerchantsByRevenue(ctx, limit); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if payload.TopMerchantsByFulfillmentTime, err = svc.TopMerchantsByFulfillmentTime(ctx, limit); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if payload.BottomMerchantsByFulfillmentTime, err = svc.BottomMerchantsByFulfillmentTime(ctx, limit); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if payload.TopStatesByOrderCount, err = svc.TopStatesByOrderCount(ctx, limit); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if payload.TopCitiesByOrderCount, err = svc.TopCitiesByOrderCount(ctx, limit); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if payload.TopOrdersByItemsShipped, err = svc.TopOrdersByItemsShipped(ctx, limit); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, payload)
	}
}

// MerchantDashboard bundles the authenticated merchant's reports.
func MerchantDashboard(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.LimitParam(r, validators.DefaultReportLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx := r.Context()
		merchantID := middleware.UserIDFromContext(ctx)

		payload := merchantDashboardResponse{}
		if payload.Summary, err = svc.MerchantSummary(ctx, merchantID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if payload.TopItemsSoldByQuantity, err = svc.TopItemsSoldByQuantity(ctx, merchantID, limit); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if payload.TopStatesByItemsShipped, err = svc.TopStatesByItemsShipped(ctx, merchantID, limit); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if payload.TopCitiesByItemsShipped, err = svc.TopCitiesByItemsShipped(ctx, merchantID, limit); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if payload.TopUsersByMoneySpent, err = svc.TopUsersByMoneySpent(ctx, merchantID, limit); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, payload)
	}
}
