package controllers

import (
	"net/http"
	"time"

	"github.com/mercantile-app/mercantile-backend/api/middleware"
	"github.com/mercantile-app/mercantile-backend/api/responses"
	"github.com/mercantile-app/mercantile-backend/api/validators"
	ordersvc "github.com/mercantile-app/mercantile-backend/internal/orders"
	"github.com/mercantile-app/mercantile-backend/pkg/db/models"
	"github.com/mercantile-app/mercantile-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

type checkoutRequest struct {
	AddressID int64 `json:"address_id" validate:"required,gt=0"`
}

type orderItemResponse struct {
	ID          int64      `json:"id"`
	ItemID      int64      `json:"item_id"`
	Quantity    int        `json:"quantity"`
	UnitPrice   string     `json:"unit_price"`
	Fulfilled   bool       `json:"fulfilled"`
	FulfilledAt *time.Time `json:"fulfilled_at,omitempty"`
}

type orderResponse struct {
	ID        int64               `json:"id"`
	AddressID int64               `json:"address_id"`
	Status    string              `json:"status"`
	Total     string              `json:"total"`
	Items     []orderItemResponse `json:"items"`
	CreatedAt time.Time           `json:"created_at"`
}

func newOrderItemResponse(line models.OrderItem) orderItemResponse {
	return orderItemResponse{
		ID:          line.ID,
		ItemID:      line.ItemID,
		Quantity:    line.Quantity,
		UnitPrice:   line.UnitPrice.StringFixed(2),
		Fulfilled:   line.Fulfilled,
		FulfilledAt: line.FulfilledAt,
	}
}

func newOrderResponse(order *models.Order) orderResponse {
	total := decimal.Zero
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, line := range order.Items {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		items = append(items, newOrderItemResponse(line))
	}
	return orderResponse{
		ID:        order.ID,
		AddressID: order.AddressID,
		Status:    string(order.Status),
		Total:     total.StringFixed(2),
		Items:     items,
		CreatedAt: order.CreatedAt,
	}
}

// Checkout converts the session cart into a pending order.
func Checkout(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		sessionID := middleware.SessionIDFromContext(r.Context())
		order, err := svc.Checkout(r.Context(), userID, sessionID, payload.AddressID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}

// OrderList returns the authenticated user's order history, newest first.
func OrderList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		orders, err := svc.ListForUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]orderResponse, 0, len(orders))
		for i := range orders {
			out = append(out, newOrderResponse(&orders[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// OrderDetail returns one of the authenticated user's orders.
func OrderDetail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.PathID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetForUser(r.Context(), middleware.UserIDFromContext(r.Context()), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// OrderCancel voids one of the authenticated user's pending orders and
// restocks its inventory.
func OrderCancel(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.PathID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Cancel(r.Context(), middleware.UserIDFromContext(r.Context()), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// MerchantFulfillItem marks one of the merchant's order lines as fulfilled.
func MerchantFulfillItem(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lineID, err := validators.PathID(r, "orderItemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		line, err := svc.FulfillItem(r.Context(), middleware.UserIDFromContext(r.Context()), lineID, time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderItemResponse(*line))
	}
}

// AdminShipOrder advances a fully packaged order to shipped.
func AdminShipOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.PathID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Ship(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}
