package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mercantile-app/mercantile-backend/pkg/enums"
	pkgerrors "github.com/mercantile-app/mercantile-backend/pkg/errors"
	"github.com/mercantile-app/mercantile-backend/pkg/metrics"
	"github.com/shopspring/decimal"
)

type factReader interface {
	ListOrderLines(ctx context.Context) ([]OrderLineRow, error)
	SumInventoryByMerchant(ctx context.Context, merchantID int64) (int, error)
}

// Service computes the ranked marketplace and merchant dashboard reports.
// Every report is a stateless read over the current order history.
type Service interface {
	TopMerchantsByRevenue(ctx context.Context, n int) ([]MerchantRevenue, error)
	TopMerchantsByFulfillmentTime(ctx context.Context, n int) ([]MerchantFulfillment, error)
	BottomMerchantsByFulfillmentTime(ctx context.Context, n int) ([]MerchantFulfillment, error)
	TopStatesByOrderCount(ctx context.Context, n int) ([]StateOrders, error)
	TopCitiesByOrderCount(ctx context.Context, n int) ([]CityOrders, error)
	TopOrdersByItemsShipped(ctx context.Context, n int) ([]OrderVolume, error)
	TopItemsSoldByQuantity(ctx context.Context, merchantID int64, n int) ([]ItemVelocity, error)
	TopStatesByItemsShipped(ctx context.Context, merchantID int64, n int) ([]StateItems, error)
	TopCitiesByItemsShipped(ctx context.Context, merchantID int64, n int) ([]CityItems, error)
	TopUsersByMoneySpent(ctx context.Context, merchantID int64, n int) ([]UserSpend, error)
	MerchantSummary(ctx context.Context, merchantID int64) (*MerchantSummary, error)
}

type service struct {
	repo      factReader
	aggregate enums.FulfillmentAggregate
	metrics   *metrics.ReportMetrics
}

// NewService builds the analytics engine. The fulfillment aggregate picks the
// representative duration for merchants with more than one fulfilled line.
func NewService(repo factReader, aggregate enums.FulfillmentAggregate, reportMetrics *metrics.ReportMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("fact reader required")
	}
	if !aggregate.IsValid() {
		return nil, fmt.Errorf("invalid fulfillment aggregate %q", aggregate)
	}
	return &service{
		repo:      repo,
		aggregate: aggregate,
		metrics:   reportMetrics,
	}, nil
}

func (s *service) loadLines(ctx context.Context, report string) ([]OrderLineRow, error) {
	start := time.Now()
	rows, err := s.repo.ListOrderLines(ctx)
	s.metrics.ObserveDuration(report, time.Since(start))
	if err != nil {
		s.metrics.IncFailure(report)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order history")
	}
	s.metrics.IncSuccess(report)
	return rows, nil
}

// TopMerchantsByRevenue ranks merchants by the fulfilled value of their order
// lines. Only fulfilled lines count toward revenue.
func (s *service) TopMerchantsByRevenue(ctx context.Context, n int) ([]MerchantRevenue, error) {
	rows, err := s.loadLines(ctx, "top_merchants_by_revenue")
	if err != nil {
		return nil, err
	}

	totals := map[int64]*MerchantRevenue{}
	order := []int64{}
	for _, row := range rows {
		if !row.Fulfilled {
			continue
		}
		entry, seen := totals[row.MerchantID]
		if !seen {
			entry = &MerchantRevenue{
				MerchantID:   row.MerchantID,
				MerchantName: row.MerchantName,
				Revenue:      decimal.Zero,
			}
			totals[row.MerchantID] = entry
			order = append(order, row.MerchantID)
		}
		line := row.UnitPrice.Mul(decimal.NewFromInt(int64(row.Quantity)))
		entry.Revenue = entry.Revenue.Add(line)
	}

	ranked := make([]MerchantRevenue, 0, len(order))
	for _, id := range order {
		entry := totals[id]
		entry.Rendered = FormatCurrency(entry.Revenue)
		ranked = append(ranked, *entry)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if !ranked[i].Revenue.Equal(ranked[j].Revenue) {
			return ranked[i].Revenue.GreaterThan(ranked[j].Revenue)
		}
		return ranked[i].MerchantName < ranked[j].MerchantName
	})
	return limitTo(ranked, n), nil
}

// TopMerchantsByFulfillmentTime ranks merchants fastest first.
func (s *service) TopMerchantsByFulfillmentTime(ctx context.Context, n int) ([]MerchantFulfillment, error) {
	return s.merchantsByFulfillmentTime(ctx, "top_merchants_by_fulfillment_time", n, true)
}

// BottomMerchantsByFulfillmentTime ranks merchants slowest first.
func (s *service) BottomMerchantsByFulfillmentTime(ctx context.Context, n int) ([]MerchantFulfillment, error) {
	return s.merchantsByFulfillmentTime(ctx, "bottom_merchants_by_fulfillment_time", n, false)
}

func (s *service) merchantsByFulfillmentTime(ctx context.Context, report string, n int, fastestFirst bool) ([]MerchantFulfillment, error) {
	rows, err := s.loadLines(ctx, report)
	if err != nil {
		return nil, err
	}

	durations := map[int64][]time.Duration{}
	names := map[int64]string{}
	order := []int64{}
	for _, row := range rows {
		if !row.Fulfilled || row.FulfilledAt == nil {
			continue
		}
		if _, seen := durations[row.MerchantID]; !seen {
			order = append(order, row.MerchantID)
			names[row.MerchantID] = row.MerchantName
		}
		durations[row.MerchantID] = append(durations[row.MerchantID], row.FulfilledAt.Sub(row.OrderCreatedAt))
	}

	ranked := make([]MerchantFulfillment, 0, len(order))
	for _, id := range order {
		representative := representativeDuration(durations[id], s.aggregate)
		ranked = append(ranked, MerchantFulfillment{
			MerchantID:   id,
			MerchantName: names[id],
			Duration:     representative,
			Rendered:     FormatDuration(representative),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Duration != ranked[j].Duration {
			if fastestFirst {
				return ranked[i].Duration < ranked[j].Duration
			}
			return ranked[i].Duration > ranked[j].Duration
		}
		return ranked[i].MerchantName < ranked[j].MerchantName
	})
	return limitTo(ranked, n), nil
}

// TopStatesByOrderCount counts shipped orders per destination state.
func (s *service) TopStatesByOrderCount(ctx context.Context, n int) ([]StateOrders, error) {
	rows, err := s.loadLines(ctx, "top_states_by_order_count")
	if err != nil {
		return nil, err
	}

	orders := map[string]map[int64]struct{}{}
	for _, row := range rows {
		if row.OrderStatus != enums.OrderStatusShipped.String() {
			continue
		}
		if orders[row.State] == nil {
			orders[row.State] = map[int64]struct{}{}
		}
		orders[row.State][row.OrderID] = struct{}{}
	}

	ranked := make([]StateOrders, 0, len(orders))
	for state, ids := range orders {
		ranked = append(ranked, StateOrders{
			State:    state,
			Orders:   len(ids),
			Rendered: FormatOrderCount(len(ids)),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Orders != ranked[j].Orders {
			return ranked[i].Orders > ranked[j].Orders
		}
		return ranked[i].State < ranked[j].State
	})
	return limitTo(ranked, n), nil
}

// TopCitiesByOrderCount counts shipped orders per destination city.
func (s *service) TopCitiesByOrderCount(ctx context.Context, n int) ([]CityOrders, error) {
	rows, err := s.loadLines(ctx, "top_cities_by_order_count")
	if err != nil {
		return nil, err
	}

	type cityKey struct {
		city  string
		state string
	}
	orders := map[cityKey]map[int64]struct{}{}
	for _, row := range rows {
		if row.OrderStatus != enums.OrderStatusShipped.String() {
			continue
		}
		key := cityKey{city: row.City, state: row.State}
		if orders[key] == nil {
			orders[key] = map[int64]struct{}{}
		}
		orders[key][row.OrderID] = struct{}{}
	}

	ranked := make([]CityOrders, 0, len(orders))
	for key, ids := range orders {
		ranked = append(ranked, CityOrders{
			City:     key.city,
			State:    key.state,
			Orders:   len(ids),
			Rendered: FormatOrderCount(len(ids)),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Orders != ranked[j].Orders {
			return ranked[i].Orders > ranked[j].Orders
		}
		if ranked[i].City != ranked[j].City {
			return ranked[i].City < ranked[j].City
		}
		return ranked[i].State < ranked[j].State
	})
	return limitTo(ranked, n), nil
}

// TopOrdersByItemsShipped ranks shipped orders by total unit count.
func (s *service) TopOrdersByItemsShipped(ctx context.Context, n int) ([]OrderVolume, error) {
	rows, err := s.loadLines(ctx, "top_orders_by_items_shipped")
	if err != nil {
		return nil, err
	}

	totals := map[int64]int{}
	order := []int64{}
	for _, row := range rows {
		if row.OrderStatus != enums.OrderStatusShipped.String() {
			continue
		}
		if _, seen := totals[row.OrderID]; !seen {
			order = append(order, row.OrderID)
		}
		totals[row.OrderID] += row.Quantity
	}

	ranked := make([]OrderVolume, 0, len(order))
	for _, id := range order {
		ranked = append(ranked, OrderVolume{
			OrderID:  id,
			Quantity: totals[id],
			Rendered: fmt.Sprintf("Order %d: %s", id, FormatItemCount(totals[id])),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		return ranked[i].OrderID < ranked[j].OrderID
	})
	return limitTo(ranked, n), nil
}

// TopItemsSoldByQuantity ranks one merchant's items by total units ordered,
// fulfilled or not. Ties preserve creation order.
func (s *service) TopItemsSoldByQuantity(ctx context.Context, merchantID int64, n int) ([]ItemVelocity, error) {
	rows, err := s.loadLines(ctx, "top_items_sold_by_quantity")
	if err != nil {
		return nil, err
	}

	totals := map[int64]*ItemVelocity{}
	order := []int64{}
	for _, row := range rows {
		if row.MerchantID != merchantID {
			continue
		}
		entry, seen := totals[row.ItemID]
		if !seen {
			entry = &ItemVelocity{ItemID: row.ItemID, ItemName: row.ItemName}
			totals[row.ItemID] = entry
			order = append(order, row.ItemID)
		}
		entry.Quantity += row.Quantity
	}

	ranked := make([]ItemVelocity, 0, len(order))
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	for _, id := range order {
		ranked = append(ranked, *totals[id])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Quantity > ranked[j].Quantity
	})
	return limitTo(ranked, n), nil
}

// TopStatesByItemsShipped counts the merchant's shipped units per state.
func (s *service) TopStatesByItemsShipped(ctx context.Context, merchantID int64, n int) ([]StateItems, error) {
	rows, err := s.loadLines(ctx, "top_states_by_items_shipped")
	if err != nil {
		return nil, err
	}

	totals := map[string]int{}
	for _, row := range rows {
		if row.MerchantID != merchantID || row.OrderStatus != enums.OrderStatusShipped.String() {
			continue
		}
		totals[row.State] += row.Quantity
	}

	ranked := make([]StateItems, 0, len(totals))
	for state, qty := range totals {
		ranked = append(ranked, StateItems{
			State:    state,
			Quantity: qty,
			Rendered: FormatItemCount(qty),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		return ranked[i].State < ranked[j].State
	})
	return limitTo(ranked, n), nil
}

// TopCitiesByItemsShipped counts the merchant's shipped units per city.
func (s *service) TopCitiesByItemsShipped(ctx context.Context, merchantID int64, n int) ([]CityItems, error) {
	rows, err := s.loadLines(ctx, "top_cities_by_items_shipped")
	if err != nil {
		return nil, err
	}

	type cityKey struct {
		city  string
		state string
	}
	totals := map[cityKey]int{}
	for _, row := range rows {
		if row.MerchantID != merchantID || row.OrderStatus != enums.OrderStatusShipped.String() {
			continue
		}
		totals[cityKey{city: row.City, state: row.State}] += row.Quantity
	}

	ranked := make([]CityItems, 0, len(totals))
	for key, qty := range totals {
		ranked = append(ranked, CityItems{
			City:     key.city,
			State:    key.state,
			Quantity: qty,
			Rendered: FormatItemCount(qty),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		if ranked[i].City != ranked[j].City {
			return ranked[i].City < ranked[j].City
		}
		return ranked[i].State < ranked[j].State
	})
	return limitTo(ranked, n), nil
}

// TopUsersByMoneySpent ranks the merchant's customers by fulfilled spend.
func (s *service) TopUsersByMoneySpent(ctx context.Context, merchantID int64, n int) ([]UserSpend, error) {
	rows, err := s.loadLines(ctx, "top_users_by_money_spent")
	if err != nil {
		return nil, err
	}

	totals := map[int64]*UserSpend{}
	order := []int64{}
	for _, row := range rows {
		if row.MerchantID != merchantID || !row.Fulfilled {
			continue
		}
		entry, seen := totals[row.UserID]
		if !seen {
			entry = &UserSpend{UserID: row.UserID, UserName: row.UserName, Total: decimal.Zero}
			totals[row.UserID] = entry
			order = append(order, row.UserID)
		}
		entry.Total = entry.Total.Add(row.UnitPrice.Mul(decimal.NewFromInt(int64(row.Quantity))))
	}

	ranked := make([]UserSpend, 0, len(order))
	for _, id := range order {
		entry := totals[id]
		entry.Rendered = FormatCurrency(entry.Total)
		ranked = append(ranked, *entry)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if !ranked[i].Total.Equal(ranked[j].Total) {
			return ranked[i].Total.GreaterThan(ranked[j].Total)
		}
		return ranked[i].UserName < ranked[j].UserName
	})
	return limitTo(ranked, n), nil
}

// MerchantSummary aggregates one merchant's headline dashboard numbers.
func (s *service) MerchantSummary(ctx context.Context, merchantID int64) (*MerchantSummary, error) {
	rows, err := s.loadLines(ctx, "merchant_summary")
	if err != nil {
		return nil, err
	}

	inventory, err := s.repo.SumInventoryByMerchant(ctx, merchantID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum merchant inventory")
	}

	merchantItems := 0
	allItems := 0
	userOrders := map[int64]map[int64]struct{}{}
	userItems := map[int64]int{}
	userNames := map[int64]string{}
	userOrder := []int64{}
	for _, row := range rows {
		allItems += row.Quantity
		if row.MerchantID != merchantID {
			continue
		}
		merchantItems += row.Quantity

		if _, seen := userOrders[row.UserID]; !seen {
			userOrders[row.UserID] = map[int64]struct{}{}
			userNames[row.UserID] = row.UserName
			userOrder = append(userOrder, row.UserID)
		}
		userOrders[row.UserID][row.OrderID] = struct{}{}
		userItems[row.UserID] += row.Quantity
	}

	summary := &MerchantSummary{
		MerchantID:              merchantID,
		TotalItemsSold:          merchantItems,
		TotalInventoryRemaining: inventory,
	}
	if allItems > 0 {
		summary.PercentOfItemsSold = float64(merchantItems) / float64(allItems) * 100
	}

	for _, userID := range userOrder {
		orderCount := len(userOrders[userID])
		if summary.TopUserByOrderCount == nil || orderCount > summary.TopUserByOrderCount.Count {
			summary.TopUserByOrderCount = &UserStat{
				UserID:   userID,
				UserName: userNames[userID],
				Count:    orderCount,
			}
		}
		itemCount := userItems[userID]
		if summary.TopUserByItemCount == nil || itemCount > summary.TopUserByItemCount.Count {
			summary.TopUserByItemCount = &UserStat{
				UserID:   userID,
				UserName: userNames[userID],
				Count:    itemCount,
			}
		}
	}
	return summary, nil
}

func representativeDuration(durations []time.Duration, aggregate enums.FulfillmentAggregate) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	switch aggregate {
	case enums.FulfillmentAggregateFastest:
		min := durations[0]
		for _, d := range durations[1:] {
			if d < min {
				min = d
			}
		}
		return min
	case enums.FulfillmentAggregateSlowest:
		max := durations[0]
		for _, d := range durations[1:] {
			if d > max {
				max = d
			}
		}
		return max
	default:
		var sum time.Duration
		for _, d := range durations {
			sum += d
		}
		return sum / time.Duration(len(durations))
	}
}

func limitTo[T any](ranked []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}
