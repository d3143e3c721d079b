package discounts

import (
	"github.com/mercantile-app/mercantile-backend/pkg/db/models"
)

// Resolve picks the volume tier unlocked by the given cart quantity: the tier
// with the largest minimum quantity still at or below qty. Returns nil when
// no tier qualifies, including when qty is zero. Tiers with equal minimums
// break ties by higher discount amount, then lower id, so resolution stays
// deterministic on inconsistent data.
func Resolve(qty int, tiers []models.Discount) *models.Discount {
	var selected *models.Discount
	for _, tier := range tiers {
		if tier.MinimumQuantity > qty {
			continue
		}
		if selected == nil || betterTier(tier, *selected) {
			copy := tier
			selected = &copy
		}
	}
	return selected
}

func betterTier(candidate, current models.Discount) bool {
	if candidate.MinimumQuantity != current.MinimumQuantity {
		return candidate.MinimumQuantity > current.MinimumQuantity
	}
	if !candidate.DiscountAmount.Equal(current.DiscountAmount) {
		return candidate.DiscountAmount.GreaterThan(current.DiscountAmount)
	}
	return candidate.ID < current.ID
}
