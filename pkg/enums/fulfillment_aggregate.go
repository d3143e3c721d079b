package enums

import "fmt"

// FulfillmentAggregate selects how a merchant's fulfilled-item durations
// collapse into the single duration used by fulfillment-speed rankings.
type FulfillmentAggregate string

const (
	FulfillmentAggregateMean    FulfillmentAggregate = "mean"
	FulfillmentAggregateFastest FulfillmentAggregate = "fastest"
	FulfillmentAggregateSlowest FulfillmentAggregate = "slowest"
)

var validFulfillmentAggregates = []FulfillmentAggregate{
	FulfillmentAggregateMean,
	FulfillmentAggregateFastest,
	FulfillmentAggregateSlowest,
}

// String implements fmt.Stringer.
func (a FulfillmentAggregate) String() string {
	return string(a)
}

// IsValid reports whether the value is a known FulfillmentAggregate.
func (a FulfillmentAggregate) IsValid() bool {
	for _, candidate := range validFulfillmentAggregates {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseFulfillmentAggregate converts raw input into a FulfillmentAggregate.
func ParseFulfillmentAggregate(value string) (FulfillmentAggregate, error) {
	for _, candidate := range validFulfillmentAggregates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid fulfillment aggregate %q", value)
}
