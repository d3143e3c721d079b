package cart

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Cart tracks how many units of each item one shopper session intends to buy.
// It is a plain value rebuilt from its serialized session blob on every
// request, never a database row.
type Cart struct {
	contents map[int64]int
}

// New builds a cart from an existing quantity mapping. A nil mapping yields an
// empty cart. Entries with non-positive quantities are dropped.
func New(contents map[int64]int) *Cart {
	c := &Cart{contents: make(map[int64]int, len(contents))}
	for id, qty := range contents {
		if qty > 0 {
			c.contents[id] = qty
		}
	}
	return c
}

// FromSerialized rebuilds a cart from its session blob. Item identifiers
// arrive as string keys in the serialized form, so they are normalized back
// to numeric ids here. Malformed keys and non-positive quantities are
// dropped rather than treated as errors.
func FromSerialized(blob []byte) (*Cart, error) {
	if len(blob) == 0 {
		return New(nil), nil
	}

	raw := map[string]json.Number{}
	if err := json.Unmarshal(blob, &raw); err != nil {
		return nil, fmt.Errorf("decoding cart blob: %w", err)
	}

	contents := make(map[int64]int, len(raw))
	for key, value := range raw {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		qty, err := value.Int64()
		if err != nil || qty <= 0 {
			continue
		}
		contents[id] = int(qty)
	}
	return New(contents), nil
}

// Serialize renders the cart as its session blob form with string keys.
func (c *Cart) Serialize() ([]byte, error) {
	out := make(map[string]int, len(c.contents))
	for id, qty := range c.contents {
		out[strconv.FormatInt(id, 10)] = qty
	}
	return json.Marshal(out)
}

// TotalItemCount returns the sum of all quantities.
func (c *Cart) TotalItemCount() int {
	total := 0
	for _, qty := range c.contents {
		total += qty
	}
	return total
}

// Contents returns a copy of the quantity mapping. Never nil.
func (c *Cart) Contents() map[int64]int {
	out := make(map[int64]int, len(c.contents))
	for id, qty := range c.contents {
		out[id] = qty
	}
	return out
}

// CountOf returns the quantity held for the item, or 0 when absent.
func (c *Cart) CountOf(itemID int64) int {
	return c.contents[itemID]
}

// AddItem increments the quantity for the item, creating the entry at 1.
func (c *Cart) AddItem(itemID int64) {
	c.contents[itemID]++
}

// RemoveItem decrements the quantity for the item, deleting the entry when it
// reaches zero. Removing an absent item is a no-op.
func (c *Cart) RemoveItem(itemID int64) {
	qty, ok := c.contents[itemID]
	if !ok {
		return
	}
	if qty <= 1 {
		delete(c.contents, itemID)
		return
	}
	c.contents[itemID] = qty - 1
}

// IsEmpty reports whether the cart holds no entries.
func (c *Cart) IsEmpty() bool {
	return len(c.contents) == 0
}

// ItemIDs returns the distinct item ids in the cart, ascending.
func (c *Cart) ItemIDs() []int64 {
	ids := make([]int64, 0, len(c.contents))
	for id := range c.contents {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
