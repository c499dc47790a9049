// Package cart implements the client-resident cart aggregator: an ordered
// accumulation of catalog selections awaiting checkout, persisted through a
// Store on every mutation so an in-progress cart survives a crash.
package cart

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entry is one cart line: a selected catalog entry with a quantity.
type Entry struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image,omitempty"`
}

// Cart accumulates entries in insertion order. All methods are safe for
// concurrent use.
type Cart struct {
	mu      sync.Mutex
	entries []Entry
	store   Store
}

// New creates a Cart backed by the given store and rehydrates any previously
// persisted state. A nil store disables persistence.
func New(store Store) (*Cart, error) {
	c := &Cart{store: store}
	if store == nil {
		return c, nil
	}
	entries, err := store.Load()
	if err != nil {
		return nil, err
	}
	c.entries = entries
	return c, nil
}

// Add merges an item into the cart: an entry with the same name gains one
// quantity, otherwise the item is appended with quantity 1. The catalog id
// is kept as the entry identity; a local id is generated only when the item
// carries none.
func (c *Cart) Add(item Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.entries {
		if c.entries[i].Name == item.Name {
			c.entries[i].Quantity++
			return c.persist()
		}
	}

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.Quantity = 1
	c.entries = append(c.entries, item)
	return c.persist()
}

// UpdateQuantity adjusts an entry's quantity by delta, clamping at zero and
// removing the entry when it reaches zero. Unknown ids are a no-op.
func (c *Cart) UpdateQuantity(id string, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.entries {
		if c.entries[i].ID != id {
			continue
		}
		q := c.entries[i].Quantity + delta
		if q <= 0 {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
		} else {
			c.entries[i].Quantity = q
		}
		return c.persist()
	}
	return nil
}

// Remove deletes an entry regardless of quantity. Unknown ids are a no-op.
func (c *Cart) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.entries {
		if c.entries[i].ID == id {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return c.persist()
		}
	}
	return nil
}

// Clear empties the cart. It is invoked after a successful order creation;
// the persisted state is emptied with it.
func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = nil
	return c.persist()
}

// Items returns a copy of the entries in insertion order.
func (c *Cart) Items() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Total returns the sum of price times quantity over all entries.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()

	total := decimal.Zero
	for _, e := range c.entries {
		total = total.Add(e.Price.Mul(decimal.NewFromInt(int64(e.Quantity))))
	}
	return total
}

// Count returns the total quantity across all entries.
func (c *Cart) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, e := range c.entries {
		n += e.Quantity
	}
	return n
}

// persist writes the full state through the store. Callers must hold c.mu.
func (c *Cart) persist() error {
	if c.store == nil {
		return nil
	}
	return c.store.Save(c.entries)
}
