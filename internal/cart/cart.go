// Package cart holds the plants a shopper has selected, in memory only.
package cart

import (
	"sync"

	"nursery/internal/models"

	"github.com/shopspring/decimal"
)

// Cart is an ordered list of cart items. Quantities are always at least 1.
type Cart struct {
	mu    sync.RWMutex
	items []models.CartItem
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []models.CartItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := make([]models.CartItem, len(c.items))
	copy(items, c.items)
	return items
}

// Add puts plant in the cart with quantity 1, or increments the quantity
// of the existing line by exactly 1.
func (c *Cart) Add(plant models.Plant) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(plant.ID); i >= 0 {
		c.items[i].Quantity++
		return
	}
	c.items = append(c.items, models.CartItem{Plant: plant, Quantity: 1})
}

// UpdateQuantity sets the quantity of a line. A quantity of zero or less
// removes the line. Unknown ids are ignored.
func (c *Cart) UpdateQuantity(id string, qty int) {
	if qty <= 0 {
		c.Remove(id)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		c.items[i].Quantity = qty
	}
}

// Remove drops the line for id.
func (c *Cart) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// Subtract takes the quantities of placed off the matching lines and drops
// lines that reach zero. Lines and units added after placed was taken stay.
func (c *Cart) Subtract(placed []models.CartItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range placed {
		i := c.indexOf(p.ID)
		if i < 0 {
			continue
		}
		c.items[i].Quantity -= p.Quantity
		if c.items[i].Quantity <= 0 {
			c.items = append(c.items[:i], c.items[i+1:]...)
		}
	}
}

// Total is the sum of price times quantity over all lines.
func (c *Cart) Total() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Count is the number of units in the cart.
func (c *Cart) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

// Len is the number of distinct lines.
func (c *Cart) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cart) indexOf(id string) int {
	for i, item := range c.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
