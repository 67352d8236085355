package cart_test

import (
	"sync"
	"testing"

	"nursery/internal/cart"
	"nursery/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plant(id, price string) models.Plant {
	return models.Plant{ID: id, Name: "Plant " + id, Price: decimal.RequireFromString(price)}
}

func TestCart_AddIncrementsExistingByOne(t *testing.T) {
	c := cart.New()
	c.Add(plant("a", "10.00"))
	c.Add(plant("b", "4.50"))
	c.Add(plant("a", "10.00"))

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "b", items[1].ID)
	assert.Equal(t, 1, items[1].Quantity, "other lines are untouched")
	assert.Equal(t, 3, c.Count())
}

func TestCart_UpdateQuantity(t *testing.T) {
	c := cart.New()
	c.Add(plant("a", "10.00"))
	c.Add(plant("b", "4.50"))

	c.UpdateQuantity("a", 5)
	assert.Equal(t, 5, c.Items()[0].Quantity)

	c.UpdateQuantity("a", 0)
	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].ID)

	c.UpdateQuantity("b", -3)
	assert.Equal(t, 0, c.Len())

	c.UpdateQuantity("missing", 2)
	assert.Equal(t, 0, c.Len())
}

func TestCart_TotalIsSumOfSubtotals(t *testing.T) {
	c := cart.New()
	assert.True(t, decimal.Zero.Equal(c.Total()))

	c.Add(plant("a", "12.99"))
	c.Add(plant("a", "12.99"))
	c.Add(plant("b", "0.10"))
	c.UpdateQuantity("b", 3)

	want := decimal.Zero
	for _, item := range c.Items() {
		want = want.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	assert.True(t, want.Equal(c.Total()))
	assert.Equal(t, "26.28", c.Total().StringFixed(2))
}

func TestCart_RemoveAndClear(t *testing.T) {
	c := cart.New()
	c.Add(plant("a", "1"))
	c.Add(plant("b", "2"))
	c.Remove("a")
	assert.Equal(t, 1, c.Len())
	c.Clear()
	assert.Empty(t, c.Items())
	assert.True(t, decimal.Zero.Equal(c.Total()))
}

func TestCart_ItemsIsACopy(t *testing.T) {
	c := cart.New()
	c.Add(plant("a", "1"))
	items := c.Items()
	items[0].Quantity = 99
	assert.Equal(t, 1, c.Items()[0].Quantity)
}

func TestCart_ConcurrentAdds(t *testing.T) {
	c := cart.New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Add(plant("a", "2"))
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, c.Count())
	assert.Equal(t, 1, c.Len())
}

func TestCart_SubtractKeepsLaterAdditions(t *testing.T) {
	c := cart.New()
	c.Add(plant("a", "1"))
	c.Add(plant("a", "1"))
	c.Add(plant("b", "2"))
	placed := c.Items()

	c.Add(plant("a", "1"))
	c.Add(plant("c", "3"))
	c.Subtract(placed)

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, "c", items[1].ID)

	c.Subtract(c.Items())
	assert.Zero(t, c.Len())
}
