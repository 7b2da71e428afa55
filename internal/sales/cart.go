package sales

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/aushadhi-pos/aushadhi-pos/internal/catalog"
	"github.com/aushadhi-pos/aushadhi-pos/internal/platform/httpx"
	"github.com/aushadhi-pos/aushadhi-pos/internal/pricing"
)

// CartItem is one product entry in an in-progress checkout.
type CartItem struct {
	ProductID       uuid.UUID
	ProductName     string
	CatalogPrice    float64
	Available       int
	Quantity        int
	PriceOverride   *float64
	TaxRateOverride *float64
}

// Cart accumulates items before checkout. Adding the same product twice
// merges quantities; the stock guard checks the cumulative quantity against
// the on-hand amount, and a rejected add leaves the cart untouched.
type Cart struct {
	items []CartItem
}

// AddItem appends qty units of the product, merging with an existing entry.
func (c *Cart) AddItem(p catalog.Product, qty int, priceOverride, taxOverride *float64) error {
	if qty <= 0 {
		return fmt.Errorf("%w: quantity must be positive", httpx.ErrValidation)
	}
	existing := 0
	for _, it := range c.items {
		if it.ProductID == p.ID {
			existing = it.Quantity
			break
		}
	}
	if existing+qty > p.Quantity {
		return &InsufficientStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Requested:   existing + qty,
			Available:   p.Quantity,
		}
	}
	for i, it := range c.items {
		if it.ProductID == p.ID {
			c.items[i].Quantity += qty
			if priceOverride != nil {
				c.items[i].PriceOverride = priceOverride
			}
			if taxOverride != nil {
				c.items[i].TaxRateOverride = taxOverride
			}
			return nil
		}
	}
	c.items = append(c.items, CartItem{
		ProductID:       p.ID,
		ProductName:     p.Name,
		CatalogPrice:    p.SellingPrice,
		Available:       p.Quantity,
		Quantity:        qty,
		PriceOverride:   priceOverride,
		TaxRateOverride: taxOverride,
	})
	return nil
}

// UpdateQty sets the quantity of an existing entry, still stock-guarded.
func (c *Cart) UpdateQty(productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: quantity must be positive", httpx.ErrValidation)
	}
	for i, it := range c.items {
		if it.ProductID == productID {
			if qty > it.Available {
				return &InsufficientStockError{
					ProductID:   it.ProductID,
					ProductName: it.ProductName,
					Requested:   qty,
					Available:   it.Available,
				}
			}
			c.items[i].Quantity = qty
			return nil
		}
	}
	return httpx.ErrNotFound
}

// Remove drops the entry for the product if present.
func (c *Cart) Remove(productID uuid.UUID) {
	for i, it := range c.items {
		if it.ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return
		}
	}
}

// Items returns a copy of the cart entries.
func (c *Cart) Items() []CartItem {
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Empty reports whether the cart has no entries.
func (c *Cart) Empty() bool {
	return len(c.items) == 0
}

// Lines converts cart entries into pricing inputs, in cart order.
func (c *Cart) Lines() []pricing.LineInput {
	lines := make([]pricing.LineInput, 0, len(c.items))
	for _, it := range c.items {
		lines = append(lines, pricing.LineInput{
			CatalogPrice:    it.CatalogPrice,
			OverridePrice:   it.PriceOverride,
			Quantity:        it.Quantity,
			TaxRateOverride: it.TaxRateOverride,
		})
	}
	return lines
}
