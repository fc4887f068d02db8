// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package catalog

import "github.com/aws-samples/sample-dat309-agentic-workflows-aurora-mcp/internal/apperr"

// PricingPolicy carries the configuration inputs to order pricing (spec
// §4.5 step 5), resolved once from config.Config and passed to every
// PlaceOrder call rather than read from a global.
type PricingPolicy struct {
	TaxRate               float64
	FreeShippingThreshold Money
	FlatShipping          Money
}

// OrderItemRequest is one line of a Place request before pricing/locking.
type OrderItemRequest struct {
	ProductID string
	Size      string
	Quantity  int
}

// resolvedLine is one OrderItemRequest after its product row has been
// locked and validated.
type resolvedLine struct {
	product  Product
	size     string
	quantity int
}

// validateLine checks quantity and inventory for one locked product row,
// per spec §4.5 steps 2-3.
func validateLine(p Product, requestedSize string, quantity int) error {
	if quantity < 1 {
		return apperr.InvalidQuantity()
	}
	if p.Inventory < quantity {
		return apperr.InsufficientInventory(p.ProductID, quantity, p.Inventory)
	}
	if requestedSize != "" && len(p.AvailableSizes) > 0 {
		found := false
		for _, s := range p.AvailableSizes {
			if s == requestedSize {
				found = true
				break
			}
		}
		if !found {
			return apperr.InsufficientInventory(p.ProductID, quantity, 0)
		}
	}
	return nil
}

// priceOrder computes subtotal/tax/shipping/total from resolved lines and
// a pricing policy, exactly per spec §4.5 steps 4-5: subtotal is the exact
// integer-cents sum of unit_price*quantity (no rounding needed, since
// Money is already integer cents), tax is half-up rounded to the cent,
// shipping is flat or waived at the free-shipping threshold.
func priceOrder(lines []resolvedLine, policy PricingPolicy) (items []OrderItem, subtotal, tax, shipping, total Money) {
	for _, l := range lines {
		unit := l.product.Price
		items = append(items, OrderItem{
			ProductID: l.product.ProductID,
			Size:      l.size,
			Quantity:  l.quantity,
			UnitPrice: unit,
		})
		subtotal = subtotal.Add(unit.Mul(l.quantity))
	}

	tax = Money(roundHalfUpCents(float64(subtotal) * policy.TaxRate))
	if subtotal.Float64() >= policy.FreeShippingThreshold.Float64() {
		shipping = 0
	} else {
		shipping = policy.FlatShipping
	}
	total = subtotal.Add(tax).Add(shipping)
	return items, subtotal, tax, shipping, total
}

// roundHalfUpCents rounds a fractional-cent amount (subtotal*rate, already
// in cents) half-up to the nearest whole cent.
func roundHalfUpCents(cents float64) int64 {
	if cents < 0 {
		return -int64(-cents + 0.5)
	}
	return int64(cents + 0.5)
}
