package services

import (
	"errors"
	"strings"

	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/core/domain/model/order"
	"campuseats/internal/pkg/errs"
)

// CartLine is one line of a paid multi-restaurant cart.
type CartLine struct {
	RestaurantID   kernel.UUID
	RestaurantName string
	ItemID         string
	Name           string
	Price          kernel.Money
	Quantity       int
}

// SettlementGroup is the part of a cart served by one restaurant. Each group
// becomes at most one order.
type SettlementGroup struct {
	RestaurantID   kernel.UUID
	RestaurantName string
	Items          []order.Item
}

// Quote is the priced breakdown of a group.
type Quote struct {
	Subtotal      kernel.Money
	ServiceCharge kernel.Money
	DeliveryFee   kernel.Money
	Total         kernel.Money
}

// SettlementPlanner turns a paid cart into per-restaurant groups and prices
// them with platform-wide charges. Restaurant-specific delivery fees are not
// applied.
type SettlementPlanner struct {
	pricing order.Pricing
}

// NewSettlementPlanner validates the platform charges.
func NewSettlementPlanner(pricing order.Pricing) (SettlementPlanner, error) {
	if err := errors.Join(pricing.ServiceCharge.Validate(), pricing.DeliveryFee.Validate()); err != nil {
		return SettlementPlanner{}, err
	}
	return SettlementPlanner{pricing: pricing}, nil
}

// Pricing returns the platform charges applied to every order.
func (p SettlementPlanner) Pricing() order.Pricing {
	return p.pricing
}

// Group splits lines by restaurant, keeping the order in which restaurants
// first appear. Every line is validated; one invalid line fails the cart
// because the gateway charged for all of them.
func (p SettlementPlanner) Group(lines []CartLine) ([]SettlementGroup, error) {
	if len(lines) == 0 {
		return nil, errs.NewValueIsRequiredError("cart")
	}

	index := make(map[kernel.UUID]int)
	groups := make([]SettlementGroup, 0)

	for _, line := range lines {
		if err := line.RestaurantID.Validate(); err != nil {
			return nil, err
		}
		item, err := order.NewItem(line.ItemID, line.Name, line.Price, line.Quantity)
		if err != nil {
			return nil, err
		}

		i, ok := index[line.RestaurantID]
		if !ok {
			i = len(groups)
			index[line.RestaurantID] = i
			groups = append(groups, SettlementGroup{RestaurantID: line.RestaurantID})
		}
		if groups[i].RestaurantName == "" {
			groups[i].RestaurantName = strings.TrimSpace(line.RestaurantName)
		}
		groups[i].Items = append(groups[i].Items, item)
	}

	return groups, nil
}

// Quote prices a group: total = subtotal + service charge + delivery fee.
func (p SettlementPlanner) Quote(g SettlementGroup) (Quote, error) {
	subtotal, err := order.Subtotal(g.Items)
	if err != nil {
		return Quote{}, err
	}
	total, err := subtotal.Add(p.pricing.ServiceCharge)
	if err != nil {
		return Quote{}, err
	}
	if total, err = total.Add(p.pricing.DeliveryFee); err != nil {
		return Quote{}, err
	}

	return Quote{
		Subtotal:      subtotal,
		ServiceCharge: p.pricing.ServiceCharge,
		DeliveryFee:   p.pricing.DeliveryFee,
		Total:         total,
	}, nil
}

// QuoteCart prices every group of lines; the gateway amount is compared with
// its grand total.
func (p SettlementPlanner) QuoteCart(lines []CartLine) (kernel.Money, error) {
	groups, err := p.Group(lines)
	if err != nil {
		return 0, err
	}
	grand := kernel.Zero
	for _, g := range groups {
		q, quoteErr := p.Quote(g)
		if quoteErr != nil {
			return 0, quoteErr
		}
		if grand, err = grand.Add(q.Total); err != nil {
			return 0, err
		}
	}
	return grand, nil
}
