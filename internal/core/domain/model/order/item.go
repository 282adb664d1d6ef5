package order

import (
	"errors"
	"strings"

	"campuseats/internal/core/domain/model/kernel"
	"campuseats/internal/pkg/errs"
)

const (
	// MaxItemQuantity bounds a single cart line.
	MaxItemQuantity = 99
)

// Item is a line of the order captured at creation time. Later menu changes
// never alter it.
type Item struct {
	MenuItemID string       `json:"itemId"`
	Name       string       `json:"name"`
	UnitPrice  kernel.Money `json:"price"`
	Quantity   int          `json:"quantity"`
}

// NewItem validates a snapshot line.
func NewItem(menuItemID, name string, unitPrice kernel.Money, quantity int) (Item, error) {
	item := Item{
		MenuItemID: strings.TrimSpace(menuItemID),
		Name:       strings.TrimSpace(name),
		UnitPrice:  unitPrice,
		Quantity:   quantity,
	}
	if err := item.Validate(); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Validate checks name, price and quantity bounds.
func (i Item) Validate() error {
	var err error
	if i.Name == "" {
		err = errors.Join(err, errs.NewValueIsRequiredError("item name"))
	}
	if vErr := i.UnitPrice.Validate(); vErr != nil {
		err = errors.Join(err, vErr)
	}
	if i.Quantity < 1 || i.Quantity > MaxItemQuantity {
		err = errors.Join(err, errs.NewValueIsOutOfRangeError("quantity", i.Quantity, 1, MaxItemQuantity))
	}
	return err
}

// LineTotal returns unit price times quantity.
func (i Item) LineTotal() (kernel.Money, error) {
	return i.UnitPrice.Times(i.Quantity)
}

// Subtotal sums the line totals of items.
func Subtotal(items []Item) (kernel.Money, error) {
	subtotal := kernel.Zero
	for _, item := range items {
		line, err := item.LineTotal()
		if err != nil {
			return 0, err
		}
		if subtotal, err = subtotal.Add(line); err != nil {
			return 0, err
		}
	}
	return subtotal, nil
}
