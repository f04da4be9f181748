package models

import "errors"

// TierStatus represents the sale status of a ticket tier
type TierStatus string

const (
	TierActive TierStatus = "active"
	TierSold   TierStatus = "sold"
)

// TicketTier represents a purchasable ticket class for an event
// (e.g. General, VIP) with its own price and stock.
type TicketTier struct {
	ID          string     `json:"id"`
	ServiceID   string     `json:"serviceId"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Price       float64    `json:"price"`
	SalePrice   float64    `json:"salePrice,omitempty"`
	Qty         int        `json:"qty"`
	SoldQty     int        `json:"soldQty"`
	Status      TierStatus `json:"status"`
}

// Available returns how many tickets can still be sold for the tier.
func (t *TicketTier) Available() int {
	if t.Status == TierSold {
		return 0
	}
	avail := t.Qty - t.SoldQty
	if avail < 0 {
		return 0
	}
	return avail
}

// EffectivePrice returns the sale price when one is set, else the list price.
func (t *TicketTier) EffectivePrice() float64 {
	if t.SalePrice > 0 && t.SalePrice < t.Price {
		return t.SalePrice
	}
	return t.Price
}

// TicketLine is a derived selection of tickets from a single tier. It is
// recomputed whenever the quantity changes and is never persisted.
type TicketLine struct {
	TierID         string  `json:"tierId"`
	Name           string  `json:"name"`
	Quantity       int     `json:"quantity"`
	PricePerTicket float64 `json:"pricePerTicket"`
	TotalPrice     float64 `json:"totalPrice"`
}

// NewTicketLine derives a ticket line from a tier and a requested quantity.
// The quantity is clamped to [0, tier.Available()].
func NewTicketLine(tier *TicketTier, quantity int) TicketLine {
	if quantity < 0 {
		quantity = 0
	}
	if avail := tier.Available(); quantity > avail {
		quantity = avail
	}
	price := tier.EffectivePrice()
	return TicketLine{
		TierID:         tier.ID,
		Name:           tier.Name,
		Quantity:       quantity,
		PricePerTicket: price,
		TotalPrice:     price * float64(quantity),
	}
}

// Validate validates the ticket line
func (l *TicketLine) Validate() error {
	if l.TierID == "" {
		return errors.New("ticket line tier ID is required")
	}
	if l.Quantity < 0 {
		return errors.New("ticket line quantity cannot be negative")
	}
	if l.TotalPrice < 0 {
		return errors.New("ticket line total cannot be negative")
	}
	return nil
}

// Subtotal sums the line totals of a selection.
func Subtotal(lines []TicketLine) float64 {
	var sum float64
	for _, l := range lines {
		sum += l.TotalPrice
	}
	return sum
}

// TotalItems sums the ticket quantities of a selection.
func TotalItems(lines []TicketLine) int {
	var n int
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}
