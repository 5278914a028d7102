package canvass

import (
	"fmt"
	"maps"
	"strings"

	"github.com/mamadbah2/procurement/internal/domain/models"
)

// Ledger keeps supplier quotes in the order suppliers were first entered.
// Prices may only be recorded against the line items the ledger was built with.
type Ledger struct {
	items  map[int]bool
	quotes []models.SupplierQuote
}

// NewLedger returns an empty quote ledger for the given line item IDs.
func NewLedger(itemIDs ...int) *Ledger {
	items := make(map[int]bool, len(itemIDs))
	for _, id := range itemIDs {
		items[id] = true
	}
	return &Ledger{items: items}
}

// Upsert adds a supplier quote or replaces the one with the same supplier ID.
// A quote pricing an unknown line item is rejected as a whole.
func (l *Ledger) Upsert(q models.SupplierQuote) error {
	for id := range q.Prices {
		if !l.items[id] {
			return fmt.Errorf("%w: %d", ErrUnknownItem, id)
		}
	}

	q.Prices = maps.Clone(q.Prices)
	if q.Prices == nil {
		q.Prices = make(map[int]string)
	}

	for i := range l.quotes {
		if l.quotes[i].SupplierID == q.SupplierID {
			l.quotes[i] = q
			return nil
		}
	}
	l.quotes = append(l.quotes, q)
	return nil
}

// SetPrice records the raw price text a supplier gave for one item.
func (l *Ledger) SetPrice(supplierID string, itemID int, raw string) error {
	if !l.items[itemID] {
		return fmt.Errorf("%w: %d", ErrUnknownItem, itemID)
	}
	for i := range l.quotes {
		if l.quotes[i].SupplierID == supplierID {
			l.quotes[i].Prices[itemID] = raw
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownSupplier, supplierID)
}

// Remove drops a supplier's quote.
func (l *Ledger) Remove(supplierID string) error {
	for i := range l.quotes {
		if l.quotes[i].SupplierID == supplierID {
			l.quotes = append(l.quotes[:i], l.quotes[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownSupplier, supplierID)
}

// HasPricedQuote reports whether at least one quote names its supplier and
// carries a positive price for one of the ledger's line items.
func (l *Ledger) HasPricedQuote() bool {
	for _, q := range l.quotes {
		if !named(q) {
			continue
		}
		for id, raw := range q.Prices {
			if l.items[id] && ParsePrice(raw) > 0 {
				return true
			}
		}
	}
	return false
}

// Quotes returns deep copies of the quotes in entry order.
func (l *Ledger) Quotes() []models.SupplierQuote {
	out := make([]models.SupplierQuote, len(l.quotes))
	for i, q := range l.quotes {
		q.Prices = maps.Clone(q.Prices)
		out[i] = q
	}
	return out
}

func named(q models.SupplierQuote) bool {
	return strings.TrimSpace(q.SupplierName) != ""
}
