package canvass

import (
	"math"
	"strconv"
	"strings"

	"github.com/mamadbah2/procurement/internal/domain/models"
)

var currencyPrefixes = []string{"PHP", "Php", "₱", "P", "$"}

// ParsePrice converts an entered price into a positive amount. Blank,
// unparseable, zero and negative inputs all yield 0, meaning "no bid".
func ParsePrice(raw string) float64 {
	str := strings.TrimSpace(raw)
	for _, prefix := range currencyPrefixes {
		if strings.HasPrefix(str, prefix) {
			str = strings.TrimSpace(strings.TrimPrefix(str, prefix))
			break
		}
	}
	str = strings.ReplaceAll(str, ",", "")
	if str == "" {
		return 0
	}

	value, err := strconv.ParseFloat(str, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return 0
	}
	return value
}

// ItemAward is the lowest bid found for one line item.
type ItemAward struct {
	ItemID       int     `json:"item_id"`
	Description  string  `json:"description"`
	Quantity     float64 `json:"quantity"`
	SupplierID   string  `json:"supplier_id,omitempty"`
	SupplierName string  `json:"supplier_name,omitempty"`
	UnitPrice    float64 `json:"unit_price"`
	Total        float64 `json:"total"`
}

// HasBid reports whether any supplier priced the item.
func (a ItemAward) HasBid() bool {
	return a.SupplierID != ""
}

// SupplierTotal is one supplier's grand total across every line item.
type SupplierTotal struct {
	SupplierID   string  `json:"supplier_id"`
	SupplierName string  `json:"supplier_name"`
	Total        float64 `json:"total"`
	ItemsBid     int     `json:"items_bid"`
}

// Recommendation is the abstract of awards derived from a set of quotes.
type Recommendation struct {
	Items     []ItemAward     `json:"items"`
	Suppliers []SupplierTotal `json:"suppliers"`
	Awardee   *SupplierTotal  `json:"awardee,omitempty"`
}

// Compute derives per-item winners, supplier grand totals and the overall
// awardee. Equal prices go to the lexicographically smallest supplier ID so the
// result does not depend on quote order. Quotes without a supplier name are
// totalled but never win an item or the award.
func Compute(items []models.LineItem, quotes []models.SupplierQuote) Recommendation {
	rec := Recommendation{
		Items:     make([]ItemAward, 0, len(items)),
		Suppliers: make([]SupplierTotal, 0, len(quotes)),
	}

	for _, item := range items {
		award := ItemAward{ItemID: item.ID, Description: item.Description, Quantity: quantity(item)}
		for _, q := range quotes {
			if !named(q) {
				continue
			}
			price := ParsePrice(q.Prices[item.ID])
			if price <= 0 {
				continue
			}
			if !award.HasBid() || price < award.UnitPrice ||
				(price == award.UnitPrice && q.SupplierID < award.SupplierID) {
				award.SupplierID = q.SupplierID
				award.SupplierName = q.SupplierName
				award.UnitPrice = price
			}
		}
		award.Total = award.UnitPrice * award.Quantity
		rec.Items = append(rec.Items, award)
	}

	for _, q := range quotes {
		st := SupplierTotal{SupplierID: q.SupplierID, SupplierName: q.SupplierName}
		for _, item := range items {
			price := ParsePrice(q.Prices[item.ID])
			if price <= 0 {
				continue
			}
			st.Total += price * quantity(item)
			st.ItemsBid++
		}
		rec.Suppliers = append(rec.Suppliers, st)
	}

	for i := range rec.Suppliers {
		st := rec.Suppliers[i]
		if st.Total <= 0 || strings.TrimSpace(st.SupplierName) == "" {
			continue
		}
		if rec.Awardee == nil || st.Total < rec.Awardee.Total ||
			(st.Total == rec.Awardee.Total && st.SupplierID < rec.Awardee.SupplierID) {
			awardee := st
			rec.Awardee = &awardee
		}
	}

	return rec
}

func quantity(item models.LineItem) float64 {
	if item.Quantity < 0 {
		return 0
	}
	return item.Quantity
}
