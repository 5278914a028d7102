package canvass

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/procurement/internal/domain/models"
)

func TestLedger_UpsertKeepsEntryOrder(t *testing.T) {
	l := NewLedger(1, 2)
	require.NoError(t, l.Upsert(models.SupplierQuote{SupplierID: "B", SupplierName: "Bravo"}))
	require.NoError(t, l.Upsert(models.SupplierQuote{SupplierID: "A", SupplierName: "Alpha"}))
	require.NoError(t, l.Upsert(models.SupplierQuote{SupplierID: "B", SupplierName: "Bravo Trading"}))

	quotes := l.Quotes()
	require.Len(t, quotes, 2)
	assert.Equal(t, "B", quotes[0].SupplierID)
	assert.Equal(t, "Bravo Trading", quotes[0].SupplierName)
	assert.NotNil(t, quotes[0].Prices)
}

func TestLedger_SetPriceAndRemove(t *testing.T) {
	l := NewLedger(1)
	require.NoError(t, l.Upsert(models.SupplierQuote{SupplierID: "A", SupplierName: "Alpha"}))

	require.NoError(t, l.SetPrice("A", 1, "125.00"))
	assert.Equal(t, "125.00", l.Quotes()[0].Prices[1])
	assert.ErrorIs(t, l.SetPrice("Z", 1, "1"), ErrUnknownSupplier)

	require.NoError(t, l.Remove("A"))
	assert.Empty(t, l.Quotes())
	assert.ErrorIs(t, l.Remove("A"), ErrUnknownSupplier)
}

func TestLedger_RejectsUnknownItems(t *testing.T) {
	l := NewLedger(1, 2)

	err := l.Upsert(models.SupplierQuote{SupplierID: "Z", SupplierName: "Zed", Prices: map[int]string{1: "5", 99: "10"}})
	assert.ErrorIs(t, err, ErrUnknownItem)
	assert.Empty(t, l.Quotes(), "a rejected quote is not stored")

	require.NoError(t, l.Upsert(models.SupplierQuote{SupplierID: "Z", SupplierName: "Zed"}))
	assert.ErrorIs(t, l.SetPrice("Z", 42, "7"), ErrUnknownItem)
	assert.Empty(t, l.Quotes()[0].Prices)
	assert.False(t, l.HasPricedQuote())
}

func TestLedger_QuotesAreCopies(t *testing.T) {
	prices := map[int]string{1: "10"}
	l := NewLedger(1)
	require.NoError(t, l.Upsert(models.SupplierQuote{SupplierID: "A", SupplierName: "Alpha", Prices: prices}))

	prices[1] = "999"
	quotes := l.Quotes()
	quotes[0].Prices[1] = "1"

	assert.Equal(t, "10", l.Quotes()[0].Prices[1])
}

func TestLedger_HasPricedQuote(t *testing.T) {
	tests := []struct {
		name  string
		quote models.SupplierQuote
		want  bool
	}{
		{"named and priced", models.SupplierQuote{SupplierID: "A", SupplierName: "Alpha", Prices: map[int]string{1: "5"}}, true},
		{"blank name", models.SupplierQuote{SupplierID: "A", SupplierName: "  ", Prices: map[int]string{1: "5"}}, false},
		{"no positive price", models.SupplierQuote{SupplierID: "A", SupplierName: "Alpha", Prices: map[int]string{1: "0", 2: "x"}}, false},
		{"no prices", models.SupplierQuote{SupplierID: "A", SupplierName: "Alpha"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLedger(1, 2)
			require.NoError(t, l.Upsert(tt.quote))
			assert.Equal(t, tt.want, l.HasPricedQuote())
		})
	}
}
