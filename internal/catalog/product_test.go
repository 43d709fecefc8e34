package catalog

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func names(products []Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

func sampleProducts() []Product {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return []Product{
		{ID: 1, Name: "Cedar Soap", Price: decimal.NewFromInt(6), Category: "Soap", Visible: true, InStock: true, Quantity: 3, CreatedAt: base},
		{ID: 2, Name: "amber candle", Price: decimal.NewFromInt(18), Category: "Candles", Visible: true, Featured: true, CreatedAt: base.Add(time.Hour)},
		{ID: 3, Name: "Birch Candle", Price: decimal.NewFromInt(12), Category: "candles", Visible: true, InStock: true, Quantity: 1, CreatedAt: base.Add(2 * time.Hour)},
		{ID: 4, Name: "Hidden Oil", Price: decimal.NewFromInt(9), Category: "Oil", Visible: false, InStock: true, Quantity: 5, CreatedAt: base.Add(3 * time.Hour)},
		{ID: 5, Name: "", Price: decimal.NewFromInt(1), Visible: true},
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		category string
		want     []string
	}{
		{"everything visible and named", "", CategoryAll, []string{"Cedar Soap", "amber candle", "Birch Candle"}},
		{"empty category matches all", "", "", []string{"Cedar Soap", "amber candle", "Birch Candle"}},
		{"search ignores case", "CANDLE", "all", []string{"amber candle", "Birch Candle"}},
		{"category ignores case", "", "CANDLES", []string{"amber candle", "Birch Candle"}},
		{"search and category", "birch", "candles", []string{"Birch Candle"}},
		{"hidden products never match", "oil", "all", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(Filter(sampleProducts(), tt.query, tt.category)))
		})
	}
}

func TestSort(t *testing.T) {
	products := Filter(sampleProducts(), "", CategoryAll)

	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortName, []string{"amber candle", "Birch Candle", "Cedar Soap"}},
		{"unknown", []string{"amber candle", "Birch Candle", "Cedar Soap"}},
		{SortPriceLow, []string{"Cedar Soap", "Birch Candle", "amber candle"}},
		{SortPriceHigh, []string{"amber candle", "Birch Candle", "Cedar Soap"}},
		{SortNewest, []string{"Birch Candle", "amber candle", "Cedar Soap"}},
		{SortOldest, []string{"Cedar Soap", "amber candle", "Birch Candle"}},
		{SortStock, []string{"Cedar Soap", "Birch Candle", "amber candle"}},
		{SortFeatured, []string{"amber candle", "Cedar Soap", "Birch Candle"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			assert.Equal(t, tt.want, names(Sort(products, tt.key)))
		})
	}

	// input order is untouched
	assert.Equal(t, []string{"Cedar Soap", "amber candle", "Birch Candle"}, names(products))
}

func TestFeatured(t *testing.T) {
	assert.Equal(t, []string{"Birch Candle", "Cedar Soap"}, names(Featured(sampleProducts(), 0)))
	assert.Equal(t, []string{"Birch Candle"}, names(Featured(sampleProducts(), 1)))
	assert.Empty(t, Featured(nil, 4))
}
