package shipping

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
)

func opt(id int, rate string) Option {
	return Option{CourierID: id, CourierName: "C", Rate: decimal.RequireFromString(rate)}
}

func TestCheapest(t *testing.T) {
	tests := []struct {
		name    string
		options []Option
		want    int
	}{
		{name: "empty", options: nil, want: -1},
		{name: "single", options: []Option{opt(1, "80")}, want: 0},
		{name: "lowest wins", options: []Option{opt(1, "120"), opt(2, "80"), opt(3, "95")}, want: 1},
		{name: "tie goes to first", options: []Option{opt(1, "120"), opt(2, "80"), opt(3, "80")}, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cheapest(tt.options)
			assert.Equal(t, tt.want, got)
			if got >= 0 {
				for _, o := range tt.options {
					assert.True(t, tt.options[got].Rate.LessThanOrEqual(o.Rate))
				}
			}
		})
	}
}

func TestSortByRate(t *testing.T) {
	in := []Option{opt(1, "90"), opt(2, "50"), opt(3, "90"), opt(4, "50")}
	out := SortByRate(in)
	assert.Equal(t, []int{2, 4, 1, 3}, []int{out[0].CourierID, out[1].CourierID, out[2].CourierID, out[3].CourierID})
	assert.Equal(t, 1, in[0].CourierID)

	found, ok := FindByCourier(in, 3)
	assert.True(t, ok)
	assert.Equal(t, 3, found.CourierID)
	_, ok = FindByCourier(in, 9)
	assert.False(t, ok)
}

func TestEstimateWeight(t *testing.T) {
	item := func(qty int, weight string) valueobject.LineItem {
		w := decimal.Zero
		if weight != "" {
			w = decimal.RequireFromString(weight)
		}
		return valueobject.LineItem{ProductID: uuid.New(), Quantity: qty, WeightKg: w}
	}

	tests := []struct {
		name  string
		items []valueobject.LineItem
		want  string
	}{
		{name: "no items uses minimum", items: nil, want: "0.5"},
		{name: "heuristic per unit", items: []valueobject.LineItem{item(2, ""), item(1, "")}, want: "1.5"},
		{name: "real weights when all known", items: []valueobject.LineItem{item(2, "0.3"), item(1, "1.2")}, want: "1.8"},
		{name: "falls back when any weight unknown", items: []valueobject.LineItem{item(2, "0.3"), item(1, "")}, want: "1.5"},
		{name: "light parcel floors at minimum", items: []valueobject.LineItem{item(1, "0.1")}, want: "0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateWeight(tt.items)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}
