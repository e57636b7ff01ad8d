package shipping

import (
	"context"
	"errors"
	"sort"

	"github.com/shopspring/decimal"
)

// Provider errors; adapters wrap them with %w
var (
	ErrProviderUnavailable   = errors.New("shipping: courier provider unavailable")
	ErrProviderRequestFailed = errors.New("shipping: courier provider request failed")
	ErrProviderAuth          = errors.New("shipping: courier provider rejected credentials")
)

// Option is one courier quote returned by a serviceability check
type Option struct {
	CourierID             int             `json:"courierId"`
	CourierName           string          `json:"courierName"`
	Rate                  decimal.Decimal `json:"rate"`
	EstimatedDeliveryDays int             `json:"estimatedDeliveryDays"`
}

// IsZero reports whether no option is set
func (o Option) IsZero() bool {
	return o.CourierID == 0 && o.CourierName == ""
}

// Query asks which couriers serve a route for a parcel
type Query struct {
	PickupPostcode   string
	DeliveryPostcode string
	WeightKg         decimal.Decimal
	COD              bool
}

// CourierProvider answers serviceability queries. Options are returned in
// provider order.
type CourierProvider interface {
	Serviceability(ctx context.Context, q Query) ([]Option, error)
}

// Cheapest returns the index of the lowest-rate option. Ties go to the
// earliest option in the slice. It returns -1 for an empty slice.
func Cheapest(options []Option) int {
	best := -1
	for i, o := range options {
		if best < 0 || o.Rate.LessThan(options[best].Rate) {
			best = i
		}
	}
	return best
}

// SortByRate returns a copy ordered by ascending rate, stable on ties
func SortByRate(options []Option) []Option {
	out := make([]Option, len(options))
	copy(out, options)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rate.LessThan(out[j].Rate)
	})
	return out
}

// FindByCourier returns the option with the given courier id
func FindByCourier(options []Option, courierID int) (Option, bool) {
	for _, o := range options {
		if o.CourierID == courierID {
			return o, true
		}
	}
	return Option{}, false
}
