package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoundMoney(t *testing.T) {
	assert.True(t, decimal.RequireFromString("10.01").Equal(RoundMoney(decimal.RequireFromString("10.005"))))
	assert.True(t, decimal.RequireFromString("396").Equal(RoundMoney(decimal.RequireFromString("396.000"))))
}

func TestWithinTolerance(t *testing.T) {
	tol := decimal.NewFromFloat(0.01)
	assert.True(t, WithinTolerance(decimal.RequireFromString("2676.00"), decimal.RequireFromString("2676.01"), tol))
	assert.False(t, WithinTolerance(decimal.RequireFromString("2676.00"), decimal.RequireFromString("2676.02"), tol))
	assert.True(t, MoneyEqual(decimal.RequireFromString("1.004"), decimal.RequireFromString("1.00")))
}
