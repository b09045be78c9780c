package fill

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/quantsmith/backtester/order"
)

func TestTotalCost(t *testing.T) {
	t.Parallel()
	f := Fill{
		Side:       order.Buy,
		Price:      decimal.NewFromInt(100),
		Quantity:   decimal.NewFromInt(10),
		Commission: decimal.NewFromInt(1),
	}
	assert.True(t, f.TotalCost().Equal(decimal.NewFromInt(1001)),
		"a buy pays principal plus commission, got %v", f.TotalCost())
}

func TestNetProceeds(t *testing.T) {
	t.Parallel()
	f := Fill{
		Side:       order.Sell,
		Price:      decimal.NewFromInt(100),
		Quantity:   decimal.NewFromInt(10),
		Commission: decimal.NewFromInt(1),
	}
	assert.True(t, f.NetProceeds().Equal(decimal.NewFromInt(999)),
		"a sell receives principal less commission, got %v", f.NetProceeds())
}
