package portfolio

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/quantsmith/backtester/log"
)

// New returns a portfolio seeded with starting cash
func New(initialCapital decimal.Decimal) (*Portfolio, error) {
	if initialCapital.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInitialCapitalInvalid
	}
	return &Portfolio{
		cash:      initialCapital,
		positions: make(map[string]*Position),
	}, nil
}

// AddPosition buys quantity at price, updating the buy-weighted average
// cost. When the order notional exceeds available cash the quantity is
// clipped to floor(cash/price) and the purchase proceeds at the reduced
// size, a warning is logged rather than an error raised. Returns the
// quantity actually added
func (p *Portfolio) AddPosition(symbol string, quantity, price decimal.Decimal) decimal.Decimal {
	if quantity.LessThanOrEqual(decimal.Zero) || price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if cost := quantity.Mul(price); cost.GreaterThan(p.cash) {
		affordable := p.cash.Div(price).Floor()
		log.Warnf(log.PortfolioMgr, "insufficient cash for %v x %v @ %v, clipping to %v",
			quantity, symbol, price, affordable)
		quantity = affordable
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	pos, ok := p.positions[symbol]
	if !ok {
		pos = &Position{Symbol: symbol}
		p.positions[symbol] = pos
	}
	newQuantity := pos.Quantity.Add(quantity)
	pos.AverageCost = pos.AverageCost.Mul(pos.Quantity).
		Add(price.Mul(quantity)).
		Div(newQuantity)
	pos.Quantity = newQuantity
	pos.MarketValue = pos.Quantity.Mul(price)
	p.cash = p.cash.Sub(quantity.Mul(price))
	return quantity
}

// ReducePosition sells quantity at price, clipping to the held amount so
// the book can never go short, and removes the position entry at zero.
// Returns the realised profit and loss of the sold portion
func (p *Portfolio) ReducePosition(symbol string, quantity, price decimal.Decimal) decimal.Decimal {
	pos, ok := p.positions[symbol]
	if !ok || quantity.LessThanOrEqual(decimal.Zero) || price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	if quantity.GreaterThan(pos.Quantity) {
		log.Warnf(log.PortfolioMgr, "sell of %v %v exceeds holding %v, clipping",
			quantity, symbol, pos.Quantity)
		quantity = pos.Quantity
	}
	realised := price.Sub(pos.AverageCost).Mul(quantity)
	pos.Quantity = pos.Quantity.Sub(quantity)
	p.cash = p.cash.Add(quantity.Mul(price))
	if pos.Quantity.IsZero() {
		delete(p.positions, symbol)
	} else {
		pos.MarketValue = pos.Quantity.Mul(price)
	}
	return realised
}

// ChargeFee deducts a commission or fee from cash, flooring at zero so
// the invariant cash >= 0 holds even on degenerate inputs
func (p *Portfolio) ChargeFee(amount decimal.Decimal) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return
	}
	p.cash = p.cash.Sub(amount)
	if p.cash.IsNegative() {
		log.Warnf(log.PortfolioMgr, "fee %v exceeded remaining cash, flooring at zero", amount)
		p.cash = decimal.Zero
	}
}

// UpdateMarketValue refreshes every held symbol's market value from the
// latest prices. Symbols missing from the map carry their last known
// value forward
func (p *Portfolio) UpdateMarketValue(prices map[string]decimal.Decimal) {
	for symbol, pos := range p.positions {
		price, ok := prices[symbol]
		if !ok || price.LessThanOrEqual(decimal.Zero) {
			continue
		}
		pos.MarketValue = pos.Quantity.Mul(price)
	}
}

// Cash returns the available cash balance
func (p *Portfolio) Cash() decimal.Decimal {
	return p.cash
}

// TotalValue returns cash plus the market value of every position
func (p *Portfolio) TotalValue() decimal.Decimal {
	total := p.cash
	for _, pos := range p.positions {
		total = total.Add(pos.MarketValue)
	}
	return total
}

// Position returns a copy of the holding for a symbol
func (p *Portfolio) Position(symbol string) (Position, error) {
	pos, ok := p.positions[symbol]
	if !ok {
		return Position{}, ErrNoHoldings
	}
	return *pos, nil
}

// Quantity returns the held quantity for a symbol, zero when flat
func (p *Portfolio) Quantity(symbol string) decimal.Decimal {
	if pos, ok := p.positions[symbol]; ok {
		return pos.Quantity
	}
	return decimal.Zero
}

// Holdings returns copies of all open positions sorted by symbol
func (p *Portfolio) Holdings() []Position {
	out := make([]Position, 0, len(p.positions))
	for _, pos := range p.positions {
		out = append(out, *pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// GetWeights returns each held symbol's fraction of total portfolio
// value. An empty map is returned when the portfolio has no value
func (p *Portfolio) GetWeights() map[string]decimal.Decimal {
	weights := make(map[string]decimal.Decimal, len(p.positions))
	total := p.TotalValue()
	if total.LessThanOrEqual(decimal.Zero) {
		return weights
	}
	for symbol, pos := range p.positions {
		weights[symbol] = pos.MarketValue.Div(total)
	}
	return weights
}
