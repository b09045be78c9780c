package data

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quantsmith/backtester/common"
)

var (
	// ErrNoData is returned when a panel holds nothing for a request
	ErrNoData = errors.New("no data")
	// ErrMisalignedPanels is returned when two panels that must share a
	// shape do not
	ErrMisalignedPanels = errors.New("panels are misaligned")
)

// Panel is an in-memory date x symbol matrix of decimal values, the
// shape shared by price, volume and signal data. Dates are kept sorted
// ascending. A Panel is not safe for concurrent mutation
type Panel struct {
	dates  []time.Time
	values map[int64]map[string]decimal.Decimal
}

// NewPanel returns an empty panel
func NewPanel() *Panel {
	return &Panel{
		values: make(map[int64]map[string]decimal.Decimal),
	}
}

// Set stores a value for a date and symbol, inserting the date into the
// ordered index on first sight
func (p *Panel) Set(date time.Time, symbol string, value decimal.Decimal) error {
	if p == nil {
		return common.ErrNilPointer
	}
	if date.IsZero() {
		return common.ErrDateUnset
	}
	key := date.UnixNano()
	row, ok := p.values[key]
	if !ok {
		row = make(map[string]decimal.Decimal)
		p.values[key] = row
		idx := sort.Search(len(p.dates), func(i int) bool {
			return !p.dates[i].Before(date)
		})
		p.dates = append(p.dates, time.Time{})
		copy(p.dates[idx+1:], p.dates[idx:])
		p.dates[idx] = date
	}
	row[symbol] = value
	return nil
}

// Value returns the stored value for a date and symbol if present
func (p *Panel) Value(date time.Time, symbol string) (decimal.Decimal, bool) {
	row, ok := p.values[date.UnixNano()]
	if !ok {
		return decimal.Zero, false
	}
	v, ok := row[symbol]
	return v, ok
}

// Row returns a copy of all values stored for a date
func (p *Panel) Row(date time.Time) map[string]decimal.Decimal {
	row := p.values[date.UnixNano()]
	out := make(map[string]decimal.Decimal, len(row))
	for k, v := range row {
		out[k] = v
	}
	return out
}

// Dates returns the ordered dates held by the panel
func (p *Panel) Dates() []time.Time {
	out := make([]time.Time, len(p.dates))
	copy(out, p.dates)
	return out
}

// DatesBetween returns the ordered dates within [start, end] inclusive.
// A zero start or end leaves that side unbounded
func (p *Panel) DatesBetween(start, end time.Time) []time.Time {
	var out []time.Time
	for i := range p.dates {
		if !start.IsZero() && p.dates[i].Before(start) {
			continue
		}
		if !end.IsZero() && p.dates[i].After(end) {
			break
		}
		out = append(out, p.dates[i])
	}
	return out
}

// Symbols returns the sorted set of symbols seen across all dates
func (p *Panel) Symbols() []string {
	seen := make(map[string]struct{})
	for _, row := range p.values {
		for s := range row {
			seen[s] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of dates held
func (p *Panel) Len() int {
	return len(p.dates)
}

// Series returns the value series for one symbol over the panel's dates,
// skipping dates where the symbol is absent
func (p *Panel) Series(symbol string) ([]time.Time, []decimal.Decimal) {
	var dates []time.Time
	var values []decimal.Decimal
	for i := range p.dates {
		if v, ok := p.Value(p.dates[i], symbol); ok {
			dates = append(dates, p.dates[i])
			values = append(values, v)
		}
	}
	return dates, values
}

// Snapshot is a read-only view of one day's market, the only market data
// the broker ever sees
type Snapshot struct {
	Date    time.Time
	Prices  map[string]decimal.Decimal
	Volumes map[string]decimal.Decimal
}

// SnapshotAt combines one day's rows of a price and an optional volume
// panel into a snapshot
func SnapshotAt(prices, volumes *Panel, date time.Time) (*Snapshot, error) {
	if prices == nil {
		return nil, fmt.Errorf("%w: price panel required", ErrNoData)
	}
	snap := &Snapshot{
		Date:    date,
		Prices:  prices.Row(date),
		Volumes: make(map[string]decimal.Decimal),
	}
	if len(snap.Prices) == 0 {
		return nil, fmt.Errorf("%w for %v", ErrNoData, date)
	}
	if volumes != nil {
		snap.Volumes = volumes.Row(date)
	}
	return snap, nil
}

// ValidateAlignment ensures the signal panel only references dates known
// to the price panel, a malformed signal panel is a structural failure
func ValidateAlignment(prices, signals *Panel) error {
	if prices == nil || signals == nil {
		return nil
	}
	for _, d := range signals.Dates() {
		if _, ok := prices.values[d.UnixNano()]; !ok {
			return fmt.Errorf("%w: signal date %v missing from prices", ErrMisalignedPanels, d)
		}
	}
	return nil
}
