// Package currency converts uploaded prices into the reference currency using
// a published exchange-rate table (units of each currency per one reference
// unit, as served by Open Exchange Rates style endpoints).
package currency

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownCurrency means the rate table has no entry for the code.
	ErrUnknownCurrency = errors.New("unknown currency")
	// ErrUpstreamUnavailable means the rate table could not be obtained.
	ErrUpstreamUnavailable = errors.New("exchange rate source unavailable")
)

// RateTable maps upper-case ISO 4217 codes to units per reference unit.
type RateTable map[string]decimal.Decimal

// RateSource yields the current rate table.
type RateSource interface {
	Rates(ctx context.Context) (RateTable, error)
}

// Converter turns foreign-currency amounts into reference units.
type Converter struct {
	source RateSource
}

func NewConverter(source RateSource) *Converter {
	return &Converter{source: source}
}

// Convert divides amount by the code's rate and truncates toward zero.
func (c *Converter) Convert(ctx context.Context, amount int64, code string) (int64, error) {
	rate, err := c.rate(ctx, code)
	if err != nil {
		return 0, err
	}
	return divide(amount, rate), nil
}

// ConvertAll converts every amount against a single rate lookup.
func (c *Converter) ConvertAll(ctx context.Context, amounts []int64, code string) ([]int64, error) {
	rate, err := c.rate(ctx, code)
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(amounts))
	for i, a := range amounts {
		out[i] = divide(a, rate)
	}
	return out, nil
}

func (c *Converter) rate(ctx context.Context, code string) (decimal.Decimal, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	table, err := c.source.Rates(ctx)
	if err != nil {
		if errors.Is(err, ErrUpstreamUnavailable) {
			return decimal.Decimal{}, err
		}
		return decimal.Decimal{}, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	rate, ok := table[code]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrUnknownCurrency, code)
	}
	if !rate.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: non-positive rate %s for %s", ErrUpstreamUnavailable, rate, code)
	}
	return rate, nil
}

func divide(amount int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Div(rate).Truncate(0).IntPart()
}
