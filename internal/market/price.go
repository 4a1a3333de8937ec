package market

import (
	"fmt"

	"PredictLedger/internal/event"
	"PredictLedger/internal/math"
)

// YesPrice returns the YES probability in PricePrecision units:
// no_liquidity / (yes_liquidity + no_liquidity), floored.
func (m *Market) YesPrice() (uint64, error) {
	return m.price(m.NoLiquidity)
}

// NoPrice returns the NO probability in PricePrecision units.
func (m *Market) NoPrice() (uint64, error) {
	return m.price(m.YesLiquidity)
}

// Price returns the price of the given side.
func (m *Market) Price(side event.Side) (uint64, error) {
	switch side {
	case event.SideYes:
		return m.YesPrice()
	case event.SideNo:
		return m.NoPrice()
	default:
		return 0, fmt.Errorf("market %s: side %v: %w", m.ID, side, ErrInvalidTrade)
	}
}

func (m *Market) price(numerator uint64) (uint64, error) {
	total, err := math.CheckedAdd(m.YesLiquidity, m.NoLiquidity)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return PricePrecision / 2, nil // 50% if no liquidity
	}
	return math.MulDiv(numerator, PricePrecision, total, math.RoundDown)
}

// EffectiveBuyPrice is the average per-share price a buy would pay, in
// PricePrecision units.
func (m *Market) EffectiveBuyPrice(side event.Side, grossAmount uint64) (uint64, error) {
	quote, err := m.QuoteBuy(side, grossAmount)
	if err != nil {
		return 0, err
	}
	return math.MulDiv(grossAmount, PricePrecision, quote.Shares, math.RoundDown)
}

// EffectiveSellPrice is the average per-share price a sell would
// receive, in PricePrecision units.
func (m *Market) EffectiveSellPrice(side event.Side, shares uint64) (uint64, error) {
	quote, err := m.QuoteSell(side, shares)
	if err != nil {
		return 0, err
	}
	return math.MulDiv(quote.NetPayout, PricePrecision, shares, math.RoundDown)
}

// BuyImpact simulates a buy on a scratch copy and returns the
// post-trade (yes_price, no_price). Never mutates the market.
func (m *Market) BuyImpact(side event.Side, grossAmount uint64) (uint64, uint64, error) {
	if grossAmount == 0 {
		yes, err := m.YesPrice()
		if err != nil {
			return 0, 0, err
		}
		no, err := m.NoPrice()
		if err != nil {
			return 0, 0, err
		}
		return yes, no, nil
	}

	scratch := *m
	if _, err := scratch.Buy(side, grossAmount); err != nil {
		return 0, 0, err
	}
	yes, err := scratch.YesPrice()
	if err != nil {
		return 0, 0, err
	}
	no, err := scratch.NoPrice()
	if err != nil {
		return 0, 0, err
	}
	return yes, no, nil
}

// Slippage is the difference between the effective buy price and the
// current spot price, in PricePrecision units. Zero when the effective
// price is not worse.
func (m *Market) Slippage(side event.Side, grossAmount uint64) (uint64, error) {
	if grossAmount == 0 {
		return 0, nil
	}
	current, err := m.Price(side)
	if err != nil {
		return 0, err
	}
	effective, err := m.EffectiveBuyPrice(side, grossAmount)
	if err != nil {
		return 0, err
	}
	if effective > current {
		return effective - current, nil
	}
	return 0, nil
}
