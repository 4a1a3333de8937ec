package market

import (
	"fmt"

	"PredictLedger/internal/event"
	"PredictLedger/internal/math"
)

// BuyQuote is the full arithmetic result of pricing a buy. Quote
// functions produce it without touching state; Buy applies it.
type BuyQuote struct {
	Side        event.Side
	GrossAmount uint64
	Fee         uint64
	NetAmount   uint64
	Shares      uint64

	NewYesLiquidity uint64
	NewNoLiquidity  uint64
}

// SellQuote is the full arithmetic result of pricing a sell.
type SellQuote struct {
	Side        event.Side
	Shares      uint64
	GrossPayout uint64
	Fee         uint64
	NetPayout   uint64

	NewYesLiquidity uint64
	NewNoLiquidity  uint64
}

// sideLiquidity returns (own, opposite) liquidity for a side.
func (m *Market) sideLiquidity(side event.Side) (uint64, uint64) {
	if side == event.SideYes {
		return m.YesLiquidity, m.NoLiquidity
	}
	return m.NoLiquidity, m.YesLiquidity
}

// QuoteBuy prices a buy without mutating state. A YES buy adds the net
// stake to no_liquidity and recomputes yes_liquidity = k / new_no
// (floor); shares issued are the drop in the chosen side's liquidity.
// k is recomputed from the current liquidities each trade, never
// carried across trades.
func (m *Market) QuoteBuy(side event.Side, grossAmount uint64) (*BuyQuote, error) {
	if !side.Valid() {
		return nil, fmt.Errorf("market %s: side %v: %w", m.ID, side, ErrInvalidTrade)
	}
	if err := m.Limits.CheckBetAmount(grossAmount); err != nil {
		return nil, err
	}
	if err := m.Limits.CheckLiquidity(m.YesLiquidity); err != nil {
		return nil, err
	}
	if err := m.Limits.CheckLiquidity(m.NoLiquidity); err != nil {
		return nil, err
	}

	fee, net, err := math.FeeSplit(grossAmount, m.Limits.FeeRateBps)
	if err != nil {
		return nil, err
	}
	if net == 0 {
		return nil, fmt.Errorf("market %s: stake %d consumed entirely by fee: %w",
			m.ID, grossAmount, ErrInvalidAmount)
	}

	own, opposite := m.sideLiquidity(side)

	newOpposite, err := math.CheckedAdd(opposite, net)
	if err != nil {
		return nil, err
	}
	if newOpposite > m.Limits.MaxLiquidity {
		return nil, fmt.Errorf("market %s: %v liquidity %d above maximum %d: %w",
			m.ID, side.Opposite(), newOpposite, m.Limits.MaxLiquidity, ErrLiquidityExhausted)
	}

	k := math.MulU128(m.YesLiquidity, m.NoLiquidity)
	newOwn, err := math.DivU128(k, newOpposite, math.RoundDown)
	math.PutU128(k)
	if err != nil {
		return nil, err
	}
	if newOwn < m.Limits.MinLiquidity {
		return nil, fmt.Errorf("market %s: %v liquidity %d below minimum %d: %w",
			m.ID, side, newOwn, m.Limits.MinLiquidity, ErrLiquidityExhausted)
	}

	shares, err := math.CheckedSub(own, newOwn)
	if err != nil {
		return nil, err
	}
	if shares == 0 {
		return nil, fmt.Errorf("market %s: stake %d rounds to zero shares: %w",
			m.ID, grossAmount, ErrInvalidTrade)
	}
	if err := m.Limits.CheckShares(shares); err != nil {
		return nil, err
	}

	quote := &BuyQuote{
		Side:        side,
		GrossAmount: grossAmount,
		Fee:         fee,
		NetAmount:   net,
		Shares:      shares,
	}
	if side == event.SideYes {
		quote.NewYesLiquidity = newOwn
		quote.NewNoLiquidity = newOpposite
	} else {
		quote.NewYesLiquidity = newOpposite
		quote.NewNoLiquidity = newOwn
	}
	return quote, nil
}

// Buy executes a buy. Every derived counter is computed before any
// field is assigned, so a failure leaves the market untouched.
func (m *Market) Buy(side event.Side, grossAmount uint64) (*BuyQuote, error) {
	quote, err := m.QuoteBuy(side, grossAmount)
	if err != nil {
		return nil, err
	}

	newPool, err := math.CheckedAdd(m.PrizePool, quote.NetAmount)
	if err != nil {
		return nil, err
	}
	newVolume, err := math.CheckedAdd(m.TotalVolume, grossAmount)
	if err != nil {
		return nil, err
	}
	newFees, err := math.CheckedAdd(m.FeesCollected, quote.Fee)
	if err != nil {
		return nil, err
	}

	var newYesShares, newNoShares uint64
	if side == event.SideYes {
		newYesShares, err = math.CheckedAdd(m.TotalYesShares, quote.Shares)
		newNoShares = m.TotalNoShares
	} else {
		newNoShares, err = math.CheckedAdd(m.TotalNoShares, quote.Shares)
		newYesShares = m.TotalYesShares
	}
	if err != nil {
		return nil, err
	}

	m.YesLiquidity = quote.NewYesLiquidity
	m.NoLiquidity = quote.NewNoLiquidity
	m.PrizePool = newPool
	m.TotalVolume = newVolume
	m.FeesCollected = newFees
	m.TotalYesShares = newYesShares
	m.TotalNoShares = newNoShares

	return quote, nil
}

// QuoteSell prices a sell without mutating state. Returning shares
// raises the chosen side's liquidity; the opposite side is recomputed
// from k and the drop is the gross payout, fee-split before leaving
// the prize pool.
func (m *Market) QuoteSell(side event.Side, shares uint64) (*SellQuote, error) {
	if !side.Valid() {
		return nil, fmt.Errorf("market %s: side %v: %w", m.ID, side, ErrInvalidTrade)
	}
	if err := m.Limits.CheckShares(shares); err != nil {
		return nil, err
	}

	// Market-wide supply check, independent of the caller's position
	// check upstream.
	totalSide := m.TotalYesShares
	if side == event.SideNo {
		totalSide = m.TotalNoShares
	}
	if shares > totalSide {
		return nil, fmt.Errorf("market %s: sell %d of %d outstanding %v shares: %w",
			m.ID, shares, totalSide, side, ErrInsufficientShares)
	}

	if err := m.Limits.CheckLiquidity(m.YesLiquidity); err != nil {
		return nil, err
	}
	if err := m.Limits.CheckLiquidity(m.NoLiquidity); err != nil {
		return nil, err
	}

	own, opposite := m.sideLiquidity(side)

	newOwn, err := math.CheckedAdd(own, shares)
	if err != nil {
		return nil, err
	}
	if newOwn > m.Limits.MaxLiquidity {
		return nil, fmt.Errorf("market %s: %v liquidity %d above maximum %d: %w",
			m.ID, side, newOwn, m.Limits.MaxLiquidity, ErrLiquidityExhausted)
	}

	k := math.MulU128(m.YesLiquidity, m.NoLiquidity)
	newOpposite, err := math.DivU128(k, newOwn, math.RoundDown)
	math.PutU128(k)
	if err != nil {
		return nil, err
	}
	if newOpposite < m.Limits.MinLiquidity {
		return nil, fmt.Errorf("market %s: %v liquidity %d below minimum %d: %w",
			m.ID, side.Opposite(), newOpposite, m.Limits.MinLiquidity, ErrLiquidityExhausted)
	}

	gross, err := math.CheckedSub(opposite, newOpposite)
	if err != nil {
		return nil, err
	}
	if gross == 0 {
		return nil, fmt.Errorf("market %s: sell of %d shares rounds to zero payout: %w",
			m.ID, shares, ErrInvalidTrade)
	}

	fee, net, err := math.FeeSplit(gross, m.Limits.FeeRateBps)
	if err != nil {
		return nil, err
	}
	if net > m.PrizePool {
		return nil, fmt.Errorf("market %s: payout %d exceeds prize pool %d: %w",
			m.ID, net, m.PrizePool, ErrInsufficientPrizePool)
	}

	quote := &SellQuote{
		Side:        side,
		Shares:      shares,
		GrossPayout: gross,
		Fee:         fee,
		NetPayout:   net,
	}
	if side == event.SideYes {
		quote.NewYesLiquidity = newOwn
		quote.NewNoLiquidity = newOpposite
	} else {
		quote.NewYesLiquidity = newOpposite
		quote.NewNoLiquidity = newOwn
	}
	return quote, nil
}

// Sell executes a sell with the same all-or-nothing application as Buy.
func (m *Market) Sell(side event.Side, shares uint64) (*SellQuote, error) {
	quote, err := m.QuoteSell(side, shares)
	if err != nil {
		return nil, err
	}

	newPool, err := math.CheckedSub(m.PrizePool, quote.NetPayout)
	if err != nil {
		return nil, err
	}
	newFees, err := math.CheckedAdd(m.FeesCollected, quote.Fee)
	if err != nil {
		return nil, err
	}

	var newYesShares, newNoShares uint64
	if side == event.SideYes {
		newYesShares, err = math.CheckedSub(m.TotalYesShares, shares)
		newNoShares = m.TotalNoShares
	} else {
		newNoShares, err = math.CheckedSub(m.TotalNoShares, shares)
		newYesShares = m.TotalYesShares
	}
	if err != nil {
		return nil, err
	}

	m.YesLiquidity = quote.NewYesLiquidity
	m.NoLiquidity = quote.NewNoLiquidity
	m.PrizePool = newPool
	m.FeesCollected = newFees
	m.TotalYesShares = newYesShares
	m.TotalNoShares = newNoShares

	return quote, nil
}
