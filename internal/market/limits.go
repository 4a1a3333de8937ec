package market

import "fmt"

// Limits bounds every market's pool quantities. The liquidity floor
// doubles as the division-by-zero guard for the curve.
type Limits struct {
	MinLiquidity        uint64
	MaxLiquidity        uint64
	MaxBetAmount        uint64
	MaxShares           uint64
	FeeRateBps          uint64
	InitialYesLiquidity uint64
	InitialNoLiquidity  uint64
}

// DefaultLimits returns the production limit set.
func DefaultLimits() Limits {
	return Limits{
		MinLiquidity:        1_000,
		MaxLiquidity:        1_000_000_000_000,
		MaxBetAmount:        100_000_000,
		MaxShares:           1_000_000_000,
		FeeRateBps:          25, // 0.25%
		InitialYesLiquidity: 1_000_000,
		InitialNoLiquidity:  1_000_000,
	}
}

// Validate checks that the limit set is internally consistent.
func (l Limits) Validate() error {
	if l.MinLiquidity == 0 {
		return fmt.Errorf("min_liquidity must be > 0")
	}
	if l.MaxLiquidity <= l.MinLiquidity {
		return fmt.Errorf("max_liquidity (%d) must be > min_liquidity (%d)", l.MaxLiquidity, l.MinLiquidity)
	}
	if l.MaxBetAmount == 0 {
		return fmt.Errorf("max_bet_amount must be > 0")
	}
	if l.MaxShares == 0 {
		return fmt.Errorf("max_shares must be > 0")
	}
	if l.FeeRateBps >= 10_000 {
		return fmt.Errorf("fee_rate_bps must be < 10000, got %d", l.FeeRateBps)
	}
	if err := l.CheckLiquidity(l.InitialYesLiquidity); err != nil {
		return fmt.Errorf("initial yes liquidity: %w", err)
	}
	if err := l.CheckLiquidity(l.InitialNoLiquidity); err != nil {
		return fmt.Errorf("initial no liquidity: %w", err)
	}
	return nil
}

// CheckLiquidity validates a single liquidity value against the limits.
func (l Limits) CheckLiquidity(liquidity uint64) error {
	if liquidity < l.MinLiquidity {
		return fmt.Errorf("liquidity %d below minimum %d: %w", liquidity, l.MinLiquidity, ErrLiquidityExhausted)
	}
	if liquidity > l.MaxLiquidity {
		return fmt.Errorf("liquidity %d above maximum %d: %w", liquidity, l.MaxLiquidity, ErrLiquidityExhausted)
	}
	return nil
}

// CheckBetAmount validates a gross bet amount.
func (l Limits) CheckBetAmount(amount uint64) error {
	if amount == 0 {
		return fmt.Errorf("bet amount must be > 0: %w", ErrInvalidAmount)
	}
	if amount > l.MaxBetAmount {
		return fmt.Errorf("bet amount %d above maximum %d: %w", amount, l.MaxBetAmount, ErrInvalidAmount)
	}
	return nil
}

// CheckShares validates a share quantity for a sell.
func (l Limits) CheckShares(shares uint64) error {
	if shares == 0 {
		return fmt.Errorf("share quantity must be > 0: %w", ErrInvalidAmount)
	}
	if shares > l.MaxShares {
		return fmt.Errorf("share quantity %d above maximum %d: %w", shares, l.MaxShares, ErrInvalidAmount)
	}
	return nil
}
