package market

import "errors"

// Domain failure classes. Arithmetic-integrity errors (overflow,
// underflow, division by zero) come from internal/math and pass
// through unwrapped; everything below is an invariant guard, a
// lifecycle mismatch, or an expected user-facing outcome. Callers
// match with errors.Is; wrapped messages carry the quantities and
// sides involved.
var (
	// Invariant-violation guards: caller bug or attempted exploit.
	ErrLiquidityExhausted    = errors.New("liquidity exhausted")
	ErrInvalidTrade          = errors.New("invalid trade")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInsufficientShares    = errors.New("insufficient shares")
	ErrInsufficientPrizePool = errors.New("insufficient prize pool")

	// Lifecycle-state mismatches: rejected, no state change.
	ErrMarketNotActive   = errors.New("market not active")
	ErrAlreadyResolved   = errors.New("market already resolved")
	ErrMarketNotResolved = errors.New("market not resolved")
	ErrInvalidMarketTime = errors.New("invalid market time window")

	// Expected end-user outcomes, not system errors.
	ErrAlreadyClaimed    = errors.New("already claimed")
	ErrNoWinningPosition = errors.New("no winning position")
)
