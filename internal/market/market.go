package market

import (
	"fmt"

	"PredictLedger/internal/event"
	"PredictLedger/internal/math"
)

// PricePrecision is the fixed-point scale for outcome prices
// (parts-per-million). YesPrice + NoPrice == PricePrecision up to one
// unit of floor rounding.
const PricePrecision uint64 = 1_000_000

// Market holds the per-market AMM state. Yes/no liquidity are virtual
// quantities used only for pricing; the prize pool is the real,
// disbursable fund. Not thread-safe — only accessed from the
// single-threaded deterministic core.
type Market struct {
	ID          string
	Title       string
	Description string

	// Time window in logical clock ticks
	StartTime      uint64
	EndTime        uint64
	ResolutionTime uint64

	// AMM virtual liquidity (for pricing only)
	YesLiquidity uint64
	NoLiquidity  uint64

	// Real money tracking
	PrizePool   uint64
	TotalVolume uint64

	TotalYesShares uint64
	TotalNoShares  uint64

	Resolved bool
	Outcome  event.Side // SideUnknown until resolved

	// FeesCollected only ever grows; the outstanding balance is
	// FeesCollected - FeesWithdrawn, so a second sweep transfers zero.
	FeesCollected uint64
	FeesWithdrawn uint64

	Limits Limits
}

// NewMarket creates an Active market with the limit set's initial
// virtual liquidity and zeroed pool, shares and fees.
func NewMarket(id, title, description string, startTime, endTime, resolutionTime uint64, limits Limits) (*Market, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	if startTime >= endTime || endTime > resolutionTime {
		return nil, fmt.Errorf("start=%d end=%d resolution=%d: %w",
			startTime, endTime, resolutionTime, ErrInvalidMarketTime)
	}

	return &Market{
		ID:             id,
		Title:          title,
		Description:    description,
		StartTime:      startTime,
		EndTime:        endTime,
		ResolutionTime: resolutionTime,
		YesLiquidity:   limits.InitialYesLiquidity,
		NoLiquidity:    limits.InitialNoLiquidity,
		Outcome:        event.SideUnknown,
		Limits:         limits,
	}, nil
}

// IsActive reports whether trading is open at the given logical time.
func (m *Market) IsActive(now uint64) bool {
	return now >= m.StartTime && now < m.EndTime && !m.Resolved
}

// CanResolve reports whether the market may be resolved at the given
// logical time.
func (m *Market) CanResolve(now uint64) bool {
	return now >= m.ResolutionTime && !m.Resolved
}

// Resolve fixes the outcome. One-way Active -> Resolved.
func (m *Market) Resolve(outcome event.Side) error {
	if m.Resolved {
		return fmt.Errorf("market %s: %w", m.ID, ErrAlreadyResolved)
	}
	if !outcome.Valid() {
		return fmt.Errorf("market %s: outcome %v: %w", m.ID, outcome, ErrInvalidTrade)
	}
	m.Resolved = true
	m.Outcome = outcome
	return nil
}

// FeesOutstanding returns the accrued fees not yet swept.
func (m *Market) FeesOutstanding() uint64 {
	return m.FeesCollected - m.FeesWithdrawn
}

// WithdrawFees records a sweep of up to amount, capped at the
// outstanding balance. Cash constraints can hold a sweep below the
// counter; the remainder stays outstanding for a later sweep.
// Idempotent: with no intervening trades a full sweep followed by
// another transfers zero, not an error.
func (m *Market) WithdrawFees(amount uint64) uint64 {
	if outstanding := m.FeesOutstanding(); amount > outstanding {
		amount = outstanding
	}
	m.FeesWithdrawn += amount
	return amount
}

// TotalWinningShares returns the outstanding share supply on the
// resolved outcome side.
func (m *Market) TotalWinningShares() uint64 {
	switch m.Outcome {
	case event.SideYes:
		return m.TotalYesShares
	case event.SideNo:
		return m.TotalNoShares
	default:
		return 0
	}
}

// ClaimPayout computes a winner's proportional pool share:
// floor(shares * prize_pool / total_winning_shares). The floor means
// the last claims can leave a small residual in the pool — bounded by
// total_winning_shares - 1 units across the whole market — which is an
// accepted trade-off, not reconciled specially.
func (m *Market) ClaimPayout(winningShares uint64) (uint64, error) {
	if !m.Resolved {
		return 0, fmt.Errorf("market %s: %w", m.ID, ErrMarketNotResolved)
	}
	total := m.TotalWinningShares()
	if total == 0 || winningShares == 0 || m.PrizePool == 0 {
		return 0, nil
	}
	payout, err := math.MulDiv(winningShares, m.PrizePool, total, math.RoundDown)
	if err != nil {
		return 0, err
	}
	// floor(shares * pool / total) <= pool whenever shares <= total;
	// a larger claim indicates corrupted share accounting upstream.
	if payout > m.PrizePool {
		return 0, fmt.Errorf("market %s: payout %d exceeds pool %d: %w",
			m.ID, payout, m.PrizePool, ErrInsufficientPrizePool)
	}
	return payout, nil
}

// DebitClaim removes a computed claim payout from the prize pool.
func (m *Market) DebitClaim(payout uint64) error {
	newPool, err := math.CheckedSub(m.PrizePool, payout)
	if err != nil {
		return fmt.Errorf("market %s: claim %d from pool %d: %w",
			m.ID, payout, m.PrizePool, ErrInsufficientPrizePool)
	}
	m.PrizePool = newPool
	return nil
}

// ShareValue estimates one share's pre-resolution value:
// prize_pool / (total_yes_shares + total_no_shares).
func (m *Market) ShareValue(side event.Side) (uint64, error) {
	if m.PrizePool == 0 {
		return 0, nil
	}
	sideShares := m.TotalYesShares
	if side == event.SideNo {
		sideShares = m.TotalNoShares
	}
	if sideShares == 0 {
		return 0, nil
	}
	totalShares, err := math.CheckedAdd(m.TotalYesShares, m.TotalNoShares)
	if err != nil {
		return 0, err
	}
	return math.CheckedDiv(m.PrizePool, totalShares)
}

// CanonicalBytes returns deterministic serialization for hashing
func (m *Market) CanonicalBytes() []byte {
	buf := make([]byte, 0, 160)

	// market_id (length-prefixed)
	buf = append(buf, byte(len(m.ID)))
	buf = append(buf, []byte(m.ID)...)

	buf = appendUint64LE(buf, m.StartTime)
	buf = appendUint64LE(buf, m.EndTime)
	buf = appendUint64LE(buf, m.ResolutionTime)
	buf = appendUint64LE(buf, m.YesLiquidity)
	buf = appendUint64LE(buf, m.NoLiquidity)
	buf = appendUint64LE(buf, m.PrizePool)
	buf = appendUint64LE(buf, m.TotalVolume)
	buf = appendUint64LE(buf, m.TotalYesShares)
	buf = appendUint64LE(buf, m.TotalNoShares)

	if m.Resolved {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	buf = append(buf, byte(m.Outcome))

	buf = appendUint64LE(buf, m.FeesCollected)
	buf = appendUint64LE(buf, m.FeesWithdrawn)

	return buf
}

func appendUint64LE(buf []byte, v uint64) []byte {
	return append(buf,
		byte(v),
		byte(v>>8),
		byte(v>>16),
		byte(v>>24),
		byte(v>>32),
		byte(v>>40),
		byte(v>>48),
		byte(v>>56),
	)
}
