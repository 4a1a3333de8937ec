package ledger

import (
	"fmt"

	"PredictLedger/internal/market"

	"github.com/google/uuid"
)

// InvariantValidator checks ledger invariants
type InvariantValidator struct {
	tracker *BalanceTracker
}

func NewInvariantValidator(tracker *BalanceTracker) *InvariantValidator {
	return &InvariantValidator{
		tracker: tracker,
	}
}

// ValidateBatchBalance verifies batch is balanced
func (v *InvariantValidator) ValidateBatchBalance(batch *Batch) error {
	return batch.Validate()
}

// ValidateVaultBacking verifies a market's vault cash stays within its
// obligations: at least the prize pool (claims fully funded), at most
// the pool plus fees not yet withdrawn. Sell fees accrue in the
// counters while their cash stays pool-side, so the bound is a range
// rather than an exact identity. Drift outside it means a journal was
// skipped or double-applied.
func (v *InvariantValidator) ValidateVaultBacking(m *market.Market) error {
	vault := v.tracker.GetMarketVault(m.ID)
	ceiling := m.PrizePool + m.FeesOutstanding()

	if vault < 0 || uint64(vault) < m.PrizePool || uint64(vault) > ceiling {
		return fmt.Errorf("vault for market %s holds %d, want within [%d, %d] (pool=%d, fees outstanding=%d)",
			m.ID, vault, m.PrizePool, ceiling, m.PrizePool, m.FeesOutstanding())
	}

	return nil
}

// ValidatePlayerCashNonNegative checks player cash >= 0
func (v *InvariantValidator) ValidatePlayerCashNonNegative(playerID uuid.UUID) error {
	return v.tracker.ValidatePlayerCashNonNegative(playerID)
}

// ValidateGlobalBalance verifies the ledger is zero-sum
func (v *InvariantValidator) ValidateGlobalBalance() error {
	if total := v.tracker.ComputeGlobalBalance(); total != 0 {
		return fmt.Errorf("global balance is non-zero: %d", total)
	}
	return nil
}
