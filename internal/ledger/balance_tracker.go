package ledger

import (
	"fmt"

	"github.com/google/uuid"
)

// BalanceTracker maintains in-memory account balances. Player and
// market accounts stay non-negative; the external boundary accounts
// absorb the matching negative side so the whole ledger sums to zero.
type BalanceTracker struct {
	balances map[AccountKey]int64
}

func NewBalanceTracker() *BalanceTracker {
	return &BalanceTracker{
		balances: make(map[AccountKey]int64),
	}
}

// ApplyJournal applies a single journal entry to balances
func (bt *BalanceTracker) ApplyJournal(j Journal) {
	bt.balances[j.DebitAccount] += int64(j.Amount)
	bt.balances[j.CreditAccount] -= int64(j.Amount)
}

// ApplyBatch applies all journals in a batch
func (bt *BalanceTracker) ApplyBatch(batch *Batch) error {
	if err := batch.Validate(); err != nil {
		return fmt.Errorf("invalid batch: %w", err)
	}

	for _, j := range batch.Journals {
		bt.ApplyJournal(j)
	}

	return nil
}

// GetBalance returns the current balance for an account
func (bt *BalanceTracker) GetBalance(key AccountKey) int64 {
	return bt.balances[key]
}

// GetPlayerCash returns a player's spendable cash balance
func (bt *BalanceTracker) GetPlayerCash(playerID uuid.UUID) int64 {
	return bt.GetBalance(NewPlayerCashKey(playerID))
}

// GetMarketVault returns the cash held by a market's vault
func (bt *BalanceTracker) GetMarketVault(marketID string) int64 {
	return bt.GetBalance(NewMarketVaultKey(marketID))
}

// GetOperatorFees returns accumulated operator fee revenue
func (bt *BalanceTracker) GetOperatorFees() int64 {
	return bt.GetBalance(OperatorFeesKey())
}

// === Invariant Checks ===

// ValidateSufficientCash checks a player can cover an outflow before
// any journal is generated for it
func (bt *BalanceTracker) ValidateSufficientCash(playerID uuid.UUID, required uint64) error {
	cash := bt.GetPlayerCash(playerID)
	if cash < 0 || uint64(cash) < required {
		return fmt.Errorf("insufficient cash: have=%d, need=%d", cash, required)
	}
	return nil
}

// ValidatePlayerCashNonNegative checks a player account never went negative
func (bt *BalanceTracker) ValidatePlayerCashNonNegative(playerID uuid.UUID) error {
	return bt.ValidateNonNegative(NewPlayerCashKey(playerID))
}

// ComputeGlobalBalance sums all account balances (zero for a zero-sum ledger)
func (bt *BalanceTracker) ComputeGlobalBalance() int64 {
	var total int64
	for _, balance := range bt.balances {
		total += balance
	}
	return total
}

// ValidateNonNegative checks that a specific account balance is >= 0
func (bt *BalanceTracker) ValidateNonNegative(key AccountKey) error {
	balance := bt.GetBalance(key)
	if balance < 0 {
		return fmt.Errorf("account %s has negative balance: %d", key.AccountPath(), balance)
	}
	return nil
}

// Snapshot returns a copy of all balances (for state hashing)
func (bt *BalanceTracker) Snapshot() map[AccountKey]int64 {
	snapshot := make(map[AccountKey]int64, len(bt.balances))
	for k, v := range bt.balances {
		snapshot[k] = v
	}
	return snapshot
}

// Restore directly sets an account balance (used for snapshot restore)
func (bt *BalanceTracker) Restore(key AccountKey, balance int64) {
	bt.balances[key] = balance
}
