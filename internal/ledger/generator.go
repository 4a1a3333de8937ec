package ledger

import (
	"fmt"

	"PredictLedger/internal/event"
	"PredictLedger/internal/market"

	"github.com/google/uuid"
)

// JournalGenerator creates balanced journal batches from events
type JournalGenerator struct {
	sequence       int64
	balanceTracker *BalanceTracker // Reference for pre-checks
}

func NewJournalGenerator(startSequence int64, tracker *BalanceTracker) *JournalGenerator {
	return &JournalGenerator{
		sequence:       startSequence,
		balanceTracker: tracker,
	}
}

// Sequence returns the next journal sequence to be assigned
func (jg *JournalGenerator) Sequence() int64 {
	return jg.sequence
}

// RestoreSequence directly sets the sequence (used for snapshot restore)
func (jg *JournalGenerator) RestoreSequence(seq int64) {
	jg.sequence = seq
}

// GenerateDeposit creates journals for an admin-credited deposit.
// Moves funds: external:deposits → player:cash
func (jg *JournalGenerator) GenerateDeposit(evt *event.Deposit) (*Batch, error) {
	batchID := uuid.New()

	batch := &Batch{
		BatchID:   batchID,
		EventRef:  evt.DepositID.String(),
		Sequence:  jg.sequence,
		Timestamp: evt.Timestamp.UnixMicro(),
		Journals:  make([]Journal, 0, 1),
	}

	journal := Journal{
		JournalID:     uuid.New(),
		BatchID:       batchID,
		EventRef:      evt.DepositID.String(),
		Sequence:      jg.sequence,
		DebitAccount:  NewPlayerCashKey(evt.PlayerID),
		CreditAccount: NewExternalAccountKey(SubTypeExternalDeposits),
		Amount:        evt.Amount,
		JournalType:   JournalTypeDeposit,
		Timestamp:     evt.Timestamp.UnixMicro(),
	}

	batch.Journals = append(batch.Journals, journal)
	jg.sequence++

	return batch, nil
}

// GenerateWithdrawal creates journals for a cash withdrawal.
// Pre-check: player must have sufficient cash.
// Moves funds: player:cash → external:withdrawals
func (jg *JournalGenerator) GenerateWithdrawal(evt *event.Withdrawal) (*Batch, error) {
	if err := jg.balanceTracker.ValidateSufficientCash(evt.PlayerID, evt.Amount); err != nil {
		return nil, fmt.Errorf("withdrawal pre-check failed: %w", err)
	}

	batchID := uuid.New()

	batch := &Batch{
		BatchID:   batchID,
		EventRef:  evt.WithdrawalID.String(),
		Sequence:  jg.sequence,
		Timestamp: evt.Timestamp.UnixMicro(),
		Journals:  make([]Journal, 0, 1),
	}

	journal := Journal{
		JournalID:     uuid.New(),
		BatchID:       batchID,
		EventRef:      evt.WithdrawalID.String(),
		Sequence:      jg.sequence,
		DebitAccount:  NewExternalAccountKey(SubTypeExternalWithdrawals),
		CreditAccount: NewPlayerCashKey(evt.PlayerID),
		Amount:        evt.Amount,
		JournalType:   JournalTypeWithdrawal,
		Timestamp:     evt.Timestamp.UnixMicro(),
	}

	batch.Journals = append(batch.Journals, journal)
	jg.sequence++

	return batch, nil
}

// GenerateBetStake creates journals for an executed bet. The gross
// stake (fee included) moves into the market vault; the fee stays
// vault-held until the operator sweeps it.
// Pre-check: player must have sufficient cash for the gross stake.
// Moves funds: player:cash → market:vault
func (jg *JournalGenerator) GenerateBetStake(evt *event.BetPlaced) (*Batch, error) {
	if err := jg.balanceTracker.ValidateSufficientCash(evt.PlayerID, evt.GrossAmount); err != nil {
		return nil, fmt.Errorf("bet pre-check failed: %w", err)
	}

	batchID := uuid.New()

	batch := &Batch{
		BatchID:   batchID,
		EventRef:  evt.BetID.String(),
		Sequence:  jg.sequence,
		Timestamp: evt.Timestamp.UnixMicro(),
		Journals:  make([]Journal, 0, 1),
	}

	journal := Journal{
		JournalID:     uuid.New(),
		BatchID:       batchID,
		EventRef:      evt.BetID.String(),
		Sequence:      jg.sequence,
		DebitAccount:  NewMarketVaultKey(evt.Market),
		CreditAccount: NewPlayerCashKey(evt.PlayerID),
		Amount:        evt.GrossAmount,
		JournalType:   JournalTypeBetStake,
		Timestamp:     evt.Timestamp.UnixMicro(),
	}

	batch.Journals = append(batch.Journals, journal)
	jg.sequence++

	return batch, nil
}

// GenerateSellPayout creates journals for an executed sell. Only the
// net payout leaves the vault; the sell fee stays vault-held, backing
// the prize pool until claims are settled.
// Moves funds: market:vault → player:cash
func (jg *JournalGenerator) GenerateSellPayout(evt *event.SharesSold, netPayout uint64) (*Batch, error) {
	vault := jg.balanceTracker.GetMarketVault(evt.Market)
	if vault < 0 || uint64(vault) < netPayout {
		return nil, fmt.Errorf("sell pre-check failed: vault for market %s holds %d, payout %d",
			evt.Market, vault, netPayout)
	}

	batchID := uuid.New()

	batch := &Batch{
		BatchID:   batchID,
		EventRef:  evt.SellID.String(),
		Sequence:  jg.sequence,
		Timestamp: evt.Timestamp.UnixMicro(),
		Journals:  make([]Journal, 0, 1),
	}

	journal := Journal{
		JournalID:     uuid.New(),
		BatchID:       batchID,
		EventRef:      evt.SellID.String(),
		Sequence:      jg.sequence,
		DebitAccount:  NewPlayerCashKey(evt.PlayerID),
		CreditAccount: NewMarketVaultKey(evt.Market),
		Amount:        netPayout,
		JournalType:   JournalTypeSellPayout,
		Timestamp:     evt.Timestamp.UnixMicro(),
	}

	batch.Journals = append(batch.Journals, journal)
	jg.sequence++

	return batch, nil
}

// GenerateClaimPayout creates journals for a settled winning claim.
// Moves funds: market:vault → player:cash
func (jg *JournalGenerator) GenerateClaimPayout(evt *event.Claim, payout uint64) (*Batch, error) {
	vault := jg.balanceTracker.GetMarketVault(evt.Market)
	if vault < 0 || uint64(vault) < payout {
		return nil, fmt.Errorf("claim pre-check failed: vault for market %s holds %d, payout %d",
			evt.Market, vault, payout)
	}

	batchID := uuid.New()

	batch := &Batch{
		BatchID:   batchID,
		EventRef:  evt.ClaimID.String(),
		Sequence:  jg.sequence,
		Timestamp: evt.Timestamp.UnixMicro(),
		Journals:  make([]Journal, 0, 1),
	}

	journal := Journal{
		JournalID:     uuid.New(),
		BatchID:       batchID,
		EventRef:      evt.ClaimID.String(),
		Sequence:      jg.sequence,
		DebitAccount:  NewPlayerCashKey(evt.PlayerID),
		CreditAccount: NewMarketVaultKey(evt.Market),
		Amount:        payout,
		JournalType:   JournalTypeClaimPayout,
		Timestamp:     evt.Timestamp.UnixMicro(),
	}

	batch.Journals = append(batch.Journals, journal)
	jg.sequence++

	return batch, nil
}

// GenerateFeeWithdrawal creates journals for an operator fee sweep.
// The swept counter amount is capped at the vault's excess over the
// prize pool: sell fees are accrued in the fee counters but their cash
// never left the pool, so sweeping them would leave claims unfunded.
// Returns (nil, nil) when no cash is sweepable.
// Moves funds: market:vault → operator:fees
func (jg *JournalGenerator) GenerateFeeWithdrawal(evt *event.FeeWithdrawal, m *market.Market, amount uint64) (*Batch, error) {
	vault := jg.balanceTracker.GetMarketVault(evt.Market)
	if vault < 0 || uint64(vault) < m.PrizePool {
		return nil, fmt.Errorf("fee sweep pre-check failed: vault for market %s holds %d, pool %d",
			evt.Market, vault, m.PrizePool)
	}
	if excess := uint64(vault) - m.PrizePool; amount > excess {
		amount = excess
	}
	if amount == 0 {
		return nil, nil
	}

	batchID := uuid.New()

	batch := &Batch{
		BatchID:   batchID,
		EventRef:  evt.RequestID.String(),
		Sequence:  jg.sequence,
		Timestamp: evt.Timestamp.UnixMicro(),
		Journals:  make([]Journal, 0, 1),
	}

	journal := Journal{
		JournalID:     uuid.New(),
		BatchID:       batchID,
		EventRef:      evt.RequestID.String(),
		Sequence:      jg.sequence,
		DebitAccount:  OperatorFeesKey(),
		CreditAccount: NewMarketVaultKey(evt.Market),
		Amount:        amount,
		JournalType:   JournalTypeFeeWithdrawal,
		Timestamp:     evt.Timestamp.UnixMicro(),
	}

	batch.Journals = append(batch.Journals, journal)
	jg.sequence++

	return batch, nil
}
