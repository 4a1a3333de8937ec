package ledger_test

import (
	"testing"
	"time"

	"PredictLedger/internal/event"
	"PredictLedger/internal/ledger"
	"PredictLedger/internal/market"

	"github.com/google/uuid"
)

// ============================================================================
// Test: AccountKey
// ============================================================================

func TestAccountKey_PlayerPath(t *testing.T) {
	playerID := uuid.MustParse("550e8400-e29b-41d4-a716-446655440000")
	key := ledger.NewPlayerCashKey(playerID)

	path := key.AccountPath()
	expected := "player:550e8400-e29b-41d4-a716-446655440000:cash"
	if path != expected {
		t.Errorf("got %q, want %q", path, expected)
	}
}

func TestAccountKey_MarketVaultPath(t *testing.T) {
	key := ledger.NewMarketVaultKey("42")

	path := key.AccountPath()
	if path != "market:42:vault" {
		t.Errorf("got %q, want %q", path, "market:42:vault")
	}
}

func TestAccountKey_OperatorPath(t *testing.T) {
	path := ledger.OperatorFeesKey().AccountPath()
	if path != "operator:fees" {
		t.Errorf("got %q, want %q", path, "operator:fees")
	}
}

func TestAccountKey_ExternalPath(t *testing.T) {
	key := ledger.NewExternalAccountKey(ledger.SubTypeExternalDeposits)

	path := key.AccountPath()
	if path != "external:deposits" {
		t.Errorf("got %q, want %q", path, "external:deposits")
	}
}

func TestAccountKey_DistinctMarkets(t *testing.T) {
	if ledger.NewMarketVaultKey("1") == ledger.NewMarketVaultKey("2") {
		t.Error("vault keys for different markets should differ")
	}
}

// ============================================================================
// Test: BalanceTracker
// ============================================================================

func TestBalanceTracker_InitialBalanceZero(t *testing.T) {
	bt := ledger.NewBalanceTracker()

	balance := bt.GetPlayerCash(uuid.New())
	if balance != 0 {
		t.Errorf("initial balance should be 0, got %d", balance)
	}
}

func TestBalanceTracker_ApplyJournal(t *testing.T) {
	bt := ledger.NewBalanceTracker()
	playerID := uuid.New()

	// Simulate deposit: debit player:cash, credit external:deposits
	j := ledger.Journal{
		JournalID:     uuid.New(),
		BatchID:       uuid.New(),
		DebitAccount:  ledger.NewPlayerCashKey(playerID),
		CreditAccount: ledger.NewExternalAccountKey(ledger.SubTypeExternalDeposits),
		Amount:        1_000_000,
	}

	bt.ApplyJournal(j)

	cash := bt.GetPlayerCash(playerID)
	if cash != 1_000_000 {
		t.Errorf("cash: got %d, want 1_000_000", cash)
	}
}

func TestBalanceTracker_GlobalBalanceZeroSum(t *testing.T) {
	bt := ledger.NewBalanceTracker()
	playerID := uuid.New()

	// Deposit
	bt.ApplyJournal(ledger.Journal{
		JournalID:     uuid.New(),
		BatchID:       uuid.New(),
		DebitAccount:  ledger.NewPlayerCashKey(playerID),
		CreditAccount: ledger.NewExternalAccountKey(ledger.SubTypeExternalDeposits),
		Amount:        1_000_000,
	})

	// Bet stake into a vault
	bt.ApplyJournal(ledger.Journal{
		JournalID:     uuid.New(),
		BatchID:       uuid.New(),
		DebitAccount:  ledger.NewMarketVaultKey("1"),
		CreditAccount: ledger.NewPlayerCashKey(playerID),
		Amount:        300_000,
	})

	if total := bt.ComputeGlobalBalance(); total != 0 {
		t.Errorf("global balance: got %d, want 0", total)
	}
}

func TestBalanceTracker_ValidateSufficientCash(t *testing.T) {
	bt := ledger.NewBalanceTracker()
	playerID := uuid.New()

	// No balance — should fail
	if err := bt.ValidateSufficientCash(playerID, 100); err == nil {
		t.Error("expected error for insufficient cash")
	}

	bt.ApplyJournal(ledger.Journal{
		JournalID:     uuid.New(),
		BatchID:       uuid.New(),
		DebitAccount:  ledger.NewPlayerCashKey(playerID),
		CreditAccount: ledger.NewExternalAccountKey(ledger.SubTypeExternalDeposits),
		Amount:        1_000,
	})

	if err := bt.ValidateSufficientCash(playerID, 1_000); err != nil {
		t.Errorf("should have sufficient cash: %v", err)
	}
	if err := bt.ValidateSufficientCash(playerID, 1_001); err == nil {
		t.Error("expected error for 1_001 > 1_000")
	}
}

func TestBalanceTracker_Snapshot(t *testing.T) {
	bt := ledger.NewBalanceTracker()
	playerID := uuid.New()

	bt.ApplyJournal(ledger.Journal{
		JournalID:     uuid.New(),
		BatchID:       uuid.New(),
		DebitAccount:  ledger.NewPlayerCashKey(playerID),
		CreditAccount: ledger.NewExternalAccountKey(ledger.SubTypeExternalDeposits),
		Amount:        999,
	})

	snap := bt.Snapshot()
	if len(snap) == 0 {
		t.Fatal("snapshot should not be empty")
	}

	// Mutating snapshot should not affect tracker
	for k := range snap {
		snap[k] = 0
	}

	if bt.GetPlayerCash(playerID) != 999 {
		t.Error("tracker balance should not be affected by snapshot mutation")
	}
}

// ============================================================================
// Test: Batch Validation
// ============================================================================

func TestBatchValidate_EmptyBatch_Fails(t *testing.T) {
	batch := &ledger.Batch{
		BatchID:  uuid.New(),
		Journals: []ledger.Journal{},
	}

	if err := batch.Validate(); err == nil {
		t.Error("empty batch should fail validation")
	}
}

func TestBatchValidate_ZeroAmount_Fails(t *testing.T) {
	batchID := uuid.New()

	batch := &ledger.Batch{
		BatchID: batchID,
		Journals: []ledger.Journal{
			{
				JournalID:     uuid.New(),
				BatchID:       batchID,
				DebitAccount:  ledger.NewPlayerCashKey(uuid.New()),
				CreditAccount: ledger.NewExternalAccountKey(ledger.SubTypeExternalDeposits),
				Amount:        0,
			},
		},
	}

	if err := batch.Validate(); err == nil {
		t.Error("zero amount should fail validation")
	}
}

func TestBatchValidate_SelfTransfer_Fails(t *testing.T) {
	batchID := uuid.New()
	sameAccount := ledger.NewPlayerCashKey(uuid.New())

	batch := &ledger.Batch{
		BatchID: batchID,
		Journals: []ledger.Journal{
			{
				JournalID:     uuid.New(),
				BatchID:       batchID,
				DebitAccount:  sameAccount,
				CreditAccount: sameAccount,
				Amount:        100,
			},
		},
	}

	if err := batch.Validate(); err == nil {
		t.Error("self-transfer should fail validation")
	}
}

func TestBatchValidate_MismatchedBatchID_Fails(t *testing.T) {
	batchID := uuid.New()

	batch := &ledger.Batch{
		BatchID: batchID,
		Journals: []ledger.Journal{
			{
				JournalID:     uuid.New(),
				BatchID:       uuid.New(), // Different batch ID
				DebitAccount:  ledger.NewPlayerCashKey(uuid.New()),
				CreditAccount: ledger.NewExternalAccountKey(ledger.SubTypeExternalDeposits),
				Amount:        100,
			},
		},
	}

	if err := batch.Validate(); err == nil {
		t.Error("mismatched batch ID should fail validation")
	}
}

func TestBatchValidate_ValidBatch_Passes(t *testing.T) {
	batchID := uuid.New()

	batch := &ledger.Batch{
		BatchID: batchID,
		Journals: []ledger.Journal{
			{
				JournalID:     uuid.New(),
				BatchID:       batchID,
				DebitAccount:  ledger.NewPlayerCashKey(uuid.New()),
				CreditAccount: ledger.NewExternalAccountKey(ledger.SubTypeExternalDeposits),
				Amount:        1_000_000,
			},
		},
	}

	if err := batch.Validate(); err != nil {
		t.Errorf("valid batch should pass: %v", err)
	}
}

// ============================================================================
// Test: JournalGenerator — full cash flow of one market
// ============================================================================

func TestJournalGenerator_BetSellSweepFlow(t *testing.T) {
	bt := ledger.NewBalanceTracker()
	jg := ledger.NewJournalGenerator(1, bt)
	playerID := uuid.New()
	now := time.Unix(1_700_000_000, 0)

	// The market whose cash movements the vault must mirror.
	m, err := market.NewMarket("1", "flow", "", 0, 100, 100, market.DefaultLimits())
	if err != nil {
		t.Fatalf("NewMarket: %v", err)
	}

	apply := func(batch *ledger.Batch, genErr error, step string) {
		t.Helper()
		if genErr != nil {
			t.Fatalf("%s: %v", step, genErr)
		}
		if err := bt.ApplyBatch(batch); err != nil {
			t.Fatalf("%s apply: %v", step, err)
		}
	}

	// Deposit 1_000_000 so the player can stake.
	batch, err := jg.GenerateDeposit(&event.Deposit{
		DepositID: uuid.New(),
		PlayerID:  playerID,
		Amount:    1_000_000,
		Timestamp: now,
	})
	apply(batch, err, "deposit")

	// Buy: gross stake enters the vault, fee included.
	buy, err := m.Buy(event.SideYes, 100_000)
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}
	batch, err = jg.GenerateBetStake(&event.BetPlaced{
		BetID:       uuid.New(),
		PlayerID:    playerID,
		Market:      m.ID,
		BetSide:     event.SideYes,
		GrossAmount: 100_000,
		Timestamp:   now,
	})
	apply(batch, err, "bet")

	if cash := bt.GetPlayerCash(playerID); cash != 900_000 {
		t.Errorf("cash after bet: got %d, want 900_000", cash)
	}

	validator := ledger.NewInvariantValidator(bt)
	if err := validator.ValidateVaultBacking(m); err != nil {
		t.Errorf("vault backing after bet: %v", err)
	}

	// Sell everything back: only the net payout leaves the vault.
	sell, err := m.Sell(event.SideYes, buy.Shares)
	if err != nil {
		t.Fatalf("Sell: %v", err)
	}
	batch, err = jg.GenerateSellPayout(&event.SharesSold{
		SellID:    uuid.New(),
		PlayerID:  playerID,
		Market:    m.ID,
		SellSide:  event.SideYes,
		Shares:    buy.Shares,
		Timestamp: now,
	}, sell.NetPayout)
	apply(batch, err, "sell")

	if err := validator.ValidateVaultBacking(m); err != nil {
		t.Errorf("vault backing after sell: %v", err)
	}

	// Sweep accrued fees to the operator. The counter holds 500 (buy
	// fee 250 + sell fee 250) but only the buy fee's cash is in the
	// vault above the pool, so the journal moves 250 and the sell-fee
	// remainder stays outstanding for a later sweep.
	outstanding := m.FeesOutstanding()
	if outstanding != 500 {
		t.Fatalf("fees outstanding: got %d, want 500", outstanding)
	}
	batch, err = jg.GenerateFeeWithdrawal(&event.FeeWithdrawal{
		RequestID: uuid.New(),
		AdminID:   uuid.New(),
		Market:    m.ID,
		Timestamp: now,
	}, m, outstanding)
	if batch == nil {
		t.Fatal("expected a fee sweep batch")
	}
	apply(batch, err, "sweep")
	m.WithdrawFees(batch.Journals[0].Amount)

	if got := bt.GetOperatorFees(); got != 250 {
		t.Errorf("operator fees: got %d, want 250", got)
	}
	if got := m.FeesOutstanding(); got != 250 {
		t.Errorf("unswept fees outstanding: got %d, want 250", got)
	}
	if err := validator.ValidateVaultBacking(m); err != nil {
		t.Errorf("vault backing after sweep: %v", err)
	}
	if err := validator.ValidateGlobalBalance(); err != nil {
		t.Errorf("global balance: %v", err)
	}

	// The sequence advanced once per generated batch.
	if jg.Sequence() != 5 {
		t.Errorf("sequence: got %d, want 5", jg.Sequence())
	}
}

func TestJournalGenerator_WithdrawalPreCheck(t *testing.T) {
	bt := ledger.NewBalanceTracker()
	jg := ledger.NewJournalGenerator(1, bt)
	playerID := uuid.New()
	now := time.Unix(1_700_000_000, 0)

	_, err := jg.GenerateWithdrawal(&event.Withdrawal{
		WithdrawalID: uuid.New(),
		PlayerID:     playerID,
		Amount:       500,
		Timestamp:    now,
	})
	if err == nil {
		t.Fatal("withdrawal with no cash should fail the pre-check")
	}
}

func TestJournalGenerator_BetPreCheck(t *testing.T) {
	bt := ledger.NewBalanceTracker()
	jg := ledger.NewJournalGenerator(1, bt)
	now := time.Unix(1_700_000_000, 0)

	_, err := jg.GenerateBetStake(&event.BetPlaced{
		BetID:       uuid.New(),
		PlayerID:    uuid.New(),
		Market:      "1",
		BetSide:     event.SideYes,
		GrossAmount: 100_000,
		Timestamp:   now,
	})
	if err == nil {
		t.Fatal("bet with no cash should fail the pre-check")
	}
}

// ============================================================================
// Test: InvariantValidator
// ============================================================================

func TestInvariantValidator_GlobalBalanceZero(t *testing.T) {
	bt := ledger.NewBalanceTracker()
	v := ledger.NewInvariantValidator(bt)

	// Empty ledger — should pass
	if err := v.ValidateGlobalBalance(); err != nil {
		t.Errorf("empty ledger should have zero global balance: %v", err)
	}

	bt.ApplyJournal(ledger.Journal{
		JournalID:     uuid.New(),
		BatchID:       uuid.New(),
		DebitAccount:  ledger.NewPlayerCashKey(uuid.New()),
		CreditAccount: ledger.NewExternalAccountKey(ledger.SubTypeExternalDeposits),
		Amount:        1_000_000,
	})

	// Still zero-sum
	if err := v.ValidateGlobalBalance(); err != nil {
		t.Errorf("balanced ledger should have zero global balance: %v", err)
	}
}

func TestInvariantValidator_VaultDriftDetected(t *testing.T) {
	bt := ledger.NewBalanceTracker()
	v := ledger.NewInvariantValidator(bt)

	m, err := market.NewMarket("1", "drift", "", 0, 100, 100, market.DefaultLimits())
	if err != nil {
		t.Fatalf("NewMarket: %v", err)
	}
	if _, err := m.Buy(event.SideYes, 100_000); err != nil {
		t.Fatalf("Buy: %v", err)
	}

	// No journal was applied for the buy, so the vault is short.
	if err := v.ValidateVaultBacking(m); err == nil {
		t.Error("expected vault backing violation when journal is missing")
	}
}
