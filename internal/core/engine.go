package core

import (
	"fmt"
	"sort"
	"time"

	"PredictLedger/internal/event"
	"PredictLedger/internal/ledger"
	"PredictLedger/internal/market"
	"PredictLedger/internal/math"
	"PredictLedger/internal/observability"
	"PredictLedger/internal/state"

	"github.com/google/uuid"
)

// DeterministicCore is the single-threaded event processor
type DeterministicCore struct {
	sequence          int64
	hasher            *StateHasher
	balanceTracker    *ledger.BalanceTracker
	journalGen        *ledger.JournalGenerator
	validator         *ledger.InvariantValidator
	players           *state.PlayerManager
	positions         *state.PositionLedger
	markets           *state.MarketRegistry
	clock             *state.LogicalClock
	idempotency       *IdempotencyChecker
	sequenceValidator *SequenceValidator
	metrics           *observability.Metrics

	// adminID is the only actor allowed to deposit, create markets,
	// resolve them, and sweep fees.
	adminID uuid.UUID

	persistChan    chan<- CoreOutput
	projectionChan chan<- CoreOutput
}

type CoreOutput struct {
	Envelope   *event.EventEnvelope
	Batch      *ledger.Batch
	StateDelta []byte
}

func NewDeterministicCore(
	startSequence int64,
	adminID uuid.UUID,
	persistChan, projectionChan chan<- CoreOutput,
	dbChecker DBIdempotencyChecker,
	metrics *observability.Metrics,
) *DeterministicCore {
	balanceTracker := ledger.NewBalanceTracker()
	validator := ledger.NewInvariantValidator(balanceTracker)
	journalGen := ledger.NewJournalGenerator(startSequence, balanceTracker)

	// Initialize with capacity of 1M entries (configurable)
	idempotencyChecker := NewIdempotencyChecker(1_000_000, dbChecker)
	sequenceValidator := NewSequenceValidator()

	return &DeterministicCore{
		sequence:          startSequence,
		hasher:            NewStateHasher(),
		balanceTracker:    balanceTracker,
		journalGen:        journalGen,
		validator:         validator,
		players:           state.NewPlayerManager(),
		positions:         state.NewPositionLedger(),
		markets:           state.NewMarketRegistry(),
		clock:             state.NewLogicalClock(),
		idempotency:       idempotencyChecker,
		sequenceValidator: sequenceValidator,
		metrics:           metrics,
		adminID:           adminID,
		persistChan:       persistChan,
		projectionChan:    projectionChan,
	}
}

// ProcessEvent is the main processing pipeline
func (c *DeterministicCore) ProcessEvent(evt event.Event) error {
	start := time.Now()
	eventType := evt.EventType().String()
	idempotencyKey := evt.IdempotencyKey()

	// Step 1: Idempotency check (two-tier)
	isDuplicate := c.idempotency.IsDuplicate(eventType, idempotencyKey)

	// Step 2: Sequence validation
	partition := c.getPartition(evt)
	sourceSequence := evt.SourceSequence()

	// Clock ticks come from a fixed-cadence sampler: gaps tolerated
	if tickEvt, ok := evt.(*event.Tick); ok {
		if err := c.sequenceValidator.ValidateTickSequence(int64(tickEvt.Counter)); err != nil {
			return err
		}
	} else {
		// Regular sequence validation
		if err := c.sequenceValidator.ValidateSequence(partition, sourceSequence, idempotencyKey, isDuplicate); err != nil {
			return fmt.Errorf("sequence validation failed: %w", err)
		}
	}

	// If duplicate, skip processing
	if isDuplicate {
		if c.metrics != nil {
			c.metrics.CoreEventsRejected.WithLabelValues(eventType, "duplicate").Inc()
		}
		return nil
	}

	// Step 3: Event dispatch - get the journal batch
	batch, err := c.dispatchEvent(evt)
	if err != nil {
		if c.metrics != nil {
			c.metrics.CoreEventsRejected.WithLabelValues(eventType, "rejected").Inc()
		}
		return fmt.Errorf("dispatch failed: %w", err)
	}

	// Step 4: Validate and apply the batch. State-only events (install,
	// market create/resolve, ticks, zero-payout claims) produce no
	// journals but still need an envelope in the event log.
	if len(batch.Journals) > 0 {
		if err := c.validator.ValidateBatchBalance(batch); err != nil {
			panic(fmt.Sprintf("FATAL: unbalanced batch: %v", err))
		}

		if err := c.balanceTracker.ApplyBatch(batch); err != nil {
			return fmt.Errorf("apply batch failed: %w", err)
		}
	}

	// Step 5: Compute state digest and chain hash
	stateDigest := c.computeStateDigest(evt, batch)
	prevHash := c.hasher.GetPrevHash()
	stateHash := c.hasher.ComputeHash(c.sequence, stateDigest)

	envelope := &event.EventEnvelope{
		Sequence:       c.sequence,
		IdempotencyKey: idempotencyKey,
		EventType:      evt.EventType(),
		MarketID:       evt.MarketID(),
		Timestamp:      c.getEventTimestamp(evt),
		SourceSequence: sourceSequence,
		Payload:        event.Encode(evt),
		StateHash:      stateHash,
		PrevHash:       prevHash,
	}

	output := CoreOutput{
		Envelope:   envelope,
		Batch:      batch,
		StateDelta: stateDigest,
	}
	c.sequence++

	// Step 6: Post-checks
	if err := c.postCheckInvariants(evt); err != nil {
		panic(fmt.Sprintf("FATAL: invariant violated: %v", err))
	}

	// Step 7: Emit outputs. Persist channel uses BLOCKING send
	// (backpressure); projection channel uses NON-BLOCKING send with
	// silent drop — projections can rebuild from the event log.
	c.persistChan <- output

	select {
	case c.projectionChan <- output:
	default:
		// Silently dropped — projection will catch up via rebuild
	}

	// Step 8: Mark as processed (add to LRU)
	c.idempotency.MarkProcessed(eventType, idempotencyKey)

	// Record metrics
	if c.metrics != nil {
		c.metrics.CoreEventsApplied.WithLabelValues(eventType).Inc()
		c.metrics.CoreEventDuration.WithLabelValues(eventType).Observe(time.Since(start).Seconds())
		c.metrics.CoreSequence.Set(float64(c.sequence))
	}

	return nil
}

// getPartition determines partition key for sequence validation
func (c *DeterministicCore) getPartition(evt event.Event) string {
	if marketID := evt.MarketID(); marketID != nil {
		return fmt.Sprintf("market:%s", *marketID)
	}
	return "global"
}

// getEventTimestamp extracts the versioned timestamp from the event.
// The core never calls time.Now() for event time: all timestamps are
// versioned inputs so replay is bit-identical.
func (c *DeterministicCore) getEventTimestamp(evt event.Event) time.Time {
	switch e := evt.(type) {
	case *event.PlayerInstall:
		return e.Timestamp
	case *event.Deposit:
		return e.Timestamp
	case *event.Withdrawal:
		return e.Timestamp
	case *event.MarketCreate:
		return e.Timestamp
	case *event.BetPlaced:
		return e.Timestamp
	case *event.SharesSold:
		return e.Timestamp
	case *event.MarketResolve:
		return e.Timestamp
	case *event.Claim:
		return e.Timestamp
	case *event.FeeWithdrawal:
		return e.Timestamp
	case *event.Tick:
		return time.UnixMicro(e.Timestamp)
	default:
		panic(fmt.Sprintf("FATAL: getEventTimestamp called with unhandled event type %T — deterministic core cannot use wall-clock time", evt))
	}
}

// computeStateDigest creates canonical bytes for the state hash:
// balances of accounts the batch touched, the named market's canonical
// state, and the global counters (registry, clock).
func (c *DeterministicCore) computeStateDigest(evt event.Event, batch *ledger.Batch) []byte {
	// Collect all affected accounts
	affectedAccounts := make(map[ledger.AccountKey]bool)

	if batch != nil {
		for _, j := range batch.Journals {
			affectedAccounts[j.DebitAccount] = true
			affectedAccounts[j.CreditAccount] = true
		}
	}

	// Sort accounts deterministically
	accounts := make([]ledger.AccountKey, 0, len(affectedAccounts))
	for key := range affectedAccounts {
		accounts = append(accounts, key)
	}

	// Sort by AccountPath (deterministic string ordering)
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].AccountPath() < accounts[j].AccountPath()
	})

	// Build digest
	digest := make([]byte, 0, len(accounts)*64+256)

	for _, key := range accounts {
		balance := c.balanceTracker.GetBalance(key)

		// Append account path
		path := key.AccountPath()
		digest = append(digest, byte(len(path)))
		digest = append(digest, []byte(path)...)

		// Append balance (8 bytes LE)
		digest = appendInt64LE(digest, balance)
	}

	// Fold in the touched market's AMM state so trades alter the hash
	// even when their journal shape repeats.
	if marketID := evt.MarketID(); marketID != nil {
		if m, err := c.markets.GetMarket(*marketID); err == nil {
			digest = append(digest, m.CanonicalBytes()...)
		}
	}

	// Global counters: market registry and logical clock
	digest = appendInt64LE(digest, int64(c.markets.NextMarketID()))
	digest = appendInt64LE(digest, int64(c.clock.Now()))

	return digest
}

func appendInt64LE(buf []byte, v int64) []byte {
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

// postCheckInvariants validates invariants after batch application
func (c *DeterministicCore) postCheckInvariants(evt event.Event) error {
	checkMarket := func(marketID string) error {
		m, err := c.markets.GetMarket(marketID)
		if err != nil {
			return err
		}
		return c.validator.ValidateVaultBacking(m)
	}

	switch e := evt.(type) {
	case *event.Withdrawal:
		if err := c.balanceTracker.ValidatePlayerCashNonNegative(e.PlayerID); err != nil {
			return fmt.Errorf("post-check player cash: %w", err)
		}

	case *event.BetPlaced:
		if err := c.balanceTracker.ValidatePlayerCashNonNegative(e.PlayerID); err != nil {
			return fmt.Errorf("post-check player cash: %w", err)
		}
		if err := checkMarket(e.Market); err != nil {
			return fmt.Errorf("post-check vault: %w", err)
		}
		if err := c.checkShareConservation(e.Market); err != nil {
			return err
		}

	case *event.SharesSold:
		if err := c.balanceTracker.ValidatePlayerCashNonNegative(e.PlayerID); err != nil {
			return fmt.Errorf("post-check player cash: %w", err)
		}
		if err := checkMarket(e.Market); err != nil {
			return fmt.Errorf("post-check vault: %w", err)
		}
		if err := c.checkShareConservation(e.Market); err != nil {
			return err
		}

	case *event.Claim:
		if err := checkMarket(e.Market); err != nil {
			return fmt.Errorf("post-check vault: %w", err)
		}

	case *event.FeeWithdrawal:
		if err := checkMarket(e.Market); err != nil {
			return fmt.Errorf("post-check vault: %w", err)
		}
	}

	// Periodic global zero-sum check
	if c.sequence > 0 && c.sequence%1000 == 0 {
		if total := c.balanceTracker.ComputeGlobalBalance(); total != 0 {
			return fmt.Errorf("post-check: global balance non-zero: %d (at seq %d)", total, c.sequence)
		}
	}

	return nil
}

// checkShareConservation verifies that position holdings sum exactly to
// the market's issued share totals.
func (c *DeterministicCore) checkShareConservation(marketID string) error {
	m, err := c.markets.GetMarket(marketID)
	if err != nil {
		return err
	}

	var yes, no uint64
	for _, pos := range c.positions.GetMarketPositions(marketID) {
		yes += pos.YesShares
		no += pos.NoShares
	}

	if yes != m.TotalYesShares || no != m.TotalNoShares {
		return fmt.Errorf("post-check shares: positions hold %d/%d, market issued %d/%d",
			yes, no, m.TotalYesShares, m.TotalNoShares)
	}
	return nil
}

// emptyBatch builds a journal-free batch so state-only events still
// flow through the hash chain and the event log.
func (c *DeterministicCore) emptyBatch(evt event.Event) *ledger.Batch {
	return &ledger.Batch{
		BatchID:   uuid.New(),
		EventRef:  evt.IdempotencyKey(),
		Sequence:  c.sequence,
		Timestamp: c.getEventTimestamp(evt).UnixMicro(),
		Journals:  []ledger.Journal{},
	}
}

// requireAdmin gates operator-only commands
func (c *DeterministicCore) requireAdmin(actorID uuid.UUID) error {
	if actorID != c.adminID {
		return fmt.Errorf("actor %s: %w", actorID, state.ErrUnauthorized)
	}
	return nil
}

func (c *DeterministicCore) handlePlayerInstall(evt *event.PlayerInstall) (*ledger.Batch, error) {
	if _, err := c.players.Install(evt.PlayerID); err != nil {
		return nil, err
	}
	return c.emptyBatch(evt), nil
}

func (c *DeterministicCore) handleDeposit(evt *event.Deposit) (*ledger.Batch, error) {
	if err := c.requireAdmin(evt.AdminID); err != nil {
		return nil, err
	}

	batch, err := c.journalGen.GenerateDeposit(evt)
	if err != nil {
		return nil, err
	}
	if err := c.players.Credit(evt.PlayerID, evt.Amount); err != nil {
		return nil, err
	}
	return batch, nil
}

func (c *DeterministicCore) handleWithdrawal(evt *event.Withdrawal) (*ledger.Batch, error) {
	// The journal generator pre-checks the tracker balance; the player
	// manager debit enforces the same bound on its own copy.
	batch, err := c.journalGen.GenerateWithdrawal(evt)
	if err != nil {
		return nil, err
	}
	if err := c.players.Debit(evt.PlayerID, evt.Amount); err != nil {
		return nil, err
	}
	return batch, nil
}

func (c *DeterministicCore) handleMarketCreate(evt *event.MarketCreate) (*ledger.Batch, error) {
	if err := c.requireAdmin(evt.AdminID); err != nil {
		return nil, err
	}

	_, err := c.markets.CreateMarket(
		evt.Title,
		evt.Description,
		evt.StartTime,
		evt.EndTime,
		evt.ResolutionTime,
		market.DefaultLimits(),
	)
	if err != nil {
		return nil, err
	}
	return c.emptyBatch(evt), nil
}

// handleBetPlaced executes a buy. Ordering matters for atomicity:
// every fallible check runs against unmutated state, then the
// mutations (position, player balance, AMM) land together.
func (c *DeterministicCore) handleBetPlaced(evt *event.BetPlaced) (*ledger.Batch, error) {
	m, err := c.markets.GetMarket(evt.Market)
	if err != nil {
		return nil, err
	}
	if !m.IsActive(c.clock.Now()) {
		return nil, fmt.Errorf("market %s at tick %d: %w", m.ID, c.clock.Now(), market.ErrMarketNotActive)
	}

	quote, err := m.QuoteBuy(evt.BetSide, evt.GrossAmount)
	if err != nil {
		return nil, err
	}

	player, err := c.players.Get(evt.PlayerID)
	if err != nil {
		return nil, err
	}
	if player.Balance < evt.GrossAmount {
		return nil, fmt.Errorf("player %s balance %d, stake %d: %w",
			evt.PlayerID, player.Balance, evt.GrossAmount, state.ErrInsufficientBalance)
	}

	// Position headroom check before anything mutates
	if pos := c.positions.GetPosition(evt.PlayerID, evt.Market); pos != nil {
		if _, err := math.CheckedAdd(pos.Shares(evt.BetSide), quote.Shares); err != nil {
			return nil, err
		}
	}

	// All checks passed; none of the mutations below can fail.
	if _, err := m.Buy(evt.BetSide, evt.GrossAmount); err != nil {
		return nil, err
	}
	if err := c.positions.CreditShares(evt.PlayerID, evt.Market, evt.BetSide, quote.Shares); err != nil {
		return nil, err
	}
	if err := c.players.Debit(evt.PlayerID, evt.GrossAmount); err != nil {
		return nil, err
	}

	return c.journalGen.GenerateBetStake(evt)
}

// handleSharesSold executes a sell with the same check-then-mutate
// ordering as handleBetPlaced.
func (c *DeterministicCore) handleSharesSold(evt *event.SharesSold) (*ledger.Batch, error) {
	m, err := c.markets.GetMarket(evt.Market)
	if err != nil {
		return nil, err
	}
	if !m.IsActive(c.clock.Now()) {
		return nil, fmt.Errorf("market %s at tick %d: %w", m.ID, c.clock.Now(), market.ErrMarketNotActive)
	}

	quote, err := m.QuoteSell(evt.SellSide, evt.Shares)
	if err != nil {
		return nil, err
	}

	// Position-level holding check before anything mutates
	pos := c.positions.GetPosition(evt.PlayerID, evt.Market)
	var held uint64
	if pos != nil {
		held = pos.Shares(evt.SellSide)
	}
	if held < evt.Shares {
		return nil, fmt.Errorf("player %s holds %d %v shares, selling %d: %w",
			evt.PlayerID, held, evt.SellSide, evt.Shares, market.ErrInsufficientShares)
	}

	player, err := c.players.Get(evt.PlayerID)
	if err != nil {
		return nil, err
	}
	if _, err := math.CheckedAdd(player.Balance, quote.NetPayout); err != nil {
		return nil, err
	}

	// All checks passed; none of the mutations below can fail.
	if _, err := m.Sell(evt.SellSide, evt.Shares); err != nil {
		return nil, err
	}
	if err := c.positions.DebitShares(evt.PlayerID, evt.Market, evt.SellSide, evt.Shares); err != nil {
		return nil, err
	}
	if err := c.players.Credit(evt.PlayerID, quote.NetPayout); err != nil {
		return nil, err
	}

	return c.journalGen.GenerateSellPayout(evt, quote.NetPayout)
}

func (c *DeterministicCore) handleMarketResolve(evt *event.MarketResolve) (*ledger.Batch, error) {
	if err := c.requireAdmin(evt.AdminID); err != nil {
		return nil, err
	}

	m, err := c.markets.GetMarket(evt.Market)
	if err != nil {
		return nil, err
	}
	if m.Resolved {
		return nil, fmt.Errorf("market %s: %w", m.ID, market.ErrAlreadyResolved)
	}
	if !m.CanResolve(c.clock.Now()) {
		return nil, fmt.Errorf("market %s resolvable at tick %d, now %d: %w",
			m.ID, m.ResolutionTime, c.clock.Now(), market.ErrMarketNotActive)
	}

	if err := m.Resolve(evt.Outcome); err != nil {
		return nil, err
	}
	return c.emptyBatch(evt), nil
}

// handleClaim settles a winner's share of the prize pool. A claim that
// rounds to zero payout still marks the position claimed.
func (c *DeterministicCore) handleClaim(evt *event.Claim) (*ledger.Batch, error) {
	m, err := c.markets.GetMarket(evt.Market)
	if err != nil {
		return nil, err
	}
	if !m.Resolved {
		return nil, fmt.Errorf("market %s: %w", m.ID, market.ErrMarketNotResolved)
	}

	pos := c.positions.GetPosition(evt.PlayerID, evt.Market)
	if pos == nil {
		return nil, fmt.Errorf("player %s has no position in market %s: %w",
			evt.PlayerID, m.ID, market.ErrNoWinningPosition)
	}
	if pos.Claimed {
		return nil, fmt.Errorf("player %s in market %s: %w", evt.PlayerID, m.ID, market.ErrAlreadyClaimed)
	}

	winning := pos.WinningShares(m.Outcome)
	if winning == 0 {
		return nil, fmt.Errorf("player %s holds no %v shares in market %s: %w",
			evt.PlayerID, m.Outcome, m.ID, market.ErrNoWinningPosition)
	}

	payout, err := m.ClaimPayout(winning)
	if err != nil {
		return nil, err
	}

	player, err := c.players.Get(evt.PlayerID)
	if err != nil {
		return nil, err
	}
	if _, err := math.CheckedAdd(player.Balance, payout); err != nil {
		return nil, err
	}

	// All checks passed; none of the mutations below can fail.
	if err := c.positions.MarkClaimed(evt.PlayerID, evt.Market); err != nil {
		return nil, err
	}
	if payout == 0 {
		return c.emptyBatch(evt), nil
	}
	if err := m.DebitClaim(payout); err != nil {
		return nil, err
	}
	if err := c.players.Credit(evt.PlayerID, payout); err != nil {
		return nil, err
	}

	return c.journalGen.GenerateClaimPayout(evt, payout)
}

func (c *DeterministicCore) handleFeeWithdrawal(evt *event.FeeWithdrawal) (*ledger.Batch, error) {
	if err := c.requireAdmin(evt.AdminID); err != nil {
		return nil, err
	}

	m, err := c.markets.GetMarket(evt.Market)
	if err != nil {
		return nil, err
	}

	outstanding := m.FeesOutstanding()
	if outstanding == 0 {
		// Idempotent: a second sweep transfers zero
		return c.emptyBatch(evt), nil
	}

	batch, err := c.journalGen.GenerateFeeWithdrawal(evt, m, outstanding)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		// No cash is sweepable above the pool yet; the counter stays
		// outstanding for a later sweep.
		return c.emptyBatch(evt), nil
	}
	// Advance the counter only by what actually moved: a capped sweep
	// leaves the remainder withdrawable.
	m.WithdrawFees(batch.Journals[0].Amount)
	return batch, nil
}

func (c *DeterministicCore) handleTick(evt *event.Tick) (*ledger.Batch, error) {
	c.clock.Advance(evt.Counter, evt.Timestamp)
	return c.emptyBatch(evt), nil
}

func (c *DeterministicCore) dispatchEvent(evt event.Event) (*ledger.Batch, error) {
	switch e := evt.(type) {
	case *event.PlayerInstall:
		return c.handlePlayerInstall(e)
	case *event.Deposit:
		return c.handleDeposit(e)
	case *event.Withdrawal:
		return c.handleWithdrawal(e)
	case *event.MarketCreate:
		return c.handleMarketCreate(e)
	case *event.BetPlaced:
		return c.handleBetPlaced(e)
	case *event.SharesSold:
		return c.handleSharesSold(e)
	case *event.MarketResolve:
		return c.handleMarketResolve(e)
	case *event.Claim:
		return c.handleClaim(e)
	case *event.FeeWithdrawal:
		return c.handleFeeWithdrawal(e)
	case *event.Tick:
		return c.handleTick(e)
	default:
		return nil, fmt.Errorf("unknown event type: %T", evt)
	}
}

// --- Read accessors for the serving layer ---

// Markets exposes the registry for read-only use
func (c *DeterministicCore) Markets() *state.MarketRegistry {
	return c.markets
}

// Players exposes the player manager for read-only use
func (c *DeterministicCore) Players() *state.PlayerManager {
	return c.players
}

// Positions exposes the position ledger for read-only use
func (c *DeterministicCore) Positions() *state.PositionLedger {
	return c.positions
}

// Clock exposes the logical clock for read-only use
func (c *DeterministicCore) Clock() *state.LogicalClock {
	return c.clock
}

// Balances exposes the balance tracker for read-only use
func (c *DeterministicCore) Balances() *ledger.BalanceTracker {
	return c.balanceTracker
}

// --- Snapshot Restore & Startup Methods ---

// SnapshotState holds the serializable in-memory state for restore.
// This mirrors persistence.SnapshotData but uses typed fields.
type SnapshotState struct {
	Sequence        int64
	StateHash       [32]byte
	PrevHash        [32]byte
	Balances        map[ledger.AccountKey]int64
	Players         []*state.Player
	Positions       []*state.Position
	Markets         []*market.Market
	NextMarketID    uint64
	ClockCounter    uint64
	ClockTicksSeen  uint64
	ClockLastTickTs int64
	SequenceState   map[string]int64
	IdempotencyKeys []string
}

// RestoreFromSnapshot restores the core's in-memory state from a
// snapshot. On warm restart, the latest snapshot loads first and the
// event log replays on top.
func (c *DeterministicCore) RestoreFromSnapshot(snap *SnapshotState) {
	// Restore sequence
	c.sequence = snap.Sequence + 1 // Next sequence to assign

	// Restore state hash chain
	c.hasher.SetPrevHash(snap.StateHash)

	// Restore balances
	for key, balance := range snap.Balances {
		c.balanceTracker.Restore(key, balance)
	}

	// Restore players and positions
	for _, player := range snap.Players {
		c.players.SetPlayer(player)
	}
	for _, pos := range snap.Positions {
		c.positions.SetPosition(pos)
	}

	// Restore markets
	for _, m := range snap.Markets {
		c.markets.RestoreMarket(m)
	}
	c.markets.RestoreNextMarketID(snap.NextMarketID)

	// Restore the logical clock
	c.clock.Restore(snap.ClockCounter, snap.ClockTicksSeen, snap.ClockLastTickTs)

	// Restore sequence validator state
	for partition, nextSeq := range snap.SequenceState {
		c.sequenceValidator.RestorePartition(partition, nextSeq)
	}

	// Restore journal generator sequence
	c.journalGen.RestoreSequence(snap.Sequence)
}

// WarmLRU loads recent idempotency keys into the LRU cache so freshly
// replayed commands skip the cold-path DB lookup.
func (c *DeterministicCore) WarmLRU(keys []string) {
	c.idempotency.lru.WarmFromKeys(keys)
}

// GetSequence returns the current global sequence number.
func (c *DeterministicCore) GetSequence() int64 {
	return c.sequence
}

// GetStateHash returns the current state hash (chain tip).
func (c *DeterministicCore) GetStateHash() [32]byte {
	return c.hasher.GetPrevHash()
}

// CreateSnapshotState captures the current in-memory state for persistence.
func (c *DeterministicCore) CreateSnapshotState() *SnapshotState {
	return &SnapshotState{
		Sequence:        c.sequence - 1, // Last processed sequence
		StateHash:       c.hasher.GetPrevHash(),
		Balances:        c.balanceTracker.Snapshot(),
		Players:         c.players.GetAllPlayers(),
		Positions:       c.positions.GetAllPositions(),
		Markets:         c.markets.AllMarkets(),
		NextMarketID:    c.markets.NextMarketID(),
		ClockCounter:    c.clock.Now(),
		ClockTicksSeen:  c.clock.TicksSeen(),
		ClockLastTickTs: c.clock.LastTickTimestamp(),
		SequenceState:   c.sequenceValidator.GetAllPartitions(),
		IdempotencyKeys: c.idempotency.lru.GetAllKeys(),
	}
}
