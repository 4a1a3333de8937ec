package market_test

import (
	"errors"
	"math/big"
	"testing"

	"PredictLedger/internal/event"
	"PredictLedger/internal/market"
)

func newTestMarket(t *testing.T) *market.Market {
	t.Helper()
	m, err := market.NewMarket("1", "Will it rain tomorrow?", "Test market",
		0, 1_000_000, 1_000_000, market.DefaultLimits())
	if err != nil {
		t.Fatalf("NewMarket: %v", err)
	}
	return m
}

// ==== Reference scenario ====

// Initial liquidity 1_000_000/1_000_000 at 25 bps. A 100_000 YES buy
// pays a 250 fee, moves 99_750 net into no_liquidity, recomputes
// yes_liquidity = floor(k / 1_099_750) = 909_297 and issues the
// 90_703 share difference.
func TestBuyReferenceScenario(t *testing.T) {
	m := newTestMarket(t)

	quote, err := m.Buy(event.SideYes, 100_000)
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}

	if quote.Fee != 250 {
		t.Errorf("fee: got %d, want 250", quote.Fee)
	}
	if quote.NetAmount != 99_750 {
		t.Errorf("net: got %d, want 99750", quote.NetAmount)
	}
	if m.NoLiquidity != 1_099_750 {
		t.Errorf("no_liquidity: got %d, want 1099750", m.NoLiquidity)
	}
	if m.YesLiquidity != 909_297 {
		t.Errorf("yes_liquidity: got %d, want 909297", m.YesLiquidity)
	}
	if quote.Shares != 90_703 {
		t.Errorf("shares: got %d, want 90703", quote.Shares)
	}
	if m.PrizePool != 99_750 {
		t.Errorf("prize_pool: got %d, want 99750", m.PrizePool)
	}
	if m.TotalYesShares != 90_703 {
		t.Errorf("total_yes_shares: got %d, want 90703", m.TotalYesShares)
	}
	if m.FeesCollected != 250 {
		t.Errorf("fees_collected: got %d, want 250", m.FeesCollected)
	}
	if m.TotalVolume != 100_000 {
		t.Errorf("total_volume: got %d, want 100000", m.TotalVolume)
	}
}

func TestLoneClaimantReceivesWholePool(t *testing.T) {
	m := newTestMarket(t)

	quote, err := m.Buy(event.SideYes, 100_000)
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if err := m.Resolve(event.SideYes); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	payout, err := m.ClaimPayout(quote.Shares)
	if err != nil {
		t.Fatalf("ClaimPayout: %v", err)
	}
	if payout != 99_750 {
		t.Errorf("payout: got %d, want 99750", payout)
	}

	if err := m.DebitClaim(payout); err != nil {
		t.Fatalf("DebitClaim: %v", err)
	}
	if m.PrizePool != 0 {
		t.Errorf("prize_pool after claim: got %d, want 0", m.PrizePool)
	}
}

// ==== Invariants ====

// After every trade the stored liquidities must satisfy
// newOwn = floor(k / newOpposite) for the k computed at trade entry:
// newYes * newNo <= k < (newYes + 1) * newNo for a YES trade.
func TestProductPreservedWithinTrade(t *testing.T) {
	m := newTestMarket(t)

	amounts := []uint64{100_000, 5_000, 777, 3_333_333, 50}
	for _, amount := range amounts {
		kBefore := mulWide(m.YesLiquidity, m.NoLiquidity)

		if _, err := m.Buy(event.SideYes, amount); err != nil {
			t.Fatalf("Buy %d: %v", amount, err)
		}

		low := mulWide(m.YesLiquidity, m.NoLiquidity)
		high := mulWide(m.YesLiquidity+1, m.NoLiquidity)
		if low.Cmp(kBefore) > 0 || high.Cmp(kBefore) <= 0 {
			t.Fatalf("buy %d: k=%s not preserved: yes=%d no=%d",
				amount, kBefore, m.YesLiquidity, m.NoLiquidity)
		}
	}
}

func TestPriceNormalization(t *testing.T) {
	m := newTestMarket(t)

	checkPrices := func() {
		t.Helper()
		yes, err := m.YesPrice()
		if err != nil {
			t.Fatalf("YesPrice: %v", err)
		}
		no, err := m.NoPrice()
		if err != nil {
			t.Fatalf("NoPrice: %v", err)
		}
		sum := yes + no
		if sum != market.PricePrecision && sum != market.PricePrecision-1 {
			t.Fatalf("yes %d + no %d = %d, want %d +/- 1",
				yes, no, sum, market.PricePrecision)
		}
	}

	checkPrices()
	for _, amount := range []uint64{100_000, 13, 9_999_999, 250_000} {
		side := event.SideYes
		if amount%2 == 0 {
			side = event.SideNo
		}
		if _, err := m.Buy(side, amount); err != nil {
			t.Fatalf("Buy %d: %v", amount, err)
		}
		checkPrices()
	}
}

func TestRoundTripNeverProfits(t *testing.T) {
	for _, stake := range []uint64{1_000, 10_000, 100_000, 1_234_567} {
		m := newTestMarket(t)

		quote, err := m.Buy(event.SideYes, stake)
		if err != nil {
			t.Fatalf("Buy %d: %v", stake, err)
		}
		sellQuote, err := m.Sell(event.SideYes, quote.Shares)
		if err != nil {
			t.Fatalf("Sell %d shares: %v", quote.Shares, err)
		}
		if sellQuote.NetPayout > stake {
			t.Errorf("stake %d: round trip paid out %d", stake, sellQuote.NetPayout)
		}
	}
}

func TestSellPayoutBoundedByPool(t *testing.T) {
	m := newTestMarket(t)
	if _, err := m.Buy(event.SideYes, 100_000); err != nil {
		t.Fatalf("Buy: %v", err)
	}

	// Drain the pool behind the curve's back, then try to sell.
	m.PrizePool = 10
	before := *m

	_, err := m.Sell(event.SideYes, m.TotalYesShares)
	if !errors.Is(err, market.ErrInsufficientPrizePool) {
		t.Fatalf("got %v, want ErrInsufficientPrizePool", err)
	}
	if *m != before {
		t.Error("failed sell mutated market state")
	}
}

// ==== Validation and lifecycle ====

func TestBuyValidation(t *testing.T) {
	m := newTestMarket(t)

	if _, err := m.Buy(event.SideYes, 0); !errors.Is(err, market.ErrInvalidAmount) {
		t.Errorf("zero stake: got %v, want ErrInvalidAmount", err)
	}
	limits := market.DefaultLimits()
	if _, err := m.Buy(event.SideYes, limits.MaxBetAmount+1); !errors.Is(err, market.ErrInvalidAmount) {
		t.Errorf("oversized stake: got %v, want ErrInvalidAmount", err)
	}
	if _, err := m.Buy(event.SideUnknown, 1_000); !errors.Is(err, market.ErrInvalidTrade) {
		t.Errorf("bad side: got %v, want ErrInvalidTrade", err)
	}
}

func TestBuyLiquidityExhausted(t *testing.T) {
	limits := market.DefaultLimits()
	limits.InitialYesLiquidity = 2_000
	limits.InitialNoLiquidity = 2_000

	m, err := market.NewMarket("2", "thin market", "", 0, 100, 100, limits)
	if err != nil {
		t.Fatalf("NewMarket: %v", err)
	}

	// net 2_992 pushes no_liquidity to 4_992 and floors yes_liquidity
	// to 801, under the 1_000 floor.
	_, err = m.Buy(event.SideYes, 3_000)
	if !errors.Is(err, market.ErrLiquidityExhausted) {
		t.Errorf("got %v, want ErrLiquidityExhausted", err)
	}
}

func TestSellInsufficientShares(t *testing.T) {
	m := newTestMarket(t)
	if _, err := m.Buy(event.SideYes, 100_000); err != nil {
		t.Fatalf("Buy: %v", err)
	}

	_, err := m.Sell(event.SideYes, m.TotalYesShares+1)
	if !errors.Is(err, market.ErrInsufficientShares) {
		t.Errorf("got %v, want ErrInsufficientShares", err)
	}
}

func TestResolveOneShot(t *testing.T) {
	m := newTestMarket(t)

	if err := m.Resolve(event.SideNo); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !m.Resolved || m.Outcome != event.SideNo {
		t.Errorf("got resolved=%v outcome=%v, want true/NO", m.Resolved, m.Outcome)
	}

	err := m.Resolve(event.SideYes)
	if !errors.Is(err, market.ErrAlreadyResolved) {
		t.Errorf("got %v, want ErrAlreadyResolved", err)
	}
	if m.Outcome != event.SideNo {
		t.Errorf("second resolve changed outcome to %v", m.Outcome)
	}
}

func TestClaimBeforeResolution(t *testing.T) {
	m := newTestMarket(t)
	before := *m

	_, err := m.ClaimPayout(100)
	if !errors.Is(err, market.ErrMarketNotResolved) {
		t.Errorf("got %v, want ErrMarketNotResolved", err)
	}
	if *m != before {
		t.Error("failed claim mutated market state")
	}
}

func TestWithdrawFeesIdempotent(t *testing.T) {
	m := newTestMarket(t)
	if _, err := m.Buy(event.SideYes, 100_000); err != nil {
		t.Fatalf("Buy: %v", err)
	}

	first := m.WithdrawFees(m.FeesOutstanding())
	if first != 250 {
		t.Errorf("first withdrawal: got %d, want 250", first)
	}
	second := m.WithdrawFees(m.FeesOutstanding())
	if second != 0 {
		t.Errorf("second withdrawal: got %d, want 0", second)
	}
	// Lifetime accrual is untouched by the sweep.
	if m.FeesCollected != 250 {
		t.Errorf("fees_collected: got %d, want 250", m.FeesCollected)
	}
}

func TestWithdrawFeesPartialSweepKeepsRemainder(t *testing.T) {
	m := newTestMarket(t)
	if _, err := m.Buy(event.SideYes, 100_000); err != nil {
		t.Fatalf("Buy: %v", err)
	}

	// A sweep capped below the counter advances it only by the amount
	// that moved.
	if got := m.WithdrawFees(100); got != 100 {
		t.Fatalf("capped withdrawal: got %d, want 100", got)
	}
	if got := m.FeesOutstanding(); got != 150 {
		t.Errorf("fees outstanding after capped sweep: got %d, want 150", got)
	}

	// Asking for more than the counter holds sweeps only the remainder.
	if got := m.WithdrawFees(1_000); got != 150 {
		t.Errorf("oversized withdrawal: got %d, want 150", got)
	}
	if got := m.FeesOutstanding(); got != 0 {
		t.Errorf("fees outstanding after full sweep: got %d, want 0", got)
	}
	if m.FeesCollected != 250 {
		t.Errorf("fees_collected: got %d, want 250", m.FeesCollected)
	}
}

func TestMarketTimeWindow(t *testing.T) {
	m, err := market.NewMarket("3", "windowed", "", 100, 200, 300, market.DefaultLimits())
	if err != nil {
		t.Fatalf("NewMarket: %v", err)
	}

	if m.IsActive(99) {
		t.Error("active before start")
	}
	if !m.IsActive(100) || !m.IsActive(199) {
		t.Error("not active inside window")
	}
	if m.IsActive(200) {
		t.Error("active at end")
	}
	if m.CanResolve(299) {
		t.Error("resolvable before resolution time")
	}
	if !m.CanResolve(300) {
		t.Error("not resolvable at resolution time")
	}

	_, err = market.NewMarket("4", "bad window", "", 200, 100, 300, market.DefaultLimits())
	if !errors.Is(err, market.ErrInvalidMarketTime) {
		t.Errorf("got %v, want ErrInvalidMarketTime", err)
	}
}

// ==== Previews ====

func TestQuoteDoesNotMutate(t *testing.T) {
	m := newTestMarket(t)
	before := *m

	if _, err := m.QuoteBuy(event.SideYes, 100_000); err != nil {
		t.Fatalf("QuoteBuy: %v", err)
	}
	if _, _, err := m.BuyImpact(event.SideNo, 50_000); err != nil {
		t.Fatalf("BuyImpact: %v", err)
	}
	if _, err := m.Slippage(event.SideYes, 100_000); err != nil {
		t.Fatalf("Slippage: %v", err)
	}

	if *m != before {
		t.Error("preview mutated market state")
	}
}

func TestQuoteMatchesExecution(t *testing.T) {
	m := newTestMarket(t)

	quote, err := m.QuoteBuy(event.SideNo, 42_000)
	if err != nil {
		t.Fatalf("QuoteBuy: %v", err)
	}
	executed, err := m.Buy(event.SideNo, 42_000)
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if *quote != *executed {
		t.Errorf("quote %+v != execution %+v", quote, executed)
	}
}

func TestSlippagePositiveForLargeBuy(t *testing.T) {
	m := newTestMarket(t)

	slip, err := m.Slippage(event.SideYes, 100_000)
	if err != nil {
		t.Fatalf("Slippage: %v", err)
	}
	if slip == 0 {
		t.Error("large buy reported zero slippage")
	}

	zero, err := m.Slippage(event.SideYes, 0)
	if err != nil || zero != 0 {
		t.Errorf("got (%d, %v), want (0, nil)", zero, err)
	}
}

// mulWide computes the full-width liquidity product for invariant
// checks, independent of the code under test.
func mulWide(a, b uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
}
