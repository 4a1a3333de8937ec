package state_test

import (
	"errors"
	"testing"

	"PredictLedger/internal/event"
	"PredictLedger/internal/market"
	"PredictLedger/internal/state"

	"github.com/google/uuid"
)

var (
	alice = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	bob   = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

func TestPlayerLifecycle(t *testing.T) {
	pm := state.NewPlayerManager()

	if _, err := pm.Install(alice); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if _, err := pm.Install(alice); !errors.Is(err, state.ErrPlayerExists) {
		t.Errorf("got %v, want ErrPlayerExists", err)
	}
	if _, err := pm.Get(bob); !errors.Is(err, state.ErrPlayerNotFound) {
		t.Errorf("got %v, want ErrPlayerNotFound", err)
	}

	if err := pm.Credit(alice, 1_000_000); err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if err := pm.Debit(alice, 400_000); err != nil {
		t.Fatalf("Debit: %v", err)
	}

	player, err := pm.Get(alice)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if player.Balance != 600_000 {
		t.Errorf("balance: got %d, want 600000", player.Balance)
	}

	if err := pm.Debit(alice, 600_001); !errors.Is(err, state.ErrInsufficientBalance) {
		t.Errorf("got %v, want ErrInsufficientBalance", err)
	}
	if player.Balance != 600_000 {
		t.Errorf("failed debit changed balance to %d", player.Balance)
	}
}

func TestPositionShareFlow(t *testing.T) {
	pl := state.NewPositionLedger()

	if err := pl.CreditShares(alice, "1", event.SideYes, 90_703); err != nil {
		t.Fatalf("CreditShares: %v", err)
	}
	if err := pl.DebitShares(alice, "1", event.SideYes, 40_000); err != nil {
		t.Fatalf("DebitShares: %v", err)
	}

	pos := pl.GetPosition(alice, "1")
	if pos == nil || pos.YesShares != 50_703 {
		t.Fatalf("position: got %+v, want yes_shares=50703", pos)
	}

	// Selling more than held is rejected at the position level.
	err := pl.DebitShares(alice, "1", event.SideYes, 50_704)
	if !errors.Is(err, market.ErrInsufficientShares) {
		t.Errorf("got %v, want ErrInsufficientShares", err)
	}

	// A player with no position at all gets the same rejection.
	err = pl.DebitShares(bob, "1", event.SideNo, 1)
	if !errors.Is(err, market.ErrInsufficientShares) {
		t.Errorf("got %v, want ErrInsufficientShares", err)
	}
}

func TestMarkClaimedOneWay(t *testing.T) {
	pl := state.NewPositionLedger()
	if err := pl.CreditShares(alice, "1", event.SideYes, 100); err != nil {
		t.Fatalf("CreditShares: %v", err)
	}

	if err := pl.MarkClaimed(alice, "1"); err != nil {
		t.Fatalf("MarkClaimed: %v", err)
	}
	if err := pl.MarkClaimed(alice, "1"); !errors.Is(err, market.ErrAlreadyClaimed) {
		t.Errorf("got %v, want ErrAlreadyClaimed", err)
	}
}

func TestMarketRegistryAssignsIDs(t *testing.T) {
	mr := state.NewMarketRegistry()

	first, err := mr.CreateMarket("first", "", 0, 100, 100, market.DefaultLimits())
	if err != nil {
		t.Fatalf("CreateMarket: %v", err)
	}
	second, err := mr.CreateMarket("second", "", 0, 100, 100, market.DefaultLimits())
	if err != nil {
		t.Fatalf("CreateMarket: %v", err)
	}

	if first.ID != "1" || second.ID != "2" {
		t.Errorf("ids: got %q/%q, want 1/2", first.ID, second.ID)
	}
	if mr.NextMarketID() != 3 {
		t.Errorf("next id: got %d, want 3", mr.NextMarketID())
	}

	if _, err := mr.GetMarket("99"); !errors.Is(err, state.ErrMarketNotFound) {
		t.Errorf("got %v, want ErrMarketNotFound", err)
	}

	all := mr.AllMarkets()
	if len(all) != 2 || all[0].ID != "1" || all[1].ID != "2" {
		t.Errorf("AllMarkets out of creation order: %v", all)
	}
}

func TestLogicalClockIgnoresStaleTicks(t *testing.T) {
	lc := state.NewLogicalClock()

	if !lc.Advance(10, 1_000) {
		t.Error("first tick not applied")
	}
	if lc.Advance(10, 2_000) {
		t.Error("duplicate tick applied")
	}
	if lc.Advance(5, 3_000) {
		t.Error("stale tick applied")
	}
	// Gaps are tolerated.
	if !lc.Advance(100, 4_000) {
		t.Error("gapped tick rejected")
	}

	if lc.Now() != 100 {
		t.Errorf("now: got %d, want 100", lc.Now())
	}
	if lc.TicksSeen() != 2 {
		t.Errorf("ticks seen: got %d, want 2", lc.TicksSeen())
	}
}

func TestValuatorResolvedPosition(t *testing.T) {
	mr := state.NewMarketRegistry()
	pl := state.NewPositionLedger()
	valuator := state.NewValuator(pl, mr)

	m, err := mr.CreateMarket("resolved", "", 0, 100, 100, market.DefaultLimits())
	if err != nil {
		t.Fatalf("CreateMarket: %v", err)
	}
	quote, err := m.Buy(event.SideYes, 100_000)
	if err != nil {
		t.Fatalf("Buy: %v", err)
	}
	if err := pl.CreditShares(alice, m.ID, event.SideYes, quote.Shares); err != nil {
		t.Fatalf("CreditShares: %v", err)
	}
	if err := m.Resolve(event.SideYes); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	value, err := valuator.PositionValue(pl.GetPosition(alice, m.ID))
	if err != nil {
		t.Fatalf("PositionValue: %v", err)
	}
	if value != 99_750 {
		t.Errorf("value: got %d, want 99750", value)
	}
}
