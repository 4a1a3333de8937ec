package projection

import "testing"

func sample(marketID string, seq int64, yesPpm uint64) MarketHistoryEntry {
	return MarketHistoryEntry{
		MarketID:    marketID,
		Sequence:    seq,
		EventType:   "BetPlaced",
		YesPricePpm: yesPpm,
		NoPricePpm:  1_000_000 - yesPpm,
	}
}

func TestMarketHistory_NewestFirst(t *testing.T) {
	p := NewMarketHistoryProjection()
	p.AddEntry(sample("1", 10, 500_000))
	p.AddEntry(sample("1", 11, 524_000))
	p.AddEntry(sample("2", 12, 500_000))
	p.AddEntry(sample("1", 13, 538_000))

	got := p.QueryByMarket("1", 10)
	if len(got) != 3 {
		t.Fatalf("got %d entries, want 3", len(got))
	}
	if got[0].Sequence != 13 || got[1].Sequence != 11 || got[2].Sequence != 10 {
		t.Errorf("order = [%d %d %d], want [13 11 10]",
			got[0].Sequence, got[1].Sequence, got[2].Sequence)
	}
}

func TestMarketHistory_LimitApplied(t *testing.T) {
	p := NewMarketHistoryProjection()
	for i := int64(0); i < 5; i++ {
		p.AddEntry(sample("1", i, 500_000))
	}

	got := p.QueryByMarket("1", 2)
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].Sequence != 4 {
		t.Errorf("newest sequence = %d, want 4", got[0].Sequence)
	}
}

func TestMarketHistory_UnknownMarketEmpty(t *testing.T) {
	p := NewMarketHistoryProjection()
	p.AddEntry(sample("1", 1, 500_000))

	if got := p.QueryByMarket("9", 10); len(got) != 0 {
		t.Errorf("got %d entries for unknown market, want 0", len(got))
	}
}
