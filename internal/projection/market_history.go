package projection

// MarketHistoryEntry is one point on a market's price/liquidity timeline.
type MarketHistoryEntry struct {
	MarketID     string
	Sequence     int64
	EventType    string
	YesPricePpm  uint64
	NoPricePpm   uint64
	YesLiquidity uint64
	NoLiquidity  uint64
	PrizePool    uint64
	TotalVolume  uint64
	Timestamp    int64
}

// MarketHistoryProjection maintains an in-memory queryable price history.
// The durable copy lives in projections.market_history; this one backs
// low-latency chart queries without a DB round trip.
type MarketHistoryProjection struct {
	entries []MarketHistoryEntry
}

func NewMarketHistoryProjection() *MarketHistoryProjection {
	return &MarketHistoryProjection{
		entries: make([]MarketHistoryEntry, 0),
	}
}

// AddEntry records a market state sample
func (p *MarketHistoryProjection) AddEntry(entry MarketHistoryEntry) {
	p.entries = append(p.entries, entry)
}

// QueryByMarket returns the most recent entries for a market, newest first.
func (p *MarketHistoryProjection) QueryByMarket(marketID string, limit int) []MarketHistoryEntry {
	result := make([]MarketHistoryEntry, 0)

	for i := len(p.entries) - 1; i >= 0 && len(result) < limit; i-- {
		if p.entries[i].MarketID == marketID {
			result = append(result, p.entries[i])
		}
	}

	return result
}
