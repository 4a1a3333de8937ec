package state

import (
	"fmt"
	"strconv"

	"PredictLedger/internal/market"
)

// MarketRegistry owns all markets keyed by their assigned id. Ids are
// monotonically assigned at creation and never reused; markets are
// never deleted (append-only financial record).
// Not thread-safe — only accessed from the single-threaded deterministic core.
type MarketRegistry struct {
	markets      map[string]*market.Market
	order        []string // creation order, for deterministic iteration
	nextMarketID uint64
}

func NewMarketRegistry() *MarketRegistry {
	return &MarketRegistry{
		markets:      make(map[string]*market.Market),
		nextMarketID: 1,
	}
}

// CreateMarket assigns the next market id and opens the market.
func (mr *MarketRegistry) CreateMarket(title, description string, startTime, endTime, resolutionTime uint64, limits market.Limits) (*market.Market, error) {
	id := strconv.FormatUint(mr.nextMarketID, 10)

	m, err := market.NewMarket(id, title, description, startTime, endTime, resolutionTime, limits)
	if err != nil {
		return nil, err
	}

	mr.nextMarketID++
	mr.markets[id] = m
	mr.order = append(mr.order, id)
	return m, nil
}

// GetMarket returns a market by id.
func (mr *MarketRegistry) GetMarket(id string) (*market.Market, error) {
	m, ok := mr.markets[id]
	if !ok {
		return nil, fmt.Errorf("market %s: %w", id, ErrMarketNotFound)
	}
	return m, nil
}

// AllMarkets returns markets in creation order.
func (mr *MarketRegistry) AllMarkets() []*market.Market {
	result := make([]*market.Market, 0, len(mr.markets))
	for _, id := range mr.order {
		result = append(result, mr.markets[id])
	}
	return result
}

// Count returns the number of markets
func (mr *MarketRegistry) Count() int {
	return len(mr.markets)
}

// NextMarketID returns the id the next created market will get
func (mr *MarketRegistry) NextMarketID() uint64 {
	return mr.nextMarketID
}

// RestoreMarket directly sets a market (used for snapshot restore)
func (mr *MarketRegistry) RestoreMarket(m *market.Market) {
	if _, exists := mr.markets[m.ID]; !exists {
		mr.order = append(mr.order, m.ID)
	}
	mr.markets[m.ID] = m
}

// RestoreNextMarketID directly sets the id counter (used for snapshot restore)
func (mr *MarketRegistry) RestoreNextMarketID(next uint64) {
	mr.nextMarketID = next
}
