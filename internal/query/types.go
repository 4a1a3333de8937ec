package query

import "github.com/google/uuid"

// MarketResponse represents a market for API queries.
type MarketResponse struct {
	MarketID       string `json:"market_id"`
	Title          string `json:"title"`
	Description    string `json:"description,omitempty"`
	StartTime      int64  `json:"start_time"`
	EndTime        int64  `json:"end_time"`
	ResolutionTime int64  `json:"resolution_time"`
	YesPricePpm    int64  `json:"yes_price_ppm"`
	NoPricePpm     int64  `json:"no_price_ppm"`
	YesLiquidity   int64  `json:"yes_liquidity"`
	NoLiquidity    int64  `json:"no_liquidity"`
	PrizePool      int64  `json:"prize_pool"`
	TotalVolume    int64  `json:"total_volume"`
	Resolved       bool   `json:"resolved"`
	Outcome        int32  `json:"outcome"`
	AsOfSequence   int64  `json:"as_of_sequence"`
}

// PositionResponse represents a player's holdings in one market.
type PositionResponse struct {
	PlayerID     uuid.UUID `json:"player_id"`
	MarketID     string    `json:"market_id"`
	YesShares    int64     `json:"yes_shares"`
	NoShares     int64     `json:"no_shares"`
	Claimed      bool      `json:"claimed"`
	Version      int64     `json:"version"`
	AsOfSequence int64     `json:"as_of_sequence"`
}

// MarketHistoryResponse is one point on a market's price timeline.
type MarketHistoryResponse struct {
	MarketID     string `json:"market_id"`
	Sequence     int64  `json:"sequence"`
	EventType    string `json:"event_type"`
	YesPricePpm  int64  `json:"yes_price_ppm"`
	NoPricePpm   int64  `json:"no_price_ppm"`
	YesLiquidity int64  `json:"yes_liquidity"`
	NoLiquidity  int64  `json:"no_liquidity"`
	PrizePool    int64  `json:"prize_pool"`
	TotalVolume  int64  `json:"total_volume"`
	Timestamp    int64  `json:"timestamp"`
	AsOfSequence int64  `json:"as_of_sequence"`
}

// JournalHistoryEntry represents a journal entry for API queries.
type JournalHistoryEntry struct {
	JournalID     string `json:"journal_id"`
	BatchID       string `json:"batch_id"`
	EventRef      string `json:"event_ref"`
	Sequence      int64  `json:"sequence"`
	DebitAccount  string `json:"debit_account"`
	CreditAccount string `json:"credit_account"`
	Amount        int64  `json:"amount"`
	JournalType   int32  `json:"journal_type"`
	Timestamp     int64  `json:"timestamp"`
}

// IntegrityReport is the result of an integrity verification check.
type IntegrityReport struct {
	IsHealthy       bool    `json:"is_healthy"`
	HashChainBreaks []int64 `json:"hash_chain_breaks,omitempty"`
	GlobalImbalance int64   `json:"global_imbalance"`
}
