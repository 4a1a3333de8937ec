package query

import (
	"github.com/google/uuid"
)

// BalanceResponse represents a player's cash balance for API queries.
type BalanceResponse struct {
	PlayerID uuid.UUID `json:"player_id"`

	// Ledger balance (from journal entries)
	CashBalance int64 `json:"cash_balance"`

	// Metadata
	AsOfSequence int64 `json:"as_of_sequence"` // last projected event sequence
}

// MarketAccountResponse represents a market's vault backing for admin queries.
type MarketAccountResponse struct {
	MarketID        string `json:"market_id"`
	VaultBalance    int64  `json:"vault_balance"`
	PrizePool       int64  `json:"prize_pool"`
	FeesOutstanding int64  `json:"fees_outstanding"` // vault_balance - prize_pool, capped below by zero

	AsOfSequence int64 `json:"as_of_sequence"`
}

// OperatorFeesResponse represents the operator's swept fee balance.
type OperatorFeesResponse struct {
	Balance      int64 `json:"balance"`
	AsOfSequence int64 `json:"as_of_sequence"`
}
