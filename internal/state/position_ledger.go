package state

import (
	"fmt"

	"PredictLedger/internal/event"
	"PredictLedger/internal/market"
	"PredictLedger/internal/math"

	"github.com/google/uuid"
)

// PositionLedger holds per-(player, market) share bookkeeping. All
// mutation goes through the market operations in the engine, never
// directly. Not thread-safe — only accessed from the single-threaded
// deterministic core.
type PositionLedger struct {
	positions map[PositionKey]*Position
}

type PositionKey struct {
	PlayerID uuid.UUID
	MarketID string
}

func NewPositionLedger() *PositionLedger {
	return &PositionLedger{
		positions: make(map[PositionKey]*Position),
	}
}

// GetPosition returns existing position or nil
func (pl *PositionLedger) GetPosition(playerID uuid.UUID, marketID string) *Position {
	key := PositionKey{PlayerID: playerID, MarketID: marketID}
	return pl.positions[key]
}

// GetOrCreatePosition returns existing or creates new empty position
func (pl *PositionLedger) GetOrCreatePosition(playerID uuid.UUID, marketID string) *Position {
	key := PositionKey{PlayerID: playerID, MarketID: marketID}
	pos := pl.positions[key]

	if pos == nil {
		pos = &Position{
			PlayerID: playerID,
			MarketID: marketID,
		}
		pl.positions[key] = pos
	}

	return pos
}

// CreditShares adds bought shares to a player's position.
func (pl *PositionLedger) CreditShares(playerID uuid.UUID, marketID string, side event.Side, shares uint64) error {
	pos := pl.GetOrCreatePosition(playerID, marketID)

	switch side {
	case event.SideYes:
		newShares, err := math.CheckedAdd(pos.YesShares, shares)
		if err != nil {
			return err
		}
		pos.YesShares = newShares
	case event.SideNo:
		newShares, err := math.CheckedAdd(pos.NoShares, shares)
		if err != nil {
			return err
		}
		pos.NoShares = newShares
	default:
		return fmt.Errorf("credit %d shares: side %v: %w", shares, side, market.ErrInvalidTrade)
	}

	pos.Version++
	return nil
}

// DebitShares removes sold shares from a player's position. The
// position-level check runs before the market-wide supply check so a
// caller selling more than they hold is rejected here.
func (pl *PositionLedger) DebitShares(playerID uuid.UUID, marketID string, side event.Side, shares uint64) error {
	pos := pl.GetPosition(playerID, marketID)
	if pos == nil || pos.Shares(side) < shares {
		held := uint64(0)
		if pos != nil {
			held = pos.Shares(side)
		}
		return fmt.Errorf("player %s holds %d %v shares in market %s, selling %d: %w",
			playerID, held, side, marketID, shares, market.ErrInsufficientShares)
	}

	switch side {
	case event.SideYes:
		pos.YesShares -= shares
	case event.SideNo:
		pos.NoShares -= shares
	default:
		return fmt.Errorf("debit %d shares: side %v: %w", shares, side, market.ErrInvalidTrade)
	}

	pos.Version++
	return nil
}

// MarkClaimed sets the one-way claimed flag.
func (pl *PositionLedger) MarkClaimed(playerID uuid.UUID, marketID string) error {
	pos := pl.GetPosition(playerID, marketID)
	if pos == nil {
		return fmt.Errorf("player %s has no position in market %s: %w",
			playerID, marketID, market.ErrNoWinningPosition)
	}
	if pos.Claimed {
		return fmt.Errorf("player %s in market %s: %w", playerID, marketID, market.ErrAlreadyClaimed)
	}
	pos.Claimed = true
	pos.Version++
	return nil
}

// SetPosition directly sets a position (used for snapshot restore)
func (pl *PositionLedger) SetPosition(pos *Position) {
	key := PositionKey{PlayerID: pos.PlayerID, MarketID: pos.MarketID}
	pl.positions[key] = pos
}

// GetAllPositions returns all positions (for iteration)
func (pl *PositionLedger) GetAllPositions() []*Position {
	result := make([]*Position, 0, len(pl.positions))
	for _, pos := range pl.positions {
		result = append(result, pos)
	}
	return result
}

// GetPlayerPositions returns all positions for a player
func (pl *PositionLedger) GetPlayerPositions(playerID uuid.UUID) []*Position {
	result := make([]*Position, 0)
	for key, pos := range pl.positions {
		if key.PlayerID == playerID {
			result = append(result, pos)
		}
	}
	return result
}

// GetMarketPositions returns all positions in a market
func (pl *PositionLedger) GetMarketPositions(marketID string) []*Position {
	result := make([]*Position, 0)
	for key, pos := range pl.positions {
		if key.MarketID == marketID {
			result = append(result, pos)
		}
	}
	return result
}
