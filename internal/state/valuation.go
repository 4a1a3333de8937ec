package state

import (
	"PredictLedger/internal/event"
	"PredictLedger/internal/math"

	"github.com/google/uuid"
)

// Valuator computes derived position values against current market
// state. Values are estimates for the read side; settlement amounts
// come only from the market operations themselves.
type Valuator struct {
	positions *PositionLedger
	markets   *MarketRegistry
}

func NewValuator(pl *PositionLedger, mr *MarketRegistry) *Valuator {
	return &Valuator{
		positions: pl,
		markets:   mr,
	}
}

// PositionValue estimates what a position is worth now. After
// resolution it is the claimable payout; before, a per-share prize
// pool estimate on each side.
func (v *Valuator) PositionValue(pos *Position) (uint64, error) {
	m, err := v.markets.GetMarket(pos.MarketID)
	if err != nil {
		return 0, err
	}

	if m.Resolved {
		if pos.Claimed {
			return 0, nil
		}
		winning := pos.WinningShares(m.Outcome)
		if winning == 0 {
			return 0, nil
		}
		return m.ClaimPayout(winning)
	}

	var total uint64
	for _, side := range []event.Side{event.SideYes, event.SideNo} {
		shares := pos.Shares(side)
		if shares == 0 {
			continue
		}
		perShare, err := m.ShareValue(side)
		if err != nil {
			return 0, err
		}
		sideValue, err := math.CheckedMul(shares, perShare)
		if err != nil {
			return 0, err
		}
		total, err = math.CheckedAdd(total, sideValue)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}

// PlayerExposure sums estimated position value across all of a
// player's positions.
func (v *Valuator) PlayerExposure(playerID uuid.UUID) (uint64, error) {
	var total uint64
	for _, pos := range v.positions.GetPlayerPositions(playerID) {
		value, err := v.PositionValue(pos)
		if err != nil {
			// Orphaned positions (market missing) contribute nothing.
			continue
		}
		var addErr error
		total, addErr = math.CheckedAdd(total, value)
		if addErr != nil {
			return 0, addErr
		}
	}
	return total, nil
}
