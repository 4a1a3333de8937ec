package state

import (
	"PredictLedger/internal/event"

	"github.com/google/uuid"
)

// Position represents a player's holdings in one market
type Position struct {
	PlayerID  uuid.UUID
	MarketID  string
	YesShares uint64
	NoShares  uint64
	Claimed   bool  // One-way, set by a successful claim
	Version   int64 // Bumped on every mutation
}

// IsEmpty returns true if the position holds no shares on either side
func (p *Position) IsEmpty() bool {
	return p.YesShares == 0 && p.NoShares == 0
}

// Shares returns the holdings on the given side
func (p *Position) Shares(side event.Side) uint64 {
	switch side {
	case event.SideYes:
		return p.YesShares
	case event.SideNo:
		return p.NoShares
	default:
		return 0
	}
}

// WinningShares returns the holdings on the resolved outcome side
func (p *Position) WinningShares(outcome event.Side) uint64 {
	return p.Shares(outcome)
}

// CanonicalBytes returns deterministic serialization for hashing
func (p *Position) CanonicalBytes() []byte {
	buf := make([]byte, 0, 64)

	// player_id (16 bytes UUID binary)
	buf = append(buf, p.PlayerID[:]...)

	// market_id (length-prefixed)
	buf = append(buf, byte(len(p.MarketID)))
	buf = append(buf, []byte(p.MarketID)...)

	// yes_shares (8 bytes LE)
	buf = appendUint64LE(buf, p.YesShares)

	// no_shares (8 bytes LE)
	buf = appendUint64LE(buf, p.NoShares)

	// claimed (1 byte)
	if p.Claimed {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}

	return buf
}

func appendUint64LE(buf []byte, v uint64) []byte {
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
