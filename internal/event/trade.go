package event

import (
	"time"

	"github.com/google/uuid"
)

// BetPlaced represents a committed buy command against a market's AMM.
// Idempotency key: bet_id (UUID from the command layer).
type BetPlaced struct {
	BetID       uuid.UUID // Idempotency key
	PlayerID    uuid.UUID
	Market      string
	BetSide     Side
	GrossAmount uint64 // Gross stake, fee not yet deducted
	BetSequence int64  // Source sequence from the command stream
	Timestamp   time.Time
}

func (b *BetPlaced) IdempotencyKey() string {
	return b.BetID.String()
}

func (b *BetPlaced) EventType() EventType {
	return EventTypeBetPlaced
}

func (b *BetPlaced) MarketID() *string {
	m := b.Market
	return &m
}

func (b *BetPlaced) SourceSequence() int64 {
	return b.BetSequence
}

// SharesSold represents a committed sell command returning shares to
// the AMM for a net payout.
type SharesSold struct {
	SellID       uuid.UUID // Idempotency key
	PlayerID     uuid.UUID
	Market       string
	SellSide     Side
	Shares       uint64
	SellSequence int64
	Timestamp    time.Time
}

func (s *SharesSold) IdempotencyKey() string {
	return s.SellID.String()
}

func (s *SharesSold) EventType() EventType {
	return EventTypeSharesSold
}

func (s *SharesSold) MarketID() *string {
	m := s.Market
	return &m
}

func (s *SharesSold) SourceSequence() int64 {
	return s.SellSequence
}

// Claim represents a winner claiming their prize-pool share after
// resolution.
type Claim struct {
	ClaimID       uuid.UUID // Idempotency key
	PlayerID      uuid.UUID
	Market        string
	ClaimSequence int64
	Timestamp     time.Time
}

func (c *Claim) IdempotencyKey() string {
	return c.ClaimID.String()
}

func (c *Claim) EventType() EventType {
	return EventTypeClaim
}

func (c *Claim) MarketID() *string {
	m := c.Market
	return &m
}

func (c *Claim) SourceSequence() int64 {
	return c.ClaimSequence
}
