package event

import (
	"time"

	"github.com/google/uuid"
)

// MarketCreate opens a new market. The market id is assigned by the
// registry when the event is applied, so the event itself is global.
type MarketCreate struct {
	RequestID      uuid.UUID
	AdminID        uuid.UUID
	Title          string
	Description    string
	StartTime      uint64 // Logical clock ticks
	EndTime        uint64
	ResolutionTime uint64
	Sequence       int64
	Timestamp      time.Time
}

func (m *MarketCreate) IdempotencyKey() string {
	return m.RequestID.String()
}

func (m *MarketCreate) EventType() EventType {
	return EventTypeMarketCreate
}

func (m *MarketCreate) MarketID() *string {
	return nil // Id not known until applied
}

func (m *MarketCreate) SourceSequence() int64 {
	return m.Sequence
}

// MarketResolve fixes the outcome of a market. One-shot.
type MarketResolve struct {
	RequestID uuid.UUID
	AdminID   uuid.UUID
	Market    string
	Outcome   Side
	Sequence  int64
	Timestamp time.Time
}

func (m *MarketResolve) IdempotencyKey() string {
	return m.RequestID.String()
}

func (m *MarketResolve) EventType() EventType {
	return EventTypeMarketResolve
}

func (m *MarketResolve) MarketID() *string {
	s := m.Market
	return &s
}

func (m *MarketResolve) SourceSequence() int64 {
	return m.Sequence
}

// FeeWithdrawal sweeps a market's accrued fees to the operator.
// Idempotent at the market level: a second sweep transfers zero.
type FeeWithdrawal struct {
	RequestID uuid.UUID
	AdminID   uuid.UUID
	Market    string
	Sequence  int64
	Timestamp time.Time
}

func (f *FeeWithdrawal) IdempotencyKey() string {
	return f.RequestID.String()
}

func (f *FeeWithdrawal) EventType() EventType {
	return EventTypeFeeWithdrawal
}

func (f *FeeWithdrawal) MarketID() *string {
	s := f.Market
	return &s
}

func (f *FeeWithdrawal) SourceSequence() int64 {
	return f.Sequence
}
