package event

import (
	"time"
)

// EventType discriminator for event payloads
type EventType int32

const (
	EventTypeUnknown EventType = iota
	EventTypePlayerInstall
	EventTypeDeposit
	EventTypeWithdrawal
	EventTypeMarketCreate
	EventTypeBetPlaced
	EventTypeSharesSold
	EventTypeMarketResolve
	EventTypeClaim
	EventTypeFeeWithdrawal
	EventTypeTick
)

// EventEnvelope wraps every event in the log
type EventEnvelope struct {
	// Global monotonic sequence assigned by core
	Sequence int64

	// Stable idempotency key from upstream
	IdempotencyKey string

	// Event type discriminator
	EventType EventType

	// Market context (nullable for global events)
	MarketID *string

	// Versioned input timestamp (NOT wall-clock)
	Timestamp time.Time

	// Upstream sequence for ordering validation
	SourceSequence int64

	// Encoded event-specific data
	Payload []byte

	// SHA-256 of state AFTER applying this event
	StateHash [32]byte

	// Previous event's state hash (chain integrity)
	PrevHash [32]byte
}

// Event is the interface all event payloads must implement
type Event interface {
	// IdempotencyKey returns the stable dedup key
	IdempotencyKey() string

	// EventType returns the discriminator
	EventType() EventType

	// MarketID returns the market context (nil for global events)
	MarketID() *string

	// SourceSequence returns upstream ordering key
	SourceSequence() int64
}

func (et EventType) String() string {
	switch et {
	case EventTypePlayerInstall:
		return "PlayerInstall"
	case EventTypeDeposit:
		return "Deposit"
	case EventTypeWithdrawal:
		return "Withdrawal"
	case EventTypeMarketCreate:
		return "MarketCreate"
	case EventTypeBetPlaced:
		return "BetPlaced"
	case EventTypeSharesSold:
		return "SharesSold"
	case EventTypeMarketResolve:
		return "MarketResolve"
	case EventTypeClaim:
		return "Claim"
	case EventTypeFeeWithdrawal:
		return "FeeWithdrawal"
	case EventTypeTick:
		return "Tick"
	default:
		return "Unknown"
	}
}
