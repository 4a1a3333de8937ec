package event

import "fmt"

// Tick advances the logical clock. Ticks arrive on their own partition
// and gaps are tolerated (the counter jumps forward, never back).
type Tick struct {
	Counter   uint64 // Logical clock value after this tick
	Timestamp int64  // Epoch microseconds (versioned input)
}

func (t *Tick) IdempotencyKey() string {
	return fmt.Sprintf("tick:%d", t.Counter)
}

func (t *Tick) EventType() EventType {
	return EventTypeTick
}

func (t *Tick) MarketID() *string {
	return nil // Global event
}

func (t *Tick) SourceSequence() int64 {
	return int64(t.Counter)
}
