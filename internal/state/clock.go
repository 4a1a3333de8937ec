package state

// TicksPerDay is the logical day length at the upstream 5s tick cadence.
const TicksPerDay uint64 = 17_280

// LogicalClock is the counter every time-window check reads. Ticks
// arrive from the command stream; gaps are tolerated and the counter
// never moves backwards, so replaying a stale tick is a no-op.
// Not thread-safe — only accessed from the single-threaded deterministic core.
type LogicalClock struct {
	counter    uint64
	ticksSeen  uint64
	lastTickTs int64 // Epoch microseconds of the last applied tick
}

func NewLogicalClock() *LogicalClock {
	return &LogicalClock{}
}

// Advance moves the clock to the given counter value. Stale or
// duplicate ticks are silently ignored (idempotent).
func (lc *LogicalClock) Advance(counter uint64, timestamp int64) bool {
	if counter <= lc.counter {
		return false
	}
	lc.counter = counter
	lc.ticksSeen++
	lc.lastTickTs = timestamp
	return true
}

// Now returns the current logical time
func (lc *LogicalClock) Now() uint64 {
	return lc.counter
}

// Day returns the logical day index
func (lc *LogicalClock) Day() uint64 {
	return lc.counter / TicksPerDay
}

// TicksSeen returns the number of ticks actually applied
func (lc *LogicalClock) TicksSeen() uint64 {
	return lc.ticksSeen
}

// LastTickTimestamp returns the versioned input timestamp of the last tick
func (lc *LogicalClock) LastTickTimestamp() int64 {
	return lc.lastTickTs
}

// Restore directly sets clock state (used for snapshot restore)
func (lc *LogicalClock) Restore(counter, ticksSeen uint64, lastTickTs int64) {
	lc.counter = counter
	lc.ticksSeen = ticksSeen
	lc.lastTickTs = lastTickTs
}
