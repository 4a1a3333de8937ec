package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SnapshotManager handles creating and loading state snapshots for recovery.
// Snapshots contain balances, players, positions, markets, clock state,
// sequence counters, the idempotency LRU, and the last state hash.
type SnapshotManager struct {
	db *sql.DB
}

// SnapshotData contains the full in-memory state at a point in time.
type SnapshotData struct {
	Sequence        int64              `json:"sequence"`
	StateHash       []byte             `json:"state_hash"`
	PrevHash        []byte             `json:"prev_hash"`
	Balances        map[string]int64   `json:"balances"` // AccountPath -> balance
	Players         []PlayerSnapshot   `json:"players"`
	Positions       []PositionSnapshot `json:"positions"`
	Markets         []MarketSnapshot   `json:"markets"`
	NextMarketID    int64              `json:"next_market_id"`
	ClockCounter    uint64             `json:"clock_counter"`
	ClockTicksSeen  uint64             `json:"clock_ticks_seen"`
	ClockLastTickTs int64              `json:"clock_last_tick_ts"`
	SequenceState   map[string]int64   `json:"sequence_state"`   // partition -> next expected seq
	IdempotencyKeys []string           `json:"idempotency_keys"` // Recent keys for LRU warming
	CreatedAt       time.Time          `json:"created_at"`
}

// PlayerSnapshot is a serializable player account.
type PlayerSnapshot struct {
	PlayerID string `json:"player_id"`
	Balance  uint64 `json:"balance"`
	Version  int64  `json:"version"`
}

// PositionSnapshot is a serializable position.
type PositionSnapshot struct {
	PlayerID  string `json:"player_id"`
	MarketID  string `json:"market_id"`
	YesShares uint64 `json:"yes_shares"`
	NoShares  uint64 `json:"no_shares"`
	Claimed   bool   `json:"claimed"`
	Version   int64  `json:"version"`
}

// MarketSnapshot is a serializable market.
type MarketSnapshot struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description,omitempty"`
	StartTime      uint64        `json:"start_time"`
	EndTime        uint64        `json:"end_time"`
	ResolutionTime uint64        `json:"resolution_time"`
	YesLiquidity   uint64        `json:"yes_liquidity"`
	NoLiquidity    uint64        `json:"no_liquidity"`
	PrizePool      uint64        `json:"prize_pool"`
	TotalVolume    uint64        `json:"total_volume"`
	TotalYesShares uint64        `json:"total_yes_shares"`
	TotalNoShares  uint64        `json:"total_no_shares"`
	Resolved       bool          `json:"resolved"`
	Outcome        int32         `json:"outcome"`
	FeesCollected  uint64        `json:"fees_collected"`
	FeesWithdrawn  uint64        `json:"fees_withdrawn"`
	Limits         LimitSnapshot `json:"limits"`
}

// LimitSnapshot is a serializable market limit set.
type LimitSnapshot struct {
	MinLiquidity        uint64 `json:"min_liquidity"`
	MaxLiquidity        uint64 `json:"max_liquidity"`
	MaxBetAmount        uint64 `json:"max_bet_amount"`
	MaxShares           uint64 `json:"max_shares"`
	FeeRateBps          uint64 `json:"fee_rate_bps"`
	InitialYesLiquidity uint64 `json:"initial_yes_liquidity"`
	InitialNoLiquidity  uint64 `json:"initial_no_liquidity"`
}

func NewSnapshotManager(db *sql.DB) *SnapshotManager {
	return &SnapshotManager{db: db}
}

// SaveSnapshot persists a snapshot to Postgres. Snapshots are taken
// periodically (e.g. every 100k events) and verified by replaying events
// from the snapshot sequence forward.
func (sm *SnapshotManager) SaveSnapshot(ctx context.Context, snap *SnapshotData) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	snapshotID := uuid.New()
	sizeBytes := len(data)
	formatVersion := int32(1) // v1: JSON-encoded SnapshotData

	_, err = sm.db.ExecContext(ctx, `
		INSERT INTO event_log.snapshots
			(snapshot_id, sequence, data, state_hash, format_version, size_bytes, verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)
		ON CONFLICT (sequence) DO UPDATE SET data = $3, state_hash = $4, size_bytes = $6
	`, snapshotID, snap.Sequence, data, snap.StateHash, formatVersion, sizeBytes, snap.CreatedAt)

	return err
}

// LoadLatestSnapshot loads the most recent verified snapshot. On warm
// restart, load the latest snapshot then replay events from
// snapshot.sequence+1.
func (sm *SnapshotManager) LoadLatestSnapshot(ctx context.Context) (*SnapshotData, error) {
	row := sm.db.QueryRowContext(ctx, `
		SELECT data FROM event_log.snapshots
		WHERE verified = TRUE
		ORDER BY sequence DESC
		LIMIT 1
	`)

	var data []byte
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // No snapshot — cold start
		}
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var snap SnapshotData
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	return &snap, nil
}

// MarkVerified marks a snapshot as verified after integrity check.
func (sm *SnapshotManager) MarkVerified(ctx context.Context, sequence int64) error {
	_, err := sm.db.ExecContext(ctx, `
		UPDATE event_log.snapshots SET verified = TRUE WHERE sequence = $1
	`, sequence)
	return err
}

// LoadEventsFrom loads events from a given sequence for replay. Used for
// warm restart (replay from snapshot) and cold restart (replay all).
func (sm *SnapshotManager) LoadEventsFrom(ctx context.Context, fromSequence int64, limit int) ([]EventRow, error) {
	rows, err := sm.db.QueryContext(ctx, `
		SELECT sequence, event_type, idempotency_key, market_id, payload,
		       state_hash, prev_hash, timestamp, source_sequence
		FROM event_log.events
		WHERE sequence >= $1
		ORDER BY sequence ASC
		LIMIT $2
	`, fromSequence, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []EventRow
	for rows.Next() {
		var e EventRow
		if err := rows.Scan(
			&e.Sequence, &e.EventType, &e.IdempotencyKey, &e.MarketID,
			&e.Payload, &e.StateHash, &e.PrevHash, &e.Timestamp, &e.SourceSequence,
		); err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// GetLatestSequence returns the highest sequence in the event log.
func (sm *SnapshotManager) GetLatestSequence(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	err := sm.db.QueryRowContext(ctx, `
		SELECT MAX(sequence) FROM event_log.events
	`).Scan(&seq)
	if err != nil {
		return 0, err
	}
	if !seq.Valid {
		return 0, nil // Empty event log
	}
	return seq.Int64, nil
}
