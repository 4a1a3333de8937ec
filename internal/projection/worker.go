package projection

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// ProjectionOutput mirrors the data needed by projection workers.
// The orchestrator bridges between core.CoreOutput and this.
type ProjectionOutput struct {
	Sequence       int64
	EventType      string
	MarketID       *string
	JournalEntries []JournalEntry
	MarketState    *MarketStateEntry // Set for market-scoped events
	MarketMeta     *MarketMetaEntry  // Set when a market is created
	Position       *PositionEntry    // Set when an event touched a position
	Timestamp      int64
}

// PositionEntry is the post-event holdings row for the positions projection.
type PositionEntry struct {
	PlayerID  string
	MarketID  string
	YesShares uint64
	NoShares  uint64
	Claimed   bool
	Version   int64
}

// JournalEntry is a simplified journal for projection consumption.
type JournalEntry struct {
	DebitAccount  string
	CreditAccount string
	Amount        uint64
	JournalType   int32
}

// MarketStateEntry captures the market's AMM state after an event, for
// the price-history projection and the markets table.
type MarketStateEntry struct {
	YesPricePpm  uint64
	NoPricePpm   uint64
	YesLiquidity uint64
	NoLiquidity  uint64
	PrizePool    uint64
	TotalVolume  uint64
	Resolved     bool
	Outcome      int32
}

// MarketMetaEntry carries the immutable market fields for the markets
// projection, set once on MarketCreate.
type MarketMetaEntry struct {
	Title          string
	Description    string
	StartTime      uint64
	EndTime        uint64
	ResolutionTime uint64
}

// ProjectionWorker updates projection tables from processed events.
// The projection channel is non-blocking with drop: if projections fall
// behind, they can be rebuilt from the event log.
type ProjectionWorker struct {
	db        *sql.DB
	inputChan <-chan ProjectionOutput
	history   *MarketHistoryProjection
	lastSeq   int64
}

func NewProjectionWorker(db *sql.DB, inputChan <-chan ProjectionOutput) *ProjectionWorker {
	return &ProjectionWorker{
		db:        db,
		inputChan: inputChan,
		history:   NewMarketHistoryProjection(),
	}
}

// History exposes the in-memory price history cache. Not safe for
// concurrent use with Run; intended for single-threaded consumers.
func (pw *ProjectionWorker) History() *MarketHistoryProjection {
	return pw.history
}

// Run starts the projection worker loop.
func (pw *ProjectionWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case output, ok := <-pw.inputChan:
			if !ok {
				return nil
			}

			if err := pw.processOutput(ctx, output); err != nil {
				log.Printf("WARN: projection update failed at seq=%d: %v", output.Sequence, err)
				// Continue — projections are eventually consistent
				// and can be rebuilt from the event log
			}

			pw.lastSeq = output.Sequence
		}
	}
}

func (pw *ProjectionWorker) processOutput(ctx context.Context, output ProjectionOutput) error {
	tx, err := pw.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Update balance projections from journal entries
	for _, j := range output.JournalEntries {
		if err := pw.updateBalanceProjection(ctx, tx, j, output.Sequence); err != nil {
			return fmt.Errorf("balance projection: %w", err)
		}
	}

	// Record a market-history row for market-scoped events
	if output.MarketID != nil && output.MarketState != nil {
		if err := pw.updateMarketHistory(ctx, tx, output); err != nil {
			return fmt.Errorf("market history projection: %w", err)
		}
		ms := output.MarketState
		pw.history.AddEntry(MarketHistoryEntry{
			MarketID:     *output.MarketID,
			Sequence:     output.Sequence,
			EventType:    output.EventType,
			YesPricePpm:  ms.YesPricePpm,
			NoPricePpm:   ms.NoPricePpm,
			YesLiquidity: ms.YesLiquidity,
			NoLiquidity:  ms.NoLiquidity,
			PrizePool:    ms.PrizePool,
			TotalVolume:  ms.TotalVolume,
			Timestamp:    output.Timestamp,
		})
		if err := pw.updateMarketState(ctx, tx, output); err != nil {
			return fmt.Errorf("market state projection: %w", err)
		}
	}

	if output.Position != nil {
		if err := pw.updatePositionProjection(ctx, tx, output); err != nil {
			return fmt.Errorf("position projection: %w", err)
		}
	}

	// Update projection watermark
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO projections.watermark (worker_id, last_sequence, updated_at)
		VALUES ('main', $1, NOW())
		ON CONFLICT (worker_id) DO UPDATE SET last_sequence = $1, updated_at = NOW()
	`, output.Sequence); err != nil {
		return fmt.Errorf("watermark update: %w", err)
	}

	return tx.Commit()
}

func (pw *ProjectionWorker) updateBalanceProjection(ctx context.Context, tx *sql.Tx, j JournalEntry, sequence int64) error {
	// Debit account: decrease balance
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO projections.balances (account_path, balance, last_sequence)
		VALUES ($1, -$2, $3)
		ON CONFLICT (account_path)
		DO UPDATE SET balance = projections.balances.balance - $2, last_sequence = $3
	`, j.DebitAccount, int64(j.Amount), sequence); err != nil {
		return err
	}

	// Credit account: increase balance
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO projections.balances (account_path, balance, last_sequence)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_path)
		DO UPDATE SET balance = projections.balances.balance + $2, last_sequence = $3
	`, j.CreditAccount, int64(j.Amount), sequence); err != nil {
		return err
	}

	return nil
}

func (pw *ProjectionWorker) updateMarketHistory(ctx context.Context, tx *sql.Tx, output ProjectionOutput) error {
	ms := output.MarketState
	_, err := tx.ExecContext(ctx, `
		INSERT INTO projections.market_history
			(market_id, sequence, event_type, yes_price_ppm, no_price_ppm,
			 yes_liquidity, no_liquidity, prize_pool, total_volume, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (market_id, sequence) DO NOTHING
	`, *output.MarketID, output.Sequence, output.EventType,
		int64(ms.YesPricePpm), int64(ms.NoPricePpm),
		int64(ms.YesLiquidity), int64(ms.NoLiquidity),
		int64(ms.PrizePool), int64(ms.TotalVolume), output.Timestamp)
	return err
}

func (pw *ProjectionWorker) updateMarketState(ctx context.Context, tx *sql.Tx, output ProjectionOutput) error {
	ms := output.MarketState

	if output.MarketMeta != nil {
		meta := output.MarketMeta
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO projections.markets
				(market_id, title, description, start_time, end_time, resolution_time,
				 yes_price_ppm, no_price_ppm, yes_liquidity, no_liquidity,
				 prize_pool, total_volume, resolved, outcome, last_sequence)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			ON CONFLICT (market_id) DO NOTHING
		`, *output.MarketID, meta.Title, meta.Description,
			int64(meta.StartTime), int64(meta.EndTime), int64(meta.ResolutionTime),
			int64(ms.YesPricePpm), int64(ms.NoPricePpm),
			int64(ms.YesLiquidity), int64(ms.NoLiquidity),
			int64(ms.PrizePool), int64(ms.TotalVolume),
			ms.Resolved, ms.Outcome, output.Sequence); err != nil {
			return err
		}
		return nil
	}

	_, err := tx.ExecContext(ctx, `
		UPDATE projections.markets SET
			yes_price_ppm = $2, no_price_ppm = $3,
			yes_liquidity = $4, no_liquidity = $5,
			prize_pool = $6, total_volume = $7,
			resolved = $8, outcome = $9, last_sequence = $10
		WHERE market_id = $1
	`, *output.MarketID, int64(ms.YesPricePpm), int64(ms.NoPricePpm),
		int64(ms.YesLiquidity), int64(ms.NoLiquidity),
		int64(ms.PrizePool), int64(ms.TotalVolume),
		ms.Resolved, ms.Outcome, output.Sequence)
	return err
}

func (pw *ProjectionWorker) updatePositionProjection(ctx context.Context, tx *sql.Tx, output ProjectionOutput) error {
	p := output.Position
	_, err := tx.ExecContext(ctx, `
		INSERT INTO projections.positions
			(player_id, market_id, yes_shares, no_shares, claimed, version, last_sequence)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (player_id, market_id) DO UPDATE SET
			yes_shares = $3, no_shares = $4, claimed = $5,
			version = $6, last_sequence = $7
	`, p.PlayerID, p.MarketID, int64(p.YesShares), int64(p.NoShares),
		p.Claimed, p.Version, output.Sequence)
	return err
}

// RebuildProjections rebuilds the balance projection from the event log.
// Market history is append-only and survives as-is; balances are derived
// entirely from journal rows.
func RebuildProjections(ctx context.Context, db *sql.DB) error {
	// Truncate rebuildable projection tables
	truncateStatements := []string{
		`TRUNCATE projections.balances`,
		`DELETE FROM projections.watermark WHERE worker_id = 'main'`,
	}

	for _, stmt := range truncateStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("truncate failed: %w", err)
		}
	}

	// Rebuild from journal entries
	_, err := db.ExecContext(ctx, `
		INSERT INTO projections.balances (account_path, balance, last_sequence)
		SELECT
			credit_account AS account_path,
			SUM(amount) AS balance,
			MAX(sequence) AS last_sequence
		FROM event_log.journal
		GROUP BY credit_account
		ON CONFLICT (account_path) DO UPDATE
			SET balance = EXCLUDED.balance, last_sequence = EXCLUDED.last_sequence
	`)
	if err != nil {
		return fmt.Errorf("rebuild credit balances: %w", err)
	}

	// Subtract debits
	_, err = db.ExecContext(ctx, `
		INSERT INTO projections.balances (account_path, balance, last_sequence)
		SELECT
			debit_account AS account_path,
			-SUM(amount) AS balance,
			MAX(sequence) AS last_sequence
		FROM event_log.journal
		GROUP BY debit_account
		ON CONFLICT (account_path) DO UPDATE
			SET balance = projections.balances.balance + EXCLUDED.balance,
			    last_sequence = GREATEST(projections.balances.last_sequence, EXCLUDED.last_sequence)
	`)
	if err != nil {
		return fmt.Errorf("rebuild debit balances: %w", err)
	}

	log.Println("INFO: projection rebuild complete")
	return nil
}
