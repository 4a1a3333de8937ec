package query

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// QueryService provides read-only access to projection tables. Queries are
// served via gRPC and HTTP/JSON (gRPC-Gateway), reading from PostgreSQL
// projection tables. All responses include as_of_sequence for freshness
// semantics.
type QueryService struct {
	db *sql.DB
}

func NewQueryService(db *sql.DB) *QueryService {
	return &QueryService{db: db}
}

// GetBalance returns a player's cash balance.
func (qs *QueryService) GetBalance(
	ctx context.Context,
	playerID uuid.UUID,
) (*BalanceResponse, error) {
	asOfSeq, err := qs.getWatermark(ctx)
	if err != nil {
		return nil, fmt.Errorf("watermark: %w", err)
	}

	cashPath := fmt.Sprintf("player:%s:cash", playerID)
	cash, err := qs.getProjectedBalance(ctx, cashPath)
	if err != nil {
		return nil, err
	}

	return &BalanceResponse{
		PlayerID:     playerID,
		CashBalance:  cash,
		AsOfSequence: asOfSeq,
	}, nil
}

// GetMarketAccount returns a market's vault backing for admin inspection.
func (qs *QueryService) GetMarketAccount(
	ctx context.Context,
	marketID string,
) (*MarketAccountResponse, error) {
	asOfSeq, err := qs.getWatermark(ctx)
	if err != nil {
		return nil, err
	}

	vaultPath := fmt.Sprintf("market:%s:vault", marketID)
	vault, err := qs.getProjectedBalance(ctx, vaultPath)
	if err != nil {
		return nil, err
	}

	var prizePool int64
	err = qs.db.QueryRowContext(ctx, `
		SELECT COALESCE(prize_pool, 0) FROM projections.markets WHERE market_id = $1
	`, marketID).Scan(&prizePool)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	outstanding := vault - prizePool
	if outstanding < 0 {
		outstanding = 0
	}

	return &MarketAccountResponse{
		MarketID:        marketID,
		VaultBalance:    vault,
		PrizePool:       prizePool,
		FeesOutstanding: outstanding,
		AsOfSequence:    asOfSeq,
	}, nil
}

// GetOperatorFees returns the operator's swept fee balance.
func (qs *QueryService) GetOperatorFees(ctx context.Context) (*OperatorFeesResponse, error) {
	asOfSeq, err := qs.getWatermark(ctx)
	if err != nil {
		return nil, err
	}

	balance, err := qs.getProjectedBalance(ctx, "operator:fees")
	if err != nil {
		return nil, err
	}

	return &OperatorFeesResponse{
		Balance:      balance,
		AsOfSequence: asOfSeq,
	}, nil
}

// GetMarkets returns all markets, optionally filtered to open ones.
func (qs *QueryService) GetMarkets(
	ctx context.Context,
	includeResolved bool,
) ([]MarketResponse, error) {
	asOfSeq, err := qs.getWatermark(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT market_id, title, description, start_time, end_time, resolution_time,
		       yes_price_ppm, no_price_ppm, yes_liquidity, no_liquidity,
		       prize_pool, total_volume, resolved, outcome
		FROM projections.markets
	`
	if !includeResolved {
		query += " WHERE resolved = FALSE"
	}
	query += " ORDER BY market_id"

	rows, err := qs.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var markets []MarketResponse
	for rows.Next() {
		var m MarketResponse
		m.AsOfSequence = asOfSeq
		if err := rows.Scan(
			&m.MarketID, &m.Title, &m.Description,
			&m.StartTime, &m.EndTime, &m.ResolutionTime,
			&m.YesPricePpm, &m.NoPricePpm, &m.YesLiquidity, &m.NoLiquidity,
			&m.PrizePool, &m.TotalVolume, &m.Resolved, &m.Outcome,
		); err != nil {
			return nil, err
		}
		markets = append(markets, m)
	}

	return markets, rows.Err()
}

// GetMarket returns a single market by id.
func (qs *QueryService) GetMarket(
	ctx context.Context,
	marketID string,
) (*MarketResponse, error) {
	asOfSeq, err := qs.getWatermark(ctx)
	if err != nil {
		return nil, err
	}

	var m MarketResponse
	m.AsOfSequence = asOfSeq
	err = qs.db.QueryRowContext(ctx, `
		SELECT market_id, title, description, start_time, end_time, resolution_time,
		       yes_price_ppm, no_price_ppm, yes_liquidity, no_liquidity,
		       prize_pool, total_volume, resolved, outcome
		FROM projections.markets
		WHERE market_id = $1
	`, marketID).Scan(
		&m.MarketID, &m.Title, &m.Description,
		&m.StartTime, &m.EndTime, &m.ResolutionTime,
		&m.YesPricePpm, &m.NoPricePpm, &m.YesLiquidity, &m.NoLiquidity,
		&m.PrizePool, &m.TotalVolume, &m.Resolved, &m.Outcome,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("market %s not found", marketID)
	}
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// GetMarketHistory returns price history for a market, newest first.
// Supports cursor-based pagination on sequence.
func (qs *QueryService) GetMarketHistory(
	ctx context.Context,
	marketID string,
	limit int,
	afterSequence *int64,
) ([]MarketHistoryResponse, error) {
	asOfSeq, err := qs.getWatermark(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT market_id, sequence, event_type, yes_price_ppm, no_price_ppm,
		       yes_liquidity, no_liquidity, prize_pool, total_volume, timestamp
		FROM projections.market_history
		WHERE market_id = $1
	`
	args := []interface{}{marketID}
	argIdx := 2

	if afterSequence != nil {
		query += fmt.Sprintf(" AND sequence < $%d", argIdx)
		args = append(args, *afterSequence)
		argIdx++
	}

	query += " ORDER BY sequence DESC"
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, limit)

	rows, err := qs.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []MarketHistoryResponse
	for rows.Next() {
		var h MarketHistoryResponse
		h.AsOfSequence = asOfSeq
		if err := rows.Scan(
			&h.MarketID, &h.Sequence, &h.EventType,
			&h.YesPricePpm, &h.NoPricePpm,
			&h.YesLiquidity, &h.NoLiquidity,
			&h.PrizePool, &h.TotalVolume, &h.Timestamp,
		); err != nil {
			return nil, err
		}
		history = append(history, h)
	}

	return history, rows.Err()
}

// GetPositions returns all open positions for a player.
func (qs *QueryService) GetPositions(
	ctx context.Context,
	playerID uuid.UUID,
) ([]PositionResponse, error) {
	asOfSeq, err := qs.getWatermark(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := qs.db.QueryContext(ctx, `
		SELECT market_id, yes_shares, no_shares, claimed, version
		FROM projections.positions
		WHERE player_id = $1 AND (yes_shares > 0 OR no_shares > 0 OR claimed)
		ORDER BY market_id
	`, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var positions []PositionResponse
	for rows.Next() {
		var p PositionResponse
		p.PlayerID = playerID
		p.AsOfSequence = asOfSeq
		if err := rows.Scan(
			&p.MarketID, &p.YesShares, &p.NoShares, &p.Claimed, &p.Version,
		); err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}

	return positions, rows.Err()
}

// GetJournalHistory returns journal entries for a player with pagination.
func (qs *QueryService) GetJournalHistory(
	ctx context.Context,
	playerID uuid.UUID,
	limit int,
	afterSequence *int64,
) ([]JournalHistoryEntry, error) {
	accountPrefix := fmt.Sprintf("player:%s:%%", playerID)

	query := `
		SELECT journal_id, batch_id, event_ref, sequence,
		       debit_account, credit_account, amount, journal_type, timestamp
		FROM event_log.journal
		WHERE debit_account LIKE $1 OR credit_account LIKE $1
	`
	args := []interface{}{accountPrefix}
	argIdx := 2

	if afterSequence != nil {
		query += fmt.Sprintf(" AND sequence < $%d", argIdx)
		args = append(args, *afterSequence)
		argIdx++
	}

	query += " ORDER BY sequence DESC"
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, limit)

	rows, err := qs.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []JournalHistoryEntry
	for rows.Next() {
		var e JournalHistoryEntry
		if err := rows.Scan(
			&e.JournalID, &e.BatchID, &e.EventRef, &e.Sequence,
			&e.DebitAccount, &e.CreditAccount, &e.Amount,
			&e.JournalType, &e.Timestamp,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// --- Admin APIs ---

// VerifyIntegrity checks hash chain and global balance invariants.
func (qs *QueryService) VerifyIntegrity(ctx context.Context) (*IntegrityReport, error) {
	report := &IntegrityReport{}

	// Check hash chain continuity
	rows, err := qs.db.QueryContext(ctx, `
		SELECT e1.sequence, e1.prev_hash, e2.state_hash
		FROM event_log.events e1
		LEFT JOIN event_log.events e2 ON e2.sequence = e1.sequence - 1
		WHERE e1.sequence > 0 AND e1.prev_hash != COALESCE(e2.state_hash, e1.prev_hash)
		LIMIT 10
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var seq int64
		var prevHash, expectedHash []byte
		if err := rows.Scan(&seq, &prevHash, &expectedHash); err != nil {
			return nil, err
		}
		report.HashChainBreaks = append(report.HashChainBreaks, seq)
	}

	// Check global balance (all accounts must sum to zero)
	var total sql.NullInt64
	if err := qs.db.QueryRowContext(ctx, `
		SELECT SUM(balance) FROM projections.balances
	`).Scan(&total); err != nil {
		return nil, err
	}
	if total.Valid {
		report.GlobalImbalance = total.Int64
	}

	report.IsHealthy = len(report.HashChainBreaks) == 0 && report.GlobalImbalance == 0
	return report, nil
}

// --- helpers ---

func (qs *QueryService) getWatermark(ctx context.Context) (int64, error) {
	var seq int64
	err := qs.db.QueryRowContext(ctx, `
		SELECT COALESCE(last_sequence, 0) FROM projections.watermark WHERE worker_id = 'main'
	`).Scan(&seq)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return seq, err
}

func (qs *QueryService) getProjectedBalance(ctx context.Context, accountPath string) (int64, error) {
	var balance int64
	err := qs.db.QueryRowContext(ctx, `
		SELECT COALESCE(balance, 0) FROM projections.balances
		WHERE account_path = $1
	`, accountPath).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return balance, err
}
